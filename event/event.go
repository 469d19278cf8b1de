// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

// Package event models the stream of effects-synthesis events TempStore
// produces: object lifecycle events and balance-change events, as a single
// tagged union rather than an interface hierarchy (spec.md §9 design notes,
// "Event variants as a tagged union").
package event

import (
	"math/big"

	"github.com/movevm/tempstore/common"
	"github.com/movevm/tempstore/object"
)

// Kind discriminates the Event tagged union.
type Kind int

const (
	KindNewObject Kind = iota
	KindMutateObject
	KindTransferObject
	KindDeleteObject
	KindPublish
	KindBalanceChange
)

// BalanceChangeKind discriminates the reason a balance changed.
type BalanceChangeKind int

const (
	BalanceChangeGas BalanceChangeKind = iota
	BalanceChangePay
	BalanceChangeReceive
)

// Event is the sum type of every event TempStore can emit.
type Event struct {
	Kind Kind

	// Common attribution (package_id/transaction_module/sender), populated
	// from SingleTxContext for every variant except BalanceChange, which
	// instead reports the affected owner, and Publish, which carries only the
	// sender and sets PackageID to the published package's id.
	PackageID         common.ObjectId
	TransactionModule string
	Sender            common.Address

	ObjectID   common.ObjectId
	ObjectType string
	Owner      object.Owner
	Version    common.SequenceNumber
	Digest     common.Digest

	BalanceChangeKind BalanceChangeKind
	CoinType          string
	Amount            *big.Int
}

// NewObjectEvent is emitted when execution creates a non-package object.
func NewObjectEvent(sender common.Address, packageID common.ObjectId, module string, owner object.Owner, objType string, id common.ObjectId, version common.SequenceNumber) Event {
	return Event{
		Kind: KindNewObject, Sender: sender, PackageID: packageID, TransactionModule: module,
		Owner: owner, ObjectType: objType, ObjectID: id, Version: version,
	}
}

// MutateObjectEvent is emitted when a non-coin object's contents changed.
func MutateObjectEvent(sender common.Address, packageID common.ObjectId, module string, objType string, id common.ObjectId, version common.SequenceNumber) Event {
	return Event{
		Kind: KindMutateObject, Sender: sender, PackageID: packageID, TransactionModule: module,
		ObjectType: objType, ObjectID: id, Version: version,
	}
}

// TransferObjectEvent is emitted when an object's owner changed.
func TransferObjectEvent(sender common.Address, packageID common.ObjectId, module string, owner object.Owner, objType string, id common.ObjectId, version common.SequenceNumber) Event {
	return Event{
		Kind: KindTransferObject, Sender: sender, PackageID: packageID, TransactionModule: module,
		Owner: owner, ObjectType: objType, ObjectID: id, Version: version,
	}
}

// DeleteObjectEvent is emitted when a non-coin object is deleted.
func DeleteObjectEvent(sender common.Address, packageID common.ObjectId, module string, id common.ObjectId, version common.SequenceNumber) Event {
	return Event{
		Kind: KindDeleteObject, Sender: sender, PackageID: packageID, TransactionModule: module,
		ObjectID: id, Version: version,
	}
}

// PublishEvent is emitted when a package is created, or a system package is
// mutated in place by a framework upgrade.
func PublishEvent(sender common.Address, packageID common.ObjectId, version common.SequenceNumber, digest common.Digest) Event {
	return Event{Kind: KindPublish, Sender: sender, PackageID: packageID, Version: version, Digest: digest}
}

// BalanceChangeEvent records a change in a coin's balance, attributed to the
// owner that held (Pay) or now holds (Receive/Gas) the value.
func BalanceChangeEvent(kind BalanceChangeKind, owner object.Owner, coinID common.ObjectId, version common.SequenceNumber, coinType string, amount *big.Int) Event {
	return Event{
		Kind: KindBalanceChange, BalanceChangeKind: kind, Owner: owner,
		ObjectID: coinID, Version: version, CoinType: coinType, Amount: new(big.Int).Set(amount),
	}
}
