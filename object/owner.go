// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package object

import "github.com/movevm/tempstore/common"

// OwnerKind discriminates the Owner tagged union (spec.md §1).
type OwnerKind int

const (
	OwnerAddress OwnerKind = iota
	OwnerObject
	OwnerShared
	OwnerImmutable
)

// Owner models the object-ownership lattice: an object is owned by an
// address, owned by another object (a child object), shared (readable and
// mutable by anyone, versioned from its initial shared version), or
// immutable (never written or deleted, I7).
type Owner struct {
	Kind                 OwnerKind
	Address              common.Address
	ObjectID             common.ObjectId
	InitialSharedVersion common.SequenceNumber
}

func NewAddressOwner(addr common.Address) Owner {
	return Owner{Kind: OwnerAddress, Address: addr}
}

func NewObjectOwner(id common.ObjectId) Owner {
	return Owner{Kind: OwnerObject, ObjectID: id}
}

func NewSharedOwner(initialVersion common.SequenceNumber) Owner {
	return Owner{Kind: OwnerShared, InitialSharedVersion: initialVersion}
}

func ImmutableOwner() Owner {
	return Owner{Kind: OwnerImmutable}
}

// Equal reports whether two owners denote the same owning party. Shared
// owners compare equal regardless of InitialSharedVersion: event synthesis
// (§4.6.1) only cares whether ownership *changed*, and a shared object's
// initial version is stamped once at creation, not on every mutation.
func (o Owner) Equal(other Owner) bool {
	if o.Kind != other.Kind {
		return false
	}
	switch o.Kind {
	case OwnerAddress:
		return o.Address == other.Address
	case OwnerObject:
		return o.ObjectID == other.ObjectID
	default:
		return true
	}
}
