// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package tempstore

import (
	"math/big"

	"github.com/movevm/tempstore/common"
	"github.com/movevm/tempstore/event"
	"github.com/movevm/tempstore/gas"
	"github.com/movevm/tempstore/kerrors"
	"github.com/movevm/tempstore/object"
)

// WrittenRecord is the finalised value of one entry in InnerTemporaryStore's
// written map: the post-image object alongside the reference it was written
// at and why it was written (spec.md §4.6 step 6).
type WrittenRecord struct {
	Ref    common.ObjectRef
	Object *object.Object
	Kind   WriteKind
}

// DeletedRecord is the finalised value of one entry in InnerTemporaryStore's
// deleted map.
type DeletedRecord struct {
	Version common.SequenceNumber
	Kind    DeleteKind
}

// InnerTemporaryStore is the immutable post-image `into_inner` produces
// (spec.md §4.6 step 6): the input snapshot, the mutable inputs the
// transaction was authorised to touch, the finalised writes and deletes, and
// the full event log in emission order.
type InnerTemporaryStore struct {
	Objects       map[common.ObjectId]*object.Object
	MutableInputs []common.ObjectRef
	Written       map[common.ObjectId]WrittenRecord
	Deleted       map[common.ObjectId]DeletedRecord
	Events        []event.Event
}

// IntoInner consumes the store's pending writes/deletes/events and produces
// the immutable post-image (spec.md §4.6). It is single-shot by convention:
// callers that need the store afterwards should prefer ToEffects, which
// calls this internally after snapshotting modified_at_versions.
func (t *TempStore) IntoInner() *InnerTemporaryStore {
	t.checkInvariants()

	written := make(map[common.ObjectId]WrittenRecord, len(t.written))
	deleted := make(map[common.ObjectId]DeletedRecord, len(t.deleted))
	var events []event.Event

	var gasID *common.ObjectId
	var gasCharged int64
	if t.gasCharged != nil {
		gasObj := t.inputObjects[t.gasCharged.GasObjectID]
		if gasObj == nil {
			panic(kerrors.NewInvariantViolation("gas coin %s must be an input object", t.gasCharged.GasObjectID))
		}
		structTag, _ := gasObj.StructTag()
		net := t.gasCharged.Summary.NetGasUsage()
		events = append(events, event.BalanceChangeEvent(
			event.BalanceChangeGas, gasObj.Owner, t.gasCharged.GasObjectID, gasObj.Version,
			structTag, big.NewInt(-net),
		))
		id := t.gasCharged.GasObjectID
		gasID = &id
		gasCharged = net
	}

	for _, id := range t.sortedWrittenIDs() {
		entry := t.written[id]
		obj := *entry.obj // local copy: finalisation must not mutate the caller's object
		objPtr := &obj

		if !objPtr.IsPackage() {
			objPtr.Version.IncrementTo(t.lamportTimestamp)
		}

		if objPtr.Owner.Kind == object.OwnerShared && entry.kind == WriteCreate {
			if objPtr.Owner.InitialSharedVersion != common.SequenceNumberMin {
				panic(kerrors.NewInvariantViolation("initial shared version must be blank before finalisation for %s", id))
			}
			objPtr.Owner.InitialSharedVersion = t.lamportTimestamp
		}

		oldObj := t.inputObjects[id]
		events = append(events, t.createWrittenEvents(entry.ctx, entry.kind, id, objPtr, oldObj, gasID, gasCharged)...)

		written[id] = WrittenRecord{Ref: objPtr.ComputeObjectReference(), Object: objPtr, Kind: entry.kind}
	}

	for _, id := range t.sortedDeletedIDs() {
		entry := t.deleted[id]
		version := entry.version
		version.IncrementTo(t.lamportTimestamp)

		events = append(events, t.createDeletedEvent(entry.ctx, id, entry.version, version)...)

		deleted[id] = DeletedRecord{Version: version, Kind: entry.kind}
	}

	events = append(events, t.events...)

	return &InnerTemporaryStore{
		Objects:       t.inputObjects,
		MutableInputs: t.mutableInputRefs,
		Written:       written,
		Deleted:       deleted,
		Events:        events,
	}
}

// checkInvariants re-checks, at finalisation time, three invariants the
// write/delete API is already supposed to maintain incrementally (I1
// disjointness via the write-after-delete/delete-after-write panics in
// WriteObject/DeleteObject, I3 stamping in WriteObject itself): I1 no object
// both written and deleted, I2 every mutable input is either written or
// deleted, I3 every written object carries this transaction's digest. Unlike
// the original's debug_assertions-gated check_invariants, this always runs:
// the rest of this package already treats invariant violations as always-on
// panics rather than debug-only assertions, so a cfg-style toggle here would
// be inconsistent with how WriteObject/DeleteObject behave.
func (t *TempStore) checkInvariants() {
	used := make(map[common.ObjectId]struct{}, len(t.written)+len(t.deleted))
	for id := range t.written {
		if _, dup := used[id]; dup {
			panic(kerrors.NewInvariantViolation("object both written and deleted: %s", id))
		}
		used[id] = struct{}{}
	}
	for id := range t.deleted {
		if _, dup := used[id]; dup {
			panic(kerrors.NewInvariantViolation("object both written and deleted: %s", id))
		}
		used[id] = struct{}{}
	}

	for _, ref := range t.mutableInputRefs {
		if _, ok := used[ref.ID]; !ok {
			panic(kerrors.NewInvariantViolation("mutable input neither written nor deleted: %s", ref.ID))
		}
	}

	for id, entry := range t.written {
		if entry.obj.PreviousTransaction != t.txDigest {
			panic(kerrors.NewInvariantViolation("object previous transaction not properly set: %s", id))
		}
	}
}

// createWrittenEvents implements the written-event synthesis decision table
// (spec.md §4.6.1). Arm order matters: a coin mutation with an old value is
// handled before the generic "new coin appeared" arm.
func (t *TempStore) createWrittenEvents(ctx Ctx, kind WriteKind, id common.ObjectId, obj, oldObj *object.Object, gasID *common.ObjectId, gasCharged int64) []event.Event {
	var moveObj *object.MoveObject
	if !obj.IsPackage() {
		moveObj = obj.Data.Move
	}
	coin, isCoin, err := object.TryExtractCoin(moveObj)
	if err != nil {
		panic(kerrors.NewInvariantViolation("decoding coin %s: %v", id, err))
	}

	switch {
	case kind == WriteMutate && isCoin && oldObj != nil:
		return t.createCoinMutateEvents(ctx, gasID, obj, oldObj, gasCharged)

	case isCoin:
		if obj.Owner.Kind == object.OwnerAddress {
			structTag, _ := obj.StructTag()
			amount := new(big.Int).SetUint64(coin.Balance)
			return []event.Event{event.BalanceChangeEvent(event.BalanceChangeReceive, obj.Owner, id, obj.Version, structTag, amount)}
		}
		return nil

	case kind == WriteMutate || kind == WriteUnwrap:
		if obj.IsPackage() {
			if ctx.Sender != common.ZeroAddress || !object.IsSystemPackage(id) {
				panic(kerrors.NewInvariantViolation("only the system may modify a package in place: %s", id))
			}
			return []event.Event{event.PublishEvent(ctx.Sender, id, obj.Data.Package.Version, obj.Data.Package.Digest)}
		}
		var events []event.Event
		structTag, _ := obj.StructTag()
		if oldObj == nil || !oldObj.Owner.Equal(obj.Owner) {
			events = append(events, event.TransferObjectEvent(ctx.Sender, ctx.PackageID, ctx.TransactionModule, obj.Owner, structTag, id, obj.Version))
		}
		if oldObj != nil && !oldObj.Data.Equal(obj.Data) {
			events = append(events, event.MutateObjectEvent(ctx.Sender, ctx.PackageID, ctx.TransactionModule, structTag, id, obj.Version))
		}
		return events

	case kind == WriteCreate:
		if obj.IsPackage() {
			return []event.Event{event.PublishEvent(ctx.Sender, id, obj.Data.Package.Version, obj.Data.Package.Digest)}
		}
		structTag, _ := obj.StructTag()
		return []event.Event{event.NewObjectEvent(ctx.Sender, ctx.PackageID, ctx.TransactionModule, obj.Owner, structTag, id, obj.Version)}

	default:
		return nil
	}
}

// createCoinMutateEvents computes the balance delta for a coin that existed
// both before and after this transaction, crediting the change to whichever
// owner(s) are involved (spec.md §4.6.1 coin-mutate table).
func (t *TempStore) createCoinMutateEvents(ctx Ctx, gasID *common.ObjectId, coinObj, oldCoinObj *object.Object, gasCharged int64) []event.Event {
	oldCoin, _, err := object.TryExtractCoin(oldCoinObj.Data.Move)
	if err != nil {
		panic(kerrors.NewInvariantViolation("decoding prior coin value for %s: %v", oldCoinObj.ID, err))
	}
	newCoin, _, err := object.TryExtractCoin(coinObj.Data.Move)
	if err != nil {
		panic(kerrors.NewInvariantViolation("decoding coin %s: %v", coinObj.ID, err))
	}
	if oldCoin == nil || newCoin == nil {
		return nil
	}

	oldBalance := new(big.Int).SetUint64(oldCoin.Balance)
	newBalance := new(big.Int).SetUint64(newCoin.Balance)
	if gasID != nil && *gasID == coinObj.ID {
		oldBalance.Sub(oldBalance, big.NewInt(gasCharged))
	}

	structTag, _ := coinObj.StructTag()

	if oldCoinObj.Owner.Equal(coinObj.Owner) {
		switch oldBalance.Cmp(newBalance) {
		case 1: // old > new: spent
			delta := new(big.Int).Sub(newBalance, oldBalance)
			return []event.Event{event.BalanceChangeEvent(event.BalanceChangePay, oldCoinObj.Owner, oldCoinObj.ID, oldCoinObj.Version, structTag, delta)}
		case -1: // old < new: received
			delta := new(big.Int).Sub(newBalance, oldBalance)
			return []event.Event{event.BalanceChangeEvent(event.BalanceChangeReceive, coinObj.Owner, coinObj.ID, coinObj.Version, structTag, delta)}
		default:
			return nil
		}
	}

	return []event.Event{
		event.BalanceChangeEvent(event.BalanceChangePay, oldCoinObj.Owner, coinObj.ID, oldCoinObj.Version, structTag, new(big.Int).Neg(oldBalance)),
		event.BalanceChangeEvent(event.BalanceChangeReceive, coinObj.Owner, coinObj.ID, coinObj.Version, structTag, newBalance),
	}
}

// createDeletedEvent implements the deleted-event synthesis table (spec.md
// §4.6.2): an owned coin input that disappears is a spend, anything else is
// a generic delete.
func (t *TempStore) createDeletedEvent(ctx Ctx, id common.ObjectId, preVersion, finalVersion common.SequenceNumber) []event.Event {
	oldObj := t.inputObjects[id]
	if oldObj != nil {
		if coin, ok, err := object.TryExtractCoin(oldObj.Data.Move); err == nil && ok {
			structTag, _ := oldObj.StructTag()
			amount := new(big.Int).Neg(new(big.Int).SetUint64(coin.Balance))
			return []event.Event{event.BalanceChangeEvent(event.BalanceChangePay, oldObj.Owner, id, oldObj.Version, structTag, amount)}
		}
	}
	return []event.Event{event.DeleteObjectEvent(ctx.Sender, ctx.PackageID, ctx.TransactionModule, id, finalVersion)}
}

// ModifiedAtVersion records the pre-mutation version of a mutated or deleted
// object, for rollback bookkeeping (spec.md §4.7 step 1).
type ModifiedAtVersion struct {
	ID      common.ObjectId
	Version common.SequenceNumber
}

// ObjectOwnerRef pairs a finalised object reference with its owner, the
// shape every Created/Mutated/Unwrapped effects entry takes.
type ObjectOwnerRef struct {
	Ref   common.ObjectRef
	Owner object.Owner
}

// DeletedObjectRef pairs a finalised (id, version) with the sentinel digest
// appropriate to how the object left the store.
type DeletedObjectRef struct {
	ID      common.ObjectId
	Version common.SequenceNumber
	Digest  common.Digest
}

// ExecutionStatus is the caller-supplied outcome of running the
// transaction's Move code, carried through untouched into TransactionEffects.
type ExecutionStatus struct {
	Success bool
	Error   string
}

// TransactionEffects is the deterministic, serialisable summary of what a
// transaction did (spec.md §4.7).
type TransactionEffects struct {
	ProtocolVersion       uint64
	Status                ExecutionStatus
	Epoch                 uint64
	GasUsed               gas.GasCostSummary
	ModifiedAtVersions    []ModifiedAtVersion
	SharedObjects         []common.ObjectRef
	TransactionDigest     common.TxDigest
	Created               []ObjectOwnerRef
	Mutated               []ObjectOwnerRef
	Unwrapped             []ObjectOwnerRef
	Deleted               []DeletedObjectRef
	UnwrappedThenDeleted  []DeletedObjectRef
	Wrapped               []DeletedObjectRef
	UpdatedGasObjectRef   common.ObjectRef
	UpdatedGasObjectOwner object.Owner
	EventsDigest          *common.Digest
	Dependencies          []common.TxDigest
}

// ToEffects finalises the store and builds its TransactionEffects summary in
// one step (spec.md §4.7). gasRefs[0] identifies the coin effects should
// report gas usage against; it may be the zero object id for an unmetered
// (e.g. genesis) transaction.
func (t *TempStore) ToEffects(sharedObjectRefs []common.ObjectRef, transactionDigest common.TxDigest, dependencies []common.TxDigest, gasCostSummary gas.GasCostSummary, status ExecutionStatus, gasRefs []common.ObjectRef, epoch uint64) (*InnerTemporaryStore, *TransactionEffects) {
	writtenIDs, deletedIDs := t.sortedWrittenIDs(), t.sortedDeletedIDs()

	var modifiedAtVersions []ModifiedAtVersion
	for _, id := range writtenIDs {
		if entry := t.written[id]; entry.kind == WriteMutate {
			modifiedAtVersions = append(modifiedAtVersions, ModifiedAtVersion{ID: id, Version: entry.obj.Version})
		}
	}
	for _, id := range deletedIDs {
		modifiedAtVersions = append(modifiedAtVersions, ModifiedAtVersion{ID: id, Version: t.deleted[id].version})
	}

	inner := t.IntoInner()

	var created, mutated, unwrapped []ObjectOwnerRef
	for _, id := range writtenIDs {
		rec := inner.Written[id]
		owner := ObjectOwnerRef{Ref: rec.Ref, Owner: rec.Object.Owner}
		switch rec.Kind {
		case WriteCreate:
			created = append(created, owner)
		case WriteMutate:
			mutated = append(mutated, owner)
		case WriteUnwrap:
			unwrapped = append(unwrapped, owner)
		}
	}

	var deletedRefs, unwrappedThenDeleted, wrapped []DeletedObjectRef
	for _, id := range deletedIDs {
		rec := inner.Deleted[id]
		switch rec.Kind {
		case DeleteNormal:
			deletedRefs = append(deletedRefs, DeletedObjectRef{ID: id, Version: rec.Version, Digest: common.ObjectDigestDeleted})
		case DeleteUnwrapThenDelete:
			unwrappedThenDeleted = append(unwrappedThenDeleted, DeletedObjectRef{ID: id, Version: rec.Version, Digest: common.ObjectDigestDeleted})
		case DeleteWrap:
			wrapped = append(wrapped, DeletedObjectRef{ID: id, Version: rec.Version, Digest: common.ObjectDigestWrapped})
		}
	}

	gasRef := gasRefs[0]
	var updatedGasRef common.ObjectRef
	var updatedGasOwner object.Owner
	if gasRef.ID == common.ZeroObjectId {
		updatedGasRef = gasRef
		updatedGasOwner = object.NewAddressOwner(common.ZeroAddress)
	} else {
		rec, ok := inner.Written[gasRef.ID]
		if !ok {
			panic(kerrors.NewInvariantViolation("gas object %s missing from written set at effects time", gasRef.ID))
		}
		updatedGasRef = rec.Ref
		updatedGasOwner = rec.Object.Owner
	}

	var eventsDigest *common.Digest
	if len(inner.Events) > 0 {
		d := digestEvents(inner.Events)
		eventsDigest = &d
	}

	effects := &TransactionEffects{
		ProtocolVersion:       t.protocolVersion,
		Status:                status,
		Epoch:                 epoch,
		GasUsed:               gasCostSummary,
		ModifiedAtVersions:    modifiedAtVersions,
		SharedObjects:         sharedObjectRefs,
		TransactionDigest:     transactionDigest,
		Created:               created,
		Mutated:               mutated,
		Unwrapped:             unwrapped,
		Deleted:               deletedRefs,
		UnwrappedThenDeleted:  unwrappedThenDeleted,
		Wrapped:               wrapped,
		UpdatedGasObjectRef:   updatedGasRef,
		UpdatedGasObjectOwner: updatedGasOwner,
		EventsDigest:          eventsDigest,
		Dependencies:          dependencies,
	}
	return inner, effects
}

// digestEvents derives a stable digest over the event log in emission
// order. Like object.computeDigest, this stands in for the real
// cryptographic hash function, an external collaborator out of scope here.
func digestEvents(events []event.Event) common.Digest {
	var d common.Digest
	h := uint64(14695981039346656037)
	const prime = uint64(1099511628211)
	mix := func(b byte) { h ^= uint64(b); h *= prime }
	mixBytes := func(bs []byte) {
		for _, b := range bs {
			mix(b)
		}
	}
	for _, e := range events {
		mix(byte(e.Kind))
		mixBytes(e.ObjectID[:])
		mixBytes(e.Sender[:])
		if e.Amount != nil {
			mixBytes(e.Amount.Bytes())
		}
	}
	for i := 0; i < 8; i++ {
		d[i] = byte(h >> (56 - 8*i))
	}
	return d
}
