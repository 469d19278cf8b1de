// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package tempstore

import (
	"github.com/movevm/tempstore/common"
	"github.com/movevm/tempstore/gas"
	"github.com/movevm/tempstore/kerrors"
	"github.com/movevm/tempstore/object"
)

// ensureActiveInputsMutated forces every authorised-mutable input that
// execution left untouched to be mutated anyway, bumping its version. This
// is required for safety: every mutable input must show up in Written or
// Deleted so its version strictly increases, preventing replay/double-spend
// across chains of transactions (spec.md §4.5 step 2, I2).
func (t *TempStore) ensureActiveInputsMutated(sender common.Address) {
	var toUpdate []*object.Object
	for _, ref := range t.mutableInputRefs {
		_, written := t.written[ref.ID]
		_, deleted := t.deleted[ref.ID]
		if !written && !deleted {
			toUpdate = append(toUpdate, t.inputObjects[ref.ID])
		}
	}
	for _, obj := range toUpdate {
		cp := *obj
		t.WriteObject(UnusedInputCtx(sender), &cp, WriteMutate)
	}
}

// chargeGasForStorageChanges computes storage gas and storage rebates for
// every mutated/created/deleted object in this pass (spec.md §4.5). It is
// atomic: if any charge fails, no object's storage_rebate is observably
// mutated (the "journal, then commit" staging described in §9).
func (t *TempStore) chargeGasForStorageChanges(sender common.Address, meter gas.Meter, gasObjectID common.ObjectId) (totalBytes uint64, err error) {
	if _, ok := t.written[gasObjectID]; !ok {
		gasObject := t.ReadObject(gasObjectID)
		if gasObject == nil {
			return 0, kerrors.NewInvariantViolation("gas object %s missing from store", gasObjectID)
		}
		t.written[gasObjectID] = writtenEntry{ctx: GasCtx(sender), obj: gasObject, kind: WriteMutate}
	}
	t.ensureActiveInputsMutated(sender)

	type staged struct {
		id   common.ObjectId
		ctx  Ctx
		obj  *object.Object
		kind WriteKind
	}
	var toCommit []staged

	for id, entry := range t.written {
		priorSize, priorRebate := uint64(0), uint64(0)
		if old, ok := t.inputObjects[id]; ok {
			priorSize = old.ObjectSizeForGasMetering()
			priorRebate = old.StorageRebate
		}
		newSize := entry.obj.ObjectSizeForGasMetering()
		newRebate, chargeErr := meter.ChargeStorageMutation(newSize, priorRebate)
		if chargeErr != nil {
			return 0, chargeErr
		}

		updated := *entry.obj
		updated.StorageRebate = newRebate
		if !updated.IsImmutable() {
			toCommit = append(toCommit, staged{id: id, ctx: entry.ctx, obj: &updated, kind: entry.kind})
		}
		totalBytes += priorSize + newSize
	}

	for id := range t.deleted {
		if old, ok := t.inputObjects[id]; ok {
			if _, chargeErr := meter.ChargeStorageMutation(0, old.StorageRebate); chargeErr != nil {
				return 0, chargeErr
			}
			totalBytes += old.ObjectSizeForGasMetering()
		}
		// Ids not present in inputs were wrapped then deleted; their rebate
		// was already credited when the wrapper object mutated.
	}

	// Only after every charge above succeeded do we write the staged
	// objects back, so a mid-pass failure leaves the store untouched.
	for _, s := range toCommit {
		t.WriteObject(s.ctx, s.obj, s.kind)
	}
	return totalBytes, nil
}

// reset returns the store to the state immediately after gas smashing:
// drops all writes/deletes/events, undoes storage charging on the meter,
// then re-smashes gas (spec.md §4.4 reset). Gas smashing cannot fail here
// because it already succeeded once on this same gasRefs.
func (t *TempStore) reset(sender common.Address, gasRefs []common.ObjectRef, meter gas.Meter) {
	t.DropWrites()
	meter.ResetStorageCostAndRebate()
	if _, err := t.SmashGas(sender, gasRefs); err != nil {
		panic(kerrors.NewInvariantViolation("gas smashing failed on retry, but it already succeeded once: %v", err))
	}
}

// ChargeGas implements the two-phase metered commit with OOG recovery
// (spec.md §4.4). executionErr is the in/out execution result: on entry, a
// non-nil value indicates execution aborted and must be rolled back before
// storage is charged; on exit, it may have been overwritten with an OOG
// error if storage charging itself ran out of gas.
func (t *TempStore) ChargeGas(sender common.Address, gasObjectID common.ObjectId, meter gas.Meter, executionErr error, gasRefs []common.ObjectRef) error {
	if meter.StorageRebate() != 0 || meter.StorageGasUnits() != 0 {
		panic(kerrors.NewInvariantViolation("charge_gas called with non-zero storage rebate/units already present"))
	}

	if executionErr != nil {
		t.reset(sender, gasRefs, meter)
	}

	chargeOnce := func() error {
		totalBytes, err := t.chargeGasForStorageChanges(sender, meter, gasObjectID)
		if err != nil {
			return err
		}
		return meter.ChargeComputationGasForStorageMutation(totalBytes)
	}

	if err := chargeOnce(); err != nil {
		t.reset(sender, gasRefs, meter)
		if retryErr := chargeOnce(); retryErr != nil {
			logger.Debug("out of gas while charging for gas smashing", "err", retryErr)
		}
		if executionErr == nil {
			executionErr = err
		}
	}

	summary := meter.Summary()
	gasUsed := summary.GasUsed()

	gasObject := t.ReadObject(gasObjectID)
	if gasObject == nil {
		panic(kerrors.NewInvariantViolation("gas object %s missing after charging", gasObjectID))
	}
	coin, ok, err := object.TryExtractCoin(gasObject.Data.Move)
	if err != nil || !ok {
		panic(kerrors.NewInvariantViolation("gas object %s is not a coin: %v", gasObjectID, err))
	}
	newBalance, err := gas.DeductGas(coin.Balance, gasUsed, summary.SenderRebate(t.storageRebateRate))
	if err != nil {
		panic(err)
	}
	newContents, err := (&object.Coin{Balance: newBalance}).ToBytes()
	if err != nil {
		panic(kerrors.NewInvariantViolation("serializing gas coin %s: %v", gasObjectID, err))
	}

	updated := *gasObject
	moveCopy := *updated.Data.Move
	moveCopy.Contents = newContents
	updated.Data.Move = &moveCopy

	ctx := GasCtx(sender)
	if w, ok := t.written[gasObjectID]; ok {
		ctx = w.ctx
	}
	t.WriteObject(ctx, &updated, WriteMutate)
	t.gasCharged = &GasCharged{Sender: sender, GasObjectID: gasObjectID, Summary: summary}

	return executionErr
}
