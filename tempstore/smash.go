// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package tempstore

import (
	"github.com/movevm/tempstore/common"
	"github.com/movevm/tempstore/kerrors"
	"github.com/movevm/tempstore/object"
)

// SmashGas merges N gas coins into the first ("primary"), so that the
// transaction pays from a single coin (spec.md §4.3, Glossary "Gas
// smashing"). If only one coin was supplied it is returned unchanged.
func (t *TempStore) SmashGas(sender common.Address, gasRefs []common.ObjectRef) (common.ObjectRef, error) {
	if len(gasRefs) <= 1 {
		return gasRefs[0], nil
	}

	type coinObj struct {
		obj  *object.Object
		coin *object.Coin
	}
	coins := make([]coinObj, 0, len(gasRefs))
	for _, ref := range gasRefs {
		obj := t.Objects()[ref.ID]
		if obj == nil {
			return common.ObjectRef{}, kerrors.NewInvariantViolation("gas coin %s not found among inputs", ref.ID)
		}
		if obj.IsPackage() {
			return common.ObjectRef{}, kerrors.NewInvariantViolation("provided non-gas coin object as input for gas: %s", ref.ID)
		}
		coin, ok, err := object.TryExtractCoin(obj.Data.Move)
		if err != nil {
			return common.ObjectRef{}, kerrors.NewInvariantViolation("deserializing gas coin %s: %v", ref.ID, err)
		}
		if !ok {
			return common.ObjectRef{}, kerrors.NewInvariantViolation("provided non-gas coin object as input for gas: %s", ref.ID)
		}
		coins = append(coins, coinObj{obj: obj, coin: coin})
	}

	primary := coins[0]
	ctx := GasCtx(sender)
	for i := 1; i < len(coins); i++ {
		other := coins[i]
		if err := primary.coin.Add(other.coin.Balance); err != nil {
			return common.ObjectRef{}, err
		}
		t.DeleteObject(ctx, other.obj.ID, other.obj.Version, DeleteNormal)
	}

	newContents, err := primary.coin.ToBytes()
	if err != nil {
		return common.ObjectRef{}, kerrors.NewInvariantViolation("serializing gas coin %s: %v", primary.obj.ID, err)
	}

	primaryCopy := *primary.obj
	moveCopy := *primaryCopy.Data.Move
	moveCopy.Contents = newContents
	primaryCopy.Data.Move = &moveCopy

	t.WriteObject(ctx, &primaryCopy, WriteMutate)
	return gasRefs[0], nil
}
