// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package tempstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/movevm/tempstore/common"
	"github.com/movevm/tempstore/object"
)

const testCoinType = object.GasCoinTypePrefix + "0x2::sui::SUI>"

func newTestCoin(t *testing.T, id common.ObjectId, owner common.Address, balance uint64, version common.SequenceNumber) *object.Object {
	t.Helper()
	contents, err := (&object.Coin{Balance: balance}).ToBytes()
	require.NoError(t, err)
	return &object.Object{
		ID:      id,
		Data:    object.Data{Kind: object.DataMove, Move: &object.MoveObject{TypeTag: testCoinType, Contents: contents}},
		Owner:   object.NewAddressOwner(owner),
		Version: version,
	}
}

func coinBalanceOf(t *testing.T, obj *object.Object) uint64 {
	t.Helper()
	coin, ok, err := object.TryExtractCoin(obj.Data.Move)
	require.NoError(t, err)
	require.True(t, ok)
	return coin.Balance
}
