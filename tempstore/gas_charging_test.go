// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package tempstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movevm/tempstore/common"
	"github.com/movevm/tempstore/gas"
	"github.com/movevm/tempstore/object"
)

func TestChargeGas_SuccessDeductsBalanceAndRecordsSummary(t *testing.T) {
	gasCoin := newTestCoin(t, common.ObjectId{0x01}, testSender, 10_000, 1)
	ts := New(newFakeBackingStore(), []*object.Object{gasCoin}, []common.ObjectRef{{ID: gasCoin.ID, Version: gasCoin.Version}}, common.TxDigest{}, 9000, 1)

	meter := gas.NewSimpleMeter(1_000_000, 1, 1)
	gasRefs := []common.ObjectRef{{ID: gasCoin.ID, Version: gasCoin.Version}}

	err := ts.ChargeGas(testSender, gasCoin.ID, meter, nil, gasRefs)
	require.NoError(t, err)

	updated := ts.ReadObject(gasCoin.ID)
	require.NotNil(t, updated)
	assert.Less(t, coinBalanceOf(t, updated), uint64(10_000))
	require.NotNil(t, ts.gasCharged)
	assert.Equal(t, gasCoin.ID, ts.gasCharged.GasObjectID)
}

func TestChargeGas_ExecutionErrorTriggersResetButPropagates(t *testing.T) {
	gasCoin := newTestCoin(t, common.ObjectId{0x01}, testSender, 10_000, 1)
	staleWrite := newTestCoin(t, common.ObjectId{0x02}, testSender, 5, 1)
	ts := New(newFakeBackingStore(), []*object.Object{gasCoin, staleWrite}, []common.ObjectRef{{ID: gasCoin.ID, Version: gasCoin.Version}}, common.TxDigest{}, 9000, 1)
	ts.WriteObject(GasCtx(testSender), staleWrite, WriteMutate)

	meter := gas.NewSimpleMeter(1_000_000, 1, 1)
	gasRefs := []common.ObjectRef{{ID: gasCoin.ID, Version: gasCoin.Version}}
	execErr := errors.New("move abort")

	err := ts.ChargeGas(testSender, gasCoin.ID, meter, execErr, gasRefs)
	assert.Same(t, execErr, err)

	// reset() drops the pre-existing write; only the gas coin remains written.
	assert.NotContains(t, ts.written, staleWrite.ID)
	assert.Contains(t, ts.written, gasCoin.ID)
}

func TestChargeGas_OutOfGasDuringStorageChargingRecoversAndPropagatesFirstError(t *testing.T) {
	gasCoin := newTestCoin(t, common.ObjectId{0x01}, testSender, 10_000, 1)
	expensive := newTestCoin(t, common.ObjectId{0x02}, testSender, 5, 1)
	ts := New(newFakeBackingStore(), []*object.Object{gasCoin, expensive}, []common.ObjectRef{
		{ID: gasCoin.ID, Version: gasCoin.Version},
		{ID: expensive.ID, Version: expensive.Version},
	}, common.TxDigest{}, 9000, 1)
	ts.WriteObject(GasCtx(testSender), expensive, WriteMutate)

	// A budget of 80 at 1000 per byte covers no object's storage charge, not
	// even the gas coin's, so the first pass fails, reset() drops the write
	// of the second object, and the retry over the gas coin alone fails too.
	meter := gas.NewSimpleMeter(80, 1000, 1)
	gasRefs := []common.ObjectRef{{ID: gasCoin.ID, Version: gasCoin.Version}}

	err := ts.ChargeGas(testSender, gasCoin.ID, meter, nil, gasRefs)
	assert.Error(t, err)
}

func TestChargeGas_PanicsOnNonZeroMeterPrecondition(t *testing.T) {
	gasCoin := newTestCoin(t, common.ObjectId{0x01}, testSender, 10_000, 1)
	ts := New(newFakeBackingStore(), []*object.Object{gasCoin}, nil, common.TxDigest{}, 9000, 1)

	meter := gas.NewSimpleMeter(1000, 1, 1)
	_, err := meter.ChargeStorageMutation(10, 5)
	require.NoError(t, err)

	gasRefs := []common.ObjectRef{{ID: gasCoin.ID, Version: gasCoin.Version}}
	assert.Panics(t, func() { ts.ChargeGas(testSender, gasCoin.ID, meter, nil, gasRefs) })
}
