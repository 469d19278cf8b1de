// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package gas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGasCostSummary_NetGasUsage(t *testing.T) {
	s := GasCostSummary{ComputationCost: 100, StorageCost: 50, StorageRebate: 30}
	assert.Equal(t, int64(120), s.NetGasUsage())
}

func TestGasCostSummary_SenderRebate(t *testing.T) {
	s := GasCostSummary{StorageRebate: 10000}
	assert.Equal(t, uint64(9100), s.SenderRebate(900)) // 91% returned to sender
}

func TestGasCostSummary_StorageFundRebateInflow(t *testing.T) {
	s := GasCostSummary{StorageRebate: 10000}
	assert.Equal(t, uint64(900), s.StorageFundRebateInflow(900))
}

func TestDeductGas_NetCharge(t *testing.T) {
	balance, err := DeductGas(1000, 300, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(800), balance)
}

func TestDeductGas_NetCredit(t *testing.T) {
	balance, err := DeductGas(1000, 100, 300)
	require.NoError(t, err)
	assert.Equal(t, uint64(1200), balance)
}

func TestDeductGas_InsufficientBalance(t *testing.T) {
	_, err := DeductGas(10, 300, 100)
	assert.Error(t, err)
}
