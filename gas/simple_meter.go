// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package gas

import "github.com/movevm/tempstore/kerrors"

// SimpleMeter is a reference Meter implementation: a fixed per-byte storage
// price and per-byte computation price, charged against a fixed budget.
// It exists to exercise TempStore's charging protocol in tests and in the
// demo CLI; real pricing policy is an external collaborator (spec.md §1).
type SimpleMeter struct {
	budget          uint64
	storagePrice    uint64
	computationRate uint64

	computationCost uint64
	storageCost     uint64
	storageRebate   uint64
	storageGasUnits uint64
}

// NewSimpleMeter constructs a meter with the given remaining gas budget and
// per-byte prices.
func NewSimpleMeter(budget, storagePricePerByte, computationPricePerByte uint64) *SimpleMeter {
	return &SimpleMeter{budget: budget, storagePrice: storagePricePerByte, computationRate: computationPricePerByte}
}

func (m *SimpleMeter) spend(amount uint64) error {
	if amount > m.budget {
		return kerrors.ErrOutOfGas
	}
	m.budget -= amount
	return nil
}

func (m *SimpleMeter) ChargeStorageMutation(newSize uint64, priorRebate uint64) (uint64, error) {
	cost := newSize * m.storagePrice
	if err := m.spend(cost); err != nil {
		return 0, err
	}
	m.storageCost += cost
	m.storageRebate += priorRebate
	m.storageGasUnits += newSize
	return cost, nil
}

func (m *SimpleMeter) ChargeComputationGasForStorageMutation(bytes uint64) error {
	cost := bytes * m.computationRate
	if err := m.spend(cost); err != nil {
		return err
	}
	m.computationCost += cost
	return nil
}

func (m *SimpleMeter) ResetStorageCostAndRebate() {
	m.budget += m.storageCost
	m.storageCost = 0
	m.storageRebate = 0
	m.storageGasUnits = 0
}

func (m *SimpleMeter) Summary() GasCostSummary {
	return GasCostSummary{
		ComputationCost: m.computationCost,
		StorageCost:     m.storageCost,
		StorageRebate:   m.storageRebate,
	}
}

func (m *SimpleMeter) StorageRebate() uint64   { return m.storageRebate }
func (m *SimpleMeter) StorageGasUnits() uint64 { return m.storageGasUnits }

// RemainingBudget exposes what's left, used by tests asserting on OOG
// recovery (spec.md §8 scenario 5).
func (m *SimpleMeter) RemainingBudget() uint64 { return m.budget }
