// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

// Package gas defines the gas-meter external-collaborator contract
// (spec.md §6 "Gas-meter contract") and a reference implementation used by
// tests and the demo CLI. The gas-pricing schedule itself is explicitly out
// of TempStore's scope (spec.md §1); this package only owns the arithmetic
// TempStore's gas-charging protocol (spec.md §4.4-§4.5) depends on.
package gas

import (
	"github.com/movevm/tempstore/kerrors"
	"github.com/movevm/tempstore/params"
)

// GasCostSummary is the final per-transaction gas accounting (spec.md §6).
type GasCostSummary struct {
	ComputationCost        uint64
	StorageCost             uint64
	StorageRebate           uint64
	NonRefundableStorageFee uint64
}

// GasUsed is the gross gas charged before any storage rebate is netted out.
func (g GasCostSummary) GasUsed() uint64 {
	return g.ComputationCost + g.StorageCost
}

// NetGasUsage nets the storage rebate against gas used; this is the amount
// recorded (negated) on the synthesized gas BalanceChange event (spec.md
// §4.6 step 2).
func (g GasCostSummary) NetGasUsage() int64 {
	return int64(g.GasUsed()) - int64(g.StorageRebate)
}

// SenderRebate is the portion of the storage rebate returned to the sender,
// after the storage-fund's basis-point share is withheld.
func (g GasCostSummary) SenderRebate(storageRebateRateBps uint64) uint64 {
	return g.StorageRebate * (params.BasisPointsDenominator - storageRebateRateBps) / params.BasisPointsDenominator
}

// StorageFundRebateInflow is the basis-point share of the storage rebate
// that flows back into the storage fund rather than to the sender
// (spec.md Glossary).
func (g GasCostSummary) StorageFundRebateInflow(storageRebateRateBps uint64) uint64 {
	return g.StorageRebate * storageRebateRateBps / params.BasisPointsDenominator
}

// Meter is the gas-meter contract TempStore charges against (spec.md §6).
type Meter interface {
	// ChargeStorageMutation charges rent for an object of newSize bytes,
	// crediting back priorRebate, and returns the new storage_rebate value
	// to stamp onto the object. Returns kerrors.ErrOutOfGas if the
	// remaining budget can't cover it; the meter's internal state still
	// mutates on failure (spec.md §9 design notes), so callers must call
	// ResetStorageCostAndRebate before retrying.
	ChargeStorageMutation(newSize uint64, priorRebate uint64) (newRebate uint64, err error)
	// ChargeComputationGasForStorageMutation charges computation gas
	// proportional to the bytes written/deleted this transaction.
	ChargeComputationGasForStorageMutation(bytes uint64) error
	// ResetStorageCostAndRebate undoes all ChargeStorageMutation calls made
	// since construction or the last reset, ahead of a recovery retry
	// (spec.md §4.4 reset). Computation gas charged through
	// ChargeComputationGasForStorageMutation is not undone.
	ResetStorageCostAndRebate()
	// Summary returns the final cost breakdown.
	Summary() GasCostSummary
	StorageRebate() uint64
	StorageGasUnits() uint64
}

// DeductGas applies gasUsed and rebate to a gas coin's balance: deducting
// gasUsed, crediting rebate. Mirrors gas::deduct_gas in the original
// (temporary_store.rs, charge_gas).
func DeductGas(balance uint64, gasUsed uint64, rebate uint64) (uint64, error) {
	if gasUsed > rebate {
		net := gasUsed - rebate
		if net > balance {
			return 0, kerrors.NewInvariantViolation("gas coin balance %d insufficient to cover net charge %d", balance, net)
		}
		return balance - net, nil
	}
	return balance + (rebate - gasUsed), nil
}
