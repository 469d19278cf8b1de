// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package tempstore

import "github.com/movevm/tempstore/common"

// Ctx (SingleTxContext, spec.md §3) attributes a write or delete to the
// sender, package, and module that caused it. Writes/deletes the engine
// itself drives (gas smashing, forced-mutation-of-unused-inputs) use the
// synthetic constructors below rather than a module's real attribution.
type Ctx struct {
	Sender            common.Address
	PackageID         common.ObjectId
	TransactionModule string
}

// GasCtx attributes a write/delete to the engine's gas-handling machinery
// (smash_gas, charge_gas), matching SingleTxContext::gas in the original.
func GasCtx(sender common.Address) Ctx {
	return Ctx{Sender: sender, PackageID: common.ZeroObjectId, TransactionModule: "gas"}
}

// UnusedInputCtx attributes a forced-mutation write to the bookkeeping pass
// that ensures every mutable input is accounted for (ensure_active_inputs_mutated),
// matching SingleTxContext::unused_input.
func UnusedInputCtx(sender common.Address) Ctx {
	return Ctx{Sender: sender, PackageID: common.ZeroObjectId, TransactionModule: "unused_input"}
}
