// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

// Package params carries the protocol-level configuration captured by a
// TempStore at construction time: the storage rebate rate and protocol
// version (spec.md §6 "Protocol-config inputs"). It follows the teacher's
// gen_config.go convention of a TOML-marshalable config struct
// (node/cn/gen_config.go) loaded with github.com/naoina/toml
// (cmd/utils/nodecmd/dumpconfigcmd.go).
package params

import (
	"io/ioutil"

	"github.com/naoina/toml"
)

// BasisPointsDenominator is the denominator storage_rebate_rate and other
// basis-point rates are expressed against (10000 = 100%).
const BasisPointsDenominator = 10000

// ProtocolConfig is the subset of protocol configuration TempStore consumes.
type ProtocolConfig struct {
	// StorageRebateRate is the basis-point share of a freed object's storage
	// rebate that flows back to the storage fund; the remainder is returned
	// to the sender (gas.GasCostSummary.SenderRebate/StorageFundRebateInflow).
	StorageRebateRate uint64
	// Version is the executing protocol version, recorded on effects.
	Version uint64
}

// DefaultProtocolConfig uses a storage rebate rate of 9000 basis points:
// 90% of the storage rebate returns to the storage fund, 10% to the sender.
func DefaultProtocolConfig() *ProtocolConfig {
	return &ProtocolConfig{StorageRebateRate: 9000, Version: 1}
}

// LoadProtocolConfig reads a TOML-encoded ProtocolConfig from path, in the
// style of the teacher's loadConfig (cmd/utils/nodecmd/dumpconfigcmd.go).
func LoadProtocolConfig(path string) (*ProtocolConfig, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultProtocolConfig()
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
