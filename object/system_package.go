// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package object

import "github.com/movevm/tempstore/common"

// systemPackageLastByte enumerates the reserved low object ids that denote
// framework packages (the analogue of Sui's 0x1/0x2/0x3 system packages).
// Only these may be mutated in place by a zero-sender system transaction
// (spec.md §4.6.1, create_written_events Publish-on-mutate case).
var systemPackageLastByte = map[byte]bool{0x01: true, 0x02: true, 0x03: true}

// IsSystemPackage reports whether id is one of the reserved framework
// package ids.
func IsSystemPackage(id common.ObjectId) bool {
	for i := 0; i < len(id)-1; i++ {
		if id[i] != 0 {
			return false
		}
	}
	return systemPackageLastByte[id[len(id)-1]]
}
