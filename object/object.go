// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

// Package object models the on-chain object the store mutates: its data
// (a Move value or a package), its owner, its version, and the bookkeeping
// fields (storage rebate, previous transaction) TempStore maintains.
package object

import (
	"bytes"
	"sort"

	"github.com/movevm/tempstore/common"
)

// DataKind discriminates the Data tagged union (spec.md §2.2).
type DataKind int

const (
	DataMove DataKind = iota
	DataPackage
)

// MoveObject is the runtime value of a Move struct instance: its fully
// qualified type and its BCS/RLP-encoded contents.
type MoveObject struct {
	TypeTag  string
	Contents []byte
}

func (m *MoveObject) equal(other *MoveObject) bool {
	return m.TypeTag == other.TypeTag && bytes.Equal(m.Contents, other.Contents)
}

// Package is a Move package: its compiled module map and its own version,
// which (unlike Move objects) is not stamped by the Lamport timestamp.
type Package struct {
	Modules map[string][]byte
	Version common.SequenceNumber
	Digest  common.Digest
}

func (p *Package) equal(other *Package) bool {
	if len(p.Modules) != len(other.Modules) {
		return false
	}
	for name, code := range p.Modules {
		oc, ok := other.Modules[name]
		if !ok || !bytes.Equal(code, oc) {
			return false
		}
	}
	return true
}

// Data is the tagged union of what an Object can hold.
type Data struct {
	Kind    DataKind
	Move    *MoveObject
	Package *Package
}

// Equal reports whether two Data values hold the same Move value (type tag
// and contents) or the same package module map, used by event synthesis to
// detect real mutation of object contents (spec.md §4.6.1, "old.data !=
// new.data"). A package's Version and Digest are not compared.
func (d Data) Equal(other Data) bool {
	if d.Kind != other.Kind {
		return false
	}
	if d.Kind == DataMove {
		return d.Move.equal(other.Move)
	}
	return d.Package.equal(other.Package)
}

// StructTag returns the Move type of a Move object. ok is false for packages.
func (d Data) StructTag() (tag string, ok bool) {
	if d.Kind != DataMove {
		return "", false
	}
	return d.Move.TypeTag, true
}

// Object is the core unit TempStore reads, writes and deletes.
type Object struct {
	ID                  common.ObjectId
	Data                Data
	Owner               Owner
	Version             common.SequenceNumber
	StorageRebate       uint64
	PreviousTransaction common.TxDigest
}

// IsPackage reports whether the object holds a Move package rather than a
// Move value.
func (o *Object) IsPackage() bool { return o.Data.Kind == DataPackage }

// IsImmutable reports whether the object is owned immutably (I7: never
// written or deleted by user code).
func (o *Object) IsImmutable() bool { return o.Owner.Kind == OwnerImmutable }

// StructTag returns the Move type of the object's contents, if any.
func (o *Object) StructTag() (string, bool) { return o.Data.StructTag() }

// ComputeObjectReference returns the (id, version, digest) tuple used as the
// key of the output written map (spec.md §4.6 step 3).
func (o *Object) ComputeObjectReference() common.ObjectRef {
	return common.ObjectRef{ID: o.ID, Version: o.currentVersion(), Digest: o.computeDigest()}
}

func (o *Object) currentVersion() common.SequenceNumber {
	if o.IsPackage() {
		return o.Data.Package.Version
	}
	return o.Version
}

// computeDigest derives a content digest. The cryptographic digest function
// itself is an external collaborator (spec.md §1); this is a stable,
// deterministic stand-in suitable for tests and for the digest carried on
// ObjectRef/Publish events.
func (o *Object) computeDigest() common.Digest {
	var d common.Digest
	h := fnvHash(o.ID[:])
	h = fnvHashAppend(h, o.Owner.Address[:])
	h = fnvHashAppend(h, o.Owner.ObjectID[:])
	if o.IsPackage() {
		names := make([]string, 0, len(o.Data.Package.Modules))
		for name := range o.Data.Package.Modules {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			h = fnvHashAppend(h, []byte(name))
			h = fnvHashAppend(h, o.Data.Package.Modules[name])
		}
	} else {
		h = fnvHashAppend(h, []byte(o.Data.Move.TypeTag))
		h = fnvHashAppend(h, o.Data.Move.Contents)
	}
	putUint64(d[:8], h)
	putUint64(d[8:16], o.currentVersionAsUint())
	return d
}

func (o *Object) currentVersionAsUint() uint64 { return uint64(o.currentVersion()) }

// ObjectSizeForGasMetering is the byte size the gas meter charges storage
// rent against (spec.md §4.5).
func (o *Object) ObjectSizeForGasMetering() uint64 {
	const overhead = 64 // owner + version + rebate + prev-tx bookkeeping
	if o.IsPackage() {
		size := uint64(overhead)
		for name, code := range o.Data.Package.Modules {
			size += uint64(len(name) + len(code))
		}
		return size
	}
	return uint64(overhead + len(o.Data.Move.TypeTag) + len(o.Data.Move.Contents))
}

// GetTotalSui returns the amount of SUI (or the chain's native coin) held
// directly by this object: its balance if it is a coin, 0 otherwise. This
// implements the simplified, non-dynamic-field accounting check_sui_conserved
// relies on (spec.md §4.8); dynamic-field nesting is explicitly out of scope
// there too ("the correct accounting for dynamic fields is an open design
// question").
func (o *Object) GetTotalSui() (uint64, error) {
	if o.IsPackage() {
		return 0, nil
	}
	coin, ok, err := TryExtractCoin(o.Data.Move)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return coin.Balance, nil
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (56 - 8*i))
	}
}

func fnvHash(data []byte) uint64 {
	return fnvHashAppend(fnvOffset, data)
}

const fnvOffset uint64 = 14695981039346656037
const fnvPrime uint64 = 1099511628211

func fnvHashAppend(h uint64, data []byte) uint64 {
	for _, b := range data {
		h ^= uint64(b)
		h *= fnvPrime
	}
	return h
}
