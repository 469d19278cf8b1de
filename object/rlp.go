// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package object

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/movevm/tempstore/common"
)

// rlpObject is the wire shape Object is encoded as: RLP has no tagged-union
// support, so Data is flattened into a single struct with a kind
// discriminant, mirroring how the teacher's own wire-format shadow structs
// flatten Go interfaces for encoding.
type rlpObject struct {
	ID   common.ObjectId
	Kind uint8 // DataKind

	MoveTypeTag  string
	MoveContents []byte

	PackageModuleNames []string
	PackageModuleCodes [][]byte
	PackageVersion     uint64
	PackageDigest      common.Digest

	OwnerKind                 uint8
	OwnerAddress               common.Address
	OwnerObjectID              common.ObjectId
	OwnerInitialSharedVersion uint64

	Version             uint64
	StorageRebate       uint64
	PreviousTransaction common.TxDigest
}

// EncodeRLP implements rlp.Encoder so Object can be stored directly in an
// RLP-backed key-value store.
func (o *Object) EncodeRLP(w io.Writer) error {
	wire := rlpObject{
		ID:                        o.ID,
		Kind:                      uint8(o.Data.Kind),
		OwnerKind:                 uint8(o.Owner.Kind),
		OwnerAddress:              o.Owner.Address,
		OwnerObjectID:             o.Owner.ObjectID,
		OwnerInitialSharedVersion: uint64(o.Owner.InitialSharedVersion),
		Version:                   uint64(o.Version),
		StorageRebate:             o.StorageRebate,
		PreviousTransaction:       o.PreviousTransaction,
	}
	if o.Data.Kind == DataMove {
		wire.MoveTypeTag = o.Data.Move.TypeTag
		wire.MoveContents = o.Data.Move.Contents
	} else {
		wire.PackageVersion = uint64(o.Data.Package.Version)
		wire.PackageDigest = o.Data.Package.Digest
		for name, code := range o.Data.Package.Modules {
			wire.PackageModuleNames = append(wire.PackageModuleNames, name)
			wire.PackageModuleCodes = append(wire.PackageModuleCodes, code)
		}
	}
	return rlp.Encode(w, &wire)
}

// DecodeRLP implements rlp.Decoder, the inverse of EncodeRLP.
func (o *Object) DecodeRLP(s *rlp.Stream) error {
	var wire rlpObject
	if err := s.Decode(&wire); err != nil {
		return err
	}

	o.ID = wire.ID
	o.Owner = Owner{
		Kind:                 OwnerKind(wire.OwnerKind),
		Address:              wire.OwnerAddress,
		ObjectID:             wire.OwnerObjectID,
		InitialSharedVersion: common.SequenceNumber(wire.OwnerInitialSharedVersion),
	}
	o.Version = common.SequenceNumber(wire.Version)
	o.StorageRebate = wire.StorageRebate
	o.PreviousTransaction = wire.PreviousTransaction

	o.Data.Kind = DataKind(wire.Kind)
	if o.Data.Kind == DataMove {
		o.Data.Move = &MoveObject{TypeTag: wire.MoveTypeTag, Contents: wire.MoveContents}
	} else {
		modules := make(map[string][]byte, len(wire.PackageModuleNames))
		for i, name := range wire.PackageModuleNames {
			modules[name] = wire.PackageModuleCodes[i]
		}
		o.Data.Package = &Package{
			Modules: modules,
			Version: common.SequenceNumber(wire.PackageVersion),
			Digest:  wire.PackageDigest,
		}
	}
	return nil
}
