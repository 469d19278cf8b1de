// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package tempstore

import (
	"github.com/movevm/tempstore/common"
	"github.com/movevm/tempstore/object"
)

// WriteKind discriminates why an object appears in the written map
// (spec.md §3).
type WriteKind int

const (
	WriteCreate WriteKind = iota
	WriteMutate
	WriteUnwrap
)

// DeleteKind discriminates why an object appears in the deleted map
// (spec.md §3).
type DeleteKind int

const (
	DeleteNormal DeleteKind = iota
	DeleteWrap
	DeleteUnwrapThenDelete
)

// writtenEntry is the value type backing the Written map.
type writtenEntry struct {
	ctx  Ctx
	obj  *object.Object
	kind WriteKind
}

// deletedEntry is the value type backing the Deleted map.
type deletedEntry struct {
	ctx     Ctx
	version common.SequenceNumber
	kind    DeleteKind
}
