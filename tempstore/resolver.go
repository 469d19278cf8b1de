// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package tempstore

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/movevm/tempstore/common"
	"github.com/movevm/tempstore/kerrors"
	"github.com/movevm/tempstore/object"
)

// moduleCacheSize bounds the resolver's compiled-module cache; modules are
// immutable once published so a simple LRU is safe to share across calls.
const moduleCacheSize = 512

// moduleCache memoises GetModuleByID lookups so that repeatedly resolving
// the same package's modules during one execution doesn't re-walk the
// package's module map each time (spec.md §4.9).
type moduleCache struct {
	cache *lru.Cache
}

func newModuleCache() *moduleCache {
	c, err := lru.New(moduleCacheSize)
	if err != nil {
		panic(kerrors.NewInvariantViolation("constructing module cache: %v", err))
	}
	return &moduleCache{cache: c}
}

type moduleCacheKey struct {
	pkg  common.ObjectId
	name string
}

// ReadChildObject resolves a dynamic-field child object: a pending write
// wins, otherwise the backing store answers (spec.md §4.9). Reading a
// deleted child is a programmer error (I5) and panics.
func (t *TempStore) ReadChildObject(parent, child common.ObjectId) (*object.Object, error) {
	if _, isDeleted := t.deleted[child]; isDeleted {
		panic(kerrors.NewInvariantViolation("read_child_object after delete: %s", child))
	}
	if w, ok := t.written[child]; ok {
		return w.obj, nil
	}
	return t.backing.ReadChildObject(parent, child)
}

// GetModule resolves a compiled module by packageID and moduleName,
// preferring a package this transaction itself wrote over the backing store
// (spec.md §4.9).
func (t *TempStore) GetModule(packageID common.ObjectId, moduleName string) ([]byte, error) {
	if t.moduleCache == nil {
		t.moduleCache = newModuleCache()
	}
	key := moduleCacheKey{pkg: packageID, name: moduleName}
	if cached, ok := t.moduleCache.cache.Get(key); ok {
		return cached.([]byte), nil
	}

	pkg := t.ReadObject(packageID)
	var code []byte
	if pkg != nil {
		if !pkg.IsPackage() {
			return nil, kerrors.NewInvariantViolation("object %s is not a package", packageID)
		}
		code = pkg.Data.Package.Modules[moduleName]
	} else {
		raw, err := t.backing.GetModuleByID(packageID, moduleName)
		if err != nil {
			return nil, err
		}
		code = raw
	}
	if code != nil {
		t.moduleCache.cache.Add(key, code)
	}
	return code, nil
}

// GetResource resolves a Move resource's raw contents by treating address as
// an object id (spec.md §4.9). Reading a mutable object this transaction did
// not declare as an input is a programmer error: only immutable objects may
// be resolved out-of-band.
func (t *TempStore) GetResource(address common.Address, structTag string) ([]byte, error) {
	id := common.ObjectIdFromAddress(address)
	obj := t.ReadObject(id)
	if obj == nil {
		return nil, nil
	}
	if !obj.IsImmutable() {
		if _, isInput := t.inputObjects[id]; !isInput {
			panic(kerrors.NewInvariantViolation("get_resource on non-immutable object not declared as an input: %s", id))
		}
	}
	if obj.IsPackage() {
		panic(kerrors.NewInvariantViolation("get_resource requested a package object: %s", id))
	}
	if obj.Data.Move.TypeTag != structTag {
		panic(kerrors.NewInvariantViolation("ill-typed resource request for %s: have %s, want %s", id, obj.Data.Move.TypeTag, structTag))
	}
	return obj.Data.Move.Contents, nil
}

// GetLatestParentEntryRef always delegates to the backing store: TempStore
// never tracks parent-entry bookkeeping itself (spec.md §4.9).
func (t *TempStore) GetLatestParentEntryRef(id common.ObjectId) (*common.ObjectRef, error) {
	return t.backing.GetLatestParentEntryRef(id)
}
