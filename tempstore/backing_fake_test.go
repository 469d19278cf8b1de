// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package tempstore

import (
	"github.com/movevm/tempstore/common"
	"github.com/movevm/tempstore/object"
)

// fakeBackingStore is an in-memory BackingStore double used across this
// package's tests; it never needs to touch disk since every scenario below
// fits comfortably in an input snapshot.
type fakeBackingStore struct {
	objects map[common.ObjectId]*object.Object
	children map[common.ObjectId]map[common.ObjectId]*object.Object
	parentEntryRefs map[common.ObjectId]*common.ObjectRef
}

func newFakeBackingStore() *fakeBackingStore {
	return &fakeBackingStore{
		objects:         make(map[common.ObjectId]*object.Object),
		children:        make(map[common.ObjectId]map[common.ObjectId]*object.Object),
		parentEntryRefs: make(map[common.ObjectId]*common.ObjectRef),
	}
}

func (f *fakeBackingStore) GetObject(id common.ObjectId) (*object.Object, error) {
	return f.objects[id], nil
}

func (f *fakeBackingStore) GetPackage(id common.ObjectId) (*object.Object, error) {
	return f.objects[id], nil
}

func (f *fakeBackingStore) ReadChildObject(parent, child common.ObjectId) (*object.Object, error) {
	byParent, ok := f.children[parent]
	if !ok {
		return nil, nil
	}
	return byParent[child], nil
}

func (f *fakeBackingStore) GetLatestParentEntryRef(id common.ObjectId) (*common.ObjectRef, error) {
	return f.parentEntryRefs[id], nil
}

func (f *fakeBackingStore) GetModuleByID(packageID common.ObjectId, moduleName string) ([]byte, error) {
	pkg := f.objects[packageID]
	if pkg == nil || !pkg.IsPackage() {
		return nil, nil
	}
	return pkg.Data.Package.Modules[moduleName], nil
}
