// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

// Package backing provides BackingStore implementations over real
// key-value engines, mirroring the teacher's storage/database layer: one
// narrow KeyValueStore contract, with interchangeable badger and leveldb
// engines underneath (spec.md §6 "Backing-store contract").
package backing

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/movevm/tempstore/common"
	"github.com/movevm/tempstore/log"
	"github.com/movevm/tempstore/object"
)

var logger = log.NewModuleLogger(log.StorageBacking)

// ErrNotFound is returned by the underlying engine when a key is absent;
// Store translates it into the (nil, nil) "not found" convention the
// BackingStore contract expects.
var ErrNotFound = errors.New("backing: key not found")

// KeyValueStore is the minimal byte-oriented contract both engines satisfy.
type KeyValueStore interface {
	Get(key []byte) ([]byte, error)
	Put(key []byte, value []byte) error
	Has(key []byte) (bool, error)
	Close() error
}

const (
	objectPrefix       = 'o'
	parentEntryPrefix  = 'p'
	childObjectPrefix  = 'c'
)

// Store is a tempstore.BackingStore built on any KeyValueStore, encoding
// objects with the same RLP codec TempStore uses for gas coins.
type Store struct {
	kv KeyValueStore
}

// New wraps an already-opened engine as a BackingStore.
func New(kv KeyValueStore) *Store {
	return &Store{kv: kv}
}

func objectKey(id common.ObjectId) []byte {
	key := make([]byte, 0, 1+len(id))
	key = append(key, objectPrefix)
	return append(key, id[:]...)
}

func childKey(parent, child common.ObjectId) []byte {
	key := make([]byte, 0, 1+len(parent)+len(child))
	key = append(key, childObjectPrefix)
	key = append(key, parent[:]...)
	return append(key, child[:]...)
}

func parentEntryKey(id common.ObjectId) []byte {
	key := make([]byte, 0, 1+len(id))
	key = append(key, parentEntryPrefix)
	return append(key, id[:]...)
}

func (s *Store) getObject(key []byte) (*object.Object, error) {
	raw, err := s.kv.Get(key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var obj object.Object
	if err := rlp.DecodeBytes(raw, &obj); err != nil {
		return nil, errors.Wrap(err, "decoding object")
	}
	return &obj, nil
}

// PutObject persists an object under its id, for test fixtures and engine
// seeding; TempStore itself never writes through to the backing store.
func (s *Store) PutObject(obj *object.Object) error {
	raw, err := rlp.EncodeToBytes(obj)
	if err != nil {
		return errors.Wrap(err, "encoding object")
	}
	return s.kv.Put(objectKey(obj.ID), raw)
}

// PutChildObject indexes obj as a dynamic-field child of parent.
func (s *Store) PutChildObject(parent common.ObjectId, obj *object.Object) error {
	raw, err := rlp.EncodeToBytes(obj)
	if err != nil {
		return errors.Wrap(err, "encoding child object")
	}
	return s.kv.Put(childKey(parent, obj.ID), raw)
}

// PutParentEntryRef records id's latest parent-sync reference.
func (s *Store) PutParentEntryRef(id common.ObjectId, ref common.ObjectRef) error {
	raw, err := rlp.EncodeToBytes(ref)
	if err != nil {
		return errors.Wrap(err, "encoding parent entry ref")
	}
	return s.kv.Put(parentEntryKey(id), raw)
}

// GetObject implements tempstore.BackingStore.
func (s *Store) GetObject(id common.ObjectId) (*object.Object, error) {
	return s.getObject(objectKey(id))
}

// GetPackage implements tempstore.BackingStore.
func (s *Store) GetPackage(id common.ObjectId) (*object.Object, error) {
	obj, err := s.getObject(objectKey(id))
	if err != nil || obj == nil {
		return obj, err
	}
	if !obj.IsPackage() {
		return nil, errors.Errorf("object %s is not a package", id)
	}
	return obj, nil
}

// ReadChildObject implements tempstore.BackingStore.
func (s *Store) ReadChildObject(parent, child common.ObjectId) (*object.Object, error) {
	return s.getObject(childKey(parent, child))
}

// GetLatestParentEntryRef implements tempstore.BackingStore.
func (s *Store) GetLatestParentEntryRef(id common.ObjectId) (*common.ObjectRef, error) {
	raw, err := s.kv.Get(parentEntryKey(id))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ref common.ObjectRef
	if err := rlp.DecodeBytes(raw, &ref); err != nil {
		return nil, errors.Wrap(err, "decoding parent entry ref")
	}
	return &ref, nil
}

// GetModuleByID implements tempstore.BackingStore: it loads the package
// object and returns the named module's compiled bytes.
func (s *Store) GetModuleByID(packageID common.ObjectId, moduleName string) ([]byte, error) {
	pkg, err := s.GetPackage(packageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, nil
	}
	return pkg.Data.Package.Modules[moduleName], nil
}

// Close releases the underlying engine.
func (s *Store) Close() error {
	logger.Info("closing backing store")
	return s.kv.Close()
}
