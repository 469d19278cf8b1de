// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package backing

import (
	"os"

	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"
)

// badgerKV adapts dgraph-io/badger to KeyValueStore, the same shape the
// teacher's badgerDB wraps for its own Database interface.
type badgerKV struct {
	dir string
	db  *badger.DB
}

// OpenBadger opens (creating if necessary) a badger-backed KeyValueStore at
// dir.
func OpenBadger(dir string) (*badgerKV, error) {
	if fi, err := os.Stat(dir); err == nil {
		if !fi.IsDir() {
			return nil, errors.Errorf("backing: %s exists and is not a directory", dir)
		}
	} else if os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "creating backing dir %s", dir)
		}
	} else {
		return nil, errors.Wrapf(err, "checking backing dir %s", dir)
	}

	opts := badger.DefaultOptions
	opts.Dir = dir
	opts.ValueDir = dir

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening badger at %s", dir)
	}
	logger.Info("opened badger backing store", "dir", dir)
	return &badgerKV{dir: dir, db: db}, nil
}

func (b *badgerKV) Get(key []byte) ([]byte, error) {
	txn := b.db.NewTransaction(false)
	defer txn.Discard()

	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.Value()
}

func (b *badgerKV) Put(key, value []byte) error {
	txn := b.db.NewTransaction(true)
	defer txn.Discard()
	if err := txn.Set(key, value); err != nil {
		return err
	}
	return txn.Commit(nil)
}

func (b *badgerKV) Has(key []byte) (bool, error) {
	txn := b.db.NewTransaction(false)
	defer txn.Discard()
	_, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (b *badgerKV) Close() error {
	return b.db.Close()
}
