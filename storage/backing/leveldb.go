// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

package backing

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
)

// levelDBKV adapts syndtr/goleveldb to KeyValueStore, mirroring the
// teacher's levelDB wrapper minus the metrics plumbing (spec.md Non-goals
// explicitly exclude an observability layer for the backing store).
type levelDBKV struct {
	dir string
	db  *leveldb.DB
}

// OpenLevelDB opens (recovering if corrupted) a leveldb-backed
// KeyValueStore at dir.
func OpenLevelDB(dir string) (*levelDBKV, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if _, corrupted := err.(*ldberrors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(dir, nil)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb at %s", dir)
	}
	logger.Info("opened leveldb backing store", "dir", dir)
	return &levelDBKV{dir: dir, db: db}, nil
}

func (l *levelDBKV) Get(key []byte) ([]byte, error) {
	value, err := l.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	return value, err
}

func (l *levelDBKV) Put(key, value []byte) error {
	return l.db.Put(key, value, nil)
}

func (l *levelDBKV) Has(key []byte) (bool, error) {
	return l.db.Has(key, nil)
}

func (l *levelDBKV) Close() error {
	return l.db.Close()
}
