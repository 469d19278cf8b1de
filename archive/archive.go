// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

// Package archive persists finalised TransactionEffects to a relational
// store for later auditing/querying, the same role the rest of the
// retrieved corpus uses gorm-backed persistence layers for (transaction
// managers, indexers): a durable record independent of the backing object
// store, which TempStore itself never writes to directly.
package archive

import (
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/mysql"

	"github.com/movevm/tempstore/log"
	"github.com/movevm/tempstore/tempstore"
)

var logger = log.NewModuleLogger(log.Archive)

// effectsRecord is the row shape TransactionEffects is flattened into.
type effectsRecord struct {
	gorm.Model
	TransactionDigest string `gorm:"unique_index;size:64"`
	ProtocolVersion   uint64
	Epoch             uint64
	Success           bool
	ComputationCost   uint64
	StorageCost       uint64
	StorageRebate     uint64
	CreatedCount      int
	MutatedCount      int
	DeletedCount      int
	EventsDigest      string `gorm:"size:64"`
}

func (effectsRecord) TableName() string { return "transaction_effects" }

// Archive persists TransactionEffects to a MySQL-backed gorm connection.
type Archive struct {
	db *gorm.DB
}

// Open connects to dsn and ensures the effects table exists.
func Open(dsn string) (*Archive, error) {
	db, err := gorm.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&effectsRecord{}).Error; err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("opened effects archive")
	return &Archive{db: db}, nil
}

// Record stores one transaction's effects. TransactionDigest must be
// unique; re-recording the same transaction is an error rather than an
// upsert, since effects are meant to be immutable once archived.
func (a *Archive) Record(effects *tempstore.TransactionEffects) error {
	eventsDigest := ""
	if effects.EventsDigest != nil {
		eventsDigest = effects.EventsDigest.String()
	}
	record := effectsRecord{
		TransactionDigest: effects.TransactionDigest.String(),
		ProtocolVersion:   effects.ProtocolVersion,
		Epoch:             effects.Epoch,
		Success:           effects.Status.Success,
		ComputationCost:   effects.GasUsed.ComputationCost,
		StorageCost:       effects.GasUsed.StorageCost,
		StorageRebate:     effects.GasUsed.StorageRebate,
		CreatedCount:      len(effects.Created),
		MutatedCount:      len(effects.Mutated),
		DeletedCount:      len(effects.Deleted),
		EventsDigest:      eventsDigest,
	}
	return a.db.Create(&record).Error
}

// FindByDigest looks up a previously archived effects row by transaction
// digest, returning nil if none was recorded.
func (a *Archive) FindByDigest(digest string) (*effectsRecord, error) {
	var record effectsRecord
	err := a.db.Where("transaction_digest = ?", digest).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Close releases the underlying connection.
func (a *Archive) Close() error {
	return a.db.Close()
}
