package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrReferenced is returned when a delete would orphan dependent rows.
var ErrReferenced = errors.New("record is still referenced")

// Store groups the repositories over one connection or transaction.
type Store struct {
	db        *gorm.DB
	Contracts *ContractRepository
	Resources *ResourceRepository
	LCATs     *LCATRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:        db,
		Contracts: NewContractRepository(db),
		Resources: NewResourceRepository(db),
		LCATs:     NewLCATRepository(db),
	}
}

// Transaction runs fn with repositories bound to a single transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// forUpdate adds a row lock on databases that support it. SQLite serializes
// writers on its own.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func upsertByID(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	})
}
