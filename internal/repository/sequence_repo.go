package repository

import (
	"context"
	"errors"

	"backoffice/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedFunc reports the last value already used under a prefix, for counters
// created after invoices with that prefix exist.
type SeedFunc func(ctx context.Context) (int, error)

type SequenceRepository interface {
	// Next increments and returns the counter for prefix. Call it inside a
	// transaction so the row lock is held until commit.
	Next(ctx context.Context, prefix string, seed SeedFunc) (int, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) Next(ctx context.Context, prefix string, seed SeedFunc) (int, error) {
	db := GetDB(ctx, r.db)

	seq, err := r.lock(db, prefix)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		start := 0
		if seed != nil {
			if start, err = seed(ctx); err != nil {
				return 0, err
			}
		}
		row := model.InvoiceSequence{Prefix: prefix, LastValue: start}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return 0, err
		}
		seq, err = r.lock(db, prefix)
	}
	if err != nil {
		return 0, err
	}

	next := seq.LastValue + 1
	if err := db.Model(&model.InvoiceSequence{}).Where("prefix = ?", prefix).
		Update("last_value", next).Error; err != nil {
		return 0, err
	}
	return next, nil
}

func (r *sequenceRepository) lock(db *gorm.DB, prefix string) (*model.InvoiceSequence, error) {
	var seq model.InvoiceSequence
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("prefix = ?", prefix).First(&seq).Error; err != nil {
		return nil, err
	}
	return &seq, nil
}
