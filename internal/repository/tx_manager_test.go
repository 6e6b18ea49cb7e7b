package repository

import (
	"context"
	"errors"
	"testing"

	"backoffice/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionManager_NestedCallsJoinOuterTx(t *testing.T) {
	db := newSQLiteDB(t)
	tm := NewTransactionManager(db)
	ctx := context.Background()
	errAbort := errors.New("abort")

	assert.False(t, InTx(ctx))

	err := tm.RunInTx(ctx, func(outer context.Context) error {
		require.True(t, InTx(outer))
		if err := GetDB(outer, db).Create(&model.Product{Name: "Toner", Price: decimal.NewFromInt(1)}).Error; err != nil {
			return err
		}
		// the inner call commits nothing on its own
		if err := tm.RunInTx(outer, func(inner context.Context) error {
			return GetDB(inner, db).Create(&model.Product{Name: "Paper", Price: decimal.NewFromInt(1)}).Error
		}); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	var count int64
	require.NoError(t, db.Model(&model.Product{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTransactionManager_Commits(t *testing.T) {
	db := newSQLiteDB(t)
	tm := NewTransactionManager(db)

	require.NoError(t, tm.RunInTx(context.Background(), func(txCtx context.Context) error {
		return GetDB(txCtx, db).Create(&model.Product{Name: "Toner", Price: decimal.NewFromInt(1)}).Error
	}))

	var count int64
	require.NoError(t, db.Model(&model.Product{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
