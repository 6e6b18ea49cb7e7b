package repository

import (
	"context"
	"testing"
	"time"

	"backoffice/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestInvoiceRepository_Lifecycle(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	inv := &model.Invoice{
		InvoiceNo:     "INV-20250101-001",
		CustomerName:  "Acme",
		DateOfSale:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		PaymentStatus: model.StatusUnpaid,
	}
	require.NoError(t, repo.Create(ctx, inv))
	require.NoError(t, repo.CreateItems(ctx, []model.Sale{
		{InvoiceID: inv.ID, ItemName: "Pen", UnitPrice: decimal.NewFromInt(2), Quantity: 3, TotalPrice: decimal.NewFromInt(6)},
		{InvoiceID: inv.ID, ItemName: "Pen", UnitPrice: decimal.NewFromInt(2), Quantity: 1, TotalPrice: decimal.NewFromInt(2)},
	}))

	loaded, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Items, 2)

	count, err := repo.CountItemsByName(ctx, "Pen")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	last, err := repo.LastInvoiceNo(ctx, "INV-20250101-")
	require.NoError(t, err)
	assert.Equal(t, "INV-20250101-001", last)

	last, err = repo.LastInvoiceNo(ctx, "INV-20250102-")
	require.NoError(t, err)
	assert.Empty(t, last)

	list, total, err := repo.List(ctx, InvoiceFilter{Search: "acme", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, inv.ID))
	_, err = repo.FindByID(ctx, inv.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	items, err := repo.FindItems(ctx, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
