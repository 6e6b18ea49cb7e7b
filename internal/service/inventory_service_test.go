package service

import (
	"context"
	"testing"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newInventory(t *testing.T, f *fixture) InventoryService {
	return NewInventoryService(f.products, f.movements, f.invoices, f.ledger, f.audit, f.txManager, f.publisher, f.cache, zaptest.NewLogger(t))
}

func TestInventoryService_CreateProduct(t *testing.T) {
	f := newFixture(t)
	svc := newInventory(t, f)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, "", CreateProductRequest{Name: "  Toner ", Price: dec("12.5"), Stock: 7})
	require.NoError(t, err)
	assert.Equal(t, "Toner", p.Name)
	assert.Equal(t, 7, p.Stock)
	assert.Equal(t, 7, f.stockOf(t, "Toner"))

	movements, _, err := f.movements.ListByProduct(ctx, uuid.MustParse(p.ID), 1, 10)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementAdjustment, movements[0].MovementType)

	_, err = svc.CreateProduct(ctx, "", CreateProductRequest{Name: "Toner", Price: dec("1")})
	assert.ErrorIs(t, err, ErrProductExists)

	_, err = svc.CreateProduct(ctx, "", CreateProductRequest{Name: "Ink", Price: dec("-1")})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	assert.Equal(t, []string{model.ActionCreateProduct}, f.auditActions(t))
	assert.Equal(t, 1, f.cache.products)
}

func TestInventoryService_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	svc := newInventory(t, f)
	ctx := context.Background()

	toner := f.seedProduct(t, "Toner", "10", 10)
	paper := f.seedProduct(t, "Paper", "2", 10)

	_, err := f.sales.CreateSale(ctx, "", SaleRequest{CustomerName: "Ada", Items: []SaleItemRequest{item("Toner", 1)}})
	require.NoError(t, err)

	t.Run("Price change on a sold product", func(t *testing.T) {
		p, err := svc.UpdateProduct(ctx, "", toner.ID.String(), UpdateProductRequest{Name: "Toner", Price: dec("11")})
		require.NoError(t, err)
		assert.True(t, dec("11").Equal(p.Price))
		assert.Equal(t, 9, p.Stock)
	})

	t.Run("Rename of a sold product is refused", func(t *testing.T) {
		_, err := svc.UpdateProduct(ctx, "", toner.ID.String(), UpdateProductRequest{Name: "Black Toner", Price: dec("11")})
		assert.ErrorIs(t, err, ErrProductInUse)
	})

	t.Run("Rename onto an existing name is refused", func(t *testing.T) {
		_, err := svc.UpdateProduct(ctx, "", paper.ID.String(), UpdateProductRequest{Name: "Toner", Price: dec("2")})
		assert.ErrorIs(t, err, ErrProductExists)
	})

	t.Run("Rename of an unsold product", func(t *testing.T) {
		p, err := svc.UpdateProduct(ctx, "", paper.ID.String(), UpdateProductRequest{Name: "A4 Paper", Price: dec("2")})
		require.NoError(t, err)
		assert.Equal(t, "A4 Paper", p.Name)
	})

	t.Run("Delete", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteProduct(ctx, "", toner.ID.String()), ErrProductInUse)
		require.NoError(t, svc.DeleteProduct(ctx, "", paper.ID.String()))
		assert.ErrorIs(t, svc.DeleteProduct(ctx, "", paper.ID.String()), ErrProductNotFound)
		assert.ErrorIs(t, svc.DeleteProduct(ctx, "", "nope"), ErrProductNotFound)
	})
}

func TestInventoryService_AdjustStock(t *testing.T) {
	f := newFixture(t)
	svc := newInventory(t, f)
	ctx := context.Background()
	p := f.seedProduct(t, "Toner", "10", 2)

	change, err := svc.AdjustStock(ctx, "", p.ID.String(), AdjustStockRequest{MovementType: "PURCHASE", Quantity: 8, Reference: "PO-1"})
	require.NoError(t, err)
	assert.Equal(t, 10, change.StockAfter)
	assert.Equal(t, 1, f.publisher.count(EventStockUpdate))

	_, err = svc.AdjustStock(ctx, "", p.ID.String(), AdjustStockRequest{MovementType: "SALE", Quantity: 1})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = svc.AdjustStock(ctx, "", p.ID.String(), AdjustStockRequest{MovementType: "ADJUSTMENT", Quantity: -11})
	assert.ErrorAs(t, err, &ve)

	movements, total, err := svc.ListMovements(ctx, p.ID.String(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "PURCHASE", movements[0].MovementType)
	assert.Equal(t, 8, movements[0].QuantityChange)

	assert.Equal(t, []string{model.ActionAdjustStock}, f.auditActions(t))
}

func TestInventoryService_GetProducts(t *testing.T) {
	f := newFixture(t)
	svc := newInventory(t, f)
	f.seedProduct(t, "Toner", "10", 2)
	f.seedProduct(t, "Paper", "1", 2)
	f.seedProduct(t, "Toner Cartridge", "30", 2)

	products, total, err := svc.GetProducts(context.Background(), 0, 0, "toner")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "Toner", products[0].Name)
}
