package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"backoffice/internal/logger"
	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StockLine is a product name and quantity taken from a line item
type StockLine struct {
	ProductName string
	Quantity    int
}

// StockReference ties a batch of movements to its cause
type StockReference struct {
	Reference string
	Actor     *uuid.UUID
	Notes     string
	// Type overrides the default movement type of the operation when set.
	Type model.MovementType
}

// ProductStockChange is the effect of a batch on one product
type ProductStockChange struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Requested   int       `json:"requested"`
	Applied     int       `json:"applied"`
	StockBefore int       `json:"stock_before"`
	StockAfter  int       `json:"stock_after"`
	Shortage    int       `json:"shortage,omitempty"`
}

// StockReport describes a deduct or restore batch. Missing lists names that
// matched no product and were skipped.
type StockReport struct {
	Changes []ProductStockChange `json:"changes"`
	Missing []string             `json:"missing,omitempty"`
}

// Shortages returns the changes where stock could not cover the request
func (r StockReport) Shortages() []ProductStockChange {
	var out []ProductStockChange
	for _, c := range r.Changes {
		if c.Shortage > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Warnings renders shortages and missing products for the caller
func (r StockReport) Warnings() []string {
	var out []string
	for _, c := range r.Shortages() {
		out = append(out, fmt.Sprintf("Insufficient stock for '%s': requested %d, available %d. Stock set to 0.",
			c.ProductName, c.Requested, c.StockBefore))
	}
	for _, name := range r.Missing {
		out = append(out, fmt.Sprintf("Product '%s' not found in inventory; stock not changed.", name))
	}
	return out
}

// ComputeDeduction caps the deduction at current stock. Stock never goes below zero.
func ComputeDeduction(current, requested int) (deducted, after, shortage int) {
	deducted = min(requested, current)
	after = max(0, current-requested)
	shortage = requested - deducted
	return deducted, after, shortage
}

// ComputeRestoration adds quantity back without an upper bound
func ComputeRestoration(current, quantity int) int {
	return current + quantity
}

// AggregateLines sums quantities per product name, ignoring non-positive quantities.
func AggregateLines(lines []StockLine) map[string]int {
	out := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		out[l.ProductName] += l.Quantity
	}
	return out
}

// StockLedger is the only writer of Product.Stock. Every change takes the
// product row lock and appends a StockMovement in the same transaction.
type StockLedger struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	txManager repository.TransactionManager
	log       *zap.Logger
}

func NewStockLedger(
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	txManager repository.TransactionManager,
	log *zap.Logger,
) *StockLedger {
	return &StockLedger{products: products, movements: movements, txManager: txManager, log: log}
}

// Deduct removes quantities for a sale. Shortfalls floor stock at zero and are
// reported, not returned as errors. Unknown names are skipped and reported.
func (l *StockLedger) Deduct(ctx context.Context, items map[string]int, ref StockReference) (StockReport, error) {
	movementType := ref.Type
	if movementType == "" {
		movementType = model.MovementSale
	}
	return l.apply(ctx, items, ref, movementType, func(current, qty int) (int, int, int) {
		return ComputeDeduction(current, qty)
	})
}

// Restore adds quantities back after an edit or delete
func (l *StockLedger) Restore(ctx context.Context, lines []StockLine, ref StockReference) (StockReport, error) {
	movementType := ref.Type
	if movementType == "" {
		movementType = model.MovementReturn
	}
	return l.apply(ctx, AggregateLines(lines), ref, movementType, func(current, qty int) (int, int, int) {
		return qty, ComputeRestoration(current, qty), 0
	})
}

type stockRule func(current, qty int) (applied, after, shortage int)

func (l *StockLedger) apply(ctx context.Context, items map[string]int, ref StockReference, movementType model.MovementType, rule stockRule) (StockReport, error) {
	log := logger.FromContext(ctx, l.log)
	report := StockReport{Changes: []ProductStockChange{}}

	// Lock rows in name order so two batches touching the same products cannot deadlock.
	names := make([]string, 0, len(items))
	for name, qty := range items {
		if qty > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	err := l.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, name := range names {
			qty := items[name]

			product, err := l.products.FindByNameForUpdate(txCtx, name)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Warn("product not found in inventory, skipping stock change",
					zap.String("product", name),
					zap.String("reference", ref.Reference),
					zap.String("movement_type", string(movementType)))
				report.Missing = append(report.Missing, name)
				continue
			}
			if err != nil {
				return fmt.Errorf("lock product %q: %w", name, err)
			}

			applied, after, shortage := rule(product.Stock, qty)
			if err := l.products.UpdateStock(txCtx, product.ID, after); err != nil {
				return fmt.Errorf("update stock of %q: %w", name, err)
			}

			change := after - product.Stock
			if err := l.movements.Create(txCtx, &model.StockMovement{
				ProductID:      product.ID,
				MovementType:   movementType,
				QuantityChange: change,
				StockBefore:    product.Stock,
				StockAfter:     after,
				Reference:      ref.Reference,
				Notes:          ref.Notes,
				CreatedBy:      ref.Actor,
			}); err != nil {
				return fmt.Errorf("record stock movement for %q: %w", name, err)
			}

			if shortage > 0 {
				log.Warn("insufficient stock, deducted available quantity",
					zap.String("product", name),
					zap.Int("requested", qty),
					zap.Int("available", product.Stock),
					zap.String("reference", ref.Reference))
			}

			report.Changes = append(report.Changes, ProductStockChange{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   qty,
				Applied:     applied,
				StockBefore: product.Stock,
				StockAfter:  after,
				Shortage:    shortage,
			})
		}
		return nil
	})
	if err != nil {
		return StockReport{}, &PersistenceError{Op: "stock " + string(movementType), Err: err}
	}
	return report, nil
}

// Adjust applies a signed manual movement to one product. Unlike sales, a
// manual adjustment may not take stock below zero.
func (l *StockLedger) Adjust(ctx context.Context, productID uuid.UUID, delta int, ref StockReference) (ProductStockChange, error) {
	if !ref.Type.IsManual() {
		return ProductStockChange{}, NewValidationError(fmt.Sprintf("movement type %q cannot be recorded manually", ref.Type))
	}
	if delta == 0 {
		return ProductStockChange{}, NewValidationError("quantity must not be zero")
	}

	var change ProductStockChange
	err := l.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, err := l.products.FindByIDForUpdate(txCtx, productID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}

		after := product.Stock + delta
		if after < 0 {
			return NewValidationError(fmt.Sprintf("adjustment of %d would leave '%s' with negative stock (%d on hand)",
				delta, product.Name, product.Stock))
		}

		if err := l.products.UpdateStock(txCtx, product.ID, after); err != nil {
			return err
		}
		if err := l.movements.Create(txCtx, &model.StockMovement{
			ProductID:      product.ID,
			MovementType:   ref.Type,
			QuantityChange: delta,
			StockBefore:    product.Stock,
			StockAfter:     after,
			Reference:      ref.Reference,
			Notes:          ref.Notes,
			CreatedBy:      ref.Actor,
		}); err != nil {
			return err
		}

		change = ProductStockChange{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   delta,
			Applied:     delta,
			StockBefore: product.Stock,
			StockAfter:  after,
		}
		return nil
	})
	if err != nil {
		return ProductStockChange{}, wrapPersistence("adjust stock", err)
	}
	return change, nil
}
