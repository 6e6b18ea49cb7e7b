package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"backoffice/internal/database"
	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

type published struct {
	event string
	data  interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(event string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{event: event, data: data})
}

func (p *recordingPublisher) count(event string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.event == event {
			n++
		}
	}
	return n
}

type recordingCache struct {
	mu       sync.Mutex
	days     []time.Time
	products int
	err      error
}

func (c *recordingCache) InvalidateSales(_ context.Context, day time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.days = append(c.days, day)
	return c.err
}

func (c *recordingCache) InvalidateProducts(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products++
	return c.err
}

type fixture struct {
	db        *gorm.DB
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	invoices  repository.InvoiceRepository
	audits    repository.AuditRepository
	cashRepo  repository.CashRepository
	txManager repository.TransactionManager
	ledger    *StockLedger
	audit     AuditRecorder
	publisher *recordingPublisher
	cache     *recordingCache
	sales     SaleService
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	log := zaptest.NewLogger(t)
	f := &fixture{
		db:        db,
		products:  repository.NewProductRepository(db),
		movements: repository.NewStockMovementRepository(db),
		invoices:  repository.NewInvoiceRepository(db),
		audits:    repository.NewAuditRepository(db),
		cashRepo:  repository.NewCashRepository(db),
		txManager: repository.NewTransactionManager(db),
		publisher: &recordingPublisher{},
		cache:     &recordingCache{},
		now:       testNow,
	}
	f.ledger = NewStockLedger(f.products, f.movements, f.txManager, log)
	f.audit = NewAuditRecorder(f.audits)
	f.sales = NewSaleService(
		f.invoices, f.products, repository.NewSequenceRepository(db),
		f.ledger, f.audit, f.txManager, f.publisher, f.cache, log,
		SaleServiceConfig{InvoicePrefix: "INV", Location: time.UTC, Now: func() time.Time { return f.now }},
	)
	return f
}

func (f *fixture) seedProduct(t *testing.T, name, price string, stock int) model.Product {
	t.Helper()
	p := model.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, f.products.Create(context.Background(), &p))
	return p
}

func (f *fixture) stockOf(t *testing.T, name string) int {
	t.Helper()
	p, err := f.products.FindByName(context.Background(), name)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) auditActions(t *testing.T) []string {
	t.Helper()
	logs, _, err := f.audits.List(context.Background(), repository.AuditFilter{Page: 1, Limit: 100})
	require.NoError(t, err)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	return actions
}

func (f *fixture) countRows(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func item(name string, qty int) SaleItemRequest {
	return SaleItemRequest{ItemName: name, Quantity: qty}
}
