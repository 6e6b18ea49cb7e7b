package service

import (
	"context"
	"time"

	"backoffice/internal/logger"

	"go.uber.org/zap"
)

const (
	EventStockUpdate    = "stock_update"
	EventInvoiceChanged = "invoice_changed"
)

// EventPublisher pushes committed changes to connected clients
type EventPublisher interface {
	Publish(event string, data interface{})
}

// SalesCache drops cached summaries that a committed change made stale
type SalesCache interface {
	InvalidateSales(ctx context.Context, day time.Time) error
	InvalidateProducts(ctx context.Context) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, interface{}) {}

type nopCache struct{}

func (nopCache) InvalidateSales(context.Context, time.Time) error { return nil }
func (nopCache) InvalidateProducts(context.Context) error         { return nil }

// notifier runs after commit. Failures are logged and never reach the caller,
// because the change itself is already durable.
type notifier struct {
	publisher EventPublisher
	cache     SalesCache
	log       *zap.Logger
}

func newNotifier(publisher EventPublisher, cache SalesCache, log *zap.Logger) notifier {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if cache == nil {
		cache = nopCache{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return notifier{publisher: publisher, cache: cache, log: log}
}

func (n notifier) invoiceChanged(ctx context.Context, action, invoiceNo string, day time.Time, stock *StockReport) {
	n.publisher.Publish(EventInvoiceChanged, map[string]interface{}{
		"action":     action,
		"invoice_no": invoiceNo,
	})
	if stock != nil && len(stock.Changes) > 0 {
		n.publisher.Publish(EventStockUpdate, stock.Changes)
	}

	log := logger.FromContext(ctx, n.log)
	if err := n.cache.InvalidateSales(ctx, day); err != nil {
		log.Warn("failed to invalidate sales cache", zap.Error(err), zap.String("invoice_no", invoiceNo))
	}
	if stock != nil && len(stock.Changes) > 0 {
		n.productsChanged(ctx)
	}
}

func (n notifier) productsChanged(ctx context.Context) {
	if err := n.cache.InvalidateProducts(ctx); err != nil {
		logger.FromContext(ctx, n.log).Warn("failed to invalidate product cache", zap.Error(err))
	}
}
