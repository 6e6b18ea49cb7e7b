// Package app wires repositories into services for the binaries under cmd/.
package app

import (
	"time"

	"backoffice/internal/config"
	"backoffice/internal/repository"
	"backoffice/internal/service"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Services struct {
	Users     service.UserService
	Inventory service.InventoryService
	Sales     service.SaleService
	Cash      service.CashSaleService
	Imports   service.ImportService
	Audit     service.AuditService
}

// NewServices builds the service layer on db (Repository -> Service).
// publisher and cache may be nil.
func NewServices(db *gorm.DB, cfg *config.Config, publisher service.EventPublisher, cache service.SalesCache, log *zap.Logger) *Services {
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)
	cashRepo := repository.NewCashRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	audit := service.NewAuditRecorder(auditRepo)
	ledger := service.NewStockLedger(productRepo, movementRepo, txManager, log)

	sales := service.NewSaleService(invoiceRepo, productRepo, sequenceRepo, ledger, audit, txManager, publisher, cache, log,
		service.SaleServiceConfig{InvoicePrefix: cfg.Sales.InvoicePrefix, Location: cfg.Location(), Now: time.Now})

	return &Services{
		Users: service.NewUserService(userRepo, service.TokenConfig{Secret: cfg.JWT.Secret, Expiration: cfg.JWT.Expiration}),
		Inventory: service.NewInventoryService(productRepo, movementRepo, invoiceRepo, ledger, audit, txManager,
			publisher, cache, log),
		Sales: sales,
		Cash: service.NewCashSaleService(cashRepo, sequenceRepo, audit, txManager, cache, log,
			service.SaleServiceConfig{InvoicePrefix: cfg.Sales.CashInvoicePrefix, Location: cfg.Location(), Now: time.Now}),
		Imports: service.NewImportService(sales, audit, txManager, log),
		Audit:   service.NewAuditService(auditRepo),
	}
}
