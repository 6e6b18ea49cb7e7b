package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backoffice/internal/logger"
	"backoffice/internal/model"
	"backoffice/internal/pricing"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// --- DTOs ---

type SaleItemRequest struct {
	ItemName string `json:"item_name" validate:"required,max=255"`
	Quantity int    `json:"quantity" validate:"min=1"`
	// UnitPrice defaults to the catalog price when omitted.
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"omitempty,gte=0"`
	Discount  decimal.Decimal  `json:"discount" validate:"gte=0"`
}

// SaleRequest is the payload of both create and edit.
type SaleRequest struct {
	CustomerName  string            `json:"customer_name" validate:"required,max=255"`
	CustomerPhone string            `json:"customer_phone" validate:"max=30"`
	DateOfSale    string            `json:"date_of_sale" validate:"omitempty,datetime=2006-01-02"`
	DueDate       string            `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Discount      decimal.Decimal   `json:"discount" validate:"gte=0"`
	AmountPaid    decimal.Decimal   `json:"amount_paid" validate:"gte=0"`
	Notes         string            `json:"notes"`
	Items         []SaleItemRequest `json:"items" validate:"dive"`
}

type PaymentRequest struct {
	AmountPaid decimal.Decimal `json:"amount_paid" validate:"gte=0"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type InvoiceListRequest struct {
	Status string
	Search string
	From   string
	To     string
	Page   int
	Limit  int
}

type SaleLineResponse struct {
	ID         string          `json:"id"`
	ItemName   string          `json:"item_name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Discount   decimal.Decimal `json:"discount"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type InvoiceResponse struct {
	ID            string             `json:"id"`
	InvoiceNo     string             `json:"invoice_no"`
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone"`
	DateOfSale    string             `json:"date_of_sale"`
	DueDate       *string            `json:"due_date"`
	Notes         string             `json:"notes"`
	Discount      decimal.Decimal    `json:"discount"`
	Total         decimal.Decimal    `json:"total"`
	AmountPaid    decimal.Decimal    `json:"amount_paid"`
	Balance       decimal.Decimal    `json:"balance"`
	PaymentStatus string             `json:"payment_status"`
	Items         []SaleLineResponse `json:"items"`
	CreatedAt     string             `json:"created_at"`
}

type SaleResult struct {
	Invoice  InvoiceResponse `json:"invoice"`
	Stock    StockReport     `json:"stock"`
	Warnings []string        `json:"warnings,omitempty"`
}

// DeletionReceipt is what remains of a deleted invoice
type DeletionReceipt struct {
	InvoiceID    string      `json:"invoice_id"`
	InvoiceNo    string      `json:"invoice_no"`
	CustomerName string      `json:"customer_name"`
	Restored     StockReport `json:"restored"`
	DeletedAt    time.Time   `json:"deleted_at"`
}

// --- Interface ---

// SaleService coordinates invoices, line items and stock. Each mutating call is
// a single transaction covering numbering, stock, totals and the audit entry.
type SaleService interface {
	CreateSale(ctx context.Context, userID string, req SaleRequest) (*SaleResult, error)
	EditSale(ctx context.Context, userID, invoiceID string, req SaleRequest) (*SaleResult, error)
	DeleteSale(ctx context.Context, userID, invoiceID string) (*DeletionReceipt, error)
	RecordPayment(ctx context.Context, userID, invoiceID string, req PaymentRequest) (*InvoiceResponse, error)
	CancelInvoice(ctx context.Context, userID, invoiceID string, req CancelRequest) (*InvoiceResponse, error)
	RefreshOverdue(ctx context.Context, userID string) (int, error)
	GetInvoice(ctx context.Context, invoiceID string) (*InvoiceResponse, error)
	ListInvoices(ctx context.Context, req InvoiceListRequest) ([]InvoiceResponse, int64, error)
}

type SaleServiceConfig struct {
	InvoicePrefix string
	Location      *time.Location
	Now           func() time.Time
}

type saleService struct {
	invoiceRepo repository.InvoiceRepository
	productRepo repository.ProductRepository
	ledger      *StockLedger
	audit       AuditRecorder
	txManager   repository.TransactionManager
	numberer    invoiceNumberer
	pricing     *pricing.Registry
	clock       clock
	notify      notifier
	log         *zap.Logger
}

func NewSaleService(
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	sequenceRepo repository.SequenceRepository,
	ledger *StockLedger,
	audit AuditRecorder,
	txManager repository.TransactionManager,
	publisher EventPublisher,
	cache SalesCache,
	log *zap.Logger,
	cfg SaleServiceConfig,
) SaleService {
	if log == nil {
		log = zap.NewNop()
	}
	prefix := cfg.InvoicePrefix
	if prefix == "" {
		prefix = "INV"
	}
	return &saleService{
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		ledger:      ledger,
		audit:       audit,
		txManager:   txManager,
		numberer: invoiceNumberer{
			series:     prefix,
			sequences:  sequenceRepo,
			lastIssued: invoiceRepo.LastInvoiceNo,
		},
		pricing: pricing.SalesRegistry(),
		clock:   newClock(cfg.Now, cfg.Location),
		notify:  newNotifier(publisher, cache, log),
		log:     log,
	}
}

// --- Commands ---

func (s *saleService) CreateSale(ctx context.Context, userID string, req SaleRequest) (*SaleResult, error) {
	header, err := s.checkRequest(req)
	if err != nil {
		return nil, err
	}

	catalog, err := s.resolveProducts(ctx, req.Items)
	if err != nil {
		return nil, wrapPersistence("resolve products", err)
	}
	lines, err := s.priceLines(req.Items, req.Discount, catalog)
	if err != nil {
		return nil, err
	}

	actor := parseActor(userID)
	var invoice *model.Invoice
	var report StockReport

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoiceNo, err := s.numberer.next(txCtx, s.clock.today())
		if err != nil {
			return err
		}

		invoice = &model.Invoice{
			InvoiceNo:     invoiceNo,
			PaymentStatus: model.StatusUnpaid,
			UserID:        actor,
		}
		header.applyTo(invoice)
		if err := s.invoiceRepo.Create(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		report, err = s.ledger.Deduct(txCtx, quantities(req.Items), StockReference{
			Reference: invoiceNo,
			Actor:     actor,
			Notes:     "sale",
		})
		if err != nil {
			return err
		}

		items := lines.forInvoice(invoice.ID)
		if err := s.invoiceRepo.CreateItems(txCtx, items); err != nil {
			return fmt.Errorf("failed to create line items: %w", err)
		}

		invoice.Items = items
		invoice.RecalculateTotal(items)
		invoice.RefreshPaymentStatus(s.clock.today())
		if err := s.invoiceRepo.Save(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to save invoice totals: %w", err)
		}

		return s.audit.Record(txCtx, AuditEntry{
			Actor:      actor,
			Action:     model.ActionCreateSale,
			EntityID:   invoice.ID.String(),
			EntityName: invoice.InvoiceNo,
			Details: map[string]interface{}{
				"customer_name": invoice.CustomerName,
				"total":         invoice.Total,
				"amount_paid":   invoice.AmountPaid,
				"items":         auditItems(items),
				"shortages":     report.Shortages(),
				"missing":       report.Missing,
			},
		})
	})
	if err != nil {
		return nil, wrapPersistence("create sale", err)
	}

	s.logStockWarnings(ctx, invoice.InvoiceNo, report)
	s.notify.invoiceChanged(ctx, "created", invoice.InvoiceNo, invoice.DateOfSale, &report)

	return &SaleResult{
		Invoice:  toInvoiceResponse(invoice),
		Stock:    report,
		Warnings: report.Warnings(),
	}, nil
}

// EditSale gives back the stock of the current lines, then applies the new
// lines as if they were a fresh sale. If the new lines do not resolve, the
// original quantities are deducted again before the error is returned.
func (s *saleService) EditSale(ctx context.Context, userID, invoiceID string, req SaleRequest) (*SaleResult, error) {
	id, err := parseInvoiceID(invoiceID)
	if err != nil {
		return nil, err
	}
	header, err := s.checkRequest(req)
	if err != nil {
		return nil, err
	}

	actor := parseActor(userID)
	var invoice *model.Invoice
	var restored, deducted StockReport

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, err = s.lockInvoice(txCtx, id)
		if err != nil {
			return err
		}
		if invoice.IsCancelled() {
			return ErrInvoiceCancelled
		}

		original, err := s.invoiceRepo.FindItems(txCtx, invoice.ID)
		if err != nil {
			return fmt.Errorf("failed to load line items: %w", err)
		}
		before := map[string]interface{}{"total": invoice.Total, "items": auditItems(original)}

		restored, err = s.ledger.Restore(txCtx, stockLines(original), StockReference{
			Reference: invoice.InvoiceNo,
			Actor:     actor,
			Notes:     "edit: return original items",
		})
		if err != nil {
			return err
		}

		lines, verr := s.resolveAndPrice(txCtx, req.Items, req.Discount)
		if verr != nil {
			if _, err := s.ledger.Deduct(txCtx, AggregateLines(stockLines(original)), StockReference{
				Reference: invoice.InvoiceNo,
				Actor:     actor,
				Notes:     "edit rejected: re-deduct original items",
			}); err != nil {
				return err
			}
			return verr
		}

		if err := s.invoiceRepo.DeleteItems(txCtx, invoice.ID); err != nil {
			return fmt.Errorf("failed to remove line items: %w", err)
		}

		deducted, err = s.ledger.Deduct(txCtx, quantities(req.Items), StockReference{
			Reference: invoice.InvoiceNo,
			Actor:     actor,
			Notes:     "edit: apply new items",
		})
		if err != nil {
			return err
		}

		items := lines.forInvoice(invoice.ID)
		if err := s.invoiceRepo.CreateItems(txCtx, items); err != nil {
			return fmt.Errorf("failed to create line items: %w", err)
		}

		header.applyTo(invoice)
		invoice.Items = items
		invoice.RecalculateTotal(items)
		invoice.RefreshPaymentStatus(s.clock.today())
		if err := s.invoiceRepo.Save(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}

		return s.audit.Record(txCtx, AuditEntry{
			Actor:      actor,
			Action:     model.ActionEditSale,
			EntityID:   invoice.ID.String(),
			EntityName: invoice.InvoiceNo,
			Details: map[string]interface{}{
				"before":    before,
				"after":     map[string]interface{}{"total": invoice.Total, "items": auditItems(items)},
				"shortages": deducted.Shortages(),
				"missing":   deducted.Missing,
			},
		})
	})
	if err != nil {
		return nil, wrapPersistence("edit sale", err)
	}

	combined := StockReport{
		Changes: append(append([]ProductStockChange{}, restored.Changes...), deducted.Changes...),
		Missing: deducted.Missing,
	}
	s.logStockWarnings(ctx, invoice.InvoiceNo, deducted)
	s.notify.invoiceChanged(ctx, "edited", invoice.InvoiceNo, invoice.DateOfSale, &combined)

	return &SaleResult{
		Invoice:  toInvoiceResponse(invoice),
		Stock:    deducted,
		Warnings: deducted.Warnings(),
	}, nil
}

func (s *saleService) DeleteSale(ctx context.Context, userID, invoiceID string) (*DeletionReceipt, error) {
	id, err := parseInvoiceID(invoiceID)
	if err != nil {
		return nil, err
	}

	actor := parseActor(userID)
	var receipt DeletionReceipt
	var day time.Time

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, err := s.lockInvoice(txCtx, id)
		if err != nil {
			return err
		}
		items, err := s.invoiceRepo.FindItems(txCtx, invoice.ID)
		if err != nil {
			return fmt.Errorf("failed to load line items: %w", err)
		}

		restored, err := s.ledger.Restore(txCtx, stockLines(items), StockReference{
			Reference: invoice.InvoiceNo,
			Actor:     actor,
			Notes:     "invoice deleted",
		})
		if err != nil {
			return err
		}

		// Captured before the rows disappear.
		if err := s.audit.Record(txCtx, AuditEntry{
			Actor:      actor,
			Action:     model.ActionDeleteSale,
			EntityID:   invoice.ID.String(),
			EntityName: invoice.InvoiceNo,
			Details: map[string]interface{}{
				"message":       "Deleted invoice, stock restored",
				"invoice_no":    invoice.InvoiceNo,
				"customer_name": invoice.CustomerName,
				"total":         invoice.Total,
				"items":         auditItems(items),
			},
		}); err != nil {
			return err
		}

		if err := s.invoiceRepo.Delete(txCtx, invoice.ID); err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}

		day = invoice.DateOfSale
		receipt = DeletionReceipt{
			InvoiceID:    invoice.ID.String(),
			InvoiceNo:    invoice.InvoiceNo,
			CustomerName: invoice.CustomerName,
			Restored:     restored,
			DeletedAt:    s.clock.now(),
		}
		return nil
	})
	if err != nil {
		return nil, wrapPersistence("delete sale", err)
	}

	s.notify.invoiceChanged(ctx, "deleted", receipt.InvoiceNo, day, &receipt.Restored)
	return &receipt, nil
}

func (s *saleService) RecordPayment(ctx context.Context, userID, invoiceID string, req PaymentRequest) (*InvoiceResponse, error) {
	id, err := parseInvoiceID(invoiceID)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	actor := parseActor(userID)
	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, err = s.lockInvoice(txCtx, id)
		if err != nil {
			return err
		}
		if invoice.IsCancelled() {
			return ErrInvoiceCancelled
		}

		previous := invoice.AmountPaid
		invoice.AmountPaid = req.AmountPaid
		invoice.RefreshPaymentStatus(s.clock.today())
		if err := s.invoiceRepo.Save(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		return s.audit.Record(txCtx, AuditEntry{
			Actor:      actor,
			Action:     model.ActionUpdatePayment,
			EntityID:   invoice.ID.String(),
			EntityName: invoice.InvoiceNo,
			Details: map[string]interface{}{
				"previous_amount_paid": previous,
				"amount_paid":          invoice.AmountPaid,
				"payment_status":       invoice.PaymentStatus,
			},
		})
	})
	if err != nil {
		return nil, wrapPersistence("record payment", err)
	}

	return s.reload(ctx, invoice, "payment")
}

// CancelInvoice is status-only: stock stays deducted until the invoice is deleted.
func (s *saleService) CancelInvoice(ctx context.Context, userID, invoiceID string, req CancelRequest) (*InvoiceResponse, error) {
	id, err := parseInvoiceID(invoiceID)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	actor := parseActor(userID)
	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, err = s.lockInvoice(txCtx, id)
		if err != nil {
			return err
		}
		previous := invoice.PaymentStatus
		if !invoice.Cancel() {
			return ErrInvoiceCancelled
		}
		if err := s.invoiceRepo.Save(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to cancel invoice: %w", err)
		}

		return s.audit.Record(txCtx, AuditEntry{
			Actor:      actor,
			Action:     model.ActionCancelInvoice,
			EntityID:   invoice.ID.String(),
			EntityName: invoice.InvoiceNo,
			Details:    map[string]interface{}{"previous_status": previous, "reason": req.Reason},
		})
	})
	if err != nil {
		return nil, wrapPersistence("cancel invoice", err)
	}

	return s.reload(ctx, invoice, "cancelled")
}

// RefreshOverdue moves unpaid and partial invoices past their due date to overdue.
// Status is otherwise only recomputed when an invoice is saved.
func (s *saleService) RefreshOverdue(ctx context.Context, userID string) (int, error) {
	actor := parseActor(userID)
	today := s.clock.today()
	updated := 0

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		candidates, err := s.invoiceRepo.ListWithDueDate(txCtx, []model.PaymentStatus{model.StatusUnpaid, model.StatusPartial})
		if err != nil {
			return err
		}

		var marked []string
		for i := range candidates {
			inv := &candidates[i]
			inv.RefreshPaymentStatus(today)
			if inv.PaymentStatus != model.StatusOverdue {
				continue
			}
			if err := s.invoiceRepo.Save(txCtx, inv); err != nil {
				return err
			}
			marked = append(marked, inv.InvoiceNo)
		}
		updated = len(marked)
		if updated == 0 {
			return nil
		}

		return s.audit.Record(txCtx, AuditEntry{
			Actor:      actor,
			Action:     model.ActionMarkOverdue,
			EntityName: fmt.Sprintf("%d invoices", updated),
			Details:    map[string]interface{}{"invoices": marked, "as_of": today.Format(dateLayout)},
		})
	})
	if err != nil {
		return 0, wrapPersistence("refresh overdue", err)
	}

	if updated > 0 {
		s.notify.invoiceChanged(ctx, "overdue", "", today, nil)
	}
	return updated, nil
}

// --- Queries ---

func (s *saleService) GetInvoice(ctx context.Context, invoiceID string) (*InvoiceResponse, error) {
	id, err := parseInvoiceID(invoiceID)
	if err != nil {
		return nil, err
	}
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, wrapPersistence("get invoice", err)
	}
	res := toInvoiceResponse(invoice)
	return &res, nil
}

func (s *saleService) ListInvoices(ctx context.Context, req InvoiceListRequest) ([]InvoiceResponse, int64, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}

	from, err := parseDate(req.From)
	if err != nil {
		return nil, 0, NewValidationError("from: expected YYYY-MM-DD")
	}
	to, err := parseDate(req.To)
	if err != nil {
		return nil, 0, NewValidationError("to: expected YYYY-MM-DD")
	}

	invoices, total, err := s.invoiceRepo.List(ctx, repository.InvoiceFilter{
		Status: req.Status,
		Search: req.Search,
		From:   from,
		To:     to,
		Page:   req.Page,
		Limit:  req.Limit,
	})
	if err != nil {
		return nil, 0, wrapPersistence("list invoices", err)
	}

	res := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		res = append(res, toInvoiceResponse(&invoices[i]))
	}
	return res, total, nil
}

// --- Helpers ---

// saleHeader is the parsed, validated header of a SaleRequest
type saleHeader struct {
	req        SaleRequest
	dateOfSale time.Time
	dueDate    *time.Time
}

func (h saleHeader) applyTo(inv *model.Invoice) {
	inv.CustomerName = h.req.CustomerName
	inv.CustomerPhone = h.req.CustomerPhone
	inv.DateOfSale = h.dateOfSale
	inv.DueDate = h.dueDate
	inv.Discount = h.req.Discount
	inv.AmountPaid = h.req.AmountPaid
	inv.Notes = h.req.Notes
}

// checkRequest validates everything that needs no database access.
func (s *saleService) checkRequest(req SaleRequest) (saleHeader, error) {
	if len(req.Items) == 0 {
		return saleHeader{}, NewValidationError("at least one line item is required")
	}
	if err := validate(req); err != nil {
		return saleHeader{}, err
	}

	h := saleHeader{req: req, dateOfSale: s.clock.date()}
	if d, _ := parseDate(req.DateOfSale); d != nil {
		h.dateOfSale = *d
	}
	h.dueDate, _ = parseDate(req.DueDate)
	if h.dueDate != nil && h.dueDate.Before(h.dateOfSale) {
		return saleHeader{}, NewValidationError("due_date: must not be before date_of_sale")
	}
	return h, nil
}

// resolveProducts looks up every item name. All unknown names are reported
// together so the caller can fix the whole request at once.
func (s *saleService) resolveProducts(ctx context.Context, items []SaleItemRequest) (map[string]model.Product, error) {
	names := uniqueNames(items)
	products, err := s.productRepo.FindByNames(ctx, names)
	if err != nil {
		return nil, err
	}

	catalog := make(map[string]model.Product, len(products))
	for _, p := range products {
		catalog[p.Name] = p
	}

	var problems []string
	for _, name := range names {
		if _, ok := catalog[name]; !ok {
			problems = append(problems, fmt.Sprintf("Product '%s' not found in inventory.", name))
		}
	}
	if len(problems) > 0 {
		return nil, NewValidationError(problems...)
	}
	return catalog, nil
}

func (s *saleService) resolveAndPrice(ctx context.Context, items []SaleItemRequest, discount decimal.Decimal) (pricedLines, error) {
	catalog, err := s.resolveProducts(ctx, items)
	if err != nil {
		return nil, err
	}
	return s.priceLines(items, discount, catalog)
}

type pricedLines []model.Sale

func (p pricedLines) subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, line := range p {
		sum = sum.Add(line.TotalPrice)
	}
	return sum
}

func (p pricedLines) forInvoice(invoiceID uuid.UUID) []model.Sale {
	out := make([]model.Sale, len(p))
	for i, line := range p {
		line.InvoiceID = invoiceID
		out[i] = line
	}
	return out
}

// priceLines prices every item. The invoice discount may not exceed the sum of the lines.
func (s *saleService) priceLines(items []SaleItemRequest, discount decimal.Decimal, catalog map[string]model.Product) (pricedLines, error) {
	lines := make(pricedLines, 0, len(items))
	var problems []string

	for i, item := range items {
		unitPrice := catalog[item.ItemName].Price
		if item.UnitPrice != nil {
			unitPrice = *item.UnitPrice
		}

		quote := s.pricing.Price(pricing.Line{
			ItemName:  item.ItemName,
			UnitPrice: unitPrice,
			Quantity:  item.Quantity,
			Discount:  item.Discount,
		})
		if quote.Total.IsNegative() {
			problems = append(problems, fmt.Sprintf("items[%d].discount: exceeds the line amount", i))
			continue
		}

		lines = append(lines, model.Sale{
			ItemName:   item.ItemName,
			UnitPrice:  unitPrice,
			Quantity:   item.Quantity,
			Discount:   item.Discount,
			TotalPrice: quote.Total,
		})
	}

	if len(problems) == 0 && discount.GreaterThan(lines.subtotal()) {
		problems = append(problems, "discount: exceeds the invoice subtotal")
	}
	if len(problems) > 0 {
		return nil, NewValidationError(problems...)
	}
	return lines, nil
}

func (s *saleService) lockInvoice(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByIDForUpdate(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock invoice: %w", err)
	}
	return invoice, nil
}

// reload fetches the committed invoice with its items and notifies listeners.
func (s *saleService) reload(ctx context.Context, invoice *model.Invoice, action string) (*InvoiceResponse, error) {
	s.notify.invoiceChanged(ctx, action, invoice.InvoiceNo, invoice.DateOfSale, nil)
	return s.GetInvoice(ctx, invoice.ID.String())
}

func (s *saleService) logStockWarnings(ctx context.Context, invoiceNo string, report StockReport) {
	if len(report.Missing) == 0 && len(report.Shortages()) == 0 {
		return
	}
	logger.FromContext(ctx, s.log).Warn("sale committed with stock warnings",
		zap.String("invoice_no", invoiceNo),
		zap.Strings("warnings", report.Warnings()))
}

func parseInvoiceID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrInvoiceNotFound
	}
	return parsed, nil
}

func uniqueNames(items []SaleItemRequest) []string {
	seen := make(map[string]bool, len(items))
	names := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item.ItemName] {
			seen[item.ItemName] = true
			names = append(names, item.ItemName)
		}
	}
	return names
}

func quantities(items []SaleItemRequest) map[string]int {
	lines := make([]StockLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, StockLine{ProductName: item.ItemName, Quantity: item.Quantity})
	}
	return AggregateLines(lines)
}

func stockLines(items []model.Sale) []StockLine {
	lines := make([]StockLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, StockLine{ProductName: item.ItemName, Quantity: item.Quantity})
	}
	return lines
}

type auditItem struct {
	ItemName   string          `json:"item_name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func auditItems(items []model.Sale) []auditItem {
	out := make([]auditItem, 0, len(items))
	for _, item := range items {
		out = append(out, auditItem{
			ItemName:   item.ItemName,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		})
	}
	return out
}

func toInvoiceResponse(inv *model.Invoice) InvoiceResponse {
	res := InvoiceResponse{
		ID:            inv.ID.String(),
		InvoiceNo:     inv.InvoiceNo,
		CustomerName:  inv.CustomerName,
		CustomerPhone: inv.CustomerPhone,
		DateOfSale:    inv.DateOfSale.Format(dateLayout),
		Notes:         inv.Notes,
		Discount:      inv.Discount,
		Total:         inv.Total,
		AmountPaid:    inv.AmountPaid,
		Balance:       inv.Balance(),
		PaymentStatus: string(inv.PaymentStatus),
		Items:         make([]SaleLineResponse, 0, len(inv.Items)),
		CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.DueDate != nil {
		due := inv.DueDate.Format(dateLayout)
		res.DueDate = &due
	}
	for _, item := range inv.Items {
		res.Items = append(res.Items, SaleLineResponse{
			ID:         item.ID.String(),
			ItemName:   item.ItemName,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
			Discount:   item.Discount,
			TotalPrice: item.TotalPrice,
		})
	}
	return res
}
