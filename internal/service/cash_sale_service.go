package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/pricing"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateCashProductRequest struct {
	Name string          `json:"name" validate:"required,max=255"`
	Rate decimal.Decimal `json:"rate" validate:"gte=0"`
}

type CashProductResponse struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Rate decimal.Decimal `json:"rate"`
}

type CashItemRequest struct {
	ItemName string          `json:"item_name" validate:"required,max=255"`
	Amount   decimal.Decimal `json:"amount" validate:"gt=0"`
	// Rate defaults to the cash product's rate.
	Rate *decimal.Decimal `json:"rate" validate:"omitempty,gte=0"`
}

type CashSaleRequest struct {
	CustomerName  string            `json:"customer_name" validate:"required,max=255"`
	CustomerPhone string            `json:"customer_phone" validate:"max=30"`
	DateOfSale    string            `json:"date_of_sale" validate:"omitempty,datetime=2006-01-02"`
	Notes         string            `json:"notes"`
	Items         []CashItemRequest `json:"items" validate:"dive"`
}

type CashLineResponse struct {
	ID         string          `json:"id"`
	ItemName   string          `json:"item_name"`
	Amount     decimal.Decimal `json:"amount"`
	Rate       decimal.Decimal `json:"rate"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type CashInvoiceResponse struct {
	ID            string             `json:"id"`
	InvoiceNo     string             `json:"invoice_no"`
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone"`
	DateOfSale    string             `json:"date_of_sale"`
	Notes         string             `json:"notes"`
	Total         decimal.Decimal    `json:"total"`
	PaymentStatus string             `json:"payment_status"`
	Items         []CashLineResponse `json:"items"`
}

// CashSaleService runs the cash department: rate-priced sales settled on the
// spot. Cash sales never touch product stock.
type CashSaleService interface {
	CreateCashProduct(ctx context.Context, userID string, req CreateCashProductRequest) (*CashProductResponse, error)
	ListCashProducts(ctx context.Context) ([]CashProductResponse, error)
	CreateCashSale(ctx context.Context, userID string, req CashSaleRequest) (*CashInvoiceResponse, error)
	GetCashInvoice(ctx context.Context, invoiceID string) (*CashInvoiceResponse, error)
	DeleteCashSale(ctx context.Context, userID, invoiceID string) error
	CancelCashInvoice(ctx context.Context, userID, invoiceID string, req CancelRequest) (*CashInvoiceResponse, error)
}

type cashSaleService struct {
	repo      repository.CashRepository
	audit     AuditRecorder
	txManager repository.TransactionManager
	numberer  invoiceNumberer
	pricing   *pricing.Registry
	clock     clock
	notify    notifier
}

func NewCashSaleService(
	repo repository.CashRepository,
	sequenceRepo repository.SequenceRepository,
	audit AuditRecorder,
	txManager repository.TransactionManager,
	cache SalesCache,
	log *zap.Logger,
	cfg SaleServiceConfig,
) CashSaleService {
	prefix := cfg.InvoicePrefix
	if prefix == "" {
		prefix = "CASH"
	}
	return &cashSaleService{
		repo:      repo,
		audit:     audit,
		txManager: txManager,
		numberer: invoiceNumberer{
			series:     prefix,
			sequences:  sequenceRepo,
			lastIssued: repo.LastInvoiceNo,
		},
		pricing: pricing.CashRegistry(),
		clock:   newClock(cfg.Now, cfg.Location),
		notify:  newNotifier(nil, cache, log),
	}
}

func (s *cashSaleService) CreateCashProduct(ctx context.Context, userID string, req CreateCashProductRequest) (*CashProductResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}

	product := model.CashProduct{Name: req.Name, Rate: req.Rate}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindProductsByNames(txCtx, []string{req.Name})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ErrProductExists
		}
		if err := s.repo.CreateProduct(txCtx, &product); err != nil {
			return fmt.Errorf("failed to create cash product: %w", err)
		}
		return s.audit.Record(txCtx, AuditEntry{
			Actor:      parseActor(userID),
			Action:     model.ActionCreateCashItem,
			EntityID:   product.ID.String(),
			EntityName: product.Name,
			Details:    req,
		})
	})
	if err != nil {
		return nil, wrapPersistence("create cash product", err)
	}

	return &CashProductResponse{ID: product.ID.String(), Name: product.Name, Rate: product.Rate}, nil
}

func (s *cashSaleService) ListCashProducts(ctx context.Context) ([]CashProductResponse, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, wrapPersistence("list cash products", err)
	}
	res := make([]CashProductResponse, 0, len(products))
	for _, p := range products {
		res = append(res, CashProductResponse{ID: p.ID.String(), Name: p.Name, Rate: p.Rate})
	}
	return res, nil
}

func (s *cashSaleService) CreateCashSale(ctx context.Context, userID string, req CashSaleRequest) (*CashInvoiceResponse, error) {
	if len(req.Items) == 0 {
		return nil, NewValidationError("at least one line item is required")
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	dateOfSale := s.clock.date()
	if d, _ := parseDate(req.DateOfSale); d != nil {
		dateOfSale = *d
	}

	items, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return nil, wrapPersistence("price cash items", err)
	}

	actor := parseActor(userID)
	invoice := &model.CashInvoice{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		DateOfSale:    dateOfSale,
		Notes:         req.Notes,
		PaymentStatus: model.StatusPaid,
		UserID:        actor,
	}
	invoice.RecalculateTotal(items)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoiceNo, err := s.numberer.next(txCtx, s.clock.today())
		if err != nil {
			return err
		}
		invoice.InvoiceNo = invoiceNo

		if err := s.repo.CreateInvoice(txCtx, invoice, items); err != nil {
			return fmt.Errorf("failed to create cash invoice: %w", err)
		}
		invoice.Items = items

		return s.audit.Record(txCtx, AuditEntry{
			Actor:      actor,
			Action:     model.ActionCreateCashSale,
			EntityID:   invoice.ID.String(),
			EntityName: invoice.InvoiceNo,
			Details: map[string]interface{}{
				"customer_name": invoice.CustomerName,
				"total":         invoice.Total,
				"items":         len(items),
			},
		})
	})
	if err != nil {
		return nil, wrapPersistence("create cash sale", err)
	}

	s.notify.invoiceChanged(ctx, "cash_created", invoice.InvoiceNo, invoice.DateOfSale, nil)
	res := toCashInvoiceResponse(invoice)
	return &res, nil
}

// priceItems resolves each line's rate and prices it. Names with their own
// pricing rule need no catalog entry.
func (s *cashSaleService) priceItems(ctx context.Context, reqs []CashItemRequest) ([]model.CashSale, error) {
	names := make([]string, 0, len(reqs))
	for _, r := range reqs {
		names = append(names, r.ItemName)
	}
	products, err := s.repo.FindProductsByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	rates := make(map[string]decimal.Decimal, len(products))
	for _, p := range products {
		rates[p.Name] = p.Rate
	}

	items := make([]model.CashSale, 0, len(reqs))
	var problems []string
	for _, r := range reqs {
		rate, known := rates[r.ItemName]
		if r.Rate != nil {
			rate, known = *r.Rate, true
		}
		if !known && !s.pricing.HasOverride(r.ItemName) {
			problems = append(problems, fmt.Sprintf("Cash product '%s' not found.", r.ItemName))
			continue
		}

		quote := s.pricing.Price(pricing.Line{ItemName: r.ItemName, Amount: r.Amount, Rate: rate})
		items = append(items, model.CashSale{
			ItemName:   r.ItemName,
			Amount:     r.Amount,
			Rate:       quote.Rate,
			TotalPrice: quote.Total,
		})
	}
	if len(problems) > 0 {
		return nil, NewValidationError(problems...)
	}
	return items, nil
}

func (s *cashSaleService) GetCashInvoice(ctx context.Context, invoiceID string) (*CashInvoiceResponse, error) {
	id, err := parseInvoiceID(invoiceID)
	if err != nil {
		return nil, err
	}
	invoice, err := s.repo.FindInvoiceByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, wrapPersistence("get cash invoice", err)
	}
	res := toCashInvoiceResponse(invoice)
	return &res, nil
}

func (s *cashSaleService) DeleteCashSale(ctx context.Context, userID, invoiceID string) error {
	id, err := parseInvoiceID(invoiceID)
	if err != nil {
		return err
	}

	var invoiceNo string
	var day time.Time
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, err := s.lockCashInvoice(txCtx, id)
		if err != nil {
			return err
		}
		invoiceNo, day = invoice.InvoiceNo, invoice.DateOfSale

		if err := s.audit.Record(txCtx, AuditEntry{
			Actor:      parseActor(userID),
			Action:     model.ActionDeleteCashSale,
			EntityID:   invoice.ID.String(),
			EntityName: invoice.InvoiceNo,
			Details: map[string]interface{}{
				"customer_name": invoice.CustomerName,
				"total":         invoice.Total,
			},
		}); err != nil {
			return err
		}
		return s.repo.DeleteInvoice(txCtx, invoice.ID)
	})
	if err != nil {
		return wrapPersistence("delete cash sale", err)
	}

	s.notify.invoiceChanged(ctx, "cash_deleted", invoiceNo, day, nil)
	return nil
}

func (s *cashSaleService) CancelCashInvoice(ctx context.Context, userID, invoiceID string, req CancelRequest) (*CashInvoiceResponse, error) {
	id, err := parseInvoiceID(invoiceID)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	var invoice *model.CashInvoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, err = s.lockCashInvoice(txCtx, id)
		if err != nil {
			return err
		}
		if invoice.PaymentStatus == model.StatusCancelled {
			return ErrInvoiceCancelled
		}
		invoice.PaymentStatus = model.StatusCancelled
		if err := s.repo.SaveInvoice(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to cancel cash invoice: %w", err)
		}
		return s.audit.Record(txCtx, AuditEntry{
			Actor:      parseActor(userID),
			Action:     model.ActionCancelCashSale,
			EntityID:   invoice.ID.String(),
			EntityName: invoice.InvoiceNo,
			Details:    map[string]interface{}{"reason": req.Reason},
		})
	})
	if err != nil {
		return nil, wrapPersistence("cancel cash invoice", err)
	}

	s.notify.invoiceChanged(ctx, "cash_cancelled", invoice.InvoiceNo, invoice.DateOfSale, nil)
	return s.GetCashInvoice(ctx, invoice.ID.String())
}

func (s *cashSaleService) lockCashInvoice(ctx context.Context, id uuid.UUID) (*model.CashInvoice, error) {
	invoice, err := s.repo.FindInvoiceByIDForUpdate(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock cash invoice: %w", err)
	}
	return invoice, nil
}

func toCashInvoiceResponse(inv *model.CashInvoice) CashInvoiceResponse {
	res := CashInvoiceResponse{
		ID:            inv.ID.String(),
		InvoiceNo:     inv.InvoiceNo,
		CustomerName:  inv.CustomerName,
		CustomerPhone: inv.CustomerPhone,
		DateOfSale:    inv.DateOfSale.Format(dateLayout),
		Notes:         inv.Notes,
		Total:         inv.Total,
		PaymentStatus: string(inv.PaymentStatus),
		Items:         make([]CashLineResponse, 0, len(inv.Items)),
	}
	for _, item := range inv.Items {
		res.Items = append(res.Items, CashLineResponse{
			ID:         item.ID.String(),
			ItemName:   item.ItemName,
			Amount:     item.Amount,
			Rate:       item.Rate,
			TotalPrice: item.TotalPrice,
		})
	}
	return res
}
