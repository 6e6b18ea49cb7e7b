package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceFilter narrows invoice listings. Zero values mean "any".
type InvoiceFilter struct {
	Status string
	Search string // matches invoice number or customer name
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	Save(ctx context.Context, invoice *model.Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]model.Invoice, int64, error)
	ListWithDueDate(ctx context.Context, statuses []model.PaymentStatus) ([]model.Invoice, error)
	LastInvoiceNo(ctx context.Context, prefix string) (string, error)

	FindItems(ctx context.Context, invoiceID uuid.UUID) ([]model.Sale, error)
	CreateItems(ctx context.Context, items []model.Sale) error
	DeleteItems(ctx context.Context, invoiceID uuid.UUID) error
	CountItemsByName(ctx context.Context, itemName string) (int64, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

// Create inserts the header only; line items go through CreateItems.
func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(invoice).Error
}

func (r *invoiceRepository) Save(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(invoice).Error
}

// Delete removes the invoice and its line items
func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("invoice_id = ?", id).Delete(&model.Sale{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.Invoice{}).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindByIDForUpdate locks the invoice row. Items are loaded separately with FindItems.
func (r *invoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context, filter InvoiceFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Invoice{})
	if filter.Status != "" {
		query = query.Where("payment_status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(invoice_no) LIKE ? OR LOWER(customer_name) LIKE ?", like, like)
	}
	if filter.From != nil {
		query = query.Where("date_of_sale >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date_of_sale <= ?", *filter.To)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("Items").Order("invoice_no desc").
		Offset(offset).Limit(filter.Limit).Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (r *invoiceRepository) ListWithDueDate(ctx context.Context, statuses []model.PaymentStatus) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := GetDB(ctx, r.db).
		Where("due_date IS NOT NULL AND payment_status IN ?", statuses).
		Find(&invoices).Error
	return invoices, err
}

// LastInvoiceNo returns the highest invoice number issued under prefix, or "" if none.
func (r *invoiceRepository) LastInvoiceNo(ctx context.Context, prefix string) (string, error) {
	var invoice model.Invoice
	err := GetDB(ctx, r.db).Select("invoice_no").
		Where("invoice_no LIKE ?", prefix+"%").
		Order("invoice_no desc").First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return invoice.InvoiceNo, nil
}

func (r *invoiceRepository) FindItems(ctx context.Context, invoiceID uuid.UUID) ([]model.Sale, error) {
	var items []model.Sale
	if err := GetDB(ctx, r.db).Where("invoice_id = ?", invoiceID).
		Order("created_at asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *invoiceRepository) CreateItems(ctx context.Context, items []model.Sale) error {
	if len(items) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&items).Error
}

func (r *invoiceRepository) DeleteItems(ctx context.Context, invoiceID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("invoice_id = ?", invoiceID).Delete(&model.Sale{}).Error
}

func (r *invoiceRepository) CountItemsByName(ctx context.Context, itemName string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Sale{}).Where("item_name = ?", itemName).Count(&count).Error
	return count, err
}
