package repository

import (
	"context"
	"errors"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CashRepository interface {
	CreateProduct(ctx context.Context, product *model.CashProduct) error
	FindProductsByNames(ctx context.Context, names []string) ([]model.CashProduct, error)
	ListProducts(ctx context.Context) ([]model.CashProduct, error)

	CreateInvoice(ctx context.Context, invoice *model.CashInvoice, items []model.CashSale) error
	SaveInvoice(ctx context.Context, invoice *model.CashInvoice) error
	DeleteInvoice(ctx context.Context, id uuid.UUID) error
	FindInvoiceByID(ctx context.Context, id uuid.UUID) (*model.CashInvoice, error)
	FindInvoiceByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.CashInvoice, error)
	LastInvoiceNo(ctx context.Context, prefix string) (string, error)
}

type cashRepository struct {
	db *gorm.DB
}

func NewCashRepository(db *gorm.DB) CashRepository {
	return &cashRepository{db: db}
}

func (r *cashRepository) CreateProduct(ctx context.Context, product *model.CashProduct) error {
	return GetDB(ctx, r.db).Create(product).Error
}

func (r *cashRepository) FindProductsByNames(ctx context.Context, names []string) ([]model.CashProduct, error) {
	var products []model.CashProduct
	if len(names) == 0 {
		return products, nil
	}
	err := GetDB(ctx, r.db).Where("name IN ?", names).Find(&products).Error
	return products, err
}

func (r *cashRepository) ListProducts(ctx context.Context) ([]model.CashProduct, error) {
	var products []model.CashProduct
	err := GetDB(ctx, r.db).Order("name asc").Find(&products).Error
	return products, err
}

func (r *cashRepository) CreateInvoice(ctx context.Context, invoice *model.CashInvoice, items []model.CashSale) error {
	db := GetDB(ctx, r.db)
	if err := db.Omit(clause.Associations).Create(invoice).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].InvoiceID = invoice.ID
	}
	return db.Create(&items).Error
}

func (r *cashRepository) SaveInvoice(ctx context.Context, invoice *model.CashInvoice) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(invoice).Error
}

func (r *cashRepository) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("invoice_id = ?", id).Delete(&model.CashSale{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.CashInvoice{}).Error
}

func (r *cashRepository) FindInvoiceByID(ctx context.Context, id uuid.UUID) (*model.CashInvoice, error) {
	var invoice model.CashInvoice
	if err := GetDB(ctx, r.db).Preload("Items").First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *cashRepository) FindInvoiceByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.CashInvoice, error) {
	var invoice model.CashInvoice
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *cashRepository) LastInvoiceNo(ctx context.Context, prefix string) (string, error) {
	var invoice model.CashInvoice
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
