package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashProduct is a cash-department service priced by rate instead of stock.
type CashProduct struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Rate      decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"rate"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (p *CashProduct) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// CashInvoice is settled at the counter, so it is either paid or cancelled.
type CashInvoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNo     string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"invoice_no"`
	CustomerName  string          `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerPhone string          `gorm:"type:varchar(30)" json:"customer_phone"`
	DateOfSale    time.Time       `gorm:"type:date;not null;index" json:"date_of_sale"`
	Notes         string          `gorm:"type:text" json:"notes"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null;default:'paid'" json:"payment_status"`
	UserID        *uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	Items         []CashSale      `gorm:"foreignKey:InvoiceID" json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (i *CashInvoice) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// RecalculateTotal sums the line totals
func (i *CashInvoice) RecalculateTotal(items []CashSale) {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.TotalPrice)
	}
	i.Total = sum
}

// CashSale is a cash-department line item
type CashSale struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ItemName   string          `gorm:"type:varchar(255);not null" json:"item_name"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Rate       decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"rate"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (s *CashSale) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}
