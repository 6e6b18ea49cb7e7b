package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus of an invoice
type PaymentStatus string

const (
	StatusUnpaid    PaymentStatus = "unpaid"
	StatusPartial   PaymentStatus = "partial"
	StatusPaid      PaymentStatus = "paid"
	StatusOverdue   PaymentStatus = "overdue"
	StatusCancelled PaymentStatus = "cancelled"
)

// Invoice is the header of a sale. Total and PaymentStatus are derived and must
// only be changed through RecalculateTotal and RefreshPaymentStatus.
type Invoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNo     string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"invoice_no"`
	CustomerName  string          `gorm:"type:varchar(255);not null;index" json:"customer_name"`
	CustomerPhone string          `gorm:"type:varchar(30)" json:"customer_phone"`
	DateOfSale    time.Time       `gorm:"type:date;not null;index" json:"date_of_sale"`
	DueDate       *time.Time      `gorm:"type:date" json:"due_date"`
	Notes         string          `gorm:"type:text" json:"notes"`
	Discount      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"amount_paid"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null;default:'unpaid';index" json:"payment_status"`
	UserID        *uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	User          *User           `gorm:"foreignKey:UserID" json:"-"`
	Items         []Sale          `gorm:"foreignKey:InvoiceID" json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// Sale is a single line item of an invoice
type Sale struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ItemName   string          `gorm:"type:varchar(255);not null;index" json:"item_name"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Quantity   int             `gorm:"type:int;not null" json:"quantity"`
	Discount   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// DerivePaymentStatus computes the status of a non-cancelled invoice.
// A due date only matters once the calendar day of today is strictly after it.
func DerivePaymentStatus(total, amountPaid decimal.Decimal, dueDate *time.Time, today time.Time) PaymentStatus {
	var status PaymentStatus
	switch {
	case amountPaid.IsZero():
		status = StatusUnpaid
	case amountPaid.GreaterThanOrEqual(total):
		status = StatusPaid
	default:
		status = StatusPartial
	}

	if dueDate != nil && status != StatusPaid && civilDate(today).After(civilDate(*dueDate)) {
		status = StatusOverdue
	}
	return status
}

// RecalculateTotal sets Total to the sum of line totals minus the invoice discount.
func (i *Invoice) RecalculateTotal(items []Sale) {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.TotalPrice)
	}
	i.Total = sum.Sub(i.Discount)
}

// RefreshPaymentStatus recomputes the status. Cancelled invoices keep their status.
func (i *Invoice) RefreshPaymentStatus(today time.Time) {
	if i.PaymentStatus == StatusCancelled {
		return
	}
	i.PaymentStatus = DerivePaymentStatus(i.Total, i.AmountPaid, i.DueDate, today)
}

// Cancel marks the invoice cancelled. It returns false if it already was.
func (i *Invoice) Cancel() bool {
	if i.PaymentStatus == StatusCancelled {
		return false
	}
	i.PaymentStatus = StatusCancelled
	return true
}

func (i *Invoice) IsCancelled() bool {
	return i.PaymentStatus == StatusCancelled
}

// Balance is the amount still owed
func (i *Invoice) Balance() decimal.Decimal {
	return i.Total.Sub(i.AmountPaid)
}

// civilDate drops the clock and zone of t, keeping the calendar day as seen in t's location.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
