package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a stock-carrying catalog entry. Line items refer to it by Name.
type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock     int             `gorm:"type:int;default:0;not null" json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// MovementType classifies a stock movement
type MovementType string

const (
	MovementSale       MovementType = "SALE"
	MovementPurchase   MovementType = "PURCHASE"
	MovementAdjustment MovementType = "ADJUSTMENT"
	MovementReturn     MovementType = "RETURN"
	MovementRestock    MovementType = "RESTOCK"
)

// IsManual reports whether the type may be recorded by a stock adjustment
// rather than by the sale flow.
func (t MovementType) IsManual() bool {
	switch t {
	case MovementPurchase, MovementAdjustment, MovementRestock:
		return true
	}
	return false
}

// StockMovement is the append-only stock card entry
type StockMovement struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"product_id"`
	Product        *Product     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	MovementType   MovementType `gorm:"type:varchar(20);not null;index" json:"movement_type"`
	QuantityChange int          `gorm:"type:int;not null" json:"quantity_change"`
	StockBefore    int          `gorm:"type:int;not null" json:"stock_before"`
	StockAfter     int          `gorm:"type:int;not null" json:"stock_after"`
	Reference      string       `gorm:"type:varchar(100);index" json:"reference"`
	Notes          string       `gorm:"type:text" json:"notes"`
	CreatedBy      *uuid.UUID   `gorm:"type:uuid" json:"created_by"`
	CreatedAt      time.Time    `gorm:"index" json:"created_at"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	assignID(&m.ID)
	return nil
}
