package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateSale     = "CREATE_SALE"
	ActionEditSale       = "EDIT_SALE"
	ActionDeleteSale     = "DELETE_SALE"
	ActionUpdatePayment  = "UPDATE_PAYMENT"
	ActionCancelInvoice  = "CANCEL_INVOICE"
	ActionMarkOverdue    = "MARK_OVERDUE"
	ActionImportSales    = "IMPORT_SALES"
	ActionCreateCashSale = "CREATE_CASH_SALE"
	ActionDeleteCashSale = "DELETE_CASH_SALE"
	ActionCancelCashSale = "CANCEL_CASH_SALE"
	ActionCreateProduct  = "CREATE_PRODUCT"
	ActionUpdateProduct  = "UPDATE_PRODUCT"
	ActionDeleteProduct  = "DELETE_PRODUCT"
	ActionAdjustStock    = "ADJUST_STOCK"
	ActionCreateCashItem = "CREATE_CASH_PRODUCT"
)

// AuditLog tracks who changed what. Rows are never updated.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nil for CLI and system jobs
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:text" json:"details"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}
