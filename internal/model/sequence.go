package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxInvoiceSuffix is the largest per-day number a three-digit suffix can hold.
const MaxInvoiceSuffix = 999

// InvoiceSequence is the per-day counter row behind invoice numbers.
// Prefix is the full daily prefix, e.g. "INV-20250101-".
type InvoiceSequence struct {
	Prefix    string `gorm:"type:varchar(30);primaryKey"`
	LastValue int    `gorm:"type:int;not null;default:0"`
	UpdatedAt time.Time
}

// DailyPrefix builds "<series>-YYYYMMDD-"
func DailyPrefix(series string, day time.Time) string {
	return fmt.Sprintf("%s-%s-", series, day.Format("20060102"))
}

// FormatInvoiceNo renders prefix plus a zero-padded three-digit suffix
func FormatInvoiceNo(prefix string, n int) string {
	return fmt.Sprintf("%s%03d", prefix, n)
}

// ParseInvoiceSuffix extracts the numeric suffix of an invoice number issued under prefix.
func ParseInvoiceSuffix(prefix, invoiceNo string) (int, bool) {
	if !strings.HasPrefix(invoiceNo, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(invoiceNo, prefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
