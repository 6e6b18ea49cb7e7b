package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Column aliases accepted in sales exports. The first name is the current
// export format, the second the legacy spreadsheet layout.
var (
	colDate       = []string{"Date of Sale", "DATE_TODAY"}
	colInvoiceNo  = []string{"Invoice No", "INV NO"}
	colCustomer   = []string{"Customer Name", "CUSTOMER NA"}
	colPhone      = []string{"Customer Phone", "CUSTOMER NO"}
	colItem       = []string{"Item", "TYPE OF JOB"}
	colQuantity   = []string{"Quantity", "QTY"}
	colUnitPrice  = []string{"Unit Price", "UP"}
	colAmountPaid = []string{"Amount Paid", "AMT PAID"}
)

var dateLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006"}

// SaleRow is one parsed line of a sales export
type SaleRow struct {
	Line            int
	SourceInvoiceNo string
	DateOfSale      string // YYYY-MM-DD, empty when absent
	CustomerName    string
	CustomerPhone   string
	ItemName        string
	Quantity        int
	UnitPrice       *decimal.Decimal
	AmountPaid      decimal.Decimal
}

// RowError is a line that could not be parsed
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("Row %d: %v", e.Line, e.Err)
}

// ParseSales reads a sales export. Unparseable rows come back as RowErrors and
// do not stop the rest of the file.
func ParseSales(r io.Reader) ([]SaleRow, []RowError, error) {
	p, err := NewParser(r)
	if err != nil {
		return nil, nil, err
	}
	if err := p.ParseHeader(); err != nil {
		return nil, nil, err
	}
	if missing := missingColumns(p.Headers(), colCustomer, colItem); len(missing) > 0 {
		return nil, nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	rows, rowErrs := p.ReadAllRows()

	var out []SaleRow
	for _, row := range rows {
		sale, err := parseSaleRow(row)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: row.LineNumber, Err: err})
			continue
		}
		out = append(out, sale)
	}
	return out, rowErrs, nil
}

func parseSaleRow(row *Row) (SaleRow, error) {
	sale := SaleRow{
		Line:            row.LineNumber,
		SourceInvoiceNo: row.First(colInvoiceNo...),
		CustomerName:    row.First(colCustomer...),
		CustomerPhone:   row.First(colPhone...),
		ItemName:        row.First(colItem...),
		Quantity:        1,
	}
	if sale.CustomerName == "" {
		return SaleRow{}, fmt.Errorf("customer name is empty")
	}
	if sale.ItemName == "" {
		return SaleRow{}, fmt.Errorf("item is empty")
	}

	if raw := row.First(colDate...); raw != "" {
		d, err := ParseDate(raw)
		if err != nil {
			return SaleRow{}, err
		}
		sale.DateOfSale = d.Format("2006-01-02")
	}

	if raw := row.First(colQuantity...); raw != "" {
		q, err := strconv.ParseFloat(raw, 64)
		if err != nil || q < 1 {
			return SaleRow{}, fmt.Errorf("invalid quantity %q", raw)
		}
		sale.Quantity = int(q)
	}

	if raw := row.First(colUnitPrice...); raw != "" {
		price, err := parseMoney(raw)
		if err != nil {
			return SaleRow{}, fmt.Errorf("invalid unit price %q", raw)
		}
		sale.UnitPrice = &price
	}

	if raw := row.First(colAmountPaid...); raw != "" {
		paid, err := parseMoney(raw)
		if err != nil {
			return SaleRow{}, fmt.Errorf("invalid amount paid %q", raw)
		}
		sale.AmountPaid = paid
	}

	return sale, nil
}

// ParseDate accepts YYYY-MM-DD and DD/MM/YYYY.
func ParseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or DD/MM/YYYY", raw)
}

// parseMoney tolerates thousands separators
func parseMoney(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
}

func missingColumns(headers []string, groups ...[]string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	var missing []string
	for _, aliases := range groups {
		found := false
		for _, a := range aliases {
			if present[a] {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, strings.Join(aliases, "|"))
		}
	}
	return missing
}

// Group collects rows that share a source invoice number, in file order.
// Rows without one form their own group.
func Group(rows []SaleRow) [][]SaleRow {
	var groups [][]SaleRow
	index := make(map[string]int)
	for _, r := range rows {
		if r.SourceInvoiceNo == "" {
			groups = append(groups, []SaleRow{r})
			continue
		}
		if i, ok := index[r.SourceInvoiceNo]; ok {
			groups[i] = append(groups[i], r)
			continue
		}
		index[r.SourceInvoiceNo] = len(groups)
		groups = append(groups, []SaleRow{r})
	}
	return groups
}
