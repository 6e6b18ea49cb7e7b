package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSales(t *testing.T) {
	t.Run("Current export format", func(t *testing.T) {
		csv := "Date of Sale,Invoice No,Customer Name,Item,Quantity,Unit Price,AMT PAID\n" +
			"2025-03-01,OLD-1,Ada,Toner,2,15.50,31\n" +
			"2025-03-01,OLD-1,Ada,Paper,1,,0\n"

		rows, rowErrs, err := ParseSales(strings.NewReader(csv))
		require.NoError(t, err)
		assert.Empty(t, rowErrs)
		require.Len(t, rows, 2)

		assert.Equal(t, 2, rows[0].Line)
		assert.Equal(t, "2025-03-01", rows[0].DateOfSale)
		assert.Equal(t, "Toner", rows[0].ItemName)
		assert.Equal(t, 2, rows[0].Quantity)
		require.NotNil(t, rows[0].UnitPrice)
		assert.Equal(t, "15.5", rows[0].UnitPrice.String())
		assert.Equal(t, "31", rows[0].AmountPaid.String())

		assert.Nil(t, rows[1].UnitPrice)
	})

	t.Run("Legacy spreadsheet headers and day-first dates", func(t *testing.T) {
		csv := "\xEF\xBB\xBFDATE_TODAY,INV NO,CUSTOMER NA,CUSTOMER NO,TYPE OF JOB,QTY,UP,AMT PAID\n" +
			"05/02/2025,77,Bola,0800,Binding,3.0,\"1,200\",100\n"

		rows, rowErrs, err := ParseSales(strings.NewReader(csv))
		require.NoError(t, err)
		assert.Empty(t, rowErrs)
		require.Len(t, rows, 1)

		assert.Equal(t, "2025-02-05", rows[0].DateOfSale)
		assert.Equal(t, "Bola", rows[0].CustomerName)
		assert.Equal(t, "0800", rows[0].CustomerPhone)
		assert.Equal(t, 3, rows[0].Quantity)
		assert.Equal(t, "1200", rows[0].UnitPrice.String())
	})

	t.Run("Bad rows are reported and skipped", func(t *testing.T) {
		csv := "Customer Name,Item,Quantity,Date of Sale\n" +
			"Ada,Toner,abc,\n" +
			",,,\n" +
			"Ada,,1,\n" +
			"Ada,Toner,1,31/31/2025\n" +
			"Ada,Toner,1,\n"

		rows, rowErrs, err := ParseSales(strings.NewReader(csv))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 6, rows[0].Line)
		assert.Equal(t, 1, rows[0].Quantity)

		require.Len(t, rowErrs, 3)
		assert.Equal(t, 2, rowErrs[0].Line)
		assert.Contains(t, rowErrs[0].Error(), "Row 2: invalid quantity")
		assert.Equal(t, 4, rowErrs[1].Line)
		assert.Equal(t, 5, rowErrs[2].Line)
	})

	t.Run("Missing columns", func(t *testing.T) {
		_, _, err := ParseSales(strings.NewReader("Date,Amount\n2025-01-01,3\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Customer Name|CUSTOMER NA")
	})

	t.Run("Empty file", func(t *testing.T) {
		_, _, err := ParseSales(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})
}

func TestGroup(t *testing.T) {
	rows := []SaleRow{
		{Line: 2, SourceInvoiceNo: "A"},
		{Line: 3},
		{Line: 4, SourceInvoiceNo: "B"},
		{Line: 5, SourceInvoiceNo: "A"},
		{Line: 6},
	}

	groups := Group(rows)
	require.Len(t, groups, 4)
	assert.Equal(t, []int{2, 5}, lines(groups[0]))
	assert.Equal(t, []int{3}, lines(groups[1]))
	assert.Equal(t, []int{4}, lines(groups[2]))
	assert.Equal(t, []int{6}, lines(groups[3]))
}

func lines(rows []SaleRow) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Line
	}
	return out
}
