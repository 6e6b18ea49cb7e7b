package service

import (
	"context"
	"strings"
	"testing"

	"backoffice/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestImportService_ImportSales(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "Toner", "10", 10)
	f.seedProduct(t, "Paper", "2", 1)
	svc := NewImportService(f.sales, f.audit, f.txManager, zaptest.NewLogger(t))

	csv := "Date of Sale,Invoice No,Customer Name,Item,Quantity,Unit Price,AMT PAID\n" +
		"01/03/2025,OLD-1,Ada,Toner,2,,20\n" +
		"01/03/2025,OLD-1,Ada,Paper,3,2,0\n" +
		"02/03/2025,OLD-2,Bola,Ghost,1,5,0\n" +
		"02/03/2025,,Chi,Toner,x,,0\n" +
		"03/03/2025,,Dayo,Toner,1,9.5,9.5\n"

	res, err := svc.ImportSales(context.Background(), "", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, []string{"INV-20250310-001", "INV-20250310-002"}, res.Invoices)
	require.Len(t, res.Errors, 3)
	assert.Equal(t, "Row 5: invalid quantity \"x\"", res.Errors[0])
	assert.Contains(t, res.Errors, "Row 4: Product 'Ghost' not found in inventory.")
	assert.Contains(t, res.Errors[1], "Row 2: warning: Insufficient stock for 'Paper'")

	assert.Equal(t, 7, f.stockOf(t, "Toner"))
	assert.Equal(t, 0, f.stockOf(t, "Paper"))

	first, _, err := f.sales.ListInvoices(context.Background(), InvoiceListRequest{Search: "ada"})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "2025-03-01", first[0].DateOfSale)
	assert.Equal(t, "Imported from invoice OLD-1", first[0].Notes)
	assert.Len(t, first[0].Items, 2)
	assert.True(t, dec("26").Equal(first[0].Total))

	assert.Contains(t, f.auditActions(t), model.ActionImportSales)
}

func TestImportService_RejectsUnreadableFile(t *testing.T) {
	f := newFixture(t)
	svc := NewImportService(f.sales, f.audit, f.txManager, nil)

	_, err := svc.ImportSales(context.Background(), "", strings.NewReader("Foo,Bar\n1,2\n"))
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}
