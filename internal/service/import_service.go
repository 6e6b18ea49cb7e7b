package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"backoffice/internal/importer"
	"backoffice/internal/logger"
	"backoffice/internal/model"
	"backoffice/internal/repository"

	"go.uber.org/zap"
)

type ImportResult struct {
	Imported int      `json:"imported"`
	Invoices []string `json:"invoices"`
	Errors   []string `json:"errors"`
}

// ImportService replays a sales export through the sale service, one invoice
// per source invoice number. A failing invoice never aborts the batch.
type ImportService interface {
	ImportSales(ctx context.Context, userID string, r io.Reader) (*ImportResult, error)
}

type importService struct {
	sales     SaleService
	audit     AuditRecorder
	txManager repository.TransactionManager
	log       *zap.Logger
}

func NewImportService(sales SaleService, audit AuditRecorder, txManager repository.TransactionManager, log *zap.Logger) ImportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &importService{sales: sales, audit: audit, txManager: txManager, log: log}
}

func (s *importService) ImportSales(ctx context.Context, userID string, r io.Reader) (*ImportResult, error) {
	rows, rowErrs, err := importer.ParseSales(r)
	if err != nil {
		return nil, NewValidationError(err.Error())
	}

	result := &ImportResult{Invoices: []string{}, Errors: []string{}}
	for _, e := range rowErrs {
		result.Errors = append(result.Errors, e.Error())
	}

	log := logger.FromContext(ctx, s.log)
	for _, group := range importer.Group(rows) {
		sale, err := s.sales.CreateSale(ctx, userID, toSaleRequest(group))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", group[0].Line, describe(err)))
			continue
		}
		result.Imported += len(group)
		result.Invoices = append(result.Invoices, sale.Invoice.InvoiceNo)
		for _, w := range sale.Warnings {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: warning: %s", group[0].Line, w))
		}
	}

	log.Info("sales import finished",
		zap.Int("rows_imported", result.Imported),
		zap.Int("invoices", len(result.Invoices)),
		zap.Int("errors", len(result.Errors)))

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.audit.Record(txCtx, AuditEntry{
			Actor:      parseActor(userID),
			Action:     model.ActionImportSales,
			EntityName: fmt.Sprintf("%d invoices", len(result.Invoices)),
			Details:    result,
		})
	})
	if err != nil {
		return result, wrapPersistence("record import", err)
	}
	return result, nil
}

func toSaleRequest(group []importer.SaleRow) SaleRequest {
	head := group[0]
	req := SaleRequest{
		CustomerName:  head.CustomerName,
		CustomerPhone: head.CustomerPhone,
		DateOfSale:    head.DateOfSale,
		AmountPaid:    head.AmountPaid,
		Items:         make([]SaleItemRequest, 0, len(group)),
	}
	if head.SourceInvoiceNo != "" {
		req.Notes = "Imported from invoice " + head.SourceInvoiceNo
	}
	for _, row := range group {
		req.Items = append(req.Items, SaleItemRequest{
			ItemName:  row.ItemName,
			Quantity:  row.Quantity,
			UnitPrice: row.UnitPrice,
		})
	}
	return req
}

func describe(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return strings.Join(ve.Problems, "; ")
	}
	return err.Error()
}
