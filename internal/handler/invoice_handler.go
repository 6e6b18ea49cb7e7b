package handler

import (
	"net/http"

	"backoffice/internal/service"
	"backoffice/pkg/pagination"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

// maxImportSize caps CSV uploads
const maxImportSize = 10 << 20

type InvoiceHandler struct {
	saleService   service.SaleService
	importService service.ImportService
}

func NewInvoiceHandler(saleService service.SaleService, importService service.ImportService) *InvoiceHandler {
	return &InvoiceHandler{saleService: saleService, importService: importService}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup, guards Guards) {
	router.POST("/api/sales", guards.Any, h.CreateSale)

	invoices := router.Group("/api/invoices")
	{
		invoices.GET("", guards.Any, h.ListInvoices)
		invoices.POST("/refresh-overdue", guards.Manager, h.RefreshOverdue)
		invoices.POST("/import", guards.Manager, h.ImportSales)
		invoices.GET("/:id", guards.Any, h.GetInvoice)
		invoices.PUT("/:id", guards.Manager, h.EditSale)
		invoices.DELETE("/:id", guards.Manager, h.DeleteSale)
		invoices.POST("/:id/payment", guards.Any, h.RecordPayment)
		invoices.POST("/:id/cancel", guards.Manager, h.CancelInvoice)
	}
}

// CreateSale records a sale and deducts its stock
// @Summary      Create sale
// @Description  Creates an invoice with its line items. Stock shortages are reported as warnings, never as errors.
// @Tags         sales
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SaleRequest  true  "Sale"
// @Success      201      {object}  response.Response{data=service.SaleResult}
// @Failure      400      {object}  response.Response
// @Router       /api/sales [post]
func (h *InvoiceHandler) CreateSale(c *gin.Context) {
	var req service.SaleRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.saleService.CreateSale(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListInvoices handles paginated invoice lookups
// @Summary      List invoices
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "unpaid, partial, paid, overdue or cancelled"
// @Param        search  query     string  false  "Invoice number or customer"
// @Param        from    query     string  false  "Earliest sale date (YYYY-MM-DD)"
// @Param        to      query     string  false  "Latest sale date (YYYY-MM-DD)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      400     {object}  response.Response
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	p := pagination.Parse(c)

	invoices, total, err := h.saleService.ListInvoices(c.Request.Context(), service.InvoiceListRequest{
		Status: c.Query("status"),
		Search: c.Query("search"),
		From:   c.Query("from"),
		To:     c.Query("to"),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(p, invoices, total)))
}

// GetInvoice returns one invoice with its items
// @Summary      Get invoice
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.saleService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// EditSale replaces the items and header of an invoice
// @Summary      Edit sale
// @Description  Restores the stock of the old items, then deducts the new ones
// @Tags         sales
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Invoice ID"
// @Param        payload  body      service.SaleRequest  true  "Sale"
// @Success      200      {object}  response.Response{data=service.SaleResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/invoices/{id} [put]
func (h *InvoiceHandler) EditSale(c *gin.Context) {
	var req service.SaleRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.saleService.EditSale(c.Request.Context(), currentUser(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// DeleteSale deletes an invoice and restores its stock
// @Summary      Delete sale
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.DeletionReceipt}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) DeleteSale(c *gin.Context) {
	receipt, err := h.saleService.DeleteSale(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, receipt))
}

// RecordPayment sets the amount paid so far
// @Summary      Record payment
// @Tags         sales
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                  true  "Invoice ID"
// @Param        payload  body      service.PaymentRequest  true  "Payment"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/invoices/{id}/payment [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	var req service.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	invoice, err := h.saleService.RecordPayment(c.Request.Context(), currentUser(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// CancelInvoice marks an invoice cancelled without touching stock
// @Summary      Cancel invoice
// @Tags         sales
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true   "Invoice ID"
// @Param        payload  body      service.CancelRequest  false  "Reason"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/invoices/{id}/cancel [post]
func (h *InvoiceHandler) CancelInvoice(c *gin.Context) {
	var req service.CancelRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	invoice, err := h.saleService.CancelInvoice(c.Request.Context(), currentUser(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// RefreshOverdue marks unpaid invoices past their due date as overdue
// @Summary      Refresh overdue invoices
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/invoices/refresh-overdue [post]
func (h *InvoiceHandler) RefreshOverdue(c *gin.Context) {
	updated, err := h.saleService.RefreshOverdue(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]int{"updated": updated}))
}

// ImportSales loads a CSV export of past sales
// @Summary      Import sales
// @Description  Each source invoice becomes one sale. Failing rows are reported and skipped.
// @Tags         sales
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CSV file"
// @Success      200   {object}  response.Response{data=service.ImportResult}
// @Failure      400   {object}  response.Response
// @Router       /api/invoices/import [post]
func (h *InvoiceHandler) ImportSales(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "A CSV file is required in the 'file' field"))
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Could not read the uploaded file"))
		return
	}
	defer file.Close()

	result, err := h.importService.ImportSales(c.Request.Context(), currentUser(c), file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
