package handler

import (
	"net/http"

	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

type CashHandler struct {
	cashService service.CashSaleService
}

func NewCashHandler(cashService service.CashSaleService) *CashHandler {
	return &CashHandler{cashService: cashService}
}

func (h *CashHandler) RegisterRoutes(router *gin.RouterGroup, guards Guards) {
	cash := router.Group("/api/cash")
	{
		cash.GET("/products", guards.Any, h.ListCashProducts)
		cash.POST("/products", guards.Manager, h.CreateCashProduct)
		cash.POST("/sales", guards.Any, h.CreateCashSale)
		cash.GET("/invoices/:id", guards.Any, h.GetCashInvoice)
		cash.DELETE("/invoices/:id", guards.Manager, h.DeleteCashSale)
		cash.POST("/invoices/:id/cancel", guards.Manager, h.CancelCashInvoice)
	}
}

// @Summary      List cash products
// @Tags         cash
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.CashProductResponse}
// @Router       /api/cash/products [get]
func (h *CashHandler) ListCashProducts(c *gin.Context) {
	products, err := h.cashService.ListCashProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, products))
}

// @Summary      Create cash product
// @Tags         cash
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateCashProductRequest  true  "Cash product"
// @Success      201      {object}  response.Response{data=service.CashProductResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/cash/products [post]
func (h *CashHandler) CreateCashProduct(c *gin.Context) {
	var req service.CreateCashProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.cashService.CreateCashProduct(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

// CreateCashSale records a rate-priced cash sale, settled on the spot
// @Summary      Create cash sale
// @Tags         cash
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CashSaleRequest  true  "Cash sale"
// @Success      201      {object}  response.Response{data=service.CashInvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/cash/sales [post]
func (h *CashHandler) CreateCashSale(c *gin.Context) {
	var req service.CashSaleRequest
	if !bindJSON(c, &req) {
		return
	}

	invoice, err := h.cashService.CreateCashSale(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// @Summary      Get cash invoice
// @Tags         cash
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Cash invoice ID"
// @Success      200  {object}  response.Response{data=service.CashInvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/cash/invoices/{id} [get]
func (h *CashHandler) GetCashInvoice(c *gin.Context) {
	invoice, err := h.cashService.GetCashInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// @Summary      Delete cash sale
// @Tags         cash
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Cash invoice ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/cash/invoices/{id} [delete]
func (h *CashHandler) DeleteCashSale(c *gin.Context) {
	if err := h.cashService.DeleteCashSale(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]string{"message": "Cash sale deleted successfully"}))
}

// @Summary      Cancel cash invoice
// @Tags         cash
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true   "Cash invoice ID"
// @Param        payload  body      service.CancelRequest  false  "Reason"
// @Success      200      {object}  response.Response{data=service.CashInvoiceResponse}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/cash/invoices/{id}/cancel [post]
func (h *CashHandler) CancelCashInvoice(c *gin.Context) {
	var req service.CancelRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	invoice, err := h.cashService.CancelCashInvoice(c.Request.Context(), currentUser(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}
