package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"backoffice/internal/repository"
	"backoffice/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupCashRouter() (*gin.Engine, *MockCashSaleService) {
	r, guards := newEngine()
	cash := new(MockCashSaleService)
	NewCashHandler(cash).RegisterRoutes(&r.RouterGroup, guards)
	return r, cash
}

func TestCashHandler_CreateCashSale(t *testing.T) {
	r, cash := setupCashRouter()
	cash.On("CreateCashSale", mock.Anything, actorID, mock.MatchedBy(func(req service.CashSaleRequest) bool {
		return len(req.Items) == 1 && req.Items[0].Amount.Equal(decimal.NewFromInt(8000))
	})).Return(&service.CashInvoiceResponse{InvoiceNo: "CASH-20250310-001", Total: decimal.NewFromInt(8), PaymentStatus: "paid"}, nil)

	body := []byte(`{"customer_name":"Ada","items":[{"item_name":"SUBSCRIBER WITHDRAWAL","amount":"8000"}]}`)
	w, env := do(t, r, http.MethodPost, "/api/cash/sales", bearer(t, "staff"), body, "application/json")

	assert.Equal(t, http.StatusCreated, w.Code)
	var invoice service.CashInvoiceResponse
	require.NoError(t, json.Unmarshal(env.Data, &invoice))
	assert.Equal(t, "CASH-20250310-001", invoice.InvoiceNo)
	assert.True(t, invoice.Total.Equal(decimal.NewFromInt(8)))
	cash.AssertExpectations(t)
}

func TestCashHandler_UnknownCashItem(t *testing.T) {
	r, cash := setupCashRouter()
	cash.On("CreateCashSale", mock.Anything, actorID, mock.Anything).
		Return(nil, service.NewValidationError("Cash product 'Ghost' not found."))

	body := []byte(`{"customer_name":"Ada","items":[{"item_name":"Ghost","amount":"10"}]}`)
	w, env := do(t, r, http.MethodPost, "/api/cash/sales", bearer(t, "staff"), body, "application/json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"Cash product 'Ghost' not found."}, env.Errors)
}

func TestCashHandler_ManagerOnly(t *testing.T) {
	r, cash := setupCashRouter()

	w, _ := do(t, r, http.MethodDelete, "/api/cash/invoices/c-1", bearer(t, "staff"), nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	cash.On("DeleteCashSale", mock.Anything, actorID, "c-1").Return(service.ErrInvoiceNotFound)
	w, _ = do(t, r, http.MethodDelete, "/api/cash/invoices/c-1", bearer(t, "manager"), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	cash.AssertExpectations(t)
}

func setupAuditRouter() (*gin.Engine, *MockAuditService) {
	r, guards := newEngine()
	audit := new(MockAuditService)
	NewAuditHandler(audit).RegisterRoutes(&r.RouterGroup, guards)
	return r, audit
}

func TestAuditHandler_GetAuditLogs(t *testing.T) {
	r, audit := setupAuditRouter()
	audit.On("GetAuditLogs", mock.Anything, repository.AuditFilter{Action: "DELETE_SALE", EntityID: "inv-1", Page: 1, Limit: 20}).
		Return([]service.AuditLogResponse{{Action: "DELETE_SALE", Username: "boss"}}, int64(1), nil)

	w, _ := do(t, r, http.MethodGet, "/api/audit-logs?action=DELETE_SALE&entity_id=inv-1", bearer(t, "staff"), nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := do(t, r, http.MethodGet, "/api/audit-logs?action=DELETE_SALE&entity_id=inv-1", bearer(t, "manager"), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Items []service.AuditLogResponse `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Items, 1)
	assert.Equal(t, "boss", data.Items[0].Username)
	audit.AssertExpectations(t)
}
