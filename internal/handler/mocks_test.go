package handler

import (
	"context"
	"io"
	"testing"
	"time"

	"backoffice/internal/repository"
	"backoffice/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("handler-test-secret-0123456789abcdef")

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "7d1f0c3e-1111-4a55-9a0b-3c2f6a0e0001",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(testSecret)
	require.NoError(t, err)
	return "Bearer " + token
}

func newEngine() (*gin.Engine, Guards) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	return r, NewGuards(testSecret)
}

// MockSaleService implements service.SaleService for testing
type MockSaleService struct {
	mock.Mock
}

func (m *MockSaleService) CreateSale(ctx context.Context, userID string, req service.SaleRequest) (*service.SaleResult, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SaleResult), args.Error(1)
}

func (m *MockSaleService) EditSale(ctx context.Context, userID, invoiceID string, req service.SaleRequest) (*service.SaleResult, error) {
	args := m.Called(ctx, userID, invoiceID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SaleResult), args.Error(1)
}

func (m *MockSaleService) DeleteSale(ctx context.Context, userID, invoiceID string) (*service.DeletionReceipt, error) {
	args := m.Called(ctx, userID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DeletionReceipt), args.Error(1)
}

func (m *MockSaleService) RecordPayment(ctx context.Context, userID, invoiceID string, req service.PaymentRequest) (*service.InvoiceResponse, error) {
	args := m.Called(ctx, userID, invoiceID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvoiceResponse), args.Error(1)
}

func (m *MockSaleService) CancelInvoice(ctx context.Context, userID, invoiceID string, req service.CancelRequest) (*service.InvoiceResponse, error) {
	args := m.Called(ctx, userID, invoiceID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvoiceResponse), args.Error(1)
}

func (m *MockSaleService) RefreshOverdue(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockSaleService) GetInvoice(ctx context.Context, invoiceID string) (*service.InvoiceResponse, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvoiceResponse), args.Error(1)
}

func (m *MockSaleService) ListInvoices(ctx context.Context, req service.InvoiceListRequest) ([]service.InvoiceResponse, int64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).([]service.InvoiceResponse), args.Get(1).(int64), args.Error(2)
}

// MockImportService implements service.ImportService for testing
type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) ImportSales(ctx context.Context, userID string, r io.Reader) (*service.ImportResult, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, userID, string(body))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImportResult), args.Error(1)
}

// MockUserService implements service.UserService for testing
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(ctx context.Context, req service.CreateUserRequest) (*service.UserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserResponse), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, req service.LoginUserRequest) (*service.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TokenResponse), args.Error(1)
}

func (m *MockUserService) GetUserByID(ctx context.Context, id string) (*service.UserResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserResponse), args.Error(1)
}

// MockInventoryService implements service.InventoryService for testing
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) GetProducts(ctx context.Context, page, limit int, search string) ([]service.ProductResponse, int64, error) {
	args := m.Called(ctx, page, limit, search)
	return args.Get(0).([]service.ProductResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockInventoryService) CreateProduct(ctx context.Context, userID string, req service.CreateProductRequest) (service.ProductResponse, error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).(service.ProductResponse), args.Error(1)
}

func (m *MockInventoryService) UpdateProduct(ctx context.Context, userID string, id string, req service.UpdateProductRequest) (service.ProductResponse, error) {
	args := m.Called(ctx, userID, id, req)
	return args.Get(0).(service.ProductResponse), args.Error(1)
}

func (m *MockInventoryService) DeleteProduct(ctx context.Context, userID string, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockInventoryService) AdjustStock(ctx context.Context, userID string, id string, req service.AdjustStockRequest) (service.ProductStockChange, error) {
	args := m.Called(ctx, userID, id, req)
	return args.Get(0).(service.ProductStockChange), args.Error(1)
}

func (m *MockInventoryService) ListMovements(ctx context.Context, id string, page, limit int) ([]service.StockMovementResponse, int64, error) {
	args := m.Called(ctx, id, page, limit)
	return args.Get(0).([]service.StockMovementResponse), args.Get(1).(int64), args.Error(2)
}

// MockCashSaleService implements service.CashSaleService for testing
type MockCashSaleService struct {
	mock.Mock
}

func (m *MockCashSaleService) CreateCashProduct(ctx context.Context, userID string, req service.CreateCashProductRequest) (*service.CashProductResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CashProductResponse), args.Error(1)
}

func (m *MockCashSaleService) ListCashProducts(ctx context.Context) ([]service.CashProductResponse, error) {
	args := m.Called(ctx)
	return args.Get(0).([]service.CashProductResponse), args.Error(1)
}

func (m *MockCashSaleService) CreateCashSale(ctx context.Context, userID string, req service.CashSaleRequest) (*service.CashInvoiceResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CashInvoiceResponse), args.Error(1)
}

func (m *MockCashSaleService) GetCashInvoice(ctx context.Context, invoiceID string) (*service.CashInvoiceResponse, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CashInvoiceResponse), args.Error(1)
}

func (m *MockCashSaleService) DeleteCashSale(ctx context.Context, userID, invoiceID string) error {
	return m.Called(ctx, userID, invoiceID).Error(0)
}

func (m *MockCashSaleService) CancelCashInvoice(ctx context.Context, userID, invoiceID string, req service.CancelRequest) (*service.CashInvoiceResponse, error) {
	args := m.Called(ctx, userID, invoiceID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CashInvoiceResponse), args.Error(1)
}

// MockAuditService implements service.AuditService for testing
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) GetAuditLogs(ctx context.Context, filter repository.AuditFilter) ([]service.AuditLogResponse, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]service.AuditLogResponse), args.Get(1).(int64), args.Error(2)
}
