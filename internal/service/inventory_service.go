package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DTOs
type CreateProductRequest struct {
	Name  string          `json:"name" validate:"required,max=255"`
	Price decimal.Decimal `json:"price" validate:"gte=0"`
	// Stock is the opening quantity, recorded as an adjustment.
	Stock int `json:"stock" validate:"gte=0"`
}

type UpdateProductRequest struct {
	Name  string          `json:"name" validate:"required,max=255"`
	Price decimal.Decimal `json:"price" validate:"gte=0"`
}

type AdjustStockRequest struct {
	MovementType string `json:"movement_type" validate:"required,oneof=PURCHASE ADJUSTMENT RESTOCK"`
	Quantity     int    `json:"quantity" validate:"ne=0"`
	Reference    string `json:"reference" validate:"max=100"`
	Notes        string `json:"notes"`
}

type ProductResponse struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type StockMovementResponse struct {
	ID             string `json:"id"`
	MovementType   string `json:"movement_type"`
	QuantityChange int    `json:"quantity_change"`
	StockBefore    int    `json:"stock_before"`
	StockAfter     int    `json:"stock_after"`
	Reference      string `json:"reference"`
	Notes          string `json:"notes"`
	CreatedAt      string `json:"created_at"`
}

// InventoryService maintains the product catalog. Stock itself only changes
// through the StockLedger.
type InventoryService interface {
	GetProducts(ctx context.Context, page, limit int, search string) ([]ProductResponse, int64, error)
	CreateProduct(ctx context.Context, userID string, req CreateProductRequest) (ProductResponse, error)
	UpdateProduct(ctx context.Context, userID string, id string, req UpdateProductRequest) (ProductResponse, error)
	DeleteProduct(ctx context.Context, userID string, id string) error
	AdjustStock(ctx context.Context, userID string, id string, req AdjustStockRequest) (ProductStockChange, error)
	ListMovements(ctx context.Context, id string, page, limit int) ([]StockMovementResponse, int64, error)
}

type inventoryService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	invoiceRepo  repository.InvoiceRepository
	ledger       *StockLedger
	audit        AuditRecorder
	txManager    repository.TransactionManager
	notify       notifier
}

func NewInventoryService(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	invoiceRepo repository.InvoiceRepository,
	ledger *StockLedger,
	audit AuditRecorder,
	txManager repository.TransactionManager,
	publisher EventPublisher,
	cache SalesCache,
	log *zap.Logger,
) InventoryService {
	return &inventoryService{
		productRepo:  productRepo,
		movementRepo: movementRepo,
		invoiceRepo:  invoiceRepo,
		ledger:       ledger,
		audit:        audit,
		txManager:    txManager,
		notify:       newNotifier(publisher, cache, log),
	}
}

func (s *inventoryService) GetProducts(ctx context.Context, page, limit int, search string) ([]ProductResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	products, total, err := s.productRepo.List(ctx, page, limit, strings.TrimSpace(search))
	if err != nil {
		return nil, 0, wrapPersistence("list products", err)
	}

	res := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		res = append(res, toProductResponse(&p))
	}
	return res, total, nil
}

func (s *inventoryService) CreateProduct(ctx context.Context, userID string, req CreateProductRequest) (ProductResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return ProductResponse{}, err
	}

	actor := parseActor(userID)
	product := model.Product{Name: req.Name, Price: req.Price}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ensureNameFree(txCtx, req.Name, uuid.Nil); err != nil {
			return err
		}
		if err := s.productRepo.Create(txCtx, &product); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		if req.Stock > 0 {
			change, err := s.ledger.Adjust(txCtx, product.ID, req.Stock, StockReference{
				Reference: "opening stock",
				Actor:     actor,
				Type:      model.MovementAdjustment,
			})
			if err != nil {
				return err
			}
			product.Stock = change.StockAfter
		}

		return s.audit.Record(txCtx, AuditEntry{
			Actor:      actor,
			Action:     model.ActionCreateProduct,
			EntityID:   product.ID.String(),
			EntityName: product.Name,
			Details:    req,
		})
	})
	if err != nil {
		return ProductResponse{}, wrapPersistence("create product", err)
	}

	s.notify.productsChanged(ctx)
	return toProductResponse(&product), nil
}

// UpdateProduct changes name and price. A rename is refused while line items
// still carry the old name, since they resolve to products by name.
func (s *inventoryService) UpdateProduct(ctx context.Context, userID string, id string, req UpdateProductRequest) (ProductResponse, error) {
	productID, err := parseProductID(id)
	if err != nil {
		return ProductResponse{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return ProductResponse{}, err
	}

	var product *model.Product
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, err = s.lockProduct(txCtx, productID)
		if err != nil {
			return err
		}

		before := map[string]interface{}{"name": product.Name, "price": product.Price}
		if product.Name != req.Name {
			if err := s.ensureNameFree(txCtx, req.Name, product.ID); err != nil {
				return err
			}
			if err := s.ensureUnreferenced(txCtx, product.Name); err != nil {
				return err
			}
		}

		product.Name = req.Name
		product.Price = req.Price
		if err := s.productRepo.Update(txCtx, product); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		return s.audit.Record(txCtx, AuditEntry{
			Actor:      parseActor(userID),
			Action:     model.ActionUpdateProduct,
			EntityID:   product.ID.String(),
			EntityName: product.Name,
			Details:    map[string]interface{}{"before": before, "after": req},
		})
	})
	if err != nil {
		return ProductResponse{}, wrapPersistence("update product", err)
	}

	s.notify.productsChanged(ctx)
	return toProductResponse(product), nil
}

func (s *inventoryService) DeleteProduct(ctx context.Context, userID string, id string) error {
	productID, err := parseProductID(id)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, err := s.lockProduct(txCtx, productID)
		if err != nil {
			return err
		}
		if err := s.ensureUnreferenced(txCtx, product.Name); err != nil {
			return err
		}
		if err := s.productRepo.Delete(txCtx, productID); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}

		return s.audit.Record(txCtx, AuditEntry{
			Actor:      parseActor(userID),
			Action:     model.ActionDeleteProduct,
			EntityID:   product.ID.String(),
			EntityName: product.Name,
			Details:    map[string]interface{}{"deleted": true, "stock": product.Stock},
		})
	})
	if err != nil {
		return wrapPersistence("delete product", err)
	}

	s.notify.productsChanged(ctx)
	return nil
}

func (s *inventoryService) AdjustStock(ctx context.Context, userID string, id string, req AdjustStockRequest) (ProductStockChange, error) {
	productID, err := parseProductID(id)
	if err != nil {
		return ProductStockChange{}, err
	}
	if err := validate(req); err != nil {
		return ProductStockChange{}, err
	}

	actor := parseActor(userID)
	var change ProductStockChange
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		change, err = s.ledger.Adjust(txCtx, productID, req.Quantity, StockReference{
			Reference: req.Reference,
			Actor:     actor,
			Notes:     req.Notes,
			Type:      model.MovementType(req.MovementType),
		})
		if err != nil {
			return err
		}

		return s.audit.Record(txCtx, AuditEntry{
			Actor:      actor,
			Action:     model.ActionAdjustStock,
			EntityID:   change.ProductID.String(),
			EntityName: change.ProductName,
			Details: map[string]interface{}{
				"movement_type": req.MovementType,
				"quantity":      req.Quantity,
				"stock_before":  change.StockBefore,
				"stock_after":   change.StockAfter,
				"reference":     req.Reference,
			},
		})
	})
	if err != nil {
		return ProductStockChange{}, wrapPersistence("adjust stock", err)
	}

	s.notify.publisher.Publish(EventStockUpdate, []ProductStockChange{change})
	s.notify.productsChanged(ctx)
	return change, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, id string, page, limit int) ([]StockMovementResponse, int64, error) {
	productID, err := parseProductID(id)
	if err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}

	movements, total, err := s.movementRepo.ListByProduct(ctx, productID, page, limit)
	if err != nil {
		return nil, 0, wrapPersistence("list stock movements", err)
	}

	res := make([]StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		res = append(res, StockMovementResponse{
			ID:             m.ID.String(),
			MovementType:   string(m.MovementType),
			QuantityChange: m.QuantityChange,
			StockBefore:    m.StockBefore,
			StockAfter:     m.StockAfter,
			Reference:      m.Reference,
			Notes:          m.Notes,
			CreatedAt:      m.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return res, total, nil
}

func (s *inventoryService) lockProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByIDForUpdate(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return product, nil
}

func (s *inventoryService) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.productRepo.FindByName(ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return ErrProductExists
	}
	return nil
}

func (s *inventoryService) ensureUnreferenced(ctx context.Context, name string) error {
	n, err := s.invoiceRepo.CountItemsByName(ctx, name)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrProductInUse
	}
	return nil
}

func parseProductID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrProductNotFound
	}
	return parsed, nil
}

func toProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:    p.ID.String(),
		Name:  p.Name,
		Price: p.Price,
		Stock: p.Stock,
	}
}
