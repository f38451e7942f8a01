package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/shared/valueobject"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	// Check if SKU already exists (if provided)
	if req.SKU != "" {
		exists, err := s.productRepo.ExistsBySKU(ctx, tenantID, req.SKU)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this SKU already exists")
		}
	}

	product, err := catalog.NewProduct(tenantID, req.Name, valueobject.NewMoneyARS(req.Price))
	if err != nil {
		return nil, err
	}

	if req.Description != "" {
		if err := product.Update(req.Name, req.Description); err != nil {
			return nil, err
		}
	}

	if req.SKU != "" {
		if err := product.SetSKU(req.SKU); err != nil {
			return nil, err
		}
	}

	if req.Barcode != "" {
		if err := product.SetBarcode(req.Barcode); err != nil {
			return nil, err
		}
	}

	if req.Category != "" {
		if err := product.SetCategory(req.Category); err != nil {
			return nil, err
		}
	}

	if req.Cost != nil {
		if err := product.SetPrices(valueobject.NewMoneyARS(req.Price), valueobject.NewMoneyARS(*req.Cost)); err != nil {
			return nil, err
		}
	}

	if req.Quantity != nil {
		if err := product.SetQuantity(*req.Quantity); err != nil {
			return nil, err
		}
	}

	if req.LowStockThreshold != nil {
		if err := product.SetLowStockThreshold(*req.LowStockThreshold); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
	)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByBarcode retrieves a product by barcode, used by the POS scanner flow
func (s *ProductService) GetByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*ProductResponse, error) {
	if barcode == "" {
		return nil, shared.NewDomainError("INVALID_BARCODE", "Barcode cannot be empty")
	}

	product, err := s.productRepo.FindByBarcode(ctx, tenantID, barcode)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}
	if filter.LowStock != nil {
		domainFilter.Filters["low_stock"] = *filter.LowStock
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}

	products, err := s.productRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.productRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToProductResponses(products), total, nil
}

// Update updates a product
func (s *ProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Description != nil {
		name := product.Name
		description := product.Description
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if err := product.Update(name, description); err != nil {
			return nil, err
		}
	}

	if req.SKU != nil {
		if *req.SKU != product.SKU {
			exists, err := s.productRepo.ExistsBySKU(ctx, tenantID, *req.SKU)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this SKU already exists")
			}
		}
		if err := product.SetSKU(*req.SKU); err != nil {
			return nil, err
		}
	}

	if req.Barcode != nil {
		if err := product.SetBarcode(*req.Barcode); err != nil {
			return nil, err
		}
	}

	if req.Category != nil {
		if err := product.SetCategory(*req.Category); err != nil {
			return nil, err
		}
	}

	if req.Price != nil || req.Cost != nil {
		price := product.Price
		cost := product.Cost
		if req.Price != nil {
			price = *req.Price
		}
		if req.Cost != nil {
			cost = *req.Cost
		}
		if err := product.SetPrices(valueobject.NewMoneyARS(price), valueobject.NewMoneyARS(cost)); err != nil {
			return nil, err
		}
	}

	if req.Quantity != nil {
		if err := product.SetQuantity(*req.Quantity); err != nil {
			return nil, err
		}
	}

	if req.LowStockThreshold != nil {
		if err := product.SetLowStockThreshold(*req.LowStockThreshold); err != nil {
			return nil, err
		}
	}

	if req.Active != nil {
		if *req.Active {
			product.Activate()
		} else {
			product.Deactivate()
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// AdjustStock replaces a product's on-hand quantity after a manual count
func (s *ProductService) AdjustStock(ctx context.Context, tenantID, productID uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	previous := product.Quantity
	if err := product.SetQuantity(req.Quantity); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("stock adjusted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("product_id", product.ID.String()),
		zap.Int("previous", previous),
		zap.Int("quantity", product.Quantity),
	)

	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product. Products referenced by past sales keep their
// name and price denormalized on the sale items, so deletion is safe.
func (s *ProductService) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	_, err := s.productRepo.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return err
	}

	return s.productRepo.DeleteForTenant(ctx, tenantID, productID)
}

// ListCategories returns the distinct category labels used by the tenant
func (s *ProductService) ListCategories(ctx context.Context, tenantID uuid.UUID) ([]string, error) {
	return s.productRepo.ListCategories(ctx, tenantID)
}

// ListLowStock returns products at or below their low stock threshold
func (s *ProductService) ListLowStock(ctx context.Context, tenantID uuid.UUID) ([]ProductResponse, error) {
	products, err := s.productRepo.FindLowStock(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	return ToProductResponses(products), nil
}
