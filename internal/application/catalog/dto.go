package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name              string           `json:"name" binding:"required,min=1,max=200"`
	Description       string           `json:"description" binding:"max=2000"`
	SKU               string           `json:"sku" binding:"max=50"`
	Barcode           string           `json:"barcode" binding:"max=50"`
	Category          string           `json:"category" binding:"max=100"`
	Price             decimal.Decimal  `json:"price" binding:"required"`
	Cost              *decimal.Decimal `json:"cost"`
	Quantity          *int             `json:"quantity"`
	LowStockThreshold *int             `json:"low_stock_threshold"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name              *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description       *string          `json:"description" binding:"omitempty,max=2000"`
	SKU               *string          `json:"sku" binding:"omitempty,max=50"`
	Barcode           *string          `json:"barcode" binding:"omitempty,max=50"`
	Category          *string          `json:"category" binding:"omitempty,max=100"`
	Price             *decimal.Decimal `json:"price"`
	Cost              *decimal.Decimal `json:"cost"`
	Quantity          *int             `json:"quantity"`
	LowStockThreshold *int             `json:"low_stock_threshold"`
	Active            *bool            `json:"active"`
}

// AdjustStockRequest represents a manual stock adjustment
type AdjustStockRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// ProductListFilter represents filtering options for product listing
type ProductListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Search   string `form:"search"`
	Category string `form:"category"`
	Active   *bool  `form:"active"`
	LowStock *bool  `form:"low_stock"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=name price quantity created_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	SKU               string          `json:"sku"`
	Barcode           string          `json:"barcode"`
	Category          string          `json:"category"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	Quantity          int             `json:"quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	LowStock          bool            `json:"low_stock"`
	Active            bool            `json:"active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain Product to a ProductResponse
func ToProductResponse(product *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                product.ID,
		Name:              product.Name,
		Description:       product.Description,
		SKU:               product.SKU,
		Barcode:           product.Barcode,
		Category:          product.Category,
		Price:             product.Price,
		Cost:              product.Cost,
		Quantity:          product.Quantity,
		LowStockThreshold: product.LowStockThreshold,
		LowStock:          product.IsLowStock(),
		Active:            product.Active,
		CreatedAt:         product.CreatedAt,
		UpdatedAt:         product.UpdatedAt,
	}
}

// ToProductResponses converts a slice of domain Products to responses
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}
