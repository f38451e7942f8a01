package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/shared/valueobject"
)

// DefaultLowStockThreshold is used when a product does not define its own threshold
const DefaultLowStockThreshold = 5

// Product represents a sellable item in the catalog.
// It is the aggregate root for product operations and it carries
// its own on-hand stock quantity.
type Product struct {
	shared.TenantAggregateRoot
	Name              string          `gorm:"type:varchar(200);not null"`
	Description       string          `gorm:"type:text"`
	SKU               string          `gorm:"type:varchar(50);uniqueIndex:idx_product_tenant_sku,priority:2"`
	Barcode           string          `gorm:"type:varchar(50);index"`
	Category          string          `gorm:"type:varchar(100);index"`
	Price             decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Cost              decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Quantity          int             `gorm:"not null;default:0"`
	LowStockThreshold int             `gorm:"not null;default:5"`
	Active            bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, name string, price valueobject.Money) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	product := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Price:               price.Amount(),
		Cost:                decimal.Zero,
		Quantity:            0,
		LowStockThreshold:   DefaultLowStockThreshold,
		Active:              true,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetSKU sets the product SKU
func (p *Product) SetSKU(sku string) error {
	if sku != "" && len(sku) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}

	p.SKU = strings.ToUpper(sku)
	p.UpdatedAt = time.Now()

	return nil
}

// SetCategory sets the free-form category label
func (p *Product) SetCategory(category string) error {
	category = strings.TrimSpace(category)
	if len(category) > 100 {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot exceed 100 characters")
	}

	p.Category = category
	p.UpdatedAt = time.Now()

	return nil
}

// SetBarcode sets the product barcode
func (p *Product) SetBarcode(barcode string) error {
	if barcode != "" && len(barcode) > 50 {
		return shared.NewDomainError("INVALID_BARCODE", "Barcode cannot exceed 50 characters")
	}

	p.Barcode = barcode
	p.UpdatedAt = time.Now()

	return nil
}

// SetPrices sets the selling price and the cost
func (p *Product) SetPrices(price, cost valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Cost cannot be negative")
	}

	oldPrice := p.Price
	p.Price = price.Amount()
	p.Cost = cost.Amount()
	p.UpdatedAt = time.Now()

	p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))

	return nil
}

// SetLowStockThreshold sets the stock level below which the product is flagged
func (p *Product) SetLowStockThreshold(threshold int) error {
	if threshold < 0 {
		return shared.NewDomainError("INVALID_THRESHOLD", "Low stock threshold cannot be negative")
	}

	p.LowStockThreshold = threshold
	p.UpdatedAt = time.Now()

	return nil
}

// SetQuantity replaces the on-hand quantity.
// Stock movements driven by sales go through the sales repository
// as conditional updates, not through this method.
func (p *Product) SetQuantity(quantity int) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}

	p.Quantity = quantity
	p.UpdatedAt = time.Now()

	return nil
}

// Activate makes the product available for sale
func (p *Product) Activate() {
	p.Active = true
	p.UpdatedAt = time.Now()
}

// Deactivate removes the product from sale without deleting it
func (p *Product) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
}

// IsLowStock returns true when the on-hand quantity is at or below the threshold
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.LowStockThreshold
}

// UnitPrice returns the selling price as Money
func (p *Product) UnitPrice() valueobject.Money {
	return valueobject.NewMoneyARS(p.Price)
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
