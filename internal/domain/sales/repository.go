package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/shared"
)

// MonthlySales is one month of aggregated sales for reporting
type MonthlySales struct {
	Month string          `gorm:"column:month" json:"month"` // YYYY-MM
	Count int64           `gorm:"column:count" json:"count"`
	Total decimal.Decimal `gorm:"column:total" json:"total"`
}

// Stats is the aggregated sales report for a tenant.
// Cancelled and refunded sales are excluded from all figures.
type Stats struct {
	TotalSales   int64           `json:"total_sales"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	AverageSale  decimal.Decimal `json:"average_sale"`
	TodaySales   int64           `json:"today_sales"`
	TodayRevenue decimal.Decimal `json:"today_revenue"`
	ByMonth      []MonthlySales  `json:"by_month"`
}

// SaleRepository defines the interface for sale persistence.
// The lifecycle methods bundle the stock side effect with the status
// change in a single transaction so stock and status never diverge.
type SaleRepository interface {
	// FindByIDForTenant finds a sale with its items within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)

	// FindBySaleNumber finds a sale with its items by its sale number
	FindBySaleNumber(ctx context.Context, tenantID uuid.UUID, saleNumber string) (*Sale, error)

	// FindAllForTenant finds sales for a tenant with optional
	// status, customer_id, from and to filters
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Sale, error)

	// CountForTenant counts sales for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// GenerateSaleNumber generates the next sale number for a tenant (V-000001 style)
	GenerateSaleNumber(ctx context.Context, tenantID uuid.UUID) (string, error)

	// CreateWithStockDeduction persists the sale and decrements stock for
	// every item in one transaction. Each decrement is conditional on
	// sufficient stock unless allowNegativeStock is set; on any shortfall
	// the whole transaction rolls back with ErrInsufficientStock.
	CreateWithStockDeduction(ctx context.Context, sale *Sale, allowNegativeStock bool) error

	// CancelWithStockRestore marks the sale CANCELLED and restores stock
	// for every item in one transaction. The status update is conditional
	// on the sale still being COMPLETED so a concurrent cancel or refund
	// can win at most once.
	CancelWithStockRestore(ctx context.Context, sale *Sale) error

	// GetStats computes the sales report for a tenant as of now
	GetStats(ctx context.Context, tenantID uuid.UUID, now time.Time) (*Stats, error)
}

// RefundRepository defines the interface for refund persistence
type RefundRepository interface {
	// FindByIDForTenant finds a refund by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Refund, error)

	// FindBySaleID finds the refund for a sale, if any
	FindBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) (*Refund, error)

	// FindAllForTenant finds refunds for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Refund, error)

	// GenerateRefundNumber generates the next refund number for a tenant (DEV-000001 style)
	GenerateRefundNumber(ctx context.Context, tenantID uuid.UUID) (string, error)

	// CreateWithStockRestore persists the refund, marks the sale REFUNDED
	// and restores stock for every item in one transaction. The status
	// update is conditional on the sale still being COMPLETED.
	CreateWithStockRestore(ctx context.Context, refund *Refund, sale *Sale) error
}
