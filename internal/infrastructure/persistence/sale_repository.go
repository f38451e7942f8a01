package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByIDForTenant finds a sale with its items within a tenant
func (r *GormSaleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// FindBySaleNumber finds a sale with its items by its sale number
func (r *GormSaleRepository) FindBySaleNumber(ctx context.Context, tenantID uuid.UUID, saleNumber string) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND sale_number = ?", tenantID, saleNumber).
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// FindAllForTenant finds all sales for a tenant with filtering
func (r *GormSaleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.Sale, error) {
	var result []sales.Sale
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&sales.Sale{}).
			Preload("Items").
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// CountForTenant counts sales for a tenant with optional filters
func (r *GormSaleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&sales.Sale{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateSaleNumber generates a unique sale number for a tenant.
// Format: V-NNNNNN (e.g., V-000042)
func (r *GormSaleRepository) GenerateSaleNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return r.generateNumber(ctx, tenantID, "V-")
}

func (r *GormSaleRepository) generateNumber(ctx context.Context, tenantID uuid.UUID, prefix string) (string, error) {
	var lastSale sales.Sale
	err := r.db.WithContext(ctx).
		Model(&sales.Sale{}).
		Where("tenant_id = ? AND sale_number LIKE ?", tenantID, prefix+"%").
		Order("sale_number DESC").
		First(&lastSale).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastSale.SaleNumber != "" {
		var num int64
		if _, parseErr := fmt.Sscanf(strings.TrimPrefix(lastSale.SaleNumber, prefix), "%d", &num); parseErr == nil {
			nextNum = num + 1
		}
	}

	number := fmt.Sprintf("%s%06d", prefix, nextNum)

	// Verify uniqueness, incrementing on collision
	for i := 0; i < 100; i++ {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&sales.Sale{}).
			Where("tenant_id = ? AND sale_number = ?", tenantID, number).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			break
		}
		nextNum++
		number = fmt.Sprintf("%s%06d", prefix, nextNum)
	}

	return number, nil
}

// CreateWithStockDeduction persists the sale and decrements stock for every
// item in one transaction. Each decrement is a single conditional UPDATE so
// two concurrent sales can never both take the last unit.
func (r *GormSaleRepository) CreateWithStockDeduction(ctx context.Context, sale *sales.Sale, allowNegativeStock bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range sale.Items {
			query := tx.Model(&catalog.Product{}).
				Where("tenant_id = ? AND id = ?", sale.TenantID, item.ProductID)
			if !allowNegativeStock {
				query = query.Where("quantity >= ?", item.Quantity)
			}

			result := query.Update("quantity", gorm.Expr("quantity - ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				// Distinguish missing product from insufficient stock
				var count int64
				if err := tx.Model(&catalog.Product{}).
					Where("tenant_id = ? AND id = ?", sale.TenantID, item.ProductID).
					Count(&count).Error; err != nil {
					return err
				}
				if count == 0 {
					return shared.ErrNotFound
				}
				return shared.ErrInsufficientStock
			}
		}

		return tx.Create(sale).Error
	})
}

// CancelWithStockRestore marks the sale CANCELLED and restores stock in one
// transaction. The status flip is conditional on the sale still being
// COMPLETED; a concurrent cancel or refund loses with INVALID_STATE and no
// stock is restored twice.
func (r *GormSaleRepository) CancelWithStockRestore(ctx context.Context, sale *sales.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&sales.Sale{}).
			Where("tenant_id = ? AND id = ? AND status = ?", sale.TenantID, sale.ID, sales.SaleStatusCompleted).
			Updates(map[string]interface{}{
				"status":        sales.SaleStatusCancelled,
				"cancelled_at":  sale.CancelledAt,
				"cancel_reason": sale.CancelReason,
				"updated_at":    sale.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("INVALID_STATE", "Sale is no longer cancellable")
		}

		return restoreStock(tx, sale)
	})
}

// GetStats computes the sales report for a tenant. Cancelled and refunded
// sales are excluded from every figure.
func (r *GormSaleRepository) GetStats(ctx context.Context, tenantID uuid.UUID, now time.Time) (*sales.Stats, error) {
	stats := &sales.Stats{}

	completed := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&sales.Sale{}).
			Where("tenant_id = ? AND status = ?", tenantID, sales.SaleStatusCompleted)
	}

	type totalRow struct {
		Count int64
		Total *string
	}

	var overall totalRow
	if err := completed().
		Select("COUNT(*) AS count, SUM(total) AS total").
		Scan(&overall).Error; err != nil {
		return nil, err
	}
	stats.TotalSales = overall.Count
	if err := scanDecimal(overall.Total, &stats.TotalRevenue); err != nil {
		return nil, err
	}
	if stats.TotalSales > 0 {
		stats.AverageSale = stats.TotalRevenue.DivRound(decimal.NewFromInt(stats.TotalSales), 2)
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var today totalRow
	if err := completed().
		Where("created_at >= ?", startOfDay).
		Select("COUNT(*) AS count, SUM(total) AS total").
		Scan(&today).Error; err != nil {
		return nil, err
	}
	stats.TodaySales = today.Count
	if err := scanDecimal(today.Total, &stats.TodayRevenue); err != nil {
		return nil, err
	}

	monthExpr := "to_char(created_at, 'YYYY-MM')"
	if r.db.Dialector.Name() == "sqlite" {
		monthExpr = "strftime('%Y-%m', created_at)"
	}

	// last 6 months, current month included
	monthsFrom := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -5, 0)

	var byMonth []sales.MonthlySales
	if err := completed().
		Where("created_at >= ?", monthsFrom).
		Select(monthExpr + " AS month, COUNT(*) AS count, SUM(total) AS total").
		Group(monthExpr).
		Order("month ASC").
		Scan(&byMonth).Error; err != nil {
		return nil, err
	}
	stats.ByMonth = byMonth

	return stats, nil
}

// restoreStock adds each item's quantity back to its product
func restoreStock(tx *gorm.DB, sale *sales.Sale) error {
	for _, item := range sale.Items {
		result := tx.Model(&catalog.Product{}).
			Where("tenant_id = ? AND id = ?", sale.TenantID, item.ProductID).
			Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormSaleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormSaleRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("sale_number ILIKE ? OR customer_name ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "payment_method":
			query = query.Where("payment_method = ?", value)
		case "from":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "to":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormSaleRepository implements SaleRepository
var _ sales.SaleRepository = (*GormSaleRepository)(nil)
