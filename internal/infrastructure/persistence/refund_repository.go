package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
)

// GormRefundRepository implements RefundRepository using GORM
type GormRefundRepository struct {
	db *gorm.DB
}

// NewGormRefundRepository creates a new GormRefundRepository
func NewGormRefundRepository(db *gorm.DB) *GormRefundRepository {
	return &GormRefundRepository{db: db}
}

// FindByIDForTenant finds a refund by ID within a tenant
func (r *GormRefundRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.Refund, error) {
	var refund sales.Refund
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&refund).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &refund, nil
}

// FindBySaleID finds the refund for a sale, if any
func (r *GormRefundRepository) FindBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) (*sales.Refund, error) {
	var refund sales.Refund
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND sale_id = ?", tenantID, saleID).
		First(&refund).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &refund, nil
}

// FindAllForTenant finds all refunds for a tenant
func (r *GormRefundRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.Refund, error) {
	var refunds []sales.Refund
	query := r.db.WithContext(ctx).Model(&sales.Refund{}).Where("tenant_id = ?", tenantID)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("created_at DESC")

	if err := query.Find(&refunds).Error; err != nil {
		return nil, err
	}
	return refunds, nil
}

// GenerateRefundNumber generates a unique refund number for a tenant.
// Format: DEV-NNNNNN (e.g., DEV-000007)
func (r *GormRefundRepository) GenerateRefundNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	const prefix = "DEV-"

	var lastRefund sales.Refund
	err := r.db.WithContext(ctx).
		Model(&sales.Refund{}).
		Where("tenant_id = ? AND refund_number LIKE ?", tenantID, prefix+"%").
		Order("refund_number DESC").
		First(&lastRefund).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastRefund.RefundNumber != "" {
		var num int64
		if _, parseErr := fmt.Sscanf(strings.TrimPrefix(lastRefund.RefundNumber, prefix), "%d", &num); parseErr == nil {
			nextNum = num + 1
		}
	}

	number := fmt.Sprintf("%s%06d", prefix, nextNum)

	for i := 0; i < 100; i++ {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&sales.Refund{}).
			Where("tenant_id = ? AND refund_number = ?", tenantID, number).
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

// CreateWithStockRestore persists the refund, marks the sale REFUNDED and
// restores stock in one transaction. The sale status flip is conditional on
// the sale still being COMPLETED so the restock can happen at most once even
// under concurrent refund and cancel attempts. The unique index on sale_id
// backs this up at the storage level.
func (r *GormRefundRepository) CreateWithStockRestore(ctx context.Context, refund *sales.Refund, sale *sales.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&sales.Sale{}).
			Where("tenant_id = ? AND id = ? AND status = ?", sale.TenantID, sale.ID, sales.SaleStatusCompleted).
			Updates(map[string]interface{}{
				"status":      sales.SaleStatusRefunded,
				"refunded_at": sale.RefundedAt,
				"updated_at":  sale.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("INVALID_STATE", "Sale is no longer refundable")
		}

		if err := restoreStock(tx, sale); err != nil {
			return err
		}

		return tx.Create(refund).Error
	})
}

// Ensure GormRefundRepository implements RefundRepository
var _ sales.RefundRepository = (*GormRefundRepository)(nil)
