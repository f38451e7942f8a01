package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/shared/valueobject"
)

// RefundItem is a snapshot of a refunded sale line. It is copied from
// the sale at refund time so the refund stays audit-complete even if
// the sale rows are ever touched.
type RefundItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RefundID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	SKU         string          `gorm:"type:varchar(50)"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt   time.Time
}

// TableName returns the table name for GORM
func (RefundItem) TableName() string {
	return "refund_items"
}

// Refund records the full reversal of a completed sale.
// Creating a refund restores the stock of every item on the sale and
// moves the sale to REFUNDED, all in one transaction.
type Refund struct {
	shared.TenantAggregateRoot
	RefundNumber string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_refund_tenant_number,priority:2"`
	SaleID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_refund_sale"`
	SaleNumber   string          `gorm:"type:varchar(50);not null"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Items        []RefundItem    `gorm:"foreignKey:RefundID"`
	Total        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Reason       string          `gorm:"type:text;not null"`
	RefundedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Refund) TableName() string {
	return "refunds"
}

// NewRefund creates a refund for a completed sale.
// The sale itself is transitioned separately via Sale.MarkRefunded.
func NewRefund(refundNumber string, sale *Sale, userID uuid.UUID, reason string) (*Refund, error) {
	if refundNumber == "" {
		return nil, shared.NewDomainError("INVALID_REFUND_NUMBER", "Refund number cannot be empty")
	}
	if sale == nil {
		return nil, shared.NewDomainError("INVALID_SALE", "Sale cannot be nil")
	}
	if !sale.IsCompleted() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only completed sales can be refunded")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Refund reason is required")
	}

	refund := &Refund{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(sale.TenantID),
		RefundNumber:        refundNumber,
		SaleID:              sale.ID,
		SaleNumber:          sale.SaleNumber,
		UserID:              userID,
		Items:               make([]RefundItem, 0, len(sale.Items)),
		Total:               sale.Total,
		Reason:              reason,
		RefundedAt:          time.Now(),
	}

	for _, item := range sale.Items {
		refund.Items = append(refund.Items, RefundItem{
			ID:          uuid.New(),
			RefundID:    refund.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
			CreatedAt:   refund.CreatedAt,
		})
	}

	refund.AddDomainEvent(NewRefundCreatedEvent(refund))

	return refund, nil
}

// TotalMoney returns the refunded amount as Money
func (r *Refund) TotalMoney() valueobject.Money {
	return valueobject.NewMoneyARS(r.Total)
}
