package sales

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeSale   = "Sale"
	AggregateTypeRefund = "Refund"
)

// Event type constants
const (
	EventTypeSaleCompleted = "SaleCompleted"
	EventTypeSaleCancelled = "SaleCancelled"
	EventTypeSaleRefunded  = "SaleRefunded"
	EventTypeRefundCreated = "RefundCreated"
)

// SaleCompletedEvent is published when a sale is completed
type SaleCompletedEvent struct {
	shared.BaseDomainEvent
	SaleID        uuid.UUID       `json:"sale_id"`
	SaleNumber    string          `json:"sale_number"`
	CustomerID    *uuid.UUID      `json:"customer_id,omitempty"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	ItemCount     int             `json:"item_count"`
}

// NewSaleCompletedEvent creates a new SaleCompletedEvent
func NewSaleCompletedEvent(sale *Sale) *SaleCompletedEvent {
	return &SaleCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCompleted, AggregateTypeSale, sale.ID, sale.TenantID),
		SaleID:          sale.ID,
		SaleNumber:      sale.SaleNumber,
		CustomerID:      sale.CustomerID,
		Total:           sale.Total,
		PaymentMethod:   sale.PaymentMethod,
		ItemCount:       len(sale.Items),
	}
}

// SaleCancelledEvent is published when a sale is cancelled
type SaleCancelledEvent struct {
	shared.BaseDomainEvent
	SaleID     uuid.UUID `json:"sale_id"`
	SaleNumber string    `json:"sale_number"`
	Reason     string    `json:"reason,omitempty"`
}

// NewSaleCancelledEvent creates a new SaleCancelledEvent
func NewSaleCancelledEvent(sale *Sale) *SaleCancelledEvent {
	return &SaleCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCancelled, AggregateTypeSale, sale.ID, sale.TenantID),
		SaleID:          sale.ID,
		SaleNumber:      sale.SaleNumber,
		Reason:          sale.CancelReason,
	}
}

// SaleRefundedEvent is published when a sale is refunded
type SaleRefundedEvent struct {
	shared.BaseDomainEvent
	SaleID     uuid.UUID       `json:"sale_id"`
	SaleNumber string          `json:"sale_number"`
	Total      decimal.Decimal `json:"total"`
}

// NewSaleRefundedEvent creates a new SaleRefundedEvent
func NewSaleRefundedEvent(sale *Sale) *SaleRefundedEvent {
	return &SaleRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleRefunded, AggregateTypeSale, sale.ID, sale.TenantID),
		SaleID:          sale.ID,
		SaleNumber:      sale.SaleNumber,
		Total:           sale.Total,
	}
}

// RefundCreatedEvent is published when a refund record is created
type RefundCreatedEvent struct {
	shared.BaseDomainEvent
	RefundID     uuid.UUID       `json:"refund_id"`
	RefundNumber string          `json:"refund_number"`
	SaleID       uuid.UUID       `json:"sale_id"`
	Total        decimal.Decimal `json:"total"`
	Reason       string          `json:"reason"`
}

// NewRefundCreatedEvent creates a new RefundCreatedEvent
func NewRefundCreatedEvent(refund *Refund) *RefundCreatedEvent {
	return &RefundCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefundCreated, AggregateTypeRefund, refund.ID, refund.TenantID),
		RefundID:        refund.ID,
		RefundNumber:    refund.RefundNumber,
		SaleID:          refund.SaleID,
		Total:           refund.Total,
		Reason:          refund.Reason,
	}
}
