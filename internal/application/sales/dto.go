package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/sales"
)

// CreateSaleRequest represents a request to create a sale.
// Prices are never taken from the client; the server resolves them
// from the catalog at creation time.
type CreateSaleRequest struct {
	CustomerID    *uuid.UUID            `json:"customer_id"`
	PaymentMethod string                `json:"payment_method" binding:"required,payment_method"`
	Note          string                `json:"note" binding:"max=500"`
	Items         []CreateSaleItemInput `json:"items" binding:"required,min=1,dive"`
}

// CreateSaleItemInput represents an item in the create sale request
type CreateSaleItemInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// CancelSaleRequest represents a request to cancel a sale
type CancelSaleRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// RefundSaleRequest represents a request to refund a sale
type RefundSaleRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// SaleListFilter represents filter options for the sale list
type SaleListFilter struct {
	Search        string     `form:"search"`
	CustomerID    *uuid.UUID `form:"customer_id"`
	Status        string     `form:"status" binding:"omitempty,oneof=COMPLETED CANCELLED REFUNDED"`
	PaymentMethod string     `form:"payment_method" binding:"omitempty,payment_method"`
	From          *time.Time `form:"from"`
	To            *time.Time `form:"to"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SaleItemResponse represents a line item in API responses
type SaleItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID            uuid.UUID          `json:"id"`
	SaleNumber    string             `json:"sale_number"`
	CustomerID    *uuid.UUID         `json:"customer_id,omitempty"`
	CustomerName  string             `json:"customer_name,omitempty"`
	UserID        uuid.UUID          `json:"user_id"`
	Items         []SaleItemResponse `json:"items"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	Status        string             `json:"status"`
	Note          string             `json:"note,omitempty"`
	CancelledAt   *time.Time         `json:"cancelled_at,omitempty"`
	CancelReason  string             `json:"cancel_reason,omitempty"`
	RefundedAt    *time.Time         `json:"refunded_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// RefundItemResponse represents a refunded line item in API responses
type RefundItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// RefundResponse represents a refund in API responses
type RefundResponse struct {
	ID           uuid.UUID            `json:"id"`
	RefundNumber string               `json:"refund_number"`
	SaleID       uuid.UUID            `json:"sale_id"`
	SaleNumber   string               `json:"sale_number"`
	Items        []RefundItemResponse `json:"items"`
	Total        decimal.Decimal      `json:"total"`
	Reason       string               `json:"reason"`
	RefundedAt   time.Time            `json:"refunded_at"`
}

// ToSaleResponse converts a domain Sale to a response DTO
func ToSaleResponse(sale *sales.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(sale.Items))
	for i, item := range sale.Items {
		items[i] = SaleItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		}
	}

	return SaleResponse{
		ID:            sale.ID,
		SaleNumber:    sale.SaleNumber,
		CustomerID:    sale.CustomerID,
		CustomerName:  sale.CustomerName,
		UserID:        sale.UserID,
		Items:         items,
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod.String(),
		Status:        sale.Status.String(),
		Note:          sale.Note,
		CancelledAt:   sale.CancelledAt,
		CancelReason:  sale.CancelReason,
		RefundedAt:    sale.RefundedAt,
		CreatedAt:     sale.CreatedAt,
	}
}

// ToSaleResponses converts a slice of sales to response DTOs
func ToSaleResponses(items []sales.Sale) []SaleResponse {
	responses := make([]SaleResponse, len(items))
	for i := range items {
		responses[i] = ToSaleResponse(&items[i])
	}
	return responses
}

// ToRefundResponse converts a domain Refund to a response DTO
func ToRefundResponse(refund *sales.Refund) RefundResponse {
	items := make([]RefundItemResponse, len(refund.Items))
	for i, item := range refund.Items {
		items[i] = RefundItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		}
	}

	return RefundResponse{
		ID:           refund.ID,
		RefundNumber: refund.RefundNumber,
		SaleID:       refund.SaleID,
		SaleNumber:   refund.SaleNumber,
		Items:        items,
		Total:        refund.Total,
		Reason:       refund.Reason,
		RefundedAt:   refund.RefundedAt,
	}
}
