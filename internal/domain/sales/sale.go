package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/shared/valueobject"
)

// SaleStatus represents the lifecycle status of a sale
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusCancelled SaleStatus = "CANCELLED"
	SaleStatusRefunded  SaleStatus = "REFUNDED"
)

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusCompleted, SaleStatusCancelled, SaleStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// A sale is born COMPLETED; CANCELLED and REFUNDED are terminal.
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	switch s {
	case SaleStatusCompleted:
		return target == SaleStatusCancelled || target == SaleStatusRefunded
	case SaleStatusCancelled, SaleStatusRefunded:
		return false
	}
	return false
}

// PaymentMethod represents how a sale was paid
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodOther    PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is supported
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// SaleItem represents a line item in a sale.
// Product name and unit price are captured at sale time so later
// catalog edits do not rewrite history.
type SaleItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	SKU         string          `gorm:"type:varchar(50)"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt   time.Time
}

// TableName returns the table name for GORM
func (SaleItem) TableName() string {
	return "sale_items"
}

// NewSaleItem creates a new sale line item.
// Subtotal is always quantity * unitPrice, never taken from input.
func NewSaleItem(saleID, productID uuid.UUID, productName, sku string, quantity int, unitPrice valueobject.Money) (*SaleItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &SaleItem{
		ID:          uuid.New(),
		SaleID:      saleID,
		ProductID:   productID,
		ProductName: productName,
		SKU:         sku,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Amount(),
		Subtotal:    unitPrice.Amount().Mul(decimal.NewFromInt(int64(quantity))),
		CreatedAt:   time.Now(),
	}, nil
}

// SubtotalMoney returns the line subtotal as Money
func (i *SaleItem) SubtotalMoney() valueobject.Money {
	return valueobject.NewMoneyARS(i.Subtotal)
}

// Sale represents a completed point-of-sale transaction.
// It is the aggregate root for the sale lifecycle: it is created
// already COMPLETED (stock deducted) and may later be cancelled or
// refunded, each restoring stock exactly once.
type Sale struct {
	shared.TenantAggregateRoot
	SaleNumber    string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_sale_tenant_number,priority:2"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index"`
	CustomerName  string          `gorm:"type:varchar(200)"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID"`
	Total         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20);not null"`
	Status        SaleStatus      `gorm:"type:varchar(20);not null;default:'COMPLETED';index"`
	Note          string          `gorm:"type:text"`
	CancelledAt   *time.Time
	CancelReason  string `gorm:"type:text"`
	RefundedAt    *time.Time
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale creates a new sale in COMPLETED status.
// The caller (application service) is responsible for resolving products,
// deducting stock and persisting atomically.
func NewSale(tenantID uuid.UUID, saleNumber string, userID uuid.UUID, paymentMethod PaymentMethod, note string) (*Sale, error) {
	if saleNumber == "" {
		return nil, shared.NewDomainError("INVALID_SALE_NUMBER", "Sale number cannot be empty")
	}
	if len(saleNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_SALE_NUMBER", "Sale number cannot exceed 50 characters")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !paymentMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unsupported payment method: %s", paymentMethod))
	}
	if paymentMethod == PaymentMethodOther && note == "" {
		return nil, shared.NewDomainError("NOTE_REQUIRED", "A note is required when payment method is OTHER")
	}

	sale := &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SaleNumber:          saleNumber,
		UserID:              userID,
		Items:               make([]SaleItem, 0),
		Total:               decimal.Zero,
		PaymentMethod:       paymentMethod,
		Status:              SaleStatusCompleted,
		Note:                note,
	}

	return sale, nil
}

// SetCustomer attaches an optional customer to the sale
func (s *Sale) SetCustomer(customerID uuid.UUID, customerName string) error {
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	s.CustomerID = &customerID
	s.CustomerName = customerName
	s.UpdatedAt = time.Now()

	return nil
}

// AddItem adds a line item to the sale and recalculates the total.
// Duplicate products are rejected; the caller should merge quantities.
func (s *Sale) AddItem(productID uuid.UUID, productName, sku string, quantity int, unitPrice valueobject.Money) (*SaleItem, error) {
	for _, item := range s.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in sale, merge quantities instead")
		}
	}

	item, err := NewSaleItem(s.ID, productID, productName, sku, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	s.Items = append(s.Items, *item)
	s.recalculateTotal()
	s.UpdatedAt = time.Now()

	return item, nil
}

// Finalize validates the sale is ready to persist and emits the created event
func (s *Sale) Finalize() error {
	if len(s.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot complete a sale without items")
	}
	if s.Total.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Sale total must be positive")
	}

	s.AddDomainEvent(NewSaleCompletedEvent(s))

	return nil
}

// Cancel cancels the sale. Only COMPLETED sales can be cancelled;
// the stock restore is handled atomically by the repository.
func (s *Sale) Cancel(reason string) error {
	if !s.Status.CanTransitionTo(SaleStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel sale in %s status", s.Status))
	}

	now := time.Now()
	s.Status = SaleStatusCancelled
	s.CancelledAt = &now
	s.CancelReason = reason
	s.UpdatedAt = now

	s.AddDomainEvent(NewSaleCancelledEvent(s))

	return nil
}

// MarkRefunded transitions the sale to REFUNDED.
// The Refund aggregate carries the restock detail.
func (s *Sale) MarkRefunded() error {
	if !s.Status.CanTransitionTo(SaleStatusRefunded) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot refund sale in %s status", s.Status))
	}

	now := time.Now()
	s.Status = SaleStatusRefunded
	s.RefundedAt = &now
	s.UpdatedAt = now

	s.AddDomainEvent(NewSaleRefundedEvent(s))

	return nil
}

// recalculateTotal recalculates the sale total from its items
func (s *Sale) recalculateTotal() {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Subtotal)
	}
	s.Total = total
}

// TotalMoney returns the total as Money
func (s *Sale) TotalMoney() valueobject.Money {
	return valueobject.NewMoneyARS(s.Total)
}

// ItemCount returns the number of line items
func (s *Sale) ItemCount() int {
	return len(s.Items)
}

// TotalQuantity returns the sum of all item quantities
func (s *Sale) TotalQuantity() int {
	total := 0
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

// GetItemByProduct returns the line item for a product, or nil
func (s *Sale) GetItemByProduct(productID uuid.UUID) *SaleItem {
	for idx := range s.Items {
		if s.Items[idx].ProductID == productID {
			return &s.Items[idx]
		}
	}
	return nil
}

// IsCompleted returns true if the sale is completed
func (s *Sale) IsCompleted() bool {
	return s.Status == SaleStatusCompleted
}

// IsCancelled returns true if the sale is cancelled
func (s *Sale) IsCancelled() bool {
	return s.Status == SaleStatusCancelled
}

// IsRefunded returns true if the sale is refunded
func (s *Sale) IsRefunded() bool {
	return s.Status == SaleStatusRefunded
}

// IsTerminal returns true if no further transitions are allowed
func (s *Sale) IsTerminal() bool {
	return s.IsCancelled() || s.IsRefunded()
}
