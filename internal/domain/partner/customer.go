package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/shared"
)

// Customer represents a buyer in the system.
// It is the aggregate root for customer operations. Purchase totals are
// derived from sales at query time and surfaced through CustomerSummary.
type Customer struct {
	shared.TenantAggregateRoot
	Name    string `gorm:"type:varchar(200);not null"`
	Email   string `gorm:"type:varchar(200);index"`
	Phone   string `gorm:"type:varchar(50)"`
	Address string `gorm:"type:text"`
	Notes   string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// CustomerSummary is a customer enriched with purchase aggregates
type CustomerSummary struct {
	Customer
	SaleCount  int64           `gorm:"column:sale_count"`
	TotalSpent decimal.Decimal `gorm:"column:total_spent"`
}

// NewCustomer creates a new customer
func NewCustomer(tenantID uuid.UUID, name string) (*Customer, error) {
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}

	customer := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
	}

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))

	return customer, nil
}

// Update updates the customer's information
func (c *Customer) Update(name, email, phone, address, notes string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}

	c.Name = name
	c.Email = strings.ToLower(strings.TrimSpace(email))
	c.Phone = phone
	c.Address = address
	c.Notes = notes
	c.UpdatedAt = time.Now()

	c.AddDomainEvent(NewCustomerUpdatedEvent(c))

	return nil
}

// SetContact updates only the contact information
func (c *Customer) SetContact(email, phone string) error {
	if err := validateEmail(email); err != nil {
		return err
	}

	c.Email = strings.ToLower(strings.TrimSpace(email))
	c.Phone = phone
	c.UpdatedAt = time.Now()

	return nil
}

func validateCustomerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	if !strings.Contains(email, "@") || len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
	}
	return nil
}
