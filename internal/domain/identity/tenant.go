package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/pos/backend/internal/domain/shared"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Tenant represents one store using the system.
// The tenant slug is the URL-facing identifier (e.g. /api/my-store/...).
type Tenant struct {
	shared.BaseAggregateRoot
	Name     string `gorm:"type:varchar(200);not null"`
	Slug     string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Category string `gorm:"type:varchar(100)"`
	Active   bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates a new tenant
func NewTenant(name, slug string) (*Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}
	if err := validateSlug(slug); err != nil {
		return nil, err
	}

	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		Active:            true,
	}, nil
}

// Rename changes the tenant display name
func (t *Tenant) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}

	t.Name = name
	t.UpdatedAt = time.Now()

	return nil
}

// SetCategory sets the tenant business category (e.g. "restaurant", "retail")
func (t *Tenant) SetCategory(category string) error {
	category = strings.TrimSpace(category)
	if len(category) > 100 {
		return shared.NewDomainError("INVALID_CATEGORY", "Tenant category cannot exceed 100 characters")
	}

	t.Category = category
	t.UpdatedAt = time.Now()

	return nil
}

// Deactivate disables the tenant; its users can no longer log in
func (t *Tenant) Deactivate() {
	t.Active = false
	t.UpdatedAt = time.Now()
}

func validateSlug(slug string) error {
	if slug == "" {
		return shared.NewDomainError("INVALID_SLUG", "Tenant slug cannot be empty")
	}
	if len(slug) > 100 {
		return shared.NewDomainError("INVALID_SLUG", "Tenant slug cannot exceed 100 characters")
	}
	if !slugPattern.MatchString(slug) {
		return shared.NewDomainError("INVALID_SLUG", "Tenant slug must be lowercase letters, digits and hyphens")
	}
	return nil
}
