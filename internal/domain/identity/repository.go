package identity

import (
	"context"

	"github.com/google/uuid"
)

// TenantRepository defines the interface for tenant persistence
type TenantRepository interface {
	// FindByID finds a tenant by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// FindBySlug finds a tenant by its URL slug
	FindBySlug(ctx context.Context, slug string) (*Tenant, error)

	// ExistsBySlug checks if a tenant with the given slug exists
	ExistsBySlug(ctx context.Context, slug string) (bool, error)

	// Save creates or updates a tenant
	Save(ctx context.Context, tenant *Tenant) error
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByIDForTenant finds a user by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*User, error)

	// FindByEmailForTenant finds a user by email within a tenant
	FindByEmailForTenant(ctx context.Context, tenantID uuid.UUID, email string) (*User, error)

	// ExistsByEmail checks if a user with the given email exists in the tenant
	ExistsByEmail(ctx context.Context, tenantID uuid.UUID, email string) (bool, error)

	// Save creates or updates a user
	Save(ctx context.Context, user *User) error
}
