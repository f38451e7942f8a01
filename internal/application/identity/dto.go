package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/pos/backend/internal/domain/identity"
	"github.com/pos/backend/internal/infrastructure/auth"
)

// RegisterRequest represents a request to register a new tenant with its admin user
type RegisterRequest struct {
	TenantName     string `json:"tenant_name" binding:"required,min=1,max=200"`
	TenantSlug     string `json:"tenant_slug" binding:"required,min=1,max=100"`
	TenantCategory string `json:"tenant_category" binding:"max=100"`
	Email          string `json:"email" binding:"required,email,max=200"`
	Name           string `json:"name" binding:"required,min=1,max=200"`
	Password       string `json:"password" binding:"required,min=8,max=100"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	TenantSlug string `json:"tenant_slug" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
}

// RefreshRequest represents a token refresh attempt
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateUserRequest represents a request to create a user within a tenant
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=200"`
	Name     string `json:"name" binding:"required,min=1,max=200"`
	Password string `json:"password" binding:"required,min=8,max=100"`
	Role     string `json:"role" binding:"required,oneof=ADMIN SELLER"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// TenantResponse represents a tenant in API responses
type TenantResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Category  string    `json:"category"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	Tenant TenantResponse `json:"tenant"`
	User   UserResponse   `json:"user"`
	Token  *auth.Token    `json:"token"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Tenant TenantResponse `json:"tenant"`
	User   UserResponse   `json:"user"`
	Token  *auth.Token    `json:"token"`
}

// ToUserResponse converts a domain User to a UserResponse
func ToUserResponse(user *identity.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      string(user.Role),
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
	}
}

// ToTenantResponse converts a domain Tenant to a TenantResponse
func ToTenantResponse(tenant *identity.Tenant) TenantResponse {
	return TenantResponse{
		ID:        tenant.ID,
		Name:      tenant.Name,
		Slug:      tenant.Slug,
		Category:  tenant.Category,
		Active:    tenant.Active,
		CreatedAt: tenant.CreatedAt,
	}
}
