package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pos/backend/internal/domain/shared"
)

// UserRole represents the role of a user within a tenant
type UserRole string

const (
	UserRoleAdmin  UserRole = "ADMIN"
	UserRoleSeller UserRole = "SELLER"
)

// IsValid checks if the role is supported
func (r UserRole) IsValid() bool {
	return r == UserRoleAdmin || r == UserRoleSeller
}

// User represents an operator of the point of sale
type User struct {
	shared.TenantAggregateRoot
	Email        string   `gorm:"type:varchar(200);not null;uniqueIndex:idx_user_tenant_email,priority:2"`
	Name         string   `gorm:"type:varchar(200);not null"`
	PasswordHash string   `gorm:"type:varchar(100);not null"`
	Role         UserRole `gorm:"type:varchar(20);not null;default:'SELLER'"`
	Active       bool     `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new user with a bcrypt-hashed password
func NewUser(tenantID uuid.UUID, email, name, password string, role UserRole) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "User name cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unsupported user role")
	}

	user := &User{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Email:               email,
		Name:                name,
		Role:                role,
		Active:              true,
	}

	if err := user.SetPassword(password); err != nil {
		return nil, err
	}

	return user, nil
}

// SetPassword hashes and stores a new password
func (u *User) SetPassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_FAILED", "Failed to hash password")
	}

	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()

	return nil
}

// CheckPassword verifies a plaintext password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Deactivate disables the user account
func (u *User) Deactivate() {
	u.Active = false
	u.UpdatedAt = time.Now()
}
