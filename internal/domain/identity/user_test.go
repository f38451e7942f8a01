package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	tenantID := uuid.New()

	tests := []struct {
		name     string
		email    string
		userName string
		password string
		role     UserRole
		wantErr  bool
	}{
		{
			name:     "valid admin",
			email:    "Ana@Store.com",
			userName: "Ana",
			password: "supersecret",
			role:     UserRoleAdmin,
			wantErr:  false,
		},
		{
			name:     "invalid email",
			email:    "not-an-email",
			userName: "Bob",
			password: "supersecret",
			role:     UserRoleSeller,
			wantErr:  true,
		},
		{
			name:     "short password",
			email:    "bob@store.com",
			userName: "Bob",
			password: "short",
			role:     UserRoleSeller,
			wantErr:  true,
		},
		{
			name:     "invalid role",
			email:    "bob@store.com",
			userName: "Bob",
			password: "supersecret",
			role:     "OWNER",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := NewUser(tenantID, tt.email, tt.userName, tt.password, tt.role)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			// email is normalized to lowercase
			assert.Equal(t, "ana@store.com", user.Email)
			assert.NotEqual(t, tt.password, user.PasswordHash)
			assert.True(t, user.CheckPassword(tt.password))
			assert.False(t, user.CheckPassword("wrong-password"))
		})
	}
}

func TestTenant_SlugValidation(t *testing.T) {
	valid := []string{"my-store", "store1", "a", "la-tienda-2"}
	for _, slug := range valid {
		_, err := NewTenant("Store", slug)
		assert.NoError(t, err, "slug %q should be valid", slug)
	}

	invalid := []string{"", "My-Store", "store_1", "-store", "store-", "la tienda"}
	for _, slug := range invalid {
		_, err := NewTenant("Store", slug)
		assert.Error(t, err, "slug %q should be invalid", slug)
	}
}
