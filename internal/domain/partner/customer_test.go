package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	tenantID := uuid.New()

	tests := []struct {
		name         string
		customerName string
		wantErr      bool
	}{
		{
			name:         "valid customer",
			customerName: "Juan Perez",
			wantErr:      false,
		},
		{
			name:         "empty name",
			customerName: "",
			wantErr:      true,
		},
		{
			name:         "whitespace only name",
			customerName: "  ",
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			customer, err := NewCustomer(tenantID, tt.customerName)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tenantID, customer.TenantID)
			assert.Equal(t, tt.customerName, customer.Name)
			assert.Len(t, customer.GetDomainEvents(), 1)
		})
	}
}

func TestCustomer_Update(t *testing.T) {
	customer, err := NewCustomer(uuid.New(), "Juan Perez")
	require.NoError(t, err)

	err = customer.Update("Juan P. Perez", "Juan@Example.com", "+54 11 5555-0001", "Av. Corrientes 1234", "frequent buyer")
	require.NoError(t, err)
	assert.Equal(t, "Juan P. Perez", customer.Name)
	assert.Equal(t, "juan@example.com", customer.Email)
	assert.Equal(t, "+54 11 5555-0001", customer.Phone)

	err = customer.Update("Juan", "not-an-email", "", "", "")
	assert.Error(t, err)
}

func TestCustomer_SetContact(t *testing.T) {
	customer, err := NewCustomer(uuid.New(), "Maria Lopez")
	require.NoError(t, err)

	require.NoError(t, customer.SetContact("maria@example.com", "555-0002"))
	assert.Equal(t, "maria@example.com", customer.Email)

	// empty email is allowed
	require.NoError(t, customer.SetContact("", "555-0003"))
	assert.Equal(t, "", customer.Email)
}
