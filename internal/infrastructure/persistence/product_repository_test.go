package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/partner"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/shared/valueobject"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&catalog.Product{},
		&partner.Customer{},
		&sales.Sale{},
		&sales.SaleItem{},
	)
	require.NoError(t, err)

	return db
}

func TestProductRepository_SaveAndFind(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	product, err := catalog.NewProduct(tenantID, "Coca Cola 1.5L", valueobject.NewMoneyARSFromFloat(1500))
	require.NoError(t, err)
	require.NoError(t, product.SetBarcode("7790895000997"))
	require.NoError(t, product.SetSKU("coca-15"))
	require.NoError(t, repo.Save(ctx, product))

	found, err := repo.FindByIDForTenant(ctx, tenantID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coca Cola 1.5L", found.Name)
	assert.Equal(t, "COCA-15", found.SKU)

	byBarcode, err := repo.FindByBarcode(ctx, tenantID, "7790895000997")
	require.NoError(t, err)
	assert.Equal(t, product.ID, byBarcode.ID)

	// tenant isolation
	_, err = repo.FindByIDForTenant(ctx, uuid.New(), product.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	exists, err := repo.ExistsBySKU(ctx, tenantID, "COCA-15")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestProductRepository_ListCategories(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	drink := createTestProduct(t, db, tenantID, "Coca Cola 1.5L", 1500, 10)
	require.NoError(t, drink.SetCategory("Bebidas"))
	require.NoError(t, repo.Save(ctx, drink))

	other := createTestProduct(t, db, tenantID, "Sprite 1.5L", 1400, 10)
	require.NoError(t, other.SetCategory("Bebidas"))
	require.NoError(t, repo.Save(ctx, other))

	snack := createTestProduct(t, db, tenantID, "Alfajor", 500, 30)
	require.NoError(t, snack.SetCategory("Golosinas"))
	require.NoError(t, repo.Save(ctx, snack))

	// uncategorized products don't produce an empty entry
	createTestProduct(t, db, tenantID, "Misc", 100, 5)

	categories, err := repo.ListCategories(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bebidas", "Golosinas"}, categories)

	// categories are tenant scoped
	categories, err = repo.ListCategories(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestProductRepository_FilterByCategory(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	drink := createTestProduct(t, db, tenantID, "Coca Cola 1.5L", 1500, 10)
	require.NoError(t, drink.SetCategory("Bebidas"))
	require.NoError(t, repo.Save(ctx, drink))

	snack := createTestProduct(t, db, tenantID, "Alfajor", 500, 30)
	require.NoError(t, snack.SetCategory("Golosinas"))
	require.NoError(t, repo.Save(ctx, snack))

	filter := shared.DefaultFilter()
	filter.Filters = map[string]interface{}{"category": "Bebidas"}

	result, err := repo.FindAllForTenant(ctx, tenantID, filter)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Coca Cola 1.5L", result[0].Name)
}

func TestProductRepository_FindLowStock(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	low := createTestProduct(t, db, tenantID, "Low", 100, 2)
	require.NoError(t, low.SetLowStockThreshold(5))
	require.NoError(t, repo.Save(ctx, low))

	ok := createTestProduct(t, db, tenantID, "Plenty", 100, 50)
	require.NoError(t, ok.SetLowStockThreshold(5))
	require.NoError(t, repo.Save(ctx, ok))

	result, err := repo.FindLowStock(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Low", result[0].Name)
}

func TestCustomerRepository_FindSummariesForTenant(t *testing.T) {
	db := setupCatalogTestDB(t)
	customerRepo := NewGormCustomerRepository(db)
	saleRepo := NewGormSaleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	customer, err := partner.NewCustomer(tenantID, "Juan Perez")
	require.NoError(t, err)
	require.NoError(t, customerRepo.Save(ctx, customer))

	product := createTestProduct(t, db, tenantID, "Widget", 500, 100)

	sale := buildTestSale(t, tenantID, "V-000001", product)
	require.NoError(t, sale.SetCustomer(customer.ID, customer.Name))
	require.NoError(t, saleRepo.CreateWithStockDeduction(ctx, sale, false))

	// a cancelled sale must not count toward the aggregates
	cancelled := buildTestSale(t, tenantID, "V-000002", product)
	require.NoError(t, cancelled.SetCustomer(customer.ID, customer.Name))
	require.NoError(t, saleRepo.CreateWithStockDeduction(ctx, cancelled, false))
	require.NoError(t, cancelled.Cancel("mistake"))
	require.NoError(t, saleRepo.CancelWithStockRestore(ctx, cancelled))

	summaries, err := customerRepo.FindSummariesForTenant(ctx, tenantID, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(1), summaries[0].SaleCount)
	assert.True(t, summaries[0].TotalSpent.Equal(sale.Total))
}
