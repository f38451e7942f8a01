package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/shared/valueobject"
)

func setupSaleTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&catalog.Product{},
		&sales.Sale{},
		&sales.SaleItem{},
		&sales.Refund{},
		&sales.RefundItem{},
	)
	require.NoError(t, err)

	return db
}

func createTestProduct(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name string, price float64, quantity int) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(tenantID, name, valueobject.NewMoneyARSFromFloat(price))
	require.NoError(t, err)
	require.NoError(t, product.SetQuantity(quantity))
	require.NoError(t, db.Create(product).Error)
	return product
}

func buildTestSale(t *testing.T, tenantID uuid.UUID, number string, products ...*catalog.Product) *sales.Sale {
	t.Helper()
	sale, err := sales.NewSale(tenantID, number, uuid.New(), sales.PaymentMethodCash, "")
	require.NoError(t, err)
	for _, p := range products {
		_, err := sale.AddItem(p.ID, p.Name, p.SKU, 2, p.UnitPrice())
		require.NoError(t, err)
	}
	require.NoError(t, sale.Finalize())
	return sale
}

func productQuantity(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var product catalog.Product
	require.NoError(t, db.First(&product, "id = ?", id).Error)
	return product.Quantity
}

func TestSaleRepository_CreateWithStockDeduction(t *testing.T) {
	db := setupSaleTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("deducts stock and persists sale with items", func(t *testing.T) {
		product := createTestProduct(t, db, tenantID, "Coca Cola 1.5L", 1500, 10)
		sale := buildTestSale(t, tenantID, "V-000001", product)

		err := repo.CreateWithStockDeduction(ctx, sale, false)
		require.NoError(t, err)

		assert.Equal(t, 8, productQuantity(t, db, product.ID))

		found, err := repo.FindByIDForTenant(ctx, tenantID, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, sales.SaleStatusCompleted, found.Status)
		require.Len(t, found.Items, 1)
		assert.Equal(t, 2, found.Items[0].Quantity)
		assert.True(t, found.Total.Equal(sale.Total))
	})

	t.Run("insufficient stock rolls back the whole transaction", func(t *testing.T) {
		plenty := createTestProduct(t, db, tenantID, "Plenty", 100, 50)
		scarce := createTestProduct(t, db, tenantID, "Scarce", 100, 1)
		sale := buildTestSale(t, tenantID, "V-000002", plenty, scarce)

		err := repo.CreateWithStockDeduction(ctx, sale, false)
		require.ErrorIs(t, err, shared.ErrInsufficientStock)

		// the successful deduction of the first item was rolled back
		assert.Equal(t, 50, productQuantity(t, db, plenty.ID))
		assert.Equal(t, 1, productQuantity(t, db, scarce.ID))

		_, err = repo.FindByIDForTenant(ctx, tenantID, sale.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unknown product fails with not found", func(t *testing.T) {
		sale, err := sales.NewSale(tenantID, "V-000003", uuid.New(), sales.PaymentMethodCash, "")
		require.NoError(t, err)
		_, err = sale.AddItem(uuid.New(), "Ghost", "", 1, valueobject.NewMoneyARSFromFloat(10))
		require.NoError(t, err)
		require.NoError(t, sale.Finalize())

		err = repo.CreateWithStockDeduction(ctx, sale, false)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("negative stock allowed when configured", func(t *testing.T) {
		scarce := createTestProduct(t, db, tenantID, "Backorder", 100, 1)
		sale := buildTestSale(t, tenantID, "V-000004", scarce)

		err := repo.CreateWithStockDeduction(ctx, sale, true)
		require.NoError(t, err)
		assert.Equal(t, -1, productQuantity(t, db, scarce.ID))
	})
}

func TestSaleRepository_FindBySaleNumber(t *testing.T) {
	db := setupSaleTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	product := createTestProduct(t, db, tenantID, "Widget", 500, 10)
	sale := buildTestSale(t, tenantID, "V-000042", product)
	require.NoError(t, repo.CreateWithStockDeduction(ctx, sale, false))

	found, err := repo.FindBySaleNumber(ctx, tenantID, "V-000042")
	require.NoError(t, err)
	assert.Equal(t, sale.ID, found.ID)
	require.Len(t, found.Items, 1)

	// sale numbers are tenant scoped
	_, err = repo.FindBySaleNumber(ctx, uuid.New(), "V-000042")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindBySaleNumber(ctx, tenantID, "V-999999")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSaleRepository_CancelWithStockRestore(t *testing.T) {
	db := setupSaleTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	product := createTestProduct(t, db, tenantID, "Widget", 500, 10)
	sale := buildTestSale(t, tenantID, "V-000001", product)
	require.NoError(t, repo.CreateWithStockDeduction(ctx, sale, false))
	require.Equal(t, 8, productQuantity(t, db, product.ID))

	require.NoError(t, sale.Cancel("customer changed their mind"))
	require.NoError(t, repo.CancelWithStockRestore(ctx, sale))

	// stock restored exactly once
	assert.Equal(t, 10, productQuantity(t, db, product.ID))

	found, err := repo.FindByIDForTenant(ctx, tenantID, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.SaleStatusCancelled, found.Status)
	assert.Equal(t, "customer changed their mind", found.CancelReason)

	// second cancel does not restore again
	err = repo.CancelWithStockRestore(ctx, sale)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	assert.Equal(t, 10, productQuantity(t, db, product.ID))
}

func TestRefundRepository_CreateWithStockRestore(t *testing.T) {
	db := setupSaleTestDB(t)
	saleRepo := NewGormSaleRepository(db)
	refundRepo := NewGormRefundRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	userID := uuid.New()

	product := createTestProduct(t, db, tenantID, "Widget", 500, 10)
	sale := buildTestSale(t, tenantID, "V-000001", product)
	require.NoError(t, saleRepo.CreateWithStockDeduction(ctx, sale, false))
	require.Equal(t, 8, productQuantity(t, db, product.ID))

	refund, err := sales.NewRefund("DEV-000001", sale, userID, "defective")
	require.NoError(t, err)
	require.NoError(t, sale.MarkRefunded())

	require.NoError(t, refundRepo.CreateWithStockRestore(ctx, refund, sale))

	assert.Equal(t, 10, productQuantity(t, db, product.ID))

	found, err := saleRepo.FindByIDForTenant(ctx, tenantID, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.SaleStatusRefunded, found.Status)

	stored, err := refundRepo.FindBySaleID(ctx, tenantID, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "DEV-000001", stored.RefundNumber)
	assert.True(t, stored.Total.Equal(sale.Total))
	require.Len(t, stored.Items, 1)
	assert.Equal(t, product.ID, stored.Items[0].ProductID)
	assert.Equal(t, 2, stored.Items[0].Quantity)

	// a second refund attempt finds the sale no longer COMPLETED
	second, err := sales.NewRefund("DEV-000002", &sales.Sale{
		TenantAggregateRoot: sale.TenantAggregateRoot,
		SaleNumber:          sale.SaleNumber,
		UserID:              sale.UserID,
		Status:              sales.SaleStatusCompleted,
		Total:               sale.Total,
	}, userID, "again")
	require.NoError(t, err)
	err = refundRepo.CreateWithStockRestore(ctx, second, sale)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	assert.Equal(t, 10, productQuantity(t, db, product.ID))
}

func TestSaleRepository_CancelAfterRefundRejected(t *testing.T) {
	db := setupSaleTestDB(t)
	saleRepo := NewGormSaleRepository(db)
	refundRepo := NewGormRefundRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	product := createTestProduct(t, db, tenantID, "Widget", 500, 10)
	sale := buildTestSale(t, tenantID, "V-000001", product)
	require.NoError(t, saleRepo.CreateWithStockDeduction(ctx, sale, false))

	refund, err := sales.NewRefund("DEV-000001", sale, uuid.New(), "defective")
	require.NoError(t, err)
	require.NoError(t, sale.MarkRefunded())
	require.NoError(t, refundRepo.CreateWithStockRestore(ctx, refund, sale))

	// cancel can no longer win
	stale := buildTestSale(t, tenantID, "V-000001", product)
	stale.ID = sale.ID
	stale.TenantID = sale.TenantID
	require.NoError(t, stale.Cancel("late cancel"))

	err = saleRepo.CancelWithStockRestore(ctx, stale)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	// the refund restored stock once; the losing cancel must not add more
	assert.Equal(t, 10, productQuantity(t, db, product.ID))
}

func TestSaleRepository_GenerateSaleNumber(t *testing.T) {
	db := setupSaleTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	number, err := repo.GenerateSaleNumber(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, "V-000001", number)

	product := createTestProduct(t, db, tenantID, "Widget", 500, 100)
	sale := buildTestSale(t, tenantID, number, product)
	require.NoError(t, repo.CreateWithStockDeduction(ctx, sale, false))

	number, err = repo.GenerateSaleNumber(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, "V-000002", number)

	// numbers are tenant scoped
	number, err = repo.GenerateSaleNumber(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "V-000001", number)
}

func TestRefundRepository_GenerateRefundNumber(t *testing.T) {
	db := setupSaleTestDB(t)
	repo := NewGormRefundRepository(db)
	ctx := context.Background()

	number, err := repo.GenerateRefundNumber(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "DEV-000001", number)
}

func TestSaleRepository_GetStats(t *testing.T) {
	db := setupSaleTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	now := time.Now()

	product := createTestProduct(t, db, tenantID, "Widget", 500, 100)

	first := buildTestSale(t, tenantID, "V-000001", product)
	require.NoError(t, repo.CreateWithStockDeduction(ctx, first, false))

	second := buildTestSale(t, tenantID, "V-000002", product)
	require.NoError(t, repo.CreateWithStockDeduction(ctx, second, false))

	// cancelled sales drop out of every figure
	cancelled := buildTestSale(t, tenantID, "V-000003", product)
	require.NoError(t, repo.CreateWithStockDeduction(ctx, cancelled, false))
	require.NoError(t, cancelled.Cancel("mistake"))
	require.NoError(t, repo.CancelWithStockRestore(ctx, cancelled))

	stats, err := repo.GetStats(ctx, tenantID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalSales)
	assert.True(t, stats.TotalRevenue.Equal(first.Total.Add(second.Total)))
	assert.True(t, stats.AverageSale.Equal(first.Total))
	assert.Equal(t, int64(2), stats.TodaySales)
	require.Len(t, stats.ByMonth, 1)
	assert.Equal(t, now.Format("2006-01"), stats.ByMonth[0].Month)
	assert.Equal(t, int64(2), stats.ByMonth[0].Count)
}

func TestSaleRepository_FindAllForTenant_Filters(t *testing.T) {
	db := setupSaleTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	product := createTestProduct(t, db, tenantID, "Widget", 500, 100)

	kept := buildTestSale(t, tenantID, "V-000001", product)
	require.NoError(t, repo.CreateWithStockDeduction(ctx, kept, false))

	cancelled := buildTestSale(t, tenantID, "V-000002", product)
	require.NoError(t, repo.CreateWithStockDeduction(ctx, cancelled, false))
	require.NoError(t, cancelled.Cancel("mistake"))
	require.NoError(t, repo.CancelWithStockRestore(ctx, cancelled))

	filter := shared.DefaultFilter()
	filter.Filters = map[string]interface{}{"status": sales.SaleStatusCompleted}

	result, err := repo.FindAllForTenant(ctx, tenantID, filter)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "V-000001", result[0].SaleNumber)

	count, err := repo.CountForTenant(ctx, tenantID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// other tenants see nothing
	result, err = repo.FindAllForTenant(ctx, uuid.New(), shared.DefaultFilter())
	require.NoError(t, err)
	assert.Empty(t, result)
}
