package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/infrastructure/cache"
)

// MockSaleRepository is a mock implementation of SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.Sale, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindBySaleNumber(ctx context.Context, tenantID uuid.UUID, saleNumber string) (*sales.Sale, error) {
	args := m.Called(ctx, tenantID, saleNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.Sale, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepository) GenerateSaleNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

func (m *MockSaleRepository) CreateWithStockDeduction(ctx context.Context, sale *sales.Sale, allowNegativeStock bool) error {
	args := m.Called(ctx, sale, allowNegativeStock)
	return args.Error(0)
}

func (m *MockSaleRepository) CancelWithStockRestore(ctx context.Context, sale *sales.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) GetStats(ctx context.Context, tenantID uuid.UUID, now time.Time) (*sales.Stats, error) {
	args := m.Called(ctx, tenantID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Stats), args.Error(1)
}

func sampleStats() *sales.Stats {
	return &sales.Stats{
		TotalSales:   10,
		TotalRevenue: decimal.NewFromInt(15000),
		TodaySales:   2,
		TodayRevenue: decimal.NewFromInt(3000),
		ByMonth: []sales.MonthlySales{
			{Month: "2026-08", Count: 10, Total: decimal.NewFromInt(15000)},
		},
	}
}

func TestReportService_GetStats(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("computes and caches stats on miss", func(t *testing.T) {
		repo := new(MockSaleRepository)
		memCache := cache.NewMemoryCache()
		service := NewReportService(repo, memCache, 5*time.Minute, zap.NewNop())

		repo.On("GetStats", ctx, tenantID, mock.AnythingOfType("time.Time")).Return(sampleStats(), nil).Once()

		stats, err := service.GetStats(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(10), stats.TotalSales)

		// Second call is served from the cache; the repo is not hit again
		again, err := service.GetStats(ctx, tenantID)
		require.NoError(t, err)
		assert.True(t, again.TotalRevenue.Equal(decimal.NewFromInt(15000)))
		require.Len(t, again.ByMonth, 1)
		assert.Equal(t, "2026-08", again.ByMonth[0].Month)
		repo.AssertNumberOfCalls(t, "GetStats", 1)
	})

	t.Run("isolates cache entries per tenant", func(t *testing.T) {
		repo := new(MockSaleRepository)
		memCache := cache.NewMemoryCache()
		service := NewReportService(repo, memCache, 5*time.Minute, zap.NewNop())

		otherTenant := uuid.New()
		repo.On("GetStats", ctx, tenantID, mock.AnythingOfType("time.Time")).Return(sampleStats(), nil).Once()
		repo.On("GetStats", ctx, otherTenant, mock.AnythingOfType("time.Time")).Return(&sales.Stats{TotalSales: 1}, nil).Once()

		first, err := service.GetStats(ctx, tenantID)
		require.NoError(t, err)
		second, err := service.GetStats(ctx, otherTenant)
		require.NoError(t, err)

		assert.Equal(t, int64(10), first.TotalSales)
		assert.Equal(t, int64(1), second.TotalSales)
	})

	t.Run("invalidation forces a recompute", func(t *testing.T) {
		repo := new(MockSaleRepository)
		memCache := cache.NewMemoryCache()
		service := NewReportService(repo, memCache, 5*time.Minute, zap.NewNop())

		repo.On("GetStats", ctx, tenantID, mock.AnythingOfType("time.Time")).Return(sampleStats(), nil)

		_, err := service.GetStats(ctx, tenantID)
		require.NoError(t, err)
		require.NoError(t, service.InvalidateStats(ctx, tenantID))
		_, err = service.GetStats(ctx, tenantID)
		require.NoError(t, err)

		repo.AssertNumberOfCalls(t, "GetStats", 2)
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		repo := new(MockSaleRepository)
		memCache := cache.NewMemoryCache()
		service := NewReportService(repo, memCache, 5*time.Minute, zap.NewNop())

		repoErr := errors.New("db down")
		repo.On("GetStats", ctx, tenantID, mock.AnythingOfType("time.Time")).Return(nil, repoErr)

		_, err := service.GetStats(ctx, tenantID)
		assert.ErrorIs(t, err, repoErr)
	})
}
