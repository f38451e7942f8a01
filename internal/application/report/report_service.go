package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/infrastructure/cache"
)

// ReportService serves aggregated sales reports. Results are cached
// per tenant for a short TTL since the dashboard polls them often.
type ReportService struct {
	saleRepo sales.SaleRepository
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(saleRepo sales.SaleRepository, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *ReportService {
	return &ReportService{
		saleRepo: saleRepo,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// GetStats returns the sales report for a tenant, from cache when fresh
func (s *ReportService) GetStats(ctx context.Context, tenantID uuid.UUID) (*sales.Stats, error) {
	key := statsCacheKey(tenantID)

	if cached, err := s.cache.Get(ctx, key); err != nil {
		// A broken cache must not take the report down
		s.logger.Warn("stats cache read failed", zap.Error(err))
	} else if cached != nil {
		var stats sales.Stats
		if err := json.Unmarshal(cached, &stats); err == nil {
			return &stats, nil
		}
		s.logger.Warn("discarding malformed cached stats", zap.String("key", key))
	}

	stats, err := s.saleRepo.GetStats(ctx, tenantID, time.Now())
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}

	return stats, nil
}

// InvalidateStats drops the cached report for a tenant
func (s *ReportService) InvalidateStats(ctx context.Context, tenantID uuid.UUID) error {
	return s.cache.Delete(ctx, statsCacheKey(tenantID))
}

func statsCacheKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("stats:%s", tenantID)
}
