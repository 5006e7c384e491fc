package service

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/ratelink/ratelink/internal/api/dto"
	"github.com/ratelink/ratelink/internal/domain/activity"
	"github.com/ratelink/ratelink/internal/domain/business"
	"github.com/ratelink/ratelink/internal/types"
)

// MetricsService is a pure read model over businesses and the activity
// log. Nothing is cached; every call recomputes from the store.
type MetricsService interface {
	GetMetrics(ctx context.Context) (*dto.MetricsResponse, error)
}

type metricsService struct {
	ServiceParams
}

func NewMetricsService(params ServiceParams) MetricsService {
	return &metricsService{ServiceParams: params}
}

func (s *metricsService) GetMetrics(ctx context.Context) (*dto.MetricsResponse, error) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	mrr, err := s.computeMRR(ctx, monthStart)
	if err != nil {
		return nil, err
	}

	total, err := s.BusinessRepo.Count(ctx, &business.Filter{})
	if err != nil {
		return nil, err
	}

	active, err := s.BusinessRepo.Count(ctx, &business.Filter{
		Active: lo.ToPtr(true),
	})
	if err != nil {
		return nil, err
	}

	newThisMonth, err := s.BusinessRepo.Count(ctx, &business.Filter{
		CreatedAfter: &monthStart,
	})
	if err != nil {
		return nil, err
	}

	cancellations, err := s.BusinessRepo.Count(ctx, &business.Filter{
		PausedAfter: &monthStart,
	})
	if err != nil {
		return nil, err
	}

	return &dto.MetricsResponse{
		MRR:                mrr,
		TotalBusinesses:    total,
		ActiveBusinesses:   active,
		NewThisMonth:       newThisMonth,
		CancellationsCount: cancellations,
	}, nil
}

// computeMRR sums invoice_paid entries since the start of the current
// month and converts minor units to major units.
func (s *metricsService) computeMRR(ctx context.Context, monthStart time.Time) (decimal.Decimal, error) {
	entries, err := s.ActivityRepo.List(ctx, &activity.Filter{
		Types: []types.ActivityType{types.ActivityInvoicePaid},
		Since: &monthStart,
	})
	if err != nil {
		return decimal.Zero, err
	}

	totalMinor := int64(0)
	for _, e := range entries {
		if e.Amount != nil {
			totalMinor += *e.Amount
		}
	}

	return decimal.NewFromInt(totalMinor).Div(decimal.NewFromInt(100)), nil
}
