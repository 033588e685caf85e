package service

import (
	"context"
	"log/slog"

	"github.com/kirillov6/marketplace-service/internal/entities"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type AnalyticsRepo interface {
	CountOrders(ctx context.Context) (int, error)
	CountOrdersByStatus(ctx context.Context, status entities.OrderStatus) (int, error)
	TotalSales(ctx context.Context) (decimal.Decimal, error)
	SalesBySeller(ctx context.Context) ([]entities.SellerSales, error)
}

type analyticsService struct {
	logger *slog.Logger
	repo   AnalyticsRepo
}

func NewAnalyticsService(logger *slog.Logger, repo AnalyticsRepo) *analyticsService {
	return &analyticsService{
		logger: logger.With(slog.String("service", "analytics")),
		repo:   repo,
	}
}

// GetSummary fans the independent aggregations out concurrently.
func (s *analyticsService) GetSummary(ctx context.Context) (entities.AnalyticsSummary, error) {
	var summary entities.AnalyticsSummary

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		summary.TotalOrders, err = s.repo.CountOrders(ctx)
		return err
	})
	eg.Go(func() error {
		var err error
		summary.CompletedOrders, err = s.repo.CountOrdersByStatus(ctx, entities.OrderDelivered)
		return err
	})
	eg.Go(func() error {
		var err error
		summary.TotalSales, err = s.repo.TotalSales(ctx)
		return err
	})
	eg.Go(func() error {
		var err error
		summary.SalesBySeller, err = s.repo.SalesBySeller(ctx)
		return err
	})

	if err := eg.Wait(); err != nil {
		return entities.AnalyticsSummary{}, err
	}
	return summary, nil
}
