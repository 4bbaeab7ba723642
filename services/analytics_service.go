package services

import (
	"context"
	"time"

	"github.com/kevinleven52/Ac.Connect/models"
	"github.com/kevinleven52/Ac.Connect/repository"
	"go.uber.org/zap"
)

// AnalyticsService aggregates read-only sales reporting over orders.
type AnalyticsService interface {
	Overview(ctx context.Context) (*models.AnalyticsOverview, *ServiceError)
	DailySales(ctx context.Context, start, end time.Time) ([]models.DailySales, *ServiceError)
}

type analyticsServiceImpl struct {
	users    repository.UserRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
	logger   *zap.Logger
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(users repository.UserRepository, products repository.ProductRepository, orders repository.OrderRepository, logger *zap.Logger) AnalyticsService {
	return &analyticsServiceImpl{users: users, products: products, orders: orders, logger: logger}
}

// Overview returns point-in-time counts plus order totals. An empty order
// collection reports zero sales and zero revenue.
func (s *analyticsServiceImpl) Overview(ctx context.Context) (*models.AnalyticsOverview, *ServiceError) {
	users, err := s.users.CountByRole(ctx, models.RoleCustomer)
	if err != nil {
		s.logger.Error("Failed to count customers", zap.Error(err))
		return nil, internal("Failed to load analytics")
	}

	products, err := s.products.Count(ctx)
	if err != nil {
		s.logger.Error("Failed to count products", zap.Error(err))
		return nil, internal("Failed to load analytics")
	}

	totalSales, totalRevenue, err := s.orders.Totals(ctx)
	if err != nil {
		s.logger.Error("Failed to aggregate order totals", zap.Error(err))
		return nil, internal("Failed to load analytics")
	}

	return &models.AnalyticsOverview{
		Users:        users,
		Products:     products,
		TotalSales:   totalSales,
		TotalRevenue: totalRevenue,
	}, nil
}

// DailySales returns exactly one entry per calendar day in [start, end],
// zero-filled for days with no orders.
func (s *analyticsServiceImpl) DailySales(ctx context.Context, start, end time.Time) ([]models.DailySales, *ServiceError) {
	byDay, err := s.orders.DailySales(ctx, start, end)
	if err != nil {
		s.logger.Error("Failed to aggregate daily sales", zap.Error(err))
		return nil, internal("Failed to load daily sales")
	}

	days := datesInRange(start, end)
	result := make([]models.DailySales, 0, len(days))
	for _, day := range days {
		if row, ok := byDay[day]; ok {
			result = append(result, row)
			continue
		}
		result = append(result, models.DailySales{Date: day})
	}
	return result, nil
}

// datesInRange walks from start to end inclusive, one entry per calendar
// day, each truncated to its date component.
func datesInRange(start, end time.Time) []string {
	var dates []string
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())

	for !day.After(last) {
		dates = append(dates, day.Format("2006-01-02"))
		day = day.AddDate(0, 0, 1)
	}
	return dates
}
