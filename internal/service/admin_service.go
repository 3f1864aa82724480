package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/repository"
)

const (
	analyticsWindow  = 30 * 24 * time.Hour
	topVendorLimit   = 5
	recentOrderLimit = 5
)

// AdminService backs the platform dashboards
type AdminService struct {
	repos  *repository.Repositories
	now    func() time.Time
	logger *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(repos *repository.Repositories, logger *zap.Logger) *AdminService {
	return &AdminService{
		repos:  repos,
		now:    time.Now,
		logger: logger,
	}
}

// Stats returns the platform counters
func (s *AdminService) Stats(ctx context.Context) (*domain.PlatformStats, error) {
	return s.repos.Stats.Platform(ctx)
}

// Analytics compares the last 30 days with the 30 days before and ranks vendors
func (s *AdminService) Analytics(ctx context.Context) (*Analytics, error) {
	totals, err := s.repos.Stats.Platform(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	currentStart := now.Add(-analyticsWindow)
	previousStart := currentStart.Add(-analyticsWindow)

	current, err := s.repos.Stats.Period(ctx, currentStart, now)
	if err != nil {
		return nil, err
	}
	previous, err := s.repos.Stats.Period(ctx, previousStart, currentStart)
	if err != nil {
		return nil, err
	}

	top, err := s.repos.Stats.TopVendors(ctx, topVendorLimit)
	if err != nil {
		return nil, err
	}
	if top == nil {
		top = []*domain.TopVendor{}
	}

	return &Analytics{
		Totals: totals,
		Growth: Growth{
			CurrentOrders:   current.Orders,
			PreviousOrders:  previous.Orders,
			OrderGrowth:     growthPercent(decimal.NewFromInt(int64(current.Orders)), decimal.NewFromInt(int64(previous.Orders))),
			CurrentRevenue:  current.Revenue,
			PreviousRevenue: previous.Revenue,
			RevenueGrowth:   growthPercent(current.Revenue, previous.Revenue),
		},
		TopVendors: top,
	}, nil
}

// RecentOrders returns the latest orders for the activity feed
func (s *AdminService) RecentOrders(ctx context.Context) ([]*domain.RecentOrder, error) {
	orders, err := s.repos.Order.ListRecent(ctx, recentOrderLimit)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []*domain.RecentOrder{}
	}
	return orders, nil
}

// growthPercent is the rounded percentage change; from zero it is 100 when anything happened
func growthPercent(current, previous decimal.Decimal) int {
	if previous.IsZero() {
		if current.IsPositive() {
			return 100
		}
		return 0
	}
	pct := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}
