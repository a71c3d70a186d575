package services

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"student-mess-api/apperr"
	"student-mess-api/metrics"
	"student-mess-api/models"
	"student-mess-api/statemachine"
)

//go:generate mockgen -source=stats.go -destination=stats_mock_test.go -package=services

// StatsSource answers the aggregate queries behind the provider dashboard.
// An empty status or nil status list means all.
type StatsSource interface {
	CountSubscriptions(ctx context.Context, providerID uint, status models.SubscriptionStatus) (int64, error)
	SumSubscriptionAmounts(ctx context.Context, providerID uint) (float64, error)
	CountOrders(ctx context.Context, providerID uint, statuses []models.OrderStatus) (int64, error)
	SumOrderAmounts(ctx context.Context, providerID uint) (float64, error)
	CountMenuItems(ctx context.Context, providerID uint) (int64, error)
	CountMealPlans(ctx context.Context, providerID uint) (int64, error)
}

type ProviderStats struct {
	Revenue             float64 `json:"revenue"`
	SubscriptionRevenue float64 `json:"subscription_revenue"`
	OrderRevenue        float64 `json:"order_revenue"`
	TotalSubscribers    int64   `json:"total_subscribers"`
	ActiveSubscribers   int64   `json:"active_subscribers"`
	TotalOrders         int64   `json:"total_orders"`
	PendingOrders       int64   `json:"pending_orders"`
	Rating              float64 `json:"rating"`
	TotalReviews        int     `json:"total_reviews"`
	TotalMenuItems      int64   `json:"total_menu_items"`
	TotalMealPlans      int64   `json:"total_meal_plans"`
}

// ComputeStats fills every aggregate it can. A failing aggregate is logged and
// left at zero; ComputeStats itself never fails.
func ComputeStats(ctx context.Context, src StatsSource, p *models.Provider, log *zap.Logger) ProviderStats {
	st := ProviderStats{Rating: p.Rating, TotalReviews: p.TotalReviews}
	id := p.UserID

	isolate := func(name string, fn func() error) {
		if err := fn(); err != nil {
			log.Warn("provider stats aggregate failed",
				zap.String("aggregate", name), zap.Uint("provider_id", id), zap.Error(err))
			metrics.RecordAggregateFailure(name)
		}
	}

	isolate("total_subscribers", func() (err error) {
		st.TotalSubscribers, err = src.CountSubscriptions(ctx, id, "")
		return
	})
	isolate("active_subscribers", func() (err error) {
		st.ActiveSubscribers, err = src.CountSubscriptions(ctx, id, models.SubscriptionActive)
		return
	})
	isolate("subscription_revenue", func() (err error) {
		st.SubscriptionRevenue, err = src.SumSubscriptionAmounts(ctx, id)
		return
	})
	isolate("total_orders", func() (err error) {
		st.TotalOrders, err = src.CountOrders(ctx, id, nil)
		return
	})
	isolate("pending_orders", func() (err error) {
		st.PendingOrders, err = src.CountOrders(ctx, id, statemachine.PendingLike())
		return
	})
	isolate("order_revenue", func() (err error) {
		st.OrderRevenue, err = src.SumOrderAmounts(ctx, id)
		return
	})
	isolate("menu_items", func() (err error) {
		st.TotalMenuItems, err = src.CountMenuItems(ctx, id)
		return
	})
	isolate("meal_plans", func() (err error) {
		st.TotalMealPlans, err = src.CountMealPlans(ctx, id)
		return
	})

	st.Revenue = st.SubscriptionRevenue + st.OrderRevenue
	return st
}

// Stats loads the provider and computes its dashboard aggregates.
func (s *ProviderService) Stats(ctx context.Context, providerID uint) (*ProviderStats, error) {
	var p models.Provider
	if err := s.db.WithContext(ctx).First(&p, "user_id = ?", providerID).Error; err != nil {
		return nil, apperr.Wrap("Could not fetch provider statistics", orNotFound(err, "Provider not found"))
	}
	st := ComputeStats(ctx, s.stats, &p, s.log)
	return &st, nil
}

// GormStats is the StatsSource backed by the relational store.
type GormStats struct {
	db *gorm.DB
}

func NewGormStats(db *gorm.DB) *GormStats {
	return &GormStats{db: db}
}

func (g *GormStats) CountSubscriptions(ctx context.Context, providerID uint, status models.SubscriptionStatus) (int64, error) {
	q := g.db.WithContext(ctx).Model(&models.Subscription{}).Where("provider_id = ?", providerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (g *GormStats) SumSubscriptionAmounts(ctx context.Context, providerID uint) (float64, error) {
	return g.sum(ctx, &models.Subscription{}, providerID)
}

func (g *GormStats) CountOrders(ctx context.Context, providerID uint, statuses []models.OrderStatus) (int64, error) {
	q := g.db.WithContext(ctx).Model(&models.Order{}).Where("provider_id = ?", providerID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (g *GormStats) SumOrderAmounts(ctx context.Context, providerID uint) (float64, error) {
	return g.sum(ctx, &models.Order{}, providerID)
}

func (g *GormStats) CountMenuItems(ctx context.Context, providerID uint) (int64, error) {
	var n int64
	err := g.db.WithContext(ctx).Model(&models.MenuItem{}).Where("provider_id = ?", providerID).Count(&n).Error
	return n, err
}

func (g *GormStats) CountMealPlans(ctx context.Context, providerID uint) (int64, error) {
	var n int64
	err := g.db.WithContext(ctx).Model(&models.MealPlan{}).Where("provider_id = ?", providerID).Count(&n).Error
	return n, err
}

func (g *GormStats) sum(ctx context.Context, model any, providerID uint) (float64, error) {
	var total float64
	err := g.db.WithContext(ctx).Model(model).
		Where("provider_id = ?", providerID).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&total).Error
	return total, err
}
