package services

import (
	"context"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"student-mess-api/apperr"
	"student-mess-api/metrics"
	"student-mess-api/models"
)

type SubscriptionService struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewSubscriptionService(db *gorm.DB, log *zap.Logger) *SubscriptionService {
	return &SubscriptionService{db: db, log: log, now: time.Now}
}

type SubscribeInput struct {
	ProviderID            uint                          `json:"provider_id"`
	MealPlanID            uint                          `json:"meal_plan_id"`
	StartDate             string                        `json:"start_date"`
	DeliveryAddress       string                        `json:"delivery_address"`
	DeliveryInstructions  string                        `json:"delivery_instructions"`
	PaymentMethod         models.PaymentMethod          `json:"payment_method" binding:"omitempty,enum"`
	MealPreferences       *models.MealPreferences       `json:"meal_preferences"`
	PreferredDeliveryTime *models.PreferredDeliveryTime `json:"preferred_delivery_time"`
	AutoRenew             bool                          `json:"auto_renew"`
}

// ParseStartDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (UTC midnight).
func ParseStartDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, apperr.Validation("Invalid start date")
	}
	return t, nil
}

// Subscribe enrolls a student in a meal plan. The subscription and every cross
// reference (provider subscriber set, student summary, plan subscriber list) are
// written in one transaction.
func (s *SubscriptionService) Subscribe(ctx context.Context, studentID uint, in SubscribeInput) (*models.Subscription, error) {
	if in.ProviderID == 0 || in.MealPlanID == 0 || blank(in.StartDate) || blank(in.DeliveryAddress) || in.PaymentMethod == "" {
		return nil, apperr.Validation("Please provide all required fields")
	}
	if !in.PaymentMethod.Valid() {
		return nil, apperr.Validation("Payment method must be one of cash, card, upi, wallet")
	}
	start, err := ParseStartDate(in.StartDate)
	if err != nil {
		return nil, err
	}

	var sub models.Subscription
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var provider models.Provider
		if err := tx.Select("user_id", "is_active").First(&provider, "user_id = ?", in.ProviderID).Error; err != nil {
			return orNotFound(err, "Provider not found")
		}
		if !provider.IsActive {
			return apperr.Validation("Provider is not accepting subscriptions")
		}
		var plan models.MealPlan
		if err := tx.First(&plan, "id = ? AND provider_id = ?", in.MealPlanID, in.ProviderID).Error; err != nil {
			return orNotFound(err, "Meal plan not found")
		}

		prefs := plan.DefaultPreferences()
		if in.MealPreferences != nil {
			prefs = *in.MealPreferences
		}
		sub = models.Subscription{
			StudentID:            studentID,
			ProviderID:           in.ProviderID,
			MealPlanID:           plan.ID,
			StartDate:            start,
			EndDate:              models.SubscriptionEnd(start, plan.Duration),
			Status:               models.SubscriptionActive,
			TotalAmount:          plan.Price,
			PaymentStatus:        models.PaymentPending,
			PaymentMethod:        in.PaymentMethod,
			MealPreferences:      prefs,
			DeliveryAddress:      strings.TrimSpace(in.DeliveryAddress),
			DeliveryInstructions: in.DeliveryInstructions,
			SkippedDates:         []time.Time{},
			RenewalReminder:      true,
			AutoRenew:            in.AutoRenew,
		}
		if in.PreferredDeliveryTime != nil {
			sub.PreferredDeliveryTime = *in.PreferredDeliveryTime
		}
		if err := tx.Omit(clause.Associations).Create(&sub).Error; err != nil {
			return err
		}

		err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.ProviderSubscriber{ProviderID: in.ProviderID, StudentID: studentID}).Error
		if err != nil {
			return err
		}

		summary := models.StudentSubscription{
			StudentID:       studentID,
			ProviderID:      in.ProviderID,
			PlanID:          plan.ID,
			SubscriptionID:  sub.ID,
			StartDate:       sub.StartDate,
			EndDate:         sub.EndDate,
			IsActive:        true,
			MealPreferences: prefs,
		}
		if err := tx.Create(&summary).Error; err != nil {
			return err
		}

		if !slices.Contains(plan.SubscriberIDs, studentID) {
			plan.SubscriberIDs = append(plan.SubscriberIDs, studentID)
			if err := tx.Model(&plan).Select("SubscriberIDs").Updates(&plan).Error; err != nil {
				return err
			}
		}
		sub.MealPlan = &plan
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap("Could not create subscription", err)
	}

	sub.DaysRemaining = models.DaysRemaining(sub.EndDate, s.now())
	metrics.RecordSubscription()
	s.log.Info("subscription created",
		zap.Uint("subscription_id", sub.ID),
		zap.Uint("student_id", studentID),
		zap.Uint("provider_id", in.ProviderID),
		zap.Time("end_date", sub.EndDate))
	return &sub, nil
}

// ListSubscriptions returns a student's subscriptions with provider name and plan.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, studentID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := s.db.WithContext(ctx).
		Preload("Provider", func(db *gorm.DB) *gorm.DB { return db.Select("user_id", "business_name") }).
		Preload("Provider.User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Preload("MealPlan").
		Where("student_id = ?", studentID).
		Order("created_at desc").
		Find(&subs).Error
	if err != nil {
		return nil, apperr.Internal("Could not fetch subscriptions", err)
	}
	return subs, nil
}

// ExpireSubscriptions marks active subscriptions that ended before now as expired
// and deactivates the matching student summaries. It returns how many expired.
func (s *SubscriptionService) ExpireSubscriptions(ctx context.Context, now time.Time) (int, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Subscription{}).
			Where("status = ? AND end_date < ?", models.SubscriptionActive, now).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Model(&models.Subscription{}).
			Where("id IN ?", ids).
			Update("status", models.SubscriptionExpired).Error; err != nil {
			return err
		}
		return tx.Model(&models.StudentSubscription{}).
			Where("subscription_id IN ?", ids).
			Update("is_active", false).Error
	})
	if err != nil {
		return 0, apperr.Internal("Could not expire subscriptions", err)
	}
	metrics.RecordExpired(len(ids))
	if len(ids) > 0 {
		s.log.Info("subscriptions expired", zap.Int("count", len(ids)))
	}
	return len(ids), nil
}
