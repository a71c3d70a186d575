package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"student-mess-api/apperr"
	"student-mess-api/cache"
	"student-mess-api/metrics"
	"student-mess-api/models"
)

// Verification thresholds.
const (
	MinMenuItemsForVerification = 5
	MinMealPlansForVerification = 1
)

const activeProvidersKey = "providers:active"

type ProviderService struct {
	db    *gorm.DB
	cache cache.Store
	ttl   time.Duration
	stats StatsSource
	log   *zap.Logger
}

func NewProviderService(db *gorm.DB, store cache.Store, ttl time.Duration, log *zap.Logger) *ProviderService {
	if store == nil {
		store = cache.Noop{}
	}
	return &ProviderService{db: db, cache: store, ttl: ttl, stats: NewGormStats(db), log: log}
}

// ProfileUpdate holds the fields a provider may change. Nil or blank values leave
// the stored value alone.
type ProfileUpdate struct {
	Name            *string                           `json:"name"`
	Phone           *string                           `json:"phone"`
	Address         *string                           `json:"address"`
	Bio             *string                           `json:"bio"`
	BusinessName    *string                           `json:"business_name"`
	Description     *string                           `json:"description"`
	Type            *models.ProviderType              `json:"type"`
	Cuisine         *models.StringList                `json:"cuisine"`
	DeliveryAreas   *models.StringList                `json:"delivery_areas"`
	EstablishedDate *time.Time                        `json:"established_date"`
	BusinessHours   models.Flex[models.BusinessHours] `json:"business_hours"`
	BankDetails     models.Flex[models.BankDetails]   `json:"bank_details"`
}

// applyBase copies the fields common to every role.
func (u *ProfileUpdate) applyBase(user *models.User) {
	setString(&user.Name, u.Name)
	setString(&user.Phone, u.Phone)
	setString(&user.Address, u.Address)
	setString(&user.Bio, u.Bio)
}

func (u *ProfileUpdate) applyProvider(p *models.Provider) {
	u.applyBase(&p.User)
	setString(&p.BusinessName, u.BusinessName)
	setString(&p.Description, u.Description)
	if u.Type != nil && *u.Type != "" {
		p.Type = *u.Type
	}
	if u.Cuisine != nil {
		p.Cuisine = *u.Cuisine
	}
	if u.DeliveryAreas != nil {
		p.DeliveryAreas = *u.DeliveryAreas
	}
	if u.EstablishedDate != nil {
		p.EstablishedDate = u.EstablishedDate
	}
	if u.BusinessHours.Set {
		p.BusinessHours = u.BusinessHours.Value
	}
	if u.BankDetails.Set {
		p.BankDetails = u.BankDetails.Value
	}
}

// EvaluateReadiness reports whether an unverified provider has a complete profile
// and enough content to be queued for verification.
func EvaluateReadiness(p *models.Provider, menuCount, planCount int64) bool {
	if p.Verified {
		return false
	}
	for _, s := range []string{
		p.User.Name,
		p.User.Phone,
		p.User.Address,
		p.BusinessName,
		p.Description,
		p.BankDetails.AccountNumber,
	} {
		if blank(s) {
			return false
		}
	}
	return menuCount >= MinMenuItemsForVerification && planCount >= MinMealPlansForVerification
}

// UpdateProfile applies upd and raises ReadyForVerification once the provider
// qualifies. The flag is never lowered here.
func (s *ProviderService) UpdateProfile(ctx context.Context, providerID uint, upd ProfileUpdate) (*models.Provider, error) {
	if upd.Type != nil && *upd.Type != "" && !upd.Type.Valid() {
		return nil, apperr.Validation("Provider type must be individual or company")
	}

	var p models.Provider
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").First(&p, "user_id = ?", providerID).Error; err != nil {
			return orNotFound(err, "Provider not found")
		}

		if upd.BusinessName != nil && !blank(*upd.BusinessName) {
			var taken int64
			err := tx.Model(&models.Provider{}).
				Where("business_name = ? AND user_id <> ?", *upd.BusinessName, providerID).
				Count(&taken).Error
			if err != nil {
				return err
			}
			if taken > 0 {
				return apperr.Conflict("Business name already registered")
			}
		}

		upd.applyProvider(&p)
		if err := tx.Save(&p.User).Error; err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(&p).Error; err != nil {
			if models.IsDuplicate(err) {
				return apperr.Conflict("Business name already registered")
			}
			return err
		}

		if p.Verified || p.ReadyForVerification {
			return nil
		}
		menuCount, planCount, err := contentCounts(tx, providerID)
		if err != nil {
			return err
		}
		if EvaluateReadiness(&p, menuCount, planCount) {
			p.ReadyForVerification = true
			return tx.Model(&models.Provider{}).
				Where("user_id = ?", providerID).
				Update("ready_for_verification", true).Error
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap("Could not update profile", err)
	}

	if p.ReadyForVerification {
		s.log.Info("provider ready for verification", zap.Uint("provider_id", providerID))
	}
	s.invalidate(ctx)
	return &p, nil
}

func contentCounts(tx *gorm.DB, providerID uint) (menuCount, planCount int64, err error) {
	if err = tx.Model(&models.MenuItem{}).Where("provider_id = ?", providerID).Count(&menuCount).Error; err != nil {
		return
	}
	err = tx.Model(&models.MealPlan{}).Where("provider_id = ?", providerID).Count(&planCount).Error
	return
}

// VerifyProvider marks a provider verified and clears the pending flag.
func (s *ProviderService) VerifyProvider(ctx context.Context, providerID uint) (*models.Provider, error) {
	res := s.db.WithContext(ctx).Model(&models.Provider{}).
		Where("user_id = ?", providerID).
		Updates(map[string]any{"verified": true, "ready_for_verification": false})
	if res.Error != nil {
		return nil, apperr.Internal("Could not verify provider", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("Provider not found")
	}

	var p models.Provider
	if err := s.db.WithContext(ctx).Preload("User").First(&p, "user_id = ?", providerID).Error; err != nil {
		return nil, apperr.Internal("Could not verify provider", err)
	}
	s.log.Info("provider verified", zap.Uint("provider_id", providerID), zap.String("business_name", p.BusinessName))
	s.invalidate(ctx)
	return &p, nil
}

// ReviewSummary is a review as shown in the provider listing.
type ReviewSummary struct {
	Rating  int       `json:"rating"`
	Comment string    `json:"comment"`
	Date    time.Time `json:"date"`
}

// ProviderSummary is one row of the student-facing provider listing.
type ProviderSummary struct {
	ID            uint              `json:"id"`
	Name          string            `json:"name"`
	BusinessName  string            `json:"business_name"`
	Description   string            `json:"description"`
	Cuisine       models.StringList `json:"cuisine"`
	Rating        float64           `json:"rating"`
	TotalReviews  int               `json:"total_reviews"`
	DeliveryAreas models.StringList `json:"delivery_areas"`
	Verified      bool              `json:"verified"`
	Reviews       []ReviewSummary   `json:"reviews"`
}

// RecentReviewsShown is how many reviews each listing row carries.
const RecentReviewsShown = 3

// ListActiveProviders returns active providers with their most recent reviews.
// Results are served from the cache when possible.
func (s *ProviderService) ListActiveProviders(ctx context.Context) ([]ProviderSummary, error) {
	out, err := cache.GetOrSet(ctx, s.cache, activeProvidersKey, s.ttl, func() ([]ProviderSummary, error) {
		return s.loadActiveProviders(ctx)
	})
	if err != nil {
		return nil, apperr.Internal("Could not fetch providers", err)
	}
	return out, nil
}

func (s *ProviderService) loadActiveProviders(ctx context.Context) ([]ProviderSummary, error) {
	db := s.db.WithContext(ctx)
	var providers []models.Provider
	if err := db.Preload("User").Where("is_active = ?", true).Order("user_id").Find(&providers).Error; err != nil {
		return nil, err
	}
	if len(providers) == 0 {
		return []ProviderSummary{}, nil
	}

	ids := make([]uint, len(providers))
	for i, p := range providers {
		ids[i] = p.UserID
	}
	var reviews []models.Review
	if err := db.Where("provider_id IN ?", ids).Order("date desc").Order("id desc").Find(&reviews).Error; err != nil {
		return nil, err
	}
	recent := make(map[uint][]ReviewSummary)
	for _, r := range reviews {
		if len(recent[r.ProviderID]) < RecentReviewsShown {
			recent[r.ProviderID] = append(recent[r.ProviderID], ReviewSummary{Rating: r.Rating, Comment: r.Comment, Date: r.Date})
		}
	}

	out := make([]ProviderSummary, 0, len(providers))
	for _, p := range providers {
		rs := recent[p.UserID]
		if rs == nil {
			rs = []ReviewSummary{}
		}
		out = append(out, ProviderSummary{
			ID:            p.UserID,
			Name:          p.User.Name,
			BusinessName:  p.BusinessName,
			Description:   p.Description,
			Cuisine:       p.Cuisine,
			Rating:        p.Rating,
			TotalReviews:  p.TotalReviews,
			DeliveryAreas: p.DeliveryAreas,
			Verified:      p.Verified,
			Reviews:       rs,
		})
	}
	return out, nil
}

// GetProviderDetails returns a provider with reviews, menu and meal plans.
// Bank details are stripped.
func (s *ProviderService) GetProviderDetails(ctx context.Context, providerID uint) (*models.Provider, error) {
	var p models.Provider
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("date desc") }).
		Preload("Reviews.Student", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Preload("Menu").
		Preload("MealPlans").
		First(&p, "user_id = ?", providerID).Error
	if err != nil {
		return nil, apperr.Wrap("Could not fetch provider details", orNotFound(err, "Provider not found"))
	}
	p.Redact()
	return &p, nil
}

// GetProvider loads the provider's own record.
func (s *ProviderService) GetProvider(ctx context.Context, providerID uint) (*models.Provider, error) {
	var p models.Provider
	if err := s.db.WithContext(ctx).Preload("User").First(&p, "user_id = ?", providerID).Error; err != nil {
		return nil, apperr.Wrap("Could not fetch provider", orNotFound(err, "Provider not found"))
	}
	return &p, nil
}

func (s *ProviderService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, activeProvidersKey); err != nil {
		s.log.Warn("provider cache invalidation failed", zap.Error(err))
	}
}

// ListSubscribers returns active subscriptions with the student's contact fields.
func (s *ProviderService) ListSubscribers(ctx context.Context, providerID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := s.db.WithContext(ctx).
		Preload("Student", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email", "phone", "address") }).
		Preload("MealPlan").
		Where("provider_id = ? AND status = ?", providerID, models.SubscriptionActive).
		Order("start_date").
		Find(&subs).Error
	if err != nil {
		return nil, apperr.Internal("Could not fetch subscribers", err)
	}
	return subs, nil
}

// ListOrders returns the provider's orders, newest first.
func (s *ProviderService) ListOrders(ctx context.Context, providerID uint, status models.OrderStatus) ([]models.Order, error) {
	q := s.db.WithContext(ctx).
		Preload("Student", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "phone", "address") }).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("provider_id = ?", providerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var orders []models.Order
	if err := q.Order("created_at desc").Order("id desc").Find(&orders).Error; err != nil {
		return nil, apperr.Internal("Could not fetch orders", err)
	}
	return orders, nil
}

// StatusSummary counts orders per status.
func StatusSummary(orders []models.Order) map[models.OrderStatus]int {
	summary := make(map[models.OrderStatus]int)
	for _, o := range orders {
		summary[o.Status]++
	}
	return summary
}

// ReviewResult is the provider aggregate after a review is accepted.
type ReviewResult struct {
	Review       models.Review `json:"review"`
	Rating       float64       `json:"rating"`
	TotalReviews int           `json:"total_reviews"`
}

// lockedProvider row-locks the provider for the rest of tx so concurrent reviews
// recompute the aggregates one after another. SQLite ignores the clause and
// serializes writers itself.
func lockedProvider(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
}

// AddReview records a student's review and recomputes the provider's aggregates
// from the reviews table in the same transaction.
func (s *ProviderService) AddReview(ctx context.Context, providerID, studentID uint, rating int, comment string) (*ReviewResult, error) {
	if !validRating(rating) {
		return nil, apperr.Validation("Please provide a valid rating between 1 and 5")
	}

	var res ReviewResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Provider
		if err := lockedProvider(tx).Select("user_id").First(&p, "user_id = ?", providerID).Error; err != nil {
			return orNotFound(err, "Provider not found")
		}
		ok, err := hasActiveSubscription(tx, studentID, providerID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Forbidden("You need an active subscription to review this provider")
		}

		res.Review = models.Review{
			ProviderID: providerID,
			StudentID:  studentID,
			Rating:     rating,
			Comment:    comment,
			Date:       time.Now(),
		}
		if err := tx.Create(&res.Review).Error; err != nil {
			if models.IsDuplicate(err) {
				return apperr.Conflict("You have already reviewed this provider")
			}
			return err
		}

		err = tx.Exec(`UPDATE providers SET
			total_reviews = (SELECT COUNT(*) FROM reviews WHERE provider_id = ?),
			rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE provider_id = ?), 0)
			WHERE user_id = ?`, providerID, providerID, providerID).Error
		if err != nil {
			return err
		}
		if err := tx.Select("rating", "total_reviews").First(&p, "user_id = ?", providerID).Error; err != nil {
			return err
		}
		res.Rating = p.Rating
		res.TotalReviews = p.TotalReviews
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap("Could not create review", err)
	}

	metrics.RecordReview("provider")
	s.invalidate(ctx)
	return &res, nil
}

// AddMenuItemReview appends a review to a menu item. The update is guarded by the
// review count read in the same transaction so a concurrent review is not lost.
func (s *ProviderService) AddMenuItemReview(ctx context.Context, itemID, studentID uint, rating int, comment string) (*models.MenuItem, error) {
	if !validRating(rating) {
		return nil, apperr.Validation("Please provide a valid rating between 1 and 5")
	}

	var item models.MenuItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, itemID).Error; err != nil {
			return orNotFound(err, "Menu item not found")
		}
		ok, err := hasActiveSubscription(tx, studentID, item.ProviderID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Forbidden("You need an active subscription to review this item")
		}
		for _, r := range item.Reviews {
			if r.StudentID == studentID {
				return apperr.Conflict("You have already reviewed this item")
			}
		}

		prev := item.TotalReviews
		item.Reviews = append(item.Reviews, models.MenuItemReview{
			StudentID: studentID,
			Rating:    rating,
			Comment:   comment,
			Date:      time.Now(),
		})
		ratings := make([]int, len(item.Reviews))
		for i, r := range item.Reviews {
			ratings[i] = r.Rating
		}
		item.Rating = models.AverageRating(ratings)
		item.TotalReviews = len(item.Reviews)

		upd := tx.Model(&models.MenuItem{}).
			Where("id = ? AND total_reviews = ?", item.ID, prev).
			Select("Reviews", "Rating", "TotalReviews").
			Updates(&models.MenuItem{Reviews: item.Reviews, Rating: item.Rating, TotalReviews: item.TotalReviews})
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return apperr.Conflict("Menu item was reviewed concurrently, please retry")
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap("Could not create review", err)
	}
	metrics.RecordReview("menu_item")
	return &item, nil
}

func hasActiveSubscription(tx *gorm.DB, studentID, providerID uint) (bool, error) {
	var n int64
	err := tx.Model(&models.Subscription{}).
		Where("student_id = ? AND provider_id = ? AND status = ?", studentID, providerID, models.SubscriptionActive).
		Count(&n).Error
	return n > 0, err
}
