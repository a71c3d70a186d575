package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"student-mess-api/apperr"
	"student-mess-api/models"
)

type MealPlanInput struct {
	Name             string                   `json:"name"`
	Description      string                   `json:"description"`
	Price            *float64                 `json:"price" binding:"omitempty,gte=0"`
	Duration         *int                     `json:"duration" binding:"omitempty,min=1"`
	MealOptions      *models.MealOptions      `json:"meal_options"`
	DietaryOptions   *models.DietaryFlags     `json:"dietary_options"`
	DeliverySchedule *models.DeliverySchedule `json:"delivery_schedule"`
	WeeklyMenu       *models.WeeklyMenu       `json:"weekly_menu"`
	IsActive         *bool                    `json:"is_active"`
}

func (in *MealPlanInput) validate() error {
	if blank(in.Name) || blank(in.Description) || in.Price == nil || in.Duration == nil {
		return apperr.Validation("Please provide name, description, price and duration")
	}
	if *in.Price < 0 {
		return apperr.Validation("Price cannot be negative")
	}
	if *in.Duration < 1 {
		return apperr.Validation("Duration must be at least 1 day")
	}
	return nil
}

// CreateMealPlan validates in and stores a plan with defaults for omitted structures.
func (s *ProviderService) CreateMealPlan(ctx context.Context, providerID uint, in MealPlanInput) (*models.MealPlan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	plan := models.MealPlan{
		ProviderID:       providerID,
		Name:             strings.TrimSpace(in.Name),
		Description:      strings.TrimSpace(in.Description),
		Price:            *in.Price,
		Duration:         *in.Duration,
		MealOptions:      models.DefaultMealOptions(),
		DietaryOptions:   models.DefaultDietaryFlags(),
		DeliverySchedule: models.DefaultDeliverySchedule(),
		IsActive:         true,
		SubscriberIDs:    []uint{},
	}
	if in.MealOptions != nil {
		plan.MealOptions = *in.MealOptions
	}
	if in.DietaryOptions != nil {
		plan.DietaryOptions = *in.DietaryOptions
	}
	if in.DeliverySchedule != nil {
		plan.DeliverySchedule = *in.DeliverySchedule
	}
	if in.WeeklyMenu != nil {
		plan.WeeklyMenu = *in.WeeklyMenu
	}
	if in.IsActive != nil {
		plan.IsActive = *in.IsActive
	}

	if err := s.db.WithContext(ctx).Create(&plan).Error; err != nil {
		return nil, apperr.Internal("Could not create meal plan", err)
	}
	s.log.Debug("meal plan created", zap.Uint("provider_id", providerID), zap.Uint("plan_id", plan.ID))
	return &plan, nil
}

func (s *ProviderService) ListMealPlans(ctx context.Context, providerID uint) ([]models.MealPlan, error) {
	var plans []models.MealPlan
	if err := s.db.WithContext(ctx).Where("provider_id = ?", providerID).Order("id").Find(&plans).Error; err != nil {
		return nil, apperr.Internal("Could not fetch meal plans", err)
	}
	return plans, nil
}

type MenuItemInput struct {
	Name            string                  `json:"name"`
	Description     string                  `json:"description"`
	Category        models.MenuCategory     `json:"category" binding:"omitempty,enum"`
	Price           *float64                `json:"price" binding:"omitempty,gte=0"`
	Image           string                  `json:"image"`
	Ingredients     models.StringList       `json:"ingredients"`
	NutritionalInfo *models.NutritionalInfo `json:"nutritional_info"`
	DietaryType     *models.DietaryFlags    `json:"dietary_type"`
	Allergens       models.StringList       `json:"allergens"`
	PreparationTime int                     `json:"preparation_time" binding:"gte=0"`
	IsAvailable     *bool                   `json:"is_available"`
}

func (in *MenuItemInput) validate() error {
	if blank(in.Name) || blank(in.Description) || in.Category == "" || in.Price == nil {
		return apperr.Validation("Please provide name, description, category and price")
	}
	if !in.Category.Valid() {
		return apperr.Validation("Invalid menu category")
	}
	if *in.Price < 0 {
		return apperr.Validation("Price cannot be negative")
	}
	if in.PreparationTime < 0 {
		return apperr.Validation("Preparation time cannot be negative")
	}
	return nil
}

// DefaultPreparationTime is used when a menu item gives none, in minutes.
const DefaultPreparationTime = 30

func (s *ProviderService) CreateMenuItem(ctx context.Context, providerID uint, in MenuItemInput) (*models.MenuItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	item := models.MenuItem{
		ProviderID:      providerID,
		Name:            strings.TrimSpace(in.Name),
		Description:     strings.TrimSpace(in.Description),
		Category:        in.Category,
		Price:           *in.Price,
		Image:           in.Image,
		IsAvailable:     true,
		Ingredients:     in.Ingredients,
		DietaryType:     models.DefaultDietaryFlags(),
		Allergens:       in.Allergens,
		PreparationTime: in.PreparationTime,
		Reviews:         []models.MenuItemReview{},
	}
	if item.Image == "" {
		item.Image = models.DefaultMenuItemImage
	}
	if item.Ingredients == nil {
		item.Ingredients = models.StringList{}
	}
	if item.Allergens == nil {
		item.Allergens = models.StringList{}
	}
	if in.NutritionalInfo != nil {
		item.NutritionalInfo = *in.NutritionalInfo
	}
	if in.DietaryType != nil {
		item.DietaryType = *in.DietaryType
	}
	if item.PreparationTime == 0 {
		item.PreparationTime = DefaultPreparationTime
	}
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}

	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, apperr.Internal("Could not create menu item", err)
	}
	return &item, nil
}

func (s *ProviderService) ListMenuItems(ctx context.Context, providerID uint) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := s.db.WithContext(ctx).Where("provider_id = ?", providerID).Order("id").Find(&items).Error; err != nil {
		return nil, apperr.Internal("Could not fetch menu items", err)
	}
	return items, nil
}

func (s *ProviderService) ownedMenuItem(ctx context.Context, providerID, itemID uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.WithContext(ctx).First(&item, itemID).Error; err != nil {
		return nil, apperr.Wrap("Could not fetch menu item", orNotFound(err, "Menu item not found"))
	}
	if item.ProviderID != providerID {
		return nil, apperr.Forbidden("You don't own this menu item")
	}
	return &item, nil
}

// SetMenuItemAvailability toggles whether an item can be ordered.
func (s *ProviderService) SetMenuItemAvailability(ctx context.Context, providerID, itemID uint, available bool) (*models.MenuItem, error) {
	item, err := s.ownedMenuItem(ctx, providerID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(item).Update("is_available", available).Error; err != nil {
		return nil, apperr.Internal("Could not update menu item", err)
	}
	item.IsAvailable = available
	return item, nil
}

// DeleteMenuItem removes an item. A provider already queued for verification stays queued.
func (s *ProviderService) DeleteMenuItem(ctx context.Context, providerID, itemID uint) error {
	item, err := s.ownedMenuItem(ctx, providerID, itemID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(item).Error; err != nil {
		return apperr.Internal("Could not delete menu item", err)
	}
	return nil
}
