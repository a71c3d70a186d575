package models

import "time"

type MenuCategory string

const (
	CategoryBreakfast MenuCategory = "breakfast"
	CategoryLunch     MenuCategory = "lunch"
	CategoryDinner    MenuCategory = "dinner"
	CategorySnack     MenuCategory = "snack"
	CategoryDessert   MenuCategory = "dessert"
	CategoryBeverage  MenuCategory = "beverage"
)

func (c MenuCategory) Valid() bool {
	switch c {
	case CategoryBreakfast, CategoryLunch, CategoryDinner, CategorySnack, CategoryDessert, CategoryBeverage:
		return true
	}
	return false
}

const DefaultMenuItemImage = "https://via.placeholder.com/300"

type NutritionalInfo struct {
	Calories float64 `json:"calories,omitempty"`
	Protein  float64 `json:"protein,omitempty"`
	Carbs    float64 `json:"carbs,omitempty"`
	Fat      float64 `json:"fat,omitempty"`
}

type MenuItemReview struct {
	StudentID uint      `json:"student_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Date      time.Time `json:"date"`
}

type MenuItem struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	ProviderID      uint             `json:"provider_id" gorm:"not null;index"`
	Name            string           `json:"name" gorm:"not null"`
	Description     string           `json:"description" gorm:"not null"`
	Category        MenuCategory     `json:"category" gorm:"not null"`
	Price           float64          `json:"price" gorm:"not null"`
	Image           string           `json:"image"`
	IsAvailable     bool             `json:"is_available" gorm:"not null"`
	Ingredients     StringList       `json:"ingredients" gorm:"serializer:json"`
	NutritionalInfo NutritionalInfo  `json:"nutritional_info" gorm:"serializer:json"`
	DietaryType     DietaryFlags     `json:"dietary_type" gorm:"embedded;embeddedPrefix:diet_"`
	Allergens       StringList       `json:"allergens" gorm:"serializer:json"`
	Rating          float64          `json:"rating" gorm:"default:0"`
	TotalReviews    int              `json:"total_reviews" gorm:"default:0"`
	Reviews         []MenuItemReview `json:"reviews,omitempty" gorm:"serializer:json"`
	PreparationTime int              `json:"preparation_time" gorm:"default:30"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type MealOption struct {
	Available bool   `json:"available"`
	Items     []uint `json:"items"`
}

type MealOptions struct {
	Breakfast MealOption `json:"breakfast"`
	Lunch     MealOption `json:"lunch"`
	Dinner    MealOption `json:"dinner"`
}

// DefaultMealOptions serves lunch and dinner only.
func DefaultMealOptions() MealOptions {
	return MealOptions{
		Breakfast: MealOption{Available: false, Items: []uint{}},
		Lunch:     MealOption{Available: true, Items: []uint{}},
		Dinner:    MealOption{Available: true, Items: []uint{}},
	}
}

type MealTime struct {
	Time string `json:"time"`
}

type DeliverySchedule struct {
	Breakfast MealTime `json:"breakfast"`
	Lunch     MealTime `json:"lunch"`
	Dinner    MealTime `json:"dinner"`
}

func DefaultDeliverySchedule() DeliverySchedule {
	return DeliverySchedule{
		Breakfast: MealTime{Time: "08:00 AM"},
		Lunch:     MealTime{Time: "12:30 PM"},
		Dinner:    MealTime{Time: "07:30 PM"},
	}
}

type DayMenu struct {
	Breakfast string `json:"breakfast,omitempty"`
	Lunch     string `json:"lunch,omitempty"`
	Dinner    string `json:"dinner,omitempty"`
}

type WeeklyMenu struct {
	Monday    DayMenu `json:"monday"`
	Tuesday   DayMenu `json:"tuesday"`
	Wednesday DayMenu `json:"wednesday"`
	Thursday  DayMenu `json:"thursday"`
	Friday    DayMenu `json:"friday"`
	Saturday  DayMenu `json:"saturday"`
	Sunday    DayMenu `json:"sunday"`
}

type MealPlan struct {
	ID               uint             `json:"id" gorm:"primaryKey"`
	ProviderID       uint             `json:"provider_id" gorm:"not null;index"`
	Name             string           `json:"name" gorm:"not null"`
	Description      string           `json:"description" gorm:"not null"`
	Price            float64          `json:"price" gorm:"not null"`
	Duration         int              `json:"duration" gorm:"not null"` // days
	MealOptions      MealOptions      `json:"meal_options" gorm:"serializer:json"`
	DietaryOptions   DietaryFlags     `json:"dietary_options" gorm:"embedded;embeddedPrefix:diet_"`
	IsActive         bool             `json:"is_active" gorm:"not null"`
	SubscriberIDs    []uint           `json:"subscribers" gorm:"serializer:json"`
	DeliverySchedule DeliverySchedule `json:"delivery_schedule" gorm:"serializer:json"`
	WeeklyMenu       WeeklyMenu       `json:"weekly_menu" gorm:"serializer:json"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// DefaultPreferences derives per-meal preferences from what the plan serves.
func (mp *MealPlan) DefaultPreferences() MealPreferences {
	return MealPreferences{
		Breakfast: mp.MealOptions.Breakfast.Available,
		Lunch:     mp.MealOptions.Lunch.Available,
		Dinner:    mp.MealOptions.Dinner.Available,
	}
}
