package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleStudent  UserRole = "student"
	RoleProvider UserRole = "provider"
	RoleUser     UserRole = "user"
)

// User is the base identity shared by every account kind.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Role         UserRole  `json:"role" gorm:"not null;default:'user'"`
	Bio          string    `json:"bio,omitempty" gorm:"size:1000"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DietaryFlags is shared by student preferences, meal plans and menu items.
type DietaryFlags struct {
	Vegetarian    bool `json:"vegetarian"`
	Vegan         bool `json:"vegan"`
	NonVegetarian bool `json:"non_vegetarian"`
}

// DefaultDietaryFlags matches a plan or item created without explicit flags.
func DefaultDietaryFlags() DietaryFlags {
	return DietaryFlags{NonVegetarian: true}
}

type StudentPreferences struct {
	Dietary       DietaryFlags `json:"dietary"`
	Allergies     []string     `json:"allergies"`
	FavoriteItems []string     `json:"favorite_items"`
}

type Student struct {
	UserID        uint                  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	User          User                  `json:"user" gorm:"foreignKey:UserID"`
	University    string                `json:"university" gorm:"not null"`
	Department    string                `json:"department" gorm:"not null"`
	RollNumber    string                `json:"roll_number" gorm:"not null"`
	Preferences   StudentPreferences    `json:"preferences" gorm:"serializer:json"`
	Subscriptions []StudentSubscription `json:"subscriptions,omitempty" gorm:"foreignKey:StudentID;references:UserID"`
	Orders        []Order               `json:"orders,omitempty" gorm:"foreignKey:StudentID;references:UserID"`
}

// StudentSubscription is the summary a student keeps of each subscription.
type StudentSubscription struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	StudentID       uint            `json:"student_id" gorm:"not null;index"`
	ProviderID      uint            `json:"provider_id" gorm:"not null"`
	PlanID          uint            `json:"plan_id" gorm:"not null"`
	SubscriptionID  uint            `json:"subscription_id" gorm:"not null;index"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	IsActive        bool            `json:"is_active"`
	MealPreferences MealPreferences `json:"meal_preferences" gorm:"embedded;embeddedPrefix:meal_"`
}
