package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentUPI    PaymentMethod = "upi"
	PaymentWallet PaymentMethod = "wallet"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentWallet:
		return true
	}
	return false
}

type PaymentDetails struct {
	TransactionID string     `json:"transaction_id,omitempty"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
}

type MealPreferences struct {
	Breakfast bool `json:"breakfast"`
	Lunch     bool `json:"lunch"`
	Dinner    bool `json:"dinner"`
}

type PreferredDeliveryTime struct {
	Breakfast string `json:"breakfast,omitempty"`
	Lunch     string `json:"lunch,omitempty"`
	Dinner    string `json:"dinner,omitempty"`
}

type Subscription struct {
	ID                    uint                  `json:"id" gorm:"primaryKey"`
	StudentID             uint                  `json:"student_id" gorm:"not null;index"`
	Student               *User                 `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	ProviderID            uint                  `json:"provider_id" gorm:"not null;index"`
	Provider              *Provider             `json:"provider,omitempty" gorm:"foreignKey:ProviderID;references:UserID"`
	MealPlanID            uint                  `json:"meal_plan_id" gorm:"not null"`
	MealPlan              *MealPlan             `json:"meal_plan,omitempty" gorm:"foreignKey:MealPlanID"`
	StartDate             time.Time             `json:"start_date" gorm:"not null"`
	EndDate               time.Time             `json:"end_date" gorm:"not null"`
	Status                SubscriptionStatus    `json:"status" gorm:"not null;default:'active';index"`
	TotalAmount           float64               `json:"total_amount" gorm:"not null"` // plan price when subscribed
	PaymentStatus         PaymentStatus         `json:"payment_status" gorm:"not null;default:'pending'"`
	PaymentMethod         PaymentMethod         `json:"payment_method"`
	PaymentDetails        PaymentDetails        `json:"payment_details" gorm:"serializer:json"`
	MealPreferences       MealPreferences       `json:"meal_preferences" gorm:"embedded;embeddedPrefix:meal_"`
	DeliveryAddress       string                `json:"delivery_address" gorm:"not null"`
	DeliveryInstructions  string                `json:"delivery_instructions"`
	PreferredDeliveryTime PreferredDeliveryTime `json:"preferred_delivery_time" gorm:"serializer:json"`
	SkippedDates          []time.Time           `json:"skipped_dates" gorm:"serializer:json"`
	Orders                []Order               `json:"orders,omitempty" gorm:"foreignKey:SubscriptionID"`
	RenewalReminder       bool                  `json:"renewal_reminder" gorm:"not null"`
	AutoRenew             bool                  `json:"auto_renew" gorm:"default:false"`
	DaysRemaining         int                   `json:"days_remaining" gorm:"-"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

// AfterFind refreshes the derived DaysRemaining.
func (s *Subscription) AfterFind(tx *gorm.DB) error {
	s.DaysRemaining = DaysRemaining(s.EndDate, time.Now())
	return nil
}

// DaysRemaining rounds the time left until end to whole days. Negative once past.
func DaysRemaining(end, now time.Time) int {
	return int(math.Round(end.Sub(now).Hours() / 24))
}

// SubscriptionEnd is start plus duration calendar days.
func SubscriptionEnd(start time.Time, durationDays int) time.Time {
	return start.AddDate(0, 0, durationDays)
}
