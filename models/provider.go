package models

import "time"

type ProviderType string

const (
	ProviderIndividual ProviderType = "individual"
	ProviderCompany    ProviderType = "company"
)

func (t ProviderType) Valid() bool {
	return t == ProviderIndividual || t == ProviderCompany
}

type DayHours struct {
	Open  string `json:"open,omitempty"`
	Close string `json:"close,omitempty"`
}

type BusinessHours struct {
	Monday    DayHours `json:"monday"`
	Tuesday   DayHours `json:"tuesday"`
	Wednesday DayHours `json:"wednesday"`
	Thursday  DayHours `json:"thursday"`
	Friday    DayHours `json:"friday"`
	Saturday  DayHours `json:"saturday"`
	Sunday    DayHours `json:"sunday"`
}

type BankDetails struct {
	AccountName   string `json:"account_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	BranchCode    string `json:"branch_code,omitempty"`
}

type Provider struct {
	UserID               uint                 `json:"id" gorm:"primaryKey;autoIncrement:false"`
	User                 User                 `json:"user" gorm:"foreignKey:UserID"`
	BusinessName         string               `json:"business_name" gorm:"uniqueIndex;not null"`
	Description          string               `json:"description" gorm:"size:500;not null"`
	Type                 ProviderType         `json:"type" gorm:"not null;default:'individual'"`
	Cuisine              StringList           `json:"cuisine" gorm:"serializer:json"`
	EstablishedDate      *time.Time           `json:"established_date,omitempty"`
	Rating               float64              `json:"rating" gorm:"default:0"`
	TotalReviews         int                  `json:"total_reviews" gorm:"default:0"`
	Reviews              []Review             `json:"reviews,omitempty" gorm:"foreignKey:ProviderID;references:UserID"`
	Menu                 []MenuItem           `json:"menu,omitempty" gorm:"foreignKey:ProviderID;references:UserID"`
	MealPlans            []MealPlan           `json:"meal_plans,omitempty" gorm:"foreignKey:ProviderID;references:UserID"`
	Subscribers          []ProviderSubscriber `json:"subscribers,omitempty" gorm:"foreignKey:ProviderID;references:UserID"`
	DeliveryAreas        StringList           `json:"delivery_areas" gorm:"serializer:json"`
	BusinessHours        BusinessHours        `json:"business_hours" gorm:"serializer:json"`
	BankDetails          BankDetails          `json:"bank_details,omitzero" gorm:"embedded;embeddedPrefix:bank_"`
	Verified             bool                 `json:"verified" gorm:"default:false"`
	ReadyForVerification bool                 `json:"ready_for_verification" gorm:"default:false"`
	IsActive             bool                 `json:"is_active" gorm:"not null"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// Redact strips fields that must not reach students.
func (p *Provider) Redact() {
	p.BankDetails = BankDetails{}
}

// Review is one student's rating of a provider. A student reviews a provider at most once.
type Review struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ProviderID uint      `json:"provider_id" gorm:"not null;uniqueIndex:idx_reviews_provider_student"`
	StudentID  uint      `json:"student_id" gorm:"not null;uniqueIndex:idx_reviews_provider_student"`
	Student    *User     `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Rating     int       `json:"rating" gorm:"not null"`
	Comment    string    `json:"comment"`
	Date       time.Time `json:"date"`
}

// ProviderSubscriber is the deduplicated provider -> student subscriber set.
type ProviderSubscriber struct {
	ProviderID uint      `json:"provider_id" gorm:"primaryKey;autoIncrement:false"`
	StudentID  uint      `json:"student_id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt  time.Time `json:"created_at"`
}

// AverageRating returns the mean of ratings, or 0 for none.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	total := 0
	for _, r := range ratings {
		total += r
	}
	return float64(total) / float64(len(ratings))
}
