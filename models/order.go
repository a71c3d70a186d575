package models

import "time"

// OrderStatus represents all possible states of a meal order
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusReady          OrderStatus = "ready"
	StatusOutForDelivery OrderStatus = "out-for-delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

type OrderType string

const (
	OrderBreakfast OrderType = "breakfast"
	OrderLunch     OrderType = "lunch"
	OrderDinner    OrderType = "dinner"
	OrderSnack     OrderType = "snack"
)

func (t OrderType) Valid() bool {
	switch t {
	case OrderBreakfast, OrderLunch, OrderDinner, OrderSnack:
		return true
	}
	return false
}

// OrderRatings are given by the student after delivery. Zero means unrated.
type OrderRatings struct {
	Food      int `json:"food,omitempty"`
	Service   int `json:"service,omitempty"`
	Packaging int `json:"packaging,omitempty"`
}

type Order struct {
	ID                    uint                 `json:"id" gorm:"primaryKey"`
	StudentID             uint                 `json:"student_id" gorm:"not null;index"`
	Student               *User                `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	ProviderID            uint                 `json:"provider_id" gorm:"not null;index"`
	Provider              *Provider            `json:"provider,omitempty" gorm:"foreignKey:ProviderID;references:UserID"`
	Items                 []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	SubscriptionOrder     bool                 `json:"subscription_order"`
	SubscriptionID        *uint                `json:"subscription_id,omitempty" gorm:"index"`
	OrderType             OrderType            `json:"order_type" gorm:"not null"`
	Status                OrderStatus          `json:"status" gorm:"not null;default:'pending';index"`
	StatusHistory         []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	TotalAmount           float64              `json:"total_amount" gorm:"not null"`
	PaymentStatus         PaymentStatus        `json:"payment_status" gorm:"not null;default:'pending'"`
	PaymentMethod         PaymentMethod        `json:"payment_method"`
	PaymentDetails        PaymentDetails       `json:"payment_details" gorm:"serializer:json"`
	DeliveryAddress       string               `json:"delivery_address" gorm:"not null"`
	DeliveryInstructions  string               `json:"delivery_instructions"`
	RequestedDeliveryTime *time.Time           `json:"requested_delivery_time,omitempty"`
	ActualDeliveryTime    *time.Time           `json:"actual_delivery_time,omitempty"`
	Ratings               OrderRatings         `json:"ratings" gorm:"embedded;embeddedPrefix:rating_"`
	Feedback              string               `json:"feedback"`
	CreatedAt             time.Time            `json:"created_at"`
	UpdatedAt             time.Time            `json:"updated_at"`
}

type OrderItem struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	OrderID    uint      `json:"order_id" gorm:"not null;index"`
	MenuItemID uint      `json:"menu_item_id" gorm:"not null"`
	MenuItem   *MenuItem `json:"menu_item,omitempty" gorm:"foreignKey:MenuItemID"`
	Quantity   int       `json:"quantity" gorm:"not null"`
	Price      float64   `json:"price" gorm:"not null"` // snapshot price at time of order
	Name       string    `json:"name"`                  // snapshot name
}

// OrderStatusHistory is the append-only log of status changes.
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status,omitempty"`
	Status     OrderStatus `json:"status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"` // user ID who triggered the transition
	Note       string      `json:"note,omitempty"`
	Timestamp  time.Time   `json:"timestamp" gorm:"autoCreateTime"`
}
