package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"student-mess-api/apperr"
	"student-mess-api/metrics"
	"student-mess-api/models"
	"student-mess-api/statemachine"
)

type OrderService struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewOrderService(db *gorm.DB, log *zap.Logger) *OrderService {
	return &OrderService{db: db, log: log, now: time.Now}
}

type OrderItemInput struct {
	MenuItemID uint `json:"menu_item_id" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required,min=1"`
}

type PlaceOrderInput struct {
	ProviderID            uint                 `json:"provider_id"`
	Items                 []OrderItemInput     `json:"items" binding:"omitempty,dive"`
	OrderType             models.OrderType     `json:"order_type" binding:"omitempty,enum"`
	SubscriptionID        *uint                `json:"subscription_id"`
	DeliveryAddress       string               `json:"delivery_address"`
	DeliveryInstructions  string               `json:"delivery_instructions"`
	PaymentMethod         models.PaymentMethod `json:"payment_method" binding:"omitempty,enum"`
	RequestedDeliveryTime *time.Time           `json:"requested_delivery_time"`
}

func (in *PlaceOrderInput) validate() error {
	if in.ProviderID == 0 || len(in.Items) == 0 || in.OrderType == "" || blank(in.DeliveryAddress) {
		return apperr.Validation("Please provide provider, items, order type and delivery address")
	}
	if !in.OrderType.Valid() {
		return apperr.Validation("Order type must be one of breakfast, lunch, dinner, snack")
	}
	if in.PaymentMethod != "" && !in.PaymentMethod.Valid() {
		return apperr.Validation("Payment method must be one of cash, card, upi, wallet")
	}
	for _, it := range in.Items {
		if it.MenuItemID == 0 || it.Quantity < 1 {
			return apperr.Validation("Each item needs a menu item and a quantity of at least 1")
		}
	}
	return nil
}

// PlaceOrder creates a pending order with price snapshots and its first history entry.
func (s *OrderService) PlaceOrder(ctx context.Context, studentID uint, in PlaceOrderInput) (*models.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var provider models.Provider
		if err := tx.Select("user_id", "is_active").First(&provider, "user_id = ?", in.ProviderID).Error; err != nil {
			return orNotFound(err, "Provider not found")
		}
		if !provider.IsActive {
			return apperr.Validation("Provider is not accepting orders")
		}

		order = models.Order{
			StudentID:             studentID,
			ProviderID:            in.ProviderID,
			OrderType:             in.OrderType,
			Status:                models.StatusPending,
			PaymentStatus:         models.PaymentPending,
			PaymentMethod:         in.PaymentMethod,
			DeliveryAddress:       in.DeliveryAddress,
			DeliveryInstructions:  in.DeliveryInstructions,
			RequestedDeliveryTime: in.RequestedDeliveryTime,
		}

		if in.SubscriptionID != nil {
			var sub models.Subscription
			if err := tx.First(&sub, *in.SubscriptionID).Error; err != nil {
				return orNotFound(err, "Subscription not found")
			}
			if sub.StudentID != studentID || sub.ProviderID != in.ProviderID {
				return apperr.Forbidden("Subscription does not belong to you or this provider")
			}
			if sub.Status != models.SubscriptionActive {
				return apperr.Validation("Subscription is not active")
			}
			order.SubscriptionOrder = true
			order.SubscriptionID = &sub.ID
			if order.PaymentMethod == "" {
				order.PaymentMethod = sub.PaymentMethod
			}
		}

		for _, req := range in.Items {
			var item models.MenuItem
			if err := tx.First(&item, req.MenuItemID).Error; err != nil {
				return orNotFound(err, "Menu item not found")
			}
			if item.ProviderID != in.ProviderID {
				return apperr.Validation("Menu item does not belong to this provider")
			}
			if !item.IsAvailable {
				return apperr.Validation("Menu item '" + item.Name + "' is not available")
			}
			order.TotalAmount += item.Price * float64(req.Quantity)
			order.Items = append(order.Items, models.OrderItem{
				MenuItemID: item.ID,
				Quantity:   req.Quantity,
				Price:      item.Price,
				Name:       item.Name,
			})
		}

		if err := tx.Omit("Student", "Provider", "StatusHistory").Create(&order).Error; err != nil {
			return err
		}
		entry := models.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    models.StatusPending,
			ChangedBy: studentID,
			Note:      "Order placed",
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		order.StatusHistory = []models.OrderStatusHistory{entry}
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap("Could not place order", err)
	}
	metrics.RecordStatusChange(string(models.StatusPending))
	return &order, nil
}

// transition moves order to status and appends one history entry, both in tx.
// The update is conditional on the status read earlier in tx.
func transition(tx *gorm.DB, order *models.Order, to models.OrderStatus, changedBy uint, note string, now time.Time) error {
	from := order.Status
	updates := map[string]any{"status": to}
	if to == models.StatusDelivered {
		updates["actual_delivery_time"] = now
	}
	res := tx.Model(&models.Order{}).Where("id = ? AND status = ?", order.ID, from).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("Order status changed concurrently, please retry")
	}
	entry := models.OrderStatusHistory{
		OrderID:    order.ID,
		FromStatus: from,
		Status:     to,
		ChangedBy:  changedBy,
		Note:       note,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return err
	}
	order.Status = to
	if to == models.StatusDelivered {
		order.ActualDeliveryTime = &now
	}
	return nil
}

// UpdateOrderStatus lets the owning provider set any valid status. Setting the
// current status again is a no-op and records nothing.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, providerID, orderID uint, status models.OrderStatus, note string) (*models.Order, error) {
	if !statemachine.IsValid(status) {
		return nil, apperr.Validation("Invalid status")
	}

	var order models.Order
	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			return orNotFound(err, "Order not found")
		}
		if order.ProviderID != providerID {
			return apperr.Forbidden("Not authorized to update this order")
		}
		if order.Status == status {
			return nil
		}
		if err := statemachine.CanTransition(order.Status, status, statemachine.ActorProvider); err != nil {
			return apperr.Validation(err.Error())
		}
		if statemachine.IsRegression(order.Status, status) {
			s.log.Warn("order status moved backwards",
				zap.Uint("order_id", order.ID),
				zap.String("from", string(order.Status)),
				zap.String("to", string(status)))
		}
		changed = true
		return transition(tx, &order, status, providerID, note, s.now())
	})
	if err != nil {
		return nil, apperr.Wrap("Could not update order status", err)
	}
	if changed {
		metrics.RecordStatusChange(string(status))
	}
	if err := s.db.WithContext(ctx).Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&order, order.ID).Error; err != nil {
		return nil, apperr.Internal("Could not update order status", err)
	}
	return &order, nil
}

func (s *OrderService) studentOrder(tx *gorm.DB, studentID, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := tx.First(&order, orderID).Error; err != nil {
		return nil, orNotFound(err, "Order not found")
	}
	if order.StudentID != studentID {
		return nil, apperr.Forbidden("This order does not belong to you")
	}
	return &order, nil
}

// CancelOrder cancels a student's order while it is still pending or confirmed.
func (s *OrderService) CancelOrder(ctx context.Context, studentID, orderID uint) (*models.Order, error) {
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if order, err = s.studentOrder(tx, studentID, orderID); err != nil {
			return err
		}
		if err := statemachine.CanTransition(order.Status, models.StatusCancelled, statemachine.ActorStudent); err != nil {
			return apperr.Validation("Cannot cancel order: " + err.Error())
		}
		return transition(tx, order, models.StatusCancelled, studentID, "Order cancelled by student", s.now())
	})
	if err != nil {
		return nil, apperr.Wrap("Could not cancel order", err)
	}
	metrics.RecordStatusChange(string(models.StatusCancelled))
	return order, nil
}

// RateOrder stores the student's ratings for a delivered order. Orders are rated once.
func (s *OrderService) RateOrder(ctx context.Context, studentID, orderID uint, ratings models.OrderRatings, feedback string) (*models.Order, error) {
	for _, r := range []int{ratings.Food, ratings.Service, ratings.Packaging} {
		if !validRating(r) {
			return nil, apperr.Validation("Please provide food, service and packaging ratings between 1 and 5")
		}
	}
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if order, err = s.studentOrder(tx, studentID, orderID); err != nil {
			return err
		}
		if order.Status != models.StatusDelivered {
			return apperr.Validation("Only delivered orders can be rated")
		}
		if order.Ratings.Food != 0 {
			return apperr.Conflict("You have already rated this order")
		}
		order.Ratings = ratings
		order.Feedback = feedback
		return tx.Model(order).Updates(map[string]any{
			"rating_food":      ratings.Food,
			"rating_service":   ratings.Service,
			"rating_packaging": ratings.Packaging,
			"feedback":         feedback,
		}).Error
	})
	if err != nil {
		return nil, apperr.Wrap("Could not rate order", err)
	}
	return order, nil
}

// ListStudentOrders returns the student's orders newest first.
func (s *OrderService) ListStudentOrders(ctx context.Context, studentID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.studentOrders(ctx).
		Where("student_id = ?", studentID).
		Order("created_at desc").Order("id desc").
		Find(&orders).Error
	if err != nil {
		return nil, apperr.Internal("Could not fetch orders", err)
	}
	return orders, nil
}

// GetStudentOrder returns one of the student's orders with its status history.
func (s *OrderService) GetStudentOrder(ctx context.Context, studentID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.studentOrders(ctx).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&order, orderID).Error
	if err != nil {
		return nil, apperr.Wrap("Could not fetch order", orNotFound(err, "Order not found"))
	}
	if order.StudentID != studentID {
		return nil, apperr.Forbidden("This order does not belong to you")
	}
	return &order, nil
}

func (s *OrderService) studentOrders(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Provider", func(db *gorm.DB) *gorm.DB { return db.Select("user_id", "business_name") }).
		Preload("Provider.User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Preload("Items")
}
