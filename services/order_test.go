package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-mess-api/apperr"
	"student-mess-api/models"
	"student-mess-api/statemachine"
)

type orderFixture struct {
	*fixture
	owner *models.Provider
	buyer *models.Student
	items []models.MenuItem
}

func newOrderFixture(t *testing.T) *orderFixture {
	f := newFixture(t)
	p := f.provider("Orders")
	return &orderFixture{fixture: f, owner: p, buyer: f.student("Hungry"), items: f.menuItems(p.UserID, 3)}
}

func (f *orderFixture) place() *models.Order {
	o, err := f.orders.PlaceOrder(f.ctx, f.buyer.UserID, PlaceOrderInput{
		ProviderID:      f.owner.UserID,
		OrderType:       models.OrderLunch,
		DeliveryAddress: "Hostel 2",
		Items: []OrderItemInput{
			{MenuItemID: f.items[0].ID, Quantity: 2},
			{MenuItemID: f.items[1].ID, Quantity: 1},
		},
	})
	require.NoError(f.t, err)
	return o
}

func (f *orderFixture) history(orderID uint) []models.OrderStatusHistory {
	var h []models.OrderStatusHistory
	require.NoError(f.t, f.db.Where("order_id = ?", orderID).Order("id").Find(&h).Error)
	return h
}

func (f *orderFixture) status(orderID uint) models.OrderStatus {
	var o models.Order
	require.NoError(f.t, f.db.First(&o, orderID).Error)
	return o.Status
}

func TestPlaceOrderSnapshotsPrices(t *testing.T) {
	f := newOrderFixture(t)
	o := f.place()

	assert.Equal(t, models.StatusPending, o.Status)
	assert.InDelta(t, 2*50.0+60.0, o.TotalAmount, 1e-9)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Dish 1", o.Items[0].Name)

	require.NoError(t, f.db.Model(&models.MenuItem{}).Where("id = ?", f.items[0].ID).Update("price", 500).Error)
	var stored models.Order
	require.NoError(t, f.db.Preload("Items").First(&stored, o.ID).Error)
	assert.InDelta(t, 160.0, stored.TotalAmount, 1e-9)
	assert.InDelta(t, 50.0, stored.Items[0].Price, 1e-9)

	h := f.history(o.ID)
	require.Len(t, h, 1)
	assert.Equal(t, models.StatusPending, h[0].Status)
	assert.Equal(t, f.buyer.UserID, h[0].ChangedBy)
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newOrderFixture(t)
	other := f.provider("Elsewhere")
	foreign := f.menuItems(other.UserID, 1)[0]
	_, err := f.providers.SetMenuItemAvailability(f.ctx, f.owner.UserID, f.items[2].ID, false)
	require.NoError(t, err)

	base := PlaceOrderInput{ProviderID: f.owner.UserID, OrderType: models.OrderLunch, DeliveryAddress: "Hostel"}
	cases := map[string]struct {
		mutate func(in *PlaceOrderInput)
		kind   apperr.Kind
	}{
		"no items":       {func(in *PlaceOrderInput) {}, apperr.KindValidation},
		"zero quantity":  {func(in *PlaceOrderInput) { in.Items = []OrderItemInput{{MenuItemID: f.items[0].ID}} }, apperr.KindValidation},
		"bad order type": {func(in *PlaceOrderInput) { in.OrderType = "brunch"; in.Items = []OrderItemInput{{f.items[0].ID, 1}} }, apperr.KindValidation},
		"foreign item":   {func(in *PlaceOrderInput) { in.Items = []OrderItemInput{{foreign.ID, 1}} }, apperr.KindValidation},
		"unavailable":    {func(in *PlaceOrderInput) { in.Items = []OrderItemInput{{f.items[2].ID, 1}} }, apperr.KindValidation},
		"unknown item":   {func(in *PlaceOrderInput) { in.Items = []OrderItemInput{{9999, 1}} }, apperr.KindNotFound},
		"unknown provider": {func(in *PlaceOrderInput) {
			in.ProviderID = 9999
			in.Items = []OrderItemInput{{f.items[0].ID, 1}}
		}, apperr.KindNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			_, err := f.orders.PlaceOrder(f.ctx, f.buyer.UserID, in)
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPlaceOrderAgainstSubscription(t *testing.T) {
	f := newOrderFixture(t)
	plan := f.mealPlan(f.owner.UserID, 100, 30)
	sub := f.subscribe(f.buyer.UserID, f.owner.UserID, plan.ID, "2030-01-01")

	o, err := f.orders.PlaceOrder(f.ctx, f.buyer.UserID, PlaceOrderInput{
		ProviderID: f.owner.UserID, OrderType: models.OrderDinner, DeliveryAddress: "Hostel",
		SubscriptionID: &sub.ID, Items: []OrderItemInput{{f.items[0].ID, 1}},
	})
	require.NoError(t, err)
	assert.True(t, o.SubscriptionOrder)
	assert.Equal(t, models.PaymentUPI, o.PaymentMethod)

	var withOrders models.Subscription
	require.NoError(t, f.db.Preload("Orders").First(&withOrders, sub.ID).Error)
	require.Len(t, withOrders.Orders, 1)
	assert.Equal(t, o.ID, withOrders.Orders[0].ID)

	stranger := f.student("Stranger")
	_, err = f.orders.PlaceOrder(f.ctx, stranger.UserID, PlaceOrderInput{
		ProviderID: f.owner.UserID, OrderType: models.OrderDinner, DeliveryAddress: "Hostel",
		SubscriptionID: &sub.ID, Items: []OrderItemInput{{f.items[0].ID, 1}},
	})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestUpdateOrderStatusRejectsUnknownValues(t *testing.T) {
	f := newOrderFixture(t)
	o := f.place()

	for _, s := range []models.OrderStatus{"", "shipped", "PENDING", "ready_for_pickup", "out_for_delivery"} {
		_, err := f.orders.UpdateOrderStatus(f.ctx, f.owner.UserID, o.ID, s, "")
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "status %q", s)
		assert.Equal(t, "Invalid status", apperr.Message(err))
	}
	assert.Equal(t, models.StatusPending, f.status(o.ID))
	assert.Len(t, f.history(o.ID), 1)

	// status is checked before the order is looked up
	_, err := f.orders.UpdateOrderStatus(f.ctx, f.owner.UserID, 9999, "bogus", "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestUpdateOrderStatusIsPermissive(t *testing.T) {
	f := newOrderFixture(t)
	o := f.place()

	path := []models.OrderStatus{
		models.StatusDelivered,
		models.StatusPreparing,
		models.StatusCancelled,
		models.StatusPending,
		models.StatusOutForDelivery,
	}
	for _, s := range path {
		updated, err := f.orders.UpdateOrderStatus(f.ctx, f.owner.UserID, o.ID, s, "")
		require.NoError(t, err)
		assert.Equal(t, s, updated.Status)
	}

	h := f.history(o.ID)
	require.Len(t, h, 1+len(path))
	prev := models.StatusPending
	for i, s := range path {
		assert.Equal(t, prev, h[i+1].FromStatus)
		assert.Equal(t, s, h[i+1].Status)
		prev = s
	}
}

func TestUpdateOrderStatusSameValueIsNotLogged(t *testing.T) {
	f := newOrderFixture(t)
	o := f.place()

	_, err := f.orders.UpdateOrderStatus(f.ctx, f.owner.UserID, o.ID, models.StatusConfirmed, "accepted")
	require.NoError(t, err)
	updated, err := f.orders.UpdateOrderStatus(f.ctx, f.owner.UserID, o.ID, models.StatusConfirmed, "again")
	require.NoError(t, err)

	assert.Len(t, updated.StatusHistory, 2)
	assert.Equal(t, "accepted", updated.StatusHistory[1].Note)
}

func TestUpdateOrderStatusEveryValidValue(t *testing.T) {
	for _, s := range statemachine.AllStatuses {
		t.Run(string(s), func(t *testing.T) {
			f := newOrderFixture(t)
			o := f.place()
			updated, err := f.orders.UpdateOrderStatus(f.ctx, f.owner.UserID, o.ID, s, "")
			require.NoError(t, err)
			assert.Equal(t, s, updated.Status)
			if s == models.StatusDelivered {
				assert.NotNil(t, updated.ActualDeliveryTime)
			}
		})
	}
}

func TestUpdateOrderStatusOwnership(t *testing.T) {
	f := newOrderFixture(t)
	o := f.place()
	other := f.provider("Rival")

	_, err := f.orders.UpdateOrderStatus(f.ctx, other.UserID, o.ID, models.StatusConfirmed, "")
	assert.True(t, apperr.IsAuth(err))
	assert.Equal(t, "Not authorized to update this order", apperr.Message(err))

	_, err = f.orders.UpdateOrderStatus(f.ctx, f.owner.UserID, 9999, models.StatusConfirmed, "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, models.StatusPending, f.status(o.ID))
}

func TestCancelOrder(t *testing.T) {
	f := newOrderFixture(t)

	pending := f.place()
	cancelled, err := f.orders.CancelOrder(f.ctx, f.buyer.UserID, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	confirmed := f.place()
	_, err = f.orders.UpdateOrderStatus(f.ctx, f.owner.UserID, confirmed.ID, models.StatusConfirmed, "")
	require.NoError(t, err)
	_, err = f.orders.CancelOrder(f.ctx, f.buyer.UserID, confirmed.ID)
	require.NoError(t, err)

	preparing := f.place()
	_, err = f.orders.UpdateOrderStatus(f.ctx, f.owner.UserID, preparing.ID, models.StatusPreparing, "")
	require.NoError(t, err)
	_, err = f.orders.CancelOrder(f.ctx, f.buyer.UserID, preparing.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, models.StatusPreparing, f.status(preparing.ID))

	_, err = f.orders.CancelOrder(f.ctx, f.buyer.UserID, pending.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation), "already cancelled")

	stranger := f.student("Stranger")
	_, err = f.orders.CancelOrder(f.ctx, stranger.UserID, f.place().ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestRateOrder(t *testing.T) {
	f := newOrderFixture(t)
	o := f.place()
	good := models.OrderRatings{Food: 5, Service: 4, Packaging: 3}

	_, err := f.orders.RateOrder(f.ctx, f.buyer.UserID, o.ID, good, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation), "not delivered yet")

	_, err = f.orders.UpdateOrderStatus(f.ctx, f.owner.UserID, o.ID, models.StatusDelivered, "")
	require.NoError(t, err)

	_, err = f.orders.RateOrder(f.ctx, f.buyer.UserID, o.ID, models.OrderRatings{Food: 6, Service: 4, Packaging: 3}, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	rated, err := f.orders.RateOrder(f.ctx, f.buyer.UserID, o.ID, good, "Loved it")
	require.NoError(t, err)
	assert.Equal(t, good, rated.Ratings)

	var stored models.Order
	require.NoError(t, f.db.First(&stored, o.ID).Error)
	assert.Equal(t, good, stored.Ratings)
	assert.Equal(t, "Loved it", stored.Feedback)

	_, err = f.orders.RateOrder(f.ctx, f.buyer.UserID, o.ID, good, "")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestStudentOrderQueries(t *testing.T) {
	f := newOrderFixture(t)
	first := f.place()
	second := f.place()

	orders, err := f.orders.ListStudentOrders(f.ctx, f.buyer.UserID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	require.NotNil(t, orders[0].Provider)
	assert.Equal(t, "Orders", orders[0].Provider.BusinessName)
	assert.Len(t, orders[0].Items, 2)

	detail, err := f.orders.GetStudentOrder(f.ctx, f.buyer.UserID, first.ID)
	require.NoError(t, err)
	assert.Len(t, detail.StatusHistory, 1)

	stranger := f.student("Stranger")
	_, err = f.orders.GetStudentOrder(f.ctx, stranger.UserID, first.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}
