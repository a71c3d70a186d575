package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"student-mess-api/middleware"
	"student-mess-api/models"
	"student-mess-api/services"
	"student-mess-api/statemachine"
)

type ProviderOrdersQuery struct {
	Status  models.OrderStatus `form:"status" binding:"omitempty,order_status"`
	Summary bool               `form:"summary"`
}

// GetProviderOrders lists the provider's orders, optionally filtered by status.
// With ?summary=true the data is a count per status instead.
func (h *Handler) GetProviderOrders(c *gin.Context) {
	var q ProviderOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, bindError(err))
		return
	}
	orders, err := h.providers.ListOrders(c.Request.Context(), middleware.GetUserID(c), q.Status)
	if err != nil {
		fail(c, err)
		return
	}
	if q.Summary {
		n := len(orders)
		c.JSON(http.StatusOK, Response{Success: true, Count: &n, Data: services.StatusSummary(orders)})
		return
	}
	list(c, orders)
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
	Note   string             `json:"note"`
}

type orderStatusView struct {
	*models.Order
	ValidNextStates []models.OrderStatus `json:"valid_next_states"`
}

// UpdateOrderStatus sets a new status on one of the provider's orders
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req UpdateStatusRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	order, err := h.orders.UpdateOrderStatus(c.Request.Context(), middleware.GetUserID(c), orderID, req.Status, req.Note)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, orderStatusView{
		Order:           order,
		ValidNextStates: statemachine.ValidTransitionsFrom(order.Status, statemachine.ActorProvider),
	})
}
