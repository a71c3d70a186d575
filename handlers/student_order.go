package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"student-mess-api/middleware"
	"student-mess-api/models"
	"student-mess-api/services"
)

// PlaceOrder creates a new order (student only)
func (h *Handler) PlaceOrder(c *gin.Context) {
	var in services.PlaceOrderInput
	if err := bind(c, &in); err != nil {
		fail(c, err)
		return
	}
	order, err := h.orders.PlaceOrder(c.Request.Context(), middleware.GetUserID(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, order)
}

func (h *Handler) GetMyOrders(c *gin.Context) {
	orders, err := h.orders.ListStudentOrders(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	list(c, orders)
}

// GetOrderDetail returns one of the student's orders with its status history
func (h *Handler) GetOrderDetail(c *gin.Context) {
	orderID, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	order, err := h.orders.GetStudentOrder(c.Request.Context(), middleware.GetUserID(c), orderID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, order)
}

// CancelOrder cancels a pending or confirmed order
func (h *Handler) CancelOrder(c *gin.Context) {
	orderID, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	order, err := h.orders.CancelOrder(c.Request.Context(), middleware.GetUserID(c), orderID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Message: "Order cancelled", Data: order})
}

type RateOrderRequest struct {
	Ratings  models.OrderRatings `json:"ratings"`
	Feedback string              `json:"feedback"`
}

func (h *Handler) RateOrder(c *gin.Context) {
	orderID, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req RateOrderRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	order, err := h.orders.RateOrder(c.Request.Context(), middleware.GetUserID(c), orderID, req.Ratings, req.Feedback)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, order)
}
