package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"student-mess-api/middleware"
	"student-mess-api/services"
)

// ListProviders returns active providers with their latest reviews
func (h *Handler) ListProviders(c *gin.Context) {
	providers, err := h.providers.ListActiveProviders(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	list(c, providers)
}

// GetProviderDetails returns a provider with reviews, menu and meal plans
func (h *Handler) GetProviderDetails(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	p, err := h.providers.GetProviderDetails(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

func (h *Handler) Subscribe(c *gin.Context) {
	var in services.SubscribeInput
	if err := bind(c, &in); err != nil {
		fail(c, err)
		return
	}
	sub, err := h.subs.Subscribe(c.Request.Context(), middleware.GetUserID(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, sub)
}

func (h *Handler) GetSubscriptions(c *gin.Context) {
	subs, err := h.subs.ListSubscriptions(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	list(c, subs)
}

type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// CreateReview adds the student's review of a provider they subscribe to
func (h *Handler) CreateReview(c *gin.Context) {
	providerID, err := paramID(c, "providerId")
	if err != nil {
		fail(c, err)
		return
	}
	var req ReviewRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	res, err := h.providers.AddReview(c.Request.Context(), providerID, middleware.GetUserID(c), req.Rating, req.Comment)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Message: "Review added successfully", Data: res})
}

// CreateMenuItemReview adds the student's review of a single dish
func (h *Handler) CreateMenuItemReview(c *gin.Context) {
	itemID, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req ReviewRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	item, err := h.providers.AddMenuItemReview(c.Request.Context(), itemID, middleware.GetUserID(c), req.Rating, req.Comment)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Message: "Review added successfully", Data: item})
}
