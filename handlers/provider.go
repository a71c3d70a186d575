package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"student-mess-api/middleware"
	"student-mess-api/services"
)

// GetProviderProfile returns the provider's own record including bank details
func (h *Handler) GetProviderProfile(c *gin.Context) {
	p, err := h.providers.GetProvider(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// UpdateProviderProfile updates business details and re-checks verification readiness
func (h *Handler) UpdateProviderProfile(c *gin.Context) {
	var upd services.ProfileUpdate
	if err := bind(c, &upd); err != nil {
		fail(c, err)
		return
	}
	p, err := h.providers.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), upd)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

func (h *Handler) CreateMealPlan(c *gin.Context) {
	var in services.MealPlanInput
	if err := bind(c, &in); err != nil {
		fail(c, err)
		return
	}
	plan, err := h.providers.CreateMealPlan(c.Request.Context(), middleware.GetUserID(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, plan)
}

func (h *Handler) GetMealPlans(c *gin.Context) {
	plans, err := h.providers.ListMealPlans(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	list(c, plans)
}

func (h *Handler) CreateMenuItem(c *gin.Context) {
	var in services.MenuItemInput
	if err := bind(c, &in); err != nil {
		fail(c, err)
		return
	}
	item, err := h.providers.CreateMenuItem(c.Request.Context(), middleware.GetUserID(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, item)
}

func (h *Handler) GetMenuItems(c *gin.Context) {
	items, err := h.providers.ListMenuItems(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	list(c, items)
}

type AvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

// SetMenuItemAvailability toggles whether a menu item can be ordered
func (h *Handler) SetMenuItemAvailability(c *gin.Context) {
	itemID, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindError(err))
		return
	}
	item, err := h.providers.SetMenuItemAvailability(c.Request.Context(), middleware.GetUserID(c), itemID, *req.IsAvailable)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, item)
}

// DeleteMenuItem removes a menu item (only by the owner)
func (h *Handler) DeleteMenuItem(c *gin.Context) {
	itemID, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.providers.DeleteMenuItem(c.Request.Context(), middleware.GetUserID(c), itemID); err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, "Menu item deleted")
}

// GetSubscribers lists active subscriptions to the provider
func (h *Handler) GetSubscribers(c *gin.Context) {
	subs, err := h.providers.ListSubscribers(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	list(c, subs)
}

// GetProviderStats returns the dashboard aggregates
func (h *Handler) GetProviderStats(c *gin.Context) {
	stats, err := h.providers.Stats(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, stats)
}
