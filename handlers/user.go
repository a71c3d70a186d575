package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"student-mess-api/middleware"
	"student-mess-api/services"
)

// GetProfile returns the caller's role-specific profile
func (h *Handler) GetProfile(c *gin.Context) {
	acct, err := h.accounts.GetProfile(c.Request.Context(), middleware.GetUserID(c), middleware.GetRole(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, acct)
}

// UpdateProfile changes base fields for any role. Providers may also change business fields.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var upd services.ProfileUpdate
	if err := bind(c, &upd); err != nil {
		fail(c, err)
		return
	}
	acct, err := h.accounts.UpdateProfile(c.Request.Context(), middleware.CurrentAccount(c), upd)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, acct)
}

type PasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) UpdatePassword(c *gin.Context) {
	var req PasswordRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	if err := h.auth.ChangePassword(c.Request.Context(), middleware.GetUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, "Password updated successfully")
}
