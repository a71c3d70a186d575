package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"student-mess-api/auth"
	"student-mess-api/middleware"
	"student-mess-api/models"
)

type RegisterRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email" binding:"omitempty,email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
	Phone    string          `json:"phone"`
	Address  string          `json:"address"`

	University string `json:"university"`
	Department string `json:"department"`
	RollNumber string `json:"roll_number"`

	BusinessName string              `json:"business_name"`
	Description  string              `json:"description"`
	Type         models.ProviderType `json:"type" binding:"omitempty,enum"`
	Cuisine      models.StringList   `json:"cuisine"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) sessionResponse(c *gin.Context, status int, s *auth.Session) {
	c.JSON(status, Response{Success: true, Token: s.Token, Data: models.PublicView(s.Account)})
}

// Register creates a student or provider account and returns a session token
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	session, err := h.auth.Register(c.Request.Context(), auth.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Role:         req.Role,
		Phone:        req.Phone,
		Address:      req.Address,
		University:   req.University,
		Department:   req.Department,
		RollNumber:   req.RollNumber,
		BusinessName: req.BusinessName,
		Description:  req.Description,
		Type:         req.Type,
		Cuisine:      req.Cuisine,
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.sessionResponse(c, http.StatusCreated, session)
}

// Login authenticates a user and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.sessionResponse(c, http.StatusOK, session)
}

// Me returns the authenticated account
func (h *Handler) Me(c *gin.Context) {
	ok(c, http.StatusOK, middleware.CurrentAccount(c))
}

func (h *Handler) Logout(c *gin.Context) {
	message(c, http.StatusOK, h.auth.Logout())
}
