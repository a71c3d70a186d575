package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"student-mess-api/apperr"
	"student-mess-api/auth"
	"student-mess-api/services"
)

// Handler serves the HTTP API on top of the service layer.
type Handler struct {
	auth      *auth.Service
	providers *services.ProviderService
	subs      *services.SubscriptionService
	orders    *services.OrderService
	accounts  *services.AccountService
	log       *zap.Logger
}

func New(
	authSvc *auth.Service,
	providers *services.ProviderService,
	subs *services.SubscriptionService,
	orders *services.OrderService,
	accounts *services.AccountService,
	log *zap.Logger,
) *Handler {
	RegisterValidators()
	return &Handler{
		auth:      authSvc,
		providers: providers,
		subs:      subs,
		orders:    orders,
		accounts:  accounts,
		log:       log,
	}
}

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Data: data})
}

func list[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	c.JSON(http.StatusOK, Response{Success: true, Count: &n, Data: items})
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Success: true, Message: msg})
}

// fail hands err to middleware.ErrorHandler.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

// bind decodes the JSON body into dst. An empty body leaves dst untouched.
func bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return bindError(err)
	}
	return nil
}

func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperr.Validation("Invalid value for " + verrs[0].Field())
	}
	var typ *json.UnmarshalTypeError
	if errors.As(err, &typ) && typ.Field != "" {
		return apperr.Validation("Invalid value for " + typ.Field)
	}
	return apperr.Validation("Invalid request body")
}

func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid " + name)
	}
	return uint(id), nil
}
