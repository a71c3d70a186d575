package handlers

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"student-mess-api/models"
	"student-mess-api/statemachine"
)

type enumValue interface {
	Valid() bool
}

var registerOnce sync.Once

// RegisterValidators adds the enum checks to gin's validator. Safe to call repeatedly.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
			e, ok := fl.Field().Interface().(enumValue)
			return ok && e.Valid()
		})
		_ = v.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
			s, ok := fl.Field().Interface().(models.OrderStatus)
			return ok && statemachine.IsValid(s)
		})
	})
}
