// Package services implements the provider, subscription and order lifecycles.
package services

import (
	"strings"

	"student-mess-api/apperr"
	"student-mess-api/models"
)

// Rating bounds for provider, menu item and order ratings.
const (
	MinRating = 1
	MaxRating = 5
)

func validRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// orNotFound maps gorm's missing-record error to a NotFound with msg.
func orNotFound(err error, msg string) error {
	if models.IsNotFound(err) {
		return apperr.NotFound(msg)
	}
	return err
}

// setString copies a non-blank value into dst.
func setString(dst *string, v *string) {
	if v == nil {
		return
	}
	if s := strings.TrimSpace(*v); s != "" {
		*dst = s
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
