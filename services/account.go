package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"student-mess-api/apperr"
	"student-mess-api/models"
)

// AccountService serves the role-independent profile endpoints.
type AccountService struct {
	db        *gorm.DB
	providers *ProviderService
}

func NewAccountService(db *gorm.DB, providers *ProviderService) *AccountService {
	return &AccountService{db: db, providers: providers}
}

// GetProfile reloads the caller's account with role-specific fields.
func (s *AccountService) GetProfile(ctx context.Context, userID uint, role models.UserRole) (models.Account, error) {
	acct, err := models.LoadAccount(s.db.WithContext(ctx), userID, role)
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("Could not fetch profile", err)
	}
	return acct, nil
}

// UpdateProfile applies base fields for every role. Providers also get their
// business fields and the readiness check.
func (s *AccountService) UpdateProfile(ctx context.Context, acct models.Account, upd ProfileUpdate) (models.Account, error) {
	switch a := acct.(type) {
	case models.ProviderAccount:
		p, err := s.providers.UpdateProfile(ctx, a.Provider.UserID, upd)
		if err != nil {
			return nil, err
		}
		return models.ProviderAccount{Provider: p}, nil
	case models.StudentAccount, models.PlainAccount:
		var user models.User
		if err := s.db.WithContext(ctx).First(&user, acct.Base().ID).Error; err != nil {
			return nil, apperr.Wrap("Could not update profile", orNotFound(err, "User not found"))
		}
		upd.applyBase(&user)
		if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
			return nil, apperr.Internal("Could not update profile", err)
		}
		return s.GetProfile(ctx, user.ID, user.Role)
	default:
		return nil, apperr.Internal("Could not update profile", nil)
	}
}
