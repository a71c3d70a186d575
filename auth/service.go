// Package auth handles credentials and session tokens.
package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"student-mess-api/apperr"
	"student-mess-api/models"
)

// RegisterInput carries the identity plus whichever role fields apply.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     models.UserRole
	Phone    string
	Address  string

	University string
	Department string
	RollNumber string

	BusinessName string
	Description  string
	Type         models.ProviderType
	Cuisine      models.StringList
}

// Session is an issued token and the account it belongs to.
type Session struct {
	Token   string
	Account models.Account
}

type Service struct {
	db     *gorm.DB
	tokens *TokenIssuer
	log    *zap.Logger
}

func NewService(db *gorm.DB, tokens *TokenIssuer, log *zap.Logger) *Service {
	return &Service{db: db, tokens: tokens, log: log}
}

func (in *RegisterInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return apperr.Validation("Please provide name, email and password")
	}
	if len(in.Password) < MinPasswordLength {
		return apperr.Validation("Password must be at least 6 characters")
	}
	switch in.Role {
	case models.RoleStudent:
		if in.University == "" || in.Department == "" || in.RollNumber == "" {
			return apperr.Validation("Please provide university, department and roll number")
		}
	case models.RoleProvider:
		if in.BusinessName == "" || in.Description == "" {
			return apperr.Validation("Please provide business name and description")
		}
		if in.Type == "" {
			in.Type = models.ProviderIndividual
		}
		if !in.Type.Valid() {
			return apperr.Validation("Provider type must be individual or company")
		}
		if in.Cuisine == nil {
			in.Cuisine = models.StringList{}
		}
	default:
		return apperr.Validation("Invalid role specified")
	}
	return nil
}

// Register creates the base user and its role record in one transaction.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("Failed to hash password", err)
	}

	var account models.Account
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("User already exists")
		}

		user := models.User{
			Name:         in.Name,
			Email:        in.Email,
			PasswordHash: hash,
			Role:         in.Role,
			Phone:        in.Phone,
			Address:      in.Address,
		}
		if err := tx.Create(&user).Error; err != nil {
			if models.IsDuplicate(err) {
				return apperr.Conflict("User already exists")
			}
			return err
		}

		switch in.Role {
		case models.RoleStudent:
			student := models.Student{
				UserID:     user.ID,
				University: in.University,
				Department: in.Department,
				RollNumber: in.RollNumber,
				Preferences: models.StudentPreferences{
					Dietary:       models.DefaultDietaryFlags(),
					Allergies:     []string{},
					FavoriteItems: []string{},
				},
			}
			if err := tx.Omit(clause.Associations).Create(&student).Error; err != nil {
				return err
			}
			student.User = user
			account = models.StudentAccount{Student: &student}
		case models.RoleProvider:
			if err := tx.Model(&models.Provider{}).Where("business_name = ?", in.BusinessName).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return apperr.Conflict("Business name already registered")
			}
			provider := models.Provider{
				UserID:        user.ID,
				BusinessName:  in.BusinessName,
				Description:   in.Description,
				Type:          in.Type,
				Cuisine:       in.Cuisine,
				DeliveryAreas: models.StringList{},
				IsActive:      true,
			}
			if err := tx.Omit(clause.Associations).Create(&provider).Error; err != nil {
				if models.IsDuplicate(err) {
					return apperr.Conflict("Business name already registered")
				}
				return err
			}
			provider.User = user
			account = models.ProviderAccount{Provider: &provider}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap("Registration failed", err)
	}

	token, err := s.tokens.Issue(account.Base().ID, in.Role)
	if err != nil {
		return nil, apperr.Internal("Failed to generate token", err)
	}
	s.log.Info("account registered", zap.Uint("user_id", account.Base().ID), zap.String("role", string(in.Role)))
	return &Session{Token: token, Account: account}, nil
}

// Login checks credentials. Unknown email and wrong password fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.Validation("Please provide email and password")
	}
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("Invalid credentials")
		}
		return nil, apperr.Internal("Login failed", err)
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	account, err := models.LoadAccount(s.db.WithContext(ctx), user.ID, user.Role)
	if err != nil {
		return nil, apperr.Internal("Login failed", err)
	}
	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, apperr.Internal("Failed to generate token", err)
	}
	return &Session{Token: token, Account: account}, nil
}

// ResolveSession verifies the token and loads the caller's role-specific account.
func (s *Service) ResolveSession(ctx context.Context, token string) (models.Account, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	account, err := models.LoadAccount(s.db.WithContext(ctx), claims.UserID, claims.Role)
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			return nil, apperr.Unauthorized("User no longer exists")
		}
		return nil, apperr.Internal("Failed to resolve session", err)
	}
	if account.Base().Role != claims.Role {
		return nil, apperr.Unauthorized("Invalid token")
	}
	return account, nil
}

// Logout is stateless. The caller discards its token.
func (s *Service) Logout() string {
	return "Logged out successfully"
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	if current == "" || next == "" {
		return apperr.Validation("Please provide current and new password")
	}
	if len(next) < MinPasswordLength {
		return apperr.Validation("Password must be at least 6 characters")
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal("Failed to update password", err)
	}
	if !CheckPassword(user.PasswordHash, current) {
		return apperr.Unauthorized("Current password is incorrect")
	}
	hash, err := HashPassword(next)
	if err != nil {
		return apperr.Internal("Failed to hash password", err)
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("password_hash", hash).Error; err != nil {
		return apperr.Internal("Failed to update password", err)
	}
	return nil
}
