package models

import (
	"encoding/json"
	"errors"

	"gorm.io/gorm"
)

// Account is a resolved identity. Exactly one of StudentAccount,
// ProviderAccount or PlainAccount implements it.
type Account interface {
	Base() *User
	isAccount()
}

type StudentAccount struct{ Student *Student }

type ProviderAccount struct{ Provider *Provider }

type PlainAccount struct{ User *User }

func (a StudentAccount) Base() *User  { return &a.Student.User }
func (a ProviderAccount) Base() *User { return &a.Provider.User }
func (a PlainAccount) Base() *User    { return a.User }

func (StudentAccount) isAccount()  {}
func (ProviderAccount) isAccount() {}
func (PlainAccount) isAccount()    {}

func (a StudentAccount) MarshalJSON() ([]byte, error)  { return json.Marshal(a.Student) }
func (a ProviderAccount) MarshalJSON() ([]byte, error) { return json.Marshal(a.Provider) }
func (a PlainAccount) MarshalJSON() ([]byte, error)    { return json.Marshal(a.User) }

// ErrAccountNotFound is returned by LoadAccount when no row matches.
var ErrAccountNotFound = errors.New("account not found")

// LoadAccount fetches the role-specific record for a user.
func LoadAccount(db *gorm.DB, userID uint, role UserRole) (Account, error) {
	var err error
	switch role {
	case RoleStudent:
		var s Student
		if err = db.Preload("User").First(&s, "user_id = ?", userID).Error; err == nil {
			return StudentAccount{Student: &s}, nil
		}
	case RoleProvider:
		var p Provider
		if err = db.Preload("User").First(&p, "user_id = ?", userID).Error; err == nil {
			return ProviderAccount{Provider: &p}, nil
		}
	default:
		var u User
		if err = db.First(&u, userID).Error; err == nil {
			return PlainAccount{User: &u}, nil
		}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	return nil, err
}

// PublicView is the role-filtered identity returned alongside a session token.
func PublicView(a Account) map[string]any {
	u := a.Base()
	view := map[string]any{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}
	switch acct := a.(type) {
	case StudentAccount:
		view["university"] = acct.Student.University
		view["department"] = acct.Student.Department
		view["roll_number"] = acct.Student.RollNumber
	case ProviderAccount:
		view["business_name"] = acct.Provider.BusinessName
		view["description"] = acct.Provider.Description
		view["type"] = acct.Provider.Type
		view["cuisine"] = acct.Provider.Cuisine
	case PlainAccount:
	}
	return view
}
