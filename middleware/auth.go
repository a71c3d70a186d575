package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"student-mess-api/apperr"
	"student-mess-api/models"
)

const (
	accountKey = "account"
	userIDKey  = "userID"
	roleKey    = "role"
)

// SessionResolver turns a bearer token into the caller's account.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (models.Account, error)
}

// AuthRequired validates the bearer token and injects the account into context
func AuthRequired(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abort(c, apperr.Unauthorized("Not authorized to access this route"))
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		acct, err := sessions.ResolveSession(c.Request.Context(), tokenStr)
		if err != nil {
			abort(c, err)
			return
		}
		u := acct.Base()
		c.Set(accountKey, acct)
		c.Set(userIDKey, u.ID)
		c.Set(roleKey, string(u.Role))
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(roleKey)
		if !exists {
			abort(c, apperr.Unauthorized("Not authorized to access this route"))
			return
		}
		callerRole := models.UserRole(roleVal.(string))
		for _, r := range roles {
			if callerRole == r {
				c.Next()
				return
			}
		}
		abort(c, apperr.Forbidden("User role "+string(callerRole)+" is not authorized to access this route. Required role(s): "+rolesString(roles)))
	}
}

func rolesString(roles []models.UserRole) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

// abort records err for ErrorHandler and stops the chain.
func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// CurrentAccount returns the account set by AuthRequired.
func CurrentAccount(c *gin.Context) models.Account {
	val, ok := c.Get(accountKey)
	if !ok {
		return nil
	}
	acct, _ := val.(models.Account)
	return acct
}

// GetUserID extracts caller user ID from context
func GetUserID(c *gin.Context) uint {
	val, _ := c.Get(userIDKey)
	id, _ := val.(uint)
	return id
}

// GetRole extracts caller role from context
func GetRole(c *gin.Context) models.UserRole {
	val, _ := c.Get(roleKey)
	s, _ := val.(string)
	return models.UserRole(s)
}
