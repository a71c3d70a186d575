package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"student-mess-api/apperr"
	"student-mess-api/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSessions map[string]models.Account

func (s stubSessions) ResolveSession(_ context.Context, token string) (models.Account, error) {
	if token == "expired" {
		return nil, apperr.Unauthorized("Token expired")
	}
	acct, ok := s[token]
	if !ok {
		return nil, apperr.Unauthorized("Invalid token")
	}
	return acct, nil
}

var sessions = stubSessions{
	"student":  models.StudentAccount{Student: &models.Student{UserID: 7, User: models.User{ID: 7, Role: models.RoleStudent}}},
	"provider": models.ProviderAccount{Provider: &models.Provider{UserID: 9, User: models.User{ID: 9, Role: models.RoleProvider}}},
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func newEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(log, true))
	return r
}

func do(r http.Handler, method, path, token string) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestAuthRequired(t *testing.T) {
	r := newEngine(zap.NewNop())
	r.GET("/me", AuthRequired(sessions), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c), "role": GetRole(c), "has_account": CurrentAccount(c) != nil})
	})

	w, env := do(r, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Not authorized to access this route", env.Message)

	w, env = do(r, http.MethodGet, "/me", "expired")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token expired", env.Message)

	w, env = do(r, http.MethodGet, "/me", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", env.Message)

	w, _ = do(r, http.MethodGet, "/me", "student")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"role":"student","has_account":true}`, w.Body.String())
}

func TestRoleRequired(t *testing.T) {
	r := newEngine(zap.NewNop())
	r.GET("/provider-only", AuthRequired(sessions), RoleRequired(models.RoleProvider), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w, env := do(r, http.MethodGet, "/provider-only", "student")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, env.Message, "student")

	w, _ = do(r, http.MethodGet, "/provider-only", "provider")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestContextHelpersWithoutAuth(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Zero(t, GetUserID(c))
	assert.Empty(t, GetRole(c))
	assert.Nil(t, CurrentAccount(c))
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newEngine(zap.New(core))
	cases := map[string]struct {
		err    error
		status int
	}{
		"/validation": {apperr.Validation("bad"), http.StatusBadRequest},
		"/conflict":   {apperr.Conflict("dup"), http.StatusConflict},
		"/forbidden":  {apperr.Forbidden("no"), http.StatusForbidden},
		"/missing":    {apperr.NotFound("gone"), http.StatusNotFound},
		"/internal":   {apperr.Internal("Server Error", errors.New("disk on fire")), http.StatusInternalServerError},
		"/untyped":    {errors.New("boom"), http.StatusInternalServerError},
	}
	for path, tc := range cases {
		err := tc.err
		r.GET(path, func(c *gin.Context) { _ = c.Error(err) })
	}

	for path, tc := range cases {
		w, env := do(r, http.MethodGet, path, "")
		assert.Equal(t, tc.status, w.Code, path)
		assert.False(t, env.Success, path)
	}

	_, env := do(r, http.MethodGet, "/internal", "")
	assert.Equal(t, "Server Error", env.Message)
	assert.Equal(t, "disk on fire", env.Error)

	_, env = do(r, http.MethodGet, "/validation", "")
	assert.Equal(t, "bad", env.Message)
	assert.Empty(t, env.Error)

	assert.Equal(t, 3, logs.FilterMessage("request failed").Len())
}

func TestErrorHandlerHidesDetailWhenDisabled(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(zap.NewNop(), false))
	r.GET("/internal", func(c *gin.Context) {
		_ = c.Error(apperr.Internal("Server Error", errors.New("disk on fire")))
	})

	w, env := do(r, http.MethodGet, "/internal", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server Error", env.Message)
	assert.Empty(t, env.Error)
	assert.NotContains(t, w.Body.String(), "disk on fire")
}

func TestRecoveryRendersEnvelope(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(RequestID(), Recovery(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("nil map write") })

	w, env := do(r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.False(t, env.Success)
	assert.Equal(t, "Server Error", env.Message)

	entries := logs.FilterMessage("panic recovered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "nil map write", entries[0].ContextMap()["panic"])
	assert.Equal(t, "/boom", entries[0].ContextMap()["path"])
}

func TestErrorHandlerLeavesWrittenResponses(t *testing.T) {
	r := newEngine(zap.NewNop())
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
		_ = c.Error(errors.New("late"))
	})
	w, env := do(r, http.MethodGet, "/ok", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestRequestID(t *testing.T) {
	r := newEngine(zap.NewNop())
	r.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w, _ := do(r, http.MethodGet, "/id", "")
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), RequestLogger(zap.New(core)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/nope", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	do(r, http.MethodGet, "/ping", "")
	do(r, http.MethodGet, "/nope", "")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "/ping", entries[0].ContextMap()["path"])
	assert.EqualValues(t, 200, entries[0].ContextMap()["status"])
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2, zap.NewNop())
	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w, _ := do(r, http.MethodGet, "/x", "")
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w, env := do(r, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.False(t, env.Success)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "other clients keep their own budget")
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
