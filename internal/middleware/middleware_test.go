package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fairFin/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims ReviewerClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func claimsFor(userID, role string, exp time.Time) ReviewerClaims {
	return ReviewerClaims{
		UserID:           userID,
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
	}
}

func newServer(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.GET("/whoami", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"user_id": c.Get("user_id"),
			"role":    c.Get("role"),
		})
	}, mw...)
	return e
}

func serve(e *echo.Echo, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestAuthMiddleware(t *testing.T) {
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name     string
		auth     string
		wantCode int
		wantMsg  string
	}{
		{"missing header", "", http.StatusUnauthorized, "missing authorization header"},
		{"wrong scheme", "Token abc", http.StatusUnauthorized, "invalid authorization format"},
		{"extra parts", "Bearer a b", http.StatusUnauthorized, "invalid authorization format"},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized, "invalid token"},
		{
			"wrong secret",
			"Bearer " + signToken(t, "other", jwt.SigningMethodHS256, claimsFor("7", RoleAnalyst, future)),
			http.StatusUnauthorized, "invalid token",
		},
		{
			"expired",
			"Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("7", RoleAnalyst, time.Now().Add(-time.Minute))),
			http.StatusUnauthorized, "token expired",
		},
		{
			"no expiry",
			"Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, ReviewerClaims{UserID: "7", Role: RoleAnalyst}),
			http.StatusUnauthorized, "invalid token",
		},
		{
			"other algorithm",
			"Bearer " + signToken(t, testSecret, jwt.SigningMethodHS512, claimsFor("7", RoleAnalyst, future)),
			http.StatusUnauthorized, "invalid token",
		},
		{
			"no user id",
			"Bearer " + signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("", RoleAnalyst, future)),
			http.StatusUnauthorized, "invalid token",
		},
	}

	e := newServer(AuthMiddleware(testSecret))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, http.MethodGet, "/whoami", tt.auth)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantMsg, message(t, rec))
		})
	}
}

func TestAuthMiddleware_SetsClaims(t *testing.T) {
	e := newServer(AuthMiddleware(testSecret))
	token := signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("42", "Analyst", time.Now().Add(time.Hour)))

	rec := serve(e, http.MethodGet, "/whoami", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "42", body["user_id"])
	assert.Equal(t, RoleAnalyst, body["role"])
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		guard    echo.MiddlewareFunc
		role     string
		wantCode int
	}{
		{"analyst reviews", ReviewerOnly(), RoleAnalyst, http.StatusOK},
		{"admin reviews", ReviewerOnly(), RoleAdmin, http.StatusOK},
		{"user cannot review", ReviewerOnly(), RoleUser, http.StatusForbidden},
		{"admin upper case", AdminOnly(), "ADMIN", http.StatusOK},
		{"analyst is not admin", AdminOnly(), RoleAnalyst, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newServer(AuthMiddleware(testSecret), tt.guard)
			token := signToken(t, testSecret, jwt.SigningMethodHS256, claimsFor("1", tt.role, time.Now().Add(time.Hour)))

			rec := serve(e, http.MethodGet, "/whoami", "Bearer "+token)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusForbidden {
				assert.Equal(t, "insufficient role", message(t, rec))
			}
		})
	}
}

func TestRequireRole_Unauthenticated(t *testing.T) {
	e := newServer(AdminOnly())
	rec := serve(e, http.MethodGet, "/whoami", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTrace(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.Use(Trace())

	var seen string
	e.GET("/ping", func(c echo.Context) error {
		seen = logger.TraceID(c.Request().Context())
		return c.String(http.StatusOK, "pong")
	})

	t.Run("keeps caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(echo.HeaderXRequestID, "req-123")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "req-123", rec.Header().Get(echo.HeaderXRequestID))
		assert.Equal(t, "req-123", seen)
	})

	t.Run("generates id", func(t *testing.T) {
		rec := serve(e, http.MethodGet, "/ping", "")

		id := rec.Header().Get(echo.HeaderXRequestID)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, seen)
	})

	t.Run("handler error is rendered once", func(t *testing.T) {
		rec := serve(e, http.MethodGet, "/missing", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Not Found", message(t, rec))
	})
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.GET("/boom", func(c echo.Context) error { return errors.New("boom") })
	e.GET("/teapot", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})
	e.HEAD("/boom", func(c echo.Context) error { return errors.New("boom") })

	rec := serve(e, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", message(t, rec))

	rec = serve(e, http.MethodGet, "/teapot", "")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", message(t, rec))

	rec = serve(e, http.MethodHead, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Body.String())
}
