package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skillhive/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func newAuthApp(auth *Auth) *fiber.App {
	app := fiber.New()
	app.Get("/test", auth.Required(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": UserID(c), "admin": IsAdmin(c)})
	})
	app.Get("/ws", auth.Required(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/admin", auth.Required(), AdminRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestAuth_IssueAndParse(t *testing.T) {
	auth := NewAuth(testSecret, time.Hour)

	token, err := auth.IssueToken("u-42", models.RoleAdmin)
	require.NoError(t, err)

	claims, err := auth.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u-42", claims.Subject)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)

	_, err = NewAuth("another-secret-another-secret-another", time.Hour).Parse(token)
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))

	_, err = NewAuth("", time.Hour).IssueToken("u", models.RoleUser)
	assert.Error(t, err)
}

func TestAuthRequired(t *testing.T) {
	auth := NewAuth(testSecret, time.Hour)
	app := newAuthApp(auth)

	valid, err := auth.IssueToken("123", models.RoleUser)
	require.NoError(t, err)

	expired := NewAuth(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.IssueToken("123", models.RoleUser)
	require.NoError(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "123",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"Happy Path", "Bearer " + valid, http.StatusOK},
		{"Missing Header", "", http.StatusUnauthorized},
		{"Invalid Format", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"Malformed Token", "Bearer malformed.token.here", http.StatusUnauthorized},
		{"Expired Token", "Bearer " + expiredToken, http.StatusUnauthorized},
		{"Missing Issuer And Audience", "Bearer " + foreign, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]any
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, "123", body["userID"])
				assert.Equal(t, false, body["admin"])
			}
		})
	}
}

func TestAuthRequired_QueryTokenOnlyForWebSocket(t *testing.T) {
	auth := NewAuth(testSecret, time.Hour)
	app := newAuthApp(auth)
	token, err := auth.IssueToken("7", models.RoleUser)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/test?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRequired(t *testing.T) {
	auth := NewAuth(testSecret, time.Hour)
	app := newAuthApp(auth)

	for role, want := range map[models.Role]int{
		models.RoleAdmin: http.StatusOK,
		models.RoleUser:  http.StatusForbidden,
	} {
		token, err := auth.IssueToken("1", role)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, string(role))
	}
}
