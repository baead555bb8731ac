package middleware_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caiofrota/migoculto/internal/auth"
	"github.com/caiofrota/migoculto/internal/middleware"
	"github.com/caiofrota/migoculto/internal/models"
)

func testApp(jwt *auth.JWTManager) *fiber.App {
	app := fiber.New()
	app.Get("/protected", middleware.AuthRequired(jwt), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": middleware.UserID(c)})
	})
	return app
}

// TestAuthRequired verifies the bearer-token gate: a valid access token
// passes and populates the context locals, everything else gets 401.
func TestAuthRequired(t *testing.T) {
	jwt := auth.NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)
	app := testApp(jwt)

	pair, err := jwt.Generate(&models.User{ID: 42, Email: "vera@example.com"})
	require.NoError(t, err)

	tests := []struct {
		name           string
		authorization  string
		expectedStatus int
	}{
		{
			name:           "valid access token",
			authorization:  "Bearer " + pair.AccessToken,
			expectedStatus: fiber.StatusOK,
		},
		{
			name:           "missing header",
			authorization:  "",
			expectedStatus: fiber.StatusUnauthorized,
		},
		{
			name:           "wrong scheme",
			authorization:  "Basic dXNlcjpwYXNz",
			expectedStatus: fiber.StatusUnauthorized,
		},
		{
			name:           "refresh token is not an access token",
			authorization:  "Bearer " + pair.RefreshToken,
			expectedStatus: fiber.StatusUnauthorized,
		},
		{
			name:           "garbage token",
			authorization:  "Bearer not.a.token",
			expectedStatus: fiber.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
			if tt.authorization != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.authorization)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

// TestAuthRequired_ExpiredToken verifies expired tokens are refused.
func TestAuthRequired_ExpiredToken(t *testing.T) {
	expired := auth.NewJWTManager("test-secret", -time.Minute, -time.Minute)
	pair, err := expired.Generate(&models.User{ID: 42, Email: "vera@example.com"})
	require.NoError(t, err)

	app := testApp(auth.NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour))

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+pair.AccessToken)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
