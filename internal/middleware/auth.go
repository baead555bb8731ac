// Package middleware provides HTTP middleware functions for authentication.
// These middleware functions are used to protect routes behind JWT bearer tokens.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/caiofrota/migoculto/internal/auth"
)

// AuthRequired is a middleware that ensures the request carries a valid
// access token in the Authorization header ("Bearer <token>").
//
// Context Locals Set:
//   - user_id: The authenticated user's ID (int)
//   - user_email: The user's email address (string)
//
// Example:
//
//	api := app.Group("/api/v1/groups", middleware.AuthRequired(jwtManager))
func AuthRequired(jwt *auth.JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := BearerToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		claims, err := jwt.ValidateAccess(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		// Pass user information to context for handlers to use
		c.Locals("user_id", claims.UserID)
		c.Locals("user_email", claims.Email)

		return c.Next()
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", auth.ErrMissingToken
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", auth.ErrMissingToken
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", auth.ErrMissingToken
	}
	return token, nil
}

// UserID returns the authenticated user's id set by AuthRequired.
// Panics if the middleware did not run, which is a routing bug.
func UserID(c *fiber.Ctx) int {
	return c.Locals("user_id").(int)
}
