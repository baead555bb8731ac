// This file handles account registration, login and token refresh.
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/caiofrota/migoculto/internal/auth"
	"github.com/caiofrota/migoculto/internal/models"
	"github.com/caiofrota/migoculto/internal/security"
	"github.com/caiofrota/migoculto/internal/services"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	authService *services.AuthService
	jwt         *auth.JWTManager
	validator   *security.ValidationService
}

// NewAuthHandler creates a new instance of AuthHandler.
func NewAuthHandler(authService *services.AuthService, jwt *auth.JWTManager, validator *security.ValidationService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwt:         jwt,
		validator:   validator,
	}
}

// Register creates a new account and returns a token pair.
//
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var form models.RegisterForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.ValidateRegisterForm(form); err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.authService.Register(c.Context(), form)
	if err != nil {
		return respondError(c, err)
	}

	pair, err := h.jwt.Generate(user)
	if err != nil {
		return respondError(c, err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("user registered")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":   userView(user),
		"tokens": pair,
	})
}

// Login verifies credentials and returns a token pair.
//
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var form models.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, "invalid request body")
	}
	if form.Email == "" || form.Password == "" {
		return badRequest(c, "email and password are required")
	}

	user, err := h.authService.Authenticate(c.Context(), form.Email, form.Password)
	if err != nil {
		return respondError(c, err)
	}

	pair, err := h.jwt.Generate(user)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":   userView(user),
		"tokens": pair,
	})
}

// Refresh exchanges a valid refresh token for a fresh token pair.
//
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.BodyParser(&body); err != nil || body.RefreshToken == "" {
		return badRequest(c, "refresh token is required")
	}

	claims, err := h.jwt.ValidateRefresh(body.RefreshToken)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid or expired refresh token",
		})
	}

	// Re-load the user so a deleted account cannot keep minting tokens.
	user, err := h.authService.GetUser(c.Context(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}

	pair, err := h.jwt.Generate(user)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"tokens": pair})
}

func userView(user *models.User) fiber.Map {
	return fiber.Map{
		"id":        user.ID,
		"email":     user.Email,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
	}
}
