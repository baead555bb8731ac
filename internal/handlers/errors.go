// Package handlers implements HTTP request handlers for the Migoculto API.
// This file maps service-layer errors onto HTTP statuses so the handlers
// stay free of per-endpoint error switches.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/caiofrota/migoculto/internal/services"
)

// respondError translates a service error into a JSON error response.
// Anything outside the service error taxonomy is logged and becomes a 500
// with a generic body, so internal details never leak to clients.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrItemNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrWrongPassword):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrStateConflict),
		errors.Is(err, services.ErrAlreadyMember):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrInsufficientMembers),
		errors.Is(err, services.ErrAssignmentUnsatisfiable):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidCredentials):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrEmailExists):
		status = fiber.StatusConflict
	}

	if status == fiber.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("request failed")
		return c.Status(status).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// badRequest reports a malformed body or failed validation.
func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
