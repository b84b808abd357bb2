package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"wink/models"
	"wink/services"
	"wink/utils"
)

// respondError maps service errors onto HTTP responses. Anything unexpected
// is logged and reported, and the client gets a generic 500.
func respondError(c *fiber.Ctx, log *logrus.Entry, err error, notFound, forbidden string) error {
	if verr, ok := services.AsValidationError(err); ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", verr.Fields)
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, notFound, nil)
	case errors.Is(err, services.ErrForbidden):
		return utils.ErrorResponse(c, fiber.StatusForbidden, forbidden, nil)
	case errors.Is(err, services.ErrAuthenticationFailed):
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid email or password", nil)
	}

	utils.LogError(log, "request_failed", err, map[string]interface{}{
		"method":     c.Method(),
		"path":       c.Path(),
		"request_id": c.Locals("requestid"),
	})
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", nil)
}

// parseBody decodes a JSON body if one was sent; an empty body leaves out
// untouched. When it returns false the 400 response has already been written.
func parseBody(c *fiber.Ctx, out interface{}) (bool, error) {
	if len(c.Body()) == 0 {
		return true, nil
	}
	if err := c.BodyParser(out); err != nil {
		return false, utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}
	return true, nil
}

func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
