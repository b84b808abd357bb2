package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"wink/utils"
)

// ErrorHandler renders errors that escape the handlers, including fiber's
// own routing and body-limit errors, in the API error envelope.
func ErrorHandler(log *logrus.Entry) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return utils.ErrorResponse(c, fe.Code, fe.Message, nil)
		}

		utils.LogError(log, "unhandled_error", err, map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"request_id": c.Locals("requestid"),
		})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", nil)
	}
}
