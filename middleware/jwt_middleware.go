package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"wink/services"
	"wink/utils"
)

// Protected resolves the bearer access token into a user and stores it in
// the request locals under "user" and "userID".
func Protected(auth *services.AuthService, log *logrus.Entry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Authorization required", nil)
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" || tokenParts[1] == "" {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid authorization format", nil)
		}

		user, err := auth.Authenticate(c.UserContext(), tokenParts[1])
		if err != nil {
			if errors.Is(err, services.ErrAuthenticationFailed) {
				return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid or expired token", nil)
			}
			utils.LogError(log, "authentication_failed", err, map[string]interface{}{
				"path": c.Path(),
			})
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", nil)
		}

		c.Locals("user", user)
		c.Locals("userID", user.ID)
		return c.Next()
	}
}
