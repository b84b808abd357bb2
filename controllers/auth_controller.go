package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"wink/services"
	"wink/utils"
)

type AuthController struct {
	Auth   *services.AuthService
	Logger *logrus.Entry
}

func NewAuthController(auth *services.AuthService, logger *logrus.Entry) *AuthController {
	return &AuthController{
		Auth:   auth,
		Logger: logger,
	}
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (ac *AuthController) Signup(c *fiber.Ctx) error {
	var req services.SignupInput
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	userID, err := ac.Auth.Signup(c.UserContext(), req)
	if err != nil {
		return respondError(c, ac.Logger, err, "", "")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user_id": userID,
	})
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	tokens, err := ac.Auth.Login(c.UserContext(), req)
	if err != nil {
		return respondError(c, ac.Logger, err, "", "")
	}
	return c.JSON(tokens)
}

func (ac *AuthController) RefreshToken(c *fiber.Ctx) error {
	var req RefreshTokenRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	if req.RefreshToken == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", utils.FieldErrors{
			"refresh_token": {"refresh_token is required"},
		})
	}

	tokens, err := ac.Auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return respondError(c, ac.Logger, err, "", "")
	}
	return c.JSON(tokens)
}

// Logout revokes every token issued to the caller
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	if err := ac.Auth.Logout(c.UserContext(), currentUser(c)); err != nil {
		return respondError(c, ac.Logger, err, "", "")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (ac *AuthController) GetCurrentUser(c *fiber.Ctx) error {
	return c.JSON(currentUser(c))
}
