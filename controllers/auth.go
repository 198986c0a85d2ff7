package controllers

import (
	"routeerp_go/middleware"
	"routeerp_go/services"
	"routeerp_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates a user and returns a JWT bound to a new session
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if err := utils.Validate(req); err != nil {
		return respondError(c, err, "Login failed")
	}

	session, err := ac.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err, "Login failed")
	}

	token, err := middleware.GenerateToken(session)
	if err != nil {
		_ = ac.auth.Logout(c.UserContext(), session.ID)
		logrus.WithError(err).Error("Failed to generate token")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	c.Locals("user", &session.User)
	middleware.LogActivity(c, "LOGIN", "auth", session.User.ID, fiber.Map{
		"email": session.User.Email,
		"role":  session.User.Role,
	})

	return c.JSON(fiber.Map{
		"message":    "Login successful",
		"token":      token,
		"expires_at": session.ExpiresAt,
		"user":       session.User,
	})
}

// Logout ends the current session. The token stops working immediately.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	session, err := middleware.GetCurrentSession(c)
	if err != nil {
		return c.JSON(fiber.Map{"message": "Logged out successfully"})
	}

	if err := ac.auth.Logout(c.UserContext(), session.ID); err != nil {
		return respondError(c, err, "Failed to log out")
	}
	middleware.LogActivity(c, "LOGOUT", "auth", session.UserID, nil)

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// Me returns the user held by the current session
func (ac *AuthController) Me(c *fiber.Ctx) error {
	session, err := middleware.GetCurrentSession(c)
	if err != nil {
		return respondError(c, services.ErrNotAuthenticated, "Failed to load session")
	}
	return c.JSON(fiber.Map{
		"user":       session.User,
		"expires_at": session.ExpiresAt,
	})
}
