package controllers

import (
	"routeerp_go/middleware"
	"routeerp_go/services"

	"github.com/gofiber/fiber/v2"
)

// SettingsController lets users manage their own profile.
type SettingsController struct {
	auth *services.AuthService
}

func NewSettingsController(auth *services.AuthService) *SettingsController {
	return &SettingsController{auth: auth}
}

// ProfileRequest holds the fields a user may change about themselves.
type ProfileRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Department *string `json:"department"`
}

type PasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (sc *SettingsController) GetProfile(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return respondError(c, services.ErrNotAuthenticated, "Failed to load profile")
	}
	profile, err := sc.auth.GetUser(c.UserContext(), user.ID)
	if err != nil {
		return respondError(c, err, "Failed to load profile")
	}
	return c.JSON(fiber.Map{"user": profile})
}

// UpdateProfile changes the caller's own name, email and department. Role and
// activation stay with the admin area.
func (sc *SettingsController) UpdateProfile(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return respondError(c, services.ErrNotAuthenticated, "Failed to update profile")
	}
	var req ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	updated, err := sc.auth.UpdateUser(c.UserContext(), user.ID, services.UserPatch{
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
	})
	if err != nil {
		return respondError(c, err, "Failed to update profile")
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    updated,
	})
}

func (sc *SettingsController) ChangePassword(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return respondError(c, services.ErrNotAuthenticated, "Failed to change password")
	}
	var req PasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if err := sc.auth.ChangePassword(c.UserContext(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return respondError(c, err, "Failed to change password")
	}
	middleware.LogActivity(c, "PASSWORD_CHANGE", "users", user.ID, nil)
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}
