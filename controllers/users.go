package controllers

import (
	"strconv"

	"routeerp_go/middleware"
	"routeerp_go/services"
	"routeerp_go/utils"

	"github.com/gofiber/fiber/v2"
)

// UserController manages the user directory (admin only).
type UserController struct {
	auth  *services.AuthService
	notes *services.NoteBook
}

func NewUserController(auth *services.AuthService, notes *services.NoteBook) *UserController {
	return &UserController{auth: auth, notes: notes}
}

// GetUsers returns the directory, optionally filtered by role and is_active
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	filter := services.UserFilter{Role: c.Query("role")}
	if filter.Role != "" && !utils.IsValidRole(filter.Role) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "role must be one of admin, instructor, mentor, student",
		})
	}
	if active := c.Query("is_active"); active != "" {
		value, err := strconv.ParseBool(active)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "is_active must be true or false",
			})
		}
		filter.Active = &value
	}

	users, err := uc.auth.ListUsers(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err, "Failed to fetch users")
	}
	return c.JSON(fiber.Map{
		"users": users,
		"total": len(users),
	})
}

func (uc *UserController) GetUser(c *fiber.Ctx) error {
	user, err := uc.auth.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to fetch user")
	}
	return c.JSON(fiber.Map{"user": user})
}

func (uc *UserController) CreateUser(c *fiber.Ctx) error {
	var req services.NewUserInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	user, err := uc.auth.AddUser(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, "Failed to create user")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    user,
	})
}

func (uc *UserController) UpdateUser(c *fiber.Ctx) error {
	var req services.UserPatch
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	user, err := uc.auth.UpdateUser(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err, "Failed to update user")
	}
	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"user":    user,
	})
}

// DeleteUser removes a user and logs out all of their sessions, the caller's included.
func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := uc.auth.DeleteUser(c.UserContext(), id); err != nil {
		return respondError(c, err, "Failed to delete user")
	}
	uc.notes.Forget(id)

	self := false
	if current, err := middleware.GetCurrentUser(c); err == nil {
		self = current.ID == id
	}
	return c.JSON(fiber.Map{
		"message":    "User deleted successfully",
		"logged_out": self,
	})
}
