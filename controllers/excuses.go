package controllers

import (
	"errors"

	"routeerp_go/middleware"
	"routeerp_go/services"

	"github.com/gofiber/fiber/v2"
)

type ExcuseController struct {
	excuses *services.ExcuseService
}

func NewExcuseController(excuses *services.ExcuseService) *ExcuseController {
	return &ExcuseController{excuses: excuses}
}

// GetExcuses lists every excuse, optionally only those of ?student_id=.
func (ec *ExcuseController) GetExcuses(c *fiber.Ctx) error {
	var (
		excuses interface{}
		err     error
	)
	if studentID := c.Query("student_id"); studentID != "" {
		excuses, err = ec.excuses.ByStudent(c.UserContext(), studentID)
	} else {
		excuses, err = ec.excuses.List(c.UserContext())
	}
	if err != nil {
		return respondError(c, err, "Failed to fetch excuses")
	}
	return c.JSON(fiber.Map{"excuses": excuses})
}

func (ec *ExcuseController) GetPendingExcuses(c *fiber.Ctx) error {
	excuses, err := ec.excuses.Pending(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to fetch pending excuses")
	}
	return c.JSON(fiber.Map{"excuses": excuses, "total": len(excuses)})
}

// UpdateExcuseStatus approves or rejects a pending excuse.
func (ec *ExcuseController) UpdateExcuseStatus(c *fiber.Ctx) error {
	reviewer, err := middleware.GetCurrentUser(c)
	if err != nil {
		return respondError(c, services.ErrNotAuthenticated, "Failed to review excuse")
	}
	var req services.ReviewInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	excuse, err := ec.excuses.UpdateStatus(c.UserContext(), reviewer, c.Params("id"), req)
	if errors.Is(err, services.ErrExcuseAlreadyReviewed) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":  err.Error(),
			"excuse": excuse,
		})
	}
	if err != nil {
		return respondError(c, err, "Failed to review excuse")
	}
	return c.JSON(fiber.Map{
		"message": "Excuse " + excuse.Status,
		"excuse":  excuse,
	})
}

// GetMyExcuses lists the caller's own excuses.
func (ec *ExcuseController) GetMyExcuses(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return respondError(c, services.ErrNotAuthenticated, "Failed to fetch excuses")
	}
	excuses, err := ec.excuses.ByStudent(c.UserContext(), user.ID)
	if err != nil {
		return respondError(c, err, "Failed to fetch excuses")
	}
	return c.JSON(fiber.Map{"excuses": excuses})
}

func (ec *ExcuseController) SubmitExcuse(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return respondError(c, services.ErrNotAuthenticated, "Failed to submit excuse")
	}
	var req services.ExcuseInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	excuse, err := ec.excuses.Submit(c.UserContext(), user, req)
	if err != nil {
		return respondError(c, err, "Failed to submit excuse")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Excuse submitted successfully",
		"excuse":  excuse,
	})
}
