package controllers

import (
	"time"

	"routeerp_go/middleware"
	"routeerp_go/services"

	"github.com/gofiber/fiber/v2"
)

type CalendarController struct {
	calendar *services.CalendarService
}

func NewCalendarController(calendar *services.CalendarService) *CalendarController {
	return &CalendarController{calendar: calendar}
}

// GetCalendar returns the caller's generated sessions and notes.
func (cc *CalendarController) GetCalendar(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return respondError(c, services.ErrNotAuthenticated, "Failed to build calendar")
	}
	view, err := cc.calendar.Calendar(c.UserContext(), user, time.Now())
	if err != nil {
		return respondError(c, err, "Failed to build calendar")
	}
	return c.JSON(view)
}

func (cc *CalendarController) GetNotes(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return respondError(c, services.ErrNotAuthenticated, "Failed to fetch notes")
	}
	return c.JSON(fiber.Map{"notes": cc.calendar.Notes().List(user.ID)})
}

func (cc *CalendarController) CreateNote(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return respondError(c, services.ErrNotAuthenticated, "Failed to create note")
	}
	var req services.NoteInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	note, err := cc.calendar.Notes().Add(user.ID, req)
	if err != nil {
		return respondError(c, err, "Failed to create note")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"note": note})
}

func (cc *CalendarController) DeleteNote(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return respondError(c, services.ErrNotAuthenticated, "Failed to delete note")
	}
	if err := cc.calendar.Notes().Delete(user.ID, c.Params("id")); err != nil {
		return respondError(c, err, "Failed to delete note")
	}
	return c.JSON(fiber.Map{"message": "Note deleted successfully"})
}
