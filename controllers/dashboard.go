package controllers

import (
	"routeerp_go/middleware"
	"routeerp_go/services"

	"github.com/gofiber/fiber/v2"
)

type DashboardController struct {
	dashboards *services.DashboardService
}

func NewDashboardController(dashboards *services.DashboardService) *DashboardController {
	return &DashboardController{dashboards: dashboards}
}

func (dc *DashboardController) Admin(c *fiber.Ctx) error {
	summary, err := dc.dashboards.Admin(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to load dashboard")
	}
	return c.JSON(summary)
}

// Staff serves both the instructor and the mentor dashboard.
func (dc *DashboardController) Staff(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return respondError(c, services.ErrNotAuthenticated, "Failed to load dashboard")
	}
	summary, err := dc.dashboards.Staff(c.UserContext(), user)
	if err != nil {
		return respondError(c, err, "Failed to load dashboard")
	}
	return c.JSON(summary)
}

func (dc *DashboardController) Student(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return respondError(c, services.ErrNotAuthenticated, "Failed to load dashboard")
	}
	summary, err := dc.dashboards.Student(c.UserContext(), user)
	if err != nil {
		return respondError(c, err, "Failed to load dashboard")
	}
	return c.JSON(summary)
}

func (dc *DashboardController) HR(c *fiber.Ctx) error {
	summary, err := dc.dashboards.HR(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to load dashboard")
	}
	return c.JSON(summary)
}
