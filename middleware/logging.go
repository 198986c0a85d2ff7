package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"routeerp_go/models"
	"routeerp_go/services"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

const activityLogsKey = "activity_logs"

// roleAreas are the path prefixes under /api that group routes by role.
var roleAreas = map[string]bool{
	models.RoleAdmin:      true,
	models.RoleInstructor: true,
	models.RoleMentor:     true,
	models.RoleStudent:    true,
	"hr":                  true,
}

// LoggerMiddleware logs HTTP requests
func LoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Process request
		err := c.Next()

		// Log request
		duration := time.Since(start)
		status := c.Response().StatusCode()

		entry := logrus.WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"duration":   duration.String(),
			"ip":         c.IP(),
			"user_agent": c.Get("User-Agent"),
		})
		if status >= fiber.StatusInternalServerError {
			entry.Warn("HTTP Request")
		} else {
			entry.Info("HTTP Request")
		}

		return err
	}
}

// LogActivity records an audit entry for the current request. The write runs
// in the background and never fails the request.
func LogActivity(c *fiber.Ctx, action, resource, resourceID string, details interface{}) {
	logs, ok := c.Locals(activityLogsKey).(*services.ActivityLogService)
	if !ok || logs == nil {
		return
	}

	var userID string
	if user, err := GetCurrentUser(c); err == nil {
		userID = user.ID
	}

	payload := map[string]interface{}{
		"method":      c.Method(),
		"path":        c.Path(),
		"status_code": c.Response().StatusCode(),
		"request_id":  c.Get(fiber.HeaderXRequestID),
	}
	if details != nil {
		payload["details"] = details
	}
	var detailsJSON models.JSON
	if data, err := json.Marshal(payload); err == nil {
		detailsJSON = data
	}

	// fiber reuses its buffers once the handler returns
	entry := models.ActivityLog{
		UserID:     userID,
		Action:     action,
		Resource:   fiberutils.CopyString(resource),
		ResourceID: fiberutils.CopyString(resourceID),
		Details:    detailsJSON,
		IPAddress:  fiberutils.CopyString(c.IP()),
		UserAgent:  fiberutils.CopyString(c.Get(fiber.HeaderUserAgent)),
		CreatedAt:  time.Now(),
	}

	go func(al models.ActivityLog) {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).Error("panic recovered in LogActivity goroutine")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := logs.Record(ctx, al); err != nil {
			logrus.WithError(err).Error("Failed to save activity log")
		}
	}(entry)
}

// LogActivityMiddleware makes logs available to LogActivity and records every
// successful mutating request.
func LogActivityMiddleware(logs *services.ActivityLogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(activityLogsKey, logs)

		// Skip logging for GET requests and auth endpoints
		if c.Method() == fiber.MethodGet || strings.Contains(c.Path(), "/auth/") {
			return c.Next()
		}

		// Process request
		err := c.Next()

		// Determine action based on method
		var action string
		switch c.Method() {
		case fiber.MethodPost:
			action = "CREATE"
		case fiber.MethodPut, fiber.MethodPatch:
			action = "UPDATE"
		case fiber.MethodDelete:
			action = "DELETE"
		default:
			return err
		}

		// Log only if request was successful
		if err == nil && c.Response().StatusCode() < 400 {
			LogActivity(c, action, ResourceFromPath(c.Path()), c.Params("id"), nil)
		}

		return err
	}
}

// ResourceFromPath names the resource of an /api path, skipping the role area:
// /api/admin/users/42 is "users", /api/hr/excuses is "hr.excuses".
func ResourceFromPath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 0 && parts[0] == "api" {
		parts = parts[1:]
	}
	if len(parts) == 0 {
		return ""
	}
	if roleAreas[parts[0]] && len(parts) > 1 {
		if parts[0] == "hr" {
			return "hr." + parts[1]
		}
		return parts[1]
	}
	return parts[0]
}
