package controllers

import (
	"strconv"
	"time"

	"routeerp_go/middleware"
	"routeerp_go/services"
	"routeerp_go/utils"

	"github.com/gofiber/fiber/v2"
)

type LogController struct {
	logs *services.ActivityLogService
}

func NewLogController(logs *services.ActivityLogService) *LogController {
	return &LogController{logs: logs}
}

// GetLogs retrieves paginated activity logs with filters
func (lc *LogController) GetLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	result, err := lc.logs.List(c.UserContext(), logFilter(c), page, limit)
	if err != nil {
		return respondError(c, err, "Failed to retrieve logs")
	}
	return c.JSON(result)
}

// ExportLogs exports logs to CSV format
func (lc *LogController) ExportLogs(c *fiber.Ctx) error {
	logs, err := lc.logs.All(c.UserContext(), logFilter(c))
	if err != nil {
		return respondError(c, err, "Failed to retrieve logs for export")
	}
	data, err := services.ActivityLogsCSV(logs)
	if err != nil {
		return respondError(c, err, "Failed to export logs")
	}

	c.Set(fiber.HeaderContentType, services.ContentTypeCSV)
	c.Set(fiber.HeaderContentDisposition, "attachment; filename=activity_logs.csv")
	return c.Send(data)
}

// FlushLogs writes queued entries to the database now
func (lc *LogController) FlushLogs(c *fiber.Ctx) error {
	saved, err := lc.logs.Flush(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to flush logs")
	}
	return c.JSON(fiber.Map{"message": "Cached logs flushing completed", "processed_count": saved})
}

// DeleteOldLogs removes logs older than ?days= (default 30)
func (lc *LogController) DeleteOldLogs(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "30"))
	if err != nil || days < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid days parameter",
		})
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	deleted, err := lc.logs.Prune(c.UserContext(), cutoff)
	if err != nil {
		return respondError(c, err, "Failed to delete old logs")
	}
	middleware.LogActivity(c, "PRUNE", "logs", "", fiber.Map{"deleted": deleted, "days": days})

	return c.JSON(fiber.Map{
		"message":       "Old logs deleted successfully",
		"deleted_count": deleted,
		"cutoff_date":   cutoff,
	})
}

func logFilter(c *fiber.Ctx) services.LogFilter {
	filter := services.LogFilter{
		UserID:   c.Query("user_id"),
		Action:   c.Query("action"),
		Resource: c.Query("resource"),
	}
	if startDate := c.Query("start_date"); startDate != "" {
		if parsed, err := utils.ParseDate(startDate); err == nil {
			filter.From = parsed
		}
	}
	if endDate := c.Query("end_date"); endDate != "" {
		if parsed, err := utils.ParseDate(endDate); err == nil {
			filter.To = parsed.Add(24 * time.Hour)
		}
	}
	return filter
}
