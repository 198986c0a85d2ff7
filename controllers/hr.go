package controllers

import (
	"errors"
	"fmt"
	"time"

	"routeerp_go/middleware"
	"routeerp_go/services"

	"github.com/gofiber/fiber/v2"
)

// HRController serves the HR area: employees, work logs, HR excuses and payroll.
type HRController struct {
	hr      *services.HRService
	exports *services.ExportService
}

func NewHRController(hr *services.HRService, exports *services.ExportService) *HRController {
	return &HRController{hr: hr, exports: exports}
}

func (hc *HRController) GetEmployees(c *fiber.Ctx) error {
	employees, err := hc.hr.ListEmployees(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to fetch employees")
	}
	return c.JSON(fiber.Map{"employees": employees, "total": len(employees)})
}

func (hc *HRController) GetEmployee(c *fiber.Ctx) error {
	employee, err := hc.hr.GetEmployee(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to fetch employee")
	}
	return c.JSON(fiber.Map{"employee": employee})
}

func (hc *HRController) CreateEmployee(c *fiber.Ctx) error {
	var req services.EmployeeInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	employee, err := hc.hr.AddEmployee(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, "Failed to create employee")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Employee created successfully",
		"employee": employee,
	})
}

func (hc *HRController) UpdateEmployee(c *fiber.Ctx) error {
	var req services.EmployeePatch
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	employee, err := hc.hr.UpdateEmployee(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err, "Failed to update employee")
	}
	return c.JSON(fiber.Map{
		"message":  "Employee updated successfully",
		"employee": employee,
	})
}

func (hc *HRController) DeleteEmployee(c *fiber.Ctx) error {
	if err := hc.hr.DeleteEmployee(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "Failed to delete employee")
	}
	return c.JSON(fiber.Map{"message": "Employee deleted successfully"})
}

// GetEmployeeSalary returns logged hours times hourly rate. Unknown ids earn 0.
func (hc *HRController) GetEmployeeSalary(c *fiber.Ctx) error {
	id := c.Params("id")
	salary, err := hc.hr.CalculateSalary(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Failed to calculate salary")
	}
	return c.JSON(fiber.Map{"employee_id": id, "salary": salary})
}

func (hc *HRController) GetWorkLogs(c *fiber.Ctx) error {
	logs, err := hc.hr.ListWorkLogs(c.UserContext(), c.Query("employee_id"))
	if err != nil {
		return respondError(c, err, "Failed to fetch work logs")
	}
	return c.JSON(fiber.Map{"work_logs": logs, "total": len(logs)})
}

func (hc *HRController) CreateWorkLog(c *fiber.Ctx) error {
	var req services.WorkLogInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	entry, err := hc.hr.AddWorkLog(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, "Failed to create work log")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Work log created successfully",
		"work_log": entry,
	})
}

func (hc *HRController) UpdateWorkLog(c *fiber.Ctx) error {
	var req services.WorkLogInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	entry, err := hc.hr.UpdateWorkLog(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, err, "Failed to update work log")
	}
	return c.JSON(fiber.Map{
		"message":  "Work log updated successfully",
		"work_log": entry,
	})
}

func (hc *HRController) DeleteWorkLog(c *fiber.Ctx) error {
	if err := hc.hr.DeleteWorkLog(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "Failed to delete work log")
	}
	return c.JSON(fiber.Map{"message": "Work log deleted successfully"})
}

func (hc *HRController) GetExcuses(c *fiber.Ctx) error {
	excuses, err := hc.hr.ListExcuses(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to fetch HR excuses")
	}
	return c.JSON(fiber.Map{"excuses": excuses})
}

func (hc *HRController) GetPendingExcuses(c *fiber.Ctx) error {
	excuses, err := hc.hr.PendingExcuses(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to fetch pending HR excuses")
	}
	return c.JSON(fiber.Map{"excuses": excuses, "total": len(excuses)})
}

func (hc *HRController) CreateExcuse(c *fiber.Ctx) error {
	var req services.HRExcuseInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	excuse, err := hc.hr.SubmitExcuse(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, "Failed to create HR excuse")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "HR excuse created successfully",
		"excuse":  excuse,
	})
}

func (hc *HRController) UpdateExcuseStatus(c *fiber.Ctx) error {
	reviewer, err := middleware.GetCurrentUser(c)
	if err != nil {
		return respondError(c, services.ErrNotAuthenticated, "Failed to review HR excuse")
	}
	var req services.ReviewInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	excuse, err := hc.hr.UpdateExcuseStatus(c.UserContext(), reviewer, c.Params("id"), req)
	if errors.Is(err, services.ErrExcuseAlreadyReviewed) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":  err.Error(),
			"excuse": excuse,
		})
	}
	if err != nil {
		return respondError(c, err, "Failed to review HR excuse")
	}
	return c.JSON(fiber.Map{
		"message": "HR excuse " + excuse.Status,
		"excuse":  excuse,
	})
}

func (hc *HRController) GetSalaryReport(c *fiber.Ctx) error {
	lines, err := hc.hr.SalaryReport(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to build salary report")
	}
	var total float64
	for _, l := range lines {
		total += l.Salary
	}
	return c.JSON(fiber.Map{"lines": lines, "total_salary": total})
}

// ExportSalaryWorkbook downloads the payroll as XLSX, or archives it to S3 with ?archive=true.
func (hc *HRController) ExportSalaryWorkbook(c *fiber.Ctx) error {
	if c.QueryBool("archive") && !hc.exports.CanArchive() {
		return respondError(c, services.ErrArchiveDisabled, "Failed to archive report")
	}
	data, err := hc.exports.SalaryWorkbook(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to build salary workbook")
	}
	name := fmt.Sprintf("salaries-%s.xlsx", time.Now().Format("2006-01-02"))
	return hc.deliver(c, name, services.ContentTypeXLSX, data)
}

// ExportWorkLogs downloads work logs as CSV, or archives them with ?archive=true.
func (hc *HRController) ExportWorkLogs(c *fiber.Ctx) error {
	if c.QueryBool("archive") && !hc.exports.CanArchive() {
		return respondError(c, services.ErrArchiveDisabled, "Failed to archive report")
	}
	data, err := hc.exports.WorkLogsCSV(c.UserContext(), c.Query("employee_id"))
	if err != nil {
		return respondError(c, err, "Failed to build work log export")
	}
	name := fmt.Sprintf("worklogs-%s.csv", time.Now().Format("2006-01-02"))
	return hc.deliver(c, name, services.ContentTypeCSV, data)
}

func (hc *HRController) deliver(c *fiber.Ctx, name, contentType string, data []byte) error {
	if c.QueryBool("archive") {
		url, err := hc.exports.Archive(c.UserContext(), name, contentType, data)
		if err != nil {
			return respondError(c, err, "Failed to archive report")
		}
		middleware.LogActivity(c, "EXPORT", "hr.reports", name, fiber.Map{"url": url})
		return c.JSON(fiber.Map{"message": "Report archived", "url": url})
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Send(data)
}
