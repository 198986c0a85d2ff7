package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"routeerp_go/models"
	"routeerp_go/utils"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// Export content types.
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv"
)

var ErrArchiveDisabled = errors.New("report archive is not configured")

// ReportArchiver uploads a finished export and returns where it lives.
type ReportArchiver interface {
	UploadReport(ctx context.Context, name, contentType string, data []byte) (string, error)
}

const salarySheet = "Salaries"

// ExportService renders HR data as downloadable files.
type ExportService struct {
	hr       *HRService
	archiver ReportArchiver
}

// NewExportService creates the exporter. archiver may be nil when S3 is not configured.
func NewExportService(hr *HRService, archiver ReportArchiver) *ExportService {
	return &ExportService{hr: hr, archiver: archiver}
}

// CanArchive reports whether exports can be uploaded.
func (s *ExportService) CanArchive() bool {
	return s.archiver != nil
}

// SalaryWorkbook writes one row per employee plus a total row.
func (s *ExportService) SalaryWorkbook(ctx context.Context) ([]byte, error) {
	lines, err := s.hr.SalaryReport(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close workbook")
		}
	}()

	if err := f.SetSheetName("Sheet1", salarySheet); err != nil {
		return nil, err
	}
	header := []interface{}{"Employee ID", "Name", "Role", "Department", "Hours", "Hourly Rate", "Salary"}
	if err := f.SetSheetRow(salarySheet, "A1", &header); err != nil {
		return nil, err
	}

	var totalHours, totalSalary float64
	for i, line := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{line.EmployeeID, line.Name, line.Role, line.Department, line.Hours, line.HourlyRate, line.Salary}
		if err := f.SetSheetRow(salarySheet, cell, &row); err != nil {
			return nil, err
		}
		totalHours += line.Hours
		totalSalary += line.Salary
	}

	totalCell, err := excelize.CoordinatesToCellName(1, len(lines)+2)
	if err != nil {
		return nil, err
	}
	total := []interface{}{"", "Total", "", "", totalHours, "", totalSalary}
	if err := f.SetSheetRow(salarySheet, totalCell, &total); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(salarySheet, "A1", "G1", bold); err != nil {
		return nil, err
	}
	lastCell, _ := excelize.CoordinatesToCellName(7, len(lines)+2)
	if err := f.SetCellStyle(salarySheet, totalCell, lastCell, bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(salarySheet, "A", "G", 18); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// WorkLogsCSV writes work logs, optionally for one employee.
func (s *ExportService) WorkLogsCSV(ctx context.Context, employeeID string) ([]byte, error) {
	logs, err := s.hr.ListWorkLogs(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "employee_id", "date", "hours_worked", "session_type", "description"}); err != nil {
		return nil, err
	}
	for _, l := range logs {
		if err := w.Write([]string{
			l.ID,
			l.EmployeeID,
			l.Date.Format(utils.DateLayout),
			strconv.FormatFloat(l.HoursWorked, 'f', -1, 64),
			l.SessionType,
			l.Description,
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Archive uploads an export when an archiver is configured.
func (s *ExportService) Archive(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if s.archiver == nil {
		return "", ErrArchiveDisabled
	}
	url, err := s.archiver.UploadReport(ctx, name, contentType, data)
	if err != nil {
		return "", err
	}
	logrus.WithFields(logrus.Fields{"name": name, "url": url, "bytes": len(data)}).Info("Report archived")
	return url, nil
}

// ActivityLogsCSV writes activity log rows.
func ActivityLogsCSV(logs []models.ActivityLog) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "created_at", "user_id", "action", "resource", "resource_id", "ip_address", "details"}); err != nil {
		return nil, err
	}
	for _, l := range logs {
		details := ""
		if !l.Details.IsNull() {
			details = string(l.Details)
		}
		if err := w.Write([]string{
			strconv.FormatUint(uint64(l.ID), 10),
			l.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			l.UserID,
			l.Action,
			l.Resource,
			l.ResourceID,
			l.IPAddress,
			details,
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
