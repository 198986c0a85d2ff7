package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"routeerp_go/models"
	"routeerp_go/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrWorkLogNotFound  = errors.New("work log not found")
)

// EmployeeInput creates an employee.
type EmployeeInput struct {
	Name       string  `json:"name" validate:"required,min=2,max=255"`
	Email      string  `json:"email" validate:"omitempty,email"`
	Role       string  `json:"role" validate:"required,oneof=instructor mentor"`
	Department string  `json:"department" validate:"max=100"`
	HourlyRate float64 `json:"hourly_rate" validate:"gte=0"`
	JoinDate   string  `json:"join_date" validate:"omitempty,datetime=2006-01-02"`
	IsActive   *bool   `json:"is_active"`
}

// EmployeePatch updates an employee; nil fields are kept.
type EmployeePatch struct {
	Name       *string  `json:"name" validate:"omitempty,min=2,max=255"`
	Email      *string  `json:"email" validate:"omitempty,email"`
	Role       *string  `json:"role" validate:"omitempty,oneof=instructor mentor"`
	Department *string  `json:"department" validate:"omitempty,max=100"`
	HourlyRate *float64 `json:"hourly_rate" validate:"omitempty,gte=0"`
	IsActive   *bool    `json:"is_active"`
}

// HRExcuseInput records an employee absence request.
type HRExcuseInput struct {
	EmployeeID  string `json:"employee_id" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=sick personal vacation other"`
	Reason      string `json:"reason" validate:"required,max=255"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Description string `json:"description" validate:"max=5000"`
}

// WorkLogInput creates or replaces a work log.
type WorkLogInput struct {
	EmployeeID  string  `json:"employee_id" validate:"required"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	HoursWorked float64 `json:"hours_worked" validate:"gt=0,max=24"`
	Description string  `json:"description" validate:"max=5000"`
	SessionType string  `json:"session_type" validate:"max=50"`
}

// HRService manages employees, their absence requests and their work logs.
type HRService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewHRService creates the HR workflow over db.
func NewHRService(db *gorm.DB) *HRService {
	return &HRService{db: db, now: time.Now}
}

// ListEmployees returns all employees ordered by name.
func (s *HRService) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

// GetEmployee fetches one employee.
func (s *HRService) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	var employee models.Employee
	if err := s.db.WithContext(ctx).First(&employee, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return &employee, nil
}

// AddEmployee stores a new employee with no hours yet.
func (s *HRService) AddEmployee(ctx context.Context, input EmployeeInput) (*models.Employee, error) {
	if err := utils.Validate(input); err != nil {
		return nil, err
	}
	joinDate := s.now()
	if input.JoinDate != "" {
		var err error
		if joinDate, err = utils.ParseDate(input.JoinDate); err != nil {
			return nil, utils.NewValidationError("join_date", "must match 2006-01-02")
		}
	}
	employee := models.Employee{
		BaseModel:  models.BaseModel{ID: models.NewID()},
		Name:       utils.SanitizeString(input.Name),
		Email:      utils.NormalizeEmail(input.Email),
		Role:       input.Role,
		Department: utils.SanitizeString(input.Department),
		HourlyRate: input.HourlyRate,
		JoinDate:   joinDate,
		IsActive:   input.IsActive == nil || *input.IsActive,
	}
	if err := s.db.WithContext(ctx).Create(&employee).Error; err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}
	return &employee, nil
}

// UpdateEmployee merges the patch into an employee.
func (s *HRService) UpdateEmployee(ctx context.Context, id string, patch EmployeePatch) (*models.Employee, error) {
	if err := utils.Validate(patch); err != nil {
		return nil, err
	}
	employee, err := s.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = utils.SanitizeString(*patch.Name)
	}
	if patch.Email != nil {
		updates["email"] = utils.NormalizeEmail(*patch.Email)
	}
	if patch.Role != nil {
		updates["role"] = *patch.Role
	}
	if patch.Department != nil {
		updates["department"] = utils.SanitizeString(*patch.Department)
	}
	if patch.HourlyRate != nil {
		updates["hourly_rate"] = *patch.HourlyRate
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}
	if len(updates) == 0 {
		return employee, nil
	}
	if err := s.db.WithContext(ctx).Model(employee).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}
	return s.GetEmployee(ctx, id)
}

// DeleteEmployee removes an employee. Work logs and excuses referencing it are kept.
func (s *HRService) DeleteEmployee(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Employee{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// ListExcuses returns HR excuses, most recent first.
func (s *HRService) ListExcuses(ctx context.Context) ([]models.HRExcuse, error) {
	var excuses []models.HRExcuse
	err := s.db.WithContext(ctx).Order("submitted_at DESC, id DESC").Find(&excuses).Error
	return excuses, err
}

// PendingExcuses returns the HR excuses awaiting review.
func (s *HRService) PendingExcuses(ctx context.Context) ([]models.HRExcuse, error) {
	var excuses []models.HRExcuse
	err := s.db.WithContext(ctx).Where("status = ?", models.StatusPending).
		Order("submitted_at DESC, id DESC").Find(&excuses).Error
	return excuses, err
}

// SubmitExcuse records a pending absence request for an employee.
func (s *HRService) SubmitExcuse(ctx context.Context, input HRExcuseInput) (*models.HRExcuse, error) {
	if err := utils.Validate(input); err != nil {
		return nil, err
	}
	date, err := utils.ParseDate(input.Date)
	if err != nil {
		return nil, utils.NewValidationError("date", "must match 2006-01-02")
	}
	employee, err := s.GetEmployee(ctx, input.EmployeeID)
	if err != nil {
		return nil, err
	}

	excuse := models.HRExcuse{
		BaseModel:    models.BaseModel{ID: models.NewID()},
		EmployeeID:   employee.ID,
		EmployeeName: employee.Name,
		Type:         input.Type,
		Reason:       utils.SanitizeString(input.Reason),
		Date:         date,
		Description:  utils.SanitizeString(input.Description),
		Status:       models.StatusPending,
		SubmittedAt:  s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&excuse).Error; err != nil {
		return nil, fmt.Errorf("failed to create hr excuse: %w", err)
	}
	return &excuse, nil
}

// UpdateExcuseStatus reviews a pending HR excuse exactly once.
func (s *HRService) UpdateExcuseStatus(ctx context.Context, reviewer *models.User, id string, input ReviewInput) (*models.HRExcuse, error) {
	if reviewer == nil {
		return nil, ErrNotAuthenticated
	}
	if !reviewer.IsAdmin() {
		return nil, ErrNotReviewer
	}
	if err := utils.Validate(input); err != nil {
		return nil, err
	}
	if !utils.IsReviewStatus(input.Status) {
		return nil, ErrInvalidStatus
	}

	res := s.db.WithContext(ctx).Model(&models.HRExcuse{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{
			"status":       input.Status,
			"reviewed_by":  reviewer.Name,
			"reviewed_at":  s.now(),
			"review_notes": utils.SanitizeString(input.Notes),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update hr excuse: %w", res.Error)
	}

	var excuse models.HRExcuse
	if err := s.db.WithContext(ctx).First(&excuse, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExcuseNotFound
		}
		return nil, err
	}
	if res.RowsAffected == 0 {
		return &excuse, ErrExcuseAlreadyReviewed
	}
	return &excuse, nil
}

// ListWorkLogs returns work logs, newest day first, optionally for one employee.
func (s *HRService) ListWorkLogs(ctx context.Context, employeeID string) ([]models.WorkLog, error) {
	query := s.db.WithContext(ctx).Order("date DESC, id DESC")
	if employeeID != "" {
		query = query.Where("employee_id = ?", employeeID)
	}
	var logs []models.WorkLog
	err := query.Find(&logs).Error
	return logs, err
}

// AddWorkLog records hours for an employee id. The id is not required to
// exist; the employee's total hours are refreshed when it does.
func (s *HRService) AddWorkLog(ctx context.Context, input WorkLogInput) (*models.WorkLog, error) {
	entry, err := s.buildWorkLog(input)
	if err != nil {
		return nil, err
	}
	entry.ID = models.NewID()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return refreshTotalHours(tx, entry.EmployeeID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add work log: %w", err)
	}
	return entry, nil
}

// UpdateWorkLog replaces a work log's fields.
func (s *HRService) UpdateWorkLog(ctx context.Context, id string, input WorkLogInput) (*models.WorkLog, error) {
	entry, err := s.buildWorkLog(input)
	if err != nil {
		return nil, err
	}

	var existing models.WorkLog
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWorkLogNotFound
			}
			return err
		}
		previousEmployee := existing.EmployeeID
		if err := tx.Model(&existing).Updates(map[string]interface{}{
			"employee_id":  entry.EmployeeID,
			"date":         entry.Date,
			"hours_worked": entry.HoursWorked,
			"description":  entry.Description,
			"session_type": entry.SessionType,
		}).Error; err != nil {
			return err
		}
		if previousEmployee != entry.EmployeeID {
			if err := refreshTotalHours(tx, previousEmployee); err != nil {
				return err
			}
		}
		return refreshTotalHours(tx, entry.EmployeeID)
	})
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

// DeleteWorkLog removes a work log and refreshes its employee's total hours.
func (s *HRService) DeleteWorkLog(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.WorkLog
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWorkLogNotFound
			}
			return err
		}
		if err := tx.Delete(&existing).Error; err != nil {
			return err
		}
		return refreshTotalHours(tx, existing.EmployeeID)
	})
}

// CalculateSalary returns the employee's logged hours times their hourly
// rate, or 0 when the employee is unknown.
func (s *HRService) CalculateSalary(ctx context.Context, employeeID string) (float64, error) {
	employee, err := s.GetEmployee(ctx, employeeID)
	if errors.Is(err, ErrEmployeeNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	hours, err := sumHours(s.db.WithContext(ctx), employeeID)
	if err != nil {
		return 0, err
	}
	return hours * employee.HourlyRate, nil
}

// SalaryReport computes the salary line of every employee.
func (s *HRService) SalaryReport(ctx context.Context) ([]models.SalaryLine, error) {
	employees, err := s.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}

	type total struct {
		EmployeeID string
		Hours      float64
	}
	var totals []total
	if err := s.db.WithContext(ctx).Model(&models.WorkLog{}).
		Select("employee_id, COALESCE(SUM(hours_worked), 0) AS hours").
		Group("employee_id").Scan(&totals).Error; err != nil {
		return nil, err
	}
	hoursByEmployee := make(map[string]float64, len(totals))
	for _, t := range totals {
		hoursByEmployee[t.EmployeeID] = t.Hours
	}

	lines := make([]models.SalaryLine, 0, len(employees))
	for _, e := range employees {
		hours := hoursByEmployee[e.ID]
		lines = append(lines, models.SalaryLine{
			EmployeeID: e.ID,
			Name:       e.Name,
			Role:       e.Role,
			Department: e.Department,
			Hours:      hours,
			HourlyRate: e.HourlyRate,
			Salary:     hours * e.HourlyRate,
		})
	}
	return lines, nil
}

func (s *HRService) buildWorkLog(input WorkLogInput) (*models.WorkLog, error) {
	if err := utils.Validate(input); err != nil {
		return nil, err
	}
	date, err := utils.ParseDate(input.Date)
	if err != nil {
		return nil, utils.NewValidationError("date", "must match 2006-01-02")
	}
	return &models.WorkLog{
		EmployeeID:  input.EmployeeID,
		Date:        date,
		HoursWorked: input.HoursWorked,
		Description: utils.SanitizeString(input.Description),
		SessionType: utils.SanitizeString(input.SessionType),
	}, nil
}

func sumHours(db *gorm.DB, employeeID string) (float64, error) {
	var hours float64
	err := db.Model(&models.WorkLog{}).
		Where("employee_id = ?", employeeID).
		Select("COALESCE(SUM(hours_worked), 0)").
		Scan(&hours).Error
	return hours, err
}

func refreshTotalHours(tx *gorm.DB, employeeID string) error {
	hours, err := sumHours(tx, employeeID)
	if err != nil {
		return err
	}
	res := tx.Model(&models.Employee{}).Where("id = ?", employeeID).Update("total_hours", hours)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		logrus.WithField("employee_id", employeeID).Debug("Work log references an unknown employee")
	}
	return nil
}
