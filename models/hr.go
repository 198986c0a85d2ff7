package models

import "time"

// HR excuse categories.
const (
	HRExcuseSick     = "sick"
	HRExcusePersonal = "personal"
	HRExcuseVacation = "vacation"
	HRExcuseOther    = "other"
)

// Employee is a staff member tracked by HR. It is not linked to User.
type Employee struct {
	BaseModel
	Name       string    `json:"name" gorm:"size:255;not null"`
	Email      string    `json:"email" gorm:"size:255"`
	Role       string    `json:"role" gorm:"size:20;not null;index"` // instructor, mentor
	Department string    `json:"department" gorm:"size:100"`
	HourlyRate float64   `json:"hourly_rate" gorm:"not null"`
	TotalHours float64   `json:"total_hours" gorm:"not null"`
	JoinDate   time.Time `json:"join_date"`
	IsActive   bool      `json:"is_active" gorm:"not null"`
}

// HRExcuse is an employee absence request reviewed by HR.
type HRExcuse struct {
	BaseModel
	EmployeeID   string     `json:"employee_id" gorm:"type:varchar(36);not null;index"`
	EmployeeName string     `json:"employee_name" gorm:"size:255"`
	Type         string     `json:"type" gorm:"size:20;not null"`
	Reason       string     `json:"reason" gorm:"size:255;not null"`
	Date         time.Time  `json:"date"`
	Description  string     `json:"description" gorm:"type:text"`
	Status       string     `json:"status" gorm:"size:20;not null;default:'pending';index"`
	SubmittedAt  time.Time  `json:"submitted_at" gorm:"index"`
	ReviewedBy   string     `json:"reviewed_by,omitempty" gorm:"size:255"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes  string     `json:"review_notes,omitempty" gorm:"type:text"`
}

func (HRExcuse) TableName() string {
	return "hr_excuses"
}

// WorkLog records hours worked by an employee on a given day.
type WorkLog struct {
	BaseModel
	EmployeeID  string    `json:"employee_id" gorm:"type:varchar(36);not null;index"`
	Date        time.Time `json:"date" gorm:"index"`
	HoursWorked float64   `json:"hours_worked" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	SessionType string    `json:"session_type,omitempty" gorm:"size:50"`
}

// SalaryLine is one row of the payroll report.
type SalaryLine struct {
	EmployeeID string  `json:"employee_id"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	Department string  `json:"department"`
	Hours      float64 `json:"hours"`
	HourlyRate float64 `json:"hourly_rate"`
	Salary     float64 `json:"salary"`
}
