package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles known to the user directory.
const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleMentor     = "mentor"
	RoleStudent    = "student"
)

// Review states shared by student and HR excuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// NewID returns a time-ordered UUIDv7, falling back to a random UUID.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Base model with common fields
type BaseModel struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns an id when the caller did not supply one.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = NewID()
	}
	return nil
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
	case string:
		*j = append((*j)[0:0], v...)
	}
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j.IsNull() {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// User is an entry of the directory. Email is intentionally not unique.
type User struct {
	BaseModel
	Email      string    `json:"email" gorm:"size:255;not null;index"`
	Password   string    `json:"-" gorm:"size:255;not null"`
	Name       string    `json:"name" gorm:"size:255;not null"`
	Role       string    `json:"role" gorm:"size:20;not null;index"`
	Department string    `json:"department,omitempty" gorm:"size:100"`
	JoinDate   time.Time `json:"join_date"`
	IsActive   bool      `json:"is_active" gorm:"not null"`
}

// IsAdmin reports whether the user may review excuses and manage the directory.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Excuse is a student's request to justify an absence.
type Excuse struct {
	BaseModel
	StudentID   string     `json:"student_id" gorm:"type:varchar(36);not null;index"`
	StudentName string     `json:"student_name" gorm:"size:255"`
	Reason      string     `json:"reason" gorm:"size:255;not null"`
	Date        time.Time  `json:"date"`
	Description string     `json:"description" gorm:"type:text"`
	Status      string     `json:"status" gorm:"size:20;not null;default:'pending';index"`
	SubmittedAt time.Time  `json:"submitted_at" gorm:"index"`
	ReviewerID  string     `json:"reviewer_id,omitempty" gorm:"type:varchar(36)"`
	ReviewedBy  string     `json:"reviewed_by,omitempty" gorm:"size:255"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes string     `json:"review_notes,omitempty" gorm:"type:text"`
}

// IsReviewed reports whether the excuse already reached a terminal state.
func (e *Excuse) IsReviewed() bool {
	return e.Status != StatusPending
}

// Group is a cohort of students sharing an instructor, a mentor and a weekly schedule.
type Group struct {
	BaseModel
	Name         string          `json:"name" gorm:"size:255;not null"`
	Subject      string          `json:"subject" gorm:"size:255"`
	InstructorID string          `json:"instructor_id" gorm:"type:varchar(36);index"`
	MentorID     string          `json:"mentor_id" gorm:"type:varchar(36);index"`
	Color        string          `json:"color" gorm:"size:20"`
	IsActive     bool            `json:"is_active" gorm:"not null"`
	Schedules    []GroupSchedule `json:"schedules" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	Students     []User          `json:"students,omitempty" gorm:"many2many:group_students"`
}

func (Group) TableName() string {
	return "student_groups"
}

// GroupSchedule is one recurring weekly slot of a group, e.g. monday 09:00-10:30.
type GroupSchedule struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	GroupID string `json:"group_id" gorm:"type:varchar(36);not null;index"`
	Day     string `json:"day" gorm:"size:20;not null"`
	Time    string `json:"time" gorm:"size:20;not null"`
	Room    string `json:"room" gorm:"size:100"`
}

// Log model for activity tracking
type ActivityLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"type:varchar(36);index"`
	Action     string    `json:"action" gorm:"size:100;not null;index"`
	Resource   string    `json:"resource" gorm:"size:100;not null;index"`
	ResourceID string    `json:"resource_id" gorm:"size:64"`
	Details    JSON      `json:"details" gorm:"type:json"`
	IPAddress  string    `json:"ip_address" gorm:"size:45"`
	UserAgent  string    `json:"user_agent" gorm:"size:500"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}
