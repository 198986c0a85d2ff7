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
	ErrNotAuthenticated      = errors.New("no authenticated user")
	ErrExcuseNotFound        = errors.New("excuse not found")
	ErrExcuseAlreadyReviewed = errors.New("excuse has already been reviewed")
	ErrInvalidStatus         = errors.New("status must be approved or rejected")
	ErrNotReviewer           = errors.New("only admins can review excuses")
)

// Notifier pushes workflow events to connected users.
type Notifier interface {
	NotifyUser(userID string, event string, payload interface{})
	NotifyRole(role string, event string, payload interface{})
}

// Push event names.
const (
	EventExcuseSubmitted = "excuse.submitted"
	EventExcuseReviewed  = "excuse.reviewed"
)

// ExcuseInput is what a student submits.
type ExcuseInput struct {
	Reason      string `json:"reason" validate:"required,max=255"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Description string `json:"description" validate:"max=5000"`
}

// ReviewInput is an admin decision on a pending excuse.
type ReviewInput struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes" validate:"max=5000"`
}

// ExcuseService runs the student excuse workflow.
type ExcuseService struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

// NewExcuseService creates the workflow. notifier may be nil.
func NewExcuseService(db *gorm.DB, notifier Notifier) *ExcuseService {
	return &ExcuseService{db: db, notifier: notifier, now: time.Now}
}

// Submit records a pending excuse on behalf of the logged-in student.
func (s *ExcuseService) Submit(ctx context.Context, student *models.User, input ExcuseInput) (*models.Excuse, error) {
	if student == nil {
		return nil, ErrNotAuthenticated
	}
	if err := utils.Validate(input); err != nil {
		return nil, err
	}
	date, err := utils.ParseDate(input.Date)
	if err != nil {
		return nil, utils.NewValidationError("date", "must match 2006-01-02")
	}

	excuse := models.Excuse{
		BaseModel:   models.BaseModel{ID: models.NewID()},
		StudentID:   student.ID,
		StudentName: student.Name,
		Reason:      utils.SanitizeString(input.Reason),
		Date:        date,
		Description: utils.SanitizeString(input.Description),
		Status:      models.StatusPending,
		SubmittedAt: s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&excuse).Error; err != nil {
		return nil, fmt.Errorf("failed to create excuse: %w", err)
	}

	logrus.WithFields(logrus.Fields{"excuse_id": excuse.ID, "student_id": student.ID}).Info("Excuse submitted")
	if s.notifier != nil {
		s.notifier.NotifyRole(models.RoleAdmin, EventExcuseSubmitted, excuse)
	}
	return &excuse, nil
}

// UpdateStatus applies a reviewer's decision to a pending excuse. A reviewed
// excuse keeps its first decision.
func (s *ExcuseService) UpdateStatus(ctx context.Context, reviewer *models.User, id string, input ReviewInput) (*models.Excuse, error) {
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
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsReviewed() {
		return current, ErrExcuseAlreadyReviewed
	}

	reviewedAt := s.now()
	res := s.db.WithContext(ctx).Model(&models.Excuse{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{
			"status":       input.Status,
			"reviewer_id":  reviewer.ID,
			"reviewed_by":  reviewer.Name,
			"reviewed_at":  reviewedAt,
			"review_notes": utils.SanitizeString(input.Notes),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update excuse: %w", res.Error)
	}

	excuse, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return excuse, ErrExcuseAlreadyReviewed
	}

	logrus.WithFields(logrus.Fields{
		"excuse_id":   id,
		"status":      input.Status,
		"reviewer_id": reviewer.ID,
	}).Info("Excuse reviewed")
	if s.notifier != nil {
		s.notifier.NotifyUser(excuse.StudentID, EventExcuseReviewed, excuse)
	}
	return excuse, nil
}

// Get fetches one excuse.
func (s *ExcuseService) Get(ctx context.Context, id string) (*models.Excuse, error) {
	var excuse models.Excuse
	if err := s.db.WithContext(ctx).First(&excuse, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExcuseNotFound
		}
		return nil, err
	}
	return &excuse, nil
}

// List returns every excuse, most recent first.
func (s *ExcuseService) List(ctx context.Context) ([]models.Excuse, error) {
	return s.find(ctx, s.db)
}

// ByStudent returns one student's excuses, most recent first.
func (s *ExcuseService) ByStudent(ctx context.Context, studentID string) ([]models.Excuse, error) {
	return s.find(ctx, s.db.Where("student_id = ?", studentID))
}

// Pending returns the excuses awaiting review, most recent first.
func (s *ExcuseService) Pending(ctx context.Context) ([]models.Excuse, error) {
	return s.find(ctx, s.db.Where("status = ?", models.StatusPending))
}

// CountByStatus tallies excuses per status, optionally for one student.
func (s *ExcuseService) CountByStatus(ctx context.Context, studentID string) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	query := s.db.WithContext(ctx).Model(&models.Excuse{})
	if studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	var rows []row
	if err := query.Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := map[string]int64{models.StatusPending: 0, models.StatusApproved: 0, models.StatusRejected: 0}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

func (s *ExcuseService) find(ctx context.Context, query *gorm.DB) ([]models.Excuse, error) {
	var excuses []models.Excuse
	if err := query.WithContext(ctx).Order("submitted_at DESC, id DESC").Find(&excuses).Error; err != nil {
		return nil, err
	}
	return excuses, nil
}
