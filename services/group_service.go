package services

import (
	"context"
	"errors"
	"fmt"

	"routeerp_go/models"
	"routeerp_go/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrGroupNotFound = errors.New("group not found")

// ScheduleInput is one weekly slot of a group.
type ScheduleInput struct {
	Day  string `json:"day" validate:"required"`
	Time string `json:"time" validate:"required"`
	Room string `json:"room" validate:"max=100"`
}

// GroupInput creates a group or replaces all of its fields.
type GroupInput struct {
	Name         string          `json:"name" validate:"required,max=255"`
	Subject      string          `json:"subject" validate:"max=255"`
	InstructorID string          `json:"instructor_id"`
	MentorID     string          `json:"mentor_id"`
	Color        string          `json:"color" validate:"omitempty,hexcolor"`
	IsActive     *bool           `json:"is_active"`
	Schedules    []ScheduleInput `json:"schedules" validate:"dive"`
}

// GroupService manages groups, their weekly schedules and their students.
type GroupService struct {
	db *gorm.DB
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{db: db}
}

// List returns every group with its schedules, ordered by name.
func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := s.db.WithContext(ctx).
		Preload("Schedules", orderSchedules).
		Order("name ASC, id ASC").
		Find(&groups).Error
	return groups, err
}

// Get fetches one group with its schedules and students.
func (s *GroupService) Get(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	err := s.db.WithContext(ctx).
		Preload("Schedules", orderSchedules).
		Preload("Students").
		First(&group, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}

// Create stores a group after checking every schedule entry parses.
func (s *GroupService) Create(ctx context.Context, input GroupInput) (*models.Group, error) {
	schedules, err := buildSchedules(input)
	if err != nil {
		return nil, err
	}
	if err := s.checkStaff(ctx, input); err != nil {
		return nil, err
	}

	group := models.Group{
		BaseModel:    models.BaseModel{ID: models.NewID()},
		Name:         utils.SanitizeString(input.Name),
		Subject:      utils.SanitizeString(input.Subject),
		InstructorID: input.InstructorID,
		MentorID:     input.MentorID,
		Color:        input.Color,
		IsActive:     input.IsActive == nil || *input.IsActive,
		Schedules:    schedules,
	}
	if err := s.db.WithContext(ctx).Create(&group).Error; err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	logrus.WithFields(logrus.Fields{"group_id": group.ID, "schedules": len(schedules)}).Info("Group created")
	return &group, nil
}

// Update replaces a group's fields and schedule.
func (s *GroupService) Update(ctx context.Context, id string, input GroupInput) (*models.Group, error) {
	schedules, err := buildSchedules(input)
	if err != nil {
		return nil, err
	}
	if err := s.checkStaff(ctx, input); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.First(&group, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupNotFound
			}
			return err
		}
		if err := tx.Model(&group).Updates(map[string]interface{}{
			"name":          utils.SanitizeString(input.Name),
			"subject":       utils.SanitizeString(input.Subject),
			"instructor_id": input.InstructorID,
			"mentor_id":     input.MentorID,
			"color":         input.Color,
			"is_active":     input.IsActive == nil || *input.IsActive,
		}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupSchedule{}).Error; err != nil {
			return err
		}
		for i := range schedules {
			schedules[i].GroupID = id
		}
		if len(schedules) > 0 {
			return tx.Create(&schedules).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a group with its schedule and memberships.
func (s *GroupService) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupSchedule{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM group_students WHERE group_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Group{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrGroupNotFound
		}
		return nil
	})
}

// SetStudents replaces a group's membership. Every id must be a student.
func (s *GroupService) SetStudents(ctx context.Context, id string, studentIDs []string) (*models.Group, error) {
	group, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	students := []models.User{}
	if len(studentIDs) > 0 {
		if err := s.db.WithContext(ctx).
			Where("id IN ? AND role = ?", studentIDs, models.RoleStudent).
			Find(&students).Error; err != nil {
			return nil, err
		}
	}
	if len(students) != len(uniqueStrings(studentIDs)) {
		return nil, utils.NewValidationError("student_ids", "must reference existing students")
	}

	if err := s.db.WithContext(ctx).Model(group).Association("Students").Replace(students); err != nil {
		return nil, fmt.Errorf("failed to update group students: %w", err)
	}
	return s.Get(ctx, id)
}

// VisibleTo returns the active groups a user takes part in. Admins see all.
func (s *GroupService) VisibleTo(ctx context.Context, user *models.User) ([]models.Group, error) {
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	query := s.db.WithContext(ctx).
		Model(&models.Group{}).
		Preload("Schedules", orderSchedules).
		Where("is_active = ?", true)

	switch user.Role {
	case models.RoleAdmin:
	case models.RoleInstructor:
		query = query.Where("instructor_id = ?", user.ID)
	case models.RoleMentor:
		query = query.Where("mentor_id = ?", user.ID)
	case models.RoleStudent:
		query = query.Where("id IN (?)",
			s.db.Table("group_students").Select("group_id").Where("user_id = ?", user.ID))
	default:
		return []models.Group{}, nil
	}

	var groups []models.Group
	if err := query.Order("name ASC, id ASC").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// Count returns the number of groups.
func (s *GroupService) Count(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.Group{}).Count(&total).Error
	return total, err
}

// checkStaff makes sure the referenced instructor and mentor exist with the right role.
func (s *GroupService) checkStaff(ctx context.Context, input GroupInput) error {
	check := func(field, id, role string) error {
		if id == "" {
			return nil
		}
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("id = ? AND role = ?", id, role).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return utils.NewValidationError(field, "must reference an existing "+role)
		}
		return nil
	}
	if err := check("instructor_id", input.InstructorID, models.RoleInstructor); err != nil {
		return err
	}
	return check("mentor_id", input.MentorID, models.RoleMentor)
}

func buildSchedules(input GroupInput) ([]models.GroupSchedule, error) {
	if err := utils.Validate(input); err != nil {
		return nil, err
	}
	schedules := make([]models.GroupSchedule, 0, len(input.Schedules))
	for i, in := range input.Schedules {
		entry := models.GroupSchedule{
			Day:  in.Day,
			Time: in.Time,
			Room: utils.SanitizeString(in.Room),
		}
		if err := ValidateSchedule(entry); err != nil {
			return nil, utils.NewValidationError(fmt.Sprintf("schedules[%d]", i), err.Error())
		}
		schedules = append(schedules, entry)
	}
	return schedules, nil
}

func orderSchedules(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
