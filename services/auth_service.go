package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"routeerp_go/models"
	"routeerp_go/storage"
	"routeerp_go/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DefaultPassword is given to users created without an explicit password and
// to the seeded demo accounts.
const DefaultPassword = "password"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

// NewUserInput is the payload for adding a user to the directory.
type NewUserInput struct {
	Email      string `json:"email" validate:"required,email"`
	Name       string `json:"name" validate:"required,min=2,max=255"`
	Role       string `json:"role" validate:"required,oneof=admin instructor mentor student"`
	Department string `json:"department" validate:"max=100"`
	Password   string `json:"password" validate:"omitempty,min=6"`
	JoinDate   string `json:"join_date" validate:"omitempty,datetime=2006-01-02"`
	IsActive   *bool  `json:"is_active"`
}

// UserPatch holds the fields a directory update may change. Nil fields are left alone.
type UserPatch struct {
	Email      *string `json:"email" validate:"omitempty,email"`
	Name       *string `json:"name" validate:"omitempty,min=2,max=255"`
	Role       *string `json:"role" validate:"omitempty,oneof=admin instructor mentor student"`
	Department *string `json:"department" validate:"omitempty,max=100"`
	JoinDate   *string `json:"join_date" validate:"omitempty,datetime=2006-01-02"`
	IsActive   *bool   `json:"is_active"`
}

// UserFilter narrows ListUsers.
type UserFilter struct {
	Role   string
	Active *bool
}

// AuthService owns the user directory and the login sessions built on it.
type AuthService struct {
	db         *gorm.DB
	sessions   storage.SessionStore
	sessionTTL time.Duration
	now        func() time.Time
}

// NewAuthService wires the directory to its database and session store.
func NewAuthService(db *gorm.DB, sessions storage.SessionStore, sessionTTL time.Duration) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{db: db, sessions: sessions, sessionTTL: sessionTTL, now: time.Now}
}

// Login opens a session for the active user with the given email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*storage.Session, error) {
	var candidates []models.User
	if err := s.db.WithContext(ctx).
		Where("LOWER(email) = ? AND is_active = ?", utils.NormalizeEmail(email), true).
		Order("join_date ASC").
		Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	for _, user := range candidates {
		if utils.CheckPassword(password, user.Password) != nil {
			continue
		}
		now := s.now()
		session := &storage.Session{
			ID:        models.NewID(),
			UserID:    user.ID,
			User:      user,
			CreatedAt: now,
			ExpiresAt: now.Add(s.sessionTTL),
		}
		if err := s.sessions.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
		logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("User logged in")
		return session, nil
	}

	logrus.WithField("email", email).Warn("Rejected login attempt")
	return nil, ErrInvalidCredentials
}

// Logout ends a session. Ending an unknown session is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// Session returns the live session with the given id.
func (s *AuthService) Session(ctx context.Context, sessionID string) (*storage.Session, error) {
	return s.sessions.Get(ctx, sessionID)
}

// CurrentUser returns the user copy held by a live session.
func (s *AuthService) CurrentUser(ctx context.Context, sessionID string) (*models.User, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &session.User, nil
}

// ListUsers returns the directory ordered by join date.
func (s *AuthService) ListUsers(ctx context.Context, filter UserFilter) ([]models.User, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	var users []models.User
	if err := query.Order("join_date ASC, id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches one directory entry.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// AddUser appends a user to the directory under a freshly allocated id.
func (s *AuthService) AddUser(ctx context.Context, input NewUserInput) (*models.User, error) {
	if err := utils.Validate(input); err != nil {
		return nil, err
	}

	password := input.Password
	if password == "" {
		password = DefaultPassword
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	joinDate := s.now()
	if input.JoinDate != "" {
		if joinDate, err = utils.ParseDate(input.JoinDate); err != nil {
			return nil, utils.NewValidationError("join_date", "must match 2006-01-02")
		}
	}

	user := models.User{
		BaseModel:  models.BaseModel{ID: models.NewID()},
		Email:      utils.NormalizeEmail(input.Email),
		Password:   hashed,
		Name:       utils.SanitizeString(input.Name),
		Role:       input.Role,
		Department: utils.SanitizeString(input.Department),
		JoinDate:   joinDate,
		IsActive:   input.IsActive == nil || *input.IsActive,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("User added")
	return &user, nil
}

// UpdateUser merges the patch into the directory entry and refreshes the
// copy held by every live session of that user.
func (s *AuthService) UpdateUser(ctx context.Context, id string, patch UserPatch) (*models.User, error) {
	if err := utils.Validate(patch); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Email != nil {
		updates["email"] = utils.NormalizeEmail(*patch.Email)
	}
	if patch.Name != nil {
		updates["name"] = utils.SanitizeString(*patch.Name)
	}
	if patch.Role != nil {
		updates["role"] = *patch.Role
	}
	if patch.Department != nil {
		updates["department"] = utils.SanitizeString(*patch.Department)
	}
	if patch.JoinDate != nil {
		joinDate, err := utils.ParseDate(*patch.JoinDate)
		if err != nil {
			return nil, utils.NewValidationError("join_date", "must match 2006-01-02")
		}
		updates["join_date"] = joinDate
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		if user, err = s.GetUser(ctx, id); err != nil {
			return nil, err
		}
	}

	if err := s.sessions.RefreshUser(ctx, *user); err != nil {
		logrus.WithError(err).WithField("user_id", id).Error("Failed to refresh session copies")
	}
	return user, nil
}

// DeleteUser removes a user from the directory and ends all of their sessions.
func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM group_students WHERE user_id = ?", id).Error; err != nil {
			return err
		}
		for _, column := range []string{"instructor_id", "mentor_id"} {
			if err := tx.Model(&models.Group{}).Where(column+" = ?", id).Update(column, "").Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.sessions.DeleteByUser(ctx, id); err != nil {
		return fmt.Errorf("user deleted but sessions could not be cleared: %w", err)
	}
	logrus.WithField("user_id", id).Info("User deleted")
	return nil
}

// ChangePassword replaces a user's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, id, current, next string) error {
	if len(strings.TrimSpace(next)) < 6 {
		return utils.NewValidationError("new_password", "must be at least 6")
	}
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if utils.CheckPassword(current, user.Password) != nil {
		return ErrWrongPassword
	}
	hashed, err := utils.HashPassword(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.db.WithContext(ctx).Model(user).Update("password", hashed).Error
}
