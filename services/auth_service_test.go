package services

import (
	"context"
	"testing"

	"routeerp_go/models"
	"routeerp_go/storage"
	"routeerp_go/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, storage.NewMemorySessionStore(), 0)
	admin := createUser(t, db, "admin@route.com", models.RoleAdmin)
	ctx := context.Background()

	session, err := auth.Login(ctx, " Admin@Route.com ", DefaultPassword)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, session.UserID)
	assert.Equal(t, models.RoleAdmin, session.User.Role)
	assert.True(t, session.ExpiresAt.After(session.CreatedAt))

	_, err = auth.Login(ctx, "admin@route.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(ctx, "nobody@route.com", DefaultPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, storage.NewMemorySessionStore(), 0)
	user := createUser(t, db, "mentor@route.com", models.RoleMentor)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err := auth.Login(context.Background(), "mentor@route.com", DefaultPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogout(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, storage.NewMemorySessionStore(), 0)
	createUser(t, db, "student@route.com", models.RoleStudent)
	ctx := context.Background()

	session, err := auth.Login(ctx, "student@route.com", DefaultPassword)
	require.NoError(t, err)
	require.NoError(t, auth.Logout(ctx, session.ID))

	_, err = auth.CurrentUser(ctx, session.ID)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	assert.NoError(t, auth.Logout(ctx, session.ID))
}

func TestAddUserAllocatesFreshIDs(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, storage.NewMemorySessionStore(), 0)
	ctx := context.Background()

	first, err := auth.AddUser(ctx, NewUserInput{Email: "a@route.com", Name: "Ana", Role: models.RoleStudent})
	require.NoError(t, err)
	second, err := auth.AddUser(ctx, NewUserInput{Email: "a@route.com", Name: "Ana Two", Role: models.RoleStudent})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, first.IsActive)
	assert.NoError(t, utils.CheckPassword(DefaultPassword, first.Password))

	_, err = auth.AddUser(ctx, NewUserInput{Email: "bad", Name: "X", Role: "janitor"})
	var verr *utils.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUpdateUserRefreshesSessions(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, storage.NewMemorySessionStore(), 0)
	user := createUser(t, db, "instructor@route.com", models.RoleInstructor)
	ctx := context.Background()

	session, err := auth.Login(ctx, "instructor@route.com", DefaultPassword)
	require.NoError(t, err)

	name := "Renamed Instructor"
	updated, err := auth.UpdateUser(ctx, user.ID, UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	current, err := auth.CurrentUser(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, name, current.Name)

	_, err = auth.UpdateUser(ctx, "missing", UserPatch{Name: &name})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUserEndsSessions(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, storage.NewMemorySessionStore(), 0)
	user := createUser(t, db, "admin@route.com", models.RoleAdmin)
	ctx := context.Background()

	session, err := auth.Login(ctx, "admin@route.com", DefaultPassword)
	require.NoError(t, err)

	require.NoError(t, auth.DeleteUser(ctx, user.ID))
	_, err = auth.Session(ctx, session.ID)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	_, err = auth.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, auth.DeleteUser(ctx, user.ID), ErrUserNotFound)
}

func TestDeleteUserDetachesGroups(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, storage.NewMemorySessionStore(), 0)
	instructor := createUser(t, db, "instructor@route.com", models.RoleInstructor)
	mentor := createUser(t, db, "mentor@route.com", models.RoleMentor)
	ctx := context.Background()

	group := &models.Group{Name: "Full Stack A", InstructorID: instructor.ID, MentorID: mentor.ID, IsActive: true}
	require.NoError(t, db.Create(group).Error)

	require.NoError(t, auth.DeleteUser(ctx, instructor.ID))

	var stored models.Group
	require.NoError(t, db.First(&stored, "id = ?", group.ID).Error)
	assert.Empty(t, stored.InstructorID)
	assert.Equal(t, mentor.ID, stored.MentorID)

	require.NoError(t, auth.DeleteUser(ctx, mentor.ID))
	require.NoError(t, db.First(&stored, "id = ?", group.ID).Error)
	assert.Empty(t, stored.MentorID)
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, storage.NewMemorySessionStore(), 0)
	user := createUser(t, db, "student@route.com", models.RoleStudent)
	ctx := context.Background()

	assert.ErrorIs(t, auth.ChangePassword(ctx, user.ID, "nope", "secret123"), ErrWrongPassword)
	require.NoError(t, auth.ChangePassword(ctx, user.ID, DefaultPassword, "secret123"))

	_, err := auth.Login(ctx, "student@route.com", "secret123")
	assert.NoError(t, err)
}
