package services

import (
	"context"
	"testing"

	"routeerp_go/models"
	"routeerp_go/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupVisibility(t *testing.T) {
	db := newTestDB(t)
	groups := NewGroupService(db)
	ctx := context.Background()

	admin := createUser(t, db, "admin@route.com", models.RoleAdmin)
	instructor := createUser(t, db, "instructor@route.com", models.RoleInstructor)
	mentor := createUser(t, db, "mentor@route.com", models.RoleMentor)
	student := createUser(t, db, "student@route.com", models.RoleStudent)
	outsider := createUser(t, db, "other@route.com", models.RoleStudent)

	taught, err := groups.Create(ctx, GroupInput{
		Name:         "Full Stack A",
		InstructorID: instructor.ID,
		Schedules:    []ScheduleInput{{Day: "monday", Time: "09:00-10:30"}},
	})
	require.NoError(t, err)
	mentored, err := groups.Create(ctx, GroupInput{Name: "Backend B", MentorID: mentor.ID})
	require.NoError(t, err)
	inactive := false
	_, err = groups.Create(ctx, GroupInput{Name: "Archived", InstructorID: instructor.ID, IsActive: &inactive})
	require.NoError(t, err)

	_, err = groups.SetStudents(ctx, taught.ID, []string{student.ID})
	require.NoError(t, err)

	names := func(user *models.User) []string {
		visible, err := groups.VisibleTo(ctx, user)
		require.NoError(t, err)
		out := []string{}
		for _, g := range visible {
			out = append(out, g.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Backend B", "Full Stack A"}, names(admin))
	assert.Equal(t, []string{"Full Stack A"}, names(instructor))
	assert.Equal(t, []string{"Backend B"}, names(mentor))
	assert.Equal(t, []string{"Full Stack A"}, names(student))
	assert.Empty(t, names(outsider))

	visible, err := groups.VisibleTo(ctx, student)
	require.NoError(t, err)
	require.Len(t, visible[0].Schedules, 1)
	assert.Equal(t, "monday", visible[0].Schedules[0].Day)

	_, err = groups.VisibleTo(ctx, nil)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	total, err := groups.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.NotEqual(t, taught.ID, mentored.ID)
}

func TestCreateGroupValidation(t *testing.T) {
	db := newTestDB(t)
	groups := NewGroupService(db)
	student := createUser(t, db, "student@route.com", models.RoleStudent)
	ctx := context.Background()

	var verr *utils.ValidationError
	_, err := groups.Create(ctx, GroupInput{Name: "Bad", Schedules: []ScheduleInput{{Day: "monday", Time: "10:00-09:00"}}})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "schedules[0]")

	_, err = groups.Create(ctx, GroupInput{Name: "Bad", InstructorID: student.ID})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "instructor_id")

	_, err = groups.Create(ctx, GroupInput{Name: "Bad", Color: "blue"})
	assert.Error(t, err)
}

func TestUpdateGroupReplacesSchedule(t *testing.T) {
	db := newTestDB(t)
	groups := NewGroupService(db)
	ctx := context.Background()

	group, err := groups.Create(ctx, GroupInput{
		Name: "Full Stack A",
		Schedules: []ScheduleInput{
			{Day: "monday", Time: "09:00-10:30"},
			{Day: "wednesday", Time: "09:00-10:30"},
		},
	})
	require.NoError(t, err)

	updated, err := groups.Update(ctx, group.ID, GroupInput{
		Name:      "Full Stack A+",
		Color:     "#10b981",
		Schedules: []ScheduleInput{{Day: "friday", Time: "13:00-15:00", Room: "Lab 2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Full Stack A+", updated.Name)
	require.Len(t, updated.Schedules, 1)
	assert.Equal(t, "friday", updated.Schedules[0].Day)
	assert.Equal(t, "Lab 2", updated.Schedules[0].Room)

	_, err = groups.Update(ctx, "missing", GroupInput{Name: "X"})
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestSetStudentsAndDelete(t *testing.T) {
	db := newTestDB(t)
	groups := NewGroupService(db)
	mentor := createUser(t, db, "mentor@route.com", models.RoleMentor)
	first := createUser(t, db, "one@route.com", models.RoleStudent)
	second := createUser(t, db, "two@route.com", models.RoleStudent)
	ctx := context.Background()

	group, err := groups.Create(ctx, GroupInput{Name: "Backend B"})
	require.NoError(t, err)

	withStudents, err := groups.SetStudents(ctx, group.ID, []string{first.ID, second.ID, first.ID})
	require.NoError(t, err)
	assert.Len(t, withStudents.Students, 2)

	_, err = groups.SetStudents(ctx, group.ID, []string{mentor.ID})
	var verr *utils.ValidationError
	assert.ErrorAs(t, err, &verr)

	cleared, err := groups.SetStudents(ctx, group.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, cleared.Students)

	require.NoError(t, groups.Delete(ctx, group.ID))
	_, err = groups.Get(ctx, group.ID)
	assert.ErrorIs(t, err, ErrGroupNotFound)
	assert.ErrorIs(t, groups.Delete(ctx, group.ID), ErrGroupNotFound)
}
