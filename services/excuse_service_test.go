package services

import (
	"context"
	"testing"

	"routeerp_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitExcuse(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	excuses := NewExcuseService(db, notifier)
	student := createUser(t, db, "student@route.com", models.RoleStudent)
	ctx := context.Background()

	excuse, err := excuses.Submit(ctx, student, ExcuseInput{Reason: "Doctor", Date: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, excuse.Status)
	assert.Equal(t, student.ID, excuse.StudentID)
	assert.Equal(t, []sentEvent{{target: "role:admin", event: EventExcuseSubmitted}}, notifier.sent())

	_, err = excuses.Submit(ctx, nil, ExcuseInput{Reason: "Doctor", Date: "2024-03-01"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = excuses.Submit(ctx, student, ExcuseInput{Reason: "Doctor", Date: "01/03/2024"})
	assert.Error(t, err)
}

func TestReviewKeepsFirstDecision(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	excuses := NewExcuseService(db, notifier)
	student := createUser(t, db, "student@route.com", models.RoleStudent)
	admin := createUser(t, db, "admin@route.com", models.RoleAdmin)
	ctx := context.Background()

	excuse, err := excuses.Submit(ctx, student, ExcuseInput{Reason: "Family", Date: "2024-03-02"})
	require.NoError(t, err)

	approved, err := excuses.UpdateStatus(ctx, admin, excuse.ID, ReviewInput{Status: models.StatusApproved, Notes: "ok"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.Equal(t, admin.ID, approved.ReviewerID)
	require.NotNil(t, approved.ReviewedAt)

	again, err := excuses.UpdateStatus(ctx, admin, excuse.ID, ReviewInput{Status: models.StatusRejected})
	assert.ErrorIs(t, err, ErrExcuseAlreadyReviewed)
	require.NotNil(t, again)
	assert.Equal(t, models.StatusApproved, again.Status)

	sent := notifier.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, sentEvent{target: "user:" + student.ID, event: EventExcuseReviewed}, sent[1])
}

func TestReviewValidation(t *testing.T) {
	db := newTestDB(t)
	excuses := NewExcuseService(db, nil)
	student := createUser(t, db, "student@route.com", models.RoleStudent)
	admin := createUser(t, db, "admin@route.com", models.RoleAdmin)
	ctx := context.Background()

	excuse, err := excuses.Submit(ctx, student, ExcuseInput{Reason: "Sick", Date: "2024-03-03"})
	require.NoError(t, err)

	_, err = excuses.UpdateStatus(ctx, admin, excuse.ID, ReviewInput{Status: models.StatusPending})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = excuses.UpdateStatus(ctx, nil, excuse.ID, ReviewInput{Status: models.StatusApproved})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = excuses.UpdateStatus(ctx, admin, "missing", ReviewInput{Status: models.StatusApproved})
	assert.ErrorIs(t, err, ErrExcuseNotFound)

	instructor := createUser(t, db, "instructor@route.com", models.RoleInstructor)
	_, err = excuses.UpdateStatus(ctx, instructor, excuse.ID, ReviewInput{Status: models.StatusApproved})
	assert.ErrorIs(t, err, ErrNotReviewer)

	stored, err := excuses.Get(ctx, excuse.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsReviewed())
}

func TestExcuseQueries(t *testing.T) {
	db := newTestDB(t)
	excuses := NewExcuseService(db, nil)
	first := createUser(t, db, "one@route.com", models.RoleStudent)
	second := createUser(t, db, "two@route.com", models.RoleStudent)
	admin := createUser(t, db, "admin@route.com", models.RoleAdmin)
	ctx := context.Background()

	a, err := excuses.Submit(ctx, first, ExcuseInput{Reason: "A", Date: "2024-03-01"})
	require.NoError(t, err)
	_, err = excuses.Submit(ctx, first, ExcuseInput{Reason: "B", Date: "2024-03-02"})
	require.NoError(t, err)
	_, err = excuses.Submit(ctx, second, ExcuseInput{Reason: "C", Date: "2024-03-03"})
	require.NoError(t, err)
	_, err = excuses.UpdateStatus(ctx, admin, a.ID, ReviewInput{Status: models.StatusRejected})
	require.NoError(t, err)

	all, err := excuses.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := excuses.ByStudent(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	pending, err := excuses.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	counts, err := excuses.CountByStatus(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{models.StatusPending: 1, models.StatusApproved: 0, models.StatusRejected: 1}, counts)
}
