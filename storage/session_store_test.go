package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"routeerp_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(id, userID string, expires time.Time) *Session {
	return &Session{
		ID:        id,
		UserID:    userID,
		User:      models.User{BaseModel: models.BaseModel{ID: userID}, Name: "Student " + userID},
		CreatedAt: expires.Add(-time.Hour),
		ExpiresAt: expires,
	}
}

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)

	require.NoError(t, store.Save(ctx, newSession("s1", "u1", expires)))
	require.NoError(t, store.Save(ctx, newSession("s2", "u1", expires)))
	require.NoError(t, store.Save(ctx, newSession("s3", "u2", expires)))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	require.NoError(t, store.RefreshUser(ctx, models.User{BaseModel: models.BaseModel{ID: "u1"}, Name: "Renamed"}))
	got, err = store.Get(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.User.Name)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.DeleteByUser(ctx, "u1"))
	_, err = store.Get(ctx, "s2")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 1, store.Len())
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	store := NewMemorySessionStore()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newSession("old", "u1", now.Add(-time.Minute))))
	require.NoError(t, store.Save(ctx, newSession("edge", "u1", now)))
	require.NoError(t, store.Save(ctx, newSession("fresh", "u2", now.Add(time.Minute))))

	_, err := store.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.Get(ctx, "edge")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 3, store.Len())

	assert.Equal(t, 2, store.PurgeExpired())
	assert.Equal(t, 1, store.Len())
	_, err = store.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestReportKey(t *testing.T) {
	key := ReportKey("salary report.xlsx", time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC))
	assert.True(t, strings.HasPrefix(key, "reports/2024/03/01/"), key)
	assert.True(t, strings.HasSuffix(key, "-salary report.xlsx"), key)
}
