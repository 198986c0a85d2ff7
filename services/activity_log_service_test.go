package services

import (
	"context"
	"testing"
	"time"

	"routeerp_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityLogWithoutRedis(t *testing.T) {
	logs := NewActivityLogService(newTestDB(t), nil)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, action := range []string{"LOGIN", "CREATE", "UPDATE", "CREATE"} {
		require.NoError(t, logs.Record(ctx, models.ActivityLog{
			UserID:    "u1",
			Action:    action,
			Resource:  "users",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, logs.Record(ctx, models.ActivityLog{UserID: "u2", Action: "DELETE", Resource: "groups", CreatedAt: base}))

	saved, err := logs.Flush(ctx)
	require.NoError(t, err)
	assert.Zero(t, saved)

	page, err := logs.List(ctx, LogFilter{UserID: "u1"}, 1, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
	assert.EqualValues(t, 2, page.TotalPages)
	require.Len(t, page.Logs, 3)
	assert.Equal(t, "CREATE", page.Logs[0].Action)
	assert.True(t, page.Logs[0].CreatedAt.After(page.Logs[1].CreatedAt))

	defaults, err := logs.List(ctx, LogFilter{}, 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, defaults.Page)
	assert.Equal(t, 50, defaults.Limit)
	assert.Len(t, defaults.Logs, 5)

	created, err := logs.All(ctx, LogFilter{Action: "CREATE"})
	require.NoError(t, err)
	assert.Len(t, created, 2)

	window, err := logs.All(ctx, LogFilter{From: base.Add(time.Hour), To: base.Add(3 * time.Hour)})
	require.NoError(t, err)
	assert.Len(t, window, 2)

	deleted, err := logs.Prune(ctx, base.Add(90*time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)

	rest, err := logs.All(ctx, LogFilter{})
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}

func TestScheduleManagerJobs(t *testing.T) {
	db := newTestDB(t)
	logs := NewActivityLogService(db, nil)
	ctx := context.Background()

	require.NoError(t, logs.Record(ctx, models.ActivityLog{Action: "LOGIN", Resource: "auth", CreatedAt: time.Now().AddDate(0, 0, -40)}))
	require.NoError(t, logs.Record(ctx, models.ActivityLog{Action: "LOGIN", Resource: "auth"}))

	purger := &countingPurger{purged: 2}
	sm := NewScheduleManager(logs, purger, 30)
	sm.PruneActivityLogs()
	sm.FlushActivityLogs()
	sm.PurgeSessions()

	remaining, err := logs.All(ctx, LogFilter{})
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
	assert.Equal(t, 1, purger.calls)

	require.NoError(t, sm.Start())
	assert.Len(t, sm.cron.Entries(), 3)
	sm.Stop()

	withoutPurger := NewScheduleManager(logs, nil, 0)
	assert.Equal(t, 90*24*time.Hour, withoutPurger.retention)
	require.NoError(t, withoutPurger.Start())
	assert.Len(t, withoutPurger.cron.Entries(), 2)
	withoutPurger.Stop()
}

type countingPurger struct {
	purged int
	calls  int
}

func (p *countingPurger) PurgeExpired() int {
	p.calls++
	return p.purged
}
