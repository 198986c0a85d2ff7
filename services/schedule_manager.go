package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Cron specs of the housekeeping jobs.
const (
	PruneLogsSpec     = "0 3 * * *"
	FlushLogsSpec     = "@every 1m"
	PurgeSessionsSpec = "@every 10m"
)

// ExpiredSessionPurger is implemented by session stores that do not expire
// entries on their own.
type ExpiredSessionPurger interface {
	PurgeExpired() int
}

// ScheduleManager runs the periodic housekeeping jobs.
type ScheduleManager struct {
	cron      *cron.Cron
	logs      *ActivityLogService
	sessions  ExpiredSessionPurger
	retention time.Duration
}

// NewScheduleManager prepares the jobs. sessions may be nil when the store
// expires entries itself.
func NewScheduleManager(logs *ActivityLogService, sessions ExpiredSessionPurger, retentionDays int) *ScheduleManager {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &ScheduleManager{
		cron:      cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		logs:      logs,
		sessions:  sessions,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// Start registers every job and starts the scheduler.
func (sm *ScheduleManager) Start() error {
	if _, err := sm.cron.AddFunc(PruneLogsSpec, sm.PruneActivityLogs); err != nil {
		return err
	}
	if _, err := sm.cron.AddFunc(FlushLogsSpec, sm.FlushActivityLogs); err != nil {
		return err
	}
	if sm.sessions != nil {
		if _, err := sm.cron.AddFunc(PurgeSessionsSpec, sm.PurgeSessions); err != nil {
			return err
		}
	}
	sm.cron.Start()
	logrus.WithField("jobs", len(sm.cron.Entries())).Info("Schedule manager started")
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (sm *ScheduleManager) Stop() {
	<-sm.cron.Stop().Done()
	logrus.Info("Schedule manager stopped")
}

// PruneActivityLogs drops audit entries older than the retention.
func (sm *ScheduleManager) PruneActivityLogs() {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-sm.retention)
	deleted, err := sm.logs.Prune(ctx, cutoff)
	if err != nil {
		logrus.WithError(err).Error("Failed to prune activity logs")
		return
	}
	logrus.WithFields(logrus.Fields{"deleted": deleted, "cutoff": cutoff}).Info("Pruned activity logs")
}

// FlushActivityLogs writes queued audit entries to the database.
func (sm *ScheduleManager) FlushActivityLogs() {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
	defer cancel()

	saved, err := sm.logs.Flush(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to flush activity logs")
	}
	if saved > 0 {
		logrus.WithField("saved", saved).Debug("Flushed activity logs")
	}
}

// PurgeSessions drops expired sessions from the memory store.
func (sm *ScheduleManager) PurgeSessions() {
	if purged := sm.sessions.PurgeExpired(); purged > 0 {
		logrus.WithField("purged", purged).Info("Purged expired sessions")
	}
}
