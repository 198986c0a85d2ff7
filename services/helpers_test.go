package services

import (
	"context"
	"sync"
	"testing"

	"routeerp_go/database"
	"routeerp_go/models"
	"routeerp_go/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLiteMemory(models.NewID())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	hashed, err := utils.HashPassword(DefaultPassword)
	require.NoError(t, err)
	user := &models.User{
		Email:    email,
		Password: hashed,
		Name:     role + " user",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(user).Error)
	return user
}

type sentEvent struct {
	target string
	event  string
}

// recordingNotifier remembers every push it was asked to send.
type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *recordingNotifier) NotifyUser(userID, event string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{target: "user:" + userID, event: event})
}

func (n *recordingNotifier) NotifyRole(role, event string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{target: "role:" + role, event: event})
}

func (n *recordingNotifier) sent() []sentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentEvent(nil), n.events...)
}
