package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"routeerp_go/models"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const activityQueueKey = "logs:queue"

// LogFilter narrows activity log queries.
type LogFilter struct {
	UserID   string
	Action   string
	Resource string
	From     time.Time
	To       time.Time
}

// LogPage is one page of activity logs.
type LogPage struct {
	Logs       []models.ActivityLog `json:"logs"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int64                `json:"total_pages"`
}

// ActivityLogService persists the audit trail. With Redis available, entries
// are queued first and flushed to the database in batches.
type ActivityLogService struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewActivityLogService creates the audit trail. redisClient may be nil.
func NewActivityLogService(db *gorm.DB, redisClient *redis.Client) *ActivityLogService {
	return &ActivityLogService{db: db, redis: redisClient}
}

// Record stores one entry, through the Redis queue when there is one.
func (s *ActivityLogService) Record(ctx context.Context, entry models.ActivityLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if s.redis != nil {
		data, err := json.Marshal(entry)
		if err == nil {
			if err = s.redis.RPush(ctx, activityQueueKey, data).Err(); err == nil {
				return nil
			}
		}
		logrus.WithError(err).Warn("Failed to queue activity log, saving directly to database")
	}
	return s.db.WithContext(ctx).Create(&entry).Error
}

// Flush moves queued entries into the database and returns how many were saved.
func (s *ActivityLogService) Flush(ctx context.Context) (int, error) {
	if s.redis == nil {
		return 0, nil
	}
	saved := 0
	for {
		data, err := s.redis.LPop(ctx, activityQueueKey).Bytes()
		if err == redis.Nil {
			return saved, nil
		}
		if err != nil {
			return saved, fmt.Errorf("failed to read activity queue: %w", err)
		}

		var entry models.ActivityLog
		if err := json.Unmarshal(data, &entry); err != nil {
			logrus.WithError(err).Warn("Dropping malformed queued activity log")
			continue
		}
		entry.ID = 0
		if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
			// put it back so the next flush retries it
			s.redis.LPush(ctx, activityQueueKey, data)
			return saved, fmt.Errorf("failed to save activity log: %w", err)
		}
		saved++
	}
}

// List returns a page of logs, newest first. page starts at 1.
func (s *ActivityLogService) List(ctx context.Context, filter LogFilter, page, limit int) (*LogPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	query := s.filtered(ctx, filter)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var logs []models.ActivityLog
	if err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return &LogPage{
		Logs:       logs,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
	}, nil
}

// All returns every log matching filter, newest first.
func (s *ActivityLogService) All(ctx context.Context, filter LogFilter) ([]models.ActivityLog, error) {
	var logs []models.ActivityLog
	err := s.filtered(ctx, filter).Order("created_at DESC, id DESC").Find(&logs).Error
	return logs, err
}

// Prune deletes logs created before cutoff.
func (s *ActivityLogService) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.ActivityLog{})
	return res.RowsAffected, res.Error
}

func (s *ActivityLogService) filtered(ctx context.Context, filter LogFilter) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.ActivityLog{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Resource != "" {
		query = query.Where("resource = ?", filter.Resource)
	}
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at < ?", filter.To)
	}
	return query
}
