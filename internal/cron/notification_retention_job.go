package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/squadlog/squadlog-backend/pkg/logger"
)

const defaultNotificationRetentionDays = 30

type notificationPurger interface {
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationRetentionJob drops inbox entries older than the retention window.
type NotificationRetentionJob struct {
	logg          *logger.Logger
	repo          notificationPurger
	retentionDays int
	now           func() time.Time
}

func NewNotificationRetentionJob(logg *logger.Logger, repo notificationPurger, retentionDays int) (*NotificationRetentionJob, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if retentionDays <= 0 {
		retentionDays = defaultNotificationRetentionDays
	}
	return &NotificationRetentionJob{
		logg:          logg,
		repo:          repo,
		retentionDays: retentionDays,
		now:           time.Now,
	}, nil
}

func (j *NotificationRetentionJob) Name() string { return "notification-retention" }

func (j *NotificationRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().AddDate(0, 0, -j.retentionDays)
	deleted, err := j.repo.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge notifications: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retentionDays,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "notifications.purged")
	return nil
}
