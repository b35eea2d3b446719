package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squadlog/squadlog-backend/internal/notifications"
	"github.com/squadlog/squadlog-backend/pkg/db/dbtest"
	"github.com/squadlog/squadlog-backend/pkg/db/models"
	"github.com/squadlog/squadlog-backend/pkg/enums"
	"github.com/squadlog/squadlog-backend/pkg/logger"
)

type fakePurger struct {
	cutoff  time.Time
	deleted int64
	err     error
}

func (f *fakePurger) DeleteCreatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.deleted, f.err
}

func TestNotificationRetentionJobComputesCutoff(t *testing.T) {
	now := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)
	repo := &fakePurger{deleted: 3}
	job, err := NewNotificationRetentionJob(logger.Nop(), repo, 0)
	require.NoError(t, err)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, now.AddDate(0, 0, -defaultNotificationRetentionDays), repo.cutoff)
}

func TestNotificationRetentionJobPropagatesErrors(t *testing.T) {
	job, err := NewNotificationRetentionJob(logger.Nop(), &fakePurger{err: errors.New("boom")}, 7)
	require.NoError(t, err)
	assert.Error(t, job.Run(context.Background()))
}

func TestNotificationRetentionJobPurgesStore(t *testing.T) {
	ctx := context.Background()
	repo := notifications.NewRepository(dbtest.Open(t).DB())
	user := uuid.New()
	now := time.Now().UTC()

	for _, age := range []int{20, 8, 1} {
		require.NoError(t, repo.Create(ctx, &models.Notification{
			UserID:    user,
			Type:      enums.NotificationTypeGroupApproved,
			Message:   "Your request to join Foo was approved",
			CreatedAt: now.AddDate(0, 0, -age),
		}))
	}

	job, err := NewNotificationRetentionJob(logger.Nop(), repo, 7)
	require.NoError(t, err)
	require.NoError(t, job.Run(ctx))

	deleted, err := repo.DeleteCreatedBefore(ctx, now.AddDate(0, 0, -2))
	require.NoError(t, err)
	assert.EqualValues(t, 0, deleted, "rows older than the window were already purged")
}

func TestNewNotificationRetentionJobValidation(t *testing.T) {
	_, err := NewNotificationRetentionJob(nil, &fakePurger{}, 1)
	assert.Error(t, err)
	_, err = NewNotificationRetentionJob(logger.Nop(), nil, 1)
	assert.Error(t, err)
}
