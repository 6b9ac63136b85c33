package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/voltedge/renewals-backend/pkg/logger"
)

const notificationRetentionDays = 90

type notificationsCleanupRepo interface {
	DeleteSentBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationCleanupJobParams configure the sent-reminder purge.
type NotificationCleanupJobParams struct {
	Logger        *logger.Logger
	Repository    notificationsCleanupRepo
	RetentionDays int
}

// NewNotificationCleanupJob builds the job that keeps the notifications
// table from growing without bound.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = notificationRetentionDays
	}
	return &notificationCleanupJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type notificationCleanupJob struct {
	logg      *logger.Logger
	repo      notificationsCleanupRepo
	retention int
	now       func() time.Time
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.repo.DeleteSentBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge sent notifications: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "deleted", deleted)
	j.logg.Info(logCtx, "notification cleanup complete")
	return nil
}
