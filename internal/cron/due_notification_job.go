package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voltedge/renewals-backend/pkg/db/models"
	"github.com/voltedge/renewals-backend/pkg/logger"
)

const dueNotificationBatchSize = 200

type dueNotificationsRepo interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]models.Notification, error)
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) (bool, error)
}

// Dispatcher delivers one reminder to its salesperson. A failed dispatch
// leaves the notification pending so the next cycle retries it.
type Dispatcher interface {
	Dispatch(ctx context.Context, notification models.Notification) error
}

// DueNotificationJobParams configure the due-reminder job.
type DueNotificationJobParams struct {
	Logger     *logger.Logger
	Repository dueNotificationsRepo
	Dispatcher Dispatcher
	BatchSize  int
}

// NewDueNotificationJob builds the job that delivers reminders whose
// scheduled date has arrived.
func NewDueNotificationJob(params DueNotificationJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if params.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = dueNotificationBatchSize
	}
	return &dueNotificationJob{
		logg:       params.Logger,
		repo:       params.Repository,
		dispatcher: params.Dispatcher,
		batch:      batch,
		now:        time.Now,
	}, nil
}

type dueNotificationJob struct {
	logg       *logger.Logger
	repo       dueNotificationsRepo
	dispatcher Dispatcher
	batch      int
	now        func() time.Time
}

func (j *dueNotificationJob) Name() string { return "due-notifications" }

func (j *dueNotificationJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	var sent, failed int

	for {
		due, err := j.repo.ListDue(ctx, now, j.batch)
		if err != nil {
			return fmt.Errorf("list due notifications: %w", err)
		}
		if len(due) == 0 {
			break
		}

		progressed := false
		for _, notification := range due {
			if err := j.dispatch(ctx, notification, now); err != nil {
				failed++
				continue
			}
			sent++
			progressed = true
		}
		// Every row in the batch failed; stop instead of spinning on
		// the same rows.
		if !progressed {
			break
		}
		if len(due) < j.batch {
			break
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"sent":   sent,
		"failed": failed,
	})
	j.logg.Info(logCtx, "due notifications processed")
	return nil
}

func (j *dueNotificationJob) dispatch(ctx context.Context, notification models.Notification, now time.Time) error {
	if err := j.dispatcher.Dispatch(ctx, notification); err != nil {
		logCtx := j.logg.WithField(ctx, "notification_id", notification.ID.String())
		j.logg.Error(logCtx, "reminder dispatch failed", err)
		return err
	}

	updated, err := j.repo.MarkSent(ctx, notification.ID, now)
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	if !updated {
		// Another worker or a reschedule got here first.
		logCtx := j.logg.WithField(ctx, "notification_id", notification.ID.String())
		j.logg.Warn(logCtx, "notification no longer pending, skipping")
	}
	return nil
}

// LogDispatcher surfaces reminders through the structured log stream. The
// API's notification listing remains the primary delivery channel.
type LogDispatcher struct {
	logg *logger.Logger
}

// NewLogDispatcher builds a dispatcher that records each reminder as a log
// event.
func NewLogDispatcher(logg *logger.Logger) (*LogDispatcher, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &LogDispatcher{logg: logg}, nil
}

func (d *LogDispatcher) Dispatch(ctx context.Context, notification models.Notification) error {
	logCtx := d.logg.WithFields(ctx, map[string]any{
		"notification_id":   notification.ID.String(),
		"renewal_id":        notification.RenewalID.String(),
		"salesperson_id":    notification.SalespersonID.String(),
		"notification_type": string(notification.NotificationType),
		"scheduled_date":    notification.ScheduledDate.Format(time.RFC3339),
	})
	d.logg.Info(logCtx, "renewal reminder due")
	return nil
}
