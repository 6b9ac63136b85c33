package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltedge/renewals-backend/pkg/db/models"
	"github.com/voltedge/renewals-backend/pkg/enums"
	pkgerrors "github.com/voltedge/renewals-backend/pkg/errors"
)

type notificationsRepository interface {
	Create(ctx context.Context, notification *models.Notification) (*models.Notification, error)
	DeleteByRenewal(ctx context.Context, renewalID uuid.UUID) error
}

type preferencesRepository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error)
	Create(ctx context.Context, pref *models.NotificationPreference) (*models.NotificationPreference, error)
}

// Scheduler derives and persists reminder notifications for renewals.
type Scheduler struct {
	notifications notificationsRepository
	preferences   preferencesRepository
	now           func() time.Time
}

// New constructs a scheduler backed by the provided repositories.
// The clock defaults to time.Now when nil.
func New(notifications notificationsRepository, preferences preferencesRepository, now func() time.Time) (*Scheduler, error) {
	if notifications == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if preferences == nil {
		return nil, fmt.Errorf("preferences repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		notifications: notifications,
		preferences:   preferences,
		now:           now,
	}, nil
}

// NotificationSpec is a reminder the scheduler has decided to create.
type NotificationSpec struct {
	RenewalID     uuid.UUID
	SalespersonID uuid.UUID
	Type          enums.NotificationType
	ScheduledDate time.Time
}

// ComputeNextDueDate adds the interval's month count to the last service date.
// Custom intervals require a positive month count.
func ComputeNextDueDate(lastServiceDate time.Time, intervalType enums.IntervalType, customIntervalMonths *int) (time.Time, error) {
	if months, ok := intervalType.Months(); ok {
		return lastServiceDate.AddDate(0, months, 0), nil
	}
	if intervalType != enums.IntervalCustom {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid interval type %q", intervalType))
	}
	if customIntervalMonths == nil || *customIntervalMonths <= 0 {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "custom interval requires a positive custom_interval_months")
	}
	return lastServiceDate.AddDate(0, *customIntervalMonths, 0), nil
}

// BuildNotifications computes the reminder set for a renewal given the
// owner's preferences. Specs whose scheduled date is not strictly after
// now are dropped; an unassigned renewal yields no specs.
func BuildNotifications(renewal *models.Renewal, prefs *models.NotificationPreference, now time.Time) []NotificationSpec {
	if renewal == nil || renewal.AssignedSalespersonID == nil {
		return nil
	}

	windows := []struct {
		enabled   bool
		kind      enums.NotificationType
		scheduled time.Time
	}{
		{prefs == nil || prefs.Enable2Months, enums.NotificationTwoMonths, renewal.NextDueDate.AddDate(0, -2, 0)},
		{prefs == nil || prefs.Enable1Month, enums.NotificationOneMonth, renewal.NextDueDate.AddDate(0, -1, 0)},
		{prefs == nil || prefs.Enable1Week, enums.NotificationOneWeek, renewal.NextDueDate.AddDate(0, 0, -7)},
	}

	var specs []NotificationSpec
	for _, w := range windows {
		if !w.enabled {
			continue
		}
		if !w.scheduled.After(now) {
			continue
		}
		specs = append(specs, NotificationSpec{
			RenewalID:     renewal.ID,
			SalespersonID: *renewal.AssignedSalespersonID,
			Type:          w.kind,
			ScheduledDate: w.scheduled,
		})
	}
	return specs
}

// ResolvePreferences returns the user's preference row, creating the
// all-enabled default when none exists yet.
func (s *Scheduler) ResolvePreferences(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error) {
	pref, err := s.preferences.GetByUser(ctx, userID)
	if err == nil {
		return pref, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification preferences")
	}

	created, err := s.preferences.Create(ctx, &models.NotificationPreference{
		UserID:        userID,
		Enable2Months: true,
		Enable1Month:  true,
		Enable1Week:   true,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create default notification preferences")
	}
	return created, nil
}

// ScheduleForRenewal resolves the owner's preferences, builds the
// reminder set, and persists each notification as pending.
func (s *Scheduler) ScheduleForRenewal(ctx context.Context, renewal *models.Renewal) error {
	if renewal == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "renewal is required")
	}
	if renewal.AssignedSalespersonID == nil {
		return nil
	}

	prefs, err := s.ResolvePreferences(ctx, *renewal.AssignedSalespersonID)
	if err != nil {
		return err
	}

	for _, spec := range BuildNotifications(renewal, prefs, s.now()) {
		notification := &models.Notification{
			RenewalID:        spec.RenewalID,
			SalespersonID:    spec.SalespersonID,
			NotificationType: spec.Type,
			ScheduledDate:    spec.ScheduledDate,
			Status:           enums.NotificationStatusPending,
		}
		if _, err := s.notifications.Create(ctx, notification); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
		}
	}
	return nil
}

// RescheduleOnUpdate wipes the renewal's notifications and rebuilds them
// from the current due date and preferences. Full replace, idempotent.
func (s *Scheduler) RescheduleOnUpdate(ctx context.Context, renewal *models.Renewal) error {
	if renewal == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "renewal is required")
	}
	if err := s.notifications.DeleteByRenewal(ctx, renewal.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete stale notifications")
	}
	return s.ScheduleForRenewal(ctx, renewal)
}
