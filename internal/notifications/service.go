package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltedge/renewals-backend/pkg/db/models"
	"github.com/voltedge/renewals-backend/pkg/enums"
	pkgerrors "github.com/voltedge/renewals-backend/pkg/errors"
	"github.com/voltedge/renewals-backend/pkg/pagination"
)

type notificationsRepository interface {
	List(ctx context.Context, params ListParams) ([]models.Notification, *pagination.Cursor, error)
}

type preferencesRepository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error)
	Upsert(ctx context.Context, pref *models.NotificationPreference) (*models.NotificationPreference, error)
}

// Service exposes notification listing and preference management.
type Service interface {
	List(ctx context.Context, input ListInput) (*ListResult, error)
	GetPreferences(ctx context.Context, userID uuid.UUID) (*PreferencesDTO, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, input UpdatePreferencesInput) (*PreferencesDTO, error)
}

type service struct {
	repo  notificationsRepository
	prefs preferencesRepository
}

// NewService builds a notifications service with the provided repositories.
func NewService(repo notificationsRepository, prefs preferencesRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if prefs == nil {
		return nil, fmt.Errorf("preferences repository required")
	}
	return &service{repo: repo, prefs: prefs}, nil
}

// ListInput narrows and pages a notification listing.
type ListInput struct {
	SalespersonID *uuid.UUID
	Status        *enums.NotificationStatus
	Limit         int
	Cursor        string
}

// ListResult is a page of notifications plus the cursor for the next one.
type ListResult struct {
	Notifications []NotificationDTO `json:"notifications"`
	NextCursor    string            `json:"next_cursor,omitempty"`
}

// UpdatePreferencesInput carries the full set of reminder-window flags.
type UpdatePreferencesInput struct {
	Enable2Months bool
	Enable1Month  bool
	Enable1Week   bool
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid notification status %q", *input.Status))
	}

	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.List(ctx, ListParams{
		SalespersonID: input.SalespersonID,
		Status:        input.Status,
		Limit:         input.Limit,
		Cursor:        cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	result := &ListResult{Notifications: make([]NotificationDTO, 0, len(rows))}
	for i := range rows {
		result.Notifications = append(result.Notifications, FromModel(&rows[i]))
	}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

// GetPreferences returns the user's flags, defaulting all windows on when
// no row exists yet. The default is not persisted here; the scheduler
// creates the row the first time it needs one.
func (s *service) GetPreferences(ctx context.Context, userID uuid.UUID) (*PreferencesDTO, error) {
	pref, err := s.prefs.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &PreferencesDTO{
				UserID:        userID,
				Enable2Months: true,
				Enable1Month:  true,
				Enable1Week:   true,
			}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get notification preferences")
	}
	return PreferencesFromModel(pref), nil
}

// UpdatePreferences replaces the user's flags. Already-scheduled
// notifications are untouched; the new flags apply from the next
// scheduling pass onward.
func (s *service) UpdatePreferences(ctx context.Context, userID uuid.UUID, input UpdatePreferencesInput) (*PreferencesDTO, error) {
	pref, err := s.prefs.Upsert(ctx, &models.NotificationPreference{
		UserID:        userID,
		Enable2Months: input.Enable2Months,
		Enable1Month:  input.Enable1Month,
		Enable1Week:   input.Enable1Week,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update notification preferences")
	}
	return PreferencesFromModel(pref), nil
}
