package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltedge/renewals-backend/pkg/db/models"
	"github.com/voltedge/renewals-backend/pkg/enums"
	pkgerrors "github.com/voltedge/renewals-backend/pkg/errors"
	"github.com/voltedge/renewals-backend/pkg/pagination"
)

type stubNotificationsRepo struct {
	rows       []models.Notification
	next       *pagination.Cursor
	lastParams ListParams
}

func (s *stubNotificationsRepo) List(ctx context.Context, params ListParams) ([]models.Notification, *pagination.Cursor, error) {
	s.lastParams = params
	return s.rows, s.next, nil
}

type stubPreferencesRepo struct {
	byUser map[uuid.UUID]*models.NotificationPreference
}

func newStubPreferencesRepo() *stubPreferencesRepo {
	return &stubPreferencesRepo{byUser: make(map[uuid.UUID]*models.NotificationPreference)}
}

func (s *stubPreferencesRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error) {
	if pref, ok := s.byUser[userID]; ok {
		return pref, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubPreferencesRepo) Upsert(ctx context.Context, pref *models.NotificationPreference) (*models.NotificationPreference, error) {
	if existing, ok := s.byUser[pref.UserID]; ok {
		pref.ID = existing.ID
	} else {
		pref.ID = uuid.New()
	}
	s.byUser[pref.UserID] = pref
	return pref, nil
}

func newTestService(t *testing.T, repo *stubNotificationsRepo, prefs *stubPreferencesRepo) Service {
	t.Helper()
	svc, err := NewService(repo, prefs)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestServiceListFiltersAndPages(t *testing.T) {
	salesperson := uuid.New()
	created := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubNotificationsRepo{
		rows: []models.Notification{{
			ID:               uuid.New(),
			RenewalID:        uuid.New(),
			SalespersonID:    salesperson,
			NotificationType: enums.NotificationOneMonth,
			ScheduledDate:    time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC),
			Status:           enums.NotificationStatusPending,
			CreatedAt:        created,
		}},
		next: &pagination.Cursor{CreatedAt: created, ID: uuid.New()},
	}
	svc := newTestService(t, repo, newStubPreferencesRepo())

	status := enums.NotificationStatusPending
	result, err := svc.List(context.Background(), ListInput{
		SalespersonID: &salesperson,
		Status:        &status,
		Limit:         10,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(result.Notifications))
	}
	if result.Notifications[0].NotificationType != enums.NotificationOneMonth {
		t.Fatalf("unexpected type %s", result.Notifications[0].NotificationType)
	}
	if result.NextCursor == "" {
		t.Fatal("expected next cursor")
	}
	if repo.lastParams.SalespersonID == nil || *repo.lastParams.SalespersonID != salesperson {
		t.Fatal("salesperson filter not forwarded")
	}
	if repo.lastParams.Status == nil || *repo.lastParams.Status != status {
		t.Fatal("status filter not forwarded")
	}

	parsed, err := pagination.ParseCursor(result.NextCursor)
	if err != nil || parsed == nil {
		t.Fatalf("next cursor does not round-trip: %v", err)
	}
}

func TestServiceListRejectsBadInput(t *testing.T) {
	svc := newTestService(t, &stubNotificationsRepo{}, newStubPreferencesRepo())

	bad := enums.NotificationStatus("delivered")
	_, err := svc.List(context.Background(), ListInput{Status: &bad})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for status, got %v", err)
	}

	_, err = svc.List(context.Background(), ListInput{Cursor: "not-base64!!"})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for cursor, got %v", err)
	}
}

func TestServiceGetPreferencesDefaults(t *testing.T) {
	prefs := newStubPreferencesRepo()
	svc := newTestService(t, &stubNotificationsRepo{}, prefs)

	userID := uuid.New()
	got, err := svc.GetPreferences(context.Background(), userID)
	if err != nil {
		t.Fatalf("get preferences: %v", err)
	}
	if !got.Enable2Months || !got.Enable1Month || !got.Enable1Week {
		t.Fatal("expected all windows enabled by default")
	}
	if len(prefs.byUser) != 0 {
		t.Fatal("get must not persist the default row")
	}
}

func TestServiceUpdatePreferencesRoundTrip(t *testing.T) {
	prefs := newStubPreferencesRepo()
	svc := newTestService(t, &stubNotificationsRepo{}, prefs)

	userID := uuid.New()
	updated, err := svc.UpdatePreferences(context.Background(), userID, UpdatePreferencesInput{
		Enable2Months: false,
		Enable1Month:  true,
		Enable1Week:   false,
	})
	if err != nil {
		t.Fatalf("update preferences: %v", err)
	}
	if updated.Enable2Months || !updated.Enable1Month || updated.Enable1Week {
		t.Fatal("flags not applied")
	}

	got, err := svc.GetPreferences(context.Background(), userID)
	if err != nil {
		t.Fatalf("get preferences: %v", err)
	}
	if got.Enable2Months || !got.Enable1Month || got.Enable1Week {
		t.Fatal("persisted flags not returned")
	}
}
