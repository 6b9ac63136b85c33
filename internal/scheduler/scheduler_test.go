package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltedge/renewals-backend/pkg/db/models"
	"github.com/voltedge/renewals-backend/pkg/enums"
	pkgerrors "github.com/voltedge/renewals-backend/pkg/errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type stubNotificationsRepo struct {
	byRenewal map[uuid.UUID][]*models.Notification
	deletes   []uuid.UUID
}

func newStubNotificationsRepo() *stubNotificationsRepo {
	return &stubNotificationsRepo{byRenewal: make(map[uuid.UUID][]*models.Notification)}
}

func (s *stubNotificationsRepo) Create(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	notification.ID = uuid.New()
	s.byRenewal[notification.RenewalID] = append(s.byRenewal[notification.RenewalID], notification)
	return notification, nil
}

func (s *stubNotificationsRepo) DeleteByRenewal(ctx context.Context, renewalID uuid.UUID) error {
	s.deletes = append(s.deletes, renewalID)
	delete(s.byRenewal, renewalID)
	return nil
}

type stubPreferencesRepo struct {
	byUser  map[uuid.UUID]*models.NotificationPreference
	created []*models.NotificationPreference
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

func (s *stubPreferencesRepo) Create(ctx context.Context, pref *models.NotificationPreference) (*models.NotificationPreference, error) {
	pref.ID = uuid.New()
	s.byUser[pref.UserID] = pref
	s.created = append(s.created, pref)
	return pref, nil
}

func newTestScheduler(t *testing.T, notifications *stubNotificationsRepo, preferences *stubPreferencesRepo, now time.Time) *Scheduler {
	t.Helper()
	sched, err := New(notifications, preferences, func() time.Time { return now })
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return sched
}

func TestComputeNextDueDateFixedIntervals(t *testing.T) {
	last := date(2024, time.March, 10)
	cases := []struct {
		interval enums.IntervalType
		months   int
	}{
		{enums.IntervalAnnual, 12},
		{enums.IntervalBiAnnual, 6},
		{enums.IntervalTwoYear, 24},
		{enums.IntervalThreeYear, 36},
		{enums.IntervalFiveYear, 60},
	}
	for _, tc := range cases {
		t.Run(string(tc.interval), func(t *testing.T) {
			got, err := ComputeNextDueDate(last, tc.interval, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := last.AddDate(0, tc.months, 0)
			if !got.Equal(want) {
				t.Fatalf("expected %s, got %s", want, got)
			}
		})
	}
}

func TestComputeNextDueDateAnnualExample(t *testing.T) {
	got, err := ComputeNextDueDate(date(2024, time.January, 15), enums.IntervalAnnual, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(date(2025, time.January, 15)) {
		t.Fatalf("expected 2025-01-15, got %s", got)
	}
}

func TestComputeNextDueDateCustom(t *testing.T) {
	months := 9
	got, err := ComputeNextDueDate(date(2024, time.January, 15), enums.IntervalCustom, &months)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(date(2024, time.October, 15)) {
		t.Fatalf("expected 2024-10-15, got %s", got)
	}
}

func TestComputeNextDueDateCustomMissingMonths(t *testing.T) {
	_, err := ComputeNextDueDate(date(2024, time.January, 15), enums.IntervalCustom, nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	zero := 0
	_, err = ComputeNextDueDate(date(2024, time.January, 15), enums.IntervalCustom, &zero)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero months, got %v", err)
	}
}

func TestComputeNextDueDateUnknownInterval(t *testing.T) {
	_, err := ComputeNextDueDate(date(2024, time.January, 15), "monthly", nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func allEnabledPrefs(userID uuid.UUID) *models.NotificationPreference {
	return &models.NotificationPreference{
		UserID:        userID,
		Enable2Months: true,
		Enable1Month:  true,
		Enable1Week:   true,
	}
}

func annualRenewal(salesperson *uuid.UUID) *models.Renewal {
	return &models.Renewal{
		ID:                    uuid.New(),
		CustomerID:            uuid.New(),
		LastServiceDate:       date(2024, time.January, 15),
		NextDueDate:           date(2025, time.January, 15),
		IntervalType:          enums.IntervalAnnual,
		AssignedSalespersonID: salesperson,
	}
}

func TestBuildNotificationsAllWindowsInFuture(t *testing.T) {
	salesperson := uuid.New()
	renewal := annualRenewal(&salesperson)

	specs := BuildNotifications(renewal, allEnabledPrefs(salesperson), date(2024, time.June, 1))
	if len(specs) != 3 {
		t.Fatalf("expected 3 specs, got %d", len(specs))
	}

	want := map[enums.NotificationType]time.Time{
		enums.NotificationTwoMonths: date(2024, time.November, 15),
		enums.NotificationOneMonth:  date(2024, time.December, 15),
		enums.NotificationOneWeek:   date(2025, time.January, 8),
	}
	for _, spec := range specs {
		expected, ok := want[spec.Type]
		if !ok {
			t.Fatalf("unexpected type %s", spec.Type)
		}
		if !spec.ScheduledDate.Equal(expected) {
			t.Fatalf("%s: expected %s, got %s", spec.Type, expected, spec.ScheduledDate)
		}
		if spec.SalespersonID != salesperson {
			t.Fatalf("expected salesperson %s, got %s", salesperson, spec.SalespersonID)
		}
		if spec.RenewalID != renewal.ID {
			t.Fatal("spec bound to wrong renewal")
		}
		delete(want, spec.Type)
	}
}

func TestBuildNotificationsLateEvaluation(t *testing.T) {
	salesperson := uuid.New()
	renewal := annualRenewal(&salesperson)

	specs := BuildNotifications(renewal, allEnabledPrefs(salesperson), date(2024, time.December, 20))
	if len(specs) != 1 {
		t.Fatalf("expected only 1_week spec, got %d", len(specs))
	}
	if specs[0].Type != enums.NotificationOneWeek {
		t.Fatalf("expected 1_week, got %s", specs[0].Type)
	}
	if !specs[0].ScheduledDate.Equal(date(2025, time.January, 8)) {
		t.Fatalf("expected 2025-01-08, got %s", specs[0].ScheduledDate)
	}
}

func TestBuildNotificationsNeverEmitsPast(t *testing.T) {
	salesperson := uuid.New()
	renewal := annualRenewal(&salesperson)

	now := date(2025, time.June, 1)
	if specs := BuildNotifications(renewal, allEnabledPrefs(salesperson), now); len(specs) != 0 {
		t.Fatalf("expected no specs after due date, got %d", len(specs))
	}

	// a scheduled date equal to now is not strictly after it
	boundary := date(2025, time.January, 8)
	if specs := BuildNotifications(renewal, allEnabledPrefs(salesperson), boundary); len(specs) != 0 {
		t.Fatalf("expected no specs at boundary, got %d", len(specs))
	}
}

func TestBuildNotificationsRespectsPreferences(t *testing.T) {
	salesperson := uuid.New()
	renewal := annualRenewal(&salesperson)
	prefs := &models.NotificationPreference{
		UserID:        salesperson,
		Enable2Months: false,
		Enable1Month:  true,
		Enable1Week:   false,
	}

	specs := BuildNotifications(renewal, prefs, date(2024, time.June, 1))
	if len(specs) != 1 {
		t.Fatalf("expected 1 spec, got %d", len(specs))
	}
	if specs[0].Type != enums.NotificationOneMonth {
		t.Fatalf("expected 1_month, got %s", specs[0].Type)
	}
}

func TestBuildNotificationsUnassignedRenewal(t *testing.T) {
	renewal := annualRenewal(nil)
	if specs := BuildNotifications(renewal, nil, date(2024, time.June, 1)); specs != nil {
		t.Fatalf("expected nil specs for unassigned renewal, got %v", specs)
	}
}

func TestResolvePreferencesCreatesDefaults(t *testing.T) {
	notifications := newStubNotificationsRepo()
	preferences := newStubPreferencesRepo()
	sched := newTestScheduler(t, notifications, preferences, date(2024, time.June, 1))

	userID := uuid.New()
	pref, err := sched.ResolvePreferences(context.Background(), userID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !pref.Enable2Months || !pref.Enable1Month || !pref.Enable1Week {
		t.Fatal("expected all-enabled defaults")
	}
	if len(preferences.created) != 1 {
		t.Fatal("expected default row persisted")
	}

	// second resolve reads the persisted row
	if _, err := sched.ResolvePreferences(context.Background(), userID); err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if len(preferences.created) != 1 {
		t.Fatal("expected no duplicate default row")
	}
}

func TestScheduleForRenewalPersistsPending(t *testing.T) {
	notifications := newStubNotificationsRepo()
	preferences := newStubPreferencesRepo()
	sched := newTestScheduler(t, notifications, preferences, date(2024, time.June, 1))

	salesperson := uuid.New()
	renewal := annualRenewal(&salesperson)
	if err := sched.ScheduleForRenewal(context.Background(), renewal); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	stored := notifications.byRenewal[renewal.ID]
	if len(stored) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(stored))
	}
	for _, n := range stored {
		if n.Status != enums.NotificationStatusPending {
			t.Fatalf("expected pending status, got %s", n.Status)
		}
		if n.SalespersonID != salesperson {
			t.Fatal("wrong salesperson")
		}
	}
}

func TestScheduleForRenewalUnassignedNoOp(t *testing.T) {
	notifications := newStubNotificationsRepo()
	preferences := newStubPreferencesRepo()
	sched := newTestScheduler(t, notifications, preferences, date(2024, time.June, 1))

	renewal := annualRenewal(nil)
	if err := sched.ScheduleForRenewal(context.Background(), renewal); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(notifications.byRenewal) != 0 {
		t.Fatal("expected no notifications for unassigned renewal")
	}
	if len(preferences.created) != 0 {
		t.Fatal("expected no preference row created")
	}
}

func TestRescheduleOnUpdateReplacesStale(t *testing.T) {
	notifications := newStubNotificationsRepo()
	preferences := newStubPreferencesRepo()
	sched := newTestScheduler(t, notifications, preferences, date(2024, time.June, 1))

	salesperson := uuid.New()
	renewal := annualRenewal(&salesperson)
	if err := sched.ScheduleForRenewal(context.Background(), renewal); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	// due date moves earlier; the 2_months window has already passed
	renewal.NextDueDate = date(2024, time.July, 15)
	if err := sched.RescheduleOnUpdate(context.Background(), renewal); err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	stored := notifications.byRenewal[renewal.ID]
	if len(stored) != 2 {
		t.Fatalf("expected 2 notifications after reschedule, got %d", len(stored))
	}
	for _, n := range stored {
		if n.ScheduledDate.Before(date(2024, time.June, 1)) {
			t.Fatalf("stale notification survived: %s", n.ScheduledDate)
		}
	}
	if len(notifications.deletes) != 1 {
		t.Fatal("expected one delete-by-renewal call")
	}
}

func TestRescheduleOnUpdateIdempotent(t *testing.T) {
	notifications := newStubNotificationsRepo()
	preferences := newStubPreferencesRepo()
	sched := newTestScheduler(t, notifications, preferences, date(2024, time.June, 1))

	salesperson := uuid.New()
	renewal := annualRenewal(&salesperson)

	if err := sched.RescheduleOnUpdate(context.Background(), renewal); err != nil {
		t.Fatalf("first reschedule: %v", err)
	}
	first := len(notifications.byRenewal[renewal.ID])

	if err := sched.RescheduleOnUpdate(context.Background(), renewal); err != nil {
		t.Fatalf("second reschedule: %v", err)
	}
	second := len(notifications.byRenewal[renewal.ID])

	if first != second || first != 3 {
		t.Fatalf("expected identical sets of 3, got %d then %d", first, second)
	}
}
