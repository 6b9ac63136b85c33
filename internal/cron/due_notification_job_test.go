package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/voltedge/renewals-backend/pkg/db/models"
	"github.com/voltedge/renewals-backend/pkg/enums"
)

type fakeDueRepo struct {
	due       []models.Notification
	sent      []uuid.UUID
	listCalls int
}

func (f *fakeDueRepo) ListDue(_ context.Context, _ time.Time, limit int) ([]models.Notification, error) {
	f.listCalls++
	if len(f.due) == 0 {
		return nil, nil
	}
	batch := f.due
	if len(batch) > limit {
		batch = batch[:limit]
	}
	return batch, nil
}

func (f *fakeDueRepo) MarkSent(_ context.Context, id uuid.UUID, _ time.Time) (bool, error) {
	for i, n := range f.due {
		if n.ID == id {
			f.due = append(f.due[:i], f.due[i+1:]...)
			f.sent = append(f.sent, id)
			return true, nil
		}
	}
	return false, nil
}

type fakeDispatcher struct {
	dispatched []uuid.UUID
	failFor    map[uuid.UUID]bool
}

func (f *fakeDispatcher) Dispatch(_ context.Context, n models.Notification) error {
	if f.failFor[n.ID] {
		return errors.New("delivery failed")
	}
	f.dispatched = append(f.dispatched, n.ID)
	return nil
}

func dueNotification() models.Notification {
	return models.Notification{
		ID:               uuid.New(),
		RenewalID:        uuid.New(),
		SalespersonID:    uuid.New(),
		NotificationType: enums.NotificationOneWeek,
		ScheduledDate:    time.Now().Add(-time.Hour),
		Status:           enums.NotificationStatusPending,
	}
}

func TestDueNotificationJobDispatchesAndMarksSent(t *testing.T) {
	first := dueNotification()
	second := dueNotification()
	repo := &fakeDueRepo{due: []models.Notification{first, second}}
	dispatcher := &fakeDispatcher{}

	job, err := NewDueNotificationJob(DueNotificationJobParams{
		Logger:     cronLogger(),
		Repository: repo,
		Dispatcher: dispatcher,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(dispatcher.dispatched) != 2 {
		t.Fatalf("expected 2 dispatches, got %d", len(dispatcher.dispatched))
	}
	if len(repo.sent) != 2 {
		t.Fatalf("expected 2 marked sent, got %d", len(repo.sent))
	}
}

func TestDueNotificationJobLeavesFailedDispatchesPending(t *testing.T) {
	ok := dueNotification()
	bad := dueNotification()
	repo := &fakeDueRepo{due: []models.Notification{ok, bad}}
	dispatcher := &fakeDispatcher{failFor: map[uuid.UUID]bool{bad.ID: true}}

	job, err := NewDueNotificationJob(DueNotificationJobParams{
		Logger:     cronLogger(),
		Repository: repo,
		Dispatcher: dispatcher,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(repo.sent) != 1 || repo.sent[0] != ok.ID {
		t.Fatalf("expected only the deliverable notification to be marked sent")
	}
	if len(repo.due) != 1 || repo.due[0].ID != bad.ID {
		t.Fatalf("expected the failed notification to stay pending")
	}
}

func TestDueNotificationJobStopsWhenNothingProgresses(t *testing.T) {
	stuck := dueNotification()
	repo := &fakeDueRepo{due: []models.Notification{stuck}}
	dispatcher := &fakeDispatcher{failFor: map[uuid.UUID]bool{stuck.ID: true}}

	job, err := NewDueNotificationJob(DueNotificationJobParams{
		Logger:     cronLogger(),
		Repository: repo,
		Dispatcher: dispatcher,
		BatchSize:  1,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected a single batch before giving up, got %d", repo.listCalls)
	}
}
