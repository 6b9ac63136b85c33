package cron

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeOverdueRepo struct {
	asOf    time.Time
	changed int64
	err     error
}

func (f *fakeOverdueRepo) MarkOverdue(_ context.Context, asOf time.Time) (int64, error) {
	f.asOf = asOf
	return f.changed, f.err
}

func TestOverdueRenewalJobSweeps(t *testing.T) {
	repo := &fakeOverdueRepo{changed: 3}
	job, err := NewOverdueRenewalJob(OverdueRenewalJobParams{
		Logger:     cronLogger(),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if repo.asOf.IsZero() {
		t.Fatal("expected sweep timestamp to be passed through")
	}
}

func TestOverdueRenewalJobPropagatesError(t *testing.T) {
	repo := &fakeOverdueRepo{err: errors.New("db down")}
	job, err := NewOverdueRenewalJob(OverdueRenewalJobParams{
		Logger:     cronLogger(),
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error to propagate")
	}
}

type fakeCleanupRepo struct {
	cutoff  time.Time
	deleted int64
}

func (f *fakeCleanupRepo) DeleteSentBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.deleted, nil
}

func TestNotificationCleanupJobUsesRetention(t *testing.T) {
	repo := &fakeCleanupRepo{deleted: 10}
	job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:        cronLogger(),
		Repository:    repo,
		RetentionDays: 30,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	wantCutoff := time.Now().UTC().Add(-30 * 24 * time.Hour)
	if diff := repo.cutoff.Sub(wantCutoff); diff < -time.Minute || diff > time.Minute {
		t.Fatalf("cutoff %v not near expected %v", repo.cutoff, wantCutoff)
	}
}
