package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/voltedge/renewals-backend/pkg/logger"
)

type overdueRenewalsRepo interface {
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

// OverdueRenewalJobParams configure the overdue-status job.
type OverdueRenewalJobParams struct {
	Logger     *logger.Logger
	Repository overdueRenewalsRepo
}

// NewOverdueRenewalJob builds the job that flips past-due renewals to the
// overdue status.
func NewOverdueRenewalJob(params OverdueRenewalJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("renewals repository required")
	}
	return &overdueRenewalJob{
		logg: params.Logger,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type overdueRenewalJob struct {
	logg *logger.Logger
	repo overdueRenewalsRepo
	now  func() time.Time
}

func (j *overdueRenewalJob) Name() string { return "overdue-renewals" }

func (j *overdueRenewalJob) Run(ctx context.Context) error {
	changed, err := j.repo.MarkOverdue(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("mark overdue renewals: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "changed", changed)
	j.logg.Info(logCtx, "overdue sweep complete")
	return nil
}
