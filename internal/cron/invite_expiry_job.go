package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
)

const inviteRetentionDays = 30

// inviteSweeper deletes pending unbound invite rows whose codes expired
// before a cutoff.
type inviteSweeper interface {
	DeleteExpiredPendingBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// InviteExpiryJobParams configures the invite retention sweeper.
type InviteExpiryJobParams struct {
	Logger        *logger.Logger
	Dispatchers   inviteSweeper
	Drivers       inviteSweeper
	RetentionDays int
}

// NewInviteExpiryJob constructs the invite expiry cron job. Expired codes are
// already unusable at read time; this job only reclaims the stale rows.
func NewInviteExpiryJob(params InviteExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Dispatchers == nil {
		return nil, fmt.Errorf("dispatcher sweeper required")
	}
	if params.Drivers == nil {
		return nil, fmt.Errorf("driver sweeper required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = inviteRetentionDays
	}
	return &inviteExpiryJob{
		logg:        params.Logger,
		dispatchers: params.Dispatchers,
		drivers:     params.Drivers,
		retention:   retention,
		now:         time.Now,
	}, nil
}

type inviteExpiryJob struct {
	logg        *logger.Logger
	dispatchers inviteSweeper
	drivers     inviteSweeper
	retention   int
	now         func() time.Time
}

func (j *inviteExpiryJob) Name() string { return "invite-expiry" }

func (j *inviteExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)

	var errs []error
	dispatcherRows, err := j.dispatchers.DeleteExpiredPendingBefore(ctx, cutoff)
	if err != nil {
		errs = append(errs, fmt.Errorf("sweep dispatcher invites: %w", err))
	}
	driverRows, err := j.drivers.DeleteExpiredPendingBefore(ctx, cutoff)
	if err != nil {
		errs = append(errs, fmt.Errorf("sweep driver invites: %w", err))
	}
	if combined := multierr.Combine(errs...); combined != nil {
		return combined
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":          cutoff,
		"retention_days":  j.retention,
		"dispatcher_rows": dispatcherRows,
		"driver_rows":     driverRows,
	})
	j.logg.Info(logCtx, "invite expiry sweep complete")
	return nil
}
