package services

import (
	"context"
	"errors"
	"time"

	"github.com/harborpay/payroll-core/modules/payroll/domain/types"
)

// RunRequest is one logical payroll-run request.
type RunRequest struct {
	CompanyID      string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	PayDate        time.Time
	RequestedBy    string
	IdempotencyKey string
}

// RunCoordinator executes a run under the run lock: acquire, orchestrate,
// release with a terminal status. The release runs on every path out of the
// orchestrator, including panics, so no lock is left ACTIVE behind an
// error; the TTL expiry remains a safety net only.
type RunCoordinator struct {
	locks *RunLockService
	orch  *Orchestrator
}

func NewRunCoordinator(locks *RunLockService, orch *Orchestrator) *RunCoordinator {
	return &RunCoordinator{locks: locks, orch: orch}
}

func (c *RunCoordinator) Execute(ctx context.Context, req RunRequest) ([]types.PayrollRecord, error) {
	if err := (types.PayPeriod{
		CompanyID: req.CompanyID,
		StartDate: req.PeriodStart,
		EndDate:   req.PeriodEnd,
		PayDate:   req.PayDate,
	}).Validate(); err != nil {
		return nil, err
	}

	lock, err := c.locks.Acquire(ctx, req.CompanyID, req.PeriodStart, req.PeriodEnd, req.PayDate, req.RequestedBy, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	released := false
	defer func() {
		if !released {
			// Release must survive a cancelled request context.
			_ = c.locks.Release(context.Background(), lock.ID, false)
		}
	}()

	records, runErr := c.orch.Run(ctx, req.CompanyID, req.PeriodStart, req.PeriodEnd, req.PayDate)
	released = true
	if runErr != nil {
		if relErr := c.locks.Release(context.Background(), lock.ID, false); relErr != nil {
			return nil, errors.Join(runErr, relErr)
		}
		return nil, runErr
	}
	if err := c.locks.Release(ctx, lock.ID, true); err != nil {
		return nil, err
	}
	return records, nil
}
