// Package services holds the payroll run services: the run lock, the
// per-employee orchestrator, and the coordinator tying them together.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/harborpay/payroll-core/modules/payroll/domain/ports"
	"github.com/harborpay/payroll-core/modules/payroll/domain/types"
	"github.com/harborpay/payroll-core/pkg/uuidv7"
)

const lockTTL = 10 * time.Minute

// RunLockService guarantees at most one in-flight or completed payroll run
// per (company, period). All coordination between concurrent callers goes
// through the lock store's uniqueness constraints; nothing here relies on
// in-process state, so multiple service instances may run concurrently.
type RunLockService struct {
	locks ports.RunLockStore
	ttl   time.Duration
	now   func() time.Time
	newID func() (string, error)
}

func NewRunLockService(locks ports.RunLockStore) *RunLockService {
	return &RunLockService{
		locks: locks,
		ttl:   lockTTL,
		now:   time.Now,
		newID: uuidv7.NewString,
	}
}

// DeriveIdempotencyKey hashes the logical run request so identical requests
// collide even across client retries.
func DeriveIdempotencyKey(companyID string, periodStart, periodEnd, payDate time.Time) string {
	h := sha256.New()
	h.Write([]byte(companyID + "|" +
		periodStart.Format("2006-01-02") + "|" +
		periodEnd.Format("2006-01-02") + "|" +
		payDate.Format("2006-01-02")))
	return hex.EncodeToString(h.Sum(nil))
}

// Acquire grants an ACTIVE lock or rejects with a ConcurrencyError carrying
// the conflicting lock. An expired ACTIVE lock is reclaimed in place.
func (s *RunLockService) Acquire(ctx context.Context, companyID string, periodStart, periodEnd, payDate time.Time, requestedBy, idempotencyKey string) (types.RunLock, error) {
	key := strings.TrimSpace(idempotencyKey)
	if key == "" {
		key = DeriveIdempotencyKey(companyID, periodStart, periodEnd, payDate)
	}
	now := s.now()

	existing, err := s.locks.FindLockByIdempotencyKey(ctx, key)
	switch {
	case err == nil:
		switch {
		case existing.Status == types.RunLockCompleted:
			return types.RunLock{}, types.NewConcurrency(types.RejectDuplicateRequest, existing)
		case existing.Status == types.RunLockActive && !existing.ExpiredAt(now):
			return types.RunLock{}, types.NewConcurrency(types.RejectAlreadyRunning, existing)
		case existing.Status == types.RunLockActive:
			// Lease lapsed; the crashed holder's lock no longer blocks.
			if err := s.locks.UpdateLockStatus(ctx, existing.ID, types.RunLockExpired); err != nil && !errors.Is(err, ports.ErrNotFound) {
				return types.RunLock{}, types.NewStorage("expire stale lock", err)
			}
		}
		// FAILED and EXPIRED locks permit a fresh acquisition.
	case errors.Is(err, ports.ErrNotFound):
	default:
		return types.RunLock{}, types.NewStorage("find lock by idempotency key", err)
	}

	// A different idempotency key may still collide on the period.
	active, err := s.locks.FindActiveLockForPeriod(ctx, companyID, periodStart, periodEnd)
	switch {
	case err == nil:
		if !active.ExpiredAt(now) {
			return types.RunLock{}, types.NewConcurrency(types.RejectAlreadyRunning, active)
		}
		if err := s.locks.UpdateLockStatus(ctx, active.ID, types.RunLockExpired); err != nil && !errors.Is(err, ports.ErrNotFound) {
			return types.RunLock{}, types.NewStorage("expire stale lock", err)
		}
	case errors.Is(err, ports.ErrNotFound):
	default:
		return types.RunLock{}, types.NewStorage("find active lock", err)
	}

	completed, err := s.locks.FindCompletedLockForPeriod(ctx, companyID, periodStart, periodEnd)
	switch {
	case err == nil:
		return types.RunLock{}, types.NewConcurrency(types.RejectAlreadyProcessed, completed)
	case errors.Is(err, ports.ErrNotFound):
	default:
		return types.RunLock{}, types.NewStorage("find completed lock", err)
	}

	id, err := s.newID()
	if err != nil {
		return types.RunLock{}, types.NewStorage("generate lock id", err)
	}
	lock := types.RunLock{
		ID:             id,
		CompanyID:      companyID,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		IdempotencyKey: key,
		Status:         types.RunLockActive,
		LockedBy:       requestedBy,
		LockedAt:       now,
		ExpiresAt:      now.Add(s.ttl),
	}
	if err := s.locks.CreateLock(ctx, lock); err != nil {
		if errors.Is(err, ports.ErrUniqueViolation) {
			// Lost the race to a concurrent acquirer.
			winner, findErr := s.locks.FindActiveLockForPeriod(ctx, companyID, periodStart, periodEnd)
			if findErr != nil {
				winner = types.RunLock{CompanyID: companyID, PeriodStart: periodStart, PeriodEnd: periodEnd}
			}
			return types.RunLock{}, types.NewConcurrency(types.RejectAlreadyRunning, winner)
		}
		return types.RunLock{}, types.NewStorage("create lock", err)
	}
	return lock, nil
}

// Release transitions an ACTIVE lock to COMPLETED or FAILED. Callers must
// invoke it on every path out of the orchestrator; the TTL expiry exists
// only as a safety net for crashed processes.
func (s *RunLockService) Release(ctx context.Context, lockID string, success bool) error {
	to := types.RunLockFailed
	if success {
		to = types.RunLockCompleted
	}
	if err := s.locks.UpdateLockStatus(ctx, lockID, to); err != nil {
		return types.NewStorage("release lock", err)
	}
	return nil
}

// CleanupExpiredLocks marks every lapsed ACTIVE lock EXPIRED. Safe to run
// concurrently with acquisition.
func (s *RunLockService) CleanupExpiredLocks(ctx context.Context) (int64, error) {
	n, err := s.locks.ExpireStaleLocks(ctx, s.now())
	if err != nil {
		return 0, types.NewStorage("expire stale locks", err)
	}
	return n, nil
}
