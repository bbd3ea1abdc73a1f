// Package ports declares the storage interfaces the payroll services
// consume. Implementations live under infrastructure/persistence.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/harborpay/payroll-core/modules/payroll/domain/types"
)

// ErrUniqueViolation signals that a create hit a uniqueness constraint.
// Stores translate their backend's condition (Postgres 23505) to this so
// services can convert races into concurrency rejections.
var ErrUniqueViolation = errors.New("unique constraint violation")

// ErrNotFound signals a lookup miss for single-row getters.
var ErrNotFound = errors.New("not found")

type CompanyStore interface {
	GetCompany(ctx context.Context, companyID string) (types.Company, error)
}

type EmployeeStore interface {
	ListActiveEmployees(ctx context.Context, companyID string) ([]types.Employee, error)
	// YTDGrossWages sums gross pay from the company's payroll records for
	// the employee in the given tax year, up to but excluding periodStart.
	YTDGrossWages(ctx context.Context, companyID, employeeID string, year int, periodStart time.Time) (int64, error)
}

// GarnishmentPayment advances a garnishment's running balance as part of a
// record batch.
type GarnishmentPayment struct {
	GarnishmentID string
	AmountCents   int64
}

type GarnishmentStore interface {
	ListActiveGarnishments(ctx context.Context, companyID, employeeID string) ([]types.Garnishment, error)
}

type PayrollRecordStore interface {
	// CreateRecordBatch persists a run's records and the matching
	// garnishment balance updates atomically: either every record lands or
	// none do.
	CreateRecordBatch(ctx context.Context, companyID string, records []types.PayrollRecord, payments []GarnishmentPayment) error
	ListRecords(ctx context.Context, companyID string, periodStart, periodEnd time.Time) ([]types.PayrollRecord, error)
}

type RunLockStore interface {
	FindLockByIdempotencyKey(ctx context.Context, key string) (types.RunLock, error)
	FindActiveLockForPeriod(ctx context.Context, companyID string, periodStart, periodEnd time.Time) (types.RunLock, error)
	FindCompletedLockForPeriod(ctx context.Context, companyID string, periodStart, periodEnd time.Time) (types.RunLock, error)
	// CreateLock returns ErrUniqueViolation when either the idempotency key
	// or the one-ACTIVE-per-period constraint is violated.
	CreateLock(ctx context.Context, lock types.RunLock) error
	// UpdateLockStatus transitions a lock out of ACTIVE. Returns
	// ErrNotFound if the lock is missing or no longer ACTIVE.
	UpdateLockStatus(ctx context.Context, lockID string, to types.RunLockStatus) error
	// ExpireStaleLocks moves every ACTIVE lock with expires_at before now to
	// EXPIRED and reports how many rows changed. Idempotent.
	ExpireStaleLocks(ctx context.Context, now time.Time) (int64, error)
}
