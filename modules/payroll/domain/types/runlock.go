package types

import "time"

type RunLockStatus string

const (
	RunLockActive    RunLockStatus = "ACTIVE"
	RunLockCompleted RunLockStatus = "COMPLETED"
	RunLockFailed    RunLockStatus = "FAILED"
	RunLockExpired   RunLockStatus = "EXPIRED"
)

// RunLock serializes payroll runs per (company, period). At most one
// unexpired ACTIVE lock may exist for a given key at any instant; the
// storage layer's uniqueness constraints are the source of that guarantee.
type RunLock struct {
	ID             string
	CompanyID      string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	IdempotencyKey string
	Status         RunLockStatus
	LockedBy       string
	LockedAt       time.Time
	ExpiresAt      time.Time
}

// ExpiredAt reports whether an ACTIVE lock's lease had lapsed at the given
// instant. Terminal statuses never expire.
func (l RunLock) ExpiredAt(now time.Time) bool {
	return l.Status == RunLockActive && now.After(l.ExpiresAt)
}
