package types

import (
	"errors"
	"fmt"
)

// Error taxonomy. Each category is a distinct type so callers can route on
// errors.AsType without string matching.

// ConfigurationError: missing or unsupported configuration (jurisdiction
// tables, company setup). Retrying cannot succeed until the data is fixed.
type ConfigurationError struct {
	msg   string
	cause error
}

func (e *ConfigurationError) Error() string { return e.msg }
func (e *ConfigurationError) Unwrap() error { return e.cause }

func NewConfiguration(msg string, cause error) error {
	return &ConfigurationError{msg: msg, cause: cause}
}

func IsConfiguration(err error) bool {
	var t *ConfigurationError
	ok := errors.As(err, &t)
	return ok
}

// ValidationError: malformed request, rejected before any computation.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func NewValidation(msg string) error { return &ValidationError{msg: msg} }

func IsValidation(err error) bool {
	var t *ValidationError
	ok := errors.As(err, &t)
	return ok
}

// ConcurrencyError: an expected rejection from the run lock. Carries the
// conflicting lock so the caller can see who holds it and since when.
type ConcurrencyError struct {
	Code RejectCode
	Lock RunLock
}

type RejectCode string

const (
	RejectAlreadyRunning   RejectCode = "ALREADY_RUNNING"
	RejectAlreadyProcessed RejectCode = "ALREADY_PROCESSED"
	RejectDuplicateRequest RejectCode = "DUPLICATE_REQUEST"
)

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("payroll run rejected: %s (lock %s held by %s, status %s)",
		e.Code, e.Lock.ID, e.Lock.LockedBy, e.Lock.Status)
}

func NewConcurrency(code RejectCode, lock RunLock) error {
	return &ConcurrencyError{Code: code, Lock: lock}
}

func AsConcurrency(err error) (*ConcurrencyError, bool) {
	var t *ConcurrencyError
	ok := errors.As(err, &t)
	return t, ok
}

// DataError: the request was well formed but the data cannot produce a run
// (no eligible employees, employee in an unconfigured state).
type DataError struct {
	msg string
}

func (e *DataError) Error() string { return e.msg }

func NewData(msg string) error { return &DataError{msg: msg} }

func IsData(err error) bool {
	var t *DataError
	ok := errors.As(err, &t)
	return ok
}

// StorageError: opaque failure from the storage collaborator.
type StorageError struct {
	op    string
	cause error
}

func (e *StorageError) Error() string { return "storage: " + e.op + ": " + e.cause.Error() }
func (e *StorageError) Unwrap() error { return e.cause }

func NewStorage(op string, cause error) error {
	return &StorageError{op: op, cause: cause}
}

func IsStorage(err error) bool {
	var t *StorageError
	ok := errors.As(err, &t)
	return ok
}
