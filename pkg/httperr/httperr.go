// Package httperr carries HTTP status intent across package boundaries
// without importing net/http into domain code.
package httperr

import "errors"

type BadRequestError struct {
	msg string
}

func (e *BadRequestError) Error() string { return e.msg }

func NewBadRequest(msg string) error { return &BadRequestError{msg: msg} }

func IsBadRequest(err error) bool {
	var t *BadRequestError
	ok := errors.As(err, &t)
	return ok
}

type NotFoundError struct {
	msg string
}

func (e *NotFoundError) Error() string { return e.msg }

func NewNotFound(msg string) error { return &NotFoundError{msg: msg} }

func IsNotFound(err error) bool {
	var t *NotFoundError
	ok := errors.As(err, &t)
	return ok
}

type ConflictError struct {
	msg string
}

func (e *ConflictError) Error() string { return e.msg }

func NewConflict(msg string) error { return &ConflictError{msg: msg} }

func IsConflict(err error) bool {
	var t *ConflictError
	ok := errors.As(err, &t)
	return ok
}
