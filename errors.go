package crmkv

import "errors"

var (
	// ErrInvalidQuery is returned when a query is malformed, or has no conditions where they are required.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrStoreUnavailable wraps transport and backend failures.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrNotFound is returned when the record targeted by an update or delete does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrValidation is returned when the store rejects a record's entity, fields or values.
	ErrValidation = errors.New("validation error")
	// ErrMissingField is returned when a field required to build a record is absent from the source record.
	ErrMissingField = errors.New("missing field")
	// ErrPreconditionViolation is returned when a selection rule is given records in an order it cannot use.
	ErrPreconditionViolation = errors.New("precondition violation")
)
