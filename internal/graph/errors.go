package graph

import (
	"errors"
	"fmt"
)

// Error is a caller-recoverable condition detected by the graph layer.
//
// These are expected outcomes of normal operation (a missing Thing, a
// create on a live key, a malformed URL) and are distinguishable from
// storage-layer failures, which propagate as plain wrapped errors.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// URL identifies the affected Thing or view, when known.
	URL string
}

// ErrorCode categorizes graph errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates no current (non-tombstoned) row exists.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeAlreadyExists indicates a create hit a live key.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// ErrCodeInvalidReference indicates a URL that does not decompose
	// into (ns, type, id).
	ErrCodeInvalidReference ErrorCode = "INVALID_REFERENCE"

	// ErrCodeVersionConflict indicates an update/delete carried an
	// expected version that no longer matches the current row.
	ErrCodeVersionConflict ErrorCode = "VERSION_CONFLICT"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.URL)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsNotFound reports whether err is a NotFound graph error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsAlreadyExists reports whether err is an AlreadyExists graph error.
func IsAlreadyExists(err error) bool { return hasCode(err, ErrCodeAlreadyExists) }

// IsInvalidReference reports whether err is an InvalidReference graph error.
func IsInvalidReference(err error) bool { return hasCode(err, ErrCodeInvalidReference) }

// IsVersionConflict reports whether err is a VersionConflict graph error.
func IsVersionConflict(err error) bool { return hasCode(err, ErrCodeVersionConflict) }

func hasCode(err error, code ErrorCode) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code == code
	}
	return false
}

// NewNotFound creates a NotFound error for the given URL.
func NewNotFound(url string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: "no current record", URL: url}
}

// NewAlreadyExists creates an AlreadyExists error for the given URL.
func NewAlreadyExists(url string) *Error {
	return &Error{Code: ErrCodeAlreadyExists, Message: "record already exists", URL: url}
}

// NewInvalidReference creates an InvalidReference error for a malformed URL.
func NewInvalidReference(url, detail string) *Error {
	return &Error{Code: ErrCodeInvalidReference, Message: "malformed url: " + detail, URL: url}
}

// NewVersionConflict creates a VersionConflict error.
func NewVersionConflict(url string, expected, current int64) *Error {
	return &Error{
		Code:    ErrCodeVersionConflict,
		Message: fmt.Sprintf("expected version %d, current is %d", expected, current),
		URL:     url,
	}
}
