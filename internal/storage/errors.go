package storage

import (
	"errors"
	"fmt"
	"net"
)

// ErrKind is the machine-readable classification carried by every gateway
// error. The same kinds appear verbatim in per-file upload results and in
// HTTP error bodies.
type ErrKind string

const (
	ErrKindValidation    ErrKind = "validation_error"
	ErrKindConfiguration ErrKind = "configuration_error"
	ErrKindWrite         ErrKind = "storage_write_error"
	ErrKindRead          ErrKind = "storage_read_error"
	ErrKindNotFound      ErrKind = "not_found"
	ErrKindCanceled      ErrKind = "canceled"
)

// Error is the gateway error type. Op names the failing operation
// ("seaweedfs.assign", "s3.get", ...). Orphan, when non-nil, is a locator
// that was reserved or written but could not be committed and needs
// operator reconciliation.
type Error struct {
	Kind   ErrKind
	Op     string
	Err    error
	Orphan *Locator
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified error.
func NewError(kind ErrKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// WriteError builds a storage_write_error, attaching the orphaned locator
// when the failure stranded a reserved id or partial blob.
func WriteError(op string, err error, orphan *Locator) *Error {
	return &Error{Kind: ErrKindWrite, Op: op, Err: err, Orphan: orphan}
}

// KindOf extracts the error kind, defaulting to storage_write_error for
// unclassified errors coming out of a Put and read errors elsewhere being
// classified by their producer.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindWrite
}

// IsNotFound reports whether err is a not-found classification.
func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}

// OrphanOf returns the orphaned locator attached to err, if any.
func OrphanOf(err error) *Locator {
	var e *Error
	if errors.As(err, &e) {
		return e.Orphan
	}
	return nil
}

// isTransient reports whether an error is a network-class failure worth
// retrying: timeouts, refused connections, reset streams. Anything else
// (4xx from the backend, malformed response) fails immediately.
func isTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
