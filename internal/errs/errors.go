// Package errs provides the unified error type used across all of markdrop.
//
// Every subsystem (object storage, upload pipeline, settings surface, …)
// wraps its native errors into *errs.Error before returning them to callers.
// Callers use the Is* predicates to handle errors without importing
// driver-specific packages.
//
// Usage:
//
//	// In a driver — wrap native errors:
//	return errs.Wrap(errs.ErrKindUploadFailed, "put object failed", minioErr)
//
//	// In a caller — check error kind:
//	if errs.IsConfigMissing(err) {
//	    notifier.Notify("storage settings are incomplete")
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing subsystem-specific codes.
// The storage driver maps its native errors to one of these kinds, giving
// the pipeline and the settings surface a single consistent API.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindConfigMissing            // a required credential/endpoint field is empty
	ErrKindNoDocument               // no active document to insert links into
	ErrKindUploadFailed             // the remote put operation failed
	ErrKindConnectionFailed         // cannot reach the storage backend
	ErrKindTimeout                  // context deadline / cancellation
	ErrKindInvalidInput             // bad arguments from the caller
	ErrKindPermissionDenied         // access denied / auth failure
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindConfigMissing:
		return "config_missing"
	case ErrKindNoDocument:
		return "no_document"
	case ErrKindUploadFailed:
		return "upload_failed"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindPermissionDenied:
		return "permission_denied"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all markdrop subsystems.
// Drivers produce it; callers inspect it via the Is* predicates below.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // original driver-level error, preserved for notices and logs
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsConfigMissing reports whether err was caused by an incomplete
// storage configuration (empty bucket, key, or endpoint).
func IsConfigMissing(err error) bool {
	return kindOf(err) == ErrKindConfigMissing
}

// IsNoDocument reports whether err means there was no active document
// to insert links into.
func IsNoDocument(err error) bool {
	return kindOf(err) == ErrKindNoDocument
}

// IsUploadFailed reports whether err is a storage put failure.
func IsUploadFailed(err error) bool {
	return kindOf(err) == ErrKindUploadFailed
}

// IsConnectionFailed reports whether err is a connectivity failure.
func IsConnectionFailed(err error) bool {
	return kindOf(err) == ErrKindConnectionFailed
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return kindOf(err) == ErrKindTimeout
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return kindOf(err) == ErrKindInvalidInput
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return kindOf(err) == ErrKindPermissionDenied
}

// kindOf extracts the ErrKind from any error in the chain.
func kindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
