package domain

import (
	"errors"
	"fmt"
)

var (
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedProcessRequest = "failed to process request"

	ErrConfigInvalid = errors.New("invalid configuration")
)

// ErrAbsent is the normal "source has no data" outcome of a nutrition
// lookup. It drives the tier fallback and is never treated as a fault.
var ErrAbsent = errors.New("no data for barcode")

// TransientError wraps a network or 5xx fault. Lookups fall through to the
// next tier on it; only diary submission retries it.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient failure: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

func Transient(op string, err error) error {
	return &TransientError{Op: op, Err: err}
}

func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// AuthError means the diary credential is missing or rejected. Fatal:
// scanning must stop until the operator fixes the credential.
type AuthError struct {
	Op     string
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication rejected (status %d)", e.Op, e.Status)
}

func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// ValidationError means the diary service rejected the entry payload.
// Fatal for that scan only; logged, never retried.
type ValidationError struct {
	Op     string
	Status int
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: entry rejected (status %d): %s", e.Op, e.Status, e.Detail)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// DeviceError means the input device is unavailable or busy. Fatal at
// startup; logged-and-exit if it happens mid-run.
type DeviceError struct {
	Path string
	Err  error
}

func (e *DeviceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("input device: %v", e.Err)
	}
	return fmt.Sprintf("input device %s: %v", e.Path, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

func IsDeviceError(err error) bool {
	var de *DeviceError
	return errors.As(err, &de)
}
