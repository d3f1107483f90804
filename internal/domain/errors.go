package domain

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// Common domain errors
var (
	ErrRangeNotSupported = errors.New("server does not support range requests")
	ErrUnknownLength     = errors.New("content length unknown")
	ErrProbeFailed       = errors.New("capability probe failed")
	ErrLengthMismatch    = errors.New("content length mismatch")
	ErrRetriesExhausted  = errors.New("all download attempts failed")
)

// TransportError wraps a network or I/O failure during a transfer.
// Transport errors are transient and eligible for whole-attempt retry.
type TransportError struct {
	Op  string
	Err error
}

// Error returns the error message
func (e *TransportError) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + ": transport error"
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new transport error for the given operation
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

// IsTransport returns true if the error is a transport failure
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IntegrityError reports a mismatch between the hash declared by the
// server and the hash computed over the received bytes.
type IntegrityError struct {
	Expected []byte
	Computed []byte
}

// Error returns the error message
func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity check failed: expected %s, computed %s",
		hex.EncodeToString(e.Expected), hex.EncodeToString(e.Computed))
}

// IsIntegrity returns true if the error is an integrity failure
func IsIntegrity(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}
