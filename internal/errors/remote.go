package errors

import (
	"errors"
	"fmt"
)

// RemoteUnavailableError represents a network or protocol failure talking to the remote store.
// StatusCode is zero when no HTTP response was received.
type RemoteUnavailableError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RemoteUnavailableError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("remote %s failed (HTTP %d): %v", e.Op, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("remote %s failed (HTTP %d)", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("remote %s failed: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("remote %s failed", e.Op)
	}
}

func (e *RemoteUnavailableError) Unwrap() error {
	return e.Err
}

// NewRemoteUnavailableError creates a RemoteUnavailableError for the given operation
func NewRemoteUnavailableError(op string, statusCode int, err error) *RemoteUnavailableError {
	return &RemoteUnavailableError{Op: op, StatusCode: statusCode, Err: err}
}

// MalformedResponseError represents a remote payload that could not be decoded as a collection.
type MalformedResponseError struct {
	Op  string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %v", e.Op, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// NewMalformedResponseError creates a MalformedResponseError for the given operation
func NewMalformedResponseError(op string, err error) *MalformedResponseError {
	return &MalformedResponseError{Op: op, Err: err}
}

// IsRemoteUnavailable reports whether err is a RemoteUnavailableError (even when wrapped).
func IsRemoteUnavailable(err error) bool {
	var remoteErr *RemoteUnavailableError
	return errors.As(err, &remoteErr)
}

// IsMalformedResponse reports whether err is a MalformedResponseError (even when wrapped).
func IsMalformedResponse(err error) bool {
	var malformedErr *MalformedResponseError
	return errors.As(err, &malformedErr)
}

// IsRemoteFailure reports whether err is any failure that should fall back to the local cache.
func IsRemoteFailure(err error) bool {
	return IsRemoteUnavailable(err) || IsMalformedResponse(err)
}
