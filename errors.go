package dojoauth

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/dojoauth/authclient"
)

var (
	// ErrInvalidCredentials means the auth backend rejected the email/password pair.
	ErrInvalidCredentials = authclient.ErrInvalidCredentials
	// ErrAccountExists means registration hit an already registered email.
	ErrAccountExists = authclient.ErrAccountExists
	// ErrAuthUnavailable means the auth backend could not be reached or misbehaved.
	ErrAuthUnavailable = authclient.ErrUnavailable
	// ErrAuthRateLimited means the auth backend throttled the caller.
	ErrAuthRateLimited = authclient.ErrRateLimited

	// ErrValidation is matched by every [*ValidationError].
	ErrValidation = errors.New("validation failed")
	// ErrStorageCorrupt marks a stored session record that failed decoding or
	// schema checks. Initialize reports it through audit and metrics only.
	ErrStorageCorrupt = errors.New("stored session corrupt")
	// ErrInviteDispatchFailed wraps every failure of the invitation backend.
	ErrInviteDispatchFailed = errors.New("invite dispatch failed")
	// ErrStoreNotReady is returned by operations called before Initialize.
	ErrStoreNotReady = errors.New("session store not initialized")
	// ErrStoreClosed is returned by operations called after Close.
	ErrStoreClosed = errors.New("session store closed")
	// ErrUnauthenticated is returned by operations that need a current session.
	ErrUnauthenticated = errors.New("no authenticated session")
	// ErrSessionPersist means the new session could not be written to storage;
	// the previous state is kept.
	ErrSessionPersist = errors.New("session persist failed")
	// ErrSessionClear means the stored session could not be removed; the
	// current session is kept.
	ErrSessionClear = errors.New("session clear failed")
)

// ValidationError reports a malformed input field. It is returned before any
// call to the auth backend.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Retryable reports whether err is an invite dispatch failure worth retrying.
// Backend rejections and duplicate accounts are final.
func Retryable(err error) bool {
	if !errors.Is(err, ErrInviteDispatchFailed) {
		return false
	}
	return !errors.Is(err, authclient.ErrRejected) && !errors.Is(err, authclient.ErrAccountExists)
}
