// Package errors defines the error kinds the social engine returns and maps
// them onto gRPC status codes.
package errors

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound: a referenced identity, room, message or edge is missing.
	ErrNotFound = errors.New("not found")
	// ErrRoomNotFound is the NotFound kind for chat rooms.
	ErrRoomNotFound = fmt.Errorf("chat room %w", ErrNotFound)
	// ErrAlreadyExists: duplicate creation that the caller asked to be strict about.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidOperation: self-follow, self-like, non-participant sender and similar.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrStorageUnavailable: the durable store failed; the driver error is attached.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrRateLimited: the sender exceeded the message send rate.
	ErrRateLimited = errors.New("rate limited")
)

// Is, As and New re-export the standard helpers so callers importing this
// package under its own name still have them.
var (
	Is  = errors.Is
	As  = errors.As
	New = errors.New
)

// Invalid returns an ErrInvalidOperation carrying msg.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOperation, fmt.Sprintf(format, args...))
}

// NotFound returns an ErrNotFound naming what was missing.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// Storage classifies an error coming out of gorm or the Redis client.
// Domain kinds and context errors pass through, record-not-found becomes
// ErrNotFound and everything else is reported as ErrStorageUnavailable
// with the original error kept in the chain.
func Storage(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrInvalidOperation),
		errors.Is(err, ErrStorageUnavailable),
		errors.Is(err, ErrRateLimited):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("record %w", ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	default:
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
}

// Kind names the error kind of err for logs and metric labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrInvalidOperation):
		return "invalid_operation"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrStorageUnavailable):
		return "storage_unavailable"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal"
	}
}
