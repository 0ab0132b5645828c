package shared

import (
	"context"
	"errors"
	"fmt"
)

// ErrCancelled is returned when the user cancels a running operation.
var ErrCancelled = fmt.Errorf("operation cancelled by user")

// Phase-fatal errors. They abort the running phase and are wrapped with context.
var (
	ErrTargetUnavailable  = errors.New("target volume unavailable")
	ErrStagingUnavailable = errors.New("staging directory unavailable")
	ErrFormatFailed       = errors.New("volume format failed")
	ErrInsufficientSpace  = errors.New("not enough free space on target")
)

// CheckCancelled returns ErrCancelled once ctx is done.
func CheckCancelled(ctx context.Context) error {
	if ctx.Err() != nil {
		return ErrCancelled
	}
	return nil
}

// IsCancelled reports whether err signals a user cancellation
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}
