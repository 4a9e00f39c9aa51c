package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrEngineUnavailable = errors.New("audio engine unavailable")
	ErrUnsupportedSource = errors.New("unsupported audio source")
	ErrDecodeFailed      = errors.New("audio decode failed")
	ErrTrackNotLoaded    = errors.New("track source not loaded")
)

// MixError wraps errors with the operation and channel they occurred on
type MixError struct {
	Op      string // Operation that failed
	Channel string // Channel id if applicable
	Err     error  // Underlying error
}

func (e *MixError) Error() string {
	if e.Channel != "" {
		return fmt.Sprintf("%s failed on channel %s: %v", e.Op, e.Channel, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *MixError) Unwrap() error {
	return e.Err
}

// NewMixError creates a new MixError
func NewMixError(op, channel string, err error) *MixError {
	return &MixError{Op: op, Channel: channel, Err: err}
}

// SourceError represents a failure while resolving or decoding a source
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source error at %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
