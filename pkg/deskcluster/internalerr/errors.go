package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrEmptyCorpus      = errors.New("empty corpus")
	ErrSampleMismatch   = errors.New("sample count mismatch")
	ErrNotReady         = errors.New("model not ready")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// SampleMismatchError reports a ticket set whose size differs from the
// number of samples the model was trained on.
type SampleMismatchError struct {
	Got  int
	Want int
}

func (e *SampleMismatchError) Error() string {
	return fmt.Sprintf("sample count mismatch: got %d tickets, model trained on %d", e.Got, e.Want)
}

func (e *SampleMismatchError) Unwrap() error { return ErrSampleMismatch }
