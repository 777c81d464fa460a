package diskusage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

// ErrCancelled is returned when an analysis is interrupted by its context,
// either through explicit cancellation or an elapsed timeout.
var ErrCancelled = errors.New("scan cancelled")

// ScanError reports that the analyzed directory itself could not be listed.
type ScanError struct {
	// Path is the directory that was being analyzed.
	Path string
	// Err is the underlying cause.
	Err error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scanning directory %q: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies an [AccessError].
type ErrorKind int

const (
	// IOFailure is any failure other than a permission error.
	IOFailure ErrorKind = iota
	// AccessDenied means the entry could not be read due to permissions.
	AccessDenied
	// Incomplete means a directory was measured, but some of its subtree could not be read.
	Incomplete
)

func (k ErrorKind) String() string {
	switch k {
	case AccessDenied:
		return "access denied"
	case Incomplete:
		return "incomplete"
	default:
		return "i/o failure"
	}
}

// AccessError marks an entry whose size could not be fully determined.
type AccessError struct {
	// Path is the entry that could not be measured.
	Path string
	// Kind classifies the failure.
	Kind ErrorKind
	// Err is the first underlying failure.
	Err error
}

func (e *AccessError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}

	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

// MarshalText renders the error as its message, for JSON output.
func (e *AccessError) MarshalText() ([]byte, error) {
	return []byte(e.Error()), nil
}

// newAccessError classifies err as a permission or generic I/O failure.
func newAccessError(path string, err error) *AccessError {
	kind := IOFailure
	if errors.Is(err, fs.ErrPermission) {
		kind = AccessDenied
	}

	return &AccessError{Path: path, Kind: kind, Err: err}
}

// cancelled wraps the context cause so that callers can match both
// ErrCancelled and context.Canceled or context.DeadlineExceeded.
func cancelled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
}
