package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrMalformedEvent = errors.New("malformed event")
	ErrUpstream       = errors.New("upstream error")
	ErrNoProfile      = errors.New("no quality profile could be determined")
	ErrNoServer       = errors.New("no destination server configured")
	ErrNoCategory     = errors.New("no category configuration found")
)

// UpstreamError wraps a failed call to the request platform.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() []error {
	return []error{ErrUpstream, e.Err}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedEvent, fmt.Sprintf(format, args...))
}
