package title

import (
	"errors"
	"fmt"
)

// Kind names a resolver failure class.
type Kind string

const (
	KindInvalidInput      Kind = "InvalidInput"
	KindUnsupportedScheme Kind = "UnsupportedScheme"
	KindUpstream          Kind = "UpstreamError"
	KindTimeout           Kind = "Timeout"
	KindFetchFailed       Kind = "FetchFailed"
	KindInternal          Kind = "Internal"
)

var (
	ErrInvalidInput      = errors.New("invalid URL format")
	ErrUnsupportedScheme = errors.New("only HTTP and HTTPS URLs are allowed")
	ErrUpstream          = errors.New("upstream returned an error status")
	ErrTimeout           = errors.New("request timeout - the page took too long to load")
	ErrFetchFailed       = errors.New("failed to fetch the page - it may be unreachable or blocked")
)

// UpstreamError reports a non-2xx response. It matches ErrUpstream.
type UpstreamError struct {
	StatusCode int
	Status     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Failed to fetch page: %d %s", e.StatusCode, e.Status)
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// KindOf classifies err. Errors outside the resolver taxonomy are Internal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrUnsupportedScheme):
		return KindUnsupportedScheme
	case errors.Is(err, ErrUpstream):
		return KindUpstream
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrFetchFailed):
		return KindFetchFailed
	default:
		return KindInternal
	}
}
