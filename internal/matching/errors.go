package matching

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions is returned for a threshold outside [0,1] or a non-positive result limit.
var ErrInvalidOptions = errors.New("invalid match options")

// ProviderError reports a failed embedding call: rate limit, auth, malformed input, or timeout.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IndexError reports a failed vector index call: unreachable, dimension mismatch, or bad filter.
type IndexError struct {
	Op  string
	Err error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("vector index %s: %v", e.Op, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }
