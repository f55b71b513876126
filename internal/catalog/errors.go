package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a reference resolved to nothing. It is a result,
// not a failure: callers cache it like a positive lookup and never retry it.
var ErrNotFound = errors.New("not found in catalog")

// RemoteError is a failed call to the remote catalog. Retriable is decided
// at construction so the retry boundary inspects data, not error classes:
// rate limiting, server errors and transport failures are retriable, other
// HTTP errors are not.
type RemoteError struct {
	Op         string
	StatusCode int
	Retriable  bool
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsRetriable reports whether err is a transient remote failure.
func IsRetriable(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Retriable
}
