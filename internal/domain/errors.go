package domain

import (
	"errors"
	"fmt"
)

// ErrAuthRequired is returned by gated actions when the caller is not
// logged in.
var ErrAuthRequired = errors.New("authentication required")

// NetworkError covers failed requests and malformed responses.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetwork reports whether err is (or wraps) a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
