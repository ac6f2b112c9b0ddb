// Package errorspkg provides common app errors.
package errorspkg

import "errors"

// ErrInternal indicates internal server error.
var ErrInternal = errors.New("internal")

// ErrUnavailable indicates a transient failure; the caller may retry.
var ErrUnavailable = errors.New("temporarily unavailable")
