package oracle

import (
	"errors"
	"fmt"
)

// Error describes a failed oracle call. Transient errors (timeouts, quota,
// server-side failures) are safe for the caller to retry; permanent ones are
// not.
type Error struct {
	// Op names the failed operation ("chat/completions", "embeddings").
	Op string
	// Transient marks the failure as retryable.
	Transient bool
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("oracle %s: %s: %v", e.Op, kind, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.Err }

// IsTransient reports whether err is an oracle failure marked transient.
func IsTransient(err error) bool {
	var oe *Error
	return errors.As(err, &oe) && oe.Transient
}

// IsOracle reports whether err originated in a call to the oracle provider.
func IsOracle(err error) bool {
	var oe *Error
	return errors.As(err, &oe)
}
