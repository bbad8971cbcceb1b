// Package notifier delivers match notifications to outside systems.
package notifier

import (
	"context"
	"errors"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/bloodbowl-league/internal/platform/resilience"
)

// ErrTransient marks a delivery failure worth retrying.
var ErrTransient = crerr.New("transient notification failure")

func markTransient(err error) error {
	return crerr.Mark(err, ErrTransient)
}

// IsTransient reports whether a failed send may succeed later.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return crerr.Is(err, ErrTransient) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, resilience.ErrCircuitOpen)
}
