// Package guard provides short-lived, per-key exclusion used to keep two
// activations of the same recipient from running at once.
package guard

import (
	"context"

	"github.com/pkg/errors"
)

// ErrHeld is returned by Acquire when the key is already held.
var ErrHeld = errors.New("guard already held")

// ReleaseFunc releases a held guard. It is safe to call more than once.
type ReleaseFunc func()

// Guard hands out exclusive, expiring holds on keys.
type Guard interface {
	// Acquire takes the key, returning ErrHeld if another caller holds it. The
	// hold expires on its own after the guard's TTL if never released.
	Acquire(ctx context.Context, key string) (ReleaseFunc, error)
}

// None is a Guard that never blocks.
type None struct{}

// Acquire implements Guard.Acquire.
func (None) Acquire(context.Context, string) (ReleaseFunc, error) {
	return func() {}, nil
}
