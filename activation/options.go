package activation

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/kinecosystem/agora-activator/config"
	"github.com/kinecosystem/agora-activator/guard"
)

// Option configures an Activator.
type Option func(a *Activator)

// WithGuard sets the in-flight guard held for the duration of an activation.
func WithGuard(g guard.Guard) Option {
	return func(a *Activator) {
		a.guard = g
	}
}

// WithAmount sets the source of the activation amount, in coins (e.g. "0.5").
// It is read on every activation.
func WithAmount(amount *config.String) Option {
	return func(a *Activator) {
		a.amount = amount
	}
}

// WithMessage sets the source of the welcome message text.
func WithMessage(message *config.String) Option {
	return func(a *Activator) {
		a.message = message
	}
}

// WithTimeout sets the source of the deadline applied to a whole activation.
// A zero or negative value leaves the caller's deadline in place.
func WithTimeout(timeout *config.Duration) Option {
	return func(a *Activator) {
		a.timeout = timeout
	}
}

// WithTracerProvider sets the provider used for activation spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(a *Activator) {
		a.tracer = tp.Tracer(instrumentationName)
	}
}
