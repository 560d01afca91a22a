package activation

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kinecosystem/agora-activator/address"
	"github.com/kinecosystem/agora-activator/metrics"
)

const (
	outcomeActivated       = "activated"
	outcomePairingMismatch = "pairing_mismatch"
	outcomeAlreadyActive   = "already_active"
	outcomePending         = "pending"
	outcomeInvalid         = "invalid"
	outcomeFailed          = "failed"
)

var (
	activationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activator",
		Name:      "activations",
		Help:      "Number of activation attempts by outcome",
	}, []string{"outcome"})

	activationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "activator",
		Name:      "activation_duration_seconds",
		Help:      "Time taken by activation attempts",
		Buckets:   metrics.LatencyBuckets,
	})
)

func init() {
	activationCounter = metrics.Register(activationCounter).(*prometheus.CounterVec)
	activationDuration = metrics.Register(activationDuration).(prometheus.Histogram)
}

// Outcome classifies the result of Activate for metrics and responses.
func Outcome(err error) string {
	switch {
	case err == nil:
		return outcomeActivated
	case errors.Is(err, ErrPairingMismatch):
		return outcomePairingMismatch
	case errors.Is(err, ErrAlreadyActive):
		return outcomeAlreadyActive
	case errors.Is(err, ErrActivationPending):
		return outcomePending
	case errors.Is(err, address.ErrInvalidAddress):
		return outcomeInvalid
	default:
		return outcomeFailed
	}
}
