package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// LatencyBuckets covers node round trips, from a few milliseconds up to the
// client timeout.
var LatencyBuckets = append(
	prometheus.ExponentialBuckets(0.005, 2, 10),
	10, 20, 30,
)

// Register registers c with the default prometheus registry. If an identical
// collector is already registered, the existing one is returned instead so
// that package level collectors survive repeated registration.
func Register(c prometheus.Collector) prometheus.Collector {
	err := prometheus.Register(c)
	if err == nil {
		return c
	}

	if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
		return are.ExistingCollector
	}

	logrus.StandardLogger().WithField("type", "metrics").WithError(err).Warn("failed to register collector")
	return c
}
