package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestRegister(t *testing.T) {
	opts := prometheus.CounterOpts{
		Namespace: "activator_test",
		Name:      "registered_total",
	}

	first := prometheus.NewCounter(opts)
	assert.Equal(t, first, Register(first))

	// A second, distinct collector with the same descriptor resolves to the first.
	second := prometheus.NewCounter(opts)
	assert.Equal(t, first, Register(second))
}

func TestLatencyBuckets(t *testing.T) {
	for i := 1; i < len(LatencyBuckets); i++ {
		assert.True(t, LatencyBuckets[i] > LatencyBuckets[i-1])
	}
}
