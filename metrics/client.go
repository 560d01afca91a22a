package metrics

import "time"

// Client exports application level metrics to a backend.
//
// Implementations register themselves with RegisterClientCtor and are created
// by type name through CreateClient.
type Client interface {
	// Count adds value to the named counter.
	Count(name string, value int64, tags []string) error

	// Gauge records the current value of the named gauge.
	Gauge(name string, value float64, tags []string) error

	// Timing records a single duration observation.
	Timing(name string, value time.Duration, tags []string) error

	// Close flushes any buffered data and releases the client's resources.
	Close() error
}

// NopClient is a Client that discards everything. It is used when no metrics
// backend has been configured.
type NopClient struct{}

func (NopClient) Count(string, int64, []string) error          { return nil }
func (NopClient) Gauge(string, float64, []string) error        { return nil }
func (NopClient) Timing(string, time.Duration, []string) error { return nil }
func (NopClient) Close() error                                 { return nil }
