// Package memory provides an in-process metrics.Client that records every
// submission, for use in tests.
package memory

import (
	"sync"
	"time"

	"github.com/kinecosystem/agora-activator/metrics"
)

// ClientType is the type name registered with metrics.RegisterClientCtor.
const ClientType = "memory"

func init() {
	metrics.RegisterClientCtor(ClientType, func(config *metrics.ClientConfig) (metrics.Client, error) {
		return New(config), nil
	})
}

// Record is a single submission.
type Record struct {
	Name   string
	Tags   []string
	Count  int64
	Gauge  float64
	Timing time.Duration
}

// Client records submissions in memory.
type Client struct {
	config *metrics.ClientConfig

	mu      sync.Mutex
	counts  []Record
	gauges  []Record
	timings []Record
}

// New returns an empty Client. A nil config uses an empty namespace.
func New(config *metrics.ClientConfig) *Client {
	if config == nil {
		config = &metrics.ClientConfig{}
	}
	return &Client{config: config}
}

func (c *Client) record(name string, tags []string) Record {
	if c.config.Namespace != "" {
		name = c.config.Namespace + "." + name
	}

	all := make([]string, 0, len(tags)+len(c.config.GlobalTags))
	all = append(all, tags...)
	all = append(all, c.config.GlobalTags...)

	return Record{Name: name, Tags: all}
}

// Count implements metrics.Client.Count.
func (c *Client) Count(name string, value int64, tags []string) error {
	r := c.record(name, tags)
	r.Count = value

	c.mu.Lock()
	c.counts = append(c.counts, r)
	c.mu.Unlock()
	return nil
}

// Gauge implements metrics.Client.Gauge.
func (c *Client) Gauge(name string, value float64, tags []string) error {
	r := c.record(name, tags)
	r.Gauge = value

	c.mu.Lock()
	c.gauges = append(c.gauges, r)
	c.mu.Unlock()
	return nil
}

// Timing implements metrics.Client.Timing.
func (c *Client) Timing(name string, value time.Duration, tags []string) error {
	r := c.record(name, tags)
	r.Timing = value

	c.mu.Lock()
	c.timings = append(c.timings, r)
	c.mu.Unlock()
	return nil
}

// Close implements metrics.Client.Close.
func (c *Client) Close() error {
	return nil
}

// Counts returns the recorded Count submissions.
func (c *Client) Counts() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Record(nil), c.counts...)
}

// Gauges returns the recorded Gauge submissions.
func (c *Client) Gauges() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Record(nil), c.gauges...)
}

// Timings returns the recorded Timing submissions.
func (c *Client) Timings() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Record(nil), c.timings...)
}

// CountTotal sums every Count submission for name (including namespace).
func (c *Client) CountTotal(name string) int64 {
	var total int64
	for _, r := range c.Counts() {
		if r.Name == name {
			total += r.Count
		}
	}
	return total
}
