// Package statsd provides a metrics.Client backed by a DogStatsD agent.
package statsd

import (
	"os"
	"strconv"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kinecosystem/agora-activator/metrics"
)

// ClientType is the type name registered with metrics.RegisterClientCtor.
const ClientType = "statsd"

const (
	addrEnv   = "ACTIVATOR_STATSD_ADDR"
	bufferEnv = "ACTIVATOR_STATSD_BUFFER"

	defaultAddr   = "127.0.0.1:8125"
	defaultBuffer = 128
)

func init() {
	metrics.RegisterClientCtor(ClientType, New)
}

// Client submits metrics to a DogStatsD agent.
type Client struct {
	log    *logrus.Entry
	statsd *statsd.Client
	rate   float64
}

// New creates a buffered statsd client. The agent address and buffer length
// are read from ACTIVATOR_STATSD_ADDR and ACTIVATOR_STATSD_BUFFER.
func New(config *metrics.ClientConfig) (metrics.Client, error) {
	log := logrus.StandardLogger().WithField("type", "metrics/statsd")

	addr := os.Getenv(addrEnv)
	if addr == "" {
		addr = defaultAddr
	}

	buffer := defaultBuffer
	if raw := os.Getenv(bufferEnv); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return nil, errors.Errorf("invalid %s: %q", bufferEnv, raw)
		}
		buffer = parsed
	}

	c, err := statsd.NewBuffered(addr, buffer)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create statsd client")
	}
	if config.Namespace != "" {
		c.Namespace = config.Namespace + "."
	}
	c.Tags = config.GlobalTags

	rate := config.SampleRate
	if rate <= 0 || rate > 1 {
		rate = 1
	}

	log.WithFields(logrus.Fields{
		"addr":   addr,
		"buffer": buffer,
	}).Debug("statsd client created")

	return &Client{
		log:    log,
		statsd: c,
		rate:   rate,
	}, nil
}

// Count implements metrics.Client.Count.
func (c *Client) Count(name string, value int64, tags []string) error {
	return c.statsd.Count(name, value, tags, c.rate)
}

// Gauge implements metrics.Client.Gauge.
func (c *Client) Gauge(name string, value float64, tags []string) error {
	return c.statsd.Gauge(name, value, tags, c.rate)
}

// Timing implements metrics.Client.Timing.
func (c *Client) Timing(name string, value time.Duration, tags []string) error {
	return c.statsd.Timing(name, value, tags, c.rate)
}

// Close flushes buffered metrics and closes the connection.
func (c *Client) Close() error {
	if err := c.statsd.Close(); err != nil {
		c.log.WithError(err).Warn("failed to close statsd client")
		return err
	}
	return nil
}
