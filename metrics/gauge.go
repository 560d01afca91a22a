package metrics

import (
	"sync"
	"time"
)

// DefaultGaugeInterval is the polling interval used by NewGauge.
const DefaultGaugeInterval = 10 * time.Second

// GaugeFunc returns the current value of a gauge.
type GaugeFunc func() float64

// Gauge periodically submits the value returned by its GaugeFunc until
// stopped.
type Gauge struct {
	client Client
	name   string
	tags   []string
	f      GaugeFunc

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewGauge starts polling f every DefaultGaugeInterval.
func NewGauge(client Client, name string, f GaugeFunc, tagOptions ...TagOption) (*Gauge, error) {
	return NewGaugeWithInterval(client, name, DefaultGaugeInterval, f, tagOptions...)
}

// NewGaugeWithInterval starts polling f at the provided interval.
func NewGaugeWithInterval(client Client, name string, interval time.Duration, f GaugeFunc, tagOptions ...TagOption) (*Gauge, error) {
	if err := validateMetricName(name); err != nil {
		return nil, err
	}

	g := &Gauge{
		client: client,
		name:   name,
		tags:   GetTags(tagOptions...),
		f:      f,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go g.poll(interval)

	return g, nil
}

func (g *Gauge) poll(interval time.Duration) {
	defer close(g.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopCh:
			return
		case <-ticker.C:
			_ = g.client.Gauge(g.name, g.f(), g.tags)
		}
	}
}

// Stop halts polling. It blocks until the polling goroutine has exited and is
// safe to call more than once.
func (g *Gauge) Stop() {
	g.stopOnce.Do(func() {
		close(g.stopCh)
	})
	<-g.doneCh
}
