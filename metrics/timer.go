package metrics

import (
	"time"
)

// Timer submits durations for a named metric.
type Timer struct {
	client Client
	name   string
	tags   []string
}

// NewTimer returns a Timer submitting to client.
func NewTimer(client Client, name string, tagOptions ...TagOption) (*Timer, error) {
	if err := validateMetricName(name); err != nil {
		return nil, err
	}

	return &Timer{
		client: client,
		name:   name,
		tags:   GetTags(tagOptions...),
	}, nil
}

// Observe submits an already measured duration.
func (t *Timer) Observe(d time.Duration, tagOptions ...TagOption) {
	_ = t.client.Timing(t.name, d, mergeTags(t.tags, tagOptions))
}

// Since submits the time elapsed since start.
//
// Typical usage:
//
//	defer timer.Since(time.Now())
func (t *Timer) Since(start time.Time, tagOptions ...TagOption) {
	t.Observe(time.Since(start), tagOptions...)
}
