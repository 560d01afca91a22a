package metrics

// ClientConfig is the configuration handed to a ClientCtor.
type ClientConfig struct {
	// Namespace is prepended to every metric name.
	Namespace string

	// SampleRate is the fraction of observations that are submitted. Zero is
	// treated as 1 by backends that sample.
	SampleRate float64

	// GlobalTags are appended to the tags of every metric.
	GlobalTags []string
}

// ClientOption configures a ClientConfig.
type ClientOption func(c *ClientConfig)

// WithNamespace sets the namespace prepended to every metric name.
func WithNamespace(namespace string) ClientOption {
	return func(c *ClientConfig) {
		c.Namespace = namespace
	}
}

// WithSampleRate sets the sample rate.
func WithSampleRate(rate float64) ClientOption {
	return func(c *ClientConfig) {
		c.SampleRate = rate
	}
}

// WithGlobalTags adds tags that are attached to every submitted metric.
func WithGlobalTags(tagOptions ...TagOption) ClientOption {
	tags := GetTags(tagOptions...)
	return func(c *ClientConfig) {
		c.GlobalTags = append(c.GlobalTags, tags...)
	}
}

func newClientConfig(opts ...ClientOption) *ClientConfig {
	c := &ClientConfig{
		Namespace:  DefaultNamespace,
		SampleRate: 1,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}
