package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kinecosystem/agora-activator/timeutil"
)

// String is a Config holding a string, with a default used when no valid
// value is available.
type String struct {
	log    *logrus.Entry
	config Config
	def    string
}

// NewString wraps c. A nil c always yields def.
func NewString(c Config, def string) *String {
	return &String{
		log:    logrus.StandardLogger().WithField("type", "config/string"),
		config: c,
		def:    def,
	}
}

// Get returns the current value, or the default if none is set.
func (s *String) Get(ctx context.Context) string {
	if s.config == nil {
		return s.def
	}

	raw, err := s.config.Get(ctx)
	if err != nil {
		if err != ErrNoValue {
			s.log.WithError(err).Warn("failed to get config value, using default")
		}
		return s.def
	}

	v, err := toString(raw)
	if err != nil {
		s.log.WithError(err).Warn("invalid config value, using default")
		return s.def
	}
	return v
}

// Shutdown shuts down the underlying Config.
func (s *String) Shutdown() {
	if s.config != nil {
		s.config.Shutdown()
	}
}

// Duration is a Config holding a duration in Go or ISO-8601 form.
type Duration struct {
	log    *logrus.Entry
	config Config
	def    time.Duration
}

// NewDuration wraps c. A nil c always yields def.
func NewDuration(c Config, def time.Duration) *Duration {
	return &Duration{
		log:    logrus.StandardLogger().WithField("type", "config/duration"),
		config: c,
		def:    def,
	}
}

// Get returns the current value, or the default if none is set or the value
// cannot be parsed.
func (d *Duration) Get(ctx context.Context) time.Duration {
	if d.config == nil {
		return d.def
	}

	raw, err := d.config.Get(ctx)
	if err != nil {
		if err != ErrNoValue {
			d.log.WithError(err).Warn("failed to get config value, using default")
		}
		return d.def
	}

	s, err := toString(raw)
	if err != nil {
		d.log.WithError(err).Warn("invalid config value, using default")
		return d.def
	}

	v, err := timeutil.ParseDuration(s)
	if err != nil {
		d.log.WithError(err).Warn("invalid duration, using default")
		return d.def
	}
	return v
}

// Shutdown shuts down the underlying Config.
func (d *Duration) Shutdown() {
	if d.config != nil {
		d.config.Shutdown()
	}
}

func toString(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case []byte:
		return strings.TrimSpace(string(v)), nil
	case fmt.Stringer:
		return strings.TrimSpace(v.String()), nil
	default:
		return "", errors.Errorf("unsupported config value type %T", raw)
	}
}
