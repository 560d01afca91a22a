// Package config provides dynamically updatable configuration values.
package config

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrNoValue is returned when no value is currently set.
	ErrNoValue = errors.New("no value set for config")

	// ErrShutdown is returned when a Config is used after Shutdown.
	ErrShutdown = errors.New("config has been shut down")
)

// Config is a single configuration value that may change over the lifetime
// of the process.
type Config interface {
	// Get returns the current raw value. Implementations return []byte or
	// string values; ErrNoValue if none is set.
	Get(ctx context.Context) (interface{}, error)

	// Shutdown releases any resources held by the Config. Subsequent calls to
	// Get return ErrShutdown.
	Shutdown()
}
