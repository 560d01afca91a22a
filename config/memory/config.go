// Package memory provides a Config held in process memory. It backs static
// configuration and tests.
package memory

import (
	"context"
	"sync"

	"github.com/kinecosystem/agora-activator/config"
)

// Config is an in-memory config.Config.
type Config struct {
	mu       sync.RWMutex
	value    interface{}
	set      bool
	shutdown bool
}

// NewConfig returns a Config holding value.
func NewConfig(value interface{}) *Config {
	return &Config{value: value, set: true}
}

// NewEmptyConfig returns a Config without a value.
func NewEmptyConfig() *Config {
	return &Config{}
}

// Get implements config.Config.Get.
func (c *Config) Get(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.shutdown {
		return nil, config.ErrShutdown
	}
	if !c.set {
		return nil, config.ErrNoValue
	}
	return c.value, nil
}

// SetValue replaces the current value.
func (c *Config) SetValue(value interface{}) {
	c.mu.Lock()
	c.value = value
	c.set = true
	c.mu.Unlock()
}

// Clear removes the current value.
func (c *Config) Clear() {
	c.mu.Lock()
	c.value = nil
	c.set = false
	c.mu.Unlock()
}

// Shutdown implements config.Config.Shutdown.
func (c *Config) Shutdown() {
	c.mu.Lock()
	c.shutdown = true
	c.mu.Unlock()
}
