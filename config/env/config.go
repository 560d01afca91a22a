// Package env provides a config.Config backed by a process environment
// variable.
package env

import (
	"context"
	"os"
	"sync"

	"github.com/kinecosystem/agora-activator/config"
)

type conf struct {
	name string

	mu       sync.RWMutex
	shutdown bool
}

// NewConfig returns a Config reading the environment variable name on every
// Get. An unset variable yields config.ErrNoValue.
func NewConfig(name string) config.Config {
	return &conf{name: name}
}

// Get implements config.Config.Get.
func (c *conf) Get(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.shutdown {
		return nil, config.ErrShutdown
	}

	v, ok := os.LookupEnv(c.name)
	if !ok {
		return nil, config.ErrNoValue
	}
	return []byte(v), nil
}

// Shutdown implements config.Config.Shutdown.
func (c *conf) Shutdown() {
	c.mu.Lock()
	c.shutdown = true
	c.mu.Unlock()
}
