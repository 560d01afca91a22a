package env

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kinecosystem/agora-activator/config"
)

func TestConfig(t *testing.T) {
	const name = "ACTIVATOR_ENV_CONFIG_TEST_VAR"
	os.Setenv(name, "0.25")

	c := NewConfig(name)
	v, err := c.Get(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []byte("0.25"), v)

	// Values are read on every call.
	os.Setenv(name, "1")
	v, err = c.Get(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	os.Unsetenv(name)
	v, err = c.Get(context.Background())
	assert.Nil(t, v)
	assert.Equal(t, config.ErrNoValue, err)

	c.Shutdown()
	_, err = c.Get(context.Background())
	assert.Equal(t, config.ErrShutdown, err)
}
