package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kinecosystem/agora-activator/config"
	"github.com/kinecosystem/agora-activator/config/memory"
	_ "github.com/kinecosystem/agora-activator/testutil"
)

func TestString(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, "default", config.NewString(nil, "default").Get(ctx))

	c := memory.NewEmptyConfig()
	s := config.NewString(c, "default")
	assert.Equal(t, "default", s.Get(ctx))

	c.SetValue([]byte(" 0.5\n"))
	assert.Equal(t, "0.5", s.Get(ctx))

	c.SetValue("hello")
	assert.Equal(t, "hello", s.Get(ctx))

	c.SetValue(42)
	assert.Equal(t, "default", s.Get(ctx))

	c.Clear()
	assert.Equal(t, "default", s.Get(ctx))

	s.Shutdown()
	c.SetValue("after")
	assert.Equal(t, "default", s.Get(ctx))
}

func TestDuration(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, time.Minute, config.NewDuration(nil, time.Minute).Get(ctx))

	c := memory.NewConfig("30s")
	d := config.NewDuration(c, time.Minute)
	assert.Equal(t, 30*time.Second, d.Get(ctx))

	c.SetValue([]byte("PT2M"))
	assert.Equal(t, 2*time.Minute, d.Get(ctx))

	c.SetValue("soon")
	assert.Equal(t, time.Minute, d.Get(ctx))
}
