package test

import (
	"context"
	"testing"
	"time"

	"github.com/ory/dockertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartEtcd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	client, closeFunc, err := StartEtcd(ctx, pool)
	require.NoError(t, err)
	defer closeFunc()

	_, err = client.Put(ctx, "/activator/welcome_message", "hi")
	require.NoError(t, err)

	resp, err := client.Get(ctx, "/activator/welcome_message")
	require.NoError(t, err)
	require.Len(t, resp.Kvs, 1)
	assert.Equal(t, "hi", string(resp.Kvs[0].Value))
}
