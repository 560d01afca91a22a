// Package test starts dockerized redis servers for integration tests.
package test

import (
	"context"
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/ory/dockertest"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"mfycheng.dev/retry"
	"mfycheng.dev/retry/backoff"
)

const (
	repository = "redis"
	tag        = "6-alpine"
)

var log = logrus.StandardLogger().WithField("type", "redis/test")

// StartRedis runs a redis container and returns its address once it answers
// PING. closeFunc purges the container.
func StartRedis(ctx context.Context, pool *dockertest.Pool) (addr string, closeFunc func(), err error) {
	resource, err := pool.Run(repository, tag, nil)
	if err != nil {
		return "", func() {}, errors.Wrap(err, "failed to start redis container")
	}

	closeFunc = func() {
		if err := pool.Purge(resource); err != nil {
			log.WithError(err).Warn("failed to purge redis container")
		}
	}

	addr = resource.GetHostPort("6379/tcp")
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	_, err = retry.Retry(
		func() error {
			if ctx.Err() != nil {
				return nil
			}
			return client.WithContext(ctx).Ping().Err()
		},
		retry.Limit(60),
		retry.Backoff(backoff.Constant(500*time.Millisecond), 500*time.Millisecond),
	)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		closeFunc()
		return "", func() {}, errors.Wrap(err, "redis did not become available")
	}

	log.WithField("addr", addr).Debug("redis started")
	return addr, closeFunc, nil
}
