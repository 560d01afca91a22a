// Package test starts dockerized etcd nodes for integration tests.
package test

import (
	"context"
	"time"

	"github.com/ory/dockertest"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	clientv3 "go.etcd.io/etcd/client/v3"
	"mfycheng.dev/retry"
	"mfycheng.dev/retry/backoff"
)

const (
	repository = "quay.io/coreos/etcd"
	tag        = "v3.5.0"
)

var log = logrus.StandardLogger().WithField("type", "etcd/test")

// StartEtcd runs an etcd container and returns a client connected to it once
// it answers reads. closeFunc purges the container.
func StartEtcd(ctx context.Context, pool *dockertest.Pool) (client *clientv3.Client, closeFunc func(), err error) {
	closeFunc = func() {}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: repository,
		Tag:        tag,
		Cmd: []string{
			"etcd",
			"--listen-client-urls", "http://0.0.0.0:2379",
			"--advertise-client-urls", "http://0.0.0.0:2379",
		},
	})
	if err != nil {
		return nil, closeFunc, errors.Wrap(err, "failed to start etcd container")
	}

	closeFunc = func() {
		if client != nil {
			client.Close()
		}
		if err := pool.Purge(resource); err != nil {
			log.WithError(err).Warn("failed to purge etcd container")
		}
	}

	client, err = clientv3.New(clientv3.Config{
		Endpoints:   []string{resource.GetHostPort("2379/tcp")},
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		closeFunc()
		return nil, func() {}, errors.Wrap(err, "failed to create etcd client")
	}

	_, err = retry.Retry(
		func() error {
			if ctx.Err() != nil {
				return nil
			}

			getCtx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			_, err := client.Get(getCtx, "/")
			return err
		},
		retry.Limit(60),
		retry.Backoff(backoff.Constant(500*time.Millisecond), 500*time.Millisecond),
	)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		closeFunc()
		return nil, func() {}, errors.Wrap(err, "etcd did not become available")
	}

	log.WithField("endpoint", resource.GetHostPort("2379/tcp")).Debug("etcd started")
	return client, closeFunc, nil
}
