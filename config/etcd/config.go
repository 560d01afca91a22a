// Package etcd provides a config.Config backed by a single etcd key, kept up
// to date with a watch.
package etcd

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/kinecosystem/agora-activator/config"
)

const (
	initialLoadTimeout = 10 * time.Second
	rewatchDelay       = time.Second
)

type conf struct {
	log *logrus.Entry

	client *clientv3.Client
	key    string

	mu       sync.RWMutex
	kv       *mvccpb.KeyValue
	shutdown bool

	cancel context.CancelFunc
}

// NewConfig loads key from etcd and watches it for changes. Deleting the key
// clears the value.
func NewConfig(client *clientv3.Client, key string) (config.Config, error) {
	c := &conf{
		log:    logrus.StandardLogger().WithField("type", "config/etcd").WithField("key", key),
		client: client,
		key:    key,
	}

	loadCtx, cancel := context.WithTimeout(context.Background(), initialLoadTimeout)
	defer cancel()

	rev, err := c.load(loadCtx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", key)
	}

	ctx, cancelWatch := context.WithCancel(context.Background())
	c.cancel = cancelWatch
	go c.watch(ctx, rev+1)

	return c, nil
}

// Get implements config.Config.Get.
func (c *conf) Get(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.shutdown {
		c.log.Warn("config used after shutdown")
		return nil, config.ErrShutdown
	}
	if c.kv == nil {
		return nil, config.ErrNoValue
	}
	return c.kv.Value, nil
}

// Shutdown implements config.Config.Shutdown.
func (c *conf) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shutdown {
		return
	}
	c.shutdown = true
	c.cancel()
}

// load fetches the current value and returns the store revision it was read at.
func (c *conf) load(ctx context.Context) (int64, error) {
	resp, err := c.client.Get(ctx, c.key)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.kv = nil
	if len(resp.Kvs) > 0 {
		c.kv = resp.Kvs[0]
	}
	c.mu.Unlock()

	return resp.Header.Revision, nil
}

func (c *conf) watch(ctx context.Context, rev int64) {
	for {
		for resp := range c.client.Watch(ctx, c.key, clientv3.WithRev(rev)) {
			if err := resp.Err(); err != nil {
				c.log.WithError(err).Warn("watch error")
				break
			}

			for _, ev := range resp.Events {
				c.apply(ev)
				rev = ev.Kv.ModRevision + 1
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(rewatchDelay):
		}

		// The watch may have been compacted past rev; resync before resuming.
		latest, err := c.load(ctx)
		if err != nil {
			c.log.WithError(err).Warn("failed to reload after watch ended")
			continue
		}
		rev = latest + 1
	}
}

func (c *conf) apply(ev *clientv3.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Type {
	case mvccpb.PUT:
		c.kv = ev.Kv
		c.log.WithField("revision", ev.Kv.ModRevision).Debug("config updated")
	case mvccpb.DELETE:
		c.kv = nil
		c.log.WithField("revision", ev.Kv.ModRevision).Debug("config deleted")
	}
}
