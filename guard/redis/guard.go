// Package redis provides a guard.Guard shared by every replica connected to
// the same redis server.
package redis

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kinecosystem/agora-activator/guard"
)

const (
	keyPrefix      = "activator:guard:"
	releaseTimeout = 5 * time.Second
)

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisGuard struct {
	log    *logrus.Entry
	client redis.UniversalClient
	ttl    time.Duration
}

// New returns a Guard storing holds in redis with the provided ttl.
func New(client redis.UniversalClient, ttl time.Duration) guard.Guard {
	return &redisGuard{
		log:    logrus.StandardLogger().WithField("type", "guard/redis"),
		client: client,
		ttl:    ttl,
	}
}

// Acquire implements guard.Guard.Acquire.
func (g *redisGuard) Acquire(ctx context.Context, key string) (guard.ReleaseFunc, error) {
	redisKey := keyPrefix + key
	token := uuid.New().String()

	ok, err := g.withContext(ctx).SetNX(redisKey, token, g.ttl).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to acquire guard")
	}
	if !ok {
		return nil, guard.ErrHeld
	}

	var once sync.Once
	return func() {
		once.Do(func() { g.release(redisKey, token) })
	}, nil
}

func (g *redisGuard) release(redisKey, token string) {
	// Release even if the request context was cancelled.
	releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	if err := releaseScript.Run(g.withContext(releaseCtx), []string{redisKey}, token).Err(); err != nil && err != redis.Nil {
		g.log.WithError(err).WithField("key", redisKey).Warn("failed to release guard, it will expire")
	}
}

func (g *redisGuard) withContext(ctx context.Context) redis.Cmdable {
	switch c := g.client.(type) {
	case *redis.Client:
		return c.WithContext(ctx)
	case *redis.ClusterClient:
		return c.WithContext(ctx)
	default:
		return c
	}
}
