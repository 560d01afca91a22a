package etcd

import (
	"context"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// SetStringConfig stores a string value under name.
func SetStringConfig(ctx context.Context, client *clientv3.Client, name, value string) error {
	_, err := client.Put(ctx, name, value)
	return err
}

// SetDurationConfig stores a duration value under name in Go duration form.
func SetDurationConfig(ctx context.Context, client *clientv3.Client, name string, value time.Duration) error {
	return SetStringConfig(ctx, client, name, value.String())
}

// DeleteConfig removes name.
func DeleteConfig(ctx context.Context, client *clientv3.Client, name string) error {
	_, err := client.Delete(ctx, name)
	return err
}
