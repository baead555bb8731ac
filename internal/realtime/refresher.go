// Package realtime is the refresh collaborator: after any state-changing
// operation the services emit a "something changed for this group" signal so
// connected clients can refetch. The signal carries no structured payload.
package realtime

import (
	"context"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Channel carrying group change signals. Subscribers receive the group id
// as the message payload.
const RefreshChannel = "migoculto:refresh"

// Refresher signals connected clients that a group changed.
type Refresher interface {
	GroupChanged(ctx context.Context, groupID int)
}

// RedisRefresher publishes change signals on a Redis pub/sub channel.
type RedisRefresher struct {
	client *redis.Client
}

// NewRedisRefresher connects to Redis and returns a publisher. The
// connection is verified eagerly so a bad address fails at startup.
func NewRedisRefresher(addr, password string) (*RedisRefresher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &RedisRefresher{client: client}, nil
}

// GroupChanged publishes the signal. Best effort: a failed publish is
// logged and swallowed, the state change it announces already committed.
func (r *RedisRefresher) GroupChanged(ctx context.Context, groupID int) {
	if err := r.client.Publish(ctx, RefreshChannel, strconv.Itoa(groupID)).Err(); err != nil {
		logrus.WithError(err).WithField("group_id", groupID).Warn("Failed to publish refresh signal")
	}
}

// Close releases the underlying client.
func (r *RedisRefresher) Close() error {
	return r.client.Close()
}

// NopRefresher discards every signal. Used in tests.
type NopRefresher struct{}

// GroupChanged implements Refresher.
func (NopRefresher) GroupChanged(context.Context, int) {}
