package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
)

// OnlineKey is the Redis hash holding connection ID -> identity JSON of logged-in connections.
const OnlineKey = "lobbychat:online"

// RedisMirror keeps a Redis hash of the currently logged-in identities so other
// processes can read who is online.
type RedisMirror struct {
	client *redis.Client
	key    string
}

// ConnectRedis opens a client for url, which is either a redis:// URL or a host:port
// address, and verifies it with a PING.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	var opts *redis.Options

	if strings.Contains(url, "://") {
		parsed, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: url}
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("could not connect to Redis: %w", err)
	}

	return rdb, nil
}

// NewRedisMirror returns a mirror writing to OnlineKey. It clears entries left over
// from a previous run of the server.
func NewRedisMirror(ctx context.Context, client *redis.Client) (*RedisMirror, error) {
	m := &RedisMirror{client: client, key: OnlineKey}

	if err := client.Del(ctx, m.key).Err(); err != nil {
		return nil, fmt.Errorf("failed to reset %s: %w", m.key, err)
	}

	return m, nil
}

// Name identifies the sink in logs.
func (m *RedisMirror) Name() string { return "redis" }

// Handle writes logins into the hash and removes departed connections.
func (m *RedisMirror) Handle(ctx context.Context, event Event) error {
	switch event.Kind {
	case KindLogin:
		identity, err := json.Marshal(event.Identity)
		if err != nil {
			return err
		}
		return m.client.HSet(ctx, m.key, event.ConnectionID, identity).Err()

	case KindLeave:
		return m.client.HDel(ctx, m.key, event.ConnectionID).Err()

	default:
		return nil
	}
}

// Close closes the Redis client.
func (m *RedisMirror) Close() error {
	return m.client.Close()
}
