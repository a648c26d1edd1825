package channels

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces room topics
const DefaultRedisPrefix = "practice:room"

// RedisChannel publishes room data to a Redis pub/sub topic so processes that
// do not own the room's websocket can still reach its subscribers.
type RedisChannel struct {
	client redis.UniversalClient
	topic  string
}

// NewRedisChannel creates a channel publishing to <prefix>:<room>
func NewRedisChannel(client redis.UniversalClient, prefix, room string) *RedisChannel {
	return &RedisChannel{
		client: client,
		topic:  Topic(prefix, room),
	}
}

// Topic returns the pub/sub topic for a room
func Topic(prefix, room string) string {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return prefix + ":" + room
}

// Publish sends data to the room's topic
func (c *RedisChannel) Publish(ctx context.Context, data []byte) error {
	if err := c.client.Publish(ctx, c.topic, data).Err(); err != nil {
		return fmt.Errorf("redis publish to %s: %w", c.topic, err)
	}
	return nil
}

// Topic returns the topic this channel publishes to
func (c *RedisChannel) Topic() string {
	return c.topic
}

// RedisFactory builds Redis channels for rooms from one shared client
type RedisFactory struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisFactory connects to Redis and verifies the connection
func NewRedisFactory(ctx context.Context, address, password string, db int, prefix string) (*RedisFactory, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisFactory{client: client, prefix: prefix}, nil
}

// NewRedisFactoryFromClient wraps an existing client
func NewRedisFactoryFromClient(client redis.UniversalClient, prefix string) *RedisFactory {
	return &RedisFactory{client: client, prefix: prefix}
}

// ForRoom returns the channel for a room
func (f *RedisFactory) ForRoom(room string) Channel {
	return NewRedisChannel(f.client, f.prefix, room)
}

// Ping checks Redis availability
func (f *RedisFactory) Ping(ctx context.Context) error {
	return f.client.Ping(ctx).Err()
}

// Close releases the client
func (f *RedisFactory) Close() error {
	return f.client.Close()
}
