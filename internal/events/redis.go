package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisOptions configures the redis publisher.
type RedisOptions struct {
	Host     string
	Port     int
	Password string
	DB       int
	Channel  string
}

// RedisPublisher broadcasts events on a redis pub/sub channel so external
// consumers (dashboards, notifiers) can follow the session lifecycle live.
// Delivery is best-effort: subscribers that are not listening miss the event.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	log     zerolog.Logger
}

// NewRedisPublisher connects to redis and verifies the connection.
func NewRedisPublisher(opts RedisOptions, log zerolog.Logger) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisPublisher{client: client, channel: opts.Channel, log: log}, nil
}

// Publish sends the event as JSON. Failures are logged and swallowed so a
// broker outage never aborts a lifecycle operation.
func (p *RedisPublisher) Publish(ctx context.Context, event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		p.log.Error().Err(err).Str("event", event.Name).Msg("failed to encode event")
		return
	}

	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		p.log.Warn().Err(err).Str("event", event.Name).Msg("failed to publish event")
	}
}

// Close closes the redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
