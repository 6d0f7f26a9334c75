package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// presence key: conecta:presence:<user>
// value: conversation id the user currently occupies; the TTL bounds
// staleness when the gateway dies without cleanup.
func presenceKey(user string) string { return "conecta:presence:" + user }

const defaultPresenceTTL = 5 * time.Minute

// RedisPresence is the external presence record behind the gateway's
// Mirror interface. Best-effort only: the realtime event flow never
// reads it.
type RedisPresence struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisPresence(c Config, ttl time.Duration) (*RedisPresence, error) {
	if ttl <= 0 {
		ttl = defaultPresenceTTL
	}
	rdb := redis.NewClient(&redis.Options{Addr: c.Addr, Password: c.Password, DB: c.DB})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, errors.Wrap(err, "redis ping")
	}
	return &RedisPresence{rdb: rdb, ttl: ttl}, nil
}

// Online records the user as present in the conversation and renews
// the TTL.
func (p *RedisPresence) Online(ctx context.Context, userID, conversationID string) error {
	return p.rdb.Set(ctx, presenceKey(userID), conversationID, p.ttl).Err()
}

// Offline deletes the record.
func (p *RedisPresence) Offline(ctx context.Context, userID string) error {
	return p.rdb.Del(ctx, presenceKey(userID)).Err()
}

// Lookup reports the conversation the user occupies, if any.
func (p *RedisPresence) Lookup(ctx context.Context, userID string) (conversationID string, online bool, err error) {
	val, err := p.rdb.Get(ctx, presenceKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (p *RedisPresence) Close() error { return p.rdb.Close() }
