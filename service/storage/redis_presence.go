package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// presence key: edutalk:presence:<user>
// Hash fields: online ("1"/"0") and last_seen (RFC3339).
func presenceKey(user string) string { return "edutalk:presence:" + user }

const (
	fieldOnline   = "online"
	fieldLastSeen = "last_seen"
)

// RedisPresence stores presence records in Redis hashes.
type RedisPresence struct {
	rdb *redis.Client
}

func NewRedisPresence(rdb *redis.Client) *RedisPresence {
	return &RedisPresence{rdb: rdb}
}

func (s *RedisPresence) Set(ctx context.Context, userID string, online bool) (Presence, error) {
	now := time.Now()
	flag := "0"
	if online {
		flag = "1"
	}
	err := s.rdb.HSet(ctx, presenceKey(userID),
		fieldOnline, flag,
		fieldLastSeen, now.Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return Presence{}, errors.Wrap(err, "presence set")
	}
	return Presence{IsOnline: online, LastSeen: &now}, nil
}

func (s *RedisPresence) Get(ctx context.Context, userID string) (Presence, error) {
	vals, err := s.rdb.HGetAll(ctx, presenceKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Presence{}, nil
		}
		return Presence{}, errors.Wrap(err, "presence get")
	}
	if len(vals) == 0 {
		return Presence{}, nil
	}
	p := Presence{IsOnline: vals[fieldOnline] == "1"}
	if raw := vals[fieldLastSeen]; raw != "" {
		if ts, perr := time.Parse(time.RFC3339Nano, raw); perr == nil {
			p.LastSeen = &ts
		}
	}
	return p, nil
}
