package sink

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bluest-sdk/bluest-go/pkg/wire"
)

// DefaultShadowPrefix is the key prefix of feature shadows.
const DefaultShadowPrefix = "bluest:shadow"

// Hash fields written next to the decoded fields.
const (
	ShadowTickField    = "_tick"
	ShadowUpdatedField = "_updated"
)

// HashStore is the part of *redis.Client the shadow sink uses.
type HashStore interface {
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisShadow keeps the latest value of every field of a feature in the
// hash <prefix>:<device>:<feature>. Values are stored in text form.
type RedisShadow struct {
	store  HashStore
	prefix string
	ttl    time.Duration
	client *redis.Client
	closed atomic.Bool
}

// NewRedisShadow creates a shadow sink over store. A zero ttl keeps the
// hashes forever.
func NewRedisShadow(store HashStore, prefix string, ttl time.Duration) *RedisShadow {
	if prefix == "" {
		prefix = DefaultShadowPrefix
	}
	s := &RedisShadow{store: store, prefix: prefix, ttl: ttl}
	if c, ok := store.(*redis.Client); ok {
		s.client = c
	}
	return s
}

// DialRedis creates a shadow sink owning a client for addr.
func DialRedis(addr, password string, db int, prefix string, ttl time.Duration) *RedisShadow {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisShadow(client, prefix, ttl)
}

// Key returns the hash key of a record's feature.
func (s *RedisShadow) Key(r wire.Record) string {
	return s.prefix + ":" + token(r.DeviceID) + ":" + token(r.Feature)
}

// Name returns "redis".
func (s *RedisShadow) Name() string { return "redis" }

// Write stores the record's fields.
func (s *RedisShadow) Write(ctx context.Context, r wire.Record) error {
	if s.closed.Load() {
		return ErrClosed
	}
	updated := r.ReceivedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	values := make([]any, 0, 2*len(r.Fields)+4)
	values = append(values,
		ShadowTickField, strconv.FormatUint(r.Tick, 10),
		ShadowUpdatedField, updated.UnixMilli(),
	)
	for _, f := range r.Fields {
		values = append(values, f.Name, f.Text)
	}

	key := s.Key(r)
	if err := s.store.HSet(ctx, key, values...).Err(); err != nil {
		return fmt.Errorf("writing shadow %s: %w", key, err)
	}
	if s.ttl > 0 {
		if err := s.store.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("setting ttl of %s: %w", key, err)
		}
	}
	return nil
}

// Close closes the client when the sink owns one.
func (s *RedisShadow) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

var _ Sink = (*RedisShadow)(nil)
