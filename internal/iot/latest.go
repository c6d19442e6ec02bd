package iot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smartcity/smartcity/internal/airquality"
)

// Latest is the most recent push of a zone.
type Latest struct {
	Zone       string    `json:"zone"`
	KPIs       KPIs      `json:"kpis"`
	AlertCount int       `json:"alertCount"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// LatestStore keeps the latest push per zone.
type LatestStore interface {
	Set(ctx context.Context, l Latest) error
	// All returns the latest push of every zone that has one, ordered by zone.
	All(ctx context.Context) ([]Latest, error)
}

// MemoryLatestStore is an in-process LatestStore.
type MemoryLatestStore struct {
	mu     sync.RWMutex
	latest map[string]Latest
}

// NewMemoryLatestStore creates an empty store.
func NewMemoryLatestStore() *MemoryLatestStore {
	return &MemoryLatestStore{latest: make(map[string]Latest)}
}

// Set implements LatestStore.
func (s *MemoryLatestStore) Set(_ context.Context, l Latest) error {
	s.mu.Lock()
	s.latest[l.Zone] = l
	s.mu.Unlock()
	return nil
}

// All implements LatestStore.
func (s *MemoryLatestStore) All(_ context.Context) ([]Latest, error) {
	s.mu.RLock()
	out := make([]Latest, 0, len(s.latest))
	for _, l := range s.latest {
		out = append(out, l)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Zone < out[j].Zone })
	return out, nil
}

// RedisKeyPrefix namespaces latest-push keys.
const RedisKeyPrefix = "iot:latest:"

// RedisLatestStore keeps latest pushes as JSON values, one key per zone.
type RedisLatestStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLatestStore wraps a Redis client. A zero ttl keeps keys forever.
func NewRedisLatestStore(client *redis.Client, ttl time.Duration) *RedisLatestStore {
	return &RedisLatestStore{client: client, ttl: ttl}
}

// Set implements LatestStore.
func (s *RedisLatestStore) Set(ctx context.Context, l Latest) error {
	b, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode latest: %w", err)
	}
	if err := s.client.Set(ctx, RedisKeyPrefix+l.Zone, b, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set latest %s: %w", l.Zone, err)
	}
	return nil
}

// All implements LatestStore.
func (s *RedisLatestStore) All(ctx context.Context) ([]Latest, error) {
	keys := make([]string, 0, len(airquality.SensorZones))
	for _, z := range airquality.SensorZones {
		keys = append(keys, RedisKeyPrefix+string(z))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis mget latest: %w", err)
	}

	out := make([]Latest, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var l Latest
		if err := json.Unmarshal([]byte(str), &l); err != nil {
			return nil, fmt.Errorf("decode latest: %w", err)
		}
		out = append(out, l)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Zone < out[j].Zone })
	return out, nil
}

var (
	_ LatestStore = (*MemoryLatestStore)(nil)
	_ LatestStore = (*RedisLatestStore)(nil)
)
