package schema

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"shopsync/internal/constants"
	"shopsync/internal/destination"
	"shopsync/internal/logger"
	"shopsync/pkg/metrics"
)

// Introspector fetches and caches destination database schemas. Cached
// entries live for the process lifetime (plus an optional Redis tier with
// TTL); staleness is tolerated because a wrong cached schema only degrades
// mapping quality, it never corrupts data.
type Introspector struct {
	client destination.Client
	cache  *redis.Client
	ttl    time.Duration
	logger logger.Logger

	mu    sync.RWMutex
	local map[string]*destination.Schema
}

func NewIntrospector(client destination.Client, cache *redis.Client, ttlSeconds int, log logger.Logger) *Introspector {
	if ttlSeconds <= 0 {
		ttlSeconds = constants.DefaultSchemaTTLSeconds
	}

	return &Introspector{
		client: client,
		cache:  cache,
		ttl:    time.Duration(ttlSeconds) * time.Second,
		logger: log,
		local:  make(map[string]*destination.Schema),
	}
}

// GetSchema returns the property map for a destination, consulting the
// in-process cache, then Redis, then the destination API. A first-populate
// race between concurrent events is harmless: either writer's result is
// acceptable and the last one wins.
func (i *Introspector) GetSchema(ctx context.Context, databaseID, token string) (*destination.Schema, error) {
	i.mu.RLock()
	cached, ok := i.local[databaseID]
	i.mu.RUnlock()
	if ok {
		metrics.IncSchemaCache("local_hit")
		return cached, nil
	}

	if schema := i.fromRedis(ctx, databaseID); schema != nil {
		metrics.IncSchemaCache("redis_hit")
		i.storeLocal(databaseID, schema)
		return schema, nil
	}

	schema, err := i.client.RetrieveSchema(ctx, databaseID, token)
	if err != nil {
		return nil, err
	}
	metrics.IncSchemaCache("miss")

	i.storeLocal(databaseID, schema)
	i.toRedis(ctx, databaseID, schema)

	i.logger.DebugwCtx(ctx, "Introspected destination schema",
		"database_id", databaseID,
		"properties", len(schema.Properties),
	)

	return schema, nil
}

// Invalidate drops both cache tiers for one destination. The next event
// touching it re-introspects.
func (i *Introspector) Invalidate(ctx context.Context, databaseID string) {
	i.mu.Lock()
	delete(i.local, databaseID)
	i.mu.Unlock()

	if i.cache != nil {
		if err := i.cache.Del(ctx, constants.CacheKeyPrefixSchema+databaseID).Err(); err != nil {
			i.logger.WarnwCtx(ctx, "Failed to invalidate schema in redis",
				"database_id", databaseID,
				"error", err,
			)
		}
	}
}

func (i *Introspector) storeLocal(databaseID string, schema *destination.Schema) {
	i.mu.Lock()
	i.local[databaseID] = schema
	i.mu.Unlock()
}

func (i *Introspector) fromRedis(ctx context.Context, databaseID string) *destination.Schema {
	if i.cache == nil {
		return nil
	}

	val, err := i.cache.Get(ctx, constants.CacheKeyPrefixSchema+databaseID).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		// Redis being down degrades to a remote fetch, never a failure.
		i.logger.WarnwCtx(ctx, "Schema cache read failed", "error", err)
		return nil
	}

	var schema destination.Schema
	if err := json.Unmarshal([]byte(val), &schema); err != nil {
		return nil
	}
	return &schema
}

func (i *Introspector) toRedis(ctx context.Context, databaseID string, schema *destination.Schema) {
	if i.cache == nil {
		return
	}

	body, err := json.Marshal(schema)
	if err != nil {
		return
	}

	if err := i.cache.Set(ctx, constants.CacheKeyPrefixSchema+databaseID, body, i.ttl).Err(); err != nil {
		i.logger.WarnwCtx(ctx, "Schema cache write failed", "error", err)
	}
}
