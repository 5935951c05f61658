package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vendpay-gateway/internal/domain/model"
	"vendpay-gateway/internal/domain/ports/repository"
	"vendpay-gateway/internal/infra/metrics"
	red "vendpay-gateway/internal/infra/redis"

	"github.com/go-redis/redis/v8"
)

var _ repository.ChannelRepository = (*channelRepoCacheDecorator)(nil)

// channelRepoCacheDecorator caches provider configs in Redis. Channel rows are
// immutable from the gateway's perspective, so there is no invalidation path;
// the TTL bounds staleness after an operator edits credentials out of band.
type channelRepoCacheDecorator struct {
	inner repository.ChannelRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewChannelRepoCacheDecorator(inner repository.ChannelRepository, cache red.RedisClient, ttl time.Duration) repository.ChannelRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &channelRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

func (d *channelRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ProviderConfig, error) {
	key := fmt.Sprintf("channel:%s", id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var cached cachedChannel
		if json.Unmarshal([]byte(val), &cached) == nil {
			metrics.IncCacheRequest("channel", "hit")
			return cached.toModel(), nil
		}
	} else if err != redis.Nil {
		metrics.IncCacheRequest("channel", "error")
	}

	// redis.Nil, a corrupt entry and a real Redis error all fall through to
	// the database
	metrics.IncCacheRequest("channel", "miss")
	cfg, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		bytes, _ := json.Marshal(fromModel(cfg))
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return cfg, nil
}

// cachedChannel exists because ProviderConfig deliberately refuses to
// serialize its checksum key; the cache entry needs it.
type cachedChannel struct {
	ID          string `json:"id"`
	APIKey      string `json:"api_key"`
	ClientID    string `json:"client_id"`
	ChecksumKey string `json:"checksum_key"`
}

func fromModel(c *model.ProviderConfig) cachedChannel {
	return cachedChannel{ID: c.ID, APIKey: c.APIKey, ClientID: c.ClientID, ChecksumKey: c.ChecksumKey}
}

func (c cachedChannel) toModel() *model.ProviderConfig {
	return &model.ProviderConfig{ID: c.ID, APIKey: c.APIKey, ClientID: c.ClientID, ChecksumKey: c.ChecksumKey}
}
