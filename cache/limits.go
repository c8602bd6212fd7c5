// Package cache caches bridge route limits in redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/anyswap/CrossSwap-Router/log"
	"github.com/anyswap/CrossSwap-Router/tokens"
)

var _ tokens.BridgeQuoteProvider = &LimitsCache{}

// NewClient new redis client from url
func NewClient(url string) (*redis.Client, error) {
	if url == "" {
		return nil, errors.New("empty redis url")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url failed: %w", err)
	}
	return redis.NewClient(opt), nil
}

// LimitsCache bridge quote provider caching limits.
// Suggested fees depend on amount and are never cached.
type LimitsCache struct {
	provider tokens.BridgeQuoteProvider
	client   redis.Cmdable
	ttl      time.Duration
	prefix   string
}

// NewLimitsCache new limits cache, a nil client disables caching
func NewLimitsCache(provider tokens.BridgeQuoteProvider, client redis.Cmdable, ttl time.Duration, prefix string) *LimitsCache {
	return &LimitsCache{
		provider: provider,
		client:   client,
		ttl:      ttl,
		prefix:   prefix,
	}
}

// LimitsKey redis key of route limits
func LimitsKey(prefix string, req *tokens.LimitsRequest) string {
	return strings.ToLower(fmt.Sprintf("%v:limits:%v:%v:%v:%v", prefix,
		req.InputToken.ChainID, req.InputToken.Address.Hex(),
		req.OutputToken.ChainID, req.OutputToken.Address.Hex()))
}

// SuggestedFees impl tokens.BridgeQuoteProvider
func (c *LimitsCache) SuggestedFees(ctx context.Context, req *tokens.SuggestedFeesRequest) (*tokens.SuggestedFees, error) {
	return c.provider.SuggestedFees(ctx, req)
}

// Limits impl tokens.BridgeQuoteProvider.
// Redis failures fall back to the provider.
func (c *LimitsCache) Limits(ctx context.Context, req *tokens.LimitsRequest) (*tokens.Limits, error) {
	if c.client == nil || c.ttl <= 0 {
		return c.provider.Limits(ctx, req)
	}
	key := LimitsKey(c.prefix, req)
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		limits := &tokens.Limits{}
		if errf := json.Unmarshal(data, limits); errf == nil {
			return limits, nil
		}
		log.Warn("decode cached limits failed", "key", key)
	case !errors.Is(err, redis.Nil):
		log.Warn("get cached limits failed", "key", key, "err", err)
	}

	limits, err := c.provider.Limits(ctx, req)
	if err != nil {
		return nil, err
	}
	if data, err = json.Marshal(limits); err == nil {
		if errf := c.client.Set(ctx, key, data, c.ttl).Err(); errf != nil {
			log.Warn("cache limits failed", "key", key, "err", errf)
		}
	}
	return limits, nil
}
