package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"clinic-desk/internal/delivery/dto"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// Single cache key: the dashboard always reads all four queues together.
	queuesCacheKey = "reservations:queues"

	// Short TTL keeps a stale entry bounded if an invalidation write is lost.
	queuesCacheTTL = 15 * time.Second
)

// QueueCache keeps the assembled queues projection in Redis so dashboard
// polling does not hit PostgreSQL on every refresh.
//
// PostgreSQL stays the source of truth: every Redis failure here is logged
// and swallowed, never surfaced to the caller.
type QueueCache struct {
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewQueueCache(redisClient *redis.Client, log *logrus.Logger) *QueueCache {
	return &QueueCache{
		redisClient: redisClient,
		log:         log,
	}
}

// Get returns the cached projection, or nil on a miss or any Redis error.
func (c *QueueCache) Get(ctx context.Context) *dto.ReservationQueuesResponse {
	payload, err := c.redisClient.Get(ctx, queuesCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Debugf("Queue cache read failed (non-fatal): %+v", err)
		}
		return nil
	}

	var queues dto.ReservationQueuesResponse
	if err := json.Unmarshal(payload, &queues); err != nil {
		c.log.Warnf("Queue cache holds malformed payload, dropping it: %+v", err)
		c.Invalidate(ctx)
		return nil
	}

	return &queues
}

// Set rewrites the cached projection. Called after every mutation and on
// read-through misses.
func (c *QueueCache) Set(ctx context.Context, queues *dto.ReservationQueuesResponse) {
	payload, err := json.Marshal(queues)
	if err != nil {
		c.log.Warnf("Failed to marshal queues for cache: %+v", err)
		return
	}

	if err := c.redisClient.Set(ctx, queuesCacheKey, payload, queuesCacheTTL).Err(); err != nil {
		c.log.Debugf("Queue cache write failed (non-fatal): %+v", err)
	}
}

// Invalidate drops the cached projection.
func (c *QueueCache) Invalidate(ctx context.Context) {
	if err := c.redisClient.Del(ctx, queuesCacheKey).Err(); err != nil {
		c.log.Debugf("Queue cache invalidation failed (non-fatal): %+v", err)
	}
}
