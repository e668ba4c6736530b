package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"library-lending/internal/domain/lending"
)

const keyPrefix = "lending:transaction:"

// RedisTransactionCache caches loans by id for the read path. Entries expire
// on TTL rather than being invalidated; closed loans never change again and
// open ones only change on return, so a short TTL bounds staleness.
type RedisTransactionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ lending.TransactionCache = (*RedisTransactionCache)(nil)

func NewRedisTransactionCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisTransactionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisTransactionCache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "RedisTransactionCache"),
	}
}

func (c *RedisTransactionCache) Get(ctx context.Context, transactionID uuid.UUID) (*lending.Transaction, bool) {
	payload, err := c.client.Get(ctx, keyPrefix+transactionID.String()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "Cache read failed", "transaction_id", transactionID, "error", err)
		}
		return nil, false
	}

	var txn lending.Transaction
	if err := json.Unmarshal(payload, &txn); err != nil {
		c.logger.WarnContext(ctx, "Cache entry is corrupt, dropping it", "transaction_id", transactionID, "error", err)
		c.client.Del(ctx, keyPrefix+transactionID.String())
		return nil, false
	}
	return &txn, true
}

func (c *RedisTransactionCache) Set(ctx context.Context, txn *lending.Transaction) {
	payload, err := json.Marshal(txn)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to marshal transaction for cache", "transaction_id", txn.TransactionID, "error", err)
		return
	}
	if err := c.client.Set(ctx, keyPrefix+txn.TransactionID.String(), payload, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "Cache write failed", "transaction_id", txn.TransactionID, "error", err)
	}
}
