package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"market-streamer/src/interfaces"
	"market-streamer/src/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// -----------------------------------------------------------------------------

const quoteKeyPrefix = "quote:"

// -----------------------------------------------------------------------------
// STRUCT DEFINITION
// -----------------------------------------------------------------------------

// RedisStore keeps the last delivered quote per symbol so dashboards can
// paint an initial snapshot before the first tick arrives.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

var _ interfaces.ISnapshotStore = (*RedisStore)(nil)

// -----------------------------------------------------------------------------
// CONSTRUCTOR
// -----------------------------------------------------------------------------

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, cfg *models.MRedisConfig, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := cfg.SnapshotTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	logger.Info("connected to redis snapshot store",
		zap.String("addr", cfg.Addr),
		zap.Duration("ttl", ttl))

	return &RedisStore{client: client, ttl: ttl, logger: logger}, nil
}

// -----------------------------------------------------------------------------
// PUBLIC METHODS
// -----------------------------------------------------------------------------

// SaveQuote overwrites the symbol's snapshot.
func (s *RedisStore) SaveQuote(ctx context.Context, quote models.MQuote) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to marshal quote snapshot: %w", err)
	}
	if err := s.client.Set(ctx, quoteKeyPrefix+quote.Symbol, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save quote snapshot: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// GetSnapshots fetches snapshots for the requested symbols in one round
// trip. Symbols with no stored snapshot are simply absent from the result.
func (s *RedisStore) GetSnapshots(ctx context.Context, symbols []string) ([]models.MQuote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	keys := make([]string, len(symbols))
	for i, symbol := range symbols {
		keys[i] = quoteKeyPrefix + symbol
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote snapshots: %w", err)
	}

	quotes := make([]models.MQuote, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		var quote models.MQuote
		if err := json.Unmarshal([]byte(raw), &quote); err != nil {
			s.logger.Warn("dropping corrupt quote snapshot",
				zap.String("symbol", symbols[i]),
				zap.Error(err))
			continue
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

// -----------------------------------------------------------------------------

// Close releases the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
