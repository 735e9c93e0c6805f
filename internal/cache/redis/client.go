package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bidflow/backend/pkg/circuitbreaker"
	"github.com/bidflow/backend/pkg/logger"
)

// Client caches prediction results. Every call runs through a circuit
// breaker: a degraded Redis degrades to cache misses, never to errors
// surfacing in the prediction path.
type Client struct {
	client  *redis.Client
	breaker *circuitbreaker.CircuitBreaker
	ttl     time.Duration
}

func NewClient(host string, port int, password string, db int, ttl time.Duration) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	breaker := circuitbreaker.NewCircuitBreaker("prediction-cache", circuitbreaker.Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
		Logger:           logger.Log,
	})

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client, breaker: breaker, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// PredictionKey builds the cache key. The input hash covers everything the
// engine reads, so a stale entry cannot outlive a changed input.
func PredictionKey(bidID, productID, strategy, inputHash string) string {
	return fmt.Sprintf("prediction:%s:%s:%s:%s", bidID, productID, strategy, inputHash)
}

func (c *Client) SetPrediction(ctx context.Context, key string, result interface{}) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction: %w", err)
	}

	err = c.breaker.Execute(ctx, func() error {
		return c.client.Set(ctx, key, data, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to set prediction cache: %w", err)
	}

	logger.Debug("Prediction cached", zap.String("key", key), zap.Duration("ttl", c.ttl))
	return nil
}

func (c *Client) GetPrediction(ctx context.Context, key string, result interface{}) (bool, error) {
	var data []byte
	err := c.breaker.Execute(ctx, func() error {
		b, err := c.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			// A miss is a healthy response, not a breaker failure.
			return nil
		}
		if err != nil {
			return err
		}
		data = b
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to get prediction cache: %w", err)
	}
	if data == nil {
		return false, nil
	}

	if err := json.Unmarshal(data, result); err != nil {
		return false, fmt.Errorf("failed to unmarshal prediction: %w", err)
	}

	logger.Debug("Prediction cache hit", zap.String("key", key))
	return true, nil
}

// InvalidateBid drops all cached predictions for one tender, for example
// after a new assessment sample lands for its organization.
func (c *Client) InvalidateBid(ctx context.Context, bidID string) error {
	pattern := fmt.Sprintf("prediction:%s:*", bidID)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn("Failed to delete cache key", zap.Error(err))
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to iterate cache keys: %w", err)
	}

	logger.Debug("Prediction cache invalidated", zap.String("bid_id", bidID))
	return nil
}
