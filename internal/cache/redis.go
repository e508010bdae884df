package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"flight-booking/internal/dto/response"
	"flight-booking/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const flightsKey = "cache:flights:all"

// FlightCache holds the public flight listing.
type FlightCache interface {
	// GetFlights reports ok=false on a miss.
	GetFlights(ctx context.Context) (flights []response.FlightResponse, ok bool, err error)
	SetFlights(ctx context.Context, flights []response.FlightResponse) error
	InvalidateFlights(ctx context.Context) error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisClient(cfg utils.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewRedisCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		log:    log.With(zap.String("cache", "redis")),
	}
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]response.FlightResponse, bool, error) {
	data, err := c.client.Get(ctx, flightsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", flightsKey, err)
	}

	var flights []response.FlightResponse
	if err := json.Unmarshal(data, &flights); err != nil {
		c.log.Warn("Dropping undecodable cache entry", zap.Error(err))
		_ = c.client.Del(ctx, flightsKey).Err()
		return nil, false, nil
	}
	return flights, true, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []response.FlightResponse) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return fmt.Errorf("marshal flights: %w", err)
	}
	if err := c.client.Set(ctx, flightsKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", flightsKey, err)
	}
	return nil
}

func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	if err := c.client.Del(ctx, flightsKey).Err(); err != nil {
		return fmt.Errorf("del %s: %w", flightsKey, err)
	}
	return nil
}

// NopCache is used when no Redis address is configured.
type NopCache struct{}

func (NopCache) GetFlights(context.Context) ([]response.FlightResponse, bool, error) {
	return nil, false, nil
}
func (NopCache) SetFlights(context.Context, []response.FlightResponse) error { return nil }
func (NopCache) InvalidateFlights(context.Context) error                     { return nil }
