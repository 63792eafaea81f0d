package redis

import (
	"context"
	"fmt"
	"time"

	"go_procure_backend/config"
	"go_procure_backend/pkg/logging"

	"github.com/redis/go-redis/v9"
)

type Service struct {
	Rdb *redis.Client
}

func InitRedis(cfg *config.Config) (*Service, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("empty redis url")
	}
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("could not parse Redis URL: %w", err)
	}
	rdb := redis.NewClient(opt)

	testCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rdb.Ping(testCtx).Err(); err != nil {
		return nil, fmt.Errorf("could not connect to Redis: %w", err)
	}
	logging.Logger.Info("Connected to Redis")
	return &Service{Rdb: rdb}, nil
}

func (s *Service) GetCache(ctx context.Context, key string) (string, bool) {
	val, err := s.Rdb.Get(ctx, "cache:"+key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (s *Service) SetCache(ctx context.Context, key, value string, expiration time.Duration) error {
	return s.Rdb.Set(ctx, "cache:"+key, value, expiration).Err()
}

func (s *Service) Close() error {
	return s.Rdb.Close()
}
