package cache

import (
	"context"
	"time"

	"go_procure_backend/pkg/logging"
	"go_procure_backend/platform/redis"

	gocache "github.com/patrickmn/go-cache"
)

// Service is a two-tier string cache: in-process L1 backed by an
// optional Redis L2. The pipeline uses it to memoize AI name/spec
// splits so repeated requirement lines skip the completion call.
type Service interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, expiration time.Duration)
}

type service struct {
	l1 *gocache.Cache
	l2 *redis.Service // nil when redis is not configured
}

func NewService(l2 *redis.Service) Service {
	return &service{
		l1: gocache.New(5*time.Minute, 10*time.Minute),
		l2: l2,
	}
}

func (s *service) Get(ctx context.Context, key string) (string, bool) {
	if v, ok := s.l1.Get(key); ok {
		if str, ok := v.(string); ok {
			return str, true
		}
	}
	if s.l2 == nil {
		return "", false
	}
	v, ok := s.l2.GetCache(ctx, key)
	if ok {
		s.l1.Set(key, v, gocache.DefaultExpiration)
	}
	return v, ok
}

func (s *service) Set(ctx context.Context, key, value string, expiration time.Duration) {
	s.l1.Set(key, value, expiration)
	if s.l2 != nil {
		if err := s.l2.SetCache(ctx, key, value, expiration); err != nil {
			logging.Logger.Warn("l2 cache set failed", "key", key, "error", err)
		}
	}
}
