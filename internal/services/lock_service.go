package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LockClient is the subset of *redis.Client the run lock uses.
type LockClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// releaseScript deletes the lock only while it still holds our token.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

// LockService keeps two runs from rewriting the same collection at once.
type LockService struct {
	client LockClient
	ttl    time.Duration
	log    *zap.Logger
}

func NewLockService(client LockClient, ttl time.Duration, log *zap.Logger) *LockService {
	return &LockService{client: client, ttl: ttl, log: log}
}

func LockKey(collectionPath string) string {
	if abs, err := filepath.Abs(collectionPath); err == nil {
		collectionPath = abs
	}
	return "augment:lock:" + collectionPath
}

// Acquire takes the lock for collectionPath. If redis is unreachable the lock
// is bypassed with a warning. The returned release func is always non-nil.
func (s *LockService) Acquire(ctx context.Context, collectionPath, token string) (func(), error) {
	noop := func() {}
	if s == nil || s.client == nil {
		return noop, nil
	}

	if err := s.client.Ping(ctx).Err(); err != nil {
		s.log.Warn("redis not available, running without lock", zap.Error(err))
		return noop, nil
	}

	key := LockKey(collectionPath)
	ok, err := s.client.SetNX(ctx, key, token, s.ttl).Result()
	if err != nil {
		s.log.Warn("run lock failed to set key, running without lock", zap.String("key", key), zap.Error(err))
		return noop, nil
	}
	if !ok {
		return noop, fmt.Errorf("%w: %s", ErrLocked, key)
	}

	s.log.Debug("run lock acquired", zap.String("key", key), zap.Duration("ttl", s.ttl))
	return func() {
		// the run context may already be cancelled; release on a fresh one
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.client.Eval(rctx, releaseScript, []string{key}, token).Err(); err != nil {
			s.log.Warn("run lock release failed", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
