package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

// RedisStore keeps sessions in Redis, with the entry TTL set at write time.
// Expired entries are evicted by the engine itself, so Get never re-checks
// expiry: a key that is still readable is, by definition, still live.
type RedisStore struct {
	redisClient *redis.Client
}

func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{
		redisClient: redisClient,
	}
}

func (s *RedisStore) Set(ctx context.Context, kind Kind, token string, principal *Principal, ttl time.Duration) error {
	cmdSet := s.redisClient.Set(ctx, tokenKey(kind), token, ttl)
	if err := cmdSet.Err(); err != nil {
		return fmt.Errorf("set %s token: %w", kind, err)
	}

	if principal == nil {
		// no snapshot for this session, drop whatever an older one left
		if err := s.redisClient.Del(ctx, principalKey(kind)).Err(); err != nil {
			log.Errorf("redis session store, drop stale %s principal: %s", kind, err)
		}
		return nil
	}

	principalBytes, err := json.Marshal(principal)
	if err != nil {
		return fmt.Errorf("marshal %s principal: %w", kind, err)
	}

	cmdSet = s.redisClient.Set(ctx, principalKey(kind), principalBytes, ttl)
	if err := cmdSet.Err(); err != nil {
		return fmt.Errorf("set %s principal: %w", kind, err)
	}

	return nil
}

func (s *RedisStore) Get(ctx context.Context, kind Kind) (*Session, error) {
	cmd := s.redisClient.Get(ctx, tokenKey(kind))
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("get %s token: %w", kind, err)
	}

	sess := &Session{
		Credential: Credential{
			Token: cmd.Val(),
		},
	}

	// the engine owns the expiry, reconstruct the absolute deadline from the
	// remaining TTL for callers that want to display it
	if ttlCmd := s.redisClient.TTL(ctx, tokenKey(kind)); ttlCmd.Err() == nil && ttlCmd.Val() > 0 {
		sess.ExpiresAt = time.Now().Add(ttlCmd.Val())
	}

	principalCmd := s.redisClient.Get(ctx, principalKey(kind))
	if err := principalCmd.Err(); err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Errorf("redis session store, get %s principal: %s", kind, err)
		}
		return sess, nil
	}

	var principal Principal
	if err := json.Unmarshal([]byte(principalCmd.Val()), &principal); err != nil {
		log.Errorf("redis session store, unmarshal %s principal: %s", kind, err)
		return sess, nil
	}
	sess.Principal = &principal

	return sess, nil
}

func (s *RedisStore) Clear(ctx context.Context, kind Kind) error {
	// DEL of absent keys is a no-op, which makes Clear idempotent
	cmd := s.redisClient.Del(ctx, tokenKey(kind), principalKey(kind))
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("clear %s session: %w", kind, err)
	}
	return nil
}
