package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

// default cache size, freecache docs recommend no less than 512KB
const defaultCacheSize = 512 * 1024

// CacheStore keeps sessions in an in-process freecache instance. Like the
// Redis variant, the TTL is applied at write time and the cache evicts
// expired entries on its own. Nothing survives a process restart, which is
// fine for tests and short-lived tooling.
type CacheStore struct {
	cache *freecache.Cache
}

func NewCacheStore(size int) *CacheStore {
	if size <= 0 {
		size = defaultCacheSize
	}
	return &CacheStore{
		cache: freecache.NewCache(size),
	}
}

func (s *CacheStore) Set(ctx context.Context, kind Kind, token string, principal *Principal, ttl time.Duration) error {
	// freecache treats 0 as "never expire", so a sub-second TTL must round
	// up to the smallest expiry it can express instead of truncating away
	expireSeconds := int(ttl.Seconds())
	if expireSeconds < 1 {
		expireSeconds = 1
	}
	if err := s.cache.Set([]byte(tokenKey(kind)), []byte(token), expireSeconds); err != nil {
		return err
	}

	if principal == nil {
		s.cache.Del([]byte(principalKey(kind)))
		return nil
	}

	principalBytes, err := json.Marshal(principal)
	if err != nil {
		return err
	}
	return s.cache.Set([]byte(principalKey(kind)), principalBytes, expireSeconds)
}

func (s *CacheStore) Get(ctx context.Context, kind Kind) (*Session, error) {
	tokenBytes, expireAt, err := s.cache.GetWithExpiration([]byte(tokenKey(kind)))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	sess := &Session{
		Credential: Credential{
			Token:     string(tokenBytes),
			ExpiresAt: time.Unix(int64(expireAt), 0),
		},
	}

	principalBytes, err := s.cache.Get([]byte(principalKey(kind)))
	if err != nil {
		return sess, nil
	}

	var principal Principal
	if err := json.Unmarshal(principalBytes, &principal); err != nil {
		log.Errorf("cache session store, unmarshal %s principal: %s", kind, err)
		return sess, nil
	}
	sess.Principal = &principal

	return sess, nil
}

func (s *CacheStore) Clear(ctx context.Context, kind Kind) error {
	// Del returns whether the entry was there, absence is not an error
	s.cache.Del([]byte(tokenKey(kind)))
	s.cache.Del([]byte(principalKey(kind)))
	return nil
}
