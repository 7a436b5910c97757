package session

import (
	"context"
	"time"
)

var _ Store = (*RedisStore)(nil)
var _ Store = (*CacheStore)(nil)
var _ Store = (*FileStore)(nil)
var _ Store = (*TestStore)(nil)

// Store holds at most one session per principal kind. A new Set for a kind
// replaces the previous entry wholesale; Clear removes both the credential
// and the principal snapshot in one operation and is a no-op when the kind
// has no session.
type Store interface {
	Set(ctx context.Context, kind Kind, token string, principal *Principal, ttl time.Duration) error
	Get(ctx context.Context, kind Kind) (*Session, error)
	Clear(ctx context.Context, kind Kind) error
}
