package session

import (
	"errors"
	"fmt"
	"time"
)

// Kind says which class of actor a session belongs to. User and admin
// sessions live side by side in the same storage and must never collide.
type Kind string

const (
	KindUser  Kind = "user"
	KindAdmin Kind = "admin"
)

const (
	// UserSessionTTL is how long an end-user session survives.
	UserSessionTTL = 30 * 24 * time.Hour
	// AdminSessionTTL is how long a back-office session survives.
	AdminSessionTTL = 24 * time.Hour
)

// ErrNoSession is returned by a store when no live session
// exists for the requested kind.
var ErrNoSession = errors.New("no session")

// TTL returns the default session duration for the kind.
func (k Kind) TTL() time.Duration {
	if k == KindAdmin {
		return AdminSessionTTL
	}
	return UserSessionTTL
}

// Credential is the opaque bearer token proving an authenticated session,
// together with its absolute expiry. The token contents are never inspected.
type Credential struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Principal is the cached identity snapshot kept next to the credential,
// so callers can render who is logged in without a server round trip.
type Principal struct {
	ID       int    `json:"id"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Session pairs a credential with its principal snapshot. The principal is
// valid only as long as the credential: both are written and cleared together.
type Session struct {
	Credential
	Principal *Principal `json:"principal,omitempty"`
}

// Live reports whether the credential expiry, if known, has not passed.
// Stores that delegate expiry to the storage engine leave ExpiresAt zero.
func (s *Session) Live(now time.Time) bool {
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// storage keys, disjoint per kind so that a consumer and an admin
// session can coexist in the same store
func tokenKey(kind Kind) string {
	return fmt.Sprintf("myinvite-%s-session||token", kind)
}

func principalKey(kind Kind) string {
	return fmt.Sprintf("myinvite-%s-session||principal", kind)
}
