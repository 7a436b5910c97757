package devserver

import (
	"context"
	"sync"
	"time"

	"github.com/luisthe-dev/myinvite-go/internal/session"
	"github.com/luisthe-dev/myinvite-go/pkg"

	log "github.com/sirupsen/logrus"
)

const sessionTokenLength = 35

// Account is a seeded login the dev backend accepts.
type Account struct {
	Identifier   string // email for attendees, username for admins
	PasswordHash string
	Principal    session.Principal
}

type loginSession struct {
	principal session.Principal
	createdAt time.Time
	ttl       time.Duration
}

func (s loginSession) expired(now time.Time) bool {
	return now.Sub(s.createdAt) > s.ttl
}

// AuthService hands out opaque session tokens and checks them on every
// protected request. Everything lives in memory, this is a dev stand-in.
type AuthService struct {
	mu       sync.Mutex
	sessions map[string]loginSession
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(n int) (string, error)
}

func NewAuthService() *AuthService {
	return &AuthService{
		sessions:       map[string]loginSession{},
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func (as *AuthService) Login(_ context.Context, principal session.Principal, ttl time.Duration) (string, error) {
	token, err := as.RandStringFunc(sessionTokenLength)
	if err != nil {
		return "", err
	}

	as.mu.Lock()
	defer as.mu.Unlock()

	as.sessions[token] = loginSession{
		principal: principal,
		createdAt: time.Now(),
		ttl:       ttl,
	}

	return token, nil
}

// Logout invalidates the token and reports whether it was live.
func (as *AuthService) Logout(_ context.Context, token string) bool {
	as.mu.Lock()
	defer as.mu.Unlock()

	sess, ok := as.sessions[token]
	delete(as.sessions, token)
	return ok && !sess.expired(time.Now())
}

// IsLogged implements middleware.LoginChecker.
func (as *AuthService) IsLogged(_ context.Context, token string) (bool, error) {
	as.mu.Lock()
	defer as.mu.Unlock()

	sess, ok := as.sessions[token]
	if !ok {
		return false, nil
	}
	if sess.expired(time.Now()) {
		delete(as.sessions, token)
		return false, nil
	}
	return true, nil
}

// PrincipalFor returns the identity behind a live token.
func (as *AuthService) PrincipalFor(_ context.Context, token string) (*session.Principal, bool) {
	as.mu.Lock()
	defer as.mu.Unlock()

	sess, ok := as.sessions[token]
	if !ok || sess.expired(time.Now()) {
		return nil, false
	}
	principal := sess.principal
	return &principal, true
}

// ScanAndClean drops all expired sessions.
func (as *AuthService) ScanAndClean(_ context.Context) {
	as.mu.Lock()
	defer as.mu.Unlock()

	now := time.Now()
	var toRemove []string
	for token, sess := range as.sessions {
		if sess.expired(now) {
			toRemove = append(toRemove, token)
		}
	}

	if len(toRemove) == 0 {
		return
	}

	log.Warnf("=> auth service, scan and clean, removing %d expired sessions", len(toRemove))
	for _, token := range toRemove {
		delete(as.sessions, token)
	}
}
