package session

import (
	"context"
	"sync"
	"time"
)

// TestStore is an in-memory store fake for unit and dev testing.
type TestStore struct {
	mu       sync.Mutex
	sessions map[Kind]*Session

	// SetCalls / ClearCalls record invocations per kind
	SetCalls   map[Kind]int
	ClearCalls map[Kind]int

	// FailOps makes every operation return this error, to exercise
	// the best-effort behavior of callers
	FailOps error
}

func NewTestStore() *TestStore {
	return &TestStore{
		sessions:   map[Kind]*Session{},
		SetCalls:   map[Kind]int{},
		ClearCalls: map[Kind]int{},
	}
}

func (s *TestStore) Set(_ context.Context, kind Kind, token string, principal *Principal, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.SetCalls[kind]++
	if s.FailOps != nil {
		return s.FailOps
	}

	s.sessions[kind] = &Session{
		Credential: Credential{
			Token:     token,
			ExpiresAt: time.Now().Add(ttl),
		},
		Principal: principal,
	}
	return nil
}

func (s *TestStore) Get(_ context.Context, kind Kind) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailOps != nil {
		return nil, s.FailOps
	}

	sess, ok := s.sessions[kind]
	if !ok {
		return nil, ErrNoSession
	}
	return sess, nil
}

func (s *TestStore) Clear(_ context.Context, kind Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ClearCalls[kind]++
	if s.FailOps != nil {
		return s.FailOps
	}

	delete(s.sessions, kind)
	return nil
}
