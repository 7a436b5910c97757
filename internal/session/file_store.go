package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
)

// FileStore keeps sessions as JSON files under a state directory, one file
// per kind, so they survive across process runs. Files do not evict
// themselves, so unlike the Redis and cache variants this store re-checks
// the expiry on every read and removes stale entries.
//
// When the state directory cannot be created the store degrades to a no-op
// layer: Set and Clear silently succeed and Get always reports no session.
// Callers in such environments simply stay anonymous.
type FileStore struct {
	dir      string
	disabled bool
}

func NewFileStore(dir string) *FileStore {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		log.Errorf("file session store, create dir %s: %s, store disabled", dir, err)
		return &FileStore{dir: dir, disabled: true}
	}
	return &FileStore{dir: dir}
}

func (s *FileStore) sessionFilePath(kind Kind) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s-session.json", kind))
}

func (s *FileStore) Set(ctx context.Context, kind Kind, token string, principal *Principal, ttl time.Duration) error {
	if s.disabled {
		return nil
	}

	sess := Session{
		Credential: Credential{
			Token:     token,
			ExpiresAt: time.Now().Add(ttl),
		},
		Principal: principal,
	}

	sessBytes, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal %s session: %w", kind, err)
	}

	if err := os.WriteFile(s.sessionFilePath(kind), sessBytes, 0o600); err != nil {
		return fmt.Errorf("write %s session: %w", kind, err)
	}

	return nil
}

func (s *FileStore) Get(ctx context.Context, kind Kind) (*Session, error) {
	if s.disabled {
		return nil, ErrNoSession
	}

	sessBytes, err := os.ReadFile(s.sessionFilePath(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("read %s session: %w", kind, err)
	}

	var sess Session
	if err := json.Unmarshal(sessBytes, &sess); err != nil {
		log.Errorf("file session store, unmarshal %s session: %s, dropping entry", kind, err)
		_ = os.Remove(s.sessionFilePath(kind))
		return nil, ErrNoSession
	}

	if !sess.Live(time.Now()) {
		log.Debugf("file session store, %s session expired, dropping entry", kind)
		_ = os.Remove(s.sessionFilePath(kind))
		return nil, ErrNoSession
	}

	return &sess, nil
}

func (s *FileStore) Clear(ctx context.Context, kind Kind) error {
	if s.disabled {
		return nil
	}

	if err := os.Remove(s.sessionFilePath(kind)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear %s session: %w", kind, err)
	}
	return nil
}
