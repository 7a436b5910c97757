package client

import (
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

var _ Navigator = (*LogNavigator)(nil)
var _ Navigator = (*TestNavigator)(nil)

// Navigator is the injected stand-in for the browser's location object: the
// session guard asks where the user currently is and, when a session dies,
// sends them to the sign-in surface. Implementations must tolerate repeated
// redirects to the same target.
type Navigator interface {
	Location() string
	RedirectTo(path string)
}

// LogNavigator is used in surfaces with no UI to navigate, like the CLI or a
// daemon. It keeps the would-be location and logs every redirect.
type LogNavigator struct {
	mu       sync.Mutex
	location string
}

func NewLogNavigator() *LogNavigator {
	return &LogNavigator{}
}

func (n *LogNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

func (n *LogNavigator) RedirectTo(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.location != path {
		log.Warnf("session invalidated, sign in again at: %s", path)
	}
	n.location = path
}

// TestNavigator records every call for assertions in tests.
type TestNavigator struct {
	mu        sync.Mutex
	location  string
	Redirects []string
}

func NewTestNavigator(location string) *TestNavigator {
	return &TestNavigator{location: location}
}

func (n *TestNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

func (n *TestNavigator) RedirectTo(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Redirects = append(n.Redirects, path)
	n.location = path
}

// RedirectedOnceTo reports whether all recorded redirects target path and at
// least one happened. Duplicate redirects to the same target are benign.
func (n *TestNavigator) RedirectedOnceTo(path string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Redirects) == 0 {
		return false
	}
	for _, r := range n.Redirects {
		if !strings.HasPrefix(r, path) {
			return false
		}
	}
	return true
}
