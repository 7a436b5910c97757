package client

import (
	"errors"
	"net/http"

	"github.com/luisthe-dev/myinvite-go/internal/session"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var _ http.RoundTripper = (*BearerTransport)(nil)

// BearerTransport is the outbound half of the dispatcher: before every
// request leaves, it looks up the session store for its kind and, when a
// live credential exists, attaches it as a bearer authorization header.
//
// The lookup happens on every single call, nothing is cached between
// requests, so a login or logout takes effect on the very next request.
// Attachment is best-effort: a store failure sends the request anonymous
// instead of failing it.
type BearerTransport struct {
	base  http.RoundTripper
	store session.Store
	kind  session.Kind
}

func NewBearerTransport(base http.RoundTripper, store session.Store, kind session.Kind) *BearerTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &BearerTransport{
		base:  base,
		store: store,
		kind:  kind,
	}
}

func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// per RoundTripper contract the original request is not mutated
	req = req.Clone(req.Context())

	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}

	sess, err := t.store.Get(req.Context(), t.kind)
	switch {
	case err == nil && sess.Token != "":
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	case errors.Is(err, session.ErrNoSession):
		// anonymous request, send unmodified
	case err != nil:
		log.Tracef("bearer transport, %s credential lookup: %s, sending anonymous", t.kind, err)
	}

	return t.base.RoundTrip(req)
}
