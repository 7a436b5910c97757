package client

import (
	"net/http"
	"strings"

	"github.com/luisthe-dev/myinvite-go/internal/session"
	"github.com/luisthe-dev/myinvite-go/internal/telemetry/metrics"
	"github.com/luisthe-dev/myinvite-go/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var _ http.RoundTripper = (*SessionGuard)(nil)

// SessionGuard is the inbound half of the dispatcher: it inspects every
// response and reacts to authentication rejections, no matter which caller
// issued the request. On a 401 it clears the session store for its kind and
// sends the navigator to the sign-in surface, then hands the original
// response back so the caller's own failure path still runs.
//
// Every other status, and every transport error, passes through untouched.
// Authorization failures (403) and server errors stay the caller's problem.
type SessionGuard struct {
	base           http.RoundTripper
	store          session.Store
	kind           session.Kind
	signInPath     string
	navigator      Navigator
	metricsManager *metrics.Manager
}

func NewSessionGuard(
	base http.RoundTripper,
	store session.Store,
	kind session.Kind,
	signInPath string,
	navigator Navigator,
	metricsManager *metrics.Manager,
) *SessionGuard {
	if base == nil {
		base = http.DefaultTransport
	}
	return &SessionGuard{
		base:           base,
		store:          store,
		kind:           kind,
		signInPath:     signInPath,
		navigator:      navigator,
		metricsManager: metricsManager,
	}
}

func (g *SessionGuard) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := g.base.RoundTrip(req)
	if err != nil || resp == nil {
		// transport failure, the guard takes no corrective action
		return resp, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	ctx, span := tracing.GlobalTracer.Start(req.Context(), "sessionGuard.authRejection")
	defer span.End()
	span.SetAttributes(attribute.String("session.kind", string(g.kind)))
	span.SetAttributes(attribute.String("request.path", req.URL.Path))

	log.Debugf("session guard, %s auth rejection on %s, clearing session", g.kind, req.URL.Path)
	if g.metricsManager != nil {
		g.metricsManager.CounterAuthRejections.WithLabelValues(string(g.kind)).Inc()
	}

	// clear is idempotent, so concurrent in-flight rejections cause no harm
	if clearErr := g.store.Clear(ctx, g.kind); clearErr != nil {
		log.Errorf("session guard, clear %s session: %s", g.kind, clearErr)
		span.RecordError(clearErr)
	}

	g.redirectToSignIn()

	span.SetStatus(codes.Ok, "session-cleared")

	// forward the original rejection, the guard never swallows it
	return resp, nil
}

// redirectToSignIn issues the navigation unless the user is already on the
// sign-in surface. The sign-in page makes an authenticated probe call of its
// own that can 401 too, and without this check that would redirect forever.
func (g *SessionGuard) redirectToSignIn() {
	if g.navigator == nil {
		return
	}
	if strings.HasPrefix(g.navigator.Location(), g.signInPath) {
		return
	}
	if g.metricsManager != nil {
		g.metricsManager.CounterSessionRedirects.WithLabelValues(string(g.kind)).Inc()
	}
	g.navigator.RedirectTo(g.signInPath)
}
