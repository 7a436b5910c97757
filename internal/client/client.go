package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	"github.com/luisthe-dev/myinvite-go/internal/session"
	"github.com/luisthe-dev/myinvite-go/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// BaseAddressEnvVar supplies the backend base address.
	BaseAddressEnvVar = "MYINVITE_API_ADDRESS"
	// DefaultBaseAddress is used when the env var is not set.
	DefaultBaseAddress = "http://localhost:8080"

	// sign-in surfaces, one per principal kind
	UserSignInPath  = "/login"
	AdminSignInPath = "/admin/login"
)

// BaseAddressFromEnv resolves the backend address from the environment,
// falling back to the fixed local default.
func BaseAddressFromEnv() string {
	if addr := os.Getenv(BaseAddressEnvVar); addr != "" {
		return addr
	}
	log.Debugf("%s not set, using default API address %s", BaseAddressEnvVar, DefaultBaseAddress)
	return DefaultBaseAddress
}

// SignInPath returns the kind-appropriate sign-in surface.
func SignInPath(kind session.Kind) string {
	if kind == session.KindAdmin {
		return AdminSignInPath
	}
	return UserSignInPath
}

type Config struct {
	// BaseAddress of the backend API; empty means resolve from the
	// environment with the local fallback.
	BaseAddress string
	// Timeout for whole requests; zero leaves the transport default, the
	// core configures no explicit timeout of its own.
	Timeout time.Duration
	// TracingEnabled wraps the base transport with otel instrumentation.
	TracingEnabled bool
	// Metrics is optional; nil disables instrumentation.
	Metrics *metrics.Manager
}

// Client is the request dispatcher for one principal kind: an HTTP calling
// surface pre-configured with the base address, JSON content negotiation, a
// cookie-capable transport, credential attachment on the way out and the
// session guard on the way in. Build one per kind; a user client and an
// admin client never share credentials or redirect targets.
type Client struct {
	kind        session.Kind
	baseAddress string
	httpClient  *http.Client
	store       session.Store
	sessionTTL  time.Duration
}

func newClient(
	kind session.Kind,
	cfg Config,
	store session.Store,
	navigator Navigator,
) (*Client, error) {
	baseAddress := cfg.BaseAddress
	if baseAddress == "" {
		baseAddress = BaseAddressFromEnv()
	}
	baseAddress = strings.TrimSuffix(baseAddress, "/")

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	var transport http.RoundTripper = http.DefaultTransport
	if cfg.TracingEnabled {
		transport = otelhttp.NewTransport(transport)
	}
	// outbound: credential attachment, then inbound: session guard
	transport = NewBearerTransport(transport, store, kind)
	transport = NewSessionGuard(transport, store, kind, SignInPath(kind), navigator, cfg.Metrics)

	return &Client{
		kind:        kind,
		baseAddress: baseAddress,
		store:       store,
		sessionTTL:  kind.TTL(),
		httpClient: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   cfg.Timeout,
		},
	}, nil
}

// Kind returns the principal kind this client dispatches for.
func (c *Client) Kind() session.Kind {
	return c.kind
}

// BaseAddress returns the resolved backend address.
func (c *Client) BaseAddress() string {
	return c.baseAddress
}

// Authenticated reports whether a live credential exists for this client's
// kind right now. The next dispatched request would carry it.
func (c *Client) Authenticated(ctx context.Context) bool {
	sess, err := c.store.Get(ctx, c.kind)
	return err == nil && sess.Token != ""
}

// Principal returns the cached identity snapshot, without a round trip.
func (c *Client) Principal(ctx context.Context) (*session.Principal, error) {
	sess, err := c.store.Get(ctx, c.kind)
	if err != nil {
		return nil, err
	}
	if sess.Principal == nil {
		return nil, session.ErrNoSession
	}
	return sess.Principal, nil
}

// envelope is the conventional response shape of the backend: metadata in
// message, payload in data. Consumed here, defined by the server.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// APIError carries a non-2xx response back to the caller. The session guard
// side effects, if any, have already happened by the time a caller sees it.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("myinvite api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("myinvite api: %s (status %d)", e.Message, e.StatusCode)
}

// IsAuthRejection reports whether err is the backend signaling an invalid,
// expired or missing credential.
func IsAuthRejection(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseAddress+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if len(respBytes) > 0 {
		if err := json.Unmarshal(respBytes, &env); err != nil {
			// not every error response carries the envelope
			log.Tracef("client %s, non-envelope response on %s %s: %s", c.kind, method, path, err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    env.Message,
		}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("unmarshal response data: %w", err)
	}
	return nil
}
