package devserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/luisthe-dev/myinvite-go/internal/middleware"
	"github.com/luisthe-dev/myinvite-go/internal/session"
	"github.com/luisthe-dev/myinvite-go/internal/telemetry/metrics"
	"github.com/luisthe-dev/myinvite-go/pkg"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

const loginRequestsPerMinute = 15

type Config struct {
	Host string
	Port int

	// RedisAddr enables rate limiting of the login surfaces when set;
	// empty leaves them unlimited, which is fine for local use.
	RedisAddr     string
	RedisPassword string

	// seeded accounts; identifiers mapped to already-hashed passwords
	UserAccounts  []Account
	AdminAccounts []Account

	// OTPCode accepted by the verify endpoint, a fixed dev convenience.
	OTPCode string

	EventCount int
	UserCount  int
}

// Server is a local stand-in for the MyInvite backend: it speaks the same
// envelope and auth contract the real API does, over seeded fake data, so
// the client and CLI can be exercised without the production service.
type Server struct {
	config         Config
	authService    *AuthService
	userAccounts   map[string]Account
	adminAccounts  map[string]Account
	data           *dataSet
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	rateLimiter    middleware.RequestRateLimiter
	redisClient    *redis.Client
	httpServer     *http.Server
}

func NewServer(cfg Config) *Server {
	if cfg.OTPCode == "" {
		cfg.OTPCode = "123456"
	}
	if cfg.EventCount <= 0 {
		cfg.EventCount = 12
	}
	if cfg.UserCount <= 0 {
		cfg.UserCount = 25
	}

	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("myinvite", "devserver", promRegistry)

	s := &Server{
		config:         cfg,
		authService:    NewAuthService(),
		userAccounts:   map[string]Account{},
		adminAccounts:  map[string]Account{},
		data:           seedData(cfg.EventCount, cfg.UserCount),
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
	}

	for _, account := range cfg.UserAccounts {
		s.userAccounts[account.Identifier] = account
	}
	for _, account := range cfg.AdminAccounts {
		s.adminAccounts[account.Identifier] = account
	}

	if cfg.RedisAddr != "" {
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		s.rateLimiter = redis_rate.NewLimiter(s.redisClient)
		log.Debugf("devserver: login rate limiting enabled via redis at %s", cfg.RedisAddr)
	}

	return s
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleRoot).Methods("GET", "OPTIONS").Name("root")
	r.HandleFunc("/version", s.handleVersion).Methods("GET").Name("version")

	r.HandleFunc("/events", s.handleEvents).Methods("GET", "OPTIONS").Name("events")
	r.HandleFunc("/events/{id}", s.handleEvent).Methods("GET", "OPTIONS").Name("event")

	r.HandleFunc("/users/me", s.handleMe).Methods("GET", "OPTIONS").Name("me")
	r.HandleFunc("/tickets/mine", s.handleMyTickets).Methods("GET", "OPTIONS").Name("tickets")

	loginSubrouter := r.PathPrefix("/auth").Subrouter()
	loginSubrouter.HandleFunc("/login", s.handleLogin).Methods("POST", "OPTIONS").Name("login")
	loginSubrouter.HandleFunc("/verify", s.handleVerify).Methods("POST", "OPTIONS").Name("verify")
	loginSubrouter.HandleFunc("/logout", s.handleLogout).Methods("POST", "OPTIONS").Name("logout")

	adminSubrouter := r.PathPrefix("/admin").Subrouter()
	adminSubrouter.HandleFunc("/auth/login", s.handleAdminLogin).Methods("POST", "OPTIONS").Name("admin-login")
	adminSubrouter.HandleFunc("/auth/logout", s.handleLogout).Methods("POST", "OPTIONS").Name("admin-logout")
	adminSubrouter.HandleFunc("/dashboard", s.handleDashboard).Methods("GET", "OPTIONS").Name("admin-dashboard")
	adminSubrouter.HandleFunc("/users", s.handleUsers).Methods("GET", "OPTIONS").Name("admin-users")
	adminSubrouter.HandleFunc("/events", s.handleAdminEvents).Methods("GET", "OPTIONS").Name("admin-events")

	r.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	)).Methods("GET").Name("metrics")

	if s.rateLimiter != nil {
		// rate limit the login surfaces to prevent abuse
		loginSubrouter.Use(middleware.RateLimit(s.rateLimiter, "login", loginRequestsPerMinute))
	}

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.authService)

	r.Use(otelmux.Middleware("devserver"))
	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

// Handler exposes the configured router, mainly so tests can mount the
// whole server in an httptest instance.
func (s *Server) Handler() http.Handler {
	return s.routerSetup()
}

func (s *Server) Serve(ctx context.Context) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	go func() {
		log.Infof(" > devserver listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("devserver, listen and serve: %s", err)
		}
	}()

	go s.sessionCleanupLoop(ctx)

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) sessionCleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.authService.ScanAndClean(ctx)
		}
	}
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
	}
	log.Warnln("devserver shut down")
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "MyInvite dev backend, I'm OK ;)")
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeEnvelope(w, http.StatusOK, "", map[string]string{"version": "dev"})
}

// principalFromRequest resolves the caller identity behind the bearer
// token. The auth middleware already gated the route, so a miss here means
// the session died between the check and the handler; treat it as a 401.
func (s *Server) principalFromRequest(r *http.Request) (*session.Principal, bool) {
	return s.authService.PrincipalFor(r.Context(), middleware.BearerToken(r))
}

func requireAdmin(w http.ResponseWriter, principal *session.Principal) bool {
	if principal.Role != "admin" {
		// valid credential, insufficient privilege: authorization
		// rejection, deliberately not a 401
		writeEnvelope(w, http.StatusForbidden, "admin privileges required", nil)
		return false
	}
	return true
}

