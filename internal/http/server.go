// Package http exposes the gym administration REST API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gymadmin/internal/cache"
	"gymadmin/internal/log"
	"gymadmin/internal/middleware/ratelimit"
	"gymadmin/internal/middleware/security"
	"gymadmin/internal/middleware/trace"
	"gymadmin/internal/observability"
	"gymadmin/internal/reports"
	"gymadmin/internal/services"
)

const (
	reportCacheSize      = 32
	cacheCleanupInterval = 5 * time.Minute
	reportTimeout        = 15 * time.Second
	readyTimeout         = 2 * time.Second
)

// Config tunes the server; zero values select defaults.
type Config struct {
	Addr           string
	RateLimitRPS   float64
	RateLimitBurst int
	ReportCacheTTL time.Duration
	Logger         *log.Logger
}

type Server struct {
	http.Server
	svc      *services.GymService
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	caches   *cache.Manager

	reportCache *cache.Loader[reports.Report]
	startedAt   time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware around svc. Call Shutdown to stop
// the background cleanup goroutines.
func NewServer(cfg Config, svc *services.GymService) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	ttl := cfg.ReportCacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	reportLRU := cache.NewLRUCache[reports.Report](reportCacheSize, ttl)

	s := &Server{
		svc:      svc,
		logger:   logger,
		detector: security.NewDetector(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		}),
		caches:      cache.NewManager(logger),
		reportCache: cache.NewLoader[reports.Report](reportLRU),
		startedAt:   time.Now(),
	}
	s.caches.Register(reportLRU)
	s.caches.StartCleanup(cacheCleanupInterval)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("Not found").Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		MethodNotAllowedError().Write(w)
	})
	r.Use(observability.Middleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(
		s.detector.Middleware(func(w http.ResponseWriter, r *http.Request) {
			BadRequestError("Bad request").Write(w)
		}),
		s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
			observability.RecordRateLimited()
			log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldPath, r.URL.Path)
			TooManyRequestsError().Write(w)
		}),
		log.ComponentMiddleware(log.ComponentHTTP),
	)

	const id = "/{id:[0-9]+}"

	api.HandleFunc("/members", s.handleListMembers).Methods(http.MethodGet)
	api.HandleFunc("/members", s.handleCreateMember).Methods(http.MethodPost)
	api.HandleFunc("/members"+id, s.handleGetMember).Methods(http.MethodGet)
	api.HandleFunc("/members"+id, s.handleUpdateMember).Methods(http.MethodPatch)
	api.HandleFunc("/members"+id+"/subscriptions", s.handleMemberSubscriptions).Methods(http.MethodGet)
	api.HandleFunc("/members"+id+"/payments", s.handleMemberPayments).Methods(http.MethodGet)
	api.HandleFunc("/members"+id+"/attendance", s.handleMemberAttendance).Methods(http.MethodGet)

	api.HandleFunc("/membership-plans", s.handleListPlans).Methods(http.MethodGet)
	api.HandleFunc("/membership-plans", s.handleCreatePlan).Methods(http.MethodPost)
	api.HandleFunc("/membership-plans"+id, s.handleGetPlan).Methods(http.MethodGet)
	api.HandleFunc("/membership-plans"+id, s.handleUpdatePlan).Methods(http.MethodPatch)

	api.HandleFunc("/subscriptions", s.handleListSubscriptions).Methods(http.MethodGet)
	api.HandleFunc("/subscriptions", s.handleCreateSubscription).Methods(http.MethodPost)
	api.HandleFunc("/subscriptions"+id, s.handleGetSubscription).Methods(http.MethodGet)
	api.HandleFunc("/subscriptions"+id, s.handleUpdateSubscription).Methods(http.MethodPatch)

	api.HandleFunc("/payments", s.handleListPayments).Methods(http.MethodGet)
	api.HandleFunc("/payments", s.handleCreatePayment).Methods(http.MethodPost)
	api.HandleFunc("/payments"+id, s.handleGetPayment).Methods(http.MethodGet)

	api.HandleFunc("/attendance", s.handleListAttendance).Methods(http.MethodGet)
	api.HandleFunc("/attendance", s.handleCheckIn).Methods(http.MethodPost)
	api.HandleFunc("/attendance"+id, s.handleGetAttendance).Methods(http.MethodGet)
	api.HandleFunc("/attendance"+id, s.handleUpdateAttendance).Methods(http.MethodPatch)

	api.HandleFunc("/equipment", s.handleListEquipment).Methods(http.MethodGet)
	api.HandleFunc("/equipment", s.handleCreateEquipment).Methods(http.MethodPost)
	api.HandleFunc("/equipment"+id, s.handleGetEquipment).Methods(http.MethodGet)
	api.HandleFunc("/equipment"+id, s.handleUpdateEquipment).Methods(http.MethodPatch)

	api.HandleFunc("/activity-logs", s.handleListActivity).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handleListSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings/{key}", s.handleGetSetting).Methods(http.MethodGet)
	api.HandleFunc("/settings/{key}", s.handleUpdateSetting).Methods(http.MethodPatch)

	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/reports", s.handleReports).Methods(http.MethodGet)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.logger, s.detector.ExtractClientIP)
	return headers.Middleware(tracer.Middleware(r))
}

// Shutdown stops accepting requests, waits for in-flight ones and stops the
// limiter and cache cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
		s.limiter.Stop()
		s.caches.Stop()
	})
	return err
}
