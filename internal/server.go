package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/manea-palluat/flexfit-workout-sub001/internal/auth"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/catalog"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/config"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/db"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/middleware"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/misc"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/telemetry/metrics"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/telemetry/tracing"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/tracking"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/tracking/store"
)

const sessionsCleanupInterval = 8 * time.Hour

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config *config.Config
	dbPool *pgxpool.Pool

	redisClient  *redis.Client
	loginChecker *auth.LoginChecker
	authService  *auth.Service

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
	stopCleanup    context.CancelFunc
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	DBPassword              string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		DBPassword:     params.DBPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("backend", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "flexfit-backend", rdb)
	if err != nil {
		dbPool.Close()
		return nil, err
	}

	authService := auth.NewAuthService(
		auth.NewUsersRepo(dbPool),
		params.Config.SessionTTL.Duration,
		rdb,
	)

	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(sessionsCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				authService.ScanAndClean(cleanupCtx)
			}
		}
	}()

	return &Server{
		config:      params.Config,
		dbPool:      dbPool,
		versionInfo: params.VersionInfo,

		redisClient:  rdb,
		authService:  authService,
		loginChecker: auth.NewLoginChecker(rdb),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
		stopCleanup:    stopCleanup,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	return newRouter(routerParams{
		versionInfo:    s.versionInfo,
		recordsRepo:    store.NewRepo(s.dbPool),
		exercises:      cachedCatalog(catalog.NewRepo(s.dbPool), s.config),
		authService:    s.authService,
		loginChecker:   s.loginChecker,
		rateLimiter:    redis_rate.NewLimiter(s.redisClient),
		metricsManager: s.metricsManager,
		config:         s.config,
	})
}

// cachedCatalog keeps catalog answers in memory; the catalog only changes
// with a schema migration, which restarts the service anyway.
func cachedCatalog(source catalog.Source, cfg *config.Config) *catalog.Cache {
	return catalog.NewCache(source, cfg.CatalogCacheMB, catalog.DefaultCacheExpire)
}

type recordsStore interface {
	Create(ctx context.Context, record tracking.Record) error
	Update(ctx context.Context, record tracking.Record) error
	Delete(ctx context.Context, ownerID, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]tracking.Record, error)
}

type sessionService interface {
	Login(ctx context.Context, credentials auth.Credentials, createdAt time.Time) (auth.LoginSession, error)
	Logout(ctx context.Context, token string) (bool, error)
}

type ownerChecker interface {
	OwnerOf(ctx context.Context, token string) (string, error)
}

type routerParams struct {
	versionInfo    string
	recordsRepo    recordsStore
	exercises      catalog.Source
	authService    sessionService
	loginChecker   ownerChecker
	rateLimiter    middleware.RequestRateLimiter
	metricsManager *metrics.Manager
	config         *config.Config
}

func newRouter(p routerParams) *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	misc.NewHandler(p.versionInfo).SetupRoutes(r)
	store.NewHandler(p.recordsRepo, p.metricsManager).SetupRoutes(r)
	catalog.NewHandler(p.exercises).SetupRoutes(r)

	// rate limit the /login and /logout endpoints to prevent abuse
	loginSubrouter := r.PathPrefix("/a").Subrouter()
	auth.NewHandler(p.authService, p.metricsManager).SetupRoutes(loginSubrouter)
	loginSubrouter.Use(middleware.RateLimit(p.rateLimiter, "login", p.config.LoginRateLimitAllowedPerMin, p.metricsManager))

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(p.loginChecker)

	r.Use(middleware.PanicRecovery(p.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(p.metricsManager))
	r.Use(middleware.Cors(p.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      http.TimeoutHandler(s.routerSetup(), s.config.RequestTimeout.Duration, "request timeout"),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)
	s.stopCleanup()

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
