package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	limiterstdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"

	"github.com/ruangkerja/backend-ruang/internal/activity"
	"github.com/ruangkerja/backend-ruang/internal/app"
	"github.com/ruangkerja/backend-ruang/internal/billing"
	"github.com/ruangkerja/backend-ruang/internal/catalog"
	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/config"
	"github.com/ruangkerja/backend-ruang/internal/customer"
	"github.com/ruangkerja/backend-ruang/internal/expense"
	"github.com/ruangkerja/backend-ruang/internal/health"
	"github.com/ruangkerja/backend-ruang/internal/invoice"
	"github.com/ruangkerja/backend-ruang/internal/money"
	"github.com/ruangkerja/backend-ruang/internal/obs"
	"github.com/ruangkerja/backend-ruang/internal/order"
	"github.com/ruangkerja/backend-ruang/internal/ratelimit"
	"github.com/ruangkerja/backend-ruang/internal/report"
	"github.com/ruangkerja/backend-ruang/internal/session"
	"github.com/ruangkerja/backend-ruang/internal/settings"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "ruang")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "ruang-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:      envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio: sampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	location := cfg.Location()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "ruang-api"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	if envBool("DB_MIGRATE_ON_START", true) {
		sourceURL := envOrDefault("DB_MIGRATIONS_URL", "file://db/migrations")
		m, err := migrate.New(sourceURL, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("open migrations")
		}
		if err := app.RunMigrations(m); err != nil {
			logger.Fatal().Err(err).Msg("run migrations")
		}
	}

	queries := store.New(pool)

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	recorder := activity.Recorder{Store: queries, Logger: logger}
	activityHandler := activity.Handler{Store: queries}

	settingsSvc := &settings.Service{
		Store: queries,
		Defaults: settings.Defaults{
			WorkspaceName:    cfg.WorkspaceName,
			HourlyRate:       money.MustParse(cfg.DefaultHourlyRate),
			CurrencyCode:     cfg.CurrencyCode,
			TaxRate:          money.MustParse(cfg.TaxRate),
			ExpiryWarningMin: int32(cfg.ExpiryWarningMin),
		},
	}
	settingsHandler := &settings.Handler{Service: settingsSvc}

	customerSvc := &customer.Service{Store: queries, Activity: recorder}
	customerHandler := &customer.Handler{Service: customerSvc}

	catalogSvc := &catalog.Service{
		Store:  queries,
		Cache:  catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
		Logger: logger,
	}
	catalogHandler := &catalog.Handler{Service: catalogSvc}

	sessionSvc := &session.Service{Store: queries, Activity: recorder}
	sessionHandler := &session.Handler{Service: sessionSvc}

	orderSvc := &order.Service{Pool: pool, Q: queries, Activity: recorder}
	orderHandler := &order.Handler{Service: orderSvc}

	billingSvc := &billing.Service{
		Pool:     pool,
		Q:        queries,
		Activity: recorder,
		Location: location,
	}
	billingHandler := &billing.Handler{Service: billingSvc}

	invoiceSvc := &invoice.Service{Store: queries, Location: location}
	invoiceHandler := &invoice.Handler{Service: invoiceSvc}

	expenseSvc := &expense.Service{Store: queries, Activity: recorder, Location: location}
	expenseHandler := &expense.Handler{Service: expenseSvc}

	reportSvc := &report.Service{
		Q:        queries,
		Settings: settingsSvc,
		R:        redisClient,
		TTL:      cfg.DashboardCacheTTL,
		Location: location,
	}
	reportHandler := &report.Handler{Service: reportSvc}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	checkoutLimit := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: redisClient, Prefix: "rl:"},
		Config: ratelimit.Config{
			Key:    ratelimit.ByClientIP("checkout"),
			Window: cfg.CheckoutRateWindow,
			Max:    cfg.CheckoutRateLimit,
		},
		OnError: func(err error) {
			logger.Warn().Err(err).Msg("checkout rate limiter degraded")
		},
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if envBool("OBS_ENABLE_PPROF", true) {
		user := envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", "")
		pass := envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), user, pass))
	}

	healthHandler := health.Handler{
		Checker:      health.Probes{Pool: pool, Redis: redisClient},
		DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		if limiterStore, err := app.NewLimiterStore(redisClient); err != nil {
			logger.Warn().Err(err).Msg("api limiter store unavailable")
		} else if apiLimiter, err := app.NewAPILimiter(limiterStore, envOrDefault("API_RATE_LIMIT", "600-M")); err != nil {
			logger.Warn().Err(err).Msg("parse API_RATE_LIMIT")
		} else {
			v.Use(limiterstdlib.NewMiddleware(apiLimiter).Handler)
		}

		v.Route("/customers", func(c chi.Router) {
			c.Post("/", customerHandler.Register)
			c.Get("/", customerHandler.List)
			c.Get("/search", customerHandler.Search)
			c.Route("/{customerID}", func(child chi.Router) {
				child.Get("/", customerHandler.Get)
				child.Patch("/", customerHandler.UpdateContact)
			})
		})

		v.Route("/products", func(p chi.Router) {
			p.Get("/", catalogHandler.List)
			p.Post("/", catalogHandler.Create)
			p.Route("/{productID}", func(child chi.Router) {
				child.Get("/", catalogHandler.Get)
				child.Patch("/", catalogHandler.Update)
				child.Delete("/", catalogHandler.Delete)
			})
		})

		v.Route("/sessions", func(sr chi.Router) {
			sr.Post("/", sessionHandler.Start)
			sr.Get("/", sessionHandler.List)
			sr.Get("/active", sessionHandler.ListActive)
			sr.Route("/{sessionID}", func(child chi.Router) {
				child.Get("/", sessionHandler.Get)
				child.With(idem.Middleware).Post("/orders", orderHandler.Create)
				child.With(idem.Middleware, checkoutLimit.Middleware).Post("/checkout", billingHandler.Checkout)
			})
		})

		v.Route("/orders/{orderID}", func(o chi.Router) {
			o.Patch("/", orderHandler.UpdateQuantity)
			o.Delete("/", orderHandler.Delete)
			o.Get("/kitchen-receipt", orderHandler.KitchenReceipt)
		})

		v.Route("/invoices", func(i chi.Router) {
			i.Get("/", invoiceHandler.List)
			i.Get("/daily-revenue", invoiceHandler.DailyRevenue)
			i.Get("/monthly-revenue", invoiceHandler.MonthlyRevenue)
			i.Route("/{invoiceID}", func(child chi.Router) {
				child.Get("/", invoiceHandler.Get)
				child.Get("/receipt", invoiceHandler.Receipt)
			})
		})

		v.Route("/expenses", func(e chi.Router) {
			e.Post("/", expenseHandler.Create)
			e.Get("/", expenseHandler.List)
			e.Get("/monthly", expenseHandler.Monthly)
		})

		v.Get("/activity", activityHandler.List)

		v.Route("/settings", func(st chi.Router) {
			st.Get("/", settingsHandler.Get)
			st.Put("/", settingsHandler.Update)
		})

		v.Get("/dashboard", reportHandler.Dashboard)
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	logger.Info().Str("addr", srv.Addr).Str("tz", cfg.Timezone).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/allocs", pprof.Handler("allocs"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	mux.Handle("/mutex", pprof.Handler("mutex"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
