package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/buyled/gomanage-relay/internal/config"
	"github.com/buyled/gomanage-relay/internal/database"
	"github.com/buyled/gomanage-relay/internal/gomanage"
	"github.com/buyled/gomanage-relay/internal/handler"
	"github.com/buyled/gomanage-relay/internal/jobs"
	"github.com/buyled/gomanage-relay/internal/middleware"
	"github.com/buyled/gomanage-relay/internal/query"
	"github.com/buyled/gomanage-relay/internal/redis"
	"github.com/buyled/gomanage-relay/internal/repository"
	"github.com/buyled/gomanage-relay/internal/service"
	"github.com/buyled/gomanage-relay/internal/session"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	if err := db.Migrate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	customerRepo := repository.NewCustomerRepository(db.DB)
	productRepo := repository.NewProductRepository(db.DB)
	orderRepo := repository.NewOrderRepository(db.DB)
	syncRunRepo := repository.NewSyncRunRepository(db.DB)

	sessionStore := session.NewStore(cfg.SessionTTL(), cfg.SessionIdleLimit())
	upstream := gomanage.NewClient(cfg.GomanageBaseURL, cfg.UpstreamTimeout(), cfg.UpstreamRetries)
	prober := gomanage.NewProber(cfg.GomanageBaseURL, config.ProbeTimeout)
	translator := query.NewTranslator(query.CollectionPaths{
		Customers: cfg.CustomersPath,
		Products:  cfg.ProductsPath,
		Orders:    cfg.OrdersPath,
	})

	relayService := service.NewRelayService(sessionStore, upstream, translator, prober, service.Credentials{
		Username: cfg.GomanageUsername,
		Password: cfg.GomanagePassword,
	})
	syncService := service.NewSyncService(relayService, customerRepo, productRepo, orderRepo, syncRunRepo)

	rateLimiter := service.NewRateLimiter(redisClient.Client)
	rateLimitMiddleware := middleware.NewIPRateLimitMiddleware(rateLimiter, cfg.RateLimitPerMin, time.Minute, "api")
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)

	relayHandler := handler.NewRelayHandler(relayService)
	entitiesHandler := handler.NewEntitiesHandler(relayService, customerRepo, productRepo, orderRepo)
	syncHandler := handler.NewSyncHandler(syncService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(rateLimitMiddleware.Handler)
		r.Mount("/gomanage", relayHandler.Routes())
		r.Mount("/sync", syncHandler.Routes())
		r.Mount("/", entitiesHandler.Routes())
	})

	cleanupJob := jobs.NewCleanupJob(sessionStore, syncRunRepo, cfg.SyncRunRetention(), config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("gomanage", cfg.GomanageBaseURL).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
