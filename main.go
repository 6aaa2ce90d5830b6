package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"benchly/domain/repository"
	"benchly/infrastructure/cache"
	llmclient "benchly/infrastructure/clients/llm"
	youtubeclient "benchly/infrastructure/clients/youtube"
	"benchly/infrastructure/configuration"
	"benchly/infrastructure/logger"
	"benchly/infrastructure/metrics"
	"benchly/infrastructure/persistence"
	httpHandler "benchly/interfaces/http"
	"benchly/interfaces/middleware"
	"benchly/server"
	"benchly/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	// Env files never override the process environment.
	if n := configuration.LoadEnvFromFile("config.env", ".env"); n > 0 {
		logger.GetLogger().WithField("variables", n).Info("Loaded env files")
		configuration.Reload()
	}
	app := configuration.C.App

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(registry)

	userDb, vendor, err := InitiateDatabase()
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Database initialization failed")
	}
	defer userDb.Close()

	var userRepository repository.IUser
	if vendor == "mssql" {
		if err := persistence.EnsureUserSchemaMSSQL(userDb); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed ensuring users schema (mssql)")
		}
		userRepository = persistence.NewUserRepositoryMSSQL(userDb)
	} else {
		if err := persistence.EnsureUserSchema(userDb); err != nil {
			logger.GetLogger().WithField("error", err).Error("failed ensuring users schema")
		}
		userRepository = persistence.NewUserRepository(userDb)
	}

	checks := map[string]httpHandler.Check{"users": userDb.PingContext}
	projectRepository, closeProjects, err := InitiateProjectStore(ctx, checks)
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Cannot connect to the project store")
	}
	defer closeProjects()

	searchCache := InitiateSearchCache(ctx, userDb, vendor, checks)

	youtubeConfig, err := configuration.GetYouTubeConfig("token.json")
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("YouTube credentials are required")
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"hasAPIKey": youtubeConfig.APIKey != "",
		"oauth":     youtubeConfig.HasOAuth(),
	}).Info("Loaded YouTube configuration state")

	catalog, err := youtubeclient.NewYouTubeClient(ctx, youtubeConfig)
	if err != nil {
		logger.GetLogger().WithField("error", err).Fatal("Failed to initialize YouTube client")
	}

	if configuration.C.LLM.APIKey == "" {
		logger.GetLogger().Warn("GEMINI_API_KEY not set - summary and keyword endpoints will fail")
	}
	textModel := llmclient.NewTextModel(configuration.C.LLM)

	discoveryUseCase := usecase.NewDiscoveryUseCase(catalog, searchCache,
		usecase.WithCacheTTL(configuration.C.Cache.TTL()),
		usecase.WithUpstreamTimeout(configuration.C.Upstream.Timeout()),
	)
	textUseCase := usecase.NewTextUseCase(textModel, configuration.C.LLM.FlashModel, configuration.C.LLM.ProModel)
	projectUseCase := usecase.NewProjectUseCase(projectRepository)
	userUsecase := usecase.NewUserUsecase(userRepository, app.SecretKey, time.Duration(app.TokenTTLHours)*time.Hour)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		PerMinute: configuration.C.RateLimit.PerMinute,
		Burst:     configuration.C.RateLimit.Burst,
	})
	defer rateLimiter.Stop()

	router := server.InitiateRouter(server.Handlers{
		User:      httpHandler.NewUserHandler(userUsecase),
		Discovery: httpHandler.NewDiscoveryHandler(discoveryUseCase),
		Project:   httpHandler.NewProjectHandler(projectUseCase),
		Text:      httpHandler.NewTextHandler(textUseCase),
		Health:    httpHandler.NewHealthHandler(checks),
	}, server.RouterConfig{
		AllowedOrigins: app.AllowedOrigins,
		Auth:           middleware.Auth(app.SecretKey, userRepository),
		RateLimit:      rateLimiter.Middleware(),
		Gatherer:       registry,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	logger.GetLogger().WithFields(map[string]interface{}{"port": app.Port, "tls": app.TLSEnabled}).Info("Starting application")
	g.Go(func() error {
		var err error
		if app.TLSEnabled && app.TLSCertFile != "" && app.TLSKeyFile != "" {
			err = httpServer.ListenAndServeTLS(app.TLSCertFile, app.TLSKeyFile)
		} else {
			if app.TLSEnabled {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
			}
			err = httpServer.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-interrupt:
			logger.GetLogger().Info("Application shutdown requested")
		case <-gctx.Done():
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
	logger.GetLogger().Info("Application stopped")
}

// InitiateDatabase opens the user store. Production and DB_VENDOR=mssql use
// SQL Server, everything else PostgreSQL.
func InitiateDatabase() (*sql.DB, string, error) {
	env := os.Getenv("ENV")
	if os.Getenv("DB_VENDOR") == "mssql" || env == "production" || env == "prod" {
		db, err := persistence.NewMSSQLDB()
		if err != nil {
			return nil, "", fmt.Errorf("connect mssql: %w", err)
		}
		return db, "mssql", nil
	}
	db, err := persistence.NewPostgreSQLDB()
	if err != nil {
		return nil, "", fmt.Errorf("connect postgres: %w", err)
	}
	return db, "postgres", nil
}

// InitiateProjectStore opens the saved-project store named by PROJECT_STORE.
func InitiateProjectStore(ctx context.Context, checks map[string]httpHandler.Check) (repository.IProject, func(), error) {
	store := configuration.C.Database.ProjectStore
	log := logger.GetLogger().WithField("store", store)
	switch store {
	case "mongo":
		db, err := persistence.NewMongoDB(ctx, configuration.C.Database.Mongo)
		if err != nil {
			return nil, nil, err
		}
		if err := persistence.EnsureProjectIndexes(ctx, db); err != nil {
			log.WithField("error", err).Error("failed ensuring project indexes")
		}
		checks["projects"] = func(ctx context.Context) error { return db.Client().Ping(ctx, nil) }
		log.Info("Project store ready")
		closeFn := func() {
			if err := db.Client().Disconnect(context.Background()); err != nil {
				logger.GetLogger().WithField("error", err).Error("Error while disconnecting mongo")
			}
		}
		return persistence.NewProjectRepositoryMongo(db), closeFn, nil
	case "mysql":
		db, err := persistence.NewMySQLDB()
		if err != nil {
			return nil, nil, err
		}
		sqlDb, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("project store pool: %w", err)
		}
		checks["projects"] = sqlDb.PingContext
		log.Info("Project store ready")
		return persistence.NewProjectRepository(db), func() { _ = sqlDb.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown project store %q", store)
	}
}

// InitiateSearchCache picks the result cache from CACHE_DRIVER. SQL drivers
// reuse the user database; an unreachable Redis falls back to memory.
func InitiateSearchCache(ctx context.Context, db *sql.DB, vendor string, checks map[string]httpHandler.Check) repository.ISearchCache {
	cfg := configuration.C.Cache
	retention := 2 * cfg.TTL()
	memory := func() repository.ISearchCache {
		return cache.NewMemorySearchCache(cfg.MaxEntries, retention)
	}

	log := logger.GetLogger().WithField("driver", cfg.Driver)
	switch cfg.Driver {
	case "redis":
		rc := configuration.C.RedisClient
		client, err := cache.NewRedisClient(ctx, fmt.Sprintf("%s:%s", rc.Host, rc.Port), rc.Username, rc.Password, rc.DB)
		if err != nil {
			log.WithField("error", err).Warn("Redis not available - using in-memory search cache")
			_ = client.Close()
			return memory()
		}
		checks["cache"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		log.Info("Search cache ready")
		return cache.NewRedisSearchCache(client, cfg.KeyPrefix, retention)
	case "postgres", "mssql":
		if cfg.Driver != vendor {
			log.WithField("database", vendor).Warn("Cache driver does not match the user database - using in-memory search cache")
			return memory()
		}
		if vendor == "mssql" {
			if err := persistence.EnsureSearchCacheSchemaMSSQL(db); err != nil {
				log.WithField("error", err).Error("failed ensuring search cache schema")
			}
			return persistence.NewSearchCacheRepositoryMSSQL(db)
		}
		if err := persistence.EnsureSearchCacheSchema(db); err != nil {
			log.WithField("error", err).Error("failed ensuring search cache schema")
		}
		return persistence.NewSearchCacheRepository(db)
	default:
		log.Info("Search cache ready")
		return memory()
	}
}
