package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cigno/platform/internal/agent"
	"github.com/cigno/platform/internal/config"
	"github.com/cigno/platform/internal/database"
	"github.com/cigno/platform/internal/handler"
	"github.com/cigno/platform/internal/logger"
	"github.com/cigno/platform/internal/metrics"
	"github.com/cigno/platform/internal/middleware"
	"github.com/cigno/platform/internal/repository"
	"github.com/cigno/platform/internal/service"
	"github.com/cigno/platform/pkg/jwt"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logging
	log := logger.New(os.Stdout, logger.Options{Level: cfg.Log.Level, JSON: cfg.IsProduction()})
	slog.SetDefault(log)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	m := metrics.New()

	// The database is opened lazily on first use, so the server starts (and
	// reports degraded health) while SurrealDB is unreachable.
	db := database.NewProvider(database.Config{
		URL:       cfg.Database.URL,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
	}, database.WithLogger(log))

	// Optional agent reply cache
	var cache *agent.RedisCache
	if cfg.Cache.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		cache, err = agent.NewRedisCache(ctx, cfg.Cache.RedisURL)
		cancel()
		if err != nil {
			slog.Warn("agent cache disabled", slog.String("error", err.Error()))
			cache = nil
		}
	}

	agentOpts := []agent.Option{
		agent.WithLogger(log),
		agent.WithObserver(m.ObserveAgentCall),
	}
	if cache != nil {
		agentOpts = append(agentOpts, agent.WithCache(cache))
	}
	agentClient := agent.NewClient(agent.Config{
		BaseURL:       cfg.Agent.BaseURL,
		APIKey:        cfg.Agent.APIKey,
		AgentID:       cfg.Agent.AgentID,
		Timeout:       cfg.Agent.Timeout,
		RatePerSecond: cfg.Agent.RatePerSecond,
		Burst:         cfg.Agent.Burst,
		CacheTTL:      cfg.Cache.TTL,
	}, agentOpts...)

	// Initialize JWT service
	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		PublicKeyPath:  cfg.JWT.PublicKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: cfg.JWT.ExpirationMins,
	})
	if err != nil {
		if cfg.IsProduction() {
			slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
			os.Exit(1)
		}
		slog.Warn("JWT keys not loaded, using an in-memory key pair", slog.String("error", err.Error()))
		jwtService, err = jwt.NewEphemeralService(cfg.JWT.Issuer, cfg.JWT.ExpirationMins)
		if err != nil {
			slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// Initialize repositories
	organisationRepo := repository.NewOrganisationRepository(db)
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	contactRepo := repository.NewContactRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	deliverableRepo := repository.NewDeliverableRepository(db)
	storylineRepo := repository.NewStorylineRepository(db)
	seedRepo := repository.NewSeedRepository(db)

	// Initialize services
	organisationService := service.NewOrganisationService(organisationRepo)
	userService := service.NewUserService(userRepo, organisationRepo)
	clientService := service.NewClientService(service.ClientServiceConfig{
		Repo:          clientRepo,
		Organisations: organisationRepo,
		Users:         userRepo,
		Contacts:      contactRepo,
		Projects:      projectRepo,
	})
	contactService := service.NewContactService(contactRepo, clientRepo)
	projectService := service.NewProjectService(service.ProjectServiceConfig{
		Repo:          projectRepo,
		Clients:       clientRepo,
		Contacts:      contactRepo,
		Users:         userRepo,
		Organisations: organisationRepo,
		Deliverables:  deliverableRepo,
	})
	deliverableService := service.NewDeliverableService(deliverableRepo, projectRepo)
	storylineService := service.NewStorylineService(service.StorylineServiceConfig{
		Repo:         storylineRepo,
		Deliverables: deliverableRepo,
		Projects:     projectRepo,
		Agent:        agentClient,
		Logger:       log,
	})
	analysisService := service.NewAnalysisService(service.AnalysisServiceConfig{
		Agent:         agentClient,
		RemoteEnabled: cfg.Agent.RemoteAnalysisEnabled(),
		Observer:      m.ObserveAnalysis,
		Logger:        log,
	})
	insightService := service.NewInsightService(agentClient)
	seederService := service.NewSeederService(service.SeederServiceConfig{
		Seeds:         seedRepo,
		Organisations: organisationRepo,
		Users:         userRepo,
		Clients:       clientRepo,
		Contacts:      contactRepo,
		Projects:      projectRepo,
		Deliverables:  deliverableRepo,
		Storylines:    storylineRepo,
		Logger:        log,
	})
	healthCfg := service.HealthServiceConfig{
		Database:              db,
		Environment:           cfg.Server.Env,
		Version:               version,
		AgentConfigured:       agentClient.Configured(),
		RemoteAnalysisEnabled: cfg.Agent.RemoteAnalysisEnabled(),
	}
	if cache != nil {
		healthCfg.Cache = cache
	}
	healthService := service.NewHealthService(healthCfg)
	authService := service.NewAuthService(userRepo, jwtService)

	// Initialize handlers
	organisationHandler := handler.NewOrganisationHandler(organisationService)
	userHandler := handler.NewUserHandler(userService)
	clientHandler := handler.NewClientHandler(clientService, contactService)
	projectHandler := handler.NewProjectHandler(projectService, analysisService)
	deliverableHandler := handler.NewDeliverableHandler(deliverableService)
	storylineHandler := handler.NewStorylineHandler(storylineService)
	assistHandler := handler.NewAssistHandler(handler.AssistHandlerConfig{
		Insights: insightService,
		Seeder:   seederService,
		Health:   healthService,
	})
	authHandler := handler.NewAuthHandler(authService)

	// Auth middleware; AUTH_DISABLED runs every request as a fixed admin
	var authenticate middleware.Middleware
	if cfg.Server.AuthDisabled {
		slog.Warn("authentication disabled", slog.String("user_id", middleware.DevelopmentUserID))
		authenticate = middleware.DevAuth(jwt.Claims{
			UserID: middleware.DevelopmentUserID,
			Role:   jwt.RoleAdmin,
		})
	} else {
		authenticate = middleware.Auth(jwtService)
	}

	// Retried POST/PUT with the same Idempotency-Key replay the first response
	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{
		TTL: cfg.Server.IdempotencyTTL,
	})
	defer idempotencyStore.Stop()

	authMiddleware := func(next http.Handler) http.Handler {
		return authenticate(middleware.Idempotency(idempotencyStore)(next))
	}
	adminMiddleware := func(next http.Handler) http.Handler {
		return authMiddleware(middleware.RequireAdmin(next))
	}

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	})
	defer rateLimiter.Stop()

	// Setup routes
	mux := http.NewServeMux()

	// Public endpoints
	mux.HandleFunc("GET /api/health", assistHandler.Health)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /deliverables/{id}/storyline", storylineHandler.View)
	mux.Handle("GET /metrics", m.Handler())

	// Organisation endpoints
	mux.Handle("GET /api/organisations", authMiddleware(http.HandlerFunc(organisationHandler.List)))
	mux.Handle("POST /api/organisations", authMiddleware(http.HandlerFunc(organisationHandler.Create)))
	mux.Handle("PUT /api/organisations", authMiddleware(http.HandlerFunc(organisationHandler.Update)))
	mux.Handle("GET /api/organisations/{id}", authMiddleware(http.HandlerFunc(organisationHandler.Get)))
	mux.Handle("DELETE /api/organisations/{id}", authMiddleware(http.HandlerFunc(organisationHandler.Delete)))

	// User endpoints
	mux.Handle("GET /api/users", authMiddleware(http.HandlerFunc(userHandler.List)))
	mux.Handle("POST /api/users", authMiddleware(http.HandlerFunc(userHandler.Create)))
	mux.Handle("PUT /api/users", authMiddleware(http.HandlerFunc(userHandler.Update)))
	mux.Handle("GET /api/users/{id}", authMiddleware(http.HandlerFunc(userHandler.Get)))
	mux.Handle("DELETE /api/users/{id}", authMiddleware(http.HandlerFunc(userHandler.Delete)))

	// Client and contact endpoints
	mux.Handle("GET /api/clients", authMiddleware(http.HandlerFunc(clientHandler.List)))
	mux.Handle("POST /api/clients", authMiddleware(http.HandlerFunc(clientHandler.Create)))
	mux.Handle("PUT /api/clients", authMiddleware(http.HandlerFunc(clientHandler.Update)))
	mux.Handle("GET /api/clients/{id}", authMiddleware(http.HandlerFunc(clientHandler.Get)))
	mux.Handle("DELETE /api/clients/{id}", authMiddleware(http.HandlerFunc(clientHandler.Delete)))
	mux.Handle("GET /api/contacts", authMiddleware(http.HandlerFunc(clientHandler.ListContacts)))
	mux.Handle("POST /api/contacts", authMiddleware(http.HandlerFunc(clientHandler.CreateContact)))
	mux.Handle("PUT /api/contacts", authMiddleware(http.HandlerFunc(clientHandler.UpdateContact)))
	mux.Handle("GET /api/contacts/{id}", authMiddleware(http.HandlerFunc(clientHandler.GetContact)))
	mux.Handle("DELETE /api/contacts/{id}", authMiddleware(http.HandlerFunc(clientHandler.DeleteContact)))

	// Project endpoints
	mux.Handle("GET /api/projects", authMiddleware(http.HandlerFunc(projectHandler.List)))
	mux.Handle("POST /api/projects", authMiddleware(http.HandlerFunc(projectHandler.Create)))
	mux.Handle("PUT /api/projects", authMiddleware(http.HandlerFunc(projectHandler.Update)))
	mux.Handle("POST /api/projects/analyze", authMiddleware(http.HandlerFunc(projectHandler.Analyze)))
	mux.Handle("GET /api/projects/{id}", authMiddleware(http.HandlerFunc(projectHandler.Get)))
	mux.Handle("DELETE /api/projects/{id}", authMiddleware(http.HandlerFunc(projectHandler.Delete)))

	// Deliverable and storyline endpoints
	mux.Handle("GET /api/deliverables", authMiddleware(http.HandlerFunc(deliverableHandler.List)))
	mux.Handle("POST /api/deliverables", authMiddleware(http.HandlerFunc(deliverableHandler.Create)))
	mux.Handle("PUT /api/deliverables", authMiddleware(http.HandlerFunc(deliverableHandler.Update)))
	mux.Handle("GET /api/deliverables/{id}", authMiddleware(http.HandlerFunc(deliverableHandler.Get)))
	mux.Handle("DELETE /api/deliverables/{id}", authMiddleware(http.HandlerFunc(deliverableHandler.Delete)))
	mux.Handle("POST /api/deliverables/{id}/storyline/generate", authMiddleware(http.HandlerFunc(storylineHandler.Generate)))
	mux.Handle("GET /api/storylines", authMiddleware(http.HandlerFunc(storylineHandler.Get)))
	mux.Handle("PUT /api/storylines", authMiddleware(http.HandlerFunc(storylineHandler.Save)))

	// Agent proxy
	mux.Handle("POST /api/agent/insights", authMiddleware(http.HandlerFunc(assistHandler.Insights)))

	// Demo data - requires admin role
	mux.Handle("POST /api/seed", adminMiddleware(http.HandlerFunc(assistHandler.Seed)))
	mux.Handle("DELETE /api/seed", adminMiddleware(http.HandlerFunc(assistHandler.CleanSeed)))

	// Apply global middleware. Metrics wraps the mux directly so it sees the
	// matched route pattern.
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.RateLimit(rateLimiter),
		middleware.Compress,
		m.Middleware,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
			slog.String("version", version),
			slog.Bool("agent_configured", agentClient.Configured()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case <-quit:
		slog.Info("shutting down server...")
	case err := <-serverErr:
		slog.Error("server error", slog.String("error", err.Error()))
		exitCode = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}
	if err := db.Close(); err != nil {
		slog.Error("failed to close database", slog.String("error", err.Error()))
	}
	if cache != nil {
		if err := cache.Close(); err != nil {
			slog.Error("failed to close cache", slog.String("error", err.Error()))
		}
	}

	slog.Info("server exited")
	if exitCode != 0 {
		rateLimiter.Stop()
		idempotencyStore.Stop()
		os.Exit(exitCode)
	}
}
