package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habitforge/internal/config"
	"habitforge/internal/database"
	"habitforge/internal/events"
	"habitforge/internal/handlers"
	"habitforge/internal/repository"
	"habitforge/internal/security"
	"habitforge/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	moduleRepo := repository.NewModuleRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)
	childRepo := repository.NewChildRepository(db)

	// Initialize the event bus and services. Completion events fan out from
	// the session engine to progress aggregation and badge evaluation;
	// aggregation registers first so badge thresholds see updated streaks.
	bus := events.NewBus()

	sessionService := service.NewSessionService(moduleRepo, sessionRepo, bus)
	progressService := service.NewProgressService(progressRepo, sessionRepo, moduleRepo, childRepo, bus)
	progressService.Register(bus)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.EmailDebug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	if emailService.IsEnabled() {
		log.Println("Badge notification emails enabled")
	}

	badgeService := service.NewBadgeService(badgeRepo, sessionRepo, progressRepo, childRepo, emailService)
	badgeService.Register(bus)

	packageService := service.NewPackageService(moduleRepo, badgeRepo, progressRepo, childRepo)
	syncService := service.NewSyncService(sessionService, packageService, sessionRepo, moduleRepo, progressRepo, childRepo)

	// Initialize handlers
	issuer := security.NewTokenIssuer(cfg.TokenSecret, cfg.TokenDuration)
	limiter := security.NewRateLimiter(60, time.Minute)
	middleware := handlers.NewMiddleware(issuer, limiter)

	pairHandler := handlers.NewPairHandler(childRepo, issuer)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	progressHandler := handlers.NewProgressHandler(progressService, badgeService)
	syncHandler := handlers.NewSyncHandler(packageService, syncService)
	adminHandler := handlers.NewAdminHandler(moduleRepo)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /api/pair", middleware.RateLimit(pairHandler.Pair))

	mux.HandleFunc("POST /api/sessions/start", middleware.RequireChild(sessionHandler.StartSession))
	mux.HandleFunc("POST /api/sessions/{id}/complete", middleware.RequireChild(sessionHandler.CompleteActivity))

	mux.HandleFunc("GET /api/progress", middleware.RequireChild(progressHandler.GetProgress))
	mux.HandleFunc("GET /api/badges", middleware.RequireChild(progressHandler.GetBadges))

	mux.HandleFunc("GET /api/offline/package", middleware.RequireChild(syncHandler.GetPackage))
	mux.HandleFunc("POST /api/offline/sync", middleware.RequireChild(middleware.RateLimit(syncHandler.Sync)))

	mux.HandleFunc("POST /api/admin/modules/{id}/status", middleware.RequireAdmin(adminHandler.UpdateModuleStatus))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}
