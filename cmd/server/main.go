package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	grpcapi "journal-backend/internal/api/grpc"
	httpapi "journal-backend/internal/api/http"
	"journal-backend/internal/cache"
	"journal-backend/internal/config"
	"journal-backend/internal/invitation"
	"journal-backend/internal/logger"
	"journal-backend/internal/repository/postgres"
	"journal-backend/internal/routing"
	"journal-backend/internal/security"
	"journal-backend/internal/service"
	"journal-backend/internal/storage"
	"journal-backend/internal/telemetry"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	migrate := flag.Bool("migrate", true, "Apply database migrations on startup")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting journal backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http_address", cfg.GetServerAddress(), "grpc_address", cfg.GetGRPCAddress(), "base_url", cfg.Server.BaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("Failed to set up telemetry: %v", err)
	}

	// Initialize Database
	driver, dsn, err := cfg.DatabaseDriverAndDSN()
	if err != nil {
		log.Fatalf("Invalid database configuration: %v", err)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established", "driver", driver)

	if *migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Menu cache: shared through Redis when configured, per process otherwise
	var menuCache cache.MenuCache
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		menuCache = cache.NewRedisCache(rdb, cfg.Redis.Prefix, cfg.MenuCacheTTL())
		logger.Info("Using redis menu cache", "addr", cfg.Redis.Addr)
	} else {
		menuCache = cache.NewMemoryCache(cfg.MenuCacheTTL())
		logger.Info("Using in-process menu cache")
	}

	documents, err := storage.New(ctx, cfg.StorageOptions())
	if err != nil {
		log.Fatalf("Failed to initialize document storage: %v", err)
	}
	logger.Info("Document storage ready", "type", cfg.Storage.Type)

	urls, err := routing.NewURLBuilder(cfg.Server.BaseURL)
	if err != nil {
		log.Fatalf("Failed to build url builder: %v", err)
	}

	// Initialize Services
	handlers := invitation.NewRegistry(
		invitation.NewRegistrationAccess(store.UserRepository, cfg.Site.PrimaryLocale),
	)
	navSvc := service.NewNavigationService(
		store.NavigationMenuRepository,
		store.NavigationMenuItemRepository,
		store.NavigationMenuItemAssignmentRepository,
		menuCache,
		documents,
	)
	invSvc := service.NewInvitationService(
		store.InvitationRepository,
		store.JournalRepository,
		handlers,
		service.NewMailQueue(store.JobRepository),
		urls,
		cfg.Invitation.ExpiryDays,
	)
	authorSvc := service.NewAuthorService(store.AuthorRepository, store.UserGroupRepository)
	jobSvc := service.NewJobAdminService(store.JobRepository)

	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.TokenExpiry())

	httpServer := &http.Server{
		Addr: cfg.GetServerAddress(),
		Handler: httpapi.NewRouter(httpapi.Deps{
			Navigation:     navSvc,
			Invitations:    invSvc,
			Authors:        authorSvc,
			Jobs:           jobSvc,
			Documents:      documents,
			UserGroups:     store.UserGroupRepository,
			Tokens:         tokenManager,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Get().Handler(), slog.LevelError),
	}
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	// Set up gRPC server
	grpcServer := grpcapi.NewServer(tokenManager, navSvc, invSvc)
	if addr := cfg.GetGRPCAddress(); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", addr)
			log.Fatalf("Failed to listen: %v", err)
		}
		go func() {
			logger.Info("gRPC server listening", "address", addr)
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("Failed to serve gRPC", "error", err)
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("Telemetry shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
