package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"journal-backend/internal/config"
	"journal-backend/internal/invitation"
	"journal-backend/internal/jobs"
	"journal-backend/internal/logger"
	"journal-backend/internal/repository/postgres"
	"journal-backend/internal/routing"
	"journal-backend/internal/scheduler"
	"journal-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'expire-invitations', 'deliver-queued-mail', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting journal cronjob runner...", "log_level", cfg.Log.Level)

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

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Services
	emailService, err := service.NewEmailService(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	urls, err := routing.NewURLBuilder(cfg.Server.BaseURL)
	if err != nil {
		log.Fatalf("Failed to build url builder: %v", err)
	}
	invitationService := service.NewInvitationService(
		store.InvitationRepository,
		store.JournalRepository,
		invitation.NewRegistry(invitation.NewRegistrationAccess(store.UserRepository, cfg.Site.PrimaryLocale)),
		service.NewMailQueue(store.JobRepository),
		urls,
		cfg.Invitation.ExpiryDays,
	)

	jobServices := &jobs.Services{
		Email:      emailService,
		Invitation: invitationService,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(store.JobRepository, jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}

	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "expire-invitations":
		jobRunner.ExpireInvitations()
	case "deliver-queued-mail":
		jobRunner.DeliverQueuedMail()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - expire-invitations\n")
		fmt.Printf("  - deliver-queued-mail\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
