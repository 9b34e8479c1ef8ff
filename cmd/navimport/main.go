package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"

	"journal-backend/internal/cache"
	"journal-backend/internal/config"
	"journal-backend/internal/logger"
	"journal-backend/internal/repository/postgres"
	"journal-backend/internal/service"
	"journal-backend/internal/storage"
)

// navimport installs a navigation menu document from the command line, for
// provisioning new journals without going through the admin API.
func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	journalPath := flag.String("journal", "", "URL path of the journal to install into; empty installs the site-wide menus")
	file := flag.String("file", "", "Navigation menu XML document")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: navimport -file menus.xml [-journal path] [-config file]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	// Menus go to stdout, so logs go to stderr.
	logger.SetDefault(logger.New(os.Stderr, cfg.Log.Level, cfg.Log.Format))

	ctx := context.Background()
	driver, dsn, err := cfg.DatabaseDriverAndDSN()
	if err != nil {
		log.Fatalf("Invalid database configuration: %v", err)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	store := postgres.NewStore(db)

	var contextID *int32
	if *journalPath != "" {
		journal, err := store.JournalRepository.GetByPath(ctx, *journalPath)
		if err != nil {
			log.Fatalf("Failed to find journal %q: %v", *journalPath, err)
		}
		contextID = &journal.ID
	}

	documents, err := storage.New(ctx, cfg.StorageOptions())
	if err != nil {
		log.Fatalf("Failed to initialize document storage: %v", err)
	}

	// The server's in-process caches expire on their own; a shared redis cache is
	// invalidated here like any other install.
	var menuCache cache.MenuCache = cache.NewMemoryCache(cfg.MenuCacheTTL())
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		menuCache = cache.NewRedisCache(rdb, cfg.Redis.Prefix, cfg.MenuCacheTTL())
	}

	navSvc := service.NewNavigationService(
		store.NavigationMenuRepository,
		store.NavigationMenuItemRepository,
		store.NavigationMenuItemAssignmentRepository,
		menuCache,
		documents,
	)

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *file, err)
	}
	defer f.Close()

	key := storage.NewDocumentKey(storage.FolderNavigation, *file)
	if err := documents.Save(ctx, key, f); err != nil {
		log.Fatalf("Failed to store %s: %v", *file, err)
	}
	if err := navSvc.InstallFromStorage(ctx, contextID, key); err != nil {
		log.Fatalf("Failed to install navigation menus: %v", err)
	}

	menus, err := navSvc.ListMenus(ctx, contextID)
	if err != nil {
		log.Fatalf("Failed to list navigation menus: %v", err)
	}
	fmt.Printf("Stored document as %s\n", key)
	for _, m := range menus {
		fmt.Printf("  %-6d %-24s %s\n", m.ID, m.AreaName, m.Title)
	}
}
