package main

import (
	"net/http"
	"os"

	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/api"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/config"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/database"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/engine"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/engine/pgstore"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/handler"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/logger"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/middleware"
	"github.com/abdellahsebti/techsphere-social-nexus-sub000/internal/notify"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Could not load config: %v", err)
		os.Exit(1)
	}

	// Connect to PostgreSQL
	db, err := database.ConnectPostgres(cfg)
	if err != nil {
		logger.Error("Database connection failed: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	// Apply schema migrations
	if err := database.RunMigrations(cfg); err != nil {
		logger.Error("Migrations failed: %v", err)
		os.Exit(1)
	}
	logger.Success("Migrations applied")

	// Wire the consistency engine: storage and notifier are injected, the
	// engine itself holds no global state
	coordinator := engine.NewCoordinator(pgstore.New(db), notify.NewPgNotifier(db))
	handler.Init(coordinator)

	// Initialize routes
	router := api.SetupRouter()

	// Wrap router with CORS middleware
	h := middleware.CORSMiddleware(router)

	// Start server
	logger.Success("Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, h); err != nil {
		logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
}
