package main

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restolive/backend/config"
	"github.com/restolive/backend/database"
	"github.com/restolive/backend/delivery"
	"github.com/restolive/backend/feed"
	"github.com/restolive/backend/middlewares"
	"github.com/restolive/backend/models"
	"github.com/restolive/backend/router"
	"github.com/restolive/backend/services"
	"github.com/restolive/backend/utils"
)

func main() {
	utils.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load configuration: %v", err)
	}

	utils.InitJWT(cfg.JWTSecret)

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db, cfg)

	hub := feed.NewHub()

	monitor := services.NewChangeMonitor(db, hub)
	monitor.Interval = cfg.FeedPollInterval
	monitor.Start()
	defer monitor.Stop()

	quoter := delivery.NewHTTPQuoter(cfg.QuoteServiceURL, cfg.QuoteTimeout)

	r := router.SetupRouter(db, hub, quoter)

	rateLimiter := middlewares.NewRateLimiter(50, 100)
	r.Use(rateLimiter.RateLimit())

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB, cfg *config.Config) {
	err := db.AutoMigrate(
		&models.Branch{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.StatusEvent{},
		&models.OrderCounter{},
		&models.DBChange{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	// Triggers are MySQL-specific; skip them on SQLite.
	if cfg.DBDriver != "sqlite" {
		if err := database.ExecuteTriggers(db); err != nil {
			utils.ErrorLogger.Printf("Error setting up triggers: %v", err)
		}
	}
}
