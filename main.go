package main

import (
	"fmt"

	"comptapilot-backend/config"
	"comptapilot-backend/controllers"
	"comptapilot-backend/models"
	"comptapilot-backend/routes"
	"comptapilot-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	if err := config.ConnectDB(cfg); err != nil {
		log.WithError(err).Fatal("database connection failed")
	}

	if err := config.DB.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Deadline{},
		&models.MessageTemplate{},
		&models.EmailLog{},
		&models.SMSLog{},
		&models.Note{},
	); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	controllers.Init(cfg)

	if _, err := services.StartScheduler(config.DB, cfg); err != nil {
		log.WithError(err).Fatal("failed to start reminder scheduler")
	}

	r := routes.SetupRouter(cfg)
	printRoutes(r)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
