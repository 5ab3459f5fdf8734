package routes

import (
	"comptapilot-backend/config"
	"comptapilot-backend/controllers"
	"comptapilot-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware(cfg.JWTSecret))
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware(cfg.JWTSecret))
	{
		// Client routes
		clients := api.Group("/clients")
		{
			clients.POST("", controllers.CreateClient)
			clients.GET("", controllers.GetClients)
			clients.GET("/:id", controllers.GetClient)
			clients.PUT("/:id", controllers.UpdateClient)
			clients.DELETE("/:id", controllers.DeleteClient)
		}

		// Deadline routes
		deadlines := api.Group("/deadlines")
		{
			deadlines.POST("", controllers.CreateDeadline)
			deadlines.GET("", controllers.GetDeadlines)
			deadlines.GET("/export", controllers.ExportDeadlines)
			deadlines.GET("/:id", controllers.GetDeadline)
			deadlines.PUT("/:id", controllers.UpdateDeadline)
			deadlines.DELETE("/:id", controllers.DeleteDeadline)
			deadlines.POST("/:id/send-email", controllers.SendIndividualEmail)
		}

		// Message template routes
		templates := api.Group("/templates")
		{
			templates.POST("", controllers.CreateTemplate)
			templates.GET("", controllers.GetTemplates)
			templates.GET("/variables", controllers.GetTemplateVariables)
			templates.DELETE("/:id", controllers.DeleteTemplate)
		}

		// Custom reminder send (save template, then dispatch)
		api.POST("/reminders/custom", controllers.SendCustomReminder)

		// Note routes
		notes := api.Group("/notes")
		{
			notes.POST("", controllers.CreateNote)
			notes.GET("", controllers.GetNotes)
			notes.DELETE("/:id", controllers.DeleteNote)
		}
	}

	admin := r.Group("/admin")
	admin.Use(utils.AuthMiddleware(cfg.JWTSecret), utils.AdminMiddleware())
	{
		admin.GET("/users", controllers.GetUsers)
		admin.PUT("/users/:id/approve", controllers.ApproveUser)
		admin.DELETE("/users/:id", controllers.AdminDeleteUser)
		admin.DELETE("/clients/:id", controllers.AdminDeleteClient)
		admin.DELETE("/deadlines/:id", controllers.AdminDeleteDeadline)
		admin.POST("/reminders/run", controllers.RunReminders)
	}

	return r
}
