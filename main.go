package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/SAADSTACK/NeuroMetric-AI/api"
	"github.com/SAADSTACK/NeuroMetric-AI/config"
	"github.com/SAADSTACK/NeuroMetric-AI/database"
	"github.com/SAADSTACK/NeuroMetric-AI/middleware"
	"github.com/SAADSTACK/NeuroMetric-AI/models"
	"github.com/SAADSTACK/NeuroMetric-AI/notifier"
	"github.com/SAADSTACK/NeuroMetric-AI/repository"
	"github.com/SAADSTACK/NeuroMetric-AI/services"

	"gorm.io/gorm"
)

func main() {
	// Load application configuration
	config.LoadConfig()

	// Initialize database connection
	db, err := database.Init()
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to initialize database: %v", err)
	}

	// Auto-migrate database schema
	runMigrations(db)

	// Notification hub: the synthetic same-context change channel. The Redis
	// bridge (if configured) adds the cross-process leg on top of it.
	hub := notifier.NewHub()
	if addr := config.AppConfig.Redis.Addr; addr != "" {
		bridge, err := notifier.NewRedisBridge(addr, config.AppConfig.Redis.Password,
			config.AppConfig.Redis.Channel, uuid.NewString(), hub)
		if err != nil {
			log.Fatalf("FATAL: [Main] Failed to connect notifier bridge to Redis at %s: %v", addr, err)
		}
		defer bridge.Close()
		bridge.Start()
	} else {
		log.Println("INFO: [Main] Redis address not configured; cross-process notifications disabled.")
	}

	// Initialize Repositories
	sessionRepo := repository.NewSessionRepository(db)
	resultRepo := repository.NewResultRepository(db)
	userRepo := repository.NewUserRepository(db)
	log.Println("INFO: [Main] Repositories initialized.")

	// Initialize Services
	interpreter := services.NewInterpretationService()
	sessionService := services.NewSessionService(
		sessionRepo, resultRepo, interpreter, hub,
		config.AppConfig.Assessment.TimeLimitSeconds,
		config.AppConfig.Assessment.PageSize,
	)
	defer sessionService.Shutdown()
	userService := services.NewUserService(userRepo, hub)
	log.Println("INFO: [Main] Services initialized.")

	// Janitor: sessions abandoned mid-assessment have no live runtime ticking
	// them down; sweep and finalize them once their budget lapses.
	janitor := cron.New()
	if _, err := janitor.AddFunc("@every 1m", func() {
		if err := sessionService.ExpireStale(); err != nil {
			log.Printf("ERROR: [Main] Stale-session sweep failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("FATAL: [Main] Failed to schedule stale-session sweep: %v", err)
	}
	janitor.Start()
	defer janitor.Stop()
	log.Println("INFO: [Main] Stale-session janitor scheduled.")

	// Initialize API Handler with all dependencies
	apiHandler := api.NewAPIHandler(sessionService, userService, resultRepo)
	log.Println("INFO: [Main] API Handler initialized.")

	// Create Gin engine
	r := gin.Default()
	r.SetTrustedProxies(nil) // Set to nil if not using trusted proxies or for default behavior

	// Register middlewares
	r.Use(middleware.Logger()) // Custom logger middleware
	r.Use(middleware.Cors())   // CORS middleware
	log.Println("INFO: [Main] Middlewares registered.")

	// Register routes
	registerRoutes(r, apiHandler, hub)
	log.Println("INFO: [Main] Routes registered.")

	// Start the server
	serverPort := ":" + config.AppConfig.Server.Port
	if config.AppConfig.Server.Port == "" {
		log.Println("WARN: [Main] Server port not configured, using default :8080.")
		serverPort = ":8080"
	}
	log.Printf("INFO: [Main] Starting server on port %s", serverPort)
	if err := r.Run(serverPort); err != nil {
		log.Fatalf("FATAL: [Main] Server failed to start: %v", err)
	}
}

func runMigrations(db *gorm.DB) {
	log.Println("INFO: [Main] Running database migrations...")
	err := db.AutoMigrate(
		&models.AssessmentSession{},
		&models.AssessmentResult{},
		&models.UserProfile{},
	)
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to auto-migrate database: %v", err)
	}
	log.Println("INFO: [Main] Database migration completed.")
}

func registerRoutes(r *gin.Engine, handler *api.APIHandler, hub *notifier.Hub) {
	// API route group
	apiGroup := r.Group("/api")
	{
		// Assessment session endpoints
		assessmentGroup := apiGroup.Group("/assessment")
		{
			assessmentGroup.POST("/start", handler.StartSessionHandler)
			assessmentGroup.POST("/answer", handler.AnswerHandler)
			assessmentGroup.POST("/next", handler.NextPageHandler)
			assessmentGroup.POST("/prev", handler.PrevPageHandler)
			assessmentGroup.POST("/submit", handler.SubmitHandler)
		}

		// Results log
		apiGroup.GET("/results", handler.ListResultsHandler)

		// Profiles and the approval workflow
		userGroup := apiGroup.Group("/users")
		{
			userGroup.POST("", handler.CreateProfileHandler)
			userGroup.GET("/pending", handler.ListPendingUsersHandler)
			userGroup.GET("/by-external-id/:externalID", handler.GetProfileHandler)
			userGroup.POST("/:id/status", handler.UpdateUserStatusHandler)
		}

		// Store-change event stream for observing views
		apiGroup.GET("/events", handler.EventsHandler(hub))
	}
}
