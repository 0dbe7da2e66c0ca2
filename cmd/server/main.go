package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nido/internal/auth"
	"nido/internal/database"
	"nido/internal/handlers"
	"nido/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env for local development; production uses real env vars
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize database
	if err := database.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Initialize auth subsystems
	if err := auth.InitOAuth(); err != nil {
		log.Fatal("Failed to initialize OAuth:", err)
	}
	if err := auth.InitCrypto(); err != nil {
		log.Fatal("Failed to initialize token encryption:", err)
	}

	// Maps is optional; the directory endpoints return 503 without it
	if err := services.InitMapsClient(); err != nil {
		log.Printf("Warning: maps client not initialized: %v", err)
	}

	// Initialize Gin router
	router := gin.Default()

	// Configure trusted proxies
	router.SetTrustedProxies([]string{"127.0.0.1"})

	// CORS for the web frontend
	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:5173"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Basic routes
	router.GET("/", handlers.HomeHandler)
	router.GET("/health", handlers.HealthHandler)

	// Auth routes (no auth required)
	router.GET("/auth/login", handlers.LoginHandler)
	router.GET("/auth/callback", handlers.GoogleCallbackHandler)

	// Protected routes (auth required)
	protected := router.Group("")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/dashboard", handlers.DashboardHandler)
		protected.POST("/auth/logout", handlers.LogoutHandler)
		protected.GET("/auth/me", handlers.GetCurrentUser)
		protected.POST("/accounts", handlers.CreateProfile)
		protected.PUT("/accounts", handlers.UpdateAccount)
		protected.GET("/accounts/:username", handlers.GetAccount)

		// Family management
		protected.POST("/families", handlers.CreateFamily)
		protected.GET("/families/mine", handlers.GetMyFamily)
		protected.POST("/families/invite", handlers.InviteMember)
		protected.GET("/families/accept/:token", handlers.AcceptInvitation)

		// Child registry
		protected.POST("/members", handlers.CreateMember)
		protected.GET("/members", handlers.ListMembers)
		protected.PUT("/members/:id", handlers.UpdateMember)
		protected.DELETE("/members/:id", handlers.DeleteMember)
		protected.POST("/members/:id/photo", handlers.UploadMemberPhoto)

		// Growth tracking
		protected.POST("/members/:id/growth", handlers.CreateGrowthRecord)
		protected.GET("/members/:id/growth", handlers.ListGrowthRecords)

		// Scheduled health events
		protected.POST("/events", handlers.CreateEvent)
		protected.GET("/events", handlers.ListEvents)
		protected.PUT("/events/:id", handlers.UpdateEvent)
		protected.DELETE("/events/:id", handlers.DeleteEvent)

		// Missing child alerts
		protected.POST("/alerts", handlers.ActivateAlert)
		protected.GET("/alerts", handlers.ListActiveAlerts)
		protected.POST("/alerts/:id/resolve", handlers.ResolveAlert)
		protected.GET("/alerts/:id/distance", handlers.AlertDistance)

		// Services directory
		protected.GET("/directory/nearby", handlers.NearbyServices)
		protected.GET("/directory/validate", handlers.ValidatePlace)

		// Parenting assistant
		protected.POST("/assistant/chat", handlers.AskAssistant)
		protected.POST("/assistant/blog", handlers.GenerateBlogDraft)

		// In-app notifications
		protected.GET("/notifications", handlers.ListNotifications)
		protected.POST("/notifications/:id/read", handlers.MarkNotificationRead)
		protected.POST("/notifications/read-all", handlers.MarkAllNotificationsRead)
	}

	// Start the alarm scanner and the nightly maintenance job
	db := database.GetDB()
	dispatcher := services.NewNotificationDispatcher(db, services.NewEmailService(), services.NewSMSService())
	scanner := services.NewAlarmScanner(db, dispatcher)
	scanner.Start(context.Background())

	maintenance := services.NewMaintenanceWorker(db)
	if err := maintenance.Start(); err != nil {
		log.Fatal("Failed to start maintenance worker:", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s...", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Block until interrupted, then drain everything
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error: server shutdown: %v", err)
	}
	scanner.Stop()
	maintenance.Stop()
}
