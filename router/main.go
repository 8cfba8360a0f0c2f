package router

import (
	"log"
	"os"
	"time"

	"github.com/focusmonitor/engagement-api/database"
	"github.com/focusmonitor/engagement-api/handlers"
	auth_handlers "github.com/focusmonitor/engagement-api/handlers/auth"
	predict_handlers "github.com/focusmonitor/engagement-api/handlers/predict"
	"github.com/focusmonitor/engagement-api/services/engagement"
	"github.com/focusmonitor/engagement-api/services/stream"
	"github.com/focusmonitor/engagement-api/utils/auth"
	"github.com/focusmonitor/engagement-api/utils/cache"
	"github.com/focusmonitor/engagement-api/utils/middleware"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes wires every handler into the app. The Storage interface
// serves the credential and prediction stores; the GORM handle backs the
// auxiliary auth tables (blacklist, reset tokens).
func SetupRoutes(app *fiber.App, store database.Storage, db *gorm.DB, pipeline *engagement.Pipeline, broker *stream.Broker) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "engagement-api"
	}

	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Redis backs brute force protection; the API degrades gracefully
	// without it
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	authHandler := auth_handlers.NewAuthHandler(store, db, jwtManager, bruteForceProtection)
	predictHandler := predict_handlers.NewPredictHandler(store, pipeline, broker)
	healthHandler := handlers.NewHealthHandler(store)

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", healthHandler.Check)

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/reset-password", authHandler.ResetPassword)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)
	authGroup.Get("/profile", authMiddleware.Required(), authHandler.GetProfile)
	authGroup.Put("/profile", authMiddleware.Required(), authHandler.UpdateProfile)

	// Prediction routes (protected)
	predictGroup := api.Group("/predict", authMiddleware.Required())
	predictGroup.Post("/manual", predictHandler.Predict)
	predictGroup.Post("/csv", predictHandler.PredictCSV)
	predictGroup.Get("/features", predictHandler.RequiredFeatures)
	predictGroup.Get("/stream", predictHandler.Stream)
	predictGroup.Get("/history", predictHandler.GetHistory)
	predictGroup.Get("/history/student/:student_id", predictHandler.GetStudentHistory)
	predictGroup.Delete("/history/:id", predictHandler.DeleteHistory)
}
