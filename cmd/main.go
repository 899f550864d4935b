package main

import (
	"fmt"
	"log"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"adoteja/internal/caching"
	"adoteja/internal/catalog"
	"adoteja/internal/common"
	"adoteja/internal/config"
	"adoteja/internal/handlers"
	"adoteja/internal/jobs/background"
	"adoteja/internal/repositories"
	"adoteja/internal/services"
	"adoteja/pkg/database"
)

const version = "1.0.0"

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = random.String(32)
		log.Printf("WARNING: JWT_SECRET not set, using a generated secret; tokens will not survive a restart")
	}

	pool, err := database.NewPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	minioSvc, err := services.NewMinioService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}

	locationCatalog, err := catalog.Load()
	if err != nil {
		log.Fatalf("Failed to load location catalog: %v", err)
	}

	// Create repositories
	userRepo := repositories.NewUserRepo(pool)
	listingRepo := repositories.NewListingRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	// Create services
	lifecycle := services.NewLifecycleEngine()
	mediaSvc := services.NewMediaService(minioSvc)
	listingSvc := services.NewListingService(listingRepo, userRepo, lifecycle, mediaSvc, cacheSvc, services.TriStateFilterMode(cfg.TriStateFilterMode))
	authSvc := services.NewAuthService(cacheSvc, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	mailer := services.NewLogMailer()

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, userRepo, locationCatalog, mailer)
	userHandlers := handlers.NewUserHandlers(userRepo, mediaSvc, locationCatalog)
	listingHandlers := handlers.NewListingHandlers(listingSvc, mediaSvc)
	locationHandlers := handlers.NewLocationHandlers(locationCatalog)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, minioSvc)

	// Background jobs
	scheduler := background.NewJobScheduler(listingRepo, minioSvc)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()

	// JWT middleware configuration
	jwtConfig := echojwt.Config{
		SigningKey: []byte(cfg.JWTSecret),
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			sub, err := token.Claims.GetSubject()
			if err != nil {
				return
			}
			userID, err := uuid.Parse(sub)
			if err != nil {
				return
			}
			c.SetRequest(c.Request().WithContext(common.WithUserID(c.Request().Context(), userID)))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(401, "Invalid token")
		},
	}

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	// API routes
	v1 := e.Group("/v1")

	// Authentication routes (no JWT required)
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)
	auth.POST("/password-reset", authHandlers.RequestPasswordReset)
	auth.POST("/password-reset/confirm", authHandlers.ResetPassword)

	// Public browsing routes
	v1.GET("/listings", listingHandlers.Browse)
	v1.GET("/listings/:id", listingHandlers.GetListing)
	v1.GET("/locations/states", locationHandlers.GetStates)
	v1.GET("/locations/states/:uf/cities", locationHandlers.GetCities)

	// Protected routes (require JWT)
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(jwtConfig))

	// Profile routes
	protected.GET("/me", userHandlers.Me)
	protected.PUT("/me", userHandlers.UpdateMe)
	protected.POST("/me/photo", userHandlers.UploadPhoto)

	// Listing management routes
	protected.GET("/my/listings", listingHandlers.MyListings)
	protected.POST("/listings", listingHandlers.CreateListing)
	protected.PUT("/listings/:id", listingHandlers.UpdateListing)
	protected.DELETE("/listings/:id", listingHandlers.DeleteListing)
	protected.POST("/listings/:id/reactivate", listingHandlers.ReactivateListing)

	log.Printf("AdoteJa server v%s starting on port %d", version, cfg.Port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", cfg.Port)))
}
