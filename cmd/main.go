package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	echoSwagger "github.com/swaggo/echo-swagger"

	"patronhub/internal/caching"
	"patronhub/internal/handlers"
	"patronhub/internal/jobs/background"
	"patronhub/internal/middleware"
	"patronhub/internal/repositories"
	"patronhub/internal/services"
	"patronhub/pkg/database"
)

// @title PatronHub API
// @version 1.0
// @description Creator membership and crowdfunding platform.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.ClosePool(pool)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret; tokens will not survive a restart")
	}
	jwksURL := os.Getenv("JWKS_URL")

	keyFn, err := middleware.NewKeyfunc(jwksURL, jwtSecret)
	if err != nil {
		log.Fatalf("Failed to configure JWT verification: %v", err)
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	minioSvc, err := services.NewMinioService(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}
	if err := minioSvc.EnsureBucketExists(context.Background(), services.MediaBucket); err != nil {
		log.Fatalf("Failed to ensure media bucket: %v", err)
	}

	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Repositories bound to the pool serve the read paths. Transactional
	// services take the pool itself and bind repositories per transaction.
	userRepo := repositories.NewUserRepo(pool)
	tierRepo := repositories.NewTierRepo(pool)
	campaignRepo := repositories.NewCampaignRepo(pool)
	membershipRepo := repositories.NewMembershipRepo(pool)
	postRepo := repositories.NewPostRepo(pool)

	authSvc := services.NewAuthService(cacheSvc, jwtSecret, 3600, 7*24*3600)
	tierSvc := services.NewTierService(tierRepo, cacheSvc)
	campaignSvc := services.NewCampaignService(pool, cacheSvc)
	subscriptionSvc := services.NewSubscriptionService(pool)
	accessSvc := services.NewAccessService(membershipRepo, tierSvc, campaignSvc)
	postSvc := services.NewPostService(postRepo, tierRepo, campaignRepo, accessSvc, minioSvc)

	authHandlers := handlers.NewAuthHandlers(authSvc, userRepo)
	userHandlers := handlers.NewUserHandlers(userRepo, tierSvc)
	tierHandlers := handlers.NewTierHandlers(tierSvc)
	campaignHandlers := handlers.NewCampaignHandlers(campaignSvc)
	subscriptionHandlers := handlers.NewSubscriptionHandlers(subscriptionSvc)
	postHandlers := handlers.NewPostHandlers(postSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	jwtConfig := echojwt.Config{
		KeyFunc:        keyFn,
		SuccessHandler: middleware.AttachUserContext,
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(401, "Invalid token")
		},
	}

	e := echo.New()

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")

	auth := v1.Group("/auth")
	auth.Use(middleware.RateLimit(cacheSvc, 20, time.Minute))
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)
	auth.POST("/logout", authHandlers.Logout)

	// Public routes; a bearer token widens post access but is not required.
	public := v1.Group("")
	public.Use(middleware.OptionalJWT(keyFn))
	public.GET("/campaigns", campaignHandlers.ListCampaigns)
	public.GET("/campaigns/:id", campaignHandlers.GetCampaign)
	public.GET("/creators/:creatorId", userHandlers.GetCreator)
	public.GET("/creators/:creatorId/tiers", tierHandlers.ListTiers)
	public.GET("/creators/:creatorId/posts", postHandlers.ListCreatorPosts)
	public.GET("/posts/:id", postHandlers.GetPost)
	public.GET("/posts/:id/media", postHandlers.GetPostMedia)

	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(jwtConfig))

	protected.GET("/auth/me", authHandlers.Me)
	protected.PUT("/users/me", userHandlers.UpdateProfile)

	protected.POST("/subscriptions", subscriptionHandlers.CreateSubscription)
	protected.GET("/subscriptions", subscriptionHandlers.ListMySubscriptions)
	protected.POST("/subscriptions/refresh", subscriptionHandlers.RefreshSubscriptions)
	protected.POST("/subscriptions/:id/cancel", subscriptionHandlers.CancelSubscription)
	protected.GET("/subscriptions/:id/payments", subscriptionHandlers.ListSubscriptionPayments)
	protected.GET("/memberships", subscriptionHandlers.ListMyMemberships)

	creator := v1.Group("")
	creator.Use(echojwt.WithConfig(jwtConfig))
	creator.Use(middleware.RequireCreator)

	creator.POST("/tiers", tierHandlers.CreateTier)
	creator.PUT("/tiers/:id", tierHandlers.UpdateTier)
	creator.DELETE("/tiers/:id", tierHandlers.DeleteTier)

	creator.POST("/campaigns", campaignHandlers.CreateCampaign)
	creator.PUT("/campaigns/:id", campaignHandlers.UpdateCampaign)
	creator.DELETE("/campaigns/:id", campaignHandlers.DeleteCampaign)
	creator.POST("/campaigns/:id/finish", campaignHandlers.FinishCampaign)

	creator.POST("/posts", postHandlers.CreatePost)
	creator.PUT("/posts/:id", postHandlers.UpdatePost)
	creator.DELETE("/posts/:id", postHandlers.DeletePost)

	scheduler := background.NewJobScheduler(cacheSvc, campaignRepo)
	if err := scheduler.Start(); err != nil {
		log.Printf("Failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("PatronHub server starting on port %d", port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
