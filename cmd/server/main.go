package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ratingtales/rating-tales/internal/captcha"
	"github.com/ratingtales/rating-tales/internal/config"
	"github.com/ratingtales/rating-tales/internal/database"
	"github.com/ratingtales/rating-tales/internal/handler"
	"github.com/ratingtales/rating-tales/internal/middleware"
	"github.com/ratingtales/rating-tales/internal/repository"
	"github.com/ratingtales/rating-tales/internal/service"
	"github.com/ratingtales/rating-tales/internal/session"
	"github.com/ratingtales/rating-tales/internal/upload"
	"github.com/ratingtales/rating-tales/pkg/logger"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	log.Println("Config loaded successfully")

	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	database.Connect(cfg)
	database.Migrate()

	// Redis backs sessions, CAPTCHA codes and rate-limit counters
	redisOpt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpt)
	defer redisClient.Close()

	uploadStore, err := upload.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to prepare upload directories: %v", err)
	}

	sessions := session.NewStore(redisClient, cfg.SessionTTL)
	captchaService := captcha.NewService(sessions)

	// Repositories
	userRepo := repository.NewUserRepository(database.DB)
	movieRepo := repository.NewMovieRepository(database.DB)
	reviewRepo := repository.NewReviewRepository(database.DB)
	favoriteRepo := repository.NewFavoriteRepository(database.DB)

	// Services
	authService := service.NewAuthService(userRepo)
	movieService := service.NewMovieService(movieRepo, reviewRepo, uploadStore)
	reviewService := service.NewReviewService(reviewRepo, movieRepo)
	favoriteService := service.NewFavoriteService(favoriteRepo, movieRepo, reviewRepo)

	// Handlers
	cookieMaxAge := int(cfg.SessionTTL.Seconds())
	authHandler := handler.NewAuthHandler(authService, sessions, captchaService, cookieMaxAge, cfg.IsProduction())
	movieHandler := handler.NewMovieHandler(movieService, sessions)
	reviewHandler := handler.NewReviewHandler(reviewService)
	favoriteHandler := handler.NewFavoriteHandler(favoriteService)
	profileHandler := handler.NewProfileHandler(authService, uploadStore)

	rateLimiter := middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
		BlockTime:   cfg.RateLimitBlockTime,
	})

	router := gin.Default()
	router.Use(cors.Default())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(cfg.IsProduction()))
	router.Use(middleware.SessionMiddleware(sessions, cookieMaxAge, cfg.IsProduction()))

	// Stored media is served under generated filenames only
	router.Static("/uploads/posters", uploadStore.Dir(upload.KindPoster))
	router.Static("/uploads/trailers", uploadStore.Dir(upload.KindTrailer))
	router.Static("/uploads/avatars", uploadStore.Dir(upload.KindAvatar))

	// Public routes
	public := router.Group("/api")
	public.GET("/captcha/new", authHandler.NewCaptcha)
	auth := public.Group("/auth")
	auth.Use(rateLimiter.Middleware())
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes (require a bound session)
	protected := router.Group("/api")
	protected.Use(middleware.RequireAuth(sessions))
	{
		protected.POST("/auth/logout", authHandler.Logout)

		protected.GET("/movies", movieHandler.List)
		protected.GET("/movies/mine", movieHandler.ListMine)
		protected.GET("/movies/:id", movieHandler.Get)
		protected.POST("/movies", movieHandler.Create)
		protected.POST("/movies/:id", movieHandler.Update)
		protected.POST("/movies/:id/delete", movieHandler.Delete)

		protected.GET("/movies/:id/reviews", reviewHandler.List)
		protected.POST("/movies/:id/reviews", reviewHandler.Submit)

		protected.POST("/movies/:id/favorite", favoriteHandler.Toggle)
		protected.GET("/favorites", favoriteHandler.List)

		protected.GET("/profile", profileHandler.Get)
		protected.POST("/profile", profileHandler.Update)
		protected.POST("/profile/image", profileHandler.UploadImage)
	}

	log.Printf("Server starting on %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
