package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kevinleven52/Ac.Connect/controllers"
	"github.com/kevinleven52/Ac.Connect/database"
	"github.com/kevinleven52/Ac.Connect/middleware"
	"github.com/kevinleven52/Ac.Connect/repository"
	"github.com/kevinleven52/Ac.Connect/routes"
	"github.com/kevinleven52/Ac.Connect/services"
	"github.com/kevinleven52/Ac.Connect/storage"
)

func main() {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	var logger *zap.Logger
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// --- Stores ---
	db, err := database.Connect(cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer database.Close(db)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureIndexes(indexCtx, db); err != nil {
		cancelIndex()
		logger.Fatal("Failed to create indexes", zap.Error(err))
	}
	cancelIndex()

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	imageStore, err := storage.NewS3ImageStore(context.Background(), storage.S3Options{
		Region:    cfg.AWSRegion,
		Bucket:    cfg.ImageBucket,
		Endpoint:  cfg.AWSEndpoint,
		AccessKey: cfg.AWSAccessKey,
		SecretKey: cfg.AWSSecretKey,
	})
	if err != nil {
		logger.Fatal("Failed to initialize image store", zap.Error(err))
	}

	// --- Repositories ---
	userRepo := repository.NewMongoUserRepository(db)
	productRepo := repository.NewMongoProductRepository(db)
	couponRepo := repository.NewMongoCouponRepository(db)
	orderRepo := repository.NewMongoOrderRepository(db)
	tokenStore := repository.NewRedisTokenStore(redisClient)
	featuredCache := repository.NewRedisFeaturedCache(redisClient)

	// --- Services ---
	tokenService := services.NewTokenService(cfg.JWTSecret)
	stripeService := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookKey)

	authService := services.NewAuthService(userRepo, tokenService, tokenStore, logger)
	cartService := services.NewCartService(userRepo, productRepo, logger)
	couponService := services.NewCouponService(couponRepo, logger)
	productService := services.NewProductService(productRepo, featuredCache, imageStore, logger)
	checkoutService := services.NewCheckoutService(stripeService, couponService, orderRepo, cfg.ClientURL, logger)
	analyticsService := services.NewAnalyticsService(userRepo, productRepo, orderRepo, logger)

	// --- HTTP ---
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := controllers.RegisterValidators(); err != nil {
		logger.Fatal("Failed to register validators", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	routes.Register(r, routes.Controllers{
		Auth:      controllers.NewAuthController(authService, cfg.IsProduction()),
		Cart:      controllers.NewCartController(cartService),
		Coupon:    controllers.NewCouponController(couponService),
		Product:   controllers.NewProductController(productService),
		Payment:   controllers.NewPaymentController(checkoutService, stripeService, logger),
		Analytics: controllers.NewAnalyticsController(analyticsService),
	}, tokenService, userRepo)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
}
