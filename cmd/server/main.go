package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"techstore-server/internal/config"
	"techstore-server/internal/database"
	"techstore-server/internal/handler"
	"techstore-server/internal/logger"
	"techstore-server/internal/mailer"
	"techstore-server/internal/middleware"
	"techstore-server/internal/service"
	"techstore-server/internal/storage"
	"techstore-server/internal/ws"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	log, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: "json",
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)
	zap.L().Info("Logger initialized successfully", zap.String("logLevel", cfg.LogLevel))

	// --- External Connections ---
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pgPool, err := database.NewPgPool(ctx, cfg.DatabaseDSN(), log)
	if err != nil {
		zap.L().Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgPool.Close()
	zap.L().Info("Connected to PostgreSQL")

	if err := database.RunMigrations(pgPool, log); err != nil {
		zap.L().Fatal("Failed to run database migrations", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		zap.L().Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	zap.L().Info("Connected to Redis")

	imageStore, err := storage.NewS3ImageStore(ctx, cfg, log)
	if err != nil {
		zap.L().Fatal("Failed to initialize object store client", zap.Error(err))
	}

	// --- Dependency Injection ---
	// Конструкторы сами вешают имя на логгер
	userRepo := database.NewPgUserRepository(pgPool, log)
	packageRepo := database.NewPgPackageRepository(pgPool, log)
	imageRepo := database.NewPgImageRepository(pgPool, log)
	ledger := database.NewPgPurchaseLedger(pgPool, log)
	mailSender := mailer.NewSMTPSender(cfg, log)

	authSvc := service.NewAuthService(userRepo, ledger, imageStore, mailSender, cfg, log)
	catalogSvc := service.NewCatalogService(packageRepo, imageRepo, userRepo, ledger, imageStore, mailSender, cfg, log)

	// --- Rate Limiter Middleware Setup ---
	// Login и register ограничены по IP; остальные руты не лимитируются.
	rateLimitStore := rateli.RedisStore(&rateli.RedisOptions{
		RedisClient: redisClient,
		Rate:        time.Minute,
		Limit:       10,
	})
	rateLimitMiddleware := rateli.RateLimiter(rateLimitStore, &rateli.Options{
		ErrorHandler: func(c *gin.Context, info rateli.Info) {
			zap.L().Warn("Rate limit exceeded",
				zap.String("clientIP", c.ClientIP()),
				zap.Time("resetTime", info.ResetTime),
				zap.String("path", c.Request.URL.Path),
			)
			c.String(http.StatusTooManyRequests, "Too many requests. Try again in "+time.Until(info.ResetTime).String())
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})

	h := handler.NewHandler(authSvc, catalogSvc, userRepo, ledger, cfg)

	wsManager := ws.NewConnectionManager(log)
	wsHandler := ws.NewHandler(wsManager, authSvc, log)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(middleware.ZapLoggingMiddleware(log))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	allowedOrigins := cfg.GetAllowedOrigins()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
		zap.L().Info("CORSAllowedOrigins not set, allowing default", zap.String("origin", "http://localhost:3000"))
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// gin снимает цепочку обработчиков в момент регистрации рута, поэтому
	// prometheus middleware подключается до регистрации рутов
	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	h.RegisterRoutes(router, rateLimitMiddleware)
	router.GET("/ws", wsHandler.ServeWS)

	// --- Start HTTP Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("Starting HTTP server", zap.String("port", cfg.ServerPort))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutdown signal received, stopping server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exited")
}
