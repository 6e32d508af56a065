package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mail_admin/internal/config"
	"mail_admin/internal/handler"
	"mail_admin/internal/logger"
	"mail_admin/internal/mailer"
	"mail_admin/internal/metrics"
	"mail_admin/internal/middleware"
	"mail_admin/internal/ratelimit"
	"mail_admin/internal/repository"
	"mail_admin/internal/service"
	"mail_admin/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file
	envErr := godotenv.Load()

	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console", os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if envErr != nil {
		log.Info().Msg("no .env file found, relying on environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer dbPool.Close()

	if cfg.DB.AutoMigrate {
		if err := config.Migrate(ctx, dbPool); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		log.Info().Msg("database schema is up to date")
	}

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(cfg.JWT.Secret, cfg.JWT.ExpirationHours)
	m := metrics.New()
	smtpMailer := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Username: cfg.Email.User,
		Password: cfg.Email.Password,
		Secure:   cfg.Email.Secure,
		Timeout:  cfg.Email.Timeout,
	}, log)

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(dbPool)
	historyRepo := repository.NewHistoryRepository(dbPool)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, jwtUtil, m, log)
	listingService := service.NewListingService(userRepo, historyRepo)
	mailService := service.NewMailService(userRepo, historyRepo, smtpMailer, m, cfg.AuditFailedSends, log)

	// --- Initialize Handlers ---
	secureCookie := cfg.IsProduction()
	authHandler := handler.NewAuthHandler(authService, jwtUtil, secureCookie, log)
	dataHandler := handler.NewDataHandler(listingService, log)
	mailHandler := handler.NewMailHandler(mailService, log)
	healthHandler := handler.NewHealthHandler(dbPool)

	// --- Setup Gin Router ---
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Fatal().Err(err).Strs("trusted_proxies", cfg.TrustedProxies).Msg("invalid TRUSTED_PROXIES")
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log, m))
	router.Use(middleware.CORS(cfg.CORSOrigin))

	// --- Initialize Middlewares ---
	sessionMW := middleware.SessionAuthMiddleware(jwtUtil)
	adminRoleMW := middleware.AdminMiddleware()

	var loginMW []gin.HandlerFunc
	if cfg.Redis.Addr != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, login rate limit fails open until it recovers")
		}
		limiter := ratelimit.NewFixedWindowLimiter(rdb)
		loginMW = append(loginMW, middleware.LoginRateLimit(limiter, cfg.LoginRateLimit, cfg.LoginRateWindow, m, log))
	}

	// --- Register Routes ---
	apiGroup := router.Group("/api")
	authHandler.RegisterAuthRoutes(apiGroup, loginMW...)
	dataHandler.RegisterDataRoutes(apiGroup, sessionMW, adminRoleMW)
	mailHandler.RegisterMailRoutes(apiGroup, sessionMW, adminRoleMW)

	router.GET("/health", healthHandler.Health)
	handler.RegisterMetricsRoute(router, m.Handler(), sessionMW, adminRoleMW)

	dashboard := router.Group("/dashboard", middleware.DashboardGuard(jwtUtil, cfg.LoginPath, secureCookie))
	dashboard.Static("/", cfg.DashboardDir)

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exiting")
}
