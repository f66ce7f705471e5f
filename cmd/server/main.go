package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"bistro/docs"
	"bistro/internal/auth"
	"bistro/internal/cache"
	"bistro/internal/config"
	"bistro/internal/db"
	"bistro/internal/events"
	"bistro/internal/gateway"
	"bistro/internal/handler"
	"bistro/internal/logger"
	"bistro/internal/repository"
	"bistro/internal/router"
	"bistro/internal/service"
)

// @title Bistro API
// @version 1.0
// @description Restaurant ordering backend: sign-in tokens, menu, carts, payments and admin statistics.
// @host localhost:5000
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("config", "error", err)
		os.Exit(1)
	}
	log := logger.Init(cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongo, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Error("mongo init", "error", err)
		os.Exit(1)
	}
	if err := mongo.EnsureIndexes(ctx); err != nil {
		log.Warn("mongo indexes", "error", err)
	}

	var settlementRepo repository.SettlementLogRepository = repository.NopSettlementLogRepository{}
	if cfg.MySQLDSN != "" {
		gormDB, err := db.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			log.Error("mysql init", "error", err)
			os.Exit(1)
		}
		settlementRepo = repository.NewSettlementLogRepository(gormDB)
	} else {
		log.Info("MYSQL_DSN not set, settlement audit log disabled")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	var publisher service.EventPublisher
	var rabbit *events.Publisher
	if cfg.RabbitURL != "" {
		rabbit, err = events.NewPublisher(cfg.RabbitURL, cfg.PaymentExchange)
		if err != nil {
			log.Error("rabbitmq init", "error", err)
			os.Exit(1)
		}
		publisher = rabbit
	} else {
		log.Info("RABBIT_URL not set, payment events disabled")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(mongo.DB)
	cartRepo := repository.NewCartRepository(mongo.DB)
	menuRepo := repository.NewMenuRepository(mongo.DB)
	reviewRepo := repository.NewReviewRepository(mongo.DB)
	paymentRepo := repository.NewPaymentRepository(mongo.DB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	guard := auth.NewGuard(jwtService, userRepo)

	auditLog := service.NewSettlementLogger(settlementRepo)
	auditLog.Start(context.Background())

	// Initialize services
	paymentService := service.NewPaymentService(service.PaymentDeps{
		Payments:    paymentRepo,
		Carts:       cartRepo,
		Gateway:     gateway.NewStripe(cfg.StripeSecretKey),
		Tx:          mongo,
		Idempotency: service.NewIdempotencyStore(cacheClient, cfg.Payment.IdempotencyTTL),
		Audit:       auditLog,
		Events:      publisher,
	}, cfg.Payment, cfg.PaymentCurrency)

	e := echo.New()
	e.HideBanner = true

	router.Register(e, cfg, guard, router.Handlers{
		Auth:    handler.NewAuthHandler(jwtService),
		User:    handler.NewUserHandler(service.NewUserService(userRepo)),
		Cart:    handler.NewCartHandler(service.NewCartService(cartRepo)),
		Menu:    handler.NewMenuHandler(service.NewMenuService(menuRepo, cacheClient)),
		Review:  handler.NewReviewHandler(service.NewReviewService(reviewRepo)),
		Payment: handler.NewPaymentHandler(paymentService),
		Stats:   handler.NewStatsHandler(service.NewStatsService(userRepo, menuRepo, paymentRepo)),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}
	log.Info("swagger documentation available", "url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html")

	go func() {
		addr := ":" + cfg.ServerPort
		log.Info("server listening", "addr", addr, "env", cfg.AppEnv,
			"idempotency", cfg.Payment.Idempotency,
			"transactional", cfg.Payment.Transactional,
			"verify_cart_owner", cfg.Payment.VerifyCartOwner)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}
	auditLog.Close()
	if err := rabbit.Close(); err != nil {
		log.Warn("rabbitmq close", "error", err)
	}
	_ = cacheClient.Close()
	if err := mongo.Close(shutdownCtx); err != nil {
		log.Warn("mongo close", "error", err)
	}
}
