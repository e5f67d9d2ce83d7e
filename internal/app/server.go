// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"leadpulse-service/internal/config"
	"leadpulse-service/internal/db"
	analyticsHandler "leadpulse-service/internal/handlers/analytics"
	callHandler "leadpulse-service/internal/handlers/call"
	leadHandler "leadpulse-service/internal/handlers/lead"
	webhookHandler "leadpulse-service/internal/handlers/webhook"
	wsHandler "leadpulse-service/internal/handlers/ws"
	"leadpulse-service/internal/middleware"
	"leadpulse-service/internal/pkg/auth"
	"leadpulse-service/internal/pkg/cache"
	"leadpulse-service/internal/queue"
	"leadpulse-service/internal/repository/postgres"
	analyticsService "leadpulse-service/internal/service/analytics"
	callService "leadpulse-service/internal/service/call"
	leadService "leadpulse-service/internal/service/lead"
	"leadpulse-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start(ctx context.Context) error {
	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()

	// ----- RabbitMQ -----
	rabbit, err := queue.NewRabbitMQ(s.cfg.AMQPUser, s.cfg.AMQPPass, s.cfg.AMQPHost, s.cfg.AMQPPort)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer rabbit.Close()
	producer := queue.NewProducer(rabbit)

	// ----- JWT Verifier -----
	verifier, err := auth.LoadVerifier(s.cfg.JWTPublicKeyPath, s.cfg.JWTIssuer, s.cfg.JWTAudience)
	if err != nil {
		return fmt.Errorf("failed to load JWT verifier: %w", err)
	}

	// ----- Organization settings -----
	loc, err := time.LoadLocation(s.cfg.OrgTimezone)
	if err != nil {
		return fmt.Errorf("invalid ORG_TIMEZONE %q: %w", s.cfg.OrgTimezone, err)
	}

	// ----- Repositories -----
	leadRepo := postgres.NewLeadRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)
	callRepo := postgres.NewCallRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	// ----- Services -----
	leadSvc := leadService.NewLeadService(leadRepo, activityRepo, userRepo, logger)
	callSvc := callService.NewCallService(callRepo, leadRepo, activityRepo, logger)
	reportCache := cache.NewRedisCache(redisClient, s.cfg.ReportCacheTTL)
	analyticsSvc := analyticsService.NewAnalyticsService(
		leadRepo,
		activityRepo,
		callRepo,
		userRepo,
		reportCache,
		loc,
		s.cfg.DurationBuckets,
		logger,
	)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	// ----- Call-event worker -----
	worker := queue.NewWorker(rabbit, callSvc, logger)
	go func() {
		if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("call-event worker stopped", zap.Error(err))
		}
	}()

	// ----- Handlers -----
	leadHandlerInst := leadHandler.NewLeadHandler(leadSvc, hub)
	callHandlerInst := callHandler.NewCallHandler(callSvc)
	analyticsHandlerInst := analyticsHandler.NewAnalyticsHandler(analyticsSvc)
	webhookHandlerInst := webhookHandler.NewWebhookHandler(leadSvc, producer, logger)
	wsHandlerInst := wsHandler.NewWebSocketHandler(hub, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(verifier)
	rateLimit := middleware.RateLimitMiddleware(redisClient, 60, time.Minute)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.MetricsMiddleware(),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		LeadHandler:      leadHandlerInst,
		CallHandler:      callHandlerInst,
		AnalyticsHandler: analyticsHandlerInst,
		WebhookHandler:   webhookHandlerInst,
		WSHandler:        wsHandlerInst,
		AuthMiddleware:   authMiddleware,
		RateLimit:        rateLimit,
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}
