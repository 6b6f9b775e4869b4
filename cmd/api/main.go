package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/forum-service/internal/api/http"
	"github.com/spec-kit/forum-service/internal/api/http/handlers"
	"github.com/spec-kit/forum-service/internal/auth"
	"github.com/spec-kit/forum-service/internal/backend"
	"github.com/spec-kit/forum-service/internal/cache"
	"github.com/spec-kit/forum-service/internal/config"
	"github.com/spec-kit/forum-service/internal/events"
	"github.com/spec-kit/forum-service/internal/observability"
	"github.com/spec-kit/forum-service/internal/persistence"
	"github.com/spec-kit/forum-service/internal/profile"
	"github.com/spec-kit/forum-service/internal/repository"
	"github.com/spec-kit/forum-service/internal/service"
	"github.com/spec-kit/forum-service/internal/worker"
)

// Tokens are issued by the backend; the TTL only matters for GenerateToken.
const tokenTTLMinutes = 60

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg, persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	client := backend.NewClient(cfg.Backend, logger, metrics)
	questionCache := cache.NewQuestionCache(redis.Client, cfg.Redis.QuestionTTL(), logger, metrics)

	var moderationLog repository.ModerationLogRepository
	var audit *service.AuditService
	if pg.Enabled() {
		moderationLog = repository.NewModerationLogRepository(pg.Pool)
		audit = service.NewAuditService(dispatcher, moderationLog, logger)
	}
	worker.StartSubscribers(service.NewNotificationService(dispatcher, logger, cfg.Notification), audit)

	questionService := service.NewQuestionService(service.QuestionDependencies{
		Backend:    client,
		Cache:      questionCache,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	profileService := service.NewProfileService(client, profile.New(), dispatcher, logger)
	expertService := service.NewExpertService(client)
	adminService := service.NewAdminService(service.AdminDependencies{
		Backend:    client,
		Log:        moderationLog,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, tokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokens, cfg.Auth.CookieName, logger)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Questions:      handlers.NewQuestionsHandler(questionService),
		Answers:        handlers.NewAnswersHandler(questionService),
		Profile:        handlers.NewProfileHandler(profileService),
		Experts:        handlers.NewExpertsHandler(expertService),
		Admin:          handlers.NewAdminHandler(adminService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("backend", cfg.Backend.BaseURL))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
