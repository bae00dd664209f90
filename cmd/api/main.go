package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/hostelsync/hostelsync-api/internal/api/http"
	"github.com/hostelsync/hostelsync-api/internal/api/http/handlers"
	"github.com/hostelsync/hostelsync-api/internal/auth"
	"github.com/hostelsync/hostelsync-api/internal/config"
	"github.com/hostelsync/hostelsync-api/internal/domain"
	"github.com/hostelsync/hostelsync-api/internal/events"
	"github.com/hostelsync/hostelsync-api/internal/observability"
	"github.com/hostelsync/hostelsync-api/internal/persistence"
	"github.com/hostelsync/hostelsync-api/internal/repository"
	"github.com/hostelsync/hostelsync-api/internal/service"
	"github.com/hostelsync/hostelsync-api/internal/worker"
)

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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	issueRepo := repository.NewIssueRepository(pool)
	cleaningRepo := repository.NewCleaningRepository(pool)
	menuRepo := repository.NewMenuRepository(pool)
	feedbackRepo := repository.NewMealFeedbackRepository(pool)
	transportRepo := repository.NewTransportRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, dispatcher, logger)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	authDeps := service.AuthDependencies{UserRepo: userRepo, TokenManager: tokenManager}
	var revocations auth.RevocationChecker
	if redis.Enabled() {
		authDeps.Revoker = redis
		authDeps.Limiter = redis
		revocations = redis
	}
	authService := service.NewAuthService(cfg.Auth, authDeps)
	authMiddleware := auth.NewAuthMiddleware(tokenManager, revocations)

	userService := service.NewUserService(service.UserDependencies{
		UserRepo:   userRepo,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	issueService := service.NewIssueService(service.IssueDependencies{
		IssueRepo:  issueRepo,
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
	})
	cleaningService := service.NewCleaningService(service.CleaningDependencies{
		CleaningRepo: cleaningRepo,
		UserRepo:     userRepo,
		Dispatcher:   dispatcher,
	})
	messService := service.NewMessService(service.MessDependencies{
		MenuRepo:     menuRepo,
		FeedbackRepo: feedbackRepo,
	})
	transportService := service.NewTransportService(service.TransportDependencies{
		TransportRepo: transportRepo,
		BookingRepo:   bookingRepo,
		UserRepo:      userRepo,
		Dispatcher:    dispatcher,
	})

	artifacts, err := persistence.NewArtifactStore(cfg.Artifacts.Dir)
	if err != nil {
		logger.Fatal("failed to prepare artifact directory", zap.Error(err))
	}
	janitor, err := worker.NewArtifactJanitor(artifacts, cfg.Artifacts.TTL(), cfg.Artifacts.SweepInterval(), logger)
	if err != nil {
		logger.Fatal("failed to create artifact janitor", zap.Error(err))
	}
	janitor.Start()
	defer func() {
		if err := janitor.Stop(); err != nil {
			logger.Warn("artifact janitor stop", zap.Error(err))
		}
	}()

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: !cfg.App.IsDevelopment(),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout(), cfg.App.IsDevelopment())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Water:          handlers.NewIssuesHandler(issueService, domain.IssueCategoryWater),
		Network:        handlers.NewIssuesHandler(issueService, domain.IssueCategoryNetwork),
		Cleaning:       handlers.NewCleaningHandler(cleaningService),
		Mess:           handlers.NewMessHandler(messService, artifacts, logger),
		Transport:      handlers.NewTransportHandler(transportService),
		AdminUsers:     handlers.NewAdminUsersHandler(userService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
