package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/inkwell-io/blog-service/internal/api/http"
	"github.com/inkwell-io/blog-service/internal/api/http/handlers"
	"github.com/inkwell-io/blog-service/internal/auth"
	"github.com/inkwell-io/blog-service/internal/config"
	"github.com/inkwell-io/blog-service/internal/observability"
	"github.com/inkwell-io/blog-service/internal/persistence"
	"github.com/inkwell-io/blog-service/internal/repository"
	"github.com/inkwell-io/blog-service/internal/service"
	"github.com/inkwell-io/blog-service/internal/storage"
	"github.com/inkwell-io/blog-service/internal/summary"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	uploads, err := storage.NewUploadStore(cfg.Upload.Dir, logger)
	if err != nil {
		logger.Fatal("failed to init upload store", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	postRepo := repository.NewPostRepository(pool)

	var summarizer service.Summarizer
	var summaryCache service.SummaryCache
	if cfg.Summary.APIKey != "" {
		client, err := summary.NewClient(summary.Config{
			APIKey:  cfg.Summary.APIKey,
			Model:   cfg.Summary.Model,
			BaseURL: cfg.Summary.BaseURL,
		})
		if err != nil {
			logger.Fatal("failed to init summary client", zap.Error(err))
		}
		summarizer = client
		summaryCache = summary.NewRedisCache(redis.Client, cfg.Summary.CacheTTL())
	} else {
		logger.Warn("SUMMARY_API_KEY not set; post summaries disabled")
	}

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: userRepo,
		Uploads:  uploads,
		Logger:   logger,
	})
	postService := service.NewPostService(service.PostDependencies{
		PostRepo:          postRepo,
		UserRepo:          userRepo,
		Uploads:           uploads,
		Summarizer:        summarizer,
		Cache:             summaryCache,
		MaxThumbnailBytes: cfg.Upload.MaxThumbnailBytes,
		Logger:            logger,
	})
	authMiddleware := auth.NewMiddleware(authService.TokenManager())

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.Upload.MaxThumbnailBytes) + 1<<20,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	usersHandler := handlers.NewUsersHandler(authService)
	postsHandler := handlers.NewPostsHandler(postService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Users:          usersHandler,
		Posts:          postsHandler,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
