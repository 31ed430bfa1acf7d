package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	config "github.com/maheshrc27/trendqueue/configs"
	"github.com/maheshrc27/trendqueue/internal/api/handlers"
	"github.com/maheshrc27/trendqueue/internal/api/middleware"
	job "github.com/maheshrc27/trendqueue/internal/jobs"
	applog "github.com/maheshrc27/trendqueue/internal/logger"
	"github.com/maheshrc27/trendqueue/internal/queue"
	"github.com/maheshrc27/trendqueue/internal/repository"
	"github.com/maheshrc27/trendqueue/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	logConfig, logFile, err := applog.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	ctx := context.Background()

	videoRepo, attemptRepo, db, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeDB(db)

	youtubeService, err := service.NewYoutubeService(ctx, cfg.Youtube)
	if err != nil {
		log.Fatalf("Failed to create YouTube client: %v", err)
	}
	tiktokService := service.NewTiktokService(cfg.Tiktok, nil)

	mediaStore, err := openMediaStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open media store: %v", err)
	}

	var source service.TrendingSource
	if youtubeService.DiscoveryConfigured() {
		source = youtubeService
	} else {
		slog.Warn("YOUTUBE_API_KEY not set, trending discovery disabled")
	}

	trendingService := service.NewTrendingService(source, cfg.Youtube.Region, cfg.Youtube.MaxResults)
	selector := service.NewSelector(service.MaxSelectionTrials, nil)
	queueService := service.NewQueueService(videoRepo, trendingService, selector, mediaStore, service.QueueOptions{
		TitlePrefix:      cfg.TitlePrefix,
		DescriptionLimit: cfg.DescriptionLimit,
	})
	postingService := service.NewPostingService(videoRepo, attemptRepo, mediaStore,
		[]service.Publisher{youtubeService, tiktokService},
		service.PostingOptions{Tags: service.DefaultTags, Privacy: cfg.Youtube.PrivacyStatus})

	// asynq is optional; without redis the cron jobs post in process
	var enqueuer queue.Enqueuer
	var asynqServer *asynq.Server
	if cfg.RedisURI != "" {
		redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
		client := asynq.NewClient(redisConn)
		defer client.Close()
		enqueuer = client

		asynqServer = asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 1,
		})

		mux := asynq.NewServeMux()
		queue.NewQueue(postingService).Register(mux)

		log.Println("Starting the Asynq server...")
		if err := asynqServer.Start(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}

	// cron jobs
	c := cron.New()
	err = job.Schedule(c, cfg.Youtube.RefreshSpec, job.Jobs{
		Trending: job.NewTrendingRefreshJob(trendingService),
		Posting:  job.NewPostingJob(postingService, enqueuer),
		Tokens:   job.NewTokenRefreshJob(tiktokService),
	})
	if err != nil {
		log.Fatalf("Failed to schedule jobs: %v", err)
	}
	c.Start()

	if source != nil {
		go job.NewTrendingRefreshJob(trendingService).Refresh()
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    512 * 1024 * 1024, // 512 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("unhandled error", "path", c.Path(), "error", err)
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New(*logConfig))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	api := app.Group("/api")
	handlers.NewHealthHandler(queueService, trendingService, selector, youtubeService, tiktokService).Register(api)

	api.Use(authMiddleware.AuthMiddleware())
	handlers.NewQueueHandler(queueService, postingService).Register(api)
	handlers.NewTrendingHandler(trendingService).Register(api)
	handlers.NewPostingHandler(postingService).Register(api)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	slog.Info("Server is running", "port", cfg.Port, "store", cfg.DatabaseDriver, "redis", cfg.RedisURI != "")

	gracefulShutdown(app, c, asynqServer)
}

func openStores(ctx context.Context, cfg *config.Config) (repository.VideoRepository, repository.PublishAttemptRepository, io.Closer, error) {
	switch cfg.DatabaseDriver {
	case "", "memory":
		return repository.NewMemoryVideoRepository(), repository.NewMemoryPublishAttemptRepository(), nil, nil
	case "postgres":
		db, err := repository.Open(ctx, repository.DialectPostgres, cfg.PostgresURI)
		if err != nil {
			return nil, nil, nil, err
		}
		return repository.NewVideoRepository(db), repository.NewPublishAttemptRepository(db), db, nil
	case "sqlite":
		db, err := repository.Open(ctx, repository.DialectSQLite, cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return repository.NewVideoRepository(db), repository.NewPublishAttemptRepository(db), db, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
}

func openMediaStore(ctx context.Context, cfg *config.Config) (service.MediaStore, error) {
	if cfg.R2.BucketName == "" {
		slog.Info("using local media directory", "dir", cfg.MediaDir)
		return service.NewLocalMediaStore(cfg.MediaDir), nil
	}

	r2, err := service.NewR2Service(ctx, cfg.R2)
	if err != nil {
		return nil, err
	}
	slog.Info("using R2 media bucket", "bucket", cfg.R2.BucketName)
	return r2, nil
}

func closeDB(db io.Closer) {
	if db == nil {
		return
	}
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, c *cron.Cron, asynqServer *asynq.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	c.Stop()
	if asynqServer != nil {
		asynqServer.Shutdown()
	}

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	log.Println("Server shutdown complete.")
}
