// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command ingestd is the Komikan ingestion daemon.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Connect to NATS and provision the post-process streams.
//  6. Run database migrations (idempotent).
//  7. Wire the fetcher, scrapers, catalog services, and ingest pipeline.
//  8. Start the post-process consumer and the ops HTTP server.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/komikan/internal/api"
	"github.com/taibuivan/komikan/internal/core/comic"
	"github.com/taibuivan/komikan/internal/core/image"
	"github.com/taibuivan/komikan/internal/core/tag"
	"github.com/taibuivan/komikan/internal/core/translation"
	"github.com/taibuivan/komikan/internal/fetch"
	"github.com/taibuivan/komikan/internal/ingest"
	"github.com/taibuivan/komikan/internal/platform/bus"
	"github.com/taibuivan/komikan/internal/platform/config"
	"github.com/taibuivan/komikan/internal/platform/constants"
	"github.com/taibuivan/komikan/internal/platform/migration"
	pgstore "github.com/taibuivan/komikan/internal/platform/postgres"
	redisstore "github.com/taibuivan/komikan/internal/platform/redis"
	"github.com/taibuivan/komikan/internal/scrape"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Komikan] ingestd_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("ops_port", cfg.OpsPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. NATS ───────────────────────────────────────────────────────────
	exchange, err := bus.Connect(cfg.NatsURL, log)
	must(log, err, "connect to nats")
	defer func() {
		log.Info("closing bus connection")
		exchange.Close()
	}()

	// ── 6. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 7. Fetch layer ────────────────────────────────────────────────────
	fetcher := fetch.New(fetch.Options{
		MaxInflight: cfg.FetchMaxInflight,
		RetryCount:  cfg.FetchRetryCount,
		RetryDelay:  cfg.FetchRetryDelay,
		ClientTTL:   cfg.FetchClientTTL,
	}, log)
	defer fetcher.Close()

	downloader, err := fetch.NewDownloader(fetcher, cfg.StaticRoot, cfg.TempDirName, cfg.DownloadMaxBytes, log)
	must(log, err, "initialize downloader")

	// ── 8. Catalog services ───────────────────────────────────────────────
	fileManager, err := image.NewFileManager(cfg.StaticRoot, cfg.TempDirName)
	must(log, err, "initialize file manager")

	imageService := image.NewService(image.NewPostgresRepository(), fileManager, exchange, log)
	comicService := comic.NewService(pool, imageService, log)
	tagService := tag.NewService(tag.NewPostgresRepository(pool), log)
	translationService := translation.NewService(pool, imageService, log)

	// ── 9. Scrapers ───────────────────────────────────────────────────────
	origin := scrape.NewOrigin(fetcher, downloader, constants.OriginBaseURL, log)
	explain := scrape.NewExplain(fetcher, constants.ExplainBaseURL, log)

	numbered := []scrape.TranslationScraper{
		scrape.NewGerman(fetcher, downloader, constants.GermanBaseURL, log),
		scrape.NewFrench(fetcher, downloader, constants.FrenchBaseURL, log),
		scrape.NewRussian(fetcher, downloader, constants.RussianBaseURL, log),
		scrape.NewChinese(fetcher, downloader, constants.ChineseBaseURL, log),
	}
	linked := []scrape.LinkScraper{
		scrape.NewSpanish(fetcher, downloader, constants.SpanishBaseURL, log),
	}

	ingestService := ingest.NewService(
		pool, comicService, imageService, downloader,
		origin, explain, numbered, linked,
		ingest.NewCheckpoints(rdb), log,
	)

	// ── 10. Post-process consumer ─────────────────────────────────────────
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	consumer := image.NewConsumer(image.NewPostgresRepository(), pool, cfg.StaticRoot, log)
	consumerErr := make(chan error, 1)
	go func() {
		consumerErr <- consumer.Start(consumerCtx, exchange)
	}()

	// ── 11. Ops HTTP server ───────────────────────────────────────────────
	handlers := api.Handlers{
		Comic:       comic.NewHandler(comicService),
		Tag:         tag.NewHandler(tagService),
		Translation: translation.NewHandler(translationService),
		Image:       image.NewHandler(imageService, pool),
	}
	server := api.NewServer(cfg, pool, rdb, exchange, ingestService, handlers, log)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// ── 12. Graceful shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("ops server error", slog.Any("error", err))
	case err := <-consumerErr:
		log.Error("consumer error", slog.Any("error", err))
	}

	consumerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("ingestd stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
