// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api exposes the daemon's operational HTTP surface.

It is not the public catalog API: it serves liveness and readiness probes
and the on-demand sync triggers used by operators and the scheduler. The
public read surface lives in a separate service against the same catalog.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/komikan/internal/core/comic"
	"github.com/taibuivan/komikan/internal/core/image"
	"github.com/taibuivan/komikan/internal/core/tag"
	"github.com/taibuivan/komikan/internal/core/translation"
	"github.com/taibuivan/komikan/internal/ingest"
	"github.com/taibuivan/komikan/internal/platform/bus"
	"github.com/taibuivan/komikan/internal/platform/config"
	"github.com/taibuivan/komikan/internal/platform/constants"
	"github.com/taibuivan/komikan/internal/platform/middleware"
)

// Server is the ops HTTP server.
type Server struct {
	http    *http.Server
	router  chi.Router
	logger  *slog.Logger
	pool    *pgxpool.Pool
	redis   *goredis.Client
	bus     *bus.Bus
	ingest  *ingest.Service
	config  *config.Config
	running *runGuard
}

// Handlers groups the editorial handler sets mounted on the ops surface.
//
// These endpoints are for operators and editorial tooling on the internal
// network; the public catalog API is a separate read-only service.
type Handlers struct {
	Comic       *comic.Handler
	Tag         *tag.Handler
	Translation *translation.Handler
	Image       *image.Handler
}

func NewServer(
	cfg *config.Config,
	pool *pgxpool.Pool,
	redisClient *goredis.Client,
	exchange *bus.Bus,
	ingestService *ingest.Service,
	handlers Handlers,
	logger *slog.Logger,
) *Server {
	server := &Server{
		logger:  logger,
		pool:    pool,
		redis:   redisClient,
		bus:     exchange,
		ingest:  ingestService,
		config:  cfg,
		running: newRunGuard(),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(logger))
	router.Use(middleware.PanicRecovery(logger))
	router.Use(chimiddleware.Timeout(constants.GlobalRequestTimeout))

	router.Get("/health", server.handleHealth)
	router.Get("/ready", server.handleReady)

	router.Route("/sync", func(r chi.Router) {
		r.Post("/origin", server.handleSyncOrigin)
		r.Post("/translations/{language}", server.handleSyncTranslations)
	})

	router.Route("/editorial", func(r chi.Router) {
		r.Route("/comics", func(comics chi.Router) {
			handlers.Comic.RegisterRoutes(comics)
			handlers.Translation.RegisterComicRoutes(comics)
		})
		r.Route("/translations", handlers.Translation.RegisterRoutes)
		r.Route("/tags", handlers.Tag.RegisterRoutes)
		r.Route("/images", handlers.Image.RegisterRoutes)
	})

	server.router = router
	server.http = &http.Server{
		Addr:              ":" + cfg.OpsPort,
		Handler:           router,
		ReadTimeout:       constants.DefaultReadTimeout,
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		WriteTimeout:      constants.DefaultWriteTimeout,
		IdleTimeout:       constants.DefaultIdleTimeout,
	}

	return server
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (server *Server) Start() error {
	server.logger.Info("ops server listening", slog.String("addr", server.http.Addr))

	if err := server.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the shutdown window.
func (server *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
	defer cancel()

	return server.http.Shutdown(shutdownCtx)
}
