// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/komikan/internal/platform/bus"
	"github.com/taibuivan/komikan/internal/platform/constants"
)

// postProcessResult is the converter's reply. Paths arrive absolute and are
// stored relative to the static root.
type postProcessResult struct {
	ImageID          int64  `json:"image_id"`
	ConvertedAbsPath string `json:"converted_abs_path"`
	ThumbnailAbsPath string `json:"thumbnail_abs_path"`
}

// Consumer applies converter results to image rows. Handling is idempotent
// so JetStream redelivery is harmless.
type Consumer struct {
	repo       Repository
	pool       *pgxpool.Pool
	staticRoot string
	logger     *slog.Logger
}

func NewConsumer(repo Repository, pool *pgxpool.Pool, staticRoot string, logger *slog.Logger) *Consumer {
	return &Consumer{
		repo:       repo,
		pool:       pool,
		staticRoot: staticRoot,
		logger:     logger,
	}
}

// Start runs the durable pull loop until context is done.
func (consumer *Consumer) Start(context context.Context, exchange *bus.Bus) error {
	return exchange.Consume(context, constants.SubjectPostProcessOut, constants.PostProcessDurable, consumer.Handle)
}

// Handle decodes one converter result and writes the derived paths onto the
// image row. The update never inserts; a missing row is reported so the
// message stays unacked for reconciliation.
func (consumer *Consumer) Handle(context context.Context, data []byte) error {
	var result postProcessResult
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("image: decoding post-process result: %w", err)
	}

	convertedPath, err := consumer.relative(result.ConvertedAbsPath)
	if err != nil {
		return err
	}
	thumbnailPath, err := consumer.relative(result.ThumbnailAbsPath)
	if err != nil {
		return err
	}

	if err := consumer.repo.SetDerivedPaths(context, consumer.pool, result.ImageID, convertedPath, thumbnailPath); err != nil {
		return err
	}

	consumer.logger.Info("image_post_processed",
		slog.Int64("image_id", result.ImageID),
		slog.String("converted_path", convertedPath),
		slog.String("thumbnail_path", thumbnailPath),
	)

	return nil
}

// relative strips the static root prefix from an absolute converter path.
func (consumer *Consumer) relative(absPath string) (string, error) {
	rel, err := filepath.Rel(consumer.staticRoot, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("image: path %q is outside the static root", absPath)
	}
	return filepath.ToSlash(rel), nil
}
