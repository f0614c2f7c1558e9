// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/komikan/internal/platform/constants"
)

// Checkpoints remembers the last issue number synced per source, so an
// incremental scan starts where the previous one stopped. Losing a
// checkpoint is harmless: the scan restarts from 1 and re-ingest is a no-op.
type Checkpoints struct {
	client *redis.Client
}

func NewCheckpoints(client *redis.Client) *Checkpoints {
	return &Checkpoints{client: client}
}

// Last returns the checkpointed issue number for source, or 0 when the
// source has never been scanned.
func (c *Checkpoints) Last(context context.Context, source string) (int, error) {
	value, err := c.client.Get(context, checkpointKey(source)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ingest: reading checkpoint for %s: %w", source, err)
	}

	number, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("ingest: corrupt checkpoint for %s: %w", source, err)
	}

	return number, nil
}

// Record advances the checkpoint for source. It never moves backwards.
func (c *Checkpoints) Record(context context.Context, source string, number int) error {
	last, err := c.Last(context, source)
	if err != nil {
		return err
	}
	if number <= last {
		return nil
	}

	if err := c.client.Set(context, checkpointKey(source), strconv.Itoa(number), 0).Err(); err != nil {
		return fmt.Errorf("ingest: writing checkpoint for %s: %w", source, err)
	}

	return nil
}

func checkpointKey(source string) string {
	return constants.RedisPrefixIngestCheckpoint + source
}
