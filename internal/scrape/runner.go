// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scrape

import (
	"context"
	"log/slog"
	"time"
)

// Limits controls a chunked concurrent scan.
type Limits struct {
	// Start and End bound the issue range, both inclusive.
	Start int
	End   int

	// ChunkSize is the number of items worked in parallel per chunk.
	ChunkSize int

	// Delay is the pause between chunks.
	Delay time.Duration
}

// Range expands the limits into the inclusive list of issue numbers.
func (l Limits) Range() []int {
	if l.End < l.Start {
		return nil
	}

	numbers := make([]int, 0, l.End-l.Start+1)
	for n := l.Start; n <= l.End; n++ {
		numbers = append(numbers, n)
	}
	return numbers
}

// Progress is invoked after each chunk with the number of processed items.
type Progress func(done, total int)

/*
RunConcurrently maps op over items in fixed-size chunks: items within a
chunk run in parallel, chunks run sequentially with delay between them.

Results keep the input order. A nil result (issue absent at the source) is
dropped. An op error skips that one item; the error is logged and the scan
continues. Retrying is not this layer's job, the fetcher already did that.

Cancellation discards all partial results and returns the context error.
*/
func RunConcurrently[T any, R any](
	ctx context.Context,
	items []T,
	op func(ctx context.Context, item T) (*R, error),
	chunkSize int,
	delay time.Duration,
	onProgress Progress,
	logger *slog.Logger,
) ([]*R, error) {
	if chunkSize <= 0 {
		chunkSize = 1
	}

	results := make([]*R, len(items))
	total := len(items)
	done := 0

	for start := 0; start < len(items); start += chunkSize {
		if start > 0 && delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		end := min(start+chunkSize, len(items))

		chunkDone := make(chan struct{})
		pending := end - start

		for i := start; i < end; i++ {
			go func(i int) {
				defer func() {
					chunkDone <- struct{}{}
				}()

				res, err := op(ctx, items[i])
				if err != nil {
					logger.Warn("scrape item failed",
						slog.Int("index", i),
						slog.String("error", err.Error()),
					)
					return
				}
				results[i] = res
			}(i)
		}

		for range pending {
			<-chunkDone
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		done = end
		if onProgress != nil {
			onProgress(done, total)
		}
	}

	collected := make([]*R, 0, len(results))
	for _, r := range results {
		if r != nil {
			collected = append(collected, r)
		}
	}

	return collected, nil
}
