// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package bus provides the durable message exchange between the catalog and the
out-of-process image converter.

It wraps NATS JetStream with two narrow capabilities:

  - Publisher: fire-and-forget JSON publish after an image is attached.
  - Consumer: durable pull subscription delivering post-process results.

Architecture:

  - Streams are provisioned idempotently at startup with a bounded max age,
    so a converter outage never accumulates unbounded backlog.
  - Publish failures after a database commit are logged, never retried here;
    reconciliation is a separate concern.
*/
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/taibuivan/komikan/internal/platform/constants"
)

// # Connection

// Bus owns the NATS connection and its JetStream context.
type Bus struct {
	conn   *nats.Conn
	stream nats.JetStreamContext
	logger *slog.Logger
}

// Connect dials NATS, obtains a JetStream context, and provisions the
// post-process streams.
func Connect(url string, logger *slog.Logger) (*Bus, error) {
	conn, err := nats.Connect(url,
		nats.Name(constants.AppName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("bus: failed to connect: %w", err)
	}

	stream, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("bus: failed to get jetstream context: %w", err)
	}

	bus := &Bus{conn: conn, stream: stream, logger: logger}
	if err := bus.provisionStreams(); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("bus connected", slog.String("url", conn.ConnectedUrl()))
	return bus, nil
}

// provisionStreams creates the post-process streams if they do not exist yet.
// Both carry a short max age: a message older than the stream window is
// stale by definition and is reconciled elsewhere.
func (b *Bus) provisionStreams() error {
	streams := []*nats.StreamConfig{
		{
			Name:     "POSTPROCESS_IN",
			Subjects: []string{constants.SubjectPostProcessIn},
			MaxAge:   constants.PostProcessMaxAge,
		},
		{
			Name:     "POSTPROCESS_OUT",
			Subjects: []string{constants.SubjectPostProcessOut},
			MaxAge:   constants.PostProcessMaxAge,
		},
	}

	for _, cfg := range streams {
		_, err := b.stream.AddStream(cfg)
		if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
			return fmt.Errorf("bus: failed to provision stream %s: %w", cfg.Name, err)
		}
	}

	return nil
}

// Close drains and closes the underlying connection.
func (b *Bus) Close() {
	if err := b.conn.Drain(); err != nil {
		b.logger.Error("bus drain failed", slog.Any("error", err))
	}
}

// Ping verifies that the NATS connection is healthy.
func (b *Bus) Ping() error {
	if !b.conn.IsConnected() {
		return fmt.Errorf("bus: not connected")
	}
	return nil
}

// # Publishing

// Publish marshals payload to JSON and publishes it on subject.
//
// The publish is synchronous with respect to the stream so a returned nil
// means the message was accepted by JetStream.
func (b *Bus) Publish(ctx context.Context, subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("bus: failed to marshal payload: %w", err)
	}

	if _, err := b.stream.Publish(subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("bus: failed to publish on %s: %w", subject, err)
	}

	return nil
}

// # Consuming

// Handler processes a single decoded message. Returning an error leaves the
// message unacked so JetStream redelivers it; handlers must be idempotent.
type Handler func(ctx context.Context, data []byte) error

// Consume runs a durable pull consumer loop on subject until ctx is done.
//
// Messages are fetched in small batches and acked only after the handler
// succeeds, so a crash mid-handling results in redelivery, never loss.
func (b *Bus) Consume(ctx context.Context, subject, durable string, handler Handler) error {
	sub, err := b.stream.PullSubscribe(subject, durable)
	if err != nil {
		return fmt.Errorf("bus: failed to subscribe to %s: %w", subject, err)
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			b.logger.Error("bus unsubscribe failed", slog.Any("error", err))
		}
	}()

	b.logger.Info("bus consumer started",
		slog.String("subject", subject),
		slog.String("durable", durable),
	)

	for {
		if ctx.Err() != nil {
			return nil
		}

		msgs, err := sub.Fetch(16, nats.MaxWait(5*time.Second))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			b.logger.Error("bus fetch failed",
				slog.String("subject", subject),
				slog.Any("error", err),
			)
			continue
		}

		for _, msg := range msgs {
			if err := handler(ctx, msg.Data); err != nil {
				b.logger.Error("bus message handling failed",
					slog.String("subject", subject),
					slog.Any("error", err),
				)
				// No ack: JetStream will redeliver.
				continue
			}
			if err := msg.Ack(); err != nil {
				b.logger.Error("bus ack failed", slog.Any("error", err))
			}
		}
	}
}
