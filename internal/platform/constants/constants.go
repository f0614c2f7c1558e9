// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, scraper source endpoints, and cross-cutting keys
that are shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the ops HTTP server.
  - Scrape Sources: Frozen upstream URL contracts the ingest core depends on.
  - Bus Subjects: Message subjects for the image post-processing exchange.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "komikan-ingestd"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight work to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Scrape Sources
//
// Frozen upstream contracts. The path shapes are documented on the scraper
// that consumes them.

const (
	OriginBaseURL  = "https://xkcd.com"
	ExplainBaseURL = "https://explainxkcd.com/wiki/index.php"

	GermanBaseURL  = "https://xkcde.dapete.net"
	SpanishBaseURL = "https://es.xkcd.com"
	FrenchBaseURL  = "https://xkcd.arnaud.at"
	RussianBaseURL = "https://xkcd.ru"
	ChineseBaseURL = "https://xkcd.in"
)

// # Bus Subjects

const (
	// SubjectPostProcessIn receives {image_id} right after an image is attached.
	SubjectPostProcessIn = "images.postprocess.in"

	// SubjectPostProcessOut delivers converted/thumbnail paths back to the catalog.
	SubjectPostProcessOut = "internal.api.images.process.out"

	// PostProcessQueueGroup load-balances consumers of the out subject.
	PostProcessQueueGroup = "process_images_out_queue"

	// PostProcessDurable is the durable consumer name on the out stream.
	PostProcessDurable = "api"

	// PostProcessMaxAge bounds how long unconsumed post-process messages live.
	PostProcessMaxAge = 10 * time.Minute
)

// # Redis Prefixes (Checkpoint Taxonomy)

const (
	RedisPrefixIngestCheckpoint = "ingest:last:"
)
