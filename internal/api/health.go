// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"

	"github.com/taibuivan/komikan/internal/platform/constants"
	"github.com/taibuivan/komikan/internal/platform/postgres"
	"github.com/taibuivan/komikan/internal/platform/redis"
	"github.com/taibuivan/komikan/internal/platform/respond"
)

// healthStatus is the readiness report, one entry per dependency.
type healthStatus struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// handleHealth is the liveness probe: the process is up and serving.
func (server *Server) handleHealth(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, healthStatus{
		Status:  "ok",
		Version: constants.AppVersion,
	})
}

// handleReady is the readiness probe: every dependency answers.
func (server *Server) handleReady(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()
	dependencies := map[string]string{
		"postgres": "ok",
		"redis":    "ok",
		"nats":     "ok",
	}
	healthy := true

	if err := postgres.Ping(ctx, server.pool); err != nil {
		dependencies["postgres"] = err.Error()
		healthy = false
	}
	if err := redis.Ping(ctx, server.redis); err != nil {
		dependencies["redis"] = err.Error()
		healthy = false
	}
	if err := server.bus.Ping(); err != nil {
		dependencies["nats"] = err.Error()
		healthy = false
	}

	status := healthStatus{
		Status:       "ready",
		Version:      constants.AppVersion,
		Dependencies: dependencies,
	}

	if !healthy {
		status.Status = "degraded"
		respond.JSON(writer, http.StatusServiceUnavailable, status)
		return
	}

	respond.OK(writer, status)
}
