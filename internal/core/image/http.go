// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/komikan/internal/platform/postgres"
	requestutil "github.com/taibuivan/komikan/internal/platform/request"
	"github.com/taibuivan/komikan/internal/platform/respond"
)

// Handler implements the editorial HTTP layer for staged image uploads.
//
// Uploads are a two-step flow: the raw bytes are staged here, then the
// returned image id is attached through the translation endpoints.
type Handler struct {
	service *Service
	db      postgres.Querier
}

func NewHandler(service *Service, db postgres.Querier) *Handler {
	return &Handler{service: service, db: db}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/", handler.uploadImage)
	router.Get("/{id}", handler.getImage)
}

// uploadImage stages the raw request body. The optional ext query parameter
// hints the temp file's extension; the real format comes from sniffing.
func (handler *Handler) uploadImage(writer http.ResponseWriter, request *http.Request) {
	defer request.Body.Close()

	staged, err := handler.service.Upload(request.Context(), handler.db, request.Body, request.URL.Query().Get("ext"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, staged)
}

func (handler *Handler) getImage(writer http.ResponseWriter, request *http.Request) {
	imageID, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	img, err := handler.service.Get(request.Context(), handler.db, imageID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, img)
}
