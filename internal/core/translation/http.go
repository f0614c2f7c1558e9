// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package translation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/komikan/internal/platform/request"
	"github.com/taibuivan/komikan/internal/platform/respond"
)

// Handler implements the editorial HTTP layer for translations. Routes are
// mounted twice: comic-scoped for creation and lookup, id-scoped for edits.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterComicRoutes mounts the routes addressed by the owning comic.
func (handler *Handler) RegisterComicRoutes(router chi.Router) {
	router.Post("/{comicID}/translations", handler.createTranslation)
	router.Get("/{comicID}/translations/{language}", handler.getByLanguage)
	router.Put("/{comicID}/original", handler.updateOriginal)
}

// RegisterRoutes mounts the routes addressed by translation id.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/{id}", handler.getTranslation)
	router.Put("/{id}", handler.updateTranslation)
	router.Post("/{id}/publish", handler.publishDraft)
	router.Delete("/{id}", handler.deleteTranslation)
}

func (handler *Handler) createTranslation(writer http.ResponseWriter, request *http.Request) {
	comicID, err := requestutil.Int64Param(request, "comicID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Request
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.CreateTranslation(request.Context(), comicID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, created)
}

func (handler *Handler) getTranslation(writer http.ResponseWriter, request *http.Request) {
	translationID, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	found, err := handler.service.GetTranslation(request.Context(), translationID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, found)
}

func (handler *Handler) getByLanguage(writer http.ResponseWriter, request *http.Request) {
	comicID, err := requestutil.Int64Param(request, "comicID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	found, err := handler.service.GetByLanguage(request.Context(), comicID, requestutil.Param(request, "language"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, found)
}

func (handler *Handler) updateTranslation(writer http.ResponseWriter, request *http.Request) {
	translationID, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Request
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.UpdateTranslation(request.Context(), translationID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

func (handler *Handler) updateOriginal(writer http.ResponseWriter, request *http.Request) {
	comicID, err := requestutil.Int64Param(request, "comicID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Request
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.UpdateOriginal(request.Context(), comicID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

func (handler *Handler) publishDraft(writer http.ResponseWriter, request *http.Request) {
	translationID, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	promoted, err := handler.service.PublishDraft(request.Context(), translationID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, promoted)
}

func (handler *Handler) deleteTranslation(writer http.ResponseWriter, request *http.Request) {
	translationID, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteTranslation(request.Context(), translationID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
