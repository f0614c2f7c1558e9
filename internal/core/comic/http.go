// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/komikan/internal/platform/request"
	"github.com/taibuivan/komikan/internal/platform/respond"
	"github.com/taibuivan/komikan/pkg/pagination"
)

// Handler implements the editorial HTTP layer for the comic aggregate.
// It translates web requests into domain service calls.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listComics)
	router.Get("/{identifier}", handler.getComic)
	router.Post("/", handler.createComic)
	router.Put("/{identifier}", handler.updateComic)
	router.Delete("/{identifier}", handler.deleteComic)
}

/*
GET /comics.

Description: Retrieves a paginated list of comics. The title and image of
each row come from the published translation in the requested language.

Request:
  - q: string (Full-text search against the searchable text)
  - lang: string (Search language, defaults to the original)
  - date_start, date_end: string (YYYY-MM-DD, inclusive)
  - tags: []string (Tag slugs)
  - combine: string (and, or; defaults to or)
  - sort: string (asc, desc; orders by issue number)
  - page, limit: int

Response:
  - 200: []Compact with pagination metadata
*/
func (handler *Handler) listComics(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		SearchQuery:    queryParams.Get("q"),
		SearchLanguage: queryParams.Get("lang"),
		TagSlugs:       queryParams["tags"],
		SortDesc:       queryParams.Get("sort") == "desc",
	}
	if queryParams.Get("combine") == "and" {
		filter.TagCombination = TagCombinationAnd
	}
	if start, err := time.Parse("2006-01-02", queryParams.Get("date_start")); err == nil {
		filter.DateStart = &start
	}
	if end, err := time.Parse("2006-01-02", queryParams.Get("date_end")); err == nil {
		filter.DateEnd = &end
	}

	total, comics, err := handler.service.List(request.Context(), filter, paginationParams)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, comics, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, int(total)))
}

/*
GET /comics/{identifier}.

Description: Retrieves the hydrated aggregate by issue number or slug.
Numeric identifiers resolve to issue numbers; everything else is a slug.

Response:
  - 200: Comic
  - 404: COMIC_NOT_FOUND
*/
func (handler *Handler) getComic(writer http.ResponseWriter, request *http.Request) {
	identifier := requestutil.Param(request, "identifier")

	var (
		found *Comic
		err   error
	)
	if number, numErr := strconv.Atoi(identifier); numErr == nil {
		found, err = handler.service.GetByNumber(request.Context(), number)
	} else {
		found, err = handler.service.GetBySlug(request.Context(), identifier)
	}
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, found)
}

/*
POST /comics.

Description: Creates a comic together with its original translation, tag
links, and optionally an attachment of a previously staged image.

Response:
  - 201: Comic
  - 409: COMIC_NUMBER_EXISTS | EXTRA_COMIC_TITLE_EXISTS
*/
func (handler *Handler) createComic(writer http.ResponseWriter, request *http.Request) {
	var input CreateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.CreateComic(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, created)
}

/*
PUT /comics/{identifier}.

Description: Fully rewrites the aggregate. A changed number or title
relocates the attached image file to its recomputed path.
*/
func (handler *Handler) updateComic(writer http.ResponseWriter, request *http.Request) {
	comicID, err := handler.resolveID(writer, request)
	if err != nil {
		return
	}

	var input UpdateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	// The stored path is recomputed downstream; the move is a no-op when
	// number and title are unchanged.
	input.NeedsImageMove = true

	updated, err := handler.service.UpdateComic(request.Context(), comicID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}

func (handler *Handler) deleteComic(writer http.ResponseWriter, request *http.Request) {
	comicID, err := handler.resolveID(writer, request)
	if err != nil {
		return
	}

	if err := handler.service.DeleteComic(request.Context(), comicID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// resolveID maps the identifier parameter to the comic's database id,
// writing the error response itself on failure.
func (handler *Handler) resolveID(writer http.ResponseWriter, request *http.Request) (int64, error) {
	identifier := requestutil.Param(request, "identifier")

	var (
		found *Comic
		err   error
	)
	if number, numErr := strconv.Atoi(identifier); numErr == nil {
		found, err = handler.service.GetByNumber(request.Context(), number)
	} else {
		found, err = handler.service.GetBySlug(request.Context(), identifier)
	}
	if err != nil {
		respond.Error(writer, request, err)
		return 0, err
	}
	return found.ID, nil
}
