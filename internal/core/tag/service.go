// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"context"
	"log/slog"

	"github.com/taibuivan/komikan/internal/platform/validate"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// EnsureTags creates the missing tags for names and returns the full set.
func (service *Service) EnsureTags(context context.Context, names []string, fromExplain bool) ([]*Tag, error) {
	tags, err := service.repo.CreateMany(context, names, fromExplain)
	if err != nil {
		return nil, err
	}

	service.logger.Debug("tags ensured", slog.Int("requested", len(names)), slog.Int("resolved", len(tags)))
	return tags, nil
}

func (service *Service) ListTags(context context.Context) ([]*Tag, error) {
	return service.repo.ListTags(context)
}

func (service *Service) GetTag(context context.Context, id int64) (*Tag, error) {
	return service.repo.GetTagByID(context, id)
}

func (service *Service) GetTagBySlug(context context.Context, slug string) (*Tag, error) {
	return service.repo.GetTagBySlug(context, slug)
}

func (service *Service) UpdateTag(context context.Context, id int64, request UpdateRequest) (*Tag, error) {
	if request.Name != nil {
		v := &validate.Validator{}
		v.Required("name", *request.Name).MaxLen("name", *request.Name, 100)
		if err := v.Err(); err != nil {
			return nil, err
		}
	}
	return service.repo.Update(context, id, request)
}

func (service *Service) DeleteTag(context context.Context, id int64) error {
	return service.repo.Delete(context, id)
}