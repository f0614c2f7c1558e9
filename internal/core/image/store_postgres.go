// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/komikan/internal/platform/database/schema"
	"github.com/taibuivan/komikan/internal/platform/dberr"
	"github.com/taibuivan/komikan/internal/platform/postgres"
)

type PostgresRepository struct{}

func NewPostgresRepository() *PostgresRepository {
	return &PostgresRepository{}
}

var columns = fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
	schema.Images.ID, schema.Images.TempImageID, schema.Images.EntityType, schema.Images.EntityID,
	schema.Images.ImagePath, schema.Images.ConvertedPath, schema.Images.ThumbnailPath,
	schema.Images.Format, schema.Images.Size, schema.Images.Width, schema.Images.Height,
	schema.Images.IsDeleted, schema.Images.CreatedAt, schema.Images.UpdatedAt,
)

func scanImage(row pgx.Row) (*Image, error) {
	img := &Image{}
	err := row.Scan(
		&img.ID, &img.TempImageID, &img.EntityType, &img.EntityID,
		&img.ImagePath, &img.ConvertedPath, &img.ThumbnailPath,
		&img.Format, &img.Size, &img.Width, &img.Height,
		&img.IsDeleted, &img.CreatedAt, &img.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, dberr.Wrap(err, "scan_image")
	}
	return img, nil
}

func (repository *PostgresRepository) CreateStaged(context context.Context, db postgres.Querier, tempImageID string, meta Meta) (*Image, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`,
		schema.Images.Table,
		schema.Images.TempImageID, schema.Images.Format, schema.Images.Size,
		schema.Images.Width, schema.Images.Height,
		columns,
	)

	return scanImage(db.QueryRow(context, query, tempImageID, meta.Format, meta.Size, meta.Width, meta.Height))
}

func (repository *PostgresRepository) GetByID(context context.Context, db postgres.Querier, id int64) (*Image, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = false`,
		columns, schema.Images.Table, schema.Images.ID, schema.Images.IsDeleted)

	return scanImage(db.QueryRow(context, query, id))
}

func (repository *PostgresRepository) GetForUpdate(context context.Context, db postgres.Querier, id int64) (*Image, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = false FOR UPDATE`,
		columns, schema.Images.Table, schema.Images.ID, schema.Images.IsDeleted)

	return scanImage(db.QueryRow(context, query, id))
}

func (repository *PostgresRepository) Attach(context context.Context, db postgres.Querier, id int64, entityID int64, imagePath string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = NULL, %s = $1, %s = $2, %s = $3, %s = NOW()
		WHERE %s = $4
	`,
		schema.Images.Table,
		schema.Images.TempImageID, schema.Images.EntityType, schema.Images.EntityID,
		schema.Images.ImagePath, schema.Images.UpdatedAt,
		schema.Images.ID,
	)

	tag, err := db.Exec(context, query, EntityTypeTranslation, entityID, imagePath, id)
	if err != nil {
		return dberr.Wrap(err, "attach_image")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (repository *PostgresRepository) UpdatePath(context context.Context, db postgres.Querier, id int64, imagePath string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = NOW() WHERE %s = $2`,
		schema.Images.Table, schema.Images.ImagePath, schema.Images.UpdatedAt, schema.Images.ID)

	tag, err := db.Exec(context, query, imagePath, id)
	if err != nil {
		return dberr.Wrap(err, "update_image_path")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (repository *PostgresRepository) SoftDelete(context context.Context, db postgres.Querier, id int64) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = true, %s = NOW() WHERE %s = $1 AND %s = false`,
		schema.Images.Table, schema.Images.IsDeleted, schema.Images.UpdatedAt,
		schema.Images.ID, schema.Images.IsDeleted)

	tag, err := db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "soft_delete_image")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (repository *PostgresRepository) SetDerivedPaths(context context.Context, db postgres.Querier, id int64, convertedPath, thumbnailPath string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $1, %s = $2, %s = NOW()
		WHERE %s = $3 AND (%s IS DISTINCT FROM $1 OR %s IS DISTINCT FROM $2)
	`,
		schema.Images.Table,
		schema.Images.ConvertedPath, schema.Images.ThumbnailPath, schema.Images.UpdatedAt,
		schema.Images.ID, schema.Images.ConvertedPath, schema.Images.ThumbnailPath)

	tag, err := db.Exec(context, query, convertedPath, thumbnailPath, id)
	if err != nil {
		return dberr.Wrap(err, "set_derived_paths")
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// A zero-row update is either a redelivered message carrying paths the
	// row already holds or a row that does not exist. Only the missing row
	// is an error.
	exists := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		schema.Images.Table, schema.Images.ID)

	var found bool
	if err := db.QueryRow(context, exists, id).Scan(&found); err != nil {
		return dberr.Wrap(err, "set_derived_paths_exists")
	}
	if !found {
		return ErrNotFound
	}

	return nil
}

func (repository *PostgresRepository) ListByTranslations(context context.Context, db postgres.Querier, translationIDs []int64) ([]*Image, error) {
	if len(translationIDs) == 0 {
		return []*Image{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND %s = ANY($2) AND %s = false
		ORDER BY %s ASC
	`,
		columns, schema.Images.Table,
		schema.Images.EntityType, schema.Images.EntityID, schema.Images.IsDeleted,
		schema.Images.ID,
	)

	rows, err := db.Query(context, query, EntityTypeTranslation, translationIDs)
	if err != nil {
		return nil, dberr.Wrap(err, "list_images_by_translations")
	}
	defer rows.Close()

	images := make([]*Image, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	return images, rows.Err()
}