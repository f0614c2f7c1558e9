// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// ImagesTable represents the 'images' table
type ImagesTable struct {
	Table         string
	ID            string
	TempImageID   string
	EntityType    string
	EntityID      string
	ImagePath     string
	ConvertedPath string
	ThumbnailPath string
	Format        string
	Size          string
	Width         string
	Height        string
	IsDeleted     string
	CreatedAt     string
	UpdatedAt     string
}

// Images is the schema definition for images
var Images = ImagesTable{
	Table:         "images",
	ID:            "image_id",
	TempImageID:   "temp_image_id",
	EntityType:    "entity_type",
	EntityID:      "entity_id",
	ImagePath:     "image_path",
	ConvertedPath: "converted_path",
	ThumbnailPath: "thumbnail_path",
	Format:        "format",
	Size:          "size",
	Width:         "width",
	Height:        "height",
	IsDeleted:     "is_deleted",
	CreatedAt:     "created_at",
	UpdatedAt:     "updated_at",
}

func (t ImagesTable) Columns() []string {
	return []string{
		t.ID, t.TempImageID, t.EntityType, t.EntityID, t.ImagePath,
		t.ConvertedPath, t.ThumbnailPath, t.Format, t.Size, t.Width,
		t.Height, t.IsDeleted, t.CreatedAt, t.UpdatedAt,
	}
}