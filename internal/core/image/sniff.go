// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"fmt"
	stdimage "image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/gabriel-vasile/mimetype"
)

// formatByMIME maps detected MIME types to the catalog's format names.
var formatByMIME = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// SniffMeta detects the format, size, and pixel dimensions of a file on
// disk. Content sniffing decides the format; the file extension is ignored.
func SniffMeta(path string) (Meta, error) {
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return Meta{}, fmt.Errorf("image: detecting format of %s: %w", path, err)
	}

	format, supported := formatByMIME[mime.String()]
	if !supported {
		return Meta{}, ErrUnsupportedFormat
	}

	info, err := os.Stat(path)
	if err != nil {
		return Meta{}, fmt.Errorf("image: stat %s: %w", path, err)
	}

	file, err := os.Open(path)
	if err != nil {
		return Meta{}, fmt.Errorf("image: opening %s: %w", path, err)
	}
	defer file.Close()

	config, _, err := stdimage.DecodeConfig(file)
	if err != nil {
		return Meta{}, fmt.Errorf("image: decoding dimensions of %s: %w", path, err)
	}

	return Meta{
		Format: format,
		Size:   info.Size(),
		Width:  config.Width,
		Height: config.Height,
	}, nil
}
