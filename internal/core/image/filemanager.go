// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/taibuivan/komikan/internal/platform/apperr"
	"github.com/taibuivan/komikan/pkg/uuidv7"
)

// FileManager performs the filesystem half of the image lifecycle. Only
// relative paths cross its API; the static root never leaks upward.
//
// Moves are atomic: content is renamed into place, never copied, and new
// files are written to a sibling temp name first.
type FileManager struct {
	staticRoot string
	tempDir    string
}

func NewFileManager(staticRoot, tempDir string) (*FileManager, error) {
	if err := os.MkdirAll(filepath.Join(staticRoot, tempDir), 0o755); err != nil {
		return nil, fmt.Errorf("image: creating temp directory: %w", err)
	}

	return &FileManager{staticRoot: staticRoot, tempDir: tempDir}, nil
}

// SaveTemp streams content into a fresh temp file, capped at maxBytes.
// It returns the temp file name (the staged image id).
func (manager *FileManager) SaveTemp(content io.Reader, ext string, maxBytes int64) (string, int64, error) {
	tempName := uuidv7.New()
	if ext != "" {
		tempName += "." + strings.TrimPrefix(ext, ".")
	}

	path := manager.tempPath(tempName)

	file, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("image: creating temp file: %w", err)
	}

	written, err := io.Copy(file, io.LimitReader(content, maxBytes+1))
	closeErr := file.Close()

	switch {
	case err != nil:
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("image: writing temp file: %w", err)
	case closeErr != nil:
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("image: closing temp file: %w", closeErr)
	case written > maxBytes:
		_ = os.Remove(path)
		return "", 0, apperr.PayloadTooLarge(maxBytes)
	case written == 0:
		_ = os.Remove(path)
		return "", 0, apperr.Unprocessable("Upload is empty").WithCode("UPLOAD_EMPTY")
	}

	return tempName, written, nil
}

// OpenTemp opens a staged file for reading.
func (manager *FileManager) OpenTemp(tempName string) (*os.File, error) {
	return os.Open(manager.tempPath(tempName))
}

// MoveFromTemp renames a staged file to its final relative path, creating
// the target directory as needed.
func (manager *FileManager) MoveFromTemp(tempName, relPath string) error {
	target := filepath.Join(manager.staticRoot, filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("image: creating target directory: %w", err)
	}

	if err := os.Rename(manager.tempPath(tempName), target); err != nil {
		return fmt.Errorf("image: moving temp file into place: %w", err)
	}

	return nil
}

// Rename moves a file between two relative paths under the static root.
func (manager *FileManager) Rename(oldRel, newRel string) error {
	oldPath := filepath.Join(manager.staticRoot, filepath.FromSlash(oldRel))
	newPath := filepath.Join(manager.staticRoot, filepath.FromSlash(newRel))

	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return fmt.Errorf("image: creating target directory: %w", err)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("image: renaming %s: %w", oldRel, err)
	}

	return nil
}

// TempPath returns the absolute path of a staged file.
func (manager *FileManager) TempPath(tempName string) string {
	return manager.tempPath(tempName)
}

// RemoveTemp deletes a staged file. Missing files are tolerated.
func (manager *FileManager) RemoveTemp(tempName string) error {
	if err := os.Remove(manager.tempPath(tempName)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("image: removing temp file: %w", err)
	}
	return nil
}

func (manager *FileManager) tempPath(tempName string) string {
	return filepath.Join(manager.staticRoot, manager.tempDir, filepath.Base(tempName))
}
