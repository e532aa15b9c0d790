package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

// PhotoStorage keeps uploaded images on the local filesystem, one
// directory per job.
type PhotoStorage struct {
	rootPath       string
	maxUploadBytes int64
}

func NewPhotoStorage(rootPath string, maxUploadMB int64) (*PhotoStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root %s: %w", rootPath, err)
	}
	return &PhotoStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Save writes the upload and returns its relative path together with the
// detected content type. Anything that is not an image is rejected.
func (s *PhotoStorage) Save(ctx context.Context, jobID uuid.UUID, originalName string, r io.Reader) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	// Sniff the real type from the leading bytes, the extension lies.
	head := make([]byte, 261)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", "", fmt.Errorf("storage: read upload: %w", err)
	}
	head = head[:n]

	kind, err := filetype.Match(head)
	if err != nil {
		return "", "", fmt.Errorf("storage: detect file type: %w", err)
	}
	if !filetype.IsImage(head) {
		return "", "", ErrNotAnImage
	}

	safeName := sanitizeFilename(originalName)
	fileName := fmt.Sprintf("%d%s", time.Now().UnixNano(), filepath.Ext(safeName))

	jobDir := filepath.Join(s.rootPath, jobID.String())
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return "", "", fmt.Errorf("storage: create job dir: %w", err)
	}

	targetPath := filepath.Join(jobDir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", "", fmt.Errorf("storage: create file: %w", err)
	}
	defer f.Close()

	limited := io.LimitedReader{R: io.MultiReader(bytes.NewReader(head), r), N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limited)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", "", fmt.Errorf("storage: write file: %w", err)
	}
	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return "", "", ErrTooLarge
	}

	if err := f.Close(); err != nil {
		return "", "", fmt.Errorf("storage: close file: %w", err)
	}
	if err := os.Rename(tempPath, targetPath); err != nil {
		return "", "", fmt.Errorf("storage: rename file: %w", err)
	}

	return filepath.Join(jobID.String(), fileName), kind.MIME.Value, nil
}

// Open returns a reader for a stored image.
func (s *PhotoStorage) Open(ctx context.Context, relativePath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.rootPath, filepath.Clean(relativePath)))
	if err != nil {
		return nil, fmt.Errorf("storage: open file: %w", err)
	}
	return f, nil
}

// Delete removes a stored image; a missing file is fine.
func (s *PhotoStorage) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := filepath.Join(s.rootPath, relativePath)
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete file: %w", err)
	}
	return nil
}

var (
	ErrNotAnImage = fmt.Errorf("storage: file is not an image")
	ErrTooLarge   = fmt.Errorf("storage: file exceeds the upload limit")
)

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "photo"
	}
	return name
}
