package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kedorion/careers-api/internal/config"
	"go.uber.org/zap"
)

// Storage defines the interface for resume storage operations. Save returns
// the sanitized name the file was stored under.
type Storage interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

// NewStorage creates a new storage instance based on configuration.
// For local mode, resumes are stored on the local filesystem.
// For cloud/azure mode, resumes are stored in Azure Blob Storage.
func NewStorage(cfg *config.StorageConfig, logger *zap.Logger) (Storage, error) {
	switch cfg.Mode {
	case "local":
		return NewLocalStorage(cfg.UploadDir)
	case "cloud", "azure":
		if cfg.CloudConnectionString == "" {
			return nil, fmt.Errorf("cloud connection string required for azure storage")
		}
		return NewAzureBlobStorage(cfg.CloudConnectionString, cfg.CloudContainer, logger)
	default:
		return nil, fmt.Errorf("unsupported storage mode: %s", cfg.Mode)
	}
}

// LocalStorage implements Storage for the local filesystem. Files are kept
// under their sanitized original basename inside a fixed upload directory;
// a second upload with the same name overwrites the first.
type LocalStorage struct {
	uploadDir string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(uploadDir string) (*LocalStorage, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &LocalStorage{
		uploadDir: uploadDir,
	}, nil
}

// Save writes the resume bytes under the sanitized basename of filename
func (s *LocalStorage) Save(ctx context.Context, filename string, data []byte) (string, error) {
	safeName := SanitizeFilename(filename)
	fullPath := filepath.Join(s.uploadDir, safeName)

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write resume file: %w", err)
	}

	return safeName, nil
}

// SanitizeFilename strips any directory components from an uploaded
// filename, leaving the bare basename. Both separator styles are handled
// since browsers on some platforms submit full client-side paths.
func SanitizeFilename(filename string) string {
	return filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
}
