package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"go.uber.org/zap"
)

// AzureBlobStorage implements Storage for Azure Blob Storage. Blobs are
// named by the sanitized original filename, matching the local mode's
// overwrite-on-collision semantics.
type AzureBlobStorage struct {
	client        *azblob.Client
	containerName string
	logger        *zap.Logger
}

// NewAzureBlobStorage creates a new Azure Blob Storage instance
func NewAzureBlobStorage(connectionString, containerName string, logger *zap.Logger) (*AzureBlobStorage, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	// Ensure container exists
	_, err = client.CreateContainer(context.Background(), containerName, nil)
	if err != nil && !strings.Contains(err.Error(), "ContainerAlreadyExists") {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	logger.Info("Azure Blob Storage initialized",
		zap.String("container", containerName),
	)

	return &AzureBlobStorage{
		client:        client,
		containerName: containerName,
		logger:        logger,
	}, nil
}

// Save uploads the resume bytes as a blob named by the sanitized filename
func (s *AzureBlobStorage) Save(ctx context.Context, filename string, data []byte) (string, error) {
	safeName := SanitizeFilename(filename)

	_, err := s.client.UploadStream(ctx, s.containerName, safeName, bytes.NewReader(data), nil)
	if err != nil {
		return "", fmt.Errorf("failed to upload blob: %w", err)
	}

	s.logger.Info("Resume uploaded to Azure Blob Storage",
		zap.String("blobName", safeName),
		zap.String("container", s.containerName),
		zap.Int("size", len(data)),
	)

	return safeName, nil
}
