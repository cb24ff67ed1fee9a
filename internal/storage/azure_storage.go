package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureBlobFetcher reads catalog documents from Azure Blob Storage.
// Locations have the form "container/path/to/blob.yaml".
type AzureBlobFetcher struct {
	client *azblob.Client
}

// NewAzureBlobFetcher authenticates with a shared account key.
func NewAzureBlobFetcher(accountName, accountKey string) (*AzureBlobFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net/", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure blob client: %w", err)
	}

	return &AzureBlobFetcher{client: client}, nil
}

func (s *AzureBlobFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	containerName, blobName, err := splitBlobLocation(location)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	return readDocument(resp.Body)
}

func splitBlobLocation(location string) (string, string, error) {
	containerName, blobName, ok := strings.Cut(strings.TrimPrefix(location, "/"), "/")
	if !ok || containerName == "" || blobName == "" {
		return "", "", fmt.Errorf("invalid blob location %q: expected container/blob", location)
	}
	return containerName, blobName, nil
}
