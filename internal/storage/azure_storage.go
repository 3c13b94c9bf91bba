package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// BlobFetcher downloads images from one Azure Storage account with a
// shared key. It implements ImageFetcher for blob URLs of that account.
type BlobFetcher struct {
	client   *azblob.Client
	account  string
	maxBytes int64
}

// NewAzureBlobFetcher creates a fetcher for accountName
func NewAzureBlobFetcher(accountName, accountKey string, maxBytes int64) (*BlobFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid storage credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net/", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	if maxBytes <= 0 {
		maxBytes = DefaultHTTPFetcherConfig().MaxBytes
	}
	return &BlobFetcher{client: client, account: strings.ToLower(accountName), maxBytes: maxBytes}, nil
}

// Account returns the storage account this fetcher reads from
func (s *BlobFetcher) Account() string {
	return s.account
}

// Fetch downloads the blob addressed by blobURL, for example
// https://account.blob.core.windows.net/gestures/hand.png
func (s *BlobFetcher) Fetch(ctx context.Context, blobURL string) ([]byte, error) {
	container, blob, err := ParseBlobURL(blobURL)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, container, blob, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound, bloberror.ResourceNotFound) {
			return nil, fmt.Errorf("blob %s/%s: %w", container, blob, ErrImageNotFound)
		}
		return nil, fmt.Errorf("download failed: %w", err)
	}
	if resp.ContentLength != nil && *resp.ContentLength > s.maxBytes {
		resp.Body.Close()
		return nil, ErrImageTooLarge
	}

	body := resp.NewRetryReader(ctx, nil)
	defer body.Close()
	return readLimited(body, s.maxBytes)
}

// ParseBlobURL splits a blob URL into its container and blob names
func ParseBlobURL(blobURL string) (container, blob string, err error) {
	parts, err := azblob.ParseURL(blobURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid blob URL: %w", err)
	}
	if parts.ContainerName == "" || parts.BlobName == "" {
		return "", "", fmt.Errorf("invalid blob URL: %q must name a container and a blob", blobURL)
	}
	return parts.ContainerName, parts.BlobName, nil
}
