package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	apperrors "github.com/anime-shed/asl-inspector-go/internal/errors"
	"github.com/anime-shed/asl-inspector-go/internal/storage"
	"github.com/anime-shed/asl-inspector-go/pkg/validation"
)

// BlobSource is an ImageFetcher bound to one Azure Storage account
type BlobSource interface {
	storage.ImageFetcher
	Account() string
}

// RoutingImageRepository implements ImageRepository. Blob URLs of the
// configured storage account go through the Azure client, everything
// else through plain HTTP.
type RoutingImageRepository struct {
	validator *validation.URLValidator
	http      storage.ImageFetcher
	blob      BlobSource // nil when Azure is not configured
}

// NewImageRepository creates a repository. blob may be nil.
func NewImageRepository(validator *validation.URLValidator, http storage.ImageFetcher, blob BlobSource) *RoutingImageRepository {
	if validator == nil {
		validator = validation.NewURLValidator()
	}
	return &RoutingImageRepository{
		validator: validator,
		http:      http,
		blob:      blob,
	}
}

// ValidateImageURL validates if the provided URL is acceptable
func (r *RoutingImageRepository) ValidateImageURL(imageURL string) error {
	return r.validator.ValidateImageURL(imageURL)
}

// FetchImage retrieves an image from a URL. Fetch failures are returned as
// AppErrors so the transport layer can map them to status codes.
func (r *RoutingImageRepository) FetchImage(ctx context.Context, imageURL string) (*FetchedImage, error) {
	u, err := r.validator.Parse(imageURL)
	if err != nil {
		return nil, err
	}
	target := u.String()

	fetcher, source := r.route(u)
	if fetcher == nil {
		return nil, apperrors.NewInternalError("No image source configured", ErrRepositoryUnavailable)
	}

	data, err := fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, classifyFetchError(ctx, err)
	}
	return &FetchedImage{URL: target, Source: source, Data: data}, nil
}

func (r *RoutingImageRepository) route(u *url.URL) (storage.ImageFetcher, string) {
	if r.blob != nil {
		if account, ok := validation.AzureBlobAccount(u); ok && account == r.blob.Account() {
			return r.blob, SourceAzure
		}
	}
	return r.http, SourceHTTP
}

func classifyFetchError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperrors.NewTimeoutError("Image fetch timed out", err)
	case errors.Is(err, storage.ErrImageNotFound):
		return apperrors.NewNotFoundError("Image not found", err)
	case errors.Is(err, storage.ErrImageTooLarge):
		return apperrors.NewValidationError("Image exceeds size limit", err)
	default:
		return apperrors.NewNetworkError(fmt.Sprintf("Failed to fetch image: %v", err), err)
	}
}
