package repository

import (
	"context"
)

// ImageRepository defines the interface for fetching images to classify
type ImageRepository interface {
	// FetchImage validates imageURL and downloads the raw image bytes
	FetchImage(ctx context.Context, imageURL string) (*FetchedImage, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error
}

// FetchedImage is a downloaded image and where it came from
type FetchedImage struct {
	URL    string
	Source string // "http" or "azure"
	Data   []byte
}

// Sources reported in FetchedImage.Source
const (
	SourceHTTP  = "http"
	SourceAzure = "azure"
)
