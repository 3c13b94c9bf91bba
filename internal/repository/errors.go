package repository

import "errors"

var (
	// ErrInvalidImageURL indicates an invalid image URL
	ErrInvalidImageURL = errors.New("invalid image URL")

	// ErrRepositoryUnavailable indicates no fetcher can serve the URL
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
