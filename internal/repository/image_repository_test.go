package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "github.com/anime-shed/asl-inspector-go/internal/errors"
	"github.com/anime-shed/asl-inspector-go/internal/storage"
	"github.com/anime-shed/asl-inspector-go/pkg/validation"
)

type stubFetcher struct {
	account string
	data    []byte
	err     error
	calls   []string
}

func (s *stubFetcher) Fetch(ctx context.Context, imageURL string) ([]byte, error) {
	s.calls = append(s.calls, imageURL)
	return s.data, s.err
}

func (s *stubFetcher) Account() string {
	return s.account
}

func TestFetchImage_Routing(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		withBlob   bool
		wantSource string
	}{
		{"plain http", "https://example.com/hand.png", true, SourceHTTP},
		{"matching blob account", "https://acct.blob.core.windows.net/gestures/hand.png", true, SourceAzure},
		{"other blob account", "https://other.blob.core.windows.net/gestures/hand.png", true, SourceHTTP},
		{"blob without credentials", "https://acct.blob.core.windows.net/gestures/hand.png", false, SourceHTTP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpFetcher := &stubFetcher{data: []byte("http")}
			blobFetcher := &stubFetcher{account: "acct", data: []byte("blob")}

			var blob BlobSource
			if tt.withBlob {
				blob = blobFetcher
			}
			repo := NewImageRepository(nil, httpFetcher, blob)

			img, err := repo.FetchImage(context.Background(), tt.url)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if img.Source != tt.wantSource {
				t.Errorf("Expected source %q, got %q", tt.wantSource, img.Source)
			}
			if string(img.Data) != img.Source {
				t.Errorf("Expected data from the %s fetcher, got %q", img.Source, img.Data)
			}
		})
	}
}

func TestFetchImage_InvalidURL(t *testing.T) {
	httpFetcher := &stubFetcher{}
	repo := NewImageRepository(validation.NewURLValidator(), httpFetcher, nil)

	_, err := repo.FetchImage(context.Background(), "ftp://example.com/hand.png")
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if len(httpFetcher.calls) != 0 {
		t.Errorf("Expected no fetch for an invalid URL, got %v", httpFetcher.calls)
	}
}

func TestFetchImage_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType apperrors.ErrorType
		wantCode int
	}{
		{"not found", fmt.Errorf("client error: status code 404: %w", storage.ErrImageNotFound), apperrors.ErrorTypeNotFound, 404},
		{"too large", storage.ErrImageTooLarge, apperrors.ErrorTypeValidation, 400},
		{"deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded), apperrors.ErrorTypeTimeout, 504},
		{"network", errors.New("connection refused"), apperrors.ErrorTypeNetwork, 502},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewImageRepository(nil, &stubFetcher{err: tt.err}, nil)
			_, err := repo.FetchImage(context.Background(), "https://example.com/hand.png")
			if !apperrors.IsType(err, tt.wantType) {
				t.Errorf("Expected %s error, got %v", tt.wantType, err)
			}
			if code := apperrors.GetStatusCode(err); code != tt.wantCode {
				t.Errorf("Expected status %d, got %d", tt.wantCode, code)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("Expected the fetch error to stay in the chain, got %v", err)
			}
		})
	}
}

func TestFetchImage_ExpiredContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	repo := NewImageRepository(nil, &stubFetcher{err: errors.New("request aborted")}, nil)
	_, err := repo.FetchImage(ctx, "https://example.com/hand.png")
	if !apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
		t.Errorf("Expected timeout error, got %v", err)
	}
}

func TestFetchImage_NoFetcher(t *testing.T) {
	repo := NewImageRepository(nil, nil, nil)
	_, err := repo.FetchImage(context.Background(), "https://example.com/hand.png")
	if !errors.Is(err, ErrRepositoryUnavailable) {
		t.Errorf("Expected ErrRepositoryUnavailable, got %v", err)
	}
}
