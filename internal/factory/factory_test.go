package factory

import (
	"errors"
	"testing"

	"github.com/anime-shed/asl-inspector-go/internal/analyzer"
	"github.com/anime-shed/asl-inspector-go/internal/storage"
)

func TestCreateExtractor(t *testing.T) {
	f := NewExtractorFactory(analyzer.DefaultOptions())

	native, err := f.CreateExtractor(NativeBackend)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if native.Backend() != analyzer.BackendNative {
		t.Errorf("Expected native backend, got %q", native.Backend())
	}

	if _, err := f.CreateExtractor("tensorflow"); err == nil {
		t.Error("Expected an error for an unknown backend")
	}

	cv, err := f.CreateExtractor(OpenCVBackend)
	if analyzer.OpenCVAvailable {
		if err != nil || cv.Backend() != analyzer.BackendOpenCV {
			t.Errorf("Expected an OpenCV extractor, got %v, %v", cv, err)
		}
	} else if !errors.Is(err, analyzer.ErrOpenCVUnavailable) {
		t.Errorf("Expected ErrOpenCVUnavailable, got %v", err)
	}
}

func TestCreateStorage(t *testing.T) {
	f := NewStorageFactory(StorageSettings{HTTP: storage.DefaultHTTPFetcherConfig()})

	fetcher, err := f.CreateStorage(HTTPStorage)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := fetcher.(*storage.HTTPImageFetcher); !ok {
		t.Errorf("Expected *storage.HTTPImageFetcher, got %T", fetcher)
	}

	if _, err := f.CreateStorage(AzureStorage); err == nil {
		t.Error("Expected an error for azure storage without credentials")
	}
	if _, err := f.CreateStorage("ftp"); err == nil {
		t.Error("Expected an error for an unknown storage type")
	}
}

func TestCreateStorage_Azure(t *testing.T) {
	f := NewStorageFactory(StorageSettings{
		HTTP:         storage.DefaultHTTPFetcherConfig(),
		AzureAccount: "acct",
		AzureKey:     "a2V5",
	})

	fetcher, err := f.CreateStorage(AzureStorage)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	blob, ok := fetcher.(*storage.BlobFetcher)
	if !ok {
		t.Fatalf("Expected *storage.BlobFetcher, got %T", fetcher)
	}
	if blob.Account() != "acct" {
		t.Errorf("Expected account acct, got %q", blob.Account())
	}
}
