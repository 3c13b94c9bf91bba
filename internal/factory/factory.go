package factory

import (
	"fmt"

	"github.com/anime-shed/asl-inspector-go/internal/analyzer"
	"github.com/anime-shed/asl-inspector-go/internal/storage"
)

// ExtractorBackend selects the angle extraction implementation
type ExtractorBackend string

const (
	// NativeBackend is the pure Go pipeline
	NativeBackend ExtractorBackend = analyzer.BackendNative
	// OpenCVBackend requires a binary built with -tags opencv
	OpenCVBackend ExtractorBackend = analyzer.BackendOpenCV
)

// StorageType represents different types of image sources
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
)

// ExtractorFactory creates angle extractors
type ExtractorFactory interface {
	CreateExtractor(backend ExtractorBackend) (analyzer.AngleExtractor, error)
}

// StorageFactory creates image fetchers
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageFetcher, error)
}

// extractorFactory implements ExtractorFactory
type extractorFactory struct {
	options analyzer.ExtractionOptions
}

// NewExtractorFactory creates a factory whose extractors share options
func NewExtractorFactory(options analyzer.ExtractionOptions) ExtractorFactory {
	return &extractorFactory{options: options}
}

// CreateExtractor creates an extractor for the requested backend
func (f *extractorFactory) CreateExtractor(backend ExtractorBackend) (analyzer.AngleExtractor, error) {
	switch backend {
	case NativeBackend, "":
		return analyzer.NewAngleExtractor(f.options), nil
	case OpenCVBackend:
		return analyzer.NewOpenCVExtractor(f.options)
	default:
		return nil, fmt.Errorf("unsupported extractor backend: %s", backend)
	}
}

// StorageSettings configures the fetchers built by StorageFactory
type StorageSettings struct {
	HTTP         storage.HTTPFetcherConfig
	AzureAccount string
	AzureKey     string
}

// storageFactory implements StorageFactory
type storageFactory struct {
	settings StorageSettings
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(settings StorageSettings) StorageFactory {
	return &storageFactory{settings: settings}
}

// CreateStorage creates a fetcher based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPImageFetcher(f.settings.HTTP), nil
	case AzureStorage:
		if f.settings.AzureAccount == "" || f.settings.AzureKey == "" {
			return nil, fmt.Errorf("azure storage requires an account name and key")
		}
		blob, err := storage.NewAzureBlobFetcher(f.settings.AzureAccount, f.settings.AzureKey, f.settings.HTTP.MaxBytes)
		if err != nil {
			return nil, err
		}
		return blob, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	ExtractorFactory ExtractorFactory
	StorageFactory   StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(options analyzer.ExtractionOptions, settings StorageSettings) *ComponentFactory {
	return &ComponentFactory{
		ExtractorFactory: NewExtractorFactory(options),
		StorageFactory:   NewStorageFactory(settings),
	}
}
