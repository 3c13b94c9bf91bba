package container

import (
	"fmt"
	"net/http"

	"github.com/anime-shed/asl-inspector-go/internal/analyzer"
	"github.com/anime-shed/asl-inspector-go/internal/classifier"
	"github.com/anime-shed/asl-inspector-go/internal/config"
	"github.com/anime-shed/asl-inspector-go/internal/factory"
	"github.com/anime-shed/asl-inspector-go/internal/logger"
	"github.com/anime-shed/asl-inspector-go/internal/observer"
	"github.com/anime-shed/asl-inspector-go/internal/repository"
	"github.com/anime-shed/asl-inspector-go/internal/service"
	"github.com/anime-shed/asl-inspector-go/internal/storage"
	"github.com/anime-shed/asl-inspector-go/internal/transport"
	"github.com/anime-shed/asl-inspector-go/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config                *config.Config
	extractor             analyzer.AngleExtractor
	workerPool            *analyzer.WorkerPool
	metrics               *observer.MetricsObserver
	imageRepository       repository.ImageRepository
	classificationService service.ClassificationService
	handler               http.Handler
}

// NewContainer builds the dependency graph from cfg and starts the worker pool
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	fetcherConfig := storage.HTTPFetcherConfig{
		Timeout:  cfg.ImageFetchTimeout,
		MaxBytes: cfg.MaxRequestBodySize,
		Backoff:  storage.DefaultHTTPFetcherConfig().Backoff,
	}
	components := factory.NewComponentFactory(analyzer.DefaultOptions(), factory.StorageSettings{
		HTTP:         fetcherConfig,
		AzureAccount: cfg.AzureStorageAccount,
		AzureKey:     cfg.AzureStorageKey,
	})

	extractor, err := components.ExtractorFactory.CreateExtractor(factory.ExtractorBackend(cfg.ExtractorBackend))
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	imageRepository, err := newImageRepository(cfg, components.StorageFactory)
	if err != nil {
		return nil, err
	}

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	workerPool := analyzer.NewWorkerPool(cfg.BatchWorkers)
	workerPool.Start()

	classificationService := service.NewClassificationService(
		imageRepository,
		extractor,
		classifier.New(),
		workerPool,
		events,
		service.Settings{
			AnalysisTimeout: cfg.AnalysisTimeout,
			FetchTimeout:    cfg.ImageFetchTimeout,
		},
	)
	handler := transport.NewHandler(classificationService, metrics, workerPool, cfg)

	return &Container{
		config:                cfg,
		extractor:             extractor,
		workerPool:            workerPool,
		metrics:               metrics,
		imageRepository:       imageRepository,
		classificationService: classificationService,
		handler:               handler,
	}, nil
}

func newImageRepository(cfg *config.Config, storageFactory factory.StorageFactory) (repository.ImageRepository, error) {
	httpFetcher, err := storageFactory.CreateStorage(factory.HTTPStorage)
	if err != nil {
		return nil, fmt.Errorf("failed to create http storage: %w", err)
	}

	var blob repository.BlobSource
	if cfg.AzureEnabled() {
		fetcher, err := storageFactory.CreateStorage(factory.AzureStorage)
		if err != nil {
			return nil, fmt.Errorf("failed to create azure storage: %w", err)
		}
		source, ok := fetcher.(repository.BlobSource)
		if !ok {
			return nil, fmt.Errorf("azure storage does not report its account")
		}
		blob = source
		logger.WithField("account", source.Account()).Info("Azure Blob Storage enabled")
	}

	return repository.NewImageRepository(validation.NewURLValidator(), httpFetcher, blob), nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the classification service
func (c *Container) Service() service.ClassificationService {
	return c.classificationService
}

// Close stops the worker pool
func (c *Container) Close() {
	c.workerPool.Close()
}
