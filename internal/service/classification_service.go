package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anime-shed/asl-inspector-go/internal/analyzer"
	"github.com/anime-shed/asl-inspector-go/internal/classifier"
	apperrors "github.com/anime-shed/asl-inspector-go/internal/errors"
	"github.com/anime-shed/asl-inspector-go/internal/observer"
	"github.com/anime-shed/asl-inspector-go/internal/repository"
	"github.com/anime-shed/asl-inspector-go/pkg/models"
)

// Reasons reported when no angle could be produced
const (
	ReasonNoContour  = "No contour detected"
	ReasonDegenerate = "Degenerate contour geometry"
)

// ClassificationService defines the operations behind the HTTP surface and the CLI
type ClassificationService interface {
	// Classify runs an encoded image through the extractor and the letter classifier
	Classify(ctx context.Context, data []byte, opts ClassifyOptions) (*models.ClassificationResult, error)

	// ClassifyURL fetches an image and classifies it
	ClassifyURL(ctx context.Context, imageURL string, opts ClassifyOptions) (*models.ClassificationResult, error)

	// ClassifyBatch classifies every input independently on the worker pool.
	// Outcomes keep the order of inputs.
	ClassifyBatch(ctx context.Context, inputs []BatchInput, opts ClassifyOptions) []BatchOutcome

	// ValidateImageURL validates a URL without fetching it
	ValidateImageURL(imageURL string) error

	// Backend names the extractor in use
	Backend() string
}

// ClassifyOptions tunes a single call
type ClassifyOptions struct {
	RequestID string // generated when empty
	Source    string // file name or URL, reported back to the caller
	Detailed  bool   // include pipeline diagnostics
}

// BatchInput is one image of a batch
type BatchInput struct {
	Name string
	Data []byte
}

// BatchOutcome is the result or error for one BatchInput
type BatchOutcome struct {
	Name   string
	Result *models.ClassificationResult
	Err    error
}

// Settings holds the service timeouts
type Settings struct {
	AnalysisTimeout time.Duration
	FetchTimeout    time.Duration
}

// classificationService implements ClassificationService
type classificationService struct {
	imageRepo repository.ImageRepository
	extractor analyzer.AngleExtractor
	letters   *classifier.LetterClassifier
	pool      *analyzer.WorkerPool
	events    observer.Subject
	settings  Settings
}

// NewClassificationService creates a new classification service. The pool
// must already be started; repository may be nil when only uploads are used.
func NewClassificationService(
	imageRepository repository.ImageRepository,
	extractor analyzer.AngleExtractor,
	letters *classifier.LetterClassifier,
	pool *analyzer.WorkerPool,
	events observer.Subject,
	settings Settings,
) ClassificationService {
	if letters == nil {
		letters = classifier.New()
	}
	if events == nil {
		events = observer.NewEventPublisher()
	}
	return &classificationService{
		imageRepo: imageRepository,
		extractor: extractor,
		letters:   letters,
		pool:      pool,
		events:    events,
		settings:  settings,
	}
}

func (s *classificationService) Backend() string {
	return s.extractor.Backend()
}

func (s *classificationService) ValidateImageURL(imageURL string) error {
	if s.imageRepo == nil {
		return apperrors.NewInternalError("URL classification is not configured", repository.ErrRepositoryUnavailable)
	}
	return s.imageRepo.ValidateImageURL(imageURL)
}

// Classify extracts the orientation of data and maps it to a letter. A
// missing or degenerate contour is not an error: the result carries the
// unknown label and a Reason.
func (s *classificationService) Classify(ctx context.Context, data []byte, opts ClassifyOptions) (*models.ClassificationResult, error) {
	if opts.RequestID == "" {
		opts.RequestID = uuid.NewString()
	}
	start := time.Now()
	s.events.NotifyObservers(ctx, observer.ClassificationEvent{
		EventType: observer.ClassificationStarted,
		RequestID: opts.RequestID,
		Source:    opts.Source,
	})

	extraction, err := s.extract(ctx, data)
	elapsed := time.Since(start)

	result := &models.ClassificationResult{
		ID:                opts.RequestID,
		Source:            opts.Source,
		Timestamp:         start.UTC(),
		ProcessingTimeSec: elapsed.Seconds(),
		Orientation:       extraction.Orientation,
	}

	var degenerate *analyzer.DegenerateGeometryError
	switch {
	case err == nil:
	case errors.As(err, &degenerate):
		result.Orientation = models.Absent{}
		result.Reason = ReasonDegenerate
	default:
		appErr := s.mapError(err)
		s.events.NotifyObservers(ctx, observer.ClassificationEvent{
			EventType:      observer.ClassificationFailed,
			RequestID:      opts.RequestID,
			Source:         opts.Source,
			ProcessingTime: elapsed,
			ErrorMessage:   appErr.Error(),
		})
		return nil, appErr
	}

	if result.Orientation == nil {
		result.Orientation = models.Absent{}
	}
	if _, absent := result.Orientation.(models.Absent); absent && result.Reason == "" {
		result.Reason = ReasonNoContour
	}
	result.Label = s.letters.Classify(result.Orientation)
	if opts.Detailed {
		diagnostics := extraction.Diagnostics
		result.Diagnostics = &diagnostics
	}

	event := observer.ClassificationEvent{
		EventType:      observer.ClassificationCompleted,
		RequestID:      opts.RequestID,
		Source:         opts.Source,
		ProcessingTime: elapsed,
		Success:        true,
		Label:          result.Label,
		Metadata:       map[string]interface{}{"backend": s.extractor.Backend()},
	}
	if angle, ok := models.Degrees(result.Orientation); ok {
		event.Metadata["angle"] = angle
	} else {
		event.Absent = true
		event.Metadata["reason"] = result.Reason
	}
	s.events.NotifyObservers(ctx, event)

	return result, nil
}

// extract runs the extractor under the analysis timeout. The extractor does
// not observe ctx, so on timeout its goroutine finishes in the background.
func (s *classificationService) extract(ctx context.Context, data []byte) (analyzer.Extraction, error) {
	if s.settings.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.AnalysisTimeout)
		defer cancel()
	}

	type outcome struct {
		extraction analyzer.Extraction
		err        error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("extractor panicked: %v", r)}
			}
		}()
		extraction, err := s.extractor.ExtractAngle(data)
		done <- outcome{extraction: extraction, err: err}
	}()

	select {
	case o := <-done:
		return o.extraction, o.err
	case <-ctx.Done():
		return analyzer.Extraction{}, ctx.Err()
	}
}

func (s *classificationService) mapError(err error) *apperrors.AppError {
	var decodeErr *analyzer.ImageDecodeError
	switch {
	case errors.As(err, &decodeErr):
		return apperrors.NewDecodeError("Unable to decode image", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("Image analysis timed out", err)
	case errors.Is(err, context.Canceled):
		return apperrors.NewTimeoutError("Image analysis cancelled", err)
	default:
		return apperrors.NewProcessingError("Image analysis failed", err)
	}
}

// ClassifyURL fetches imageURL through the repository and classifies it
func (s *classificationService) ClassifyURL(ctx context.Context, imageURL string, opts ClassifyOptions) (*models.ClassificationResult, error) {
	if s.imageRepo == nil {
		return nil, apperrors.NewInternalError("URL classification is not configured", repository.ErrRepositoryUnavailable)
	}
	if opts.RequestID == "" {
		opts.RequestID = uuid.NewString()
	}
	if opts.Source == "" {
		opts.Source = imageURL
	}

	fetchCtx := ctx
	if s.settings.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.settings.FetchTimeout)
		defer cancel()
	}

	if err := s.imageRepo.ValidateImageURL(imageURL); err != nil {
		return nil, err
	}

	start := time.Now()
	img, err := s.imageRepo.FetchImage(fetchCtx, imageURL)
	if err != nil {
		s.events.NotifyObservers(ctx, observer.ClassificationEvent{
			EventType:      observer.ImageFetchFailed,
			RequestID:      opts.RequestID,
			Source:         imageURL,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}
	s.events.NotifyObservers(ctx, observer.ClassificationEvent{
		EventType:      observer.ImageFetched,
		RequestID:      opts.RequestID,
		Source:         imageURL,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"bytes": len(img.Data), "storage": img.Source},
	})

	return s.Classify(ctx, img.Data, opts)
}

// ClassifyBatch fans inputs out over the worker pool and waits for all of them
func (s *classificationService) ClassifyBatch(ctx context.Context, inputs []BatchInput, opts ClassifyOptions) []BatchOutcome {
	outcomes := make([]BatchOutcome, len(inputs))
	batchID := opts.RequestID
	if batchID == "" {
		batchID = uuid.NewString()
	}

	var wg sync.WaitGroup
	for i, in := range inputs {
		i, in := i, in
		itemOpts := ClassifyOptions{
			RequestID: fmt.Sprintf("%s-%d", batchID, i),
			Source:    in.Name,
			Detailed:  opts.Detailed,
		}
		outcomes[i].Name = in.Name

		wg.Add(1)
		job := func() {
			defer wg.Done()
			outcomes[i].Result, outcomes[i].Err = s.Classify(ctx, in.Data, itemOpts)
		}
		if s.pool == nil || !s.pool.Submit(job) {
			// pool closed or absent: run inline
			job()
		}
	}
	wg.Wait()
	return outcomes
}
