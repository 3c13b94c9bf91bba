package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/asl-inspector-go/internal/logger"
	"github.com/anime-shed/asl-inspector-go/pkg/models"
)

// ClassificationEvent represents a classification lifecycle event
type ClassificationEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	RequestID      string                 `json:"request_id"`
	Source         string                 `json:"source,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	Label          models.Label           `json:"predicted_letter,omitempty"`
	Absent         bool                   `json:"absent,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of classification event
type EventType string

const (
	// ClassificationStarted when extraction begins
	ClassificationStarted EventType = "classification_started"
	// ClassificationCompleted when a label was produced, including unknown
	ClassificationCompleted EventType = "classification_completed"
	// ClassificationFailed when the image could not be processed
	ClassificationFailed EventType = "classification_failed"
	// ImageFetched when a remote image is downloaded
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when a remote image download fails
	ImageFetchFailed EventType = "image_fetch_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event ClassificationEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event ClassificationEvent)
}

// LoggingObserver logs classification events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) *LoggingObserver {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles classification events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event ClassificationEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"request_id":      event.RequestID,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}
	if event.Source != "" {
		fields["source"] = event.Source
	}
	if event.Label != "" {
		fields["predicted_letter"] = event.Label
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case ClassificationStarted:
		entry.Debug("Classification started")
	case ClassificationCompleted:
		entry.Info("Classification completed")
	case ClassificationFailed:
		entry.Warn("Classification failed")
	case ImageFetched:
		entry.Debug("Image fetched successfully")
	case ImageFetchFailed:
		entry.Error("Image fetch failed")
	default:
		entry.Info("Classification event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// Metrics is a snapshot of MetricsObserver counters
type Metrics struct {
	TotalClassifications     int64                  `json:"total_classifications"`
	CompletedClassifications int64                  `json:"completed_classifications"`
	FailedClassifications    int64                  `json:"failed_classifications"`
	AbsentContours           int64                  `json:"absent_contours"`
	Labels                   map[models.Label]int64 `json:"labels"`
	ImagesFetched            int64                  `json:"images_fetched"`
	ImageFetchFailures       int64                  `json:"image_fetch_failures"`
	AvgProcessingTimeMs      float64                `json:"avg_processing_time_ms"`
}

// MetricsObserver collects metrics from classification events
type MetricsObserver struct {
	mu                  sync.RWMutex
	total               int64
	completed           int64
	failed              int64
	absent              int64
	labels              map[models.Label]int64
	fetched             int64
	fetchFailed         int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		labels: map[models.Label]int64{
			models.LabelG:       0,
			models.LabelU:       0,
			models.LabelUnknown: 0,
		},
	}
}

// OnEvent handles classification events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event ClassificationEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case ClassificationStarted:
		o.total++
	case ClassificationCompleted:
		o.completed++
		o.labels[event.Label]++
		if event.Absent {
			o.absent++
		}
		o.totalProcessingTime += event.ProcessingTime
	case ClassificationFailed:
		o.failed++
	case ImageFetched:
		o.fetched++
	case ImageFetchFailed:
		o.fetchFailed++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() Metrics {
	o.mu.RLock()
	defer o.mu.RUnlock()

	labels := make(map[models.Label]int64, len(o.labels))
	for k, v := range o.labels {
		labels[k] = v
	}

	var avg float64
	if o.completed > 0 {
		avg = float64(o.totalProcessingTime.Microseconds()) / float64(o.completed) / 1000
	}

	return Metrics{
		TotalClassifications:     o.total,
		CompletedClassifications: o.completed,
		FailedClassifications:    o.failed,
		AbsentContours:           o.absent,
		Labels:                   labels,
		ImagesFetched:            o.fetched,
		ImageFetchFailures:       o.fetchFailed,
		AvgProcessingTimeMs:      avg,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers event to every observer in subscription order.
// Delivery is synchronous so /stats reflects a request once it has returned.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event ClassificationEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		notify(ctx, observer, event)
	}
}

func notify(ctx context.Context, obs Observer, event ClassificationEvent) {
	defer func() {
		if r := recover(); r != nil {
			// Log panic but don't crash the application
			logger.WithField("observer", obs.GetObserverName()).
				WithField("panic", r).
				Error("Observer panicked while handling event")
		}
	}()
	obs.OnEvent(ctx, event)
}
