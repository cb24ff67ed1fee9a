package observer

import (
	"context"
	"sync"
	"time"

	"go-cover-resolver/pkg/models"

	"github.com/sirupsen/logrus"
)

// CoverEvent describes the outcome of one generate-cover call.
type CoverEvent struct {
	EventType      EventType     `json:"event_type"`
	Timestamp      time.Time     `json:"timestamp"`
	Title          string        `json:"title,omitempty"`
	URL            string        `json:"url,omitempty"`
	Index          int           `json:"index"`
	ProcessingTime time.Duration `json:"processing_time"`
	ErrorMessage   string        `json:"error_message,omitempty"`
}

// EventType represents the type of cover event
type EventType string

const (
	// CoverResolved when a title was mapped to a catalog image
	CoverResolved EventType = "cover_resolved"
	// CoverRejected when the request failed validation
	CoverRejected EventType = "cover_rejected"
	// CoverFailed when resolution hit an unexpected error
	CoverFailed EventType = "cover_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event CoverEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	NotifyObservers(ctx context.Context, event CoverEvent)
}

// LoggingObserver writes one log line per cover event.
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

func (o *LoggingObserver) OnEvent(ctx context.Context, event CoverEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"title":           event.Title,
		"processing_time": event.ProcessingTime,
	}

	switch event.EventType {
	case CoverResolved:
		fields["url"] = event.URL
		fields["index"] = event.Index
		o.logger.WithFields(fields).Info("Generating cover")
	case CoverRejected:
		fields["error"] = event.ErrorMessage
		o.logger.WithFields(fields).Warn("Cover request rejected")
	case CoverFailed:
		fields["error"] = event.ErrorMessage
		o.logger.WithFields(fields).Error("Cover generation failed")
	default:
		o.logger.WithFields(fields).Info("Cover event occurred")
	}
}

func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver counts cover events by outcome.
type MetricsObserver struct {
	mu                  sync.RWMutex
	resolved            int64
	rejected            int64
	failed              int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

func (o *MetricsObserver) OnEvent(ctx context.Context, event CoverEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case CoverResolved:
		o.resolved++
		o.totalProcessingTime += event.ProcessingTime
	case CoverRejected:
		o.rejected++
	case CoverFailed:
		o.failed++
	}
}

func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// Stats returns the current counters.
func (o *MetricsObserver) Stats() models.CoverStats {
	o.mu.RLock()
	defer o.mu.RUnlock()

	stats := models.CoverStats{
		Resolved: o.resolved,
		Rejected: o.rejected,
		Failed:   o.failed,
	}
	if o.resolved > 0 {
		avg := o.totalProcessingTime / time.Duration(o.resolved)
		stats.AvgProcessingTimeMs = float64(avg) / float64(time.Millisecond)
	}
	return stats
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	logger    *logrus.Logger
}

// NewEventPublisher creates a new event publisher. Observer panics are
// reported on logger.
func NewEventPublisher(logger *logrus.Logger) *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
		logger:    logger,
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// NotifyObservers delivers event to every observer on its own goroutine.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event CoverEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					p.logger.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
