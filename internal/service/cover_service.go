package service

import (
	"context"
	"time"

	"go-cover-resolver/internal/catalog"
	apperrors "go-cover-resolver/internal/errors"
	"go-cover-resolver/internal/observer"
	"go-cover-resolver/pkg/models"
)

const (
	MsgJSONNotProvided = "JSON not provided"
	MsgTitleRequired   = "Title is required"
	MsgTimedOut        = "Request timed out"
)

// CoverService resolves book titles to catalog covers.
type CoverService interface {
	// GenerateCover resolves an already decoded request.
	GenerateCover(ctx context.Context, req models.CoverRequest) (*models.CoverResponse, error)

	// GenerateCoverJSON decodes a raw request body and resolves it.
	GenerateCoverJSON(ctx context.Context, body []byte) (*models.CoverResponse, error)

	// TotalImages is the size of the catalog.
	TotalImages() int
}

type coverService struct {
	catalog *catalog.Catalog
	events  observer.Subject
}

// NewCoverService creates a cover service over an immutable catalog.
// events may be nil.
func NewCoverService(c *catalog.Catalog, events observer.Subject) CoverService {
	return &coverService{
		catalog: c,
		events:  events,
	}
}

func (s *coverService) GenerateCoverJSON(ctx context.Context, body []byte) (*models.CoverResponse, error) {
	start := time.Now()

	req, err := DecodeCoverRequest(body)
	if err != nil {
		s.publishError(ctx, "", start, err)
		return nil, err
	}
	return s.generate(ctx, req, start)
}

func (s *coverService) GenerateCover(ctx context.Context, req models.CoverRequest) (*models.CoverResponse, error) {
	req.Normalize()
	return s.generate(ctx, req, time.Now())
}

func (s *coverService) generate(ctx context.Context, req models.CoverRequest, start time.Time) (*models.CoverResponse, error) {
	if req.Title == "" {
		err := apperrors.NewMissingFieldError(MsgTitleRequired)
		s.publishError(ctx, req.Title, start, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		appErr := apperrors.NewTimeoutError(MsgTimedOut, err)
		s.publishError(ctx, req.Title, start, appErr)
		return nil, appErr
	}

	index, url := s.catalog.Resolve(req.Title)

	s.publish(ctx, observer.CoverEvent{
		EventType:      observer.CoverResolved,
		Timestamp:      time.Now(),
		Title:          req.Title,
		URL:            url,
		Index:          index,
		ProcessingTime: time.Since(start),
	})

	return &models.CoverResponse{
		URL:         url,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.StatusSuccess,
	}, nil
}

func (s *coverService) TotalImages() int {
	return s.catalog.Len()
}

func (s *coverService) publishError(ctx context.Context, title string, start time.Time, err error) {
	eventType := observer.CoverRejected
	if apperrors.IsType(err, apperrors.ErrorTypeInternal) {
		eventType = observer.CoverFailed
	}
	s.publish(ctx, observer.CoverEvent{
		EventType:      eventType,
		Timestamp:      time.Now(),
		Title:          title,
		Index:          -1,
		ProcessingTime: time.Since(start),
		ErrorMessage:   err.Error(),
	})
}

func (s *coverService) publish(ctx context.Context, event observer.CoverEvent) {
	if s.events == nil {
		return
	}
	// Observers run after the response is written; detach from request cancellation.
	s.events.NotifyObservers(context.WithoutCancel(ctx), event)
}
