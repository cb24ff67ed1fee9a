package container

import (
	"context"
	"fmt"
	"net/http"

	"go-cover-resolver/internal/catalog"
	"go-cover-resolver/internal/config"
	"go-cover-resolver/internal/factory"
	"go-cover-resolver/internal/logger"
	"go-cover-resolver/internal/observer"
	"go-cover-resolver/internal/service"
	"go-cover-resolver/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	catalog *catalog.Catalog
	handler http.Handler
}

// NewContainer loads the catalog and builds the dependency graph.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	images, err := factory.LoadCatalog(ctx, cfg, factory.NewStorageFactory(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher(logger.Logger)
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	coverService := service.NewCoverService(images, events)
	handler := transport.NewHandler(coverService, transport.Options{
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		Stats:              metrics,
	})

	return &Container{
		catalog: images,
		handler: handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Catalog returns the catalog loaded at startup.
func (c *Container) Catalog() *catalog.Catalog {
	return c.catalog
}
