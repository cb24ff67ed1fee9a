package factory

import (
	"context"
	"fmt"

	"go-cover-resolver/internal/catalog"
	"go-cover-resolver/internal/config"
	"go-cover-resolver/internal/logger"
	"go-cover-resolver/internal/storage"
	"go-cover-resolver/pkg/validation"

	"github.com/sirupsen/logrus"
)

// StorageFactory creates the fetcher for a configured catalog source.
type StorageFactory interface {
	CreateFetcher(source config.CatalogSource) (storage.Fetcher, error)
}

type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

func (f *storageFactory) CreateFetcher(source config.CatalogSource) (storage.Fetcher, error) {
	switch source {
	case config.CatalogSourceFile:
		return storage.NewFileFetcher(), nil
	case config.CatalogSourceHTTP:
		return storage.NewHTTPFetcher(f.cfg.CatalogFetchTimeout), nil
	case config.CatalogSourceAzure:
		return storage.NewAzureBlobFetcher(f.cfg.AzureAccountName, f.cfg.AzureAccountKey)
	case config.CatalogSourceBuiltin:
		return nil, fmt.Errorf("builtin catalog has no storage backend")
	default:
		return nil, fmt.Errorf("unsupported catalog source: %s", source)
	}
}

// LoadCatalog returns the catalog the configuration points at. The
// built-in catalog needs no I/O; every other source is fetched once.
func LoadCatalog(ctx context.Context, cfg *config.Config, storages StorageFactory) (*catalog.Catalog, error) {
	if cfg.CatalogSource == config.CatalogSourceBuiltin {
		return catalog.Default(), nil
	}

	fetcher, err := storages.CreateFetcher(cfg.CatalogSource)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.CatalogFetchTimeout)
	defer cancel()

	data, err := fetcher.Fetch(ctx, cfg.CatalogLocation)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog from %s %q: %w", cfg.CatalogSource, cfg.CatalogLocation, err)
	}

	c, err := catalog.Parse(data, validation.NewURLValidator())
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"source":   cfg.CatalogSource,
		"location": cfg.CatalogLocation,
		"images":   c.Len(),
	}).Info("Loaded image catalog")

	return c, nil
}
