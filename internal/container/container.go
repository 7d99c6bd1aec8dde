package container

import (
	"fmt"
	"net/http"

	"go-design-critic/internal/archive"
	"go-design-critic/internal/config"
	"go-design-critic/internal/logger"
	"go-design-critic/internal/provider"
	"go-design-critic/internal/renderer"
	"go-design-critic/internal/service"
	"go-design-critic/internal/storage"
	"go-design-critic/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	imageFetcher    storage.ImageFetcher
	htmlRenderer    renderer.Renderer
	providers       *provider.Registry
	archiveStore    archive.Store
	critiqueService service.CritiqueService
	handler         http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Build dependency graph
	imageFetcher := storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout)
	htmlRenderer := renderer.NewChromeRenderer()
	providers := provider.NewRegistry(cfg)

	// Archival is optional; a misconfigured store must not block startup
	var archiveStore archive.Store
	if cfg.ArchiveEnabled() {
		archiveStore, err = archive.NewAzureArchive(cfg.AzureStorageAccount, cfg.AzureStorageKey, cfg.AzureStorageContainer)
		if err != nil {
			logger.WithError(err).Warn("Artifact archival disabled: Azure client initialization failed")
			archiveStore = nil
		}
	}

	critiqueService := service.NewCritiqueService(cfg, htmlRenderer, imageFetcher, providers, archiveStore)
	handler := transport.NewHandler(critiqueService, cfg)

	return &Container{
		config:          cfg,
		imageFetcher:    imageFetcher,
		htmlRenderer:    htmlRenderer,
		providers:       providers,
		archiveStore:    archiveStore,
		critiqueService: critiqueService,
		handler:         handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}
