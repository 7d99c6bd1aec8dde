package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"go-design-critic/internal/archive"
	"go-design-critic/internal/config"
	apperrors "go-design-critic/internal/errors"
	"go-design-critic/internal/logger"
	"go-design-critic/internal/metrics"
	"go-design-critic/internal/optimizer"
	"go-design-critic/internal/provider"
	"go-design-critic/internal/renderer"
	"go-design-critic/internal/storage"
	"go-design-critic/pkg/models"
	"go-design-critic/pkg/validation"
)

// Render geometry for HTML input. Email designs render at a typical email
// client width; everything else gets a desktop viewport.
const (
	emailRenderWidth   = 600
	desktopRenderWidth = 1280
	renderHeight       = 800
	renderScale        = 2.0
)

// CritiqueService defines the interface for running a design critique
type CritiqueService interface {
	Critique(ctx context.Context, request *models.CritiqueRequest) (*models.CritiqueResult, error)
	Providers() []models.ProviderInfo
}

// critiqueService implements CritiqueService
type critiqueService struct {
	cfg          *config.Config
	renderer     renderer.Renderer
	fetcher      storage.ImageFetcher
	critics      *provider.Registry
	archive      archive.Store
	urlValidator *validation.URLValidator
}

// NewCritiqueService creates a new critique service. The archive store may be
// nil, in which case critique artifacts are not persisted.
func NewCritiqueService(
	cfg *config.Config,
	htmlRenderer renderer.Renderer,
	imageFetcher storage.ImageFetcher,
	criticRegistry *provider.Registry,
	archiveStore archive.Store,
) CritiqueService {
	return &critiqueService{
		cfg:          cfg,
		renderer:     htmlRenderer,
		fetcher:      imageFetcher,
		critics:      criticRegistry,
		archive:      archiveStore,
		urlValidator: validation.NewURLValidator(),
	}
}

// Critique validates the request, acquires the design image, optimizes it and
// dispatches it to the selected provider for critique.
func (s *critiqueService) Critique(ctx context.Context, request *models.CritiqueRequest) (*models.CritiqueResult, error) {
	request.Normalize()
	if err := request.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()

	result, err := s.critique(ctx, request)
	if err != nil {
		metrics.CritiquesTotal.WithLabelValues(request.Provider, "error").Inc()
		return nil, err
	}

	metrics.CritiquesTotal.WithLabelValues(request.Provider, "success").Inc()
	metrics.CritiqueDurationSeconds.WithLabelValues(request.Provider).Observe(time.Since(started).Seconds())

	return result, nil
}

// Providers lists the registered critique providers
func (s *critiqueService) Providers() []models.ProviderInfo {
	return s.critics.List()
}

func (s *critiqueService) critique(ctx context.Context, request *models.CritiqueRequest) (*models.CritiqueResult, error) {
	// Acquire image
	imageBase64, err := s.acquireImage(ctx, request)
	if err != nil {
		return nil, err
	}

	// Optimize for provider limits
	optimized, err := optimizer.Optimize(imageBase64, s.cfg.MaxImageDimension, s.cfg.JPEGQuality)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to optimize image", err)
	}
	metrics.OptimizedImageBytes.Observe(float64(base64.StdEncoding.DecodedLen(len(optimized))))

	// Dispatch to provider
	critic, err := s.critics.Lookup(request.Provider)
	if err != nil {
		return nil, err
	}

	result, err := critic.Critique(ctx, optimized, provider.Options{
		DesignType:   request.DesignType,
		FocusAreas:   request.FocusAreas,
		CustomPrompt: request.CustomPrompt,
		APIKey:       request.APIKey,
		BaseURL:      request.BaseURL,
		Model:        request.Model,
	})
	if err != nil {
		return nil, err
	}

	if s.archive != nil {
		s.archiveArtifacts(ctx, optimized, result)
	}

	return result, nil
}

// acquireImage resolves the request's single input mode to base64 image data
func (s *critiqueService) acquireImage(ctx context.Context, request *models.CritiqueRequest) (string, error) {
	switch {
	case request.HTML != "":
		opts := renderer.Options{
			Width:    desktopRenderWidth,
			Height:   renderHeight,
			FullPage: true,
			Scale:    renderScale,
		}
		if request.DesignType == "email" {
			opts.Width = emailRenderWidth
		}

		started := time.Now()
		screenshot, err := s.renderer.RenderHTML(ctx, request.HTML, opts)
		if err != nil {
			return "", err
		}
		metrics.RenderDurationSeconds.Observe(time.Since(started).Seconds())

		return base64.StdEncoding.EncodeToString(screenshot), nil

	case request.ImageURL != "":
		if err := s.urlValidator.ValidateImageURL(request.ImageURL); err != nil {
			return "", err
		}

		data, err := s.fetcher.FetchImage(ctx, request.ImageURL)
		if err != nil {
			return "", apperrors.NewFetchError("failed to fetch image", err)
		}

		return base64.StdEncoding.EncodeToString(data), nil

	default:
		return request.ImageBase64, nil
	}
}

// archiveArtifacts persists the optimized image and the critique JSON;
// failures are logged, never fatal
func (s *critiqueService) archiveArtifacts(ctx context.Context, optimized string, result *models.CritiqueResult) {
	image, err := base64.StdEncoding.DecodeString(optimized)
	if err != nil {
		logger.WithError(err).Warn("Failed to decode optimized image for archival")
		return
	}

	critique, err := json.Marshal(result)
	if err != nil {
		logger.WithError(err).Warn("Failed to marshal critique for archival")
		return
	}

	prefix, err := s.archive.SaveCritique(ctx, image, critique)
	if err != nil {
		logger.WithError(err).Warn("Failed to archive critique artifacts")
		return
	}

	logger.WithField("blob_prefix", prefix).Debug("Archived critique artifacts")
}
