package library

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/voxel51/player51/internal/annotations"
	"github.com/voxel51/player51/internal/media"
	"github.com/voxel51/player51/internal/overlay"
)

type LibraryService interface {
	RegisterMedia(ctx context.Context, path string) (*Media, error)
	RemoveMedia(ctx context.Context, id string) error
	GetMedia(ctx context.Context, id string) (*Media, error)
	ListMedia(ctx context.Context) ([]*Media, error)
	CountMedia(ctx context.Context) (int, error)

	AttachAnnotation(ctx context.Context, mediaID, locator string) (*Annotation, *overlay.Payload, error)
	LoadAnnotation(ctx context.Context, annotationID string) (*overlay.Payload, error)
	GetAnnotations(ctx context.Context, mediaID string) ([]*Annotation, error)
}

type Service struct {
	repo    Repository
	prober  media.Prober
	fetcher annotations.Fetcher
	logger  *slog.Logger
}

func NewService(repo Repository, prober media.Prober, fetcher annotations.Fetcher, logger *slog.Logger) *Service {
	return &Service{repo: repo, prober: prober, fetcher: fetcher, logger: logger}
}

// RegisterMedia adds a video file to the library, probing its stream
// properties. Registering an already known path returns the existing record.
// A probe failure leaves the record unprobed rather than failing the
// registration; playback falls back to configured defaults.
func (s *Service) RegisterMedia(ctx context.Context, path string) (*Media, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("path does not exist: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory")
	}
	if !IsVideoFile(info.Name()) {
		return nil, fmt.Errorf("not a recognized video file: %s", info.Name())
	}

	existing, err := s.repo.GetMediaByPath(ctx, absPath)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	m := &Media{
		ID:        NewID(),
		Path:      absPath,
		Filename:  filepath.Base(absPath),
		Size:      info.Size(),
		CreatedAt: time.Now(),
	}

	if result, err := s.prober.Probe(ctx, absPath); err != nil {
		if s.logger != nil {
			s.logger.Warn("media probe failed", "path", absPath, "error", err)
		}
	} else {
		m.Width = result.Width
		m.Height = result.Height
		m.FrameRate = result.FrameRate
		m.Duration = result.Duration
		m.Probed = true
	}

	if err := s.repo.CreateMedia(ctx, m); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("media registered",
			"media_id", m.ID,
			"path", absPath,
			"frame_rate", m.FrameRate,
			"duration", m.Duration,
		)
	}
	return m, nil
}

func (s *Service) RemoveMedia(ctx context.Context, id string) error {
	return s.repo.DeleteMedia(ctx, id)
}

func (s *Service) GetMedia(ctx context.Context, id string) (*Media, error) {
	return s.repo.GetMedia(ctx, id)
}

func (s *Service) ListMedia(ctx context.Context) ([]*Media, error) {
	return s.repo.ListMedia(ctx)
}

func (s *Service) CountMedia(ctx context.Context) (int, error) {
	return s.repo.CountMedia(ctx)
}

// AttachAnnotation fetches the overlay payload at locator, records the
// attachment and returns both. The payload is not persisted; the locator is
// re-fetched when a session needs it again.
func (s *Service) AttachAnnotation(ctx context.Context, mediaID, locator string) (*Annotation, *overlay.Payload, error) {
	m, err := s.repo.GetMedia(ctx, mediaID)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		return nil, nil, fmt.Errorf("media not found")
	}

	p, err := s.fetcher.Fetch(ctx, locator)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch annotations: %w", err)
	}

	a := &Annotation{
		ID:          NewID(),
		MediaID:     mediaID,
		Locator:     locator,
		ObjectCount: len(p.Objects),
		FrameCount:  len(p.Frames),
		CreatedAt:   time.Now(),
	}

	if err := s.repo.CreateAnnotation(ctx, a); err != nil {
		return nil, nil, err
	}

	if s.logger != nil {
		s.logger.Info("annotation attached",
			"annotation_id", a.ID,
			"media_id", mediaID,
			"objects", a.ObjectCount,
			"frames", a.FrameCount,
		)
	}
	return a, p, nil
}

func (s *Service) LoadAnnotation(ctx context.Context, annotationID string) (*overlay.Payload, error) {
	a, err := s.repo.GetAnnotation(ctx, annotationID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("annotation not found")
	}
	return s.fetcher.Fetch(ctx, a.Locator)
}

func (s *Service) GetAnnotations(ctx context.Context, mediaID string) ([]*Annotation, error) {
	return s.repo.ListAnnotationsByMedia(ctx, mediaID)
}
