package session

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/voxel51/player51/internal/frameclock"
	"github.com/voxel51/player51/internal/library"
	"github.com/voxel51/player51/internal/media"
	"github.com/voxel51/player51/internal/overlay"
	"github.com/voxel51/player51/internal/render"
)

// ManagerConfig carries the playback defaults sessions fall back to when a
// media item was never probed.
type ManagerConfig struct {
	FrameZeroOffset  int
	DefaultFrameRate float64
	PaletteSize      int
}

// Manager owns the live sessions keyed by ID.
type Manager struct {
	cfg    ManagerConfig
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(cfg ManagerConfig, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

const (
	defaultSurfaceWidth  = 1280
	defaultSurfaceHeight = 720
)

// Create builds a session for a media item. fragmentHint, when non-empty, is
// the locator whose trailing "#t=begin,end" constrains playback. payload may
// be nil; it can be attached later. The media simulation is loaded before
// returning so the session observes its readiness events.
func (m *Manager) Create(item *library.Media, payload *overlay.Payload, overlaySource, fragmentHint string, opts Options) (*Session, error) {
	frameRate := item.FrameRate
	if frameRate <= 0 {
		frameRate = m.cfg.DefaultFrameRate
	}

	clock, err := frameclock.New(frameRate, m.cfg.FrameZeroOffset)
	if err != nil {
		return nil, fmt.Errorf("frame clock: %w", err)
	}

	var fragment *frameclock.Fragment
	if fragmentHint != "" {
		begin, end, err := frameclock.ParseHint(fragmentHint)
		if err == nil {
			fragment = frameclock.NewFragment(begin, end, clock)
		} else if err != frameclock.ErrNoFragment {
			return nil, fmt.Errorf("fragment hint: %w", err)
		}
	}

	width, height := item.Width, item.Height
	if width <= 0 || height <= 0 {
		width, height = defaultSurfaceWidth, defaultSurfaceHeight
	}

	raster, err := render.NewImageSurface(width, height, m.logger)
	if err != nil {
		return nil, fmt.Errorf("raster surface: %w", err)
	}

	mediaSurface := media.NewClockSurface(item.Duration, width, height, m.logger)
	engine := overlay.NewEngine(overlay.NewColorTable(m.cfg.PaletteSize, 0), m.logger)

	id := newSessionID()
	s := New(id, clock, fragment, mediaSurface, raster, engine, opts, m.logger)
	s.mediaID = item.ID

	s.MarkRendered()
	s.MarkSized()
	if payload != nil {
		s.SetOverlay(payload, overlaySource)
	}
	mediaSurface.Load()

	if fragment != nil {
		mediaSurface.Seek(fragment.BeginTime)
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.Info("session created",
			"session_id", id,
			"media_id", item.ID,
			"frame_rate", frameRate,
			"fragment", fragment != nil,
		)
	}
	return s, nil
}

func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// List returns the live sessions ordered by ID for stable output.
func (m *Manager) List() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Delete closes and forgets a session. Deleting an unknown ID returns false.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

// CloseAll shuts down every live session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

func newSessionID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:])
}
