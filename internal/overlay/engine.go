package overlay

import (
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"github.com/voxel51/player51/internal/render"
)

// Store maps frame numbers to the renderables anchored on them. Insertion
// order within a frame is preserved and is the draw order.
type Store struct {
	byFrame map[int][]Renderable
}

func NewStore() *Store {
	return &Store{byFrame: make(map[int][]Renderable)}
}

// Add appends a renderable to its frame's draw list.
func (s *Store) Add(r Renderable) {
	s.byFrame[r.FrameNumber()] = append(s.byFrame[r.FrameNumber()], r)
}

// ForFrame returns the renderables for a frame in draw order. A frame with
// no annotations returns nil; that is a valid, empty draw.
func (s *Store) ForFrame(frame int) []Renderable {
	return s.byFrame[frame]
}

// Frames returns the annotated frame numbers in ascending order.
func (s *Store) Frames() []int {
	frames := make([]int, 0, len(s.byFrame))
	for f := range s.byFrame {
		frames = append(frames, f)
	}
	sort.Ints(frames)
	return frames
}

// Len returns the total number of renderables across all frames.
func (s *Store) Len() int {
	n := 0
	for _, rs := range s.byFrame {
		n += len(rs)
	}
	return n
}

// Engine owns the overlay store and the one-time preparation of a payload
// into it. Prepare may be re-triggered from every readiness re-derivation,
// so it is guarded to run its body at most once; the mutex makes the guard
// hold when preparation races with HTTP handlers or the render loop.
type Engine struct {
	mu        sync.Mutex
	store     *Store
	colors    *ColorTable
	logger    *slog.Logger
	prepared  bool
	preparing bool
	pending   []Renderable
}

func NewEngine(colors *ColorTable, logger *slog.Logger) *Engine {
	return &Engine{
		store:  NewStore(),
		colors: colors,
		logger: logger,
	}
}

// Prepare normalizes a payload into the store. Idempotent: repeat calls
// while preparing or after completion return immediately. Renderable setup
// runs synchronously when the surface already has valid metrics; otherwise
// the renderable is queued for SurfaceReady and drawing skips it until then.
func (e *Engine) Prepare(p *Payload, s render.Surface) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.prepared || e.preparing {
		return
	}
	if p == nil {
		return
	}
	e.preparing = true

	// Flat encoding: every object carries its own frame number.
	for _, obj := range p.Objects {
		e.add(NewObjectOverlay(obj, obj.FrameNumber, e.colors, e.logger), s)
	}

	// Per-frame encoding: the map key supplies the frame number for the
	// object list and the frame-attribute block alike.
	for _, key := range sortedFrameKeys(p.Frames, e.logger) {
		frame := p.Frames[key.raw]
		if frame.Objects != nil {
			for _, obj := range frame.Objects.Objects {
				e.add(NewObjectOverlay(obj, key.num, e.colors, e.logger), s)
			}
		}
		if len(frame.Attrs) > 0 {
			e.add(NewFrameAttributes(frame.Attrs, key.num, e.logger), s)
		}
	}

	e.preparing = false
	e.prepared = true

	if e.logger != nil {
		e.logger.Info("overlay prepared",
			"renderables", e.store.Len(),
			"frames", len(e.store.byFrame),
			"deferred_setups", len(e.pending),
		)
	}
}

func (e *Engine) add(r Renderable, s render.Surface) {
	if s != nil && s.Metrics().Valid() {
		r.Setup(s)
	}
	if !r.Ready() {
		e.pending = append(e.pending, r)
	}
	e.store.Add(r)
}

// SurfaceReady runs the deferred setups once the surface has valid metrics.
// Safe to call repeatedly; anything still unready stays queued.
func (e *Engine) SurfaceReady(s render.Surface) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.pending) == 0 || s == nil || !s.Metrics().Valid() {
		return
	}

	still := e.pending[:0]
	for _, r := range e.pending {
		r.Setup(s)
		if !r.Ready() {
			still = append(still, r)
		}
	}
	e.pending = still
}

// Prepared reports whether preparation has completed. Once true it never
// reverts.
func (e *Engine) Prepared() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prepared
}

// Preparing reports whether preparation is currently in progress.
func (e *Engine) Preparing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.preparing
}

// ForFrame returns a copy of the draw list for a frame.
func (e *Engine) ForFrame(frame int) []Renderable {
	e.mu.Lock()
	defer e.mu.Unlock()

	rs := e.store.ForFrame(frame)
	if len(rs) == 0 {
		return nil
	}
	out := make([]Renderable, len(rs))
	copy(out, rs)
	return out
}

// Frames returns the annotated frame numbers in ascending order.
func (e *Engine) Frames() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Frames()
}

// Len returns the total number of renderables in the store.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Len()
}

type frameKey struct {
	raw string
	num int
}

// sortedFrameKeys returns the per-frame map keys in ascending numeric
// order, dropping keys that do not encode an integer.
func sortedFrameKeys(frames map[string]Frame, logger *slog.Logger) []frameKey {
	keys := make([]frameKey, 0, len(frames))
	for raw := range frames {
		num, err := strconv.Atoi(raw)
		if err != nil {
			if logger != nil {
				logger.Warn("skipping non-integer frame key in overlay payload", "key", raw)
			}
			continue
		}
		keys = append(keys, frameKey{raw: raw, num: num})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].num < keys[j].num })
	return keys
}
