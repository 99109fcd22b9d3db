// Package session ties the frame clock, the readiness state machines, the
// overlay engine and the two external surfaces together into one playback
// session with a frame-synchronized render loop.
package session

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"sync"
	"time"

	"github.com/voxel51/player51/internal/frameclock"
	"github.com/voxel51/player51/internal/media"
	"github.com/voxel51/player51/internal/overlay"
	"github.com/voxel51/player51/internal/render"
)

// ErrNoFragment is returned when a fragment operation is requested on a
// session whose locator carried no fragment hint.
var ErrNoFragment = errors.New("session has no media fragment")

const readoutPad = 4

var (
	readoutTextColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	readoutBackColor = color.NRGBA{A: 180}
)

// Options configure a session at creation time.
type Options struct {
	Autoplay       bool
	Loop           bool
	ShowFrameCount bool
	ShowTimestamp  bool
	Thumbnail      bool
}

// Session is one playback of one media item with its overlay.
type Session struct {
	id      string
	mediaID string
	clock   *frameclock.Clock
	media   media.Surface
	surface render.Surface
	engine  *overlay.Engine
	logger  *slog.Logger

	mu       sync.Mutex
	fragment *frameclock.Fragment
	dynamic  DynamicState
	loading  LoadingState

	frameNumber    int
	showFrameCount bool
	showTimestamp  bool
	thumbnail      bool

	payload       *overlay.Payload
	overlaySource string

	ticking bool
	closed  bool
	done    chan struct{}
}

// New creates a session. fragment may be nil. The session subscribes to the
// media surface's events; callers should create the session before loading
// the media so no readiness event is missed.
func New(id string, clock *frameclock.Clock, fragment *frameclock.Fragment,
	mediaSurface media.Surface, rasterSurface render.Surface,
	engine *overlay.Engine, opts Options, logger *slog.Logger) *Session {

	s := &Session{
		id:       id,
		clock:    clock,
		media:    mediaSurface,
		surface:  rasterSurface,
		engine:   engine,
		logger:   logger,
		fragment: fragment,
		dynamic: DynamicState{
			Autoplay: opts.Autoplay,
			Loop:     opts.Loop,
		},
		showFrameCount: opts.ShowFrameCount,
		showTimestamp:  opts.ShowTimestamp,
		thumbnail:      opts.Thumbnail,
		done:           make(chan struct{}),
	}

	mediaSurface.OnEvent(s.handleMediaEvent)
	return s
}

func (s *Session) ID() string {
	return s.id
}

// MediaID names the library item this session plays, when one is known.
func (s *Session) MediaID() string {
	return s.mediaID
}

// Dynamic returns a copy of the dynamic state record.
func (s *Session) Dynamic() DynamicState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dynamic
}

// Loading returns a copy of the loading state record.
func (s *Session) Loading() LoadingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Fragment returns a copy of the session fragment, or nil.
func (s *Session) Fragment() *frameclock.Fragment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fragment == nil {
		return nil
	}
	frag := *s.fragment
	return &frag
}

// FrameNumber returns the tracked frame counter.
func (s *Session) FrameNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameNumber
}

func (s *Session) Clock() *frameclock.Clock {
	return s.clock
}

func (s *Session) Surface() render.Surface {
	return s.surface
}

// MarkRendered records that the session's output has been mounted.
func (s *Session) MarkRendered() {
	s.mu.Lock()
	s.loading.IsRendered = true
	s.updateLoadingLocked()
	s.mu.Unlock()
}

// MarkSized records that the raster surface has valid dimensions, and runs
// any overlay setups that were deferred waiting for them. A still-unsized
// surface is a benign no-op.
func (s *Session) MarkSized() {
	if !s.surface.Metrics().Valid() {
		if s.logger != nil {
			s.logger.Debug("surface has no size yet, ignoring size signal", "session_id", s.id)
		}
		return
	}

	s.engine.SurfaceReady(s.surface)

	s.mu.Lock()
	s.loading.IsSizePrepared = true
	s.updateLoadingLocked()
	s.mu.Unlock()
}

// SetOverlay attaches an overlay payload awaiting preparation. source names
// where the payload came from, for diagnostics; preparation is triggered by
// the loading re-derivation and is idempotent.
func (s *Session) SetOverlay(p *overlay.Payload, source string) {
	s.mu.Lock()
	s.payload = p
	s.overlaySource = source
	s.updateLoadingLocked()
	s.mu.Unlock()
}

// updateLoadingLocked re-derives the whole loading gate from the current
// record. Readiness signals arrive in no guaranteed order, so every rule is
// re-evaluated on every change rather than acting on a single delta.
func (s *Session) updateLoadingLocked() {
	if s.loading.IsSizePrepared && s.loading.IsRendered && s.loading.IsDataLoaded {
		s.loading.ReadyToProcessFrames = true
	}
	if s.payload != nil && s.overlaySource != "" {
		s.loading.OverlayCanBePrepared = true
	}
	if s.loading.OverlayCanBePrepared {
		s.prepareOverlayLocked()
	}
}

// prepareOverlayLocked is the sole entry into overlay preparation. The
// guard makes repeat entry from any readiness transition a no-op.
func (s *Session) prepareOverlayLocked() {
	if s.loading.IsOverlayPrepared || s.loading.IsPreparingOverlay {
		return
	}
	s.loading.IsPreparingOverlay = true
	s.engine.Prepare(s.payload, s.surface)
	s.loading.IsPreparingOverlay = false
	s.loading.IsOverlayPrepared = true

	if s.logger != nil {
		s.logger.Info("overlay preparation complete",
			"session_id", s.id,
			"source", s.overlaySource,
			"renderables", s.engine.Len(),
		)
	}
}

// applyDynamic pushes the dynamic record's effects onto the media surface.
// It runs without the session lock because surface calls emit events that
// re-enter the session.
func (s *Session) applyDynamic() {
	s.mu.Lock()
	playing := s.dynamic.Playing
	loop := s.dynamic.Loop
	showControls := s.dynamic.ShowControls
	s.mu.Unlock()

	if playing {
		s.media.Play()
	} else {
		s.media.Pause()
	}
	s.media.SetLoop(loop)

	if s.logger != nil {
		s.logger.Debug("dynamic state applied",
			"session_id", s.id,
			"playing", playing,
			"loop", loop,
			"show_controls", showControls,
		)
	}
}

// Play starts playback.
func (s *Session) Play() {
	s.mu.Lock()
	s.dynamic.Playing = true
	s.mu.Unlock()
	s.applyDynamic()
	s.ensureLoop()
}

// Pause stops playback.
func (s *Session) Pause() {
	s.mu.Lock()
	s.dynamic.Playing = false
	s.mu.Unlock()
	s.applyDynamic()
}

// SetLoop toggles loop mode.
func (s *Session) SetLoop(loop bool) {
	s.mu.Lock()
	s.dynamic.Loop = loop
	s.mu.Unlock()
	s.applyDynamic()
}

// SetShowControls toggles the controls-visible flag.
func (s *Session) SetShowControls(show bool) {
	s.mu.Lock()
	s.dynamic.ShowControls = show
	s.mu.Unlock()
	s.applyDynamic()
}

// BeginManualSeek marks a user-driven reposition as in progress: the render
// loop stops rescheduling and a locked fragment is unlocked permanently.
func (s *Session) BeginManualSeek() {
	s.mu.Lock()
	s.dynamic.ManualSeek = true
	if s.fragment != nil && s.fragment.Locked {
		s.fragment.Locked = false
		if s.logger != nil {
			s.logger.Info("fragment unlocked by manual seek", "session_id", s.id)
		}
	}
	s.mu.Unlock()
}

// EndManualSeek completes a manual reposition and restarts the render loop
// if playback is running.
func (s *Session) EndManualSeek(t float64) {
	s.media.Seek(t)

	s.mu.Lock()
	s.dynamic.ManualSeek = false
	playing := s.dynamic.Playing
	s.mu.Unlock()

	if playing {
		s.ensureLoop()
	}
}

// SeekTime performs a complete manual reposition.
func (s *Session) SeekTime(t float64) {
	s.BeginManualSeek()
	s.EndManualSeek(t)
}

// ResetToFragment re-locks the fragment and repositions playback to its
// beginning.
func (s *Session) ResetToFragment() error {
	s.mu.Lock()
	if s.fragment == nil {
		s.mu.Unlock()
		return ErrNoFragment
	}
	s.fragment.Locked = true
	begin := s.fragment.BeginTime
	s.mu.Unlock()

	s.media.Seek(begin)
	if s.logger != nil {
		s.logger.Info("fragment re-locked", "session_id", s.id, "begin_time", begin)
	}
	return nil
}

func (s *Session) handleMediaEvent(e media.Event) {
	switch e {
	case media.EventMetadataReady:
		if s.logger != nil {
			w, h := s.media.NaturalSize()
			s.logger.Debug("media metadata ready",
				"session_id", s.id, "width", w, "height", h, "duration", s.media.Duration())
		}
	case media.EventDataReady:
		s.mu.Lock()
		s.loading.IsDataLoaded = true
		s.updateLoadingLocked()
		autoplay := s.dynamic.Autoplay
		s.mu.Unlock()

		if autoplay {
			s.Play()
		}
	case media.EventPlay:
		s.ensureLoop()
	case media.EventEnded:
		s.mu.Lock()
		s.dynamic.Playing = false
		s.mu.Unlock()
		s.applyDynamic()
	case media.EventSeeked:
		s.RenderNow()
	}
}

// CheckFragmentReset applies the fragment guard to a computed frame. It is
// a no-op unless a locked fragment exists and playback is running. At or
// past the fragment end it either wraps to the fragment beginning (loop) or
// stops playback, returning the corrected frame. This is the only path
// that flips playing off as a side effect of elapsed time.
func (s *Session) CheckFragmentReset(frame int) int {
	s.mu.Lock()
	frag := s.fragment
	playing := s.dynamic.Playing
	loop := s.dynamic.Loop

	if frag == nil || !frag.Locked || !playing || frame < frag.EndFrame {
		s.mu.Unlock()
		return frame
	}

	if loop {
		begin := frag.BeginTime
		beginFrame := frag.BeginFrame
		s.mu.Unlock()
		s.media.Seek(begin)
		return beginFrame
	}

	s.dynamic.Playing = false
	s.mu.Unlock()
	s.applyDynamic()
	return frame
}

// ensureLoop starts the render loop goroutine if it is not running.
func (s *Session) ensureLoop() {
	s.mu.Lock()
	if s.ticking || s.closed {
		s.mu.Unlock()
		return
	}
	s.ticking = true
	s.mu.Unlock()

	go s.runLoop()
}

func (s *Session) runLoop() {
	interval := time.Duration(s.clock.FrameDuration() / 2 * float64(time.Second))

	for {
		if !s.tick() {
			if s.stopLoop() {
				return
			}
			// A resume raced the stop. ensureLoop saw the flag still
			// set and skipped the restart, so this loop carries on.
			continue
		}

		select {
		case <-s.done:
			s.mu.Lock()
			s.ticking = false
			s.mu.Unlock()
			return
		case <-time.After(interval):
		}
	}
}

// stopLoop clears the ticking flag and reports whether the loop should
// exit. Between a tick observing stopped media and this call, a play or
// seek-end may have made the run condition true again; the flag must only
// drop while the condition is re-checked under the same lock ensureLoop
// reads it under, or that resume is lost. The check uses the dynamic
// record rather than the media surface: every resume path sets it under
// s.mu before its ensureLoop, and media calls here could re-enter the
// event handlers while the lock is held.
func (s *Session) stopLoop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed && !s.dynamic.ManualSeek && s.dynamic.Playing {
		return false
	}
	s.ticking = false
	return true
}

// tick advances the frame-synchronization step once. It returns false when
// the loop should stop rescheduling: paused or ended media (resumed by the
// next play event) or a manual seek in progress (resumed when it ends).
func (s *Session) tick() bool {
	if !s.media.Playing() || s.media.Ended() {
		return false
	}

	s.mu.Lock()
	manual := s.dynamic.ManualSeek
	s.mu.Unlock()
	if manual {
		return false
	}

	frame := s.clock.FrameFromTime(s.media.CurrentTime())
	frame = s.CheckFragmentReset(frame)

	s.mu.Lock()
	changed := frame != s.frameNumber
	if changed {
		s.frameNumber = frame
	}
	s.mu.Unlock()

	if changed {
		s.renderCurrentFrame()
	}
	return true
}

// RenderNow recomputes the current frame from media time and renders it,
// regardless of whether the render loop is running.
func (s *Session) RenderNow() {
	frame := s.clock.FrameFromTime(s.media.CurrentTime())

	s.mu.Lock()
	s.frameNumber = frame
	s.mu.Unlock()

	s.renderCurrentFrame()
}

// renderCurrentFrame clears the surface, draws the optional readouts and
// every renderable stored for the current frame, then advances the tracked
// frame counter. A frame with no overlay entry is a valid empty draw.
func (s *Session) renderCurrentFrame() {
	s.mu.Lock()
	ready := s.loading.ReadyToProcessFrames
	frame := s.frameNumber
	s.mu.Unlock()

	if !ready {
		if s.logger != nil {
			s.logger.Debug("not ready to process frames, skipping render", "session_id", s.id)
		}
		return
	}

	m := s.surface.Metrics()
	s.surface.Clear(render.Rect{X: 0, Y: 0, W: m.Width, H: m.Height})

	size := readoutFontSize(m, s.logger)

	if s.showFrameCount {
		text := fmt.Sprintf("Frame %d", frame)
		w := s.surface.MeasureTextWidth(text, size)
		s.surface.FillText(text, m.Width-w-readoutPad, readoutPad, size, readoutTextColor)
	}

	if s.showTimestamp {
		text := formatTime(s.media.CurrentTime())
		w := s.surface.MeasureTextWidth(text, size)
		box := render.Rect{
			X: readoutPad,
			Y: m.Height - size - 3*readoutPad,
			W: w + 2*readoutPad,
			H: size + 2*readoutPad,
		}
		s.surface.FillRect(box, readoutBackColor)
		s.surface.FillText(text, box.X+readoutPad, box.Y+readoutPad, size, readoutTextColor)
	}

	for _, r := range s.engine.ForFrame(frame) {
		if !r.Ready() {
			continue
		}
		r.Draw(s.surface, s.thumbnail)
	}

	s.mu.Lock()
	s.frameNumber++
	s.mu.Unlock()
}

// StateDump returns a human-readable multi-line dump of the session state.
func (s *Session) StateDump() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fmt.Sprintf(
		"frame number: %d\n"+
			"playing: %t\n"+
			"autoplay: %t\n"+
			"loop: %t\n"+
			"manual seek: %t\n"+
			"show controls: %t\n"+
			"rendered: %t\n"+
			"size prepared: %t\n"+
			"data loaded: %t\n"+
			"overlay can be prepared: %t\n"+
			"overlay prepared: %t\n"+
			"preparing overlay: %t\n"+
			"ready to process frames: %t",
		s.frameNumber,
		s.dynamic.Playing,
		s.dynamic.Autoplay,
		s.dynamic.Loop,
		s.dynamic.ManualSeek,
		s.dynamic.ShowControls,
		s.loading.IsRendered,
		s.loading.IsSizePrepared,
		s.loading.IsDataLoaded,
		s.loading.OverlayCanBePrepared,
		s.loading.IsOverlayPrepared,
		s.loading.IsPreparingOverlay,
		s.loading.ReadyToProcessFrames,
	)
}

// Close stops the render loop. The session is unusable afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	close(s.done)
}

// readoutFontSize derives the readout text size from surface height with
// the same zero-height clamp the overlay layout uses.
func readoutFontSize(m render.Metrics, logger *slog.Logger) float64 {
	size := m.Height / 40
	if size <= 0 {
		if logger != nil {
			logger.Warn("zero-height surface measurement, clamping readout font size")
		}
		return 10
	}
	if size < 10 {
		return 10
	}
	return size
}

// formatTime renders elapsed seconds as mm:ss.cc, with an hour prefix when
// needed.
func formatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	sec := total % 60
	cs := int(seconds*100) % 100
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, sec, cs)
	}
	return fmt.Sprintf("%02d:%02d.%02d", m, sec, cs)
}
