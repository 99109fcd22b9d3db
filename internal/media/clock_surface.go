package media

import (
	"log/slog"
	"math"
	"sync"
	"time"
)

// ClockSurface simulates a decode surface against the wall clock: while
// playing, the position advances in real time; at the end it either wraps
// (loop) or stops and reports ended. It is the in-process stand-in for the
// external playback surface.
type ClockSurface struct {
	mu       sync.Mutex
	duration float64
	width    int
	height   int
	now      func() time.Time
	logger   *slog.Logger

	playing  bool
	ended    bool
	loop     bool
	loaded   bool
	offset   float64
	playedAt time.Time

	handlers []func(Event)
}

// NewClockSurface creates a surface for media of the given duration and
// natural size. Call Load after registering event handlers to receive the
// readiness events.
func NewClockSurface(duration float64, width, height int, logger *slog.Logger) *ClockSurface {
	return &ClockSurface{
		duration: duration,
		width:    width,
		height:   height,
		now:      time.Now,
		logger:   logger,
	}
}

// SetNowFunc replaces the wall clock, for tests.
func (c *ClockSurface) SetNowFunc(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Load emits the metadata-ready and data-ready events, once.
func (c *ClockSurface) Load() {
	c.mu.Lock()
	if c.loaded {
		c.mu.Unlock()
		return
	}
	c.loaded = true
	c.mu.Unlock()

	c.emit(EventMetadataReady, EventDataReady)
}

func (c *ClockSurface) OnEvent(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, fn)
}

func (c *ClockSurface) Duration() float64 {
	return c.duration
}

func (c *ClockSurface) NaturalSize() (int, int) {
	return c.width, c.height
}

func (c *ClockSurface) CurrentTime() float64 {
	c.mu.Lock()
	t, events := c.advanceLocked()
	c.mu.Unlock()

	c.emit(events...)
	return t
}

func (c *ClockSurface) Playing() bool {
	c.mu.Lock()
	_, events := c.advanceLocked()
	playing := c.playing
	c.mu.Unlock()

	c.emit(events...)
	return playing
}

func (c *ClockSurface) Ended() bool {
	c.mu.Lock()
	_, events := c.advanceLocked()
	ended := c.ended
	c.mu.Unlock()

	c.emit(events...)
	return ended
}

func (c *ClockSurface) Loop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loop
}

func (c *ClockSurface) SetLoop(loop bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loop = loop
}

func (c *ClockSurface) Play() {
	c.mu.Lock()
	if c.playing {
		c.mu.Unlock()
		return
	}
	if c.ended {
		// Replay from the start.
		c.offset = 0
		c.ended = false
	}
	c.playing = true
	c.playedAt = c.now()
	c.mu.Unlock()

	c.emit(EventPlay)
}

func (c *ClockSurface) Pause() {
	c.mu.Lock()
	if !c.playing {
		c.mu.Unlock()
		return
	}
	t, events := c.advanceLocked()
	c.offset = t
	c.playing = false
	c.mu.Unlock()

	c.emit(append(events, EventPause)...)
}

// Seek repositions playback, clamped to [0, duration].
func (c *ClockSurface) Seek(t float64) {
	c.mu.Lock()
	if t < 0 {
		t = 0
	}
	if t > c.duration {
		t = c.duration
	}
	c.offset = t
	c.playedAt = c.now()
	if t < c.duration {
		c.ended = false
	}
	c.mu.Unlock()

	c.emit(EventSeeked)
}

// advanceLocked computes the current position, handling end-of-media. It
// returns any events to emit after the lock is released.
func (c *ClockSurface) advanceLocked() (float64, []Event) {
	if !c.playing {
		return c.offset, nil
	}

	elapsed := c.offset + c.now().Sub(c.playedAt).Seconds()
	if elapsed < c.duration {
		return elapsed, nil
	}

	if c.loop && c.duration > 0 {
		wrapped := math.Mod(elapsed, c.duration)
		c.offset = wrapped
		c.playedAt = c.now()
		return wrapped, nil
	}

	c.offset = c.duration
	c.playing = false
	c.ended = true
	return c.duration, []Event{EventEnded}
}

func (c *ClockSurface) emit(events ...Event) {
	if len(events) == 0 {
		return
	}

	c.mu.Lock()
	handlers := make([]func(Event), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, ev := range events {
		if c.logger != nil {
			c.logger.Debug("media event", "event", ev.String())
		}
		for _, fn := range handlers {
			fn(ev)
		}
	}
}
