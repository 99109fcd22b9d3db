// Package frameclock converts continuous playback time into discrete frame
// numbers and models the optional fragment sub-range playback is locked to.
package frameclock

import (
	"fmt"
	"math"
)

// Clock derives integer frame numbers from playback time at a fixed frame
// rate. The rate is fixed for the lifetime of a session; a different rate
// requires a new Clock.
type Clock struct {
	frameRate       float64
	frameZeroOffset int
}

// New creates a Clock. frameRate must be positive; frameZeroOffset selects
// whether the frame shown at t=0 is numbered 0 or 1.
func New(frameRate float64, frameZeroOffset int) (*Clock, error) {
	if frameRate <= 0 {
		return nil, fmt.Errorf("frame rate must be positive, got %v", frameRate)
	}
	if frameZeroOffset != 0 && frameZeroOffset != 1 {
		return nil, fmt.Errorf("frame zero offset must be 0 or 1, got %d", frameZeroOffset)
	}
	return &Clock{frameRate: frameRate, frameZeroOffset: frameZeroOffset}, nil
}

// FrameRate returns the fixed frame rate.
func (c *Clock) FrameRate() float64 {
	return c.frameRate
}

// FrameDuration returns the duration of one frame in seconds.
func (c *Clock) FrameDuration() float64 {
	return 1 / c.frameRate
}

// FrameFromTime maps a playback time in seconds to a frame number:
// floor(t*frameRate + frameZeroOffset). Monotonic non-decreasing in t.
func (c *Clock) FrameFromTime(t float64) int {
	return int(math.Floor(t*c.frameRate + float64(c.frameZeroOffset)))
}

// TimeFromFrame returns the playback time at which a frame begins.
// Inverse of FrameFromTime up to frame granularity.
func (c *Clock) TimeFromFrame(frame int) float64 {
	return float64(frame-c.frameZeroOffset) / c.frameRate
}
