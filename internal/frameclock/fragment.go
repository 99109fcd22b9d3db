package frameclock

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNoFragment is returned when a media locator carries no time-range hint.
var ErrNoFragment = errors.New("no fragment hint in locator")

// Fragment is a sub-range of the media that playback may be locked to.
// Locked starts true and is dropped permanently the first time the user
// repositions playback by hand; only an explicit reset re-enables it.
type Fragment struct {
	BeginTime  float64
	EndTime    float64
	BeginFrame int
	EndFrame   int
	Locked     bool
}

// NewFragment builds a Fragment from a parsed time range, deriving the
// frame bounds through the clock. The fragment starts locked.
func NewFragment(beginTime, endTime float64, clock *Clock) *Fragment {
	return &Fragment{
		BeginTime:  beginTime,
		EndTime:    endTime,
		BeginFrame: clock.FrameFromTime(beginTime),
		EndFrame:   clock.FrameFromTime(endTime),
		Locked:     true,
	}
}

// ParseHint extracts a media-fragment time range from a locator of the form
// "path/to/video.mp4#t=1.5,5". Both endpoints are required and must satisfy
// 0 <= begin < end. Returns ErrNoFragment if the locator has no "#t=" part;
// any malformed hint is also reported as an error.
func ParseHint(locator string) (begin, end float64, err error) {
	idx := strings.Index(locator, "#")
	if idx == -1 {
		return 0, 0, ErrNoFragment
	}

	frag := locator[idx+1:]
	if !strings.HasPrefix(frag, "t=") {
		return 0, 0, ErrNoFragment
	}

	spec := strings.TrimPrefix(frag, "t=")
	parts := strings.Split(spec, ",")
	if len(parts) != 2 {
		return 0, 0, errors.New("fragment hint must be t=begin,end")
	}

	begin, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, errors.New("invalid fragment begin time")
	}
	end, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, errors.New("invalid fragment end time")
	}

	if begin < 0 || end <= begin {
		return 0, 0, errors.New("fragment range must satisfy 0 <= begin < end")
	}

	return begin, end, nil
}

// StripHint returns the locator without its fragment part, suitable for
// opening the underlying media file.
func StripHint(locator string) string {
	if idx := strings.Index(locator, "#"); idx != -1 {
		return locator[:idx]
	}
	return locator
}
