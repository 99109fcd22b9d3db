// Package media abstracts the playback surface the overlay engine
// synchronizes against: something that reports current time, duration and
// natural dimensions, accepts play/pause/seek/loop directives and emits
// discrete playback events. The actual decode surface lives outside this
// process; ClockSurface stands in for it.
package media

// Event is a discrete playback signal.
type Event int

const (
	EventMetadataReady Event = iota
	EventDataReady
	EventPlay
	EventPause
	EventEnded
	EventSeeked
)

func (e Event) String() string {
	switch e {
	case EventMetadataReady:
		return "metadata-ready"
	case EventDataReady:
		return "data-ready"
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventEnded:
		return "ended"
	case EventSeeked:
		return "seeked"
	default:
		return "unknown"
	}
}

// Surface is the playback surface contract.
type Surface interface {
	// CurrentTime returns the playback position in seconds.
	CurrentTime() float64
	// Duration returns the media duration in seconds.
	Duration() float64
	// NaturalSize returns the media's pixel dimensions.
	NaturalSize() (width, height int)

	Playing() bool
	Ended() bool
	Loop() bool

	Play()
	Pause()
	Seek(t float64)
	SetLoop(loop bool)

	// OnEvent registers a callback for playback events. Callbacks run on
	// the goroutine that triggered the event.
	OnEvent(fn func(Event))
}
