// Package library is the registry of local media files and the annotation
// payloads attached to them.
package library

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

// Media is one registered video file with its probed stream properties.
type Media struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	FrameRate float64   `json:"frame_rate"`
	Duration  float64   `json:"duration"`
	Probed    bool      `json:"probed"`
	CreatedAt time.Time `json:"created_at"`
}

// Annotation records one overlay payload attached to a media item. The
// payload itself is fetched on demand from the locator; the record keeps
// summary counts for listings.
type Annotation struct {
	ID          string    `json:"id"`
	MediaID     string    `json:"media_id"`
	Locator     string    `json:"locator"`
	ObjectCount int       `json:"object_count"`
	FrameCount  int       `json:"frame_count"`
	CreatedAt   time.Time `json:"created_at"`
}

var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
}

func NewID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:])
}

func IsVideoFile(filename string) bool {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 {
		return false
	}
	return VideoExtensions[strings.ToLower(filename[idx:])]
}
