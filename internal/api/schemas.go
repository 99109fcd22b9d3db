package api

import (
	"time"

	"github.com/voxel51/player51/internal/frameclock"
	"github.com/voxel51/player51/internal/library"
	"github.com/voxel51/player51/internal/session"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type StatusResponse struct {
	MediaCount   int `json:"media_count"`
	SessionCount int `json:"session_count"`
}

type RegisterMediaRequest struct {
	Path string `json:"path"`
}

type MediaResponse struct {
	ID        string  `json:"id"`
	Path      string  `json:"path"`
	Filename  string  `json:"filename"`
	Size      int64   `json:"size"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	FrameRate float64 `json:"frame_rate"`
	Duration  float64 `json:"duration"`
	Probed    bool    `json:"probed"`
	CreatedAt string  `json:"created_at"`
}

type MediaListResponse struct {
	Media []MediaResponse `json:"media"`
}

type AttachAnnotationRequest struct {
	Locator string `json:"locator"`
}

type AnnotationResponse struct {
	ID          string `json:"id"`
	MediaID     string `json:"media_id"`
	Locator     string `json:"locator"`
	ObjectCount int    `json:"object_count"`
	FrameCount  int    `json:"frame_count"`
	CreatedAt   string `json:"created_at"`
}

type AnnotationListResponse struct {
	Annotations []AnnotationResponse `json:"annotations"`
}

type CreateSessionRequest struct {
	MediaID        string `json:"media_id"`
	AnnotationID   string `json:"annotation_id,omitempty"`
	Fragment       string `json:"fragment,omitempty"`
	Autoplay       bool   `json:"autoplay"`
	Loop           bool   `json:"loop"`
	ShowFrameCount bool   `json:"show_frame_count"`
	ShowTimestamp  bool   `json:"show_timestamp"`
	Thumbnail      bool   `json:"thumbnail"`
}

type FragmentResponse struct {
	BeginTime  float64 `json:"begin_time"`
	EndTime    float64 `json:"end_time"`
	BeginFrame int     `json:"begin_frame"`
	EndFrame   int     `json:"end_frame"`
	Locked     bool    `json:"locked"`
}

type SessionResponse struct {
	ID          string               `json:"id"`
	MediaID     string               `json:"media_id"`
	FrameNumber int                  `json:"frame_number"`
	FrameRate   float64              `json:"frame_rate"`
	Dynamic     session.DynamicState `json:"dynamic"`
	Loading     session.LoadingState `json:"loading"`
	Fragment    *FragmentResponse    `json:"fragment,omitempty"`
}

type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

type SeekRequest struct {
	Time float64 `json:"time"`
}

type LoopRequest struct {
	Loop bool `json:"loop"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func MediaToResponse(m *library.Media) MediaResponse {
	return MediaResponse{
		ID:        m.ID,
		Path:      m.Path,
		Filename:  m.Filename,
		Size:      m.Size,
		Width:     m.Width,
		Height:    m.Height,
		FrameRate: m.FrameRate,
		Duration:  m.Duration,
		Probed:    m.Probed,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

func AnnotationToResponse(a *library.Annotation) AnnotationResponse {
	return AnnotationResponse{
		ID:          a.ID,
		MediaID:     a.MediaID,
		Locator:     a.Locator,
		ObjectCount: a.ObjectCount,
		FrameCount:  a.FrameCount,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
}

func FragmentToResponse(f *frameclock.Fragment) *FragmentResponse {
	if f == nil {
		return nil
	}
	return &FragmentResponse{
		BeginTime:  f.BeginTime,
		EndTime:    f.EndTime,
		BeginFrame: f.BeginFrame,
		EndFrame:   f.EndFrame,
		Locked:     f.Locked,
	}
}

func SessionToResponse(s *session.Session) SessionResponse {
	return SessionResponse{
		ID:          s.ID(),
		MediaID:     s.MediaID(),
		FrameNumber: s.FrameNumber(),
		FrameRate:   s.Clock().FrameRate(),
		Dynamic:     s.Dynamic(),
		Loading:     s.Loading(),
		Fragment:    FragmentToResponse(s.Fragment()),
	}
}
