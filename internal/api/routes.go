package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/voxel51/player51/internal/config"
	"github.com/voxel51/player51/internal/overlay"
	"github.com/voxel51/player51/internal/render"
	"github.com/voxel51/player51/internal/session"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))

		r.Post("/media", registerMediaHandler(cfg))
		r.Get("/media", listMediaHandler(cfg))
		r.Get("/media/{id}", getMediaHandler(cfg))
		r.Delete("/media/{id}", deleteMediaHandler(cfg))
		r.Get("/media/{id}/file", mediaFileHandler(cfg))
		r.Head("/media/{id}/file", mediaFileHandler(cfg))
		r.Post("/media/{id}/annotations", attachAnnotationHandler(cfg))
		r.Get("/media/{id}/annotations", listAnnotationsHandler(cfg))

		r.Post("/sessions", createSessionHandler(cfg))
		r.Get("/sessions", listSessionsHandler(cfg))
		r.Get("/sessions/{id}", getSessionHandler(cfg))
		r.Delete("/sessions/{id}", deleteSessionHandler(cfg))
		r.Get("/sessions/{id}/dump", sessionDumpHandler(cfg))
		r.Get("/sessions/{id}/frame.png", sessionFrameHandler(cfg))
		r.Post("/sessions/{id}/play", sessionPlayHandler(cfg))
		r.Post("/sessions/{id}/pause", sessionPauseHandler(cfg))
		r.Post("/sessions/{id}/seek", sessionSeekHandler(cfg))
		r.Post("/sessions/{id}/loop", sessionLoopHandler(cfg))
		r.Post("/sessions/{id}/reset-fragment", sessionResetFragmentHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: config.Version,
			UptimeS: uptime,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mediaCount, _ := cfg.Library.CountMedia(r.Context())
		WriteJSON(w, http.StatusOK, StatusResponse{
			MediaCount:   mediaCount,
			SessionCount: len(cfg.Sessions.List()),
		})
	}
}

func registerMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterMediaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if req.Path == "" {
			WriteError(w, http.StatusBadRequest, "path is required", "BAD_REQUEST")
			return
		}

		m, err := cfg.Library.RegisterMedia(r.Context(), req.Path)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusCreated, MediaToResponse(m))
	}
}

func listMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := cfg.Library.ListMedia(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list media", "INTERNAL_ERROR")
			return
		}

		resp := MediaListResponse{Media: make([]MediaResponse, len(items))}
		for i, m := range items {
			resp.Media[i] = MediaToResponse(m)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := cfg.Library.GetMedia(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if m == nil {
			WriteError(w, http.StatusNotFound, "media not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, MediaToResponse(m))
	}
}

func deleteMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Library.RemoveMedia(r.Context(), chi.URLParam(r, "id")); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func mediaFileHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		m, err := cfg.Library.GetMedia(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if m == nil {
			WriteError(w, http.StatusNotFound, "media not found", "NOT_FOUND")
			return
		}

		if err := cfg.Playback.ServeMedia(w, r, m); err != nil {
			cfg.Logger.Error("playback error", "error", err, "media_id", id)
		}
	}
}

func attachAnnotationHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AttachAnnotationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Locator == "" {
			WriteError(w, http.StatusBadRequest, "locator is required", "BAD_REQUEST")
			return
		}

		a, _, err := cfg.Library.AttachAnnotation(r.Context(), chi.URLParam(r, "id"), req.Locator)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusCreated, AnnotationToResponse(a))
	}
}

func listAnnotationsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := cfg.Library.GetAnnotations(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		resp := AnnotationListResponse{Annotations: make([]AnnotationResponse, len(items))}
		for i, a := range items {
			resp.Annotations[i] = AnnotationToResponse(a)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func createSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.MediaID == "" {
			WriteError(w, http.StatusBadRequest, "media_id is required", "BAD_REQUEST")
			return
		}

		m, err := cfg.Library.GetMedia(r.Context(), req.MediaID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if m == nil {
			WriteError(w, http.StatusNotFound, "media not found", "NOT_FOUND")
			return
		}

		var p *overlay.Payload
		overlaySource := ""
		if req.AnnotationID != "" {
			p, err = cfg.Library.LoadAnnotation(r.Context(), req.AnnotationID)
			if err != nil {
				WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
				return
			}
			overlaySource = req.AnnotationID
		}

		s, err := cfg.Sessions.Create(m, p, overlaySource, req.Fragment, session.Options{
			Autoplay:       req.Autoplay,
			Loop:           req.Loop,
			ShowFrameCount: req.ShowFrameCount,
			ShowTimestamp:  req.ShowTimestamp,
			Thumbnail:      req.Thumbnail,
		})
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusCreated, SessionToResponse(s))
	}
}

func listSessionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions := cfg.Sessions.List()
		resp := SessionListResponse{Sessions: make([]SessionResponse, len(sessions))}
		for i, s := range sessions {
			resp.Sessions[i] = SessionToResponse(s)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := cfg.Sessions.Get(chi.URLParam(r, "id"))
		if s == nil {
			WriteError(w, http.StatusNotFound, "session not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, SessionToResponse(s))
	}
}

func deleteSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !cfg.Sessions.Delete(chi.URLParam(r, "id")) {
			WriteError(w, http.StatusNotFound, "session not found", "NOT_FOUND")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func sessionDumpHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := cfg.Sessions.Get(chi.URLParam(r, "id"))
		if s == nil {
			WriteError(w, http.StatusNotFound, "session not found", "NOT_FOUND")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(s.StateDump() + "\n"))
	}
}

func sessionFrameHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := cfg.Sessions.Get(chi.URLParam(r, "id"))
		if s == nil {
			WriteError(w, http.StatusNotFound, "session not found", "NOT_FOUND")
			return
		}

		raster, ok := s.Surface().(*render.ImageSurface)
		if !ok {
			WriteError(w, http.StatusInternalServerError, "session has no raster surface", "INTERNAL_ERROR")
			return
		}

		s.RenderNow()

		w.Header().Set("Content-Type", "image/png")
		if err := raster.EncodePNG(w); err != nil {
			cfg.Logger.Error("frame encode error", "error", err, "session_id", s.ID())
		}
	}
}

func sessionPlayHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := cfg.Sessions.Get(chi.URLParam(r, "id"))
		if s == nil {
			WriteError(w, http.StatusNotFound, "session not found", "NOT_FOUND")
			return
		}
		s.Play()
		WriteJSON(w, http.StatusOK, SessionToResponse(s))
	}
}

func sessionPauseHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := cfg.Sessions.Get(chi.URLParam(r, "id"))
		if s == nil {
			WriteError(w, http.StatusNotFound, "session not found", "NOT_FOUND")
			return
		}
		s.Pause()
		WriteJSON(w, http.StatusOK, SessionToResponse(s))
	}
}

func sessionSeekHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := cfg.Sessions.Get(chi.URLParam(r, "id"))
		if s == nil {
			WriteError(w, http.StatusNotFound, "session not found", "NOT_FOUND")
			return
		}

		var req SeekRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Time < 0 {
			WriteError(w, http.StatusBadRequest, "time must be non-negative", "BAD_REQUEST")
			return
		}

		s.SeekTime(req.Time)
		WriteJSON(w, http.StatusOK, SessionToResponse(s))
	}
}

func sessionLoopHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := cfg.Sessions.Get(chi.URLParam(r, "id"))
		if s == nil {
			WriteError(w, http.StatusNotFound, "session not found", "NOT_FOUND")
			return
		}

		var req LoopRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		s.SetLoop(req.Loop)
		WriteJSON(w, http.StatusOK, SessionToResponse(s))
	}
}

func sessionResetFragmentHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := cfg.Sessions.Get(chi.URLParam(r, "id"))
		if s == nil {
			WriteError(w, http.StatusNotFound, "session not found", "NOT_FOUND")
			return
		}

		if err := s.ResetToFragment(); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		WriteJSON(w, http.StatusOK, SessionToResponse(s))
	}
}
