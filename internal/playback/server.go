package playback

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/voxel51/player51/internal/library"
)

type MediaServer interface {
	ServeMedia(w http.ResponseWriter, r *http.Request, m *library.Media) error
}

type Server struct {
	logger *slog.Logger
}

func NewServer(logger *slog.Logger) *Server {
	return &Server{logger: logger}
}

// ServeMedia streams a registered media file, honoring Range requests. HEAD
// requests return the headers only.
func (s *Server) ServeMedia(w http.ResponseWriter, r *http.Request, m *library.Media) error {
	file, err := os.Open(m.Path)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "media file not found", http.StatusNotFound)
			return nil
		}
		return fmt.Errorf("failed to open media file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat media file: %w", err)
	}

	size := stat.Size()
	contentType := mime.TypeByExtension(filepath.Ext(m.Path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", contentType)

	br, err := ParseRange(r.Header.Get("Range"), size)

	if err == ErrUnsatisfiable {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	}

	// An unparseable Range header falls back to the whole file.
	if err != nil && err != ErrInvalidRange {
		return err
	}

	if br == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return nil
		}
		_, err := io.Copy(w, file)
		return err
	}

	w.Header().Set("Content-Length", fmt.Sprintf("%d", br.Length()))
	w.Header().Set("Content-Range", br.ContentRange(size))
	w.WriteHeader(http.StatusPartialContent)

	if r.Method == http.MethodHead {
		return nil
	}

	if _, err := file.Seek(br.Start, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("serving media range",
			"media_id", m.ID,
			"start", br.Start,
			"end", br.End,
			"size", size,
		)
	}

	_, err = io.CopyN(w, file, br.Length())
	return err
}
