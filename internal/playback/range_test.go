package playback

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/voxel51/player51/internal/library"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		size      int64
		wantStart int64
		wantEnd   int64
		wantNil   bool
		wantErr   error
	}{
		{"empty header", "", 1000, 0, 0, true, nil},
		{"full range", "bytes=0-999", 1000, 0, 999, false, nil},
		{"partial start", "bytes=500-", 1000, 500, 999, false, nil},
		{"suffix range", "bytes=-500", 1000, 500, 999, false, nil},
		{"single byte", "bytes=0-0", 1000, 0, 0, false, nil},
		{"middle range", "bytes=100-199", 1000, 100, 199, false, nil},
		{"beyond size clamped", "bytes=0-2000", 1000, 0, 999, false, nil},
		{"suffix larger than file", "bytes=-2000", 500, 0, 499, false, nil},
		{"last byte", "bytes=999-", 1000, 999, 999, false, nil},
		{"multi range takes first", "bytes=0-99, 200-299", 1000, 0, 99, false, nil},

		{"unsatisfiable start", "bytes=1000-", 1000, 0, 0, false, ErrUnsatisfiable},
		{"unsatisfiable beyond", "bytes=1500-2000", 1000, 0, 0, false, ErrUnsatisfiable},
		{"invalid format no bytes", "invalid", 1000, 0, 0, false, ErrInvalidRange},
		{"wrong unit", "chars=0-100", 1000, 0, 0, false, ErrInvalidRange},
		{"invalid start", "bytes=abc-100", 1000, 0, 0, false, ErrInvalidRange},
		{"invalid end", "bytes=0-abc", 1000, 0, 0, false, ErrInvalidRange},
		{"negative suffix", "bytes=-0", 1000, 0, 0, false, ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.header, tt.size)

			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("ParseRange() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("ParseRange() unexpected error: %v", err)
				return
			}

			if tt.wantNil {
				if got != nil {
					t.Errorf("ParseRange() = %v, want nil", got)
				}
				return
			}

			if got == nil {
				t.Errorf("ParseRange() = nil, want non-nil")
				return
			}

			if got.Start != tt.wantStart || got.End != tt.wantEnd {
				t.Errorf("ParseRange() = {%d, %d}, want {%d, %d}", got.Start, got.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestByteRange_Length(t *testing.T) {
	tests := []struct {
		start int64
		end   int64
		want  int64
	}{
		{0, 99, 100},
		{0, 0, 1},
		{500, 999, 500},
	}

	for _, tt := range tests {
		r := ByteRange{Start: tt.start, End: tt.end}
		if got := r.Length(); got != tt.want {
			t.Errorf("Length() = %d, want %d", got, tt.want)
		}
	}
}

func testMedia(t *testing.T, content string) *library.Media {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return &library.Media{ID: "m1", Path: path, Filename: "clip.mp4"}
}

func TestServeMedia_FullFile(t *testing.T) {
	srv := NewServer(nil)
	m := testMedia(t, "0123456789")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/media/m1/file", nil)

	if err := srv.ServeMedia(w, r, m); err != nil {
		t.Fatalf("ServeMedia() error = %v", err)
	}

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "0123456789" {
		t.Errorf("body = %q, want full content", got)
	}
	if got := w.Header().Get("Accept-Ranges"); got != "bytes" {
		t.Errorf("Accept-Ranges = %q, want bytes", got)
	}
	if got := w.Header().Get("Content-Type"); got != "video/mp4" {
		t.Errorf("Content-Type = %q, want video/mp4", got)
	}
}

func TestServeMedia_PartialContent(t *testing.T) {
	srv := NewServer(nil)
	m := testMedia(t, "0123456789")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/media/m1/file", nil)
	r.Header.Set("Range", "bytes=2-5")

	if err := srv.ServeMedia(w, r, m); err != nil {
		t.Fatalf("ServeMedia() error = %v", err)
	}

	if w.Code != http.StatusPartialContent {
		t.Errorf("status = %d, want 206", w.Code)
	}
	if got := w.Body.String(); got != "2345" {
		t.Errorf("body = %q, want %q", got, "2345")
	}
	if got := w.Header().Get("Content-Range"); got != "bytes 2-5/10" {
		t.Errorf("Content-Range = %q, want bytes 2-5/10", got)
	}
	if got := w.Header().Get("Content-Length"); got != "4" {
		t.Errorf("Content-Length = %q, want 4", got)
	}
}

func TestServeMedia_Unsatisfiable(t *testing.T) {
	srv := NewServer(nil)
	m := testMedia(t, "0123456789")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/media/m1/file", nil)
	r.Header.Set("Range", "bytes=100-")

	if err := srv.ServeMedia(w, r, m); err != nil {
		t.Fatalf("ServeMedia() error = %v", err)
	}

	if w.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Errorf("status = %d, want 416", w.Code)
	}
	if got := w.Header().Get("Content-Range"); got != "bytes */10" {
		t.Errorf("Content-Range = %q, want bytes */10", got)
	}
}

func TestServeMedia_InvalidRangeFallsBack(t *testing.T) {
	srv := NewServer(nil)
	m := testMedia(t, "0123456789")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/media/m1/file", nil)
	r.Header.Set("Range", "chars=0-5")

	if err := srv.ServeMedia(w, r, m); err != nil {
		t.Fatalf("ServeMedia() error = %v", err)
	}

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 full response", w.Code)
	}
	if got := w.Body.String(); got != "0123456789" {
		t.Errorf("body = %q, want full content", got)
	}
}

func TestServeMedia_Head(t *testing.T) {
	srv := NewServer(nil)
	m := testMedia(t, "0123456789")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodHead, "/media/m1/file", nil)
	r.Header.Set("Range", "bytes=0-3")

	if err := srv.ServeMedia(w, r, m); err != nil {
		t.Fatalf("ServeMedia() error = %v", err)
	}

	if w.Code != http.StatusPartialContent {
		t.Errorf("status = %d, want 206", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("HEAD body length = %d, want 0", w.Body.Len())
	}
}

func TestServeMedia_MissingFile(t *testing.T) {
	srv := NewServer(nil)
	m := &library.Media{ID: "m1", Path: filepath.Join(t.TempDir(), "gone.mp4")}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/media/m1/file", nil)

	if err := srv.ServeMedia(w, r, m); err != nil {
		t.Fatalf("ServeMedia() error = %v", err)
	}
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
