package annotations

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const samplePayload = `{
	"objects": [
		{"frame_number": 1, "label": "car", "index": 4,
		 "bounding_box": {"top_left": {"x": 0.1, "y": 0.2}, "bottom_right": {"x": 0.3, "y": 0.4}}}
	]
}`

func TestHTTPFetcher_Success(t *testing.T) {
	var gotAuth, gotRequestID, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Player51-Request-Id")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(samplePayload))
	}))
	defer server.Close()

	f := NewHTTPFetcher("secret-token", 5*time.Second, nil)
	p, err := f.Fetch(context.Background(), server.URL+"/labels.json")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(p.Objects) != 1 {
		t.Fatalf("parsed %d objects, want 1", len(p.Objects))
	}
	if p.Objects[0].Label != "car" || p.Objects[0].FrameNumber != 1 {
		t.Errorf("object = %+v, want label car at frame 1", p.Objects[0])
	}

	if gotAuth != "Bearer secret-token" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("request ID header missing")
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want application/json", gotAccept)
	}
}

func TestHTTPFetcher_NoTokenOmitsAuthorization(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	f := NewHTTPFetcher("", 5*time.Second, nil)
	if _, err := f.Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty", gotAuth)
	}
}

func TestHTTPFetcher_ErrorStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"not found", http.StatusNotFound, false},
		{"unauthorized", http.StatusUnauthorized, false},
		{"server error", http.StatusInternalServerError, true},
		{"bad gateway", http.StatusBadGateway, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer server.Close()

			f := NewHTTPFetcher("", 5*time.Second, nil)
			_, err := f.Fetch(context.Background(), server.URL)

			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("Fetch() error = %v, want *FetchError", err)
			}
			if fetchErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", fetchErr.StatusCode, tt.status)
			}
			if fetchErr.IsRetryable() != tt.retryable {
				t.Errorf("IsRetryable() = %t, want %t", fetchErr.IsRetryable(), tt.retryable)
			}
		})
	}
}

func TestHTTPFetcher_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	f := NewHTTPFetcher("", 5*time.Second, nil)
	if _, err := f.Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("Fetch() expected parse error for invalid JSON")
	}
}

func TestHTTPFetcher_FileLocator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.json")
	if err := os.WriteFile(path, []byte(samplePayload), 0o644); err != nil {
		t.Fatal(err)
	}

	f := NewHTTPFetcher("", 5*time.Second, nil)

	for _, locator := range []string{path, "file://" + path} {
		p, err := f.Fetch(context.Background(), locator)
		if err != nil {
			t.Fatalf("Fetch(%q) error = %v", locator, err)
		}
		if len(p.Objects) != 1 {
			t.Errorf("Fetch(%q) parsed %d objects, want 1", locator, len(p.Objects))
		}
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("LoadFile() expected error for missing file")
	}
}
