package media

import (
	"encoding/json"
	"testing"
)

func TestParseRational(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"25", 25},
		{"30000/1001", 30000.0 / 1001},
		{"24/1", 24},
		{"", 0},
		{"abc", 0},
		{"30/0", 0},
		{"x/y", 0},
	}

	for _, tt := range tests {
		if got := parseRational(tt.in); got != tt.want {
			t.Errorf("parseRational(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFFprobeOutputParsing(t *testing.T) {
	raw := []byte(`{
		"streams": [
			{"codec_type": "audio", "codec_name": "aac"},
			{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "r_frame_rate": "30000/1001"}
		],
		"format": {"duration": "12.480000"}
	}`)

	var parsed ffprobeOutput
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}

	if parsed.Format.Duration != "12.480000" {
		t.Errorf("duration = %q", parsed.Format.Duration)
	}
	if len(parsed.Streams) != 2 {
		t.Fatalf("streams = %d, want 2", len(parsed.Streams))
	}
	if parsed.Streams[1].Width != 1920 || parsed.Streams[1].Height != 1080 {
		t.Errorf("video size = %dx%d, want 1920x1080", parsed.Streams[1].Width, parsed.Streams[1].Height)
	}
}
