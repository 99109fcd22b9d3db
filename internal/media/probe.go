package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// ProbeResult holds the stream properties the player needs.
type ProbeResult struct {
	Duration  float64
	Width     int
	Height    int
	FrameRate float64
	Codec     string
}

// Prober inspects a media file for its playback properties.
type Prober interface {
	Probe(ctx context.Context, filePath string) (*ProbeResult, error)
}

// FFprobe shells out to ffprobe for stream inspection.
type FFprobe struct {
	path   string
	logger *slog.Logger
}

// NewFFprobe creates a prober using the given ffprobe binary, or "ffprobe"
// from PATH when empty.
func NewFFprobe(path string, logger *slog.Logger) *FFprobe {
	if path == "" {
		path = "ffprobe"
	}
	return &FFprobe{path: path, logger: logger}
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (f *FFprobe) Probe(ctx context.Context, filePath string) (*ProbeResult, error) {
	cmd := exec.CommandContext(ctx, f.path,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed for %s: %w", filePath, err)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	result := &ProbeResult{}
	if parsed.Format.Duration != "" {
		result.Duration, _ = strconv.ParseFloat(parsed.Format.Duration, 64)
	}

	for _, stream := range parsed.Streams {
		if stream.CodecType != "video" {
			continue
		}
		result.Width = stream.Width
		result.Height = stream.Height
		result.Codec = stream.CodecName
		result.FrameRate = parseRational(stream.RFrameRate)
		break
	}

	if f.logger != nil {
		f.logger.Info("probed media",
			"path", filePath,
			"duration", result.Duration,
			"size", fmt.Sprintf("%dx%d", result.Width, result.Height),
			"frame_rate", result.FrameRate,
		)
	}
	return result, nil
}

// parseRational parses ffprobe rate strings like "30000/1001" or "25".
func parseRational(s string) float64 {
	if s == "" {
		return 0
	}
	if idx := strings.Index(s, "/"); idx != -1 {
		num, err1 := strconv.ParseFloat(s[:idx], 64)
		den, err2 := strconv.ParseFloat(s[idx+1:], 64)
		if err1 != nil || err2 != nil || den == 0 {
			return 0
		}
		return num / den
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// StubProber returns a fixed result, for tests and for environments
// without ffprobe.
type StubProber struct {
	Result ProbeResult
	Err    error
}

func (p *StubProber) Probe(ctx context.Context, filePath string) (*ProbeResult, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	r := p.Result
	return &r, nil
}
