package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ImageSurface is a software Surface drawing into an in-memory RGBA image.
// Text uses the embedded Go Regular typeface. Safe for concurrent use.
type ImageSurface struct {
	mu     sync.Mutex
	img    *image.RGBA
	font   *opentype.Font
	faces  map[int]font.Face
	logger *slog.Logger
}

// NewImageSurface creates a surface of the given pixel dimensions.
func NewImageSurface(width, height int, logger *slog.Logger) (*ImageSurface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("surface dimensions must be positive, got %dx%d", width, height)
	}

	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded font: %w", err)
	}

	return &ImageSurface{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		font:   parsed,
		faces:  make(map[int]font.Face),
		logger: logger,
	}, nil
}

func (s *ImageSurface) Metrics() Metrics {
	b := s.img.Bounds()
	return Metrics{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// face returns a cached font.Face for the requested pixel size.
func (s *ImageSurface) face(size float64) font.Face {
	px := int(math.Round(size))
	if px < 1 {
		px = 1
	}
	if f, ok := s.faces[px]; ok {
		return f
	}

	f, err := opentype.NewFace(s.font, &opentype.FaceOptions{
		Size:    float64(px),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to create font face", "size", px, "error", err)
		}
		return nil
	}
	s.faces[px] = f
	return f
}

func (s *ImageSurface) MeasureTextWidth(text string, size float64) float64 {
	if text == "" {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.face(size)
	if f == nil {
		return 0
	}
	return float64(font.MeasureString(f, text)) / 64
}

func (s *ImageSurface) Clear(r Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draw.Draw(s.img, clipRect(r, s.img.Bounds()), image.Transparent, image.Point{}, draw.Src)
}

func (s *ImageSurface) FillRect(r Rect, c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draw.Draw(s.img, clipRect(r, s.img.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

func (s *ImageSurface) StrokeRect(r Rect, c color.Color, lineWidth float64) {
	if lineWidth <= 0 {
		lineWidth = 1
	}

	top := Rect{X: r.X, Y: r.Y, W: r.W, H: lineWidth}
	bottom := Rect{X: r.X, Y: r.Y + r.H - lineWidth, W: r.W, H: lineWidth}
	left := Rect{X: r.X, Y: r.Y, W: lineWidth, H: r.H}
	right := Rect{X: r.X + r.W - lineWidth, Y: r.Y, W: lineWidth, H: r.H}

	for _, edge := range []Rect{top, bottom, left, right} {
		s.FillRect(edge, c)
	}
}

// FillText draws one line of text with its top-left corner at (x, y).
func (s *ImageSurface) FillText(text string, x, y, size float64, c color.Color) {
	if text == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.face(size)
	if f == nil {
		return
	}

	// The drawer positions text by baseline; offset by the ascent so the
	// caller works in top-left coordinates like the rest of the surface.
	ascent := float64(f.Metrics().Ascent) / 64
	d := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: f,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6((y + ascent) * 64)},
	}
	d.DrawString(text)
}

// Image returns the backing image. The caller must not mutate it while the
// surface is in use.
func (s *ImageSurface) Image() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.img
}

// EncodePNG writes the current surface contents as a PNG.
func (s *ImageSurface) EncodePNG(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return png.Encode(w, s.img)
}

// At returns the pixel at (x, y), for inspection in tests.
func (s *ImageSurface) At(x, y int) color.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.img.At(x, y)
}

func clipRect(r Rect, bounds image.Rectangle) image.Rectangle {
	out := image.Rect(
		int(math.Floor(r.X)),
		int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.W)),
		int(math.Ceil(r.Y+r.H)),
	)
	return out.Intersect(bounds)
}
