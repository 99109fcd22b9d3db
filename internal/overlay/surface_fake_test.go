package overlay

import (
	"image/color"

	"github.com/voxel51/player51/internal/render"
)

// fakeSurface records draw calls for assertions. Text measures at a fixed
// width per character so layout math is predictable.
type fakeSurface struct {
	metrics   render.Metrics
	charWidth float64
	fills     []render.Rect
	strokes   []render.Rect
	texts     []string
	clears    int
}

func newFakeSurface(w, h float64) *fakeSurface {
	return &fakeSurface{
		metrics:   render.Metrics{Width: w, Height: h},
		charWidth: 7,
	}
}

func (f *fakeSurface) Metrics() render.Metrics {
	return f.metrics
}

func (f *fakeSurface) MeasureTextWidth(text string, size float64) float64 {
	return float64(len(text)) * f.charWidth
}

func (f *fakeSurface) Clear(r render.Rect) {
	f.clears++
}

func (f *fakeSurface) FillRect(r render.Rect, c color.Color) {
	f.fills = append(f.fills, r)
}

func (f *fakeSurface) StrokeRect(r render.Rect, c color.Color, lineWidth float64) {
	f.strokes = append(f.strokes, r)
}

func (f *fakeSurface) FillText(text string, x, y, size float64, c color.Color) {
	f.texts = append(f.texts, text)
}
