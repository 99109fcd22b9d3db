// Package render defines the 2D raster drawing surface the overlay engine
// draws on, and a software implementation backed by an in-memory image.
// All geometry is in absolute pixel units.
package render

import "image/color"

// Metrics describes the drawable area of a surface.
type Metrics struct {
	Width  float64
	Height float64
}

// Valid reports whether the surface has been sized. Renderable setup must
// not run against invalid metrics.
func (m Metrics) Valid() bool {
	return m.Width > 0 && m.Height > 0
}

// Rect is an axis-aligned rectangle in pixel coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Surface accepts the drawing primitives the overlay engine needs. Text
// positions are the top-left corner of the rendered line; size is the font
// size in pixels.
type Surface interface {
	Metrics() Metrics
	MeasureTextWidth(text string, size float64) float64
	Clear(r Rect)
	FillRect(r Rect, c color.Color)
	StrokeRect(r Rect, c color.Color, lineWidth float64)
	FillText(text string, x, y, size float64, c color.Color)
}
