package overlay

import (
	"image/color"
	"log/slog"
	"strconv"
	"strings"

	"github.com/voxel51/player51/internal/render"
)

const (
	// minFontSize is substituted when a zero-height measurement is observed,
	// which happens when the drawing surface has not been sized yet.
	minFontSize = 10

	headerFontScale = 1.0 / 32
	attrFontScale   = 0.8
	textPad         = 10
	headerPadY      = 4
	linePad         = 4
	blockPad        = 10
	boxLineWidth    = 2
)

var (
	textColor      = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	blockBackColor = color.NRGBA{A: 200}
)

// Renderable is a prepared overlay unit that can draw itself on a raster
// surface. Construction is cheap; Setup performs the expensive layout and
// text measurement work exactly once, and may be deferred until the surface
// has valid metrics. Draw before a completed Setup is a no-op.
type Renderable interface {
	FrameNumber() int
	Setup(s render.Surface)
	Ready() bool
	Draw(s render.Surface, thumbnail bool)
}

// fontSizeFor derives the overlay font size from surface height, clamping
// to minFontSize when the height measures zero.
func fontSizeFor(m render.Metrics, logger *slog.Logger) float64 {
	size := m.Height * headerFontScale
	if size <= 0 {
		if logger != nil {
			logger.Warn("zero-height surface measurement, clamping font size", "min_px", minFontSize)
		}
		return minFontSize
	}
	return size
}

// ObjectOverlay draws a labeled bounding box with a header bar and an
// attribute line for one object on one frame.
type ObjectOverlay struct {
	label string
	index int
	box   BoundingBox
	attrs []Attribute
	frame int

	colors *ColorTable
	logger *slog.Logger

	ready        bool
	x, y, w, h   float64
	color        color.NRGBA
	labelText    string
	indexText    string
	labelWidth   float64
	indexWidth   float64
	headerWidth  float64
	headerHeight float64
	fontSize     float64
	attrFontSize float64
	attrText     string
}

// NewObjectOverlay builds an overlay for one object descriptor anchored at
// the given frame number.
func NewObjectOverlay(o Object, frame int, colors *ColorTable, logger *slog.Logger) *ObjectOverlay {
	return &ObjectOverlay{
		label:  o.Label,
		index:  o.Index,
		box:    o.BoundingBox,
		attrs:  o.Attrs,
		frame:  frame,
		colors: colors,
		logger: logger,
	}
}

func (o *ObjectOverlay) FrameNumber() int {
	return o.frame
}

func (o *ObjectOverlay) Ready() bool {
	return o.ready
}

// Setup converts the relative bounding box to pixel geometry, assigns the
// identity color and lays out the header bar. No-op until the surface has
// valid metrics, and after the first completed run.
func (o *ObjectOverlay) Setup(s render.Surface) {
	if o.ready {
		return
	}

	m := s.Metrics()
	if !m.Valid() {
		if o.logger != nil {
			o.logger.Debug("surface not sized, deferring object overlay setup", "frame", o.frame)
		}
		return
	}

	o.x = o.box.TopLeft.X * m.Width
	o.y = o.box.TopLeft.Y * m.Height
	o.w = (o.box.BottomRight.X - o.box.TopLeft.X) * m.Width
	o.h = (o.box.BottomRight.Y - o.box.TopLeft.Y) * m.Height

	o.color = o.colors.ForIndex(o.index)

	o.fontSize = fontSizeFor(m, o.logger)
	o.attrFontSize = o.fontSize * attrFontScale
	o.labelText = strings.ToUpper(o.label)
	o.indexText = "ID " + strconv.Itoa(o.index)
	o.labelWidth = s.MeasureTextWidth(o.labelText, o.fontSize)
	o.indexWidth = s.MeasureTextWidth(o.indexText, o.fontSize)

	// The header must fit both texts with padding, but never be narrower
	// than the box it sits on.
	o.headerWidth = o.labelWidth + o.indexWidth + 3*textPad
	if o.headerWidth < o.w {
		o.headerWidth = o.w
	}
	o.headerHeight = o.fontSize + 2*headerPadY

	if len(o.attrs) > 0 {
		values := make([]string, len(o.attrs))
		for i, a := range o.attrs {
			values[i] = a.ValueString()
		}
		o.attrText = strings.Join(values, ", ")
	}

	o.ready = true
}

// Draw paints the box outline, and unless thumbnail mode is on, the header
// bar with label and identity plus the attribute line beneath the box.
func (o *ObjectOverlay) Draw(s render.Surface, thumbnail bool) {
	if !o.ready {
		return
	}

	s.StrokeRect(render.Rect{X: o.x, Y: o.y, W: o.w, H: o.h}, o.color, boxLineWidth)

	if thumbnail {
		return
	}

	header := render.Rect{X: o.x, Y: o.y - o.headerHeight, W: o.headerWidth, H: o.headerHeight}
	s.FillRect(header, o.color)
	s.FillText(o.labelText, o.x+textPad, header.Y+headerPadY, o.fontSize, textColor)
	s.FillText(o.indexText, o.x+o.headerWidth-o.indexWidth-textPad, header.Y+headerPadY, o.fontSize, textColor)

	if o.attrText != "" {
		s.FillText(o.attrText, o.x+textPad, o.y+o.h+headerPadY, o.attrFontSize, textColor)
	}
}

// FrameAttributes draws a block of whole-frame attribute lines in the
// top-left corner of the surface.
type FrameAttributes struct {
	attrs []Attribute
	frame int

	logger *slog.Logger

	ready      bool
	lines      []string
	fontSize   float64
	lineHeight float64
	blockW     float64
	blockH     float64
}

// NewFrameAttributes builds a frame-level attribute overlay anchored at the
// given frame number.
func NewFrameAttributes(attrs []Attribute, frame int, logger *slog.Logger) *FrameAttributes {
	return &FrameAttributes{attrs: attrs, frame: frame, logger: logger}
}

func (f *FrameAttributes) FrameNumber() int {
	return f.frame
}

func (f *FrameAttributes) Ready() bool {
	return f.ready
}

// Setup builds one display line per attribute and measures the block.
func (f *FrameAttributes) Setup(s render.Surface) {
	if f.ready {
		return
	}

	m := s.Metrics()
	if !m.Valid() {
		if f.logger != nil {
			f.logger.Debug("surface not sized, deferring frame attribute setup", "frame", f.frame)
		}
		return
	}

	f.fontSize = fontSizeFor(m, f.logger)
	f.lineHeight = f.fontSize + linePad

	f.lines = make([]string, len(f.attrs))
	widest := 0.0
	for i, a := range f.attrs {
		line := strings.ReplaceAll(a.Name+": "+a.ValueString(), "_", " ")
		f.lines[i] = line
		if w := s.MeasureTextWidth(line, f.fontSize); w > widest {
			widest = w
		}
	}

	f.blockW = widest + 2*blockPad
	f.blockH = f.lineHeight*float64(len(f.lines)) + 2*blockPad

	f.ready = true
}

// Draw paints the background block and one line per attribute. Suppressed
// entirely in thumbnail mode.
func (f *FrameAttributes) Draw(s render.Surface, thumbnail bool) {
	if !f.ready || thumbnail {
		return
	}

	s.FillRect(render.Rect{X: 0, Y: 0, W: f.blockW, H: f.blockH}, blockBackColor)
	for i, line := range f.lines {
		s.FillText(line, blockPad, blockPad+float64(i)*f.lineHeight, f.fontSize, textColor)
	}
}
