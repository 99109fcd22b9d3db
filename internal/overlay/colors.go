package overlay

import (
	"image/color"
	"math"
	"math/rand"
	"sync"
)

const (
	// DefaultPaletteSize is the number of evenly spaced hues generated for
	// overlay coloring.
	DefaultPaletteSize = 36

	paletteSaturation = 1.0
	paletteLightness  = 0.5
	paletteAlpha      = 0.75
)

// ColorTable assigns stable colors to overlay identities. The palette is
// generated lazily on first lookup and never grows past its fixed size; a
// random palette entry is cached per identity index, so the same identity
// keeps its color across frames and redraws. Two identities may land on the
// same color by chance; that is accepted.
type ColorTable struct {
	mu       sync.Mutex
	size     int
	palette  []color.NRGBA
	assigned map[int]color.NRGBA
	rng      *rand.Rand
}

// NewColorTable creates a table with the given palette size. A non-positive
// size falls back to DefaultPaletteSize.
func NewColorTable(size int, seed int64) *ColorTable {
	if size <= 0 {
		size = DefaultPaletteSize
	}
	return &ColorTable{
		size:     size,
		assigned: make(map[int]color.NRGBA),
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// ForIndex returns the color assigned to an identity index, picking and
// caching one on first request.
func (t *ColorTable) ForIndex(index int) color.NRGBA {
	t.mu.Lock()
	defer t.mu.Unlock()

	if c, ok := t.assigned[index]; ok {
		return c
	}

	if t.palette == nil {
		t.palette = make([]color.NRGBA, t.size)
		for i := range t.palette {
			hue := float64(i) * 360 / float64(t.size)
			t.palette[i] = hslaToNRGBA(hue, paletteSaturation, paletteLightness, paletteAlpha)
		}
	}

	c := t.palette[t.rng.Intn(len(t.palette))]
	t.assigned[index] = c
	return c
}

// PaletteSize returns the fixed palette size.
func (t *ColorTable) PaletteSize() int {
	return t.size
}

// hslaToNRGBA converts an HSLA color (hue in degrees, s/l/a in [0,1]) to
// non-premultiplied RGBA.
func hslaToNRGBA(h, s, l, a float64) color.NRGBA {
	c := (1 - math.Abs(2*l-1)) * s
	hp := math.Mod(h, 360) / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))

	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	m := l - c/2
	return color.NRGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: uint8(math.Round(a * 255)),
	}
}
