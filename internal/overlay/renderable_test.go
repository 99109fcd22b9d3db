package overlay

import (
	"strings"
	"testing"
)

func testObject() Object {
	return Object{
		Label: "person",
		Index: 3,
		BoundingBox: BoundingBox{
			TopLeft:     Point{X: 0.25, Y: 0.5},
			BottomRight: Point{X: 0.75, Y: 1.0},
		},
		Attrs: []Attribute{
			{Name: "pose", Value: "walking", Confidence: 0.9},
			{Name: "occluded", Value: false},
		},
	}
}

func TestObjectOverlay_SetupGeometry(t *testing.T) {
	s := newFakeSurface(800, 600)
	o := NewObjectOverlay(testObject(), 3, NewColorTable(36, 1), nil)

	o.Setup(s)

	if !o.Ready() {
		t.Fatal("overlay should be ready after setup with valid metrics")
	}
	if o.x != 200 || o.y != 300 {
		t.Errorf("top-left = (%v, %v), want (200, 300)", o.x, o.y)
	}
	if o.w != 400 || o.h != 300 {
		t.Errorf("size = (%v, %v), want (400, 300)", o.w, o.h)
	}
	if o.labelText != "PERSON" {
		t.Errorf("labelText = %q, want PERSON", o.labelText)
	}
	if o.attrText != "walking, false" {
		t.Errorf("attrText = %q, want %q", o.attrText, "walking, false")
	}
}

func TestObjectOverlay_HeaderFloorAtBoxWidth(t *testing.T) {
	s := newFakeSurface(800, 600)
	o := NewObjectOverlay(testObject(), 3, NewColorTable(36, 1), nil)

	o.Setup(s)

	// Box is 400px wide; the measured texts are far narrower than that, so
	// the floor applies.
	if o.headerWidth != o.w {
		t.Errorf("headerWidth = %v, want box width %v", o.headerWidth, o.w)
	}

	// A tiny box forces the header to fit the texts instead.
	small := testObject()
	small.BoundingBox.BottomRight = Point{X: 0.26, Y: 0.51}
	o2 := NewObjectOverlay(small, 3, NewColorTable(36, 1), nil)
	o2.Setup(s)

	want := o2.labelWidth + o2.indexWidth + 3*textPad
	if o2.headerWidth != want {
		t.Errorf("headerWidth = %v, want text fit %v", o2.headerWidth, want)
	}
}

func TestObjectOverlay_SetupDeferredOnUnsizedSurface(t *testing.T) {
	unsized := newFakeSurface(0, 0)
	o := NewObjectOverlay(testObject(), 3, NewColorTable(36, 1), nil)

	o.Setup(unsized)
	if o.Ready() {
		t.Fatal("setup must not complete against an unsized surface")
	}

	// Draw before setup degrades to a no-op.
	o.Draw(unsized, false)
	if len(unsized.strokes) != 0 || len(unsized.fills) != 0 {
		t.Error("draw before setup should not emit primitives")
	}

	sized := newFakeSurface(800, 600)
	o.Setup(sized)
	if !o.Ready() {
		t.Fatal("setup should complete once metrics exist")
	}
}

func TestObjectOverlay_SetupRunsOnce(t *testing.T) {
	s := newFakeSurface(800, 600)
	o := NewObjectOverlay(testObject(), 3, NewColorTable(36, 1), nil)

	o.Setup(s)
	firstWidth := o.headerWidth

	// A second setup against different metrics must not relayout.
	o.Setup(newFakeSurface(100, 100))
	if o.headerWidth != firstWidth {
		t.Error("setup should be one-time; geometry changed on repeat call")
	}
}

func TestObjectOverlay_Draw(t *testing.T) {
	s := newFakeSurface(800, 600)
	o := NewObjectOverlay(testObject(), 3, NewColorTable(36, 1), nil)
	o.Setup(s)

	o.Draw(s, false)

	if len(s.strokes) != 1 {
		t.Fatalf("strokes = %d, want 1 (box outline)", len(s.strokes))
	}
	if len(s.fills) != 1 {
		t.Fatalf("fills = %d, want 1 (header bar)", len(s.fills))
	}
	if len(s.texts) != 3 {
		t.Fatalf("texts = %d, want 3 (label, id, attributes)", len(s.texts))
	}
	if s.texts[0] != "PERSON" || s.texts[1] != "ID 3" {
		t.Errorf("header texts = %v, want PERSON then ID 3", s.texts[:2])
	}
}

func TestObjectOverlay_DrawThumbnail(t *testing.T) {
	s := newFakeSurface(800, 600)
	o := NewObjectOverlay(testObject(), 3, NewColorTable(36, 1), nil)
	o.Setup(s)

	o.Draw(s, true)

	if len(s.strokes) != 1 {
		t.Errorf("strokes = %d, want 1; thumbnail keeps the outline", len(s.strokes))
	}
	if len(s.fills) != 0 || len(s.texts) != 0 {
		t.Error("thumbnail mode must suppress header and attribute drawing")
	}
}

func TestFrameAttributes_Setup(t *testing.T) {
	s := newFakeSurface(800, 600)
	f := NewFrameAttributes([]Attribute{
		{Name: "time_of_day", Value: "night"},
		{Name: "weather", Value: "heavy_rain"},
	}, 12, nil)

	f.Setup(s)

	if !f.Ready() {
		t.Fatal("frame attributes should be ready after setup")
	}
	if len(f.lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(f.lines))
	}
	if f.lines[0] != "time of day: night" {
		t.Errorf("lines[0] = %q, want underscores replaced", f.lines[0])
	}
	if f.lines[1] != "weather: heavy rain" {
		t.Errorf("lines[1] = %q, want underscores replaced", f.lines[1])
	}

	wantH := f.lineHeight*2 + 2*blockPad
	if f.blockH != wantH {
		t.Errorf("blockH = %v, want %v", f.blockH, wantH)
	}
	wantW := float64(len(f.lines[0]))*s.charWidth + 2*blockPad
	if f.blockW != wantW {
		t.Errorf("blockW = %v, want widest line %v", f.blockW, wantW)
	}
}

func TestFrameAttributes_Draw(t *testing.T) {
	s := newFakeSurface(800, 600)
	f := NewFrameAttributes([]Attribute{{Name: "scene", Value: "highway"}}, 1, nil)
	f.Setup(s)

	f.Draw(s, false)
	if len(s.fills) != 1 {
		t.Errorf("fills = %d, want 1 (background block)", len(s.fills))
	}
	if len(s.texts) != 1 || s.texts[0] != "scene: highway" {
		t.Errorf("texts = %v, want single scene line", s.texts)
	}

	s2 := newFakeSurface(800, 600)
	f.Draw(s2, true)
	if len(s2.fills) != 0 || len(s2.texts) != 0 {
		t.Error("thumbnail mode must suppress frame attribute drawing")
	}
}

func TestFontSizeFor_ZeroHeightClamps(t *testing.T) {
	s := newFakeSurface(800, 0)
	if got := fontSizeFor(s.Metrics(), nil); got != minFontSize {
		t.Errorf("fontSizeFor(zero height) = %v, want %v", got, minFontSize)
	}

	sized := newFakeSurface(800, 640)
	if got := fontSizeFor(sized.Metrics(), nil); got != 20 {
		t.Errorf("fontSizeFor(640) = %v, want 20", got)
	}
}

func TestAttributeValueString(t *testing.T) {
	tests := []struct {
		name string
		attr Attribute
		want string
	}{
		{"string", Attribute{Value: "walking"}, "walking"},
		{"float", Attribute{Value: 0.5}, "0.5"},
		{"int-ish float", Attribute{Value: 3.0}, "3"},
		{"bool", Attribute{Value: true}, "true"},
		{"nil", Attribute{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.attr.ValueString(); got != tt.want {
				t.Errorf("ValueString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestObjectOverlay_LabelUppercased(t *testing.T) {
	s := newFakeSurface(800, 600)
	obj := testObject()
	obj.Label = "traffic_light"
	o := NewObjectOverlay(obj, 1, NewColorTable(36, 1), nil)
	o.Setup(s)

	if o.labelText != strings.ToUpper(obj.Label) {
		t.Errorf("labelText = %q, want uppercased label", o.labelText)
	}
}
