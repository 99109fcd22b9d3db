// Package overlay normalizes annotation payloads into a frame-indexed set
// of renderables and draws them over played-back media.
package overlay

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Payload is a raw annotation document. Two encodings exist and are not
// mutually exclusive: a flat object list where every entry carries its own
// frame number, and a per-frame map keyed by string-encoded frame numbers.
// Both are applied when both keys are present.
type Payload struct {
	Objects []Object         `json:"objects,omitempty"`
	Frames  map[string]Frame `json:"frames,omitempty"`
}

// Frame is one entry of the per-frame encoding. The outer map key supplies
// the frame number for everything inside.
type Frame struct {
	Objects *ObjectList `json:"objects,omitempty"`
	Attrs   []Attribute `json:"attrs,omitempty"`
}

// ObjectList wraps the nested object array of the per-frame encoding.
type ObjectList struct {
	Objects []Object `json:"objects,omitempty"`
}

// Object describes one annotated object on one frame. FrameNumber is only
// meaningful in the flat encoding; in the per-frame encoding the map key
// wins.
type Object struct {
	Label       string      `json:"label"`
	Index       int         `json:"index"`
	FrameNumber int         `json:"frame_number,omitempty"`
	BoundingBox BoundingBox `json:"bounding_box"`
	Attrs       []Attribute `json:"attrs,omitempty"`
}

// BoundingBox is in relative [0,1] coordinates.
type BoundingBox struct {
	TopLeft     Point `json:"top_left"`
	BottomRight Point `json:"bottom_right"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Attribute is a named value with optional confidence. Values arrive as
// strings, numbers or booleans in the wild.
type Attribute struct {
	Name       string      `json:"name"`
	Value      interface{} `json:"value"`
	Confidence float64     `json:"confidence,omitempty"`
}

// ValueString renders the attribute value for display.
func (a Attribute) ValueString() string {
	switch v := a.Value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ParsePayload decodes a raw JSON document into a Payload. A document with
// neither encoding key is not an error; it simply contributes nothing.
func ParsePayload(raw []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode overlay payload: %w", err)
	}
	return &p, nil
}

// Empty reports whether the payload carries neither encoding.
func (p *Payload) Empty() bool {
	return len(p.Objects) == 0 && len(p.Frames) == 0
}
