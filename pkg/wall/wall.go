// Package wall partitions a wall face around a single rectangular window.
//
// A windowed wall is never a boolean-subtracted mesh. It is described as up
// to four solid boxes (below, above, left of and right of the aperture) plus
// one thin translucent pane. The boxes tile the wall face minus the aperture
// exactly, so the opening appears by omission of geometry.
package wall

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// Margin is the minimum amount of solid wall kept beside and above a
	// window, along both face axes.
	Margin = 0.2

	// SillGap is the minimum distance between the window top and the wall top.
	SillGap = 0.05

	// Epsilon is the omission threshold: segments whose computed extent is
	// at or below this are not emitted.
	Epsilon = 0.001

	// PaneThickness is the depth of the glass pane.
	PaneThickness = 0.02
)

// Axis is the long axis of a wall.
type Axis int

const (
	AlongX Axis = iota // runs east-west, thickness along Z
	AlongZ             // runs north-south, thickness along X
)

func (a Axis) String() string {
	switch a {
	case AlongX:
		return "along-x"
	case AlongZ:
		return "along-z"
	default:
		return "unknown"
	}
}

// Box maps an (along, vertical, thickness) triple onto an x/y/z vector for
// this axis. Used for both sizes and offsets.
func (a Axis) Box(along, vertical, thickness float64) mgl64.Vec3 {
	if a == AlongZ {
		return mgl64.Vec3{thickness, vertical, along}
	}
	return mgl64.Vec3{along, vertical, thickness}
}

// Along returns the component of v that lies on this axis.
func (a Axis) Along(v mgl64.Vec3) float64 {
	if a == AlongZ {
		return v.Z()
	}
	return v.X()
}

// Role tags a segment with the part of the wall it represents.
type Role int

const (
	Lower Role = iota // below the window, full length
	Upper             // above the window, full length
	Left              // beside the window on the negative end
	Right             // beside the window on the positive end
	Pane              // glass
)

func (r Role) String() string {
	switch r {
	case Lower:
		return "lower"
	case Upper:
		return "upper"
	case Left:
		return "left"
	case Right:
		return "right"
	case Pane:
		return "pane"
	default:
		return "unknown"
	}
}

// Window describes a rectangular opening in a wall.
type Window struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	SillHeight  float64 `json:"sill_height"`  // wall bottom to window bottom
	AlongOffset float64 `json:"along_offset"` // window center from wall center, signed
}

// Spec is the input to Build.
type Spec struct {
	Axis      Axis
	Length    float64
	Height    float64
	Thickness float64
	Center    mgl64.Vec3 // wall center in parent coordinates
	Normal    mgl64.Vec3 // outward unit normal, axis aligned
	Window    *Window    // nil for a plain wall
}

// Segment is an axis-aligned box relative to the wall center.
type Segment struct {
	Role     Role       `json:"role"`
	Size     mgl64.Vec3 `json:"size"`
	Position mgl64.Vec3 `json:"position"`
}

// Rect is an axis-aligned rectangle on the wall face, in (along, vertical)
// coordinates with the origin at the wall center.
type Rect struct {
	MinU, MinV float64
	MaxU, MaxV float64
}

// Area returns the rectangle's area, or 0 if it is inverted.
func (r Rect) Area() float64 {
	w, h := r.MaxU-r.MinU, r.MaxV-r.MinV
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Intersect returns the overlap of r and o. The result may be empty.
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		MinU: max(r.MinU, o.MinU),
		MinV: max(r.MinV, o.MinV),
		MaxU: min(r.MaxU, o.MaxU),
		MaxV: min(r.MaxV, o.MaxV),
	}
}

// FaceRect projects the segment onto the wall face.
func (s Segment) FaceRect(axis Axis) Rect {
	u := axis.Along(s.Position)
	w := axis.Along(s.Size)
	v, h := s.Position.Y(), s.Size.Y()
	return Rect{
		MinU: u - w/2,
		MaxU: u + w/2,
		MinV: v - h/2,
		MaxV: v + h/2,
	}
}

// Adjustment records one window field that clamping changed.
type Adjustment struct {
	Field     string
	Requested float64
	Applied   float64
}

func (a Adjustment) String() string {
	return fmt.Sprintf("%s clamped from %.4g to %.4g", a.Field, a.Requested, a.Applied)
}

// Geometry is the result of Build.
type Geometry struct {
	Axis     Axis
	Segments []Segment // structural segments, in Lower, Upper, Left, Right order
	Pane     *Segment  // nil for a plain wall or a degenerate aperture
	Window   Window    // effective window after clamping
	Adjusted []Adjustment
}

// Segment returns the structural segment with the given role, if emitted.
func (g Geometry) Segment(r Role) (Segment, bool) {
	for _, s := range g.Segments {
		if s.Role == r {
			return s, true
		}
	}
	return Segment{}, false
}

// Aperture returns the window opening on the wall face. Empty for a plain wall.
func (g Geometry) Aperture(height float64) Rect {
	if g.Pane == nil {
		return Rect{}
	}
	bottom := -height/2 + g.Window.SillHeight
	return Rect{
		MinU: g.Window.AlongOffset - g.Window.Width/2,
		MaxU: g.Window.AlongOffset + g.Window.Width/2,
		MinV: bottom,
		MaxV: bottom + g.Window.Height,
	}
}

// CoveredArea is the summed face area of the structural segments.
func (g Geometry) CoveredArea() float64 {
	var total float64
	for _, s := range g.Segments {
		total += s.FaceRect(g.Axis).Area()
	}
	return total
}
