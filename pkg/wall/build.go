package wall

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
)

// Clamp fits the spec's window onto the wall. Oversized or out-of-range
// values are pulled to the nearest valid configuration; nothing is rejected.
// Clamp is idempotent. A nil window clamps to the zero Window.
func Clamp(spec Spec) Window {
	w, _ := clamp(spec)
	return w
}

func clamp(spec Spec) (Window, []Adjustment) {
	if spec.Window == nil {
		return Window{}, nil
	}
	req := *spec.Window
	out := req

	out.Width = max(0, min(req.Width, spec.Length-Margin))
	out.Height = max(0, min(req.Height, spec.Height-Margin))
	out.SillHeight = max(0, min(req.SillHeight, spec.Height-out.Height-SillGap))

	reach := max(0, spec.Length/2-out.Width/2)
	out.AlongOffset = mgl64.Clamp(req.AlongOffset, -reach, reach)

	var adj []Adjustment
	note := func(field string, requested, applied float64) {
		if requested != applied {
			adj = append(adj, Adjustment{Field: field, Requested: requested, Applied: applied})
		}
	}
	note("width", req.Width, out.Width)
	note("height", req.Height, out.Height)
	note("sill_height", req.SillHeight, out.SillHeight)
	note("along_offset", req.AlongOffset, out.AlongOffset)

	return out, adj
}

// candidate is a segment together with the extent that decides whether it
// is emitted.
type candidate struct {
	extent float64
	seg    Segment
}

// Build partitions the wall into structural segments and a pane.
//
// Coordinates are wall-local: origin at the wall center, y up, and the long
// axis chosen by spec.Axis. Each segment is emitted only if its extent on
// the partitioned axis exceeds Epsilon.
func Build(spec Spec) Geometry {
	g := Geometry{Axis: spec.Axis}
	L, H, T := spec.Length, spec.Height, spec.Thickness

	if spec.Window == nil {
		if L > Epsilon && H > Epsilon {
			g.Segments = []Segment{{
				Role: Lower,
				Size: spec.Axis.Box(L, H, T),
			}}
		}
		return g
	}

	win, adj := clamp(spec)
	g.Window = win
	g.Adjusted = adj

	yBottom, yTop := -H/2, H/2
	yWinBottom := yBottom + win.SillHeight
	yWinTop := yWinBottom + win.Height
	yWinMid := yWinBottom + win.Height/2

	halfL := L / 2
	winLeft := win.AlongOffset - win.Width/2
	winRight := win.AlongOffset + win.Width/2

	lowerH := yWinBottom - yBottom
	upperH := yTop - yWinTop
	leftW := winLeft + halfL
	rightW := halfL - winRight

	candidates := []candidate{
		{lowerH, Segment{
			Role:     Lower,
			Size:     spec.Axis.Box(L, lowerH, T),
			Position: spec.Axis.Box(0, yBottom+lowerH/2, 0),
		}},
		{upperH, Segment{
			Role:     Upper,
			Size:     spec.Axis.Box(L, upperH, T),
			Position: spec.Axis.Box(0, yWinTop+upperH/2, 0),
		}},
		{leftW, Segment{
			Role:     Left,
			Size:     spec.Axis.Box(leftW, win.Height, T),
			Position: spec.Axis.Box(-halfL+leftW/2, yWinMid, 0),
		}},
		{rightW, Segment{
			Role:     Right,
			Size:     spec.Axis.Box(rightW, win.Height, T),
			Position: spec.Axis.Box(halfL-rightW/2, yWinMid, 0),
		}},
	}

	// Left and Right only span the window's height; with a flat window they
	// would be degenerate even if wide.
	g.Segments = lo.FilterMap(candidates, func(c candidate, _ int) (Segment, bool) {
		if c.seg.Role == Left || c.seg.Role == Right {
			return c.seg, c.extent > Epsilon && win.Height > Epsilon
		}
		return c.seg, c.extent > Epsilon
	})

	if win.Width > Epsilon && win.Height > Epsilon {
		inset := spec.Normal.Mul(T/2 - PaneThickness/2)
		pane := Segment{
			Role:     Pane,
			Size:     spec.Axis.Box(win.Width, win.Height, PaneThickness),
			Position: spec.Axis.Box(win.AlongOffset, yWinMid, 0).Add(inset),
		}
		g.Pane = &pane
	}

	return g
}
