package wall

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const tol = 1e-6

func approx(a, b float64) bool {
	return math.Abs(a-b) <= tol
}

// southSpec is a wall running along X with outward normal +Z.
func southSpec(L, H, T float64, w Window) Spec {
	return Spec{
		Axis:      AlongX,
		Length:    L,
		Height:    H,
		Thickness: T,
		Normal:    mgl64.Vec3{0, 0, 1},
		Window:    &w,
	}
}

// eastSpec is a wall running along Z with outward normal +X.
func eastSpec(L, H, T float64, w Window) Spec {
	return Spec{
		Axis:      AlongZ,
		Length:    L,
		Height:    H,
		Thickness: T,
		Normal:    mgl64.Vec3{1, 0, 0},
		Window:    &w,
	}
}

func mustSegment(t *testing.T, g Geometry, r Role) Segment {
	t.Helper()
	s, ok := g.Segment(r)
	if !ok {
		t.Fatalf("expected %s segment, got none (segments: %v)", r, g.Segments)
	}
	return s
}

// ---------------------------------------------------------------------------
// Worked examples
// ---------------------------------------------------------------------------

func TestBuildCenteredWindow(t *testing.T) {
	g := Build(eastSpec(6, 3, 0.15, Window{Width: 2.4, Height: 1.2, SillHeight: 0.9}))

	if len(g.Segments) != 4 {
		t.Fatalf("expected 4 structural segments, got %d", len(g.Segments))
	}
	if len(g.Adjusted) != 0 {
		t.Errorf("valid window should not be adjusted, got %v", g.Adjusted)
	}

	lower := mustSegment(t, g, Lower)
	upper := mustSegment(t, g, Upper)
	left := mustSegment(t, g, Left)
	right := mustSegment(t, g, Right)

	if !approx(lower.Size.Y(), 0.9) {
		t.Errorf("lower height = %v, want 0.9", lower.Size.Y())
	}
	if !approx(upper.Size.Y(), 0.9) {
		t.Errorf("upper height = %v, want 0.9", upper.Size.Y())
	}
	// AlongZ: along extent lives in Z.
	if !approx(left.Size.Z(), 1.8) {
		t.Errorf("left width = %v, want 1.8", left.Size.Z())
	}
	if !approx(right.Size.Z(), 1.8) {
		t.Errorf("right width = %v, want 1.8", right.Size.Z())
	}
	if !approx(left.Size.X(), 0.15) || !approx(lower.Size.X(), 0.15) {
		t.Errorf("thickness should be carried on X for AlongZ walls")
	}

	if g.Pane == nil {
		t.Fatal("expected a pane")
	}
	want := mgl64.Vec3{PaneThickness, 1.2, 2.4}
	if !g.Pane.Size.ApproxEqualThreshold(want, tol) {
		t.Errorf("pane size = %v, want %v", g.Pane.Size, want)
	}
	if !approx(g.Pane.Position.Z(), 0) {
		t.Errorf("pane along position = %v, want 0", g.Pane.Position.Z())
	}
	// Window center: -1.5 + 0.9 + 0.6.
	if !approx(g.Pane.Position.Y(), 0) {
		t.Errorf("pane y = %v, want 0", g.Pane.Position.Y())
	}
}

func TestBuildSegmentPositions(t *testing.T) {
	g := Build(southSpec(4, 3, 0.15, Window{Width: 2, Height: 1, SillHeight: 1, AlongOffset: 0.5}))

	tests := []struct {
		role Role
		pos  mgl64.Vec3
		size mgl64.Vec3
	}{
		{Lower, mgl64.Vec3{0, -1.0, 0}, mgl64.Vec3{4, 1, 0.15}},
		{Upper, mgl64.Vec3{0, 1.0, 0}, mgl64.Vec3{4, 1, 0.15}},
		// window spans -0.5..1.5 along X
		{Left, mgl64.Vec3{-1.25, 0, 0}, mgl64.Vec3{1.5, 1, 0.15}},
		{Right, mgl64.Vec3{1.75, 0, 0}, mgl64.Vec3{0.5, 1, 0.15}},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			s := mustSegment(t, g, tt.role)
			if !s.Position.ApproxEqualThreshold(tt.pos, tol) {
				t.Errorf("position = %v, want %v", s.Position, tt.pos)
			}
			if !s.Size.ApproxEqualThreshold(tt.size, tol) {
				t.Errorf("size = %v, want %v", s.Size, tt.size)
			}
		})
	}
}

func TestBuildOversizedWindow(t *testing.T) {
	g := Build(southSpec(4, 3, 0.15, Window{Width: 10, Height: 1.2, SillHeight: 0.9}))

	if !approx(g.Window.Width, 3.8) {
		t.Fatalf("width = %v, want 3.8", g.Window.Width)
	}
	// 0.1 is well above the omission threshold, so both sides are emitted.
	left := mustSegment(t, g, Left)
	right := mustSegment(t, g, Right)
	if !approx(left.Size.X(), 0.1) || !approx(right.Size.X(), 0.1) {
		t.Errorf("side widths = %v, %v, want 0.1", left.Size.X(), right.Size.X())
	}
	if len(g.Adjusted) != 1 || g.Adjusted[0].Field != "width" {
		t.Errorf("expected a single width adjustment, got %v", g.Adjusted)
	}
}

func TestBuildSillOverflow(t *testing.T) {
	g := Build(southSpec(4, 3, 0.15, Window{Width: 1, Height: 2.0, SillHeight: 2.0}))

	if !approx(g.Window.SillHeight, 0.95) {
		t.Fatalf("sill = %v, want 0.95", g.Window.SillHeight)
	}
	upper := mustSegment(t, g, Upper)
	if !approx(upper.Size.Y(), SillGap) {
		t.Errorf("upper height = %v, want %v", upper.Size.Y(), SillGap)
	}
}

func TestBuildNegativeSill(t *testing.T) {
	g := Build(southSpec(4, 3, 0.15, Window{Width: 1, Height: 1, SillHeight: -0.5}))

	if g.Window.SillHeight != 0 {
		t.Fatalf("sill = %v, want 0", g.Window.SillHeight)
	}
	if _, ok := g.Segment(Lower); ok {
		t.Error("lower segment should be omitted when the window sits on the floor line")
	}
	if len(g.Segments) != 3 {
		t.Errorf("expected upper, left, right; got %d segments", len(g.Segments))
	}
}

// ---------------------------------------------------------------------------
// Omission threshold
// ---------------------------------------------------------------------------

func TestBuildOmission(t *testing.T) {
	tests := []struct {
		name      string
		window    Window
		wantRoles []Role
	}{
		{
			name:      "centered narrow window",
			window:    Window{Width: 1, Height: 1, SillHeight: 1},
			wantRoles: []Role{Lower, Upper, Left, Right},
		},
		{
			name:      "flush against negative end",
			window:    Window{Width: 2, Height: 1, SillHeight: 1, AlongOffset: -1},
			wantRoles: []Role{Lower, Upper, Right},
		},
		{
			name:      "flush against positive end",
			window:    Window{Width: 2, Height: 1, SillHeight: 1, AlongOffset: 1},
			wantRoles: []Role{Lower, Upper, Left},
		},
		{
			name:      "side just under epsilon",
			window:    Window{Width: 2, Height: 1, SillHeight: 1, AlongOffset: 1 - Epsilon/2},
			wantRoles: []Role{Lower, Upper, Left},
		},
		{
			name:      "side just over epsilon",
			window:    Window{Width: 2, Height: 1, SillHeight: 1, AlongOffset: 1 - 2*Epsilon},
			wantRoles: []Role{Lower, Upper, Left, Right},
		},
		{
			name:      "sill at zero",
			window:    Window{Width: 1, Height: 1, SillHeight: 0},
			wantRoles: []Role{Upper, Left, Right},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Build(southSpec(4, 3, 0.15, tt.window))
			if len(g.Segments) != len(tt.wantRoles) {
				t.Fatalf("got %d segments %v, want roles %v", len(g.Segments), g.Segments, tt.wantRoles)
			}
			for i, r := range tt.wantRoles {
				if g.Segments[i].Role != r {
					t.Errorf("segment %d role = %s, want %s", i, g.Segments[i].Role, r)
				}
			}
			for _, s := range g.Segments {
				if s.Size.X() <= Epsilon || s.Size.Y() <= Epsilon {
					t.Errorf("%s segment is degenerate: %v", s.Role, s.Size)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Tiling, overlap, pane containment
// ---------------------------------------------------------------------------

func propertyCases() []Spec {
	windows := []Window{
		{Width: 2.4, Height: 1.2, SillHeight: 0.9},
		{Width: 3.0, Height: 1.4, SillHeight: 0.7},
		{Width: 10, Height: 10, SillHeight: 10},
		{Width: 1, Height: 1, SillHeight: 0, AlongOffset: -5},
		{Width: 0.5, Height: 2.5, SillHeight: 0.2, AlongOffset: 1.1},
		{Width: 3.8, Height: 1, SillHeight: 1},
		{Width: 1.5, Height: 0.8, SillHeight: -3, AlongOffset: 0.3},
	}
	var specs []Spec
	for _, w := range windows {
		specs = append(specs,
			southSpec(4, 3, 0.15, w),
			eastSpec(6, 3, 0.15, w),
			southSpec(2.5, 2.2, 0.3, w),
		)
	}
	return specs
}

func TestBuildTilesWallFace(t *testing.T) {
	for i, spec := range propertyCases() {
		g := Build(spec)
		total := g.CoveredArea() + g.Aperture(spec.Height).Area()
		want := spec.Length * spec.Height
		if math.Abs(total-want) > tol {
			t.Errorf("case %d (%s, %+v): covered %.9f, want %.9f", i, spec.Axis, *spec.Window, total, want)
		}
	}
}

func TestBuildSegmentsDoNotOverlap(t *testing.T) {
	for i, spec := range propertyCases() {
		g := Build(spec)
		ap := g.Aperture(spec.Height)
		for a := range g.Segments {
			ra := g.Segments[a].FaceRect(spec.Axis)
			if ov := ra.Intersect(ap).Area(); ov > tol {
				t.Errorf("case %d: %s overlaps the aperture by %v", i, g.Segments[a].Role, ov)
			}
			for b := a + 1; b < len(g.Segments); b++ {
				rb := g.Segments[b].FaceRect(spec.Axis)
				if ov := ra.Intersect(rb).Area(); ov > tol {
					t.Errorf("case %d: %s and %s overlap by %v", i, g.Segments[a].Role, g.Segments[b].Role, ov)
				}
			}
		}
	}
}

func TestBuildSegmentsStayOnWall(t *testing.T) {
	for i, spec := range propertyCases() {
		g := Build(spec)
		for _, s := range g.Segments {
			r := s.FaceRect(spec.Axis)
			if r.MinU < -spec.Length/2-tol || r.MaxU > spec.Length/2+tol ||
				r.MinV < -spec.Height/2-tol || r.MaxV > spec.Height/2+tol {
				t.Errorf("case %d: %s segment %v leaves the wall face", i, s.Role, r)
			}
		}
	}
}

func TestBuildPaneContainment(t *testing.T) {
	for i, spec := range propertyCases() {
		g := Build(spec)
		if g.Pane == nil {
			t.Fatalf("case %d: expected pane", i)
		}
		ap := g.Aperture(spec.Height)
		pr := g.Pane.FaceRect(spec.Axis)
		if pr.MinU < ap.MinU-tol || pr.MaxU > ap.MaxU+tol || pr.MinV < ap.MinV-tol || pr.MaxV > ap.MaxV+tol {
			t.Errorf("case %d: pane %v outside aperture %v", i, pr, ap)
		}
		// Centered in the aperture on both face axes.
		if !approx((pr.MinU+pr.MaxU)/2, (ap.MinU+ap.MaxU)/2) || !approx((pr.MinV+pr.MaxV)/2, (ap.MinV+ap.MaxV)/2) {
			t.Errorf("case %d: pane not centered in aperture", i)
		}
	}
}

func TestBuildPaneSitsNearOutwardFace(t *testing.T) {
	tests := []struct {
		name   string
		spec   Spec
		depth  func(mgl64.Vec3) float64
		expect float64
	}{
		{"south +Z", southSpec(4, 3, 0.15, Window{Width: 1, Height: 1, SillHeight: 1}), mgl64.Vec3.Z, 0.065},
		{"east +X", eastSpec(6, 3, 0.15, Window{Width: 1, Height: 1, SillHeight: 1}), mgl64.Vec3.X, 0.065},
		{"north -Z", func() Spec {
			s := southSpec(4, 3, 0.15, Window{Width: 1, Height: 1, SillHeight: 1})
			s.Normal = mgl64.Vec3{0, 0, -1}
			return s
		}(), mgl64.Vec3.Z, -0.065},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Build(tt.spec)
			if g.Pane == nil {
				t.Fatal("expected pane")
			}
			if got := tt.depth(g.Pane.Position); !approx(got, tt.expect) {
				t.Errorf("pane depth offset = %v, want %v", got, tt.expect)
			}
			// Outer face of the pane is flush with the outer face of the wall.
			outer := math.Abs(tt.depth(g.Pane.Position)) + PaneThickness/2
			if !approx(outer, tt.spec.Thickness/2) {
				t.Errorf("pane outer face at %v, wall face at %v", outer, tt.spec.Thickness/2)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Plain and degenerate walls
// ---------------------------------------------------------------------------

func TestBuildPlainWall(t *testing.T) {
	spec := southSpec(4, 3, 0.15, Window{})
	spec.Window = nil

	g := Build(spec)
	if g.Pane != nil {
		t.Error("plain wall should have no pane")
	}
	if len(g.Segments) != 1 {
		t.Fatalf("expected one segment, got %d", len(g.Segments))
	}
	if !g.Segments[0].Size.ApproxEqualThreshold(mgl64.Vec3{4, 3, 0.15}, tol) {
		t.Errorf("plain wall size = %v", g.Segments[0].Size)
	}
}

func TestBuildZeroWindowOmitsPane(t *testing.T) {
	g := Build(southSpec(4, 3, 0.15, Window{Width: 0, Height: 1, SillHeight: 1}))
	if g.Pane != nil {
		t.Errorf("zero-width window should not produce a pane, got %v", g.Pane)
	}
	if !approx(g.CoveredArea(), 12) {
		t.Errorf("covered area = %v, want full face 12", g.CoveredArea())
	}
}

func TestBuildNegativeWindowSize(t *testing.T) {
	g := Build(southSpec(4, 3, 0.15, Window{Width: -1, Height: -1, SillHeight: 1}))
	if g.Window.Width != 0 || g.Window.Height != 0 {
		t.Errorf("negative sizes should clamp to 0, got %+v", g.Window)
	}
	if g.Pane != nil {
		t.Error("degenerate aperture should not produce a pane")
	}
}
