// Package room assembles a rectangular room: floor, ceiling, two plain walls
// (west, north) and two windowed walls (east, south).
//
// Coordinates: +x is east, +y is up, +z is south. The room is centered on
// the origin in x and z, and the top of the floor sits at y = 0.
package room

import (
	"github.com/chazu/roomwright/pkg/scene"
	"github.com/chazu/roomwright/pkg/wall"
	"github.com/go-gl/mathgl/mgl64"
)

// Node names used in the scene tree.
const (
	RootName      = "room"
	FloorName     = "floor"
	CeilingName   = "ceiling"
	WallWestName  = "wall-west"
	WallNorthName = "wall-north"
	WallEastName  = "wall-east"
	WallSouthName = "wall-south"
)

// Room is the assembled result. Root owns every primitive.
type Room struct {
	Config Config
	Root   scene.Node

	// Partitioned geometry of the windowed walls, in wall-local coordinates.
	East  wall.Geometry
	South wall.Geometry
}

// EastWallSpec returns the spec the east wall is built from.
func EastWallSpec(c Config) wall.Spec {
	w := c.WindowEast
	return wall.Spec{
		Axis:      wall.AlongZ,
		Length:    c.Depth,
		Height:    c.Height,
		Thickness: c.WallThickness,
		Center:    mgl64.Vec3{c.Width/2 - c.WallThickness/2, c.Height / 2, 0},
		Normal:    mgl64.Vec3{1, 0, 0},
		Window:    &w,
	}
}

// SouthWallSpec returns the spec the south wall is built from.
func SouthWallSpec(c Config) wall.Spec {
	w := c.WindowSouth
	return wall.Spec{
		Axis:      wall.AlongX,
		Length:    c.Width,
		Height:    c.Height,
		Thickness: c.WallThickness,
		Center:    mgl64.Vec3{0, c.Height / 2, c.Depth/2 - c.WallThickness/2},
		Normal:    mgl64.Vec3{0, 0, 1},
		Window:    &w,
	}
}

// Build assembles the room described by c. It does not validate c; callers
// that accept external input should call c.Validate first.
func Build(c Config) *Room {
	W, D, H := c.Width, c.Depth, c.Height
	T := c.WallThickness
	m := c.Materials

	floor := scene.NewBox(FloorName,
		mgl64.Vec3{W - 2*T, c.FloorThickness, D - 2*T},
		mgl64.Vec3{0, -c.FloorThickness / 2, 0},
		m.Floor)

	ceiling := scene.NewBox(CeilingName,
		mgl64.Vec3{W, c.CeilingThickness, D},
		mgl64.Vec3{0, H + c.CeilingThickness/2, 0},
		m.Ceiling)

	west := scene.NewBox(WallWestName,
		mgl64.Vec3{T, H, D},
		mgl64.Vec3{-W/2 + T/2, H / 2, 0},
		m.Wall)

	north := scene.NewBox(WallNorthName,
		mgl64.Vec3{W, H, T},
		mgl64.Vec3{0, H / 2, -D/2 + T/2},
		m.Wall)

	eastSpec, southSpec := EastWallSpec(c), SouthWallSpec(c)
	east := wall.Build(eastSpec)
	south := wall.Build(southSpec)

	root := scene.NewGroup(RootName, mgl64.Vec3{},
		floor,
		ceiling,
		west,
		north,
		wallGroup(WallEastName, eastSpec, east, m),
		wallGroup(WallSouthName, southSpec, south, m),
	)
	scene.Seal(&root)

	return &Room{
		Config: c,
		Root:   root,
		East:   east,
		South:  south,
	}
}

// wallGroup places a partitioned wall under a group positioned at the wall
// center. Structural segments are opaque shadow casters; the pane is
// translucent and casts no shadow.
func wallGroup(name string, spec wall.Spec, g wall.Geometry, m Materials) scene.Node {
	grp := scene.NewGroup(name, spec.Center)
	grp.Disjoint = true

	for _, s := range g.Segments {
		n := scene.NewBox(s.Role.String(), s.Size, s.Position, m.Wall)
		n.Role = s.Role.String()
		grp.Children = append(grp.Children, n)
	}
	if g.Pane != nil {
		p := scene.NewBox(wall.Pane.String(), g.Pane.Size, g.Pane.Position, m.Glass)
		p.Role = wall.Pane.String()
		p.CastShadow = false
		p.Translucent = true
		grp.Children = append(grp.Children, p)
	}
	return grp
}
