package room

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/chazu/roomwright/pkg/scene"
	"github.com/chazu/roomwright/pkg/wall"
)

// ErrInvalidDimension is returned by Config.Validate for non-positive room
// dimensions. Window geometry is never rejected; it is clamped.
var ErrInvalidDimension = errors.New("invalid room dimension")

// Materials holds caller-owned material references. The builder attaches
// them to primitives but never mutates them.
type Materials struct {
	Wall    *scene.Material
	Floor   *scene.Material
	Ceiling *scene.Material
	Glass   *scene.Material
}

// DefaultMaterials returns a fresh set of default materials.
func DefaultMaterials() Materials {
	return Materials{
		Wall:    &scene.Material{Name: "wall", Color: "#e8e4dc", Opacity: 1},
		Floor:   &scene.Material{Name: "floor", Color: "#8b6a4f", Opacity: 1},
		Ceiling: &scene.Material{Name: "ceiling", Color: "#f5f5f2", Opacity: 1},
		Glass:   &scene.Material{Name: "glass", Color: "#a8c8e8", Opacity: 0.3},
	}
}

// Config describes a room. Lengths are in meters.
type Config struct {
	Width            float64 // east-west extent
	Depth            float64 // north-south extent
	Height           float64
	WallThickness    float64
	FloorThickness   float64
	CeilingThickness float64

	WindowEast  wall.Window
	WindowSouth wall.Window

	Materials Materials
}

// DefaultConfig returns the default room: 4 x 6 x 3 with a window in the
// east and south walls.
func DefaultConfig() Config {
	return Config{
		Width:            4,
		Depth:            6,
		Height:           3.0,
		WallThickness:    0.15,
		FloorThickness:   0.12,
		CeilingThickness: 0.1,
		WindowEast:       wall.Window{Width: 2.4, Height: 1.2, SillHeight: 0.9, AlongOffset: 0},
		WindowSouth:      wall.Window{Width: 3.0, Height: 1.4, SillHeight: 0.7, AlongOffset: 0},
		Materials:        DefaultMaterials(),
	}
}

// Validate reports non-positive dimensions, and walls thick enough to leave
// no floor.
func (c Config) Validate() error {
	dims := []struct {
		name string
		v    float64
	}{
		{"width", c.Width},
		{"depth", c.Depth},
		{"height", c.Height},
		{"wall_thickness", c.WallThickness},
		{"floor_thickness", c.FloorThickness},
		{"ceiling_thickness", c.CeilingThickness},
	}
	for _, d := range dims {
		if d.v <= 0 {
			return fmt.Errorf("%w: %s is %g, must be positive", ErrInvalidDimension, d.name, d.v)
		}
	}
	if 2*c.WallThickness >= min(c.Width, c.Depth) {
		return fmt.Errorf("%w: wall_thickness %g leaves no floor in a %g x %g room",
			ErrInvalidDimension, c.WallThickness, c.Width, c.Depth)
	}
	return nil
}

// WindowOverrides replaces individual window fields. Nil fields keep the
// base value.
type WindowOverrides struct {
	Width       *float64 `toml:"width"`
	Height      *float64 `toml:"height"`
	SillHeight  *float64 `toml:"sill_height"`
	AlongOffset *float64 `toml:"along_offset"`
}

func (o *WindowOverrides) apply(w wall.Window) wall.Window {
	if o == nil {
		return w
	}
	setFloat(&w.Width, o.Width)
	setFloat(&w.Height, o.Height)
	setFloat(&w.SillHeight, o.SillHeight)
	setFloat(&w.AlongOffset, o.AlongOffset)
	return w
}

// MaterialOverrides replaces individual material references.
type MaterialOverrides struct {
	Wall    *scene.Material `toml:"wall"`
	Floor   *scene.Material `toml:"floor"`
	Ceiling *scene.Material `toml:"ceiling"`
	Glass   *scene.Material `toml:"glass"`
}

// Overrides is a partial Config. Only non-nil fields are applied.
type Overrides struct {
	Width            *float64 `toml:"width"`
	Depth            *float64 `toml:"depth"`
	Height           *float64 `toml:"height"`
	WallThickness    *float64 `toml:"wall_thickness"`
	FloorThickness   *float64 `toml:"floor_thickness"`
	CeilingThickness *float64 `toml:"ceiling_thickness"`

	WindowEast  *WindowOverrides `toml:"window_east"`
	WindowSouth *WindowOverrides `toml:"window_south"`

	Materials *MaterialOverrides `toml:"materials"`
}

// Apply merges o over base and returns the result. base is not modified.
func (o Overrides) Apply(base Config) Config {
	c := base
	setFloat(&c.Width, o.Width)
	setFloat(&c.Depth, o.Depth)
	setFloat(&c.Height, o.Height)
	setFloat(&c.WallThickness, o.WallThickness)
	setFloat(&c.FloorThickness, o.FloorThickness)
	setFloat(&c.CeilingThickness, o.CeilingThickness)

	c.WindowEast = o.WindowEast.apply(c.WindowEast)
	c.WindowSouth = o.WindowSouth.apply(c.WindowSouth)

	if m := o.Materials; m != nil {
		setMaterial(&c.Materials.Wall, m.Wall)
		setMaterial(&c.Materials.Floor, m.Floor)
		setMaterial(&c.Materials.Ceiling, m.Ceiling)
		setMaterial(&c.Materials.Glass, m.Glass)
	}
	return c
}

// NewConfig applies each override in order over DefaultConfig.
func NewConfig(overrides ...Overrides) Config {
	c := DefaultConfig()
	for _, o := range overrides {
		c = o.Apply(c)
	}
	return c
}

// ParseOverrides decodes TOML text such as
//
//	width = 5.0
//	[window_east]
//	sill_height = 1.0
//
// Unknown keys are an error.
func ParseOverrides(text string) (Overrides, error) {
	var o Overrides
	md, err := toml.Decode(text, &o)
	if err != nil {
		return Overrides{}, fmt.Errorf("room: parse overrides: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Overrides{}, fmt.Errorf("room: parse overrides: unknown key %q", undecoded[0].String())
	}
	return o, nil
}

// Float returns a pointer to v, for building Overrides literals.
func Float(v float64) *float64 {
	return &v
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setMaterial(dst **scene.Material, src *scene.Material) {
	if src != nil {
		*dst = src
	}
}
