// Package app ties the room pipeline together for a viewer frontend:
// description source in, colored meshes plus diagnostics out.
package app

import (
	"fmt"
	"os"
	"regexp"

	"github.com/charmbracelet/log"
	"github.com/chazu/roomwright/pkg/engine"
	"github.com/chazu/roomwright/pkg/kernel"
	"github.com/chazu/roomwright/pkg/kernel/sdfx"
	"github.com/chazu/roomwright/pkg/room"
	"github.com/chazu/roomwright/pkg/scene"
	"github.com/chazu/roomwright/pkg/tessellate"
	"github.com/chazu/roomwright/pkg/wall"
)

// colorPalette colors meshes whose material has no usable color.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// App evaluates room descriptions and turns them into renderable meshes.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
	logger *log.Logger
	merge  bool
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger. The default logs warnings and above to stderr.
func WithLogger(l *log.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithKernel replaces the default sdfx kernel.
func WithKernel(k kernel.Kernel) Option {
	return func(a *App) { a.kernel = k }
}

// WithMergeGroups makes each windowed wall render as one opaque mesh plus
// its pane.
func WithMergeGroups(merge bool) Option {
	return func(a *App) { a.merge = merge }
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices    []float32 `json:"vertices"`
	Normals     []float32 `json:"normals"`
	Indices     []uint32  `json:"indices"`
	PartName    string    `json:"partName"`
	Role        string    `json:"role,omitempty"`
	Color       string    `json:"color"`
	Opacity     float64   `json:"opacity"`
	CastShadow  bool      `json:"castShadow"`
	Translucent bool      `json:"translucent"`
}

// EvalErrorData is a JSON-serializable diagnostic for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend. Its slices are
// never nil.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

func newResult() EvalResult {
	return EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}

func (r *EvalResult) fail(msg string) EvalResult {
	r.Errors = append(r.Errors, EvalErrorData{Message: msg})
	return *r
}

func (r *EvalResult) warn(msg string) {
	r.Warnings = append(r.Warnings, EvalErrorData{Message: msg})
}

// NewApp creates an App with a fresh engine and the sdfx kernel.
func NewApp(opts ...Option) *App {
	a := &App{
		engine: engine.NewEngine(),
		kernel: sdfx.New(),
		logger: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           log.WarnLevel,
			Prefix:          "roomwright",
		}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Evaluate takes room description source and returns mesh data and
// diagnostics. Source without a room form renders the default room.
func (a *App) Evaluate(source string) EvalResult {
	result := newResult()

	o, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.logger.Error("evaluate failed", "err", err)
		return result.fail(err.Error())
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		a.logger.Debug("evaluation errors", "count", len(evalErrs))
		return result
	}

	return a.render(room.NewConfig(*o), result)
}

// EvaluateTOML renders a room described by TOML overrides of the defaults.
func (a *App) EvaluateTOML(text string) EvalResult {
	result := newResult()
	o, err := room.ParseOverrides(text)
	if err != nil {
		return result.fail(err.Error())
	}
	return a.render(room.NewConfig(o), result)
}

// EvaluateConfig renders c directly.
func (a *App) EvaluateConfig(c room.Config) EvalResult {
	return a.render(c, newResult())
}

func (a *App) render(c room.Config, result EvalResult) EvalResult {
	if err := c.Validate(); err != nil {
		return result.fail(err.Error())
	}

	r := room.Build(c)
	for _, w := range []struct {
		name string
		g    wall.Geometry
	}{
		{room.WallEastName, r.East},
		{room.WallSouthName, r.South},
	} {
		for _, adj := range w.g.Adjusted {
			msg := fmt.Sprintf("%s: window %s", w.name, adj)
			a.logger.Warn(msg)
			result.warn(msg)
		}
	}

	check := scene.Validate(&r.Root)
	for _, f := range check.Warnings {
		result.warn(f.Error())
	}
	if !check.OK() {
		for _, f := range check.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Message: f.Error()})
		}
		a.logger.Error("room failed validation", "errors", len(check.Errors))
		return result
	}

	parts, err := tessellate.Tessellate(&r.Root, a.kernel, tessellate.Options{MergeGroups: a.merge})
	if err != nil {
		a.logger.Error("tessellate failed", "err", err)
		return result.fail("tessellation failed: " + err.Error())
	}

	for i, p := range parts {
		if p.Mesh.IsEmpty() {
			result.warn(fmt.Sprintf("%s: mesh is empty at this resolution", p.Path))
			continue
		}
		color, opacity := a.appearance(p, i, &result)
		result.Meshes = append(result.Meshes, MeshData{
			Vertices:    p.Mesh.Vertices,
			Normals:     p.Mesh.Normals,
			Indices:     p.Mesh.Indices,
			PartName:    p.Mesh.PartName,
			Role:        p.Node.Role,
			Color:       color,
			Opacity:     opacity,
			CastShadow:  p.Node.CastShadow || p.Node.Kind == scene.NodeGroup,
			Translucent: p.Node.Translucent,
		})
	}
	a.logger.Debug("room rendered", "meshes", len(result.Meshes), "warnings", len(result.Warnings))
	return result
}

// appearance picks the color and opacity for part i. Merged groups take
// the material of their first child.
func (a *App) appearance(p *tessellate.Part, i int, result *EvalResult) (string, float64) {
	mat := p.Node.Material
	if mat == nil && len(p.Node.Children) > 0 {
		mat = p.Node.Children[0].Material
	}
	fallback := colorPalette[i%len(colorPalette)]
	if mat == nil {
		return fallback, 1
	}
	if !hexColor.MatchString(mat.Color) {
		if mat.Color != "" {
			result.warn(fmt.Sprintf("%s: material %q has invalid color %q", p.Path, mat.Name, mat.Color))
		}
		return fallback, mat.Opacity
	}
	return mat.Color, mat.Opacity
}
