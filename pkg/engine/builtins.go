package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/roomwright/pkg/room"
	"github.com/chazu/roomwright/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/samber/lo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites room source before passing it to zygomys. It
// performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: wall-height -> wall_height
//     zygomys reads a hyphen inside an identifier as subtraction.
//
//  3. Line comments: ; and ;; become //, which is what zygomys expects.
//
// String literals are copied through untouched.
func preprocessSource(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)

	for i := 0; i < len(source); {
		c := source[i]
		switch {
		case c == '"' || c == '`':
			end := literalEnd(source, i)
			out.WriteString(source[i:end])
			i = end

		case c == ';':
			for i < len(source) && source[i] == ';' {
				i++
			}
			end := strings.IndexByte(source[i:], '\n')
			if end < 0 {
				end = len(source) - i
			}
			out.WriteString("//")
			out.WriteString(source[i : i+end])
			i += end

		case c == ':' && i+1 < len(source) && source[i+1] == '=':
			out.WriteString(":=")
			i += 2

		case c == ':' && i+1 < len(source) && isLetter(source[i+1]):
			j := i + 1
			for j < len(source) && isKWChar(source[j]) {
				j++
			}
			out.WriteString(`"` + kwPrefix + source[i+1:j] + `"`)
			i = j

		case c == '-' && i > 0 && i+1 < len(source) &&
			isIdentChar(source[i-1]) && isLetter(source[i+1]):
			// Between identifier characters a hyphen is kebab-case, not minus.
			out.WriteByte('_')
			i++

		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// literalEnd returns the index just past the string literal starting at
// src[start]. Double-quoted literals honor backslash escapes; backtick
// literals are raw. An unterminated literal runs to the end of src.
func literalEnd(src string, start int) int {
	quote := src[start]
	for i := start + 1; i < len(src); i++ {
		switch {
		case src[i] == '\\' && quote == '"':
			i++
		case src[i] == quote:
			return i + 1
		}
	}
	return len(src)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}


// ---------------------------------------------------------------------------
// Values passed between builtins
// ---------------------------------------------------------------------------

// sexpWindow carries the window fields a (window ...) form set.
type sexpWindow struct {
	o room.WindowOverrides
}

func (w *sexpWindow) SexpString(ps *zygo.PrintState) string {
	var parts []string
	add := func(kw string, v *float64) {
		if v != nil {
			parts = append(parts, fmt.Sprintf(":%s %g", kw, *v))
		}
	}
	add("width", w.o.Width)
	add("height", w.o.Height)
	add("sill-height", w.o.SillHeight)
	add("along-offset", w.o.AlongOffset)
	if len(parts) == 0 {
		return "(window)"
	}
	return "(window " + strings.Join(parts, " ") + ")"
}
func (w *sexpWindow) Type() *zygo.RegisteredType { return nil }

// sexpMaterial wraps a scene.Material so it can be passed to room.
type sexpMaterial struct {
	m *scene.Material
}

func (m *sexpMaterial) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(material :name %q)", m.m.Name)
}
func (m *sexpMaterial) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Trailing keyword with no value.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toWindow extracts window overrides from a sexpWindow.
func toWindow(s zygo.Sexp) (*room.WindowOverrides, error) {
	if w, ok := s.(*sexpWindow); ok {
		o := w.o
		return &o, nil
	}
	return nil, fmt.Errorf("expected window, got %T (%s)", s, s.SexpString(nil))
}

// toMaterial extracts a material from a sexpMaterial.
func toMaterial(s zygo.Sexp) (*scene.Material, error) {
	if m, ok := s.(*sexpMaterial); ok {
		return m.m, nil
	}
	return nil, fmt.Errorf("expected material, got %T (%s)", s, s.SexpString(nil))
}

// kwFloat reads an optional numeric keyword argument.
func kwFloat(pa kwArgs, fn, kw string) (*float64, error) {
	v, ok := pa.kw[kw]
	if !ok {
		return nil, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", fn, kw, err)
	}
	return &f, nil
}

// checkKeywords rejects keywords fn does not accept and positional args.
func checkKeywords(pa kwArgs, fn string, allowed ...string) error {
	if len(pa.positional) > 0 {
		return fmt.Errorf("%s: unexpected positional argument %s", fn, pa.positional[0].SexpString(nil))
	}
	for kw := range pa.kw {
		if !lo.Contains(allowed, kw) {
			return fmt.Errorf("%s: unknown keyword :%s", fn, kw)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// roomKeywords are the keywords (room ...) accepts.
var roomKeywords = []string{
	"width", "depth", "height",
	"wall-thickness", "floor-thickness", "ceiling-thickness",
	"window-east", "window-south",
	"wall-material", "floor-material", "ceiling-material", "glass-material",
}

// roomBuilder collects the single (room ...) form of a program.
type roomBuilder struct {
	overrides *room.Overrides
}

// result returns the collected overrides, or empty overrides when the
// program had no room form.
func (b *roomBuilder) result() *room.Overrides {
	if b.overrides == nil {
		return &room.Overrides{}
	}
	return b.overrides
}

// registerBuiltins installs the room builtins into a zygomys environment.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *roomBuilder) {

	// -----------------------------------------------------------------------
	// (window :width 2.4 :height 1.2 :sill-height 0.9 :along-offset 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("window", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := checkKeywords(pa, "window", "width", "height", "sill-height", "along-offset"); err != nil {
			return zygo.SexpNull, err
		}

		var w sexpWindow
		var err error
		if w.o.Width, err = kwFloat(pa, "window", "width"); err != nil {
			return zygo.SexpNull, err
		}
		if w.o.Height, err = kwFloat(pa, "window", "height"); err != nil {
			return zygo.SexpNull, err
		}
		if w.o.SillHeight, err = kwFloat(pa, "window", "sill-height"); err != nil {
			return zygo.SexpNull, err
		}
		if w.o.AlongOffset, err = kwFloat(pa, "window", "along-offset"); err != nil {
			return zygo.SexpNull, err
		}
		return &w, nil
	})

	// -----------------------------------------------------------------------
	// (material :name "oak" :color "#8b6a4f" :opacity 1)
	// -----------------------------------------------------------------------
	env.AddFunction("material", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := checkKeywords(pa, "material", "name", "color", "opacity"); err != nil {
			return zygo.SexpNull, err
		}

		m := &scene.Material{Opacity: 1}
		if v, ok := pa.kw["name"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("material: name: %w", err)
			}
			m.Name = s
		}
		if v, ok := pa.kw["color"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("material: color: %w", err)
			}
			m.Color = s
		}
		if v, ok := pa.kw["opacity"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("material: opacity: %w", err)
			}
			if f < 0 || f > 1 {
				return zygo.SexpNull, fmt.Errorf("material: opacity %g out of range [0, 1]", f)
			}
			m.Opacity = f
		}
		return &sexpMaterial{m: m}, nil
	})

	// -----------------------------------------------------------------------
	// (room :width 4 :depth 6 :height 3
	//       :window-east (window :width 2.4)
	//       :glass-material (material :name "glass" :opacity 0.3))
	// -----------------------------------------------------------------------
	env.AddFunction("room", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if b.overrides != nil {
			return zygo.SexpNull, fmt.Errorf("room: only one room form is allowed")
		}
		pa := parseArgs(args)
		if err := checkKeywords(pa, "room", roomKeywords...); err != nil {
			return zygo.SexpNull, err
		}

		o := &room.Overrides{}
		dims := []struct {
			kw  string
			dst **float64
		}{
			{"width", &o.Width},
			{"depth", &o.Depth},
			{"height", &o.Height},
			{"wall-thickness", &o.WallThickness},
			{"floor-thickness", &o.FloorThickness},
			{"ceiling-thickness", &o.CeilingThickness},
		}
		for _, d := range dims {
			f, err := kwFloat(pa, "room", d.kw)
			if err != nil {
				return zygo.SexpNull, err
			}
			*d.dst = f
		}

		windows := []struct {
			kw  string
			dst **room.WindowOverrides
		}{
			{"window-east", &o.WindowEast},
			{"window-south", &o.WindowSouth},
		}
		for _, w := range windows {
			v, ok := pa.kw[w.kw]
			if !ok {
				continue
			}
			wo, err := toWindow(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("room: %s: %w", w.kw, err)
			}
			*w.dst = wo
		}

		var mo room.MaterialOverrides
		mats := []struct {
			kw  string
			dst **scene.Material
		}{
			{"wall-material", &mo.Wall},
			{"floor-material", &mo.Floor},
			{"ceiling-material", &mo.Ceiling},
			{"glass-material", &mo.Glass},
		}
		for _, m := range mats {
			v, ok := pa.kw[m.kw]
			if !ok {
				continue
			}
			mat, err := toMaterial(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("room: %s: %w", m.kw, err)
			}
			*m.dst = mat
			o.Materials = &mo
		}

		b.overrides = o
		return zygo.SexpNull, nil
	})
}
