package scene

import (
	"fmt"

	"github.com/dhconnelly/rtreego"
	"github.com/go-gl/mathgl/mgl64"
)

// OverlapTolerance is the largest shared volume two sibling boxes may have
// before they are reported as overlapping. Floating point placement of
// abutting boxes leaves slivers far below this.
const OverlapTolerance = 1e-9

// Severity indicates whether a finding blocks rendering or is advisory.
type Severity int

const (
	SeverityError   Severity = iota // blocks rendering
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Finding describes a single validation result.
type Finding struct {
	NodeID   NodeID
	Path     string
	Message  string
	Severity Severity
}

func (f Finding) Error() string {
	if f.Path == "" {
		return fmt.Sprintf("[%s] %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Path, f.Message)
}

// Result separates blocking errors from warnings.
type Result struct {
	Errors   []Finding
	Warnings []Finding
}

// OK reports whether there are no errors.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

func (r *Result) add(f Finding) {
	if f.Severity == SeverityWarning {
		r.Warnings = append(r.Warnings, f)
		return
	}
	r.Errors = append(r.Errors, f)
}

// Validate checks the tree rooted at root. It never mutates the tree.
//
// Errors: boxes with a non-positive size, duplicate sibling names, and
// overlapping box children of a Disjoint group. Warnings: boxes without a
// material.
func Validate(root *Node) Result {
	var r Result
	Walk(root, func(v Visit) error {
		validateBox(&r, v)
		validateSiblingNames(&r, v)
		validateSiblingOverlap(&r, v)
		return nil
	})
	return r
}

func validateBox(r *Result, v Visit) {
	n := v.Node
	if n.Kind != NodeBox {
		return
	}
	for i, axis := range []string{"X", "Y", "Z"} {
		if n.Size[i] <= 0 {
			r.add(Finding{
				NodeID:   n.ID,
				Path:     v.Path,
				Message:  fmt.Sprintf("box size %s is %.4f, must be positive", axis, n.Size[i]),
				Severity: SeverityError,
			})
		}
	}
	if n.Material == nil {
		r.add(Finding{
			NodeID:   n.ID,
			Path:     v.Path,
			Message:  "box has no material",
			Severity: SeverityWarning,
		})
	}
}

func validateSiblingNames(r *Result, v Visit) {
	seen := make(map[string]bool, len(v.Node.Children))
	for _, c := range v.Node.Children {
		if seen[c.Name] {
			r.add(Finding{
				NodeID:   v.Node.ID,
				Path:     v.Path,
				Message:  fmt.Sprintf("duplicate child name %q", c.Name),
				Severity: SeverityError,
			})
		}
		seen[c.Name] = true
	}
}

// boxEntry adapts a box child to rtreego.Spatial in parent-local space.
type boxEntry struct {
	index  int
	lo, hi mgl64.Vec3
	rect   rtreego.Rect
}

func (b *boxEntry) Bounds() rtreego.Rect {
	return b.rect
}

func newBoxEntry(index int, n *Node) (*boxEntry, bool) {
	half := n.Size.Mul(0.5)
	lo, hi := n.Position.Sub(half), n.Position.Add(half)
	rect, err := rtreego.NewRect(rtreego.Point{lo[0], lo[1], lo[2]}, []float64{n.Size[0], n.Size[1], n.Size[2]})
	if err != nil {
		// Non-positive sizes are reported by validateBox.
		return nil, false
	}
	return &boxEntry{index: index, lo: lo, hi: hi, rect: rect}, true
}

// overlapVolume returns the volume shared by two boxes, 0 if disjoint.
func overlapVolume(a, b *boxEntry) float64 {
	vol := 1.0
	for i := 0; i < 3; i++ {
		d := min(a.hi[i], b.hi[i]) - max(a.lo[i], b.lo[i])
		if d <= 0 {
			return 0
		}
		vol *= d
	}
	return vol
}

func validateSiblingOverlap(r *Result, v Visit) {
	if !v.Node.Disjoint {
		return
	}
	var entries []*boxEntry
	for i := range v.Node.Children {
		c := &v.Node.Children[i]
		if c.Kind != NodeBox {
			continue
		}
		if e, ok := newBoxEntry(i, c); ok {
			entries = append(entries, e)
		}
	}
	if len(entries) < 2 {
		return
	}

	tree := rtreego.NewTree(3, 2, 8)
	for _, e := range entries {
		tree.Insert(e)
	}

	for _, e := range entries {
		for _, hit := range tree.SearchIntersect(e.rect) {
			other := hit.(*boxEntry)
			if other.index <= e.index {
				continue
			}
			vol := overlapVolume(e, other)
			if vol <= OverlapTolerance {
				continue
			}
			a, b := v.Node.Children[e.index], v.Node.Children[other.index]
			r.add(Finding{
				NodeID:   a.ID,
				Path:     v.Path + "/" + a.Name,
				Message:  fmt.Sprintf("overlaps sibling %q by volume %.6g", b.Name, vol),
				Severity: SeverityError,
			})
		}
	}
}
