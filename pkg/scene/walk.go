package scene

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

// SkipChildren may be returned from a WalkFunc to skip a node's descendants.
var SkipChildren = errors.New("skip children")

// Visit is what Walk passes to the callback for each node.
type Visit struct {
	Node  *Node
	Path  string     // slash-joined names from the root
	World mgl64.Vec3 // accumulated translation of the node's own position
	Depth int
}

// WorldBounds returns the world-space min and max corners of a box visit.
// Group visits yield a zero-size box at the group origin.
func (v Visit) WorldBounds() (lo, hi mgl64.Vec3) {
	half := v.Node.Size.Mul(0.5)
	return v.World.Sub(half), v.World.Add(half)
}

// WalkFunc is called once per node in depth-first order.
type WalkFunc func(v Visit) error

// translationStack accumulates parent translations during traversal.
type translationStack struct {
	items []mgl64.Vec3
}

func (ts *translationStack) push(v mgl64.Vec3) {
	ts.items = append(ts.items, v)
}

func (ts *translationStack) pop() {
	if len(ts.items) > 0 {
		ts.items = ts.items[:len(ts.items)-1]
	}
}

func (ts *translationStack) sum() mgl64.Vec3 {
	var s mgl64.Vec3
	for _, t := range ts.items {
		s = s.Add(t)
	}
	return s
}

// Walk visits root and its descendants depth-first. It stops at the first
// error returned by fn, except SkipChildren, and returns it.
func Walk(root *Node, fn WalkFunc) error {
	ts := &translationStack{}
	return walk(root, root.Name, 0, ts, fn)
}

func walk(n *Node, path string, depth int, ts *translationStack, fn WalkFunc) error {
	ts.push(n.Position)
	defer ts.pop()

	err := fn(Visit{Node: n, Path: path, World: ts.sum(), Depth: depth})
	if errors.Is(err, SkipChildren) {
		return nil
	}
	if err != nil {
		return err
	}

	for i := range n.Children {
		c := &n.Children[i]
		if err := walk(c, path+"/"+c.Name, depth+1, ts, fn); err != nil {
			return err
		}
	}
	return nil
}
