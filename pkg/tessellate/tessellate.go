// Package tessellate walks a scene tree and produces triangle meshes using a
// geometry kernel. By default one mesh is produced per box.
package tessellate

import (
	"fmt"

	"github.com/chazu/roomwright/pkg/kernel"
	"github.com/chazu/roomwright/pkg/scene"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
)

// Options controls tessellation.
type Options struct {
	// MergeGroups unions the opaque boxes of each group whose children are
	// all boxes into a single mesh named after the group. Translucent boxes
	// are still meshed on their own so they can be drawn with blending.
	MergeGroups bool
}

// Part is one tessellated mesh and the scene node it came from. For merged
// groups Node is the group.
type Part struct {
	Path string
	Node *scene.Node
	Mesh *kernel.Mesh
}

// Tessellate walks the tree rooted at root and meshes its boxes with k. The
// tree is read-only; Part.Node points into it.
func Tessellate(root *scene.Node, k kernel.Kernel, opts Options) ([]*Part, error) {
	if root == nil {
		return nil, nil
	}

	var parts []*Part
	err := scene.Walk(root, func(v scene.Visit) error {
		n := v.Node
		switch n.Kind {
		case scene.NodeBox:
			p, err := meshBoxes(k, v.Path, n, v.World.Sub(n.Position), n)
			if err != nil {
				return err
			}
			parts = append(parts, p)
			return nil

		case scene.NodeGroup:
			if !opts.MergeGroups || !mergeable(n) {
				return nil
			}
			opaque := lo.Filter(childPointers(n), func(c *scene.Node, _ int) bool {
				return !c.Translucent
			})
			if len(opaque) > 0 {
				p, err := meshBoxes(k, v.Path, n, v.World, opaque...)
				if err != nil {
					return err
				}
				parts = append(parts, p)
			}
			for _, c := range childPointers(n) {
				if !c.Translucent {
					continue
				}
				p, err := meshBoxes(k, v.Path+"/"+c.Name, c, v.World, c)
				if err != nil {
					return err
				}
				parts = append(parts, p)
			}
			return scene.SkipChildren

		default:
			return fmt.Errorf("unknown node kind: %v", n.Kind)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	return parts, nil
}

// mergeable reports whether every child of n is a box.
func mergeable(n *scene.Node) bool {
	if len(n.Children) == 0 {
		return false
	}
	return lo.EveryBy(n.Children, func(c scene.Node) bool {
		return c.Kind == scene.NodeBox
	})
}

func childPointers(n *scene.Node) []*scene.Node {
	out := make([]*scene.Node, len(n.Children))
	for i := range n.Children {
		out[i] = &n.Children[i]
	}
	return out
}

// meshBoxes translates each box by origin plus its own position, unions them
// and meshes the result.
func meshBoxes(k kernel.Kernel, path string, owner *scene.Node, origin mgl64.Vec3, boxes ...*scene.Node) (*Part, error) {
	solids := make([]kernel.Solid, 0, len(boxes))
	for _, b := range boxes {
		if b.Size.X() <= 0 || b.Size.Y() <= 0 || b.Size.Z() <= 0 {
			return nil, fmt.Errorf("box %s has non-positive size %v", path, b.Size)
		}
		at := origin.Add(b.Position)
		solid := k.Box(b.Size.X(), b.Size.Y(), b.Size.Z())
		if at != (mgl64.Vec3{}) {
			solid = k.Translate(solid, at.X(), at.Y(), at.Z())
		}
		solids = append(solids, solid)
	}

	mesh, err := k.ToMesh(k.Union(solids...))
	if err != nil {
		return nil, fmt.Errorf("ToMesh failed for %s: %w", path, err)
	}
	mesh.PartName = path
	return &Part{Path: path, Node: owner, Mesh: mesh}, nil
}
