package scene

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// namespace seeds content-addressed node IDs.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("roomwright/scene"))

// NodeID is a content-addressed identifier derived from a node's path.
type NodeID string

// NewNodeID returns the stable ID for a path such as "room/wall-east/pane".
func NewNodeID(path string) NodeID {
	return NodeID(uuid.NewSHA1(namespace, []byte(path)).String())
}

// Short returns the first 8 characters, for logs and error messages.
func (id NodeID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// IsZero reports whether the ID is unset.
func (id NodeID) IsZero() bool {
	return id == ""
}

// NodeKind enumerates the kinds of scene nodes.
type NodeKind int

const (
	NodeGroup NodeKind = iota // transform-only container
	NodeBox                   // axis-aligned box centered on its position
)

func (k NodeKind) String() string {
	switch k {
	case NodeGroup:
		return "group"
	case NodeBox:
		return "box"
	default:
		return "unknown"
	}
}

// Material is a caller-owned surface description. Nodes only reference it.
type Material struct {
	Name    string  `json:"name" toml:"name"`
	Color   string  `json:"color" toml:"color"`     // "#rrggbb"
	Opacity float64 `json:"opacity" toml:"opacity"` // 0 = transparent, 1 = opaque
}

// Node is one element of the scene tree. Children are owned by value.
type Node struct {
	ID       NodeID     `json:"id"`
	Kind     NodeKind   `json:"kind"`
	Name     string     `json:"name"`
	Role     string     `json:"role,omitempty"`
	Position mgl64.Vec3 `json:"position"` // relative to the parent
	Size     mgl64.Vec3 `json:"size,omitempty"`

	Material      *Material `json:"-"`
	CastShadow    bool      `json:"cast_shadow"`
	ReceiveShadow bool      `json:"receive_shadow"`
	Translucent   bool      `json:"translucent"`

	// Disjoint marks a group whose box children must not overlap.
	Disjoint bool `json:"disjoint,omitempty"`

	Children []Node `json:"children,omitempty"`
}

// NewGroup returns a group node. IDs are assigned by Seal.
func NewGroup(name string, position mgl64.Vec3, children ...Node) Node {
	return Node{
		Kind:     NodeGroup,
		Name:     name,
		Position: position,
		Children: children,
	}
}

// NewBox returns an opaque box that casts and receives shadows.
func NewBox(name string, size, position mgl64.Vec3, mat *Material) Node {
	return Node{
		Kind:          NodeBox,
		Name:          name,
		Position:      position,
		Size:          size,
		Material:      mat,
		CastShadow:    true,
		ReceiveShadow: true,
	}
}

// Seal assigns content-addressed IDs to n and every descendant, based on
// the slash-joined path of names from n.
func Seal(n *Node) {
	seal(n, n.Name)
}

func seal(n *Node, path string) {
	n.ID = NewNodeID(path)
	for i := range n.Children {
		seal(&n.Children[i], path+"/"+n.Children[i].Name)
	}
}

// Find returns the descendant at the given path relative to n, e.g.
// "wall-east/pane". An empty path returns n itself.
func (n *Node) Find(path string) *Node {
	if path == "" {
		return n
	}
	head, rest, _ := strings.Cut(path, "/")
	for i := range n.Children {
		if n.Children[i].Name == head {
			return n.Children[i].Find(rest)
		}
	}
	return nil
}

// Leaves returns every box node under n, in depth-first order.
func (n *Node) Leaves() []*Node {
	var out []*Node
	Walk(n, func(v Visit) error {
		if v.Node.Kind == NodeBox {
			out = append(out, v.Node)
		}
		return nil
	})
	return out
}

// Count returns the number of nodes in the tree rooted at n.
func (n *Node) Count() int {
	c := 1
	for i := range n.Children {
		c += n.Children[i].Count()
	}
	return c
}
