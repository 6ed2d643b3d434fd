// Package kernel defines the abstract solid kernel that turns scene boxes
// into triangle meshes. Implementations wrap a concrete modeling library
// behind this interface so the renderer-facing code can swap backends.
package kernel

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract solid kernel interface.
type Kernel interface {
	// Box returns a box of the given size centered on the origin.
	Box(x, y, z float64) Solid

	// Union joins solids into one. At least one solid is required.
	Union(solids ...Solid) Solid

	Translate(s Solid, x, y, z float64) Solid

	ToMesh(s Solid) (*Mesh, error)
}
