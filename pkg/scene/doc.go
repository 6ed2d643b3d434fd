// Package scene defines the render-ready ownership tree produced by the room
// builder. The tree holds value-owned box descriptors, each positioned
// relative to its parent, and is consumed read-only by renderers.
package scene
