// Package scene holds the scene graph drawn by the full-pipeline renderer.
//
// A graph is a tree of Nodes. Transform nodes carry a local matrix and an
// ordered list of children; drawable nodes are leaves that reference a
// shared mesh by index. Traversal is a pre-order fold that issues one draw
// call per drawable, in insertion order.
package scene

import (
	"glbench/internal/gpu"
	"glbench/internal/matrix"

	"github.com/go-gl/mathgl/mgl32"
)

// Kind tags the node variant.
type Kind uint8

const (
	KindTransform Kind = iota
	KindDrawable
)

func (k Kind) String() string {
	switch k {
	case KindTransform:
		return "transform"
	case KindDrawable:
		return "drawable"
	default:
		return "unknown"
	}
}

// Node is either a transform with children or a drawable leaf.
type Node struct {
	kind     Kind
	local    *matrix.Matrix
	children []*Node
	mesh     MeshID
	attached bool
}

// NewTransform returns a transform node. A nil local is treated as identity.
func NewTransform(local *matrix.Matrix) *Node {
	if local == nil {
		local = matrix.New()
	}
	return &Node{kind: KindTransform, local: local}
}

// NewDrawable returns a leaf that draws the arena mesh id.
func NewDrawable(id MeshID) *Node {
	return &Node{kind: KindDrawable, mesh: id}
}

// Kind returns the node variant.
func (n *Node) Kind() Kind { return n.kind }

// Local returns the local transform of a transform node, nil for drawables.
func (n *Node) Local() *matrix.Matrix { return n.local }

// Mesh returns the mesh index of a drawable node.
func (n *Node) Mesh() MeshID { return n.mesh }

// Children returns the child list. Callers must not modify it.
func (n *Node) Children() []*Node { return n.children }

// AddChild appends c. Drawables cannot have children and a node can only
// be attached once, which keeps the graph a tree.
func (n *Node) AddChild(c *Node) {
	if n.kind != KindTransform {
		panic("scene: AddChild on a drawable node")
	}
	if c == n || c.attached {
		panic("scene: node already attached")
	}
	c.attached = true
	n.children = append(n.children, c)
}

// Walk visits n and its descendants pre-order. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(n *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.children {
		c.walk(fn, depth+1)
	}
}

// Leaves returns the number of drawable nodes under n, inclusive.
func (n *Node) Leaves() int {
	count := 0
	n.Walk(func(n *Node, _ int) bool {
		if n.kind == KindDrawable {
			count++
		}
		return true
	})
	return count
}

// Pass is the per-frame state fixed for a whole traversal.
type Pass struct {
	Device     gpu.Device
	Arena      *Arena
	Program    *Program
	View       *matrix.Matrix
	Projection *matrix.Matrix
	LightPos   mgl32.Vec3
}

// Draw activates the program and traverses root with model as the parent
// transform. model is not modified. It returns the number of draw calls.
func (p *Pass) Draw(root *Node, model *matrix.Matrix) int {
	p.Device.UseProgram(p.Program.ID)
	return p.draw(root, model)
}

func (p *Pass) draw(n *Node, model *matrix.Matrix) int {
	switch n.kind {
	case KindTransform:
		childModel := model.Mul(n.local)
		calls := 0
		for _, c := range n.children {
			calls += p.draw(c, childModel)
		}
		return calls
	case KindDrawable:
		m := p.Arena.Mesh(n.mesh)
		if m == nil {
			return 0
		}
		m.bind(p.Device, p.Program)

		mv := p.View.Mul(model)
		mvp := p.Projection.Mul(mv)
		p.Device.UniformMatrix4(p.Program.MVP, mvp.Ptr())
		p.Device.UniformMatrix4(p.Program.MV, mv.Ptr())
		p.Device.Uniform3f(p.Program.LightPos, p.LightPos.X(), p.LightPos.Y(), p.LightPos.Z())

		p.Device.DrawTriangles(0, m.vertexCount)
		return 1
	}
	return 0
}
