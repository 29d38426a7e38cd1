package drape

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// TagGarment marks the mesh that accepts pattern drags.
const TagGarment = "object"

// nodeIDCounter is a plain counter (no atomic, scene state is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Material describes how a node's geometry is colored and composited.
type Material struct {
	// Pattern, when set, samples the repeating tile through its UV transform.
	Pattern *PatternTexture
	// Image is sampled directly with the geometry UVs when Pattern is nil.
	Image *ebiten.Image
	Color Color
	Blend BlendMode
	// Shaded applies the lighting rig per vertex.
	Shaded bool
	// DoubleSided draws back faces too.
	DoubleSided bool
}

// Node is the scene graph element. A single flat struct is used for all node
// types to avoid interface dispatch on the draw path.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Type NodeType
	Tag  string

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local)
	Position mgl32.Vec3
	Scale    mgl32.Vec3

	worldMatrix    mgl32.Mat4
	transformDirty bool

	// Visibility & interaction
	Visible  bool
	Opacity  float64
	Pickable bool

	// RenderOrder sorts siblings back to front; ties keep insertion order.
	RenderOrder int

	Geometry *Geometry
	Material *Material

	CastShadow    bool
	ReceiveShadow bool

	// Metadata
	UserData any

	// draw buffers, grown with a high-water mark and never shrunk
	vertices []ebiten.Vertex
	indices  []uint32

	disposed bool
}

func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.Scale = mgl32.Vec3{1, 1, 1}
	n.Visible = true
	n.Opacity = 1
	n.transformDirty = true
}

// NewContainer creates a group node with no visual representation.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeContainer}
	nodeDefaults(n)
	return n
}

// NewMesh creates a shaded, pickable mesh node.
func NewMesh(name string, geom *Geometry, mat *Material) *Node {
	n := &Node{
		Name:          name,
		Type:          NodeTypeMesh,
		Geometry:      geom,
		Material:      mat,
		Pickable:      true,
		ReceiveShadow: true,
	}
	nodeDefaults(n)
	return n
}

// NewPlane creates a compositing plane of the given size carrying img with
// the given blend. Planes never take part in picking.
func NewPlane(name string, width, height float32, img *ebiten.Image, blend BlendMode) *Node {
	n := &Node{
		Name:     name,
		Type:     NodeTypePlane,
		Geometry: NewPlaneGeometry(width, height),
		Material: &Material{Image: img, Color: ColorWhite, Blend: blend},
	}
	nodeDefaults(n)
	return n
}

// NewOccluder creates an invisible sphere that casts shadows and can be
// picked, so it blocks drags that would otherwise reach the garment behind it.
func NewOccluder(name string, radius float32) *Node {
	n := &Node{
		Name:       name,
		Type:       NodeTypeOccluder,
		Geometry:   NewSphereGeometry(radius, 32, 16),
		Pickable:   true,
		CastShadow: true,
	}
	nodeDefaults(n)
	n.Opacity = 0
	return n
}

// SetPosition moves the node and invalidates cached world matrices.
func (n *Node) SetPosition(x, y, z float32) {
	n.Position = mgl32.Vec3{x, y, z}
	markSubtreeDirty(n)
}

// SetScale scales the node and invalidates cached world matrices.
func (n *Node) SetScale(x, y, z float32) {
	n.Scale = mgl32.Vec3{x, y, z}
	markSubtreeDirty(n)
}

// LocalMatrix returns translate * scale.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(n.Position[0], n.Position[1], n.Position[2]).
		Mul4(mgl32.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2]))
}

// WorldMatrix returns the node's transform composed with its ancestors'.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	if !n.transformDirty {
		return n.worldMatrix
	}
	m := n.LocalMatrix()
	if n.Parent != nil {
		m = n.Parent.WorldMatrix().Mul4(m)
	}
	n.worldMatrix = m
	n.transformDirty = false
	return m
}

// WorldPosition returns the node origin in world space.
func (n *Node) WorldPosition() mgl32.Vec3 {
	return n.WorldMatrix().Col(3).Vec3()
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("drape: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("drape: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	markSubtreeDirty(child)
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("drape: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	markSubtreeDirty(child)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// FindByName returns the first node named name in a depth-first walk of the
// subtree, including n itself.
func (n *Node) FindByName(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.Name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// FindByTag returns the first node carrying tag.
func (n *Node) FindByTag(tag string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.Tag == tag {
			found = c
			return false
		}
		return true
	})
	return found
}

// Walk visits n and its descendants depth-first until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants. Images are not deallocated;
// they belong to the Assets that produced them.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.Geometry = nil
	n.Material = nil
	n.UserData = nil
	n.vertices = nil
	n.indices = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets transformDirty on node and all its descendants.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}

// ensureVertexBuffers grows the node's draw buffers to hold nv vertices and
// ni indices, using a high-water-mark strategy (never shrinks).
func ensureVertexBuffers(n *Node, nv, ni int) ([]ebiten.Vertex, []uint32) {
	if cap(n.vertices) < nv {
		n.vertices = make([]ebiten.Vertex, nv)
	}
	if cap(n.indices) < ni {
		n.indices = make([]uint32, ni)
	}
	n.vertices = n.vertices[:nv]
	n.indices = n.indices[:ni]
	return n.vertices, n.indices
}
