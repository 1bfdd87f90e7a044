package popstage

// NodeID is the stable identifier of a render graph node. IDs are never
// reused within a process; zero means "no node".
type NodeID uint32

// nodeIDCounter is a plain counter; popstage is single-threaded.
var nodeIDCounter NodeID

func nextNodeID() NodeID {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is an element of the render graph. A single flat struct is used for
// groups and drawables alike.
type Node struct {
	// Identity
	ID   NodeID
	Name string
	Type NodeType

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local)
	Position Vec3
	Rotation Vec3
	Scale    Vec3

	// Appearance
	Visible     bool
	Highlighted bool
	Material    Color

	// Channel is the channel number shown by screen drawables; -1 elsewhere.
	Channel int

	disposed bool
}

func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.Scale = Vec3{1, 1, 1}
	n.Visible = true
	n.Material = ColorWhite
	n.Channel = -1
}

// NewGroup creates a grouping node with no visual representation.
func NewGroup(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeGroup}
	nodeDefaults(n)
	return n
}

// NewDrawable creates a drawable leaf node at the given local position with
// the given extent (stored in Scale) and material color.
func NewDrawable(name string, pos, size Vec3, material Color) *Node {
	n := &Node{Name: name, Type: NodeTypeDrawable}
	nodeDefaults(n)
	n.Position = pos
	n.Scale = size
	n.Material = material
	return n
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("popstage: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("popstage: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("popstage: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
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

// IsLeafDrawable reports whether n is a drawable, i.e. a member candidate
// for highlighting. Groups never are, even when childless.
func (n *Node) IsLeafDrawable() bool {
	return n.Type == NodeTypeDrawable
}

// Walk calls fn for n and every descendant in depth-first pre-order.
// Returning false from fn skips that node's children. Walk on a nil node
// is a no-op.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || n.disposed {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Find returns the first node named name in the subtree rooted at n,
// or nil when absent.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// WorldPosition sums the positions of n and its ancestors. Rotation and
// scale of ancestors are not applied; the scene only nests translations.
func (n *Node) WorldPosition() Vec3 {
	var p Vec3
	for c := n; c != nil; c = c.Parent {
		p = p.Add(c.Position)
	}
	return p
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

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
