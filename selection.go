package popstage

import "sort"

// SelectionSet is an immutable set of highlighted node IDs. The zero value
// is the empty set.
type SelectionSet struct {
	ids map[NodeID]struct{}
}

// Contains reports whether id is in the set.
func (s SelectionSet) Contains(id NodeID) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of IDs in the set.
func (s SelectionSet) Len() int {
	return len(s.ids)
}

// IDs returns the members in ascending order.
func (s SelectionSet) IDs() []NodeID {
	out := make([]NodeID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Equal reports whether both sets hold the same members.
func (s SelectionSet) Equal(o SelectionSet) bool {
	if len(s.ids) != len(o.ids) {
		return false
	}
	for id := range s.ids {
		if _, ok := o.ids[id]; !ok {
			return false
		}
	}
	return true
}

// SelectionRegistry maintains the set of drawables currently flagged for
// outline highlighting. Membership changes only through structural
// add/remove of whole subtrees.
type SelectionRegistry struct {
	ids     map[NodeID]struct{}
	changed handlerList[SelectionSet]
}

// NewSelectionRegistry creates an empty registry.
func NewSelectionRegistry() *SelectionRegistry {
	return &SelectionRegistry{ids: make(map[NodeID]struct{})}
}

// Add inserts every drawable leaf of the subtree rooted at root. Groups are
// traversed but never inserted. Adding the same subtree again is a no-op.
// A nil root is ignored.
func (r *SelectionRegistry) Add(root *Node) {
	if root == nil {
		return
	}
	grew := false
	root.Walk(func(n *Node) bool {
		if !n.IsLeafDrawable() {
			return true
		}
		if _, ok := r.ids[n.ID]; !ok {
			r.ids[n.ID] = struct{}{}
			grew = true
		}
		return true
	})
	if grew {
		r.changed.fire(r.Set())
	}
}

// Remove deletes every drawable leaf of the subtree rooted at root. One
// Remove clears the subtree regardless of how many times it was added.
// A nil root is ignored.
func (r *SelectionRegistry) Remove(root *Node) {
	if root == nil {
		return
	}
	shrank := false
	root.Walk(func(n *Node) bool {
		if !n.IsLeafDrawable() {
			return true
		}
		if _, ok := r.ids[n.ID]; ok {
			delete(r.ids, n.ID)
			shrank = true
		}
		return true
	})
	if shrank {
		r.changed.fire(r.Set())
	}
}

// Clear empties the registry.
func (r *SelectionRegistry) Clear() {
	if len(r.ids) == 0 {
		return
	}
	clear(r.ids)
	r.changed.fire(SelectionSet{})
}

// Contains reports whether id is highlighted.
func (r *SelectionRegistry) Contains(id NodeID) bool {
	_, ok := r.ids[id]
	return ok
}

// Len returns the number of highlighted drawables.
func (r *SelectionRegistry) Len() int {
	return len(r.ids)
}

// Set returns an immutable copy of the current membership.
func (r *SelectionRegistry) Set() SelectionSet {
	if len(r.ids) == 0 {
		return SelectionSet{}
	}
	cp := make(map[NodeID]struct{}, len(r.ids))
	for id := range r.ids {
		cp[id] = struct{}{}
	}
	return SelectionSet{ids: cp}
}

// OnChange registers fn to receive the new membership after every Add,
// Remove or Clear that changed it.
func (r *SelectionRegistry) OnChange(fn func(SelectionSet)) CallbackHandle {
	return r.changed.add(fn)
}
