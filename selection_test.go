package popstage

import "testing"

// testPlayer builds a group with two drawables and a nested group holding
// a third.
func testPlayer() (root *Node, leaves []*Node) {
	root = NewGroup("player")
	body := NewDrawable("body", Vec3{}, Vec3{1, 1, 1}, ColorWhite)
	inner := NewGroup("inner")
	btn := NewDrawable("btn", Vec3{}, Vec3{1, 1, 1}, ColorWhite)
	knob := NewDrawable("knob", Vec3{}, Vec3{1, 1, 1}, ColorWhite)
	root.AddChild(body)
	root.AddChild(inner)
	inner.AddChild(btn)
	root.AddChild(knob)
	return root, []*Node{body, btn, knob}
}

func TestSelectionAddLeavesOnly(t *testing.T) {
	r := NewSelectionRegistry()
	root, leaves := testPlayer()
	r.Add(root)

	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3", r.Len())
	}
	for _, l := range leaves {
		if !r.Contains(l.ID) {
			t.Errorf("%s should be selected", l.Name)
		}
	}
	if r.Contains(root.ID) || r.Contains(root.Find("inner").ID) {
		t.Error("groups must never be selected")
	}
}

func TestSelectionAddIdempotent(t *testing.T) {
	r := NewSelectionRegistry()
	changes := 0
	r.OnChange(func(SelectionSet) { changes++ })
	root, _ := testPlayer()
	r.Add(root)
	r.Add(root)
	r.Add(root)
	if r.Len() != 3 {
		t.Errorf("Len = %d, want 3", r.Len())
	}
	if changes != 1 {
		t.Errorf("changes = %d, want 1", changes)
	}
}

func TestSelectionRemoveClearsSubtree(t *testing.T) {
	r := NewSelectionRegistry()
	root, _ := testPlayer()
	other := NewDrawable("other", Vec3{}, Vec3{1, 1, 1}, ColorWhite)
	r.Add(root)
	r.Add(root)
	r.Add(other)

	r.Remove(root)
	if r.Len() != 1 || !r.Contains(other.ID) {
		t.Errorf("after Remove: Len=%d, other selected=%v", r.Len(), r.Contains(other.ID))
	}
}

func TestSelectionNilRoot(t *testing.T) {
	r := NewSelectionRegistry()
	changes := 0
	r.OnChange(func(SelectionSet) { changes++ })
	r.Add(nil)
	r.Remove(nil)
	if changes != 0 || r.Len() != 0 {
		t.Error("nil roots must be ignored")
	}
}

func TestSelectionRemoveUnselectedNoChange(t *testing.T) {
	r := NewSelectionRegistry()
	changes := 0
	r.OnChange(func(SelectionSet) { changes++ })
	root, _ := testPlayer()
	r.Remove(root)
	r.Clear()
	if changes != 0 {
		t.Errorf("changes = %d, want 0", changes)
	}
}

func TestSelectionSetIsSnapshot(t *testing.T) {
	r := NewSelectionRegistry()
	root, leaves := testPlayer()
	r.Add(root)
	set := r.Set()
	r.Remove(root)

	if set.Len() != 3 || !set.Contains(leaves[0].ID) {
		t.Error("earlier Set must not see later changes")
	}
	ids := set.IDs()
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("IDs not sorted: %v", ids)
		}
	}
}

func TestSelectionSetEqual(t *testing.T) {
	r := NewSelectionRegistry()
	root, _ := testPlayer()
	if !r.Set().Equal(SelectionSet{}) {
		t.Error("empty sets should be equal")
	}
	r.Add(root)
	a := r.Set()
	b := r.Set()
	if !a.Equal(b) {
		t.Error("same membership should be equal")
	}
	if a.Equal(SelectionSet{}) {
		t.Error("non-empty set equals empty")
	}
}

func TestSelectionClear(t *testing.T) {
	r := NewSelectionRegistry()
	var last SelectionSet
	r.OnChange(func(s SelectionSet) { last = s })
	root, _ := testPlayer()
	r.Add(root)
	r.Clear()
	if r.Len() != 0 || last.Len() != 0 {
		t.Error("Clear should empty the registry and publish the empty set")
	}
}
