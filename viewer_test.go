package popstage

import "testing"

func TestNewViewerUploadRegion(t *testing.T) {
	s, _ := newTestStage(t, nil)
	v := NewViewer(s, 1280, 720)
	r := v.UploadRegion
	if !r.Contains(640, 382) {
		t.Errorf("region %+v should contain the drop box center", r)
	}
	if r.Contains(10, 10) {
		t.Error("corner is outside the drop box")
	}
	if w, h := v.Layout(100, 100); w != 1280 || h != 720 {
		t.Errorf("Layout = %dx%d", w, h)
	}
	if v.ScreenshotDir != "screenshots" {
		t.Errorf("ScreenshotDir = %q", v.ScreenshotDir)
	}
}

func TestViewerProjectSortsBackToFront(t *testing.T) {
	s, _ := newTestStage(t, nil)
	v := NewViewer(s, 1280, 720)
	s.Update()
	v.project(s.Graph(), Rect{Width: 1280, Height: 720})

	if len(v.items) == 0 {
		t.Fatal("nothing visible from the upload route")
	}
	for i := 1; i < len(v.items); i++ {
		if v.items[i-1].depth < v.items[i].depth {
			t.Fatalf("items not sorted back to front at %d", i)
		}
	}
	found := false
	for _, it := range v.items {
		if it.node.Name == "cdplayer_body" {
			found = true
		}
		if !it.node.IsLeafDrawable() {
			t.Errorf("group %q projected", it.node.Name)
		}
	}
	if !found {
		t.Error("the player should be in view")
	}
}

func TestViewerProjectScreenRects(t *testing.T) {
	s, clk := newTestStage(t, nil)
	s.Navigate(RouteAnalysis)
	clk.Advance(s.Config().Timing(TransitionCamera).Duration)
	s.Update()

	v := NewViewer(s, 1280, 720)
	v.project(s.Graph(), Rect{Width: 1280, Height: 720})
	if len(v.screenRects) != 4 {
		t.Fatalf("screen rects = %d, want 4", len(v.screenRects))
	}
	r := v.screenRects[0]
	if !r.Contains(r.X+r.Width/2, r.Y+r.Height/2) || r.Width < minDrawSize {
		t.Errorf("screen 0 rect = %+v", r)
	}
}

func TestViewerProjectHiddenSubtree(t *testing.T) {
	s, _ := newTestStage(t, nil)
	v := NewViewer(s, 1280, 720)
	s.Graph().CDPlayer.Visible = false
	v.project(s.Graph(), Rect{Width: 1280, Height: 720})
	for _, it := range v.items {
		if it.node.Name == "cdplayer_body" {
			t.Error("hidden subtree should not be drawn")
		}
	}
}
