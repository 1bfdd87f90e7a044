package popstage

import "fmt"

// Graph is the render graph of the desk scene: the node tree plus the
// camera and lights, with handles to the nodes the synchronized state
// drives. Only FrameApplier writes to it from synchronized state.
type Graph struct {
	Root   *Node
	Camera *Camera

	CDPlayer *Node
	Dock     *Node
	Marker   *Node
	Screens  map[ScreenID]*Node

	Ambient *Light
	Point   *Light

	dockRest   Vec3
	markerRest Vec3
}

// Screen count of the TV wall.
const numScreens = 4

// NewDeskGraph builds the desk scene: a CD player with a sliding dock, a
// wall of four TV screens, the room shell, and the navigation marker. The
// camera starts at the upload route's pose and the lights at the preset.
func NewDeskGraph(routes *RouteTable, lights LightPreset) *Graph {
	root := NewGroup("scene")

	room := NewDrawable("room", Vec3{0, 4, 0}, Vec3{8, 4, 8}, Color{0.14, 0.14, 0.14, 1})
	root.AddChild(room)

	cd := NewGroup("cdplayer")
	cd.Position = Vec3{0, 0.8, 2}
	cd.AddChild(NewDrawable("cdplayer_body", Vec3{}, Vec3{0.6, 0.14, 0.3}, Color{0.75, 0.75, 0.78, 1}))

	dock := NewGroup("dock")
	dock.AddChild(NewDrawable("dock_front", Vec3{0, 0.02, 0.15}, Vec3{0.3, 0.03, 0.02}, Color{0.2, 0.2, 0.22, 1}))
	dock.AddChild(NewDrawable("dock_center", Vec3{-0.004, 0.053, 0.037}, Vec3{0.16, 0.01, 0.16}, Color{0.85, 0.85, 0.9, 1}))
	cd.AddChild(dock)

	cd.AddChild(NewDrawable("dock_btn", Vec3{0.2, 0.05, 0.15}, Vec3{0.03, 0.02, 0.01}, Color{0.1, 0.1, 0.1, 1}))
	cd.AddChild(NewDrawable("play_btn", Vec3{0.24, 0.05, 0.15}, Vec3{0.03, 0.02, 0.01}, Color{0.1, 0.1, 0.1, 1}))
	cd.AddChild(NewDrawable("speaker_left", Vec3{-0.16, 0, 0}, Vec3{0.12, 0.2, 0.12}, Color{0.3, 0.3, 0.32, 1}))
	cd.AddChild(NewDrawable("speaker_right", Vec3{0.16, 0, 0}, Vec3{0.12, 0.2, 0.12}, Color{0.3, 0.3, 0.32, 1}))
	cd.AddChild(NewDrawable("volume_knob", Vec3{0.26, 0.08, 0.12}, Vec3{0.03, 0.03, 0.03}, Color{0.6, 0.6, 0.6, 1}))
	root.AddChild(cd)

	tvs := NewGroup("tvs")
	tvs.Position = Vec3{13, 0, 4.4}
	screens := make(map[ScreenID]*Node, numScreens)
	for i := 0; i < numScreens; i++ {
		tv := NewGroup(fmt.Sprintf("tv%d", i+1))
		tv.Position = Vec3{0, 1.6 + float64(i/2)*1.3, -1.4 + float64(i%2)*2.8}
		tv.AddChild(NewDrawable(fmt.Sprintf("tv%d_shell", i+1), Vec3{0.1, 0, 0}, Vec3{0.1, 1.2, 2.2}, Color{0.25, 0.22, 0.2, 1}))
		scr := NewDrawable(fmt.Sprintf("screen%d", i+1), Vec3{}, Vec3{0.02, 1, 1.9}, Color{0.05, 0.05, 0.08, 1})
		scr.Channel = i
		tv.AddChild(scr)
		tvs.AddChild(tv)
		screens[ScreenID(i)] = scr
	}
	root.AddChild(tvs)

	marker := NewDrawable("nav_marker", Vec3{-1.2, 2.6, 2.5}, Vec3{0.2, 0.02, 0.02}, Color{1, 0.55, 0.1, 1})
	root.AddChild(marker)

	g := &Graph{
		Root:       root,
		Camera:     NewCamera(routes.Lookup(DefaultRoute)),
		CDPlayer:   cd,
		Dock:       dock,
		Marker:     marker,
		Screens:    screens,
		Ambient:    NewLight("ambient", LightAmbient, lights.Ambient),
		Point:      NewLight("point", LightPoint, lights.Point),
		dockRest:   dock.Position,
		markerRest: marker.Position,
	}
	g.Point.Position = Vec3{0, 6, 2}
	return g
}

// Lights returns the scene's lights.
func (g *Graph) Lights() []*Light {
	return []*Light{g.Ambient, g.Point}
}

// ScreenAt returns the screen id of node n, or false if n is not a screen.
func (g *Graph) ScreenAt(n *Node) (ScreenID, bool) {
	for id, s := range g.Screens {
		if s == n {
			return id, true
		}
	}
	return 0, false
}
