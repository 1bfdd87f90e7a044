package popstage

import "time"

// FrameApplier is the single write path from synchronized state into the
// render graph. It holds no state of its own: each Apply reads the current
// snapshot, evaluates every live target at the frame time, and writes the
// results.
type FrameApplier struct {
	store       *Store
	transitions *TransitionController
	graph       *Graph
	log         *debugLogger
}

// NewFrameApplier creates an applier writing into graph.
func NewFrameApplier(store *Store, transitions *TransitionController, graph *Graph) *FrameApplier {
	return &FrameApplier{store: store, transitions: transitions, graph: graph}
}

// Apply writes the state at now into the render graph: camera pose, dock
// and marker offsets, light intensities, highlight flags and screen
// channels.
func (f *FrameApplier) Apply(now time.Duration) FrameStats {
	snap := f.store.Current()
	g := f.graph
	stats := FrameStats{Version: snap.Version}

	camPos, camRot := g.Camera.Position, g.Camera.Rotation
	for _, id := range f.transitions.IDs() {
		v, _ := f.transitions.Evaluate(id, now)
		stats.Evaluated++
		switch id {
		case TargetCameraPosition:
			camPos = v
		case TargetCameraRotation:
			camRot = v
		case TargetDockOffset:
			g.Dock.Position = g.dockRest.Add(Vec3{Z: v.X})
		case TargetMarkerOffset:
			g.Marker.Position = g.markerRest.Add(Vec3{X: v.X})
		case TargetAmbientLight:
			g.Ambient.Intensity = v.X
		case TargetPointLight:
			g.Point.Intensity = v.X
		}
	}
	g.Camera.SetPose(camPos, camRot)

	g.Root.Walk(func(n *Node) bool {
		if n.IsLeafDrawable() {
			n.Highlighted = snap.Selection.Contains(n.ID)
			if n.Highlighted {
				stats.Highlighted++
			}
		}
		return true
	})

	for id, scr := range g.Screens {
		if ch := snap.Channel(id); ch >= 0 {
			scr.Channel = ch
		}
	}

	stats.Running = f.transitions.Running()
	f.log.logFrame(stats)
	return stats
}
