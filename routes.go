package popstage

import (
	"fmt"
	"math"
)

// RoutePath is one of the fixed page paths the scene reacts to.
type RoutePath string

const (
	RouteUpload   RoutePath = "/"
	RouteAnalysis RoutePath = "/analysis"
	RouteResults  RoutePath = "/results"
	RouteSupport  RoutePath = "/support"
)

// DefaultRoute is the entry unknown paths fall back to.
const DefaultRoute = RouteUpload

// Routes lists every enumerated path in navigation-marker order.
var Routes = []RoutePath{RouteUpload, RouteAnalysis, RouteResults, RouteSupport}

// Known reports whether p is one of the enumerated paths.
func (p RoutePath) Known() bool {
	for _, r := range Routes {
		if r == p {
			return true
		}
	}
	return false
}

// Index returns the position of p in Routes, or the default route's
// position for unknown paths.
func (p RoutePath) Index() int {
	for i, r := range Routes {
		if r == p {
			return i
		}
	}
	return 0
}

// Pose is a camera position and Euler rotation.
type Pose struct {
	Position Vec3 `yaml:"position"`
	Rotation Vec3 `yaml:"rotation"`
}

// RouteTable holds the two camera lookup tables keyed by route.
type RouteTable struct {
	positions map[RoutePath]Vec3
	rotations map[RoutePath]Vec3
}

// DefaultRouteTable returns the camera poses of the desk scene.
func DefaultRouteTable() *RouteTable {
	return &RouteTable{
		positions: map[RoutePath]Vec3{
			RouteUpload:   {0, 1.4, 4},
			RouteAnalysis: {9.5, 2.4, 4.4},
			RouteResults:  {0, 3.4, 4},
			RouteSupport:  {0, 12, 4},
		},
		rotations: map[RoutePath]Vec3{
			RouteUpload:   {-math.Pi / 16, 0, 0},
			RouteAnalysis: {0, -math.Pi / 2, 0},
			RouteResults:  {0, math.Pi / 2, 0},
			RouteSupport:  {math.Pi / 2, 0, 0},
		},
	}
}

// Set overrides the pose of an enumerated route.
func (t *RouteTable) Set(p RoutePath, pose Pose) error {
	if !p.Known() {
		return fmt.Errorf("route table: unknown path %q", p)
	}
	t.positions[p] = pose.Position
	t.rotations[p] = pose.Rotation
	return nil
}

// Lookup returns the camera pose for p. Unknown paths resolve to the
// default route's entry.
func (t *RouteTable) Lookup(p RoutePath) Pose {
	pos, okPos := t.positions[p]
	rot, okRot := t.rotations[p]
	if !okPos || !okRot {
		return Pose{Position: t.positions[DefaultRoute], Rotation: t.rotations[DefaultRoute]}
	}
	return Pose{Position: pos, Rotation: rot}
}

// Validate checks that every enumerated path has an entry in both tables.
func (t *RouteTable) Validate() error {
	for _, r := range Routes {
		if _, ok := t.positions[r]; !ok {
			return fmt.Errorf("route table: %q has no camera position", r)
		}
		if _, ok := t.rotations[r]; !ok {
			return fmt.Errorf("route table: %q has no camera rotation", r)
		}
	}
	return nil
}
