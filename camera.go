package popstage

import "math"

const (
	defaultFOV  = 50 * math.Pi / 180
	defaultNear = 0.1
)

// Camera is the perspective camera of the render graph. It looks down its
// local -Z axis; Rotation holds Euler angles applied in X, Y, Z order.
type Camera struct {
	Position Vec3
	Rotation Vec3
	// FOV is the vertical field of view in radians.
	FOV float64
	// Near is the near clipping distance; points closer are not projected.
	Near float64

	dirty bool
	// cached sin/cos of the rotation, refreshed when dirty
	sx, cx, sy, cy, sz, cz float64
}

// NewCamera creates a camera at the given pose with default lens settings.
func NewCamera(pose Pose) *Camera {
	return &Camera{
		Position: pose.Position,
		Rotation: pose.Rotation,
		FOV:      defaultFOV,
		Near:     defaultNear,
		dirty:    true,
	}
}

// SetPose moves the camera. Projection caches are refreshed lazily.
func (c *Camera) SetPose(position, rotation Vec3) {
	if c.Position == position && c.Rotation == rotation {
		return
	}
	c.Position = position
	c.Rotation = rotation
	c.dirty = true
}

// Pose returns the camera's current position and rotation.
func (c *Camera) Pose() Pose {
	return Pose{Position: c.Position, Rotation: c.Rotation}
}

func (c *Camera) refresh() {
	if !c.dirty {
		return
	}
	c.dirty = false
	c.sx, c.cx = math.Sincos(-c.Rotation.X)
	c.sy, c.cy = math.Sincos(-c.Rotation.Y)
	c.sz, c.cz = math.Sincos(-c.Rotation.Z)
}

// toView transforms a world-space point into camera space by applying the
// inverse of the camera's translation and rotation.
func (c *Camera) toView(p Vec3) Vec3 {
	c.refresh()
	v := p.Sub(c.Position)

	// Undo X, then Y, then Z (inverse of the XYZ composition).
	y := c.cx*v.Y - c.sx*v.Z
	z := c.sx*v.Y + c.cx*v.Z
	v.Y, v.Z = y, z

	x := c.cy*v.X + c.sy*v.Z
	z = -c.sy*v.X + c.cy*v.Z
	v.X, v.Z = x, z

	x = c.cz*v.X - c.sz*v.Y
	y = c.sz*v.X + c.cz*v.Y
	v.X, v.Y = x, y
	return v
}

// Project maps a world-space point into the viewport. It returns the screen
// coordinates, the view depth (positive in front of the camera) and whether
// the point is in front of the near plane.
func (c *Camera) Project(p Vec3, viewport Rect) (sx, sy, depth float64, ok bool) {
	v := c.toView(p)
	depth = -v.Z
	if depth < c.Near {
		return 0, 0, depth, false
	}
	focal := (viewport.Height / 2) / math.Tan(c.FOV/2)
	sx = viewport.X + viewport.Width/2 + v.X/depth*focal
	sy = viewport.Y + viewport.Height/2 - v.Y/depth*focal
	return sx, sy, depth, true
}

// ProjectedSize returns the on-screen length of a world-space length at the
// given view depth.
func (c *Camera) ProjectedSize(length, depth float64, viewport Rect) float64 {
	if depth < c.Near {
		return 0
	}
	focal := (viewport.Height / 2) / math.Tan(c.FOV/2)
	return length / depth * focal
}
