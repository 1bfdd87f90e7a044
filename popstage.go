package popstage

import (
	"image/color"
	"math"
)

// Vec3 is a 3D vector used for positions, rotations (Euler radians) and
// scalar animation values throughout the API. Scalar targets use X only.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Near reports whether every component of v is within eps of o.
func (v Vec3) Near(o Vec3, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps &&
		math.Abs(v.Y-o.Y) <= eps &&
		math.Abs(v.Z-o.Z) <= eps
}

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default material tint.
var ColorWhite = Color{1, 1, 1, 1}

// Scale returns the color with its RGB components multiplied by f and
// clamped to [0, 1]. Alpha is unchanged.
func (c Color) Scale(f float64) Color {
	return Color{clamp01(c.R * f), clamp01(c.G * f), clamp01(c.B * f), c.A}
}

// toRGBA converts to a premultiplied color.RGBA for Ebitengine.
func (c Color) toRGBA() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(clamp01(c.R)*a*255 + 0.5),
		G: uint8(clamp01(c.G)*a*255 + 0.5),
		B: uint8(clamp01(c.B)*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Rect is an axis-aligned screen rectangle. The coordinate system has its
// origin at the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// NodeType distinguishes grouping nodes from drawables in the render graph.
type NodeType uint8

const (
	NodeTypeGroup    NodeType = iota // grouping node with no visual output
	NodeTypeDrawable                 // leaf mesh that can be drawn and highlighted
)

// Theme selects the room lighting preset.
type Theme uint8

const (
	ThemeDark  Theme = iota // dimmed room, the default
	ThemeLight              // fully lit room
)

// String returns "dark" or "light".
func (t Theme) String() string {
	if t == ThemeLight {
		return "light"
	}
	return "dark"
}

// ParseTheme maps "dark"/"light" to a Theme. Anything else is dark.
func ParseTheme(s string) Theme {
	if s == "light" {
		return ThemeLight
	}
	return ThemeDark
}
