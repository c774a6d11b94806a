package render

import (
	"github.com/taigrr/diorama/pkg/math3d"
)

// Axis colors for DrawAxes.
var (
	ColorAxisX = Color{255, 64, 64}
	ColorAxisY = Color{64, 255, 64}
	ColorAxisZ = Color{64, 64, 255}
)

// boxEdges indexes the corner array built by DrawBox.
var boxEdges = [12][2]int{
	// Back face
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	// Front face
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	// Connecting edges
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Overlay draws projected line work over a traced frame. It is used for the
// bounds view, which outlines the objects that survived culling.
type Overlay struct {
	camera *Camera
	fb     *Framebuffer
}

// NewOverlay creates an overlay drawing into fb through camera.
func NewOverlay(camera *Camera, fb *Framebuffer) *Overlay {
	return &Overlay{camera: camera, fb: fb}
}

// DrawLine3D draws a line between two world points. The segment is clipped
// to the view volume before the perspective divide, so points behind the
// eye never reach the screen.
func (o *Overlay) DrawLine3D(p1, p2 math3d.Vec3, color Color) {
	vp := o.camera.ViewProjectionMatrix()
	a, b, ok := clipSegment(
		vp.MulVec4(math3d.V4FromV3(p1, 1)),
		vp.MulVec4(math3d.V4FromV3(p2, 1)),
	)
	if !ok {
		return
	}

	x1, y1 := o.toScreen(a)
	x2, y2 := o.toScreen(b)
	o.fb.DrawLine(x1, y1, x2, y2, color)
}

func (o *Overlay) toScreen(clip math3d.Vec4) (x, y int) {
	ndc := clip.PerspectiveDivide()
	x = int((ndc.X + 1) * 0.5 * float32(o.fb.Width))
	y = int((1 - ndc.Y) * 0.5 * float32(o.fb.Height))
	return x, y
}

// clipPlanes are the inside tests of the OpenGL view volume, -w <= x, y, z <= w.
var clipPlanes = [6]func(v math3d.Vec4) float32{
	func(v math3d.Vec4) float32 { return v.W + v.X },
	func(v math3d.Vec4) float32 { return v.W - v.X },
	func(v math3d.Vec4) float32 { return v.W + v.Y },
	func(v math3d.Vec4) float32 { return v.W - v.Y },
	func(v math3d.Vec4) float32 { return v.W + v.Z },
	func(v math3d.Vec4) float32 { return v.W - v.Z },
}

// clipSegment trims the clip-space segment ab to the view volume
// (Liang-Barsky in homogeneous coordinates). ok is false when nothing is left.
func clipSegment(a, b math3d.Vec4) (math3d.Vec4, math3d.Vec4, bool) {
	t0, t1 := float32(0), float32(1)
	for _, inside := range clipPlanes {
		da, db := inside(a), inside(b)
		switch {
		case da < 0 && db < 0:
			return a, b, false
		case da < 0:
			t0 = max(t0, da/(da-db))
		case db < 0:
			t1 = min(t1, da/(da-db))
		}
	}
	if t0 > t1 {
		return a, b, false
	}
	return lerp4(a, b, t0), lerp4(a, b, t1), true
}

func lerp4(a, b math3d.Vec4, t float32) math3d.Vec4 {
	return math3d.V4(
		a.X+(b.X-a.X)*t,
		a.Y+(b.Y-a.Y)*t,
		a.Z+(b.Z-a.Z)*t,
		a.W+(b.W-a.W)*t,
	)
}

// DrawBox draws the 12 edges of an axis-aligned box.
func (o *Overlay) DrawBox(lo, hi math3d.Vec3, color Color) {
	corners := [8]math3d.Vec3{
		{X: lo.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: hi.Y, Z: hi.Z},
		{X: lo.X, Y: hi.Y, Z: hi.Z},
	}
	for _, e := range boxEdges {
		o.DrawLine3D(corners[e[0]], corners[e[1]], color)
	}
}

// DrawPoint draws a point as a small 3D cross.
func (o *Overlay) DrawPoint(pos math3d.Vec3, size float32, color Color) {
	h := size / 2
	o.DrawLine3D(pos.Sub(math3d.V3(h, 0, 0)), pos.Add(math3d.V3(h, 0, 0)), color)
	o.DrawLine3D(pos.Sub(math3d.V3(0, h, 0)), pos.Add(math3d.V3(0, h, 0)), color)
	o.DrawLine3D(pos.Sub(math3d.V3(0, 0, h)), pos.Add(math3d.V3(0, 0, h)), color)
}

// DrawAxes draws the world axes at the origin.
func (o *Overlay) DrawAxes(length float32) {
	origin := math3d.Zero3()
	o.DrawLine3D(origin, math3d.V3(length, 0, 0), ColorAxisX)
	o.DrawLine3D(origin, math3d.V3(0, length, 0), ColorAxisY)
	o.DrawLine3D(origin, math3d.V3(0, 0, length), ColorAxisZ)
}
