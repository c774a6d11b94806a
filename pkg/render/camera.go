package render

import (
	"github.com/chewxy/math32"

	"github.com/taigrr/diorama/pkg/math3d"
)

// pitchLimit keeps orbit away from the poles where the view basis flips.
const pitchLimit = math32.Pi/2 - 0.1

// Camera is a look-at camera. Everything else (view direction, basis vectors,
// matrices) derives from Eye, Center and Up on demand.
type Camera struct {
	Eye    math3d.Vec3
	Center math3d.Vec3
	Up     math3d.Vec3

	// Projection parameters, used for frustum culling and the ray footprint.
	FOV    float32 // Vertical field of view in radians
	Aspect float32 // Width / Height
	Near   float32
	Far    float32
}

// NewCamera creates a camera at eye looking at center with +Y up and a 90 degree field of view.
func NewCamera(eye, center math3d.Vec3) *Camera {
	return &Camera{
		Eye:    eye,
		Center: center,
		Up:     math3d.Up(),
		FOV:    math32.Pi / 2,
		Aspect: 1,
		Near:   0.1,
		Far:    1000,
	}
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float32) {
	c.Aspect = aspect
}

// ViewDirection returns the unit vector from the eye toward the center.
func (c *Camera) ViewDirection() math3d.Vec3 {
	return c.Center.Sub(c.Eye).Normalize()
}

// basis returns the right-handed orthonormal frame of the camera.
func (c *Camera) basis() (forward, right, up math3d.Vec3) {
	forward = c.ViewDirection()
	right = forward.Cross(c.Up).Normalize()
	up = right.Cross(forward).Normalize()
	return forward, right, up
}

// BasisChange maps a camera-space direction (looking down -Z) into a
// normalized world-space direction.
func (c *Camera) BasisChange(v math3d.Vec3) math3d.Vec3 {
	forward, right, up := c.basis()
	return right.Scale(v.X).
		Add(up.Scale(v.Y)).
		Sub(forward.Scale(v.Z)).
		Normalize()
}

// Orbit rotates the eye around the center by the given yaw and pitch deltas
// (radians). The distance between eye and center is preserved.
func (c *Camera) Orbit(deltaYaw, deltaPitch float32) {
	rv := c.Eye.Sub(c.Center)
	radius := rv.Len()

	yaw := math32.Atan2(rv.Z, rv.X)
	pitch := math32.Atan2(-rv.Y, math32.Sqrt(rv.X*rv.X+rv.Z*rv.Z))

	yaw = math32.Mod(yaw+deltaYaw, 2*math32.Pi)
	pitch = max(-pitchLimit, min(pitchLimit, pitch+deltaPitch))

	cp := math32.Cos(pitch)
	c.Eye = c.Center.Add(math3d.V3(
		radius*math32.Cos(yaw)*cp,
		-radius*math32.Sin(pitch),
		radius*math32.Sin(yaw)*cp,
	))
}

// Move translates eye and center together, panning the whole rig.
func (c *Camera) Move(delta math3d.Vec3) {
	c.Eye = c.Eye.Add(delta)
	c.Center = c.Center.Add(delta)
}

// Distance returns the orbit radius.
func (c *Camera) Distance() float32 {
	return c.Eye.Distance(c.Center)
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	return math3d.LookAt(c.Eye, c.Center, c.Up)
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	return math3d.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// Frustum returns the current view frustum.
func (c *Camera) Frustum() Frustum {
	return NewFrustumFromMatrix(c.ViewProjectionMatrix())
}

// PrimaryRay returns the normalized world-space direction of the ray through
// pixel (x, y) of a w x h image. The eye is the ray origin.
func (c *Camera) PrimaryRay(x, y, w, h int) math3d.Vec3 {
	sx := (2*float32(x)/float32(w) - 1) * c.Aspect
	sy := 1 - 2*float32(y)/float32(h)

	k := math32.Tan(c.FOV / 2)
	return c.BasisChange(math3d.V3(sx*k, sy*k, -1))
}

// WorldToScreen transforms a world point to screen coordinates.
// Returns (screenX, screenY, depth, visible).
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float32, visible bool) {
	clipPos := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))

	// Behind the camera
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clipPos.PerspectiveDivide()
	if ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float32(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float32(screenHeight) // Y is flipped
	depth = ndc.Z

	return x, y, depth, ndc.X >= -1 && ndc.X <= 1 && ndc.Y >= -1 && ndc.Y <= 1
}
