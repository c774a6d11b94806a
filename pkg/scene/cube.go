package scene

import (
	"github.com/chewxy/math32"

	"github.com/taigrr/diorama/pkg/math3d"
)

// faceEpsilon is how close a hit point must be to a face plane to count as
// lying on it.
const faceEpsilon = 1e-3

// Cube is an axis-aligned cube. Its corners are derived from Center and Size
// on every use so that moving the cube only touches Center.
type Cube struct {
	Center   math3d.Vec3
	Size     float32
	material *Material
}

// NewCube creates a cube. A nil material means Black.
func NewCube(center math3d.Vec3, size float32, m *Material) *Cube {
	if m == nil {
		m = Black()
	}
	return &Cube{Center: center, Size: size, material: m}
}

// Position returns the cube center.
func (c *Cube) Position() math3d.Vec3 { return c.Center }
func (c *Cube) SetPosition(p math3d.Vec3) { c.Center = p }
func (c *Cube) Material() *Material { return c.material }

// BoundingRadius returns the half diagonal, the radius of the circumscribed sphere.
func (c *Cube) BoundingRadius() float32 {
	return c.Size * math32.Sqrt(3) / 2
}

func (c *Cube) half() math3d.Vec3 {
	h := c.Size / 2
	return math3d.V3(h, h, h)
}

// Min returns the lower corner.
func (c *Cube) Min() math3d.Vec3 { return c.Center.Sub(c.half()) }

// Max returns the upper corner.
func (c *Cube) Max() math3d.Vec3 { return c.Center.Add(c.half()) }

// Intersect runs the slab test. Zero direction components divide to ±Inf,
// which the min/max reduction handles. When the origin is inside the cube
// the exit point is reported with the normal flipped toward the origin.
func (c *Cube) Intersect(origin, dir math3d.Vec3) Intersect {
	lo, hi := c.Min(), c.Max()

	t0 := lo.Sub(origin).DivComp(dir)
	t1 := hi.Sub(origin).DivComp(dir)

	tNear := t0.Min(t1).MaxComponent()
	tFar := t0.Max(t1).MinComponent()

	if !(tNear < tFar && tFar > 0) {
		return Empty()
	}

	inside := tNear < 0
	t := tNear
	if inside {
		t = tFar
	}

	point := origin.Add(dir.Scale(t))
	outward := c.faceNormal(point)
	u, v := c.faceUV(point, outward)

	normal := outward
	if inside {
		normal = outward.Negate()
	}

	return Intersect{
		Point:    point,
		Normal:   normal,
		Distance: t,
		Hit:      true,
		Material: c.material,
		U:        u,
		V:        v,
	}
}

// faceNormal returns the outward normal of the face containing p.
func (c *Cube) faceNormal(p math3d.Vec3) math3d.Vec3 {
	d := p.Sub(c.Center)
	h := c.Size / 2

	switch {
	case math32.Abs(math32.Abs(d.X)-h) < faceEpsilon:
		return math3d.V3(math32.Copysign(1, d.X), 0, 0)
	case math32.Abs(math32.Abs(d.Y)-h) < faceEpsilon:
		return math3d.V3(0, math32.Copysign(1, d.Y), 0)
	case math32.Abs(math32.Abs(d.Z)-h) < faceEpsilon:
		return math3d.V3(0, 0, math32.Copysign(1, d.Z))
	}

	// Precision loss on large cubes: fall back to the dominant axis.
	a := d.Abs()
	switch {
	case a.X >= a.Y && a.X >= a.Z:
		return math3d.V3(math32.Copysign(1, d.X), 0, 0)
	case a.Y >= a.Z:
		return math3d.V3(0, math32.Copysign(1, d.Y), 0)
	default:
		return math3d.V3(0, 0, math32.Copysign(1, d.Z))
	}
}

// faceUV maps p on the face with outward normal n to [0,1]^2. v grows
// downward like image rows; the back, left and bottom faces are mirrored so
// textures read the right way round from outside.
func (c *Cube) faceUV(p, n math3d.Vec3) (u, v float32) {
	q := p.Sub(c.Min()).Scale(1 / c.Size)
	q = math3d.V3(clamp01(q.X), clamp01(q.Y), clamp01(q.Z))

	switch {
	case n.Z > 0:
		return q.X, 1 - q.Y
	case n.Z < 0:
		return 1 - q.X, 1 - q.Y
	case n.X > 0:
		return q.Z, 1 - q.Y
	case n.X < 0:
		return 1 - q.Z, 1 - q.Y
	case n.Y > 0:
		return q.X, q.Z
	default:
		return 1 - q.X, q.Z
	}
}

func clamp01(x float32) float32 {
	return max(0, min(1, x))
}
