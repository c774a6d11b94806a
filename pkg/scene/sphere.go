package scene

import (
	"github.com/chewxy/math32"

	"github.com/taigrr/diorama/pkg/math3d"
)

// Sphere is a sphere primitive.
type Sphere struct {
	Center   math3d.Vec3
	Radius   float32
	material *Material
}

// NewSphere creates a sphere. A nil material means Black.
func NewSphere(center math3d.Vec3, radius float32, m *Material) *Sphere {
	if m == nil {
		m = Black()
	}
	return &Sphere{Center: center, Radius: radius, material: m}
}

// Position returns the sphere center.
func (s *Sphere) Position() math3d.Vec3 { return s.Center }
func (s *Sphere) SetPosition(p math3d.Vec3) { s.Center = p }
func (s *Sphere) BoundingRadius() float32 { return s.Radius }
func (s *Sphere) Material() *Material { return s.material }

// Intersect solves |O + tD - C|^2 = r^2 and reports the nearer root in front
// of the origin. A ray starting inside the sphere misses.
func (s *Sphere) Intersect(origin, dir math3d.Vec3) Intersect {
	oc := origin.Sub(s.Center)

	a := dir.Dot(dir)
	b := 2 * oc.Dot(dir)
	c := oc.Dot(oc) - s.Radius*s.Radius

	disc := b*b - 4*a*c
	if disc <= 0 {
		return Empty()
	}

	t := (-b - math32.Sqrt(disc)) / (2 * a)
	if t <= 0 {
		return Empty()
	}

	point := origin.Add(dir.Scale(t))
	normal := point.Sub(s.Center).Normalize()
	u, v := sphereUV(normal)

	return Intersect{
		Point:    point,
		Normal:   normal,
		Distance: t,
		Hit:      true,
		Material: s.material,
		U:        u,
		V:        v,
	}
}

// sphereUV maps a unit vector to equirectangular coordinates with v = 0 at
// the north pole.
func sphereUV(n math3d.Vec3) (u, v float32) {
	u = 0.5 + math32.Atan2(n.Z, n.X)/(2*math32.Pi)
	v = 0.5 - math32.Asin(max(-1, min(1, n.Y)))/math32.Pi
	return u, v
}
