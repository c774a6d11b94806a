package render

import (
	"github.com/taigrr/diorama/pkg/math3d"
)

// Plane represents a plane in 3D space using the equation: Ax + By + Cz + D = 0
// where (A, B, C) is the normal and D is the distance from origin.
type Plane struct {
	Normal math3d.Vec3
	D      float32
}

func planeFromRow(r math3d.Vec4) Plane {
	return Plane{Normal: math3d.V3(r.X, r.Y, r.Z), D: r.W}
}

// Normalize normalizes the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive = in front (same side as normal), negative = behind.
func (p Plane) DistanceToPoint(point math3d.Vec3) float32 {
	return p.Normal.Dot(point) + p.D
}

// Frustum represents the 6 planes of a view frustum.
// Planes are ordered: Left, Right, Bottom, Top, Near, Far.
// Each plane's normal points inward.
type Frustum struct {
	Planes [6]Plane
}

// FrustumPlane indices for clarity.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustumFromMatrix extracts frustum planes from a view-projection matrix
// with the Gribb/Hartmann row sum/difference method.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	r0, r1, r2, r3 := m.Row(0), m.Row(1), m.Row(2), m.Row(3)

	f := Frustum{Planes: [6]Plane{
		FrustumLeft:   planeFromRow(r3.Add(r0)),
		FrustumRight:  planeFromRow(r3.Sub(r0)),
		FrustumBottom: planeFromRow(r3.Add(r1)),
		FrustumTop:    planeFromRow(r3.Sub(r1)),
		FrustumNear:   planeFromRow(r3.Add(r2)),
		FrustumFar:    planeFromRow(r3.Sub(r2)),
	}}

	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// ContainsPoint tests if a point is inside the frustum.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere reports whether a sphere touches the frustum. The test is
// conservative: spheres near the frustum corners may be reported visible.
func (f Frustum) IntersectsSphere(center math3d.Vec3, radius float32) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(center) < -radius {
			return false
		}
	}
	return true
}
