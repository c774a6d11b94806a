package render

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/taigrr/diorama/pkg/math3d"
)

func TestPlaneDistanceToPoint(t *testing.T) {
	// Plane at Z=0, normal pointing +Z
	plane := Plane{Normal: math3d.V3(0, 0, 1), D: 0}

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected float32
	}{
		{"origin", math3d.V3(0, 0, 0), 0},
		{"in front", math3d.V3(0, 0, 5), 5},
		{"behind", math3d.V3(0, 0, -3), -3},
		{"offset XY", math3d.V3(10, -5, 2), 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dist := plane.DistanceToPoint(tc.point)
			if math32.Abs(dist-tc.expected) > 1e-6 {
				t.Errorf("got %v, want %v", dist, tc.expected)
			}
		})
	}
}

func TestPlaneNormalize(t *testing.T) {
	plane := Plane{Normal: math3d.V3(0, 3, 4), D: 10}
	plane.Normalize()

	if l := plane.Normal.Len(); math32.Abs(l-1) > 1e-6 {
		t.Errorf("normalized normal length = %v, want 1.0", l)
	}
	if !plane.Normal.ApproxEqual(math3d.V3(0, 0.6, 0.8), 1e-6) {
		t.Errorf("normal = %v, want (0, 0.6, 0.8)", plane.Normal)
	}
	// D should be scaled too (10/5 = 2)
	if math32.Abs(plane.D-2) > 1e-6 {
		t.Errorf("D = %v, want 2.0", plane.D)
	}
}

func TestFrustumContainsPoint(t *testing.T) {
	proj := math3d.Perspective(math32.Pi/3, 16.0/9.0, 0.1, 100)
	frustum := NewFrustumFromMatrix(proj.Mul(math3d.Identity()))

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected bool
	}{
		{"center near", math3d.V3(0, 0, -1), true},
		{"center mid", math3d.V3(0, 0, -50), true},
		{"center far", math3d.V3(0, 0, -99), true},
		{"behind camera", math3d.V3(0, 0, 1), false},
		{"too far", math3d.V3(0, 0, -200), false},
		{"too close", math3d.V3(0, 0, -0.01), false},
		{"far to the right", math3d.V3(100, 0, -10), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := frustum.ContainsPoint(tc.point); got != tc.expected {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tc.point, got, tc.expected)
			}
		})
	}
}

func TestFrustumIntersectsSphere(t *testing.T) {
	proj := math3d.Perspective(math32.Pi/3, 16.0/9.0, 1, 100)
	frustum := NewFrustumFromMatrix(proj.Mul(math3d.Identity()))

	tests := []struct {
		name     string
		center   math3d.Vec3
		radius   float32
		expected bool
	}{
		{"inside", math3d.V3(0, 0, -10), 1, true},
		{"partially visible", math3d.V3(0, 0, -0.5), 1, true}, // straddles the near plane
		{"behind", math3d.V3(0, 0, 5), 1, false},
		{"far behind", math3d.V3(0, 0, 20), 1, false},
		{"left edge overlap", math3d.V3(-20, 0, -10), 15, true},
		{"far left", math3d.V3(-200, 0, -10), 1, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := frustum.IntersectsSphere(tc.center, tc.radius); got != tc.expected {
				t.Errorf("IntersectsSphere(%v, %v) = %v, want %v", tc.center, tc.radius, got, tc.expected)
			}
		})
	}
}

func TestCameraFrustumCulling(t *testing.T) {
	cam := NewCamera(math3d.V3(0, 2, 6), math3d.V3(0, 0, 0))
	cam.SetAspectRatio(4.0 / 3.0)
	frustum := cam.Frustum()

	if !frustum.IntersectsSphere(cam.Center, 0.5) {
		t.Error("sphere at the look-at target should be in the frustum")
	}

	behind := cam.Eye.Sub(cam.ViewDirection().Scale(1000))
	if frustum.IntersectsSphere(behind, 1) {
		t.Error("sphere 1000 units behind the camera should be culled")
	}
}

func TestFrustumWithRotatedCamera(t *testing.T) {
	proj := math3d.Perspective(math32.Pi/3, 1, 1, 100)
	view := math3d.LookAt(math3d.Zero3(), math3d.V3(10, 0, 0), math3d.Up())
	frustum := NewFrustumFromMatrix(proj.Mul(view))

	if !frustum.ContainsPoint(math3d.V3(10, 0, 0)) {
		t.Error("point in front of rotated camera should be visible")
	}
	if frustum.ContainsPoint(math3d.V3(-10, 0, 0)) {
		t.Error("point behind rotated camera should not be visible")
	}
}

func TestFrustumPlanesNormalized(t *testing.T) {
	cam := NewCamera(math3d.V3(3, 4, 5), math3d.V3(0, 1, 0))
	for i, p := range cam.Frustum().Planes {
		if l := p.Normal.Len(); math32.Abs(l-1) > 1e-4 {
			t.Errorf("plane %d normal length = %v, want 1", i, l)
		}
	}
}

func BenchmarkFrustumExtraction(b *testing.B) {
	proj := math3d.Perspective(math32.Pi/3, 16.0/9.0, 0.1, 1000)
	view := math3d.LookAt(math3d.V3(0, 10, 20), math3d.Zero3(), math3d.Up())
	viewProj := proj.Mul(view)

	for b.Loop() {
		_ = NewFrustumFromMatrix(viewProj)
	}
}

func BenchmarkFrustumIntersectsSphere(b *testing.B) {
	proj := math3d.Perspective(math32.Pi/3, 16.0/9.0, 0.1, 1000)
	frustum := NewFrustumFromMatrix(proj)
	center := math3d.V3(0, 0, -10)

	b.Run("visible", func(b *testing.B) {
		for b.Loop() {
			_ = frustum.IntersectsSphere(center, 2)
		}
	})

	behind := math3d.V3(0, 0, 15)
	b.Run("culled", func(b *testing.B) {
		for b.Loop() {
			_ = frustum.IntersectsSphere(behind, 2)
		}
	})
}
