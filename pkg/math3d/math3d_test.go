package math3d

import (
	"testing"

	"github.com/chewxy/math32"
)

const eps = 1e-5

func TestVec3Basics(t *testing.T) {
	a := V3(1, 2, 3)
	b := V3(4, 5, 6)

	tests := []struct {
		name string
		got  Vec3
		want Vec3
	}{
		{"add", a.Add(b), V3(5, 7, 9)},
		{"sub", b.Sub(a), V3(3, 3, 3)},
		{"mul", a.Mul(b), V3(4, 10, 18)},
		{"scale", a.Scale(2), V3(2, 4, 6)},
		{"negate", a.Negate(), V3(-1, -2, -3)},
		{"cross", V3(1, 0, 0).Cross(V3(0, 1, 0)), V3(0, 0, 1)},
		{"min", a.Min(V3(0, 9, 3)), V3(0, 2, 3)},
		{"max", a.Max(V3(0, 9, 3)), V3(1, 9, 3)},
		{"abs", V3(-1, 2, -3).Abs(), V3(1, 2, 3)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !tc.got.ApproxEqual(tc.want, eps) {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}

	if d := a.Dot(b); d != 32 {
		t.Errorf("Dot = %v, want 32", d)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := V3(3, 0, 4).Normalize()
	if math32.Abs(n.Len()-1) > eps {
		t.Errorf("normalized length = %v, want 1", n.Len())
	}
	if !n.ApproxEqual(V3(0.6, 0, 0.8), eps) {
		t.Errorf("Normalize = %v, want (0.6, 0, 0.8)", n)
	}

	if z := Zero3().Normalize(); z != Zero3() {
		t.Errorf("zero vector normalized to %v", z)
	}
}

func TestVec3DivCompZero(t *testing.T) {
	q := V3(1, -1, 2).DivComp(V3(0, 0, 2))
	if !math32.IsInf(q.X, 1) || !math32.IsInf(q.Y, -1) {
		t.Errorf("division by zero component = %v, want +Inf, -Inf", q)
	}
	if q.Z != 1 {
		t.Errorf("q.Z = %v, want 1", q.Z)
	}
	if q.IsFinite() {
		t.Error("IsFinite should be false with infinite components")
	}
}

func TestVec3Reflect(t *testing.T) {
	in := V3(1, -1, 0)
	got := in.Reflect(Up())
	if !got.ApproxEqual(V3(1, 1, 0), eps) {
		t.Errorf("Reflect = %v, want (1, 1, 0)", got)
	}
}

func TestLookAtMapsEyeToOrigin(t *testing.T) {
	eye := V3(3, 4, 5)
	view := LookAt(eye, Zero3(), Up())

	got := view.MulVec3(eye)
	if !got.ApproxEqual(Zero3(), 1e-4) {
		t.Errorf("eye in view space = %v, want origin", got)
	}

	// The look target lies on the -Z axis of view space.
	target := view.MulVec3(Zero3())
	if math32.Abs(target.X) > 1e-4 || math32.Abs(target.Y) > 1e-4 || target.Z >= 0 {
		t.Errorf("target in view space = %v, want on -Z axis", target)
	}
}

func TestPerspectiveNearFar(t *testing.T) {
	proj := Perspective(math32.Pi/2, 1, 1, 10)

	near := proj.MulVec4(V4(0, 0, -1, 1)).PerspectiveDivide()
	far := proj.MulVec4(V4(0, 0, -10, 1)).PerspectiveDivide()

	if math32.Abs(near.Z+1) > 1e-4 {
		t.Errorf("near plane NDC z = %v, want -1", near.Z)
	}
	if math32.Abs(far.Z-1) > 1e-4 {
		t.Errorf("far plane NDC z = %v, want 1", far.Z)
	}
}

func TestMat4RowAndGet(t *testing.T) {
	m := Translate(V3(7, 8, 9))

	if got := m.Get(0, 3); got != 7 {
		t.Errorf("Get(0,3) = %v, want 7", got)
	}
	if got := m.Row(1); got != V4(0, 1, 0, 8) {
		t.Errorf("Row(1) = %v, want (0, 1, 0, 8)", got)
	}
	if got := Identity().Mul(m); got != m {
		t.Errorf("I*M = %v, want %v", got, m)
	}
}
