package scene

import (
	"github.com/taigrr/diorama/pkg/math3d"
)

// Intersect is the result of a ray/primitive test.
type Intersect struct {
	Point    math3d.Vec3
	Normal   math3d.Vec3
	Distance float32
	Hit      bool
	Material *Material
	U, V     float32
}

// Empty returns the miss record.
func Empty() Intersect {
	return Intersect{Material: Black()}
}

// Primitive is anything a ray can hit.
//
// Intersect expects a normalized direction, so Distance is in world units.
// BoundingRadius is a conservative sphere radius around Position used for
// frustum culling.
type Primitive interface {
	Intersect(origin, dir math3d.Vec3) Intersect
	Position() math3d.Vec3
	SetPosition(p math3d.Vec3)
	BoundingRadius() float32
	Material() *Material
}
