// Package scene describes what the tracer renders: primitives, materials, the
// light, the initial camera, and the loaders that build them from YAML or glTF.
package scene

import (
	"errors"

	"github.com/chewxy/math32"

	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/render"
)

var (
	ErrUnknownMaterial = errors.New("unknown material")
	ErrUnknownTexture  = errors.New("unknown texture")
	ErrUnknownShape    = errors.New("unknown shape")
)

// Logger receives the conditions the scene code recovers from on its own.
type Logger interface {
	Warnf(format string, args ...any)
	Debugf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Debugf(string, ...any) {}

func orNop(l Logger) Logger {
	if l == nil {
		return nopLogger{}
	}
	return l
}

// Light is a single point light.
type Light struct {
	Position  math3d.Vec3
	Color     render.Color
	Intensity float32
}

// Animated is a primitive that bobs vertically around Base.
type Animated struct {
	Primitive
	Base      math3d.Vec3
	Amplitude float32
	Speed     float32
	Phase     float32
}

// NewAnimated wraps p, using its current position as the rest position.
func NewAnimated(p Primitive, amplitude, speed, phase float32) *Animated {
	return &Animated{
		Primitive: p,
		Base:      p.Position(),
		Amplitude: amplitude,
		Speed:     speed,
		Phase:     phase,
	}
}

// Update moves the primitive to its position at time t (seconds). The offset is
// computed from Base, so repeated calls never drift.
func (a *Animated) Update(t float32) {
	p := a.Base
	p.Y += a.Amplitude * math32.Sin(a.Speed*t+a.Phase)
	a.SetPosition(p)
}

// Scene is everything needed to render a frame.
type Scene struct {
	Name      string
	Static    []Primitive
	Animated  []*Animated
	Light     Light
	Camera    render.Camera
	Materials map[string]*Material
}

// Advance updates every animated primitive to time t. It must run before
// rendering starts, never concurrently with it.
func (s *Scene) Advance(t float32) {
	for _, a := range s.Animated {
		a.Update(t)
	}
}

// Objects returns static and animated primitives in one slice.
func (s *Scene) Objects() []Primitive {
	objs := make([]Primitive, 0, len(s.Static)+len(s.Animated))
	objs = append(objs, s.Static...)
	for _, a := range s.Animated {
		objs = append(objs, a.Primitive)
	}
	return objs
}

// Len returns the number of primitives.
func (s *Scene) Len() int {
	return len(s.Static) + len(s.Animated)
}
