package input

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/render"
)

// Controls reports whether a control is held at a point in time.
// *Keyboard implements it.
type Controls interface {
	Active(c Control, now time.Time) bool
}

const (
	axisX = iota
	axisY
	axisZ
	axisYaw
	axisPitch
	numAxes
)

// restVelocity is the speed below which a spring axis snaps to rest.
const restVelocity = 1e-6

// axis carries velocity that a spring pulls back to rest.
type axis struct {
	velocity float64
	accel    float64
	spring   harmonica.Spring
}

func (a *axis) step(impulse float64) float64 {
	a.velocity += impulse
	v := a.velocity
	a.velocity, a.accel = a.spring.Update(a.velocity, a.accel, 0)
	if math.Abs(a.velocity) < restVelocity && math.Abs(a.accel) < restVelocity {
		a.velocity, a.accel = 0, 0
	}
	return v
}

// Rig moves the camera from held controls once per frame.
//
// In direct mode each held key applies a fixed step: forward/back along Z,
// left/right along X, and the arrows orbit around the camera center. With
// smoothing the same steps become impulses on spring-damped velocities, so
// the camera eases in and glides to a stop.
type Rig struct {
	MoveSpeed  float32
	OrbitSpeed float32

	smooth bool
	axes   [numAxes]axis
}

// NewRig creates a rig in direct mode.
func NewRig(moveSpeed, orbitSpeed float32) *Rig {
	return &Rig{MoveSpeed: moveSpeed, OrbitSpeed: orbitSpeed}
}

// EnableSmoothing switches to spring-damped motion. frequency is the spring's
// angular frequency and damping its ratio (1 is critically damped).
func (r *Rig) EnableSmoothing(fps int, frequency, damping float64) {
	r.smooth = true
	s := harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)
	for i := range r.axes {
		r.axes[i] = axis{spring: s}
	}
}

// Smoothing reports whether spring smoothing is on.
func (r *Rig) Smoothing() bool {
	return r.smooth
}

// Steps returns this frame's translation and orbit deltas from the held
// controls, before smoothing.
func (r *Rig) Steps(in Controls, now time.Time) (move math3d.Vec3, yaw, pitch float32) {
	s, rot := r.MoveSpeed, r.OrbitSpeed
	if in.Active(MoveForward, now) {
		move = move.Add(math3d.V3(0, 0, -s))
	}
	if in.Active(MoveBack, now) {
		move = move.Add(math3d.V3(0, 0, s))
	}
	if in.Active(MoveLeft, now) {
		move = move.Add(math3d.V3(-s, 0, 0))
	}
	if in.Active(MoveRight, now) {
		move = move.Add(math3d.V3(s, 0, 0))
	}
	if in.Active(OrbitUp, now) {
		pitch -= rot
	}
	if in.Active(OrbitDown, now) {
		pitch += rot
	}
	if in.Active(OrbitLeft, now) {
		yaw -= rot
	}
	if in.Active(OrbitRight, now) {
		yaw += rot
	}
	return move, yaw, pitch
}

// Update applies one frame of motion to cam and reports whether it moved.
func (r *Rig) Update(cam *render.Camera, in Controls, now time.Time) bool {
	move, yaw, pitch := r.Steps(in, now)

	if r.smooth {
		move = math3d.V3(
			float32(r.axes[axisX].step(float64(move.X))),
			float32(r.axes[axisY].step(float64(move.Y))),
			float32(r.axes[axisZ].step(float64(move.Z))),
		)
		yaw = float32(r.axes[axisYaw].step(float64(yaw)))
		pitch = float32(r.axes[axisPitch].step(float64(pitch)))
	}

	moved := false
	if move != (math3d.Vec3{}) {
		cam.Move(move)
		moved = true
	}
	if yaw != 0 || pitch != 0 {
		cam.Orbit(yaw, pitch)
		moved = true
	}
	return moved
}
