// Package tracer implements the recursive Whitted shading core and the
// per-pixel render driver.
package tracer

import (
	"github.com/chewxy/math32"

	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/render"
	"github.com/taigrr/diorama/pkg/scene"
)

// Options control recursion depth, the secondary ray offset and the
// background.
type Options struct {
	MaxDepth int
	Bias     float32
	Sky      render.Color
}

// DefaultOptions returns depth 3, bias 1e-3 and the sky blue background.
func DefaultOptions() Options {
	return Options{
		MaxDepth: 3,
		Bias:     1e-3,
		Sky:      render.ColorSky,
	}
}

// Tracer casts rays against a primitive list. It holds no per-ray state and
// is safe for concurrent use.
type Tracer struct {
	opts Options
}

// New creates a tracer. A non-positive bias falls back to the default.
func New(opts Options) *Tracer {
	if opts.Bias <= 0 {
		opts.Bias = DefaultOptions().Bias
	}
	if opts.MaxDepth < 0 {
		opts.MaxDepth = 0
	}
	return &Tracer{opts: opts}
}

// Options returns the tracer configuration.
func (t *Tracer) Options() Options {
	return t.opts
}

var defaultTracer = New(DefaultOptions())

// CastRay traces a ray with the default options.
func CastRay(origin, dir math3d.Vec3, objects []scene.Primitive, light scene.Light, depth int) render.Color {
	return defaultTracer.CastRay(origin, dir, objects, light, depth)
}

// CastRay returns the color seen along the ray. dir must be normalized.
// Degenerate input (zero or NaN direction) is not guarded and yields
// whatever the arithmetic produces.
func (t *Tracer) CastRay(origin, dir math3d.Vec3, objects []scene.Primitive, light scene.Light, depth int) render.Color {
	var rays int
	return t.cast(origin, dir, objects, light, depth, &rays)
}

// cast is CastRay with a counter of every ray traced, shadow rays included.
func (t *Tracer) cast(origin, dir math3d.Vec3, objects []scene.Primitive, light scene.Light, depth int, rays *int) render.Color {
	if depth > t.opts.MaxDepth {
		return t.opts.Sky
	}
	*rays++

	hit := nearest(origin, dir, objects)
	if !hit.Hit {
		return t.opts.Sky
	}
	m := hit.Material

	kr := m.Albedo[scene.AlbedoReflect]
	kt := m.Albedo[scene.AlbedoRefract]

	var reflectColor, refractColor render.Color
	if kr > 0 {
		rdir := Reflect(dir, hit.Normal).Normalize()
		rorig := hit.Point.Add(hit.Normal.Scale(t.opts.Bias))
		reflectColor = t.cast(rorig, rdir, objects, light, depth+1, rays)
	}
	if kt > 0 {
		tdir := Refract(dir, hit.Normal, m.RefractiveIndex).Normalize()
		torig := hit.Point.Sub(hit.Normal.Scale(t.opts.Bias))
		refractColor = t.cast(torig, tdir, objects, light, depth+1, rays)
	}

	*rays++
	lit := light.Intensity * (1 - ShadowFactor(hit, light, objects, t.opts.Bias))

	lightDir := light.Position.Sub(hit.Point).Normalize()
	viewDir := origin.Sub(hit.Point).Normalize()
	lightReflect := Reflect(lightDir.Negate(), hit.Normal)

	diffuseIntensity := max(0, hit.Normal.Dot(lightDir))
	diffuse := m.DiffuseAt(hit.U, hit.V).Scale(m.Albedo[scene.AlbedoDiffuse] * diffuseIntensity * lit)

	specularIntensity := math32.Pow(max(0, viewDir.Dot(lightReflect)), m.Specular)
	specular := light.Color.Scale(m.Albedo[scene.AlbedoSpecular] * specularIntensity * lit)

	return diffuse.Add(specular).Scale(1 - kr - kt).
		Add(reflectColor.Scale(kr)).
		Add(refractColor.Scale(kt))
}

// nearest returns the closest hit in front of origin.
func nearest(origin, dir math3d.Vec3, objects []scene.Primitive) scene.Intersect {
	best := scene.Empty()
	zbuf := math32.Inf(1)
	for _, o := range objects {
		hit := o.Intersect(origin, dir)
		if hit.Hit && hit.Distance < zbuf {
			zbuf = hit.Distance
			best = hit
		}
	}
	return best
}

// ShadowFactor returns 1 when something lies between the hit point and the
// light, 0 otherwise. Shadows are binary.
func ShadowFactor(hit scene.Intersect, light scene.Light, objects []scene.Primitive, bias float32) float32 {
	toLight := light.Position.Sub(hit.Point)
	dist := toLight.Len()
	dir := toLight.Scale(1 / dist)
	origin := hit.Point.Add(hit.Normal.Scale(bias))

	for _, o := range objects {
		sh := o.Intersect(origin, dir)
		if sh.Hit && sh.Distance > bias && sh.Distance < dist {
			return 1
		}
	}
	return 0
}

// Reflect mirrors the incident direction i about the normal n.
func Reflect(i, n math3d.Vec3) math3d.Vec3 {
	return i.Reflect(n)
}

// Refract bends i through a surface with normal n and refractive index etaT.
// cosi < 0 means the ray leaves the medium: the normal is flipped and the
// index ratio inverted. Total internal reflection returns the reflection.
func Refract(i, n math3d.Vec3, etaT float32) math3d.Vec3 {
	cosi := -max(-1, min(1, i.Dot(n)))

	eta := etaT
	if cosi < 0 {
		cosi = -cosi
		eta = 1 / etaT
		n = n.Negate()
	}

	k := 1 - eta*eta*(1-cosi*cosi)
	if k < 0 {
		return Reflect(i, n)
	}
	return i.Scale(eta).Add(n.Scale(eta*cosi - math32.Sqrt(k)))
}
