package scene

import (
	"github.com/taigrr/diorama/pkg/render"
)

// Albedo weight indices.
const (
	AlbedoDiffuse = iota
	AlbedoSpecular
	AlbedoReflect
	AlbedoRefract
)

// Sampler returns the color of a surface at texture coordinates (u, v).
// *render.Texture implements it.
type Sampler interface {
	Sample(u, v float32) render.Color
}

// Material describes how a surface responds to light. Materials are shared
// by pointer between primitives and must not be mutated while rendering.
type Material struct {
	Name     string
	Diffuse  render.Color
	Specular float32 // Phong exponent

	// Albedo holds the diffuse, specular, reflection and refraction weights.
	Albedo          [4]float32
	RefractiveIndex float32

	Texture    Sampler
	UseTexture bool
}

var blackMaterial = &Material{Name: "black", RefractiveIndex: 1}

// Black returns the default material: black with every weight zero.
func Black() *Material {
	return blackMaterial
}

// NewMaterial builds a material, clamping every albedo weight into [0,1], the
// specular exponent to at least 0, and a non-positive refractive index to 1.
// The second result reports whether anything had to be clamped.
func NewMaterial(name string, diffuse render.Color, specular float32, albedo [4]float32, refractiveIndex float32) (*Material, bool) {
	clamped := false
	for i, w := range albedo {
		c := max(0, min(1, w))
		if c != w {
			clamped = true
		}
		albedo[i] = c
	}
	if specular < 0 {
		specular = 0
		clamped = true
	}
	if refractiveIndex <= 0 {
		refractiveIndex = 1
		clamped = true
	}

	return &Material{
		Name:            name,
		Diffuse:         diffuse,
		Specular:        specular,
		Albedo:          albedo,
		RefractiveIndex: refractiveIndex,
	}, clamped
}

// WithTexture attaches a texture and enables it.
func (m *Material) WithTexture(tex Sampler) *Material {
	m.Texture = tex
	m.UseTexture = tex != nil
	return m
}

// DiffuseAt returns the surface color at (u, v).
func (m *Material) DiffuseAt(u, v float32) render.Color {
	if m.UseTexture && m.Texture != nil {
		return m.Texture.Sample(u, v)
	}
	return m.Diffuse
}
