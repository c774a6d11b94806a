package scene

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chewxy/math32"
	"gopkg.in/yaml.v2"

	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/render"
)

// File is the YAML scene format.
type File struct {
	Name      string                  `yaml:"name"`
	Textures  map[string]TextureSpec  `yaml:"textures"`
	Materials map[string]MaterialSpec `yaml:"materials"`
	Objects   []ObjectSpec            `yaml:"objects"`
	Grid      *GridSpec               `yaml:"grid"`
	Animated  []AnimatedSpec          `yaml:"animated"`
	Light     LightSpec               `yaml:"light"`
	Camera    CameraSpec              `yaml:"camera"`
}

// TextureSpec names exactly one of an image file, a checkerboard or a gradient.
type TextureSpec struct {
	File     string        `yaml:"file"`
	Checker  *CheckerSpec  `yaml:"checker"`
	Gradient *GradientSpec `yaml:"gradient"`
	Filter   string        `yaml:"filter"` // nearest (default) or bilinear
	Wrap     string        `yaml:"wrap"`   // repeat (default) or clamp
}

// CheckerSpec is a procedural checkerboard: Size pixels square with Check
// pixel cells alternating between A and B.
type CheckerSpec struct {
	Size  int      `yaml:"size"`
	Check int      `yaml:"check"`
	A     ColorSpec `yaml:"a"`
	B     ColorSpec `yaml:"b"`
}

// GradientSpec is a vertical gradient Size pixels square.
type GradientSpec struct {
	Size   int       `yaml:"size"`
	Top    ColorSpec `yaml:"top"`
	Bottom ColorSpec `yaml:"bottom"`
}

// MaterialSpec describes a named material. Texture names an entry of the
// textures section.
type MaterialSpec struct {
	Diffuse         ColorSpec  `yaml:"diffuse"`
	Specular        float32    `yaml:"specular"`
	Albedo          [4]float32 `yaml:"albedo"`
	RefractiveIndex float32    `yaml:"refractive_index"`
	Texture         string     `yaml:"texture"`
}

// ObjectSpec places one cube or sphere.
type ObjectSpec struct {
	Shape    string    `yaml:"shape"`
	Center   []float32 `yaml:"center"`
	Size     float32   `yaml:"size"`   // cube edge
	Radius   float32   `yaml:"radius"` // sphere
	Material string    `yaml:"material"`
}

// AnimatedSpec is an object that bobs vertically around its center.
type AnimatedSpec struct {
	ObjectSpec `yaml:",inline"`
	Amplitude  float32 `yaml:"amplitude"`
	Speed      float32 `yaml:"speed"`
	Phase      float32 `yaml:"phase"`
}

// GridSpec fills the boxes between From and To (inclusive, To defaults to From).
type GridSpec struct {
	Size   int        `yaml:"size"`
	Cell   float32    `yaml:"cell"`
	Origin []float32  `yaml:"origin"`
	Fill   []FillSpec `yaml:"fill"`
}

// FillSpec sets a box of grid cells to one shape and material.
type FillSpec struct {
	From     []int  `yaml:"from"`
	To       []int  `yaml:"to"`
	Shape    string `yaml:"shape"`
	Material string `yaml:"material"`
}

// LightSpec is the point light.
type LightSpec struct {
	Position  []float32 `yaml:"position"`
	Color     ColorSpec `yaml:"color"`
	Intensity float32   `yaml:"intensity"`
}

// CameraSpec places the camera. Up defaults to +Y and FOV to 90 degrees.
type CameraSpec struct {
	Eye    []float32 `yaml:"eye"`
	Center []float32 `yaml:"center"`
	Up     []float32 `yaml:"up"`
	FOV    float32   `yaml:"fov"` // degrees
}

// ColorSpec accepts "#rrggbb" or [r, g, b].
type ColorSpec render.Color

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *ColorSpec) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err == nil {
		col, err := render.ParseHex(s)
		if err != nil {
			return err
		}
		*c = ColorSpec(col)
		return nil
	}

	var rgb []int
	if err := unmarshal(&rgb); err != nil {
		return fmt.Errorf("color must be \"#rrggbb\" or [r, g, b]: %w", err)
	}
	if len(rgb) != 3 {
		return fmt.Errorf("color needs 3 channels, got %d", len(rgb))
	}
	for _, v := range rgb {
		if v < 0 || v > 255 {
			return fmt.Errorf("color channel %d outside [0,255]", v)
		}
	}
	*c = ColorSpec{uint8(rgb[0]), uint8(rgb[1]), uint8(rgb[2])}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c ColorSpec) MarshalYAML() (any, error) {
	return render.Color(c).Hex(), nil
}

// LoadFile reads a YAML scene. Texture files resolve relative to the scene file.
func LoadFile(path string, store *render.TextureStore, log Logger) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	sc, err := Parse(data, filepath.Dir(path), store, log)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return sc, nil
}

// Parse builds a scene from YAML.
func Parse(data []byte, baseDir string, store *render.TextureStore, log Logger) (*Scene, error) {
	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	return f.Build(baseDir, store, log)
}

// Build turns the parsed file into a scene.
func (f *File) Build(baseDir string, store *render.TextureStore, log Logger) (*Scene, error) {
	log = orNop(log)
	if store == nil {
		store = render.NewTextureStore()
	}

	textures := make(map[string]*render.Texture, len(f.Textures))
	for name, spec := range f.Textures {
		tex, err := spec.build(baseDir, store)
		if err != nil {
			return nil, fmt.Errorf("texture %q: %w", name, err)
		}
		store.Register(name, tex)
		textures[name] = tex
	}

	materials := make(map[string]*Material, len(f.Materials))
	for name, spec := range f.Materials {
		m, clamped := NewMaterial(name, render.Color(spec.Diffuse), spec.Specular, spec.Albedo, spec.RefractiveIndex)
		if clamped {
			log.Warnf("material %q: weights clamped to albedo %v, specular %v, refractive index %v",
				name, m.Albedo, m.Specular, m.RefractiveIndex)
		}
		if spec.Texture != "" {
			tex, ok := textures[spec.Texture]
			if !ok {
				tex, ok = store.Get(spec.Texture)
			}
			if !ok {
				return nil, fmt.Errorf("material %q: %w %q", name, ErrUnknownTexture, spec.Texture)
			}
			m.WithTexture(tex)
		}
		materials[name] = m
	}

	sc := &Scene{Name: f.Name, Materials: materials}

	for i, o := range f.Objects {
		p, err := o.build(materials)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		sc.Static = append(sc.Static, p)
	}

	if f.Grid != nil {
		prims, err := f.Grid.build(materials, log)
		if err != nil {
			return nil, err
		}
		sc.Static = append(sc.Static, prims...)
	}

	for i, a := range f.Animated {
		p, err := a.build(materials)
		if err != nil {
			return nil, fmt.Errorf("animated %d: %w", i, err)
		}
		sc.Animated = append(sc.Animated, NewAnimated(p, a.Amplitude, a.Speed, a.Phase))
	}

	var err error
	if sc.Light, err = f.Light.build(); err != nil {
		return nil, fmt.Errorf("light: %w", err)
	}
	if sc.Camera, err = f.Camera.build(); err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}

	log.Debugf("scene %q: %d static, %d animated, %d materials, %d textures",
		sc.Name, len(sc.Static), len(sc.Animated), len(materials), len(textures))
	return sc, nil
}

func (s TextureSpec) build(baseDir string, store *render.TextureStore) (*render.Texture, error) {
	var tex *render.Texture
	switch {
	case s.File != "":
		path := s.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		t, err := store.Load(path)
		if err != nil {
			return nil, err
		}
		// Shared with other scenes through the store; copy before changing modes.
		cp := *t
		tex = &cp
	case s.Checker != nil:
		c := s.Checker
		tex = render.NewCheckerTexture(orDefault(c.Size, 64), orDefault(c.Size, 64), orDefault(c.Check, 8),
			render.Color(c.A), render.Color(c.B))
	case s.Gradient != nil:
		g := s.Gradient
		tex = render.NewGradientTexture(orDefault(g.Size, 64), orDefault(g.Size, 64),
			render.Color(g.Top), render.Color(g.Bottom))
	default:
		return nil, fmt.Errorf("needs one of file, checker or gradient")
	}

	switch s.Filter {
	case "", "nearest":
	case "bilinear":
		tex.FilterMode = render.FilterBilinear
	default:
		return nil, fmt.Errorf("unknown filter %q", s.Filter)
	}
	switch s.Wrap {
	case "", "repeat":
	case "clamp":
		tex.WrapU, tex.WrapV = render.WrapClamp, render.WrapClamp
	default:
		return nil, fmt.Errorf("unknown wrap %q", s.Wrap)
	}
	return tex, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func (o ObjectSpec) build(materials map[string]*Material) (Primitive, error) {
	center, err := vec3(o.Center, math3d.Zero3())
	if err != nil {
		return nil, fmt.Errorf("center: %w", err)
	}
	m, ok := materials[o.Material]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownMaterial, o.Material)
	}

	kind, err := ParseKind(o.Shape)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindCube:
		if o.Size <= 0 {
			return nil, fmt.Errorf("cube size must be positive, got %v", o.Size)
		}
		return NewCube(center, o.Size, m), nil
	case KindSphere:
		if o.Radius <= 0 {
			return nil, fmt.Errorf("sphere radius must be positive, got %v", o.Radius)
		}
		return NewSphere(center, o.Radius, m), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownShape, o.Shape)
}

func (g GridSpec) build(materials map[string]*Material, log Logger) ([]Primitive, error) {
	origin, err := vec3(g.Origin, math3d.Zero3())
	if err != nil {
		return nil, fmt.Errorf("grid origin: %w", err)
	}
	if g.Cell <= 0 {
		return nil, fmt.Errorf("grid cell must be positive, got %v", g.Cell)
	}

	grid := NewGrid(g.Size, g.Cell, origin, log)
	for i, fill := range g.Fill {
		kind, err := ParseKind(fill.Shape)
		if err != nil {
			return nil, fmt.Errorf("grid fill %d: %w", i, err)
		}
		if len(fill.From) != 3 {
			return nil, fmt.Errorf("grid fill %d: from needs 3 indices", i)
		}
		to := fill.To
		if to == nil {
			to = fill.From
		}
		if len(to) != 3 {
			return nil, fmt.Errorf("grid fill %d: to needs 3 indices", i)
		}
		for x := min(fill.From[0], to[0]); x <= max(fill.From[0], to[0]); x++ {
			for y := min(fill.From[1], to[1]); y <= max(fill.From[1], to[1]); y++ {
				for z := min(fill.From[2], to[2]); z <= max(fill.From[2], to[2]); z++ {
					grid.Place(x, y, z, kind, fill.Material)
				}
			}
		}
	}
	return grid.Primitives(materials)
}

func (l LightSpec) build() (Light, error) {
	pos, err := vec3(l.Position, math3d.V3(0, 10, 10))
	if err != nil {
		return Light{}, err
	}
	light := Light{Position: pos, Color: render.Color(l.Color), Intensity: l.Intensity}
	if light.Color == (render.Color{}) {
		light.Color = render.ColorWhite
	}
	if light.Intensity == 0 {
		light.Intensity = 1
	}
	return light, nil
}

func (c CameraSpec) build() (render.Camera, error) {
	eye, err := vec3(c.Eye, math3d.V3(0, 2, 6))
	if err != nil {
		return render.Camera{}, fmt.Errorf("eye: %w", err)
	}
	center, err := vec3(c.Center, math3d.Zero3())
	if err != nil {
		return render.Camera{}, fmt.Errorf("center: %w", err)
	}
	up, err := vec3(c.Up, math3d.Up())
	if err != nil {
		return render.Camera{}, fmt.Errorf("up: %w", err)
	}

	cam := *render.NewCamera(eye, center)
	cam.Up = up
	if c.FOV > 0 {
		cam.FOV = c.FOV * math32.Pi / 180
	}
	return cam, nil
}

func vec3(v []float32, def math3d.Vec3) (math3d.Vec3, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return math3d.V3(v[0], v[1], v[2]), nil
	}
	return math3d.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(v))
}
