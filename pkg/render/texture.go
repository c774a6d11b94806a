package render

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"sync"

	"github.com/chewxy/math32"
)

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the texture
	WrapClamp                  // Clamp to edge
)

// FilterMode determines how texture sampling is performed.
type FilterMode int

const (
	FilterNearest  FilterMode = iota // Nearest-neighbor (pixelated)
	FilterBilinear                   // Bilinear interpolation (smooth)
)

// ErrEmptyTexture is returned when an image has no pixels.
var ErrEmptyTexture = errors.New("texture has no pixels")

// Texture is an immutable row-major 2D color array.
// Sample treats v = 0 as the top row, matching image orientation.
type Texture struct {
	Width      int
	Height     int
	Pixels     []Color
	WrapU      WrapMode
	WrapV      WrapMode
	FilterMode FilterMode
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
		WrapU:  WrapRepeat,
		WrapV:  WrapRepeat,
	}
}

// LoadTexture decodes a PNG or JPEG file into a texture.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}

	tex := TextureFromImage(img)
	if len(tex.Pixels) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyTexture)
	}
	return tex, nil
}

// TextureFromImage creates a texture from an image.Image.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := NewTexture(bounds.Dx(), bounds.Dy())

	for y := range tex.Height {
		for x := range tex.Width {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA returns 16-bit values
			tex.Pixels[y*tex.Width+x] = Color{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
		}
	}

	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	if checkSize <= 0 {
		checkSize = 1
	}
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				tex.Pixels[y*width+x] = c1
			} else {
				tex.Pixels[y*width+x] = c2
			}
		}
	}
	return tex
}

// NewGradientTexture creates a vertical gradient from top to bottom.
func NewGradientTexture(width, height int, top, bottom Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		t := float32(0)
		if height > 1 {
			t = float32(y) / float32(height-1)
		}
		c := lerpColor(top, bottom, t)
		for x := range width {
			tex.Pixels[y*width+x] = c
		}
	}
	return tex
}

// At returns the pixel at (x, y), or black when out of bounds.
func (t *Texture) At(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample samples the texture at UV coordinates in [0,1].
func (t *Texture) Sample(u, v float32) Color {
	if t.Width == 0 || t.Height == 0 {
		return Color{}
	}

	u = wrapCoord(u, t.WrapU)
	v = wrapCoord(v, t.WrapV)

	if t.FilterMode == FilterBilinear {
		return t.sampleBilinear(u, v)
	}
	return t.sampleNearest(u, v)
}

func wrapCoord(coord float32, mode WrapMode) float32 {
	switch mode {
	case WrapRepeat:
		coord -= math32.Floor(coord)
	case WrapClamp:
		coord = math32.Max(0, math32.Min(1, coord))
	}
	return coord
}

func (t *Texture) sampleNearest(u, v float32) Color {
	x := min(int(u*float32(t.Width)), t.Width-1)
	y := min(int(v*float32(t.Height)), t.Height-1)
	return t.At(x, y)
}

func (t *Texture) sampleBilinear(u, v float32) Color {
	fx := u*float32(t.Width) - 0.5
	fy := v*float32(t.Height) - 0.5

	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	x1 := wrapPixel(x0+1, t.Width, t.WrapU)
	y1 := wrapPixel(y0+1, t.Height, t.WrapV)
	x0 = wrapPixel(x0, t.Width, t.WrapU)
	y0 = wrapPixel(y0, t.Height, t.WrapV)

	top := lerpColor(t.At(x0, y0), t.At(x1, y0), tx)
	bot := lerpColor(t.At(x0, y1), t.At(x1, y1), tx)
	return lerpColor(top, bot, ty)
}

func wrapPixel(x, size int, mode WrapMode) int {
	if mode == WrapRepeat {
		x %= size
		if x < 0 {
			x += size
		}
		return x
	}
	return max(0, min(x, size-1))
}

// TextureStore loads each texture file once and hands out shared pointers.
// It is safe for concurrent use.
type TextureStore struct {
	mu     sync.Mutex
	byPath map[string]*Texture
	byName map[string]*Texture
}

// NewTextureStore creates an empty store.
func NewTextureStore() *TextureStore {
	return &TextureStore{
		byPath: make(map[string]*Texture),
		byName: make(map[string]*Texture),
	}
}

// Load returns the texture for path, decoding it on first use.
func (s *TextureStore) Load(path string) (*Texture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tex, ok := s.byPath[path]; ok {
		return tex, nil
	}
	tex, err := LoadTexture(path)
	if err != nil {
		return nil, err
	}
	s.byPath[path] = tex
	return tex, nil
}

// Register stores tex under name, replacing any previous entry.
func (s *TextureStore) Register(name string, tex *Texture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName[name] = tex
}

// Get returns the texture registered under name.
func (s *TextureStore) Get(name string) (*Texture, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tex, ok := s.byName[name]
	return tex, ok
}

// Len returns the number of distinct textures held.
func (s *TextureStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byPath) + len(s.byName)
}
