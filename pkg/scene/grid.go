package scene

import (
	"fmt"

	"github.com/taigrr/diorama/pkg/math3d"
)

// Kind is what occupies a grid cell.
type Kind int

const (
	KindEmpty Kind = iota
	KindCube
	KindSphere
)

func (k Kind) String() string {
	switch k {
	case KindCube:
		return "cube"
	case KindSphere:
		return "sphere"
	default:
		return "empty"
	}
}

// ParseKind parses a shape name as used in scene files.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "cube":
		return KindCube, nil
	case "sphere":
		return KindSphere, nil
	case "", "empty":
		return KindEmpty, nil
	}
	return KindEmpty, fmt.Errorf("%w: %q", ErrUnknownShape, s)
}

// Cell is one grid slot.
type Cell struct {
	Kind     Kind
	Material string
}

// Grid is a cubic voxel layout: size^3 cells of edge length cell, with cell
// (0,0,0) centered on origin.
type Grid struct {
	size   int
	cell   float32
	origin math3d.Vec3
	cells  []Cell
	log    Logger
}

// NewGrid creates an empty grid. log may be nil.
func NewGrid(size int, cell float32, origin math3d.Vec3, log Logger) *Grid {
	size = max(size, 0)
	return &Grid{
		size:   size,
		cell:   cell,
		origin: origin,
		cells:  make([]Cell, size*size*size),
		log:    orNop(log),
	}
}

// Size returns the number of cells along each axis.
func (g *Grid) Size() int { return g.size }

func (g *Grid) index(x, y, z int) (int, bool) {
	if x < 0 || y < 0 || z < 0 || x >= g.size || y >= g.size || z >= g.size {
		return 0, false
	}
	return (x*g.size+y)*g.size + z, true
}

// Place puts a shape in cell (x, y, z). Out-of-range coordinates are logged
// and ignored.
func (g *Grid) Place(x, y, z int, kind Kind, material string) {
	i, ok := g.index(x, y, z)
	if !ok {
		g.log.Warnf("grid: place (%d, %d, %d) outside %d^3 grid, ignored", x, y, z, g.size)
		return
	}
	g.cells[i] = Cell{Kind: kind, Material: material}
}

// At returns the cell at (x, y, z). Out-of-range coordinates are logged and
// read as empty.
func (g *Grid) At(x, y, z int) Cell {
	i, ok := g.index(x, y, z)
	if !ok {
		g.log.Warnf("grid: read (%d, %d, %d) outside %d^3 grid", x, y, z, g.size)
		return Cell{}
	}
	return g.cells[i]
}

// CellCenter returns the world position of cell (x, y, z).
func (g *Grid) CellCenter(x, y, z int) math3d.Vec3 {
	return g.origin.Add(math3d.V3(float32(x), float32(y), float32(z)).Scale(g.cell))
}

// Primitives turns every occupied cell into a cube filling the cell or a
// sphere inscribed in it.
func (g *Grid) Primitives(materials map[string]*Material) ([]Primitive, error) {
	var prims []Primitive
	for x := range g.size {
		for y := range g.size {
			for z := range g.size {
				c := g.cells[(x*g.size+y)*g.size+z]
				if c.Kind == KindEmpty {
					continue
				}
				m, ok := materials[c.Material]
				if !ok {
					return nil, fmt.Errorf("grid cell (%d, %d, %d): %w %q", x, y, z, ErrUnknownMaterial, c.Material)
				}
				center := g.CellCenter(x, y, z)
				switch c.Kind {
				case KindCube:
					prims = append(prims, NewCube(center, g.cell, m))
				case KindSphere:
					prims = append(prims, NewSphere(center, g.cell/2, m))
				}
			}
		}
	}
	return prims, nil
}
