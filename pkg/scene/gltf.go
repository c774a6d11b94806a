package scene

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/qmuntal/gltf"

	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/render"
)

// identityMatrix is the glTF column-major identity.
var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// ImportGLTF builds a scene from a glTF or GLB file. Every node with a mesh
// becomes a cube sized to the mesh bounds, or a sphere when the node or mesh
// name contains "sphere". Node rotations are ignored because the tracer only
// has axis-aligned primitives.
func ImportGLTF(path string, log Logger) (*Scene, error) {
	log = orNop(log)

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	imp := &gltfImporter{
		doc:       doc,
		dir:       filepath.Dir(path),
		log:       log,
		materials: make(map[string]*Material),
	}
	for i, m := range doc.Materials {
		imp.byIndex = append(imp.byIndex, imp.material(i, m))
	}

	for _, idx := range sceneRoots(doc) {
		imp.walk(idx, math3d.Zero3(), math3d.V3(1, 1, 1), 0)
	}
	if len(imp.prims) == 0 {
		return nil, fmt.Errorf("%s: no mesh nodes to import", path)
	}

	sc := &Scene{
		Name:      strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Static:    imp.prims,
		Materials: imp.materials,
	}
	sc.Camera, sc.Light = frameBounds(imp.lo, imp.hi)

	log.Debugf("gltf %s: %d primitives, %d materials", path, len(imp.prims), len(imp.materials))
	return sc, nil
}

type gltfImporter struct {
	doc       *gltf.Document
	dir       string
	log       Logger
	materials map[string]*Material
	byIndex   []*Material
	fallback  *Material
	prims     []Primitive
	lo, hi    math3d.Vec3
}

// sceneRoots returns the root nodes of the default scene, or every node that
// is nobody's child when the file declares no scene.
func sceneRoots(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		s := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			s = *doc.Scene
		}
		return doc.Scenes[s].Nodes
	}

	child := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func (imp *gltfImporter) walk(idx int, parentT, parentS math3d.Vec3, depth int) {
	if idx < 0 || idx >= len(imp.doc.Nodes) || depth > 64 {
		imp.log.Warnf("gltf: node %d skipped (out of range or hierarchy too deep)", idx)
		return
	}
	node := imp.doc.Nodes[idx]

	localT, localS := nodeTRS(node)
	worldT := parentT.Add(parentS.Mul(localT))
	worldS := parentS.Mul(localS)

	if node.Rotation != [4]float64{} && node.Rotation != [4]float64{0, 0, 0, 1} {
		imp.log.Debugf("gltf: node %q rotation ignored", node.Name)
	}

	if node.Mesh != nil {
		imp.addMesh(node, worldT, worldS)
	}
	for _, c := range node.Children {
		imp.walk(c, worldT, worldS, depth+1)
	}
}

// nodeTRS returns the node translation and scale, from the matrix when one is set.
func nodeTRS(n *gltf.Node) (t, s math3d.Vec3) {
	if n.Matrix != [16]float64{} && n.Matrix != identityMatrix {
		m := n.Matrix
		t = math3d.V3(float32(m[12]), float32(m[13]), float32(m[14]))
		s = math3d.V3(
			math3d.V3(float32(m[0]), float32(m[1]), float32(m[2])).Len(),
			math3d.V3(float32(m[4]), float32(m[5]), float32(m[6])).Len(),
			math3d.V3(float32(m[8]), float32(m[9]), float32(m[10])).Len(),
		)
		return t, s
	}

	t = math3d.V3(float32(n.Translation[0]), float32(n.Translation[1]), float32(n.Translation[2]))
	s = math3d.V3(1, 1, 1)
	if n.Scale != [3]float64{} {
		s = math3d.V3(float32(n.Scale[0]), float32(n.Scale[1]), float32(n.Scale[2]))
	}
	return t, s
}

func (imp *gltfImporter) addMesh(node *gltf.Node, t, s math3d.Vec3) {
	if *node.Mesh < 0 || *node.Mesh >= len(imp.doc.Meshes) {
		imp.log.Warnf("gltf: node %q references missing mesh %d", node.Name, *node.Mesh)
		return
	}
	mesh := imp.doc.Meshes[*node.Mesh]

	lo, hi, ok := imp.meshBounds(mesh)
	if !ok {
		imp.log.Warnf("gltf: mesh %q has no POSITION bounds, skipped", mesh.Name)
		return
	}

	center := t.Add(s.Mul(lo.Add(hi).Scale(0.5)))
	extent := s.Mul(hi.Sub(lo)).Abs()
	m := imp.meshMaterial(mesh)

	name := strings.ToLower(node.Name + " " + mesh.Name)
	var p Primitive
	if strings.Contains(name, "sphere") {
		p = NewSphere(center, extent.MaxComponent()/2, m)
	} else {
		p = NewCube(center, extent.MaxComponent(), m)
	}

	r := p.BoundingRadius()
	pl := center.Sub(math3d.V3(r, r, r))
	ph := center.Add(math3d.V3(r, r, r))
	if len(imp.prims) == 0 {
		imp.lo, imp.hi = pl, ph
	} else {
		imp.lo, imp.hi = imp.lo.Min(pl), imp.hi.Max(ph)
	}
	imp.prims = append(imp.prims, p)
}

// meshBounds unions the POSITION accessor min/max of every primitive.
func (imp *gltfImporter) meshBounds(mesh *gltf.Mesh) (lo, hi math3d.Vec3, ok bool) {
	for _, prim := range mesh.Primitives {
		idx, has := prim.Attributes[gltf.POSITION]
		if !has || idx < 0 || idx >= len(imp.doc.Accessors) {
			continue
		}
		acc := imp.doc.Accessors[idx]
		if len(acc.Min) != 3 || len(acc.Max) != 3 {
			continue
		}
		pl := math3d.V3(float32(acc.Min[0]), float32(acc.Min[1]), float32(acc.Min[2]))
		ph := math3d.V3(float32(acc.Max[0]), float32(acc.Max[1]), float32(acc.Max[2]))
		if !ok {
			lo, hi, ok = pl, ph, true
			continue
		}
		lo, hi = lo.Min(pl), hi.Max(ph)
	}
	return lo, hi, ok
}

func (imp *gltfImporter) meshMaterial(mesh *gltf.Mesh) *Material {
	for _, prim := range mesh.Primitives {
		if prim.Material != nil && *prim.Material >= 0 && *prim.Material < len(imp.byIndex) {
			return imp.byIndex[*prim.Material]
		}
	}
	if imp.fallback == nil {
		imp.fallback, _ = NewMaterial("default", render.RGB(200, 200, 200), 10, [4]float32{0.9, 0.1, 0, 0}, 1)
		imp.materials[imp.fallback.Name] = imp.fallback
	}
	return imp.fallback
}

// material converts PBR metallic-roughness parameters: base color to diffuse,
// metallic to the reflection weight, roughness to the specular exponent, and
// blended alpha to the refraction weight. A material without a
// metallic-roughness block is a plain white non-metal.
func (imp *gltfImporter) material(i int, gm *gltf.Material) *Material {
	name := gm.Name
	if name == "" || imp.materials[name] != nil {
		name = fmt.Sprintf("material%d", i)
	}

	base := [4]float64{1, 1, 1, 1}
	metallic, roughness := 0.0, 1.0
	pbr := gm.PBRMetallicRoughness
	if pbr != nil {
		if pbr.BaseColorFactor != nil {
			base = *pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			metallic = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			roughness = *pbr.RoughnessFactor
		}
	}

	diffuse := render.RGB(unitToByte(base[0]), unitToByte(base[1]), unitToByte(base[2]))
	kr := float32(metallic)
	ks := 0.5 * (1 - float32(roughness))
	kt := float32(0)
	ior := float32(1)
	if gm.AlphaMode == gltf.AlphaBlend {
		kt = 1 - float32(base[3])
		ior = 1.5
	}
	kd := max(0, 1-kr-kt)
	specular := 1 + (1-float32(roughness))*127

	m, clamped := NewMaterial(name, diffuse, specular, [4]float32{kd, ks, kr, kt}, ior)
	if clamped {
		imp.log.Warnf("gltf: material %q factors outside [0,1] clamped", name)
	}

	if pbr != nil && pbr.BaseColorTexture != nil {
		if tex, err := imp.texture(pbr.BaseColorTexture.Index); err != nil {
			imp.log.Warnf("gltf: material %q texture: %v", name, err)
		} else {
			m.WithTexture(tex)
		}
	}

	imp.materials[name] = m
	return m
}

func unitToByte(v float64) uint8 {
	return uint8(math32.Round(float32(max(0, min(1, v))) * 255))
}

// texture decodes the image behind a glTF texture index, from a buffer view
// (GLB) or a file next to the document.
func (imp *gltfImporter) texture(idx int) (*render.Texture, error) {
	if idx < 0 || idx >= len(imp.doc.Textures) || imp.doc.Textures[idx].Source == nil {
		return nil, fmt.Errorf("texture %d has no source", idx)
	}
	src := *imp.doc.Textures[idx].Source
	if src < 0 || src >= len(imp.doc.Images) {
		return nil, fmt.Errorf("texture %d references missing image %d", idx, src)
	}
	img := imp.doc.Images[src]

	var data []byte
	switch {
	case img.BufferView != nil:
		if *img.BufferView < 0 || *img.BufferView >= len(imp.doc.BufferViews) {
			return nil, fmt.Errorf("image %d references missing buffer view %d", src, *img.BufferView)
		}
		bv := imp.doc.BufferViews[*img.BufferView]
		if bv.Buffer < 0 || bv.Buffer >= len(imp.doc.Buffers) {
			return nil, fmt.Errorf("image %d references missing buffer %d", src, bv.Buffer)
		}
		buf := imp.doc.Buffers[bv.Buffer]
		if buf.Data == nil || bv.ByteOffset < 0 || bv.ByteOffset+bv.ByteLength > len(buf.Data) {
			return nil, fmt.Errorf("image %d: buffer data missing", src)
		}
		data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	case img.URI != "" && !strings.HasPrefix(img.URI, "data:"):
		var err error
		data, err = os.ReadFile(filepath.Join(imp.dir, img.URI))
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", src, err)
		}
	default:
		return nil, fmt.Errorf("image %d: embedded data URIs are not supported", src)
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %d: %w", src, err)
	}
	return render.TextureFromImage(decoded), nil
}

// frameBounds places a camera and a light so the whole box is in view.
func frameBounds(lo, hi math3d.Vec3) (render.Camera, Light) {
	center := lo.Add(hi).Scale(0.5)
	r := max(hi.Sub(lo).Len()/2, 0.5)

	cam := *render.NewCamera(center.Add(math3d.V3(0, r*0.6, r*2.2)), center)
	cam.Far = r * 20

	light := Light{
		Position:  center.Add(math3d.V3(r*2, r*4, r*3)),
		Color:     render.ColorWhite,
		Intensity: 1.5,
	}
	return cam, light
}
