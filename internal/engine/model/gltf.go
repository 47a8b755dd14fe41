package model

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/garment-designer/internal/engine/texture"
	"github.com/Faultbox/garment-designer/pkg/math"
)

// LoadGLTF reads a .gltf or .glb garment and flattens its default scene
// into surfaces in model space. Every primitive must carry TEXCOORD_0.
func LoadGLTF(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return fromDocument(doc, filepath.Dir(path))
}

// fromDocument flattens doc. External image URIs resolve against dir.
func fromDocument(doc *gltf.Document, dir string) (*Mesh, error) {
	m := &Mesh{}
	r := &docReader{doc: doc, dir: dir, images: make(map[int]image.Image)}

	var roots []int
	switch {
	case doc.Scene != nil && *doc.Scene < len(doc.Scenes):
		roots = doc.Scenes[*doc.Scene].Nodes
	case len(doc.Scenes) > 0:
		roots = doc.Scenes[0].Nodes
	default:
		for i := range doc.Nodes {
			roots = append(roots, i)
		}
	}

	visited := make(map[int]bool)
	var walk func(idx int, parent math.Mat4) error
	walk = func(idx int, parent math.Mat4) error {
		if idx < 0 || idx >= len(doc.Nodes) || visited[idx] {
			return nil
		}
		visited[idx] = true
		node := doc.Nodes[idx]
		world := parent.Mul(nodeMatrix(node))
		if node.Mesh != nil {
			if err := r.appendMesh(m, *node.Mesh, world); err != nil {
				return err
			}
		}
		for _, child := range node.Children {
			if err := walk(child, world); err != nil {
				return err
			}
		}
		return nil
	}
	for _, root := range roots {
		if err := walk(root, math.Identity()); err != nil {
			return nil, err
		}
	}

	if len(m.Surfaces) == 0 {
		return nil, ErrNoSurfaces
	}
	m.ComputeBounds()
	return m, nil
}

func nodeMatrix(n *gltf.Node) math.Mat4 {
	if mat := math.Mat4(n.MatrixOrDefault()); mat != math.Identity() {
		return mat
	}
	t := n.TranslationOrDefault()
	s := n.ScaleOrDefault()
	return math.TRS(
		math.Vec3{X: t[0], Y: t[1], Z: t[2]},
		math.QuatFromArray(n.RotationOrDefault()),
		math.Vec3{X: s[0], Y: s[1], Z: s[2]},
	)
}

type docReader struct {
	doc    *gltf.Document
	dir    string
	images map[int]image.Image
}

func (r *docReader) appendMesh(m *Mesh, meshIdx int, world math.Mat4) error {
	doc := r.doc
	if meshIdx < 0 || meshIdx >= len(doc.Meshes) {
		return fmt.Errorf("node references missing mesh %d", meshIdx)
	}
	gm := doc.Meshes[meshIdx]
	for pi, prim := range gm.Primitives {
		id := fmt.Sprintf("%d/%d", meshIdx, pi)
		s, err := r.readPrimitive(prim, world)
		if err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", gm.Name, pi, err)
		}
		s.ID = id
		s.Name = gm.Name
		m.Surfaces = append(m.Surfaces, s)
	}
	return nil
}

func (r *docReader) readPrimitive(prim *gltf.Primitive, world math.Mat4) (Surface, error) {
	var s Surface
	doc := r.doc

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return s, fmt.Errorf("missing POSITION")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return s, fmt.Errorf("reading positions: %w", err)
	}

	uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]
	if !ok {
		return s, ErrNoUVs
	}
	uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[uvIdx], nil)
	if err != nil {
		return s, fmt.Errorf("reading texcoords: %w", err)
	}

	var normals [][3]float32
	if nIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err = modeler.ReadNormal(doc, doc.Accessors[nIdx], nil)
		if err != nil {
			return s, fmt.Errorf("reading normals: %w", err)
		}
	}

	s.Vertices = make([]Vertex, len(positions))
	for i, p := range positions {
		v := Vertex{Position: world.TransformPoint(math.FromArray(p)).Array()}
		if i < len(uvs) {
			// Raw UVs; the composite is sampled with V=0 at the canvas bottom.
			v.TexCoord = uvs[i]
		}
		if i < len(normals) {
			v.Normal = world.TransformDirection(math.FromArray(normals[i])).Normalize().Array()
		}
		s.Vertices[i] = v
	}

	if prim.Indices != nil {
		s.Indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return s, fmt.Errorf("reading indices: %w", err)
		}
	} else {
		s.Indices = make([]uint32, len(positions))
		for i := range s.Indices {
			s.Indices[i] = uint32(i)
		}
	}

	if normals == nil {
		GenerateNormals(&s)
	}

	s.Material = Material{BaseColor: [4]float64{1, 1, 1, 1}}
	if prim.Material != nil && *prim.Material < len(doc.Materials) {
		mat := doc.Materials[*prim.Material]
		s.Material.Name = mat.Name
		if pbr := mat.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				s.Material.BaseColor = *pbr.BaseColorFactor
			}
			if pbr.BaseColorTexture != nil {
				s.Material.Map, err = r.texture(pbr.BaseColorTexture.Index)
				if err != nil {
					return s, fmt.Errorf("reading base color texture: %w", err)
				}
			}
		}
	}
	return s, nil
}

// texture decodes the source image of a texture once per document.
// Textures without a source yield a nil map.
func (r *docReader) texture(texIdx int) (image.Image, error) {
	doc := r.doc
	if texIdx < 0 || texIdx >= len(doc.Textures) {
		return nil, fmt.Errorf("missing texture %d", texIdx)
	}
	src := doc.Textures[texIdx].Source
	if src == nil {
		return nil, nil
	}
	if img, ok := r.images[*src]; ok {
		return img, nil
	}
	if *src < 0 || *src >= len(doc.Images) {
		return nil, fmt.Errorf("texture %d references missing image %d", texIdx, *src)
	}

	gi := doc.Images[*src]
	var (
		img image.Image
		err error
	)
	switch {
	case gi.BufferView != nil:
		if *gi.BufferView < 0 || *gi.BufferView >= len(doc.BufferViews) {
			return nil, fmt.Errorf("image %d references missing buffer view %d", *src, *gi.BufferView)
		}
		var data []byte
		data, err = modeler.ReadBufferView(doc, doc.BufferViews[*gi.BufferView])
		if err == nil {
			img, err = texture.DecodeBytes(data)
		}
	case gi.IsEmbeddedResource():
		var data []byte
		data, err = gi.MarshalData()
		if err == nil {
			img, err = texture.DecodeBytes(data)
		}
	case gi.URI != "":
		path := gi.URI
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.dir, filepath.FromSlash(path))
		}
		img, err = texture.DecodeFile(path)
	default:
		return nil, fmt.Errorf("image %d has no data", *src)
	}
	if err != nil {
		return nil, fmt.Errorf("image %d: %w", *src, err)
	}
	r.images[*src] = img
	return img, nil
}
