package trlevel

import (
	"encoding/binary"
	"fmt"
)

type faceKind int

const (
	facePC        faceKind = iota // 10 byte quads, 8 byte triangles
	facePCEffects                 // 12 byte quads, 10 byte triangles
	facePSXBytes                  // u8 vertex indices, 6 byte records
)

// meshLayout describes one on-disk mesh encoding.
type meshLayout struct {
	name string
	// radius16 stores the collision radius as i16 instead of i32.
	radius16 bool
	// headerWord is an extra u16 after the radius (flags or padding).
	headerWord bool
	// signedVertices means a negative vertex count selects lights instead of
	// a separate normal count.
	signedVertices bool
	vertexStride   int
	normalStride   int
	faces          faceKind
	// packedCounts stores quad and triangle counts in one word.
	packedCounts bool
	coloured     bool
}

var (
	meshPC = meshLayout{
		name: "pc", vertexStride: 6, normalStride: 6, faces: facePC, coloured: true,
	}
	meshPC4 = meshLayout{
		name: "pc4", vertexStride: 6, normalStride: 6, faces: facePCEffects,
	}
	meshPSX1 = meshLayout{
		name: "psx1", radius16: true, headerWord: true, signedVertices: true,
		vertexStride: 8, normalStride: 8, faces: facePSXBytes, coloured: true,
	}
	meshPSX2 = meshLayout{
		name: "psx2", signedVertices: true, vertexStride: 6, normalStride: 6,
		faces: facePC, coloured: true,
	}
	meshPSX3 = meshLayout{
		name: "psx3", signedVertices: true, vertexStride: 8, normalStride: 8,
		faces: facePC, packedCounts: true,
	}
	meshSaturn = meshLayout{
		name: "saturn", radius16: true, headerWord: true, vertexStride: 6,
		normalStride: 6, faces: facePC, coloured: true,
	}
	meshDreamcast = meshLayout{
		name: "dreamcast", vertexStride: 8, normalStride: 8, faces: facePCEffects,
	}
)

// meshLayoutFor picks the mesh encoding of a variant.
func meshLayoutFor(pv PlatformAndVersion) meshLayout {
	switch pv.Platform {
	case PlatformPSX:
		switch {
		case pv.isTR2PSXBeta():
			return meshPC
		case pv.Version == Tomb1:
			return meshPSX1
		case pv.Version == Tomb2:
			return meshPSX2
		default:
			return meshPSX3
		}
	case PlatformSaturn:
		return meshSaturn
	case PlatformDreamcast:
		return meshDreamcast
	default:
		if pv.AtLeast(Tomb4) {
			return meshPC4
		}
		return meshPC
	}
}

func (m meshLayout) decode(c *Cursor) (*Mesh, error) {
	var mesh Mesh
	var err error
	if mesh.Centre, err = readValue[Vertex](c, "mesh centre"); err != nil {
		return nil, err
	}
	if m.radius16 {
		r, err := c.I16()
		if err != nil {
			return nil, fmt.Errorf("reading mesh radius: %w", err)
		}
		mesh.CollisionRadius = int32(r)
	} else if mesh.CollisionRadius, err = c.I32(); err != nil {
		return nil, fmt.Errorf("reading mesh radius: %w", err)
	}
	if m.headerWord {
		if mesh.Flags, err = c.U16(); err != nil {
			return nil, fmt.Errorf("reading mesh flags: %w", err)
		}
	}

	numVertices, err := c.I16()
	if err != nil {
		return nil, fmt.Errorf("reading mesh vertex count: %w", err)
	}
	useLights := false
	count := int(numVertices)
	if m.signedVertices && count < 0 {
		useLights = true
		count = -count
	}
	if count < 0 {
		return nil, truncated("negative mesh vertex count %d", count)
	}
	if mesh.Vertices, err = m.vertices(c, count, "mesh vertices"); err != nil {
		return nil, err
	}

	if m.signedVertices {
		if useLights {
			mesh.Lights, err = readArray[int16](c, count, "mesh lights")
		} else {
			mesh.Normals, err = m.normals(c, count)
		}
		if err != nil {
			return nil, err
		}
	} else {
		numNormals, err := c.I16()
		if err != nil {
			return nil, fmt.Errorf("reading mesh normal count: %w", err)
		}
		if numNormals > 0 {
			mesh.Normals, err = m.normals(c, int(numNormals))
		} else {
			mesh.Lights, err = readArray[int16](c, -int(numNormals), "mesh lights")
		}
		if err != nil {
			return nil, err
		}
	}

	if m.packedCounts {
		counts, err := c.U16()
		if err != nil {
			return nil, fmt.Errorf("reading mesh face counts: %w", err)
		}
		if mesh.TexturedRectangles, err = m.quads(c, int(counts&0xFF), "textured rectangles"); err != nil {
			return nil, err
		}
		if mesh.TexturedTriangles, err = m.tris(c, int(counts>>8), "textured triangles"); err != nil {
			return nil, err
		}
		return &mesh, nil
	}

	if mesh.TexturedRectangles, err = m.countedQuads(c, "textured rectangles"); err != nil {
		return nil, err
	}
	if mesh.TexturedTriangles, err = m.countedTris(c, "textured triangles"); err != nil {
		return nil, err
	}
	if m.coloured {
		if mesh.ColouredRectangles, err = m.countedQuads(c, "coloured rectangles"); err != nil {
			return nil, err
		}
		if mesh.ColouredTriangles, err = m.countedTris(c, "coloured triangles"); err != nil {
			return nil, err
		}
	}
	return &mesh, nil
}

func (m meshLayout) vertices(c *Cursor, n int, what string) ([]Vertex, error) {
	if m.vertexStride == 6 {
		return readArray[Vertex](c, n, what)
	}
	if n > c.Remaining()/m.vertexStride {
		return nil, truncated("%d %s at %d", n, what, c.Pos())
	}
	out := make([]Vertex, n)
	for i := range out {
		b, err := c.Bytes(m.vertexStride)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", what, err)
		}
		out[i] = Vertex{
			X: int16(c.order.Uint16(b[0:])),
			Y: int16(c.order.Uint16(b[2:])),
			Z: int16(c.order.Uint16(b[4:])),
		}
	}
	return out, nil
}

func (m meshLayout) normals(c *Cursor, n int) ([]Vertex, error) {
	return meshLayout{vertexStride: m.normalStride}.vertices(c, n, "mesh normals")
}

func (m meshLayout) countedQuads(c *Cursor, what string) ([]Face4, error) {
	n, err := readCount[int16](c, what)
	if err != nil {
		return nil, err
	}
	return m.quads(c, n, what)
}

func (m meshLayout) countedTris(c *Cursor, what string) ([]Face3, error) {
	n, err := readCount[int16](c, what)
	if err != nil {
		return nil, err
	}
	return m.tris(c, n, what)
}

func (m meshLayout) quads(c *Cursor, n int, what string) ([]Face4, error) {
	switch m.faces {
	case facePCEffects:
		raw, err := readArray[rawFace4Effects](c, n, what)
		return convertAll(raw, err, rawFace4Effects.face)
	case facePSXBytes:
		raw, err := readArray[psxFace4](c, n, what)
		return convertAll(raw, err, psxFace4.face)
	default:
		raw, err := readArray[rawFace4](c, n, what)
		return convertAll(raw, err, rawFace4.face)
	}
}

func (m meshLayout) tris(c *Cursor, n int, what string) ([]Face3, error) {
	switch m.faces {
	case facePCEffects:
		raw, err := readArray[rawFace3Effects](c, n, what)
		return convertAll(raw, err, rawFace3Effects.face)
	case facePSXBytes:
		raw, err := readArray[psxFace3](c, n, what)
		return convertAll(raw, err, psxFace3.face)
	default:
		raw, err := readArray[rawFace3](c, n, what)
		return convertAll(raw, err, rawFace3.face)
	}
}

// convertAll maps decoded raw records onto their exported form.
func convertAll[R, F any](raw []R, err error, conv func(R) F) ([]F, error) {
	if err != nil {
		return nil, err
	}
	out := make([]F, len(raw))
	for i, r := range raw {
		out[i] = conv(r)
	}
	return out, nil
}

type psxFace4 struct {
	Vertices [4]uint8
	Texture  uint16
}

type psxFace3 struct {
	Vertices [3]uint8
	_        uint8
	Texture  uint16
}

func (f psxFace4) face() Face4 {
	return Face4{
		Vertices: [4]uint16{uint16(f.Vertices[0]), uint16(f.Vertices[1]), uint16(f.Vertices[2]), uint16(f.Vertices[3])},
		Texture:  f.Texture,
	}
}

func (f psxFace3) face() Face3 {
	return Face3{
		Vertices: [3]uint16{uint16(f.Vertices[0]), uint16(f.Vertices[1]), uint16(f.Vertices[2])},
		Texture:  f.Texture,
	}
}

// meshCache decodes each distinct mesh pointer once per load.
type meshCache struct {
	data    []byte
	order   binary.ByteOrder
	layout  meshLayout
	meshes  map[uint32]*Mesh
	unique  []*Mesh
	decodes int
}

func newMeshCache(data []byte, order binary.ByteOrder, layout meshLayout) *meshCache {
	return &meshCache{
		data:   data,
		order:  order,
		layout: layout,
		meshes: make(map[uint32]*Mesh),
	}
}

// get returns the mesh at byte offset pointer, decoding it on first use.
func (m *meshCache) get(pointer uint32) (*Mesh, error) {
	if mesh, ok := m.meshes[pointer]; ok {
		return mesh, nil
	}
	if int64(pointer) >= int64(len(m.data)) {
		return nil, truncated("mesh pointer %d outside mesh data of %d bytes", pointer, len(m.data))
	}
	c := NewCursor(m.data).WithOrder(m.order)
	if err := c.Seek(int(pointer)); err != nil {
		return nil, err
	}
	m.decodes++
	mesh, err := m.layout.decode(c)
	if err != nil {
		return nil, fmt.Errorf("decoding %s mesh at %d: %w", m.layout.name, pointer, err)
	}
	mesh.Pointer = pointer
	m.meshes[pointer] = mesh
	m.unique = append(m.unique, mesh)
	return mesh, nil
}
