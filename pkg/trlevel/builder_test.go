package trlevel

import (
	"bytes"
	"encoding/binary"

	"github.com/klauspost/compress/zlib"
)

// put writes little-endian values to buf.
func put(buf *bytes.Buffer, values ...any) {
	for _, v := range values {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			panic(err)
		}
	}
}

// testMesh builds a Tomb1 PC mesh with n vertices, lights instead of
// normals, and the given faces.
func testMesh(n int, textured []rawFace4, coloured []rawFace3) []byte {
	buf := new(bytes.Buffer)
	put(buf, Vertex{X: 1, Y: 2, Z: 3}, int32(512), int16(n))
	for i := 0; i < n; i++ {
		put(buf, Vertex{X: int16(i), Y: int16(-i), Z: 0})
	}
	put(buf, int16(-n))
	for i := 0; i < n; i++ {
		put(buf, int16(0x1000))
	}
	put(buf, int16(len(textured)), textured)
	put(buf, int16(0))
	put(buf, int16(0))
	put(buf, int16(len(coloured)), coloured)
	return buf.Bytes()
}

type testRoom struct {
	info      RoomInfo
	vertices  []tr1RoomVertex
	rects     []rawFace4
	tris      []rawFace3
	sprites   []RoomSprite
	portals   []Portal
	numZ      uint16
	numX      uint16
	sectors   []rawSector
	alternate int16
}

func (r testRoom) write(buf *bytes.Buffer) {
	r.writeAs(buf, pcTomb1)
}

// writeAs writes the room in the Tomb1-4 layout of pv.
func (r testRoom) writeAs(buf *bytes.Buffer, pv PlatformAndVersion) {
	data := new(bytes.Buffer)
	put(data, uint16(len(r.vertices)))
	for _, v := range r.vertices {
		switch {
		case pv.Platform == PlatformPSX:
			put(data, psxRoomVertex{Position: v.Position, Colour: 0x7FFF})
		case pv.Version == Tomb1:
			put(data, v)
		case pv.Version == Tomb2:
			put(data, tr2RoomVertex{Position: v.Position, Lighting: v.Lighting, Lighting2: v.Lighting})
		default:
			put(data, tr3RoomVertex{Position: v.Position, Lighting: v.Lighting, Colour: 0x7FFF})
		}
	}
	put(data, uint16(len(r.rects)), r.rects)
	put(data, uint16(len(r.tris)), r.tris)
	put(data, uint16(len(r.sprites)), r.sprites)

	put(buf, r.info, uint32(data.Len()/2))
	buf.Write(data.Bytes())
	put(buf, uint16(len(r.portals)), r.portals)
	put(buf, r.numZ, r.numX, r.sectors)
	switch pv.Version {
	case Tomb1:
		put(buf, int16(0x1000))
		put(buf, uint16(1), tr1Light{X: 1024, Y: -512, Z: 2048, Intensity: 0x1FFF, Fade: 4096})
	case Tomb2:
		put(buf, int16(0x1000), int16(0x1000), int16(0))
		put(buf, uint16(1), tr2Light{X: 1024, Y: -512, Z: 2048, Intensity1: 0x1FFF, Intensity2: 0x1FFF, Fade1: 4096, Fade2: 4096})
	case Tomb3:
		put(buf, int16(0x1000), int16(0x1000))
		put(buf, uint16(1), tr3Light{X: 1024, Y: -512, Z: 2048, Colour: [3]uint8{0xFF, 0xFF, 0xFF}, Intensity: 0x1FFF, Fade: 4096})
	default:
		put(buf, uint32(0xFF808080))
		put(buf, uint16(1), tr4Light{X: 1024, Y: -512, Z: 2048, Colour: [3]uint8{0xFF, 0xFF, 0xFF}, Intensity: 0x1F, Out: 4096})
	}
	put(buf, uint16(0))
	put(buf, r.alternate, uint16(0))
	if pv.AtLeast(Tomb3) {
		buf.Write([]byte{0, 0, 0})
	}
}

// tr1Builder assembles a Tomb1 PC level. Sections not listed are empty.
type tr1Builder struct {
	textiles       int
	rooms          []testRoom
	floorData      []uint16
	meshes         [][]byte
	meshPointers   []uint32
	animations     []tr1Animation
	stateChanges   []StateChange
	dispatches     []AnimDispatch
	meshTrees      []int32
	frames         []uint16
	models         []Model
	staticMeshes   []StaticMesh
	objectTextures int
	spriteTextures int
	sequences      []SpriteSequence
	boxes          []tr1Box
	entities       []tr1Entity
	soundMap       []int16
	soundDetails   []tr1SoundDetail
	sampleData     []byte
	sampleIndices  []uint32
}

// meshOffset returns the byte offset of mesh i in the mesh data block.
func (b *tr1Builder) meshOffset(i int) uint32 {
	off := 0
	for _, m := range b.meshes[:i] {
		off += len(m)
	}
	return uint32(off)
}

func (b *tr1Builder) bytes() []byte {
	buf := new(bytes.Buffer)
	put(buf, rawVersionTR1)
	put(buf, uint32(b.textiles))
	for i := 0; i < b.textiles; i++ {
		page := make([]byte, textileSize8)
		for p := range page {
			page[p] = byte(i + 1)
		}
		buf.Write(page)
	}
	put(buf, uint32(0))

	b.writeRooms(buf, pcTomb1)
	b.writeMeshesAndAnimations(buf, pcTomb1)
	b.writeObjectTextures(buf, pcTomb1)
	b.writeSpriteTextures(buf, pcTomb1)
	put(buf, uint32(len(b.sequences)), b.sequences)
	put(buf, uint32(1), Camera{X: 1, Y: 2, Z: 3})
	put(buf, uint32(0))
	b.writeBoxes(buf, pcTomb1)
	put(buf, uint32(0))
	b.writeEntities(buf, pcTomb1)

	buf.Write(make([]byte, lightmapSize))
	buf.Write(testPalette8())
	put(buf, uint16(1))
	buf.Write(make([]byte, cinematicFrameLen))
	put(buf, uint16(3), []byte{1, 2, 3})

	b.writeSounds(buf, pcTomb1)
	put(buf, uint32(len(b.sampleData)))
	buf.Write(b.sampleData)
	put(buf, uint32(len(b.sampleIndices)), b.sampleIndices)
	return buf.Bytes()
}

var pcTomb1 = PlatformAndVersion{Platform: PlatformPC, Version: Tomb1}

func testPalette8() []byte {
	palette := make([]byte, paletteSize8)
	for i := range palette {
		palette[i] = byte(i % 64)
	}
	return palette
}

func (b *tr1Builder) writeRooms(buf *bytes.Buffer, pv PlatformAndVersion) {
	put(buf, uint16(len(b.rooms)))
	for _, r := range b.rooms {
		r.writeAs(buf, pv)
	}
}

// writeMeshesAndAnimations writes floor data through static meshes. Meshes
// are written as given, so they must already be in the layout of pv.
func (b *tr1Builder) writeMeshesAndAnimations(buf *bytes.Buffer, pv PlatformAndVersion) {
	put(buf, uint32(len(b.floorData)), b.floorData)

	var mesh []byte
	for _, m := range b.meshes {
		mesh = append(mesh, m...)
	}
	if len(mesh)%2 != 0 {
		mesh = append(mesh, 0)
	}
	put(buf, uint32(len(mesh)/2))
	buf.Write(mesh)
	put(buf, uint32(len(b.meshPointers)), b.meshPointers)

	put(buf, uint32(len(b.animations)))
	for _, a := range b.animations {
		if !pv.AtLeast(Tomb4) {
			put(buf, a)
			continue
		}
		put(buf, tr4Animation{
			FrameOffset: a.FrameOffset, FrameRate: a.FrameRate, FrameSize: a.FrameSize,
			StateID: a.StateID, Speed: a.Speed, Accel: a.Accel,
			FrameStart: a.FrameStart, FrameEnd: a.FrameEnd,
			NextAnimation: a.NextAnimation, NextFrame: a.NextFrame,
			NumStateChanges: a.NumStateChanges, StateChangeOffset: a.StateChangeOffset,
			NumAnimCommands: a.NumAnimCommands, AnimCommand: a.AnimCommand,
		})
	}
	put(buf, uint32(len(b.stateChanges)), b.stateChanges)
	put(buf, uint32(len(b.dispatches)), b.dispatches)
	put(buf, uint32(0))
	put(buf, uint32(len(b.meshTrees)), b.meshTrees)
	put(buf, uint32(len(b.frames)), b.frames)
	put(buf, uint32(len(b.models)))
	for _, m := range b.models {
		if pv.Version == Tomb5 {
			put(buf, tr5Model{
				ID: m.ID, NumMeshes: m.NumMeshes, StartingMesh: m.StartingMesh,
				MeshTree: m.MeshTree, FrameOffset: m.FrameOffset, Animation: m.Animation,
			})
		} else {
			put(buf, m)
		}
	}
	put(buf, uint32(len(b.staticMeshes)), b.staticMeshes)
}

func (b *tr1Builder) writeObjectTextures(buf *bytes.Buffer, pv PlatformAndVersion) {
	put(buf, uint32(b.objectTextures))
	for i := 0; i < b.objectTextures; i++ {
		tile := uint16(i % max(b.textiles, 1))
		switch {
		case pv.Platform == PlatformPSX:
			put(buf, psxObjectTexture{Tile: tile, X1: 31, X2: 31, Y2: 31, Y3: 31, Attribute: 1})
		case pv.Version == Tomb5:
			put(buf, tr5ObjectTexture{Attribute: 1, TileAndFlag: tile, Width: 63, Height: 63})
		case pv.Version == Tomb4:
			put(buf, tr4ObjectTexture{Attribute: 1, TileAndFlag: tile, Width: 63, Height: 63})
		default:
			put(buf, tr1ObjectTexture{Attribute: 1, TileAndFlag: tile})
		}
	}
}

func (b *tr1Builder) writeSpriteTextures(buf *bytes.Buffer, pv PlatformAndVersion) {
	put(buf, uint32(b.spriteTextures))
	for i := 0; i < b.spriteTextures; i++ {
		if pv.Platform == PlatformPSX {
			put(buf, psxSpriteTexture{Right: 16, Bottom: 16, U1: 15, V1: 15})
		} else {
			put(buf, pcSpriteTexture{Width: 0x100, Height: 0x100})
		}
	}
}

// writeBoxes writes boxes, overlaps and zones.
func (b *tr1Builder) writeBoxes(buf *bytes.Buffer, pv PlatformAndVersion) {
	zones := 6
	if pv.Version == Tomb1 {
		put(buf, uint32(len(b.boxes)), b.boxes)
	} else {
		zones = 10
		put(buf, uint32(len(b.boxes)))
		for _, box := range b.boxes {
			put(buf, tr2Box{
				Zmin: uint8(box.Zmin / 1024), Zmax: uint8(box.Zmax / 1024),
				Xmin: uint8(box.Xmin / 1024), Xmax: uint8(box.Xmax / 1024),
				TrueFloor: box.TrueFloor, OverlapIndex: box.OverlapIndex,
			})
		}
	}
	put(buf, uint32(2), []uint16{0x8001, 0})
	put(buf, make([]uint16, len(b.boxes)*zones))
}

func (b *tr1Builder) writeEntities(buf *bytes.Buffer, pv PlatformAndVersion) {
	put(buf, uint32(len(b.entities)))
	for _, e := range b.entities {
		switch {
		case pv.AtLeast(Tomb4):
			put(buf, tr4Entity{TypeID: e.TypeID, Room: e.Room, X: e.X, Y: e.Y, Z: e.Z, Angle: e.Angle, Intensity: e.Intensity, OCB: 1, Flags: e.Flags})
		case pv.Version == Tomb1:
			put(buf, e)
		default:
			put(buf, tr2Entity{TypeID: e.TypeID, Room: e.Room, X: e.X, Y: e.Y, Z: e.Z, Angle: e.Angle, Intensity1: e.Intensity, Intensity2: e.Intensity, Flags: e.Flags})
		}
	}
}

// writeSounds writes the sound map and sound details.
func (b *tr1Builder) writeSounds(buf *bytes.Buffer, pv PlatformAndVersion) {
	soundMap := make([]int16, soundMapSize(pv))
	for i := range soundMap {
		soundMap[i] = -1
		if i < len(b.soundMap) {
			soundMap[i] = b.soundMap[i]
		}
	}
	put(buf, soundMap)
	put(buf, uint32(len(b.soundDetails)))
	for _, s := range b.soundDetails {
		if pv.AtLeast(Tomb3) {
			put(buf, tr3SoundDetail{Sample: s.Sample, Volume: 0xFF, Chance: uint8(s.Chance), Characteristics: s.Characteristics})
		} else {
			put(buf, s)
		}
	}
}

// testMeshFor builds a mesh with n vertices and normals in layout m. Every
// face is textured so the same content fits layouts without coloured faces.
func testMeshFor(m meshLayout, n int, quads []rawFace4, tris []rawFace3) []byte {
	buf := new(bytes.Buffer)
	put(buf, Vertex{X: 1, Y: 2, Z: 3})
	if m.radius16 {
		put(buf, int16(512))
	} else {
		put(buf, int32(512))
	}
	if m.headerWord {
		put(buf, uint16(0))
	}
	put(buf, int16(n))
	vector := func(v Vertex, stride int) {
		put(buf, v)
		if stride == 8 {
			put(buf, int16(0))
		}
	}
	for i := 0; i < n; i++ {
		vector(Vertex{X: int16(i), Y: int16(-i)}, m.vertexStride)
	}
	if !m.signedVertices {
		put(buf, int16(n))
	}
	for i := 0; i < n; i++ {
		vector(Vertex{Y: -4096}, m.normalStride)
	}

	if m.packedCounts {
		put(buf, uint16(len(tris)<<8|len(quads)), quads, tris)
		return buf.Bytes()
	}
	put(buf, int16(len(quads)))
	for _, q := range quads {
		switch m.faces {
		case facePCEffects:
			put(buf, rawFace4Effects{Vertices: q.Vertices, Texture: q.Texture})
		case facePSXBytes:
			put(buf, psxFace4{Vertices: [4]uint8{uint8(q.Vertices[0]), uint8(q.Vertices[1]), uint8(q.Vertices[2]), uint8(q.Vertices[3])}, Texture: q.Texture})
		default:
			put(buf, q)
		}
	}
	put(buf, int16(len(tris)))
	for _, t := range tris {
		switch m.faces {
		case facePCEffects:
			put(buf, rawFace3Effects{Vertices: t.Vertices, Texture: t.Texture})
		case facePSXBytes:
			put(buf, psxFace3{Vertices: [3]uint8{uint8(t.Vertices[0]), uint8(t.Vertices[1]), uint8(t.Vertices[2])}, Texture: t.Texture})
		default:
			put(buf, t)
		}
	}
	if m.coloured {
		put(buf, int16(0), int16(0))
	}
	return buf.Bytes()
}

// newVariantLevel is newTestLevel with its meshes encoded for pv.
func newVariantLevel(pv PlatformAndVersion) *tr1Builder {
	b := newTestLevel()
	layout := meshLayoutFor(pv)
	b.meshes = [][]byte{
		testMeshFor(layout, 4, []rawFace4{{Vertices: [4]uint16{0, 1, 2, 3}, Texture: 2}}, []rawFace3{{Vertices: [3]uint16{0, 1, 2}, Texture: 1}}),
		testMeshFor(layout, 3, nil, []rawFace3{{Vertices: [3]uint16{0, 1, 2}, Texture: 0}}),
	}
	b.meshPointers = []uint32{b.meshOffset(0), b.meshOffset(1), b.meshOffset(0)}
	return b
}

// tr2Builder assembles a Tomb2 or Tomb3 PC level. Samples live in MAIN.SFX,
// so sampleIndices are chunk numbers there.
type tr2Builder struct {
	*tr1Builder
	version Version
}

func newTR2Level(version Version) tr2Builder {
	b := tr2Builder{tr1Builder: newVariantLevel(PlatformAndVersion{Platform: PlatformPC, Version: version}), version: version}
	b.sampleIndices = []uint32{1, 0}
	return b
}

func (b tr2Builder) bytes() []byte {
	pv := PlatformAndVersion{Platform: PlatformPC, Version: b.version}
	buf := new(bytes.Buffer)
	if b.version == Tomb2 {
		put(buf, rawVersionTR2)
	} else {
		put(buf, rawVersionTR3b)
	}
	buf.Write(testPalette8())
	buf.Write(make([]byte, paletteSize16))
	put(buf, uint32(b.textiles))
	buf.Write(make([]byte, b.textiles*textileSize8))
	buf.Write(bytes.Repeat([]byte{0xFF, 0x7F}, b.textiles*textileSize16/2))
	put(buf, uint32(0))

	b.writeRooms(buf, pv)
	b.writeMeshesAndAnimations(buf, pv)
	if b.version == Tomb2 {
		b.writeObjectTextures(buf, pv)
	}
	b.writeSpriteTextures(buf, pv)
	put(buf, uint32(len(b.sequences)), b.sequences)
	put(buf, uint32(1), Camera{X: 1, Y: 2, Z: 3})
	put(buf, uint32(0))
	b.writeBoxes(buf, pv)
	put(buf, uint32(0))
	if b.version == Tomb3 {
		b.writeObjectTextures(buf, pv)
	}
	b.writeEntities(buf, pv)
	buf.Write(make([]byte, lightmapSize))
	put(buf, uint16(0))
	put(buf, uint16(0))
	b.writeSounds(buf, pv)
	put(buf, uint32(len(b.sampleIndices)), b.sampleIndices)
	return buf.Bytes()
}

// tr4Builder assembles a Tomb4 or Tomb5 level for PC (zlib chunks) or
// Dreamcast (raw chunks).
type tr4Builder struct {
	*tr1Builder
	pv        PlatformAndVersion
	aiObjects []AIObject
	flyby     []FlybyCamera
	samples   [][]byte
}

func newTR4Level(pv PlatformAndVersion) tr4Builder {
	pv.RawVersion = rawVersionTR4
	b := tr4Builder{
		tr1Builder: newVariantLevel(pv),
		pv:         pv,
		aiObjects:  []AIObject{{TypeID: 400, Room: 1, X: 512, Z: 512, OCB: 3}},
		flyby:      []FlybyCamera{{X: 1, Y: 2, Z: 3, Sequence: 0, Index: 0, Room: 1}},
		samples:    [][]byte{riffChunk("zero"), riffChunk("one")},
	}
	b.textiles = 1
	return b
}

// chunk frames one section in the platform's form.
func (b tr4Builder) chunk(buf *bytes.Buffer, data []byte) {
	if b.pv.Platform == PlatformDreamcast {
		put(buf, uint32(len(data)))
		buf.Write(data)
		return
	}
	var z bytes.Buffer
	w := zlib.NewWriter(&z)
	if _, err := w.Write(data); err != nil {
		panic(err)
	}
	if err := w.Close(); err != nil {
		panic(err)
	}
	put(buf, uint32(len(data)), uint32(z.Len()))
	buf.Write(z.Bytes())
}

func (b tr4Builder) bytes() []byte {
	tr5 := b.pv.Version == Tomb5
	buf := new(bytes.Buffer)
	put(buf, rawVersionTR4)
	put(buf, uint16(b.textiles), uint16(0), uint16(0))
	b.chunk(buf, make([]byte, b.textiles*textileSize32))
	b.chunk(buf, make([]byte, b.textiles*textileSize16))
	misc := 2
	if tr5 {
		misc = 3
	}
	b.chunk(buf, make([]byte, misc*textileSize32))

	level := b.levelData()
	switch {
	case tr5 && b.pv.Platform == PlatformPC:
		put(buf, uint16(2), uint16(1))
		buf.Write(make([]byte, 28))
		put(buf, uint32(len(level)), uint32(len(level)))
		buf.Write(level)
	case tr5:
		put(buf, uint16(2), uint16(1))
		buf.Write(make([]byte, 28))
		b.chunk(buf, level)
	default:
		b.chunk(buf, level)
	}

	put(buf, uint32(len(b.samples)))
	for _, s := range b.samples {
		if b.pv.Platform == PlatformDreamcast {
			put(buf, uint32(len(s)))
		} else {
			put(buf, uint32(len(s)), uint32(len(s)))
		}
		buf.Write(s)
	}
	return buf.Bytes()
}

// levelData is the section list inside the level chunk.
func (b tr4Builder) levelData() []byte {
	pv := b.pv
	buf := new(bytes.Buffer)
	put(buf, uint32(0))
	if pv.Version == Tomb5 {
		put(buf, uint32(len(b.rooms)))
		for _, r := range b.rooms {
			r.writeTR5(buf)
		}
	} else {
		b.writeRooms(buf, pv)
	}
	b.writeMeshesAndAnimations(buf, pv)
	marker := func(tag string) {
		buf.WriteString(tag)
		if pv.Version == Tomb5 {
			buf.WriteByte(0)
		}
	}
	marker("SPR")
	b.writeSpriteTextures(buf, pv)
	put(buf, uint32(len(b.sequences)), b.sequences)
	put(buf, uint32(1), Camera{X: 1, Y: 2, Z: 3})
	put(buf, uint32(len(b.flyby)), b.flyby)
	put(buf, uint32(0))
	b.writeBoxes(buf, pv)
	put(buf, uint32(0), uint8(0))
	marker("TEX")
	b.writeObjectTextures(buf, pv)
	b.writeEntities(buf, pv)
	put(buf, uint32(len(b.aiObjects)), b.aiObjects)
	put(buf, uint16(0))
	b.writeSounds(buf, pv)
	put(buf, uint32(len(b.sampleIndices)), b.sampleIndices)
	if pv.Version == Tomb5 {
		buf.Write(make([]byte, 6))
	}
	return buf.Bytes()
}

// writeTR5 writes the room as an XELA block with one layer.
func (r testRoom) writeTR5(buf *bytes.Buffer) {
	data := new(bytes.Buffer)
	put(data, tr5Light{X: 1024, Y: -512, Z: 2048, R: 1, G: 0.5, Type: 1, Out: 4096, Range: 1})

	h := tr5RoomHeader{
		X: r.info.X, Z: r.info.Z, YBottom: r.info.YBottom, YTop: r.info.YTop,
		NumZSectors: r.numZ, NumXSectors: r.numX, RoomColour: 0xFF808080,
		NumLights: 1, AlternateRoom: r.alternate, NumLayers: 1,
	}
	h.StartSDOffset = uint32(data.Len())
	put(data, r.sectors)
	h.EndSDOffset = uint32(data.Len())
	put(data, uint16(len(r.portals)), r.portals)
	h.EndPortalOffset = uint32(data.Len())
	h.LayerOffset = uint32(data.Len())
	put(data, tr5RoomLayer{NumVertices: uint16(len(r.vertices)), NumRectangles: uint16(len(r.rects)), NumTriangles: uint16(len(r.tris))})
	h.PolyOffset = uint32(data.Len())
	h.PolyOffset2 = h.PolyOffset
	for _, q := range r.rects {
		put(data, rawFace4Effects{Vertices: q.Vertices, Texture: q.Texture})
	}
	for _, t := range r.tris {
		put(data, rawFace3Effects{Vertices: t.Vertices, Texture: t.Texture})
	}
	h.VerticesOffset = uint32(data.Len())
	for _, v := range r.vertices {
		put(data, tr5RoomVertex{X: float32(v.Position.X), Y: float32(v.Position.Y), Z: float32(v.Position.Z), Ny: -1, Colour: 0xFFFFFFFF})
	}
	h.VerticesSize = uint32(len(r.vertices) * 28)

	buf.WriteString(tr5RoomMarker)
	put(buf, uint32(tr5RoomHeaderSize+data.Len()), h)
	buf.Write(data.Bytes())
}

// psxBuilder assembles a PSX level: sound block, textiles and cluts, then
// the Tomb1-3 sections.
type psxBuilder struct {
	*tr1Builder
	layout psxLayout
}

func newPSXLevel(layout psxLayout) psxBuilder {
	return psxBuilder{tr1Builder: newVariantLevel(layout.pv), layout: layout}
}

func (b psxBuilder) bytes() []byte {
	pv := b.layout.pv
	buf := new(bytes.Buffer)
	if b.layout.sound {
		put(buf, uint32(len(b.sampleIndices)), b.sampleIndices)
		put(buf, uint32(len(b.sampleData)))
		buf.Write(b.sampleData)
	}
	buf.Write(make([]byte, b.layout.textiles*psxTextileSize))
	clut := make([]uint16, psxClutSize/2)
	for i := range clut {
		clut[i] = uint16(i) & 0x7FFF
	}
	put(buf, clut)
	put(buf, b.layout.version, uint32(0))

	b.writeRooms(buf, pv)
	b.writeMeshesAndAnimations(buf, pv)
	if pv.Version != Tomb3 {
		b.writeObjectTextures(buf, pv)
	}
	b.writeSpriteTextures(buf, pv)
	put(buf, uint32(len(b.sequences)), b.sequences)
	put(buf, uint32(1), Camera{X: 1, Y: 2, Z: 3})
	put(buf, uint32(0))
	b.writeBoxes(buf, pv)
	put(buf, uint32(0))
	if pv.Version == Tomb3 {
		b.writeObjectTextures(buf, pv)
	}
	b.writeEntities(buf, pv)
	b.writeSounds(buf, pv)
	return buf.Bytes()
}

// flatSectors returns numX*numZ sectors with no floor data or links.
func flatSectors(n int) []rawSector {
	s := make([]rawSector, n)
	for i := range s {
		s[i] = rawSector{BoxIndex: 0xFFFF, RoomBelow: NoRoom, RoomAbove: NoRoom, Floor: -1, Ceiling: -4}
	}
	return s
}

// newTestLevel returns a small but complete Tomb1 PC level: two rooms, two
// distinct meshes behind three pointers, one model, one entity per room and
// one reachable sample.
func newTestLevel() *tr1Builder {
	room0 := testRoom{
		info:      RoomInfo{X: 0, Z: 0, YBottom: 0, YTop: -1024},
		vertices:  []tr1RoomVertex{{Position: Vertex{0, 0, 0}}, {Position: Vertex{1024, 0, 0}}, {Position: Vertex{1024, 0, 1024}}, {Position: Vertex{0, 0, 1024}}},
		rects:     []rawFace4{{Vertices: [4]uint16{0, 1, 2, 3}, Texture: 1}, {Vertices: [4]uint16{3, 2, 1, 0}, Texture: 0x8000 | 2}},
		tris:      []rawFace3{{Vertices: [3]uint16{0, 1, 2}, Texture: 0}},
		sprites:   []RoomSprite{{Vertex: 0, Texture: 0}},
		portals:   []Portal{{AdjoiningRoom: 1, Normal: Vertex{X: -1}}},
		numZ:      2,
		numX:      1,
		sectors:   flatSectors(2),
		alternate: -1,
	}
	room0.sectors[0].FloorDataIndex = 1
	room0.sectors[1].RoomAbove = 1

	room1 := testRoom{
		info:      RoomInfo{X: 0, Z: 0, YBottom: -1024, YTop: -2048},
		vertices:  []tr1RoomVertex{{Position: Vertex{0, 0, 0}}, {Position: Vertex{1024, 0, 0}}, {Position: Vertex{0, 0, 1024}}},
		tris:      []rawFace3{{Vertices: [3]uint16{0, 1, 2}, Texture: 1}},
		portals:   []Portal{{AdjoiningRoom: 0, Normal: Vertex{X: 1}}},
		numZ:      2,
		numX:      1,
		sectors:   flatSectors(2),
		alternate: -1,
	}
	room1.sectors[1].RoomBelow = 0

	b := &tr1Builder{
		textiles:  2,
		rooms:     []testRoom{room0, room1},
		floorData: []uint16{0, floorPortal, 1, floorDeath | floorEndData},
		meshes: [][]byte{
			testMesh(4, []rawFace4{{Vertices: [4]uint16{0, 1, 2, 3}, Texture: 2}}, []rawFace3{{Vertices: [3]uint16{0, 1, 2}, Texture: 0x8000 | 7}}),
			testMesh(3, nil, []rawFace3{{Vertices: [3]uint16{0, 1, 2}, Texture: 5}}),
		},
		animations: []tr1Animation{
			{FrameOffset: 0, FrameRate: 1, FrameSize: 13, NextAnimation: 1, NumStateChanges: 1},
			{FrameOffset: 28, FrameRate: 1, FrameSize: 13, NextAnimation: 0, StateChangeOffset: 0},
		},
		stateChanges: []StateChange{{StateID: 2, NumAnimDispatches: 1, AnimDispatch: 0}},
		dispatches:   []AnimDispatch{{Low: 0, High: 1, NextAnimation: 1, NextFrame: 0}},
		meshTrees:    []int32{2, 0, 0, 256},
		frames: []uint16{
			0xFF00, 0x0100, 0xFF00, 0x0100, 0xFF00, 0x0100, 0, 0, 0, 2, 0x0803, 0x0010, 0, 0,
			0xFF00, 0x0100, 0xFF00, 0x0100, 0xFF00, 0x0100, 0, 0, 0, 2, 0, 0, 0, 0,
		},
		models:         []Model{{ID: 0, NumMeshes: 2, StartingMesh: 0, MeshTree: 0, FrameOffset: 0, Animation: 0}},
		staticMeshes:   []StaticMesh{{ID: 10, Mesh: 2}},
		objectTextures: 3,
		spriteTextures: 1,
		sequences:      []SpriteSequence{{SpriteID: 190, NegativeLength: -1, Offset: 0}},
		boxes:          []tr1Box{{Zmin: 0, Zmax: 1024, Xmin: 0, Xmax: 1024, TrueFloor: 0, OverlapIndex: 0}},
		entities: []tr1Entity{
			{TypeID: 0, Room: 0, X: 512, Y: 0, Z: 512, Intensity: -1},
			{TypeID: 10, Room: 1, X: 512, Y: -1024, Z: 512, Intensity: -1},
		},
		soundMap:      []int16{0, -1, 1},
		soundDetails:  []tr1SoundDetail{{Sample: 0, Volume: 0x7FFF, Chance: 0, Characteristics: 2}, {Sample: 1, Characteristics: 1}},
		sampleData:    []byte("RIFFaRIFFbb"),
		sampleIndices: []uint32{0, 5},
	}
	b.meshPointers = []uint32{b.meshOffset(0), b.meshOffset(1), b.meshOffset(0)}
	return b
}

// testPack wraps complete levels in a pack directory.
func testPack(names []string, levels [][]byte) []byte {
	buf := new(bytes.Buffer)
	put(buf, uint32(len(levels)))
	offset := uint32(4 + packEntrySize*len(levels))
	for i, l := range levels {
		e := packEntry{Offset: offset, Size: uint32(len(l))}
		copy(e.Name[:], names[i])
		put(buf, e)
		offset += uint32(len(l))
	}
	for _, l := range levels {
		buf.Write(l)
	}
	return buf.Bytes()
}

// recorder collects callback events.
type recorder struct {
	progress []string
	textiles []int
	samples  map[int][]byte
}

func newRecorder() *recorder {
	return &recorder{samples: make(map[int][]byte)}
}

func (r *recorder) OnProgress(msg string) { r.progress = append(r.progress, msg) }

func (r *recorder) OnTextile(index, width, height int, rgba []byte) {
	r.textiles = append(r.textiles, index)
}

func (r *recorder) OnSoundSample(mapIndex, detailIndex, sampleIndex int, data []byte) {
	r.samples[sampleIndex] = bytes.Clone(data)
}
