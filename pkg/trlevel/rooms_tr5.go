package trlevel

import (
	"fmt"

	"go.uber.org/zap"

	trmath "github.com/lahm86/trview-sub000/pkg/math"
)

const tr5RoomMarker = "XELA"

// tr5RoomHeader follows the XELA marker and data size. Offsets are relative
// to the end of the header.
type tr5RoomHeader struct {
	Separator1      uint32
	EndSDOffset     uint32
	StartSDOffset   uint32
	Separator2      uint32
	EndPortalOffset uint32
	X, Y, Z         int32
	YBottom, YTop   int32
	NumZSectors     uint16
	NumXSectors     uint16
	RoomColour      uint32
	NumLights       uint16
	NumStaticMeshes uint16
	ReverbInfo      uint8
	AlternateGroup  uint8
	WaterScheme     uint16
	Filler          [2]uint32
	Separator3      [2]uint32
	Filler2         uint32
	AlternateRoom   int16
	Flags           uint16
	Unknown1        [3]uint32
	Separator4      uint32
	Unknown2        [2]uint16
	RoomX           float32
	RoomY           float32
	RoomZ           float32
	Separator5      [6]uint32
	NumTriangles    uint32
	NumRectangles   uint32
	Separator6      uint32
	LightDataSize   uint32
	NumLights2      uint32
	Unknown3        uint32
	RoomYTop        int32
	RoomYBottom     int32
	NumLayers       uint32
	LayerOffset     uint32
	VerticesOffset  uint32
	PolyOffset      uint32
	PolyOffset2     uint32
	VerticesSize    uint32
	Separator7      [4]uint32
}

const tr5RoomHeaderSize = 208

type tr5RoomLayer struct {
	NumVertices   uint16
	Unknown1      uint16
	Unknown2      uint16
	NumRectangles uint16
	NumTriangles  uint16
	Unknown3      uint16
	Filler        [2]uint16
	BoundingBox   [6]float32
	Filler2       [4]uint32
}

// readTR5Rooms reads the u32 counted XELA room list.
func (d *decoder) readTR5Rooms(c *Cursor) error {
	count, err := readCount[uint32](c, "rooms")
	if err != nil {
		return err
	}
	d.progress("Reading rooms")
	d.log.Info("Reading rooms", zap.Int("count", count), posField(c))
	if count > c.Remaining()/(8+tr5RoomHeaderSize) {
		return truncated("%d rooms at %d, %d bytes remaining", count, c.Pos(), c.Remaining())
	}
	d.level.rooms = make([]Room, 0, count)
	for i := 0; i < count; i++ {
		room, err := d.readTR5Room(c, i)
		if err != nil {
			return fmt.Errorf("room %d: %w", i, err)
		}
		d.level.rooms = append(d.level.rooms, room)
	}
	return nil
}

func (d *decoder) readTR5Room(c *Cursor, index int) (Room, error) {
	var room Room
	log := d.log.Named(fmt.Sprintf("Room %d", index))
	log.Debug("Reading room", posField(c))

	ok, err := c.Tag(tr5RoomMarker)
	if err != nil {
		return room, fmt.Errorf("reading room marker: %w", err)
	}
	if !ok {
		return room, truncated("missing %s marker at %d", tr5RoomMarker, c.Pos()-4)
	}
	size, err := c.U32()
	if err != nil {
		return room, fmt.Errorf("reading room size: %w", err)
	}
	rc, err := c.Sub(int(size))
	if err != nil {
		return room, fmt.Errorf("room data of %d bytes: %w", size, err)
	}

	h, err := readValue[tr5RoomHeader](rc, "room header")
	if err != nil {
		return room, err
	}
	data, err := rc.Sub(rc.Remaining())
	if err != nil {
		return room, err
	}

	room.Info = RoomInfo{X: h.X, Z: h.Z, YBottom: h.YBottom, YTop: h.YTop}
	room.NumZSectors = h.NumZSectors
	room.NumXSectors = h.NumXSectors
	room.Colour = h.RoomColour
	room.AlternateRoom = h.AlternateRoom
	room.Flags = h.Flags
	room.WaterScheme = uint8(h.WaterScheme)
	room.ReverbInfo = h.ReverbInfo
	room.AlternateGroup = h.AlternateGroup

	lights, err := readArray[tr5Light](data, int(h.NumLights), "room lights")
	if room.Lights, err = convertAll(lights, err, convertTR5Light); err != nil {
		return room, err
	}

	if err := data.Seek(int(h.StartSDOffset)); err != nil {
		return room, fmt.Errorf("seeking sectors: %w", err)
	}
	sectors, err := readArray[rawSector](data, int(h.NumZSectors)*int(h.NumXSectors), "sectors")
	if err != nil {
		return room, err
	}
	room.Sectors = make([]Sector, len(sectors))
	for i, s := range sectors {
		room.Sectors[i] = Sector{
			FloorDataIndex: s.FloorDataIndex, BoxIndex: s.BoxIndex,
			RoomBelow: s.RoomBelow, Floor: s.Floor,
			RoomAbove: s.RoomAbove, Ceiling: s.Ceiling,
		}
	}

	if err := data.Seek(int(h.EndSDOffset)); err != nil {
		return room, fmt.Errorf("seeking portals: %w", err)
	}
	if room.Portals, err = readVector[uint16, Portal](data, "portals"); err != nil {
		return room, err
	}

	if err := data.Seek(int(h.EndPortalOffset)); err != nil {
		return room, fmt.Errorf("seeking static meshes: %w", err)
	}
	statics, err := readArray[tr3RoomStaticMesh](data, int(h.NumStaticMeshes), "room static meshes")
	if room.StaticMeshes, err = convertAll(statics, err, func(s tr3RoomStaticMesh) RoomStaticMesh {
		return RoomStaticMesh{X: s.X, Y: s.Y, Z: s.Z, Rotation: s.Rotation, Colour: s.Colour, MeshID: s.MeshID}
	}); err != nil {
		return room, err
	}

	if err := data.Seek(int(h.LayerOffset)); err != nil {
		return room, fmt.Errorf("seeking layers: %w", err)
	}
	layers, err := readArray[tr5RoomLayer](data, int(h.NumLayers), "room layers")
	if err != nil {
		return room, err
	}

	if err := data.Seek(int(h.PolyOffset)); err != nil {
		return room, fmt.Errorf("seeking faces: %w", err)
	}
	base := uint16(0)
	for i, layer := range layers {
		rects, err := readArray[rawFace4Effects](data, int(layer.NumRectangles), "layer rectangles")
		if err != nil {
			return room, fmt.Errorf("layer %d: %w", i, err)
		}
		for _, r := range rects {
			f := r.face()
			for v := range f.Vertices {
				f.Vertices[v] += base
			}
			room.Rectangles = append(room.Rectangles, f)
		}
		tris, err := readArray[rawFace3Effects](data, int(layer.NumTriangles), "layer triangles")
		if err != nil {
			return room, fmt.Errorf("layer %d: %w", i, err)
		}
		for _, t := range tris {
			f := t.face()
			for v := range f.Vertices {
				f.Vertices[v] += base
			}
			room.Triangles = append(room.Triangles, f)
		}
		base += layer.NumVertices
	}

	if err := data.Seek(int(h.VerticesOffset)); err != nil {
		return room, fmt.Errorf("seeking vertices: %w", err)
	}
	vertices, err := readArray[tr5RoomVertex](data, int(base), "room vertices")
	if room.Vertices, err = convertAll(vertices, err, func(v tr5RoomVertex) RoomVertex {
		return RoomVertex{
			Position: Vertex{X: int16(v.X), Y: int16(v.Y), Z: int16(v.Z)},
			Normal:   vec3(v.Nx, v.Ny, v.Nz),
			Colour:   argbTo555(v.Colour),
		}
	}); err != nil {
		return room, err
	}

	log.Debug("Read room",
		zap.Int("layers", len(layers)),
		zap.Int("vertices", len(room.Vertices)),
		zap.Int("rectangles", len(room.Rectangles)),
		zap.Int("triangles", len(room.Triangles)))
	return room, nil
}

func convertTR5Light(l tr5Light) Light {
	return Light{
		X: int32(l.X), Y: int32(l.Y), Z: int32(l.Z),
		Colour:    [3]uint8{unitByte(l.R), unitByte(l.G), unitByte(l.B)},
		Type:      l.Type,
		In:        l.In,
		Out:       l.Out,
		Length:    l.Range,
		Direction: vec3(l.Dx, l.Dy, l.Dz),
	}
}

func unitByte(f float32) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 0xFF
	default:
		return uint8(f * 255)
	}
}

// argbTo555 packs a 32-bit vertex colour into the 16-bit form other versions use.
func argbTo555(v uint32) uint16 {
	r := uint16(v>>19) & 0x1F
	g := uint16(v>>11) & 0x1F
	b := uint16(v>>3) & 0x1F
	return 0x8000 | r<<10 | g<<5 | b
}

func vec3(x, y, z float32) trmath.Vec3 {
	return trmath.Vec3{X: x, Y: y, Z: z}
}
