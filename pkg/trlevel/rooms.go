package trlevel

import (
	"fmt"

	"go.uber.org/zap"
)

// readRoom decodes one Tomb1-4 room. Tomb5 rooms use readTR5Room.
func (d *decoder) readRoom(c *Cursor, index int) (Room, error) {
	var room Room
	var err error
	log := d.log.Named(fmt.Sprintf("Room %d", index))
	log.Debug("Reading room", posField(c))

	if room.Info, err = readValue[RoomInfo](c, "room info"); err != nil {
		return room, err
	}

	words, err := c.U32()
	if err != nil {
		return room, fmt.Errorf("reading room data size: %w", err)
	}
	if int64(words)*2 > int64(c.Remaining()) {
		return room, truncated("room data of %d words at %d, %d bytes remaining", words, c.Pos(), c.Remaining())
	}
	data, err := c.Sub(int(words) * 2)
	if err != nil {
		return room, err
	}
	if err := d.readRoomGeometry(data, &room); err != nil {
		return room, fmt.Errorf("room %d geometry: %w", index, err)
	}

	if room.Portals, err = readVector[uint16, Portal](c, "portals"); err != nil {
		return room, err
	}
	if room.NumZSectors, err = c.U16(); err != nil {
		return room, fmt.Errorf("reading sector rows: %w", err)
	}
	if room.NumXSectors, err = c.U16(); err != nil {
		return room, fmt.Errorf("reading sector columns: %w", err)
	}
	raw, err := readArray[rawSector](c, int(room.NumZSectors)*int(room.NumXSectors), "sectors")
	if err != nil {
		return room, err
	}
	room.Sectors = make([]Sector, len(raw))
	for i, s := range raw {
		room.Sectors[i] = Sector{
			FloorDataIndex: s.FloorDataIndex,
			BoxIndex:       s.BoxIndex,
			RoomBelow:      s.RoomBelow,
			Floor:          s.Floor,
			RoomAbove:      s.RoomAbove,
			Ceiling:        s.Ceiling,
		}
	}

	if err := d.readRoomAmbient(c, &room); err != nil {
		return room, err
	}
	if room.Lights, err = d.readRoomLights(c); err != nil {
		return room, err
	}
	if room.StaticMeshes, err = d.readRoomStatics(c); err != nil {
		return room, err
	}

	if room.AlternateRoom, err = c.I16(); err != nil {
		return room, fmt.Errorf("reading alternate room: %w", err)
	}
	if room.Flags, err = c.U16(); err != nil {
		return room, fmt.Errorf("reading room flags: %w", err)
	}
	if d.pv.AtLeast(Tomb3) {
		tail, err := c.Bytes(3)
		if err != nil {
			return room, fmt.Errorf("reading room water scheme: %w", err)
		}
		room.WaterScheme = tail[0]
		room.ReverbInfo = tail[1]
		room.AlternateGroup = tail[2]
	}

	log.Debug("Read room",
		zap.Int("vertices", len(room.Vertices)),
		zap.Int("rectangles", len(room.Rectangles)),
		zap.Int("triangles", len(room.Triangles)),
		zap.Int("sectors", len(room.Sectors)))
	return room, nil
}

func (d *decoder) readRoomGeometry(c *Cursor, room *Room) error {
	var err error
	if room.Vertices, err = d.readRoomVertices(c); err != nil {
		return err
	}
	rects, err := readVector[uint16, rawFace4](c, "room rectangles")
	if room.Rectangles, err = convertAll(rects, err, rawFace4.face); err != nil {
		return err
	}
	tris, err := readVector[uint16, rawFace3](c, "room triangles")
	if room.Triangles, err = convertAll(tris, err, rawFace3.face); err != nil {
		return err
	}
	if room.Sprites, err = readVector[uint16, RoomSprite](c, "room sprites"); err != nil {
		return err
	}
	return nil
}

func (d *decoder) readRoomVertices(c *Cursor) ([]RoomVertex, error) {
	switch {
	case d.pv.Platform == PlatformPSX:
		raw, err := readVector[uint16, psxRoomVertex](c, "room vertices")
		return convertAll(raw, err, func(v psxRoomVertex) RoomVertex {
			return RoomVertex{Position: v.Position, Colour: v.Colour}
		})
	case d.pv.Version == Tomb1:
		raw, err := readVector[uint16, tr1RoomVertex](c, "room vertices")
		return convertAll(raw, err, func(v tr1RoomVertex) RoomVertex {
			return RoomVertex{Position: v.Position, Lighting: v.Lighting}
		})
	case d.pv.Version == Tomb2:
		raw, err := readVector[uint16, tr2RoomVertex](c, "room vertices")
		return convertAll(raw, err, func(v tr2RoomVertex) RoomVertex {
			return RoomVertex{Position: v.Position, Lighting: v.Lighting, Attributes: v.Attributes, Lighting2: v.Lighting2}
		})
	default:
		raw, err := readVector[uint16, tr3RoomVertex](c, "room vertices")
		return convertAll(raw, err, func(v tr3RoomVertex) RoomVertex {
			return RoomVertex{Position: v.Position, Lighting: v.Lighting, Attributes: v.Attributes, Colour: v.Colour}
		})
	}
}

func (d *decoder) readRoomAmbient(c *Cursor, room *Room) error {
	var err error
	switch d.pv.Version {
	case Tomb1:
		room.Ambient, err = c.I16()
	case Tomb2:
		if room.Ambient, err = c.I16(); err != nil {
			break
		}
		if room.Ambient2, err = c.I16(); err != nil {
			break
		}
		room.LightMode, err = c.I16()
	case Tomb3:
		if room.Ambient, err = c.I16(); err != nil {
			break
		}
		room.Ambient2, err = c.I16()
	default:
		room.Colour, err = c.U32()
	}
	if err != nil {
		return fmt.Errorf("reading room ambient light: %w", err)
	}
	return nil
}

func (d *decoder) readRoomLights(c *Cursor) ([]Light, error) {
	switch d.pv.Version {
	case Tomb1:
		raw, err := readVector[uint16, tr1Light](c, "room lights")
		return convertAll(raw, err, func(l tr1Light) Light {
			return Light{X: l.X, Y: l.Y, Z: l.Z, Intensity: int32(l.Intensity), Fade: int32(l.Fade)}
		})
	case Tomb2:
		raw, err := readVector[uint16, tr2Light](c, "room lights")
		return convertAll(raw, err, func(l tr2Light) Light {
			return Light{
				X: l.X, Y: l.Y, Z: l.Z,
				Intensity: int32(l.Intensity1), Intensity2: int32(l.Intensity2),
				Fade: int32(l.Fade1), Fade2: int32(l.Fade2),
			}
		})
	case Tomb3:
		raw, err := readVector[uint16, tr3Light](c, "room lights")
		return convertAll(raw, err, func(l tr3Light) Light {
			return Light{X: l.X, Y: l.Y, Z: l.Z, Colour: l.Colour, Type: l.Type, Intensity: l.Intensity, Fade: l.Fade}
		})
	default:
		raw, err := readVector[uint16, tr4Light](c, "room lights")
		return convertAll(raw, err, func(l tr4Light) Light {
			return Light{
				X: l.X, Y: l.Y, Z: l.Z, Colour: l.Colour, Type: l.Type,
				Intensity: int32(l.Intensity), In: l.In, Out: l.Out, Length: l.Length, Cutoff: l.Cutoff,
				Direction: vec3(l.Dx, l.Dy, l.Dz),
			}
		})
	}
}

func (d *decoder) readRoomStatics(c *Cursor) ([]RoomStaticMesh, error) {
	switch d.pv.Version {
	case Tomb1:
		raw, err := readVector[uint16, tr1RoomStaticMesh](c, "room static meshes")
		return convertAll(raw, err, func(s tr1RoomStaticMesh) RoomStaticMesh {
			return RoomStaticMesh{X: s.X, Y: s.Y, Z: s.Z, Rotation: s.Rotation, Intensity: s.Intensity, MeshID: s.MeshID}
		})
	case Tomb2:
		raw, err := readVector[uint16, tr2RoomStaticMesh](c, "room static meshes")
		return convertAll(raw, err, func(s tr2RoomStaticMesh) RoomStaticMesh {
			return RoomStaticMesh{
				X: s.X, Y: s.Y, Z: s.Z, Rotation: s.Rotation,
				Intensity: s.Intensity1, Intensity2: s.Intensity2, MeshID: s.MeshID,
			}
		})
	default:
		raw, err := readVector[uint16, tr3RoomStaticMesh](c, "room static meshes")
		return convertAll(raw, err, func(s tr3RoomStaticMesh) RoomStaticMesh {
			return RoomStaticMesh{X: s.X, Y: s.Y, Z: s.Z, Rotation: s.Rotation, Colour: s.Colour, MeshID: s.MeshID}
		})
	}
}

// readRooms reads a u16 counted room list.
func (d *decoder) readRooms(c *Cursor) error {
	count, err := c.U16()
	if err != nil {
		return fmt.Errorf("reading room count: %w", err)
	}
	d.progress("Reading rooms")
	d.log.Info("Reading rooms", zap.Int("count", int(count)), posField(c))
	d.level.rooms = make([]Room, 0, count)
	for i := 0; i < int(count); i++ {
		room, err := d.readRoom(c, i)
		if err != nil {
			return fmt.Errorf("room %d: %w", i, err)
		}
		d.level.rooms = append(d.level.rooms, room)
	}
	return nil
}
