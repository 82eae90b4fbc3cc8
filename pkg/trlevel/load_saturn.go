package trlevel

import (
	"encoding/binary"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Saturn chunk layout: an 8 byte tag, a big-endian u32 element size, then a
// u32 element count followed by the elements. Room data uses element size 0
// and a count of rooms.
const (
	saturnTagLen   = 8
	saturnRoomFile = "ROOMFILE"
	saturnEndFile  = "ENDFILE"
)

type saturnChunk struct {
	tag      string
	elemSize uint32
	count    uint32
	data     []byte
}

// readSaturnChunk reads one fixed size chunk with its elements.
func readSaturnChunk(c *Cursor) (saturnChunk, error) {
	var ch saturnChunk
	tag, err := readSaturnHeader(c, &ch.elemSize)
	if err != nil {
		return ch, err
	}
	ch.tag = tag
	if ch.count, err = c.U32(); err != nil {
		return ch, err
	}
	size := int64(ch.elemSize) * int64(ch.count)
	if size > int64(c.Remaining()) {
		return ch, truncated("%s chunk of %d bytes at %d", tag, size, c.Pos())
	}
	ch.data, err = c.Bytes(int(size))
	return ch, err
}

// readSaturnHeader reads a chunk tag and element size, leaving c at the count.
func readSaturnHeader(c *Cursor, elemSize *uint32) (string, error) {
	raw, err := c.Bytes(saturnTagLen)
	if err != nil {
		return "", err
	}
	if *elemSize, err = c.U32(); err != nil {
		return "", err
	}
	return strings.TrimRight(string(raw), "\x00 "), nil
}

// saturnSection is one expected chunk. size is the element size the chunk
// must declare.
type saturnSection struct {
	tag  string
	size int
	read func(c *Cursor) error
}

func (d *decoder) saturnSections() []saturnSection {
	tr2 := d.pv.IsTR2Saturn
	boxSize, itemSize := binary.Size(tr1Box{}), binary.Size(tr1Entity{})
	if tr2 {
		boxSize, itemSize = binary.Size(tr2Box{}), binary.Size(tr2Entity{})
	}
	return []saturnSection{
		{saturnRoomFile, 4, d.readSaturnVersion},
		{"ROOMTPAL", 3, d.readSaturnPalette},
		{"ROOMTEXT", textileSize8, d.readTextiles8},
		{"ROOMDATA", 0, d.readSaturnRooms},
		{"FLOORDAT", 2, d.readFloorData},
		{"MESHDATA", 2, d.readMeshData},
		{"MESHPTRS", 4, d.readMeshPointers},
		{"ANIMATIO", binary.Size(tr1Animation{}), d.readAnimations},
		{"CHANGESV", binary.Size(StateChange{}), d.readStateChanges},
		{"RANGESVV", binary.Size(AnimDispatch{}), d.readAnimDispatches},
		{"COMMANDS", 2, d.readAnimCommands},
		{"ANIMBONE", 4, d.readMeshTrees},
		{"ANIMFRAM", 2, d.readFrames},
		{"OBJECTSV", binary.Size(Model{}), d.readModels},
		{"STATICSV", binary.Size(StaticMesh{}), d.readStaticMeshes},
		{"TEXTINFO", binary.Size(tr1ObjectTexture{}), d.readObjectTextures},
		{"SPRITEIN", binary.Size(pcSpriteTexture{}), d.readSpriteTextures},
		{"SPRITEOB", binary.Size(SpriteSequence{}), d.readSpriteSequences},
		{"CAMERASV", binary.Size(Camera{}), d.readCameras},
		{"SOUNDFXV", binary.Size(SoundSource{}), d.readSoundSources},
		{"BOXESVVV", boxSize, d.readBoxList},
		{"OVERLAPS", 2, d.readOverlaps},
		{"GROUNDZO", 2, d.readSaturnZones},
		{"ANIMTEXT", 2, d.readAnimatedTextures},
		{"ITEMDATA", itemSize, d.readEntities},
		{"SOUNDMAP", 2, d.readSaturnSoundMap},
		{"SOUNDDET", binary.Size(tr1SoundDetail{}), d.readSoundDetails},
		{"SAMPLDAT", 1, d.readSampleData},
		{"SAMPLEIX", 4, d.readSampleIndices},
		{saturnEndFile, 0, d.readSaturnEnd},
	}
}

// loadSaturn walks the tagged chunk chain in its fixed order.
func loadSaturn(d *decoder) error {
	c := NewCursor(d.data).WithOrder(binary.BigEndian)
	for _, s := range d.saturnSections() {
		var size uint32
		pos := c.Pos()
		tag, err := readSaturnHeader(c, &size)
		if err != nil {
			return fmt.Errorf("reading %s chunk: %w", s.tag, err)
		}
		if tag != s.tag {
			return truncated("expected %s chunk at %d, found %q", s.tag, pos, tag)
		}
		if int(size) != s.size {
			return truncated("%s chunk element size %d, expected %d", tag, size, s.size)
		}
		d.log.Debug("Reading chunk", zap.String("tag", tag), zap.Int("position", pos))
		d.progress("Reading " + strings.ToLower(tag))
		if err := s.read(c); err != nil {
			return fmt.Errorf("%s: %w", strings.ToLower(tag), err)
		}
	}
	return nil
}

func (d *decoder) readSaturnVersion(c *Cursor) error {
	count, err := c.U32()
	if err != nil {
		return err
	}
	if count != 1 {
		return truncated("version chunk with %d entries", count)
	}
	return c.Skip(4)
}

func (d *decoder) readSaturnPalette(c *Cursor) error {
	count, err := c.U32()
	if err != nil {
		return err
	}
	if int(count)*3 != paletteSize8 {
		return truncated("palette of %d entries", count)
	}
	return d.readPalette8(c)
}

func (d *decoder) readSaturnRooms(c *Cursor) error {
	count, err := readCount[uint32](c, "rooms")
	if err != nil {
		return err
	}
	d.log.Info("Reading rooms", zap.Int("count", count), posField(c))
	d.level.rooms = make([]Room, 0, count)
	for i := 0; i < count; i++ {
		room, err := d.readRoom(c, i)
		if err != nil {
			return fmt.Errorf("room %d: %w", i, err)
		}
		d.level.rooms = append(d.level.rooms, room)
	}
	return nil
}

func (d *decoder) readSaturnZones(c *Cursor) (err error) {
	d.level.zones, err = readVector[uint32, uint16](c, "zones")
	if err == nil && len(d.level.zones) != len(d.level.boxes)*d.zoneWords() {
		return truncated("%d zone words for %d boxes", len(d.level.zones), len(d.level.boxes))
	}
	return err
}

func (d *decoder) readSaturnSoundMap(c *Cursor) error {
	count, err := c.U32()
	if err != nil {
		return err
	}
	if int(count) != soundMapSize(d.pv) {
		return truncated("sound map of %d entries", count)
	}
	return d.readSoundMap(c)
}

func (d *decoder) readSaturnEnd(c *Cursor) error {
	_, err := c.U32()
	return err
}
