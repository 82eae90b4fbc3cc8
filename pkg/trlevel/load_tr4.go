package trlevel

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"go.uber.org/zap"
)

// maxChunkSize bounds a declared uncompressed chunk so a corrupt size
// cannot force a huge allocation.
const maxChunkSize = 1 << 30

// inflate reads a u32 uncompressed, u32 compressed, zlib chunk.
func inflate(c *Cursor, what string) ([]byte, error) {
	uncompressed, err := c.U32()
	if err != nil {
		return nil, fmt.Errorf("reading %s size: %w", what, err)
	}
	compressed, err := c.U32()
	if err != nil {
		return nil, fmt.Errorf("reading %s compressed size: %w", what, err)
	}
	if uncompressed > maxChunkSize {
		return nil, truncated("%s of %d bytes", what, uncompressed)
	}
	raw, err := c.Bytes(int(compressed))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", what, err)
	}
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTruncatedOrCorrupt, what, err)
	}
	defer zr.Close()
	out := make([]byte, uncompressed)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, fmt.Errorf("%w: inflating %s: %v", ErrTruncatedOrCorrupt, what, err)
	}
	return out, nil
}

// rawChunk reads a u32 sized uncompressed chunk.
func rawChunk(c *Cursor, what string) ([]byte, error) {
	size, err := c.U32()
	if err != nil {
		return nil, fmt.Errorf("reading %s size: %w", what, err)
	}
	b, err := c.Bytes(int(size))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", what, err)
	}
	return b, nil
}

// tr4Textiles reads the three textile chunks that follow the textile counts.
// chunk reads one chunk in the platform's framing.
func (d *decoder) tr4Textiles(c *Cursor, miscTiles int, chunk func(*Cursor, string) ([]byte, error)) error {
	counts, err := readArray[uint16](c, 3, "textile counts")
	if err != nil {
		return err
	}
	total := int(counts[0]) + int(counts[1]) + int(counts[2])
	d.log.Info("Reading textiles",
		zap.Int("room", int(counts[0])),
		zap.Int("object", int(counts[1])),
		zap.Int("bump", int(counts[2])))

	t32, err := chunk(c, "32-bit textiles")
	if err != nil {
		return err
	}
	if len(t32) < total*textileSize32 {
		return truncated("32-bit textiles: %d bytes for %d pages", len(t32), total)
	}
	if _, err := chunk(c, "16-bit textiles"); err != nil {
		return err
	}
	misc, err := chunk(c, "misc textiles")
	if err != nil {
		return err
	}
	d.addTextiles(Textile32, textileSize32, 256, 256, t32[:total*textileSize32])
	d.addTextiles(Textile32, textileSize32, 256, 256, misc[:min(len(misc), miscTiles*textileSize32)])
	return nil
}

func (d *decoder) tr4LevelSteps() []step {
	rooms := d.readRooms
	sprMarker, texMarker := "SPR", "TEX"
	if d.pv.Version == Tomb5 {
		rooms = d.readTR5Rooms
		sprMarker, texMarker = "SPR\x00", "TEX\x00"
	}
	steps := []step{
		{"", d.skipUnused32},
		{"", rooms},
		{"Reading floor data", d.readFloorData},
		{"Reading mesh data", d.readMeshData},
		{"Reading mesh pointers", d.readMeshPointers},
		{"Reading animations", d.readAnimations},
		{"Reading state changes", d.readStateChanges},
		{"Reading animation dispatches", d.readAnimDispatches},
		{"Reading animation commands", d.readAnimCommands},
		{"Reading mesh trees", d.readMeshTrees},
		{"Reading frames", d.readFrames},
		{"Reading models", d.readModels},
		{"Reading static meshes", d.readStaticMeshes},
		{"", d.marker(sprMarker)},
		{"Reading sprite textures", d.readSpriteTextures},
		{"Reading sprite sequences", d.readSpriteSequences},
		{"Reading cameras", d.readCameras},
		{"Reading flyby cameras", d.readFlybyCameras},
		{"Reading sound sources", d.readSoundSources},
		{"Reading boxes", d.readBoxes},
		{"Reading animated textures", d.readAnimatedTextures},
		{"", d.marker(texMarker)},
		{"Reading object textures", d.readObjectTextures},
		{"Reading entities", d.readEntities},
		{"Reading ai objects", d.readAIObjects},
		{"Reading demo data", d.readDemoData},
		{"Reading sound map", d.readSoundMap},
		{"Reading sound details", d.readSoundDetails},
		{"Reading sound sample indices", d.readSampleIndices},
	}
	return steps
}

// readTR5Header reads the Lara and weather types and the padding after them.
func (d *decoder) readTR5Header(c *Cursor) error {
	var err error
	if d.level.laraType, err = c.U16(); err != nil {
		return err
	}
	if d.level.weatherType, err = c.U16(); err != nil {
		return err
	}
	return c.Skip(28)
}

func loadTR4PC(d *decoder) error {
	c := NewCursor(d.data)
	var level []byte
	err := d.run(c, []step{
		{"Reading version", d.skipVersion},
		{"", func(c *Cursor) error { return d.tr4Textiles(c, 2, inflate) }},
		{"Reading level data", func(c *Cursor) (err error) {
			level, err = inflate(c, "level data")
			return err
		}},
	})
	if err != nil {
		return err
	}
	if err := d.run(NewCursor(level), d.tr4LevelSteps()); err != nil {
		return err
	}
	return d.run(c, []step{{"Reading sound samples", d.readListSamples}})
}

func loadTR5PC(d *decoder) error {
	c := NewCursor(d.data)
	var level *Cursor
	err := d.run(c, []step{
		{"Reading version", d.skipVersion},
		{"", func(c *Cursor) error { return d.tr4Textiles(c, 3, inflate) }},
		{"", d.readTR5Header},
		{"Reading level data", func(c *Cursor) error {
			if _, err := c.U32(); err != nil {
				return err
			}
			size, err := c.U32()
			if err != nil {
				return err
			}
			level, err = c.Sub(int(size))
			return err
		}},
	})
	if err != nil {
		return err
	}
	steps := append(d.tr4LevelSteps(), step{"", func(c *Cursor) error { return c.Skip(min(6, c.Remaining())) }})
	if err := d.run(level, steps); err != nil {
		return err
	}
	return d.run(c, []step{{"Reading sound samples", d.readListSamples}})
}

func loadTR4Dreamcast(d *decoder) error {
	return loadDreamcast(d, false)
}

func loadTR5Dreamcast(d *decoder) error {
	return loadDreamcast(d, true)
}

// loadDreamcast reads the uncompressed Tomb4/5 layout: every chunk is a u32
// size followed by raw bytes.
func loadDreamcast(d *decoder, tr5 bool) error {
	c := NewCursor(d.data)
	misc := 2
	if tr5 {
		misc = 3
	}
	var level []byte
	steps := []step{
		{"Reading version", d.skipVersion},
		{"", func(c *Cursor) error { return d.tr4Textiles(c, misc, rawChunk) }},
	}
	if tr5 {
		steps = append(steps, step{"", d.readTR5Header})
	}
	steps = append(steps, step{"Reading level data", func(c *Cursor) (err error) {
		level, err = rawChunk(c, "level data")
		return err
	}})
	if err := d.run(c, steps); err != nil {
		return err
	}
	if err := d.run(NewCursor(level), d.tr4LevelSteps()); err != nil {
		return err
	}
	return d.run(c, []step{{"Reading sound samples", d.readSizedSamples}})
}
