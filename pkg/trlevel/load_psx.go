package trlevel

import (
	"fmt"

	"go.uber.org/zap"
)

// readPSXPrefix reads the sound block, textiles and clut block that come
// before the version on PSX levels.
func (d *decoder) readPSXPrefix(c *Cursor) error {
	layout := psxLayoutFor(d.pv)
	if layout.sound {
		d.progress("Reading sound block")
		count, err := c.U32()
		if err != nil {
			return fmt.Errorf("reading sound count: %w", err)
		}
		if count > maxSoundCount {
			return truncated("sound block with %d samples", count)
		}
		offsets, err := readArray[uint32](c, int(count), "sound offsets")
		if err != nil {
			return err
		}
		data, err := readBlob[uint32](c, "sound data")
		if err != nil {
			return err
		}
		d.samples = &offsetSamples{data: data, offsets: offsets}
		d.log.Debug("Read sound block", zap.Int("samples", int(count)), zap.Int("size", len(data)))
	}

	d.progress("Reading textiles")
	raw, err := c.Bytes(layout.textiles * psxTextileSize)
	if err != nil {
		return fmt.Errorf("reading textiles: %w", err)
	}
	d.addTextiles(Textile4, psxTextileSize, 512, 256, raw)

	d.progress("Reading clut")
	clut, err := readArray[uint16](c, psxClutSize/2, "clut")
	if err != nil {
		return err
	}
	d.level.clut = clut
	return nil
}

// psxTailSteps are the sections after static meshes. Tomb3 moved object
// textures after the animated textures.
func (d *decoder) psxTailSteps() []step {
	if d.pv.Version == Tomb3 {
		return []step{
			{"Reading sprite textures", d.readSpriteTextures},
			{"Reading sprite sequences", d.readSpriteSequences},
			{"Reading cameras", d.readCameras},
			{"Reading sound sources", d.readSoundSources},
			{"Reading boxes", d.readBoxes},
			{"Reading animated textures", d.readAnimatedTextures},
			{"Reading object textures", d.readObjectTextures},
			{"Reading entities", d.readEntities},
			{"Reading sound map", d.readSoundMap},
			{"Reading sound details", d.readSoundDetails},
		}
	}
	return []step{
		{"Reading object textures", d.readObjectTextures},
		{"Reading sprite textures", d.readSpriteTextures},
		{"Reading sprite sequences", d.readSpriteSequences},
		{"Reading cameras", d.readCameras},
		{"Reading sound sources", d.readSoundSources},
		{"Reading boxes", d.readBoxes},
		{"Reading animated textures", d.readAnimatedTextures},
		{"Reading entities", d.readEntities},
		{"Reading sound map", d.readSoundMap},
		{"Reading sound details", d.readSoundDetails},
	}
}

// loadPSX decodes every PSX variant. The prefix shape comes from
// psxLayoutFor and the mesh encoding from meshLayoutFor; the section order
// only changes for Tomb3.
func loadPSX(d *decoder) error {
	c := NewCursor(d.data)
	steps := []step{
		{"", d.readPSXPrefix},
		{"Reading version", d.skipVersion},
		{"", d.skipUnused32},
		{"", d.readRooms},
	}
	steps = append(steps, d.meshAndAnimationSteps()...)
	steps = append(steps, d.psxTailSteps()...)
	return d.run(c, steps)
}
