package trlevel

import (
	"fmt"

	"go.uber.org/zap"
)

// Fixed section sizes.
const (
	paletteSize8      = 256 * 3
	paletteSize16     = 256 * 4
	lightmapSize      = 32 * 256
	cinematicFrameLen = 16
)

// soundMapSize returns the number of sound map entries of a version.
func soundMapSize(pv PlatformAndVersion) int {
	switch {
	case pv.Version == Tomb1 && !pv.IsTR2Saturn:
		return 256
	case pv.Version == Tomb5:
		return 450
	default:
		return 370
	}
}

func (d *decoder) skipVersion(c *Cursor) error {
	return c.Skip(4)
}

func (d *decoder) skipUnused32(c *Cursor) error {
	_, err := c.U32()
	return err
}

func (d *decoder) readPalette8(c *Cursor) error {
	raw, err := c.Bytes(paletteSize8)
	if err != nil {
		return err
	}
	d.level.palette = palette8(raw)
	return nil
}

func (d *decoder) readPalette16(c *Cursor) error {
	raw, err := c.Bytes(paletteSize16)
	if err != nil {
		return err
	}
	d.level.palette16 = palette16(raw)
	return nil
}

func (d *decoder) addTextiles(format TextileFormat, size, w, h int, raw []byte) {
	for i := 0; i+size <= len(raw); i += size {
		d.level.textiles = append(d.level.textiles, Textile{Width: w, Height: h, Format: format, Data: raw[i : i+size]})
	}
}

// readTextiles8 reads u32 counted 8-bit textiles.
func (d *decoder) readTextiles8(c *Cursor) error {
	count, err := readCount[uint32](c, "textiles")
	if err != nil {
		return err
	}
	if count > c.Remaining()/textileSize8 {
		return truncated("%d textiles at %d", count, c.Pos())
	}
	raw, err := c.Bytes(count * textileSize8)
	if err != nil {
		return err
	}
	d.addTextiles(Textile8, textileSize8, 256, 256, raw)
	d.log.Debug("Read 8-bit textiles", zap.Int("count", count))
	return nil
}

// readTextiles8And16 reads the Tomb2/3 textile block: one count, then the
// 8-bit pages, then the same number of 16-bit pages. Only the 16-bit pages
// are kept.
func (d *decoder) readTextiles8And16(c *Cursor) error {
	count, err := readCount[uint32](c, "textiles")
	if err != nil {
		return err
	}
	if count > c.Remaining()/(textileSize8+textileSize16) {
		return truncated("%d textiles at %d", count, c.Pos())
	}
	if err := c.Skip(count * textileSize8); err != nil {
		return err
	}
	raw, err := c.Bytes(count * textileSize16)
	if err != nil {
		return err
	}
	d.addTextiles(Textile16, textileSize16, 256, 256, raw)
	d.log.Debug("Read 16-bit textiles", zap.Int("count", count))
	return nil
}

func (d *decoder) readFloorData(c *Cursor) error {
	fd, err := readVector[uint32, uint16](c, "floor data")
	if err != nil {
		return err
	}
	d.level.floorData = fd
	return nil
}

// readMeshData reads the u32 word counted mesh data block.
func (d *decoder) readMeshData(c *Cursor) error {
	words, err := readCount[uint32](c, "mesh data")
	if err != nil {
		return err
	}
	if words > c.Remaining()/2 {
		return truncated("mesh data of %d words at %d", words, c.Pos())
	}
	data, err := c.Bytes(words * 2)
	if err != nil {
		return err
	}
	d.meshData = data
	d.meshOrder = c.Order()
	return nil
}

func (d *decoder) readMeshPointers(c *Cursor) error {
	ptrs, err := readVector[uint32, uint32](c, "mesh pointers")
	if err != nil {
		return err
	}
	d.level.meshPointers = ptrs
	return nil
}

func (d *decoder) readAnimations(c *Cursor) error {
	var err error
	if d.pv.AtLeast(Tomb4) {
		raw, rerr := readVector[uint32, tr4Animation](c, "animations")
		d.level.animations, err = convertAll(raw, rerr, func(a tr4Animation) Animation { return Animation(a) })
	} else {
		raw, rerr := readVector[uint32, tr1Animation](c, "animations")
		d.level.animations, err = convertAll(raw, rerr, func(a tr1Animation) Animation {
			return Animation{
				FrameOffset: a.FrameOffset, FrameRate: a.FrameRate, FrameSize: a.FrameSize,
				StateID: a.StateID, Speed: a.Speed, Accel: a.Accel,
				FrameStart: a.FrameStart, FrameEnd: a.FrameEnd,
				NextAnimation: a.NextAnimation, NextFrame: a.NextFrame,
				NumStateChanges: a.NumStateChanges, StateChangeOffset: a.StateChangeOffset,
				NumAnimCommands: a.NumAnimCommands, AnimCommand: a.AnimCommand,
			}
		})
	}
	return err
}

func (d *decoder) readStateChanges(c *Cursor) (err error) {
	d.level.stateChanges, err = readVector[uint32, StateChange](c, "state changes")
	return err
}

func (d *decoder) readAnimDispatches(c *Cursor) (err error) {
	d.level.animDispatches, err = readVector[uint32, AnimDispatch](c, "animation dispatches")
	return err
}

func (d *decoder) readAnimCommands(c *Cursor) (err error) {
	d.level.animCommands, err = readVector[uint32, int16](c, "animation commands")
	return err
}

func (d *decoder) readMeshTrees(c *Cursor) (err error) {
	d.level.meshTrees, err = readVector[uint32, int32](c, "mesh trees")
	return err
}

func (d *decoder) readFrames(c *Cursor) (err error) {
	d.level.frames, err = readVector[uint32, uint16](c, "frames")
	return err
}

func (d *decoder) readModels(c *Cursor) error {
	var err error
	if d.pv.Version == Tomb5 {
		raw, rerr := readVector[uint32, tr5Model](c, "models")
		d.level.models, err = convertAll(raw, rerr, func(m tr5Model) Model {
			return Model{
				ID: m.ID, NumMeshes: m.NumMeshes, StartingMesh: m.StartingMesh,
				MeshTree: m.MeshTree, FrameOffset: m.FrameOffset, Animation: m.Animation,
			}
		})
	} else {
		d.level.models, err = readVector[uint32, Model](c, "models")
	}
	return err
}

func (d *decoder) readStaticMeshes(c *Cursor) (err error) {
	d.level.staticMeshes, err = readVector[uint32, StaticMesh](c, "static meshes")
	return err
}

func (d *decoder) readObjectTextures(c *Cursor) error {
	var err error
	switch {
	case d.pv.Platform == PlatformPSX:
		raw, rerr := readVector[uint32, psxObjectTexture](c, "object textures")
		d.level.objectTextures, err = convertAll(raw, rerr, convertPSXTexture)
	case d.pv.Version == Tomb5:
		raw, rerr := readVector[uint32, tr5ObjectTexture](c, "object textures")
		d.level.objectTextures, err = convertAll(raw, rerr, func(t tr5ObjectTexture) ObjectTexture {
			return convertTR4Texture(tr4ObjectTexture{
				Attribute: t.Attribute, TileAndFlag: t.TileAndFlag, NewFlags: t.NewFlags,
				Vertices: t.Vertices, OriginalU: t.OriginalU, OriginalV: t.OriginalV,
				Width: t.Width, Height: t.Height,
			})
		})
	case d.pv.Version == Tomb4:
		raw, rerr := readVector[uint32, tr4ObjectTexture](c, "object textures")
		d.level.objectTextures, err = convertAll(raw, rerr, convertTR4Texture)
	default:
		raw, rerr := readVector[uint32, tr1ObjectTexture](c, "object textures")
		d.level.objectTextures, err = convertAll(raw, rerr, convertPCTexture)
	}
	if err == nil {
		d.log.Debug("Read object textures", zap.Int("count", len(d.level.objectTextures)))
	}
	return err
}

func (d *decoder) readSpriteTextures(c *Cursor) error {
	var err error
	if d.pv.Platform == PlatformPSX {
		raw, rerr := readVector[uint32, psxSpriteTexture](c, "sprite textures")
		d.level.spriteTextures, err = convertAll(raw, rerr, convertPSXSprite)
	} else {
		raw, rerr := readVector[uint32, pcSpriteTexture](c, "sprite textures")
		d.level.spriteTextures, err = convertAll(raw, rerr, convertPCSprite)
	}
	return err
}

func (d *decoder) readSpriteSequences(c *Cursor) (err error) {
	d.level.spriteSequences, err = readVector[uint32, SpriteSequence](c, "sprite sequences")
	return err
}

func (d *decoder) readCameras(c *Cursor) (err error) {
	d.level.cameras, err = readVector[uint32, Camera](c, "cameras")
	return err
}

func (d *decoder) readFlybyCameras(c *Cursor) (err error) {
	d.level.flybyCameras, err = readVector[uint32, FlybyCamera](c, "flyby cameras")
	return err
}

func (d *decoder) readSoundSources(c *Cursor) (err error) {
	d.level.soundSources, err = readVector[uint32, SoundSource](c, "sound sources")
	return err
}

// readBoxes reads boxes, overlaps and zones, which share the box count.
func (d *decoder) readBoxes(c *Cursor) error {
	if err := d.readBoxList(c); err != nil {
		return err
	}
	if err := d.readOverlaps(c); err != nil {
		return err
	}
	var err error
	d.level.zones, err = readArray[uint16](c, len(d.level.boxes)*d.zoneWords(), "zones")
	return err
}

// zoneWords is the number of zone words per box.
func (d *decoder) zoneWords() int {
	if d.pv.Version == Tomb1 {
		return 6
	}
	return 10
}

func (d *decoder) readBoxList(c *Cursor) error {
	var err error
	if d.pv.Version == Tomb1 {
		raw, rerr := readVector[uint32, tr1Box](c, "boxes")
		d.level.boxes, err = convertAll(raw, rerr, func(b tr1Box) Box { return Box(b) })
	} else {
		raw, rerr := readVector[uint32, tr2Box](c, "boxes")
		d.level.boxes, err = convertAll(raw, rerr, func(b tr2Box) Box {
			return Box{
				Zmin: uint32(b.Zmin), Zmax: uint32(b.Zmax),
				Xmin: uint32(b.Xmin), Xmax: uint32(b.Xmax),
				TrueFloor: b.TrueFloor, OverlapIndex: b.OverlapIndex,
			}
		})
	}
	return err
}

func (d *decoder) readOverlaps(c *Cursor) (err error) {
	d.level.overlaps, err = readVector[uint32, uint16](c, "overlaps")
	return err
}

func (d *decoder) readAnimatedTextures(c *Cursor) error {
	var err error
	if d.level.animatedTextures, err = readVector[uint32, uint16](c, "animated textures"); err != nil {
		return err
	}
	if d.pv.AtLeast(Tomb4) {
		// UV ranges.
		_, err = c.U8()
	}
	return err
}

// marker checks a fixed section marker such as "SPR" or "TEX".
func (d *decoder) marker(tag string) func(c *Cursor) error {
	return func(c *Cursor) error {
		ok, err := c.Tag(tag)
		if err != nil {
			return err
		}
		if !ok {
			return truncated("missing %q marker at %d", tag, c.Pos()-len(tag))
		}
		return nil
	}
}

func (d *decoder) readEntities(c *Cursor) error {
	var err error
	switch {
	case d.pv.AtLeast(Tomb4):
		raw, rerr := readVector[uint32, tr4Entity](c, "entities")
		d.level.entities, err = convertAll(raw, rerr, func(e tr4Entity) Entity {
			return Entity{
				TypeID: e.TypeID, Room: e.Room, X: e.X, Y: e.Y, Z: e.Z,
				Angle: e.Angle, Intensity1: e.Intensity, OCB: e.OCB, Flags: e.Flags,
			}
		})
	case d.pv.Version == Tomb1 && !d.pv.IsTR2Saturn:
		raw, rerr := readVector[uint32, tr1Entity](c, "entities")
		d.level.entities, err = convertAll(raw, rerr, func(e tr1Entity) Entity {
			return Entity{
				TypeID: e.TypeID, Room: e.Room, X: e.X, Y: e.Y, Z: e.Z,
				Angle: e.Angle, Intensity1: e.Intensity, Flags: e.Flags,
			}
		})
	default:
		raw, rerr := readVector[uint32, tr2Entity](c, "entities")
		d.level.entities, err = convertAll(raw, rerr, func(e tr2Entity) Entity {
			return Entity{
				TypeID: e.TypeID, Room: e.Room, X: e.X, Y: e.Y, Z: e.Z,
				Angle: e.Angle, Intensity1: e.Intensity1, Intensity2: e.Intensity2, Flags: e.Flags,
			}
		})
	}
	if err == nil {
		d.log.Info("Read entities", zap.Int("count", len(d.level.entities)))
	}
	return err
}

func (d *decoder) readAIObjects(c *Cursor) (err error) {
	d.level.aiObjects, err = readVector[uint32, AIObject](c, "ai objects")
	return err
}

func (d *decoder) readLightmap(c *Cursor) (err error) {
	d.level.lightmap, err = c.Copy(lightmapSize)
	return err
}

func (d *decoder) readCinematicFrames(c *Cursor) error {
	count, err := c.U16()
	if err != nil {
		return err
	}
	d.level.cinematicFrames, err = c.Copy(int(count) * cinematicFrameLen)
	return err
}

func (d *decoder) readDemoData(c *Cursor) (err error) {
	d.level.demoData, err = readBlob[uint16](c, "demo data")
	return err
}

func (d *decoder) readSoundMap(c *Cursor) (err error) {
	d.level.soundMap, err = readArray[int16](c, soundMapSize(d.pv), "sound map")
	return err
}

func (d *decoder) readSoundDetails(c *Cursor) error {
	var err error
	if d.pv.AtLeast(Tomb3) {
		raw, rerr := readVector[uint32, tr3SoundDetail](c, "sound details")
		d.level.soundDetails, err = convertAll(raw, rerr, func(s tr3SoundDetail) SoundDetail {
			return SoundDetail{
				Sample: s.Sample, Volume: uint16(s.Volume), Range: s.Range,
				Chance: uint16(s.Chance), Pitch: s.Pitch, Characteristics: s.Characteristics,
			}
		})
	} else {
		raw, rerr := readVector[uint32, tr1SoundDetail](c, "sound details")
		d.level.soundDetails, err = convertAll(raw, rerr, func(s tr1SoundDetail) SoundDetail {
			return SoundDetail{Sample: s.Sample, Volume: s.Volume, Chance: s.Chance, Characteristics: s.Characteristics}
		})
	}
	return err
}

// readSampleData reads the Tomb1 embedded sample blob.
func (d *decoder) readSampleData(c *Cursor) error {
	data, err := readBlob[uint32](c, "sample data")
	if err != nil {
		return err
	}
	d.samples = &offsetSamples{data: data}
	return nil
}

func (d *decoder) readSampleIndices(c *Cursor) error {
	indices, err := readVector[uint32, uint32](c, "sample indices")
	if err != nil {
		return err
	}
	d.level.sampleIndices = indices
	if s, ok := d.samples.(*offsetSamples); ok {
		s.offsets = indices
	}
	return nil
}

// readListSamples reads Tomb4+ samples: a u32 count of
// {u32 uncompressed, u32 compressed, bytes} records.
func (d *decoder) readListSamples(c *Cursor) error {
	count, err := readCount[uint32](c, "samples")
	if err != nil {
		return err
	}
	if count > c.Remaining()/8 {
		return truncated("%d samples at %d", count, c.Pos())
	}
	list := make(listSamples, 0, count)
	for i := 0; i < count; i++ {
		if _, err := c.U32(); err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		size, err := c.U32()
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		data, err := c.Bytes(int(size))
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		list = append(list, data)
	}
	d.samples = list
	return nil
}

// readSizedSamples reads Dreamcast samples: a u32 count of u32 sized records.
func (d *decoder) readSizedSamples(c *Cursor) error {
	count, err := readCount[uint32](c, "samples")
	if err != nil {
		return err
	}
	if count > c.Remaining()/4 {
		return truncated("%d samples at %d", count, c.Pos())
	}
	list := make(listSamples, 0, count)
	for i := 0; i < count; i++ {
		data, err := readBlob[uint32](c, "sample")
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		list = append(list, data)
	}
	d.samples = list
	return nil
}
