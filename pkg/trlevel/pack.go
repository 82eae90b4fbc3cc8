package trlevel

import (
	"bytes"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lahm86/trview-sub000/pkg/encoding"
)

// A pack is a u32 entry count followed by {u32 offset, u32 size, name[12]}
// entries. Each entry is a complete level of the same variant.
const (
	maxPackEntries = 64
	packEntrySize  = 20
	packNameLen    = 12
)

type packEntry struct {
	Offset uint32
	Size   uint32
	Name   [packNameLen]byte
}

func (e packEntry) name() string {
	return encoding.DecodeCP437Name(e.Name[:])
}

// readPackDirectory reads and validates the entry table.
func readPackDirectory(c *Cursor) ([]packEntry, error) {
	count, err := c.U32()
	if err != nil {
		return nil, err
	}
	if count == 0 || count > maxPackEntries {
		return nil, truncated("pack with %d entries", count)
	}
	entries, err := readArray[packEntry](c, int(count), "pack entries")
	if err != nil {
		return nil, err
	}
	next := uint32(4 + packEntrySize*count)
	for i, e := range entries {
		if e.Offset < next || e.Size == 0 || int64(e.Offset)+int64(e.Size) > int64(c.Len()) {
			return nil, truncated("pack entry %d at %d of %d bytes", i, e.Offset, e.Size)
		}
		next = e.Offset + e.Size
	}
	if entries[0].Offset != uint32(4+packEntrySize*count) {
		return nil, truncated("pack entry 0 does not follow the directory")
	}
	return entries, nil
}

// matchPack accepts a valid directory whose first entry is itself a level.
func matchPack(c *Cursor, name string) (PlatformAndVersion, bool) {
	snap := c.Snapshot()
	defer c.Restore(snap)

	entries, err := readPackDirectory(c)
	if err != nil {
		return PlatformAndVersion{}, false
	}
	first := entries[0]
	sub := NewCursor(c.data[first.Offset : first.Offset+first.Size])
	pv := detect(sub, first.name(), nil, false)
	if !pv.IsKnown() {
		return PlatformAndVersion{}, false
	}
	pv.IsPack = true
	return pv, true
}

// loadPack loads every entry and merges them into one level. Indices that
// point into merged tables are rebased by the size of the tables before them.
func loadPack(d *decoder) error {
	c := NewCursor(d.data)
	entries, err := readPackDirectory(c)
	if err != nil {
		return err
	}
	d.log.Info("Reading pack", zap.Int("entries", len(entries)))
	dir := filepath.Dir(d.name)

	for i, e := range entries {
		name := e.name()
		d.progress(fmt.Sprintf("Loading %s", name))
		o := *d.opts
		o.callbacks = offsetCallbacks{Callbacks: d.opts.callbacks, textileBase: len(d.level.textiles)}
		buf := bytes.Clone(d.data[e.Offset : e.Offset+e.Size])
		entry, err := load(filepath.Join(dir, name), buf, &o, false)
		if err != nil {
			return fmt.Errorf("pack entry %d (%s): %w", i, name, err)
		}
		if entry.pv.Platform != d.pv.Platform || entry.pv.Version != d.pv.Version {
			return fmt.Errorf("pack entry %d (%s): %w", i, name, &UnsupportedVariantError{PV: entry.pv})
		}
		d.log.Debug("Merging pack entry",
			zap.String("name", name),
			zap.Int("rooms", len(entry.rooms)),
			zap.Int("textiles", len(entry.textiles)))
		d.level.merge(entry)
	}

	l := d.level
	l.roomVisible = make([]bool, len(l.rooms))
	for i := range l.roomVisible {
		l.roomVisible[i] = true
	}
	return nil
}

// merge appends e to l. Box, overlap and zone tables are concatenated without
// rebasing. Cluts are concatenated, so texture clut numbers shift by the cluts
// before them; flat colours of Tomb1 PSX meshes can only address the first
// 256 cluts and keep their clut byte.
func (l *Level) merge(e *Level) {
	rooms := len(l.rooms)
	textures := uint16(len(l.objectTextures))
	sprites := uint16(len(l.spriteTextures))
	tiles := uint16(len(l.textiles))
	cluts := uint16(len(l.clut) / clutEntries)
	floor := uint16(len(l.floorData))
	pointers := uint16(len(l.meshPointers))
	meshBase := uint32(l.meshDataSize)
	anims := uint16(len(l.animations))
	changes := uint16(len(l.stateChanges))
	dispatches := uint16(len(l.animDispatches))
	commands := uint16(len(l.animCommands))
	trees := uint32(len(l.meshTrees))
	frameBytes := uint32(len(l.frames) * 2)

	for _, r := range e.rooms {
		rebaseRoom(&r, rooms, textures, sprites, floor)
		l.rooms = append(l.rooms, r)
	}
	l.floorData = append(l.floorData, e.floorData...)

	for _, mesh := range e.meshes {
		mesh.Pointer += meshBase
		rebaseMeshTextures(mesh, textures)
		l.meshes[mesh.Pointer] = mesh
	}
	for _, p := range e.meshPointers {
		l.meshPointers = append(l.meshPointers, p+meshBase)
	}
	l.meshDataSize += e.meshDataSize
	l.meshDecodes += e.meshDecodes

	for _, a := range e.animations {
		a.FrameOffset += frameBytes
		a.NextAnimation += anims
		a.StateChangeOffset += changes
		a.AnimCommand += commands
		l.animations = append(l.animations, a)
	}
	for _, s := range e.stateChanges {
		s.AnimDispatch += dispatches
		l.stateChanges = append(l.stateChanges, s)
	}
	for _, ad := range e.animDispatches {
		ad.NextAnimation += int16(anims)
		l.animDispatches = append(l.animDispatches, ad)
	}
	l.animCommands = append(l.animCommands, e.animCommands...)
	l.meshTrees = append(l.meshTrees, e.meshTrees...)
	l.frames = append(l.frames, e.frames...)

	for _, m := range e.models {
		m.StartingMesh += pointers
		m.MeshTree += trees
		m.FrameOffset += frameBytes
		m.Animation += anims
		l.models = append(l.models, m)
	}
	for _, s := range e.staticMeshes {
		s.Mesh += pointers
		l.staticMeshes = append(l.staticMeshes, s)
	}

	for _, t := range e.objectTextures {
		t.Tile += tiles
		t.Clut += cluts
		l.objectTextures = append(l.objectTextures, t)
	}
	for _, s := range e.spriteSequences {
		s.Offset += int16(sprites)
		l.spriteSequences = append(l.spriteSequences, s)
	}
	for _, s := range e.spriteTextures {
		s.Tile += tiles
		s.Clut += cluts
		l.spriteTextures = append(l.spriteTextures, s)
	}
	l.animatedTextures = append(l.animatedTextures, e.animatedTextures...)
	l.textiles = append(l.textiles, e.textiles...)
	l.clut = append(l.clut, e.clut...)

	l.cameras = append(l.cameras, e.cameras...)
	l.flybyCameras = append(l.flybyCameras, e.flybyCameras...)
	l.soundSources = append(l.soundSources, e.soundSources...)
	l.boxes = append(l.boxes, e.boxes...)
	l.overlaps = append(l.overlaps, e.overlaps...)
	l.zones = append(l.zones, e.zones...)

	for _, ent := range e.entities {
		ent.Room += int16(rooms)
		l.entities = append(l.entities, ent)
	}
	for _, ai := range e.aiObjects {
		ai.Room += uint16(rooms)
		l.aiObjects = append(l.aiObjects, ai)
	}

	if l.palette == nil {
		l.palette, l.palette16 = e.palette, e.palette16
	}
	if l.soundMap == nil && e.soundMap != nil {
		l.soundMap = e.soundMap
		l.soundDetails = e.soundDetails
		l.sampleIndices = e.sampleIndices
		l.samples = e.samples
	}
}

func rebaseRoom(r *Room, rooms int, textures, sprites, floor uint16) {
	for i := range r.Portals {
		r.Portals[i].AdjoiningRoom += uint16(rooms)
	}
	if r.AlternateRoom >= 0 {
		r.AlternateRoom += int16(rooms)
	}
	for i := range r.Sectors {
		s := &r.Sectors[i]
		if s.FloorDataIndex != 0 {
			s.FloorDataIndex += floor
		}
		s.RoomAbove = rebaseRoomLink(s.RoomAbove, rooms)
		s.RoomBelow = rebaseRoomLink(s.RoomBelow, rooms)
	}
	for i := range r.Rectangles {
		r.Rectangles[i].Texture += textures
	}
	for i := range r.Triangles {
		r.Triangles[i].Texture += textures
	}
	for i := range r.Geometry {
		r.Geometry[i].Texture += textures
	}
	for i := range r.Sprites {
		r.Sprites[i].Texture += sprites
	}
}

// rebaseRoomLink moves a sector room link. Links that no longer fit are
// dropped.
func rebaseRoomLink(link uint8, rooms int) uint8 {
	if link == NoRoom {
		return NoRoom
	}
	if int(link)+rooms >= NoRoom {
		return NoRoom
	}
	return link + uint8(rooms)
}

func rebaseMeshTextures(m *Mesh, textures uint16) {
	for i := range m.TexturedRectangles {
		m.TexturedRectangles[i].Texture += textures
	}
	for i := range m.TexturedTriangles {
		m.TexturedTriangles[i].Texture += textures
	}
	for i := range m.Triangles {
		if !m.Triangles[i].Coloured {
			m.Triangles[i].Texture += textures
		}
	}
}
