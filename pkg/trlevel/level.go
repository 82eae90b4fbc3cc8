package trlevel

import (
	"image/color"
	"sort"
)

// Level is a fully decoded level. It is read-only once Load returns, apart
// from SetRoomVisible.
type Level struct {
	name string
	pv   PlatformAndVersion

	palette   []color.RGBA
	palette16 []color.RGBA
	clut      []uint16
	textiles  []Textile

	rooms       []Room
	roomVisible []bool
	floorData   []uint16

	meshPointers []uint32
	meshes       map[uint32]*Mesh
	meshDecodes  int
	meshDataSize int

	animations     []Animation
	stateChanges   []StateChange
	animDispatches []AnimDispatch
	animCommands   []int16
	meshTrees      []int32
	frames         []uint16
	models         []Model
	staticMeshes   []StaticMesh

	objectTextures   []ObjectTexture
	spriteTextures   []SpriteTexture
	spriteSequences  []SpriteSequence
	animatedTextures []uint16

	cameras      []Camera
	flybyCameras []FlybyCamera
	soundSources []SoundSource

	boxes    []Box
	overlaps []uint16
	zones    []uint16

	entities  []Entity
	aiObjects []AIObject

	lightmap        []byte
	cinematicFrames []byte
	demoData        []byte

	soundMap      []int16
	soundDetails  []SoundDetail
	sampleIndices []uint32
	samples       map[int][]byte

	laraType    uint16
	weatherType uint16
}

func newLevel(name string, pv PlatformAndVersion) *Level {
	return &Level{
		name:    name,
		pv:      pv,
		meshes:  make(map[uint32]*Mesh),
		samples: make(map[int][]byte),
	}
}

// Name returns the name the level was loaded under.
func (l *Level) Name() string { return l.name }

// PlatformAndVersion returns the detected layout.
func (l *Level) PlatformAndVersion() PlatformAndVersion { return l.pv }

// Version returns the engine version.
func (l *Level) Version() Version { return l.pv.Version }

// NumRooms returns the number of rooms.
func (l *Level) NumRooms() int { return len(l.rooms) }

// Room returns room i.
func (l *Level) Room(i int) (Room, bool) {
	if i < 0 || i >= len(l.rooms) {
		return Room{}, false
	}
	return l.rooms[i], true
}

// RoomVisible reports the consumer visibility flag of room i.
func (l *Level) RoomVisible(i int) bool {
	if i < 0 || i >= len(l.roomVisible) {
		return false
	}
	return l.roomVisible[i]
}

// SetRoomVisible sets the consumer visibility flag of room i.
func (l *Level) SetRoomVisible(i int, visible bool) {
	if i >= 0 && i < len(l.roomVisible) {
		l.roomVisible[i] = visible
	}
}

// NumObjectTextures returns the number of object textures.
func (l *Level) NumObjectTextures() int { return len(l.objectTextures) }

// ObjectTexture returns object texture i.
func (l *Level) ObjectTexture(i int) (ObjectTexture, bool) {
	if i < 0 || i >= len(l.objectTextures) {
		return ObjectTexture{}, false
	}
	return l.objectTextures[i], true
}

// NumTextiles returns the number of texture pages.
func (l *Level) NumTextiles() int { return len(l.textiles) }

// NumEntities returns the number of entities.
func (l *Level) NumEntities() int { return len(l.entities) }

// Entity returns entity i.
func (l *Level) Entity(i int) (Entity, bool) {
	if i < 0 || i >= len(l.entities) {
		return Entity{}, false
	}
	return l.entities[i], true
}

// NumAIObjects returns the number of AI objects.
func (l *Level) NumAIObjects() int { return len(l.aiObjects) }

// AIObject returns AI object i.
func (l *Level) AIObject(i int) (AIObject, bool) {
	if i < 0 || i >= len(l.aiObjects) {
		return AIObject{}, false
	}
	return l.aiObjects[i], true
}

// NumModels returns the number of models.
func (l *Level) NumModels() int { return len(l.models) }

// Model returns model i.
func (l *Level) Model(i int) (Model, bool) {
	if i < 0 || i >= len(l.models) {
		return Model{}, false
	}
	return l.models[i], true
}

// ModelByID returns the model with the given type ID.
func (l *Level) ModelByID(id uint32) (Model, bool) {
	for _, m := range l.models {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// NumStaticMeshes returns the number of static mesh definitions.
func (l *Level) NumStaticMeshes() int { return len(l.staticMeshes) }

// StaticMesh returns the static mesh definition with the given ID.
func (l *Level) StaticMesh(id uint32) (StaticMesh, bool) {
	for _, s := range l.staticMeshes {
		if s.ID == id {
			return s, true
		}
	}
	return StaticMesh{}, false
}

// NumMeshPointers returns the number of entries in the mesh pointer table.
func (l *Level) NumMeshPointers() int { return len(l.meshPointers) }

// MeshByPointer returns the mesh referenced by mesh pointer table entry i.
// Entries that alias the same offset return the same *Mesh.
func (l *Level) MeshByPointer(i int) *Mesh {
	if i < 0 || i >= len(l.meshPointers) {
		return nil
	}
	return l.meshes[l.meshPointers[i]]
}

// NumMeshes returns the number of distinct decoded meshes.
func (l *Level) NumMeshes() int { return len(l.meshes) }

// MeshDecodes returns how many times the mesh decoder ran during the load.
func (l *Level) MeshDecodes() int { return l.meshDecodes }

// MeshTree returns count mesh tree nodes starting at word index start.
func (l *Level) MeshTree(start, count int) []MeshTreeNode {
	if start < 0 || count <= 0 {
		return nil
	}
	nodes := make([]MeshTreeNode, 0, count)
	for i := 0; i < count; i++ {
		at := start + i*4
		if at+4 > len(l.meshTrees) {
			break
		}
		nodes = append(nodes, MeshTreeNode{
			Flags:  uint32(l.meshTrees[at]),
			Offset: [3]int32{l.meshTrees[at+1], l.meshTrees[at+2], l.meshTrees[at+3]},
		})
	}
	return nodes
}

// Frame decodes the keyframe at word offset. An offset past the end of the
// frame stream yields a zero Frame.
func (l *Level) Frame(offset, meshCount int) Frame {
	return decodeFrame(l.frames, l.pv, offset, meshCount)
}

// NumFrameWords returns the length of the frame stream in words.
func (l *Level) NumFrameWords() int { return len(l.frames) }

// Animations returns the animation records.
func (l *Level) Animations() []Animation { return l.animations }

// StateChanges returns the state change records.
func (l *Level) StateChanges() []StateChange { return l.stateChanges }

// AnimDispatches returns the animation dispatch records.
func (l *Level) AnimDispatches() []AnimDispatch { return l.animDispatches }

// SpriteTextures returns the sprite textures.
func (l *Level) SpriteTextures() []SpriteTexture { return l.spriteTextures }

// SpriteSequences returns the sprite sequences.
func (l *Level) SpriteSequences() []SpriteSequence { return l.spriteSequences }

// Cameras returns the fixed cameras.
func (l *Level) Cameras() []Camera { return l.cameras }

// FlybyCameras returns the flyby camera nodes.
func (l *Level) FlybyCameras() []FlybyCamera { return l.flybyCameras }

// Boxes returns the pathfinding boxes.
func (l *Level) Boxes() []Box { return l.boxes }

// PaletteEntry8 returns entry index of the 8-bit palette.
func (l *Level) PaletteEntry8(index int) color.RGBA {
	if index < 0 || index >= len(l.palette) {
		return color.RGBA{}
	}
	return l.palette[index]
}

// PaletteEntry16 returns entry index of the 16-bit palette.
func (l *Level) PaletteEntry16(index int) color.RGBA {
	if index < 0 || index >= len(l.palette16) {
		return color.RGBA{}
	}
	return l.palette16[index]
}

// PaletteEntry4 returns a PSX clut colour. The high byte of index selects
// the clut and the low nibble the entry.
func (l *Level) PaletteEntry4(index uint16) color.RGBA {
	i := int(index>>8)*clutEntries + int(index&0xF)
	if i >= len(l.clut) {
		return color.RGBA{}
	}
	return bgr555(l.clut[i])
}

// ResolveColour returns the flat colour of an untextured face.
func (l *Level) ResolveColour(texture uint16) color.RGBA {
	switch {
	case l.pv.Platform == PlatformPSX && l.pv.Version == Tomb1:
		return l.PaletteEntry4(texture)
	case l.pv.Version < Tomb4:
		return l.PaletteEntry8(int(texture & 0xFF))
	default:
		return argb1555(texture)
	}
}

// NumFloorData returns the number of floor data words.
func (l *Level) NumFloorData() int { return len(l.floorData) }

// FloorData returns floor data word i.
func (l *Level) FloorData(i int) uint16 {
	if i < 0 || i >= len(l.floorData) {
		return 0
	}
	return l.floorData[i]
}

// FloorDataAll returns every floor data word.
func (l *Level) FloorDataAll() []uint16 { return l.floorData }

// SoundSources returns the positional sounds.
func (l *Level) SoundSources() []SoundSource { return l.soundSources }

// SoundDetails returns the sound effect details.
func (l *Level) SoundDetails() []SoundDetail { return l.soundDetails }

// SoundMap returns the sound map; -1 marks an unused effect.
func (l *Level) SoundMap() []int16 { return l.soundMap }

// Samples returns the reachable samples keyed by sample index.
func (l *Level) Samples() map[int][]byte { return l.samples }

// LaraType returns the Tomb5 Lara variant.
func (l *Level) LaraType() uint16 { return l.laraType }

// WeatherType returns the Tomb5 weather setting.
func (l *Level) WeatherType() uint16 { return l.weatherType }

// SampleIndices returns the sorted indices of the loaded samples.
func (l *Level) SampleIndices() []int {
	out := make([]int, 0, len(l.samples))
	for i := range l.samples {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
