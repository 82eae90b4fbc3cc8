package trlevel

import (
	trmath "github.com/lahm86/trview-sub000/pkg/math"
)

// Vertex is a position in level units.
type Vertex struct {
	X, Y, Z int16
}

// RoomInfo is the world placement of a room.
type RoomInfo struct {
	X       int32
	Z       int32
	YBottom int32
	YTop    int32
}

// RoomVertex is a room vertex with its lighting attributes. Fields a variant
// does not store are zero.
type RoomVertex struct {
	Position   Vertex
	Lighting   int16
	Attributes uint16
	Lighting2  int16
	Colour     uint16
	Normal     trmath.Vec3 // Tomb5 only
}

type tr1RoomVertex struct {
	Position Vertex
	Lighting int16
}

type tr2RoomVertex struct {
	Position   Vertex
	Lighting   int16
	Attributes uint16
	Lighting2  int16
}

type tr3RoomVertex struct {
	Position   Vertex
	Lighting   int16
	Attributes uint16
	Colour     uint16
}

type psxRoomVertex struct {
	Position Vertex
	Colour   uint16
}

type tr5RoomVertex struct {
	X, Y, Z    float32
	Nx, Ny, Nz float32
	Colour     uint32
}

// Face4 is a textured or coloured quad. Texture holds the 15-bit texture index
// once the level is loaded; the double-sided bit is split out.
type Face4 struct {
	Vertices    [4]uint16
	Texture     uint16
	DoubleSided bool
	Effects     uint16
}

// Face3 is a textured or coloured triangle.
type Face3 struct {
	Vertices    [3]uint16
	Texture     uint16
	DoubleSided bool
	Effects     uint16
}

// Triangle is one renderable triangle produced from the faces of a room or mesh.
type Triangle struct {
	Vertices [3]uint16
	Texture  uint16
	Coloured bool
}

type rawFace4 struct {
	Vertices [4]uint16
	Texture  uint16
}

type rawFace3 struct {
	Vertices [3]uint16
	Texture  uint16
}

type rawFace4Effects struct {
	Vertices [4]uint16
	Texture  uint16
	Effects  uint16
}

type rawFace3Effects struct {
	Vertices [3]uint16
	Texture  uint16
	Effects  uint16
}

func (f rawFace4) face() Face4 { return Face4{Vertices: f.Vertices, Texture: f.Texture} }
func (f rawFace3) face() Face3 { return Face3{Vertices: f.Vertices, Texture: f.Texture} }

func (f rawFace4Effects) face() Face4 {
	return Face4{Vertices: f.Vertices, Texture: f.Texture, Effects: f.Effects}
}

func (f rawFace3Effects) face() Face3 {
	return Face3{Vertices: f.Vertices, Texture: f.Texture, Effects: f.Effects}
}

// RoomSprite places a sprite texture on a room vertex.
type RoomSprite struct {
	Vertex  uint16
	Texture uint16
}

// Portal is an opening from one room into another.
type Portal struct {
	AdjoiningRoom uint16
	Normal        Vertex
	Vertices      [4]Vertex
}

type rawSector struct {
	FloorDataIndex uint16
	BoxIndex       uint16
	RoomBelow      uint8
	Floor          int8
	RoomAbove      uint8
	Ceiling        int8
}

// NoRoom marks an absent room reference in sector data.
const NoRoom = 0xFF

// SectorFlags are derived from floor data and sector links.
type SectorFlags uint32

const (
	SectorPortal SectorFlags = 1 << iota
	SectorDeath
	SectorTrigger
	SectorClimbableNorth
	SectorClimbableEast
	SectorClimbableSouth
	SectorClimbableWest
	SectorMonkeySwing
	SectorRoomAbove
	SectorRoomBelow
	SectorMinecartLeft
	SectorMinecartRight

	SectorClimbable = SectorClimbableNorth | SectorClimbableEast | SectorClimbableSouth | SectorClimbableWest

	// sectorPropagated are the flags copied up through stacked rooms.
	sectorPropagated = SectorClimbable | SectorMonkeySwing
)

// Has reports whether all flags in f are set.
func (s SectorFlags) Has(f SectorFlags) bool { return s&f == f }

// Sector is one floor cell of a room.
type Sector struct {
	FloorDataIndex uint16
	BoxIndex       uint16
	RoomBelow      uint8
	Floor          int8
	RoomAbove      uint8
	Ceiling        int8
	Flags          SectorFlags
}

// Light is a room light. Fields a variant does not store are zero.
type Light struct {
	X, Y, Z    int32
	Colour     [3]uint8
	Type       uint8
	Intensity  int32
	Intensity2 int32
	Fade       int32
	Fade2      int32
	In, Out    float32
	Length     float32
	Cutoff     float32
	Direction  trmath.Vec3
}

type tr1Light struct {
	X, Y, Z   int32
	Intensity uint16
	Fade      uint32
}

type tr2Light struct {
	X, Y, Z    int32
	Intensity1 uint16
	Intensity2 uint16
	Fade1      uint32
	Fade2      uint32
}

type tr3Light struct {
	X, Y, Z   int32
	Colour    [3]uint8
	Type      uint8
	Intensity int32
	Fade      int32
}

type tr4Light struct {
	X, Y, Z    int32
	Colour     [3]uint8
	Type       uint8
	Unknown    uint8
	Intensity  uint8
	In, Out    float32
	Length     float32
	Cutoff     float32
	Dx, Dy, Dz float32
}

type tr5Light struct {
	X, Y, Z       float32
	R, G, B       float32
	Separator     uint32
	In, Out       float32
	RadIn, RadOut float32
	Range         float32
	Dx, Dy, Dz    float32
	X2, Y2, Z2    int32
	Dx2, Dy2, Dz2 int32
	Type          uint8
	Filler        [3]uint8
}

// RoomStaticMesh is an instance of a static mesh placed in a room.
type RoomStaticMesh struct {
	X, Y, Z    int32
	Rotation   uint16
	Intensity  uint16
	Intensity2 uint16
	Colour     uint16
	MeshID     uint16
}

type tr1RoomStaticMesh struct {
	X, Y, Z   int32
	Rotation  uint16
	Intensity uint16
	MeshID    uint16
}

type tr2RoomStaticMesh struct {
	X, Y, Z    int32
	Rotation   uint16
	Intensity1 uint16
	Intensity2 uint16
	MeshID     uint16
}

type tr3RoomStaticMesh struct {
	X, Y, Z  int32
	Rotation uint16
	Colour   uint16
	Unused   uint16
	MeshID   uint16
}

// Room is one decoded room.
type Room struct {
	Info           RoomInfo
	Vertices       []RoomVertex
	Rectangles     []Face4
	Triangles      []Face3
	Sprites        []RoomSprite
	Portals        []Portal
	NumZSectors    uint16
	NumXSectors    uint16
	Sectors        []Sector
	Ambient        int16
	Ambient2       int16
	LightMode      int16
	Colour         uint32
	Lights         []Light
	StaticMeshes   []RoomStaticMesh
	AlternateRoom  int16
	Flags          uint16
	WaterScheme    uint8
	ReverbInfo     uint8
	AlternateGroup uint8
	Geometry       []Triangle
}

// Sector returns the sector at grid position x, z.
func (r *Room) Sector(x, z int) (*Sector, bool) {
	if x < 0 || z < 0 || x >= int(r.NumXSectors) || z >= int(r.NumZSectors) {
		return nil, false
	}
	i := x*int(r.NumZSectors) + z
	if i >= len(r.Sectors) {
		return nil, false
	}
	return &r.Sectors[i], true
}

// Entity is a placed item.
type Entity struct {
	TypeID     int16
	Room       int16
	X, Y, Z    int32
	Angle      int16
	Intensity1 int16
	Intensity2 int16
	OCB        int16
	Flags      uint16
}

type tr1Entity struct {
	TypeID    int16
	Room      int16
	X, Y, Z   int32
	Angle     int16
	Intensity int16
	Flags     uint16
}

type tr2Entity struct {
	TypeID     int16
	Room       int16
	X, Y, Z    int32
	Angle      int16
	Intensity1 int16
	Intensity2 int16
	Flags      uint16
}

type tr4Entity struct {
	TypeID    int16
	Room      int16
	X, Y, Z   int32
	Angle     int16
	Intensity int16
	OCB       int16
	Flags     uint16
}

// AIObject is a Tomb4+ AI marker.
type AIObject struct {
	TypeID uint16
	Room   uint16
	X      int32
	Y      int32
	Z      int32
	OCB    int16
	Flags  uint16
	Angle  int32
}

// Animation is one animation record. Lateral fields are Tomb4+ only.
type Animation struct {
	FrameOffset       uint32
	FrameRate         uint8
	FrameSize         uint8
	StateID           uint16
	Speed             int32
	Accel             int32
	LateralSpeed      int32
	LateralAccel      int32
	FrameStart        uint16
	FrameEnd          uint16
	NextAnimation     uint16
	NextFrame         uint16
	NumStateChanges   uint16
	StateChangeOffset uint16
	NumAnimCommands   uint16
	AnimCommand       uint16
}

type tr1Animation struct {
	FrameOffset       uint32
	FrameRate         uint8
	FrameSize         uint8
	StateID           uint16
	Speed             int32
	Accel             int32
	FrameStart        uint16
	FrameEnd          uint16
	NextAnimation     uint16
	NextFrame         uint16
	NumStateChanges   uint16
	StateChangeOffset uint16
	NumAnimCommands   uint16
	AnimCommand       uint16
}

type tr4Animation struct {
	FrameOffset       uint32
	FrameRate         uint8
	FrameSize         uint8
	StateID           uint16
	Speed             int32
	Accel             int32
	LateralSpeed      int32
	LateralAccel      int32
	FrameStart        uint16
	FrameEnd          uint16
	NextAnimation     uint16
	NextFrame         uint16
	NumStateChanges   uint16
	StateChangeOffset uint16
	NumAnimCommands   uint16
	AnimCommand       uint16
}

// StateChange links a state to a range of dispatches.
type StateChange struct {
	StateID           uint16
	NumAnimDispatches uint16
	AnimDispatch      uint16
}

// AnimDispatch is a frame range that switches animation.
type AnimDispatch struct {
	Low           int16
	High          int16
	NextAnimation int16
	NextFrame     int16
}

// Model is a moveable object definition.
type Model struct {
	ID           uint32
	NumMeshes    uint16
	StartingMesh uint16
	MeshTree     uint32
	FrameOffset  uint32
	Animation    uint16
}

type tr5Model struct {
	ID           uint32
	NumMeshes    uint16
	StartingMesh uint16
	MeshTree     uint32
	FrameOffset  uint32
	Animation    uint16
	_            uint16
}

// BoundingBox is an axis aligned box in level units.
type BoundingBox struct {
	MinX, MaxX int16
	MinY, MaxY int16
	MinZ, MaxZ int16
}

// StaticMesh is a static object definition.
type StaticMesh struct {
	ID         uint32
	Mesh       uint16
	Visibility BoundingBox
	Collision  BoundingBox
	Flags      uint16
}

// ObjectTextureVertex is one corner of an object texture in tile pixels.
type ObjectTextureVertex struct {
	X, Y uint8
}

// ObjectTexture maps a texture index onto a textile.
type ObjectTexture struct {
	Attribute uint16
	Tile      uint16
	Flags     uint16
	Clut      uint16
	Vertices  [4]ObjectTextureVertex
	Width     uint32
	Height    uint32
}

type pcTextureVertex struct {
	XCoordinate uint8
	XPixel      uint8
	YCoordinate uint8
	YPixel      uint8
}

type tr1ObjectTexture struct {
	Attribute   uint16
	TileAndFlag uint16
	Vertices    [4]pcTextureVertex
}

type tr4ObjectTexture struct {
	Attribute   uint16
	TileAndFlag uint16
	NewFlags    uint16
	Vertices    [4]pcTextureVertex
	OriginalU   uint32
	OriginalV   uint32
	Width       uint32
	Height      uint32
}

type tr5ObjectTexture struct {
	Attribute   uint16
	TileAndFlag uint16
	NewFlags    uint16
	Vertices    [4]pcTextureVertex
	OriginalU   uint32
	OriginalV   uint32
	Width       uint32
	Height      uint32
	_           uint16
}

type psxObjectTexture struct {
	X0, Y0    uint8
	Clut      uint16
	X1, Y1    uint8
	Tile      uint16
	X2, Y2    uint8
	Unknown   uint16
	X3, Y3    uint8
	Attribute uint16
}

// SpriteTexture is a sprite's placement on a textile.
type SpriteTexture struct {
	Tile   uint16
	X, Y   uint8
	Width  uint16
	Height uint16
	Left   int16
	Top    int16
	Right  int16
	Bottom int16
	Clut   uint16
}

type pcSpriteTexture struct {
	Tile   uint16
	X, Y   uint8
	Width  uint16
	Height uint16
	Left   int16
	Top    int16
	Right  int16
	Bottom int16
}

type psxSpriteTexture struct {
	Left, Top     int16
	Right, Bottom int16
	Clut          uint16
	Tile          uint16
	U0, V0        uint8
	U1, V1        uint8
}

// SpriteSequence groups sprite textures for an object ID.
type SpriteSequence struct {
	SpriteID       int32
	NegativeLength int16
	Offset         int16
}

// Camera is a fixed camera position.
type Camera struct {
	X, Y, Z int32
	Room    int16
	Flag    uint16
}

// FlybyCamera is a Tomb4+ flyby camera node.
type FlybyCamera struct {
	X, Y, Z    int32
	Dx, Dy, Dz int32
	Sequence   uint8
	Index      uint8
	FOV        uint16
	Roll       int16
	Timer      uint16
	Speed      uint16
	Flags      uint16
	Room       uint32
}

// SoundSource is a positional ambient sound.
type SoundSource struct {
	X, Y, Z int32
	SoundID uint16
	Flags   uint16
}

// SoundDetail describes one sound effect. Range and Pitch are Tomb3+ only.
type SoundDetail struct {
	Sample          uint16
	Volume          uint16
	Range           uint8
	Chance          uint16
	Pitch           uint8
	Characteristics uint16
}

// SampleCount is the number of consecutive samples the effect can pick from.
func (d SoundDetail) SampleCount() int {
	return int(d.Characteristics & 0xF)
}

type tr1SoundDetail struct {
	Sample          uint16
	Volume          uint16
	Chance          uint16
	Characteristics uint16
}

type tr3SoundDetail struct {
	Sample          uint16
	Volume          uint8
	Range           uint8
	Chance          uint8
	Pitch           uint8
	Characteristics uint16
}

// Box is a pathfinding box in sector units.
type Box struct {
	Zmin, Zmax   uint32
	Xmin, Xmax   uint32
	TrueFloor    int16
	OverlapIndex int16
}

type tr1Box struct {
	Zmin, Zmax   uint32
	Xmin, Xmax   uint32
	TrueFloor    int16
	OverlapIndex int16
}

type tr2Box struct {
	Zmin, Zmax   uint8
	Xmin, Xmax   uint8
	TrueFloor    int16
	OverlapIndex int16
}

// Mesh is a decoded mesh. Normals and Lights are mutually exclusive.
type Mesh struct {
	Pointer            uint32
	Centre             Vertex
	CollisionRadius    int32
	Flags              uint16
	Vertices           []Vertex
	Normals            []Vertex
	Lights             []int16
	TexturedRectangles []Face4
	TexturedTriangles  []Face3
	ColouredRectangles []Face4
	ColouredTriangles  []Face3
	Triangles          []Triangle
}

// MeshTreeNode positions a model mesh relative to its parent.
type MeshTreeNode struct {
	Flags  uint32
	Offset [3]int32
}

// Frame is one decoded keyframe.
type Frame struct {
	BoundingBox BoundingBox
	Offset      Vertex
	NumValues   uint16
	Rotations   []trmath.Vec3
}

// Orientation returns the rotation of mesh i as a quaternion.
func (f Frame) Orientation(i int) trmath.Quat {
	if i < 0 || i >= len(f.Rotations) {
		return trmath.QuatIdentity()
	}
	return trmath.QuatFromEuler(f.Rotations[i])
}

// Textile is one texture page before colour conversion.
type Textile struct {
	Width  int
	Height int
	Format TextileFormat
	Data   []byte
}

// TextileFormat is the pixel encoding of a textile.
type TextileFormat int

const (
	Textile8 TextileFormat = iota
	Textile16
	Textile32
	Textile4
)
