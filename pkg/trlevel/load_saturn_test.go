package trlevel

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// saturnChunkTo writes a chunk header: padded tag, element size and count.
func saturnChunkTo(buf *bytes.Buffer, tag string, elemSize, count uint32) {
	var raw [saturnTagLen]byte
	copy(raw[:], tag)
	buf.Write(raw[:])
	binary.Write(buf, binary.BigEndian, elemSize)
	binary.Write(buf, binary.BigEndian, count)
}

// testSaturnLevel builds a Tomb1 Saturn level with empty sections, one
// entity and a full palette. sizes overrides declared element sizes by tag.
func testSaturnLevel(sizes map[string]uint32) []byte {
	d := &decoder{pv: PlatformAndVersion{Platform: PlatformSaturn, Version: Tomb1}}
	buf := new(bytes.Buffer)
	for _, s := range d.saturnSections() {
		size := uint32(s.size)
		if v, ok := sizes[s.tag]; ok {
			size = v
		}
		switch s.tag {
		case saturnRoomFile:
			saturnChunkTo(buf, s.tag, size, 1)
			binary.Write(buf, binary.BigEndian, rawVersionTR1)
		case "ROOMTPAL":
			saturnChunkTo(buf, s.tag, size, paletteSize8/3)
			buf.Write(bytes.Repeat([]byte{0x3F}, paletteSize8))
		case "ITEMDATA":
			saturnChunkTo(buf, s.tag, size, 1)
			binary.Write(buf, binary.BigEndian, tr1Entity{TypeID: 0, Room: 0, X: 1024, Y: -256, Z: 2048, Angle: 0x4000, Intensity: -1})
		case "SOUNDMAP":
			saturnChunkTo(buf, s.tag, size, 256)
			for i := 0; i < 256; i++ {
				binary.Write(buf, binary.BigEndian, int16(-1))
			}
		default:
			saturnChunkTo(buf, s.tag, size, 0)
		}
	}
	return buf.Bytes()
}

func TestLoadSaturn(t *testing.T) {
	data := testSaturnLevel(nil)

	level, err := LoadBytes("LEVEL1.SAT", data)
	require.NoError(t, err)

	pv := level.PlatformAndVersion()
	assert.Equal(t, PlatformSaturn, pv.Platform)
	assert.Equal(t, Tomb1, pv.Version)
	assert.Zero(t, level.NumRooms())
	require.Equal(t, 1, level.NumEntities())

	e, ok := level.Entity(0)
	require.True(t, ok)
	assert.Equal(t, Entity{X: 1024, Y: -256, Z: 2048, Angle: 0x4000, Intensity1: -1}, e)
	assert.Equal(t, uint8(0xFC), level.PaletteEntry8(5).R)
	assert.Len(t, level.SoundMap(), 256)
}

func TestLoadSaturnBadElementSize(t *testing.T) {
	data := testSaturnLevel(map[string]uint32{"CAMERASV": 12})

	_, err := LoadBytes("LEVEL1.SAT", data)
	assert.ErrorIs(t, err, ErrTruncatedOrCorrupt)
}

func TestLoadSaturnMissingChunk(t *testing.T) {
	data := testSaturnLevel(nil)
	// Cut the level off inside the chunk chain.
	_, err := LoadBytes("LEVEL1.SAT", data[:len(data)-20])
	assert.ErrorIs(t, err, ErrTruncatedOrCorrupt)
}

func TestReadSaturnChunk(t *testing.T) {
	buf := new(bytes.Buffer)
	saturnChunkTo(buf, "ENDFILE", 2, 2)
	buf.Write([]byte{1, 2, 3, 4})

	ch, err := readSaturnChunk(NewCursor(buf.Bytes()).WithOrder(binary.BigEndian))
	require.NoError(t, err)
	assert.Equal(t, "ENDFILE", ch.tag)
	assert.Equal(t, uint32(2), ch.elemSize)
	assert.Equal(t, uint32(2), ch.count)
	assert.Equal(t, []byte{1, 2, 3, 4}, ch.data)

	_, err = readSaturnChunk(NewCursor(buf.Bytes()[:20]).WithOrder(binary.BigEndian))
	assert.ErrorIs(t, err, ErrTruncatedOrCorrupt)
}
