package trlevel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lahm86/trview-sub000/pkg/files"
)

func TestReachableSamples(t *testing.T) {
	details := []SoundDetail{
		{Sample: 5, Characteristics: 0x0002},
		{Sample: 6, Characteristics: 0x0001},
		{Sample: 9, Characteristics: 0xFF00},
	}
	tests := []struct {
		name     string
		soundMap []int16
		want     []sampleRef
	}{
		{"unused entries", []int16{-1, -1}, nil},
		{"detail out of range", []int16{3}, nil},
		{"nibble of two", []int16{0}, []sampleRef{{0, 0, 5}, {0, 0, 6}}},
		{"shared sample", []int16{-1, 0, 1}, []sampleRef{{1, 0, 5}, {1, 0, 6}}},
		{"high bits ignored", []int16{2}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, reachableSamples(tc.soundMap, details))
		})
	}
}

func TestSampleCount(t *testing.T) {
	assert.Equal(t, 2, SoundDetail{Characteristics: 0x1232}.SampleCount())
	assert.Equal(t, 0, SoundDetail{}.SampleCount())
}

func TestOffsetSamples(t *testing.T) {
	s := &offsetSamples{data: []byte("aaabbc"), offsets: []uint32{0, 3, 5}}
	assert.Equal(t, 3, s.count())

	got, ok := s.sample(1)
	require.True(t, ok)
	assert.Equal(t, []byte("bb"), got)

	got, ok = s.sample(2)
	require.True(t, ok)
	assert.Equal(t, []byte("c"), got)

	_, ok = s.sample(3)
	assert.False(t, ok)

	bad := &offsetSamples{data: []byte("ab"), offsets: []uint32{1, 0}}
	_, ok = bad.sample(0)
	assert.False(t, ok, "decreasing offsets")
}

func riffChunk(payload string) []byte {
	buf := new(bytes.Buffer)
	buf.WriteString(riffTag)
	put(buf, uint32(len(payload)))
	buf.WriteString(payload)
	return buf.Bytes()
}

func TestScanRIFFChunks(t *testing.T) {
	data := append(riffChunk("one"), riffChunk("three")...)
	chunks, err := scanRIFFChunks(NewCursor(data))
	require.NoError(t, err)
	require.Equal(t, 2, chunks.count())
	assert.Equal(t, riffChunk("one"), chunks[0])
	assert.Equal(t, riffChunk("three"), chunks[1])

	_, err = scanRIFFChunks(NewCursor([]byte("JUNK\x00\x00\x00\x00")))
	assert.ErrorIs(t, err, ErrTruncatedOrCorrupt)

	_, err = scanRIFFChunks(NewCursor(riffChunk("one")[:9]))
	assert.ErrorIs(t, err, ErrTruncatedOrCorrupt)
}

func TestSoundArchivePaths(t *testing.T) {
	paths := soundArchivePaths("game/data/LEVEL1.PHD")
	assert.Equal(t, []string{"game/data/MAIN.SFX", "game/DATA/MAIN.SFX"}, paths)
}

// remasteredArchive builds a remastered MAIN.SFX: sound map, details, gap
// and RIFF chunks indexed by sample number.
func remasteredArchive(soundMap []int16, details []tr1SoundDetail, chunks ...string) []byte {
	buf := new(bytes.Buffer)
	full := make([]int16, 256)
	for i := range full {
		full[i] = -1
		if i < len(soundMap) {
			full[i] = soundMap[i]
		}
	}
	put(buf, full, uint32(len(details)), details)
	buf.Write(make([]byte, remasteredSFXGap))
	for _, c := range chunks {
		buf.Write(riffChunk(c))
	}
	return buf.Bytes()
}

func TestRemasteredSoundArchive(t *testing.T) {
	src := files.Memory{}
	src.Add("data/LEVEL1.PHD", newTestLevel().bytes())
	src.Add("data/LEVEL1.TRG", []byte{0})
	src.Add("data/MAIN.SFX", remasteredArchive(
		[]int16{-1, 0},
		[]tr1SoundDetail{{Sample: 1, Characteristics: 1}},
		"zero", "one", "two",
	))
	rec := newRecorder()

	level, err := Load("data/LEVEL1.PHD", WithSource(src), WithCallbacks(rec))
	require.NoError(t, err)
	assert.True(t, level.PlatformAndVersion().Remastered)

	// The archive tables replace the ones in the level.
	assert.Equal(t, int16(0), level.SoundMap()[1])
	assert.Equal(t, []int{1}, level.SampleIndices())
	assert.Equal(t, riffChunk("one"), level.Samples()[1])
	assert.Equal(t, riffChunk("one"), rec.samples[1])
}

func TestRemasteredMissingArchive(t *testing.T) {
	src := files.Memory{}
	src.Add("data/LEVEL1.PHD", newTestLevel().bytes())
	src.Add("data/LEVEL1.TRG", []byte{0})

	level, err := Load("data/LEVEL1.PHD", WithSource(src), WithLogger(zap.NewNop()))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, level.SampleIndices(), "embedded samples are used")
}

func TestEmbeddedSamples(t *testing.T) {
	rec := newRecorder()
	level, err := LoadBytes("LEVEL1.PHD", newTestLevel().bytes(), WithSource(files.Memory{}), WithCallbacks(rec))
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, level.SampleIndices())
	assert.Equal(t, []byte("RIFFa"), level.Samples()[0])
	assert.Equal(t, []byte("RIFFbb"), level.Samples()[1])
	assert.Equal(t, level.Samples(), rec.samples)
}
