package files

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func writeZIP(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestDiskPlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "LEVEL1.PHD")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	var d Disk
	assert.True(t, d.Exists(path))
	assert.False(t, d.Exists(dir))
	assert.False(t, d.Exists(filepath.Join(dir, "MISSING.PHD")))

	data, err := d.LoadBytes(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, err = d.LoadBytes(filepath.Join(dir, "MISSING.PHD"))
	assert.True(t, IsNotExist(err))
}

func TestDiskCompressed(t *testing.T) {
	dir := t.TempDir()
	payload := bytes.Repeat([]byte("level"), 100)

	var xzBuf bytes.Buffer
	xw, err := xz.NewWriter(&xzBuf)
	require.NoError(t, err)
	_, err = xw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, xw.Close())
	xzPath := filepath.Join(dir, "LEVEL1.PHD.xz")
	require.NoError(t, os.WriteFile(xzPath, xzBuf.Bytes(), 0o644))

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zstPath := filepath.Join(dir, "LEVEL2.PHD.zst")
	require.NoError(t, os.WriteFile(zstPath, enc.EncodeAll(payload, nil), 0o644))
	require.NoError(t, enc.Close())

	tests := []struct {
		name string
		path string
	}{
		{"xz", xzPath},
		{"zstd", zstPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Disk{}.LoadBytes(tt.path)
			require.NoError(t, err)
			assert.Equal(t, payload, data)
		})
	}

	_, err = Disk{}.LoadBytes(filepath.Join(dir, "BROKEN.xz"))
	assert.Error(t, err)
}

func TestTrimCompression(t *testing.T) {
	assert.Equal(t, "a/LEVEL1.PHD", TrimCompression("a/LEVEL1.PHD.xz"))
	assert.Equal(t, "LEVEL1.TR2", TrimCompression("LEVEL1.TR2.ZST"))
	assert.Equal(t, "LEVEL1.TR2", TrimCompression("LEVEL1.TR2"))
}

func TestDiskArchive(t *testing.T) {
	dir := t.TempDir()
	arcPath := filepath.Join(dir, "levels.zip")
	writeZIP(t, arcPath, map[string][]byte{
		"DATA/LEVEL1.PHD": {0x20, 0, 0, 0},
		"DATA/MAIN.SFX":   []byte("RIFF"),
	})

	var d Disk
	inner := filepath.Join(arcPath, "DATA", "LEVEL1.PHD")
	assert.True(t, d.Exists(inner))
	assert.True(t, d.Exists(filepath.Join(arcPath, "data", "main.sfx")))
	assert.False(t, d.Exists(filepath.Join(arcPath, "DATA", "LEVEL2.PHD")))

	data, err := d.LoadBytes(inner)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x20, 0, 0, 0}, data)

	_, err = d.LoadBytes(filepath.Join(arcPath, "DATA", "LEVEL2.PHD"))
	var nf FileNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "DATA/LEVEL2.PHD", nf.InternalPath)
	assert.True(t, IsNotExist(err))
}

func TestArchiveList(t *testing.T) {
	dir := t.TempDir()
	arcPath := filepath.Join(dir, "levels.zip")
	writeZIP(t, arcPath, map[string][]byte{"A.PHD": {1}, "B/C.TR2": {1, 2}})

	arc, err := Open(arcPath)
	require.NoError(t, err)
	defer arc.Close()
	list, err := arc.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []FileInfo{{Name: "A.PHD", Size: 1}, {Name: "B/C.TR2", Size: 2}}, list)

	_, err = Open(filepath.Join(dir, "levels.tar"))
	var fe FormatError
	assert.ErrorAs(t, err, &fe)
}

func TestParsePath(t *testing.T) {
	dir := t.TempDir()
	arcPath := filepath.Join(dir, "pack.7z")
	require.NoError(t, os.WriteFile(arcPath, nil, 0o644))

	p, err := ParsePath(filepath.Join(arcPath, "LEVEL1.PHD"))
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, arcPath, p.ArchivePath)
	assert.Equal(t, "LEVEL1.PHD", p.InternalPath)

	p, err = ParsePath(filepath.Join(dir, "missing.zip", "LEVEL1.PHD"))
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = ParsePath(filepath.Join(dir, "LEVEL1.PHD"))
	require.NoError(t, err)
	assert.Nil(t, p)

	assert.True(t, IsArchivePath("a/b.RAR/c.tr4"))
	assert.False(t, IsArchivePath("a/b.rar"))
}

func TestMemory(t *testing.T) {
	m := Memory{}
	m.Add("levels/DATA/MAIN.SFX", []byte{1})
	assert.True(t, m.Exists("levels/DATA/../DATA/MAIN.SFX"))
	data, err := m.LoadBytes(filepath.Join("levels", "DATA", "MAIN.SFX"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, data)

	data[0] = 9
	again, _ := m.LoadBytes("levels/DATA/MAIN.SFX")
	assert.Equal(t, byte(1), again[0])

	_, err = m.LoadBytes("nope")
	assert.True(t, IsNotExist(err))
}
