// Package files reads levels and their companion files from disk, from
// compressed single files and from inside archives.
package files

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Source loads files by path.
type Source interface {
	LoadBytes(path string) ([]byte, error)
	Exists(path string) bool
}

// Disk reads from the local file system. Paths with an .xz or .zst suffix are
// decompressed, and paths through a .zip, .7z or .rar file are read from the
// archive.
type Disk struct{}

// LoadBytes returns the contents of path.
func (Disk) LoadBytes(path string) ([]byte, error) {
	ap, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	var data []byte
	if ap != nil && ap.InternalPath != "" {
		data, err = readFromArchive(ap)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return decompress(path, data)
}

// Exists reports whether path names a readable file.
func (Disk) Exists(path string) bool {
	ap, err := ParsePath(path)
	if err != nil {
		return false
	}
	if ap != nil && ap.InternalPath != "" {
		arc, err := Open(ap.ArchivePath)
		if err != nil {
			return false
		}
		defer arc.Close()
		_, err = find(arc, ap.InternalPath)
		return err == nil
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func readFromArchive(ap *Path) ([]byte, error) {
	arc, err := Open(ap.ArchivePath)
	if err != nil {
		return nil, err
	}
	defer arc.Close()
	r, size, err := arc.Open(ap.InternalPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read %s from %s: %w", ap.InternalPath, ap.ArchivePath, err)
	}
	return data, nil
}

// decompress unpacks data when path carries a compression suffix.
func decompress(path string, data []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xz":
		r, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open xz %s: %w", path, err)
		}
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read xz %s: %w", path, err)
		}
		return out, nil
	case ".zst":
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("read zstd %s: %w", path, err)
		}
		return out, nil
	default:
		return data, nil
	}
}

// TrimCompression removes an .xz or .zst suffix so the level's own extension
// can be inspected.
func TrimCompression(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xz", ".zst":
		return strings.TrimSuffix(path, filepath.Ext(path))
	}
	return path
}

// Memory is an in-memory Source keyed by cleaned slash paths.
type Memory map[string][]byte

func memKey(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

// Add stores data under path.
func (m Memory) Add(path string, data []byte) {
	m[memKey(path)] = data
}

// LoadBytes returns the data stored under path.
func (m Memory) LoadBytes(path string) ([]byte, error) {
	data, ok := m[memKey(path)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return bytes.Clone(data), nil
}

// Exists reports whether path is stored.
func (m Memory) Exists(path string) bool {
	_, ok := m[memKey(path)]
	return ok
}

// IsNotExist reports whether err means a file or archive member is missing.
func IsNotExist(err error) bool {
	var nf FileNotFoundError
	return errors.Is(err, fs.ErrNotExist) || errors.As(err, &nf)
}
