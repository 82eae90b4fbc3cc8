package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Path is a file path split at an archive boundary.
type Path struct {
	ArchivePath  string
	InternalPath string
}

var archiveExtensions = []string{".zip", ".7z", ".rar"}

// ParsePath splits paths like "levels.zip/DATA/LEVEL1.PHD". It returns nil
// for plain paths and for archive-like components that do not exist on disk.
func ParsePath(path string) (*Path, error) {
	normalized := filepath.ToSlash(path)
	lower := strings.ToLower(normalized)
	for _, ext := range archiveExtensions {
		idx := strings.Index(lower, ext+"/")
		if idx == -1 {
			continue
		}
		archivePath := normalized[:idx+len(ext)]
		if _, err := os.Stat(archivePath); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("stat archive %s: %w", archivePath, err)
		}
		return &Path{
			ArchivePath:  filepath.FromSlash(archivePath),
			InternalPath: normalized[idx+len(ext)+1:],
		}, nil
	}
	return nil, nil
}

// IsArchivePath reports whether path passes through an archive, without
// checking the file system.
func IsArchivePath(path string) bool {
	lower := strings.ToLower(filepath.ToSlash(path))
	for _, ext := range archiveExtensions {
		if strings.Contains(lower, ext+"/") {
			return true
		}
	}
	return false
}
