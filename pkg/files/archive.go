package files

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode/v2"
)

// FileInfo describes a file in an archive.
type FileInfo struct {
	Name string
	Size int64
}

// Archive provides read access to the files in an archive.
type Archive interface {
	// List returns all files in the archive.
	List() ([]FileInfo, error)

	// Open opens a file within the archive. Names match case-insensitively.
	Open(internalPath string) (io.ReadCloser, int64, error)

	Close() error
}

// Open opens an archive file based on its extension.
func Open(path string) (Archive, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".zip":
		return OpenZIP(path)
	case ".7z":
		return OpenSevenZip(path)
	case ".rar":
		return OpenRAR(path)
	default:
		return nil, FormatError{Format: ext}
	}
}

// IsArchiveExtension checks if an extension is a supported archive format.
func IsArchiveExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".zip", ".7z", ".rar":
		return true
	default:
		return false
	}
}

// find returns the entry matching internalPath.
func find(arc Archive, internalPath string) (FileInfo, error) {
	list, err := arc.List()
	if err != nil {
		return FileInfo{}, err
	}
	internalPath = filepath.ToSlash(internalPath)
	for _, f := range list {
		if strings.EqualFold(f.Name, internalPath) {
			return f, nil
		}
	}
	return FileInfo{}, FileNotFoundError{InternalPath: internalPath}
}

// ZIPArchive provides access to files in a ZIP archive.
type ZIPArchive struct {
	reader *zip.ReadCloser
	path   string
}

// OpenZIP opens a ZIP archive for reading.
func OpenZIP(path string) (*ZIPArchive, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open ZIP archive: %w", err)
	}
	return &ZIPArchive{reader: reader, path: path}, nil
}

func (za *ZIPArchive) List() ([]FileInfo, error) {
	files := make([]FileInfo, 0, len(za.reader.File))
	for _, file := range za.reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		files = append(files, FileInfo{Name: file.Name, Size: int64(file.UncompressedSize64)})
	}
	return files, nil
}

func (za *ZIPArchive) Open(internalPath string) (io.ReadCloser, int64, error) {
	internalPath = filepath.ToSlash(internalPath)
	for _, file := range za.reader.File {
		if strings.EqualFold(file.Name, internalPath) {
			reader, err := file.Open()
			if err != nil {
				return nil, 0, fmt.Errorf("open file in ZIP: %w", err)
			}
			return reader, int64(file.UncompressedSize64), nil
		}
	}
	return nil, 0, FileNotFoundError{Archive: za.path, InternalPath: internalPath}
}

func (za *ZIPArchive) Close() error {
	return za.reader.Close()
}

// SevenZipArchive provides access to files in a 7z archive.
type SevenZipArchive struct {
	reader *sevenzip.ReadCloser
	path   string
}

// OpenSevenZip opens a 7z archive for reading.
func OpenSevenZip(path string) (*SevenZipArchive, error) {
	reader, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open 7z archive: %w", err)
	}
	return &SevenZipArchive{reader: reader, path: path}, nil
}

func (sza *SevenZipArchive) List() ([]FileInfo, error) {
	files := make([]FileInfo, 0, len(sza.reader.File))
	for _, file := range sza.reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		files = append(files, FileInfo{Name: file.Name, Size: int64(file.UncompressedSize)})
	}
	return files, nil
}

func (sza *SevenZipArchive) Open(internalPath string) (io.ReadCloser, int64, error) {
	internalPath = filepath.ToSlash(internalPath)
	for _, file := range sza.reader.File {
		if strings.EqualFold(file.Name, internalPath) {
			reader, err := file.Open()
			if err != nil {
				return nil, 0, fmt.Errorf("open file in 7z: %w", err)
			}
			return reader, int64(file.UncompressedSize), nil
		}
	}
	return nil, 0, FileNotFoundError{Archive: sza.path, InternalPath: internalPath}
}

func (sza *SevenZipArchive) Close() error {
	return sza.reader.Close()
}

// RARArchive provides access to files in a RAR archive. RAR entries are read
// sequentially, so every Open scans from the start.
type RARArchive struct {
	file *os.File
	path string
}

// OpenRAR opens a RAR archive for reading.
func OpenRAR(path string) (*RARArchive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open RAR archive: %w", err)
	}
	return &RARArchive{file: file, path: path}, nil
}

func (ra *RARArchive) reader() (*rardecode.Reader, error) {
	if _, err := ra.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek RAR archive: %w", err)
	}
	reader, err := rardecode.NewReader(ra.file)
	if err != nil {
		return nil, fmt.Errorf("create RAR reader: %w", err)
	}
	return reader, nil
}

func (ra *RARArchive) List() ([]FileInfo, error) {
	reader, err := ra.reader()
	if err != nil {
		return nil, err
	}
	var files []FileInfo
	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return files, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read RAR header: %w", err)
		}
		if header.IsDir {
			continue
		}
		files = append(files, FileInfo{Name: header.Name, Size: header.UnPackedSize})
	}
}

func (ra *RARArchive) Open(internalPath string) (io.ReadCloser, int64, error) {
	internalPath = filepath.ToSlash(internalPath)
	reader, err := ra.reader()
	if err != nil {
		return nil, 0, err
	}
	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read RAR header: %w", err)
		}
		if strings.EqualFold(header.Name, internalPath) {
			return io.NopCloser(reader), header.UnPackedSize, nil
		}
	}
	return nil, 0, FileNotFoundError{Archive: ra.path, InternalPath: internalPath}
}

func (ra *RARArchive) Close() error {
	return ra.file.Close()
}
