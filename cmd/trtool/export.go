package main

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/bmp"
)

// textileExporter writes each textile callback as a BMP. The pixel slice is
// encoded before the callback returns.
type textileExporter struct {
	dir    string
	prefix string

	mu    sync.Mutex
	count int
	err   error
}

func (e *textileExporter) write(index, width, height int, rgba []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return
	}
	img := &image.NRGBA{Pix: rgba, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		e.err = fmt.Errorf("encoding textile %d: %w", index, err)
		return
	}
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		e.err = err
		return
	}
	path := filepath.Join(e.dir, fmt.Sprintf("%s_%03d.bmp", e.prefix, index))
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		e.err = err
		return
	}
	e.count++
}

// sampleExporter writes each reachable sample. RIFF samples keep a .wav
// extension; anything else is written raw.
type sampleExporter struct {
	dir string

	mu    sync.Mutex
	count int
	err   error
}

func (e *sampleExporter) write(mapIndex, detailIndex, sampleIndex int, data []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return
	}
	ext := ".raw"
	if bytes.HasPrefix(data, []byte("RIFF")) {
		ext = ".wav"
	}
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		e.err = err
		return
	}
	path := filepath.Join(e.dir, fmt.Sprintf("sound_%03d_%03d_%04d%s", mapIndex, detailIndex, sampleIndex, ext))
	if err := os.WriteFile(path, data, 0644); err != nil {
		e.err = err
		return
	}
	e.count++
}
