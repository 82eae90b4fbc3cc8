package trlevel

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// sampleSource yields the raw bytes of one sample.
type sampleSource interface {
	sample(index int) ([]byte, bool)
	count() int
}

// offsetSamples is a blob split by a table of start offsets.
type offsetSamples struct {
	data    []byte
	offsets []uint32
}

func (s *offsetSamples) count() int { return len(s.offsets) }

func (s *offsetSamples) sample(index int) ([]byte, bool) {
	if index < 0 || index >= len(s.offsets) {
		return nil, false
	}
	start := int64(s.offsets[index])
	end := int64(len(s.data))
	if index+1 < len(s.offsets) {
		end = int64(s.offsets[index+1])
	}
	if start > end || end > int64(len(s.data)) {
		return nil, false
	}
	return s.data[start:end], true
}

// listSamples holds one record per sample.
type listSamples [][]byte

func (s listSamples) count() int { return len(s) }

func (s listSamples) sample(index int) ([]byte, bool) {
	if index < 0 || index >= len(s) {
		return nil, false
	}
	return s[index], true
}

// sampleRef is one reachable sample with the map entry and detail that
// first reached it.
type sampleRef struct {
	mapIndex    int
	detailIndex int
	sample      int
}

// reachableSamples returns every sample index reachable from the sound map,
// in map order, without duplicates.
func reachableSamples(soundMap []int16, details []SoundDetail) []sampleRef {
	seen := make(map[int]bool)
	var refs []sampleRef
	for m, di := range soundMap {
		if di < 0 || int(di) >= len(details) {
			continue
		}
		detail := details[di]
		for s := int(detail.Sample); s < int(detail.Sample)+detail.SampleCount(); s++ {
			if seen[s] {
				continue
			}
			seen[s] = true
			refs = append(refs, sampleRef{mapIndex: m, detailIndex: int(di), sample: s})
		}
	}
	return refs
}

const (
	riffTag          = "RIFF"
	mainSFX          = "MAIN.SFX"
	remasteredSFXGap = 8
)

// usesSoundArchive reports whether samples live in a MAIN.SFX next to the level.
func (d *decoder) usesSoundArchive() bool {
	if d.pv.Platform != PlatformPC {
		return false
	}
	return d.pv.Remastered || d.pv.Version == Tomb2 || d.pv.Version == Tomb3
}

// soundArchivePaths lists the candidate MAIN.SFX locations.
func soundArchivePaths(level string) []string {
	dir := filepath.Dir(level)
	return []string{
		filepath.Join(dir, mainSFX),
		filepath.Join(dir, "..", "DATA", mainSFX),
	}
}

// resolveSounds loads every reachable sample. A missing or unreadable
// archive falls back to the samples embedded in the level, if any.
func (d *decoder) resolveSounds() {
	l := d.level
	log := d.log.Named("Sound")
	source := d.samples
	// Archive chunks are found through the sample index table, except in
	// remastered archives where chunk and sample numbers match.
	indexed := false

	if d.usesSoundArchive() {
		archive, err := d.loadSoundArchive(log)
		if err != nil {
			log.Warn("No sound archive", zap.Error(err))
		} else {
			source = archive
			indexed = !d.pv.Remastered
		}
	}
	if source == nil {
		return
	}

	for _, ref := range reachableSamples(l.soundMap, l.soundDetails) {
		index := ref.sample
		if indexed {
			if index >= len(l.sampleIndices) {
				continue
			}
			index = int(l.sampleIndices[index])
		}
		data, ok := source.sample(index)
		if !ok {
			continue
		}
		l.samples[ref.sample] = data
		d.opts.callbacks.OnSoundSample(ref.mapIndex, ref.detailIndex, ref.sample, data)
	}
	log.Debug("Loaded samples",
		zap.Int("count", len(l.samples)),
		zap.Int("available", source.count()))
}

// loadSoundArchive reads the first MAIN.SFX candidate that exists.
func (d *decoder) loadSoundArchive(log *zap.Logger) (sampleSource, error) {
	src := d.opts.source
	for _, path := range soundArchivePaths(d.name) {
		if !src.Exists(path) {
			continue
		}
		data, err := src.LoadBytes(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		log.Info("Loading sound archive", zap.String("path", path), zap.Int("size", len(data)))
		c := NewCursor(data)
		if d.pv.Remastered {
			if err := d.readRemasteredSoundTables(c); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
		chunks, err := scanRIFFChunks(c)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return chunks, nil
	}
	return nil, fmt.Errorf("%s not found near %s", mainSFX, d.name)
}

// readRemasteredSoundTables replaces the level's sound map and details with
// the tables at the head of a remastered archive.
func (d *decoder) readRemasteredSoundTables(c *Cursor) error {
	soundMap, err := readArray[int16](c, soundMapSize(d.pv), "archive sound map")
	if err != nil {
		return err
	}
	raw, err := readVector[uint32, tr1SoundDetail](c, "archive sound details")
	if err != nil {
		return err
	}
	if err := c.Skip(remasteredSFXGap); err != nil {
		return err
	}
	d.level.soundMap = soundMap
	d.level.soundDetails, _ = convertAll(raw, nil, func(s tr1SoundDetail) SoundDetail {
		return SoundDetail{Sample: s.Sample, Volume: s.Volume, Chance: s.Chance, Characteristics: s.Characteristics}
	})
	return nil
}

// scanRIFFChunks splits sequential RIFF records. Each chunk keeps its header.
func scanRIFFChunks(c *Cursor) (listSamples, error) {
	var chunks listSamples
	for c.Remaining() >= 8 {
		start := c.Pos()
		ok, err := c.Tag(riffTag)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, truncated("expected RIFF chunk at %d", start)
		}
		size, err := c.U32()
		if err != nil {
			return nil, err
		}
		if err := c.Skip(int(size)); err != nil {
			return nil, fmt.Errorf("RIFF chunk %d: %w", len(chunks), err)
		}
		chunks = append(chunks, c.data[start:c.Pos()])
	}
	return chunks, nil
}
