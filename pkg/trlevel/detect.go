package trlevel

import (
	"encoding/binary"

	"github.com/lahm86/trview-sub000/pkg/files"
)

// Fixed PSX block sizes.
const (
	psxTextileSize = 65536
	psxClutSize    = clutSize
	maxSoundCount  = 1 << 16
)

// psxLayout is the fixed prefix shape of a PSX level.
type psxLayout struct {
	sound    bool
	textiles int
	version  uint32
	pv       PlatformAndVersion
}

var (
	psxTR2 = psxLayout{sound: true, textiles: 14, version: rawVersionTR2PSX,
		pv: PlatformAndVersion{Platform: PlatformPSX, Version: Tomb2, RawVersion: rawVersionTR2PSX}}
	psxTR2Beta = psxLayout{sound: false, textiles: 13, version: rawVersionTR2Beta,
		pv: PlatformAndVersion{Platform: PlatformPSX, Version: Tomb2, RawVersion: rawVersionTR2Beta}}
	psxTR1 = psxLayout{sound: true, textiles: 13, version: rawVersionTR1,
		pv: PlatformAndVersion{Platform: PlatformPSX, Version: Tomb1, RawVersion: rawVersionTR1}}
	psxTR3 = psxLayout{sound: true, textiles: 16, version: rawVersionTR3b,
		pv: PlatformAndVersion{Platform: PlatformPSX, Version: Tomb3, RawVersion: rawVersionTR3b}}
)

// psxLayoutFor returns the prefix shape of a detected PSX variant.
func psxLayoutFor(pv PlatformAndVersion) psxLayout {
	switch {
	case pv.isTR2PSXBeta():
		return psxTR2Beta
	case pv.Version == Tomb1:
		return psxTR1
	case pv.Version == Tomb2:
		return psxTR2
	default:
		return psxTR3
	}
}

// matcher tests one layout hypothesis. It must leave the cursor where it
// found it and treat any read failure as no match.
type matcher func(c *Cursor, name string) (PlatformAndVersion, bool)

// Detect identifies the layout of data. name supplies the file extension
// used to tell Tomb4 from Tomb5 and locates remastered companion files on
// disk. Encrypted data reports the encrypted raw version with an unknown
// platform.
func Detect(name string, data []byte) PlatformAndVersion {
	return detect(NewCursor(data), name, files.Disk{}.Exists, true)
}

// detect runs the matchers in priority order and falls back to the raw
// version table. Several PSX layouts are prefixes of one another, so the
// order decides ambiguous inputs.
func detect(c *Cursor, name string, exists func(string) bool, allowPack bool) PlatformAndVersion {
	matchers := []matcher{matchSaturn}
	if allowPack {
		matchers = append(matchers, matchPack)
	}
	matchers = append(matchers,
		psxMatcher(psxTR2),
		psxMatcher(psxTR2Beta),
		psxMatcher(psxTR1),
		psxMatcher(psxTR3),
		matchDreamcast,
	)
	for _, p := range matchers {
		if pv, ok := p(c, name); ok {
			return pv
		}
	}
	return detectRawVersion(c, name, exists)
}

func detectRawVersion(c *Cursor, name string, exists func(string) bool) PlatformAndVersion {
	snap := c.Snapshot()
	defer c.Restore(snap)

	raw, err := c.U32()
	if err != nil {
		return PlatformAndVersion{}
	}
	pv := PlatformAndVersion{Platform: PlatformPC, RawVersion: raw}
	switch raw {
	case rawVersionTR1:
		pv.Version = Tomb1
	case rawVersionTR2:
		pv.Version = Tomb2
	case rawVersionTR3a, rawVersionTR3b, rawVersionTR3c:
		pv.Version = Tomb3
	case rawVersionTR4:
		pv.Version = Tomb4
		if hasExt(name, ".trc") {
			pv.Version = Tomb5
		}
	default:
		return PlatformAndVersion{Platform: PlatformUnknown, RawVersion: raw}
	}
	if pv.Version <= Tomb3 && exists != nil && name != "" {
		pv.Remastered = exists(companion(name, ".TRG")) || exists(companion(name, ".trg"))
	}
	return pv
}

// Saturn levels are a chain of big-endian tagged chunks starting with ROOMFILE.
func matchSaturn(c *Cursor, _ string) (PlatformAndVersion, bool) {
	snap := c.Snapshot()
	defer c.Restore(snap)
	c.WithOrder(binary.BigEndian)
	defer c.WithOrder(binary.LittleEndian)

	ch, err := readSaturnChunk(c)
	if err != nil || ch.tag != saturnRoomFile || len(ch.data) < 4 {
		return PlatformAndVersion{}, false
	}
	version := binary.BigEndian.Uint32(ch.data)
	switch version {
	case rawVersionTR1:
		return PlatformAndVersion{Platform: PlatformSaturn, Version: Tomb1, RawVersion: version}, true
	case rawVersionTR2:
		return PlatformAndVersion{Platform: PlatformSaturn, Version: Tomb2, RawVersion: version, IsTR2Saturn: true}, true
	}
	return PlatformAndVersion{}, false
}

// skipSoundBlock skips a PSX sound block: count, offsets, size, data.
func skipSoundBlock(c *Cursor) error {
	count, err := c.U32()
	if err != nil {
		return err
	}
	if count > maxSoundCount {
		return truncated("sound block with %d samples", count)
	}
	if err := c.Skip(int(count) * 4); err != nil {
		return err
	}
	size, err := c.U32()
	if err != nil {
		return err
	}
	if int64(size) > int64(c.Remaining()) {
		return truncated("sound data of %d bytes", size)
	}
	return c.Skip(int(size))
}

func psxMatcher(layout psxLayout) matcher {
	return func(c *Cursor, _ string) (PlatformAndVersion, bool) {
		snap := c.Snapshot()
		defer c.Restore(snap)

		if layout.sound {
			if err := skipSoundBlock(c); err != nil {
				return PlatformAndVersion{}, false
			}
		}
		if err := c.Skip(layout.textiles*psxTextileSize + psxClutSize); err != nil {
			return PlatformAndVersion{}, false
		}
		version, err := c.U32()
		if err != nil || version != layout.version {
			return PlatformAndVersion{}, false
		}
		return layout.pv, true
	}
}

// isZlib reports whether b starts with a zlib stream header.
func isZlib(b []byte) bool {
	if len(b) < 2 {
		return false
	}
	return b[0]&0x0F == 8 && (uint16(b[0])<<8|uint16(b[1]))%31 == 0
}

// Dreamcast levels share the Tomb4 version but store textiles uncompressed
// behind a single size field.
func matchDreamcast(c *Cursor, name string) (PlatformAndVersion, bool) {
	snap := c.Snapshot()
	defer c.Restore(snap)

	version, err := c.U32()
	if err != nil || version != rawVersionTR4 {
		return PlatformAndVersion{}, false
	}
	counts, err := readArray[uint16](c, 3, "textile counts")
	if err != nil {
		return PlatformAndVersion{}, false
	}
	total := int64(counts[0]) + int64(counts[1]) + int64(counts[2])
	size, err := c.U32()
	if err != nil || int64(size) != total*textileSize32 || int64(size) > int64(c.Remaining()) {
		return PlatformAndVersion{}, false
	}
	// A PC level has the compressed size next, then a zlib stream.
	if b, err := c.Peek(6); err == nil {
		comp := binary.LittleEndian.Uint32(b)
		if int64(comp) <= int64(c.Remaining()-4) && isZlib(b[4:]) {
			return PlatformAndVersion{}, false
		}
	}
	pv := PlatformAndVersion{Platform: PlatformDreamcast, Version: Tomb4, RawVersion: version}
	if hasExt(name, ".trc") {
		pv.Version = Tomb5
	}
	return pv, true
}
