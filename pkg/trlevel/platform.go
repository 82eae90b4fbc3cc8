package trlevel

import "fmt"

// Platform is the hardware a level file was built for.
type Platform int

const (
	PlatformUnknown Platform = iota
	PlatformPC
	PlatformPSX
	PlatformSaturn
	PlatformDreamcast
)

// String returns the platform name.
func (p Platform) String() string {
	switch p {
	case PlatformPC:
		return "PC"
	case PlatformPSX:
		return "PSX"
	case PlatformSaturn:
		return "Saturn"
	case PlatformDreamcast:
		return "Dreamcast"
	default:
		return "Unknown"
	}
}

// Version is the engine release a level belongs to.
type Version int

const (
	VersionUnknown Version = iota
	Tomb1
	Tomb2
	Tomb3
	Tomb4
	Tomb5
)

// String returns the version name.
func (v Version) String() string {
	switch v {
	case Tomb1, Tomb2, Tomb3, Tomb4, Tomb5:
		return fmt.Sprintf("Tomb%d", int(v))
	default:
		return "Unknown"
	}
}

// Raw version integers found in level headers.
const (
	rawVersionTR1       uint32 = 0x00000020
	rawVersionTR2       uint32 = 0x0000002D
	rawVersionTR2PSX    uint32 = 38
	rawVersionTR2Beta   uint32 = 44
	rawVersionTR3a      uint32 = 0xFF080038
	rawVersionTR3b      uint32 = 0xFF180038
	rawVersionTR3c      uint32 = 0xFF180034
	rawVersionTR4       uint32 = 0x00345254
	rawVersionEncrypted uint32 = 0x63345254
)

// EncryptedVersion is the version marker of an encrypted level ("TR4c").
const EncryptedVersion = rawVersionEncrypted

// PlatformAndVersion identifies one concrete on-disk layout. It is comparable
// and acts as the dispatch key.
type PlatformAndVersion struct {
	Platform    Platform
	Version     Version
	RawVersion  uint32
	Remastered  bool
	IsPack      bool
	IsTR2Saturn bool
}

// String returns a human readable description, e.g. "PSX Tomb2 (raw 0x0000002C)".
func (pv PlatformAndVersion) String() string {
	s := fmt.Sprintf("%s %s (raw 0x%08X)", pv.Platform, pv.Version, pv.RawVersion)
	if pv.Remastered {
		s += " remastered"
	}
	if pv.IsPack {
		s += " pack"
	}
	if pv.IsTR2Saturn {
		s += " tr2-saturn"
	}
	return s
}

// AtLeast returns true if the version is v or later.
func (pv PlatformAndVersion) AtLeast(v Version) bool {
	return pv.Version >= v
}

// IsKnown reports whether detection produced a usable result.
func (pv PlatformAndVersion) IsKnown() bool {
	return pv.Platform != PlatformUnknown && pv.Version != VersionUnknown
}

// legacyFrames reports whether animation frames use the two-word rotation format.
func (pv PlatformAndVersion) legacyFrames() bool {
	return pv.Version == Tomb1 || pv.isTR2PSXBeta()
}

// frameHasMeshCount reports whether frames carry their own mesh count.
func (pv PlatformAndVersion) frameHasMeshCount() bool {
	return pv.legacyFrames()
}

func (pv PlatformAndVersion) isTR2PSXBeta() bool {
	return pv.Platform == PlatformPSX && pv.Version == Tomb2 && pv.RawVersion == rawVersionTR2Beta
}
