package trlevel

import (
	"math"

	trmath "github.com/lahm86/trview-sub000/pkg/math"
)

const frameHeaderWords = 9

// Rotation word modes.
const (
	rotationAxisMask = 0xC000
	rotationAxisX    = 0x4000
	rotationAxisY    = 0x8000
	rotationAxisZ    = 0xC000
)

func angle(v uint16, steps float64) float32 {
	return float32(float64(v) * 2 * math.Pi / steps)
}

// unpackRotation splits two words holding three 10-bit angles.
func unpackRotation(w0, w1 uint16) trmath.Vec3 {
	return trmath.Vec3{
		X: angle((w0&0x3FF0)>>4, 1024),
		Y: angle(((w0&0xF)<<6)|((w1&0xFC00)>>10), 1024),
		Z: angle(w1&0x3FF, 1024),
	}
}

// decodeFrame reads the keyframe at word offset. Short streams end the
// rotation list early rather than failing.
func decodeFrame(words []uint16, pv PlatformAndVersion, offset, meshCount int) Frame {
	if offset < 0 || offset >= len(words) {
		return Frame{}
	}
	at := offset
	next := func() (uint16, bool) {
		if at >= len(words) {
			return 0, false
		}
		w := words[at]
		at++
		return w, true
	}

	var header [frameHeaderWords]int16
	for i := range header {
		w, ok := next()
		if !ok {
			return Frame{}
		}
		header[i] = int16(w)
	}
	f := Frame{
		BoundingBox: BoundingBox{
			MinX: header[0], MaxX: header[1],
			MinY: header[2], MaxY: header[3],
			MinZ: header[4], MaxZ: header[5],
		},
		Offset: Vertex{X: header[6], Y: header[7], Z: header[8]},
	}

	if pv.frameHasMeshCount() {
		w, ok := next()
		if !ok {
			return f
		}
		f.NumValues = w
		meshCount = int(w)
	} else {
		f.NumValues = uint16(max(meshCount, 0))
	}

	steps := 1024.0
	payload := uint16(0x3FF)
	if pv.AtLeast(Tomb4) {
		steps = 4096.0
		payload = 0xFFF
	}

	// Every rotation takes at least one word.
	f.Rotations = make([]trmath.Vec3, 0, min(max(meshCount, 0), len(words)-at))
rotations:
	for i := 0; i < meshCount; i++ {
		if pv.legacyFrames() {
			a, ok := next()
			if !ok {
				break
			}
			b, ok := next()
			if !ok {
				break
			}
			f.Rotations = append(f.Rotations, unpackRotation(b, a))
			continue
		}

		w, ok := next()
		if !ok {
			break
		}
		var r trmath.Vec3
		switch w & rotationAxisMask {
		case rotationAxisX:
			r.X = angle(w&payload, steps)
		case rotationAxisY:
			r.Y = angle(w&payload, steps)
		case rotationAxisZ:
			r.Z = angle(w&payload, steps)
		default:
			w1, ok := next()
			if !ok {
				break rotations
			}
			r = unpackRotation(w, w1)
		}
		f.Rotations = append(f.Rotations, r)
	}
	return f
}
