// Package encoding converts the fixed-size DOS strings found in level packs.
package encoding

import (
	"bytes"

	"golang.org/x/text/encoding/charmap"
)

// CP437ToUTF8 converts code page 437 bytes to a UTF-8 string.
// Returns the bytes as-is if conversion fails.
func CP437ToUTF8(data []byte) string {
	result, err := charmap.CodePage437.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// UTF8ToCP437 converts a UTF-8 string to code page 437. Runes outside the
// code page become '?'.
func UTF8ToCP437(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := charmap.CodePage437.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out
}

// TrimNullBytes removes trailing null bytes from a byte slice.
func TrimNullBytes(data []byte) []byte {
	return bytes.TrimRight(data, "\x00")
}

// DecodeCP437Name converts a fixed-size, null terminated CP437 name.
func DecodeCP437Name(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return CP437ToUTF8(data)
}

// EncodeCP437Name converts s to a fixed-size CP437 field padded with nulls.
// Names longer than size are truncated.
func EncodeCP437Name(s string, size int) []byte {
	result := make([]byte, size)
	copy(result, UTF8ToCP437(s))
	return result
}
