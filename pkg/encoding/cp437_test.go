package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeCP437Name(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"plain", []byte("LEVEL1.PHD\x00\x00"), "LEVEL1.PHD"},
		{"full width", []byte("ABCDEFGH.PHD"), "ABCDEFGH.PHD"},
		{"garbage after null", []byte("A.PHD\x00XYZ"), "A.PHD"},
		{"high bytes", []byte{0x80, 0x81, 0x00}, "Çü"},
		{"empty", []byte{0, 0, 0}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeCP437Name(tt.data))
		})
	}
}

func TestEncodeCP437Name(t *testing.T) {
	got := EncodeCP437Name("Çü.PHD", 12)
	assert.Len(t, got, 12)
	assert.Equal(t, []byte{0x80, 0x81, '.', 'P', 'H', 'D', 0, 0, 0, 0, 0, 0}, got)
	assert.Equal(t, "Çü.PHD", DecodeCP437Name(got))

	assert.Equal(t, []byte("ABC"), EncodeCP437Name("ABCDEF", 3))
	assert.Equal(t, []byte("?"), UTF8ToCP437("€"))
}

func TestTrimNullBytes(t *testing.T) {
	assert.Equal(t, []byte("abc"), TrimNullBytes([]byte("abc\x00\x00")))
	assert.Empty(t, TrimNullBytes([]byte{0}))
}
