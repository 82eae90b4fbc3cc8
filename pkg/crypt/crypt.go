// Package crypt reverses the keyed encryption applied to some Tomb4 levels.
//
// An encrypted level starts with the "TR4c" marker in place of its version.
// The rest of the file is XORed with an RC4 keystream derived from the key.
// Decryption restores the Tomb4 version so the level detects normally.
package crypt

import (
	"crypto/rc4"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	markerEncrypted = 0x63345254 // "TR4c"
	versionTR4      = 0x00345254 // "TR4\0"
)

var (
	// ErrNoKey is returned when a cipher is created without a key.
	ErrNoKey = errors.New("crypt: no key")
	// ErrNotEncrypted is returned when data does not carry the marker.
	ErrNotEncrypted = errors.New("crypt: data is not encrypted")
)

// Cipher decrypts and encrypts levels with one key.
type Cipher struct {
	key []byte
}

// New returns a cipher for key. RC4 accepts keys of 1 to 256 bytes.
func New(key []byte) (*Cipher, error) {
	if len(key) == 0 {
		return nil, ErrNoKey
	}
	if len(key) > 256 {
		return nil, fmt.Errorf("crypt: key of %d bytes is too long", len(key))
	}
	return &Cipher{key: append([]byte(nil), key...)}, nil
}

// NewFromHex returns a cipher for a hex encoded key.
func NewFromHex(s string) (*Cipher, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrNoKey
	}
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("crypt: decoding key: %w", err)
	}
	return New(key)
}

// IsEncrypted reports whether data starts with the encryption marker.
func IsEncrypted(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data) == markerEncrypted
}

// DecryptInPlace decrypts data and replaces the marker with the Tomb4 version.
func (c *Cipher) DecryptInPlace(data []byte) error {
	if !IsEncrypted(data) {
		return ErrNotEncrypted
	}
	if err := c.xor(data[4:]); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(data, versionTR4)
	return nil
}

// EncryptInPlace encrypts a Tomb4 level and writes the marker.
func (c *Cipher) EncryptInPlace(data []byte) error {
	if len(data) < 4 || binary.LittleEndian.Uint32(data) != versionTR4 {
		return fmt.Errorf("crypt: data is not a Tomb4 level")
	}
	if err := c.xor(data[4:]); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(data, markerEncrypted)
	return nil
}

func (c *Cipher) xor(data []byte) error {
	stream, err := rc4.NewCipher(c.key)
	if err != nil {
		return fmt.Errorf("crypt: %w", err)
	}
	stream.XORKeyStream(data, data)
	return nil
}
