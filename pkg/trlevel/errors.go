package trlevel

import (
	"errors"
	"fmt"
)

// Level decoding errors.
var (
	ErrTruncatedOrCorrupt = errors.New("truncated or corrupt level data")
	ErrEncrypted          = errors.New("level is encrypted")
	ErrUnsupportedVariant = errors.New("unsupported level variant")
	ErrUnknownVersion     = errors.New("unknown level version")
)

// UnsupportedVariantError reports a detected variant with no registered decoder.
type UnsupportedVariantError struct {
	PV PlatformAndVersion
}

func (e *UnsupportedVariantError) Error() string {
	return fmt.Sprintf("%v: %s", ErrUnsupportedVariant, e.PV)
}

// Is makes errors.Is(err, ErrUnsupportedVariant) match.
func (e *UnsupportedVariantError) Is(target error) bool {
	return target == ErrUnsupportedVariant
}

// LoadError wraps a fatal load failure with the context needed to diagnose it.
type LoadError struct {
	Filename   string
	PV         PlatformAndVersion
	RawVersion uint32
	Err        error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s (%s, raw version 0x%08X): %v", e.Filename, e.PV, e.RawVersion, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// truncated builds an ErrTruncatedOrCorrupt with a description of what was being read.
func truncated(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTruncatedOrCorrupt, fmt.Sprintf(format, args...))
}
