package trlevel

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/exp/constraints"
)

// readValue decodes one fixed-size value in the cursor's byte order.
func readValue[T any](c *Cursor, what string) (T, error) {
	var v T
	size := binary.Size(v)
	if size < 0 {
		return v, fmt.Errorf("reading %s: %T is not fixed-size", what, v)
	}
	b, err := c.Bytes(size)
	if err != nil {
		return v, fmt.Errorf("reading %s: %w", what, err)
	}
	if err := binary.Read(bytes.NewReader(b), c.order, &v); err != nil {
		return v, fmt.Errorf("%w: decoding %s: %v", ErrTruncatedOrCorrupt, what, err)
	}
	return v, nil
}

// readArray decodes n consecutive fixed-size records. The byte size is
// validated against the remaining buffer before anything is allocated.
func readArray[T any](c *Cursor, n int, what string) ([]T, error) {
	if n < 0 {
		return nil, truncated("negative %s count %d", what, n)
	}
	var zero T
	size := binary.Size(zero)
	if size <= 0 {
		return nil, fmt.Errorf("reading %s: %T is not fixed-size", what, zero)
	}
	if n > c.Remaining()/size {
		return nil, truncated("%d %s of %d bytes at %d, %d remaining", n, what, size, c.Pos(), c.Remaining())
	}
	out := make([]T, n)
	if n == 0 {
		return out, nil
	}
	b, err := c.Bytes(n * size)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", what, err)
	}
	if err := binary.Read(bytes.NewReader(b), c.order, out); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrTruncatedOrCorrupt, what, err)
	}
	return out, nil
}

// readCount reads a length prefix of type L.
func readCount[L constraints.Integer](c *Cursor, what string) (int, error) {
	count, err := readValue[L](c, what+" count")
	if err != nil {
		return 0, err
	}
	if count < 0 {
		return 0, truncated("negative %s count %d", what, count)
	}
	return int(count), nil
}

// readVector reads a length prefix of type L followed by that many records of
// type T. The prefix counts records, not bytes.
func readVector[L constraints.Integer, T any](c *Cursor, what string) ([]T, error) {
	count, err := readCount[L](c, what)
	if err != nil {
		return nil, err
	}
	return readArray[T](c, count, what)
}

// readBlob reads a length prefix of type L followed by that many raw bytes.
func readBlob[L constraints.Integer](c *Cursor, what string) ([]byte, error) {
	count, err := readCount[L](c, what)
	if err != nil {
		return nil, err
	}
	b, err := c.Copy(count)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", what, err)
	}
	return b, nil
}

// skipVector reads a length prefix of type L and skips count*size bytes.
func skipVector[L constraints.Integer](c *Cursor, size int, what string) (int, error) {
	count, err := readCount[L](c, what)
	if err != nil {
		return 0, err
	}
	if size > 0 && count > c.Remaining()/size {
		return 0, truncated("%d %s of %d bytes at %d, %d remaining", count, what, size, c.Pos(), c.Remaining())
	}
	if err := c.Skip(count * size); err != nil {
		return 0, fmt.Errorf("skipping %s: %w", what, err)
	}
	return count, nil
}
