package framing

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// MaxSegmentSize is the largest segment that fits the 2-byte length prefix.
	MaxSegmentSize = 0xFFFF

	// PrefixSize is the size of the length prefix written before each segment.
	PrefixSize = 2
)

var (
	// ErrSegmentTooLarge is returned by Pack when a segment exceeds MaxSegmentSize.
	ErrSegmentTooLarge = errors.New("segment exceeds maximum size")

	// ErrTruncated is returned by Unpack when the buffer ends inside a length
	// prefix or a declared segment reads past the end of the buffer.
	ErrTruncated = errors.New("truncated buffer")
)

// Pack concatenates segments, each prefixed with its length.
func Pack(segments ...[]byte) ([]byte, error) {
	total := 0
	for i, s := range segments {
		if len(s) > MaxSegmentSize {
			return nil, fmt.Errorf("%w: segment %d is %d bytes, max %d", ErrSegmentTooLarge, i, len(s), MaxSegmentSize)
		}
		total += PrefixSize + len(s)
	}

	out := make([]byte, 0, total)
	for _, s := range segments {
		out = binary.BigEndian.AppendUint16(out, uint16(len(s)))
		out = append(out, s...)
	}
	return out, nil
}

// Unpack splits buf back into the segments passed to Pack.
//
// The returned segments alias buf with their capacity clipped, so appending
// to one never overwrites its neighbour.
func Unpack(buf []byte) ([][]byte, error) {
	var segments [][]byte
	offset := 0
	for offset < len(buf) {
		if len(buf)-offset < PrefixSize {
			return nil, fmt.Errorf("%w: %d byte(s) left at offset %d, need a %d-byte length prefix",
				ErrTruncated, len(buf)-offset, offset, PrefixSize)
		}
		n := int(binary.BigEndian.Uint16(buf[offset:]))
		offset += PrefixSize
		if n > len(buf)-offset {
			return nil, fmt.Errorf("%w: segment %d declares %d bytes, %d available",
				ErrTruncated, len(segments), n, len(buf)-offset)
		}
		end := offset + n
		segments = append(segments, buf[offset:end:end])
		offset = end
	}
	return segments, nil
}

// Size returns the packed length of segments without allocating.
func Size(segments ...[]byte) int {
	total := 0
	for _, s := range segments {
		total += PrefixSize + len(s)
	}
	return total
}
