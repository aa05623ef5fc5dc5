// Package framing packs an ordered list of byte segments into a single
// buffer and back.
//
// # Wire Format
//
// Each segment is written as a 2-byte big-endian length followed by the
// segment bytes. Nil and empty segments are both written as a zero length
// and come back as empty, non-nil slices. Segment count is implied by the
// buffer length; there is no header.
//
//	+--------+---------------+--------+---------------+
//	| len(2) | segment bytes | len(2) | segment bytes | ...
//	+--------+---------------+--------+---------------+
//
// A segment is limited to [MaxSegmentSize] bytes.
package framing
