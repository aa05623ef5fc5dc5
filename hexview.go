package secretnote

import (
	"fmt"
	"strings"
)

// hexSeparator separates bytes within a HexView row.
const hexSeparator = "·"

// HexView renders data as rows of width hex bytes followed by their
// printable letters and digits, preceded by a length header. With width 4,
// "hello" renders as:
//
//	[length: 5 bytes (40 bits)]
//	68·65·6c·6c  hell
//	6f           o
//
// A width below 1 is treated as 16.
func HexView(data []byte, width int) string {
	if width < 1 {
		width = 16
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[length: %d bytes (%d bits)]\n", len(data), len(data)*8)

	var text strings.Builder
	n := 0
	for _, c := range data {
		if n > 0 {
			b.WriteString(hexSeparator)
		}
		fmt.Fprintf(&b, "%02x", c)
		text.WriteByte(printable(c))
		n++
		if n == width {
			b.WriteString("  ")
			b.WriteString(text.String())
			b.WriteByte('\n')
			text.Reset()
			n = 0
		}
	}
	if n != 0 {
		b.WriteString("  ")
		b.WriteString(strings.Repeat(" ", (width-n)*3))
		b.WriteString(text.String())
	}
	return b.String()
}

func printable(c byte) byte {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return c
	}
	return '.'
}
