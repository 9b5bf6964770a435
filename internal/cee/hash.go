package cee

import (
	"fmt"
	"unicode/utf16"
)

// HashPrefix computes the stable 32-bit rolling hash used to detect prefix
// drift: h = (h<<5) - h + c, wrapping on int32 overflow, then the absolute
// value hex-padded to 8 characters. Implementations in any language must
// agree on this byte-for-byte.
func HashPrefix(prefix string) string {
	var h int32
	// Iterate by UTF-16 code unit, matching the reference JS hashCode this
	// was ported from, not raw UTF-8 bytes: a character outside the BMP
	// contributes its two surrogate halves.
	for _, c := range utf16.Encode([]rune(prefix)) {
		h = (h << 5) - h + int32(c)
	}
	if h < 0 {
		h = -h
	}
	return fmt.Sprintf("%08x", uint32(h))
}
