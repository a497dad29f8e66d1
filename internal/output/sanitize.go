package output

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const hexDigits = "0123456789abcdef"

// SanitizeTerminal replaces control characters and invalid UTF-8 with
// visible escapes so a file or process name cannot drive the terminal.
// Tabs and newlines pass through, unicode line separators do not.
//
//	"hi\x1b[31m" -> `hi\x1b[31m`
//	"bad:\xff"   -> `bad:\xff`
//	"line\u2028sep" -> `line\u2028sep`
func SanitizeTerminal(s string) string {
	clean := true
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if needsEscape(r, size) {
			clean = false
			break
		}
		i += size
	}
	if clean {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			appendHex(&b, 'x', uint32(s[i]), 2)
		case needsEscape(r, size):
			appendEscapedRune(&b, r)
		default:
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}

func needsEscape(r rune, size int) bool {
	if r == utf8.RuneError && size == 1 {
		return true
	}
	if r == '\n' || r == '\t' {
		return false
	}
	return unicode.IsControl(r) || r == '\u2028' || r == '\u2029'
}

func appendEscapedRune(b *strings.Builder, r rune) {
	switch {
	case r <= 0xFF:
		appendHex(b, 'x', uint32(r), 2)
	case r <= 0xFFFF:
		appendHex(b, 'u', uint32(r), 4)
	default:
		appendHex(b, 'U', uint32(r), 8)
	}
}

func appendHex(b *strings.Builder, kind byte, v uint32, digits int) {
	b.WriteByte('\\')
	b.WriteByte(kind)
	for shift := (digits - 1) * 4; shift >= 0; shift -= 4 {
		b.WriteByte(hexDigits[(v>>uint(shift))&0x0f])
	}
}
