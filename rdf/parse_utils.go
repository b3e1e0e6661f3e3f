package rdf

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	unicodeSurrogateHighStart = 0xD800
	unicodeSurrogateHighEnd   = 0xDBFF
	unicodeSurrogateLowStart  = 0xDC00
	unicodeSurrogateLowEnd    = 0xDFFF
	unicodeSurrogateBase      = 0x10000
)

var errInvalidEscape = errors.New("invalid escape sequence")

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isValidPNLocalEscape(ch byte) bool {
	switch ch {
	case '_', '~', '.', '-', '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=', '/', '?', '#', '@', '%':
		return true
	default:
		return false
	}
}

// isValidLangTag checks the BCP47 shape used by Turtle and N-Triples:
// [a-zA-Z]+ ('-' [a-zA-Z0-9]+)*.
func isValidLangTag(tag string) bool {
	if tag == "" {
		return false
	}
	for i, part := range strings.Split(tag, "-") {
		if part == "" || (i == 0 && len(part) > 8) {
			return false
		}
		for j := 0; j < len(part); j++ {
			ch := part[j]
			alpha := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
			digit := ch >= '0' && ch <= '9'
			if !alpha && !(digit && i > 0) {
				return false
			}
		}
	}
	return true
}

func isValidUnicodeCodePoint(codePoint rune) bool {
	if codePoint > unicode.MaxRune {
		return false
	}
	return codePoint < unicodeSurrogateHighStart || codePoint > unicodeSurrogateLowEnd
}

// decodeHex decodes a run of hex digits. It returns -1 on any non-hex byte.
func decodeHex(hex string) rune {
	var value rune
	for i := 0; i < len(hex); i++ {
		ch := hex[i]
		var digit rune
		switch {
		case ch >= '0' && ch <= '9':
			digit = rune(ch - '0')
		case ch >= 'a' && ch <= 'f':
			digit = rune(ch-'a') + 10
		case ch >= 'A' && ch <= 'F':
			digit = rune(ch-'A') + 10
		default:
			return -1
		}
		value = value*16 + digit
	}
	return value
}

// decodeUChar decodes a \uXXXX or \UXXXXXXXX escape at the start of input.
// It returns the code point and the number of bytes consumed. A high
// surrogate followed by a \u low surrogate is combined into one code point.
func decodeUChar(input string) (rune, int, error) {
	if len(input) < 2 || input[0] != '\\' {
		return 0, 0, errInvalidEscape
	}
	width := 4
	if input[1] == 'U' {
		width = 8
	} else if input[1] != 'u' {
		return 0, 0, errInvalidEscape
	}
	if len(input) < 2+width {
		return 0, 0, errInvalidEscape
	}
	codePoint := decodeHex(input[2 : 2+width])
	if codePoint < 0 {
		return 0, 0, errInvalidEscape
	}
	consumed := 2 + width
	if width == 4 && codePoint >= unicodeSurrogateHighStart && codePoint <= unicodeSurrogateHighEnd {
		rest := input[consumed:]
		if len(rest) < 6 || rest[0] != '\\' || rest[1] != 'u' {
			return 0, 0, errInvalidEscape
		}
		low := decodeHex(rest[2:6])
		if low < unicodeSurrogateLowStart || low > unicodeSurrogateLowEnd {
			return 0, 0, errInvalidEscape
		}
		return unicodeSurrogateBase + ((codePoint - unicodeSurrogateHighStart) << 10) + (low - unicodeSurrogateLowStart), consumed + 6, nil
	}
	if !isValidUnicodeCodePoint(codePoint) {
		return 0, 0, errInvalidEscape
	}
	return codePoint, consumed, nil
}

// decodeStringEscape decodes one string escape (ECHAR or UCHAR) at the
// start of input and appends it to b.
func decodeStringEscape(b *strings.Builder, input string) (int, error) {
	if len(input) < 2 {
		return 0, errInvalidEscape
	}
	switch input[1] {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case '"', '\'', '\\':
		b.WriteByte(input[1])
	case 'u', 'U':
		r, n, err := decodeUChar(input)
		if err != nil {
			return 0, err
		}
		b.WriteRune(r)
		return n, nil
	default:
		return 0, errInvalidEscape
	}
	return 2, nil
}

func isDisallowedIRIChar(codePoint rune) bool {
	if codePoint <= 0x20 {
		return true
	}
	switch codePoint {
	case '<', '>', '"', '{', '}', '|', '^', '`', '\\':
		return true
	}
	return false
}

// isPNCharsBase reports whether r may start a prefix or local name.
func isPNCharsBase(r rune) bool {
	if r < utf8.RuneSelf {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}
	return unicode.IsLetter(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Nl, r)
}

// isPNChar reports whether r may continue a prefix or local name.
func isPNChar(r rune) bool {
	return isPNCharsBase(r) || r == '_' || r == '-' || (r >= '0' && r <= '9') || r == 0xB7 ||
		(r >= 0x300 && r <= 0x36F) || r == 0x203F || r == 0x2040
}
