// Package cstring implements the escape grammar used inside GDB/MI quoted
// strings.
//
// GDB writes every C-string constant with C style escapes: the special
// character escapes (\n, \t, ...), octal escapes (\NNN), hexadecimal escapes
// (\xHHHH) and the short and long Unicode escapes (\uHHHH and \UHHHHHHHH).
// Escapes that are incomplete or out of range are not errors, they are
// copied to the output verbatim, backslash included.
//
// Strings are processed one code point at a time. Bytes that are not part
// of a valid UTF-8 sequence are read as Latin-1 code points, which is what
// a transport that ignored the debugger's charset would have produced.
package cstring

import (
	"fmt"
	"runtime"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// specialCodePoints maps the letter following a backslash to the code point
// it stands for.
var specialCodePoints = map[rune]rune{
	'a':  0x07,
	'b':  0x08,
	'e':  0x1B,
	'E':  0x1B,
	'f':  0x0C,
	'n':  0x0A,
	'r':  0x0D,
	't':  0x09,
	'v':  0x0B,
	'\'': 0x27,
	'"':  0x22,
	'\\': 0x5C,
	'?':  0x3F,
}

// specialChars is the inverse of specialCodePoints. 0x1B is always written
// as \e.
var specialChars = map[rune]rune{
	0x07: 'a',
	0x08: 'b',
	0x1B: 'e',
	0x0C: 'f',
	0x0A: 'n',
	0x0D: 'r',
	0x09: 't',
	0x0B: 'v',
	0x27: '\'',
	0x22: '"',
	0x5C: '\\',
	0x3F: '?',
}

const maxCodePoint = 0x10FFFF

// lineSeparator replaces '\n' in fully decoded strings.
var lineSeparator = func() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}()

// IsSpecialChar returns true if ch may follow a backslash to form a special
// character escape.
func IsSpecialChar(ch rune) bool {
	_, ok := specialCodePoints[ch]
	return ok
}

// IsSpecialCodePoint returns true if cp has a special character escape.
func IsSpecialCodePoint(cp rune) bool {
	_, ok := specialChars[cp]
	return ok
}

// SpecialCodePoint returns the code point denoted by the special escape
// letter ch.
func SpecialCodePoint(ch rune) (rune, error) {
	cp, ok := specialCodePoints[ch]
	if !ok {
		return 0, fmt.Errorf("%q is not a special character", ch)
	}
	return cp, nil
}

// SpecialChar returns the escape letter used for the code point cp.
func SpecialChar(cp rune) (rune, error) {
	ch, ok := specialChars[cp]
	if !ok {
		return 0, fmt.Errorf("%#x is not a special code point", cp)
	}
	return ch, nil
}

// isPrintableSpecial reports whether cp is a special code point that is
// also printable, these only need escaping inside quotes.
func isPrintableSpecial(cp rune) bool {
	switch cp {
	case '\'', '"', '\\', '?':
		return true
	}
	return false
}

// Translate decodes the contents of a quoted MI C-string.
//
// When forDisplay is true special escapes are kept escaped, other escapes
// are resolved, the result goes through Transcode and any non printable
// code point is escaped again, so the returned string is safe to show to a
// user.
// When forDisplay is false every escape is resolved, the result goes
// through Transcode and newlines are converted to the host convention.
func Translate(raw string, forDisplay bool) string {
	if forDisplay {
		return Escape(Transcode(parse(raw, true)), false)
	}
	s := Transcode(parse(raw, false))
	if lineSeparator != "\n" {
		s = strings.Replace(s, "\n", lineSeparator, -1)
	}
	return s
}

// Parse resolves every escape sequence in s.
func Parse(s string) string {
	return parse(s, false)
}

func parse(s string, keepSpecial bool) string {
	cps := codePoints(s)
	var buf strings.Builder
	buf.Grow(len(s))
	for i := 0; i < len(cps); {
		if cps[i] != '\\' {
			buf.WriteRune(cps[i])
			i++
			continue
		}
		n, cp, special, ok := parseEscape(cps[i+1:])
		switch {
		case !ok:
			// Copy the backslash and carry on with whatever follows it.
			buf.WriteByte('\\')
			i++
			continue
		case special && keepSpecial:
			buf.WriteByte('\\')
			buf.WriteRune(cps[i+1])
		default:
			buf.WriteRune(cp)
		}
		i += 1 + n
	}
	return buf.String()
}

// parseEscape parses the escape sequence starting right after a backslash.
// It returns the number of code points consumed and the code point the
// sequence denotes.
func parseEscape(rest []rune) (n int, cp rune, special, ok bool) {
	if len(rest) == 0 {
		return 0, 0, false, false
	}
	c := rest[0]
	if cp, isSpecial := specialCodePoints[c]; isSpecial {
		return 1, cp, true, true
	}
	switch {
	case isOctal(c):
		val := rune(0)
		for n < len(rest) && n < 3 && isOctal(rest[n]) {
			val = val*8 + (rest[n] - '0')
			n++
		}
		if val > 0xFF {
			return 0, 0, false, false
		}
		return n, val, false, true
	case c == 'x':
		n, cp, ok = parseHex(rest[1:], 1, 4)
	case c == 'u':
		n, cp, ok = parseHex(rest[1:], 4, 4)
	case c == 'U':
		n, cp, ok = parseHex(rest[1:], 8, 8)
	default:
		return 0, 0, false, false
	}
	if !ok || cp > maxCodePoint || isSurrogate(cp) {
		return 0, 0, false, false
	}
	return n + 1, cp, false, true
}

// parseHex reads between min and max hexadecimal digits.
func parseHex(rest []rune, min, max int) (int, rune, bool) {
	var val uint64
	n := 0
	for n < len(rest) && n < max {
		d, ok := hexDigit(rest[n])
		if !ok {
			break
		}
		val = val*16 + uint64(d)
		n++
	}
	if n < min || val > maxCodePoint {
		return 0, 0, false
	}
	return n, rune(val), true
}

func isOctal(c rune) bool {
	return c >= '0' && c <= '7'
}

func hexDigit(c rune) (rune, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// Lone surrogates can not be stored in a Go string.
func isSurrogate(cp rune) bool {
	return cp >= 0xD800 && cp <= 0xDFFF
}

// Escape renders s so that every non printable code point is written as an
// escape sequence. The printable special characters ', ", \ and ? are only
// escaped if escapePrintable is true.
func Escape(s string, escapePrintable bool) string {
	var buf strings.Builder
	buf.Grow(len(s))
	cps := codePoints(s)
	for i, cp := range cps {
		if ch, ok := specialChars[cp]; ok {
			if !isPrintableSpecial(cp) || escapePrintable {
				buf.WriteByte('\\')
				buf.WriteRune(ch)
			} else {
				buf.WriteRune(cp)
			}
			continue
		}
		if unicode.IsGraphic(cp) {
			buf.WriteRune(cp)
			continue
		}
		switch {
		case cp == 0 && (i+1 == len(cps) || !isOctal(cps[i+1])):
			buf.WriteString(`\0`)
		case cp <= 0xFF:
			fmt.Fprintf(&buf, `\%03o`, cp)
		case cp <= 0xFFFF:
			fmt.Fprintf(&buf, `\u%04x`, cp)
		default:
			fmt.Fprintf(&buf, `\U%08x`, cp)
		}
	}
	return buf.String()
}

// Transcode repairs strings whose UTF-8 bytes were decoded as Latin-1.
// If every code point of s fits in Latin-1 and the Latin-1 encoding of s is
// valid UTF-8, that encoding is returned. Otherwise s is returned unchanged.
func Transcode(s string) string {
	ascii := true
	for _, r := range s {
		if r > 0xFF {
			return s
		}
		if r >= utf8.RuneSelf {
			ascii = false
		}
	}
	if ascii {
		return s
	}
	b, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil || !utf8.ValidString(b) {
		return s
	}
	return b
}

// codePoints splits s into code points, invalid UTF-8 bytes become the
// Latin-1 code point with the same value.
func codePoints(s string) []rune {
	cps := make([]rune, 0, len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			r = rune(s[i])
		}
		cps = append(cps, r)
		i += size
	}
	return cps
}
