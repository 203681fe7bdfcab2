package cstring

import (
	"testing"
)

func TestTranscode(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"", ""},
		{"ASCII", "ASCII"},

		// Latin-1 text stays as it is.
		{"\u00e4", "\u00e4"},
		{"abc\u00e4", "abc\u00e4"},
		{"\u00e4abc", "\u00e4abc"},
		{"abc\u00e4def", "abc\u00e4def"},
		{"abc\ndef\u00e4ghi\tjkl", "abc\ndef\u00e4ghi\tjkl"},

		// UTF-8 read as Latin-1 is repaired.
		{"\u00c3\u00a4", "\u00e4"},
		{"abc\u00c3\u00a4", "abc\u00e4"},
		{"\u00c3\u00a4abc", "\u00e4abc"},
		{"abc\u00c3\u00a4def", "abc\u00e4def"},
		{"abc\ndef\u00c3\u00a4ghi\tjkl", "abc\ndef\u00e4ghi\tjkl"},

		// Code points outside of Latin-1.
		{"\u3090", "\u3090"},
	}
	for _, tc := range tests {
		if got := Transcode(tc.in); got != tc.out {
			t.Errorf("Transcode(%q) = %q, expected %q", tc.in, got, tc.out)
		}
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in              string
		escapePrintable bool
		out             string
	}{
		{"", true, ""},
		{"abc", true, "abc"},
		{"\n", true, `\n`},
		{"\n\b", true, `\n\b`},
		{"\000\001\002\003\004\005\006\007\010\011\012\013\014\015\016\017", true, `\0\001\002\003\004\005\006\a\b\t\n\v\f\r\016\017`},
		{"\033", true, `\e`},
		{`\`, true, `\\`},
		{`\`, false, `\`},
		{"'\t\\", true, `\'\t\\`},
		{"'\t\\", false, `'\t\`},

		{"\000", true, `\0`},
		{"\177", true, `\177`},
		{"abc\177", true, `abc\177`},
		{"\177abc", true, `\177abc`},
		{"abc\177def", true, `abc\177def`},

		{"\u0098", true, `\230`},
		{"abc\u0098", true, `abc\230`},
		{"\u0098abc", true, `\230abc`},
		{"abc\u0098def", true, `abc\230def`},

		{"\ufffe", true, `\ufffe`},
		{"abc\ufffedef", true, `abc\ufffedef`},

		{"\U0010ffff", true, `\U0010ffff`},
		{"abc\U0010ffff", true, `abc\U0010ffff`},
		{"\U0010ffffabc", true, `\U0010ffffabc`},
		{"abc\U0010ffffdef", true, `abc\U0010ffffdef`},

		{"abc\n\tdef\\ghi\njkl\177\u0098\n\ufffe\U0010ffff?mno\"", true, `abc\n\tdef\\ghi\njkl\177\230\n\ufffe\U0010ffff\?mno\"`},
		{"abc\n\tdef\\ghi\njkl\177\u0098\n\ufffe\U0010ffff?mno\"", false, `abc\n\tdef\ghi\njkl\177\230\n\ufffe\U0010ffff?mno"`},

		// Bytes that are not UTF-8 are Latin-1 code points.
		{"abc\x98", true, `abc\230`},
	}
	for _, tc := range tests {
		if got := Escape(tc.in, tc.escapePrintable); got != tc.out {
			t.Errorf("Escape(%q, %v) = %q, expected %q", tc.in, tc.escapePrintable, got, tc.out)
		}
	}
}

func TestSpecialTable(t *testing.T) {
	for _, ch := range "iw" {
		if IsSpecialChar(ch) {
			t.Errorf("%q reported as special", ch)
		}
		if _, err := SpecialCodePoint(ch); err == nil {
			t.Errorf("expected error for %q", ch)
		}
	}
	for _, cp := range []rune{0x69, 0x77, 0x61, 0x6E} {
		if IsSpecialCodePoint(cp) {
			t.Errorf("%#x reported as special", cp)
		}
		if _, err := SpecialChar(cp); err == nil {
			t.Errorf("expected error for %#x", cp)
		}
	}

	tests := []struct {
		ch rune
		cp rune
	}{
		{'a', 0x07},
		{'b', 0x08},
		{'e', 0x1B},
		{'E', 0x1B},
		{'f', 0x0C},
		{'n', 0x0A},
		{'r', 0x0D},
		{'t', 0x09},
		{'v', 0x0B},
		{'\'', 0x27},
		{'"', 0x22},
		{'\\', 0x5C},
		{'?', 0x3F},
	}
	for _, tc := range tests {
		if !IsSpecialChar(tc.ch) {
			t.Errorf("%q not reported as special", tc.ch)
		}
		if !IsSpecialCodePoint(tc.cp) {
			t.Errorf("%#x not reported as special", tc.cp)
		}
		cp, err := SpecialCodePoint(tc.ch)
		if err != nil || cp != tc.cp {
			t.Errorf("SpecialCodePoint(%q) = %#x, %v", tc.ch, cp, err)
		}
		if tc.ch == 'E' {
			continue
		}
		ch, err := SpecialChar(tc.cp)
		if err != nil || ch != tc.ch {
			t.Errorf("SpecialChar(%#x) = %q, %v", tc.cp, ch, err)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"", ""},
		{"abc", "abc"},

		// special characters
		{`\n`, "\n"},
		{`\\`, `\`},
		{`\'\t\\`, "'\t\\"},
		{`\w`, `\w`},
		{`\`, `\`},
		{`abc\`, `abc\`},
		{`\www`, `\www`},
		{`abc\www`, `abc\www`},
		{`\'\z\\`, `'\z\`},
		{`\'\z\`, `'\z\`},

		// octal
		{`\141\142\143`, "abc"},
		{`\141\142\143\0`, "abc\000"},
		{`\141\142\143\12`, "abc\n"},
		{`\141\\142\143\\`, `a\142c\`},
		{`\12`, "\n"},
		{`\012`, "\n"},
		{`'\011\`, "'\t\\"},
		{`\177`, "\177"},
		{`\377`, "\u00ff"},
		{`\3777`, "\u00ff7"},
		{`abc\177`, "abc\177"},
		{`\177abc`, "\177abc"},
		{`abc\177def`, "abc\177def"},
		{`\0`, "\000"},
		{`\1`, "\001"},
		{`\1a`, "\001a"},
		{`\18`, "\0018"},
		{`\01`, "\001"},
		{`\01a`, "\001a"},
		{`\001`, "\001"},
		{`\001a`, "\001a"},
		{`\0011`, "\0011"},
		{`\0011a`, "\0011a"},
		{`\1111`, "\1111"},
		{`\400`, `\400`},
		{`\4000`, `\4000`},
		{`\8`, `\8`},
		{`\90`, `\90`},
		{`\ 0`, `\ 0`},
		{`\141\142\143\`, `abc\`},

		// hexadecimal
		{`\x0`, "\000"},
		{`\xa`, "\n"},
		{`\xa0`, "\u00a0"},
		{`\xag`, "\ng"},
		{`\x0a`, "\n"},
		{`\x0a0`, "\u00a0"},
		{`\x0ag`, "\ng"},
		{`\x00a`, "\n"},
		{`\x00a0`, "\u00a0"},
		{`\x00ag`, "\ng"},
		{`\x000a`, "\n"},
		{`\x000a0`, "\n0"},
		{`\x000ag`, "\ng"},
		{`\x0000a`, "\000a"},
		{`\x0000a0`, "\000a0"},
		{`\x0000ag`, "\000ag"},
		{`abc\x20def`, "abc\u20def"},
		{`abc\x20def\xa`, "abc\u20def\n"},
		{`abc\x20ghi`, "abc ghi"},
		{`abc\x20ghi\xa`, "abc ghi\n"},
		{`\x`, `\x`},
		{`abc\x`, `abc\x`},
		{`\xwww`, `\xwww`},
		{`\x\`, `\x\`},
		{`\x 0`, `\x 0`},
		{`\x\0`, "\\x\000"},

		// short unicode
		{`\u0000`, "\000"},
		{`\u000f`, "\017"},
		{`\u00ff`, "\u00ff"},
		{`\u0fff`, "\u0fff"},
		{`\uffff`, "\uffff"},
		{`\u`, `\u`},
		{`abc\u`, `abc\u`},
		{`\uwww`, `\uwww`},
		{`\u\`, `\u\`},
		{`\u 0`, `\u 0`},
		{`\u\0`, "\\u\000"},
		{`\u0`, `\u0`},
		{`\u00`, `\u00`},
		{`\u000`, `\u000`},
		{`\u000g`, `\u000g`},
		{`\ug`, `\ug`},
		{`\ud800`, `\ud800`},

		// long unicode
		{`\U00000000`, "\000"},
		{`\U0000000f`, "\017"},
		{`\U000000ff`, "\u00ff"},
		{`\U00000fff`, "\u0fff"},
		{`\U0000ffff`, "\uffff"},
		{`\U000fffff`, "\U000fffff"},
		{`\U0010ffff`, "\U0010ffff"},
		{`\U`, `\U`},
		{`abc\U`, `abc\U`},
		{`\Uwww`, `\Uwww`},
		{`\U\`, `\U\`},
		{`\U 0`, `\U 0`},
		{`\U\0`, "\\U\000"},
		{`\U0`, `\U0`},
		{`\U00`, `\U00`},
		{`\U000`, `\U000`},
		{`\U0000`, `\U0000`},
		{`\U00000`, `\U00000`},
		{`\U000000`, `\U000000`},
		{`\U0000000`, `\U0000000`},
		{`\U0000000g`, `\U0000000g`},
		{`\U00110000`, `\U00110000`},
		{`\U00f00000`, `\U00f00000`},
		{`\U0f000000`, `\U0f000000`},
		{`\Uf0000000`, `\Uf0000000`},
		{`\Uffffffff`, `\Uffffffff`},
		{`\Ufffffff`, `\Ufffffff`},
		{`\Ug`, `\Ug`},

		// raw bytes that are not UTF-8
		{"abc\xe4", "abc\u00e4"},
	}
	for _, tc := range tests {
		if got := Parse(tc.in); got != tc.out {
			t.Errorf("Parse(%q) = %q, expected %q", tc.in, got, tc.out)
		}
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		in         string
		forDisplay bool
		out        string
	}{
		{"", false, ""},
		{"", true, ""},
		{"abc", false, "abc"},
		{"abc", true, "abc"},

		{"\t", true, `\t`},
		{"\t", false, "\t"},
		{`\t`, true, `\t`},
		{`\t`, false, "\t"},
		{"\t\\t", true, `\t\t`},
		{"\t\\t", false, "\t\t"},
		{"\\t\t", true, `\t\t`},
		{"\\t\t", false, "\t\t"},
		{`'"`, true, `'"`},
		{`'"`, false, `'"`},
		{`\'\"`, true, `\'\"`},
		{`\'\"`, false, `'"`},
		{`'\"`, true, `'\"`},
		{`'\"`, false, `'"`},
		{`\'"`, true, `\'"`},
		{`\'"`, false, `'"`},

		{`\x0000`, true, `\0`},
		{`\x0000`, false, "\000"},
		{`abc\x31\x32\x33www`, true, "abc123www"},
		{`abc\x0031\x0032\x0033www`, true, "abc123www"},

		{`\000`, true, `\0`},
		{`\000`, false, "\000"},
		{`\0`, true, `\0`},
		{`\0`, false, "\000"},
		{`abc\222def`, true, `abc\222def`},
		{`abc\222def`, false, "abc\u0092def"},
		{`abc\303def`, true, "abc\u00c3def"},
		{`abc\303def`, false, "abc\u00c3def"},
		{`abc\303\244def`, true, "abc\u00e4def"},
		{`abc"def`, true, `abc"def`},
		{`abc"def`, false, `abc"def`},
		{`abc'def`, true, `abc'def`},
		{`abc'def`, false, `abc'def`},
		{`abc\"def`, true, `abc\"def`},
		{`abc\"def`, false, `abc"def`},
		{`abc\'def`, true, `abc\'def`},
		{`abc\'def`, false, `abc'def`},

		{`\u0000`, true, `\0`},
		{`\u0000`, false, "\000"},
		{`abc\u0031\u0032\u0033def`, true, "abc123def"},

		{`\U00000000`, true, `\0`},
		{`\U00000000`, false, "\000"},
		{`abc\U00000031\U00000032\U00000033def`, true, "abc123def"},
	}
	for _, tc := range tests {
		if got := Translate(tc.in, tc.forDisplay); got != tc.out {
			t.Errorf("Translate(%q, %v) = %q, expected %q", tc.in, tc.forDisplay, got, tc.out)
		}
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	for _, s := range []string{
		"",
		"plain text",
		"\a\b\033\f\n\r\t\v'\"\\?",
		"\000\001\177\u0080\u0098\u00ff",
		"\u3090\ufffe\U0001f600\U0010ffff",
		"mixed \\n literal and \n newline",
		"\x001",
		"a\x007b",
		"\x00\x008",
	} {
		esc := Escape(s, true)
		if got := Parse(esc); got != s {
			t.Errorf("Parse(Escape(%q)) = %q (escaped %q)", s, got, esc)
		}
	}
}

func TestEscapeNul(t *testing.T) {
	for _, tc := range []struct{ in, out string }{
		{"\x00", `\0`},
		{"\x00a", `\0a`},
		{"\x008", `\08`},
		{"\x001", `\0001`},
		{"\x00\x007", `\0\0007`},
	} {
		if got := Escape(tc.in, true); got != tc.out {
			t.Errorf("Escape(%q) = %q, expected %q", tc.in, got, tc.out)
		}
	}
}

func TestUnicodeBoundary(t *testing.T) {
	if got := Parse(`\U0010FFFF`); got != "\U0010ffff" {
		t.Errorf("got %q", got)
	}
	if got := Parse(`\U00110000`); got != `\U00110000` {
		t.Errorf("got %q", got)
	}
}
