package terminal

import (
	"fmt"
	"strings"
	"testing"

	"github.com/go-delve/gdbmi/pkg/config"
)

func TestCompleter(t *testing.T) {
	term := newTestTerm(nil)
	complete := term.completer()

	tests := []struct {
		line string
		want []string
	}{
		{"dec", []string{"decode"}},
		{"decode stack-info-d", []string{"decode stack-info-depth"}},
		{"d   -thread-list", []string{"d   thread-list-ids"}},
		{"feed ^do", nil},
	}
	for _, tc := range tests {
		got := complete(tc.line)
		if strings.Join(got, "|") != strings.Join(tc.want, "|") {
			t.Errorf("complete(%q) = %q, want %q", tc.line, got, tc.want)
		}
	}
}

func TestRecordColors(t *testing.T) {
	term := newTestTerm(&config.Config{RecordColors: map[string]int{"result": ansiBrGreen, "exec": 12}})
	term.dumb = false
	term.setColors()

	if got, want := term.recordColors["result"], fmt.Sprintf(terminalHighlightEscapeCode, ansiBrGreen); got != want {
		t.Errorf("result color %q, want %q", got, want)
	}
	if got, want := term.recordColors["exec"], fmt.Sprintf(terminalHighlightEscapeCode, ansiYellow); got != want {
		t.Errorf("invalid color not replaced by default: %q, want %q", got, want)
	}
	if _, ok := term.recordColors["console"]; ok {
		t.Errorf("console records should not be colored")
	}

	ft := &FakeTerminal{Term: term, t: t}
	out := ft.MustExec("^done")
	if want := "\033[92m^done\033[0m\n"; out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestTruncate(t *testing.T) {
	n := 5
	term := newTestTerm(&config.Config{MaxStringLen: &n})
	for _, tc := range []struct{ in, out string }{
		{"abc", "abc"},
		{"abcde", "abcde"},
		{"abcdef", "abcde..."},
	} {
		if got := term.truncate(tc.in); got != tc.out {
			t.Errorf("truncate(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}
