// Package colorize highlights GDB/MI output.
package colorize

import (
	"fmt"
	"io"
	"io/ioutil"
	"strings"

	"github.com/go-delve/gdbmi/pkg/mi"
)

// Style describes the style of a chunk of text.
type Style uint8

const (
	NormalStyle Style = iota
	KeywordStyle
	StringStyle
	NumberStyle
	CommentStyle
	LineNoStyle
	ArrowStyle
	TabStyle
	NameStyle
)

// Print prints to out a highlighted version of the MI transcript read
// from reader, between lines startLine and endLine, with line numbers.
func Print(out io.Writer, reader io.Reader, startLine, endLine, arrowLine int, colorEscapes map[Style]string, altTabStr string) error {
	buf, err := ioutil.ReadAll(reader)
	if err != nil {
		return err
	}

	w := &lineWriter{
		w:            out,
		lineRange:    [2]int{startLine, endLine},
		arrowLine:    arrowLine,
		colorEscapes: colorEscapes,
		numbers:      true,
	}
	if len(altTabStr) > 0 {
		w.tabBytes = []byte(altTabStr)
	} else {
		w.tabBytes = []byte("\t")
	}
	write(w, buf)
	return nil
}

// Line prints a highlighted version of a single line of MI output,
// followed by a newline.
func Line(out io.Writer, line string, colorEscapes map[Style]string) {
	w := &lineWriter{
		w:            out,
		lineRange:    [2]int{1, 2},
		colorEscapes: colorEscapes,
		tabBytes:     []byte("\t"),
	}
	write(w, []byte(strings.TrimRight(line, "\r\n")+"\n"))
}

func write(w *lineWriter, buf []byte) {
	flush := func(start, end int, style Style) {
		if start < end {
			w.Write(style, buf[start:end], end == len(buf))
		}
	}

	cur := 0
	for _, tok := range tokens(buf) {
		flush(cur, tok.start, NormalStyle)
		flush(tok.start, tok.end, tok.style)
		cur = tok.end
	}
	if cur != len(buf) {
		flush(cur, len(buf), NormalStyle)
	}
}

type colorTok struct {
	style      Style
	start, end int // start and end positions of the token
}

// tokens splits buf into highlighted tokens, one line at a time. Lines
// that are not MI output are comments.
func tokens(buf []byte) []colorTok {
	toks := []colorTok{}
	for start := 0; start < len(buf); {
		end := start
		for end < len(buf) && buf[end] != '\n' {
			end++
		}
		toks = lineTokens(toks, string(buf[start:end]), start)
		start = end + 1
	}
	return toks
}

func lineTokens(toks []colorTok, line string, base int) []colorTok {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return toks
	}
	emit := func(style Style, start, end int) {
		if start < end {
			toks = append(toks, colorTok{style, base + start, base + end})
		}
	}
	switch rec := mi.ParseRecord(line).(type) {
	case *mi.PromptRecord:
		emit(CommentStyle, 0, len(line))
		return toks
	case *mi.StreamRecord:
		if rec.Synthetic() {
			emit(CommentStyle, 0, len(line))
			return toks
		}
	}

	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	emit(NumberStyle, 0, i)

	// sigil and class
	j := i + 1
	for j < len(line) && line[j] != ',' && line[j] != '"' {
		j++
	}
	emit(KeywordStyle, i, j)

	for i = j; i < len(line); {
		switch ch := line[i]; {
		case ch == '"':
			j = cstringEnd(line, i)
			emit(StringStyle, i, j)
			i = j
		case ch == '_' || ch == '-' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z'):
			j = i
			for j < len(line) && line[j] != '=' && line[j] != ',' && line[j] != '}' && line[j] != ']' && line[j] != '"' {
				j++
			}
			if j < len(line) && line[j] == '=' {
				emit(NameStyle, i, j)
			}
			i = j
		default:
			i++
		}
	}
	return toks
}

// cstringEnd returns the position after the c-string starting at i, or
// the end of the line if the c-string is not terminated.
func cstringEnd(line string, i int) int {
	for i++; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return len(line)
}

type lineWriter struct {
	w         io.Writer
	lineRange [2]int
	arrowLine int
	numbers   bool

	curStyle Style
	started  bool
	lineno   int

	colorEscapes map[Style]string

	tabBytes []byte
}

func (w *lineWriter) style(style Style) {
	if w.colorEscapes == nil {
		return
	}
	esc := w.colorEscapes[style]
	if esc == "" {
		esc = w.colorEscapes[NormalStyle]
	}
	fmt.Fprintf(w.w, "%s", esc)
}

func (w *lineWriter) inrange() bool {
	lno := w.lineno
	if !w.started {
		lno = w.lineno + 1
	}
	return lno >= w.lineRange[0] && lno < w.lineRange[1]
}

func (w *lineWriter) nl() {
	w.lineno++
	if !w.inrange() || !w.started || !w.numbers {
		return
	}
	w.style(ArrowStyle)
	if w.lineno == w.arrowLine {
		fmt.Fprintf(w.w, "=>")
	} else {
		fmt.Fprintf(w.w, "  ")
	}
	w.style(LineNoStyle)
	fmt.Fprintf(w.w, "%4d:\t", w.lineno)
	w.style(w.curStyle)
}

func (w *lineWriter) writeInternal(style Style, data []byte) {
	if !w.inrange() {
		return
	}

	if !w.started {
		w.started = true
		w.curStyle = style
		w.nl()
		if !w.numbers {
			w.style(style)
		}
	} else if w.curStyle != style {
		w.curStyle = style
		w.style(w.curStyle)
	}

	w.w.Write(data)
}

func (w *lineWriter) Write(style Style, data []byte, last bool) {
	cur := 0
	for i := range data {
		switch data[i] {
		case '\n':
			if last && i == len(data)-1 {
				w.writeInternal(style, data[cur:i])
				if w.curStyle != NormalStyle {
					w.style(NormalStyle)
				}
				if w.inrange() {
					w.w.Write([]byte{'\n'})
				}
				last = false
			} else {
				w.writeInternal(style, data[cur:i+1])
				w.nl()
			}
			cur = i + 1
		case '\t':
			w.writeInternal(style, data[cur:i])
			w.writeInternal(TabStyle, w.tabBytes)
			cur = i + 1
		}
	}
	if cur < len(data) {
		w.writeInternal(style, data[cur:])
	}
	if last {
		if w.curStyle != NormalStyle {
			w.style(NormalStyle)
		}
		if w.inrange() {
			w.w.Write([]byte{'\n'})
		}
	}
}
