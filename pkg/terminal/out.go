package terminal

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/go-delve/gdbmi/pkg/terminal/colorize"
)

// transcriptWriter is the REPL's stdout. Everything written to it goes to
// the terminal (through a pagingWriter) and, while a transcript is active,
// to the transcript file without color escapes.
type transcriptWriter struct {
	pw           *pagingWriter
	colorEscapes map[colorize.Style]string

	file     *bufio.Writer
	fh       io.Closer
	fileOnly bool
}

// both calls fn once for the terminal, with the active color escapes, and
// once for the transcript file, with none.
func (w *transcriptWriter) both(fn func(out io.Writer, escapes map[colorize.Style]string) error) error {
	if !w.fileOnly {
		if err := fn(w.pw, w.colorEscapes); err != nil {
			return err
		}
	}
	if w.file != nil {
		return fn(w.file, nil)
	}
	return nil
}

func (w *transcriptWriter) Write(p []byte) (int, error) {
	n := len(p)
	err := w.both(func(out io.Writer, _ map[colorize.Style]string) error {
		_, err := out.Write(p)
		return err
	})
	return n, err
}

// ColorizePrint prints lines startLine to endLine of the MI transcript read
// from reader, marking arrowLine.
func (w *transcriptWriter) ColorizePrint(reader io.ReadSeeker, startLine, endLine, arrowLine int) error {
	return w.both(func(out io.Writer, escapes map[colorize.Style]string) error {
		if _, err := reader.Seek(0, io.SeekStart); err != nil {
			return err
		}
		return colorize.Print(out, reader, startLine, endLine, arrowLine, escapes, "")
	})
}

// ColorizeLine prints one line of MI output highlighted by token kind.
func (w *transcriptWriter) ColorizeLine(line string) {
	w.both(func(out io.Writer, escapes map[colorize.Style]string) error {
		colorize.Line(out, line, escapes)
		return nil
	})
}

// Colored writes str wrapped in escape and a reset code. Without colors,
// or in the transcript, str is written alone.
func (w *transcriptWriter) Colored(escape, str string) {
	w.both(func(out io.Writer, escapes map[colorize.Style]string) error {
		if escape != "" && escapes != nil {
			str := escape + str + terminalResetEscapeCode
			_, err := io.WriteString(out, str)
			return err
		}
		_, err := io.WriteString(out, str)
		return err
	})
}

// Echo writes str to the transcript file only.
func (w *transcriptWriter) Echo(str string) {
	if w.file != nil {
		w.file.WriteString(str)
	}
}

func (w *transcriptWriter) Flush() {
	if w.file != nil {
		w.file.Flush()
	}
}

// TranscribeTo starts copying output to fh, closing any previous
// transcript. With fileOnly set the terminal receives nothing.
func (w *transcriptWriter) TranscribeTo(fh io.WriteCloser, fileOnly bool) {
	w.CloseTranscript()
	w.fh = fh
	w.file = bufio.NewWriter(fh)
	w.fileOnly = fileOnly
}

func (w *transcriptWriter) CloseTranscript() error {
	if w.file == nil {
		return nil
	}
	w.file.Flush()
	err := w.fh.Close()
	w.file, w.fh, w.fileOnly = nil, nil, false
	return err
}

type pagingWriterMode uint8

const (
	pagingWriterNormal pagingWriterMode = iota
	pagingWriterMaybe
	pagingWriterPaging
)

// pagingWriter writes to w. Between PageMaybe and Reset it counts the
// screen lines it has written and, once they exceed the terminal height,
// sends the buffered output and everything after it to a pager.
type pagingWriter struct {
	mode pagingWriterMode
	w    io.Writer

	buf    []byte
	pager  string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	cancel func()

	lines, columns int
	row, col       int
	lastnl         bool
}

func (w *pagingWriter) Write(p []byte) (int, error) {
	switch w.mode {
	case pagingWriterMaybe:
		w.buf = append(w.buf, p...)
		if !w.advance(p) {
			if len(p) > 0 {
				w.lastnl = p[len(p)-1] == '\n'
			}
			return w.w.Write(p)
		}
		if err := w.startPager(); err != nil {
			w.mode = pagingWriterNormal
			return w.w.Write(p)
		}
		return len(p), nil
	case pagingWriterPaging:
		n, err := w.stdin.Write(p)
		if err != nil && w.cancel != nil {
			w.cancel()
			w.cancel = nil
		}
		return n, err
	default:
		return w.w.Write(p)
	}
}

// advance moves the cursor position over p and reports whether the output
// no longer fits on one screen.
func (w *pagingWriter) advance(p []byte) bool {
	for _, ch := range p {
		w.col++
		if ch == '\n' || (w.columns > 0 && w.col > w.columns) {
			w.row++
			w.col = 0
		}
	}
	return w.lines > 0 && w.row > w.lines
}

func (w *pagingWriter) startPager() error {
	cmd := exec.Command(w.pager)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	if !w.lastnl {
		io.WriteString(w.w, "\n")
	}
	io.WriteString(w.w, "Sending output to pager...\n")
	stdin.Write(w.buf)
	w.cmd, w.stdin, w.buf = cmd, stdin, nil
	w.mode = pagingWriterPaging
	return nil
}

// Reset waits for the pager, if one was started, and returns to writing
// to w directly.
func (w *pagingWriter) Reset() {
	w.mode = pagingWriterNormal
	w.buf = nil
	if w.cmd != nil {
		w.stdin.Close()
		w.cmd.Wait()
		w.cmd, w.stdin = nil, nil
	}
}

// PageMaybe enables paging when w is a terminal, or when MIDECODE_PAGER
// names a pager explicitly. cancel is called the first time a write to the
// pager fails.
func (w *pagingWriter) PageMaybe(cancel func()) {
	if w.mode != pagingWriterNormal {
		return
	}
	pager := os.Getenv("MIDECODE_PAGER")
	if pager == "" {
		if strings.ToLower(os.Getenv("TERM")) == "dumb" {
			return
		}
		if f, ok := w.w.(*os.File); ok && !isatty.IsTerminal(f.Fd()) {
			return
		}
		if pager = os.Getenv("PAGER"); pager == "" {
			pager = "more"
		}
	}
	w.mode = pagingWriterMaybe
	w.pager = pager
	w.cancel = cancel
	w.row, w.col = 0, 0
	w.lastnl = true
	w.getWindowSize()
}
