package terminal

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/derekparker/trie"
	"github.com/go-delve/liner"
	"github.com/mattn/go-colorable"

	"github.com/go-delve/gdbmi/pkg/config"
	"github.com/go-delve/gdbmi/pkg/logflags"
	"github.com/go-delve/gdbmi/pkg/mi"
	"github.com/go-delve/gdbmi/pkg/mi/event"
	"github.com/go-delve/gdbmi/pkg/mi/info"
	"github.com/go-delve/gdbmi/pkg/terminal/colorize"
	"github.com/go-delve/gdbmi/pkg/terminal/starbind"
)

const (
	terminalHighlightEscapeCode string = "\033[%2dm"
	terminalResetEscapeCode     string = "\033[0m"
)

const (
	ansiBlack     = 30
	ansiRed       = 31
	ansiGreen     = 32
	ansiYellow    = 33
	ansiBlue      = 34
	ansiMagenta   = 35
	ansiCyan      = 36
	ansiWhite     = 37
	ansiBrBlack   = 90
	ansiBrRed     = 91
	ansiBrGreen   = 92
	ansiBrYellow  = 93
	ansiBrBlue    = 94
	ansiBrMagenta = 95
	ansiBrCyan    = 96
	ansiBrWhite   = 97
)

// defaultRecordColors are the colors of the summaries printed for each
// kind of record.
var defaultRecordColors = map[string]int{
	"result":  ansiGreen,
	"exec":    ansiYellow,
	"status":  ansiBlue,
	"notify":  ansiCyan,
	"console": 0,
	"target":  ansiMagenta,
	"log":     ansiBrBlack,
	"error":   ansiRed,
}

// Term represents the terminal running midecode.
type Term struct {
	conf     *config.Config
	prompt   string
	line     *liner.State
	cmds     *Commands
	dumb     bool
	stdout   *transcriptWriter
	InitFile string

	recordColors map[string]string

	asm         *mi.Assembler
	lastOutput  *mi.Output
	lastResult  *mi.Output
	lastAsync   *mi.AsyncRecord
	starlarkEnv *starbind.Env
	log         logflags.Logger
}

// New returns a new Term.
func New(conf *config.Config) *Term {
	cmds := MICommands()
	if conf != nil && conf.Aliases != nil {
		cmds.Merge(conf.Aliases)
	}

	if conf == nil {
		conf = &config.Config{}
	}

	var w io.Writer = os.Stdout

	dumb := strings.ToLower(os.Getenv("TERM")) == "dumb"
	if !dumb {
		// Translates ANSI escapes for the Windows console, os.Stdout elsewhere.
		w = colorable.NewColorableStdout()
	}

	t := &Term{
		conf:   conf,
		prompt: "(mi) ",
		line:   liner.NewLiner(),
		cmds:   cmds,
		dumb:   dumb,
		stdout: &transcriptWriter{pw: &pagingWriter{w: w}},
		asm:    mi.NewAssembler(conf.AssemblerConfig()),
		log:    logflags.REPLLogger(),
	}
	t.setColors()
	t.starlarkEnv = starbind.New(starlarkContext{t}, t.stdout)
	return t
}

// setColors computes the escape codes used to highlight MI output from
// the configuration. Invalid colors fall back to the default of the kind.
func (t *Term) setColors() {
	t.recordColors = map[string]string{}
	if t.dumb {
		t.stdout.colorEscapes = nil
		return
	}
	for kind, color := range defaultRecordColors {
		if c, ok := t.conf.RecordColors[kind]; ok && validColor(c) {
			color = c
		}
		if color != 0 {
			t.recordColors[kind] = fmt.Sprintf(terminalHighlightEscapeCode, color)
		}
	}
	t.stdout.colorEscapes = map[colorize.Style]string{
		colorize.NormalStyle:  terminalResetEscapeCode,
		colorize.KeywordStyle: fmt.Sprintf(terminalHighlightEscapeCode, ansiYellow),
		colorize.StringStyle:  fmt.Sprintf(terminalHighlightEscapeCode, ansiGreen),
		colorize.NumberStyle:  fmt.Sprintf(terminalHighlightEscapeCode, ansiBrCyan),
		colorize.NameStyle:    fmt.Sprintf(terminalHighlightEscapeCode, ansiCyan),
		colorize.CommentStyle: fmt.Sprintf(terminalHighlightEscapeCode, ansiBrBlack),
		colorize.LineNoStyle:  fmt.Sprintf(terminalHighlightEscapeCode, ansiBrBlack),
		colorize.ArrowStyle:   fmt.Sprintf(terminalHighlightEscapeCode, ansiBlue),
	}
}

func validColor(c int) bool {
	return (c >= ansiBlack && c <= ansiWhite) || (c >= ansiBrBlack && c <= ansiBrWhite)
}

// Close returns the terminal to its previous mode.
func (t *Term) Close() {
	t.line.Close()
}

func (t *Term) sigintGuard(ch <-chan os.Signal) {
	for range ch {
		t.starlarkEnv.Cancel()
		fmt.Fprintf(os.Stderr, "received SIGINT, stopping script\n")
	}
}

// Run begins running midecode in the terminal.
func (t *Term) Run() (int, error) {
	defer t.Close()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT)
	go t.sigintGuard(ch)

	t.line.SetCompleter(t.completer())

	fullHistoryFile, err := config.GetHistoryFilePath()
	if err != nil {
		fmt.Printf("Unable to load history file: %v.", err)
	}

	f, err := os.Open(fullHistoryFile)
	if err != nil {
		f, err = os.Create(fullHistoryFile)
		if err != nil {
			fmt.Printf("Unable to open history file: %v. History will not be saved for this session.", err)
		}
	}

	if f != nil {
		t.line.ReadHistory(f)
		f.Close()
	}
	fmt.Println("Type 'help' for list of commands, MI output lines are decoded as they are entered.")

	if t.InitFile != "" {
		err := t.cmds.executeFile(t, t.InitFile)
		if err != nil {
			if _, ok := err.(ExitRequestError); ok {
				return t.handleExit()
			}
			fmt.Fprintf(os.Stderr, "Error executing init file: %s\n", err)
		}
	}

	for {
		cmdstr, err := t.promptForInput()
		if err != nil {
			if err == io.EOF {
				fmt.Println("exit")
				return t.handleExit()
			}
			return 1, fmt.Errorf("Prompt for input failed.\n")
		}

		if err := t.cmds.Call(cmdstr, t); err != nil {
			if _, ok := err.(ExitRequestError); ok {
				return t.handleExit()
			}
			fmt.Fprintf(os.Stderr, "Command failed: %s\n", err)
		}
	}
}

// completer completes command names, and the names of the decoders after
// "decode".
func (t *Term) completer() liner.Completer {
	cmdnames := trie.New()
	for _, cmd := range t.cmds.cmds {
		for _, alias := range cmd.aliases {
			cmdnames.Add(alias, nil)
		}
	}
	decoders := trie.New()
	for _, name := range info.Commands() {
		decoders.Add(name, nil)
	}
	return func(line string) (c []string) {
		if i := strings.Index(line, " "); i >= 0 {
			if !t.cmds.isDecode(line[:i]) {
				return nil
			}
			args := strings.TrimLeft(line[i:], " ")
			for _, name := range decoders.PrefixSearch(strings.TrimPrefix(args, "-")) {
				c = append(c, line[:len(line)-len(args)]+name)
			}
			return c
		}
		return cmdnames.PrefixSearch(strings.ToLower(line))
	}
}

// Feed feeds one line of MI output to the assembler and prints the
// resulting output, if any.
func (t *Term) Feed(line string) error {
	if t.conf.ShowRaw {
		t.stdout.ColorizeLine(line)
	}
	out := t.asm.Feed(line)
	if out == nil {
		return nil
	}
	t.lastOutput = out
	if out.ResultRecord() != nil {
		t.lastResult = out
	}
	if ar, ok := out.Record().(*mi.AsyncRecord); ok {
		t.lastAsync = ar
	}
	t.printOutput(out)
	return t.starlarkEnv.OnOutput(out)
}

// printOutput prints a one line summary of out.
func (t *Term) printOutput(out *mi.Output) {
	kind, s := Summarize(out)
	if kind == "" {
		return
	}
	t.Println(kind, t.truncate(s))
}

// Summarize returns a one line summary of out and the kind of record it
// describes, one of the keys of the record-colors configuration. Prompts
// have no summary.
func Summarize(out *mi.Output) (kind, summary string) {
	if out.IsPrompt() {
		return "", ""
	}
	if rr := out.ResultRecord(); rr != nil {
		s := "^" + rr.Class().String()
		if rr.Token() != mi.NoToken {
			s = fmt.Sprintf("%d%s", rr.Token(), s)
		}
		if n := len(out.OOBRecords()); n > 0 {
			s += fmt.Sprintf(" (%d records)", n)
		}
		if rr.Class() == mi.ClassError {
			return "error", s + ": " + rr.ErrorMessage()
		}
		return "result", s
	}
	switch rec := out.Record().(type) {
	case *mi.AsyncRecord:
		return rec.AsyncKind().String(), event.Describe(event.Decode(rec))
	case *mi.StreamRecord:
		kind := rec.StreamKind().String()
		if rec.Synthetic() {
			kind = "log"
		}
		return kind, strings.TrimSuffix(rec.Text(), "\n")
	}
	return "", ""
}

func (t *Term) truncate(s string) string {
	if t.conf.MaxStringLen == nil || *t.conf.MaxStringLen <= 0 || len(s) <= *t.conf.MaxStringLen {
		return s
	}
	return s[:*t.conf.MaxStringLen] + "..."
}

// Println prints a line to the terminal in the color of kind.
func (t *Term) Println(kind, str string) {
	t.stdout.Colored(t.recordColors[kind], str)
	fmt.Fprintln(t.stdout)
}

func (t *Term) promptForInput() (string, error) {
	l, err := t.line.Prompt(t.prompt)
	if err != nil {
		return "", err
	}

	l = strings.TrimSuffix(l, "\n")
	if l != "" {
		t.line.AppendHistory(l)
	}

	return l, nil
}

func (t *Term) handleExit() (int, error) {
	fullHistoryFile, err := config.GetHistoryFilePath()
	if err != nil {
		fmt.Println("Error saving history file:", err)
	} else {
		if f, err := os.OpenFile(fullHistoryFile, os.O_RDWR, 0666); err == nil {
			_, err = t.line.WriteHistory(f)
			if err != nil {
				fmt.Println("readline history error:", err)
			}
			f.Close()
		}
	}

	if err := t.stdout.CloseTranscript(); err != nil {
		return 1, err
	}
	if n := len(t.asm.Pending()); n > 0 {
		t.log.Warnf("%d records were not followed by a command result", n)
	}
	return 0, nil
}
