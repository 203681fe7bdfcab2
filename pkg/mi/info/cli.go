package info

import (
	"regexp"
	"strings"

	"github.com/go-delve/gdbmi/pkg/mi"
)

var (
	programProcessRe = regexp.MustCompile(`process (\d+)`)
	programLWPRe     = regexp.MustCompile(`LWP (\d+)`)
)

// CLIInfoProgramInfo is the console output of info program:
//
//	Using the running image of child process 4242.
//	Using the running image of child Thread 0x7ffff7d8a740 (LWP 4242).
type CLIInfoProgramInfo struct {
	Info `yaml:"-"`

	PID string
}

// NewCLIInfoProgramInfo decodes the console output of info program.
func NewCLIInfoProgramInfo(out *mi.Output) *CLIInfoProgramInfo {
	r := &CLIInfoProgramInfo{Info: newInfo(out)}
	r.decodeText("info program", func(text string) {
		if m := programProcessRe.FindStringSubmatch(text); m != nil {
			r.PID = m[1]
		} else if m := programLWPRe.FindStringSubmatch(text); m != nil {
			r.PID = m[1]
		}
	})
	return r
}

// Signal is a row of the info signals table.
type Signal struct {
	Name        string
	Stop        bool
	Print       bool
	Pass        bool
	Description string
}

var signalRe = regexp.MustCompile(`^(\S+)\s+(Yes|No)\s+(Yes|No)\s+(Yes|No)\s+(.*)$`)

// CLIInfoSignalsInfo is the console output of info signals:
//
//	Signal        Stop	Print	Pass to program	Description
//
//	SIGHUP        Yes	Yes	Yes		Hangup
//	SIGINT        Yes	Yes	No		Interrupt
type CLIInfoSignalsInfo struct {
	Info `yaml:"-"`

	Signals []Signal
}

// NewCLIInfoSignalsInfo decodes the console output of info signals and
// info signals SIGNAL.
func NewCLIInfoSignalsInfo(out *mi.Output) *CLIInfoSignalsInfo {
	r := &CLIInfoSignalsInfo{Info: newInfo(out)}
	r.decodeText("info signals", func(text string) {
		r.Signals = []Signal{}
		for _, line := range strings.Split(text, "\n") {
			m := signalRe.FindStringSubmatch(strings.TrimSpace(line))
			if m == nil {
				continue
			}
			r.Signals = append(r.Signals, Signal{
				Name:        m[1],
				Stop:        m[2] == "Yes",
				Print:       m[3] == "Yes",
				Pass:        m[4] == "Yes",
				Description: strings.TrimSpace(m[5]),
			})
		}
	})
	return r
}

var (
	lineRangeRe  = regexp.MustCompile(`Line (\d+) of "([^"]*)"\s+starts at address (0x[0-9a-fA-F]+)(?: <[^>]*>)?\s+and ends at (0x[0-9a-fA-F]+)`)
	lineNoCodeRe = regexp.MustCompile(`Line (\d+) of "([^"]*)"\s+is at address (0x[0-9a-fA-F]+)(?: <[^>]*>)?\s+but contains no code`)
)

// CLIInfoLineInfo is the console output of info line:
//
//	Line 4 of "a.c" starts at address 0x401126 <main+4> and ends at 0x40112d <main+11>.
//	Line 2 of "a.c" is at address 0x401122 <main> but contains no code.
type CLIInfoLineInfo struct {
	Info `yaml:"-"`

	Line         int
	File         string
	StartAddress string
	// EndAddress is empty when the line contains no code.
	EndAddress string
}

// NewCLIInfoLineInfo decodes the console output of info line.
func NewCLIInfoLineInfo(out *mi.Output) *CLIInfoLineInfo {
	r := &CLIInfoLineInfo{Info: newInfo(out)}
	r.decodeText("info line", func(text string) {
		text = strings.Join(strings.Fields(text), " ")
		if m := lineRangeRe.FindStringSubmatch(text); m != nil {
			r.Line = r.atoi("line", m[1], 0)
			r.File = m[2]
			r.StartAddress = m[3]
			r.EndAddress = m[4]
			return
		}
		if m := lineNoCodeRe.FindStringSubmatch(text); m != nil {
			r.Line = r.atoi("line", m[1], 0)
			r.File = m[2]
			r.StartAddress = m[3]
		}
	})
	return r
}

// CLIShowEndianInfo is the console output of show endian:
//
//	The target endianness is set automatically (currently little endian).
type CLIShowEndianInfo struct {
	Info `yaml:"-"`

	BigEndian bool
}

// NewCLIShowEndianInfo decodes the console output of show endian.
func NewCLIShowEndianInfo(out *mi.Output) *CLIShowEndianInfo {
	r := &CLIShowEndianInfo{Info: newInfo(out)}
	r.decodeText("show endian", func(text string) {
		r.BigEndian = strings.Contains(text, "big endian")
	})
	return r
}

// CLIShowBoolInfo is the console output of a show command for a boolean
// setting:
//
//	Controlling the inferior in non-stop mode is off.
//	Printing of addresses is currently enabled.
//	Whether to confirm potentially dangerous operations is on.
type CLIShowBoolInfo struct {
	Info `yaml:"-"`

	Value bool
}

// NewCLIShowBoolInfo decodes the console output of show non-stop, show
// print address and the other boolean settings.
func NewCLIShowBoolInfo(out *mi.Output) *CLIShowBoolInfo {
	r := &CLIShowBoolInfo{Info: newInfo(out)}
	r.decodeText("show", func(text string) {
		text = strings.TrimSpace(text)
		r.Value = strings.Contains(text, "currently enabled") || strings.HasSuffix(strings.TrimSuffix(text, "."), " is on")
	})
	return r
}

// CLIShowNonStopInfo is the console output of show non-stop.
type CLIShowNonStopInfo = CLIShowBoolInfo

// CLIShowPrintInfo is the console output of show print SETTING.
type CLIShowPrintInfo = CLIShowBoolInfo
