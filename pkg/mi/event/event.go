// Package event decodes MI async records into typed events.
//
// Exec records (*stopped, *running) report changes of the execution state
// of the inferior, notify records (=thread-created, =breakpoint-modified,
// ...) report changes of the debugger state. Records that this package does
// not know about are returned as *Unknown.
package event

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-delve/gdbmi/pkg/logflags"
	"github.com/go-delve/gdbmi/pkg/mi"
	"github.com/go-delve/gdbmi/pkg/mi/info"
)

// Event is a decoded async record.
type Event interface {
	// Record returns the record the event was decoded from.
	Record() *mi.AsyncRecord
}

type base struct {
	rec *mi.AsyncRecord
}

func (b base) Record() *mi.AsyncRecord { return b.rec }

// Stop reasons reported by *stopped.
const (
	ReasonBreakpointHit     = "breakpoint-hit"
	ReasonWatchpointTrigger = "watchpoint-trigger"
	ReasonReadWatchpoint    = "read-watchpoint-trigger"
	ReasonAccessWatchpoint  = "access-watchpoint-trigger"
	ReasonWatchpointScope   = "watchpoint-scope"
	ReasonFunctionFinished  = "function-finished"
	ReasonLocationReached   = "location-reached"
	ReasonEndSteppingRange  = "end-stepping-range"
	ReasonSignalReceived    = "signal-received"
	ReasonExited            = "exited"
	ReasonExitedNormally    = "exited-normally"
	ReasonExitedSignalled   = "exited-signalled"
	ReasonSolibEvent        = "solib-event"
	ReasonFork              = "fork"
	ReasonVfork             = "vfork"
	ReasonSyscallEntry      = "syscall-entry"
	ReasonSyscallReturn     = "syscall-return"
	ReasonExec              = "exec"
	ReasonNoHistory         = "no-history"
	ReasonTracepointHit     = "tracepoint-hit"
)

// Watchpoint describes the watchpoint that triggered a stop.
type Watchpoint struct {
	Number     string
	Expression string
	Old        string
	New        string
	Value      string
}

// Stopped is *stopped: the inferior, or some of its threads, stopped.
type Stopped struct {
	base
	Reason   string
	ThreadID string
	// StoppedThreads lists the stopped threads, AllStopped is set instead
	// when GDB reports "all".
	StoppedThreads []string
	AllStopped     bool
	Core           string
	Frame          *info.Frame

	BreakpointNumber string
	Disp             string
	Watchpoint       *Watchpoint

	SignalName    string
	SignalMeaning string

	// ExitCode is set by exited, it is in octal on the wire.
	ExitCode int

	// GDBResultVar and ReturnValue are set by function-finished.
	GDBResultVar string
	ReturnValue  string

	SyscallNumber string
	SyscallName   string

	NewThreadID string
	NewPID      string
	NewExec     string
}

// Exited returns true if the stop is the end of the inferior.
func (s *Stopped) Exited() bool {
	switch s.Reason {
	case ReasonExited, ReasonExitedNormally, ReasonExitedSignalled:
		return true
	}
	return false
}

// Running is *running.
type Running struct {
	base
	// ThreadID is "all" when every thread resumed.
	ThreadID string
}

// ThreadCreated is =thread-created.
type ThreadCreated struct {
	base
	ID      string
	GroupID string
}

// ThreadExited is =thread-exited.
type ThreadExited struct {
	base
	ID      string
	GroupID string
}

// ThreadSelected is =thread-selected.
type ThreadSelected struct {
	base
	ID    string
	Frame *info.Frame
}

// ThreadGroupAdded is =thread-group-added.
type ThreadGroupAdded struct {
	base
	ID string
}

// ThreadGroupRemoved is =thread-group-removed.
type ThreadGroupRemoved struct {
	base
	ID string
}

// ThreadGroupStarted is =thread-group-started.
type ThreadGroupStarted struct {
	base
	ID  string
	PID string
}

// ThreadGroupExited is =thread-group-exited.
type ThreadGroupExited struct {
	base
	ID string
	// ExitCode is only valid if HasExitCode is set.
	ExitCode    int
	HasExitCode bool
}

// LibraryLoaded is =library-loaded.
type LibraryLoaded struct {
	base
	Library info.SharedLibrary
}

// LibraryUnloaded is =library-unloaded.
type LibraryUnloaded struct {
	base
	Library info.SharedLibrary
}

// BreakpointCreated is =breakpoint-created.
type BreakpointCreated struct {
	base
	Breakpoint info.Breakpoint
}

// BreakpointModified is =breakpoint-modified.
type BreakpointModified struct {
	base
	Breakpoint info.Breakpoint
}

// BreakpointDeleted is =breakpoint-deleted.
type BreakpointDeleted struct {
	base
	ID string
}

// CmdParamChanged is =cmd-param-changed, sent when a setting changes.
type CmdParamChanged struct {
	base
	Param string
	Value string
}

// MemoryChanged is =memory-changed.
type MemoryChanged struct {
	base
	ThreadGroup string
	Address     string
	Length      string
	// Code is set when the memory belongs to an executable section.
	Code bool
}

// Unknown is an async record this package does not decode.
type Unknown struct {
	base
}

// Decode decodes rec. It never panics: fields that are missing or have an
// unexpected shape are left empty.
func Decode(rec *mi.AsyncRecord) (ev Event) {
	if rec == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			logflags.EventLogger().Errorf("%s: unexpected record shape: %v", rec.Class(), r)
			ev = &Unknown{base{rec}}
		}
	}()
	b := base{rec}
	switch rec.Class() {
	case "stopped":
		return decodeStopped(rec)
	case "running":
		return &Running{base: b, ThreadID: str(rec, "thread-id")}
	case "thread-created":
		return &ThreadCreated{base: b, ID: str(rec, "id"), GroupID: str(rec, "group-id")}
	case "thread-exited":
		return &ThreadExited{base: b, ID: str(rec, "id"), GroupID: str(rec, "group-id")}
	case "thread-selected":
		return &ThreadSelected{base: b, ID: str(rec, "id"), Frame: frame(rec)}
	case "thread-group-added":
		return &ThreadGroupAdded{base: b, ID: str(rec, "id")}
	case "thread-group-removed":
		return &ThreadGroupRemoved{base: b, ID: str(rec, "id")}
	case "thread-group-started":
		return &ThreadGroupStarted{base: b, ID: str(rec, "id"), PID: str(rec, "pid")}
	case "thread-group-exited":
		ev := &ThreadGroupExited{base: b, ID: str(rec, "id")}
		if s := str(rec, "exit-code"); s != "" {
			ev.ExitCode, ev.HasExitCode = exitCode(s)
		}
		return ev
	case "library-loaded":
		return &LibraryLoaded{base: b, Library: library(rec)}
	case "library-unloaded":
		return &LibraryUnloaded{base: b, Library: library(rec)}
	case "breakpoint-created":
		return &BreakpointCreated{base: b, Breakpoint: breakpoint(rec)}
	case "breakpoint-modified":
		return &BreakpointModified{base: b, Breakpoint: breakpoint(rec)}
	case "breakpoint-deleted":
		return &BreakpointDeleted{base: b, ID: str(rec, "id")}
	case "cmd-param-changed":
		return &CmdParamChanged{base: b, Param: str(rec, "param"), Value: str(rec, "value")}
	case "memory-changed":
		return &MemoryChanged{
			base:        b,
			ThreadGroup: str(rec, "thread-group"),
			Address:     str(rec, "addr"),
			Length:      str(rec, "len"),
			Code:        str(rec, "type") == "code",
		}
	}
	logflags.EventLogger().Debugf("unknown async record %s", rec.Class())
	return &Unknown{b}
}

func decodeStopped(rec *mi.AsyncRecord) *Stopped {
	s := &Stopped{
		base:             base{rec},
		Reason:           str(rec, "reason"),
		ThreadID:         str(rec, "thread-id"),
		Core:             str(rec, "core"),
		Frame:            frame(rec),
		BreakpointNumber: str(rec, "bkptno"),
		Disp:             str(rec, "disp"),
		SignalName:       str(rec, "signal-name"),
		SignalMeaning:    str(rec, "signal-meaning"),
		GDBResultVar:     str(rec, "gdb-result-var"),
		ReturnValue:      display(rec, "return-value"),
		SyscallNumber:    str(rec, "syscall-number"),
		SyscallName:      str(rec, "syscall-name"),
		NewThreadID:      str(rec, "newthread-id"),
		NewPID:           str(rec, "newpid"),
		NewExec:          str(rec, "new-exec"),
	}
	switch v := rec.Field("stopped-threads").(type) {
	case *mi.Const:
		if v.Text() == "all" {
			s.AllStopped = true
		} else {
			s.StoppedThreads = []string{v.Text()}
		}
	case mi.Aggregate:
		s.StoppedThreads = []string{}
		for _, r := range v.Results() {
			if c, ok := r.Value().(*mi.Const); ok {
				s.StoppedThreads = append(s.StoppedThreads, c.Text())
			}
		}
		for _, val := range v.Values() {
			if c, ok := val.(*mi.Const); ok {
				s.StoppedThreads = append(s.StoppedThreads, c.Text())
			}
		}
	}
	if code := str(rec, "exit-code"); code != "" {
		s.ExitCode, _ = exitCode(code)
	}
	for _, name := range []string{"wpt", "hw-rwpt", "hw-awpt"} {
		t, ok := rec.Field(name).(*mi.Tuple)
		if !ok {
			continue
		}
		s.Watchpoint = &Watchpoint{Number: tstr(t, "number"), Expression: tstr(t, "exp")}
		if v, ok := rec.Field("value").(*mi.Tuple); ok {
			s.Watchpoint.Old = tdisplay(v, "old")
			s.Watchpoint.New = tdisplay(v, "new")
			s.Watchpoint.Value = tdisplay(v, "value")
		}
		break
	}
	return s
}

// exitCode parses an exit code, GDB prints them in octal with a leading
// zero.
func exitCode(s string) (int, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 0, 32)
	if err != nil {
		logflags.EventLogger().Debugf("malformed exit code %q: %v", s, err)
		return 0, false
	}
	return int(n), true
}

func str(rec *mi.AsyncRecord, name string) string {
	c, _ := rec.Field(name).(*mi.Const)
	return c.Text()
}

func display(rec *mi.AsyncRecord, name string) string {
	c, _ := rec.Field(name).(*mi.Const)
	return c.Display()
}

func tstr(t *mi.Tuple, name string) string {
	c, _ := t.Field(name).(*mi.Const)
	return c.Text()
}

func tdisplay(t *mi.Tuple, name string) string {
	c, _ := t.Field(name).(*mi.Const)
	return c.Display()
}

func frame(rec *mi.AsyncRecord) *info.Frame {
	t, ok := rec.Field("frame").(*mi.Tuple)
	if !ok {
		return nil
	}
	f, err := info.DecodeFrame(t)
	if err != nil {
		logflags.EventLogger().Debugf("%s: frame: %v", rec.Class(), err)
	}
	return &f
}

func library(rec *mi.AsyncRecord) info.SharedLibrary {
	l, err := info.DecodeSharedLibrary(rec.Fields())
	if err != nil {
		logflags.EventLogger().Debugf("%s: %v", rec.Class(), err)
	}
	return l
}

func breakpoint(rec *mi.AsyncRecord) info.Breakpoint {
	t, ok := rec.Field("bkpt").(*mi.Tuple)
	if !ok {
		logflags.EventLogger().Debugf("%s: no bkpt tuple", rec.Class())
		return info.Breakpoint{}
	}
	b, err := info.DecodeBreakpoint(t)
	if err != nil {
		logflags.EventLogger().Debugf("%s: %v", rec.Class(), err)
	}
	return b
}

// Describe returns a one line description of ev.
func Describe(ev Event) string {
	switch ev := ev.(type) {
	case *Stopped:
		var buf strings.Builder
		fmt.Fprintf(&buf, "stopped: %s", ev.Reason)
		if ev.BreakpointNumber != "" {
			fmt.Fprintf(&buf, " breakpoint %s", ev.BreakpointNumber)
		}
		if ev.SignalName != "" {
			fmt.Fprintf(&buf, " %s (%s)", ev.SignalName, ev.SignalMeaning)
		}
		if ev.Exited() {
			fmt.Fprintf(&buf, " exit code %d", ev.ExitCode)
		}
		if ev.ThreadID != "" {
			fmt.Fprintf(&buf, " thread %s", ev.ThreadID)
		}
		if f := ev.Frame; f != nil {
			fmt.Fprintf(&buf, " in %s", f.Function)
			if f.File != "" {
				fmt.Fprintf(&buf, " at %s:%d", f.File, f.Line)
			}
		}
		return buf.String()
	case *Running:
		return "running: thread " + ev.ThreadID
	case *ThreadCreated:
		return fmt.Sprintf("thread %s created in %s", ev.ID, ev.GroupID)
	case *ThreadExited:
		return fmt.Sprintf("thread %s exited in %s", ev.ID, ev.GroupID)
	case *ThreadSelected:
		return "thread " + ev.ID + " selected"
	case *ThreadGroupAdded:
		return "thread group " + ev.ID + " added"
	case *ThreadGroupRemoved:
		return "thread group " + ev.ID + " removed"
	case *ThreadGroupStarted:
		return fmt.Sprintf("thread group %s started, pid %s", ev.ID, ev.PID)
	case *ThreadGroupExited:
		if ev.HasExitCode {
			return fmt.Sprintf("thread group %s exited with code %d", ev.ID, ev.ExitCode)
		}
		return "thread group " + ev.ID + " exited"
	case *LibraryLoaded:
		return "library loaded: " + ev.Library.Name()
	case *LibraryUnloaded:
		return "library unloaded: " + ev.Library.Name()
	case *BreakpointCreated:
		return fmt.Sprintf("breakpoint %s created (%s)", ev.Breakpoint.Number, ev.Breakpoint.Kind())
	case *BreakpointModified:
		return fmt.Sprintf("breakpoint %s modified (%s)", ev.Breakpoint.Number, ev.Breakpoint.Kind())
	case *BreakpointDeleted:
		return "breakpoint " + ev.ID + " deleted"
	case *CmdParamChanged:
		return fmt.Sprintf("%s = %s", ev.Param, ev.Value)
	case *MemoryChanged:
		return fmt.Sprintf("memory changed at %s, %s bytes", ev.Address, ev.Length)
	case *Unknown:
		return "unknown event " + ev.Record().Class()
	}
	return ""
}
