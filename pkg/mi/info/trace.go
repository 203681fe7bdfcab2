package info

import (
	"regexp"

	"github.com/go-delve/gdbmi/pkg/mi"
)

// TraceStatusInfo is the result of -trace-status.
type TraceStatusInfo struct {
	Info `yaml:"-"`

	// Supported is "0", "1" or "file" when the status comes from a trace
	// file.
	Supported          string
	Running            bool
	StopReason         string
	StoppingTracepoint string
	ErrorDescription   string
	Frames             int
	FramesCreated      int
	BufferSize         int
	BufferFree         int
	Disconnected       bool
	Circular           bool
	UserName           string
	Notes              string
	StartTime          string
	StopTime           string
	TraceFile          string
}

// IsSupported returns true if the target supports tracing or the status
// comes from a trace file.
func (r *TraceStatusInfo) IsSupported() bool {
	return r.Supported == "1" || r.Supported == "file"
}

// NewTraceStatusInfo decodes
//
//	^done,supported="1",running="1",frames="0",frames-created="0",buffer-size="5242880",
//	buffer-free="5242880",disconnected="0",circular="0"
func NewTraceStatusInfo(out *mi.Output) *TraceStatusInfo {
	r := &TraceStatusInfo{Info: newInfo(out)}
	r.decode("trace-status", func(rr *mi.ResultRecord) {
		r.Supported = r.str(rr, "supported")
		r.Running = r.flag(rr, "running")
		r.StopReason = r.str(rr, "stop-reason")
		r.StoppingTracepoint = r.str(rr, "stopping-tracepoint")
		r.ErrorDescription = r.str(rr, "error-description")
		r.Frames = r.num(rr, "frames", 0)
		r.FramesCreated = r.num(rr, "frames-created", 0)
		r.BufferSize = r.num(rr, "buffer-size", 0)
		r.BufferFree = r.num(rr, "buffer-free", 0)
		r.Disconnected = r.flag(rr, "disconnected")
		r.Circular = r.flag(rr, "circular")
		r.UserName = r.str(rr, "user-name")
		r.Notes = r.str(rr, "notes")
		r.StartTime = r.str(rr, "start-time")
		r.StopTime = r.str(rr, "stop-time")
		r.TraceFile = r.str(rr, "trace-file")
	})
	return r
}

// TraceStopInfo is the result of -trace-stop, which reports the same
// fields as -trace-status.
type TraceStopInfo = TraceStatusInfo

// NewTraceStopInfo decodes the result of -trace-stop.
func NewTraceStopInfo(out *mi.Output) *TraceStopInfo {
	return NewTraceStatusInfo(out)
}

// TraceFindInfo is the result of -trace-find.
type TraceFindInfo struct {
	Info `yaml:"-"`

	Found      bool
	Tracepoint string
	Traceframe string
	Frame      *Frame
}

// NewTraceFindInfo decodes
//
//	^done,found="1",tracepoint="1",traceframe="0",frame={level="0",addr="0x...",func="foo",...}
func NewTraceFindInfo(out *mi.Output) *TraceFindInfo {
	r := &TraceFindInfo{Info: newInfo(out)}
	r.decode("trace-find", func(rr *mi.ResultRecord) {
		r.Found = r.flag(rr, "found")
		r.Tracepoint = r.str(rr, "tracepoint")
		r.Traceframe = r.str(rr, "traceframe")
		if t := r.tup(rr, "frame"); t != nil {
			f := r.frame(t)
			r.Frame = &f
		}
	})
	return r
}

// TraceVariable is a trace state variable.
type TraceVariable struct {
	Name    string
	Initial string
	// Current is empty when the value is not known.
	Current string
}

// TraceListVariablesInfo is the result of -trace-list-variables.
type TraceListVariablesInfo struct {
	Info `yaml:"-"`

	Variables []TraceVariable
}

// NewTraceListVariablesInfo decodes
//
//	^done,trace-variables={nr_rows="1",nr_cols="3",hdr=[...],body=[variable={name="$trace_timestamp",initial="0"}]}
func NewTraceListVariablesInfo(out *mi.Output) *TraceListVariablesInfo {
	r := &TraceListVariablesInfo{Info: newInfo(out)}
	r.decode("trace-list-variables", func(rr *mi.ResultRecord) {
		table := r.tup(rr, "trace-variables")
		if table == nil {
			return
		}
		vars, ok := r.tuples(table, "body")
		r.Variables = make([]TraceVariable, 0, len(vars))
		if !ok {
			return
		}
		for _, t := range vars {
			r.Variables = append(r.Variables, TraceVariable{
				Name:    r.str(t, "name"),
				Initial: r.str(t, "initial"),
				Current: r.str(t, "current"),
			})
		}
	})
	return r
}

var tracepointRe = regexp.MustCompile(`(?:Fast )?[Tt]racepoint (\d+) at`)

// CLITraceInfo is the console output of the trace and ftrace commands:
//
//	Tracepoint 2 at 0x401136: file a.c, line 4.
type CLITraceInfo struct {
	Info `yaml:"-"`

	Number string
}

// NewCLITraceInfo decodes the console output of a trace command.
func NewCLITraceInfo(out *mi.Output) *CLITraceInfo {
	r := &CLITraceInfo{Info: newInfo(out)}
	r.decodeText("trace", func(text string) {
		if m := tracepointRe.FindStringSubmatch(text); m != nil {
			r.Number = m[1]
		}
	})
	return r
}
