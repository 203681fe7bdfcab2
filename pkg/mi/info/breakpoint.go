package info

import (
	"regexp"
	"strings"

	"github.com/go-delve/gdbmi/pkg/mi"
)

// BreakpointKind is the kind of a breakpoint, derived from its type field.
type BreakpointKind uint8

const (
	KindBreakpoint BreakpointKind = iota
	KindHardwareBreakpoint
	KindWriteWatchpoint
	KindReadWatchpoint
	KindAccessWatchpoint
	KindTracepoint
	KindFastTracepoint
	KindCatchpoint
	KindDprintf
)

func (k BreakpointKind) String() string {
	switch k {
	case KindBreakpoint:
		return "breakpoint"
	case KindHardwareBreakpoint:
		return "hardware breakpoint"
	case KindWriteWatchpoint:
		return "write watchpoint"
	case KindReadWatchpoint:
		return "read watchpoint"
	case KindAccessWatchpoint:
		return "access watchpoint"
	case KindTracepoint:
		return "tracepoint"
	case KindFastTracepoint:
		return "fast tracepoint"
	case KindCatchpoint:
		return "catchpoint"
	case KindDprintf:
		return "dprintf"
	}
	return "unknown"
}

// Breakpoint is a breakpoint, watchpoint, tracepoint, catchpoint or
// dprintf as described by a bkpt tuple.
//
// The flags are derived from the type field and more than one can be set,
// for example a "hw watchpoint" is both Hardware and WriteWatch.
type Breakpoint struct {
	Number string
	Type   string
	Disp   string
	// Temporary is set when the disposition is "del".
	Temporary bool
	Enabled   bool
	Address   string
	Function  string
	File      string
	Fullname  string
	Line      int
	// Condition is the condition expression, empty if there is none.
	Condition   string
	Times       int
	IgnoreCount int
	// Expression is the watched expression of a watchpoint.
	Expression       string
	What             string
	Thread           string
	ThreadGroups     []string
	OriginalLocation string
	// Pending is the location of a pending breakpoint.
	Pending     string
	PassCount   int
	Commands    []string
	CatchType   string
	EvaluatedBy string
	Installed   bool
	Frame       string
	Mask        string

	Hardware       bool
	ReadWatch      bool
	WriteWatch     bool
	Tracepoint     bool
	FastTracepoint bool
	Catchpoint     bool
	Dprintf        bool

	// Locations holds the locations of a breakpoint that resolved to more
	// than one address.
	Locations []Breakpoint
}

// classify sets the kind flags from the type field. The tests overlap and
// are applied in order.
func (b *Breakpoint) classify(typ string) {
	if strings.HasPrefix(typ, "hw") {
		b.Hardware = true
		if strings.Contains(typ, "watchpoint") {
			b.WriteWatch = true
		}
	}
	if strings.HasPrefix(typ, "acc") {
		b.ReadWatch = true
		b.WriteWatch = true
	}
	if strings.HasPrefix(typ, "read") {
		b.ReadWatch = true
	}
	if strings.HasPrefix(typ, "watchpoint") {
		b.WriteWatch = true
	}
	if strings.HasPrefix(typ, "tracepoint") {
		b.Tracepoint = true
	}
	if strings.HasPrefix(typ, "fast tracepoint") {
		b.Tracepoint = true
		b.FastTracepoint = true
	}
	if strings.HasPrefix(typ, "catchpoint") {
		b.Catchpoint = true
	}
	if strings.HasPrefix(typ, "dprintf") {
		b.Dprintf = true
	}
}

// Kind returns the most specific kind of b.
func (b *Breakpoint) Kind() BreakpointKind {
	switch {
	case b.Catchpoint:
		return KindCatchpoint
	case b.Dprintf:
		return KindDprintf
	case b.FastTracepoint:
		return KindFastTracepoint
	case b.Tracepoint:
		return KindTracepoint
	case b.ReadWatch && b.WriteWatch:
		return KindAccessWatchpoint
	case b.ReadWatch:
		return KindReadWatchpoint
	case b.WriteWatch:
		return KindWriteWatchpoint
	case b.Hardware:
		return KindHardwareBreakpoint
	}
	return KindBreakpoint
}

// IsWatchpoint returns true for read, write and access watchpoints.
func (b *Breakpoint) IsWatchpoint() bool {
	return b.ReadWatch || b.WriteWatch
}

// IsAccessWatchpoint returns true if b triggers on reads and writes.
func (b *Breakpoint) IsAccessWatchpoint() bool {
	return b.ReadWatch && b.WriteWatch
}

// IsReadWatchpoint returns true if b only triggers on reads.
func (b *Breakpoint) IsReadWatchpoint() bool {
	return b.ReadWatch && !b.WriteWatch
}

// IsWriteWatchpoint returns true if b only triggers on writes.
func (b *Breakpoint) IsWriteWatchpoint() bool {
	return b.WriteWatch && !b.ReadWatch
}

// IsPending returns true if the breakpoint location is not resolved yet.
func (b *Breakpoint) IsPending() bool {
	return b.Pending != "" || b.Address == "<PENDING>"
}

// IsMultiple returns true if the breakpoint has several locations.
func (b *Breakpoint) IsMultiple() bool {
	return b.Address == "<MULTIPLE>" || len(b.Locations) > 0
}

// breakpoint decodes a bkpt tuple.
func (i *Info) breakpoint(t *mi.Tuple) Breakpoint {
	b := Breakpoint{
		Number:           i.str(t, "number"),
		Type:             i.str(t, "type"),
		Disp:             i.str(t, "disp"),
		Address:          i.str(t, "addr"),
		Function:         i.str(t, "func"),
		File:             i.str(t, "file"),
		Fullname:         i.str(t, "fullname"),
		Line:             i.num(t, "line", 0),
		Condition:        i.str(t, "cond"),
		Times:            i.num(t, "times", 0),
		IgnoreCount:      i.num(t, "ignore", 0),
		What:             i.str(t, "what"),
		Thread:           i.str(t, "thread"),
		ThreadGroups:     i.strs(t, "thread-groups"),
		OriginalLocation: i.str(t, "original-location"),
		Pending:          i.str(t, "pending"),
		PassCount:        i.num(t, "pass", 0),
		CatchType:        i.str(t, "catch-type"),
		EvaluatedBy:      i.str(t, "evaluated-by"),
		Frame:            i.str(t, "frame"),
		Mask:             i.str(t, "mask"),
	}
	b.Temporary = b.Disp == "del"
	b.Enabled = i.flag(t, "enabled")
	b.Installed = i.flag(t, "installed")

	b.classify(b.Type)
	if b.CatchType != "" {
		b.Catchpoint = true
	}

	b.Expression = i.str(t, "exp")
	if b.Expression == "" && b.IsWatchpoint() {
		// -break-list reports the watched expression in "what".
		b.Expression = b.What
	}

	for _, name := range []string{"script", "commands"} {
		if t.Field(name) != nil {
			b.Commands = i.strs(t, name)
			break
		}
	}

	if locs, ok := i.tuples(t, "locations"); ok {
		b.Locations = []Breakpoint{}
		for _, loc := range locs {
			b.Locations = append(b.Locations, i.breakpoint(loc))
		}
	}
	return b
}

// breakpointsOf decodes the bkpt results and the location tuples that
// older versions of GDB place next to them, in a result list or in the
// body of a breakpoint table. Each location is attached to the breakpoint
// whose number prefixes its own ("1.2" belongs to "1").
func (i *Info) breakpointsOf(results []*mi.Result, values []mi.Value, kindFromName bool) []Breakpoint {
	bps := []Breakpoint{}
	for _, r := range results {
		t, ok := r.Value().(*mi.Tuple)
		if !ok {
			continue
		}
		switch r.Name() {
		case "bkpt":
		case "wpt", "hw-awpt", "hw-rwpt":
			if !kindFromName {
				continue
			}
		default:
			continue
		}
		b := i.breakpoint(t)
		if kindFromName && b.Type == "" {
			switch r.Name() {
			case "wpt":
				b.WriteWatch = true
			case "hw-awpt":
				b.ReadWatch = true
				b.WriteWatch = true
			case "hw-rwpt":
				b.ReadWatch = true
			}
		}
		bps = append(bps, b)
	}
	for _, v := range values {
		t, ok := v.(*mi.Tuple)
		if !ok {
			continue
		}
		loc := i.breakpoint(t)
		parent := -1
		if dot := strings.IndexByte(loc.Number, '.'); dot > 0 {
			for j := range bps {
				if bps[j].Number == loc.Number[:dot] {
					parent = j
				}
			}
		}
		if parent < 0 {
			bps = append(bps, loc)
			continue
		}
		bps[parent].Locations = append(bps[parent].Locations, loc)
	}
	return bps
}

// DecodeBreakpoint decodes a single bkpt tuple, for example the one
// carried by a =breakpoint-modified notification.
func DecodeBreakpoint(t *mi.Tuple) (Breakpoint, error) {
	var i Info
	var b Breakpoint
	i.guard("bkpt", func() { b = i.breakpoint(t) })
	return b, i.Issues()
}

// BreakInsertInfo is the result of -break-insert, -break-watch,
// -dprintf-insert and -break-passcount.
type BreakInsertInfo struct {
	Info `yaml:"-"`

	Breakpoints []Breakpoint
}

// NewBreakInsertInfo decodes a breakpoint or watchpoint insertion result,
// ^done,bkpt={...} or ^done,wpt={...}. The kind of a watchpoint whose
// tuple has no type field comes from the result name: wpt is a write,
// hw-rwpt a read and hw-awpt an access watchpoint.
func NewBreakInsertInfo(out *mi.Output) *BreakInsertInfo {
	r := &BreakInsertInfo{Info: newInfo(out)}
	r.decode("break-insert", func(rr *mi.ResultRecord) {
		r.Breakpoints = r.breakpointsOf(rr.Results(), rr.Fields().Values(), true)
	})
	return r
}

// BreakWatchInfo is the result of -break-watch.
type BreakWatchInfo = BreakInsertInfo

// NewBreakWatchInfo decodes ^done,wpt={number="2",exp="x"} and its
// hw-rwpt and hw-awpt variants.
func NewBreakWatchInfo(out *mi.Output) *BreakWatchInfo {
	return NewBreakInsertInfo(out)
}

// Breakpoint returns the first inserted breakpoint.
func (r *BreakInsertInfo) Breakpoint() (Breakpoint, bool) {
	if len(r.Breakpoints) == 0 {
		return Breakpoint{}, false
	}
	return r.Breakpoints[0], true
}

// BreakListInfo is the result of -break-list and -break-info.
type BreakListInfo struct {
	Info `yaml:"-"`

	Breakpoints []Breakpoint
}

// NewBreakListInfo decodes
//
//	^done,BreakpointTable={nr_rows="1",nr_cols="6",hdr=[...],body=[bkpt={...},...]}
func NewBreakListInfo(out *mi.Output) *BreakListInfo {
	r := &BreakListInfo{Info: newInfo(out)}
	r.decode("break-list", func(rr *mi.ResultRecord) {
		table := r.tup(rr, "BreakpointTable")
		if table == nil {
			return
		}
		body := r.agg(table, "body")
		if body == nil {
			r.Breakpoints = []Breakpoint{}
			return
		}
		r.Breakpoints = r.breakpointsOf(body.Results(), body.Values(), false)
	})
	return r
}

var catchpointRe = regexp.MustCompile(`Catchpoint (\d+) \((.+)\)`)

// CLICatchInfo is the console output of the CLI catch command, which
// prints, for example:
//
//	Catchpoint 1 (throw)
//	Catchpoint 2 (syscall 'close' [3])
type CLICatchInfo struct {
	Info `yaml:"-"`

	Number string
	What   string
}

// NewCLICatchInfo decodes the console output of a catch command.
func NewCLICatchInfo(out *mi.Output) *CLICatchInfo {
	r := &CLICatchInfo{Info: newInfo(out)}
	r.decodeText("catch", func(text string) {
		m := catchpointRe.FindStringSubmatch(text)
		if m == nil {
			return
		}
		r.Number = m[1]
		r.What = m[2]
	})
	return r
}
