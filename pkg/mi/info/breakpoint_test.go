package info_test

import (
	"testing"

	"github.com/go-delve/gdbmi/pkg/mi"
	"github.com/go-delve/gdbmi/pkg/mi/info"
)

func TestBreakListHardwareBreakpoint(t *testing.T) {
	out := mi.Parse(`^done,BreakpointTable={nr_rows="2",nr_cols="6",` +
		`hdr=[{width="7",alignment="-1",col_name="number",colhdr="Num"},{width="14",alignment="-1",col_name="type",colhdr="Type"}],` +
		`body=[bkpt={number="1",type="breakpoint",disp="keep",enabled="y",addr="0x0000000000401126",func="main",file="a.c",fullname="/tmp/a.c",line="4",thread-groups=["i1"],times="0",original-location="main"},` +
		`bkpt={number="2",type="hw breakpoint",disp="del",enabled="n",addr="0x0000000000401140",func="foo",file="a.c",fullname="/tmp/a.c",line="9",cond="x > 3",thread-groups=["i1"],times="1",ignore="2"}]}`)
	r := info.NewBreakListInfo(out)
	if r.Issues() != nil {
		t.Fatalf("issues: %v", r.Issues())
	}
	if len(r.Breakpoints) != 2 {
		t.Fatalf("got %d breakpoints, want 2", len(r.Breakpoints))
	}

	b1 := r.Breakpoints[0]
	if b1.Number != "1" || b1.Kind() != info.KindBreakpoint || b1.Hardware || !b1.Enabled || b1.Temporary {
		t.Errorf("first breakpoint: %+v", b1)
	}
	if b1.Line != 4 || b1.Function != "main" || b1.Fullname != "/tmp/a.c" || b1.OriginalLocation != "main" {
		t.Errorf("first breakpoint location: %+v", b1)
	}
	if len(b1.ThreadGroups) != 1 || b1.ThreadGroups[0] != "i1" {
		t.Errorf("thread groups %v", b1.ThreadGroups)
	}

	b2 := r.Breakpoints[1]
	if !b2.Hardware || b2.IsWatchpoint() || b2.Kind() != info.KindHardwareBreakpoint {
		t.Errorf("second breakpoint is not a hardware breakpoint: %+v", b2)
	}
	if b2.Enabled || !b2.Temporary || b2.Condition != "x > 3" || b2.Times != 1 || b2.IgnoreCount != 2 {
		t.Errorf("second breakpoint: %+v", b2)
	}
}

func TestBreakListEmpty(t *testing.T) {
	r := info.NewBreakListInfo(mi.Parse(`^done,BreakpointTable={nr_rows="0",nr_cols="6",hdr=[],body=[]}`))
	if r.Breakpoints == nil || len(r.Breakpoints) != 0 {
		t.Errorf("want an empty, non nil, list: %#v", r.Breakpoints)
	}
	r = info.NewBreakListInfo(mi.Parse(`^done`))
	if r.Breakpoints != nil {
		t.Errorf("want a nil list without a table: %#v", r.Breakpoints)
	}
}

func TestBreakpointClassification(t *testing.T) {
	tests := []struct {
		typ                    string
		kind                   info.BreakpointKind
		hw, read, write, trace bool
	}{
		{"breakpoint", info.KindBreakpoint, false, false, false, false},
		{"hw breakpoint", info.KindHardwareBreakpoint, true, false, false, false},
		{"hw watchpoint", info.KindWriteWatchpoint, true, false, true, false},
		{"watchpoint", info.KindWriteWatchpoint, false, false, true, false},
		{"read watchpoint", info.KindReadWatchpoint, false, true, false, false},
		{"acc watchpoint", info.KindAccessWatchpoint, false, true, true, false},
		{"tracepoint", info.KindTracepoint, false, false, false, true},
		{"fast tracepoint", info.KindFastTracepoint, false, false, false, true},
		{"catchpoint", info.KindCatchpoint, false, false, false, false},
		{"dprintf", info.KindDprintf, false, false, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.typ, func(t *testing.T) {
			v := mi.ParseValue(`{number="3",type="` + tc.typ + `",disp="keep",enabled="y",what="x"}`)
			b, err := info.DecodeBreakpoint(v.(*mi.Tuple))
			if err != nil {
				t.Fatal(err)
			}
			if b.Kind() != tc.kind {
				t.Errorf("kind %v, want %v", b.Kind(), tc.kind)
			}
			if b.Hardware != tc.hw || b.ReadWatch != tc.read || b.WriteWatch != tc.write || b.Tracepoint != tc.trace {
				t.Errorf("flags hw=%v read=%v write=%v trace=%v", b.Hardware, b.ReadWatch, b.WriteWatch, b.Tracepoint)
			}
			if b.IsWatchpoint() && b.Expression != "x" {
				t.Errorf("watched expression %q, want x", b.Expression)
			}
		})
	}
}

func TestBreakInsertWatchpoints(t *testing.T) {
	tests := []struct {
		line string
		kind info.BreakpointKind
	}{
		{`^done,wpt={number="2",exp="counter"}`, info.KindWriteWatchpoint},
		{`^done,hw-rwpt={number="3",exp="counter"}`, info.KindReadWatchpoint},
		{`^done,hw-awpt={number="4",exp="counter"}`, info.KindAccessWatchpoint},
		{`^done,bkpt={number="5",type="breakpoint",disp="keep",enabled="y",addr="0x1"}`, info.KindBreakpoint},
	}
	for _, tc := range tests {
		r := info.NewBreakWatchInfo(mi.Parse(tc.line))
		b, ok := r.Breakpoint()
		if !ok {
			t.Errorf("%s: no breakpoint", tc.line)
			continue
		}
		if b.Kind() != tc.kind {
			t.Errorf("%s: kind %v, want %v", tc.line, b.Kind(), tc.kind)
		}
		if b.IsWatchpoint() && b.Expression != "counter" {
			t.Errorf("%s: expression %q", tc.line, b.Expression)
		}
	}
}

func TestBreakInsertMultipleLocations(t *testing.T) {
	// GDB 13 nests the locations
	nested := mi.Parse(`^done,bkpt={number="1",type="breakpoint",disp="keep",enabled="y",addr="<MULTIPLE>",times="0",original-location="f",` +
		`locations=[{number="1.1",enabled="y",addr="0x401126",func="f<int>",file="a.cc",line="3",thread-groups=["i1"]},` +
		`{number="1.2",enabled="y",addr="0x401140",func="f<char>",file="a.cc",line="3",thread-groups=["i1"]}]}`)
	// older versions put them next to the breakpoint
	siblings := mi.Parse(`^done,bkpt={number="1",type="breakpoint",disp="keep",enabled="y",addr="<MULTIPLE>",times="0",original-location="f"},` +
		`{number="1.1",enabled="y",addr="0x401126",func="f<int>",file="a.cc",line="3"},` +
		`{number="1.2",enabled="y",addr="0x401140",func="f<char>",file="a.cc",line="3"}`)

	for name, out := range map[string]*mi.Output{"nested": nested, "siblings": siblings} {
		r := info.NewBreakInsertInfo(out)
		if len(r.Breakpoints) != 1 {
			t.Errorf("%s: got %d breakpoints, want 1", name, len(r.Breakpoints))
			continue
		}
		b := r.Breakpoints[0]
		if !b.IsMultiple() || len(b.Locations) != 2 {
			t.Errorf("%s: locations %+v", name, b.Locations)
			continue
		}
		if b.Locations[1].Number != "1.2" || b.Locations[1].Function != "f<char>" {
			t.Errorf("%s: second location %+v", name, b.Locations[1])
		}
	}
}

func TestBreakpointCommandsAndPending(t *testing.T) {
	r := info.NewBreakInsertInfo(mi.Parse(`^done,bkpt={number="7",type="breakpoint",disp="keep",enabled="y",addr="<PENDING>",pending="libfoo.so:bar",times="0",script={"silent","print x"}}`))
	b, _ := r.Breakpoint()
	if !b.IsPending() || b.Pending != "libfoo.so:bar" {
		t.Errorf("not pending: %+v", b)
	}
	if len(b.Commands) != 2 || b.Commands[1] != "print x" {
		t.Errorf("commands %q", b.Commands)
	}
}

func TestCLICatch(t *testing.T) {
	r := info.NewCLICatchInfo(output(`&"catch syscall close\n"`, `~"Catchpoint 2 (syscall 'close' [3])\n"`, `^done`))
	if r.Number != "2" || r.What != "syscall 'close' [3]" {
		t.Errorf("got %q %q", r.Number, r.What)
	}
}
