package info_test

import (
	"testing"

	"github.com/go-delve/gdbmi/pkg/mi"
	"github.com/go-delve/gdbmi/pkg/mi/info"
)

func TestGDBVersion(t *testing.T) {
	tests := []struct {
		first   string
		version string
		lldb    bool
	}{
		{`GNU gdb (GDB) 12.1`, "12.1", false},
		{`GNU gdb (Ubuntu 12.1-0ubuntu1~22.04) 12.1`, "12.1", false},
		{`GNU gdb (GDB) Fedora Linux 13.2-3.fc38`, "13.2", false},
		{`GNU gdb 6.8-debian`, "6.8", false},
		{`lldb version 16.0.0`, "16.0.0", true},
	}
	for _, tc := range tests {
		r := info.NewGDBVersionInfo(output(`~"`+tc.first+`\n"`, `~"Copyright (C) 2022 Free Software Foundation, Inc.\n"`, `^done`))
		if r.Version != tc.version || r.IsLLDB != tc.lldb {
			t.Errorf("%s: got %q lldb=%v", tc.first, r.Version, r.IsLLDB)
		}
	}
}

func TestGDBShow(t *testing.T) {
	if r := info.NewGDBShowInfo(mi.Parse(`^done,value="on"`)); r.Value != "on" {
		t.Errorf("value %q", r.Value)
	}
	if r := info.NewGDBShowLanguageInfo(mi.Parse(`^done,value="auto; currently c"`)); r.Language != "c" {
		t.Errorf("language %q", r.Language)
	}
	if r := info.NewGDBShowLanguageInfo(mi.Parse(`^done,value="c++"`)); r.Language != "c++" {
		t.Errorf("language %q", r.Language)
	}
	if r := info.NewGDBShowExitCodeInfo(mi.Parse(`^done,value="void"`)); r.Known {
		t.Errorf("exit code known before exit")
	}
	if r := info.NewGDBShowExitCodeInfo(mi.Parse(`^done,value="3"`)); !r.Known || r.Code != 3 {
		t.Errorf("exit code %+v", r)
	}
}

func TestMiscMI(t *testing.T) {
	f := info.NewListFeaturesInfo(mi.Parse(`^done,features=["frozen-varobjs","pending-breakpoints","thread-info"]`))
	if !f.Has("thread-info") || f.Has("async") {
		t.Errorf("features %q", f.Features)
	}
	d := info.NewTargetDownloadInfo(mi.Parse(`^done,address="0x10004",load-size="32",transfer-rate="6586",write-rate="429"`))
	if d.Address != "0x10004" || d.LoadSize != 32 || d.WriteRate != 429 {
		t.Errorf("download %+v", d)
	}
	if a := info.NewAddInferiorInfo(mi.Parse(`^done,inferior="i2"`)); a.GroupID != "i2" {
		t.Errorf("inferior %q", a.GroupID)
	}
}

func TestInfoOs(t *testing.T) {
	r := info.NewInfoOsInfo(mi.Parse(`^done,OSDataTable={nr_rows="2",nr_cols="3",` +
		`hdr=[{width="10",alignment="-1",col_name="col0",colhdr="Type"},{width="10",alignment="-1",col_name="col1",colhdr="Description"},{width="10",alignment="-1",col_name="col2",colhdr="Title"}],` +
		`body=[item={col0="cpus",col2="CPUs",col1="Listing of all cpus/cores on the system"},item={col0="files",col1="Listing of all file descriptors",col2="File descriptors"}]}`))
	if len(r.Columns) != 3 || r.Columns[1] != "Description" {
		t.Fatalf("columns %q", r.Columns)
	}
	if len(r.Rows) != 2 || r.Rows[0][2] != "CPUs" || r.Rows[1][0] != "files" {
		t.Errorf("rows %q", r.Rows)
	}
}

func TestSymbolInfoFunctions(t *testing.T) {
	r := info.NewSymbolInfoFunctionsInfo(mi.Parse(`^done,symbols={debug=[{filename="a.c",fullname="/tmp/a.c",symbols=[` +
		`{line="4",name="main",type="int (void)",description="int main(void);"},{line="9",name="foo",type="void (int)",description="static void foo(int);"}]}],` +
		`nondebug=[{address="0x0000000000401000",name="_init"}]}`))
	if len(r.Debug) != 2 || r.Debug[1].Name != "foo" || r.Debug[1].Line != 9 || r.Debug[1].Fullname != "/tmp/a.c" {
		t.Errorf("debug %+v", r.Debug)
	}
	if len(r.NonDebug) != 1 || r.NonDebug[0].Address != "0x0000000000401000" {
		t.Errorf("nondebug %+v", r.NonDebug)
	}
}

func TestTrace(t *testing.T) {
	s := info.NewTraceStatusInfo(mi.Parse(`^done,supported="1",running="0",stop-reason="request",frames="5",frames-created="5",buffer-size="5242880",buffer-free="5239840",disconnected="0",circular="1"`))
	if !s.IsSupported() || s.Running || s.StopReason != "request" || s.Frames != 5 || s.BufferFree != 5239840 || !s.Circular {
		t.Errorf("status %+v", s)
	}
	if s := info.NewTraceStopInfo(mi.Parse(`^done,supported="file",trace-file="/tmp/trace"`)); !s.IsSupported() || s.TraceFile != "/tmp/trace" {
		t.Errorf("stop %+v", s)
	}
	f := info.NewTraceFindInfo(mi.Parse(`^done,found="1",tracepoint="2",traceframe="0",frame={level="0",addr="0x401126",func="foo",args=[]}`))
	if !f.Found || f.Tracepoint != "2" || f.Frame == nil || f.Frame.Function != "foo" {
		t.Errorf("find %+v", f)
	}
	if f := info.NewTraceFindInfo(mi.Parse(`^done,found="0"`)); f.Found || f.Frame != nil {
		t.Errorf("find nothing %+v", f)
	}
	v := info.NewTraceListVariablesInfo(mi.Parse(`^done,trace-variables={nr_rows="2",nr_cols="3",hdr=[],` +
		`body=[variable={name="$trace_timestamp",initial="0"},variable={name="$foo",initial="10",current="15"}]}`))
	if len(v.Variables) != 2 || v.Variables[1].Current != "15" || v.Variables[0].Current != "" {
		t.Errorf("variables %+v", v.Variables)
	}
	c := info.NewCLITraceInfo(output(`~"Tracepoint 2 at 0x401136: file a.c, line 4.\n"`, `^done`))
	if c.Number != "2" {
		t.Errorf("tracepoint %q", c.Number)
	}
}

func TestSharedLibraries(t *testing.T) {
	mi2 := info.NewFileListSharedLibrariesInfo(mi.Parse(`^done,shared-libraries=[{id="/lib/libfoo.so",target-name="/lib/libfoo.so",host-name="/lib/libfoo.so",` +
		`symbols-loaded="1",thread-group="i1",ranges=[{from="0x72815989",to="0x728162c0"}]}]`))
	if len(mi2.Libraries) != 1 || !mi2.Libraries[0].SymbolsLoaded || mi2.Libraries[0].Ranges[0].To != "0x728162c0" {
		t.Errorf("MI libraries %+v", mi2.Libraries)
	}

	cli := info.NewCLIInfoSharedLibraryInfo(output(
		`~"From                To                  Syms Read   Shared Object Library\n"`,
		`~"0x00007ffff7fc5090  0x00007ffff7fee315  Yes         /lib64/ld-linux-x86-64.so.2\n"`,
		`~"                                        No          /lib/libfoo.so\n"`,
		`~"0x00007ffff7dab630  0x00007ffff7f2027d  Yes (*)     /lib/x86_64-linux-gnu/libc.so.6\n"`,
		`~"(*): Shared library is missing debugging information.\n"`,
		`^done`))
	if len(cli.Libraries) != 3 {
		t.Fatalf("got %+v", cli.Libraries)
	}
	if l := cli.Libraries[1]; l.Name() != "/lib/libfoo.so" || l.SymbolsLoaded || l.Ranges != nil {
		t.Errorf("unloaded library %+v", l)
	}
	if l := cli.Libraries[2]; !l.SymbolsLoaded || !l.NoDebugInfo || l.Ranges[0].From != "0x00007ffff7dab630" {
		t.Errorf("libc %+v", l)
	}

	none := info.NewCLIInfoSharedLibraryInfo(output(`~"No shared libraries loaded at this time.\n"`, `^done`))
	if len(none.Libraries) != 0 {
		t.Errorf("got %+v", none.Libraries)
	}

	lldb := info.NewCLIInfoSharedLibraryInfo(output(`~"[  0] 0A1B2C3D-0000-0000-0000-000000000000 0x0000000100000000 /tmp/a.out\n"`, `^done`))
	if len(lldb.Libraries) != 1 || lldb.Libraries[0].Name() != "/tmp/a.out" || lldb.Libraries[0].Ranges[0].From != "0x0000000100000000" {
		t.Errorf("lldb %+v", lldb.Libraries)
	}
}

func TestCLIPassthrough(t *testing.T) {
	p := info.NewCLIInfoProgramInfo(output(`~"\tUsing the running image of child Thread 0x7ffff7d8a740 (LWP 4242).\n"`, `~"Program stopped at 0x401126.\n"`, `^done`))
	if p.PID != "4242" {
		t.Errorf("pid %q", p.PID)
	}
	p = info.NewCLIInfoProgramInfo(output(`~"\tUsing the running image of child process 777.\n"`, `^done`))
	if p.PID != "777" {
		t.Errorf("pid %q", p.PID)
	}

	s := info.NewCLIInfoSignalsInfo(output(
		`~"Signal        Stop\tPrint\tPass to program\tDescription\n"`,
		`~"\n"`,
		`~"SIGHUP        Yes\tYes\tYes\t\tHangup\n"`,
		`~"SIGINT        Yes\tYes\tNo\t\tInterrupt\n"`,
		`^done`))
	if len(s.Signals) != 2 || s.Signals[1].Name != "SIGINT" || s.Signals[1].Pass || s.Signals[1].Description != "Interrupt" {
		t.Errorf("signals %+v", s.Signals)
	}

	l := info.NewCLIInfoLineInfo(output(`~"Line 4 of \"a.c\" starts at address 0x401126 <main+4> and ends at 0x40112d <main+11>.\n"`, `^done`))
	if l.Line != 4 || l.File != "a.c" || l.StartAddress != "0x401126" || l.EndAddress != "0x40112d" {
		t.Errorf("line %+v", l)
	}
	l = info.NewCLIInfoLineInfo(output(`~"Line 2 of \"a.c\" is at address 0x401122 <main> but contains no code.\n"`, `^done`))
	if l.Line != 2 || l.StartAddress != "0x401122" || l.EndAddress != "" {
		t.Errorf("line %+v", l)
	}

	if e := info.NewCLIShowEndianInfo(output(`~"The target endianness is set automatically (currently big endian).\n"`, `^done`)); !e.BigEndian {
		t.Errorf("not big endian")
	}
	if e := info.NewCLIShowEndianInfo(output(`~"The target endianness is set automatically (currently little endian).\n"`, `^done`)); e.BigEndian {
		t.Errorf("big endian")
	}

	bools := []struct {
		text string
		want bool
	}{
		{`Controlling the inferior in non-stop mode is off.`, false},
		{`Controlling the inferior in non-stop mode is on.`, true},
		{`Printing of addresses is currently enabled.`, true},
		{`Printing of addresses is currently disabled.`, false},
	}
	for _, tc := range bools {
		if b := info.NewCLIShowBoolInfo(output(`~"`+tc.text+`\n"`, `^done`)); b.Value != tc.want {
			t.Errorf("%s: got %v", tc.text, b.Value)
		}
	}
}
