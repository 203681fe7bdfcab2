package info_test

import (
	"testing"

	"github.com/go-delve/gdbmi/pkg/mi"
	"github.com/go-delve/gdbmi/pkg/mi/info"
)

func TestStackListFrames(t *testing.T) {
	r := info.NewStackListFramesInfo(mi.Parse(`^done,stack=[` +
		`frame={level="0",addr="0x0000000000401126",func="foo",file="a.c",fullname="/tmp/a.c",line="4",arch="i386:x86-64"},` +
		`frame={level="1",addr="0x00007ffff7dd4d90",func="__libc_start_call_main",from="/lib/x86_64-linux-gnu/libc.so.6",arch="i386:x86-64"}]`))
	if len(r.Frames) != 2 {
		t.Fatalf("got %d frames", len(r.Frames))
	}
	f0, f1 := r.Frames[0], r.Frames[1]
	if f0.Level != 0 || f0.Function != "foo" || f0.Line != 4 || f0.Arch != "i386:x86-64" || f0.Args != nil {
		t.Errorf("frame 0: %+v", f0)
	}
	if f1.Level != 1 || f1.From != "/lib/x86_64-linux-gnu/libc.so.6" || f1.File != "" {
		t.Errorf("frame 1: %+v", f1)
	}
}

func TestStackListArguments(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"values", `^done,stack-args=[frame={level="0",args=[{name="argc",value="1"},{name="argv",value="0x7fffffffe1c8"}]},frame={level="1",args=[]}]`},
		{"names", `^done,stack-args=[frame={level="0",args=[name="argc",name="argv"]},frame={level="1",args=[]}]`},
		{"tuple", `^done,stack-args={frame={level="0",args={name="argc",name="argv"}},frame={level="1",args={}}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := info.NewStackListArgumentsInfo(mi.Parse(tc.line))
			if len(r.Frames) != 2 {
				t.Fatalf("got %d frames", len(r.Frames))
			}
			args := r.Frames[0].Args
			if len(args) != 2 || args[0].Name != "argc" || args[1].Name != "argv" {
				t.Errorf("frame 0 args: %+v", args)
			}
			if r.Frames[1].Level != 1 || r.Frames[1].Args == nil || len(r.Frames[1].Args) != 0 {
				t.Errorf("frame 1: %+v", r.Frames[1])
			}
		})
	}
}

func TestStackListVariables(t *testing.T) {
	r := info.NewStackListVariablesInfo(mi.Parse(`^done,variables=[{name="x",arg="1",type="int",value="11"},{name="s",type="char *",value="0x4005e4 \"hi\\n\""}]`))
	if len(r.Variables) != 2 {
		t.Fatalf("got %d variables", len(r.Variables))
	}
	if args := r.Args(); len(args) != 1 || args[0].Name != "x" || args[0].Value != "11" {
		t.Errorf("args %+v", args)
	}
	locals := r.Locals()
	if len(locals) != 1 || locals[0].Type != "char *" {
		t.Fatalf("locals %+v", locals)
	}
	// values keep their escapes for display
	if want := `0x4005e4 \"hi\\n\"`; locals[0].Value != want {
		t.Errorf("value %q, want %q", locals[0].Value, want)
	}
}

func TestStackListLocalsAbsentAndEmpty(t *testing.T) {
	if r := info.NewStackListLocalsInfo(mi.Parse(`^done`)); r.Locals != nil {
		t.Errorf("absent locals: %#v", r.Locals)
	}
	if r := info.NewStackListLocalsInfo(mi.Parse(`^done,locals=[]`)); r.Locals == nil || len(r.Locals) != 0 {
		t.Errorf("empty locals: %#v", r.Locals)
	}
}

func TestStackInfo(t *testing.T) {
	if r := info.NewStackInfoDepthInfo(mi.Parse(`^done,depth="12"`)); r.Depth != 12 {
		t.Errorf("depth %d", r.Depth)
	}
	r := info.NewStackInfoFrameInfo(mi.Parse(`^done,frame={level="1",addr="0x0001076c",func="callee3",file="../../../devo/gdb/testsuite/gdb.mi/basics.c",line="17"}`))
	if r.Frame == nil || r.Frame.Level != 1 || r.Frame.Function != "callee3" || r.Frame.Line != 17 {
		t.Errorf("frame %+v", r.Frame)
	}
}

func TestThreadInfo(t *testing.T) {
	r := info.NewThreadInfoInfo(mi.Parse(`^done,threads=[` +
		`{id="2",target-id="Thread 0xb7e14b90 (LWP 21257)",frame={level="0",addr="0xffffe410",func="__kernel_vsyscall",args=[]},state="running"},` +
		`{id="1",target-id="Thread 0xb7e156b0 (LWP 21254)",name="worker",frame={level="0",addr="0x0804891f",func="foo",args=[{name="i",value="10"}],file="/tmp/a.c",fullname="/tmp/a.c",line="158"},state="stopped",core="3"}],` +
		`current-thread-id="1"`))
	if r.CurrentThreadID != "1" || len(r.Threads) != 2 {
		t.Fatalf("got %+v", r)
	}
	th := r.Threads[1]
	if th.OSID != "21254" || th.Name != "worker" || th.State != "stopped" || th.Core != "3" {
		t.Errorf("thread %+v", th)
	}
	if th.Frame == nil || th.Frame.Function != "foo" || len(th.Frame.Args) != 1 || th.Frame.Args[0].Value != "10" {
		t.Errorf("frame %+v", th.Frame)
	}
	if r.Threads[0].Frame.Args == nil {
		t.Errorf("present but empty args decoded as absent")
	}
}

func TestParseOSID(t *testing.T) {
	tests := []struct {
		targetID   string
		os, parent string
	}{
		{"Thread 0xb7c8ab90 (LWP 7010)", "7010", ""},
		{"Thread 162.32942", "32942", "162"},
		{"process 12345", "12345", ""},
		{"LWP 7010", "7010", ""},
		{"Thread 3", "3", ""},
		{"Remote target", "", ""},
	}
	for _, tc := range tests {
		os, parent := info.ParseOSID(tc.targetID)
		if os != tc.os || parent != tc.parent {
			t.Errorf("ParseOSID(%q) = %q, %q; want %q, %q", tc.targetID, os, parent, tc.os, tc.parent)
		}
	}
}

func TestThreadListIdsAndSelect(t *testing.T) {
	ids := info.NewThreadListIdsInfo(mi.Parse(`^done,thread-ids={thread-id="3",thread-id="2",thread-id="1"},current-thread-id="1",number-of-threads="3"`))
	if len(ids.IDs) != 3 || ids.IDs[0] != "3" || ids.NumberOfThreads != 3 || ids.CurrentThreadID != "1" {
		t.Errorf("got %+v", ids)
	}
	sel := info.NewThreadSelectInfo(mi.Parse(`^done,new-thread-id="3",frame={level="0",func="vprintf",args=[{name="format",value="0x8048e9c \"%*s%c %d %c\\n\""}]}`))
	if sel.NewThreadID != "3" || sel.Frame == nil || sel.Frame.Function != "vprintf" {
		t.Errorf("got %+v", sel)
	}
}

func TestCLIInfoThreads(t *testing.T) {
	out := output(
		`~"  Id   Target Id                                  Frame \n"`,
		`~"* 3 Thread 0x510400 (LWP 100132)  0x0000000806c7489c in __sys_nanosleep () from /lib/libc.so.7\n"`,
		`~"  2    Thread 0x7ffff7d89700 (LWP 1235) \"a.out\" 0x00007ffff7e9a35d in clone ()\n"`,
		`~"  1    process 4242 main () at a.c:4\n"`,
		`^done`)
	r := info.NewCLIInfoThreadsInfo(out)
	if len(r.Threads) != 3 {
		t.Fatalf("got %d threads: %+v", len(r.Threads), r.Threads)
	}
	th := r.Threads[0]
	if !th.Current || th.ID != "3" || th.OSID != "100132" {
		t.Errorf("current thread: %+v", th)
	}
	if r.Threads[1].Current || r.Threads[1].OSID != "1235" {
		t.Errorf("second thread: %+v", r.Threads[1])
	}
	if r.Threads[2].OSID != "4242" {
		t.Errorf("process thread: %+v", r.Threads[2])
	}
}

func TestCLIThread(t *testing.T) {
	r := info.NewCLIThreadInfo(output(`~"[Current thread is 1 (Thread 0x7ffff7d8a740 (LWP 1234))]\n"`, `^done`))
	if r.CurrentThreadID != "1" {
		t.Errorf("got %q", r.CurrentThreadID)
	}
}

func TestListThreadGroups(t *testing.T) {
	r := info.NewListThreadGroupsInfo(mi.Parse(`^done,groups=[` +
		`{id="1",type="process",description="name: JIM_TOPIC, type 555481, locked: N, system: N, state: Idle"},` +
		`{id="2",type="process",description="[kworker/0:1]",cores=["0"]},` +
		`{id="3",type="process",description="[migration/3]"},` +
		`{id="4",type="process",user="root",description="/usr/sbin/sshd -D"},` +
		`{id="i1",type="process",pid="4242",executable="/tmp/a.out",cores=["1","2"],` +
		`threads=[{id="1",target-id="Thread 0x7ffff7d8a740 (LWP 4242)",state="stopped"}]}]`))
	want := []string{"JIM_TOPIC", "kworker/0:1", "migration", "/usr/sbin/sshd", "/tmp/a.out"}
	if len(r.Groups) != len(want) {
		t.Fatalf("got %d groups", len(r.Groups))
	}
	for i, g := range r.Groups {
		if got := g.Name(); got != want[i] {
			t.Errorf("group %d: name %q, want %q", i, got, want[i])
		}
	}
	g := r.Groups[4]
	if g.PID != "4242" || len(g.Cores) != 2 || len(g.Threads) != 1 || g.Threads[0].OSID != "4242" {
		t.Errorf("inferior %+v", g)
	}
	if r.Groups[0].Threads != nil {
		t.Errorf("threads decoded without a threads field")
	}
}
