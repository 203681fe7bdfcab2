package starbind

import (
	"bytes"
	"strings"
	"testing"

	"go.starlark.net/starlark"

	"github.com/go-delve/gdbmi/pkg/mi"
)

type fakeContext struct {
	cmds   map[string]func(string) error
	called []string
}

func (ctx *fakeContext) RegisterCommand(name, helpMsg string, cmdfn func(args string) error) {
	if ctx.cmds == nil {
		ctx.cmds = map[string]func(string) error{}
	}
	ctx.cmds[name] = cmdfn
}

func (ctx *fakeContext) CallCommand(cmdstr string) error {
	ctx.called = append(ctx.called, cmdstr)
	v := strings.SplitN(cmdstr, " ", 2)
	if fn := ctx.cmds[v[0]]; fn != nil {
		args := ""
		if len(v) > 1 {
			args = v[1]
		}
		return fn(args)
	}
	return nil
}

type bufWriter struct {
	bytes.Buffer
}

func (w *bufWriter) Echo(string) {}
func (w *bufWriter) Flush()      {}

func run(t *testing.T, env *Env, script string) starlark.Value {
	t.Helper()
	v, err := env.Execute("test.star", script, "main", nil)
	if err != nil {
		t.Fatalf("%s: %v", script, err)
	}
	return v
}

func TestBuiltins(t *testing.T) {
	env := New(&fakeContext{}, &bufWriter{})
	tests := []struct {
		script string
		want   string
	}{
		{`def main(): return parse('12^done,value="42"')["results"]["value"]`, `"42"`},
		{`def main(): return parse('12^done')["token"]`, `12`},
		{`def main(): return parse('*stopped,reason="exited-normally"')["record"]["class"]`, `"stopped"`},
		{`def main(): return parse("(gdb)")["prompt"]`, `True`},
		{`def main(): return parse_value('{a="1",b=["x","y"]}')["b"][1]`, `"y"`},
		{`def main(): return classify('3*running,thread-id="all"')`, `("async", 3)`},
		{`def main(): return unescape("a\\tb")`, `"a\tb"`},
		{`def main(): return escape("a\nb")`, `"a\\nb"`},
		{`def main(): return decode("-stack-info-depth", '^done,depth="12"').Depth`, `12`},
		{`def main(): return decode("data-evaluate-expression", ['~"x"', '^done,value="0x1"']).Value`, `"0x1"`},
		{`def main(): return decode("stack-info-depth", '^error,msg="No stack."').ErrorMessage`, `"No stack."`},
		{`def main(): return event('*running,thread-id="all"').ThreadID`, `"all"`},
	}
	for _, tc := range tests {
		v := run(t, env, tc.script)
		if v.String() != tc.want {
			t.Errorf("%s: got %s, want %s", tc.script, v, tc.want)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	env := New(&fakeContext{}, &bufWriter{})
	for _, script := range []string{
		`def main(): return decode("no-such-command", '^done')`,
		`def main(): return decode("stack-info-depth", '~"no result"')`,
		`def main(): return decode("stack-info-depth", 1)`,
	} {
		if _, err := env.Execute("test.star", script, "main", nil); err == nil {
			t.Errorf("%s: no error", script)
		}
	}
}

func TestDecodeParams(t *testing.T) {
	env := New(&fakeContext{}, &bufWriter{})
	v := run(t, env, `def main():
    r = decode("data-read-memory-bytes", '^done,memory=[{begin="0x1000",offset="0x0",end="0x1002",contents="aabb"}]', {"Count": 4})
    return [b.Valid for b in r.Memory]
`)
	if v.String() != "[True, True, False, False]" {
		t.Errorf("got %s", v)
	}
}

func TestCommands(t *testing.T) {
	ctx := &fakeContext{}
	env := New(ctx, &bufWriter{})
	run(t, env, `
def command_echo(args):
    "echoes its arguments"
    mi_command("seen", args)

def command_sum(a, b):
    mi_command("seen", str(a+b))
`)
	if ctx.cmds["echo"] == nil || ctx.cmds["sum"] == nil {
		t.Fatalf("commands not registered: %v", ctx.cmds)
	}
	if err := ctx.CallCommand("echo hello world"); err != nil {
		t.Fatal(err)
	}
	if err := ctx.CallCommand("sum 1, 2"); err != nil {
		t.Fatal(err)
	}
	want := []string{"echo hello world", "seen hello world", "sum 1, 2", "seen 3"}
	if strings.Join(ctx.called, "|") != strings.Join(want, "|") {
		t.Errorf("got %q", ctx.called)
	}
}

func TestOnOutput(t *testing.T) {
	ctx := &fakeContext{}
	env := New(ctx, &bufWriter{})
	if env.HasOutputHook() {
		t.Fatal("hook before any script")
	}
	run(t, env, `
def on_output(o):
    if o["class"] == "error":
        mi_command("failed", o["results"]["msg"])
`)
	if !env.HasOutputHook() {
		t.Fatal("hook not installed")
	}
	if err := env.OnOutput(mi.Parse(`^done`)); err != nil {
		t.Fatal(err)
	}
	if err := env.OnOutput(mi.Parse(`^error,msg="boom"`)); err != nil {
		t.Fatal(err)
	}
	if len(ctx.called) != 1 || ctx.called[0] != "failed boom" {
		t.Errorf("got %q", ctx.called)
	}
}

func TestHelpAndPrint(t *testing.T) {
	out := &bufWriter{}
	env := New(nil, out)
	run(t, env, `
print("hi")
help(parse)
`)
	s := out.String()
	if !strings.HasPrefix(s, "hi\n") || !strings.Contains(s, "parse(Line)") {
		t.Errorf("got %q", s)
	}
	if _, err := env.Execute("test.star", `mi_command("x")`, "", nil); err == nil {
		t.Errorf("mi_command without a terminal succeeded")
	}
}
