package cmds

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const session = `=thread-group-added,id="i1"
~"GNU gdb\n"
(gdb)
1^done
*stopped,reason="exited-normally"
`

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var outbuf, errbuf bytes.Buffer
	root := New(true)
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&outbuf)
	root.SetErr(&errbuf)
	err = root.Execute()
	return outbuf.String(), errbuf.String(), err
}

func mustExecute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, errout, err := execute(t, stdin, args...)
	if err != nil {
		t.Fatalf("%q: %v\n%s", args, err, errout)
	}
	return out
}

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "midecode-cmds")
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestParse(t *testing.T) {
	out := mustExecute(t, session, "parse")
	want := "notify\tthread group i1 added\n" +
		"console\tGNU gdb\n" +
		"result\t1^done (2 records)\n" +
		"exec\tstopped: exited-normally exit code 0\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}

	out = mustExecute(t, session, "parse", "--format", "yaml")
	for _, tgt := range []string{"- kind: async\n  type: notify\n", "- kind: result\n  token: 1\n  class: done\n", "---\n"} {
		if !strings.Contains(out, tgt) {
			t.Errorf("%q not in %q", tgt, out)
		}
	}

	if _, _, err := execute(t, session, "parse", "-f", "json"); err == nil {
		t.Errorf("unknown format accepted")
	}
}

func TestParseFiles(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "session.mi")
	if err := ioutil.WriteFile(path, []byte(session), 0600); err != nil {
		t.Fatal(err)
	}

	out := mustExecute(t, `2^error,msg="boom"`, "parse", path, "-")
	if !strings.HasSuffix(out, "error\t2^error: boom\n") || !strings.HasPrefix(out, "notify\t") {
		t.Errorf("wrong output: %q", out)
	}

	leftover := filepath.Join(dir, "leftover.mi")
	if err := ioutil.WriteFile(leftover, []byte("~\"unterminated session\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	out = mustExecute(t, "^done\n", "parse", leftover, "-")
	if want := "console\tunterminated session\nresult\t^done\n"; out != want {
		t.Errorf("records of one file attached to the next: got %q, want %q", out, want)
	}

	if _, _, err := execute(t, "", "parse", filepath.Join(dir, "missing.mi")); err == nil {
		t.Errorf("missing file accepted")
	}
}

func TestOOBWindowFlag(t *testing.T) {
	out := mustExecute(t, session, "--oob-window", "1", "parse")
	if !strings.Contains(out, "result\t1^done (1 records)\n") {
		t.Errorf("window not applied: %q", out)
	}
}

func TestDecode(t *testing.T) {
	in := "^done,depth=\"3\"\n*running,thread-id=\"all\"\n^error,msg=\"No stack.\"\n^done,depth=\"5\"\n"
	out, errout, err := execute(t, in, "decode", "--", "-stack-info-depth")
	if out != "depth: 3\n---\ndepth: 5\n" {
		t.Errorf("wrong output: %q", out)
	}
	if !strings.Contains(errout, "-stack-info-depth failed: No stack.") {
		t.Errorf("error not reported: %q", errout)
	}
	if err == nil || !strings.Contains(err.Error(), "1 commands failed") {
		t.Errorf("wrong error: %v", err)
	}

	out = mustExecute(t, "", "decode", "--list")
	if !strings.Contains(out, "\nstack-info-depth\n") || !strings.Contains(out, "info sharedlibrary\n") {
		t.Errorf("wrong list: %q", out)
	}

	if _, _, err := execute(t, in, "decode"); err == nil {
		t.Errorf("decode without a command accepted")
	}
	if _, _, err := execute(t, in, "decode", "no-such-command"); err == nil {
		t.Errorf("unknown command accepted")
	}
}

func TestDecodeMemory(t *testing.T) {
	in := `^done,memory=[{begin="0x1000",offset="0x0",end="0x1002",contents="aabb"}]`
	out := mustExecute(t, in, "decode", "--count", "4", "data-read-memory-bytes")
	if strings.Count(out, "- value: ") != 4 {
		t.Errorf("expected 4 bytes: %q", out)
	}
}

func TestEvents(t *testing.T) {
	out := mustExecute(t, session, "events")
	want := "notify\tthread group i1 added\nexec\tstopped: exited-normally exit code 0\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
	out = mustExecute(t, session, "events", "--format=yaml")
	if !strings.Contains(out, "class: thread-group-added") || !strings.Contains(out, "reason: exited-normally") {
		t.Errorf("wrong output: %q", out)
	}
}

func TestDAP(t *testing.T) {
	out := mustExecute(t, "*running,thread-id=\"all\"\n~\"hello\\n\"\n", "dap")
	if strings.Count(out, "Content-Length: ") != 2 {
		t.Fatalf("expected two messages: %q", out)
	}
	for _, tgt := range []string{`"event":"continued"`, `"allThreadsContinued":true`, `"event":"output"`, `"output":"hello\n"`} {
		if !strings.Contains(out, tgt) {
			t.Errorf("%q not in %q", tgt, out)
		}
	}
}

func TestScript(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	script := filepath.Join(dir, "count.star")
	err := ioutil.WriteFile(script, []byte(`
def on_output(o):
    if o["class"] != None:
        print(o["class"], len(o["records"]))

def main():
    print("start")
`), 0600)
	if err != nil {
		t.Fatal(err)
	}

	out := mustExecute(t, session, "script", script, "-")
	if out != "start\ndone 2\n" {
		t.Errorf("wrong output: %q", out)
	}

	noHook := filepath.Join(dir, "nohook.star")
	if err := ioutil.WriteFile(noHook, []byte("print(1)\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if out := mustExecute(t, "", "script", noHook); out != "1\n" {
		t.Errorf("wrong output: %q", out)
	}
	if _, _, err := execute(t, "", "script", noHook, "-"); err == nil {
		t.Errorf("input accepted without on_output")
	}
}

func TestVersion(t *testing.T) {
	out := mustExecute(t, "", "version")
	if !strings.HasPrefix(out, "midecode\nVersion: ") {
		t.Errorf("wrong version: %q", out)
	}
}

func TestHelpHidesFlags(t *testing.T) {
	out := mustExecute(t, "", "help", "parse")
	if strings.Contains(out, "--init") || strings.Contains(out, "--word-size") {
		t.Errorf("flags not applicable to parse are shown: %q", out)
	}
	if !strings.Contains(out, "--oob-window") || !strings.Contains(out, "--format") {
		t.Errorf("flags missing: %q", out)
	}
}

func TestDocs(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	mustExecute(t, "", "docs", dir)
	for _, name := range []string{"midecode.md", "midecode_parse.md", "midecode_log.md", "terminal.md"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not generated: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "midecode_docs.md")); err == nil {
		t.Errorf("hidden command documented")
	}
}
