package mi

import (
	"fmt"
	"testing"

	"gopkg.in/yaml.v2"
)

func TestAssemblerCommandOutput(t *testing.T) {
	a := NewAssembler(AssemblerConfig{CacheSize: 16})
	lines := []string{
		`=thread-group-added,id="i1"`,
		`~"GNU gdb (GDB) 12.1\n"`,
		`&"info threads\n"`,
		`(gdb) `,
		`7^done,threads=[]`,
	}
	var out *Output
	for _, line := range lines {
		out = a.Feed(line)
	}
	if out.ResultRecord() == nil || out.Token() != 7 {
		t.Fatalf("expected result output for token 7, got %v", out)
	}
	if n := len(out.OOBRecords()); n != 3 {
		t.Fatalf("expected 3 preceding records, got %d", n)
	}
	if len(a.Pending()) != 0 {
		t.Fatalf("window not reset after result record")
	}
	if got := out.StreamText(StreamConsole); got != "GNU gdb (GDB) 12.1"+lineSep() {
		t.Fatalf("bad console text %q", got)
	}
}

func TestAssemblerWindow(t *testing.T) {
	a := NewAssembler(AssemblerConfig{OOBWindow: 3, StreamWindow: 2})
	for i := 0; i < 10; i++ {
		a.Feed(fmt.Sprintf(`~"line %d\n"`, i))
	}
	if n := len(a.Pending()); n != 3 {
		t.Fatalf("expected window of 3, got %d", n)
	}
	out := a.Feed(`*stopped,reason="signal-received"`)
	if out.Record() == nil || out.Record().Kind() != KindAsync {
		t.Fatalf("expected async single record output")
	}
	streams := out.StreamRecords()
	if len(streams) != 2 {
		t.Fatalf("expected 2 preceding streams, got %d", len(streams))
	}
	if streams[0].CString() != `line 8\n` || streams[1].CString() != `line 9\n` {
		t.Fatalf("wrong streams kept: %v %v", streams[0], streams[1])
	}

	out = a.Feed(`^done`)
	oob := out.OOBRecords()
	if len(oob) != 3 {
		t.Fatalf("expected 3 records, got %d", len(oob))
	}
	if oob[2].Kind() != KindAsync || oob[1].String() != `~"line 9\n"` {
		t.Fatalf("window out of order: %v", oob)
	}
}

func TestAssemblerPendingIsStable(t *testing.T) {
	a := NewAssembler(AssemblerConfig{OOBWindow: 2})
	a.Feed(`~"a"`)
	a.Feed(`~"b"`)
	pending := a.Pending()
	a.Feed(`~"c"`)
	if len(pending) != 2 || pending[0].String() != `~"a"` || pending[1].String() != `~"b"` {
		t.Fatalf("pending records changed after a feed: %v", pending)
	}
	if now := a.Pending(); now[0].String() != `~"b"` || now[1].String() != `~"c"` {
		t.Fatalf("wrong window: %v", now)
	}
}

func TestAssemblerSkipsEmptyLines(t *testing.T) {
	a := NewAssembler(AssemblerConfig{})
	if out := a.Feed("\r\n"); out != nil {
		t.Fatalf("expected nil output for empty line, got %v", out)
	}
	if out := a.Feed("(gdb)"); !out.IsPrompt() {
		t.Fatalf("expected prompt")
	}
}

func TestAssemblerCache(t *testing.T) {
	a := NewAssembler(AssemblerConfig{CacheSize: 4})
	first := a.Feed(`*running,thread-id="all"`).Record()
	second := a.Feed(`*running,thread-id="all"`).Record()
	if first != second {
		t.Fatalf("expected cached record to be reused")
	}
}

func TestToYAML(t *testing.T) {
	out := Parse(`^done,stack=[frame={level="0",func="main"}]`)
	b, err := yaml.Marshal(OutputToYAML(out))
	if err != nil {
		t.Fatal(err)
	}
	expected := `- kind: result
  class: done
  results:
    stack:
      frame:
        level: "0"
        func: main
`
	if string(b) != expected {
		t.Fatalf("unexpected yaml:\n%s\nexpected:\n%s", b, expected)
	}

	mixed, ok := ToYAML(ParseValue(`{a="1","x"}`)).(yaml.MapSlice)
	if !ok || len(mixed) != 2 || mixed[1].Key != "[0]" || mixed[1].Value != "x" {
		t.Fatalf("unexpected conversion of mixed tuple: %v", mixed)
	}
	list, ok := ToYAML(ParseValue(`["x","y"]`)).([]interface{})
	if !ok || len(list) != 2 || list[1] != "y" {
		t.Fatalf("unexpected conversion of list: %v", list)
	}
}
