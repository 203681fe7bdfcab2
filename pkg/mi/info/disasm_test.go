package info_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-delve/gdbmi/pkg/mi"
	"github.com/go-delve/gdbmi/pkg/mi/info"
)

func TestDataDisassemble(t *testing.T) {
	r := info.NewDataDisassembleInfo(mi.Parse(`^done,asm_insns=[` +
		`{address="0x0000000000401122",func-name="main",offset="0",opcodes="55",inst="push   %rbp"},` +
		`{address="0x0000000000401123",func-name="main",offset="1",opcodes="48 89 e5",inst="mov    %rsp,%rbp"},` +
		`{address="0x0000000000401126",func-name="main",offset="4",inst="rep stos %al,%es:(%rdi)"}]`))
	if r.Mixed {
		t.Errorf("plain disassembly detected as mixed")
	}
	if len(r.Instructions) != 3 || r.Lines != nil {
		t.Fatalf("got %+v", r.Instructions)
	}
	ins := r.Instructions[1]
	if ins.Opcode != "mov" || ins.Args != "%rsp,%rbp" || ins.Size != 3 || ins.Offset != 1 || ins.FuncName != "main" {
		t.Errorf("instruction %+v", ins)
	}
	if ins := r.Instructions[2]; ins.Opcode != "rep stos" || ins.Size != 0 {
		t.Errorf("prefixed instruction %+v", ins)
	}
}

func TestDataDisassembleMixed(t *testing.T) {
	r := info.NewDataDisassembleInfo(mi.Parse(`^done,asm_insns=[` +
		`src_and_asm_line={line="3",file="a.c",fullname="/tmp/a.c",line_asm_insn=[` +
		`{address="0x0000000000401122",func-name="main",offset="0",inst="push   %rbp"},` +
		`{address="0x0000000000401123",func-name="main",offset="1",inst="mov    %rsp,%rbp"}]},` +
		`src_and_asm_line={line="4",file="a.c",fullname="/tmp/a.c",line_asm_insn=[]}]`))
	if !r.Mixed || len(r.Lines) != 2 {
		t.Fatalf("got mixed=%v lines=%+v", r.Mixed, r.Lines)
	}
	if r.Lines[0].Line != 3 || r.Lines[0].Fullname != "/tmp/a.c" || len(r.Lines[0].Instructions) != 2 {
		t.Errorf("line 3: %+v", r.Lines[0])
	}
	if r.Lines[1].Instructions == nil || len(r.Lines[1].Instructions) != 0 {
		t.Errorf("line 4: %+v", r.Lines[1])
	}
	if len(r.Instructions) != 2 {
		t.Errorf("flattened instructions %+v", r.Instructions)
	}
}

func TestInstructionRedecode(t *testing.T) {
	r := info.NewDataDisassembleInfo(mi.Parse(`^done,asm_insns=[{address="0x401122",func-name="main",offset="0",opcodes="55",inst="push   %rbp"}]`))
	ins := r.Instructions[0]
	text, err := ins.Redecode("i386:x86-64")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(text, "push") || !strings.Contains(text, "rbp") {
		t.Errorf("got %q", text)
	}
	if _, err := ins.Redecode("vax"); !errors.Is(err, info.ErrUnknownArch) {
		t.Errorf("unknown architecture: %v", err)
	}
	var empty info.Instruction
	if _, err := empty.Redecode("amd64"); err == nil {
		t.Errorf("no error without opcodes")
	}
}
