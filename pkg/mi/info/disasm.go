package info

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/arch/arm/armasm"
	"golang.org/x/arch/arm64/arm64asm"
	"golang.org/x/arch/x86/x86asm"

	"github.com/go-delve/gdbmi/pkg/mi"
)

// Instruction is a disassembled instruction.
type Instruction struct {
	Address  string
	FuncName string
	Offset   int
	// Inst is the instruction as printed by GDB, split into Opcode and
	// Args.
	Inst   string
	Opcode string
	Args   string
	// Opcodes is the raw encoding as printed by GDB, "48 89 e5".
	Opcodes string
	Bytes   []byte
	Size    int
}

// SrcAsm is a source line with the instructions generated for it.
type SrcAsm struct {
	Line         int
	File         string
	Fullname     string
	Instructions []Instruction
}

// ErrUnknownArch is returned by Redecode for architectures it can not
// decode.
var ErrUnknownArch = errors.New("unknown architecture")

// Redecode decodes the raw encoding of the instruction and returns it in
// GNU syntax. Arch is either a GOARCH or a GDB architecture name such as
// i386:x86-64 or aarch64.
func (ins *Instruction) Redecode(arch string) (string, error) {
	if len(ins.Bytes) == 0 {
		return "", fmt.Errorf("instruction at %s: no opcodes", ins.Address)
	}
	pc, _ := ParseAddress(ins.Address)
	var addr uint64
	if pc != nil && pc.IsUint64() {
		addr = pc.Uint64()
	}
	switch normalizeArch(arch) {
	case "amd64", "386":
		mode := 64
		if normalizeArch(arch) == "386" {
			mode = 32
		}
		inst, err := x86asm.Decode(ins.Bytes, mode)
		if err != nil {
			return "", err
		}
		return x86asm.GNUSyntax(inst, addr, nil), nil
	case "arm64":
		inst, err := arm64asm.Decode(ins.Bytes)
		if err != nil {
			return "", err
		}
		return arm64asm.GNUSyntax(inst), nil
	case "arm":
		inst, err := armasm.Decode(ins.Bytes, armasm.ModeARM)
		if err != nil {
			return "", err
		}
		return armasm.GNUSyntax(inst), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownArch, arch)
}

func normalizeArch(arch string) string {
	switch strings.ToLower(arch) {
	case "amd64", "x86_64", "x86-64", "i386:x86-64":
		return "amd64"
	case "386", "i386", "i686", "x86":
		return "386"
	case "arm64", "aarch64":
		return "arm64"
	case "arm", "armv7", "armv7l":
		return "arm"
	}
	return ""
}

func (i *Info) instruction(t *mi.Tuple) Instruction {
	ins := Instruction{
		Address:  i.str(t, "address"),
		FuncName: i.str(t, "func-name"),
		Offset:   i.num(t, "offset", 0),
		Inst:     i.str(t, "inst"),
		Opcodes:  i.str(t, "opcodes"),
	}
	ins.Opcode, ins.Args = splitInst(ins.Inst)
	if ins.Opcodes != "" {
		b, err := hex.DecodeString(strings.Join(strings.Fields(ins.Opcodes), ""))
		if err != nil {
			i.issuef("opcodes: %v", err)
		} else {
			ins.Bytes = b
			ins.Size = len(b)
		}
	}
	return ins
}

// splitInst splits "mov    %rsp,%rbp" into "mov" and "%rsp,%rbp".
// Prefixes such as "lock" or "rep" stay with the opcode.
func splitInst(inst string) (opcode, args string) {
	fields := strings.Fields(inst)
	if len(fields) == 0 {
		return "", ""
	}
	n := 1
	for n < len(fields) && isPrefix(fields[n-1]) {
		n++
	}
	return strings.Join(fields[:n], " "), strings.Join(fields[n:], " ")
}

func isPrefix(s string) bool {
	switch s {
	case "lock", "rep", "repz", "repe", "repnz", "repne", "data16", "addr32", "cs", "ds", "es", "fs", "gs", "ss", "bnd", "notrack":
		return true
	}
	return false
}

func (i *Info) instructions(g getter, name string) []Instruction {
	ts, ok := i.tuples(g, name)
	if !ok {
		return nil
	}
	r := make([]Instruction, 0, len(ts))
	for _, t := range ts {
		r = append(r, i.instruction(t))
	}
	return r
}

// DataDisassembleInfo is the result of -data-disassemble.
type DataDisassembleInfo struct {
	Info `yaml:"-"`

	// Mixed is set when the output holds source lines, in that case the
	// instructions are in Lines.
	Mixed        bool
	Instructions []Instruction
	Lines        []SrcAsm
}

// NewDataDisassembleInfo decodes
//
//	^done,asm_insns=[{address="0x000107c0",func-name="main",offset="4",inst="mov 2, %o0"},...]
//
// and the mixed source and disassembly form
//
//	^done,asm_insns=[src_and_asm_line={line="31",file="a.c",fullname="/a.c",line_asm_insn=[{...}]},...]
//
// The form is detected from the content of the list.
func NewDataDisassembleInfo(out *mi.Output) *DataDisassembleInfo {
	r := &DataDisassembleInfo{Info: newInfo(out)}
	r.decode("data-disassemble", func(rr *mi.ResultRecord) {
		list := r.agg(rr, "asm_insns")
		if list == nil {
			return
		}
		for _, v := range items(list) {
			if t, ok := v.(*mi.Tuple); ok && t.Field("line_asm_insn") != nil {
				r.Mixed = true
				break
			}
		}
		for _, res := range list.Results() {
			if res.Name() == "src_and_asm_line" {
				r.Mixed = true
			}
		}
		if !r.Mixed {
			r.Instructions = r.instructions(rr, "asm_insns")
			return
		}
		r.Lines = []SrcAsm{}
		r.Instructions = []Instruction{}
		for _, v := range items(list) {
			t, ok := v.(*mi.Tuple)
			if !ok {
				continue
			}
			line := SrcAsm{
				Line:         r.num(t, "line", 0),
				File:         r.str(t, "file"),
				Fullname:     r.str(t, "fullname"),
				Instructions: r.instructions(t, "line_asm_insn"),
			}
			if line.Instructions == nil {
				line.Instructions = []Instruction{}
			}
			r.Lines = append(r.Lines, line)
			r.Instructions = append(r.Instructions, line.Instructions...)
		}
	})
	return r
}
