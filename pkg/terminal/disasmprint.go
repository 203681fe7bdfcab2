package terminal

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/go-delve/gdbmi/pkg/mi/info"
)

func disasmPrint(d *info.DataDisassembleInfo, out io.Writer) {
	bw := bufio.NewWriter(out)
	defer bw.Flush()
	if !d.Mixed {
		printInstructions(bw, d.Instructions, true)
		return
	}
	for _, line := range d.Lines {
		fmt.Fprintf(bw, "%s:%d\n", filepath.Base(line.File), line.Line)
		printInstructions(bw, line.Instructions, false)
	}
}

func printInstructions(w io.Writer, insts []info.Instruction, showHeader bool) {
	if len(insts) > 0 && insts[0].FuncName != "" && showHeader {
		fmt.Fprintf(w, "TEXT %s\n", insts[0].FuncName)
	}
	tw := tabwriter.NewWriter(w, 1, 8, 1, '\t', 0)
	defer tw.Flush()
	for _, inst := range insts {
		loc := ""
		if inst.FuncName != "" {
			loc = fmt.Sprintf("%s+%d", inst.FuncName, inst.Offset)
		}
		fmt.Fprintf(tw, "\t%s\t%s\t%x\t%s\n", inst.Address, loc, inst.Bytes, inst.Inst)
	}
}
