package info

import (
	"github.com/go-delve/gdbmi/pkg/mi"
)

// DataEvaluateExpressionInfo is the result of -data-evaluate-expression.
type DataEvaluateExpressionInfo struct {
	Info `yaml:"-"`

	Value string
}

// NewDataEvaluateExpressionInfo decodes ^done,value="0x7fffffffe1c8".
func NewDataEvaluateExpressionInfo(out *mi.Output) *DataEvaluateExpressionInfo {
	r := &DataEvaluateExpressionInfo{Info: newInfo(out)}
	r.decode("data-evaluate-expression", func(rr *mi.ResultRecord) {
		r.Value = r.display(rr, "value")
	})
	return r
}

// DataListRegisterNamesInfo is the result of -data-list-register-names.
type DataListRegisterNamesInfo struct {
	Info `yaml:"-"`

	// Names is indexed by register number, registers that do not exist on
	// the target have an empty name.
	Names []string
}

// NewDataListRegisterNamesInfo decodes ^done,register-names=["rax","rbx",...].
func NewDataListRegisterNamesInfo(out *mi.Output) *DataListRegisterNamesInfo {
	r := &DataListRegisterNamesInfo{Info: newInfo(out)}
	r.decode("data-list-register-names", func(rr *mi.ResultRecord) {
		r.Names = r.strs(rr, "register-names")
	})
	return r
}

// RegisterValue is the value of register Number.
type RegisterValue struct {
	Number int
	Value  string
}

// DataListRegisterValuesInfo is the result of -data-list-register-values.
type DataListRegisterValuesInfo struct {
	Info `yaml:"-"`

	Values []RegisterValue
}

// NewDataListRegisterValuesInfo decodes
//
//	^done,register-values=[{number="0",value="0x4"},{number="1",value="0x0"}]
func NewDataListRegisterValuesInfo(out *mi.Output) *DataListRegisterValuesInfo {
	r := &DataListRegisterValuesInfo{Info: newInfo(out)}
	r.decode("data-list-register-values", func(rr *mi.ResultRecord) {
		regs, ok := r.tuples(rr, "register-values")
		if !ok {
			return
		}
		r.Values = make([]RegisterValue, 0, len(regs))
		for _, t := range regs {
			r.Values = append(r.Values, RegisterValue{
				Number: r.num(t, "number", -1),
				Value:  r.display(t, "value"),
			})
		}
	})
	return r
}

// DataListChangedRegistersInfo is the result of
// -data-list-changed-registers.
type DataListChangedRegistersInfo struct {
	Info `yaml:"-"`

	Registers []int
}

// NewDataListChangedRegistersInfo decodes ^done,changed-registers=["0","1","17"].
func NewDataListChangedRegistersInfo(out *mi.Output) *DataListChangedRegistersInfo {
	r := &DataListChangedRegistersInfo{Info: newInfo(out)}
	r.decode("data-list-changed-registers", func(rr *mi.ResultRecord) {
		regs := r.strs(rr, "changed-registers")
		if regs == nil {
			return
		}
		r.Registers = make([]int, 0, len(regs))
		for _, s := range regs {
			n := r.atoi("changed-registers", s, -1)
			if n >= 0 {
				r.Registers = append(r.Registers, n)
			}
		}
	})
	return r
}

// DataWriteMemoryInfo is the result of -data-write-memory. The command
// returns a bare ^done.
type DataWriteMemoryInfo struct {
	Info `yaml:"-"`
}

// NewDataWriteMemoryInfo decodes the result of -data-write-memory.
func NewDataWriteMemoryInfo(out *mi.Output) *DataWriteMemoryInfo {
	return &DataWriteMemoryInfo{Info: newInfo(out)}
}

// DataWriteMemoryBytesInfo is the result of -data-write-memory-bytes.
type DataWriteMemoryBytesInfo struct {
	Info `yaml:"-"`
}

// NewDataWriteMemoryBytesInfo decodes the result of
// -data-write-memory-bytes.
func NewDataWriteMemoryBytesInfo(out *mi.Output) *DataWriteMemoryBytesInfo {
	return &DataWriteMemoryBytesInfo{Info: newInfo(out)}
}
