package info

import (
	"sort"
	"strings"

	"github.com/go-delve/gdbmi/pkg/mi"
)

// Params are the command arguments some decoders need to interpret the
// output.
type Params struct {
	// Count is the number of words requested by a memory read.
	Count int
	// WordSize is the size of a word in bytes, 1 if zero.
	WordSize int
}

// Result is implemented by every decoded result.
type Result interface {
	Output() *mi.Output
	Done() bool
	ErrorMessage() string
	Issues() error
}

// Decoder decodes the output of a command.
type Decoder func(out *mi.Output, p Params) Result

// decoders maps MI commands, without the leading dash, and CLI commands
// to their decoder.
var decoders = map[string]Decoder{
	"break-insert":    func(o *mi.Output, _ Params) Result { return NewBreakInsertInfo(o) },
	"break-watch":     func(o *mi.Output, _ Params) Result { return NewBreakWatchInfo(o) },
	"break-passcount": func(o *mi.Output, _ Params) Result { return NewBreakInsertInfo(o) },
	"dprintf-insert":  func(o *mi.Output, _ Params) Result { return NewBreakInsertInfo(o) },
	"break-list":      func(o *mi.Output, _ Params) Result { return NewBreakListInfo(o) },
	"break-info":      func(o *mi.Output, _ Params) Result { return NewBreakListInfo(o) },
	"catch":           func(o *mi.Output, _ Params) Result { return NewCLICatchInfo(o) },

	"stack-list-frames":    func(o *mi.Output, _ Params) Result { return NewStackListFramesInfo(o) },
	"stack-info-depth":     func(o *mi.Output, _ Params) Result { return NewStackInfoDepthInfo(o) },
	"stack-info-frame":     func(o *mi.Output, _ Params) Result { return NewStackInfoFrameInfo(o) },
	"stack-list-arguments": func(o *mi.Output, _ Params) Result { return NewStackListArgumentsInfo(o) },
	"stack-list-locals":    func(o *mi.Output, _ Params) Result { return NewStackListLocalsInfo(o) },
	"stack-list-variables": func(o *mi.Output, _ Params) Result { return NewStackListVariablesInfo(o) },

	"thread-info":        func(o *mi.Output, _ Params) Result { return NewThreadInfoInfo(o) },
	"thread-list-ids":    func(o *mi.Output, _ Params) Result { return NewThreadListIdsInfo(o) },
	"thread-select":      func(o *mi.Output, _ Params) Result { return NewThreadSelectInfo(o) },
	"list-thread-groups": func(o *mi.Output, _ Params) Result { return NewListThreadGroupsInfo(o) },
	"info threads":       func(o *mi.Output, _ Params) Result { return NewCLIInfoThreadsInfo(o) },
	"thread":             func(o *mi.Output, _ Params) Result { return NewCLIThreadInfo(o) },

	"var-create":               func(o *mi.Output, _ Params) Result { return NewVarCreateInfo(o) },
	"var-list-children":        func(o *mi.Output, _ Params) Result { return NewVarListChildrenInfo(o) },
	"var-update":               func(o *mi.Output, _ Params) Result { return NewVarUpdateInfo(o) },
	"var-evaluate-expression":  func(o *mi.Output, _ Params) Result { return NewVarEvaluateExpressionInfo(o) },
	"var-info-type":            func(o *mi.Output, _ Params) Result { return NewVarInfoTypeInfo(o) },
	"var-info-num-children":    func(o *mi.Output, _ Params) Result { return NewVarInfoNumChildrenInfo(o) },
	"var-info-expression":      func(o *mi.Output, _ Params) Result { return NewVarInfoExpressionInfo(o) },
	"var-info-path-expression": func(o *mi.Output, _ Params) Result { return NewVarInfoPathExpressionInfo(o) },
	"var-show-attributes":      func(o *mi.Output, _ Params) Result { return NewVarShowAttributesInfo(o) },
	"var-show-format":          func(o *mi.Output, _ Params) Result { return NewVarShowFormatInfo(o) },
	"var-set-format":           func(o *mi.Output, _ Params) Result { return NewVarSetFormatInfo(o) },
	"var-assign":               func(o *mi.Output, _ Params) Result { return NewVarAssignInfo(o) },
	"var-delete":               func(o *mi.Output, _ Params) Result { return NewVarDeleteInfo(o) },

	"data-evaluate-expression":    func(o *mi.Output, _ Params) Result { return NewDataEvaluateExpressionInfo(o) },
	"data-list-register-names":    func(o *mi.Output, _ Params) Result { return NewDataListRegisterNamesInfo(o) },
	"data-list-register-values":   func(o *mi.Output, _ Params) Result { return NewDataListRegisterValuesInfo(o) },
	"data-list-changed-registers": func(o *mi.Output, _ Params) Result { return NewDataListChangedRegistersInfo(o) },
	"data-write-memory":           func(o *mi.Output, _ Params) Result { return NewDataWriteMemoryInfo(o) },
	"data-write-memory-bytes":     func(o *mi.Output, _ Params) Result { return NewDataWriteMemoryBytesInfo(o) },
	"data-read-memory": func(o *mi.Output, p Params) Result {
		return NewDataReadMemoryInfo(o, p.Count, p.WordSize)
	},
	"data-read-memory-bytes": func(o *mi.Output, p Params) Result {
		return NewDataReadMemoryBytesInfo(o, p.Count, p.WordSize)
	},
	"data-disassemble": func(o *mi.Output, _ Params) Result { return NewDataDisassembleInfo(o) },

	"trace-status":         func(o *mi.Output, _ Params) Result { return NewTraceStatusInfo(o) },
	"trace-stop":           func(o *mi.Output, _ Params) Result { return NewTraceStopInfo(o) },
	"trace-find":           func(o *mi.Output, _ Params) Result { return NewTraceFindInfo(o) },
	"trace-list-variables": func(o *mi.Output, _ Params) Result { return NewTraceListVariablesInfo(o) },
	"trace":                func(o *mi.Output, _ Params) Result { return NewCLITraceInfo(o) },

	"gdb-version":           func(o *mi.Output, _ Params) Result { return NewGDBVersionInfo(o) },
	"gdb-show":              func(o *mi.Output, _ Params) Result { return NewGDBShowInfo(o) },
	"gdb-show $_exitcode":   func(o *mi.Output, _ Params) Result { return NewGDBShowExitCodeInfo(o) },
	"gdb-show language":     func(o *mi.Output, _ Params) Result { return NewGDBShowLanguageInfo(o) },
	"list-features":         func(o *mi.Output, _ Params) Result { return NewListFeaturesInfo(o) },
	"list-target-features":  func(o *mi.Output, _ Params) Result { return NewListFeaturesInfo(o) },
	"target-download":       func(o *mi.Output, _ Params) Result { return NewTargetDownloadInfo(o) },
	"add-inferior":          func(o *mi.Output, _ Params) Result { return NewAddInferiorInfo(o) },
	"info-os":               func(o *mi.Output, _ Params) Result { return NewInfoOsInfo(o) },
	"symbol-info-functions": func(o *mi.Output, _ Params) Result { return NewSymbolInfoFunctionsInfo(o) },

	"file-list-shared-libraries": func(o *mi.Output, _ Params) Result { return NewFileListSharedLibrariesInfo(o) },
	"info sharedlibrary":         func(o *mi.Output, _ Params) Result { return NewCLIInfoSharedLibraryInfo(o) },

	"info program":  func(o *mi.Output, _ Params) Result { return NewCLIInfoProgramInfo(o) },
	"info signals":  func(o *mi.Output, _ Params) Result { return NewCLIInfoSignalsInfo(o) },
	"info line":     func(o *mi.Output, _ Params) Result { return NewCLIInfoLineInfo(o) },
	"show endian":   func(o *mi.Output, _ Params) Result { return NewCLIShowEndianInfo(o) },
	"show non-stop": func(o *mi.Output, _ Params) Result { return NewCLIShowBoolInfo(o) },
	"show print":    func(o *mi.Output, _ Params) Result { return NewCLIShowBoolInfo(o) },
}

// Lookup returns the decoder for command. The leading dash of MI commands
// is optional and CLI commands can have arguments, "info line a.c:4" uses
// the decoder of "info line".
func Lookup(command string) (Decoder, bool) {
	command = strings.TrimPrefix(strings.TrimSpace(command), "-")
	words := strings.Fields(command)
	for n := len(words); n > 0; n-- {
		if d, ok := decoders[strings.Join(words[:n], " ")]; ok {
			return d, true
		}
	}
	return nil, false
}

// Commands returns the commands that have a decoder, sorted.
func Commands() []string {
	r := make([]string, 0, len(decoders))
	for name := range decoders {
		r = append(r, name)
	}
	sort.Strings(r)
	return r
}
