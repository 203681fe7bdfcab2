// Package dap translates GDB/MI output into messages of VSCode's Debug
// Adaptor Protocol (DAP).
//
// A Translator converts decoded records, events and command results into
// go-dap messages, a Session reads MI output from a stream and writes the
// resulting events to a DAP client.
// For DAP details see https://microsoft.github.io/debug-adapter-protocol.
package dap

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-delve/gdbmi/pkg/mi"
	"github.com/go-delve/gdbmi/pkg/mi/event"
	"github.com/go-delve/gdbmi/pkg/mi/info"
	"github.com/google/go-dap"
)

// Translator converts MI data into DAP messages. It keeps the handles
// that DAP uses to refer to stack frames and variables, these are
// invalidated every time the inferior resumes.
type Translator struct {
	seq int
	// stackFrameHandles maps frames of each thread to unique ids across all threads.
	stackFrameHandles *frameHandlesMap
	// variableHandles maps varobjs with children to unique references.
	variableHandles *varobjHandlesMap
}

// NewTranslator returns a new Translator.
func NewTranslator() *Translator {
	return &Translator{
		stackFrameHandles: newFrameHandlesMap(),
		variableHandles:   newVarobjHandlesMap(),
	}
}

func (t *Translator) nextSeq() int {
	t.seq++
	return t.seq
}

func (t *Translator) newEvent(event string) *dap.Event {
	return &dap.Event{
		ProtocolMessage: dap.ProtocolMessage{
			Seq:  t.nextSeq(),
			Type: "event",
		},
		Event: event,
	}
}

func (t *Translator) clearProcessStateHandles() {
	t.stackFrameHandles.reset()
	t.variableHandles.reset()
}

// Output translates every record of out. Stream records become output
// events, async records are decoded with event.Decode and an error result
// is reported as stderr output.
func (t *Translator) Output(out *mi.Output) []dap.Message {
	var msgs []dap.Message
	for _, rec := range out.OOBRecords() {
		msgs = append(msgs, t.Record(rec)...)
	}
	if rec := out.Record(); rec != nil {
		msgs = append(msgs, t.Record(rec)...)
	}
	return append(msgs, t.Result(out.ResultRecord())...)
}

// Record translates a single out of band record.
func (t *Translator) Record(rec mi.OOBRecord) []dap.Message {
	switch rec := rec.(type) {
	case *mi.StreamRecord:
		if e := t.Stream(rec); e != nil {
			return []dap.Message{e}
		}
	case *mi.AsyncRecord:
		return t.Event(event.Decode(rec))
	}
	return nil
}

// Result translates a result record, only errors have a DAP counterpart.
func (t *Translator) Result(rr *mi.ResultRecord) []dap.Message {
	if rr.Class() != mi.ClassError {
		return nil
	}
	return []dap.Message{&dap.OutputEvent{
		Event: *t.newEvent("output"),
		Body: dap.OutputEventBody{
			Output:   fmt.Sprintf("ERROR: %s\n", rr.ErrorMessage()),
			Category: "stderr",
		}}}
}

// Stream translates a stream record into an output event. Console output
// goes to the debug console, target output to stdout and log output to
// stderr. Empty records return nil.
func (t *Translator) Stream(rec *mi.StreamRecord) *dap.OutputEvent {
	text := rec.Text()
	if text == "" {
		return nil
	}
	category := "console"
	switch rec.StreamKind() {
	case mi.StreamTarget:
		category = "stdout"
	case mi.StreamLog:
		category = "stderr"
	}
	return &dap.OutputEvent{
		Event: *t.newEvent("output"),
		Body:  dap.OutputEventBody{Output: text, Category: category},
	}
}

// Event translates ev. Events without a DAP counterpart return nil.
func (t *Translator) Event(ev event.Event) []dap.Message {
	switch ev := ev.(type) {
	case *event.Stopped:
		t.clearProcessStateHandles()
		if ev.Exited() {
			return []dap.Message{
				&dap.ExitedEvent{Event: *t.newEvent("exited"), Body: dap.ExitedEventBody{ExitCode: ev.ExitCode}},
				&dap.TerminatedEvent{Event: *t.newEvent("terminated")},
			}
		}
		e := &dap.StoppedEvent{Event: *t.newEvent("stopped")}
		e.Body.Reason = stopReason(ev.Reason)
		e.Body.Description = event.Describe(ev)
		e.Body.ThreadId = threadID(ev.ThreadID)
		e.Body.AllThreadsStopped = ev.AllStopped
		if ev.SignalName != "" {
			e.Body.Text = ev.SignalName + ": " + ev.SignalMeaning
		}
		return []dap.Message{e}
	case *event.Running:
		t.clearProcessStateHandles()
		e := &dap.ContinuedEvent{Event: *t.newEvent("continued")}
		e.Body.ThreadId = threadID(ev.ThreadID)
		e.Body.AllThreadsContinued = ev.ThreadID == "all"
		return []dap.Message{e}
	case *event.ThreadCreated:
		return []dap.Message{t.threadEvent("started", ev.ID)}
	case *event.ThreadExited:
		return []dap.Message{t.threadEvent("exited", ev.ID)}
	case *event.ThreadGroupExited:
		if !ev.HasExitCode {
			return nil
		}
		return []dap.Message{&dap.ExitedEvent{Event: *t.newEvent("exited"), Body: dap.ExitedEventBody{ExitCode: ev.ExitCode}}}
	case *event.BreakpointCreated:
		return []dap.Message{t.breakpointEvent("new", t.Breakpoint(ev.Breakpoint))}
	case *event.BreakpointModified:
		return []dap.Message{t.breakpointEvent("changed", t.Breakpoint(ev.Breakpoint))}
	case *event.BreakpointDeleted:
		id, _ := strconv.Atoi(ev.ID)
		return []dap.Message{t.breakpointEvent("removed", dap.Breakpoint{Id: id})}
	case *event.LibraryLoaded:
		return []dap.Message{t.moduleEvent("new", ev.Library)}
	case *event.LibraryUnloaded:
		return []dap.Message{t.moduleEvent("removed", ev.Library)}
	}
	return nil
}

func (t *Translator) threadEvent(reason, id string) *dap.ThreadEvent {
	return &dap.ThreadEvent{
		Event: *t.newEvent("thread"),
		Body:  dap.ThreadEventBody{Reason: reason, ThreadId: threadID(id)},
	}
}

func (t *Translator) breakpointEvent(reason string, bp dap.Breakpoint) *dap.BreakpointEvent {
	return &dap.BreakpointEvent{
		Event: *t.newEvent("breakpoint"),
		Body:  dap.BreakpointEventBody{Reason: reason, Breakpoint: bp},
	}
}

func (t *Translator) moduleEvent(reason string, lib info.SharedLibrary) *dap.ModuleEvent {
	m := dap.Module{Id: lib.ID, Name: filepath.Base(lib.Name()), Path: lib.Name()}
	if lib.SymbolsLoaded {
		m.SymbolStatus = "Symbols loaded."
	} else {
		m.SymbolStatus = "Symbols not loaded."
	}
	if len(lib.Ranges) > 0 {
		m.AddressRange = lib.Ranges[0].From + "-" + lib.Ranges[len(lib.Ranges)-1].To
	}
	return &dap.ModuleEvent{
		Event: *t.newEvent("module"),
		Body:  dap.ModuleEventBody{Reason: reason, Module: m},
	}
}

// stopReason maps the reason of a *stopped record to one of the reasons
// DAP clients know how to present.
func stopReason(reason string) string {
	switch reason {
	case event.ReasonBreakpointHit, event.ReasonTracepointHit:
		return "breakpoint"
	case event.ReasonWatchpointTrigger, event.ReasonReadWatchpoint, event.ReasonAccessWatchpoint:
		return "data breakpoint"
	case event.ReasonEndSteppingRange, event.ReasonFunctionFinished, event.ReasonLocationReached:
		return "step"
	case event.ReasonSignalReceived:
		return "exception"
	case "":
		return "pause"
	}
	return reason
}

// threadID converts a GDB thread id, 0 is returned for "all" and for
// ids that are not numbers.
func threadID(id string) int {
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0
	}
	return n
}

// Threads translates the threads reported by -thread-info.
func (t *Translator) Threads(threads []info.Thread) []dap.Thread {
	r := make([]dap.Thread, 0, len(threads))
	for _, th := range threads {
		name := th.Name
		if name == "" {
			name = th.TargetID
		}
		if th.Details != "" {
			name += " (" + th.Details + ")"
		}
		r = append(r, dap.Thread{Id: threadID(th.ID), Name: name})
	}
	return r
}

// StackFrames translates the frames of thread. The frame ids stay valid
// until the inferior resumes and can be resolved with Frame.
func (t *Translator) StackFrames(thread string, frames []info.Frame) []dap.StackFrame {
	r := make([]dap.StackFrame, 0, len(frames))
	for _, f := range frames {
		sf := dap.StackFrame{
			Id:                          t.stackFrameHandles.create(frameRef{thread, f.Level}),
			Name:                        f.Function,
			Line:                        f.Line,
			Column:                      0,
			InstructionPointerReference: f.Address,
		}
		if sf.Name == "" {
			sf.Name = f.Address
		}
		if src := source(f.File, f.Fullname); src != nil {
			sf.Source = src
		} else {
			sf.PresentationHint = "subtle"
		}
		r = append(r, sf)
	}
	return r
}

// Frame resolves a frame id returned by StackFrames into the thread and
// the level of the frame, the arguments of --thread and --frame.
func (t *Translator) Frame(id int) (thread string, level int, ok bool) {
	ref, ok := t.stackFrameHandles.get(id)
	return ref.threadID, ref.level, ok
}

func source(file, fullname string) *dap.Source {
	if file == "" && fullname == "" {
		return nil
	}
	path := fullname
	if path == "" {
		path = file
	}
	return &dap.Source{Name: filepath.Base(path), Path: path}
}

// Breakpoint translates bp. A breakpoint is verified when it has an
// address, pending breakpoints are not.
func (t *Translator) Breakpoint(bp info.Breakpoint) dap.Breakpoint {
	id, _ := strconv.Atoi(bp.Number)
	r := dap.Breakpoint{
		Id:       id,
		Verified: bp.Pending == "" && (bp.Address != "" || len(bp.Locations) > 0 || bp.Expression != ""),
		Line:     bp.Line,
		Source:   source(bp.File, bp.Fullname),
	}
	if r.Line == 0 && len(bp.Locations) > 0 {
		r.Line = bp.Locations[0].Line
		r.Source = source(bp.Locations[0].File, bp.Locations[0].Fullname)
	}
	if bp.Pending != "" {
		r.Message = "pending on " + bp.Pending
	}
	return r
}

// Arguments translates arguments or locals. GDB values of simple
// variables have no children.
func (t *Translator) Arguments(args []info.Arg) []dap.Variable {
	r := make([]dap.Variable, 0, len(args))
	for _, a := range args {
		r = append(r, dap.Variable{Name: a.Name, Value: a.Value, Type: a.Type, EvaluateName: a.Name})
	}
	return r
}

// Varobjs translates variable objects. Varobjs with children get a
// variables reference that Children resolves to the varobj name, to be
// passed to -var-list-children.
func (t *Translator) Varobjs(vs []info.Varobj) []dap.Variable {
	r := make([]dap.Variable, 0, len(vs))
	for _, v := range vs {
		dv := dap.Variable{Name: v.Expression, Value: v.Value, Type: v.Type, EvaluateName: v.Expression}
		if dv.Name == "" {
			dv.Name = v.Name
		}
		if v.NumChild > 0 || v.HasMore {
			dv.VariablesReference = t.variableHandles.create(v.Name)
			if v.DisplayHint == "array" {
				dv.IndexedVariables = v.NumChild
			} else {
				dv.NamedVariables = v.NumChild
			}
		}
		r = append(r, dv)
	}
	return r
}

// Children resolves a variables reference returned by Varobjs.
func (t *Translator) Children(ref int) (string, bool) {
	return t.variableHandles.get(ref)
}

// Registers pairs the values of -data-list-register-values with the names
// of -data-list-register-names.
func (t *Translator) Registers(names []string, values []info.RegisterValue) []dap.Variable {
	r := make([]dap.Variable, 0, len(values))
	for _, v := range values {
		name := "r" + strconv.Itoa(v.Number)
		if v.Number >= 0 && v.Number < len(names) && names[v.Number] != "" {
			name = names[v.Number]
		}
		r = append(r, dap.Variable{Name: name, Value: v.Value, EvaluateName: "$" + name})
	}
	return r
}

// ReadMemory builds the body of a readMemory response. Data holds the
// bytes read before the first unreadable one, every byte from there on is
// counted as unreadable.
func (t *Translator) ReadMemory(addr *big.Int, mem []info.MemoryByte) dap.ReadMemoryResponseBody {
	n := 0
	for n < len(mem) && mem[n].Valid() {
		n++
	}
	data := make([]byte, n)
	for i := range data {
		data[i] = mem[i].Value
	}
	r := dap.ReadMemoryResponseBody{
		UnreadableBytes: len(mem) - n,
		Data:            base64.StdEncoding.EncodeToString(data),
	}
	if addr != nil {
		r.Address = "0x" + addr.Text(16)
	}
	return r
}

// Disassemble translates the result of -data-disassemble. Source
// locations are only known for mixed mode disassembly.
func (t *Translator) Disassemble(r *info.DataDisassembleInfo) []dap.DisassembledInstruction {
	var out []dap.DisassembledInstruction
	add := func(ins info.Instruction, src *dap.Source, line int) {
		di := dap.DisassembledInstruction{
			Address:          ins.Address,
			InstructionBytes: strings.ReplaceAll(ins.Opcodes, " ", ""),
			Instruction:      ins.Inst,
			Location:         src,
			Line:             line,
		}
		if ins.FuncName != "" {
			di.Symbol = fmt.Sprintf("%s+%d", ins.FuncName, ins.Offset)
		}
		out = append(out, di)
	}
	if r.Mixed {
		for _, l := range r.Lines {
			src := source(l.File, l.Fullname)
			for _, ins := range l.Instructions {
				add(ins, src, l.Line)
			}
		}
		return out
	}
	for _, ins := range r.Instructions {
		add(ins, nil, 0)
	}
	return out
}
