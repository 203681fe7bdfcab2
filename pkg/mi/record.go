package mi

import (
	"strconv"
	"strings"

	"github.com/go-delve/gdbmi/pkg/mi/cstring"
)

// NoToken is the token of a record that did not carry one.
const NoToken = -1

// Kind is the kind of a line of MI output.
type Kind uint8

const (
	KindResult Kind = iota + 1
	KindAsync
	KindStream
	KindPrompt
)

func (k Kind) String() string {
	switch k {
	case KindResult:
		return "result"
	case KindAsync:
		return "async"
	case KindStream:
		return "stream"
	case KindPrompt:
		return "prompt"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Record is a single parsed line of MI output.
type Record interface {
	Kind() Kind
	// Token returns the correlation token or NoToken.
	Token() int
	String() string
}

// OOBRecord is an out of band record, either an *AsyncRecord or a
// *StreamRecord.
type OOBRecord interface {
	Record
	oob()
}

// ResultClass is the class of a result record.
type ResultClass uint8

const (
	ClassDone ResultClass = iota + 1
	ClassRunning
	ClassConnected
	ClassError
	ClassExit
)

var resultClassNames = map[string]ResultClass{
	"done":      ClassDone,
	"running":   ClassRunning,
	"connected": ClassConnected,
	"error":     ClassError,
	"exit":      ClassExit,
}

// ParseResultClass returns the class called name.
func ParseResultClass(name string) (ResultClass, bool) {
	c, ok := resultClassNames[name]
	return c, ok
}

func (c ResultClass) String() string {
	switch c {
	case ClassDone:
		return "done"
	case ClassRunning:
		return "running"
	case ClassConnected:
		return "connected"
	case ClassError:
		return "error"
	case ClassExit:
		return "exit"
	}
	return "ResultClass(" + strconv.Itoa(int(c)) + ")"
}

// ResultRecord is the record that completes a command.
type ResultRecord struct {
	token   int
	class   ResultClass
	results *Tuple
}

// NewResultRecord returns a result record. A nil results tuple is replaced
// by an empty one.
func NewResultRecord(token int, class ResultClass, results *Tuple) *ResultRecord {
	if results == nil {
		results = NewTuple(nil, nil)
	}
	return &ResultRecord{token: token, class: class, results: results}
}

func (*ResultRecord) Kind() Kind { return KindResult }

func (rr *ResultRecord) Token() int {
	if rr == nil {
		return NoToken
	}
	return rr.token
}

// Class returns the result class, zero for a nil record.
func (rr *ResultRecord) Class() ResultClass {
	if rr == nil {
		return 0
	}
	return rr.class
}

// Results returns the results in wire order.
func (rr *ResultRecord) Results() []*Result {
	if rr == nil {
		return nil
	}
	return rr.results.Results()
}

// Fields returns the results as a tuple for lookups by name.
func (rr *ResultRecord) Fields() *Tuple {
	if rr == nil {
		return nil
	}
	return rr.results
}

// Field is a shortcut for Fields().Field(name).
func (rr *ResultRecord) Field(name string) Value {
	return rr.Fields().Field(name)
}

// ErrorMessage returns the msg field of an error record.
func (rr *ResultRecord) ErrorMessage() string {
	if rr.Class() != ClassError {
		return ""
	}
	c, _ := rr.Field("msg").(*Const)
	return c.Text()
}

// ErrorCode returns the code field of an error record, for example
// "undefined-command".
func (rr *ResultRecord) ErrorCode() string {
	if rr.Class() != ClassError {
		return ""
	}
	c, _ := rr.Field("code").(*Const)
	return c.Text()
}

func (rr *ResultRecord) String() string {
	if rr == nil {
		return ""
	}
	var buf strings.Builder
	writeToken(&buf, rr.token)
	buf.WriteByte('^')
	buf.WriteString(rr.class.String())
	writeResults(&buf, rr.results)
	return buf.String()
}

// AsyncKind distinguishes the three kinds of async records.
type AsyncKind byte

const (
	AsyncExec   AsyncKind = '*'
	AsyncStatus AsyncKind = '+'
	AsyncNotify AsyncKind = '='
)

func (k AsyncKind) String() string {
	switch k {
	case AsyncExec:
		return "exec"
	case AsyncStatus:
		return "status"
	case AsyncNotify:
		return "notify"
	}
	return "AsyncKind(" + strconv.Itoa(int(k)) + ")"
}

// AsyncRecord is an exec, status or notify record, for example
// '*stopped,reason="breakpoint-hit",...'.
type AsyncRecord struct {
	kind    AsyncKind
	token   int
	class   string
	results *Tuple
}

// NewAsyncRecord returns an async record.
func NewAsyncRecord(kind AsyncKind, token int, class string, results *Tuple) *AsyncRecord {
	if results == nil {
		results = NewTuple(nil, nil)
	}
	return &AsyncRecord{kind: kind, token: token, class: class, results: results}
}

func (*AsyncRecord) Kind() Kind { return KindAsync }
func (*AsyncRecord) oob()       {}

func (ar *AsyncRecord) Token() int {
	if ar == nil {
		return NoToken
	}
	return ar.token
}

// AsyncKind returns whether this is an exec, status or notify record.
func (ar *AsyncRecord) AsyncKind() AsyncKind {
	if ar == nil {
		return 0
	}
	return ar.kind
}

// Class returns the async class, for example "stopped".
func (ar *AsyncRecord) Class() string {
	if ar == nil {
		return ""
	}
	return ar.class
}

func (ar *AsyncRecord) Results() []*Result {
	if ar == nil {
		return nil
	}
	return ar.results.Results()
}

func (ar *AsyncRecord) Fields() *Tuple {
	if ar == nil {
		return nil
	}
	return ar.results
}

func (ar *AsyncRecord) Field(name string) Value {
	return ar.Fields().Field(name)
}

func (ar *AsyncRecord) String() string {
	if ar == nil {
		return ""
	}
	var buf strings.Builder
	writeToken(&buf, ar.token)
	buf.WriteByte(byte(ar.kind))
	buf.WriteString(ar.class)
	writeResults(&buf, ar.results)
	return buf.String()
}

// StreamKind distinguishes the three kinds of stream records.
type StreamKind byte

const (
	StreamConsole StreamKind = '~'
	StreamTarget  StreamKind = '@'
	StreamLog     StreamKind = '&'
)

func (k StreamKind) String() string {
	switch k {
	case StreamConsole:
		return "console"
	case StreamTarget:
		return "target"
	case StreamLog:
		return "log"
	}
	return "StreamKind(" + strconv.Itoa(int(k)) + ")"
}

// StreamRecord is console, target or log output.
type StreamRecord struct {
	kind      StreamKind
	token     int
	raw       string
	synthetic bool
}

// NewStreamRecord returns a stream record carrying the raw C-string cstr.
func NewStreamRecord(kind StreamKind, token int, cstr string) *StreamRecord {
	return &StreamRecord{kind: kind, token: token, raw: cstr}
}

// newSyntheticRecord wraps a line that could not be classified into a
// target stream record.
func newSyntheticRecord(line string) *StreamRecord {
	return &StreamRecord{
		kind:      StreamTarget,
		token:     NoToken,
		raw:       cstring.Escape(line+"\n", true),
		synthetic: true,
	}
}

func (*StreamRecord) Kind() Kind { return KindStream }
func (*StreamRecord) oob()       {}

func (sr *StreamRecord) Token() int {
	if sr == nil {
		return NoToken
	}
	return sr.token
}

// StreamKind returns whether this is console, target or log output.
func (sr *StreamRecord) StreamKind() StreamKind {
	if sr == nil {
		return 0
	}
	return sr.kind
}

// CString returns the payload as it appeared on the wire.
func (sr *StreamRecord) CString() string {
	if sr == nil {
		return ""
	}
	return sr.raw
}

// Text returns the payload with every escape resolved.
func (sr *StreamRecord) Text() string {
	if sr == nil {
		return ""
	}
	return cstring.Translate(sr.raw, false)
}

// Synthetic returns true if the record was made up for a line that was
// not valid MI.
func (sr *StreamRecord) Synthetic() bool {
	return sr != nil && sr.synthetic
}

func (sr *StreamRecord) String() string {
	if sr == nil {
		return ""
	}
	var buf strings.Builder
	writeToken(&buf, sr.token)
	buf.WriteByte(byte(sr.kind))
	buf.WriteByte('"')
	buf.WriteString(sr.raw)
	buf.WriteByte('"')
	return buf.String()
}

// PromptRecord is the "(gdb)" line that terminates a batch of output.
type PromptRecord struct{}

func (*PromptRecord) Kind() Kind     { return KindPrompt }
func (*PromptRecord) Token() int     { return NoToken }
func (*PromptRecord) String() string { return prompt }

func writeToken(buf *strings.Builder, token int) {
	if token >= 0 {
		buf.WriteString(strconv.Itoa(token))
	}
}

func writeResults(buf *strings.Builder, t *Tuple) {
	for _, r := range t.Results() {
		buf.WriteByte(',')
		buf.WriteString(r.String())
	}
	for _, v := range t.Values() {
		buf.WriteByte(',')
		buf.WriteString(v.String())
	}
}
