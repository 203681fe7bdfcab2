package mi

import (
	"strings"
)

// Output is the parse result for one logical unit of MI output.
//
// A command result Output wraps a ResultRecord together with the out of
// band records that preceded it (at most a configured number of them, see
// Assembler). A single record Output wraps one OOBRecord together with the
// stream records that preceded it.
type Output struct {
	result  *ResultRecord
	oob     []OOBRecord
	record  OOBRecord
	streams []*StreamRecord
	prompt  bool
}

// NewResultOutput returns a command result Output.
func NewResultOutput(rr *ResultRecord, preceding []OOBRecord) *Output {
	return &Output{result: rr, oob: preceding}
}

// NewOOBOutput returns a single record Output.
func NewOOBOutput(rec OOBRecord, preceding []*StreamRecord) *Output {
	return &Output{record: rec, streams: preceding}
}

// ResultRecord returns the result record, nil for single record outputs.
func (o *Output) ResultRecord() *ResultRecord {
	if o == nil {
		return nil
	}
	return o.result
}

// Class returns the class of the result record, zero if there is none.
func (o *Output) Class() ResultClass {
	return o.ResultRecord().Class()
}

// Token returns the token of the result record or of the single record.
func (o *Output) Token() int {
	switch {
	case o == nil:
		return NoToken
	case o.result != nil:
		return o.result.Token()
	case o.record != nil:
		return o.record.Token()
	}
	return NoToken
}

// OOBRecords returns the out of band records preceding the result record.
func (o *Output) OOBRecords() []OOBRecord {
	if o == nil {
		return nil
	}
	return o.oob
}

// Record returns the record of a single record Output.
func (o *Output) Record() OOBRecord {
	if o == nil {
		return nil
	}
	return o.record
}

// StreamRecords returns the stream records preceding the record of a single
// record Output.
func (o *Output) StreamRecords() []*StreamRecord {
	if o == nil {
		return nil
	}
	return o.streams
}

// IsPrompt returns true for the Output of a "(gdb)" line.
func (o *Output) IsPrompt() bool {
	return o != nil && o.prompt
}

// StreamText returns the concatenated text of every stream record of the
// given kind carried by o, in order. Console output of CLI commands run
// through -interpreter-exec is collected this way.
func (o *Output) StreamText(kind StreamKind) string {
	if o == nil {
		return ""
	}
	var buf strings.Builder
	add := func(rec Record) {
		if sr, ok := rec.(*StreamRecord); ok && sr.kind == kind {
			buf.WriteString(sr.Text())
		}
	}
	for _, rec := range o.oob {
		add(rec)
	}
	for _, rec := range o.streams {
		add(rec)
	}
	if o.record != nil {
		add(o.record)
	}
	return buf.String()
}

func (o *Output) String() string {
	if o == nil {
		return ""
	}
	if o.prompt {
		return prompt
	}
	var lines []string
	for _, rec := range o.oob {
		lines = append(lines, rec.String())
	}
	for _, rec := range o.streams {
		lines = append(lines, rec.String())
	}
	if o.record != nil {
		lines = append(lines, o.record.String())
	}
	if o.result != nil {
		lines = append(lines, o.result.String())
	}
	return strings.Join(lines, "\n")
}
