// Package info decodes the result records of MI commands into typed
// values.
//
// Every decoder follows the same contract: it takes a parsed *mi.Output,
// decodes it immediately and never panics. Decoding only happens when the
// result class is done; for any other class, and for a nil Output, the
// decoded value keeps its zero value. Fields that are missing or malformed
// also keep their zero value and the problem is recorded, see Info.Issues.
//
// Slices are nil when the corresponding field is absent from the output
// and empty, but not nil, when the field is present with no elements.
package info

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/go-delve/gdbmi/pkg/logflags"
	"github.com/go-delve/gdbmi/pkg/mi"
)

// Info is embedded in every decoded result.
type Info struct {
	out  *mi.Output
	errs *multierror.Error
}

func newInfo(out *mi.Output) Info {
	return Info{out: out}
}

// Output returns the decoded output.
func (i *Info) Output() *mi.Output {
	return i.out
}

// ResultRecord returns the result record of the decoded output, or nil.
func (i *Info) ResultRecord() *mi.ResultRecord {
	return i.out.ResultRecord()
}

// Class returns the result class, zero if there was no result record.
func (i *Info) Class() mi.ResultClass {
	return i.out.Class()
}

// Done returns true if the command completed with ^done.
func (i *Info) Done() bool {
	return i.Class() == mi.ClassDone
}

// ErrorMessage returns the message of an ^error record.
func (i *Info) ErrorMessage() string {
	return i.ResultRecord().ErrorMessage()
}

// Issues returns the problems met while decoding, nil if there were none.
func (i *Info) Issues() error {
	return i.errs.ErrorOrNil()
}

func (i *Info) issuef(format string, args ...interface{}) {
	i.errs = multierror.Append(i.errs, fmt.Errorf(format, args...))
}

// decode calls fn with the result record if its class is done.
func (i *Info) decode(what string, fn func(rr *mi.ResultRecord)) {
	rr := i.out.ResultRecord()
	if rr.Class() != mi.ClassDone {
		return
	}
	i.guard(what, func() { fn(rr) })
}

// decodeText calls fn with the console output of a CLI command.
func (i *Info) decodeText(what string, fn func(text string)) {
	if i.out.ResultRecord() != nil && !i.Done() {
		return
	}
	i.guard(what, func() { fn(i.out.StreamText(mi.StreamConsole)) })
}

func (i *Info) guard(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			i.issuef("%s: unexpected output shape: %v", what, r)
		}
		if i.errs != nil {
			logflags.InfoLogger().WithField("decoder", what).Debugf("%v", i.errs)
		}
	}()
	fn()
}

// getter is implemented by *mi.Tuple, *mi.List and the records.
type getter interface {
	Field(name string) mi.Value
}

// str returns the text of the constant called name.
func (i *Info) str(g getter, name string) string {
	switch v := g.Field(name).(type) {
	case nil:
		return ""
	case *mi.Const:
		return v.Text()
	default:
		i.issuef("field %s: expected a constant, got %s", name, v)
		return ""
	}
}

// display returns the display form of the constant called name.
func (i *Info) display(g getter, name string) string {
	switch v := g.Field(name).(type) {
	case nil:
		return ""
	case *mi.Const:
		return v.Display()
	default:
		i.issuef("field %s: expected a constant, got %s", name, v)
		return ""
	}
}

// num returns the integer called name, or def if it is absent or
// malformed. Integers are decimal unless they have the 0x prefix.
func (i *Info) num(g getter, name string, def int) int {
	return i.atoi(name, i.str(g, name), def)
}

func (i *Info) atoi(name, s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	n, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		i.issuef("field %s: %v", name, err)
		return def
	}
	return int(n)
}

// u64 returns the unsigned integer called name, hexadecimal values
// need the 0x prefix.
func (i *Info) u64(g getter, name string) uint64 {
	s := strings.TrimSpace(i.str(g, name))
	if s == "" {
		return 0
	}
	n, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		i.issuef("field %s: %v", name, err)
		return 0
	}
	return n
}

// flag returns the boolean called name, GDB uses y/n, 1/0 and true/false.
func (i *Info) flag(g getter, name string) bool {
	return isTrue(i.str(g, name))
}

func isTrue(s string) bool {
	switch s {
	case "y", "yes", "1", "true", "on":
		return true
	}
	return false
}

// tup returns the tuple called name.
func (i *Info) tup(g getter, name string) *mi.Tuple {
	switch v := g.Field(name).(type) {
	case nil:
		return nil
	case *mi.Tuple:
		return v
	default:
		i.issuef("field %s: expected a tuple, got %s", name, v)
		return nil
	}
}

// agg returns the tuple or list called name.
func (i *Info) agg(g getter, name string) mi.Aggregate {
	switch v := g.Field(name).(type) {
	case nil:
		return nil
	case mi.Aggregate:
		return v
	default:
		i.issuef("field %s: expected a tuple or a list, got %s", name, v)
		return nil
	}
}

// items returns the elements of an aggregate: the values of its results
// followed by its bare values.
func items(a mi.Aggregate) []mi.Value {
	if a == nil {
		return nil
	}
	r := make([]mi.Value, 0, a.Len())
	for _, res := range a.Results() {
		r = append(r, res.Value())
	}
	return append(r, a.Values()...)
}

// tuples returns the tuple elements of the aggregate called name.
func (i *Info) tuples(g getter, name string) ([]*mi.Tuple, bool) {
	a := i.agg(g, name)
	if a == nil {
		return nil, false
	}
	r := []*mi.Tuple{}
	for _, v := range items(a) {
		t, ok := v.(*mi.Tuple)
		if !ok {
			i.issuef("field %s: expected a tuple element, got %s", name, v)
			continue
		}
		r = append(r, t)
	}
	return r, true
}

// strs returns the constant elements of the aggregate called name.
func (i *Info) strs(g getter, name string) []string {
	a := i.agg(g, name)
	if a == nil {
		return nil
	}
	r := []string{}
	for _, v := range items(a) {
		c, ok := v.(*mi.Const)
		if !ok {
			i.issuef("field %s: expected a constant element, got %s", name, v)
			continue
		}
		r = append(r, c.Text())
	}
	return r
}

// ParseAddress parses an address as printed by GDB into an unsigned big
// integer. Addresses are hexadecimal with or without the 0x prefix.
func ParseAddress(s string) (*big.Int, bool) {
	return parseUnsigned(s, 16)
}

// parseWord parses a data word of -data-read-memory, which is hexadecimal
// with the 0x prefix and decimal without it.
func parseWord(s string) (*big.Int, bool) {
	return parseUnsigned(s, 10)
}

// parseUnsigned parses s up to the first blank or '<', in base 16 when it
// has the 0x prefix and in base otherwise.
func parseUnsigned(s string, base int) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t<"); i >= 0 {
		s = s[:i]
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	if s == "" {
		return nil, false
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok || n.Sign() < 0 {
		return nil, false
	}
	return n, true
}
