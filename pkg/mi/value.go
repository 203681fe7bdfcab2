package mi

import (
	"strings"
	"sync"

	"github.com/go-delve/gdbmi/pkg/mi/cstring"
)

// Value is a node of the MI value grammar. It is implemented by *Const,
// *Tuple and *List; consumers are expected to type switch over them.
//
// String returns MI text that parses back to an equivalent Value.
type Value interface {
	String() string
	value()
}

// Const is a quoted C-string constant.
type Const struct {
	raw string
}

// NewConst returns a constant with the given raw C-string contents,
// escape sequences intact.
func NewConst(raw string) *Const {
	return &Const{raw: raw}
}

func (*Const) value() {}

// CString returns the contents of the constant exactly as they appeared on
// the wire, without the surrounding quotes.
func (c *Const) CString() string {
	if c == nil {
		return ""
	}
	return c.raw
}

// Display returns the contents of the constant with escapes resolved and
// non printable characters escaped again, suitable to be shown to a user.
func (c *Const) Display() string {
	if c == nil {
		return ""
	}
	return cstring.Translate(c.raw, true)
}

// Text returns the contents of the constant with every escape resolved.
func (c *Const) Text() string {
	if c == nil {
		return ""
	}
	return cstring.Translate(c.raw, false)
}

func (c *Const) String() string {
	return `"` + c.CString() + `"`
}

// Result is a name=value binding.
type Result struct {
	name  string
	value Value
}

// NewResult returns a new binding of v to name.
func NewResult(name string, v Value) *Result {
	return &Result{name: name, value: v}
}

// Name returns the name of the binding.
func (r *Result) Name() string {
	if r == nil {
		return ""
	}
	return r.name
}

// Value returns the bound value.
func (r *Result) Value() Value {
	if r == nil {
		return nil
	}
	return r.value
}

func (r *Result) String() string {
	if r == nil {
		return ""
	}
	if r.value == nil {
		return r.name
	}
	return r.name + "=" + r.value.String()
}

// fields holds the contents of a tuple or a list. Both may contain named
// results and bare values, GDB is not consistent about which one it uses.
type fields struct {
	results []*Result
	values  []Value

	indexOnce sync.Once
	index     map[string]Value
}

// field returns the value bound to name. When a name is repeated the last
// binding wins.
func (f *fields) field(name string) Value {
	f.indexOnce.Do(func() {
		f.index = make(map[string]Value, len(f.results))
		for _, r := range f.results {
			f.index[r.name] = r.value
		}
	})
	return f.index[name]
}

func (f *fields) write(buf *strings.Builder, open, close byte) {
	buf.WriteByte(open)
	n := 0
	for _, r := range f.results {
		if n > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(r.String())
		n++
	}
	for _, v := range f.values {
		if n > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(v.String())
		n++
	}
	buf.WriteByte(close)
}

// Aggregate is implemented by *Tuple and *List.
type Aggregate interface {
	Value
	Results() []*Result
	Values() []Value
	Field(name string) Value
	Len() int
}

// Tuple is a '{...}' aggregate.
type Tuple struct {
	f fields
}

// NewTuple returns a tuple holding results followed by values.
func NewTuple(results []*Result, values []Value) *Tuple {
	return &Tuple{fields{results: results, values: values}}
}

func (*Tuple) value() {}

// Results returns the named results in wire order.
func (t *Tuple) Results() []*Result {
	if t == nil {
		return nil
	}
	return t.f.results
}

// Values returns the bare values in wire order.
func (t *Tuple) Values() []Value {
	if t == nil {
		return nil
	}
	return t.f.values
}

// Len returns the total number of elements.
func (t *Tuple) Len() int {
	if t == nil {
		return 0
	}
	return len(t.f.results) + len(t.f.values)
}

// Field returns the value of the last result called name, or nil.
func (t *Tuple) Field(name string) Value {
	if t == nil {
		return nil
	}
	return t.f.field(name)
}

func (t *Tuple) String() string {
	if t == nil {
		return "{}"
	}
	var buf strings.Builder
	t.f.write(&buf, '{', '}')
	return buf.String()
}

// List is a '[...]' aggregate.
type List struct {
	f fields
}

// NewList returns a list holding results followed by values.
func NewList(results []*Result, values []Value) *List {
	return &List{fields{results: results, values: values}}
}

func (*List) value() {}

// Results returns the named results in wire order.
func (l *List) Results() []*Result {
	if l == nil {
		return nil
	}
	return l.f.results
}

// Values returns the bare values in wire order.
func (l *List) Values() []Value {
	if l == nil {
		return nil
	}
	return l.f.values
}

// Len returns the total number of elements.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.f.results) + len(l.f.values)
}

// Field returns the value of the last result called name, or nil.
func (l *List) Field(name string) Value {
	if l == nil {
		return nil
	}
	return l.f.field(name)
}

func (l *List) String() string {
	if l == nil {
		return "[]"
	}
	var buf strings.Builder
	l.f.write(&buf, '[', ']')
	return buf.String()
}
