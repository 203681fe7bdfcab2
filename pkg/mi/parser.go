package mi

import (
	"strconv"
	"strings"

	"github.com/go-delve/gdbmi/pkg/logflags"
)

const prompt = "(gdb)"

// cursor is a read position over an immutable line. Parsing only moves pos
// forward and never copies the remaining text, which keeps it linear in the
// length of the line.
type cursor struct {
	s   string
	pos int
}

func (c *cursor) eof() bool {
	return c.pos >= len(c.s)
}

// peek returns the current byte, or 0 at the end of the line.
func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.s[c.pos]
}

func (c *cursor) rest() string {
	if c.eof() {
		return ""
	}
	return c.s[c.pos:]
}

// Classify returns the kind of line and its token, without parsing the
// rest of the line. Lines that are not valid MI are KindStream, they are
// turned into target stream records by ParseRecord.
func Classify(line string) (Kind, int) {
	line = trimLine(line)
	if isPrompt(line) {
		return KindPrompt, NoToken
	}
	c := &cursor{s: line}
	token := parseToken(c)
	switch c.peek() {
	case '^':
		if _, ok := ParseResultClass(className(c.s[c.pos+1:])); ok {
			return KindResult, token
		}
	case '*', '+', '=':
		return KindAsync, token
	case '~', '@', '&':
		if c.pos+1 < len(c.s) && c.s[c.pos+1] == '"' {
			return KindStream, token
		}
	}
	return KindStream, NoToken
}

// ParseRecord parses one line of MI output. It never fails, a line that
// can not be classified is returned as a target stream record whose text is
// the line followed by a newline.
func ParseRecord(line string) Record {
	line = trimLine(line)
	if isPrompt(line) {
		return &PromptRecord{}
	}
	c := &cursor{s: line}
	token := parseToken(c)
	switch kind := c.peek(); kind {
	case '^':
		c.pos += 2
		name := className(c.rest())
		class, ok := ParseResultClass(name)
		if !ok {
			break
		}
		c.pos += len(name)
		return NewResultRecord(token, class, parseResults(c))

	case '*', '+', '=':
		c.pos += 2
		class := className(c.rest())
		c.pos += len(class)
		return NewAsyncRecord(AsyncKind(kind), token, class, parseResults(c))

	case '~', '@', '&':
		if c.pos+1 >= len(c.s) || c.s[c.pos+1] != '"' {
			break
		}
		c.pos += 2
		return NewStreamRecord(StreamKind(kind), token, parseCString(c))
	}
	logflags.ParserLogger().Debugf("unrecognized MI output %q", line)
	return newSyntheticRecord(line)
}

// Parse parses a single line into an Output. Result records produce a
// command result Output, async and stream records a single record Output,
// both without any preceding records; use an Assembler to collect them.
func Parse(line string) *Output {
	switch rec := ParseRecord(line).(type) {
	case *ResultRecord:
		return NewResultOutput(rec, nil)
	case OOBRecord:
		return NewOOBOutput(rec, nil)
	default:
		return &Output{prompt: true}
	}
}

// ParseValue parses a standalone value such as `{a="1",b=["x"]}`. It
// returns nil if text does not start with a value.
func ParseValue(text string) Value {
	return parseValue(&cursor{s: strings.TrimSpace(text)})
}

// isPrompt accepts "(gdb)" with or without the trailing space GDB prints.
func isPrompt(line string) bool {
	return strings.TrimSpace(line) == prompt
}

func trimLine(line string) string {
	return strings.TrimRight(line, "\r\n")
}

// parseToken consumes the leading digits of the line.
func parseToken(c *cursor) int {
	start := c.pos
	for !c.eof() && isDigit(c.peek()) {
		c.pos++
	}
	if start == c.pos {
		return NoToken
	}
	token, err := strconv.Atoi(c.s[start:c.pos])
	if err != nil {
		return NoToken
	}
	return token
}

// className returns the class label at the start of s, everything up to
// the first comma.
func className(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[:i]
	}
	return s
}

// parseResults parses the comma separated results following the class of
// a result or async record.
func parseResults(c *cursor) *Tuple {
	results, values := parseElements(c, 0)
	return NewTuple(results, values)
}

// parseElements parses results and values up to the close byte, or up to
// the end of the line when close is 0. Stray commas are skipped.
func parseElements(c *cursor, close byte) ([]*Result, []Value) {
	var results []*Result
	var values []Value
	for !c.eof() {
		ch := c.peek()
		if ch == ',' {
			c.pos++
			continue
		}
		if close != 0 && ch == close {
			c.pos++
			break
		}
		if isResultStart(c) {
			results = append(results, parseResult(c))
			continue
		}
		if v := parseValue(c); v != nil {
			values = append(values, v)
			continue
		}
		results = append(results, fallbackResult(c))
	}
	return results, values
}

// isResultStart returns true if the cursor is at an identifier followed
// by '=' before any structural delimiter.
func isResultStart(c *cursor) bool {
	if !isLetter(c.peek()) {
		return false
	}
	for i := c.pos; i < len(c.s); i++ {
		switch c.s[i] {
		case '=':
			return true
		case ',', '{', '}', '[', ']', '"':
			return false
		}
	}
	return false
}

// parseResult parses name=value, the cursor must be at a result start.
func parseResult(c *cursor) *Result {
	eq := strings.IndexByte(c.rest(), '=')
	name := c.s[c.pos : c.pos+eq]
	c.pos += eq + 1
	v := parseValue(c)
	if v == nil {
		v = NewConst(bareWord(c))
	}
	return NewResult(name, v)
}

// fallbackResult consumes the rest of the line into a result named after
// it with an empty value.
func fallbackResult(c *cursor) *Result {
	name := c.rest()
	c.pos = len(c.s)
	return NewResult(name, NewConst(""))
}

// bareWord consumes an unquoted value, which some MI implementations emit
// in place of a C-string.
func bareWord(c *cursor) string {
	start := c.pos
	for !c.eof() {
		switch c.peek() {
		case ',', '}', ']':
			return c.s[start:c.pos]
		}
		c.pos++
	}
	return c.s[start:c.pos]
}

// parseValue parses a const, tuple or list. It returns nil without moving
// the cursor if none starts here.
func parseValue(c *cursor) Value {
	switch c.peek() {
	case '"':
		c.pos++
		return NewConst(parseCString(c))
	case '{':
		c.pos++
		return NewTuple(parseElements(c, '}'))
	case '[':
		c.pos++
		return NewList(parseElements(c, ']'))
	}
	return nil
}

// parseCString consumes a C-string up to its closing quote, the cursor
// must be just after the opening quote. An unterminated string takes the
// rest of the line.
func parseCString(c *cursor) string {
	start := c.pos
	for !c.eof() {
		switch c.peek() {
		case '\\':
			c.pos += 2
			if c.pos > len(c.s) {
				c.pos = len(c.s)
			}
			continue
		case '"':
			s := c.s[start:c.pos]
			c.pos++
			return s
		}
		c.pos++
	}
	return c.s[start:]
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}
