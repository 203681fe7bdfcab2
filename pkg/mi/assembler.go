package mi

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/go-delve/gdbmi/pkg/logflags"
)

// DefaultWindow is the default number of records kept in front of a
// result record or an async record.
const DefaultWindow = 20

// AssemblerConfig configures an Assembler.
type AssemblerConfig struct {
	// OOBWindow is the maximum number of out of band records attached to a
	// command result Output. Zero means DefaultWindow.
	OOBWindow int
	// StreamWindow is the maximum number of stream records attached to a
	// single record Output. Zero means DefaultWindow.
	StreamWindow int
	// CacheSize enables a cache of parsed records of the given size.
	// Repeated lines, for example prompts and "*running" notifications,
	// are then parsed once.
	CacheSize int
}

// Assembler groups the records of a stream of MI lines into Outputs.
// An Assembler holds the state of one stream and must not be used
// concurrently.
type Assembler struct {
	oobWindow    int
	streamWindow int

	oob     []OOBRecord
	streams []*StreamRecord

	cache *lru.Cache
	log   logflags.Logger
}

// NewAssembler returns a new Assembler.
func NewAssembler(cfg AssemblerConfig) *Assembler {
	a := &Assembler{
		oobWindow:    cfg.OOBWindow,
		streamWindow: cfg.StreamWindow,
		log:          logflags.ParserLogger(),
	}
	if a.oobWindow <= 0 {
		a.oobWindow = DefaultWindow
	}
	if a.streamWindow <= 0 {
		a.streamWindow = DefaultWindow
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New(cfg.CacheSize)
		if err != nil {
			a.log.Errorf("could not create parse cache: %v", err)
		} else {
			a.cache = cache
		}
	}
	return a
}

// Feed parses one line and returns the corresponding Output.
//
// A result record is returned together with the out of band records
// received since the previous result record, and resets that window. An
// async or stream record is returned together with the stream records that
// preceded it. Prompt lines return a prompt Output. Empty lines return nil.
func (a *Assembler) Feed(line string) *Output {
	line = trimLine(line)
	if line == "" {
		return nil
	}
	switch rec := a.parse(line).(type) {
	case *ResultRecord:
		out := NewResultOutput(rec, a.oob)
		a.oob = nil
		return out
	case *StreamRecord:
		out := NewOOBOutput(rec, a.streamsSnapshot())
		a.pushOOB(rec)
		a.streams = push(a.streams, rec, a.streamWindow)
		return out
	case *AsyncRecord:
		out := NewOOBOutput(rec, a.streamsSnapshot())
		a.pushOOB(rec)
		return out
	default:
		return &Output{prompt: true}
	}
}

// Pending returns a copy of the out of band records that will be attached
// to the next result record.
func (a *Assembler) Pending() []OOBRecord {
	if len(a.oob) == 0 {
		return nil
	}
	r := make([]OOBRecord, len(a.oob))
	copy(r, a.oob)
	return r
}

// Reset discards the accumulated records.
func (a *Assembler) Reset() {
	a.oob = nil
	a.streams = nil
}

func (a *Assembler) parse(line string) Record {
	if a.cache == nil {
		return ParseRecord(line)
	}
	if rec, ok := a.cache.Get(line); ok {
		return rec.(Record)
	}
	rec := ParseRecord(line)
	a.cache.Add(line, rec)
	return rec
}

func (a *Assembler) pushOOB(rec OOBRecord) {
	if len(a.oob) >= a.oobWindow {
		n := copy(a.oob, a.oob[len(a.oob)-a.oobWindow+1:])
		a.oob = a.oob[:n]
	}
	a.oob = append(a.oob, rec)
}

// streamsSnapshot returns a copy of the stream window, since the window
// keeps changing after it is handed out.
func (a *Assembler) streamsSnapshot() []*StreamRecord {
	if len(a.streams) == 0 {
		return nil
	}
	r := make([]*StreamRecord, len(a.streams))
	copy(r, a.streams)
	return r
}

func push(window []*StreamRecord, rec *StreamRecord, max int) []*StreamRecord {
	if len(window) >= max {
		n := copy(window, window[len(window)-max+1:])
		window = window[:n]
	}
	return append(window, rec)
}
