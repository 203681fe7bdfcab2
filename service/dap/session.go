package dap

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/go-delve/gdbmi/pkg/logflags"
	"github.com/go-delve/gdbmi/pkg/mi"
	"github.com/google/go-dap"
)

// Session reads MI output line by line and sends the DAP events it
// translates to a client. It is not safe for concurrent use.
type Session struct {
	// conn is where DAP messages are written.
	conn io.Writer
	// asm groups the lines read into outputs.
	asm *mi.Assembler
	// tr translates outputs into messages.
	tr *Translator
	// log is used for structured logging.
	log logflags.Logger
}

// NewSession returns a session writing to conn. The assembler settings
// come from cfg.
func NewSession(conn io.Writer, cfg mi.AssemblerConfig) *Session {
	return &Session{
		conn: conn,
		asm:  mi.NewAssembler(cfg),
		tr:   NewTranslator(),
		log:  logflags.DAPLogger(),
	}
}

// Translator returns the translator used by s.
func (s *Session) Translator() *Translator {
	return s.tr
}

// Feed processes one line of MI output.
func (s *Session) Feed(line string) error {
	out := s.asm.Feed(line)
	if out == nil {
		return nil
	}
	var msgs []dap.Message
	if rr := out.ResultRecord(); rr != nil {
		msgs = s.tr.Result(rr)
	} else {
		msgs = s.tr.Record(out.Record())
	}
	for _, msg := range msgs {
		if err := s.send(msg); err != nil {
			return err
		}
	}
	return nil
}

// Run feeds every line read from r until EOF.
func (s *Session) Run(r io.Reader) error {
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scan.Scan() {
		if err := s.Feed(scan.Text()); err != nil {
			return err
		}
	}
	if pending := s.asm.Pending(); len(pending) > 0 {
		s.log.Debugf("%d records left without a result record", len(pending))
	}
	return scan.Err()
}

func (s *Session) send(message dap.Message) error {
	jsonmsg, _ := json.Marshal(message)
	s.log.Debug("[-> to client]", string(jsonmsg))
	return dap.WriteProtocolMessage(s.conn, message)
}
