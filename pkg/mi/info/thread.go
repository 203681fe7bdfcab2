package info

import (
	"regexp"

	"github.com/go-delve/gdbmi/pkg/mi"
)

// Thread is a thread of the inferior.
type Thread struct {
	ID       string
	TargetID string
	// OSID and ParentID are recovered from TargetID, see ParseOSID.
	OSID     string
	ParentID string
	Name     string
	State    string
	Core     string
	Details  string
	Frame    *Frame
}

var (
	lwpRe     = regexp.MustCompile(`Thread 0x[0-9a-fA-F]+ \(LWP (\d+)\)`)
	dottedRe  = regexp.MustCompile(`Thread (\d+)\.(\d+)`)
	processRe = regexp.MustCompile(`process (\d+)`)
	bareLWPRe = regexp.MustCompile(`LWP (\d+)`)
	threadRe  = regexp.MustCompile(`^Thread (\d+)$`)
)

// ParseOSID extracts the operating system thread id, and the process id
// when the target id carries it, from a target id. Recognized forms are
//
//	Thread 0xb7c8ab90 (LWP 7010)
//	Thread 162.32942
//	process 12345
//	LWP 7010
//	Thread 3
func ParseOSID(targetID string) (osID, parentID string) {
	if m := lwpRe.FindStringSubmatch(targetID); m != nil {
		return m[1], ""
	}
	if m := dottedRe.FindStringSubmatch(targetID); m != nil {
		return m[2], m[1]
	}
	if m := processRe.FindStringSubmatch(targetID); m != nil {
		return m[1], ""
	}
	if m := bareLWPRe.FindStringSubmatch(targetID); m != nil {
		return m[1], ""
	}
	if m := threadRe.FindStringSubmatch(targetID); m != nil {
		return m[1], ""
	}
	return "", ""
}

func (i *Info) thread(t *mi.Tuple) Thread {
	th := Thread{
		ID:       i.str(t, "id"),
		TargetID: i.str(t, "target-id"),
		Name:     i.str(t, "name"),
		State:    i.str(t, "state"),
		Core:     i.str(t, "core"),
		Details:  i.str(t, "details"),
	}
	th.OSID, th.ParentID = ParseOSID(th.TargetID)
	if f := i.tup(t, "frame"); f != nil {
		fr := i.frame(f)
		th.Frame = &fr
	}
	return th
}

func (i *Info) threads(g getter, name string) []Thread {
	ts, ok := i.tuples(g, name)
	if !ok {
		return nil
	}
	r := make([]Thread, 0, len(ts))
	for _, t := range ts {
		r = append(r, i.thread(t))
	}
	return r
}

// ThreadInfoInfo is the result of -thread-info.
type ThreadInfoInfo struct {
	Info `yaml:"-"`

	Threads         []Thread
	CurrentThreadID string
}

// NewThreadInfoInfo decodes
//
//	^done,threads=[{id="1",target-id="Thread 0x7ffff7d8a740 (LWP 1234)",frame={...},state="stopped"}],current-thread-id="1"
func NewThreadInfoInfo(out *mi.Output) *ThreadInfoInfo {
	r := &ThreadInfoInfo{Info: newInfo(out)}
	r.decode("thread-info", func(rr *mi.ResultRecord) {
		r.Threads = r.threads(rr, "threads")
		r.CurrentThreadID = r.str(rr, "current-thread-id")
	})
	return r
}

// ThreadListIdsInfo is the result of -thread-list-ids.
type ThreadListIdsInfo struct {
	Info `yaml:"-"`

	IDs             []string
	CurrentThreadID string
	NumberOfThreads int
}

// NewThreadListIdsInfo decodes
//
//	^done,thread-ids={thread-id="3",thread-id="2",thread-id="1"},current-thread-id="1",number-of-threads="3"
func NewThreadListIdsInfo(out *mi.Output) *ThreadListIdsInfo {
	r := &ThreadListIdsInfo{Info: newInfo(out)}
	r.decode("thread-list-ids", func(rr *mi.ResultRecord) {
		r.CurrentThreadID = r.str(rr, "current-thread-id")
		r.NumberOfThreads = r.num(rr, "number-of-threads", 0)
		ids := r.agg(rr, "thread-ids")
		if ids == nil {
			return
		}
		r.IDs = []string{}
		for _, v := range items(ids) {
			if c, ok := v.(*mi.Const); ok {
				r.IDs = append(r.IDs, c.Text())
			}
		}
	})
	return r
}

// ThreadSelectInfo is the result of -thread-select.
type ThreadSelectInfo struct {
	Info `yaml:"-"`

	NewThreadID string
	Frame       *Frame
}

// NewThreadSelectInfo decodes ^done,new-thread-id="2",frame={...}.
func NewThreadSelectInfo(out *mi.Output) *ThreadSelectInfo {
	r := &ThreadSelectInfo{Info: newInfo(out)}
	r.decode("thread-select", func(rr *mi.ResultRecord) {
		r.NewThreadID = r.str(rr, "new-thread-id")
		if t := r.tup(rr, "frame"); t != nil {
			f := r.frame(t)
			r.Frame = &f
		}
	})
	return r
}

var currentThreadRe = regexp.MustCompile(`\[Current thread is (\d+)`)

// CLIThreadInfo is the console output of the CLI thread command:
//
//	[Current thread is 1 (Thread 0x7ffff7d8a740 (LWP 1234))]
type CLIThreadInfo struct {
	Info `yaml:"-"`

	CurrentThreadID string
}

// NewCLIThreadInfo decodes the console output of the thread command.
func NewCLIThreadInfo(out *mi.Output) *CLIThreadInfo {
	r := &CLIThreadInfo{Info: newInfo(out)}
	r.decodeText("thread", func(text string) {
		if m := currentThreadRe.FindStringSubmatch(text); m != nil {
			r.CurrentThreadID = m[1]
		}
	})
	return r
}
