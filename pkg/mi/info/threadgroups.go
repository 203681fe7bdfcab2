package info

import (
	"regexp"
	"strings"

	"github.com/go-delve/gdbmi/pkg/mi"
)

// ThreadGroup is an inferior, or a process available for attaching.
type ThreadGroup struct {
	ID          string
	Type        string
	PID         string
	Executable  string
	User        string
	Description string
	Cores       []string
	ExitCode    string
	NumChildren int
	// Threads is only filled when GDB was asked for the threads, for
	// example by -list-thread-groups --recurse 1.
	Threads []Thread
}

var (
	groupNameRe    = regexp.MustCompile(`name: (.*?)(, |$)`)
	groupBracketRe = regexp.MustCompile(`^\[(.+?)(/\d+)?\]$`)
)

// Name returns a human readable name for the group. The description is
// free text that depends on the target, the name is taken from, in order:
//
//	name: JIM_TOPIC, type 555481, locked: N, system: N, state: Idle
//	[kworker/0]   (the /0 core suffix is dropped)
//	/usr/bin/program --with arguments   (the first word)
//
// and from the executable when there is no description.
func (g *ThreadGroup) Name() string {
	desc := strings.TrimSpace(g.Description)
	if desc == "" {
		return g.Executable
	}
	if m := groupNameRe.FindStringSubmatch(desc); m != nil {
		return m[1]
	}
	if m := groupBracketRe.FindStringSubmatch(desc); m != nil {
		return m[1]
	}
	return strings.Fields(desc)[0]
}

func (i *Info) threadGroup(t *mi.Tuple) ThreadGroup {
	g := ThreadGroup{
		ID:          i.str(t, "id"),
		Type:        i.str(t, "type"),
		PID:         i.str(t, "pid"),
		Executable:  i.str(t, "executable"),
		User:        i.str(t, "user"),
		Description: i.str(t, "description"),
		Cores:       i.strs(t, "cores"),
		ExitCode:    i.str(t, "exit-code"),
		NumChildren: i.num(t, "num_children", 0),
	}
	if t.Field("threads") != nil {
		g.Threads = i.threads(t, "threads")
	}
	return g
}

// ListThreadGroupsInfo is the result of -list-thread-groups.
type ListThreadGroupsInfo struct {
	Info `yaml:"-"`

	// Groups is set when listing groups, with or without --available.
	Groups []ThreadGroup
	// Threads is set when listing the threads of a single group.
	Threads []Thread
}

// NewListThreadGroupsInfo decodes
//
//	^done,groups=[{id="i1",type="process",pid="123",executable="/bin/a",cores=["1"]}]
//	^done,threads=[{id="1",target-id="Thread 0x... (LWP 123)",...}]
func NewListThreadGroupsInfo(out *mi.Output) *ListThreadGroupsInfo {
	r := &ListThreadGroupsInfo{Info: newInfo(out)}
	r.decode("list-thread-groups", func(rr *mi.ResultRecord) {
		if groups, ok := r.tuples(rr, "groups"); ok {
			r.Groups = make([]ThreadGroup, 0, len(groups))
			for _, t := range groups {
				r.Groups = append(r.Groups, r.threadGroup(t))
			}
		}
		if rr.Field("threads") != nil {
			r.Threads = r.threads(rr, "threads")
		}
	})
	return r
}

// CLIThread is a line of the output of the CLI info threads command.
type CLIThread struct {
	ID       string
	TargetID string
	OSID     string
	ParentID string
	Current  bool
}

var cliThreadRe = regexp.MustCompile(`^(\*)?\s*(\d+)\s+(Thread 0x[0-9a-fA-F]+ \(LWP \d+\)|Thread \d+\.\d+|Thread 0x[0-9a-fA-F]+|Thread \d+|process \d+|LWP \d+)`)

// CLIInfoThreadsInfo is the console output of info threads, for example
//
//	  Id   Target Id                                   Frame
//	* 1    Thread 0x7ffff7d8a740 (LWP 1234) "a.out"    main () at a.c:4
//	  2    Thread 0x7ffff7d89700 (LWP 1235) "a.out"    0x00007ffff7e9a35d in clone ()
//
// or, from older versions and other platforms,
//
//	  Id   Target Id                         Frame
//	* 3 Thread 0x510400 (LWP 100132)  0x0000000806c7489c in ...
//	* 1 process 4242  main () at a.c:4
type CLIInfoThreadsInfo struct {
	Info `yaml:"-"`

	Threads []CLIThread
}

// NewCLIInfoThreadsInfo decodes the console output of info threads.
func NewCLIInfoThreadsInfo(out *mi.Output) *CLIInfoThreadsInfo {
	r := &CLIInfoThreadsInfo{Info: newInfo(out)}
	r.decodeText("info threads", func(text string) {
		r.Threads = ParseCLIThreads(text)
	})
	return r
}

// ParseCLIThreads parses the lines of info threads output.
func ParseCLIThreads(text string) []CLIThread {
	threads := []CLIThread{}
	for _, line := range strings.Split(text, "\n") {
		m := cliThreadRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		th := CLIThread{Current: m[1] == "*", ID: m[2], TargetID: m[3]}
		th.OSID, th.ParentID = ParseOSID(th.TargetID)
		threads = append(threads, th)
	}
	return threads
}
