// Package terminal implements functions for responding to user
// input and dispatching to appropriate backend commands.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cosiner/argv"
	"gopkg.in/yaml.v2"

	"github.com/go-delve/gdbmi/pkg/mi"
	"github.com/go-delve/gdbmi/pkg/mi/cstring"
	"github.com/go-delve/gdbmi/pkg/mi/event"
	"github.com/go-delve/gdbmi/pkg/mi/info"
)

type callContext struct {
	// Output is the output the command operates on, the last command
	// result fed to the terminal.
	Output *mi.Output
}

type cmdfunc func(t *Term, ctx callContext, args string) error

type command struct {
	aliases        []string
	builtinAliases []string
	group          commandGroup
	helpMsg        string
	cmdFn          cmdfunc
}

// Returns true if the command string matches one of the aliases for this command
func (c command) match(cmdstr string) bool {
	for _, v := range c.aliases {
		if v == cmdstr {
			return true
		}
	}
	return false
}

// Commands represents the commands of the midecode terminal.
type Commands struct {
	cmds []command
}

// byFirstAlias will sort by the first
// alias of a command.
type byFirstAlias []command

func (a byFirstAlias) Len() int           { return len(a) }
func (a byFirstAlias) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byFirstAlias) Less(i, j int) bool { return a[i].aliases[0] < a[j].aliases[0] }

// MICommands returns a Commands struct with default commands defined.
func MICommands() *Commands {
	c := &Commands{}

	c.cmds = []command{
		{aliases: []string{"help", "h"}, cmdFn: c.help, helpMsg: `Prints the help message.

	help [command]

Type "help" followed by the name of a command for more information about it.`},
		{aliases: []string{"feed", "f"}, group: feedCmds, cmdFn: feed, helpMsg: `Feeds a line of MI output.

	feed <line>

Lines typed at the prompt that look like MI output, for example
	^done,value="1"
	*stopped,reason="exited-normally"
	(gdb)
are fed without the need for this command.`},
		{aliases: []string{"load"}, group: feedCmds, cmdFn: loadCommand, helpMsg: `Feeds every line of a file.

	load [-q] <file>

With -q only the summary of the results is printed.`},
		{aliases: []string{"list", "ls", "l"}, group: feedCmds, cmdFn: listCommand, helpMsg: `Shows a transcript file.

	list <file> [line]

Shows the lines around the specified line, with line numbers, or the first lines of the file.`},
		{aliases: []string{"print", "p"}, group: feedCmds, cmdFn: printCommand, helpMsg: `Prints the last output.

	print [-result]

Prints the last output fed to the terminal as YAML, with -result the last command result with its out of band records.`},
		{aliases: []string{"pending"}, group: feedCmds, cmdFn: pending, helpMsg: `Lists the out of band records that will be attached to the next command result.`},
		{aliases: []string{"reset"}, group: feedCmds, cmdFn: reset, helpMsg: `Discards the pending out of band records.`},
		{aliases: []string{"event", "ev"}, group: feedCmds, cmdFn: eventCommand, helpMsg: `Decodes the last async record.

	event [line]

Decodes the async record given as argument or the last one fed to the terminal.`},
		{aliases: []string{"decode", "d"}, group: decodeCmds, cmdFn: decode, helpMsg: `Decodes the last command result.

	decode [-count <n>] [-word-size <n>] <command>

Command is the MI command that produced the result, for example "break-list" or "-stack-list-frames". CLI commands are accepted too, for example "info sharedlibrary". Count and word size are used by the memory commands.

See "commands" for the list of commands that can be decoded.`},
		{aliases: []string{"commands"}, group: decodeCmds, cmdFn: commandsCommand, helpMsg: `Lists the commands that can be decoded.

	commands [prefix]`},
		{aliases: []string{"value", "v"}, group: textCmds, cmdFn: valueCommand, helpMsg: `Parses an MI value.

	value <text>

Text is a c-string, a tuple or a list, for example {a="1",b=["x","y"]}.`},
		{aliases: []string{"escape"}, group: textCmds, cmdFn: escapeCommand, helpMsg: `Escapes text so that it can be used in a c-string.

	escape [-all] <text>

With -all printable special characters, such as the double quote, are escaped too.`},
		{aliases: []string{"unescape"}, group: textCmds, cmdFn: unescapeCommand, helpMsg: `Resolves the escape sequences of the body of a c-string.

	unescape [-display] <text>

With -display special characters stay escaped.`},
		{aliases: []string{"source"}, group: scriptCmds, cmdFn: c.sourceCommand, helpMsg: `Executes a file containing a list of terminal commands and MI output lines.

	source <path>

If path ends with the .star extension it will be interpreted as a starlark script. See "help starlark" for the builtins available to scripts.

If path is a single '-' character an interactive starlark interpreter will start instead. Type 'exit' to exit.`},
		{aliases: []string{"starlark"}, group: scriptCmds, cmdFn: starlarkHelp, helpMsg: `Lists the builtins available to starlark scripts.`},
		{aliases: []string{"transcript"}, cmdFn: transcript, helpMsg: `Appends command output to a file.

	transcript [-t] [-x] <output file>
	transcript -off

Output of commands is appended to the specified output file. If -t is specified and the output file exists it is truncated. If -x is specified output to stdout is suppressed instead.

Using the -off option disables the transcript.`},
		{aliases: []string{"config"}, cmdFn: configureCmd, helpMsg: `Changes configuration parameters.

	config -list

Show all configuration parameters.

	config -save

Saves the configuration file to disk, overwriting the current configuration file.

	config <parameter> <value>

Changes the value of a configuration parameter.

	config alias <command> <alias>
	config alias <alias>

Defines <alias> as an alias to <command> or removes an alias.`},
		{aliases: []string{"exit", "quit", "q"}, cmdFn: exitCommand, helpMsg: `Exit the terminal.`},
	}

	sort.Sort(byFirstAlias(c.cmds))
	return c
}

// Register adds a command named cmdstr to group. If a command already
// answers to cmdstr its function and help message are replaced instead.
func (c *Commands) Register(cmdstr string, group commandGroup, cf cmdfunc, helpMsg string) {
	for i := range c.cmds {
		if c.cmds[i].match(cmdstr) {
			c.cmds[i].cmdFn = cf
			c.cmds[i].helpMsg = helpMsg
			return
		}
	}

	c.cmds = append(c.cmds, command{aliases: []string{cmdstr}, group: group, cmdFn: cf, helpMsg: helpMsg})
}

// Find will look up the command function for the given command input.
// If it cannot find the command it will default to noCmdAvailable().
func (c *Commands) Find(cmdstr string) cmdfunc {
	if cmdstr == "" {
		return nullCommand
	}

	for _, v := range c.cmds {
		if v.match(cmdstr) {
			return v.cmdFn
		}
	}

	return noCmdAvailable
}

func (c *Commands) isDecode(cmdstr string) bool {
	for _, v := range c.cmds {
		if v.match(cmdstr) {
			return v.aliases[0] == "decode"
		}
	}
	return false
}

// CallWithContext takes a command and a context that command should be executed in.
func (c *Commands) CallWithContext(cmdstr string, t *Term, ctx callContext) error {
	vals := strings.SplitN(strings.TrimSpace(cmdstr), " ", 2)
	cmdname := vals[0]
	var args string
	if len(vals) > 1 {
		args = strings.TrimSpace(vals[1])
	}
	return c.Find(cmdname)(t, ctx, args)
}

// Call takes a command to execute. Lines of MI output are fed to the
// terminal instead.
func (c *Commands) Call(cmdstr string, t *Term) error {
	if isMIOutput(cmdstr) {
		return t.Feed(cmdstr)
	}
	ctx := callContext{Output: t.lastResult}
	return c.CallWithContext(cmdstr, t, ctx)
}

// isMIOutput returns true if line is a record or a prompt.
func isMIOutput(line string) bool {
	sr, ok := mi.ParseRecord(line).(*mi.StreamRecord)
	return !ok || !sr.Synthetic()
}

// Merge takes aliases defined in the config struct and merges them with the default aliases.
func (c *Commands) Merge(allAliases map[string][]string) {
	for i := range c.cmds {
		if c.cmds[i].builtinAliases != nil {
			c.cmds[i].aliases = append(c.cmds[i].aliases[:0], c.cmds[i].builtinAliases...)
		}
	}
	for i := range c.cmds {
		if aliases, ok := allAliases[c.cmds[i].aliases[0]]; ok {
			if c.cmds[i].builtinAliases == nil {
				c.cmds[i].builtinAliases = make([]string, len(c.cmds[i].aliases))
				copy(c.cmds[i].builtinAliases, c.cmds[i].aliases)
			}
			c.cmds[i].aliases = append(c.cmds[i].aliases, aliases...)
		}
	}
}

var noCmdError = errors.New("command not available")

func noCmdAvailable(t *Term, ctx callContext, args string) error {
	return noCmdError
}

func nullCommand(t *Term, ctx callContext, args string) error {
	return nil
}

func (c *Commands) help(t *Term, ctx callContext, args string) error {
	if args != "" {
		for _, cmd := range c.cmds {
			for _, alias := range cmd.aliases {
				if alias == args {
					fmt.Fprintln(t.stdout, cmd.helpMsg)
					return nil
				}
			}
		}
		return noCmdError
	}

	fmt.Fprintln(t.stdout, "The following commands are available:")

	for _, cgd := range commandGroupDescriptions {
		fmt.Fprintf(t.stdout, "\n%s:\n", cgd.description)
		w := new(tabwriter.Writer)
		w.Init(t.stdout, 0, 8, 0, '-', 0)
		for _, cmd := range c.cmds {
			if cmd.group != cgd.group {
				continue
			}
			h := cmd.helpMsg
			if idx := strings.Index(h, "\n"); idx >= 0 {
				h = h[:idx]
			}
			if len(cmd.aliases) > 1 {
				fmt.Fprintf(w, "    %s (alias: %s) \t %s\n", cmd.aliases[0], strings.Join(cmd.aliases[1:], " | "), h)
			} else {
				fmt.Fprintf(w, "    %s \t %s\n", cmd.aliases[0], h)
			}
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintln(t.stdout)
	fmt.Fprintln(t.stdout, "Type help followed by a command for full documentation.")
	return nil
}

// splitArgs splits args like a shell would, without expansions.
func splitArgs(args string) ([]string, error) {
	if args == "" {
		return nil, nil
	}
	v, err := argv.Argv(args,
		func(s string) (string, error) {
			return "", fmt.Errorf("Backtick not supported in '%s'", s)
		},
		nil)
	if err != nil {
		return nil, err
	}
	if len(v) != 1 {
		return nil, fmt.Errorf("illegal command line '%s'", args)
	}
	return v[0], nil
}

func split2PartsBySpace(s string) []string {
	v := strings.SplitN(s, " ", 2)
	for i := range v {
		v[i] = strings.TrimSpace(v[i])
	}
	return v
}

func feed(t *Term, ctx callContext, args string) error {
	return t.Feed(args)
}

func loadCommand(t *Term, ctx callContext, args string) error {
	quiet := false
	if v := split2PartsBySpace(args); len(v) == 2 && v[0] == "-q" {
		quiet = true
		args = v[1]
	}
	if args == "" {
		return fmt.Errorf("wrong number of arguments: load [-q] <file>")
	}
	fh, err := os.Open(args)
	if err != nil {
		return err
	}
	defer fh.Close()

	results, errs := 0, 0
	scanner := bufio.NewScanner(fh)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if quiet {
			out := t.asm.Feed(line)
			if out == nil {
				continue
			}
			t.lastOutput = out
			if rr := out.ResultRecord(); rr != nil {
				t.lastResult = out
				results++
				if rr.Class() == mi.ClassError {
					errs++
				}
			}
			if ar, ok := out.Record().(*mi.AsyncRecord); ok {
				t.lastAsync = ar
			}
			continue
		}
		if err := t.Feed(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if quiet {
		fmt.Fprintf(t.stdout, "%d results, %d errors, %d records pending\n", results, errs, len(t.asm.Pending()))
	}
	return nil
}

func listCommand(t *Term, ctx callContext, args string) error {
	v, err := splitArgs(args)
	if err != nil {
		return err
	}
	if len(v) < 1 || len(v) > 2 {
		return fmt.Errorf("wrong number of arguments: list <file> [line]")
	}
	const lineCount = 10
	start, end, arrow := 1, 2*lineCount+2, 0
	if len(v) == 2 {
		line, err := strconv.Atoi(v[1])
		if err != nil {
			return fmt.Errorf("invalid line number %q", v[1])
		}
		start, end, arrow = line-lineCount, line+lineCount+1, line
	}
	fh, err := os.Open(v[0])
	if err != nil {
		return err
	}
	defer fh.Close()
	return t.stdout.ColorizePrint(fh, start, end, arrow)
}

func printCommand(t *Term, ctx callContext, args string) error {
	out := t.lastOutput
	switch args {
	case "":
	case "-result":
		out = ctx.Output
	default:
		return fmt.Errorf("unknown argument %q", args)
	}
	if out == nil {
		return errors.New("no output")
	}
	return t.printYAML(mi.OutputToYAML(out))
}

func (t *Term) printYAML(v interface{}) error {
	buf, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	t.stdout.pw.PageMaybe(nil)
	defer t.stdout.pw.Reset()
	_, err = t.stdout.Write(buf)
	return err
}

func pending(t *Term, ctx callContext, args string) error {
	recs := t.asm.Pending()
	if len(recs) == 0 {
		fmt.Fprintln(t.stdout, "no pending records")
		return nil
	}
	for _, rec := range recs {
		t.stdout.ColorizeLine(rec.String())
	}
	return nil
}

func reset(t *Term, ctx callContext, args string) error {
	t.asm.Reset()
	return nil
}

func eventCommand(t *Term, ctx callContext, args string) error {
	rec := t.lastAsync
	if args != "" {
		ar, ok := mi.ParseRecord(args).(*mi.AsyncRecord)
		if !ok {
			return fmt.Errorf("not an async record: %s", args)
		}
		rec = ar
	}
	if rec == nil {
		return errors.New("no async record")
	}
	ev := event.Decode(rec)
	t.Println(rec.AsyncKind().String(), event.Describe(ev))
	return t.printYAML(mi.RecordToYAML(rec))
}

type decodeArgs struct {
	command string
	params  info.Params
}

func parseDecodeArgs(args string, wordSize int) (decodeArgs, error) {
	r := decodeArgs{params: info.Params{WordSize: wordSize}}
	v, err := splitArgs(args)
	if err != nil {
		return r, err
	}
	intArg := func(name string, i int) (int, error) {
		if i+1 >= len(v) {
			return 0, fmt.Errorf("%s needs an argument", name)
		}
		n, err := strconv.Atoi(v[i+1])
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("argument of %s must be a positive number", name)
		}
		return n, nil
	}
	var words []string
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case "-count":
			r.params.Count, err = intArg(v[i], i)
			i++
		case "-word-size":
			r.params.WordSize, err = intArg(v[i], i)
			i++
		default:
			words = append(words, v[i])
		}
		if err != nil {
			return r, err
		}
	}
	if len(words) == 0 {
		return r, errors.New("wrong number of arguments: decode [-count <n>] [-word-size <n>] <command>")
	}
	r.command = strings.Join(words, " ")
	return r, nil
}

func decode(t *Term, ctx callContext, args string) error {
	da, err := parseDecodeArgs(args, t.conf.WordSize)
	if err != nil {
		return err
	}
	if ctx.Output == nil {
		return errors.New("no command result to decode")
	}
	dec, ok := info.Lookup(da.command)
	if !ok {
		return fmt.Errorf("no decoder for %q", da.command)
	}
	r := dec(ctx.Output, da.params)
	if !r.Done() {
		if msg := r.ErrorMessage(); msg != "" {
			return fmt.Errorf("command failed: %s", msg)
		}
	}
	if err := r.Issues(); err != nil {
		t.log.Warnf("decoding %s: %v", da.command, err)
	}
	if d, ok := r.(*info.DataDisassembleInfo); ok {
		disasmPrint(d, t.stdout)
		return nil
	}
	return t.printYAML(r)
}

func commandsCommand(t *Term, ctx callContext, args string) error {
	for _, name := range info.Commands() {
		if strings.HasPrefix(name, args) {
			fmt.Fprintln(t.stdout, name)
		}
	}
	return nil
}

func valueCommand(t *Term, ctx callContext, args string) error {
	v := mi.ParseValue(args)
	if v == nil {
		return fmt.Errorf("not an MI value: %s", args)
	}
	return t.printYAML(mi.ToYAML(v))
}

func escapeCommand(t *Term, ctx callContext, args string) error {
	all := false
	if v := split2PartsBySpace(args); v[0] == "-all" {
		all = true
		args = ""
		if len(v) == 2 {
			args = v[1]
		}
	}
	fmt.Fprintf(t.stdout, "\"%s\"\n", cstring.Escape(args, all))
	return nil
}

func unescapeCommand(t *Term, ctx callContext, args string) error {
	display := false
	if v := split2PartsBySpace(args); v[0] == "-display" {
		display = true
		args = ""
		if len(v) == 2 {
			args = v[1]
		}
	}
	if len(args) >= 2 && args[0] == '"' && args[len(args)-1] == '"' {
		args = args[1 : len(args)-1]
	}
	fmt.Fprintln(t.stdout, cstring.Translate(args, display))
	return nil
}

func (c *Commands) sourceCommand(t *Term, ctx callContext, args string) error {
	if len(args) == 0 {
		return fmt.Errorf("wrong number of arguments: source <filename>")
	}

	if filepath.Ext(args) == ".star" {
		_, err := t.starlarkEnv.Execute(args, nil, "main", nil)
		return err
	}

	if args == "-" {
		return t.starlarkEnv.REPL()
	}

	return c.executeFile(t, args)
}

func starlarkHelp(t *Term, ctx callContext, args string) error {
	_, err := t.starlarkEnv.Execute("<help>", "help()", "", nil)
	return err
}

func transcript(t *Term, ctx callContext, args string) error {
	words := strings.Fields(args)
	truncate := false
	fileOnly := false
	disable := false
	path := ""
	for _, arg := range words {
		switch arg {
		case "-x":
			fileOnly = true
		case "-t":
			truncate = true
		case "-off":
			disable = true
		default:
			if path != "" || strings.HasPrefix(arg, "-") {
				return fmt.Errorf("unrecognized option %q", arg)
			}
			path = arg
		}
	}

	if disable {
		if path != "" {
			return errors.New("-off option specified with an output path")
		}
		return t.stdout.CloseTranscript()
	}

	if path == "" {
		return errors.New("no output path specified")
	}

	flags := os.O_APPEND | os.O_WRONLY | os.O_CREATE
	if truncate {
		flags |= os.O_TRUNC
	}
	fh, err := os.OpenFile(path, flags, 0660)
	if err != nil {
		return err
	}

	if err := t.stdout.CloseTranscript(); err != nil {
		return err
	}

	t.stdout.TranscribeTo(fh, fileOnly)
	return nil
}

// ExitRequestError is returned when the user
// exits the terminal.
type ExitRequestError struct{}

func (ere ExitRequestError) Error() string {
	return ""
}

func exitCommand(t *Term, ctx callContext, args string) error {
	return ExitRequestError{}
}

func (c *Commands) executeFile(t *Term, name string) error {
	fh, err := os.Open(name)
	if err != nil {
		return err
	}
	defer fh.Close()

	scanner := bufio.NewScanner(fh)
	lineno := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineno++

		if line == "" || line[0] == '#' {
			continue
		}

		if err := c.Call(line, t); err != nil {
			if _, isExitRequest := err.(ExitRequestError); isExitRequest {
				return err
			}
			fmt.Fprintf(t.stdout, "%s:%d: %v\n", name, lineno, err)
		}
	}

	return scanner.Err()
}
