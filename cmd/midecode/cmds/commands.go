package cmds

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"gopkg.in/yaml.v2"

	"github.com/go-delve/gdbmi/cmd/midecode/cmds/helphelpers"
	"github.com/go-delve/gdbmi/pkg/config"
	"github.com/go-delve/gdbmi/pkg/logflags"
	"github.com/go-delve/gdbmi/pkg/mi"
	"github.com/go-delve/gdbmi/pkg/mi/info"
	"github.com/go-delve/gdbmi/pkg/terminal"
	"github.com/go-delve/gdbmi/pkg/terminal/starbind"
	"github.com/go-delve/gdbmi/pkg/version"
	"github.com/go-delve/gdbmi/service/dap"
)

var (
	// log is whether to log debug statements.
	log bool
	// logOutput is a comma separated list of components that should produce debug output.
	logOutput string
	// logDest is the file path or file descriptor where logs should go.
	logDest string
	// initFile is the path to initialization file.
	initFile string
	// oobWindow overrides the oob-window configuration parameter.
	oobWindow int
	// wordSize overrides the word-size configuration parameter.
	wordSize int

	// format selects the output format of parse and events.
	format string
	// count is the number of words requested by a memory read.
	count int
	// verbose prints the build information with the version.
	verbose bool

	// rootCommand is the root of the command tree.
	rootCommand *cobra.Command

	conf *config.Config
)

const midecodeCommandLongDesc = `midecode decodes the output of GDB running with the machine interface (MI) enabled.

It reads MI output, for example a transcript saved with 'gdb --interpreter=mi2 2>&1 | tee session.mi',
groups records into command results and notifications and decodes them into typed values.

Every subcommand reading MI output reads the files given as arguments, or standard input
if none is given or the file name is '-'.`

// New returns an initialized command tree.
func New(docCall bool) *cobra.Command {
	// Config setup and load. Documentation does not depend on the
	// configuration of the user.
	if docCall {
		conf = &config.Config{}
	} else {
		conf = config.LoadConfig()
	}

	// Main midecode root command.
	rootCommand = &cobra.Command{
		Use:   "midecode",
		Short: "midecode is a decoder for the GDB/MI protocol.",
		Long:  midecodeCommandLongDesc,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logflags.Setup(log, logOutput, logDest); err != nil {
				return err
			}
			if cmd.Flags().Changed("oob-window") {
				conf.OOBWindow = oobWindow
			}
			if cmd.Flags().Changed("word-size") {
				conf.WordSize = wordSize
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logflags.Close()
		},
		SilenceUsage: true,
	}

	rootCommand.PersistentFlags().BoolVarP(&log, "log", "", false, "Enable logging.")
	rootCommand.PersistentFlags().StringVarP(&logOutput, "log-output", "", "", `Comma separated list of components that should produce debug output (see 'midecode help log')`)
	rootCommand.PersistentFlags().StringVarP(&logDest, "log-dest", "", "", "Writes logs to the specified file or file descriptor (see 'midecode help log').")

	rootCommand.PersistentFlags().StringVar(&initFile, "init", "", "Init file, executed by the terminal.")
	rootCommand.PersistentFlags().IntVar(&oobWindow, "oob-window", conf.OOBWindow, "Maximum number of out of band records attached to a command result.")
	rootCommand.PersistentFlags().IntVar(&wordSize, "word-size", conf.WordSize, "Word size, in bytes, of memory reads.")

	defaultHelpFn := rootCommand.HelpFunc()
	rootCommand.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helphelpers.Prepare(cmd)
		defaultHelpFn(cmd, args)
	})

	// 'parse' subcommand.
	parseCommand := &cobra.Command{
		Use:   "parse [file...]",
		Short: "Parses MI output.",
		Long: `Parses MI output and prints every command result and out of band record.

With the default text format a one line summary is printed for each record, with the yaml
format the full contents of every record, in the order they were received.`,
		RunE: parseCmd,
	}
	parseCommand.Flags().StringVarP(&format, "format", "f", "text", "Output format, text or yaml.")
	rootCommand.AddCommand(parseCommand)

	// 'decode' subcommand.
	decodeCommand := &cobra.Command{
		Use:   "decode <command> [file...]",
		Short: "Decodes command results.",
		Long: `Decodes every command result of the MI output as the result of the specified command.

The command can be an MI command, with or without the leading dash, for example
'break-list' or '-stack-list-frames', or a CLI command such as 'info sharedlibrary'.
Results are printed as YAML documents. Error results are reported on standard error and
make midecode exit with a non zero status.

Use 'midecode decode --list' to see the commands that can be decoded.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if listDecoders, _ := cmd.Flags().GetBool("list"); listDecoders {
				return nil
			}
			if len(args) == 0 {
				return errors.New("you must provide the command that produced the output")
			}
			return nil
		},
		RunE: decodeCmd,
	}
	decodeCommand.Flags().IntVar(&count, "count", 0, "Number of words requested by a memory read.")
	decodeCommand.Flags().Bool("list", false, "Lists the commands that can be decoded.")
	rootCommand.AddCommand(decodeCommand)

	// 'events' subcommand.
	eventsCommand := &cobra.Command{
		Use:   "events [file...]",
		Short: "Prints the asynchronous notifications.",
		Long: `Prints the async records of the MI output, exec, status and notify records,
decoded into events. Stream records and command results are skipped.`,
		RunE: eventsCmd,
	}
	eventsCommand.Flags().StringVarP(&format, "format", "f", "text", "Output format, text or yaml.")
	rootCommand.AddCommand(eventsCommand)

	// 'dap' subcommand.
	dapCommand := &cobra.Command{
		Use:   "dap [file...]",
		Short: "Translates MI output into DAP messages.",
		Long: `Translates MI output into Debug Adapter Protocol events and writes them to standard output,
framed with Content-Length headers as DAP clients expect.

Stopped, continued, thread, breakpoint, module, output and exited events are produced.
Use '--log --log-output=dap' to also log every message sent.`,
		RunE: dapCmd,
	}
	rootCommand.AddCommand(dapCommand)

	// 'script' subcommand.
	scriptCommand := &cobra.Command{
		Use:   "script <script.star> [file...]",
		Short: "Runs a starlark script over MI output.",
		Long: `Runs a starlark script.

If the script defines a function named on_output it is called with every output read from
the files, a dictionary with the keys "class", "results", "token", "records", "record",
"console" and "prompt".
See 'help starlark' in the terminal for the builtins available to scripts.`,
		Args: cobra.MinimumNArgs(1),
		RunE: scriptCmd,
	}
	rootCommand.AddCommand(scriptCommand)

	// 'repl' subcommand.
	replCommand := &cobra.Command{
		Use:   "repl",
		Short: "Starts an interactive terminal.",
		Long: `Starts an interactive terminal where lines of MI output can be typed or loaded from
files, inspected and decoded.

Type 'help' in the terminal for the list of commands.`,
		Run: replCmd,
	}
	rootCommand.AddCommand(replCommand)

	// 'version' subcommand.
	versionCommand := &cobra.Command{
		Use:   "version",
		Short: "Prints version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "midecode\n%s\n", version.MIDecodeVersion)
			if verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", version.BuildInfo())
			}
		},
	}
	versionCommand.Flags().BoolVarP(&verbose, "verbose", "v", false, "print verbose version info")
	rootCommand.AddCommand(versionCommand)

	// 'docs' subcommand.
	docsCommand := &cobra.Command{
		Use:    "docs [directory]",
		Short:  "Generates the documentation.",
		Hidden: true,
		Args:   cobra.MaximumNArgs(1),
		RunE:   docsCmd,
	}
	rootCommand.AddCommand(docsCommand)

	rootCommand.AddCommand(&cobra.Command{
		Use:   "log",
		Short: "Help about logging flags.",
		Long: `Logging can be enabled by specifying the --log flag and using the
--log-output flag to select which components should produce logs.

The argument of --log-output must be a comma separated list of component
names selected from this list:


	parser	Log lines that could not be parsed as MI records
	info	Log problems found decoding command results
	event	Log async records with unexpected contents
	repl	Log terminal commands
	script	Log errors of starlark scripts
	dap	Log all DAP messages

Additionally --log-dest can be used to specify where the logs should be
written.
If the argument is a number it will be interpreted as a file descriptor,
otherwise as a file path.
`,
	})

	rootCommand.DisableAutoGenTag = true

	return rootCommand
}

// forEachFile calls fn with every file named in args, "-" standing for in,
// or with in alone if args is empty.
func forEachFile(in io.Reader, args []string, fn func(r io.Reader) error) error {
	if len(args) == 0 {
		return fn(in)
	}
	for _, path := range args {
		if path == "-" {
			if err := fn(in); err != nil {
				return err
			}
			continue
		}
		fh, err := os.Open(path)
		if err != nil {
			return err
		}
		err = fn(fh)
		fh.Close()
		if err != nil {
			return fmt.Errorf("%s: %v", path, err)
		}
	}
	return nil
}

func scanLines(r io.Reader, fn func(line string) error) error {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for s.Scan() {
		if err := fn(s.Text()); err != nil {
			return err
		}
	}
	return s.Err()
}

// forEachLine calls fn for every line of the files in args, or of in if
// args is empty.
func forEachLine(in io.Reader, args []string, fn func(line string) error) error {
	return forEachFile(in, args, func(r io.Reader) error {
		return scanLines(r, fn)
	})
}

// forEachOutput feeds the lines of args to an assembler and calls fn for
// every output it returns. Every file is a separate transcript: records
// left pending at the end of one are not attached to results of the next.
func forEachOutput(in io.Reader, args []string, fn func(out *mi.Output) error) error {
	asm := mi.NewAssembler(conf.AssemblerConfig())
	return forEachFile(in, args, func(r io.Reader) error {
		defer asm.Reset()
		err := scanLines(r, func(line string) error {
			if out := asm.Feed(line); out != nil {
				return fn(out)
			}
			return nil
		})
		if n := len(asm.Pending()); n > 0 && err == nil {
			logflags.ParserLogger().Warnf("%d records were not followed by a command result", n)
		}
		return err
	})
}

func checkFormat() error {
	switch format {
	case "text", "yaml":
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

// yamlWriter writes values as a stream of YAML documents.
type yamlWriter struct {
	w     io.Writer
	count int
}

func (yw *yamlWriter) write(v interface{}) error {
	buf, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	if yw.count > 0 {
		io.WriteString(yw.w, "---\n")
	}
	yw.count++
	_, err = yw.w.Write(buf)
	return err
}

func parseCmd(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	yw := &yamlWriter{w: w}
	return forEachOutput(cmd.InOrStdin(), args, func(out *mi.Output) error {
		if format == "yaml" {
			if out.IsPrompt() {
				return nil
			}
			return yw.write(mi.OutputToYAML(out))
		}
		kind, summary := terminal.Summarize(out)
		if kind == "" {
			return nil
		}
		_, err := fmt.Fprintf(w, "%s\t%s\n", kind, summary)
		return err
	})
}

func decodeCmd(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	if listDecoders, _ := cmd.Flags().GetBool("list"); listDecoders {
		for _, name := range info.Commands() {
			fmt.Fprintln(w, name)
		}
		return nil
	}
	command := args[0]
	dec, ok := info.Lookup(command)
	if !ok {
		return fmt.Errorf("no decoder for %q", command)
	}
	params := info.Params{Count: count, WordSize: conf.WordSize}
	yw := &yamlWriter{w: w}
	failed := 0
	err := forEachOutput(cmd.InOrStdin(), args[1:], func(out *mi.Output) error {
		if out.ResultRecord() == nil {
			return nil
		}
		r := dec(out, params)
		if !r.Done() {
			if msg := r.ErrorMessage(); msg != "" {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s failed: %s\n", command, msg)
				return nil
			}
		}
		if err := r.Issues(); err != nil {
			logflags.InfoLogger().Warnf("decoding %s: %v", command, err)
		}
		return yw.write(r)
	})
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d commands failed", failed)
	}
	return nil
}

func eventsCmd(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	yw := &yamlWriter{w: w}
	return forEachOutput(cmd.InOrStdin(), args, func(out *mi.Output) error {
		rec, ok := out.Record().(*mi.AsyncRecord)
		if !ok {
			return nil
		}
		if format == "yaml" {
			return yw.write(mi.RecordToYAML(rec))
		}
		kind, summary := terminal.Summarize(out)
		_, err := fmt.Fprintf(w, "%s\t%s\n", kind, summary)
		return err
	})
}

func dapCmd(cmd *cobra.Command, args []string) error {
	session := dap.NewSession(cmd.OutOrStdout(), conf.AssemblerConfig())
	if len(args) == 0 {
		return session.Run(cmd.InOrStdin())
	}
	return forEachLine(cmd.InOrStdin(), args, session.Feed)
}

// scriptWriter sends the output of scripts to w.
type scriptWriter struct {
	w io.Writer
}

func (sw scriptWriter) Write(p []byte) (int, error) { return sw.w.Write(p) }
func (sw scriptWriter) Echo(string)                 {}
func (sw scriptWriter) Flush()                      {}

func scriptCmd(cmd *cobra.Command, args []string) error {
	env := starbind.New(nil, scriptWriter{cmd.OutOrStdout()})
	if _, err := env.Execute(args[0], nil, "main", nil); err != nil {
		return err
	}
	if !env.HasOutputHook() {
		if len(args) > 1 {
			return fmt.Errorf("%s does not define on_output", args[0])
		}
		return nil
	}
	return forEachOutput(cmd.InOrStdin(), args[1:], env.OnOutput)
}

func replCmd(cmd *cobra.Command, args []string) {
	status := func() int {
		defer logflags.Close()
		term := terminal.New(conf)
		term.InitFile = initFile
		status, err := term.Run()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		return status
	}()
	os.Exit(status)
}

func docsCmd(cmd *cobra.Command, args []string) error {
	usageDir := "./Documentation/usage"
	if len(args) > 0 {
		usageDir = args[0]
	}
	if err := os.MkdirAll(usageDir, 0755); err != nil {
		return err
	}

	root := New(true)
	cmdnames := []string{}
	for _, subcmd := range root.Commands() {
		cmdnames = append(cmdnames, subcmd.Name())
	}
	helphelpers.Prepare(root)
	if err := doc.GenMarkdownTree(root, usageDir); err != nil {
		return err
	}
	// GenMarkdownTree ignores additional help topic commands, so we have to do this manually
	for _, cmdname := range cmdnames {
		subcmd, _, _ := New(true).Find([]string{cmdname})
		if subcmd.Hidden {
			continue
		}
		helphelpers.Prepare(subcmd)
		if err := doc.GenMarkdownTree(subcmd, usageDir); err != nil {
			return err
		}
	}
	fh, err := os.OpenFile(filepath.Join(usageDir, "midecode.md"), os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("appending to midecode.md: %v", err)
	}
	fmt.Fprintln(fh, "* [midecode log](midecode_log.md)\t - Help about logging flags")
	fh.Close()

	fh, err = os.Create(filepath.Join(usageDir, "terminal.md"))
	if err != nil {
		return err
	}
	defer fh.Close()
	w := bufio.NewWriter(fh)
	terminal.MICommands().WriteMarkdown(w)
	return w.Flush()
}
