package starbind

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"runtime"
	"sort"
	"strings"
	"sync"

	startime "go.starlark.net/lib/time"
	"go.starlark.net/resolve"
	"go.starlark.net/starlark"

	"github.com/go-delve/gdbmi/pkg/logflags"
	"github.com/go-delve/gdbmi/pkg/mi"
	"github.com/go-delve/gdbmi/pkg/mi/cstring"
	"github.com/go-delve/gdbmi/pkg/mi/event"
	"github.com/go-delve/gdbmi/pkg/mi/info"
)

const (
	miCommandBuiltinName  = "mi_command"
	readFileBuiltinName   = "read_file"
	writeFileBuiltinName  = "write_file"
	parseBuiltinName      = "parse"
	parseValueBuiltinName = "parse_value"
	classifyBuiltinName   = "classify"
	decodeBuiltinName     = "decode"
	eventBuiltinName      = "event"
	unescapeBuiltinName   = "unescape"
	escapeBuiltinName     = "escape"
	commandPrefix         = "command_"
	onOutputHookName      = "on_output"
	miContextName         = "mi_context"
	helpBuiltinName       = "help"
)

func init() {
	resolve.AllowNestedDef = true
	resolve.AllowLambda = true
	resolve.AllowFloat = true
	resolve.AllowSet = true
	resolve.AllowBitwise = true
	resolve.AllowRecursion = true
	resolve.AllowGlobalReassign = true
}

// Context is the context in which starlark scripts are evaluated.
// It lets scripts register and call commands of the terminal.
type Context interface {
	RegisterCommand(name, helpMsg string, cmdfn func(args string) error)
	CallCommand(cmdstr string) error
}

// Env is the environment used to evaluate starlark scripts.
type Env struct {
	env       starlark.StringDict
	contextMu sync.Mutex
	thread    *starlark.Thread
	cancelfn  context.CancelFunc

	// onOutput is the on_output function defined by the last script
	// executed, if any.
	onOutput *starlark.Function

	ctx Context
	out EchoWriter
	log logflags.Logger
}

// New creates a new starlark binding environment.
func New(ctx Context, out EchoWriter) *Env {
	env := &Env{}

	env.ctx = ctx
	env.out = out
	env.log = logflags.ScriptLogger()

	// Make the "time" module available to Starlark scripts.
	starlark.Universe["time"] = startime.Module

	env.env = starlark.StringDict{}
	doc := map[string]string{}

	builtindoc := func(name, args, descr string) {
		doc[name] = name + args + "\n\n" + name + " " + descr
	}

	env.env[miCommandBuiltinName] = starlark.NewBuiltin(miCommandBuiltinName, func(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if err := isCancelled(thread); err != nil {
			return starlark.None, err
		}
		if env.ctx == nil {
			return starlark.None, decorateError(thread, fmt.Errorf("no terminal to run commands"))
		}
		argstrs := make([]string, len(args))
		for i := range args {
			a, ok := args[i].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("argument of mi_command is not a string")
			}
			argstrs[i] = string(a)
		}
		err := env.ctx.CallCommand(strings.Join(argstrs, " "))
		return starlark.None, decorateError(thread, err)
	})
	builtindoc(miCommandBuiltinName, "(Command)", "runs a command of the terminal, for example mi_command(\"decode\", \"break-list\").")

	env.env[readFileBuiltinName] = starlark.NewBuiltin(readFileBuiltinName, func(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(args) != 1 {
			return nil, decorateError(thread, fmt.Errorf("wrong number of arguments"))
		}
		path, ok := args[0].(starlark.String)
		if !ok {
			return nil, decorateError(thread, fmt.Errorf("argument of read_file was not a string"))
		}
		buf, err := ioutil.ReadFile(string(path))
		if err != nil {
			return nil, decorateError(thread, err)
		}
		return starlark.String(string(buf)), nil
	})
	builtindoc(readFileBuiltinName, "(Path)", "reads a file.")

	env.env[writeFileBuiltinName] = starlark.NewBuiltin(writeFileBuiltinName, func(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(args) != 2 {
			return nil, decorateError(thread, fmt.Errorf("wrong number of arguments"))
		}
		path, ok := args[0].(starlark.String)
		if !ok {
			return nil, decorateError(thread, fmt.Errorf("first argument of write_file was not a string"))
		}
		text := args[1].String()
		if s, ok := args[1].(starlark.String); ok {
			text = string(s)
		}
		err := ioutil.WriteFile(string(path), []byte(text), 0640)
		return starlark.None, decorateError(thread, err)
	})
	builtindoc(writeFileBuiltinName, "(Path, Text)", "writes text to the specified file.")

	env.env[parseBuiltinName] = starlark.NewBuiltin(parseBuiltinName, func(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var line string
		if err := starlark.UnpackArgs(parseBuiltinName, args, kwargs, "line", &line); err != nil {
			return nil, decorateError(thread, err)
		}
		return outputToStarlarkValue(mi.Parse(line)), nil
	})
	builtindoc(parseBuiltinName, "(Line)", "parses one line of MI output and returns it as a dict.")

	env.env[parseValueBuiltinName] = starlark.NewBuiltin(parseValueBuiltinName, func(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var text string
		if err := starlark.UnpackArgs(parseValueBuiltinName, args, kwargs, "text", &text); err != nil {
			return nil, decorateError(thread, err)
		}
		return miValueToStarlarkValue(mi.ParseValue(text)), nil
	})
	builtindoc(parseValueBuiltinName, "(Text)", "parses an MI value: \"c-string\", {tuple} or [list].")

	env.env[classifyBuiltinName] = starlark.NewBuiltin(classifyBuiltinName, func(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var line string
		if err := starlark.UnpackArgs(classifyBuiltinName, args, kwargs, "line", &line); err != nil {
			return nil, decorateError(thread, err)
		}
		kind, token := mi.Classify(line)
		return starlark.Tuple{starlark.String(kind.String()), tokenToStarlarkValue(token)}, nil
	})
	builtindoc(classifyBuiltinName, "(Line)", "returns the kind and the token of a line without parsing it.")

	env.env[decodeBuiltinName] = starlark.NewBuiltin(decodeBuiltinName, func(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var command string
		var lines starlark.Value
		var params starlark.Value = starlark.None
		if err := starlark.UnpackArgs(decodeBuiltinName, args, kwargs, "command", &command, "output", &lines, "params?", &params); err != nil {
			return nil, decorateError(thread, err)
		}
		var p info.Params
		if err := unmarshalStarlarkValue(params, &p, "params"); err != nil {
			return nil, decorateError(thread, err)
		}
		out, err := env.outputArg(lines)
		if err != nil {
			return nil, decorateError(thread, err)
		}
		r, err := Decode(command, out, p)
		if err != nil {
			return nil, decorateError(thread, err)
		}
		return env.interfaceToStarlarkValue(r), nil
	})
	builtindoc(decodeBuiltinName, "(Command, Output, Params)", `decodes the output of a command.

Output is either an output dict returned by parse, a line or a list of lines,
the last result record is decoded. Params is an optional dict with the fields
Count and WordSize used by the memory commands.`)

	env.env[eventBuiltinName] = starlark.NewBuiltin(eventBuiltinName, func(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var line string
		if err := starlark.UnpackArgs(eventBuiltinName, args, kwargs, "line", &line); err != nil {
			return nil, decorateError(thread, err)
		}
		rec, ok := mi.ParseRecord(line).(*mi.AsyncRecord)
		if !ok {
			return nil, decorateError(thread, fmt.Errorf("not an async record: %s", line))
		}
		return env.interfaceToStarlarkValue(event.Decode(rec)), nil
	})
	builtindoc(eventBuiltinName, "(Line)", "decodes an async record.")

	env.env[unescapeBuiltinName] = starlark.NewBuiltin(unescapeBuiltinName, func(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var s string
		var display bool
		if err := starlark.UnpackArgs(unescapeBuiltinName, args, kwargs, "s", &s, "display?", &display); err != nil {
			return nil, decorateError(thread, err)
		}
		return starlark.String(cstring.Translate(s, display)), nil
	})
	builtindoc(unescapeBuiltinName, "(S, Display)", "resolves the escape sequences of the body of a C-string, special characters stay escaped if Display is True.")

	env.env[escapeBuiltinName] = starlark.NewBuiltin(escapeBuiltinName, func(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var s string
		printable := true
		if err := starlark.UnpackArgs(escapeBuiltinName, args, kwargs, "s", &s, "printable?", &printable); err != nil {
			return nil, decorateError(thread, err)
		}
		return starlark.String(cstring.Escape(s, printable)), nil
	})
	builtindoc(escapeBuiltinName, "(S, Printable)", "escapes S so that it can be used as the body of a C-string.")

	env.env[helpBuiltinName] = starlark.NewBuiltin(helpBuiltinName, func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		switch len(args) {
		case 0:
			fmt.Fprintln(env.out, "Available builtins:")
			bins := make([]string, 0, len(env.env))
			for name, value := range env.env {
				switch value.(type) {
				case *starlark.Builtin:
					bins = append(bins, name)
				}
			}
			sort.Strings(bins)
			for _, bin := range bins {
				fmt.Fprintf(env.out, "\t%s\n", bin)
			}
		case 1:
			switch x := args[0].(type) {
			case *starlark.Builtin:
				if doc[x.Name()] != "" {
					fmt.Fprintf(env.out, "%s\n", doc[x.Name()])
				} else {
					fmt.Fprintf(env.out, "no help for builtin %s\n", x.Name())
				}
			case *starlark.Function:
				fmt.Fprintf(env.out, "user defined function %s\n", x.Name())
				if doc := x.Doc(); doc != "" {
					fmt.Fprintln(env.out, doc)
				}
			default:
				fmt.Fprintf(env.out, "no help for object of type %T\n", args[0])
			}
		default:
			fmt.Fprintln(env.out, "wrong number of arguments ", len(args))
		}
		return starlark.None, nil
	})
	builtindoc(helpBuiltinName, "(Object)", "prints help for Object.")

	return env
}

// Decode runs the decoder registered for command on out.
func Decode(command string, out *mi.Output, p info.Params) (info.Result, error) {
	decode, ok := info.Lookup(command)
	if !ok {
		return nil, fmt.Errorf("no decoder for %q", command)
	}
	return decode(out, p), nil
}

// outputArg converts the output argument of decode: a dict returned by
// parse is parsed again from its records, a string or a list of strings
// is fed line by line to a new assembler and the last result is kept.
func (env *Env) outputArg(v starlark.Value) (*mi.Output, error) {
	var lines []string
	switch v := v.(type) {
	case starlark.String:
		lines = strings.Split(string(v), "\n")
	case *starlark.List:
		for i := 0; i < v.Len(); i++ {
			s, ok := v.Index(i).(starlark.String)
			if !ok {
				return nil, fmt.Errorf("output lines must be strings, got %s", v.Index(i).Type())
			}
			lines = append(lines, string(s))
		}
	default:
		return nil, fmt.Errorf("output must be a string or a list of strings, got %s", v.Type())
	}
	asm := mi.NewAssembler(mi.AssemblerConfig{})
	var last *mi.Output
	for _, line := range lines {
		if out := asm.Feed(line); out != nil && out.ResultRecord() != nil {
			last = out
		}
	}
	if last == nil {
		return nil, fmt.Errorf("no result record in output")
	}
	return last, nil
}

// Redirect redirects starlark output to out.
func (env *Env) Redirect(out EchoWriter) {
	env.out = out
	if env.thread != nil {
		env.thread.Print = env.printFunc()
	}
}

func (env *Env) printFunc() func(_ *starlark.Thread, msg string) {
	return func(_ *starlark.Thread, msg string) { fmt.Fprintln(env.out, msg) }
}

// Execute executes a script. Path is the name of the file to execute and
// source is the source code to execute.
// Source can be either a []byte, a string or a io.Reader. If source is nil
// Execute will execute the file specified by 'path'.
// After the file is executed if a function named mainFnName exists it will be called, passing args to it.
func (env *Env) Execute(path string, source interface{}, mainFnName string, args []interface{}) (_ starlark.Value, _err error) {
	defer func() {
		err := recover()
		if err == nil {
			return
		}
		_err = fmt.Errorf("panic executing starlark script: %v", err)
		fmt.Fprintf(env.out, "panic executing starlark script: %v\n", err)
		for i := 0; ; i++ {
			pc, file, line, ok := runtime.Caller(i)
			if !ok {
				break
			}
			fname := "<unknown>"
			fn := runtime.FuncForPC(pc)
			if fn != nil {
				fname = fn.Name()
			}
			fmt.Fprintf(env.out, "%s\n\tin %s:%d\n", fname, file, line)
		}
	}()

	env.log.Debugf("executing %s", path)
	thread := env.newThread()
	globals, err := starlark.ExecFile(thread, path, source, env.env)
	if err != nil {
		return starlark.None, err
	}

	err = env.exportGlobals(globals)
	if err != nil {
		return starlark.None, err
	}

	return env.callMain(thread, globals, mainFnName, args)
}

// HasOutputHook returns true if a script defined an on_output function.
func (env *Env) HasOutputHook() bool {
	return env != nil && env.onOutput != nil
}

// OnOutput calls the on_output function defined by a script with out
// converted to a dict. It does nothing if no script defined one.
func (env *Env) OnOutput(out *mi.Output) error {
	if !env.HasOutputHook() {
		return nil
	}
	_, err := starlark.Call(env.newThread(), env.onOutput, starlark.Tuple{outputToStarlarkValue(out)}, nil)
	if err != nil {
		env.log.Debugf("%s: %v", onOutputHookName, err)
	}
	return err
}

// exportGlobals saves globals with a name starting with a capital letter
// into the environment, creates commands from globals with a name
// starting with "command_" and installs the on_output hook.
func (env *Env) exportGlobals(globals starlark.StringDict) error {
	for name, val := range globals {
		switch {
		case name == onOutputHookName:
			fn, ok := val.(*starlark.Function)
			if !ok || fn.NumParams() != 1 {
				return fmt.Errorf("%s must be a function with one parameter", onOutputHookName)
			}
			env.onOutput = fn
		case strings.HasPrefix(name, commandPrefix):
			err := env.createCommand(name, val)
			if err != nil {
				return err
			}
		case name[0] >= 'A' && name[0] <= 'Z':
			env.env[name] = val
		}
	}
	return nil
}

// Cancel cancels the execution of a currently running script or function.
func (env *Env) Cancel() {
	if env == nil {
		return
	}
	env.contextMu.Lock()
	if env.cancelfn != nil {
		env.cancelfn()
		env.cancelfn = nil
	}
	if env.thread != nil {
		env.thread.Cancel("user interrupt")
	}
	env.contextMu.Unlock()
}

func (env *Env) newThread() *starlark.Thread {
	thread := &starlark.Thread{
		Print: env.printFunc(),
	}
	env.contextMu.Lock()
	var ctx context.Context
	ctx, env.cancelfn = context.WithCancel(context.Background())
	env.thread = thread
	env.contextMu.Unlock()
	thread.SetLocal(miContextName, ctx)
	return thread
}

func (env *Env) createCommand(name string, val starlark.Value) error {
	fnval, ok := val.(*starlark.Function)
	if !ok {
		return nil
	}
	if env.ctx == nil {
		return fmt.Errorf("can not define %s without a terminal", name)
	}

	name = name[len(commandPrefix):]

	helpMsg := fnval.Doc()
	if helpMsg == "" {
		helpMsg = "user defined"
	}

	if fnval.NumParams() == 1 {
		if p0, _ := fnval.Param(0); p0 == "args" {
			env.ctx.RegisterCommand(name, helpMsg, func(args string) error {
				_, err := starlark.Call(env.newThread(), fnval, starlark.Tuple{starlark.String(args)}, nil)
				return err
			})
			return nil
		}
	}

	env.ctx.RegisterCommand(name, helpMsg, func(args string) error {
		thread := env.newThread()
		argval, err := starlark.Eval(thread, "<input>", "("+args+")", env.env)
		if err != nil {
			return err
		}
		argtuple, ok := argval.(starlark.Tuple)
		if !ok {
			argtuple = starlark.Tuple{argval}
		}
		_, err = starlark.Call(thread, fnval, argtuple, nil)
		return err
	})
	return nil
}

// callMain calls the main function in globals, if one was defined.
func (env *Env) callMain(thread *starlark.Thread, globals starlark.StringDict, mainFnName string, args []interface{}) (starlark.Value, error) {
	if mainFnName == "" {
		return starlark.None, nil
	}
	mainval := globals[mainFnName]
	if mainval == nil {
		return starlark.None, nil
	}
	mainfn, ok := mainval.(*starlark.Function)
	if !ok {
		return starlark.None, fmt.Errorf("%s is not a function", mainFnName)
	}
	if mainfn.NumParams() != len(args) {
		return starlark.None, fmt.Errorf("wrong number of arguments for %s", mainFnName)
	}
	argtuple := make(starlark.Tuple, len(args))
	for i := range args {
		argtuple[i] = env.interfaceToStarlarkValue(args[i])
	}
	return starlark.Call(thread, mainfn, argtuple, nil)
}

func isCancelled(thread *starlark.Thread) error {
	if ctx, ok := thread.Local(miContextName).(context.Context); ok {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	return nil
}

func decorateError(thread *starlark.Thread, err error) error {
	if err == nil {
		return nil
	}
	pos := thread.CallFrame(1).Pos
	if pos.Col > 0 {
		return fmt.Errorf("%s:%d:%d: %v", pos.Filename(), pos.Line, pos.Col, err)
	}
	return fmt.Errorf("%s:%d: %v", pos.Filename(), pos.Line, err)
}

type EchoWriter interface {
	io.Writer
	Echo(string)
	Flush()
}
