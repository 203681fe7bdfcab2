package starbind

// Code in this file is derived from go.starlark.net/repl/repl.go
// Which is licensed under the following copyright:
//
// Copyright (c) 2017 The Bazel Authors.  All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are
// met:
//
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the
//    distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
//    contributors may be used to endorse or promote products derived
//    from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
// "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
// LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
// A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
// HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
// LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
// DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
// THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
// (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

import (
	"fmt"
	"io"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/go-delve/liner"
)

const (
	normalPrompt = ">>> "
	extraPrompt  = "... "

	exitCommand = "exit"
)

// REPL executes a read, eval, print loop. Globals defined during the
// session are exported like the globals of a script when it ends.
func (env *Env) REPL() error {
	r := &starlarkREPL{
		thread:  env.newThread(),
		globals: starlark.StringDict{},
		out:     env.out,
		rl:      liner.NewLiner(),
	}
	defer r.rl.Close()
	for k, v := range env.env {
		r.globals[k] = v
	}

	for {
		if err := isCancelled(r.thread); err != nil {
			return err
		}
		if err := r.step(); err != nil {
			if err != io.EOF {
				return err
			}
			break
		}
	}
	fmt.Fprintln(env.out)
	return env.exportGlobals(r.globals)
}

type starlarkREPL struct {
	thread  *starlark.Thread
	globals starlark.StringDict
	out     EchoWriter
	rl      *liner.State

	prompt string
	eof    bool
}

// readline feeds one line of input to the starlark parser, switching to
// the continuation prompt after the first line of a statement.
func (r *starlarkREPL) readline() ([]byte, error) {
	line, err := r.rl.Prompt(r.prompt)
	r.out.Echo(r.prompt + line)
	r.prompt = extraPrompt
	switch {
	case line == exitCommand:
		r.eof = true
		return nil, io.EOF
	case err == io.EOF:
		r.eof = true
		return nil, err
	case err != nil:
		return nil, err
	}
	r.rl.AppendHistory(line)
	return []byte(line + "\n"), nil
}

// step reads and runs one statement. Only failures to read input are
// returned, starlark errors are printed.
func (r *starlarkREPL) step() error {
	defer r.out.Flush()
	r.prompt, r.eof = normalPrompt, false

	f, err := syntax.ParseCompoundStmt("<stdin>", r.readline)
	if err != nil {
		if r.eof {
			return io.EOF
		}
		printError(r.out, err)
		return nil
	}

	if expr := soleExpr(f); expr != nil {
		v, err := starlark.EvalExpr(r.thread, expr, r.globals)
		switch {
		case err != nil:
			printError(r.out, err)
		case v != starlark.None:
			fmt.Fprintln(r.out, v)
		}
		return nil
	}

	prog, err := starlark.FileProgram(f, r.globals.Has)
	if err != nil {
		printError(r.out, err)
		return nil
	}
	// Globals are not frozen so that later statements can update them.
	res, err := prog.Init(r.thread, r.globals)
	if err != nil {
		printError(r.out, err)
	}
	for k, v := range res {
		r.globals[k] = v
	}
	return nil
}

func soleExpr(f *syntax.File) syntax.Expr {
	if len(f.Stmts) != 1 {
		return nil
	}
	if stmt, ok := f.Stmts[0].(*syntax.ExprStmt); ok {
		return stmt.X
	}
	return nil
}

// printError prints err, with a backtrace for evaluation errors.
func printError(out io.Writer, err error) {
	if evalErr, ok := err.(*starlark.EvalError); ok {
		err = fmt.Errorf("%s", evalErr.Backtrace())
	}
	fmt.Fprintln(out, err)
}
