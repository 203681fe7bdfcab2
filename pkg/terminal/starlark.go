package terminal

import (
	"github.com/go-delve/gdbmi/pkg/terminal/starbind"
)

// starlarkContext lets scripts define and call REPL commands.
type starlarkContext struct {
	term *Term
}

var _ starbind.Context = starlarkContext{}

func (ctx starlarkContext) RegisterCommand(name, helpMsg string, fn func(args string) error) {
	ctx.term.cmds.Register(name, scriptCmds, func(_ *Term, _ callContext, args string) error {
		return fn(args)
	}, helpMsg)
}

func (ctx starlarkContext) CallCommand(cmdstr string) error {
	return ctx.term.cmds.Call(cmdstr, ctx.term)
}
