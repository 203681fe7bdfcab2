package main

import (
	"os"

	"github.com/go-delve/gdbmi/cmd/midecode/cmds"
)

func main() {
	if err := cmds.New(false).Execute(); err != nil {
		os.Exit(1)
	}
}
