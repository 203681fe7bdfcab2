package terminal

import (
	"fmt"
	"io"
	"strings"
)

const docPreamble = `# Configuration and Command History

If ` + "`$XDG_CONFIG_HOME`" + ` is set, then configuration and command history files are located in ` + "`$XDG_CONFIG_HOME/midecode`" + `. Otherwise, they are located in ` + "`$HOME/.config/midecode`" + ` on Linux and ` + "`$HOME/.midecode`" + ` on other systems.

The configuration file ` + "`config.yml`" + ` contains all the configurable options and their default values. The command history is stored in ` + "`.midecode_history`" + `.

Lines typed at the prompt that are GDB/MI records are fed to the decoder, every other line is one of the commands below.

# Commands
`

// WriteMarkdown writes the documentation of the terminal commands to w.
func (commands *Commands) WriteMarkdown(w io.Writer) {
	io.WriteString(w, docPreamble)

	byGroup := make(map[commandGroup][]command)
	for _, cmd := range commands.cmds {
		byGroup[cmd.group] = append(byGroup[cmd.group], cmd)
	}

	for _, cgd := range commandGroupDescriptions {
		if len(byGroup[cgd.group]) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n## %s\n\nCommand | Description\n--------|------------\n", cgd.description)
		for _, cmd := range byGroup[cgd.group] {
			fmt.Fprintf(w, "[%[1]s](#%[1]s) | %s\n", cmd.aliases[0], firstLine(cmd.helpMsg))
		}
	}

	for _, cmd := range commands.cmds {
		fmt.Fprintf(w, "\n## %s\n%s\n", cmd.aliases[0], cmd.helpMsg)
		if len(cmd.aliases) > 1 {
			fmt.Fprintf(w, "\nAliases: %s\n", strings.Join(cmd.aliases[1:], " "))
		}
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
