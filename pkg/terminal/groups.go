package terminal

type commandGroup uint8

const (
	otherCmds commandGroup = iota
	feedCmds
	decodeCmds
	textCmds
	scriptCmds
)

type commandGroupDescription struct {
	description string
	group       commandGroup
}

var commandGroupDescriptions = []commandGroupDescription{
	{"Feeding and inspecting MI output", feedCmds},
	{"Decoding command results", decodeCmds},
	{"Escaping and parsing text", textCmds},
	{"Scripting", scriptCmds},
	{"Other commands", otherCmds},
}
