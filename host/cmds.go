// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"github.com/beevik/cmd"
	"github.com/beevik/prefixtree/v2"
)

// Commands understood by the host, in help display order. The Data field
// of each holds the host callback that handles the command.
var commands []cmd.CommandDescriptor

var (
	cmds     *cmd.Tree
	helpTree = prefixtree.New[*cmd.CommandDescriptor]()
)

func init() {
	commands = []cmd.CommandDescriptor{
		{
			Name:        "help",
			Brief:       "Display help for a command",
			Description: "Display help for a command, or list all commands.",
			Usage:       "help [<command>]",
			Data:        (*Host).cmdHelp,
		},
		{
			Name:  "assemble",
			Brief: "Assemble a file and save the binary",
			Description: "Run the assembler on the specified source file," +
				" producing a raw binary file if successful. If assembly fails," +
				" the binary file is removed.",
			Usage: "assemble <source> <binary>",
			Data:  (*Host).cmdAssemble,
		},
		{
			Name:  "disassemble",
			Brief: "Disassemble the last assembly",
			Description: "Disassemble the machine code produced by the last" +
				" assemble command, starting at the requested address. The" +
				" number of instructions to disassemble may be specified as an" +
				" option.",
			Usage: "disassemble [<address>] [<count>]",
			Data:  (*Host).cmdDisassemble,
		},
		{
			Name:  "load",
			Brief: "Load a binary file",
			Description: "Load a raw binary file for disassembly. Its source map" +
				" is read from the file of the same name with a .map extension," +
				" or from the map file given as an option. Without a source map" +
				" the binary loads at the origin setting.",
			Usage: "load <binary> [<map>]",
			Data:  (*Host).cmdLoad,
		},
		{
			Name:        "labels",
			Brief:       "List labels",
			Description: "Display the labels defined by the last assembly and their addresses.",
			Usage:       "labels",
			Data:        (*Host).cmdLabels,
		},
		{
			Name:  "set",
			Brief: "Set a configuration variable",
			Description: "Set the value of a configuration variable. Type the set" +
				" command without a variable name or value to display the current" +
				" values of all configuration variables.",
			Usage: "set [<var> <value>]",
			Data:  (*Host).cmdSet,
		},
		{
			Name:        "quit",
			Brief:       "Quit the program",
			Description: "Quit the program.",
			Usage:       "quit",
			Data:        (*Host).cmdQuit,
		},
	}

	cmds = cmd.NewTree(cmd.TreeDescriptor{Name: "sixfive"})
	for i, c := range commands {
		cmds.AddCommand(c)
		helpTree.Add(c.Name, &commands[i])
	}
}

// Return the descriptor of a command by unique name prefix.
func descriptor(name string) (*cmd.CommandDescriptor, error) {
	return helpTree.FindValue(name)
}
