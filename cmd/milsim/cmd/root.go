// Package cmd implements the milsim subcommands.
package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Command describes one milsim subcommand.
type Command struct {
	Name  string
	Short string
	Usage string
	Run   func(args []string) error
}

var commands = map[string]*Command{}

// RegisterCommand adds a command to the registry. Called from init.
func RegisterCommand(c *Command) {
	commands[c.Name] = c
}

// Execute dispatches os.Args to the matching command.
func Execute() error {
	if len(os.Args) < 2 {
		printUsage()
		return nil
	}
	name := strings.ToLower(os.Args[1])
	if name == "help" || name == "-h" || name == "--help" {
		printUsage()
		return nil
	}
	c := commands[name]
	if c == nil {
		printUsage()
		return fmt.Errorf("unknown command %q", name)
	}
	return c.Run(os.Args[2:])
}

func printUsage() {
	fmt.Println("milsim replays pointer-event scripts against the input engine.")
	fmt.Println()
	fmt.Println("Usage:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := commands[name]
		fmt.Printf("  %-28s %s\n", c.Usage, c.Short)
	}
}
