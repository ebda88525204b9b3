package main

import (
	"fmt"
	"strings"
)

type MetaCommandResult int

const (
	MetaCommandSuccess MetaCommandResult = iota
	MetaCommandExit
	MetaCommandUnrecognizedCommand
)

// handleMetaCommand dispatches dot-commands; everything else is a statement.
func handleMetaCommand(line string) MetaCommandResult {
	switch strings.TrimSpace(line) {
	case ".exit":
		return MetaCommandExit
	case ".help":
		printHelp()
		return MetaCommandSuccess
	}
	return MetaCommandUnrecognizedCommand
}

func printHelp() {
	fmt.Println("commands:")
	fmt.Println("  put <key> <value>   store a value")
	fmt.Println("  get <key>           look a value up")
	fmt.Println("  .exit               close the database and quit")
}
