package main

import (
	"fmt"
	"os"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitAuthError    = 3
	ExitAPIError     = 4
	ExitStorageError = 5
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "users":
		return runUsers(cmdArgs)
	case "ranking":
		return runRanking(cmdArgs)
	case "update":
		return runUpdate(cmdArgs)
	case "dedupe":
		return runDedupe(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: pixget <command> [options]

Commands:
  users    Download every illustration of the given pixiv user IDs
  ranking  Download a day's ranked illustrations
  update   Fetch new works for every user folder already in storage
  dedupe   Remove single-page duplicates left next to their _p0 variant

Run 'pixget <command> -h' for command-specific help.`)
}
