package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	command := os.Args[1]

	// Dispatch to subcommand
	switch command {
	case "verify":
		runVerify(ctx, os.Args[2:])
	case "findvote":
		runFindVote(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`verify-release - Release candidate verifier for Apache vote threads

Usage:
  verify-release <command> [options]

Commands:
  verify    Download a staged release candidate and verify hashes,
            signature, and LICENSE/NOTICE files
  findvote  Find open [VOTE] threads on configured dev lists

Use "verify-release <command> --help" for more information about a command.`)
}
