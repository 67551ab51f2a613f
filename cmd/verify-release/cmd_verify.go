package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rbowen/verify-release/internal/domain-adapters/gateways"
	"github.com/rbowen/verify-release/internal/domain/interfaces"
	"github.com/rbowen/verify-release/internal/domain/services"
)

func runVerify(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	cleanup := fs.Bool("cleanup", false, "Remove downloaded files and extracted directories, then exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: verify-release verify <staging-url>
       verify-release verify --cleanup

Download every archive staged at <staging-url>, verify its digest
sidecars and detached GPG signature, extract it and check for LICENSE
and NOTICE files, then print a report and a copy-paste vote response
for the fully verified archives.

Downloads land in the current directory and persist between runs; use
--cleanup to remove them. Do not run two verifications in the same
directory at once.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  verify-release verify https://dist.apache.org/repos/dist/dev/httpd/2.4.63/
  verify-release verify --cleanup
`)
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	log := interfaces.NewConsoleLogger()

	// --cleanup runs alone and ignores any other argument
	if *cleanup {
		executeCleanup(log)
		return
	}

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}

	if err := executeVerify(ctx, fs.Arg(0), log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func executeVerify(ctx context.Context, stagingURL string, log interfaces.Logger) error {
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine working directory: %w", err)
	}

	fetcher := gateways.NewFetcher(log)
	service := services.NewVerificationService(
		fetcher,
		gateways.NewHashVerifier(log),
		gateways.NewSignatureVerifier(fetcher, log),
		gateways.NewArchiveInspector(log),
		log,
		workDir,
	)

	report, err := service.Run(ctx, stagingURL)
	if err != nil {
		return err
	}

	services.NewReportService(os.Stdout).Render(report)
	return nil
}

func executeCleanup(log interfaces.Logger) {
	workDir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	removed, err := gateways.NewCleaner(log).Cleanup(workDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(removed) == 0 {
		fmt.Println("Nothing to clean up")
		return
	}
	fmt.Println("Cleaned up:")
	for _, item := range removed {
		fmt.Printf("  %s\n", item)
	}
}
