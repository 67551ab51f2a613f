package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rbowen/verify-release/internal/domain-adapters/gateways"
	"github.com/rbowen/verify-release/internal/domain/interfaces"
	"github.com/rbowen/verify-release/internal/domain/services"
	"github.com/rbowen/verify-release/internal/external-adapters/yaml"
)

func runFindVote(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("findvote", flag.ExitOnError)
	var (
		showVoted  = fs.Bool("voted", false, "Show threads you have already voted on instead of open ones")
		configPath = fs.String("config", "projects.yaml", "Config file listing projects and voter emails")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: verify-release findvote [options]

Scan each configured project's dev list for the current month and list
[VOTE] threads that carry dist.apache.org staging URLs, filtered by
whether one of the configured addresses has already replied.

The config file is YAML:

  projects:
    - httpd
    - tomcat
  emails:
    - me@example.org

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	cfg, err := yaml.LoadVoteConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	executeFindVote(ctx, cfg, *showVoted)
}

func executeFindVote(ctx context.Context, cfg *yaml.VoteConfig, showVoted bool) {
	log := interfaces.NewConsoleLogger()
	mbox := gateways.NewMailingListGateway(log)
	votes := services.NewVoteService()

	month := time.Now().Format("2006-01")
	fmt.Printf("Checking for [VOTE] threads in %s\n", month)
	verb := "has NOT"
	if showVoted {
		verb = "HAS"
	}
	fmt.Printf("Looking for threads %s %s voted on\n\n", strings.Join(cfg.Emails, ", "), verb)

	for _, project := range cfg.Projects {
		fmt.Printf("Checking %s...\n", project)

		content, err := mbox.FetchMbox(ctx, project, month)
		if err != nil {
			log.Warn(fmt.Sprintf("error fetching %s mbox", project), interfaces.F("error", err))
			continue
		}

		threads := votes.FindVoteThreads(votes.ParseMbox(content), showVoted, cfg.Emails)
		if len(threads) == 0 {
			fmt.Println("  No relevant vote threads found")
			continue
		}

		fmt.Printf("\n=== %s ===\n", strings.ToUpper(project))
		for _, thread := range threads {
			fmt.Printf("Subject: %s\n", thread.Subject)
			for _, url := range thread.URLs {
				fmt.Printf("  URL: %s\n", url)
			}
			fmt.Println()
		}
	}

	fmt.Println("\nDone.")
}
