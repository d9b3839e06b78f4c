package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	til "github.com/goliatone/go-til"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "rebuild":
		err = runRebuild(os.Args[2:])
	case "watch":
		err = runWatch(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "til %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: til <rebuild|watch> [flags]")
}

// runRebuild performs one full ingestion run. Skipped files do not fail the
// command; only catastrophic errors (missing content root, unwritable
// store) produce a non-zero exit.
func runRebuild(args []string) error {
	fs := flag.NewFlagSet("til-rebuild", flag.ExitOnError)
	cfg := bindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := til.New(*cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	report, err := svc.Rebuild(context.Background())
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "rebuilt %d documents, %d topics in %s\n",
		report.Documents, report.Topics, report.Duration.Round(time.Millisecond))
	for _, skipped := range report.Skipped {
		fmt.Fprintf(os.Stdout, "skipped %s: %s\n", skipped.Path, skipped.Reason)
	}
	return nil
}

// runWatch rebuilds once, then blocks rebuilding on content changes until
// interrupted.
func runWatch(args []string) error {
	fs := flag.NewFlagSet("til-watch", flag.ExitOnError)
	cfg := bindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := til.New(*cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := svc.Rebuild(ctx); err != nil {
		return err
	}

	if err := svc.Watch(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func bindFlags(fs *flag.FlagSet) *til.Config {
	cfg := til.DefaultConfig()
	fs.StringVar(&cfg.ContentDir, "content-dir", cfg.ContentDir, "Path to the markdown content root")
	fs.StringVar(&cfg.Pattern, "pattern", cfg.Pattern, "Glob pattern applied when discovering markdown files")
	fs.StringVar(&cfg.DatabaseDir, "database-dir", cfg.DatabaseDir, "Directory holding the sqlite database")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Base URL prefixed to internal links")
	fs.StringVar(&cfg.DefaultTopic, "default-topic", cfg.DefaultTopic, "Topic assigned to documents without one")
	fs.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "Log level (trace|debug|info|warn|error)")
	fs.StringVar(&cfg.Logging.Format, "log-format", cfg.Logging.Format, "Log format (json|console|pretty)")
	fs.DurationVar(&cfg.Watch.Debounce, "debounce", cfg.Watch.Debounce, "Quiet window before a change triggers a rebuild")
	return &cfg
}
