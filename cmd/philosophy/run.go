package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/use-agent/philosophy/philosophy"
	"github.com/use-agent/philosophy/wiki"
)

type runOptions struct {
	destination string
	limit       int
	showContext bool
	quiet       bool
}

func newRunCmd(g *globalFlags) *cobra.Command {
	var o runOptions

	cmd := &cobra.Command{
		Use:   "run [source]",
		Short: "Trace first links from a source page and print the route",
		Long: `Follows the first link outside parentheses on each page, starting at
source (or the configured default), until the destination is reached,
a page is revisited, no link is left, or the limit is used up.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			if g.logFormat == "" && os.Getenv("PHILO_LOG_FORMAT") == "" {
				cfg.Log.Format = "pretty"
			}
			// Logs go to stderr so the report on stdout stays clean.
			initLogger(cfg.Log, os.Stderr)

			source := cfg.Trace.Source
			if len(args) == 1 {
				source = args[0]
			}
			destination := cfg.Trace.Destination
			if o.destination != "" {
				destination = o.destination
			}
			limit := cfg.Trace.Limit
			if cmd.Flags().Changed("limit") {
				limit = o.limit
			}

			stack, err := newFetchStack(cfg)
			if err != nil {
				return err
			}
			defer stack.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return trace(ctx, cmd, stack, destination, source, limit, o)
		},
	}

	cmd.Flags().StringVarP(&o.destination, "destination", "d", "", "page to reach (default from config)")
	cmd.Flags().IntVarP(&o.limit, "limit", "l", 0, "number of links to follow (default from config)")
	cmd.Flags().BoolVar(&o.showContext, "context", false, "print the paragraph each link was taken from")
	cmd.Flags().BoolVarP(&o.quiet, "quiet", "q", false, "no progress spinner")
	return cmd
}

func trace(ctx context.Context, cmd *cobra.Command, stack *fetchStack, destination, source string, limit int, o runOptions) error {
	var sp *spinner.Spinner
	if !o.quiet {
		sp = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
		sp.Suffix = " " + source
		sp.Start()
	}

	var steps []philosophy.Step
	tr := philosophy.NewTraverser(stack.fetcher, philosophy.WithObserver(func(s philosophy.Step) {
		steps = append(steps, s)
		if sp != nil && s.Decision.URL != "" {
			sp.Lock()
			sp.Suffix = " " + s.Decision.URL
			sp.Unlock()
		}
	}))

	res, err := tr.Run(ctx, destination, source, limit)
	if sp != nil {
		sp.Stop()
	}
	if err != nil {
		if errors.Is(err, philosophy.ErrInvalidLimit) || errors.Is(err, philosophy.ErrInvalidPage) {
			return fmt.Errorf("invalid arguments: %w", err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if err := res.Report(out); err != nil {
		return err
	}

	if o.showContext {
		ex := wiki.NewExcerpter()
		fmt.Fprintln(out)
		for _, s := range steps {
			if s.Block == nil {
				continue
			}
			md, err := ex.Excerpt(*s.Block, s.Page)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n  → %s\n\n%s\n\n", s.Page, s.Decision.URL, md)
		}
	}
	return nil
}
