package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"scroll_feed/internal/domain"
	"scroll_feed/internal/preference"
	"scroll_feed/internal/scheduler"
	"scroll_feed/internal/state"
)

type browseOptions struct {
	topics      []string
	readingTime int
	watch       bool
	interval    time.Duration
}

func browseCmd() *cobra.Command {
	var opts browseOptions

	cmd := &cobra.Command{
		Use:     "browse",
		Short:   "Pick up to three topics and list matching articles",
		Example: "  scrollfeed browse --topic Science --topic Health --reading-time 4",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("interval") {
				opts.interval = cfg.Refresh.Interval
			}

			c := newClient(cfg, nil, logger)
			defer c.Close()

			ctrl := preference.NewController(c.store, cfg.Preferences.DefaultReadingTime)
			return runBrowse(cmd.Context(), c, ctrl, opts, os.Stdout, logger)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.topics, "topic", "t", nil, "topic to filter by (repeatable, at most 3)")
	cmd.Flags().IntVarP(&opts.readingTime, "reading-time", "r", 0, "maximum reading time in minutes (2-8)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "keep refreshing the list")
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "refresh interval in watch mode (defaults to refresh.interval)")

	return cmd
}

func runBrowse(ctx context.Context, c *client, ctrl *preference.Controller, opts browseOptions, out io.Writer, logger *slog.Logger) error {
	applySelection(ctrl, opts, out)

	if len(ctrl.Selection().Topics) == 0 {
		fmt.Fprintln(out, "Select at least one topic with --topic.")
		tags, err := c.loadTags(ctx)
		if err != nil {
			return err
		}
		renderTags(out, tags, nil)
		_, err = ctrl.Submit()
		return err
	}

	if opts.watch {
		return watchArticles(ctx, c, ctrl, opts.interval, out, logger)
	}

	if _, err := ctrl.Submit(); err != nil {
		return err
	}

	articles, err := c.awaitArticles(ctx)
	if err != nil {
		return err
	}

	renderArticles(out, articles, ctrl.Selection())
	return articles.Err
}

func applySelection(ctrl *preference.Controller, opts browseOptions, out io.Writer) {
	if opts.readingTime != 0 {
		if got := ctrl.SetReadingTime(opts.readingTime); got != opts.readingTime {
			fmt.Fprintf(out, "Reading time must be between %d and %d minutes; using %d.\n",
				preference.MinReadingTime, preference.MaxReadingTime, got)
		}
	}

	for _, topic := range opts.topics {
		// Repeating a flag must not deselect the topic.
		if ctrl.IsSelected(topic) {
			continue
		}
		if _, err := ctrl.ToggleTopic(topic); errors.Is(err, domain.ErrSelectionLimitExceeded) {
			fmt.Fprintf(out, "You can pick at most %d topics; skipping %q.\n", preference.MaxTopics, topic)
		}
	}
}

// watchArticles re-submits the selection every interval and renders each
// article result the store accepts until ctx is cancelled.
func watchArticles(ctx context.Context, c *client, ctrl *preference.Controller, interval time.Duration, out io.Writer, logger *slog.Logger) error {
	if interval <= 0 {
		return fmt.Errorf("watch needs a positive refresh interval, got %s", interval)
	}

	updates := make(chan state.Slice[domain.Article], 1)
	unsubscribe := c.store.Subscribe(func(st state.State, a state.Action) {
		switch a.Kind() {
		case state.KindFetchArticlesSuccess, state.KindFetchArticlesFailure:
			// Listeners run one at a time, so after draining the send cannot block.
			select {
			case <-updates:
			default:
			}
			updates <- st.Articles
		}
	})
	defer unsubscribe()

	sched := scheduler.NewScheduler(ctrl, interval, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Start(gctx)
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case articles := <-updates:
				fmt.Fprintf(out, "--- %s ---\n", time.Now().Format(time.TimeOnly))
				renderArticles(out, articles, ctrl.Selection())
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
