package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"scroll_feed/internal/server"
	"scroll_feed/internal/storage/postgres"
)

func serveCmd() *cobra.Command {
	var (
		addr     string
		seedFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the article catalog over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			ctx := cmd.Context()

			db, err := connectDB(ctx, cfg.Database, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			srv := server.New(postgres.NewTagStore(db), postgres.NewArticleStore(db), reg, reg, logger)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Run(gctx, addr)
			})
			if seedFile != "" {
				g.Go(func() error {
					stats, err := runSeed(gctx, db, cfg, seedFile, logger)
					if err != nil {
						return fmt.Errorf("seed: %w", err)
					}
					logger.Info("catalog seeded", "new", stats.New, "updated", stats.Updated, "errors", stats.Errors)
					return nil
				})
			}

			logger.Info("starting article server", "addr", addr)

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to server.addr)")
	cmd.Flags().StringVar(&seedFile, "seed", "", "JSON database file to load while serving")

	return cmd
}
