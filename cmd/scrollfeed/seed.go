package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"scroll_feed/internal/config"
	"scroll_feed/internal/domain"
	"scroll_feed/internal/publisher"
	"scroll_feed/internal/service"
	"scroll_feed/internal/source/dbfile"
	"scroll_feed/internal/storage/postgres"
)

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a JSON database file into the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := connectDB(cmd.Context(), cfg.Database, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := runSeed(cmd.Context(), db, cfg, file, logger)
			if err != nil {
				return err
			}

			printSeedStats(os.Stdout, stats)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "testdata/db.json", "JSON database file with tags and articles")

	return cmd
}

func runSeed(ctx context.Context, db *sqlx.DB, cfg *config.Config, file string, logger *slog.Logger) (*domain.SeedStats, error) {
	var pub service.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("connect publisher: %w", err)
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	seeder := service.NewSeedService(
		dbfile.New(file, logger),
		postgres.NewArticleStore(db),
		postgres.NewTagStore(db),
		postgres.NewTransactionManager(db),
		pub,
		logger,
	)

	return seeder.Seed(ctx)
}

func printSeedStats(w io.Writer, stats *domain.SeedStats) {
	fmt.Fprintf(w, "Seeded %d articles: %d new, %d updated, %d errors",
		stats.Fetched, stats.New, stats.Updated, stats.Errors)
	if stats.Published > 0 {
		fmt.Fprintf(w, ", %d events published", stats.Published)
	}
	fmt.Fprintf(w, " (%s)\n", stats.Duration.Round(time.Millisecond))
}
