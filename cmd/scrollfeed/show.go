package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"scroll_feed/internal/domain"
	"scroll_feed/internal/gateway"
)

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a single article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			c := newClient(cfg, nil, logger)
			defer c.Close()

			return runShow(cmd.Context(), c.gateway, args[0], os.Stdout)
		},
	}
}

func runShow(ctx context.Context, gw *gateway.Gateway, id string, out io.Writer) error {
	article, err := gw.GetArticle(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("article %s: %w", id, err)
	}
	if err != nil {
		return fmt.Errorf("get article: %w", err)
	}

	renderArticle(out, *article)
	return nil
}
