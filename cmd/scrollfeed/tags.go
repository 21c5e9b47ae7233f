package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the topics articles can be filtered by",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			c := newClient(cfg, nil, logger)
			defer c.Close()

			return runTags(cmd.Context(), c, os.Stdout)
		},
	}
}

func runTags(ctx context.Context, c *client, out io.Writer) error {
	tags, err := c.loadTags(ctx)
	if err != nil {
		return err
	}

	renderTags(out, tags, nil)
	if tags.Err != nil {
		return tags.Err
	}
	return nil
}
