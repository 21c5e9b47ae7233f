package main

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"scroll_feed/internal/config"
	"scroll_feed/internal/domain"
	"scroll_feed/internal/epic"
	"scroll_feed/internal/gateway"
	"scroll_feed/internal/state"
)

// client is the in-memory feed session: one store, the effect processor
// feeding it and the gateway behind that.
type client struct {
	gateway   *gateway.Gateway
	processor *epic.Processor
	store     *state.Store
}

func newClient(cfg *config.Config, reg prometheus.Registerer, logger *slog.Logger) *client {
	gw := gateway.New(gateway.Config{
		BaseURL:        cfg.Gateway.BaseURL,
		Timeout:        cfg.Gateway.Timeout,
		MaxAttempts:    cfg.Gateway.Retry.MaxAttempts,
		InitialBackoff: cfg.Gateway.Retry.InitialBackoff,
		MaxBackoff:     cfg.Gateway.Retry.MaxBackoff,
	}, logger)

	processor := epic.NewProcessor(gw, epic.NewMetrics(reg), logger)

	return &client{
		gateway:   gw,
		processor: processor,
		store:     state.New(logger, processor),
	}
}

func (c *client) Close() {
	c.processor.Close()
}

// loadTags dispatches FetchTags and waits for its terminal action.
func (c *client) loadTags(ctx context.Context) (state.Slice[string], error) {
	c.store.Dispatch(state.FetchTags{})
	st, err := c.store.WaitFor(ctx, func(st state.State) bool { return !st.Tags.Loading })
	return st.Tags, err
}

// awaitArticles waits until no article request is outstanding.
func (c *client) awaitArticles(ctx context.Context) (state.Slice[domain.Article], error) {
	st, err := c.store.WaitFor(ctx, func(st state.State) bool { return !st.Articles.Loading })
	return st.Articles, err
}
