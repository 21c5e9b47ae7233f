// Package server exposes the article catalog over the HTTP contract the
// feed client consumes.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	tags     TagReader
	articles ArticleReader
	engine   *gin.Engine
	logger   *slog.Logger
}

// New builds the router. Metrics are registered on reg and, when gatherer is
// non-nil, served on /metrics.
func New(tags TagReader, articles ArticleReader, reg prometheus.Registerer, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	s := &Server{
		tags:     tags,
		articles: articles,
		logger:   logger.With("component", "server"),
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), observe(NewMetrics(reg), s.logger))

	engine.GET("/healthz", s.health)
	engine.GET("/tags", s.listTags)
	engine.GET("/articles", s.listArticles)
	engine.GET("/articles/:id", s.getArticle)
	if gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	s.engine = engine
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
