package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"scroll_feed/internal/domain"
)

// SeedService loads a catalog source into storage and announces every
// stored article.
type SeedService struct {
	source    Source
	articles  ArticleStore
	tags      TagStore
	txManager TransactionManager
	publisher Publisher
	logger    *slog.Logger
}

func NewSeedService(
	source Source,
	articles ArticleStore,
	tags TagStore,
	txManager TransactionManager,
	publisher Publisher,
	logger *slog.Logger,
) *SeedService {
	return &SeedService{
		source:    source,
		articles:  articles,
		tags:      tags,
		txManager: txManager,
		publisher: publisher,
		logger:    logger.With("source", source.Name()),
	}
}

func (s *SeedService) Seed(ctx context.Context) (*domain.SeedStats, error) {
	startTime := time.Now()
	s.logger.Info("starting seed")

	catalog, err := s.source.FetchCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	s.logger.Info("fetched catalog",
		"tags", len(catalog.Tags),
		"articles", len(catalog.Articles),
	)

	if err := s.tags.UpsertBatch(ctx, catalog.Tags); err != nil {
		return nil, fmt.Errorf("upsert tags: %w", err)
	}

	ids := make([]string, len(catalog.Articles))
	for i, a := range catalog.Articles {
		ids[i] = a.ID
	}

	existing, err := s.articles.GetExistingIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get existing articles: %w", err)
	}

	stats := &domain.SeedStats{
		Fetched: len(catalog.Articles),
	}

	for i := range catalog.Articles {
		article := &catalog.Articles[i]
		isNew := !existing[article.ID]

		if err := s.saveArticle(ctx, article); err != nil {
			s.logger.Warn("failed to save article", "id", article.ID, "error", err)
			stats.Errors++
			continue
		}

		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, article, isNew); err != nil {
				s.logger.Warn("failed to publish article", "id", article.ID, "error", err)
				stats.Errors++
			} else {
				stats.Published++
			}
		}

		if isNew {
			stats.New++
		} else {
			stats.Updated++
		}
	}

	stats.Duration = time.Since(startTime)

	s.logger.Info("seed completed",
		"new", stats.New,
		"updated", stats.Updated,
		"errors", stats.Errors,
		"published", stats.Published,
		"duration", stats.Duration,
	)

	return stats, nil
}

func (s *SeedService) saveArticle(ctx context.Context, article *domain.Article) error {
	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.articles.Upsert(txCtx, article); err != nil {
			return fmt.Errorf("upsert article: %w", err)
		}

		if err := s.tags.LinkToArticle(txCtx, article.ID, article.Tags); err != nil {
			return fmt.Errorf("link tags: %w", err)
		}

		return nil
	})
}
