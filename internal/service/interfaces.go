package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"scroll_feed/internal/domain"
)

type ArticleStore interface {
	Upsert(ctx context.Context, article *domain.Article) error
	GetExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)
}

type TagStore interface {
	UpsertBatch(ctx context.Context, labels []string) error
	LinkToArticle(ctx context.Context, articleID string, labels []string) error
}

type Source interface {
	Name() string
	FetchCatalog(ctx context.Context) (*domain.Catalog, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, article *domain.Article, isNew bool) error
	Close() error
}
