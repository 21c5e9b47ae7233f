package server

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"scroll_feed/internal/domain"
)

type TagReader interface {
	List(ctx context.Context) ([]string, error)
}

type ArticleReader interface {
	List(ctx context.Context, maxReadingTime int) ([]domain.Article, error)
	ListAll(ctx context.Context) ([]domain.Article, error)
	Get(ctx context.Context, id string) (*domain.Article, error)
}
