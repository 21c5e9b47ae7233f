package epic

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"scroll_feed/internal/domain"
)

type Gateway interface {
	GetTags(ctx context.Context) ([]string, error)
	GetArticles(ctx context.Context, maxReadingTime int) ([]domain.Article, error)
}
