package epic

import "scroll_feed/internal/domain"

// FilterByTags keeps the articles that carry every selected tag. An empty
// selection keeps everything. Reading time is filtered server-side and is
// not checked again here.
func FilterByTags(articles []domain.Article, selected []string) []domain.Article {
	if len(selected) == 0 {
		return articles
	}

	filtered := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if a.HasAllTags(selected) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}
