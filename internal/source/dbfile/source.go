package dbfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"scroll_feed/internal/domain"
)

// Source reads the article catalog from a JSON database file.
type Source struct {
	path   string
	logger *slog.Logger
}

func New(path string, logger *slog.Logger) *Source {
	return &Source{
		path:   path,
		logger: logger.With("source", filepath.Base(path)),
	}
}

// Name returns the file the catalog is read from.
func (s *Source) Name() string {
	return s.path
}

// FetchCatalog parses the file. Invalid articles are skipped; tags used by
// articles but missing from the tag list are appended to it.
func (s *Source) FetchCatalog(ctx context.Context) (*domain.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read db file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode db file: %w", err)
	}

	return s.transform(doc), nil
}

func (s *Source) transform(doc document) *domain.Catalog {
	catalog := &domain.Catalog{
		Articles: make([]domain.Article, 0, len(doc.Articles)),
	}

	for _, tag := range doc.Tags {
		if tag != "" && !slices.Contains(catalog.Tags, tag) {
			catalog.Tags = append(catalog.Tags, tag)
		}
	}

	seen := make(map[string]bool, len(doc.Articles))
	for _, a := range doc.Articles {
		if err := a.Validate(); err != nil {
			s.logger.Warn("skipping invalid article", "id", a.ID, "error", err)
			continue
		}
		if seen[a.ID] {
			s.logger.Warn("skipping duplicate article", "id", a.ID)
			continue
		}
		seen[a.ID] = true

		for _, tag := range a.Tags {
			if !slices.Contains(catalog.Tags, tag) {
				catalog.Tags = append(catalog.Tags, tag)
			}
		}

		catalog.Articles = append(catalog.Articles, a)
	}

	return catalog
}
