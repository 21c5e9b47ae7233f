package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"scroll_feed/internal/domain"
)

type ArticleStore struct {
	db *sqlx.DB
}

func NewArticleStore(db *sqlx.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

type articleRow struct {
	ID           string         `db:"id"`
	Title        string         `db:"title"`
	Summary      string         `db:"summary"`
	ReadingTime  int            `db:"reading_time"`
	CoinsOffered int            `db:"coins_offered"`
	Tags         pq.StringArray `db:"tags"`
}

func (r articleRow) toDomain() domain.Article {
	a := domain.Article{
		ID:           r.ID,
		Title:        r.Title,
		Summary:      r.Summary,
		ReadingTime:  r.ReadingTime,
		CoinsOffered: r.CoinsOffered,
	}
	if len(r.Tags) > 0 {
		a.Tags = []string(r.Tags)
	}
	return a
}

const selectArticles = `
	SELECT a.id, a.title, a.summary, a.reading_time, a.coins_offered,
		COALESCE(
			array_agg(at.tag_label ORDER BY at.position) FILTER (WHERE at.tag_label IS NOT NULL),
			'{}'
		) AS tags
	FROM articles a
	LEFT JOIN article_tags at ON at.article_id = a.id`

// Upsert inserts the article or overwrites its fields. Tags are linked
// separately through TagStore.
func (s *ArticleStore) Upsert(ctx context.Context, article *domain.Article) error {
	query := `
		INSERT INTO articles (id, title, summary, reading_time, coins_offered)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			reading_time = EXCLUDED.reading_time,
			coins_offered = EXCLUDED.coins_offered,
			updated_at = NOW()`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		article.ID,
		article.Title,
		article.Summary,
		article.ReadingTime,
		article.CoinsOffered,
	)
	return err
}

// List returns articles no longer than maxReadingTime minutes in catalog
// order. Every stored article is at least one minute long, so a bound below
// one matches nothing.
func (s *ArticleStore) List(ctx context.Context, maxReadingTime int) ([]domain.Article, error) {
	query := selectArticles + `
		WHERE a.reading_time <= $1
		GROUP BY a.id
		ORDER BY a.seq`

	return s.list(ctx, query, maxReadingTime)
}

// ListAll returns every article in catalog order.
func (s *ArticleStore) ListAll(ctx context.Context) ([]domain.Article, error) {
	query := selectArticles + `
		GROUP BY a.id
		ORDER BY a.seq`

	return s.list(ctx, query)
}

func (s *ArticleStore) list(ctx context.Context, query string, args ...any) ([]domain.Article, error) {
	var rows []articleRow
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, query, args...); err != nil {
		return nil, err
	}

	articles := make([]domain.Article, 0, len(rows))
	for _, r := range rows {
		articles = append(articles, r.toDomain())
	}
	return articles, nil
}

// Get returns one article or domain.ErrNotFound.
func (s *ArticleStore) Get(ctx context.Context, id string) (*domain.Article, error) {
	query := selectArticles + `
		WHERE a.id = $1
		GROUP BY a.id`

	var row articleRow
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	article := row.toDomain()
	return &article, nil
}

// GetExistingIDs reports which of ids are already stored.
func (s *ArticleStore) GetExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	if len(ids) == 0 {
		return make(map[string]bool), nil
	}

	var found []string
	query := `SELECT id FROM articles WHERE id = ANY($1)`
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &found, query, pq.Array(ids)); err != nil {
		return nil, err
	}

	result := make(map[string]bool, len(found))
	for _, id := range found {
		result[id] = true
	}
	return result, nil
}
