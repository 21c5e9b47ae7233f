package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type TagStore struct {
	db *sqlx.DB
}

func NewTagStore(db *sqlx.DB) *TagStore {
	return &TagStore{db: db}
}

// UpsertBatch stores labels, keeping first-seen order for new ones.
func (s *TagStore) UpsertBatch(ctx context.Context, labels []string) error {
	if len(labels) == 0 {
		return nil
	}

	query := `
		INSERT INTO tags (label)
		SELECT label FROM unnest($1::text[]) WITH ORDINALITY AS t(label, ord)
		ORDER BY ord
		ON CONFLICT (label) DO NOTHING`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, pq.Array(labels))
	return err
}

// LinkToArticle replaces the tag set of an article.
func (s *TagStore) LinkToArticle(ctx context.Context, articleID string, labels []string) error {
	exec := GetExecutor(ctx, s.db)

	_, err := exec.ExecContext(ctx,
		"DELETE FROM article_tags WHERE article_id = $1",
		articleID,
	)
	if err != nil {
		return err
	}

	if len(labels) == 0 {
		return nil
	}

	query := `
		INSERT INTO article_tags (article_id, tag_label, position)
		SELECT $1::text, label, ord FROM unnest($2::text[]) WITH ORDINALITY AS t(label, ord)
		ON CONFLICT DO NOTHING`

	_, err = exec.ExecContext(ctx, query, articleID, pq.Array(labels))
	return err
}

// List returns every tag label in insertion order.
func (s *TagStore) List(ctx context.Context) ([]string, error) {
	labels := []string{}
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &labels, `SELECT label FROM tags ORDER BY seq`)
	return labels, err
}

func (s *TagStore) GetByArticleID(ctx context.Context, articleID string) ([]string, error) {
	query := `
		SELECT tag_label
		FROM article_tags
		WHERE article_id = $1
		ORDER BY position`

	var labels []string
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &labels, query, articleID)
	return labels, err
}
