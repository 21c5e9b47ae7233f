//go:build integration

package postgres

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"scroll_feed/internal/domain"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	migrationsPath, err := filepath.Abs("../../../migrations")
	s.Require().NoError(err)

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "001_create_catalog.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sqlx.Connect("postgres", connStr)
	s.Require().NoError(err)
	s.db = db
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM article_tags")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM tags")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM articles")
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) seed(articles ...domain.Article) {
	articleStore := NewArticleStore(s.db)
	tagStore := NewTagStore(s.db)

	for i := range articles {
		a := &articles[i]
		s.Require().NoError(articleStore.Upsert(s.ctx, a))
		s.Require().NoError(tagStore.UpsertBatch(s.ctx, a.Tags))
		s.Require().NoError(tagStore.LinkToArticle(s.ctx, a.ID, a.Tags))
	}
}

func (s *PostgresIntegrationSuite) TestArticleStore_ListByReadingTime() {
	s.seed(
		domain.Article{ID: "1", Title: "Stars", ReadingTime: 3, CoinsOffered: 10, Tags: []string{"Science", "Health"}},
		domain.Article{ID: "2", Title: "Markets", ReadingTime: 4, Tags: []string{"Business"}},
		domain.Article{ID: "3", Title: "Long read", ReadingTime: 8},
	)
	store := NewArticleStore(s.db)

	articles, err := store.List(s.ctx, 4)
	s.NoError(err)
	s.Require().Len(articles, 2)
	s.Equal(domain.Article{
		ID: "1", Title: "Stars", ReadingTime: 3, CoinsOffered: 10,
		Tags: []string{"Science", "Health"},
	}, articles[0])
	s.Equal("2", articles[1].ID)

	all, err := store.ListAll(s.ctx)
	s.NoError(err)
	s.Len(all, 3)
	s.Nil(all[2].Tags)
}

func (s *PostgresIntegrationSuite) TestArticleStore_ListZeroBoundMatchesNothing() {
	s.seed(
		domain.Article{ID: "1", Title: "Stars", ReadingTime: 3},
		domain.Article{ID: "2", Title: "Sleep", ReadingTime: 1},
	)
	store := NewArticleStore(s.db)

	none, err := store.List(s.ctx, 0)
	s.NoError(err)
	s.Empty(none)

	negative, err := store.List(s.ctx, -3)
	s.NoError(err)
	s.Empty(negative)

	one, err := store.List(s.ctx, 1)
	s.NoError(err)
	s.Require().Len(one, 1)
	s.Equal("2", one[0].ID)
}

func (s *PostgresIntegrationSuite) TestArticleStore_UpsertOverwrites() {
	store := NewArticleStore(s.db)

	article := &domain.Article{ID: "1", Title: "Original", ReadingTime: 3}
	s.NoError(store.Upsert(s.ctx, article))

	article.Title = "Updated"
	article.ReadingTime = 6
	s.NoError(store.Upsert(s.ctx, article))

	got, err := store.Get(s.ctx, "1")
	s.NoError(err)
	s.Equal("Updated", got.Title)
	s.Equal(6, got.ReadingTime)
}

func (s *PostgresIntegrationSuite) TestArticleStore_GetNotFound() {
	store := NewArticleStore(s.db)

	got, err := store.Get(s.ctx, "missing")
	s.Nil(got)
	s.True(errors.Is(err, domain.ErrNotFound))
}

func (s *PostgresIntegrationSuite) TestArticleStore_GetExistingIDs() {
	s.seed(
		domain.Article{ID: "100", Title: "a", ReadingTime: 2},
		domain.Article{ID: "200", Title: "b", ReadingTime: 2},
	)
	store := NewArticleStore(s.db)

	result, err := store.GetExistingIDs(s.ctx, []string{"100", "200", "999"})
	s.NoError(err)
	s.Equal(map[string]bool{"100": true, "200": true}, result)
}

func (s *PostgresIntegrationSuite) TestTagStore_ListKeepsInsertionOrder() {
	store := NewTagStore(s.db)

	s.NoError(store.UpsertBatch(s.ctx, []string{"Technology", "Science"}))
	s.NoError(store.UpsertBatch(s.ctx, []string{"Science", "Art"}))

	tags, err := store.List(s.ctx)
	s.NoError(err)
	s.Equal([]string{"Technology", "Science", "Art"}, tags)
}

func (s *PostgresIntegrationSuite) TestTagStore_LinkToArticle_ReplacesOld() {
	s.seed(domain.Article{ID: "1", Title: "a", ReadingTime: 2, Tags: []string{"Science", "Health"}})
	tagStore := NewTagStore(s.db)

	s.NoError(tagStore.UpsertBatch(s.ctx, []string{"Art"}))
	s.NoError(tagStore.LinkToArticle(s.ctx, "1", []string{"Art"}))

	labels, err := tagStore.GetByArticleID(s.ctx, "1")
	s.NoError(err)
	s.Equal([]string{"Art"}, labels)
}

func (s *PostgresIntegrationSuite) TestTransaction_Commit() {
	tm := NewTransactionManager(s.db)
	articleStore := NewArticleStore(s.db)

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		return articleStore.Upsert(ctx, &domain.Article{ID: "999", Title: "tx", ReadingTime: 4})
	})
	s.NoError(err)

	var count int
	err = s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM articles WHERE id = $1", "999")
	s.NoError(err)
	s.Equal(1, count)
}

func (s *PostgresIntegrationSuite) TestTransaction_Rollback() {
	tm := NewTransactionManager(s.db)
	articleStore := NewArticleStore(s.db)
	s.seed(domain.Article{ID: "888", Title: "pre-existing", ReadingTime: 2})

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		if err := articleStore.Upsert(ctx, &domain.Article{ID: "777", Title: "rollback", ReadingTime: 2}); err != nil {
			return err
		}
		return context.Canceled
	})
	s.Error(err)

	var count int
	err = s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM articles WHERE id = $1", "777")
	s.NoError(err)
	s.Equal(0, count)

	err = s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM articles WHERE id = $1", "888")
	s.NoError(err)
	s.Equal(1, count)
}
