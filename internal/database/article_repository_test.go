package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newswatch/internal/domain"
)

func newMockRepository(t *testing.T) (*ArticleRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewArticleRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestFilterNovel(t *testing.T) {
	repo, mock := newMockRepository(t)

	candidates := []domain.Article{
		{ID: "1", Slug: "known", Title: "Known", SourceName: "src"},
		{ID: "2", Slug: "fresh", Title: "Fresh", SourceName: "src"},
	}

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("1", "known", "src", "Known").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("2", "fresh", "src", "Fresh").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	novel, err := repo.FilterNovel(context.Background(), candidates)
	require.NoError(t, err)
	require.Len(t, novel, 1)
	assert.Equal(t, "2", novel[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilterNovelQueryError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT EXISTS").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.FilterNovel(context.Background(), []domain.Article{{ID: "1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check novelty")
}

func TestUpsertCommitsBatch(t *testing.T) {
	repo, mock := newMockRepository(t)

	articles := []domain.Article{
		{ID: "1", Slug: "one", Title: "One", SourceName: "src", Embedding: pgvector.NewVector([]float32{1})},
		{ID: "2", Slug: "two", Title: "Two", SourceName: "src", Embedding: pgvector.NewVector([]float32{2})},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO articles").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO articles").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	count, err := repo.Upsert(context.Background(), articles)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertSkippedConflictNotCounted(t *testing.T) {
	repo, mock := newMockRepository(t)

	articles := []domain.Article{
		{ID: "1", Slug: "one", Title: "One", SourceName: "src"},
		{ID: "2", Slug: "two", Title: "Two", SourceName: "src"},
	}

	// The second insert conflicts with a row matching none of the
	// equivalence keys, so the guarded update writes nothing.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO articles").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO articles").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	count, err := repo.Upsert(context.Background(), articles)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertRollsBackOnError(t *testing.T) {
	repo, mock := newMockRepository(t)

	articles := []domain.Article{
		{ID: "1", Slug: "one", Title: "One", SourceName: "src"},
		{ID: "2", Slug: "two", Title: "Two", SourceName: "src"},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO articles").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO articles").WillReturnError(errors.New("value too long"))
	mock.ExpectRollback()

	count, err := repo.Upsert(context.Background(), articles)
	require.Error(t, err)
	assert.Zero(t, count)
	assert.Contains(t, err.Error(), "failed to insert article 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertEmptyBatch(t *testing.T) {
	repo, _ := newMockRepository(t)

	count, err := repo.Upsert(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCount(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM articles`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	total, err := repo.Count(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 7, total)
}

func TestCountBySource(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM articles WHERE source_name`).
		WithArgs("Coindesk").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	total, err := repo.Count(context.Background(), "Coindesk")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func listRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "slug", "title", "content", "clean_content", "published_at",
		"author_name", "category", "source_name", "source_url", "image_url",
		"article_url", "tags", "created_at", "updated_at",
	})
	now := time.Now()
	for _, id := range ids {
		rows.AddRow(id, "slug-"+id, "Title "+id, "content", "content", now,
			"author", "markets", "src", "https://src.test", "",
			"https://src.test/"+id, "{}", now, now)
	}
	return rows
}

func TestListPaginates(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM articles`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery("ORDER BY published_at DESC NULLS LAST").
		WithArgs(10, 10).
		WillReturnRows(listRows("11", "12"))

	articles, total, err := repo.List(context.Background(), 2, 10, "")
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, articles, 2)
	assert.Equal(t, "11", articles[0].ID)
	assert.NotNil(t, articles[0].Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEmptyPageIsNotAnError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM articles`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("ORDER BY published_at DESC NULLS LAST").
		WithArgs(10, 0).
		WillReturnRows(listRows())

	articles, total, err := repo.List(context.Background(), 1, 10, "")
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, articles)
	assert.Empty(t, articles)
}

func scoredRows(similarities ...float64) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "slug", "title", "content", "clean_content", "published_at",
		"author_name", "category", "source_name", "source_url", "image_url",
		"article_url", "tags", "created_at", "updated_at", "similarity",
	})
	now := time.Now()
	for i, s := range similarities {
		id := string(rune('a' + i))
		rows.AddRow(id, "slug-"+id, "Title "+id, "content", "content", now,
			"author", "markets", "src", "https://src.test", "",
			"https://src.test/"+id, "{}", now, now, s)
	}
	return rows
}

func TestSemanticSearch(t *testing.T) {
	repo, mock := newMockRepository(t)

	vec := pgvector.NewVector([]float32{0.1, 0.2})
	mock.ExpectQuery("ORDER BY embedding <=>").
		WithArgs(vec, 5).
		WillReturnRows(scoredRows(0.93, 0.81))

	results, err := repo.SemanticSearch(context.Background(), vec, 5, nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.InDelta(t, 0.93, results[0].Similarity, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSemanticSearchWithWindow(t *testing.T) {
	repo, mock := newMockRepository(t)

	vec := pgvector.NewVector([]float32{0.1})
	after := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE published_at >= \$2 AND published_at <= \$3`).
		WithArgs(vec, after, before, 5).
		WillReturnRows(scoredRows())

	results, err := repo.SemanticSearch(context.Background(), vec, 5, &after, &before)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NoError(t, mock.ExpectationsWereMet())
}
