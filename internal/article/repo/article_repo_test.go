package repo

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penlight/blog-api-core/internal/article"
)

func TestBuildWhere(t *testing.T) {
	tests := []struct {
		name     string
		query    article.ListQuery
		want     string
		argCount int
	}{
		{
			name:     "no filters",
			query:    article.ListQuery{},
			want:     "WHERE a.deleted = FALSE",
			argCount: 0,
		},
		{
			name:     "statuses only",
			query:    article.ListQuery{Statuses: []string{"published"}},
			want:     "WHERE a.deleted = FALSE AND a.status = ANY($1)",
			argCount: 1,
		},
		{
			name:     "own drafts only",
			query:    article.ListQuery{DraftAuthor: "u1"},
			want:     "WHERE a.deleted = FALSE AND (a.status = 'draft' AND a.author_id = $1)",
			argCount: 1,
		},
		{
			name:     "own drafts unioned with statuses",
			query:    article.ListQuery{DraftAuthor: "u1", Statuses: []string{"published"}},
			want:     "WHERE a.deleted = FALSE AND ((a.status = 'draft' AND a.author_id = $1) OR a.status = ANY($2))",
			argCount: 2,
		},
		{
			name:     "author filter is ANDed",
			query:    article.ListQuery{DraftAuthor: "u1", Statuses: []string{"published"}, Author: "a9"},
			want:     "WHERE a.deleted = FALSE AND ((a.status = 'draft' AND a.author_id = $1) OR a.status = ANY($2)) AND a.author_id = $3",
			argCount: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildWhere(tt.query)
			assert.Equal(t, tt.want, where)
			assert.Len(t, args, tt.argCount)
		})
	}
}

func TestListTruncatesLongContentInQuery(t *testing.T) {
	db, dbmock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	long := strings.Repeat("x", 50) + "..."
	rows := sqlmock.NewRows([]string{
		"id", "title", "content", "status", "author_id", "tags",
		"created_at", "updated_at", "deleted", "deleted_at", "author_name",
	}).
		AddRow("a1", "long one", long, "published", "u1", "{go}", time.Now(), time.Now(), false, nil, "alice").
		AddRow("a2", "short one", "tiny", "published", "u1", "{}", time.Now(), time.Now(), false, nil, "alice")
	dbmock.ExpectQuery(`char_length\(a\.content\) >= 50 THEN left\(a\.content, 50\) \|\| '\.\.\.'`).
		WillReturnRows(rows)

	r := NewArticleRepo(sqlx.NewDb(db, "postgres"))
	got, err := r.List(context.Background(), article.ListQuery{Statuses: []string{"published"}}, 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, long, got[0].Content)
	assert.Equal(t, "tiny", got[1].Content)
	assert.NoError(t, dbmock.ExpectationsWereMet())
}
