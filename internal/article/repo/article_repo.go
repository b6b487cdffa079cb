package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/penlight/blog-api-core/internal/article"
	"github.com/penlight/blog-api-core/internal/article/entity"
)

// listContentLimit is the prefix length shown in list views; longer content
// is cut there and suffixed with an ellipsis.
const listContentLimit = 50

// ArticleRepo provides data access for the articles table using sqlx.
type ArticleRepo struct {
	db *sqlx.DB
}

func NewArticleRepo(db *sqlx.DB) *ArticleRepo { return &ArticleRepo{db: db} }

// EnsureTable creates the articles table and its indexes if not exists
// (idempotent). The partial unique index backs the title-per-author rule
// among non-deleted articles; author_id carries no foreign key on purpose,
// account deletion neither cascades nor is blocked by remaining articles.
func (r *ArticleRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS articles (
  id TEXT PRIMARY KEY,
  title VARCHAR(200) NOT NULL,
  content TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  author_id TEXT NOT NULL,
  tags TEXT[] NOT NULL DEFAULT '{}',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  deleted BOOLEAN NOT NULL DEFAULT FALSE,
  deleted_at TIMESTAMPTZ
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_articles_author_title ON articles (author_id, title) WHERE NOT deleted;
CREATE INDEX IF NOT EXISTS idx_articles_author_status ON articles (author_id, status);
CREATE INDEX IF NOT EXISTS idx_articles_status_created ON articles (status, created_at DESC);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new article row and fills in the store-assigned
// timestamps.
func (r *ArticleRepo) Create(ctx context.Context, a *entity.Article) error {
	const q = `INSERT INTO articles (id, title, content, status, author_id, tags)
	           VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q, a.ID, a.Title, a.Content, a.Status, a.AuthorID, a.Tags).
		Scan(&a.CreatedAt, &a.UpdatedAt)
}

// GetVisible fetches a non-deleted article with its author's display name
// resolved, or sql.ErrNoRows.
func (r *ArticleRepo) GetVisible(ctx context.Context, id string) (*entity.Article, error) {
	const q = `SELECT a.id, a.title, a.content, a.status, a.author_id, a.tags,
	                  a.created_at, a.updated_at, a.deleted, a.deleted_at, u.name AS author_name
	           FROM articles a LEFT JOIN users u ON u.id = a.author_id
	           WHERE a.id = $1 AND a.deleted = FALSE`
	var a entity.Article
	if err := r.db.GetContext(ctx, &a, q, id); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAny fetches an article regardless of its soft-delete flag. Used for
// ownership checks on mutations.
func (r *ArticleRepo) GetAny(ctx context.Context, id string) (*entity.Article, error) {
	const q = `SELECT id, title, content, status, author_id, tags,
	                  created_at, updated_at, deleted, deleted_at
	           FROM articles WHERE id = $1`
	var a entity.Article
	if err := r.db.GetContext(ctx, &a, q, id); err != nil {
		return nil, err
	}
	return &a, nil
}

// TitleExists reports whether the author already has a non-deleted article
// with this title, excluding the row excludeID when non-empty.
func (r *ArticleRepo) TitleExists(ctx context.Context, authorID, title, excludeID string) (bool, error) {
	q := `SELECT EXISTS (SELECT 1 FROM articles WHERE author_id = $1 AND title = $2 AND deleted = FALSE`
	args := []any{authorID, title}
	if excludeID != "" {
		q += ` AND id <> $3`
		args = append(args, excludeID)
	}
	q += `)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, q, args...); err != nil {
		return false, err
	}
	return exists, nil
}

// buildWhere translates a ListQuery into a WHERE clause shared by Count
// and List so both always run over the same predicate.
func buildWhere(f article.ListQuery) (string, []any) {
	conds := []string{"a.deleted = FALSE"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch {
	case f.DraftAuthor != "" && len(f.Statuses) > 0:
		conds = append(conds, fmt.Sprintf("((a.status = 'draft' AND a.author_id = %s) OR a.status = ANY(%s))",
			arg(f.DraftAuthor), arg(pq.Array(f.Statuses))))
	case f.DraftAuthor != "":
		conds = append(conds, fmt.Sprintf("(a.status = 'draft' AND a.author_id = %s)", arg(f.DraftAuthor)))
	case len(f.Statuses) > 0:
		conds = append(conds, fmt.Sprintf("a.status = ANY(%s)", arg(pq.Array(f.Statuses))))
	}
	if f.Author != "" {
		conds = append(conds, fmt.Sprintf("a.author_id = %s", arg(f.Author)))
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// Count returns the number of articles matching the predicate.
func (r *ArticleRepo) Count(ctx context.Context, f article.ListQuery) (int, error) {
	where, args := buildWhere(f)
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM articles a `+where, args...); err != nil {
		return 0, err
	}
	return count, nil
}

// List returns one page of matching articles, newest first, with the
// author's display name joined and list-view content truncation applied in
// the query. Articles whose author row is gone are dropped, matching the
// join the count does not perform.
func (r *ArticleRepo) List(ctx context.Context, f article.ListQuery, limit, offset int) ([]*entity.Article, error) {
	where, args := buildWhere(f)
	q := fmt.Sprintf(`SELECT a.id, a.title,
	         CASE WHEN char_length(a.content) >= %d THEN left(a.content, %d) || '...' ELSE a.content END AS content,
	         a.status, a.author_id, a.tags, a.created_at, a.updated_at, a.deleted, a.deleted_at,
	         u.name AS author_name
	  FROM articles a JOIN users u ON u.id = a.author_id
	  %s
	  ORDER BY a.created_at DESC
	  LIMIT $%d OFFSET $%d`, listContentLimit, listContentLimit, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var articles []*entity.Article
	if err := r.db.SelectContext(ctx, &articles, q, args...); err != nil {
		return nil, err
	}
	return articles, nil
}

// Update rewrites title, content, status and tags, returning the updated
// row with the author name resolved, or sql.ErrNoRows.
func (r *ArticleRepo) Update(ctx context.Context, id, title, content, status string, tags []string) (*entity.Article, error) {
	const q = `UPDATE articles SET title=$2, content=$3, status=$4, tags=$5, updated_at=NOW()
	           WHERE id = $1
	           RETURNING id, title, content, status, author_id, tags,
	                     created_at, updated_at, deleted, deleted_at`
	var a entity.Article
	if err := r.db.GetContext(ctx, &a, q, id, title, content, status, pq.Array(tags)); err != nil {
		return nil, err
	}
	var name string
	err := r.db.GetContext(ctx, &name, `SELECT name FROM users WHERE id=$1`, a.AuthorID)
	if err == nil {
		a.AuthorName = &name
	}
	return &a, nil
}

// SoftDelete flags the row deleted and forces the terminal status. The row
// stays queryable internally but leaves every visibility path.
func (r *ArticleRepo) SoftDelete(ctx context.Context, id string) error {
	const q = `UPDATE articles SET deleted=TRUE, deleted_at=NOW(), status='deleted', updated_at=NOW() WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
