package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/penlight/blog-api-core/internal/pageview"
	"github.com/penlight/blog-api-core/internal/pageview/entity"
)

// bucketSpec maps an aggregation interval to the date_trunc unit and the
// to_char label format.
var bucketSpec = map[pageview.Interval]struct {
	Trunc  string
	Format string
}{
	pageview.IntervalHourly:  {Trunc: "hour", Format: "YYYY-MM-DD HH24:00"},
	pageview.IntervalDaily:   {Trunc: "day", Format: "YYYY-MM-DD"},
	pageview.IntervalMonthly: {Trunc: "month", Format: "YYYY-MM"},
}

// PageViewRepo provides data access for the page_views table using sqlx.
// Analytics queries aggregate in the database, bucketing on the session
// time zone configured at connect time.
type PageViewRepo struct {
	db *sqlx.DB
}

func NewPageViewRepo(db *sqlx.DB) *PageViewRepo { return &PageViewRepo{db: db} }

// EnsureTable creates the page_views table and its indexes if not exists
// (idempotent).
func (r *PageViewRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS page_views (
  id BIGINT PRIMARY KEY,
  article_id TEXT NOT NULL,
  viewed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  ip_address TEXT NOT NULL,
  user_agent TEXT,
  device_type TEXT NOT NULL DEFAULT 'unknown' CHECK (device_type IN ('mobile','tablet','desktop','unknown')),
  device_os TEXT,
  device_browser TEXT
);
CREATE INDEX IF NOT EXISTS idx_page_views_article ON page_views (article_id);
CREATE INDEX IF NOT EXISTS idx_page_views_viewed_at ON page_views (viewed_at);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// PublishedArticle returns the (id, title, status) tuple of an article
// that is currently published and not soft-deleted, or sql.ErrNoRows.
func (r *PageViewRepo) PublishedArticle(ctx context.Context, id string) (*entity.ArticleRef, error) {
	const q = `SELECT id, title, status FROM articles WHERE id=$1 AND deleted=FALSE AND status='published'`
	var ref entity.ArticleRef
	if err := r.db.GetContext(ctx, &ref, q, id); err != nil {
		return nil, err
	}
	return &ref, nil
}

// Insert stores one view record. viewed_at defaults to now() in the store.
func (r *PageViewRepo) Insert(ctx context.Context, v *entity.PageView) error {
	const q = `INSERT INTO page_views (id, article_id, ip_address, user_agent, device_type, device_os, device_browser)
	           VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING viewed_at`
	return r.db.QueryRowxContext(ctx, q,
		v.ID, v.ArticleID, v.IPAddress, v.UserAgent, v.DeviceType, v.DeviceOS, v.DeviceBrowser).
		Scan(&v.ViewedAt)
}

// buildWhere translates a Filter into a WHERE clause over the joined
// view/article rows.
func buildWhere(f pageview.Filter) (string, []any) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.ArticleID != "" {
		conds = append(conds, "v.article_id = "+arg(f.ArticleID))
	}
	if f.StartAt != nil {
		conds = append(conds, "v.viewed_at >= "+arg(*f.StartAt))
	}
	if f.EndAt != nil {
		conds = append(conds, "v.viewed_at <= "+arg(*f.EndAt))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// Count returns the total matching views and the distinct article tuples
// they reference.
func (r *PageViewRepo) Count(ctx context.Context, f pageview.Filter) (*entity.CountResult, error) {
	where, args := buildWhere(f)
	q := fmt.Sprintf(`SELECT COUNT(*) AS count,
	       COALESCE(jsonb_agg(DISTINCT jsonb_build_object('id', a.id, 'title', a.title, 'status', a.status)), '[]') AS articles
	FROM page_views v
	JOIN articles a ON a.id = v.article_id
	%s`, where)

	var row struct {
		Count    int64  `db:"count"`
		Articles []byte `db:"articles"`
	}
	if err := r.db.GetContext(ctx, &row, q, args...); err != nil {
		return nil, fmt.Errorf("count page views: %w", err)
	}
	result := &entity.CountResult{Count: row.Count, Articles: []entity.ArticleRef{}}
	if err := json.Unmarshal(row.Articles, &result.Articles); err != nil {
		return nil, fmt.Errorf("decode article tuples: %w", err)
	}
	return result, nil
}

// AggregateByInterval groups matching views into calendar buckets and
// returns them ascending by bucket key.
func (r *PageViewRepo) AggregateByInterval(ctx context.Context, f pageview.Filter, interval pageview.Interval) ([]entity.Bucket, error) {
	spec, ok := bucketSpec[interval]
	if !ok {
		return nil, pageview.ErrInvalidInterval
	}
	where, args := buildWhere(f)
	q := fmt.Sprintf(`SELECT to_char(date_trunc('%s', v.viewed_at), '%s') AS date,
	       COUNT(*) AS count,
	       jsonb_agg(DISTINCT jsonb_build_object('id', a.id, 'title', a.title, 'status', a.status)) AS articles
	FROM page_views v
	JOIN articles a ON a.id = v.article_id
	%s
	GROUP BY 1
	ORDER BY 1`, spec.Trunc, spec.Format, where)

	rows, err := r.db.QueryxContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate page views: %w", err)
	}
	defer rows.Close()

	var buckets []entity.Bucket
	for rows.Next() {
		var row struct {
			Date     string `db:"date"`
			Count    int64  `db:"count"`
			Articles []byte `db:"articles"`
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("scan bucket: %w", err)
		}
		b := entity.Bucket{Date: row.Date, Count: row.Count, Articles: []entity.ArticleRef{}}
		if err := json.Unmarshal(row.Articles, &b.Articles); err != nil {
			return nil, fmt.Errorf("decode article tuples: %w", err)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}
