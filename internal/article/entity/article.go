package entity

import (
	"time"

	"github.com/lib/pq"
)

// Article statuses. "deleted" is the terminal marker stamped on soft
// delete; it is never accepted from callers.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusDeleted   = "deleted"
)

// Article represents a row in the `articles` table. AuthorName is filled
// by queries that join the author and stays nil otherwise (for instance
// when the author account was hard-deleted).
type Article struct {
	ID         string         `db:"id"`
	Title      string         `db:"title"`
	Content    string         `db:"content"`
	Status     string         `db:"status"`
	AuthorID   string         `db:"author_id"`
	Tags       pq.StringArray `db:"tags"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
	Deleted    bool           `db:"deleted"`
	DeletedAt  *time.Time     `db:"deleted_at"`
	AuthorName *string        `db:"author_name"`
}

// PublicArticle is the sanitized projection crossing the system boundary.
// Author carries the author's display name, or null when unresolved.
type PublicArticle struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	Author    *string   `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewPublicArticle(a *Article) PublicArticle {
	return PublicArticle{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		Status:    a.Status,
		Author:    a.AuthorName,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// PaginationMeta describes the position of a page within the full result.
type PaginationMeta struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

// NewPaginationMeta derives the metadata for a page of a result set of
// totalItems rows.
func NewPaginationMeta(page, limit, totalItems int) PaginationMeta {
	totalPages := 0
	if totalItems > 0 {
		totalPages = (totalItems + limit - 1) / limit
	}
	return PaginationMeta{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   totalItems,
		ItemsPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
}

// Page is a paginated listing response.
type Page struct {
	Data       []PublicArticle `json:"data"`
	Pagination PaginationMeta  `json:"pagination"`
}
