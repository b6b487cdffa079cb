package article

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/penlight/blog-api-core/internal/article/entity"
	"github.com/penlight/blog-api-core/pkg/database"
	"github.com/penlight/blog-api-core/pkg/utilities"
)

// Repository is the data access contract the service depends on.
type Repository interface {
	Create(ctx context.Context, a *entity.Article) error
	GetVisible(ctx context.Context, id string) (*entity.Article, error)
	GetAny(ctx context.Context, id string) (*entity.Article, error)
	TitleExists(ctx context.Context, authorID, title, excludeID string) (bool, error)
	Count(ctx context.Context, f ListQuery) (int, error)
	List(ctx context.Context, f ListQuery, limit, offset int) ([]*entity.Article, error)
	Update(ctx context.Context, id, title, content, status string, tags []string) (*entity.Article, error)
	SoftDelete(ctx context.Context, id string) error
}

var (
	ErrNotFound       = errors.New("article not found")
	ErrForbidden      = errors.New("access denied")
	ErrDuplicateTitle = errors.New("an article with this title already exists")
)

// Service owns article visibility rules, ownership checks and pagination.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns one page of articles visible to the caller (empty callerID
// means anonymous), per the status-filter rules in BuildListQuery.
func (s *Service) List(ctx context.Context, callerID string, statuses []string, author string, page, limit int) (*entity.Page, error) {
	q, empty, err := BuildListQuery(callerID, statuses, author)
	if err != nil {
		return nil, err
	}
	if empty {
		return &entity.Page{
			Data:       []entity.PublicArticle{},
			Pagination: entity.NewPaginationMeta(page, limit, 0),
		}, nil
	}

	total, err := s.repo.Count(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}
	rows, err := s.repo.List(ctx, q, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	data := make([]entity.PublicArticle, 0, len(rows))
	for _, a := range rows {
		data = append(data, entity.NewPublicArticle(a))
	}
	return &entity.Page{
		Data:       data,
		Pagination: entity.NewPaginationMeta(page, limit, total),
	}, nil
}

// Get returns a single article with full content. Drafts are visible only
// to their author.
func (s *Service) Get(ctx context.Context, callerID, id string) (*entity.Article, error) {
	a, err := s.repo.GetVisible(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if a.Status == entity.StatusDraft && (callerID == "" || callerID != a.AuthorID) {
		return nil, ErrForbidden
	}
	return a, nil
}

// Create stores a new article owned by the caller. The title must be
// unique among the author's non-deleted articles; the partial unique index
// backs the pre-check.
func (s *Service) Create(ctx context.Context, authorID, authorName, title, content, status string, tags []string) (*entity.Article, error) {
	if status == "" {
		status = entity.StatusDraft
	}
	exists, err := s.repo.TitleExists(ctx, authorID, title, "")
	if err != nil {
		return nil, fmt.Errorf("check title: %w", err)
	}
	if exists {
		return nil, ErrDuplicateTitle
	}
	a := &entity.Article{
		ID:         utilities.NewKSUID(),
		Title:      title,
		Content:    content,
		Status:     status,
		AuthorID:   authorID,
		Tags:       tags,
		AuthorName: &authorName,
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	if err := s.repo.Create(ctx, a); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateTitle
		}
		return nil, fmt.Errorf("create article: %w", err)
	}
	return a, nil
}

// Update applies title/content/status/tags after the ownership check.
// An empty status and nil tags keep the stored values, so patching the
// title of a published article does not unpublish it.
func (s *Service) Update(ctx context.Context, callerID, id, title, content, status string, tags []string) (*entity.Article, error) {
	current, err := s.getForMutation(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	if status == "" {
		status = current.Status
	}
	if tags == nil {
		tags = current.Tags
	}
	if tags == nil {
		tags = []string{}
	}
	exists, err := s.repo.TitleExists(ctx, callerID, title, id)
	if err != nil {
		return nil, fmt.Errorf("check title: %w", err)
	}
	if exists {
		return nil, ErrDuplicateTitle
	}
	a, err := s.repo.Update(ctx, id, title, content, status, tags)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateTitle
		}
		return nil, fmt.Errorf("update article: %w", err)
	}
	return a, nil
}

// Delete soft-deletes after the ownership check. The row keeps its data
// but is stamped deleted and leaves every visibility path.
func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	if _, err := s.getForMutation(ctx, callerID, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// getForMutation resolves the article behind a mutation and checks the
// caller owns it: ErrNotFound when it does not exist, ErrForbidden when
// the caller is not its author.
func (s *Service) getForMutation(ctx context.Context, callerID, id string) (*entity.Article, error) {
	a, err := s.repo.GetAny(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if a.AuthorID != callerID {
		return nil, ErrForbidden
	}
	return a, nil
}
