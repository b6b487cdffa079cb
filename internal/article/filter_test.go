package article

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penlight/blog-api-core/internal/article/entity"
)

func TestBuildListQueryAnonymous(t *testing.T) {
	q, empty, err := BuildListQuery("", nil, "")
	require.NoError(t, err)
	assert.False(t, empty)
	assert.Equal(t, []string{"published"}, q.Statuses)
	assert.Empty(t, q.DraftAuthor)
}

func TestBuildListQueryAnonymousDraftOnly(t *testing.T) {
	_, empty, err := BuildListQuery("", []string{"draft"}, "")
	require.NoError(t, err)
	assert.True(t, empty, "draft-only request from anonymous caller matches nothing")
}

func TestBuildListQueryAnonymousIntersectsWithPublished(t *testing.T) {
	q, empty, err := BuildListQuery("", []string{"draft", "published"}, "")
	require.NoError(t, err)
	assert.False(t, empty)
	assert.Equal(t, []string{"published"}, q.Statuses)
}

func TestBuildListQueryRejectsUnknownStatuses(t *testing.T) {
	_, _, err := BuildListQuery("", []string{"archived"}, "")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, _, err = BuildListQuery("u1", []string{"archived", "junk"}, "")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestBuildListQueryDropsUnknownWhenValidRemains(t *testing.T) {
	q, empty, err := BuildListQuery("", []string{"published", "archived"}, "")
	require.NoError(t, err)
	assert.False(t, empty)
	assert.Equal(t, []string{"published"}, q.Statuses)
}

func TestBuildListQueryAuthenticatedDefaultExcludesOwnDrafts(t *testing.T) {
	q, empty, err := BuildListQuery("u1", nil, "")
	require.NoError(t, err)
	assert.False(t, empty)
	assert.Equal(t, []string{"published"}, q.Statuses)
	assert.Empty(t, q.DraftAuthor)
}

func TestBuildListQueryAuthenticatedDraftUnionsOwnDrafts(t *testing.T) {
	q, empty, err := BuildListQuery("u1", []string{"draft", "published"}, "")
	require.NoError(t, err)
	assert.False(t, empty)
	assert.Equal(t, "u1", q.DraftAuthor)
	assert.Equal(t, []string{"published"}, q.Statuses)

	q, _, err = BuildListQuery("u1", []string{"draft"}, "")
	require.NoError(t, err)
	assert.Equal(t, "u1", q.DraftAuthor)
	assert.Empty(t, q.Statuses)
}

func TestBuildListQueryAuthenticatedWithoutDraft(t *testing.T) {
	q, empty, err := BuildListQuery("u1", []string{"published"}, "")
	require.NoError(t, err)
	assert.False(t, empty)
	assert.Empty(t, q.DraftAuthor)
	assert.Equal(t, []string{"published"}, q.Statuses)
}

func TestBuildListQueryAuthorFilterPassesThrough(t *testing.T) {
	q, _, err := BuildListQuery("u1", []string{"draft"}, "a9")
	require.NoError(t, err)
	assert.Equal(t, "a9", q.Author)
	assert.Equal(t, "u1", q.DraftAuthor)
}

func TestNewPaginationMeta(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		total       int
		want        entity.PaginationMeta
	}{
		{
			name: "empty result", page: 1, limit: 10, total: 0,
			want: entity.PaginationMeta{CurrentPage: 1, TotalPages: 0, TotalItems: 0, ItemsPerPage: 10},
		},
		{
			name: "middle page", page: 2, limit: 10, total: 25,
			want: entity.PaginationMeta{CurrentPage: 2, TotalPages: 3, TotalItems: 25, ItemsPerPage: 10, HasNextPage: true, HasPrevPage: true},
		},
		{
			name: "last page", page: 3, limit: 10, total: 21,
			want: entity.PaginationMeta{CurrentPage: 3, TotalPages: 3, TotalItems: 21, ItemsPerPage: 10, HasPrevPage: true},
		},
		{
			name: "exact fit", page: 1, limit: 10, total: 10,
			want: entity.PaginationMeta{CurrentPage: 1, TotalPages: 1, TotalItems: 10, ItemsPerPage: 10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := entity.NewPaginationMeta(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePageAndLimit(t *testing.T) {
	assert.Equal(t, 1, parsePage(""))
	assert.Equal(t, 1, parsePage("0"))
	assert.Equal(t, 1, parsePage("junk"))
	assert.Equal(t, 7, parsePage("7"))

	assert.Equal(t, 10, parseLimit(""))
	assert.Equal(t, 10, parseLimit("junk"))
	assert.Equal(t, 1, parseLimit("0"))
	assert.Equal(t, 100, parseLimit("500"))
	assert.Equal(t, 25, parseLimit("25"))
}
