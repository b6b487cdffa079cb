package pageview

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/penlight/blog-api-core/internal/pageview/entity"
)

func newTestHandler(repo *mockRepo) *Handler {
	return NewHandler(NewService(repo), zap.NewNop().Sugar())
}

func TestRecordEndpoint(t *testing.T) {
	repo := new(mockRepo)
	ref := &entity.ArticleRef{ID: "a1", Title: "hello", Status: "published"}
	repo.On("PublishedArticle", mock.Anything, "a1").Return(ref, nil)
	repo.On("Insert", mock.Anything, mock.MatchedBy(func(v *entity.PageView) bool {
		return v.ArticleID == "a1" && v.IPAddress == "203.0.113.7"
	})).Return(nil)
	h := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodPost, "/page-views", strings.NewReader(`{"article":"a1"}`))
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	req.Header.Set("User-Agent", chromeUA)
	rec := httptest.NewRecorder()
	h.Record(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "page view tracked successfully")
	repo.AssertExpectations(t)
}

func TestRecordEndpointUnknownArticle(t *testing.T) {
	repo := new(mockRepo)
	repo.On("PublishedArticle", mock.Anything, "gone").Return(nil, sql.ErrNoRows)
	h := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodPost, "/page-views", strings.NewReader(`{"article":"gone"}`))
	rec := httptest.NewRecorder()
	h.Record(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordEndpointRequiresArticle(t *testing.T) {
	h := newTestHandler(new(mockRepo))

	req := httptest.NewRequest(http.MethodPost, "/page-views", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Record(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation failed")
}

func TestAggregateEndpointRejectsBadInterval(t *testing.T) {
	h := newTestHandler(new(mockRepo))

	req := httptest.NewRequest(http.MethodGet, "/page-views/aggregate-date?interval=weekly", nil)
	rec := httptest.NewRecorder()
	h.Aggregate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid interval")
}

func TestCountEndpointRejectsBadDate(t *testing.T) {
	h := newTestHandler(new(mockRepo))

	req := httptest.NewRequest(http.MethodGet, "/page-views/count?startAt=junk", nil)
	rec := httptest.NewRecorder()
	h.Count(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid date range")
}
