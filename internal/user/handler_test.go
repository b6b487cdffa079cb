package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/penlight/blog-api-core/internal/identity"
	"github.com/penlight/blog-api-core/internal/user/entity"
)

type stubIssuer struct{}

func (stubIssuer) Issue(userID string) (string, error) { return "token-for-" + userID, nil }

type stubRevoker struct {
	revoked []string
}

func (s *stubRevoker) Revoke(_ context.Context, tok string) error {
	s.revoked = append(s.revoked, tok)
	return nil
}

func newTestHandler(repo *mockRepo, revocations *stubRevoker) *Handler {
	if revocations == nil {
		revocations = &stubRevoker{}
	}
	return NewHandler(NewUserService(repo, fastHasher{}), stubIssuer{}, revocations, zap.NewNop().Sugar())
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestRegisterEndpointIssuesToken(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetByUsername", mock.Anything, "alice").Return(nil, sql.ErrNoRows)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	h := newTestHandler(repo, nil)

	body := strings.NewReader(`{"name":"Alice","username":"alice","password":"secret123"}`)
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/users/register", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.User.Username)
	assert.True(t, strings.HasPrefix(resp.Token, "token-for-"))
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegisterEndpointValidation(t *testing.T) {
	h := newTestHandler(new(mockRepo), nil)

	body := strings.NewReader(`{"name":"Alice","username":"al","password":"short"}`)
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/users/register", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation failed")
}

func TestLoginEndpointRejectsBadCredentials(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetByUsername", mock.Anything, "alice").Return(nil, sql.ErrNoRows)
	h := newTestHandler(repo, nil)

	body := strings.NewReader(`{"username":"alice","password":"wrong"}`)
	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/users/login", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestLogoutRevokesPresentedToken(t *testing.T) {
	revocations := &stubRevoker{}
	h := newTestHandler(new(mockRepo), revocations)

	req := httptest.NewRequest(http.MethodPost, "/users/logout", nil)
	req.Header.Set("Authorization", "Bearer abc123")
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"abc123"}, revocations.revoked)
}

func TestLogoutWithoutTokenStillSucceeds(t *testing.T) {
	revocations := &stubRevoker{}
	h := newTestHandler(new(mockRepo), revocations)

	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/users/logout", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, revocations.revoked)
}

func TestGetProjectionDependsOnCaller(t *testing.T) {
	repo := new(mockRepo)
	stored := &entity.User{ID: "u1", Name: "Alice", Username: "alice", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	repo.On("GetByID", mock.Anything, "u1").Return(stored, nil)
	h := newTestHandler(repo, nil)

	// owner sees the full projection
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/users/u1", nil), "id", "u1")
	req = req.WithContext(identity.WithCaller(req.Context(), identity.Caller{ID: "u1"}))
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var full map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &full))
	assert.Contains(t, full, "createdAt")

	// everyone else sees the minimal projection
	req = withURLParam(httptest.NewRequest(http.MethodGet, "/users/u1", nil), "id", "u1")
	rec = httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var minimal map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &minimal))
	assert.NotContains(t, minimal, "createdAt")
	assert.Equal(t, "alice", minimal["username"])
}

func TestUpdateAcceptsPartialBody(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetByID", mock.Anything, "u1").Return(&entity.User{ID: "u1", Name: "Alice", Username: "alice"}, nil)
	repo.On("Update", mock.Anything, "u1", "Alice", "newalice").
		Return(&entity.User{ID: "u1", Name: "Alice", Username: "newalice"}, nil)
	h := newTestHandler(repo, nil)

	body := strings.NewReader(`{"username":"newalice"}`)
	req := withURLParam(httptest.NewRequest(http.MethodPatch, "/users/u1", body), "id", "u1")
	req = req.WithContext(identity.WithCaller(req.Context(), identity.Caller{ID: "u1"}))
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "newalice")
	repo.AssertExpectations(t)
}

func TestUpdateRejectsOtherUsers(t *testing.T) {
	h := newTestHandler(new(mockRepo), nil)

	body := strings.NewReader(`{"name":"Mallory","username":"mallory"}`)
	req := withURLParam(httptest.NewRequest(http.MethodPatch, "/users/u1", body), "id", "u1")
	req = req.WithContext(identity.WithCaller(req.Context(), identity.Caller{ID: "u2"}))
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteRequiresAuthentication(t *testing.T) {
	h := newTestHandler(new(mockRepo), nil)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/users/u1", nil), "id", "u1")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
