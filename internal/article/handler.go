package article

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/penlight/blog-api-core/internal/article/entity"
	"github.com/penlight/blog-api-core/internal/identity"
	"github.com/penlight/blog-api-core/internal/validate"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// Handler exposes HTTP endpoints for article CRUD and listing.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// List handles GET /articles with status, author, page and limit query
// parameters. The status parameter is repeatable.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	callerID := ""
	if caller, ok := identity.FromContext(r.Context()); ok {
		callerID = caller.ID
	}
	page := parsePage(query.Get("page"))
	limit := parseLimit(query.Get("limit"))

	result, err := h.svc.List(r.Context(), callerID, query["status"], query.Get("author"), page, limit)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": ErrInvalidStatus.Error()})
			return
		}
		h.serverError(w, "list articles failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// Get handles GET /articles/{id}. Draft articles are only served to their
// author.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	callerID := ""
	if caller, ok := identity.FromContext(r.Context()); ok {
		callerID = caller.ID
	}
	a, err := h.svc.Get(r.Context(), callerID, chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "article not found"})
		case errors.Is(err, ErrForbidden):
			h.writeJSON(w, http.StatusForbidden, map[string]string{"error": "access denied"})
		default:
			h.serverError(w, "get article failed", err)
		}
		return
	}
	h.writeJSON(w, http.StatusOK, entity.NewPublicArticle(a))
}

// Request is the payload for create and update.
type Request struct {
	Title   string   `json:"title" validate:"required,max=200"`
	Content string   `json:"content" validate:"required,max=50000"`
	Status  string   `json:"status" validate:"omitempty,oneof=draft published"`
	Tags    []string `json:"tags" validate:"omitempty,dive,max=50"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if details := validate.Struct(req); details != nil {
		h.writeValidation(w, details)
		return
	}
	a, err := h.svc.Create(r.Context(), caller.ID, caller.Name, req.Title, req.Content, req.Status, req.Tags)
	if err != nil {
		if errors.Is(err, ErrDuplicateTitle) {
			h.writeJSON(w, http.StatusConflict, map[string]string{"error": "an article with this title already exists"})
			return
		}
		h.serverError(w, "create article failed", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"message": "article created successfully",
		"data":    map[string]any{"article": entity.NewPublicArticle(a)},
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if details := validate.Struct(req); details != nil {
		h.writeValidation(w, details)
		return
	}
	a, err := h.svc.Update(r.Context(), caller.ID, chi.URLParam(r, "id"), req.Title, req.Content, req.Status, req.Tags)
	if err != nil {
		h.writeMutationError(w, "update article failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message": "article updated successfully",
		"data":    map[string]any{"article": entity.NewPublicArticle(a)},
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}
	if err := h.svc.Delete(r.Context(), caller.ID, chi.URLParam(r, "id")); err != nil {
		h.writeMutationError(w, "delete article failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "article deleted successfully"})
}

func (h *Handler) writeMutationError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "article not found"})
	case errors.Is(err, ErrForbidden):
		h.writeJSON(w, http.StatusForbidden, map[string]string{"error": "access denied"})
	case errors.Is(err, ErrDuplicateTitle):
		h.writeJSON(w, http.StatusConflict, map[string]string{"error": "an article with this title already exists"})
	default:
		h.serverError(w, msg, err)
	}
}

// parsePage parses the page parameter, defaulting to 1 and clamping below.
func parsePage(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return defaultPage
	}
	return n
}

// parseLimit parses the limit parameter, defaulting to 10 and clamping to
// [1, 100].
func parseLimit(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return defaultLimit
	}
	if n < 1 {
		return 1
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

func (h *Handler) writeValidation(w http.ResponseWriter, details []validate.Detail) {
	h.writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":   "validation failed",
		"details": details,
	})
}

func (h *Handler) serverError(w http.ResponseWriter, msg string, err error) {
	h.logger.Errorw(msg, "err", err)
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server error"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
