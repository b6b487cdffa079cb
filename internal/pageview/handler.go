package pageview

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/penlight/blog-api-core/internal/validate"
)

// Handler exposes HTTP endpoints for recording views and querying
// analytics.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RecordRequest body for POST /page-views.
type RecordRequest struct {
	Article string `json:"article" validate:"required"`
}

func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if details := validate.Struct(req); details != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "details": details})
		return
	}
	ref, err := h.svc.Record(r.Context(), req.Article, ClientIP(r), r.UserAgent())
	if err != nil {
		if errors.Is(err, ErrArticleNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "article not found"})
			return
		}
		h.serverError(w, "track page view failed", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"message": "page view tracked successfully",
		"data":    ref,
	})
}

func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	result, err := h.svc.Count(r.Context(), query.Get("article"), query.Get("startAt"), query.Get("endAt"))
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date range"})
			return
		}
		h.serverError(w, "page view count failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Aggregate(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	buckets, err := h.svc.Aggregate(r.Context(),
		query.Get("interval"), query.Get("article"), query.Get("startAt"), query.Get("endAt"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInterval):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid interval"})
		case errors.Is(err, ErrInvalidDate):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date range"})
		default:
			h.serverError(w, "page view aggregation failed", err)
		}
		return
	}
	h.writeJSON(w, http.StatusOK, buckets)
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
