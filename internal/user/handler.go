package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/penlight/blog-api-core/internal/identity"
	"github.com/penlight/blog-api-core/internal/token"
	"github.com/penlight/blog-api-core/internal/user/entity"
	"github.com/penlight/blog-api-core/internal/validate"
)

// TokenIssuer signs identity tokens for freshly authenticated users.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Revoker invalidates a presented token ahead of its natural expiry.
type Revoker interface {
	Revoke(ctx context.Context, tokenString string) error
}

// Handler exposes HTTP endpoints for accounts: register, login, logout and
// profile CRUD.
type Handler struct {
	svc         *UserService
	tokens      TokenIssuer
	revocations Revoker
	logger      *zap.SugaredLogger
}

func NewHandler(svc *UserService, tokens TokenIssuer, revocations Revoker, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, tokens: tokens, revocations: revocations, logger: logger}
}

// RegisterRequest request body for the register endpoint.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthResponse is returned on registration and login.
type AuthResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    entity.PublicUser `json:"user"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if details := validate.Struct(req); details != nil {
		h.writeValidation(w, details)
		return
	}
	u, err := h.svc.Register(r.Context(), req.Name, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			h.writeJSON(w, http.StatusConflict, map[string]string{"error": "username already exists"})
			return
		}
		h.serverError(w, "register failed", err)
		return
	}
	tok, err := h.tokens.Issue(u.ID)
	if err != nil {
		h.serverError(w, "issue token failed", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, AuthResponse{
		Message: "user created successfully",
		Token:   tok,
		User:    entity.NewPublicUser(u),
	})
}

// LoginRequest login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if details := validate.Struct(req); details != nil {
		h.writeValidation(w, details)
		return
	}
	u, err := h.svc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid credentials"})
			return
		}
		h.serverError(w, "login failed", err)
		return
	}
	tok, err := h.tokens.Issue(u.ID)
	if err != nil {
		h.serverError(w, "issue token failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, AuthResponse{
		Message: "login successful",
		Token:   tok,
		User:    entity.NewPublicUser(u),
	})
}

// Logout revokes the presented token, if any. Succeeds either way.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if tok := token.FromRequest(r); tok != "" {
		if err := h.revocations.Revoke(r.Context(), tok); err != nil {
			h.serverError(w, "logout failed", err)
			return
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "logout successful"})
}

// List returns every account in the full projection.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		h.serverError(w, "list users failed", err)
		return
	}
	out := make([]entity.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, entity.NewPublicUser(u))
	}
	h.writeJSON(w, http.StatusOK, out)
}

// Get returns the full projection to the profile owner, the minimal one to
// anybody else.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		h.serverError(w, "get user failed", err)
		return
	}
	if caller, ok := identity.FromContext(r.Context()); ok && caller.ID == id {
		h.writeJSON(w, http.StatusOK, entity.NewPublicUser(u))
		return
	}
	h.writeJSON(w, http.StatusOK, entity.NewPublicUserMinimal(u))
}

// UpdateRequest payload for profile edits. Both fields are optional;
// omitted ones keep their stored values.
type UpdateRequest struct {
	Name     string `json:"name" validate:"omitempty,max=100"`
	Username string `json:"username" validate:"omitempty,min=3,max=30"`
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.callerOwns(w, r, id) {
		return
	}
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if details := validate.Struct(req); details != nil {
		h.writeValidation(w, details)
		return
	}
	u, err := h.svc.Update(r.Context(), id, req.Name, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		case errors.Is(err, ErrUsernameTaken):
			h.writeJSON(w, http.StatusConflict, map[string]string{"error": "username already exists"})
		default:
			h.serverError(w, "update user failed", err)
		}
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message": "user updated successfully",
		"data":    map[string]any{"user": entity.NewPublicUser(u)},
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.callerOwns(w, r, id) {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		h.serverError(w, "delete user failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted successfully"})
}

// callerOwns enforces that the authenticated caller targets their own
// record. Writes the denial response itself when the check fails.
func (h *Handler) callerOwns(w http.ResponseWriter, r *http.Request, id string) bool {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return false
	}
	if caller.ID != id {
		h.writeJSON(w, http.StatusForbidden, map[string]string{"error": "access denied"})
		return false
	}
	return true
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
