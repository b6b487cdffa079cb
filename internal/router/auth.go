package router

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/penlight/blog-api-core/internal/identity"
	"github.com/penlight/blog-api-core/internal/token"
	userentity "github.com/penlight/blog-api-core/internal/user/entity"
)

// TokenVerifier checks a bearer token and returns the user id it carries.
type TokenVerifier interface {
	Verify(tokenString string) (string, error)
}

// RevocationChecker reports whether a token was invalidated before its
// natural expiry. Implementations are best-effort.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenString string) bool
}

// UserLoader resolves the user record behind a verified token.
type UserLoader interface {
	Get(ctx context.Context, id string) (*userentity.User, error)
}

// Authenticator resolves request identity from the bearer credential:
// revocation check first, then signature/expiry verification, then a user
// lookup. Token problems never distinguish themselves to the caller.
type Authenticator struct {
	verifier    TokenVerifier
	revocations RevocationChecker
	users       UserLoader
}

func NewAuthenticator(verifier TokenVerifier, revocations RevocationChecker, users UserLoader) *Authenticator {
	return &Authenticator{verifier: verifier, revocations: revocations, users: users}
}

// resolve returns the caller for a request, or false when the request
// carries no usable credential.
func (a *Authenticator) resolve(r *http.Request) (identity.Caller, bool) {
	tok := token.FromRequest(r)
	if tok == "" {
		return identity.Caller{}, false
	}
	if a.revocations.IsRevoked(r.Context(), tok) {
		return identity.Caller{}, false
	}
	userID, err := a.verifier.Verify(tok)
	if err != nil {
		return identity.Caller{}, false
	}
	u, err := a.users.Get(r.Context(), userID)
	if err != nil {
		return identity.Caller{}, false
	}
	return identity.Caller{ID: u.ID, Name: u.Name, Username: u.Username}, true
}

// RequireAuth rejects requests without a valid, unrevoked token.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := a.resolve(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid token"})
			return
		}
		next.ServeHTTP(w, r.WithContext(identity.WithCaller(r.Context(), caller)))
	})
}

// OptionalAuth attaches the caller when a valid token is presented and
// continues anonymously otherwise.
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if caller, ok := a.resolve(r); ok {
			r = r.WithContext(identity.WithCaller(r.Context(), caller))
		}
		next.ServeHTTP(w, r)
	})
}
