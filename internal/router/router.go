package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/penlight/blog-api-core/internal/article"
	"github.com/penlight/blog-api-core/internal/pageview"
	"github.com/penlight/blog-api-core/internal/user"
)

// Handlers bundles the domain handlers mounted by RegisterRoutes.
type Handlers struct {
	Users     *user.Handler
	Articles  *article.Handler
	PageViews *pageview.Handler
}

// RegisterRoutes mounts the HTTP surface on a chi router.
func RegisterRoutes(h Handlers, auth *Authenticator, logger *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(LoggingMiddleware(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", h.Users.Register)
		r.Post("/login", h.Users.Login)
		r.Post("/logout", h.Users.Logout)
		r.Get("/", h.Users.List)
		r.With(auth.OptionalAuth).Get("/{id}", h.Users.Get)
		r.With(auth.RequireAuth).Patch("/{id}", h.Users.Update)
		r.With(auth.RequireAuth).Delete("/{id}", h.Users.Delete)
	})

	r.Route("/articles", func(r chi.Router) {
		r.With(auth.OptionalAuth).Get("/", h.Articles.List)
		r.With(auth.OptionalAuth).Get("/{id}", h.Articles.Get)
		r.With(auth.RequireAuth).Post("/", h.Articles.Create)
		r.With(auth.RequireAuth).Patch("/{id}", h.Articles.Update)
		r.With(auth.RequireAuth).Delete("/{id}", h.Articles.Delete)
	})

	r.Route("/page-views", func(r chi.Router) {
		r.Post("/", h.PageViews.Record)
		r.With(auth.RequireAuth).Get("/count", h.PageViews.Count)
		r.With(auth.RequireAuth).Get("/aggregate-date", h.PageViews.Aggregate)
	})

	return r
}
