package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/penlight/blog-api-core/internal/article"
	articlerepo "github.com/penlight/blog-api-core/internal/article/repo"
	"github.com/penlight/blog-api-core/internal/pageview"
	pageviewrepo "github.com/penlight/blog-api-core/internal/pageview/repo"
	"github.com/penlight/blog-api-core/internal/router"
	"github.com/penlight/blog-api-core/internal/token"
	"github.com/penlight/blog-api-core/internal/user"
	userrepo "github.com/penlight/blog-api-core/internal/user/repo"
	"github.com/penlight/blog-api-core/pkg/database"
	"github.com/penlight/blog-api-core/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting blog-api-core")

	// init db
	db, err := database.Connect(database.ConfigFromEnv())
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// init revocation cache; the service stays up when the cache is down
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		sugar.Fatalf("parse REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		sugar.Warnf("redis unreachable, revocation checks degrade to no-op: %v", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret"
		sugar.Warn("JWT_SECRET not set, using insecure default")
	}

	// repositories and schema
	users := userrepo.NewUserRepo(db)
	articles := articlerepo.NewArticleRepo(db)
	pageViews := pageviewrepo.NewPageViewRepo(db)
	setupCtx, cancelSetup := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSetup()
	for name, ensure := range map[string]func(context.Context) error{
		"users":      users.EnsureTable,
		"articles":   articles.EnsureTable,
		"page_views": pageViews.EnsureTable,
	} {
		if err := ensure(setupCtx); err != nil {
			sugar.Fatalf("ensure table %s: %v", name, err)
		}
	}

	// services
	tokens := token.NewService(secret)
	revocations := token.NewRevocationSet(redisClient, sugar)
	userSvc := user.NewUserService(users, nil)
	articleSvc := article.NewService(articles)
	pageViewSvc := pageview.NewService(pageViews)

	handlers := router.Handlers{
		Users:     user.NewHandler(userSvc, tokens, revocations, sugar),
		Articles:  article.NewHandler(articleSvc, sugar),
		PageViews: pageview.NewHandler(pageViewSvc, sugar),
	}
	auth := router.NewAuthenticator(tokens, revocations, userSvc)

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := os.Getenv("SERVER_ADDRESS")
	if addr == "" {
		addr = "0.0.0.0:8080"
	}
	srv := &http.Server{
		Addr:    addr,
		Handler: router.RegisterRoutes(handlers, auth, sugar),
	}

	// run server in background
	go func() {
		sugar.Infof("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
