package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"rsvp-chunker/internal/app"
	"rsvp-chunker/internal/httputil"
)

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := httputil.Serve(ctx, deps.Log, deps.Config.Port, newRouter(deps)); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
}

func newRouter(deps app.Deps) *chi.Mux {
	r := httputil.NewRouter(deps.Log)

	r.Route("/api/jobs", func(r chi.Router) {
		r.Post("/", createJobHandler(deps))
		r.Post("/upload", uploadHandler(deps))
		r.Get("/{id}", jobHandler(deps))
		r.Get("/{id}/chunks", chunksHandler(deps))
		r.Get("/{id}/tokens", tokensHandler(deps))
		r.Get("/{id}/lines", linesHandler(deps))
		r.Get("/{id}/seek", seekHandler(deps))
	})
	r.Route("/api/bookmarks", func(r chi.Router) {
		r.Post("/", createBookmarkHandler(deps))
		r.Get("/", listBookmarksHandler(deps))
		r.Get("/{id}", bookmarkHandler(deps))
		r.Delete("/{id}", deleteBookmarkHandler(deps))
		r.Post("/{id}/open", openBookmarkHandler(deps))
	})
	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	return r
}
