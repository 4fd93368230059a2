package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"rsvp-chunker/internal/app"
	"rsvp-chunker/internal/httputil"
	"rsvp-chunker/internal/store"
)

const titleLength = 30

type createBookmarkRequest struct {
	JobID      uuid.UUID `json:"job_id" validate:"required"`
	TokenIndex int       `json:"token_index" validate:"gte=0"`
	Title      string    `json:"title" validate:"max=200"`
}

type bookmarkResponse struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	TargetLength int       `json:"target_length"`
	TokenIndex   int       `json:"token_index"`
	CreatedAt    time.Time `json:"created_at"`
	Text         string    `json:"text,omitempty"`
}

func toBookmarkResponse(b store.Bookmark, withText bool) bookmarkResponse {
	resp := bookmarkResponse{
		ID:           b.ID,
		Title:        b.Title,
		TargetLength: b.TargetLength,
		TokenIndex:   b.TokenIndex,
		CreatedAt:    b.CreatedAt,
	}
	if withText {
		resp.Text = b.Text
	}
	return resp
}

// defaultTitle is the first titleLength characters of text, marked with "..." when cut.
func defaultTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= titleLength {
		return text
	}
	return string(runes[:titleLength]) + "..."
}

func createBookmarkHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBookmarkRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.FailValidation(deps.Log, w, err)
			return
		}

		job, err := deps.Store.GetJob(r.Context(), req.JobID)
		if errors.Is(err, store.ErrJobNotFound) {
			httputil.Fail(deps.Log, w, "job not found", err, http.StatusNotFound)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to load job", err, http.StatusInternalServerError)
			return
		}
		if job.Status == store.StatusCompleted && job.Total > 0 && req.TokenIndex >= job.Total {
			httputil.FailValidation(deps.Log, w, &httputil.ValidationError{
				Fields: map[string]string{"token_index": "is past the end of the text"},
			})
			return
		}

		title := strings.TrimSpace(req.Title)
		if title == "" {
			title = defaultTitle(job.Text)
		}
		b, err := deps.Store.CreateBookmark(r.Context(), store.Bookmark{
			Title:        title,
			Text:         job.Text,
			TargetLength: job.TargetLength,
			TokenIndex:   req.TokenIndex,
		})
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to save bookmark", err, http.StatusInternalServerError)
			return
		}
		deps.Log.Info("bookmark saved", "bookmark_id", b.ID, "job_id", job.ID, "token_index", b.TokenIndex)
		httputil.WriteJSON(w, http.StatusCreated, toBookmarkResponse(b, false))
	}
}

func listBookmarksHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := deps.Store.ListBookmarks(r.Context())
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to list bookmarks", err, http.StatusInternalServerError)
			return
		}
		out := make([]bookmarkResponse, 0, len(list))
		for _, b := range list {
			out = append(out, toBookmarkResponse(b, false))
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"bookmarks": out})
	}
}

func bookmarkHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := loadBookmark(w, r, deps)
		if !ok {
			return
		}
		httputil.WriteJSON(w, http.StatusOK, toBookmarkResponse(b, true))
	}
}

func deleteBookmarkHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r, deps, "invalid bookmark id")
		if !ok {
			return
		}
		err := deps.Store.DeleteBookmark(r.Context(), id)
		if errors.Is(err, store.ErrBookmarkNotFound) {
			httputil.Fail(deps.Log, w, "bookmark not found", err, http.StatusNotFound)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to delete bookmark", err, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// openBookmarkHandler resubmits the bookmarked text. Segmentation is deterministic,
// so the stored token index locates the same chunk in the new job's result.
func openBookmarkHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := loadBookmark(w, r, deps)
		if !ok {
			return
		}
		job, err := createJob(r.Context(), deps, b.Text, b.TargetLength)
		if err != nil {
			failCreate(w, deps, err)
			return
		}
		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"job_id":      job.ID.String(),
			"status":      job.Status,
			"token_index": b.TokenIndex,
			"bookmark_id": b.ID,
		})
	}
}

func loadBookmark(w http.ResponseWriter, r *http.Request, deps app.Deps) (store.Bookmark, bool) {
	id, ok := parseID(w, r, deps, "invalid bookmark id")
	if !ok {
		return store.Bookmark{}, false
	}
	b, err := deps.Store.GetBookmark(r.Context(), id)
	if errors.Is(err, store.ErrBookmarkNotFound) {
		httputil.Fail(deps.Log, w, "bookmark not found", err, http.StatusNotFound)
		return store.Bookmark{}, false
	}
	if err != nil {
		httputil.Fail(deps.Log, w, "failed to load bookmark", err, http.StatusInternalServerError)
		return store.Bookmark{}, false
	}
	return b, true
}
