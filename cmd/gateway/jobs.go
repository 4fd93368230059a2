package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"rsvp-chunker/internal/app"
	"rsvp-chunker/internal/chunker"
	"rsvp-chunker/internal/httputil"
	"rsvp-chunker/internal/queue"
	"rsvp-chunker/internal/store"
	"rsvp-chunker/internal/textload"
)

type createJobRequest struct {
	Text         string `json:"text" validate:"required"`
	TargetLength *int   `json:"target_length" validate:"omitempty,gt=0"`
}

type jobResponse struct {
	JobID        uuid.UUID       `json:"job_id"`
	Status       store.JobStatus `json:"status"`
	TargetLength int             `json:"target_length"`
	Processed    int             `json:"processed"`
	Total        int             `json:"total"`
	Reason       string          `json:"reason,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func createJobHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createJobRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.FailValidation(deps.Log, w, err)
			return
		}
		target := deps.Config.DefaultTargetLength
		if req.TargetLength != nil {
			target = *req.TargetLength
		}
		submitJob(w, r, deps, req.Text, target)
	}
}

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		// Validate file size before parsing
		if r.ContentLength > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		contentType, err := textload.DetectType(header.Filename, header.Header.Get("Content-Type"))
		if err != nil {
			httputil.Fail(deps.Log, w, textload.ErrUnsupportedType.Error(), err, http.StatusBadRequest)
			return
		}

		target := deps.Config.DefaultTargetLength
		if v := r.FormValue("target_length"); v != "" {
			target, err = strconv.Atoi(v)
			if err != nil || target <= 0 {
				httputil.FailValidation(deps.Log, w, &httputil.ValidationError{
					Fields: map[string]string{"target_length": "must be a positive integer"},
				})
				return
			}
		}

		text, err := textload.Read(file, contentType, maxFileSize)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(text) == "" {
			httputil.Fail(deps.Log, w, "file contains no text", nil, http.StatusBadRequest)
			return
		}

		submitJob(w, r, deps, text, target)
	}
}

var (
	errTextTooLong = errors.New("text too long")
	errEnqueue     = errors.New("failed to enqueue job; please retry")
)

// createJob persists a job and hands it to the segmenter workers. Callers resolve the
// default target length before calling.
func createJob(ctx context.Context, deps app.Deps, text string, target int) (store.Job, error) {
	if limit := deps.Config.MaxTextLength; limit > 0 && utf8.RuneCountInString(text) > limit {
		return store.Job{}, fmt.Errorf("%w (max %d characters)", errTextTooLong, limit)
	}

	job, err := deps.Store.CreateJob(ctx, text, target)
	if err != nil {
		return store.Job{}, fmt.Errorf("persist job: %w", err)
	}
	log := deps.Log.With("job_id", job.ID)

	task, err := queue.NewSegmentTask(job.ID)
	if err == nil {
		err = queue.EnqueueWithRetry(ctx, deps.Queue, task, 3, 200*time.Millisecond)
	}
	if err != nil {
		if upErr := deps.Store.UpdateJobStatus(ctx, job.ID, store.StatusFailed, "could not be queued"); upErr != nil {
			log.Error("failed to mark job failed", "err", upErr)
		}
		return store.Job{}, fmt.Errorf("%w: %w", errEnqueue, err)
	}

	log.Info("job submitted", "target_length", target, "characters", utf8.RuneCountInString(text))
	return job, nil
}

func failCreate(w http.ResponseWriter, deps app.Deps, err error) {
	switch {
	case errors.Is(err, errTextTooLong):
		httputil.Fail(deps.Log, w, err.Error(), err, http.StatusRequestEntityTooLarge)
	case errors.Is(err, errEnqueue):
		httputil.Fail(deps.Log, w, errEnqueue.Error(), err, http.StatusInternalServerError)
	default:
		httputil.Fail(deps.Log, w, "failed to persist job", err, http.StatusInternalServerError)
	}
}

func submitJob(w http.ResponseWriter, r *http.Request, deps app.Deps, text string, target int) {
	job, err := createJob(r.Context(), deps, text, target)
	if err != nil {
		failCreate(w, deps, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
		"job_id":        job.ID.String(),
		"status":        job.Status,
		"target_length": job.TargetLength,
	})
}

func jobHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, ok := loadJob(w, r, deps)
		if !ok {
			return
		}
		httputil.WriteJSON(w, http.StatusOK, jobResponse{
			JobID:        job.ID,
			Status:       job.Status,
			TargetLength: job.TargetLength,
			Processed:    job.Processed,
			Total:        job.Total,
			Reason:       job.Reason,
			CreatedAt:    job.CreatedAt,
			UpdatedAt:    job.UpdatedAt,
		})
	}
}

func chunksHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, result, ok := loadResult(w, r, deps)
		if !ok {
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"job_id": job.ID,
			"chunks": nonNil(result.Chunks),
		})
	}
}

func tokensHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, result, ok := loadResult(w, r, deps)
		if !ok {
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"job_id": job.ID,
			"tokens": nonNil(result.Tokens),
		})
	}
}

// linesHandler serves the original-text view: tokens grouped by source line.
func linesHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, result, ok := loadResult(w, r, deps)
		if !ok {
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"job_id": job.ID,
			"lines":  nonNil(chunker.GroupByLine(result.Tokens)),
		})
	}
}

// seekHandler maps a token index or a source line to the chunk to display.
func seekHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		tokenParam, lineParam := q.Get("token"), q.Get("line")
		if (tokenParam == "") == (lineParam == "") {
			httputil.FailValidation(deps.Log, w, &httputil.ValidationError{
				Fields: map[string]string{"token": "exactly one of token or line is required"},
			})
			return
		}
		param, name := tokenParam, "token"
		if lineParam != "" {
			param, name = lineParam, "line"
		}
		n, err := strconv.Atoi(param)
		if err != nil || n < 0 {
			httputil.FailValidation(deps.Log, w, &httputil.ValidationError{
				Fields: map[string]string{name: "must be a non-negative integer"},
			})
			return
		}

		job, result, ok := loadResult(w, r, deps)
		if !ok {
			return
		}

		var idx int
		var found bool
		if name == "token" {
			idx, found = chunker.ChunkAt(result.Chunks, n)
		} else {
			idx, found = chunker.ChunkAtLine(result.Chunks, n)
		}
		if !found {
			httputil.Fail(deps.Log, w, "no chunk at that position", nil, http.StatusNotFound)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"job_id":      job.ID,
			"chunk_index": idx,
			"chunk":       result.Chunks[idx],
		})
	}
}

func loadJob(w http.ResponseWriter, r *http.Request, deps app.Deps) (store.Job, bool) {
	id, ok := parseID(w, r, deps, "invalid job id")
	if !ok {
		return store.Job{}, false
	}
	job, err := deps.Store.GetJob(r.Context(), id)
	if errors.Is(err, store.ErrJobNotFound) {
		httputil.Fail(deps.Log, w, "job not found", err, http.StatusNotFound)
		return store.Job{}, false
	}
	if err != nil {
		httputil.Fail(deps.Log, w, "failed to load job", err, http.StatusInternalServerError)
		return store.Job{}, false
	}
	return job, true
}

// loadResult answers 409 until the job has completed.
func loadResult(w http.ResponseWriter, r *http.Request, deps app.Deps) (store.Job, chunker.Result, bool) {
	job, ok := loadJob(w, r, deps)
	if !ok {
		return store.Job{}, chunker.Result{}, false
	}
	if job.Status != store.StatusCompleted {
		httputil.WriteJSON(w, http.StatusConflict, map[string]any{
			"error":  "result not ready",
			"status": job.Status,
			"reason": job.Reason,
		})
		return store.Job{}, chunker.Result{}, false
	}
	result, err := deps.Store.GetResult(r.Context(), job.ID)
	if err != nil {
		httputil.Fail(deps.Log.With("job_id", job.ID), w, "failed to load result", err, http.StatusInternalServerError)
		return store.Job{}, chunker.Result{}, false
	}
	return job, result, true
}

func parseID(w http.ResponseWriter, r *http.Request, deps app.Deps, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(deps.Log, w, message, err, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// nonNil keeps empty collections encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
