package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"rsvp-chunker/internal/chunker"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Advisory lock keeps the gateway and workers from migrating concurrently.
	const lockID = 734216501

	var acquired bool
	err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired)
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	if !acquired {
		// Another service is running migrations; wait briefly and skip
		time.Sleep(2 * time.Second)
		return nil
	}

	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			id UUID PRIMARY KEY,
			text TEXT NOT NULL,
			target_length INT NOT NULL,
			status TEXT NOT NULL,
			processed INT NOT NULL DEFAULT 0,
			total INT NOT NULL DEFAULT 0,
			reason TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS tokens (
			job_id UUID REFERENCES jobs(id) ON DELETE CASCADE,
			idx INT,
			surface TEXT,
			category TEXT,
			source_offset INT,
			line_number INT,
			PRIMARY KEY (job_id, idx)
		);`,
		`CREATE TABLE IF NOT EXISTS chunks (
			job_id UUID REFERENCES jobs(id) ON DELETE CASCADE,
			ord INT,
			text TEXT,
			line_number INT,
			start_token INT,
			end_token INT,
			PRIMARY KEY (job_id, ord)
		);`,
		`CREATE TABLE IF NOT EXISTS bookmarks (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			text TEXT NOT NULL,
			target_length INT NOT NULL,
			token_index INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS bookmarks_created_at_idx ON bookmarks (created_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) CreateJob(ctx context.Context, text string, targetLength int) (Job, error) {
	id := uuid.New()
	now := time.Now()
	_, err := s.db.ExecContext(ctx, `INSERT INTO jobs(id, text, target_length, status, created_at, updated_at) VALUES($1,$2,$3,$4,$5,$5)`,
		id, text, targetLength, StatusQueued, now)
	if err != nil {
		return Job{}, err
	}
	return Job{ID: id, Text: text, TargetLength: targetLength, Status: StatusQueued, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (Job, error) {
	var j Job
	row := s.db.QueryRowContext(ctx, `
		SELECT id, text, target_length, status, processed, total, reason, created_at, updated_at
		FROM jobs WHERE id=$1`, id)
	if err := row.Scan(&j.ID, &j.Text, &j.TargetLength, &j.Status, &j.Processed, &j.Total, &j.Reason, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrJobNotFound
		}
		return Job{}, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	return j, nil
}

func (s *PostgresStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, status JobStatus, reason string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE jobs SET status=$1, reason=$2, updated_at=now() WHERE id=$3`, status, reason, id)
	return checkAffected(res, err, ErrJobNotFound)
}

func (s *PostgresStore) UpdateJobProgress(ctx context.Context, id uuid.UUID, processed, total int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE jobs SET processed=$1, total=$2, updated_at=now() WHERE id=$3`, processed, total, id)
	return checkAffected(res, err, ErrJobNotFound)
}

func (s *PostgresStore) SaveResult(ctx context.Context, id uuid.UUID, result chunker.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// A retried task may already have written part of a result.
	if _, err := tx.ExecContext(ctx, `DELETE FROM tokens WHERE job_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE job_id=$1`, id); err != nil {
		return err
	}

	if len(result.Tokens) > 0 {
		cols := tokenColumns(result.Tokens)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tokens(job_id, idx, surface, category, source_offset, line_number)
			SELECT $1, t.idx, t.surface, t.category, t.source_offset, t.line_number
			FROM unnest($2::int[], $3::text[], $4::text[], $5::int[], $6::int[])
				AS t(idx, surface, category, source_offset, line_number)`,
			id, pq.Array(cols.idx), pq.Array(cols.surface), pq.Array(cols.category), pq.Array(cols.offset), pq.Array(cols.line))
		if err != nil {
			return fmt.Errorf("insert tokens: %w", err)
		}
	}
	if len(result.Chunks) > 0 {
		cols := chunkColumns(result.Chunks)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chunks(job_id, ord, text, line_number, start_token, end_token)
			SELECT $1, c.ord, c.text, c.line_number, c.start_token, c.end_token
			FROM unnest($2::int[], $3::text[], $4::int[], $5::int[], $6::int[])
				AS c(ord, text, line_number, start_token, end_token)`,
			id, pq.Array(cols.ord), pq.Array(cols.text), pq.Array(cols.line), pq.Array(cols.start), pq.Array(cols.end))
		if err != nil {
			return fmt.Errorf("insert chunks: %w", err)
		}
	}

	n := len(result.Tokens)
	res, err := tx.ExecContext(ctx, `UPDATE jobs SET status=$1, reason='', processed=$2, total=$2, updated_at=now() WHERE id=$3`,
		StatusCompleted, n, id)
	if err := checkAffected(res, err, ErrJobNotFound); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) GetResult(ctx context.Context, id uuid.UUID) (chunker.Result, error) {
	var result chunker.Result

	rows, err := s.db.QueryContext(ctx, `
		SELECT surface, category, source_offset, line_number
		FROM tokens WHERE job_id=$1 ORDER BY idx`, id)
	if err != nil {
		return result, err
	}
	for rows.Next() {
		var t chunker.Token
		if err := rows.Scan(&t.Surface, &t.Category, &t.Offset, &t.Line); err != nil {
			rows.Close()
			return chunker.Result{}, err
		}
		result.Tokens = append(result.Tokens, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return chunker.Result{}, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT text, line_number, start_token, end_token
		FROM chunks WHERE job_id=$1 ORDER BY ord`, id)
	if err != nil {
		return chunker.Result{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var c chunker.Chunk
		if err := rows.Scan(&c.Text, &c.Line, &c.StartToken, &c.EndToken); err != nil {
			return chunker.Result{}, err
		}
		result.Chunks = append(result.Chunks, c)
	}
	return result, rows.Err()
}

func (s *PostgresStore) CreateBookmark(ctx context.Context, b Bookmark) (Bookmark, error) {
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookmarks(id, title, text, target_length, token_index, created_at)
		VALUES($1,$2,$3,$4,$5,$6)`,
		b.ID, b.Title, b.Text, b.TargetLength, b.TokenIndex, b.CreatedAt)
	if err != nil {
		return Bookmark{}, err
	}
	return b, nil
}

func (s *PostgresStore) GetBookmark(ctx context.Context, id uuid.UUID) (Bookmark, error) {
	var b Bookmark
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, text, target_length, token_index, created_at
		FROM bookmarks WHERE id=$1`, id)
	if err := row.Scan(&b.ID, &b.Title, &b.Text, &b.TargetLength, &b.TokenIndex, &b.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Bookmark{}, ErrBookmarkNotFound
		}
		return Bookmark{}, fmt.Errorf("failed to get bookmark %s: %w", id, err)
	}
	return b, nil
}

func (s *PostgresStore) ListBookmarks(ctx context.Context) ([]Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, text, target_length, token_index, created_at
		FROM bookmarks ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Bookmark
	for rows.Next() {
		var b Bookmark
		if err := rows.Scan(&b.ID, &b.Title, &b.Text, &b.TargetLength, &b.TokenIndex, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteBookmark(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id=$1`, id)
	return checkAffected(res, err, ErrBookmarkNotFound)
}

func checkAffected(res sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound
	}
	return nil
}

type tokenCols struct {
	idx, offset, line []int64
	surface, category []string
}

func tokenColumns(tokens []chunker.Token) tokenCols {
	c := tokenCols{
		idx:      make([]int64, len(tokens)),
		offset:   make([]int64, len(tokens)),
		line:     make([]int64, len(tokens)),
		surface:  make([]string, len(tokens)),
		category: make([]string, len(tokens)),
	}
	for i, t := range tokens {
		c.idx[i] = int64(i)
		c.surface[i] = t.Surface
		c.category[i] = t.Category
		c.offset[i] = int64(t.Offset)
		c.line[i] = int64(t.Line)
	}
	return c
}

type chunkCols struct {
	ord, line, start, end []int64
	text                  []string
}

func chunkColumns(chunks []chunker.Chunk) chunkCols {
	c := chunkCols{
		ord:   make([]int64, len(chunks)),
		line:  make([]int64, len(chunks)),
		start: make([]int64, len(chunks)),
		end:   make([]int64, len(chunks)),
		text:  make([]string, len(chunks)),
	}
	for i, ch := range chunks {
		c.ord[i] = int64(i)
		c.text[i] = ch.Text
		c.line[i] = int64(ch.Line)
		c.start[i] = int64(ch.StartToken)
		c.end[i] = int64(ch.EndToken)
	}
	return c
}
