package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/curricula/internal/curriculum"
)

// Run is one stored generation.
type Run struct {
	ID           string        `json:"id"`
	CourseIdea   string        `json:"course_idea"`
	Audience     string        `json:"audience"`
	Model        string        `json:"model"`
	Passed       bool          `json:"passed"`
	Verdict      string        `json:"verdict"`
	InputTokens  int64         `json:"input_tokens"`
	OutputTokens int64         `json:"output_tokens"`
	Elapsed      time.Duration `json:"elapsed"`
	CreatedAt    time.Time     `json:"created_at"`
	// Document is the syllabus.json payload. List leaves it empty.
	Document []byte `json:"-"`
}

// ShortID returns the first 8 characters of the run ID.
func (r Run) ShortID() string {
	if len(r.ID) <= 8 {
		return r.ID
	}
	return r.ID[:8]
}

// Package parses the stored document back into a curriculum package.
func (r Run) Package() (*curriculum.Package, error) {
	if len(r.Document) == 0 {
		return nil, fmt.Errorf("run %s has no document loaded", r.ShortID())
	}
	return curriculum.ParseDocument(r.Document)
}

// Usage carries token counts recorded alongside a package.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	Elapsed      time.Duration
}

// Save stores a package and returns the new run with its generated ID.
func (db *DB) Save(pkg *curriculum.Package, usage Usage) (*Run, error) {
	data, err := pkg.JSON()
	if err != nil {
		return nil, err
	}

	run := &Run{
		ID:           uuid.New().String(),
		CourseIdea:   pkg.CourseIdea,
		Audience:     pkg.Audience,
		Model:        pkg.Model,
		Passed:       pkg.Review.Passed,
		Verdict:      pkg.Review.Verdict,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		Elapsed:      usage.Elapsed,
		CreatedAt:    db.now().UTC().Truncate(time.Second),
		Document:     data,
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	_, err = db.conn.Exec(`
		INSERT INTO runs (id, course_idea, audience, model, passed, verdict,
			input_tokens, output_tokens, elapsed_ms, document, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.CourseIdea, run.Audience, run.Model, run.Passed, run.Verdict,
		run.InputTokens, run.OutputTokens, run.Elapsed.Milliseconds(), string(run.Document),
		formatTime(run.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first, without their documents.
// A limit of zero or less returns every run.
func (db *DB) List(limit int) ([]Run, error) {
	query := `
		SELECT id, course_idea, audience, model, passed, verdict,
			input_tokens, output_tokens, elapsed_ms, created_at
		FROM runs ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r         Run
			model     sql.NullString
			elapsedMS int64
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.CourseIdea, &r.Audience, &model, &r.Passed, &r.Verdict,
			&r.InputTokens, &r.OutputTokens, &elapsedMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Model = model.String
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		if r.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get loads a run by full ID or unique ID prefix, including its document.
func (db *DB) Get(idOrPrefix string) (*Run, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return nil, ErrNotFound
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.Query(`
		SELECT id, course_idea, audience, model, passed, verdict,
			input_tokens, output_tokens, elapsed_ms, document, created_at
		FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' LIMIT 2
	`, idOrPrefix, escapeLike(idOrPrefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var found []Run
	for rows.Next() {
		var (
			r         Run
			model     sql.NullString
			elapsedMS int64
			document  string
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.CourseIdea, &r.Audience, &model, &r.Passed, &r.Verdict,
			&r.InputTokens, &r.OutputTokens, &elapsedMS, &document, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Model = model.String
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		r.Document = []byte(document)
		if r.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		if r.ID == idOrPrefix {
			return &r, nil
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("ambiguous run id prefix %q", idOrPrefix)
	}
}

// Delete removes a run by full ID.
func (db *DB) Delete(id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	result, err := db.conn.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Purge deletes runs older than the given age and returns how many were removed.
func (db *DB) Purge(olderThan time.Duration) (int64, error) {
	cutoff := formatTime(db.now().Add(-olderThan))

	db.mu.Lock()
	defer db.mu.Unlock()

	result, err := db.conn.Exec("DELETE FROM runs WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge runs: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return count, nil
}

// IsNotFound reports whether err means no run matched.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
