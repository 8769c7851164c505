package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/icp-finder/internal/entity"
	"github.com/octobees/icp-finder/internal/finder"
)

//go:embed schema.sql
var schemaSQL string

// ErrSessionNotFound is returned when no session matches the id.
var ErrSessionNotFound = errors.New("session not found")

// SessionsRepository persists conversational sessions and their accumulated results.
type SessionsRepository interface {
	Create(ctx context.Context) (*entity.Session, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Session, error)
	AppendTurn(ctx context.Context, id uuid.UUID, turn entity.Turn) error
	// AppendResults stores results not already present by canonical URL and
	// returns how many were new.
	AppendResults(ctx context.Context, id uuid.UUID, results []entity.SearchResult) (int, error)
	ListResults(ctx context.Context, id uuid.UUID) ([]entity.SearchResult, error)
	ClearResults(ctx context.Context, id uuid.UUID) error
}

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

var _ pgxPool = (*pgxpool.Pool)(nil)

// PGXSessionsRepository implements SessionsRepository using pgx.
type PGXSessionsRepository struct {
	pool pgxPool
}

// NewPGXSessionsRepository wires a pgx backed repository.
func NewPGXSessionsRepository(pool *pgxpool.Pool) *PGXSessionsRepository {
	return &PGXSessionsRepository{pool: pool}
}

// EnsureSchema creates the session tables when missing.
func (r *PGXSessionsRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure session schema: %w", err)
	}
	return nil
}

func (r *PGXSessionsRepository) Create(ctx context.Context) (*entity.Session, error) {
	session := entity.Session{ID: uuid.New(), Turns: []entity.Turn{}}
	row := r.pool.QueryRow(ctx, `INSERT INTO icp_sessions (id) VALUES ($1) RETURNING created_at, updated_at`, session.ID)
	if err := row.Scan(&session.CreatedAt, &session.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return &session, nil
}

func (r *PGXSessionsRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	session := entity.Session{ID: id, Turns: []entity.Turn{}}
	row := r.pool.QueryRow(ctx, `SELECT created_at, updated_at FROM icp_sessions WHERE id = $1`, id)
	if err := row.Scan(&session.CreatedAt, &session.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("query session: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
        SELECT prompt, search_type, found, added, created_at
        FROM icp_session_turns
        WHERE session_id = $1
        ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("query session turns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			turn       entity.Turn
			searchType string
		)
		if err := rows.Scan(&turn.Prompt, &searchType, &turn.Found, &turn.Added, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session turn: %w", err)
		}
		turn.SearchType = entity.SearchType(searchType)
		session.Turns = append(session.Turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session turns: %w", err)
	}

	return &session, nil
}

func (r *PGXSessionsRepository) AppendTurn(ctx context.Context, id uuid.UUID, turn entity.Turn) error {
	tag, err := r.pool.Exec(ctx, `
        INSERT INTO icp_session_turns (session_id, prompt, search_type, found, added)
        SELECT id, $2, $3, $4, $5 FROM icp_sessions WHERE id = $1`,
		id, turn.Prompt, string(turn.SearchType), turn.Found, turn.Added)
	if err != nil {
		return fmt.Errorf("insert session turn: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *PGXSessionsRepository) AppendResults(ctx context.Context, id uuid.UUID, results []entity.SearchResult) (int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("start append results tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := touchSession(ctx, tx, id); err != nil {
		return 0, err
	}

	added := 0
	for _, result := range results {
		tag, err := tx.Exec(ctx, `
            INSERT INTO icp_session_results (session_id, canonical_key, title, url, snippet, company)
            VALUES ($1, $2, $3, $4, $5, $6)
            ON CONFLICT (session_id, canonical_key) DO NOTHING`,
			id, finder.CanonicalKey(result.URL), result.Title, result.URL, result.Snippet, result.Company)
		if err != nil {
			return 0, fmt.Errorf("insert session result %q: %w", result.URL, err)
		}
		added += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit append results tx: %w", err)
	}
	return added, nil
}

func (r *PGXSessionsRepository) ListResults(ctx context.Context, id uuid.UUID) ([]entity.SearchResult, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT title, url, snippet, company
        FROM icp_session_results
        WHERE session_id = $1
        ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("query session results: %w", err)
	}
	defer rows.Close()

	results := []entity.SearchResult{}
	for rows.Next() {
		var result entity.SearchResult
		if err := rows.Scan(&result.Title, &result.URL, &result.Snippet, &result.Company); err != nil {
			return nil, fmt.Errorf("scan session result: %w", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session results: %w", err)
	}
	return results, nil
}

func (r *PGXSessionsRepository) ClearResults(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("start clear results tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := touchSession(ctx, tx, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM icp_session_results WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("delete session results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit clear results tx: %w", err)
	}
	return nil
}

func touchSession(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `UPDATE icp_sessions SET updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}
