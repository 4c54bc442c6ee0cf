// Package sqlite is the alternative workflow store backend: one row per
// session holding the record as a JSON document.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/socialme/contentflow/internal/workflow"
)

// Store implements workflow.Store on SQLite. Updates run inside IMMEDIATE
// transactions, so per-id serialization falls out of the database lock.
type Store struct {
	db *sqlx.DB
}

// Open constructs a Store at the given path, overriding the configured one
// when non-empty. The schema is migrated on open.
func Open(path string) (*Store, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		cfg.Path = trimmed
	}
	return OpenWithConfig(cfg)
}

// OpenWithConfig constructs a Store from an explicit configuration.
func OpenWithConfig(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path required")
	}
	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve sqlite path: %w", err)
	}
	busy := int(cfg.BusyTimeout / time.Millisecond)
	if busy <= 0 {
		busy = 5000
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_txlock=immediate", abs, busy)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.BusyTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS workflows (
                id TEXT PRIMARY KEY,
                status TEXT NOT NULL,
                document TEXT NOT NULL,
                created_at TIMESTAMP NOT NULL,
                updated_at TIMESTAMP NOT NULL
        );`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate workflows table: %w", err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context) (*workflow.Record, error) {
	rec := workflow.NewRecord()
	document, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode workflow: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO workflows (id, status, document, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Status), string(document), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert workflow: %w", err)
	}
	return rec, nil
}

func (s *Store) Get(ctx context.Context, id string) (*workflow.Record, error) {
	var document string
	err := s.db.GetContext(ctx, &document, `SELECT document FROM workflows WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, workflow.ErrWorkflowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select workflow: %w", err)
	}
	return decodeRecord(id, document)
}

func (s *Store) Update(ctx context.Context, id string, mutate func(*workflow.Record) error) (*workflow.Record, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	var document string
	err = tx.GetContext(ctx, &document, `SELECT document FROM workflows WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, workflow.ErrWorkflowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select workflow: %w", err)
	}
	rec, err := decodeRecord(id, document)
	if err != nil {
		return nil, err
	}
	if err := mutate(rec); err != nil {
		return nil, err
	}
	rec.Touch()
	updated, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode workflow: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE workflows SET status = ?, document = ?, updated_at = ? WHERE id = ?`,
		string(rec.Status), string(updated), rec.UpdatedAt, id); err != nil {
		return nil, fmt.Errorf("update workflow: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return rec, nil
}

func (s *Store) List(ctx context.Context) ([]workflow.Info, error) {
	rows := []struct {
		ID        string    `db:"id"`
		Status    string    `db:"status"`
		UpdatedAt time.Time `db:"updated_at"`
	}{}
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT id, status, updated_at FROM workflows ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	infos := make([]workflow.Info, 0, len(rows))
	for _, row := range rows {
		infos = append(infos, workflow.Info{
			ID:        row.ID,
			Status:    workflow.Status(row.Status),
			UpdatedAt: row.UpdatedAt,
		})
	}
	return infos, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func decodeRecord(id, document string) (*workflow.Record, error) {
	var rec workflow.Record
	if err := json.Unmarshal([]byte(document), &rec); err != nil {
		return nil, fmt.Errorf("decode workflow %s: %w", id, err)
	}
	return &rec, nil
}
