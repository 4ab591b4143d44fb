// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mkonijn/tafel/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for history and table colors. Both values are
// loaded once at startup and rewritten in full on every mutation; there
// are no incremental updates.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY,
			created_at TEXT NOT NULL,
			session_type TEXT NOT NULL,
			correct INTEGER NOT NULL,
			total INTEGER NOT NULL,
			points INTEGER NOT NULL,
			passed INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS history_tables (
			history_id INTEGER NOT NULL,
			table_no INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			wrong INTEGER NOT NULL,
			points INTEGER NOT NULL,
			PRIMARY KEY (history_id, table_no)
		);`,
		`CREATE TABLE IF NOT EXISTS table_colors (
			table_no INTEGER PRIMARY KEY,
			color TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_history_created_at ON history(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// LoadHistory returns persisted entries newest-first, capped at
// model.HistoryCap. Rows that fail to parse are skipped rather than
// surfaced; a fresh database yields an empty list.
func (s *Store) LoadHistory(ctx context.Context) ([]model.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, session_type, correct, total, points, passed
		 FROM history
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, model.HistoryCap)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []model.HistoryEntry
	for rows.Next() {
		var entry model.HistoryEntry
		var createdAt, sessType string
		var passed int
		if err := rows.Scan(&entry.ID, &createdAt, &sessType, &entry.Correct, &entry.Total, &entry.Points, &passed); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			// Malformed row; continue with the rest.
			continue
		}
		typ := model.SessionType(sessType)
		if typ != model.Practice && typ != model.Test {
			continue
		}
		entry.CreatedAt = parsed
		entry.Type = typ
		entry.Passed = passed != 0
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.loadBreakdowns(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) loadBreakdowns(ctx context.Context, entries []model.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	placeholders := make([]string, len(entries))
	args := make([]any, len(entries))
	byID := make(map[int64]int, len(entries))
	for i := range entries {
		placeholders[i] = "?"
		args[i] = entries[i].ID
		byID[entries[i].ID] = i
	}
	query := fmt.Sprintf(`SELECT history_id, table_no, correct, wrong, points
		FROM history_tables
		WHERE history_id IN (%s)
		ORDER BY table_no ASC`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	for rows.Next() {
		var historyID int64
		var b model.TableBreakdown
		if err := rows.Scan(&historyID, &b.Table, &b.Correct, &b.Wrong, &b.Points); err != nil {
			return err
		}
		idx, ok := byID[historyID]
		if !ok {
			continue
		}
		entries[idx].Tables = append(entries[idx].Tables, b)
	}
	return rows.Err()
}

// SaveHistory replaces the stored history with the given entries in one
// transaction. Callers apply the newest-first ordering and the cap before
// saving; entries beyond model.HistoryCap are refused.
func (s *Store) SaveHistory(ctx context.Context, entries []model.HistoryEntry) error {
	if len(entries) > model.HistoryCap {
		return fmt.Errorf("history exceeds cap: %d > %d", len(entries), model.HistoryCap)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM history_tables`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return err
	}

	entryStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO history (created_at, session_type, correct, total, points, passed)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := entryStmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	tableStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO history_tables (history_id, table_no, correct, wrong, points)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := tableStmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()

	for _, entry := range entries {
		passed := 0
		if entry.Passed {
			passed = 1
		}
		var res sql.Result
		res, err = entryStmt.ExecContext(ctx,
			entry.CreatedAt.Format(time.RFC3339Nano),
			string(entry.Type),
			entry.Correct,
			entry.Total,
			entry.Points,
			passed,
		)
		if err != nil {
			return err
		}
		var id int64
		id, err = res.LastInsertId()
		if err != nil {
			return err
		}
		for _, b := range entry.Tables {
			if _, err = tableStmt.ExecContext(ctx, id, b.Table, b.Correct, b.Wrong, b.Points); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// ClearHistory removes all persisted history.
func (s *Store) ClearHistory(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM history_tables`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadColors returns the table color map seeded from defaults, with
// stored rows layered on top. Rows for unknown tables or with empty
// colors are ignored.
func (s *Store) LoadColors(ctx context.Context, defaults map[int]string) (map[int]string, error) {
	colors := make(map[int]string, len(defaults))
	for table, color := range defaults {
		colors[table] = color
	}
	rows, err := s.db.QueryContext(ctx, `SELECT table_no, color FROM table_colors`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for rows.Next() {
		var table int
		var color string
		if err := rows.Scan(&table, &color); err != nil {
			return nil, err
		}
		if table < model.MinTable || table > model.MaxTable || color == "" {
			continue
		}
		colors[table] = color
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return colors, nil
}

// SaveColors replaces the stored color map in one transaction.
func (s *Store) SaveColors(ctx context.Context, colors map[int]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM table_colors`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO table_colors (table_no, color) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for table := model.MinTable; table <= model.MaxTable; table++ {
		color, ok := colors[table]
		if !ok || color == "" {
			continue
		}
		if _, err = stmt.ExecContext(ctx, table, color); err != nil {
			return err
		}
	}
	return tx.Commit()
}
