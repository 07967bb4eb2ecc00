package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"deudas/internal/core"
	applog "deudas/internal/log"
	"deudas/internal/store"

	_ "modernc.org/sqlite"
)

// debtsKey is the single key the debt list lives under. The value is one
// JSON array blob, the shape the app has always persisted: no schema
// versioning, readers default any field missing from old records.
const debtsKey = "deudas"

// SQLiteRepository persists the debt list as a key-value blob in SQLite.
// All writes are read-modify-write cycles under mu; there is no concurrent
// writer in the single-device model, the mutex just keeps the discipline
// honest.
type SQLiteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append stores a new debt with a fresh id and unpaid state, ignoring any
// caller-supplied id, history, or settled flag.
func (r *SQLiteRepository) Append(ctx context.Context, d core.Debt) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	debts := r.readAll(ctx)

	var maxID int64
	for _, existing := range debts {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	d.ID = maxID + 1
	d.History = []core.PaymentRecord{}
	d.Settled = false

	r.writeAll(ctx, append(debts, d))

	slog.InfoContext(ctx, "Debt saved",
		applog.FieldDebtID, d.ID,
		applog.FieldReason, d.Reason,
		applog.FieldAmount, d.Amount.Cents,
		applog.FieldFrequency, d.Frequency)

	return d.ID, nil
}

// ListAll returns the stored snapshot in insertion order. A read or decode
// failure degrades to an empty list.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Debt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readAll(ctx), nil
}

// Patch merges partial fields into the record with the given id. An unknown
// id is logged and swallowed; callers get no error signal for it.
func (r *SQLiteRepository) Patch(ctx context.Context, id int64, p store.DebtPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	debts := r.readAll(ctx)
	for i := range debts {
		if debts[i].ID == id {
			p.Apply(&debts[i])
			r.writeAll(ctx, debts)
			slog.InfoContext(ctx, "Debt patched", applog.FieldDebtID, id)
			return nil
		}
	}

	slog.WarnContext(ctx, "Patch for unknown debt id ignored", applog.FieldDebtID, id)
	return nil
}

// readAll loads and decodes the blob. Failures are logged and degrade to an
// empty list; a broken database looks like "no debts" rather than an error
// state, which matches the storage contract this app inherited.
func (r *SQLiteRepository) readAll(ctx context.Context) []core.Debt {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM storage WHERE key = ?`, debtsKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read debts blob", applog.FieldError, err)
		return nil
	}

	var debts []core.Debt
	if err := json.Unmarshal([]byte(raw), &debts); err != nil {
		slog.ErrorContext(ctx, "Failed to decode debts blob", applog.FieldError, err)
		return nil
	}
	return debts
}

// writeAll serializes and stores the full list. A failure is logged and the
// write becomes a no-op.
func (r *SQLiteRepository) writeAll(ctx context.Context, debts []core.Debt) {
	raw, err := json.Marshal(debts)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to encode debts blob", applog.FieldError, err)
		return
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO storage (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		debtsKey, string(raw))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to write debts blob", applog.FieldError, err)
	}
}
