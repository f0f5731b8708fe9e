// Package storage owns the durable ledger state: the transactions table,
// the per-user display-id counters, and the audit log written by the worker.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budget/internal/core"
	"budget/internal/query"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrTimeout is returned when a store operation exceeds its context
	// deadline instead of letting the call hang.
	ErrTimeout = errors.New("store timeout")
)

const transactionColumns = "id, user_id, display_id, type, category, amount_cents, created_at"

type SQLiteRepository struct {
	db *sql.DB
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

// Insert persists a validated entry, assigning id, created_at and the
// per-user display id. The counter bump and the row insert share one SQL
// transaction, so concurrent writers for the same user serialize on the
// counter row and sequence numbers never repeat or leave gaps.
func (r *SQLiteRepository) Insert(ctx context.Context, e core.Entry) (core.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, wrapErr("begin insert", err)
	}
	defer tx.Rollback()

	var seq int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO user_sequences (user_id, seq) VALUES (?, 1)
		 ON CONFLICT (user_id) DO UPDATE SET seq = seq + 1
		 RETURNING seq`, e.UserID).Scan(&seq)
	if err != nil {
		return core.Transaction{}, wrapErr("bump sequence", err)
	}

	created := core.Transaction{
		UserID:    e.UserID,
		DisplayID: core.FormatDisplayID(e.UserID, seq),
		Type:      e.Type,
		Category:  e.Category,
		Amount:    e.Amount,
		CreatedAt: time.Now().UTC(),
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (user_id, display_id, type, category, amount_cents, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		created.UserID, created.DisplayID, string(created.Type), created.Category,
		created.Amount.Cents, created.CreatedAt)
	if err != nil {
		return core.Transaction{}, wrapErr("insert transaction", err)
	}

	created.ID, err = res.LastInsertId()
	if err != nil {
		return core.Transaction{}, wrapErr("last insert id", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Transaction{}, wrapErr("commit insert", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", created.ID,
		"display_id", created.DisplayID,
		"user_id", created.UserID,
		"type", created.Type,
		"category", created.Category,
		"amount_cents", created.Amount.Cents)

	return created, nil
}

// NextSequence returns the display-id suffix the next insert for this user
// would receive: the current counter plus one, or 1 for a fresh user. It is
// informational; Insert draws its number atomically and never trusts this.
func (r *SQLiteRepository) NextSequence(ctx context.Context, userID string) (int64, error) {
	var seq int64
	err := r.db.QueryRowContext(ctx,
		`SELECT seq FROM user_sequences WHERE user_id = ?`, userID).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, wrapErr("next sequence", err)
	}
	return seq + 1, nil
}

// MostRecent returns the user's latest transaction by created_at, ties
// broken by highest id. ErrNotFound on an empty ledger.
func (r *SQLiteRepository) MostRecent(ctx context.Context, userID string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`, userID)

	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("most recent for %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, wrapErr("most recent", err)
	}
	return t, nil
}

// DeleteByID removes exactly one row. It reports whether a row was deleted;
// surviving rows keep their ids and display ids untouched.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return false, wrapErr("delete transaction", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapErr("delete rows affected", err)
	}
	return n > 0, nil
}

// FindPage executes a retrieval plan and returns one page of rows together
// with the total count under the same filter, so callers can render
// navigation without a second round trip.
func (r *SQLiteRepository) FindPage(ctx context.Context, plan query.Plan) ([]core.Transaction, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE `+plan.Where, plan.Args...).Scan(&total)
	if err != nil {
		return nil, 0, wrapErr("count transactions", err)
	}

	args := append(append([]any{}, plan.Args...), plan.Limit, plan.Offset)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE `+plan.Where+`
		 ORDER BY `+plan.OrderBy+`
		 LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, wrapErr("list transactions", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, wrapErr("scan transaction", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapErr("iterate transactions", err)
	}
	return out, total, nil
}

// SumByType sums amounts for one transaction type. No rows means zero.
func (r *SQLiteRepository) SumByType(ctx context.Context, userID string, typ core.TransactionType) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
		 WHERE user_id = ? AND type = ?`, userID, string(typ)).Scan(&cents)
	if err != nil {
		return core.Money{}, wrapErr("sum by type", err)
	}
	return core.Money{Cents: cents}, nil
}

// Totals computes income, expense and balance in a single aggregate pass.
func (r *SQLiteRepository) Totals(ctx context.Context, userID string) (core.Totals, error) {
	var incomeCents, expenseCents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT
		    COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0),
		    COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0)
		 FROM transactions WHERE user_id = ?`, userID).Scan(&incomeCents, &expenseCents)
	if err != nil {
		return core.Totals{}, wrapErr("totals", err)
	}
	return core.Totals{
		Income:  core.Money{Cents: incomeCents},
		Expense: core.Money{Cents: expenseCents},
		Balance: core.Money{Cents: incomeCents - expenseCents},
	}, nil
}

// SumByTypeAndCategory returns one aggregate row per (type, category) pair
// present in the user's ledger.
func (r *SQLiteRepository) SumByTypeAndCategory(ctx context.Context, userID string) ([]core.TypeCategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT type, category, SUM(amount_cents) FROM transactions
		 WHERE user_id = ?
		 GROUP BY type, category`, userID)
	if err != nil {
		return nil, wrapErr("sum by category", err)
	}
	defer rows.Close()

	var out []core.TypeCategoryTotal
	for rows.Next() {
		var (
			typ      string
			category string
			cents    int64
		)
		if err := rows.Scan(&typ, &category, &cents); err != nil {
			return nil, wrapErr("scan category sum", err)
		}
		out = append(out, core.TypeCategoryTotal{
			Type:     core.TransactionType(typ),
			Category: category,
			Total:    core.Money{Cents: cents},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate category sums", err)
	}
	return out, nil
}

// AuditEntry is one row of the mutation trail written by the audit worker.
type AuditEntry struct {
	Event         string
	UserID        string
	TransactionID int64
	DisplayID     string
	Type          string
	Category      string
	AmountCents   int64
	RecordedAt    time.Time
}

// InsertAuditEntry appends to the audit log. The log is append-only.
func (r *SQLiteRepository) InsertAuditEntry(ctx context.Context, e AuditEntry) error {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (event, user_id, transaction_id, display_id, type, category, amount_cents, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Event, e.UserID, e.TransactionID, e.DisplayID, e.Type, e.Category, e.AmountCents, e.RecordedAt)
	if err != nil {
		return wrapErr("insert audit entry", err)
	}
	return nil
}

// CountAuditEntries reports the audit trail length for a user.
func (r *SQLiteRepository) CountAuditEntries(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_log WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, wrapErr("count audit entries", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t     core.Transaction
		typ   string
		cents int64
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.DisplayID, &typ, &t.Category, &cents, &t.CreatedAt); err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	t.Amount = core.Money{Cents: cents}
	return t, nil
}

// wrapErr wraps store failures, mapping context deadline expiry onto
// ErrTimeout so callers see a bounded query failure instead of a hang.
func wrapErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}
