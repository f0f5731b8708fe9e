// Package services orchestrates ledger operations: validation, persistence,
// undo-by-recency, and the aggregate views behind the dashboard and charts.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/query"
	"budget/internal/storage"
)

// ErrNothingToUndo is returned when undo is called on an empty ledger.
var ErrNothingToUndo = errors.New("no transactions found to undo")

// DefaultQueryTimeout bounds read queries when no timeout is configured.
const DefaultQueryTimeout = 5 * time.Second

// Store is the persistence boundary the service depends on. The SQLite
// repository satisfies it; tests may substitute their own.
type Store interface {
	Insert(ctx context.Context, e core.Entry) (core.Transaction, error)
	MostRecent(ctx context.Context, userID string) (core.Transaction, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
	FindPage(ctx context.Context, plan query.Plan) ([]core.Transaction, int, error)
	Totals(ctx context.Context, userID string) (core.Totals, error)
	SumByTypeAndCategory(ctx context.Context, userID string) ([]core.TypeCategoryTotal, error)
}

// EventPublisher pushes ledger mutation events to the audit stream.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, msg *amqp.LedgerEvent) error
}

// Page is one slice of a filtered listing plus the navigation counts
// computed under the same filter.
type Page struct {
	Transactions []core.Transaction
	TotalCount   int
	TotalPages   int
	Number       int
	Size         int
}

// TransactionService is the component HTTP handlers actually invoke. The
// store and event publisher are injected; there is no ambient state.
type TransactionService struct {
	store        Store
	events       EventPublisher
	queryTimeout time.Duration
}

func NewTransactionService(store Store, events EventPublisher, queryTimeout time.Duration) *TransactionService {
	if queryTimeout <= 0 {
		queryTimeout = DefaultQueryTimeout
	}
	return &TransactionService{
		store:        store,
		events:       events,
		queryTimeout: queryTimeout,
	}
}

// Record validates and persists one income or expense entry. Validation
// failures surface before anything is written; nothing is ever coerced.
func (s *TransactionService) Record(ctx context.Context, userID string, typ core.TransactionType, category string, amount core.Money) (core.Transaction, error) {
	entry, err := core.NewEntry(userID, typ, category, amount)
	if err != nil {
		return core.Transaction{}, err
	}

	tx, err := s.store.Insert(ctx, entry)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("record transaction: %w", err)
	}

	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventRecorded, tx))
	return tx, nil
}

// Undo deletes the user's single most recent transaction and returns it.
// Calling it again removes the next most recent one; it is deliberately not
// idempotent.
func (s *TransactionService) Undo(ctx context.Context, userID string) (core.Transaction, error) {
	tx, err := s.store.MostRecent(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Transaction{}, ErrNothingToUndo
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("find undo target: %w", err)
	}

	deleted, err := s.store.DeleteByID(ctx, tx.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("undo transaction: %w", err)
	}
	if !deleted {
		// Row vanished between lookup and delete; the undo target is gone
		// either way, so report the empty-ledger case.
		return core.Transaction{}, ErrNothingToUndo
	}

	slog.InfoContext(ctx, "Transaction undone",
		"id", tx.ID,
		"display_id", tx.DisplayID,
		"user_id", userID)

	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventUndone, tx))
	return tx, nil
}

// Query returns a filtered, sorted, paginated view of the user's ledger.
// The call is bounded by the configured query timeout; expiry surfaces as
// storage.ErrTimeout.
func (s *TransactionService) Query(ctx context.Context, userID string, f query.Filter, sort query.Sort, p query.Page) (Page, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	p = p.Normalize()
	plan := query.Build(userID, f, sort, p)

	rows, total, err := s.store.FindPage(ctx, plan)
	if err != nil {
		return Page{}, fmt.Errorf("query transactions: %w", err)
	}

	return Page{
		Transactions: rows,
		TotalCount:   total,
		TotalPages:   query.TotalPages(total, p.Size),
		Number:       p.Number,
		Size:         p.Size,
	}, nil
}

// Totals returns the user's income, expense and balance summary.
func (s *TransactionService) Totals(ctx context.Context, userID string) (core.Totals, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	totals, err := s.store.Totals(ctx, userID)
	if err != nil {
		return core.Totals{}, fmt.Errorf("totals: %w", err)
	}
	return totals, nil
}

// CategoryTotals returns one aggregate row per (type, category) pair.
func (s *TransactionService) CategoryTotals(ctx context.Context, userID string) ([]core.TypeCategoryTotal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.store.SumByTypeAndCategory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	return rows, nil
}

// publish pushes an event best-effort: the mutation already committed, so a
// broken broker is logged, not surfaced.
func (s *TransactionService) publish(ctx context.Context, msg *amqp.LedgerEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerEvent(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"error", err,
			"event", msg.Event,
			"transaction_id", msg.TransactionID)
	}
}
