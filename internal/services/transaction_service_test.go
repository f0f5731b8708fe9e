package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/query"
	"budget/internal/storage"
)

// capturePublisher records published events in memory.
type capturePublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEvent
}

func (p *capturePublisher) PublishLedgerEvent(_ context.Context, msg *amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, msg)
	return nil
}

func newTestService(t *testing.T) (*TransactionService, *capturePublisher) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	pub := &capturePublisher{}
	return NewTransactionService(repo, pub, 0), pub
}

func TestRecordValid(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	tx, err := svc.Record(ctx, "u1", core.Income, "employment", core.Money{Cents: 50000})
	require.NoError(t, err)
	assert.Equal(t, "u1-T001", tx.DisplayID)
	assert.Contains(t, core.ValidCategories(tx.Type), tx.Category)

	require.Len(t, pub.events, 1)
	assert.Equal(t, amqp.EventRecorded, pub.events[0].Event)
	assert.EqualValues(t, 50000, pub.events[0].AmountCents)
}

func TestRecordRejectsInvalidInput(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		typ      core.TransactionType
		category string
		cents    int64
		want     error
	}{
		{"bad type", "transfer", "employment", 100, core.ErrInvalidType},
		{"bad category", core.Expense, "employment", 100, core.ErrInvalidCategory},
		{"zero amount", core.Income, "business", 0, core.ErrInvalidAmount},
		{"negative amount", core.Expense, "rent", -5, core.ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Record(ctx, "u1", tc.typ, tc.category, core.Money{Cents: tc.cents})
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// Nothing was persisted and nothing was published.
	page, err := svc.Query(ctx, "u1", query.Filter{}, query.SortDefault, query.Page{})
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)
	assert.Empty(t, pub.events)
}

func TestRecordSequencesDisplayIDs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i, want := range []string{"u1-T001", "u1-T002", "u1-T003", "u1-T004"} {
		tx, err := svc.Record(ctx, "u1", core.Expense, "food", core.Money{Cents: int64(100 + i)})
		require.NoError(t, err)
		assert.Equal(t, want, tx.DisplayID)
	}
}

func TestUndoEmptyLedger(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Undo(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestUndoRemovesNewestOnly(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	first, err := svc.Record(ctx, "u1", core.Income, "employment", core.Money{Cents: 100})
	require.NoError(t, err)
	second, err := svc.Record(ctx, "u1", core.Expense, "rent", core.Money{Cents: 200})
	require.NoError(t, err)
	third, err := svc.Record(ctx, "u1", core.Expense, "food", core.Money{Cents: 300})
	require.NoError(t, err)

	undone, err := svc.Undo(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, third.ID, undone.ID)

	page, err := svc.Query(ctx, "u1", query.Filter{}, query.SortDateAsc, query.Page{})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 2)
	assert.Equal(t, first.ID, page.Transactions[0].ID)
	assert.Equal(t, second.ID, page.Transactions[1].ID)

	// Undo is not idempotent: the next call removes the next newest row.
	undone, err = svc.Undo(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, undone.ID)

	var kinds []string
	for _, ev := range pub.events {
		kinds = append(kinds, ev.Event)
	}
	assert.Equal(t, []string{
		amqp.EventRecorded, amqp.EventRecorded, amqp.EventRecorded,
		amqp.EventUndone, amqp.EventUndone,
	}, kinds)
}

func TestTotals(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, "u1", core.Income, "employment", core.Money{Cents: 10000})
	require.NoError(t, err)
	_, err = svc.Record(ctx, "u1", core.Expense, "groceries", core.Money{Cents: 4000})
	require.NoError(t, err)

	totals, err := svc.Totals(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 10000, totals.Income.Cents)
	assert.EqualValues(t, 4000, totals.Expense.Cents)
	assert.EqualValues(t, 6000, totals.Balance.Cents)
}

func TestQueryFilterWithPagination(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		_, err := svc.Record(ctx, "u1", core.Expense, "groceries", core.Money{Cents: int64(100 + i)})
		require.NoError(t, err)
	}
	_, err := svc.Record(ctx, "u1", core.Expense, "rent", core.Money{Cents: 90000})
	require.NoError(t, err)

	page, err := svc.Query(ctx, "u1",
		query.Filter{Category: "groceries"}, query.SortAmountDesc,
		query.Page{Number: 2, Size: 10})
	require.NoError(t, err)

	assert.Equal(t, 15, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Transactions, 5)
	for _, tx := range page.Transactions {
		assert.Equal(t, "groceries", tx.Category)
	}
}

func TestCategoryTotalsMatchRows(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, "u1", core.Income, "employment", core.Money{Cents: 50000})
	require.NoError(t, err)
	_, err = svc.Record(ctx, "u1", core.Expense, "rent", core.Money{Cents: 12000})
	require.NoError(t, err)
	_, err = svc.Record(ctx, "u1", core.Expense, "food", core.Money{Cents: 3000})
	require.NoError(t, err)

	totals, err := svc.Totals(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 35000, totals.Balance.Cents)

	// Aggregates must equal the sum of the individually fetched rows.
	rows, err := svc.CategoryTotals(ctx, "u1")
	require.NoError(t, err)
	for _, agg := range rows {
		page, err := svc.Query(ctx, "u1",
			query.Filter{Category: agg.Category}, query.SortDefault,
			query.Page{Number: 1, Size: 100})
		require.NoError(t, err)
		var sum int64
		for _, tx := range page.Transactions {
			if tx.Type == agg.Type {
				sum += tx.Amount.Cents
			}
		}
		assert.Equal(t, agg.Total.Cents, sum, "aggregate mismatch for %s/%s", agg.Type, agg.Category)
	}

	// Undo removes the food row; its aggregate disappears with it.
	undone, err := svc.Undo(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "food", undone.Category)

	rows, err = svc.CategoryTotals(ctx, "u1")
	require.NoError(t, err)
	for _, agg := range rows {
		assert.NotEqual(t, "food", agg.Category)
	}
}

func TestRecordWithoutPublisher(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	svc := NewTransactionService(repo, nil, 0)
	_, err = svc.Record(context.Background(), "u1", core.Income, "business", core.Money{Cents: 100})
	require.NoError(t, err)
}
