package core

// Totals is the per-user dashboard summary. Groups with no rows yet are
// zero, never absent.
type Totals struct {
	Income  Money
	Expense Money
	Balance Money
}

// CategoryTotal is an amount aggregated under one category name.
type CategoryTotal struct {
	Category string
	Total    Money
}

// TypeCategoryTotal is one aggregate row per (type, category) pair present
// in the ledger. No ordering is guaranteed; consumers re-sort as needed.
type TypeCategoryTotal struct {
	Type     TransactionType
	Category string
	Total    Money
}
