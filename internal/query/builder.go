// Package query shapes filter/sort/pagination requests into deterministic,
// bounded retrieval plans for the transaction store.
package query

import "time"

const (
	SortDefault    Sort = "default"
	SortAmountAsc  Sort = "amount_asc"
	SortAmountDesc Sort = "amount_desc"
	SortCategory   Sort = "category"
	SortType       Sort = "type"
	SortDateAsc    Sort = "date_asc"
	SortDateDesc   Sort = "date_desc"
)

type (
	// Sort names one of the supported orderings. Anything unrecognized
	// falls back to date_desc; that is the contract, not an error.
	Sort string

	// Filter narrows a listing. Zero fields impose no constraint; set
	// fields combine with AND. The date range is inclusive on both ends
	// and only applies when both bounds are present.
	Filter struct {
		Category string
		From     time.Time
		To       time.Time
	}

	// Page selects one slice of the result set. Out-of-range values are
	// normalized rather than rejected: numbers below 1 become 1, sizes
	// below 1 become DefaultPageSize, sizes above MaxPageSize are capped.
	Page struct {
		Number int
		Size   int
	}

	// Plan is a ready-to-execute retrieval: a WHERE clause with its
	// arguments, a whitelisted ORDER BY, and LIMIT/OFFSET bounds. The
	// count query reuses Where/Args so totals always reflect the filter.
	Plan struct {
		Where   string
		Args    []any
		OrderBy string
		Limit   int
		Offset  int
	}
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Orderings are a fixed whitelist; user input never reaches the ORDER BY
// clause directly. Each key carries an id tie-break so pagination is stable
// when timestamps or amounts collide.
var sortClauses = map[Sort]string{
	SortAmountAsc:  "amount_cents ASC, id ASC",
	SortAmountDesc: "amount_cents DESC, id DESC",
	SortCategory:   "category ASC, id DESC",
	SortType:       "type ASC, id DESC",
	SortDateAsc:    "created_at ASC, id ASC",
	SortDateDesc:   "created_at DESC, id DESC",
}

// Normalize clamps a Page to valid bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// OrderClause resolves a sort key to its SQL ordering, falling back to
// date_desc for unknown or empty keys.
func (s Sort) OrderClause() string {
	if clause, ok := sortClauses[s]; ok {
		return clause
	}
	return sortClauses[SortDateDesc]
}

// Build translates a user-scoped listing request into a Plan.
func Build(userID string, f Filter, s Sort, p Page) Plan {
	where := "user_id = ?"
	args := []any{userID}

	if f.Category != "" {
		where += " AND category = ?"
		args = append(args, f.Category)
	}
	if !f.From.IsZero() && !f.To.IsZero() {
		where += " AND created_at BETWEEN ? AND ?"
		args = append(args, f.From.UTC(), f.To.UTC())
	}

	p = p.Normalize()
	return Plan{
		Where:   where,
		Args:    args,
		OrderBy: s.OrderClause(),
		Limit:   p.Size,
		Offset:  (p.Number - 1) * p.Size,
	}
}

// TotalPages computes ceil(totalCount / pageSize) for navigation.
func TotalPages(totalCount, pageSize int) int {
	if pageSize < 1 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}
