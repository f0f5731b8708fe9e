package query

import (
	"testing"
	"time"
)

func TestBuildUnfiltered(t *testing.T) {
	plan := Build("u1", Filter{}, SortDefault, Page{Number: 1, Size: 10})
	if plan.Where != "user_id = ?" {
		t.Fatalf("unexpected where: %q", plan.Where)
	}
	if len(plan.Args) != 1 || plan.Args[0] != "u1" {
		t.Fatalf("unexpected args: %v", plan.Args)
	}
	if plan.OrderBy != "created_at DESC, id DESC" {
		t.Fatalf("default sort should be date_desc, got %q", plan.OrderBy)
	}
	if plan.Limit != 10 || plan.Offset != 0 {
		t.Fatalf("unexpected bounds: limit=%d offset=%d", plan.Limit, plan.Offset)
	}
}

func TestBuildConjunctiveFilters(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)
	plan := Build("u1", Filter{Category: "groceries", From: from, To: to}, SortAmountDesc, Page{Number: 3, Size: 20})

	want := "user_id = ? AND category = ? AND created_at BETWEEN ? AND ?"
	if plan.Where != want {
		t.Fatalf("expected %q, got %q", want, plan.Where)
	}
	if len(plan.Args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(plan.Args))
	}
	if plan.OrderBy != "amount_cents DESC, id DESC" {
		t.Fatalf("unexpected order: %q", plan.OrderBy)
	}
	if plan.Offset != 40 {
		t.Fatalf("expected offset 40, got %d", plan.Offset)
	}
}

func TestBuildIgnoresHalfOpenDateRange(t *testing.T) {
	plan := Build("u1", Filter{From: time.Now()}, SortDefault, Page{})
	if plan.Where != "user_id = ?" {
		t.Fatalf("half-open range must not filter, got %q", plan.Where)
	}
}

func TestSortFallback(t *testing.T) {
	cases := []Sort{"", "default", "bogus", "created_at; DROP TABLE transactions"}
	for _, s := range cases {
		if got := s.OrderClause(); got != "created_at DESC, id DESC" {
			t.Fatalf("sort %q: expected date_desc fallback, got %q", s, got)
		}
	}
	if got := SortDateAsc.OrderClause(); got != "created_at ASC, id ASC" {
		t.Fatalf("unexpected date_asc clause: %q", got)
	}
}

func TestPageNormalize(t *testing.T) {
	cases := []struct {
		in   Page
		want Page
	}{
		{Page{Number: 0, Size: 0}, Page{Number: 1, Size: DefaultPageSize}},
		{Page{Number: -5, Size: 10}, Page{Number: 1, Size: 10}},
		{Page{Number: 2, Size: 500}, Page{Number: 2, Size: MaxPageSize}},
		{Page{Number: 3, Size: 25}, Page{Number: 3, Size: 25}},
	}
	for i, tc := range cases {
		if got := tc.in.Normalize(); got != tc.want {
			t.Fatalf("case %d expected %+v, got %+v", i, tc.want, got)
		}
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		count, size, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{15, 10, 2},
		{21, 10, 3},
	}
	for i, tc := range cases {
		if got := TotalPages(tc.count, tc.size); got != tc.want {
			t.Fatalf("case %d expected %d, got %d", i, tc.want, got)
		}
	}
}
