package report

import (
	"testing"

	"budget/internal/core"
)

func TestProjectEmpty(t *testing.T) {
	data := Project(nil)
	if len(data.Categories) != 0 || len(data.Labels) != 0 || len(data.Values) != 0 || len(data.Colors) != 0 {
		t.Fatalf("empty input should produce empty arrays, got %+v", data)
	}
}

func TestProjectKnownCategories(t *testing.T) {
	rows := []core.CategoryTotal{
		{Category: "groceries", Total: core.Money{Cents: 1234}},
		{Category: "phoneBill", Total: core.Money{Cents: 4500}},
	}
	data := Project(rows)

	if len(data.Labels) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(data.Labels))
	}
	if data.Labels[0] != "Groceries" || data.Labels[1] != "Phone Bill" {
		t.Fatalf("unexpected labels: %v", data.Labels)
	}
	if data.Colors[0] != "#36d555" || data.Colors[1] != "#00BFFF" {
		t.Fatalf("unexpected colors: %v", data.Colors)
	}
	if data.Values[0] != 12.34 || data.Values[1] != 45.00 {
		t.Fatalf("unexpected values: %v", data.Values)
	}
}

func TestProjectUnknownCategoryDefaults(t *testing.T) {
	data := Project([]core.CategoryTotal{{Category: "lottery", Total: core.Money{Cents: 100}}})
	if data.Labels[0] != "lottery" {
		t.Fatalf("unknown category should keep its raw name, got %q", data.Labels[0])
	}
	if data.Colors[0] != DefaultColor {
		t.Fatalf("unknown category should use the default color, got %q", data.Colors[0])
	}
}

func TestFilterByType(t *testing.T) {
	rows := []core.TypeCategoryTotal{
		{Type: core.Income, Category: "employment", Total: core.Money{Cents: 1000}},
		{Type: core.Expense, Category: "rent", Total: core.Money{Cents: 500}},
		{Type: core.Expense, Category: "food", Total: core.Money{Cents: 300}},
	}

	expenses := FilterByType(rows, core.Expense)
	if len(expenses) != 2 {
		t.Fatalf("expected 2 expense rows, got %d", len(expenses))
	}
	if expenses[0].Category != "rent" || expenses[1].Category != "food" {
		t.Fatalf("unexpected rows: %v", expenses)
	}

	if got := FilterByType(rows, "transfer"); got != nil {
		t.Fatalf("unknown type should yield no rows, got %v", got)
	}
}
