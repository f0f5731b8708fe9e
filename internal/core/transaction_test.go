package core

import (
	"errors"
	"testing"
)

func TestNewEntryValid(t *testing.T) {
	cases := []struct {
		typ      TransactionType
		category string
	}{
		{Income, "employment"},
		{Income, "investment"},
		{Expense, "groceries"},
		{Expense, "phoneBill"},
		{Expense, "miscellaneous"},
	}
	for i, tc := range cases {
		e, err := NewEntry("u1", tc.typ, tc.category, Money{Cents: 100})
		if err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !IsValidCategory(e.Type, e.Category) {
			t.Fatalf("case %d entry category %q not in registry", i, e.Category)
		}
	}
}

func TestNewEntryInvalid(t *testing.T) {
	cases := []struct {
		name     string
		userID   string
		typ      TransactionType
		category string
		amount   Money
		want     error
	}{
		{"unknown type", "u1", "transfer", "employment", Money{Cents: 100}, ErrInvalidType},
		{"empty type", "u1", "", "groceries", Money{Cents: 100}, ErrInvalidType},
		{"income category on expense", "u1", Expense, "employment", Money{Cents: 100}, ErrInvalidCategory},
		{"expense category on income", "u1", Income, "rent", Money{Cents: 100}, ErrInvalidCategory},
		{"unknown category", "u1", Expense, "lottery", Money{Cents: 100}, ErrInvalidCategory},
		{"zero amount", "u1", Income, "business", Money{Cents: 0}, ErrInvalidAmount},
		{"negative amount", "u1", Expense, "food", Money{Cents: -50}, ErrInvalidAmount},
		{"empty user", "", Income, "employment", Money{Cents: 100}, ErrEmptyUser},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEntry(tc.userID, tc.typ, tc.category, tc.amount)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestFormatDisplayID(t *testing.T) {
	cases := []struct {
		userID string
		seq    int64
		want   string
	}{
		{"u1", 1, "u1-T001"},
		{"u1", 42, "u1-T042"},
		{"alice", 999, "alice-T999"},
		{"alice", 1000, "alice-T1000"}, // no truncation past three digits
	}
	for i, tc := range cases {
		if got := FormatDisplayID(tc.userID, tc.seq); got != tc.want {
			t.Fatalf("case %d expected %q, got %q", i, tc.want, got)
		}
	}
}
