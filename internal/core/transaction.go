package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	// TransactionType is the closed set of ledger entry kinds.
	TransactionType string

	// Transaction is an immutable ledger row. Once persisted it is only
	// ever read or deleted, never updated.
	Transaction struct {
		ID        int64
		UserID    string
		DisplayID string
		Type      TransactionType
		Category  string
		Amount    Money
		CreatedAt time.Time
	}

	// Entry is a validated request to record a transaction. Build one with
	// NewEntry so that type, category and amount are checked up front,
	// before anything touches the store.
	Entry struct {
		UserID   string
		Type     TransactionType
		Category string
		Amount   Money
	}
)

var (
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyUser       = errors.New("empty user id")
)

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense:
		return true
	default:
		return false
	}
}

// NewEntry validates its inputs and returns a well-formed Entry.
// All failures are reported with sentinel errors wrapped with the
// offending value, so callers can both branch and reproduce.
func NewEntry(userID string, typ TransactionType, category string, amount Money) (Entry, error) {
	if strings.TrimSpace(userID) == "" {
		return Entry{}, ErrEmptyUser
	}
	if !typ.Valid() {
		return Entry{}, fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}
	if !IsValidCategory(typ, category) {
		return Entry{}, fmt.Errorf("%w: %q is not a %s category", ErrInvalidCategory, category, typ)
	}
	if err := amount.Validate(); err != nil {
		return Entry{}, err
	}
	return Entry{
		UserID:   userID,
		Type:     typ,
		Category: category,
		Amount:   amount,
	}, nil
}

// FormatDisplayID renders the human-facing sequence id for a user, e.g.
// "u42-T007". The numeric suffix is zero-padded to three digits but keeps
// growing past 999 without truncation.
func FormatDisplayID(userID string, seq int64) string {
	return fmt.Sprintf("%s-T%03d", userID, seq)
}
