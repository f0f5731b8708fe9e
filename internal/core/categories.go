package core

// Allowed categories per transaction type. This single table backs both
// validation and the category lists shown to users, so the two can never
// drift apart.
var categoriesByType = map[TransactionType][]string{
	Income: {
		"employment",
		"business",
		"investment",
	},
	Expense: {
		"groceries",
		"rent",
		"clothing",
		"food",
		"transportation",
		"phoneBill",
		"selfCare",
		"miscellaneous",
	},
}

// ValidCategories returns the allowed category set for a transaction type.
// The returned slice is a copy; callers may reorder it freely.
func ValidCategories(typ TransactionType) []string {
	cats, ok := categoriesByType[typ]
	if !ok {
		return nil
	}
	out := make([]string, len(cats))
	copy(out, cats)
	return out
}

// IsValidCategory reports whether category belongs to the allowed set for
// typ. Unknown types are never valid.
func IsValidCategory(typ TransactionType, category string) bool {
	for _, c := range categoriesByType[typ] {
		if c == category {
			return true
		}
	}
	return false
}
