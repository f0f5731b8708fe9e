// Package report reshapes aggregate ledger rows into the parallel-array
// form consumed by chart rendering and report export. It is pure: no I/O,
// no failure modes beyond empty input producing empty slices.
package report

import "budget/internal/core"

// ChartData holds parallel slices: Labels[i], Values[i] and Colors[i] all
// describe Categories[i].
type ChartData struct {
	Categories []string  `json:"categories"`
	Labels     []string  `json:"labels"`
	Values     []float64 `json:"values"`
	Colors     []string  `json:"colors"`
}

// DefaultColor is used for categories without a configured color.
const DefaultColor = "#808080"

var displayNames = map[string]string{
	"employment":     "Employment",
	"business":       "Business",
	"investment":     "Investment",
	"groceries":      "Groceries",
	"rent":           "Rent",
	"clothing":       "Clothing",
	"food":           "Food",
	"transportation": "Transportation",
	"phoneBill":      "Phone Bill",
	"selfCare":       "Self-Care",
	"miscellaneous":  "Misc",
}

var categoryColors = map[string]string{
	"groceries":      "#36d555",
	"rent":           "#2E8B57",
	"clothing":       "#FFD700",
	"food":           "#f6472b",
	"transportation": "#060118",
	"phoneBill":      "#00BFFF",
	"selfCare":       "#c623cd",
	"miscellaneous":  "#808080",
}

// DisplayName returns the human label for a category, or the raw category
// key when none is configured.
func DisplayName(category string) string {
	if name, ok := displayNames[category]; ok {
		return name
	}
	return category
}

// Color returns the chart color for a category, defaulting to a neutral
// gray for unknown categories.
func Color(category string) string {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return DefaultColor
}

// Project turns category totals into chart-ready parallel arrays. Row order
// is preserved.
func Project(rows []core.CategoryTotal) ChartData {
	data := ChartData{
		Categories: make([]string, 0, len(rows)),
		Labels:     make([]string, 0, len(rows)),
		Values:     make([]float64, 0, len(rows)),
		Colors:     make([]string, 0, len(rows)),
	}
	for _, row := range rows {
		data.Categories = append(data.Categories, row.Category)
		data.Labels = append(data.Labels, DisplayName(row.Category))
		data.Values = append(data.Values, row.Total.Float())
		data.Colors = append(data.Colors, Color(row.Category))
	}
	return data
}

// FilterByType narrows (type, category) aggregates down to the rows of one
// transaction type, in the shape Project expects.
func FilterByType(rows []core.TypeCategoryTotal, typ core.TransactionType) []core.CategoryTotal {
	var out []core.CategoryTotal
	for _, row := range rows {
		if row.Type == typ {
			out = append(out, core.CategoryTotal{Category: row.Category, Total: row.Total})
		}
	}
	return out
}
