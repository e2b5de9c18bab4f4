// Package export renders transactions as tab-delimited text.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/cleared-dev/cardspend/internal/model"
	"github.com/cleared-dev/cardspend/internal/resolve"
)

// EmptyText is returned instead of a table when there are no transactions.
const EmptyText = "No transactions to export"

// Header is the first line of a non-empty export.
const Header = "Date\tDescription\tAmount\tCategory\tNeed/Want"

// Format renders txns with the category catalog and both override stores.
// Either store may be nil.
func Format(txns []model.Transaction, categories []model.CustomCategory, cats resolve.CategoryLookup, needWants resolve.NeedWantLookup) string {
	return FormatResolved(txns, resolve.New(categories, cats, needWants))
}

// FormatResolved renders one line per transaction in order, resolving the
// category and need/want label through r. Lines are joined by "\n" with no
// trailing newline.
func FormatResolved(txns []model.Transaction, r *resolve.Resolver) string {
	if len(txns) == 0 {
		return EmptyText
	}

	lines := make([]string, 0, len(txns)+1)
	lines = append(lines, Header)
	for _, t := range txns {
		lines = append(lines, strings.Join([]string{
			t.Date,
			t.Description,
			t.Amount.StringFixed(2),
			r.CategoryName(t),
			r.NeedWant(t).Label(),
		}, "\t"))
	}
	return strings.Join(lines, "\n")
}

// WriteFile writes the export text to path.
func WriteFile(path string, txns []model.Transaction, r *resolve.Resolver) error {
	if err := os.WriteFile(path, []byte(FormatResolved(txns, r)), 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}
