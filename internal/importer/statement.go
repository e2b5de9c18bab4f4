package importer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cardspend/internal/model"
)

// ErrTooFewLines is returned when a statement has no header plus data line.
var ErrTooFewLines = errors.New("CSV file must contain at least a header and one data row")

// Reasons a row is skipped.
const (
	ReasonInsufficientColumns = "insufficient columns"
	ReasonInvalidAmount       = "invalid amount"
	ReasonMissingDate         = "missing date"
	ReasonMissingDescription  = "missing description"
)

var (
	// amountJunk matches everything that cannot be part of an amount.
	amountJunk = regexp.MustCompile(`[^0-9.\-]`)
	// amountPrefix is the leading number parseFloat would accept.
	amountPrefix = regexp.MustCompile(`^-?(?:[0-9]+\.?[0-9]*|\.[0-9]+)`)
)

// SkippedRow records a data row that was dropped.
type SkippedRow struct {
	Line   int // 1-based line number in the file
	Reason string
}

// Result is the outcome of parsing one statement.
type Result struct {
	Transactions []model.Transaction
	Skipped      []SkippedRow
}

// Parse converts statement text into transactions using card's column and
// category mappings. Malformed rows are skipped, never fatal. The only error
// is ErrTooFewLines.
//
// Rows are split on commas with no quoting support; each field is trimmed and
// loses one leading and one trailing double quote.
func Parse(csvText string, card model.Card) (Result, error) {
	lines := strings.Split(csvText, "\n")
	if len(lines) < 2 {
		return Result{}, ErrTooFewLines
	}

	cols := card.CSVColumnMapping
	var res Result

	// Line 0 is the header and is never inspected.
	for i, raw := range lines[1:] {
		lineNo := i + 2
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		fields := splitFields(line)
		maxIdx := max(cols.DateColumn, cols.AmountColumn, cols.CategoryColumn, cols.DescriptionColumn)
		if maxIdx >= len(fields) {
			res.Skipped = append(res.Skipped, SkippedRow{Line: lineNo, Reason: ReasonInsufficientColumns})
			continue
		}

		txn, reason := parseRow(fields, card)
		if reason != "" {
			res.Skipped = append(res.Skipped, SkippedRow{Line: lineNo, Reason: reason})
			continue
		}
		res.Transactions = append(res.Transactions, txn)
	}
	return res, nil
}

func splitFields(line string) []string {
	fields := strings.Split(line, ",")
	for i, f := range fields {
		f = strings.TrimSpace(f)
		f = strings.TrimPrefix(f, `"`)
		f = strings.TrimSuffix(f, `"`)
		fields[i] = f
	}
	return fields
}

func parseRow(fields []string, card model.Card) (model.Transaction, string) {
	cols := card.CSVColumnMapping

	date := fields[cols.DateColumn]
	if date == "" {
		return model.Transaction{}, ReasonMissingDate
	}

	amount, err := ParseAmount(fields[cols.AmountColumn])
	if err != nil {
		return model.Transaction{}, ReasonInvalidAmount
	}

	desc := fields[cols.DescriptionColumn]
	if desc == "" {
		return model.Transaction{}, ReasonMissingDescription
	}

	return model.Transaction{
		Date:        date,
		Description: desc,
		Amount:      amount,
		CategoryID:  ResolveCategory(card.CategoryMappings, fields[cols.CategoryColumn]),
	}, ""
}

// ParseAmount strips every character other than digits, '.' and '-' and
// parses the longest leading number, so "$1,234.50" is 1234.50 and
// "1.2.3" is 1.2. Text with no leading number is an error.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := amountJunk.ReplaceAllString(s, "")
	num := amountPrefix.FindString(cleaned)
	if num == "" {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: no number", s)
	}

	num = strings.TrimSuffix(num, ".")
	if strings.HasPrefix(num, "-.") {
		num = "-0" + num[1:]
	} else if strings.HasPrefix(num, ".") {
		num = "0" + num
	}

	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}

// normalizeLabel is the comparison policy for card-provided category labels:
// both sides are lowercased, then compared exactly.
func normalizeLabel(s string) string {
	return strings.ToLower(s)
}

// ResolveCategory maps a card-provided label to a custom category id. The
// first mapping with an equal label wins; no match (or a mapping with an
// empty target) resolves to model.UnmappedCategoryID.
func ResolveCategory(mappings []model.CategoryMapping, label string) string {
	want := normalizeLabel(label)
	for _, m := range mappings {
		if normalizeLabel(m.CardProvidedCategory) != want {
			continue
		}
		if m.CustomCategoryID == "" {
			break
		}
		return m.CustomCategoryID
	}
	return model.UnmappedCategoryID
}
