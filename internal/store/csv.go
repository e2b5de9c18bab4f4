package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cardspend/internal/model"
)

// CategoriesHeader is the CSV header for categories.csv.
const CategoriesHeader = "id,name,category_type"

// TransactionsHeader is the CSV header for transactions.csv.
const TransactionsHeader = "date,description,amount,category_id,card_id"

const (
	numCategoryFields = 3
	colCatID          = 0
	colCatName        = 1
	colCatType        = 2

	numTxnFields = 5
	colTxnDate   = 0
	colTxnDesc   = 1
	colTxnAmount = 2
	colTxnCatID  = 3
	colTxnCardID = 4
)

// storedTransaction is a transaction plus the card it was imported from.
type storedTransaction struct {
	CardID string
	model.Transaction
}

// ReadCategories reads categories.csv.
func ReadCategories(r io.Reader) ([]model.CustomCategory, error) {
	records, err := readRecords(r, numCategoryFields)
	if err != nil {
		return nil, fmt.Errorf("reading categories CSV: %w", err)
	}

	var cats []model.CustomCategory
	for i, rec := range records {
		cat, err := UnmarshalCategory(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		cats = append(cats, cat)
	}
	return cats, nil
}

// WriteCategories writes categories.csv (including header).
func WriteCategories(w io.Writer, cats []model.CustomCategory) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(CategoriesHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, c := range cats {
		if err := cw.Write(MarshalCategory(c)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalCategory converts a CustomCategory to a CSV row.
func MarshalCategory(c model.CustomCategory) []string {
	row := make([]string, numCategoryFields)
	row[colCatID] = c.ID
	row[colCatName] = c.Name
	row[colCatType] = string(c.CategoryType)
	return row
}

// UnmarshalCategory converts a CSV row to a CustomCategory.
func UnmarshalCategory(record []string) (model.CustomCategory, error) {
	if len(record) != numCategoryFields {
		return model.CustomCategory{}, fmt.Errorf("expected %d fields, got %d", numCategoryFields, len(record))
	}
	ct := model.CategoryType(record[colCatType])
	if !ct.Valid() {
		return model.CustomCategory{}, fmt.Errorf("parsing category_type %q: must be need or want", record[colCatType])
	}
	return model.CustomCategory{
		ID:           record[colCatID],
		Name:         record[colCatName],
		CategoryType: ct,
	}, nil
}

func readTransactions(r io.Reader) ([]storedTransaction, error) {
	records, err := readRecords(r, numTxnFields)
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	var txns []storedTransaction
	for i, rec := range records {
		txn, err := unmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func writeTransactions(w io.Writer, txns []storedTransaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(TransactionsHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, t := range txns {
		if err := cw.Write(marshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Amounts are stored in shortest form so they read back to the same value.
func marshalTransaction(t storedTransaction) []string {
	row := make([]string, numTxnFields)
	row[colTxnDate] = t.Date
	row[colTxnDesc] = t.Description
	row[colTxnAmount] = t.Amount.String()
	row[colTxnCatID] = t.CategoryID
	row[colTxnCardID] = t.CardID
	return row
}

func unmarshalTransaction(record []string) (storedTransaction, error) {
	if len(record) != numTxnFields {
		return storedTransaction{}, fmt.Errorf("expected %d fields, got %d", numTxnFields, len(record))
	}
	amount, err := decimal.NewFromString(record[colTxnAmount])
	if err != nil {
		return storedTransaction{}, fmt.Errorf("parsing amount %q: %w", record[colTxnAmount], err)
	}
	return storedTransaction{
		CardID: record[colTxnCardID],
		Transaction: model.Transaction{
			Date:        record[colTxnDate],
			Description: record[colTxnDesc],
			Amount:      amount,
			CategoryID:  record[colTxnCatID],
		},
	}, nil
}

// readRecords reads all rows and drops the header.
func readRecords(r io.Reader, fields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) <= 1 {
		return nil, nil
	}
	return records[1:], nil
}
