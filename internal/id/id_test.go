package id

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cardspend/internal/model"
)

func txn(date, desc, amount, category string) model.Transaction {
	return model.Transaction{
		Date:        date,
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		CategoryID:  category,
	}
}

func TestTransactionKey(t *testing.T) {
	tests := []struct {
		txn  model.Transaction
		want string
	}{
		{txn("2024-01-01", "Coffee Shop", "-12.50", "catA"), "2024-01-01|Coffee Shop|-12.5"},
		{txn("01/02/2024", "Rent", "5", "catB"), "01/02/2024|Rent|5"},
		{txn("2024-03-01", "Refund", "19.99", "unmapped"), "2024-03-01|Refund|19.99"},
		{txn("", "", "0", ""), "||0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TransactionKey(tt.txn))
	}
}

func TestTransactionKey_IgnoresCategory(t *testing.T) {
	a := txn("2024-01-01", "Coffee", "-3.00", "catA")
	b := txn("2024-01-01", "Coffee", "-3", "catB")
	assert.Equal(t, TransactionKey(a), TransactionKey(b), "same date, description and amount share one key")
}

func TestTransactionKey_DistinguishesFields(t *testing.T) {
	base := txn("2024-01-01", "Coffee", "-3", "")
	assert.NotEqual(t, TransactionKey(base), TransactionKey(txn("2024-01-02", "Coffee", "-3", "")))
	assert.NotEqual(t, TransactionKey(base), TransactionKey(txn("2024-01-01", "Tea", "-3", "")))
	assert.NotEqual(t, TransactionKey(base), TransactionKey(txn("2024-01-01", "Coffee", "3", "")))
}

func TestTransactionKey_SeparatorCollision(t *testing.T) {
	a := txn("2024-01-01|x", "y", "1", "")
	b := txn("2024-01-01", "x|y", "1", "")
	assert.Equal(t, TransactionKey(a), TransactionKey(b), "unescaped separator collides")
}

func TestNewIDs(t *testing.T) {
	card := NewCardID()
	require.True(t, strings.HasPrefix(card, "card_"))
	assert.Len(t, card, len("card_")+36)
	assert.NotEqual(t, card, NewCardID())

	cat := NewCategoryID()
	require.True(t, strings.HasPrefix(cat, "cat_"))
	assert.NotEqual(t, cat, NewCategoryID())
}
