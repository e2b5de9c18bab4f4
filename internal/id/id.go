package id

import (
	"strings"

	"github.com/google/uuid"

	"github.com/cleared-dev/cardspend/internal/model"
)

// keySep joins the key fields. Fields are not escaped, so a field containing
// it can collide with another transaction's key.
const keySep = "|"

// TransactionKey returns the override identity of a transaction:
// "date|description|amount". Transactions with the same date, description
// and amount share a key. Amounts use their shortest form ("5", "-12.5").
func TransactionKey(t model.Transaction) string {
	return strings.Join([]string{t.Date, t.Description, t.Amount.String()}, keySep)
}

// NewCardID returns an id like "card_6f1c...".
func NewCardID() string {
	return "card_" + uuid.NewString()
}

// NewCategoryID returns an id like "cat_6f1c...".
func NewCategoryID() string {
	return "cat_" + uuid.NewString()
}
