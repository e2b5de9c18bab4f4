package model

import (
	"github.com/shopspring/decimal"
)

// Transaction is one imported statement row. It carries no id of its own;
// see id.TransactionKey.
type Transaction struct {
	Date        string          // raw statement text, not normalized
	Description string          //nolint:revive // plain field name is clearest
	Amount      decimal.Decimal // sign as given by the statement
	CategoryID  string
}
