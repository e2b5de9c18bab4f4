// Package resolve computes the effective category and need/want label of
// transactions from stored values, the category catalog and user overrides.
package resolve

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cardspend/internal/id"
	"github.com/cleared-dev/cardspend/internal/model"
	"github.com/cleared-dev/cardspend/internal/overrides"
)

// UnmappedName is shown for a category id missing from the catalog.
const UnmappedName = "Unmapped"

// CategoryLookup reads category overrides.
type CategoryLookup interface {
	Get(key string) (string, bool)
}

// NeedWantLookup reads need/want overrides.
type NeedWantLookup interface {
	Get(key string) (model.NeedWant, bool)
}

// Resolver applies overrides on top of stored transaction values.
type Resolver struct {
	catalog   map[string]model.CustomCategory
	cats      CategoryLookup
	needWants NeedWantLookup
}

// New builds a Resolver. Either lookup may be nil, meaning no overrides.
func New(categories []model.CustomCategory, cats CategoryLookup, needWants NeedWantLookup) *Resolver {
	catalog := make(map[string]model.CustomCategory, len(categories))
	for _, c := range categories {
		catalog[c.ID] = c
	}
	return &Resolver{catalog: catalog, cats: cats, needWants: needWants}
}

// FromSet builds a Resolver reading both stores of set.
func FromSet(categories []model.CustomCategory, set *overrides.Set) *Resolver {
	if set == nil {
		return New(categories, nil, nil)
	}
	return New(categories, set.Categories, set.NeedWants)
}

// CategoryID returns the category override for t if present, otherwise
// t's stored category id.
func (r *Resolver) CategoryID(t model.Transaction) string {
	if r.cats != nil {
		if v, ok := r.cats.Get(id.TransactionKey(t)); ok && v != "" {
			return v
		}
	}
	return t.CategoryID
}

// Category returns the catalog entry for t's effective category.
func (r *Resolver) Category(t model.Transaction) (model.CustomCategory, bool) {
	c, ok := r.catalog[r.CategoryID(t)]
	return c, ok
}

// CategoryName returns the effective category's name, or UnmappedName.
func (r *Resolver) CategoryName(t model.Transaction) string {
	if c, ok := r.Category(t); ok {
		return c.Name
	}
	return UnmappedName
}

// NeedWant returns t's effective classification. An explicit need or want
// override wins; otherwise the effective category's type is used, and a
// category missing from the catalog is unassigned.
func (r *Resolver) NeedWant(t model.Transaction) model.Classification {
	if r.needWants != nil {
		if v, ok := r.needWants.Get(id.TransactionKey(t)); ok {
			switch v {
			case model.NeedWantNeed:
				return model.ClassificationNeed
			case model.NeedWantWant:
				return model.ClassificationWant
			}
		}
	}

	c, ok := r.Category(t)
	if !ok {
		return model.ClassificationUnassigned
	}
	switch c.CategoryType {
	case model.CategoryTypeNeed:
		return model.ClassificationNeed
	case model.CategoryTypeWant:
		return model.ClassificationWant
	default:
		return model.ClassificationUnassigned
	}
}

// Row is the display state of one transaction.
type Row struct {
	Key                 string
	Date                string
	Description         string
	Amount              decimal.Decimal
	CategoryID          string
	CategoryName        string
	NeedWant            model.Classification
	Unmapped            bool
	HasCategoryOverride bool
	HasNeedWantOverride bool
}

// Row resolves t into a display row.
func (r *Resolver) Row(t model.Transaction) Row {
	key := id.TransactionKey(t)
	_, mapped := r.Category(t)

	row := Row{
		Key:          key,
		Date:         t.Date,
		Description:  t.Description,
		Amount:       t.Amount,
		CategoryID:   r.CategoryID(t),
		CategoryName: r.CategoryName(t),
		NeedWant:     r.NeedWant(t),
		Unmapped:     !mapped,
	}
	if r.cats != nil {
		_, row.HasCategoryOverride = r.cats.Get(key)
	}
	if r.needWants != nil {
		v, ok := r.needWants.Get(key)
		row.HasNeedWantOverride = ok && v != model.NeedWantAuto
	}
	return row
}

// Rows resolves every transaction, preserving order.
func (r *Resolver) Rows(txns []model.Transaction) []Row {
	rows := make([]Row, len(txns))
	for i, t := range txns {
		rows[i] = r.Row(t)
	}
	return rows
}
