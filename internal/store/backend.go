// Package store is the boundary to the data service that persists cards,
// custom categories and transactions.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cleared-dev/cardspend/internal/model"
)

var (
	// ErrNotFound is returned when a card or category id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when adding a category whose id already exists.
	ErrDuplicate = errors.New("already exists")
	// ErrInvalid is returned when a submitted record fails validation.
	ErrInvalid = errors.New("invalid")
)

// Backend is the data service. Every call is fail-fast; failures are
// returned as-is and never retried.
type Backend interface {
	Cards(ctx context.Context) ([]model.Card, error)
	Categories(ctx context.Context) ([]model.CustomCategory, error)
	Transactions(ctx context.Context) ([]model.Transaction, error)

	// PutCard inserts a card or updates the name and columns of an existing
	// one. Category mappings of an existing card are kept.
	PutCard(ctx context.Context, id, name string, cols model.ColumnMapping) error
	AddCategoryMapping(ctx context.Context, cardID string, m model.CategoryMapping) error
	AddCategory(ctx context.Context, c model.CustomCategory) error
	UpdateCategoryType(ctx context.Context, id string, t model.CategoryType) error

	// AppendTransactions adds a batch imported from cardID.
	AppendTransactions(ctx context.Context, cardID string, txns []model.Transaction) error
	ResetTransactions(ctx context.Context) error
}

// ValidateCard checks the fields PutCard accepts.
func ValidateCard(id, name string, cols model.ColumnMapping) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("card id is empty: %w", ErrInvalid)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("card name is empty: %w", ErrInvalid)
	}
	if !cols.Valid() {
		return fmt.Errorf("column indices must be non-negative: %w", ErrInvalid)
	}
	return nil
}

// ValidateMapping checks a category mapping.
func ValidateMapping(m model.CategoryMapping) error {
	if strings.TrimSpace(m.CardProvidedCategory) == "" {
		return fmt.Errorf("card category is empty: %w", ErrInvalid)
	}
	if strings.TrimSpace(m.CustomCategoryID) == "" {
		return fmt.Errorf("custom category id is empty: %w", ErrInvalid)
	}
	return nil
}

// ValidateCategory checks a custom category.
func ValidateCategory(c model.CustomCategory) error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("category id is empty: %w", ErrInvalid)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name is empty: %w", ErrInvalid)
	}
	return ValidateCategoryType(c.CategoryType)
}

// ValidateCategoryType checks that t is need or want.
func ValidateCategoryType(t model.CategoryType) error {
	if !t.Valid() {
		return fmt.Errorf("category type %q: %w", t, ErrInvalid)
	}
	return nil
}
