package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/cardspend/internal/model"
)

// Data file names inside a data directory.
const (
	CardsFile        = "cards.yaml"
	CategoriesFile   = "categories.csv"
	TransactionsFile = "transactions.csv"
)

// FileStore keeps the data service state as plain files in a directory.
// Every write rewrites the whole file through a temp file and rename.
type FileStore struct {
	dir string
}

var _ Backend = (*FileStore)(nil)

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the data directory.
func (s *FileStore) Dir() string { return s.dir }

// Init creates the data directory and any missing data files.
func (s *FileStore) Init() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	if !s.exists(CardsFile) {
		if err := s.saveCards(nil); err != nil {
			return err
		}
	}
	if !s.exists(CategoriesFile) {
		if err := s.saveCategories(nil); err != nil {
			return err
		}
	}
	if !s.exists(TransactionsFile) {
		if err := s.saveTransactions(nil); err != nil {
			return err
		}
	}
	return nil
}

type cardsDoc struct {
	Cards []model.Card `yaml:"cards"`
}

// Cards returns all cards in insertion order.
func (s *FileStore) Cards(_ context.Context) ([]model.Card, error) {
	return s.loadCards()
}

// Categories returns all custom categories in insertion order.
func (s *FileStore) Categories(_ context.Context) ([]model.CustomCategory, error) {
	return s.loadCategories()
}

// Transactions returns all persisted transactions in import order.
func (s *FileStore) Transactions(_ context.Context) ([]model.Transaction, error) {
	stored, err := s.loadTransactions()
	if err != nil {
		return nil, err
	}
	txns := make([]model.Transaction, len(stored))
	for i, st := range stored {
		txns[i] = st.Transaction
	}
	return txns, nil
}

// PutCard inserts or updates a card.
func (s *FileStore) PutCard(_ context.Context, id, name string, cols model.ColumnMapping) error {
	if err := ValidateCard(id, name, cols); err != nil {
		return err
	}
	cards, err := s.loadCards()
	if err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	found := false
	for i := range cards {
		if cards[i].ID == id {
			cards[i].Name = name
			cards[i].CSVColumnMapping = cols
			found = true
			break
		}
	}
	if !found {
		cards = append(cards, model.Card{ID: id, Name: name, CSVColumnMapping: cols})
	}
	return s.saveCards(cards)
}

// AddCategoryMapping appends a mapping to a card.
func (s *FileStore) AddCategoryMapping(_ context.Context, cardID string, m model.CategoryMapping) error {
	if err := ValidateMapping(m); err != nil {
		return err
	}
	cards, err := s.loadCards()
	if err != nil {
		return err
	}
	for i := range cards {
		if cards[i].ID == cardID {
			m.CardProvidedCategory = strings.TrimSpace(m.CardProvidedCategory)
			cards[i].CategoryMappings = append(cards[i].CategoryMappings, m)
			return s.saveCards(cards)
		}
	}
	return fmt.Errorf("card %q: %w", cardID, ErrNotFound)
}

// AddCategory appends a custom category.
func (s *FileStore) AddCategory(_ context.Context, c model.CustomCategory) error {
	if err := ValidateCategory(c); err != nil {
		return err
	}
	cats, err := s.loadCategories()
	if err != nil {
		return err
	}
	for _, existing := range cats {
		if existing.ID == c.ID {
			return fmt.Errorf("category %q: %w", c.ID, ErrDuplicate)
		}
	}
	c.Name = strings.TrimSpace(c.Name)
	return s.saveCategories(append(cats, c))
}

// UpdateCategoryType changes the need/want type of a category.
func (s *FileStore) UpdateCategoryType(_ context.Context, id string, t model.CategoryType) error {
	if err := ValidateCategoryType(t); err != nil {
		return err
	}
	cats, err := s.loadCategories()
	if err != nil {
		return err
	}
	for i := range cats {
		if cats[i].ID == id {
			cats[i].CategoryType = t
			return s.saveCategories(cats)
		}
	}
	return fmt.Errorf("category %q: %w", id, ErrNotFound)
}

// AppendTransactions appends a batch tagged with cardID.
func (s *FileStore) AppendTransactions(_ context.Context, cardID string, txns []model.Transaction) error {
	if strings.TrimSpace(cardID) == "" {
		return fmt.Errorf("card id is empty: %w", ErrInvalid)
	}
	stored, err := s.loadTransactions()
	if err != nil {
		return err
	}
	for _, t := range txns {
		stored = append(stored, storedTransaction{CardID: cardID, Transaction: t})
	}
	return s.saveTransactions(stored)
}

// ResetTransactions removes every persisted transaction.
func (s *FileStore) ResetTransactions(_ context.Context) error {
	return s.saveTransactions(nil)
}

func (s *FileStore) loadCards() ([]model.Card, error) {
	data, err := os.ReadFile(s.path(CardsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cards: %w", err)
	}
	var doc cardsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing cards: %w", err)
	}
	return doc.Cards, nil
}

func (s *FileStore) saveCards(cards []model.Card) error {
	if cards == nil {
		cards = []model.Card{}
	}
	data, err := yaml.Marshal(cardsDoc{Cards: cards})
	if err != nil {
		return fmt.Errorf("marshaling cards: %w", err)
	}
	return s.writeFile(CardsFile, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func (s *FileStore) loadCategories() ([]model.CustomCategory, error) {
	f, err := os.Open(s.path(CategoriesFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening categories: %w", err)
	}
	defer f.Close()
	return ReadCategories(f)
}

func (s *FileStore) saveCategories(cats []model.CustomCategory) error {
	return s.writeFile(CategoriesFile, func(w io.Writer) error {
		return WriteCategories(w, cats)
	})
}

func (s *FileStore) loadTransactions() ([]storedTransaction, error) {
	f, err := os.Open(s.path(TransactionsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening transactions: %w", err)
	}
	defer f.Close()
	return readTransactions(f)
}

func (s *FileStore) saveTransactions(txns []storedTransaction) error {
	return s.writeFile(TransactionsFile, func(w io.Writer) error {
		return writeTransactions(w, txns)
	})
}

// writeFile renders a file in memory and replaces name with it atomically.
func (s *FileStore) writeFile(name string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", name, err)
	}

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *FileStore) exists(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}
