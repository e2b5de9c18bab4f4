package overrides

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/cardspend/internal/model"
)

// FileName is the override file inside a data directory.
const FileName = "overrides.csv"

// Header is the CSV header for overrides.csv.
const Header = "store,key,value"

const (
	numFields = 3
	colStore  = 0
	colKey    = 1
	colValue  = 2

	storeCategory = "category"
	storeNeedWant = "need_want"
)

// Set bundles the two override stores of a session.
type Set struct {
	Categories *Categories
	NeedWants  *NeedWants
}

// NewSet returns a Set with two empty stores.
func NewSet() *Set {
	return &Set{Categories: NewCategories(), NeedWants: NewNeedWants()}
}

// ClearAll empties both stores.
func (s *Set) ClearAll() {
	s.Categories.ClearAll()
	s.NeedWants.ClearAll()
}

// Clear removes both overrides for key.
func (s *Set) Clear(key string) {
	s.Categories.Clear(key)
	s.NeedWants.Clear(key)
}

// Read parses overrides.csv content into a new Set.
func Read(r io.Reader) (*Set, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading overrides CSV: %w", err)
	}

	set := NewSet()
	if len(records) <= 1 {
		return set, nil
	}
	for i, rec := range records[1:] {
		switch rec[colStore] {
		case storeCategory:
			set.Categories.Set(rec[colKey], rec[colValue])
		case storeNeedWant:
			nw, ok := model.ParseNeedWant(rec[colValue])
			if !ok {
				return nil, fmt.Errorf("row %d: invalid need/want value %q", i+2, rec[colValue])
			}
			set.NeedWants.Set(rec[colKey], nw)
		default:
			return nil, fmt.Errorf("row %d: unknown store %q", i+2, rec[colStore])
		}
	}
	return set, nil
}

// Write renders both stores as overrides.csv, keys sorted within each store.
func Write(w io.Writer, set *Set) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	cats := set.Categories.Snapshot()
	for _, k := range set.Categories.Keys() {
		if err := cw.Write([]string{storeCategory, k, cats[k]}); err != nil {
			return fmt.Errorf("writing category override: %w", err)
		}
	}
	nws := set.NeedWants.Snapshot()
	for _, k := range set.NeedWants.Keys() {
		if err := cw.Write([]string{storeNeedWant, k, string(nws[k])}); err != nil {
			return fmt.Errorf("writing need/want override: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Load reads <dir>/overrides.csv. A missing file yields an empty Set.
func Load(dir string) (*Set, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return NewSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening overrides: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Save writes set to <dir>/overrides.csv.
func Save(dir string, set *Set) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, FileName))
	if err != nil {
		return fmt.Errorf("creating overrides file: %w", err)
	}
	defer f.Close()

	if err := Write(f, set); err != nil {
		return fmt.Errorf("writing overrides: %w", err)
	}
	return nil
}
