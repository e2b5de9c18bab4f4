package app

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cleared-dev/cardspend/internal/activity"
	"github.com/cleared-dev/cardspend/internal/config"
	"github.com/cleared-dev/cardspend/internal/export"
	"github.com/cleared-dev/cardspend/internal/id"
	"github.com/cleared-dev/cardspend/internal/importer"
	"github.com/cleared-dev/cardspend/internal/model"
	"github.com/cleared-dev/cardspend/internal/overrides"
	"github.com/cleared-dev/cardspend/internal/store"
)

// newTestDir writes a file-backend config without git.
func newTestDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, store.NewFileStore(dir).Init())
	cfg := config.Default()
	cfg.Git.AutoCommit = false
	require.NoError(t, config.Save(filepath.Join(dir, config.FileName), cfg))
	return dir
}

func openTestApp(t *testing.T, dir string) *App {
	t.Helper()
	a, err := Open(context.Background(), dir, zap.NewNop())
	require.NoError(t, err)
	return a
}

func statement(t *testing.T) *os.File {
	t.Helper()
	f, err := os.Open("../../testdata/card_statement.csv")
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

// seed creates a card with dining and rent mappings and imports the statement.
func seed(t *testing.T, a *App) (model.Card, map[string]model.CustomCategory) {
	t.Helper()
	ctx := context.Background()

	dining, err := a.AddCategory(ctx, "Dining Out", model.CategoryTypeWant)
	require.NoError(t, err)
	rent, err := a.AddCategory(ctx, "Housing", model.CategoryTypeNeed)
	require.NoError(t, err)

	card, err := a.AddCard(ctx, "Everyday Visa", model.DefaultColumnMapping())
	require.NoError(t, err)
	require.NoError(t, a.MapCategory(ctx, card.ID, "Dining", dining.ID))
	require.NoError(t, a.MapCategory(ctx, card.ID, "Rent", rent.ID))

	_, err = a.Import(ctx, card.ID, statement(t))
	require.NoError(t, err)

	return card, map[string]model.CustomCategory{"dining": dining, "rent": rent}
}

func TestOpen_NotInitialized(t *testing.T) {
	_, err := Open(context.Background(), t.TempDir(), zap.NewNop())
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestOpen_InvalidBackend(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Backend.Kind = "s3"
	require.NoError(t, config.Save(filepath.Join(dir, config.FileName), cfg))

	_, err := Open(context.Background(), dir, zap.NewNop())
	assert.ErrorContains(t, err, "unknown backend")
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	hash, err := Init(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	for _, name := range []string{config.FileName, store.CardsFile, store.CategoriesFile, store.TransactionsFile, overrides.FileName} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "%s should exist", name)
	}

	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "init:")

	_, err = Init(dir)
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestImport_RecordsUploadStatus(t *testing.T) {
	dir := newTestDir(t)
	a := openTestApp(t, dir)
	ctx := context.Background()

	card, _ := seed(t, a)
	other, err := a.AddCard(ctx, "Travel Card", model.DefaultColumnMapping())
	require.NoError(t, err)

	cards, err := a.Cards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, card.ID, cards[0].ID)
	assert.True(t, cards[0].Uploaded)
	assert.Equal(t, other.ID, cards[1].ID)
	assert.False(t, cards[1].Uploaded)

	require.NoError(t, a.Close())

	// Status survives the session through the activity log.
	a = openTestApp(t, dir)
	defer a.Close()
	cards, err = a.Cards(ctx)
	require.NoError(t, err)
	assert.True(t, cards[0].Uploaded)

	txns, err := a.Transactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txns, 6)
}

func TestImport_EmptyStatementSubmitsNothing(t *testing.T) {
	a := openTestApp(t, newTestDir(t))
	defer a.Close()
	ctx := context.Background()

	card, err := a.AddCard(ctx, "Visa", model.DefaultColumnMapping())
	require.NoError(t, err)

	_, err = a.Import(ctx, card.ID, strings.NewReader("Date,Amount,Category,Description\n"))
	assert.ErrorIs(t, err, importer.ErrNoTransactions)

	txns, err := a.Transactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txns)

	cards, err := a.Cards(ctx)
	require.NoError(t, err)
	assert.False(t, cards[0].Uploaded)
}

func TestOverrides_Precedence(t *testing.T) {
	dir := newTestDir(t)
	a := openTestApp(t, dir)
	ctx := context.Background()
	_, cats := seed(t, a)

	txns, err := a.Transactions(ctx)
	require.NoError(t, err)
	cafe := txns[3]
	require.Equal(t, "CORNER CAFE", cafe.Description)
	key := id.TransactionKey(cafe)

	rows, err := a.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dining Out", rows[3].CategoryName)
	assert.Equal(t, model.ClassificationWant, rows[3].NeedWant)

	require.NoError(t, a.SetNeedWantOverride(ctx, key, model.NeedWantNeed))
	rows, err = a.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ClassificationNeed, rows[3].NeedWant)
	assert.True(t, rows[3].HasNeedWantOverride)

	require.NoError(t, a.SetNeedWantOverride(ctx, key, model.NeedWantAuto))
	rows, err = a.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ClassificationWant, rows[3].NeedWant)
	assert.False(t, rows[3].HasNeedWantOverride)

	require.NoError(t, a.SetCategoryOverride(ctx, key, cats["rent"].ID))
	rows, err = a.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Housing", rows[3].CategoryName)
	assert.Equal(t, model.ClassificationNeed, rows[3].NeedWant)

	// Empty category leaves the override in place.
	require.NoError(t, a.SetCategoryOverride(ctx, key, ""))
	v, ok := a.Overrides().Categories.Get(key)
	require.True(t, ok)
	assert.Equal(t, cats["rent"].ID, v)

	require.NoError(t, a.Close())

	// Overrides persist between sessions.
	a = openTestApp(t, dir)
	v, ok = a.Overrides().Categories.Get(key)
	require.True(t, ok)
	assert.Equal(t, cats["rent"].ID, v)

	a.ClearOverride(key)
	rows, err = a.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dining Out", rows[3].CategoryName)
	require.NoError(t, a.Close())
}

func TestOverrides_Validation(t *testing.T) {
	a := openTestApp(t, newTestDir(t))
	defer a.Close()
	ctx := context.Background()
	_, cats := seed(t, a)

	err := a.SetCategoryOverride(ctx, "2024-01-01|NOPE|1", cats["rent"].ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	txns, err := a.Transactions(ctx)
	require.NoError(t, err)
	err = a.SetCategoryOverride(ctx, id.TransactionKey(txns[0]), "cat_missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = a.SetNeedWantOverride(ctx, "2024-01-01|NOPE|1", model.NeedWantWant)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Zero(t, a.Overrides().Categories.Len())
	assert.Zero(t, a.Overrides().NeedWants.Len())
}

func TestReset_ClearsOverridesAndUploads(t *testing.T) {
	dir := newTestDir(t)
	a := openTestApp(t, dir)
	ctx := context.Background()
	_, cats := seed(t, a)

	txns, err := a.Transactions(ctx)
	require.NoError(t, err)
	key := id.TransactionKey(txns[0])
	require.NoError(t, a.SetCategoryOverride(ctx, key, cats["dining"].ID))
	require.NoError(t, a.SetNeedWantOverride(ctx, key, model.NeedWantNeed))

	require.NoError(t, a.Reset(ctx))
	assert.Zero(t, a.Overrides().Categories.Len())
	assert.Zero(t, a.Overrides().NeedWants.Len())

	txns, err = a.Transactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txns)

	cards, err := a.Cards(ctx)
	require.NoError(t, err)
	assert.False(t, cards[0].Uploaded)

	out, err := a.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, export.EmptyText, out)
	require.NoError(t, a.Close())

	entries, err := activity.Read(dir)
	require.NoError(t, err)
	assert.Equal(t, activity.ActionReset, entries[len(entries)-1].Action)

	set, err := overrides.Load(dir)
	require.NoError(t, err)
	assert.Zero(t, set.Categories.Len())
}

type failingReset struct {
	store.Backend
}

func (failingReset) ResetTransactions(context.Context) error {
	return assert.AnError
}

func TestReset_BackendFailureKeepsOverrides(t *testing.T) {
	a := openTestApp(t, newTestDir(t))
	defer a.Close()
	ctx := context.Background()
	seed(t, a)

	txns, err := a.Transactions(ctx)
	require.NoError(t, err)
	key := id.TransactionKey(txns[0])
	require.NoError(t, a.SetNeedWantOverride(ctx, key, model.NeedWantWant))

	a.backend = failingReset{Backend: a.backend}
	err = a.Reset(ctx)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, a.Overrides().NeedWants.Len())

	cards, err := a.Cards(ctx)
	require.NoError(t, err)
	assert.True(t, cards[0].Uploaded)
}

func TestExport(t *testing.T) {
	a := openTestApp(t, newTestDir(t))
	defer a.Close()
	ctx := context.Background()
	seed(t, a)

	out, err := a.Export(ctx)
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, export.Header, lines[0])
	assert.Equal(t, "2024-01-03\tGITHUB PRO SUBSCRIPTION\t-4.00\tUnmapped\tUnassigned", lines[1])
	assert.Equal(t, "2024-01-07\tPROPERTY MGMT\t-1045.00\tHousing\tNeed", lines[3])
	assert.Equal(t, "2024-01-11\tCORNER CAFE\t-18.40\tDining Out\tWant", lines[4])

	path := filepath.Join(t.TempDir(), "export.tsv")
	require.NoError(t, a.ExportFile(ctx, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
}

func TestCards_Validation(t *testing.T) {
	a := openTestApp(t, newTestDir(t))
	defer a.Close()
	ctx := context.Background()

	_, err := a.AddCard(ctx, "   ", model.DefaultColumnMapping())
	assert.ErrorIs(t, err, store.ErrInvalid)

	err = a.SetColumns(ctx, "card_missing", model.DefaultColumnMapping())
	assert.ErrorIs(t, err, store.ErrNotFound)

	card, err := a.AddCard(ctx, "  Visa  ", model.DefaultColumnMapping())
	require.NoError(t, err)
	assert.Equal(t, "Visa", card.Name)

	cols := model.ColumnMapping{DateColumn: 3, AmountColumn: 2, CategoryColumn: 1, DescriptionColumn: 0}
	require.NoError(t, a.SetColumns(ctx, card.ID, cols))
	got, err := a.Card(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, cols, got.CSVColumnMapping)

	err = a.SetColumns(ctx, card.ID, model.ColumnMapping{DateColumn: -1})
	assert.ErrorIs(t, err, store.ErrInvalid)

	err = a.MapCategory(ctx, card.ID, "Dining", "cat_missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCategories(t *testing.T) {
	a := openTestApp(t, newTestDir(t))
	defer a.Close()
	ctx := context.Background()

	_, err := a.AddCategory(ctx, "", model.CategoryTypeNeed)
	assert.ErrorIs(t, err, store.ErrInvalid)
	_, err = a.AddCategory(ctx, "Fun", model.CategoryType("maybe"))
	assert.ErrorIs(t, err, store.ErrInvalid)

	c, err := a.AddCategory(ctx, "Fun", model.CategoryTypeWant)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.ID, "cat_"))

	require.NoError(t, a.SetCategoryType(ctx, c.ID, model.CategoryTypeNeed))
	cats, err := a.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, model.CategoryTypeNeed, cats[0].CategoryType)

	err = a.SetCategoryType(ctx, "cat_missing", model.CategoryTypeNeed)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestClose_CommitsWhenEnabled(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	_, err := Init(dir)
	require.NoError(t, err)

	a := openTestApp(t, dir)
	_, err = a.AddCategory(context.Background(), "Groceries", model.CategoryTypeNeed)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "category_add: Added need category Groceries")
}
