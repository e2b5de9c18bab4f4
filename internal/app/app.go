// Package app opens a cardspend data directory and runs the operations the
// CLI exposes on top of the data service, the override stores and the
// activity log.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cleared-dev/cardspend/internal/activity"
	"github.com/cleared-dev/cardspend/internal/config"
	"github.com/cleared-dev/cardspend/internal/export"
	"github.com/cleared-dev/cardspend/internal/gitops"
	"github.com/cleared-dev/cardspend/internal/id"
	"github.com/cleared-dev/cardspend/internal/importer"
	"github.com/cleared-dev/cardspend/internal/logging"
	"github.com/cleared-dev/cardspend/internal/model"
	"github.com/cleared-dev/cardspend/internal/overrides"
	"github.com/cleared-dev/cardspend/internal/resolve"
	"github.com/cleared-dev/cardspend/internal/store"
	"github.com/cleared-dev/cardspend/internal/store/postgres"
)

var (
	// ErrNotInitialized is returned by Open for a directory without cardspend.yaml.
	ErrNotInitialized = errors.New("not a cardspend data directory (run cardspend init)")
	// ErrAlreadyInitialized is returned by Init when cardspend.yaml exists.
	ErrAlreadyInitialized = errors.New("data directory already initialized")
)

// App is one session against a data directory. It is not safe for
// concurrent use.
type App struct {
	dir      string
	cfg      *config.Config
	logger   *zap.Logger
	backend  store.Backend
	closeFn  func()
	importer *importer.Service
	set      *overrides.Set

	overridesChanged bool
	pending          []activity.Entry
	now              func() time.Time
}

// Init creates a new data directory with a default config, empty data files
// and, when auto-commit is on, a git repository with an initial commit.
// Returns the short commit hash, or "" without git.
func Init(dir string) (string, error) {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return "", fmt.Errorf("%s: %w", dir, ErrAlreadyInitialized)
	}

	if err := store.NewFileStore(dir).Init(); err != nil {
		return "", fmt.Errorf("creating data files: %w", err)
	}

	cfg := config.Default()
	if err := config.Save(cfgPath, cfg); err != nil {
		return "", err
	}
	if err := overrides.Save(dir, overrides.NewSet()); err != nil {
		return "", err
	}
	entry := activity.Entry{Timestamp: time.Now().UTC(), Action: activity.ActionInit, Details: "Initialized data directory"}
	if err := activity.Append(dir, []activity.Entry{entry}); err != nil {
		return "", err
	}

	if !cfg.Git.AutoCommit {
		return "", nil
	}
	if !gitops.IsRepo(dir) {
		if err := gitops.Init(dir); err != nil {
			return "", err
		}
	}
	hash, err := gitops.CommitAll(dir, "init: Initialize cardspend data", author(cfg))
	if err != nil {
		return "", fmt.Errorf("initial commit: %w", err)
	}
	return hash, nil
}

// Open loads the config in dir, connects the configured backend and loads
// the persisted overrides. A nil logger is built from the config log level.
func Open(ctx context.Context, dir string, logger *zap.Logger) (*App, error) {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotInitialized)
	}
	cfg, err := config.Resolve(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if logger == nil {
		logger, err = logging.New(cfg.Log.Level)
		if err != nil {
			return nil, err
		}
	}

	a := &App{dir: dir, cfg: cfg, logger: logger, now: time.Now, closeFn: func() {}}

	switch cfg.Backend.Kind {
	case config.BackendPostgres:
		pg, err := postgres.New(ctx, postgres.Config{
			URL:         cfg.Postgres.URL,
			MaxPoolSize: cfg.Postgres.MaxPoolSize,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("opening postgres backend: %w", err)
		}
		a.backend = pg
		a.closeFn = pg.Close
	default:
		a.backend = store.NewFileStore(dir)
	}

	a.set, err = overrides.Load(dir)
	if err != nil {
		a.closeFn()
		return nil, err
	}
	a.importer = importer.NewService(a.backend, logger)
	return a, nil
}

// Close persists overrides and the activity of this session, commits the
// data directory when auto-commit is on and releases the backend.
func (a *App) Close() error {
	defer a.closeFn()

	if a.overridesChanged {
		if err := overrides.Save(a.dir, a.set); err != nil {
			return err
		}
		a.overridesChanged = false
	}
	if len(a.pending) == 0 {
		return nil
	}
	entries := a.pending
	a.pending = nil
	if err := activity.Append(a.dir, entries); err != nil {
		return fmt.Errorf("writing activity log: %w", err)
	}

	if !a.cfg.Git.AutoCommit || !gitops.IsRepo(a.dir) {
		return nil
	}
	hash, err := gitops.CommitIfChanged(a.dir, commitMessage(entries), author(a.cfg))
	if err != nil {
		return err
	}
	if hash != "" {
		a.logger.Debug("committed data directory", zap.String("commit", hash))
	}
	return nil
}

// Dir returns the data directory.
func (a *App) Dir() string { return a.dir }

// Config returns the resolved configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Overrides returns the session's override stores.
func (a *App) Overrides() *overrides.Set { return a.set }

// CardStatus is a card plus whether a statement was imported for it since the
// last reset.
type CardStatus struct {
	model.Card
	Uploaded bool
}

// Cards lists every card with its upload status.
func (a *App) Cards(ctx context.Context) ([]CardStatus, error) {
	cards, err := a.backend.Cards(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching cards: %w", err)
	}
	uploaded, err := a.uploaded()
	if err != nil {
		return nil, err
	}
	out := make([]CardStatus, len(cards))
	for i, c := range cards {
		out[i] = CardStatus{Card: c, Uploaded: uploaded[c.ID]}
	}
	return out, nil
}

// Card returns the card with id.
func (a *App) Card(ctx context.Context, cardID string) (model.Card, error) {
	cards, err := a.backend.Cards(ctx)
	if err != nil {
		return model.Card{}, fmt.Errorf("fetching cards: %w", err)
	}
	for _, c := range cards {
		if c.ID == cardID {
			return c, nil
		}
	}
	return model.Card{}, fmt.Errorf("card %q: %w", cardID, store.ErrNotFound)
}

// AddCard creates a card with a new id.
func (a *App) AddCard(ctx context.Context, name string, cols model.ColumnMapping) (model.Card, error) {
	card := model.Card{ID: id.NewCardID(), Name: strings.TrimSpace(name), CSVColumnMapping: cols}
	if err := store.ValidateCard(card.ID, card.Name, cols); err != nil {
		return model.Card{}, err
	}
	if err := a.backend.PutCard(ctx, card.ID, card.Name, cols); err != nil {
		return model.Card{}, fmt.Errorf("saving card: %w", err)
	}
	a.record(activity.ActionCardPut, card.ID, "Added card "+card.Name)
	return card, nil
}

// SetColumns replaces the column mapping of an existing card.
func (a *App) SetColumns(ctx context.Context, cardID string, cols model.ColumnMapping) error {
	card, err := a.Card(ctx, cardID)
	if err != nil {
		return err
	}
	if err := store.ValidateCard(card.ID, card.Name, cols); err != nil {
		return err
	}
	if err := a.backend.PutCard(ctx, card.ID, card.Name, cols); err != nil {
		return fmt.Errorf("saving card: %w", err)
	}
	a.record(activity.ActionCardPut, card.ID, "Updated columns of "+card.Name)
	return nil
}

// MapCategory maps a card-provided category label to a custom category.
func (a *App) MapCategory(ctx context.Context, cardID, label, categoryID string) error {
	m := model.CategoryMapping{CardProvidedCategory: strings.TrimSpace(label), CustomCategoryID: categoryID}
	if err := store.ValidateMapping(m); err != nil {
		return err
	}
	if _, err := a.category(ctx, categoryID); err != nil {
		return err
	}
	if err := a.backend.AddCategoryMapping(ctx, cardID, m); err != nil {
		return fmt.Errorf("saving category mapping: %w", err)
	}
	a.record(activity.ActionCategoryMapping, cardID, fmt.Sprintf("Mapped %q to %s", m.CardProvidedCategory, categoryID))
	return nil
}

// Categories lists the custom category catalog.
func (a *App) Categories(ctx context.Context) ([]model.CustomCategory, error) {
	cats, err := a.backend.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching categories: %w", err)
	}
	return cats, nil
}

// AddCategory creates a custom category with a new id.
func (a *App) AddCategory(ctx context.Context, name string, t model.CategoryType) (model.CustomCategory, error) {
	c := model.CustomCategory{ID: id.NewCategoryID(), Name: strings.TrimSpace(name), CategoryType: t}
	if err := store.ValidateCategory(c); err != nil {
		return model.CustomCategory{}, err
	}
	if err := a.backend.AddCategory(ctx, c); err != nil {
		return model.CustomCategory{}, fmt.Errorf("saving category: %w", err)
	}
	a.record(activity.ActionCategoryAdd, c.ID, fmt.Sprintf("Added %s category %s", t, c.Name))
	return c, nil
}

// SetCategoryType changes the need/want type of a category.
func (a *App) SetCategoryType(ctx context.Context, categoryID string, t model.CategoryType) error {
	if err := store.ValidateCategoryType(t); err != nil {
		return err
	}
	if err := a.backend.UpdateCategoryType(ctx, categoryID, t); err != nil {
		return fmt.Errorf("updating category type: %w", err)
	}
	a.record(activity.ActionCategoryType, categoryID, "Set type to "+string(t))
	return nil
}

// Import parses a statement for cardID and submits it as one batch.
func (a *App) Import(ctx context.Context, cardID string, r io.Reader) (*importer.Summary, error) {
	sum, err := a.importer.Import(ctx, cardID, r)
	if err != nil {
		return nil, err
	}
	a.record(activity.ActionImport, sum.Card.ID,
		fmt.Sprintf("Imported %d transactions from %s", len(sum.Transactions), sum.Card.Name))
	return sum, nil
}

// Transactions returns every persisted transaction.
func (a *App) Transactions(ctx context.Context) ([]model.Transaction, error) {
	txns, err := a.backend.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching transactions: %w", err)
	}
	return txns, nil
}

// Rows resolves every transaction against the catalog and the overrides.
func (a *App) Rows(ctx context.Context) ([]resolve.Row, error) {
	txns, r, err := a.resolver(ctx)
	if err != nil {
		return nil, err
	}
	return r.Rows(txns), nil
}

// Export renders the transaction export text.
func (a *App) Export(ctx context.Context) (string, error) {
	txns, r, err := a.resolver(ctx)
	if err != nil {
		return "", err
	}
	return export.FormatResolved(txns, r), nil
}

// ExportFile writes the transaction export text to path.
func (a *App) ExportFile(ctx context.Context, path string) error {
	txns, r, err := a.resolver(ctx)
	if err != nil {
		return err
	}
	return export.WriteFile(path, txns, r)
}

// SetCategoryOverride points the transactions sharing key at categoryID.
// An empty categoryID leaves the override store untouched.
func (a *App) SetCategoryOverride(ctx context.Context, key, categoryID string) error {
	if categoryID == "" {
		return nil
	}
	if err := a.knownKey(ctx, key); err != nil {
		return err
	}
	if _, err := a.category(ctx, categoryID); err != nil {
		return err
	}
	a.set.Categories.Set(key, categoryID)
	a.overridesChanged = true
	a.record(activity.ActionOverride, key, "Category set to "+categoryID)
	return nil
}

// SetNeedWantOverride sets the explicit classification of key. Auto clears it.
func (a *App) SetNeedWantOverride(ctx context.Context, key string, v model.NeedWant) error {
	if err := a.knownKey(ctx, key); err != nil {
		return err
	}
	a.set.NeedWants.Set(key, v)
	a.overridesChanged = true
	a.record(activity.ActionOverride, key, "Need/want set to "+string(v))
	return nil
}

// ClearOverride removes both overrides of key.
func (a *App) ClearOverride(key string) {
	a.set.Clear(key)
	a.overridesChanged = true
	a.record(activity.ActionOverride, key, "Overrides cleared")
}

// Reset deletes every persisted transaction. Overrides and upload status are
// cleared only once the backend reset succeeded.
func (a *App) Reset(ctx context.Context) error {
	if err := a.backend.ResetTransactions(ctx); err != nil {
		a.logger.Error("resetting transactions failed", zap.Error(err))
		return fmt.Errorf("resetting transactions: %w", err)
	}
	a.set.ClearAll()
	a.overridesChanged = true
	a.record(activity.ActionReset, "", "Reset transactions")
	a.logger.Info("reset transactions")
	return nil
}

func (a *App) resolver(ctx context.Context) ([]model.Transaction, *resolve.Resolver, error) {
	txns, err := a.Transactions(ctx)
	if err != nil {
		return nil, nil, err
	}
	cats, err := a.Categories(ctx)
	if err != nil {
		return nil, nil, err
	}
	return txns, resolve.FromSet(cats, a.set), nil
}

func (a *App) category(ctx context.Context, categoryID string) (model.CustomCategory, error) {
	cats, err := a.Categories(ctx)
	if err != nil {
		return model.CustomCategory{}, err
	}
	for _, c := range cats {
		if c.ID == categoryID {
			return c, nil
		}
	}
	return model.CustomCategory{}, fmt.Errorf("category %q: %w", categoryID, store.ErrNotFound)
}

// knownKey checks that at least one persisted transaction has key.
func (a *App) knownKey(ctx context.Context, key string) error {
	txns, err := a.Transactions(ctx)
	if err != nil {
		return err
	}
	for _, t := range txns {
		if id.TransactionKey(t) == key {
			return nil
		}
	}
	return fmt.Errorf("transaction %q: %w", key, store.ErrNotFound)
}

func (a *App) uploaded() (map[string]bool, error) {
	entries, err := activity.Read(a.dir)
	if err != nil {
		return nil, err
	}
	return activity.UploadedCards(append(entries, a.pending...)), nil
}

func (a *App) record(action, subject, details string) {
	a.pending = append(a.pending, activity.Entry{
		Timestamp: a.now().UTC(),
		Action:    action,
		Subject:   subject,
		Details:   details,
	})
}

func commitMessage(entries []activity.Entry) string {
	msg := entries[0].Action + ": " + entries[0].Details
	if len(entries) > 1 {
		msg += fmt.Sprintf(" (+%d more)", len(entries)-1)
	}
	return msg
}

func author(cfg *config.Config) gitops.Author {
	return gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
}
