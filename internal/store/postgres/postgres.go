// Package postgres provides a PostgreSQL implementation of store.Backend.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/cardspend/internal/model"
	"github.com/cleared-dev/cardspend/internal/store"
)

//go:embed 001_create_tables.sql
var migrationSQL string

// uniqueViolation is the SQLSTATE for a primary key conflict.
const uniqueViolation = "23505"

// Config holds the PostgreSQL connection settings.
type Config struct {
	// URL is a libpq connection string or postgres:// URL.
	URL string
	// MaxPoolSize is the maximum number of connections in the pool.
	MaxPoolSize int
	// ConnectTimeout bounds the initial ping.
	ConnectTimeout time.Duration
}

// Store persists cards, categories and transactions in PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

var _ store.Backend = (*Store)(nil)

// New connects, pings and runs migrations.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 4
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxPoolSize)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &Store{pool: pool, logger: logger}
	if _, err := pool.Exec(ctx, migrationSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Debug("connected to PostgreSQL", zap.String("database", poolConfig.ConnConfig.Database))
	return s, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Cards returns all cards with their mappings, oldest first.
func (s *Store) Cards(ctx context.Context) ([]model.Card, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, date_column, amount_column, category_column, description_column
		FROM cards ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying cards: %w", err)
	}
	cards, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Card, error) {
		var c model.Card
		err := row.Scan(&c.ID, &c.Name,
			&c.CSVColumnMapping.DateColumn, &c.CSVColumnMapping.AmountColumn,
			&c.CSVColumnMapping.CategoryColumn, &c.CSVColumnMapping.DescriptionColumn)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning cards: %w", err)
	}

	mrows, err := s.pool.Query(ctx, `
		SELECT card_id, card_provided_category, custom_category_id
		FROM category_mappings ORDER BY card_id, id`)
	if err != nil {
		return nil, fmt.Errorf("querying category mappings: %w", err)
	}
	defer mrows.Close()

	byCard := make(map[string][]model.CategoryMapping)
	for mrows.Next() {
		var cardID string
		var m model.CategoryMapping
		if err := mrows.Scan(&cardID, &m.CardProvidedCategory, &m.CustomCategoryID); err != nil {
			return nil, fmt.Errorf("scanning category mapping: %w", err)
		}
		byCard[cardID] = append(byCard[cardID], m)
	}
	if err := mrows.Err(); err != nil {
		return nil, fmt.Errorf("reading category mappings: %w", err)
	}

	for i := range cards {
		cards[i].CategoryMappings = byCard[cards[i].ID]
	}
	return cards, nil
}

// Categories returns all custom categories, oldest first.
func (s *Store) Categories(ctx context.Context) ([]model.CustomCategory, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, category_type FROM custom_categories ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	cats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.CustomCategory, error) {
		var c model.CustomCategory
		var ct string
		err := row.Scan(&c.ID, &c.Name, &ct)
		c.CategoryType = model.CategoryType(ct)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning categories: %w", err)
	}
	return cats, nil
}

// Transactions returns all transactions in import order.
func (s *Store) Transactions(ctx context.Context) ([]model.Transaction, error) {
	rows, err := s.pool.Query(ctx, `SELECT date, description, amount::text, category_id FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	txns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Transaction, error) {
		var t model.Transaction
		var amount string
		if err := row.Scan(&t.Date, &t.Description, &amount, &t.CategoryID); err != nil {
			return t, err
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return t, fmt.Errorf("parsing amount %q: %w", amount, err)
		}
		t.Amount = d
		return t, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning transactions: %w", err)
	}
	return txns, nil
}

// PutCard inserts or updates a card; mappings are untouched.
func (s *Store) PutCard(ctx context.Context, id, name string, cols model.ColumnMapping) error {
	if err := store.ValidateCard(id, name, cols); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO cards (id, name, date_column, amount_column, category_column, description_column)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			date_column = EXCLUDED.date_column,
			amount_column = EXCLUDED.amount_column,
			category_column = EXCLUDED.category_column,
			description_column = EXCLUDED.description_column`,
		id, strings.TrimSpace(name), cols.DateColumn, cols.AmountColumn, cols.CategoryColumn, cols.DescriptionColumn)
	if err != nil {
		return fmt.Errorf("upserting card: %w", err)
	}
	return nil
}

// AddCategoryMapping appends a mapping to an existing card.
func (s *Store) AddCategoryMapping(ctx context.Context, cardID string, m model.CategoryMapping) error {
	if err := store.ValidateMapping(m); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO category_mappings (card_id, card_provided_category, custom_category_id)
		SELECT id, $2, $3 FROM cards WHERE id = $1`,
		cardID, strings.TrimSpace(m.CardProvidedCategory), m.CustomCategoryID)
	if err != nil {
		return fmt.Errorf("inserting category mapping: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("card %q: %w", cardID, store.ErrNotFound)
	}
	return nil
}

// AddCategory inserts a custom category.
func (s *Store) AddCategory(ctx context.Context, c model.CustomCategory) error {
	if err := store.ValidateCategory(c); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO custom_categories (id, name, category_type) VALUES ($1, $2, $3)`,
		c.ID, strings.TrimSpace(c.Name), string(c.CategoryType))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("category %q: %w", c.ID, store.ErrDuplicate)
		}
		return fmt.Errorf("inserting category: %w", err)
	}
	return nil
}

// UpdateCategoryType changes a category's need/want type.
func (s *Store) UpdateCategoryType(ctx context.Context, id string, t model.CategoryType) error {
	if err := store.ValidateCategoryType(t); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `UPDATE custom_categories SET category_type = $2 WHERE id = $1`, id, string(t))
	if err != nil {
		return fmt.Errorf("updating category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %q: %w", id, store.ErrNotFound)
	}
	return nil
}

// AppendTransactions inserts a batch in one database transaction.
func (s *Store) AppendTransactions(ctx context.Context, cardID string, txns []model.Transaction) error {
	if strings.TrimSpace(cardID) == "" {
		return fmt.Errorf("card id is empty: %w", store.ErrInvalid)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Warn("rollback failed", zap.Error(rbErr))
		}
	}()

	batch := &pgx.Batch{}
	for _, t := range txns {
		batch.Queue(`INSERT INTO transactions (card_id, date, description, amount, category_id) VALUES ($1, $2, $3, $4::numeric, $5)`,
			cardID, t.Date, t.Description, t.Amount.String(), t.CategoryID)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting transactions: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transactions: %w", err)
	}
	return nil
}

// ResetTransactions deletes every transaction.
func (s *Store) ResetTransactions(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE transactions`); err != nil {
		return fmt.Errorf("truncating transactions: %w", err)
	}
	return nil
}
