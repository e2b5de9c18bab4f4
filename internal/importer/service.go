package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cleared-dev/cardspend/internal/model"
	"github.com/cleared-dev/cardspend/internal/store"
)

var (
	// ErrNoTransactions is returned when no row of a statement survived parsing.
	ErrNoTransactions = errors.New("no valid transactions found in CSV")
	// ErrMappingNotConfigured is returned for a card whose column mapping is unusable.
	ErrMappingNotConfigured = errors.New("CSV column mapping not configured for this card")
)

// Backend is the part of the data service an import needs.
type Backend interface {
	Cards(ctx context.Context) ([]model.Card, error)
	AppendTransactions(ctx context.Context, cardID string, txns []model.Transaction) error
}

// Service imports statements for a card and submits them for persistence.
// Callers serialize imports for the same card.
type Service struct {
	backend Backend
	logger  *zap.Logger
}

// NewService creates an import Service.
func NewService(backend Backend, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{backend: backend, logger: logger}
}

// Summary describes a completed import.
type Summary struct {
	Card         model.Card
	Transactions []model.Transaction
	Skipped      []SkippedRow
}

// Import parses the statement in r for cardID and submits every parsed
// transaction as one batch. Nothing is submitted when parsing yields no
// transactions.
func (s *Service) Import(ctx context.Context, cardID string, r io.Reader) (*Summary, error) {
	card, err := s.findCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if !card.CSVColumnMapping.Valid() {
		return nil, ErrMappingNotConfigured
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}

	res, err := Parse(string(data), card)
	if err != nil {
		return nil, err
	}
	for _, sk := range res.Skipped {
		s.logger.Debug("skipping row",
			zap.String("card_id", card.ID),
			zap.Int("line", sk.Line),
			zap.String("reason", sk.Reason),
		)
	}
	if len(res.Transactions) == 0 {
		return nil, ErrNoTransactions
	}

	if err := s.backend.AppendTransactions(ctx, card.ID, res.Transactions); err != nil {
		s.logger.Error("submitting transactions failed", zap.String("card_id", card.ID), zap.Error(err))
		return nil, fmt.Errorf("submitting transactions: %w", err)
	}

	s.logger.Info("imported statement",
		zap.String("card_id", card.ID),
		zap.String("card", card.Name),
		zap.Int("imported", len(res.Transactions)),
		zap.Int("skipped", len(res.Skipped)),
	)

	return &Summary{Card: card, Transactions: res.Transactions, Skipped: res.Skipped}, nil
}

func (s *Service) findCard(ctx context.Context, cardID string) (model.Card, error) {
	cards, err := s.backend.Cards(ctx)
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
