package storage

import (
	"context"
	"errors"

	"github.com/username/tradefolio/backend/src/models"
)

// ErrNotFound is returned when the requested trade id does not exist.
var ErrNotFound = errors.New("trade not found")

// ErrDuplicateTrade is returned when a write collides with an existing
// trade's fingerprint.
var ErrDuplicateTrade = errors.New("duplicate trade")

// TradeStore is the persistence collaborator the core depends on. The core
// only requires that a call returning nil has been durably applied; beyond
// that, consistency of the underlying collection is the store's concern.
type TradeStore interface {
	ListTrades(ctx context.Context, filter models.TradeFilter) ([]models.Trade, error)
	GetTrade(ctx context.Context, id int64) (models.Trade, error)
	CreateTrade(ctx context.Context, t models.Trade) (models.Trade, error)
	UpdateTrade(ctx context.Context, id int64, t models.Trade) (models.Trade, error)
	DeleteTrade(ctx context.Context, id int64) error

	// SaveImportedTrades persists a validated batch. Rows whose fingerprint
	// already exists are skipped, not errors; the returned trades carry their
	// assigned ids.
	SaveImportedTrades(ctx context.Context, trades []models.Trade) (saved []models.Trade, skipped int, err error)

	// Fingerprints returns the duplicate-detection keys of every persisted
	// trade, for pre-insert dedup against prior uploads.
	Fingerprints(ctx context.Context) (map[string]struct{}, error)

	Close() error
}
