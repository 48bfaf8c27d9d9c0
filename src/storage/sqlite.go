package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/username/tradefolio/backend/src/logger"
	"github.com/username/tradefolio/backend/src/models"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements TradeStore on a local sqlite database. Money columns
// are stored as TEXT so decimal values round-trip without float drift.
type SQLiteStore struct {
	db *sql.DB
}

const createTradesTable = `
CREATE TABLE IF NOT EXISTS trades (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_file TEXT NOT NULL DEFAULT '',
	import_time TEXT NOT NULL DEFAULT '',
	security_type TEXT NOT NULL,
	action TEXT NOT NULL,
	symbol TEXT NOT NULL,
	security_name TEXT NOT NULL DEFAULT '',
	underlying_symbol TEXT NOT NULL DEFAULT '',
	option_type TEXT NOT NULL DEFAULT '',
	strike_price TEXT NOT NULL DEFAULT '0',
	expiration_date TEXT NOT NULL DEFAULT '',
	trade_date TEXT NOT NULL,
	trade_time TEXT NOT NULL DEFAULT '00:00:00',
	quantity INTEGER NOT NULL,
	price TEXT NOT NULL DEFAULT '0',
	commission TEXT NOT NULL DEFAULT '0',
	amount TEXT NOT NULL DEFAULT '0',
	net_amount TEXT NOT NULL DEFAULT '0',
	source TEXT NOT NULL DEFAULT '',
	trade_rating INTEGER NOT NULL DEFAULT 0,
	trade_type TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	close_date TEXT NOT NULL DEFAULT '',
	close_price TEXT NOT NULL DEFAULT '0',
	close_quantity INTEGER NOT NULL DEFAULT 0,
	close_reason TEXT NOT NULL DEFAULT '',
	broker TEXT NOT NULL DEFAULT '',
	account_id TEXT NOT NULL DEFAULT '',
	fingerprint TEXT NOT NULL,
	UNIQUE(fingerprint)
);
CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
CREATE INDEX IF NOT EXISTS idx_trades_trade_date ON trades(trade_date);
`

// tradeColumns is the canonical column order used by every scan and insert.
const tradeColumns = `source_file, import_time, security_type, action, symbol, security_name,
	underlying_symbol, option_type, strike_price, expiration_date,
	trade_date, trade_time, quantity, price, commission, amount, net_amount,
	source, trade_rating, trade_type, notes,
	close_date, close_price, close_quantity, close_reason,
	broker, account_id, fingerprint`

func NewSQLiteStore(databasePath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", databasePath, err)
	}
	s := &SQLiteStore{db: db}
	if _, err := db.Exec(createTradesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create trades table: %w", err)
	}
	s.migrateTradeTable()
	return s, nil
}

// migrateTradeTable adds columns introduced after the first schema revision.
// Databases created from the current schema already have them.
func (s *SQLiteStore) migrateTradeTable() {
	rows, err := s.db.Query("PRAGMA table_info(trades)")
	if err != nil {
		logger.L.Error("Error querying table schema for 'trades'", "error", err)
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			logger.L.Error("Error scanning column info for 'trades'", "error", err)
			return
		}
		columnExists[name] = true
	}
	if err := rows.Err(); err != nil {
		logger.L.Error("Error iterating over column info for 'trades'", "error", err)
		return
	}

	additive := map[string]string{
		"close_reason": "ALTER TABLE trades ADD COLUMN close_reason TEXT NOT NULL DEFAULT ''",
		"trade_type":   "ALTER TABLE trades ADD COLUMN trade_type TEXT NOT NULL DEFAULT ''",
		"account_id":   "ALTER TABLE trades ADD COLUMN account_id TEXT NOT NULL DEFAULT ''",
	}
	for column, stmt := range additive {
		if columnExists[column] {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			logger.L.Error("Error adding column to 'trades' table", "column", column, "error", err)
		} else {
			logger.L.Info("Added column to 'trades' table", "column", column)
		}
	}
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func scanTrade(scanner interface{ Scan(...any) error }) (models.Trade, error) {
	var t models.Trade
	err := scanner.Scan(
		&t.ID, &t.SourceFile, &t.ImportTime, &t.SecurityType, &t.Action, &t.Symbol, &t.SecurityName,
		&t.UnderlyingSymbol, &t.OptionType, &t.StrikePrice, &t.ExpirationDate,
		&t.TradeDate, &t.TradeTime, &t.Quantity, &t.Price, &t.Commission, &t.Amount, &t.NetAmount,
		&t.Source, &t.TradeRating, &t.TradeType, &t.Notes,
		&t.CloseDate, &t.ClosePrice, &t.CloseQuantity, &t.CloseReason,
		&t.Broker, &t.AccountID, &t.Fingerprint,
	)
	return t, err
}

func tradeArgs(t models.Trade) []any {
	return []any{
		t.SourceFile, t.ImportTime, t.SecurityType, t.Action, t.Symbol, t.SecurityName,
		t.UnderlyingSymbol, t.OptionType, t.StrikePrice, t.ExpirationDate,
		t.TradeDate, t.TradeTime, t.Quantity, t.Price, t.Commission, t.Amount, t.NetAmount,
		t.Source, t.TradeRating, t.TradeType, t.Notes,
		t.CloseDate, t.ClosePrice, t.CloseQuantity, t.CloseReason,
		t.Broker, t.AccountID, t.Fingerprint,
	}
}

func insertPlaceholders() string {
	return strings.TrimSuffix(strings.Repeat("?, ", 28), ", ")
}

// ListTrades returns a snapshot matching the filter, ordered by trade date,
// time and id ascending so the matcher sees trades in import order.
func (s *SQLiteStore) ListTrades(ctx context.Context, filter models.TradeFilter) ([]models.Trade, error) {
	query := "SELECT id, " + tradeColumns + " FROM trades"
	var conds []string
	var args []any

	if filter.Symbol != "" {
		conds = append(conds, "symbol = ?")
		args = append(args, strings.ToUpper(filter.Symbol))
	}
	if filter.SecurityType != "" {
		conds = append(conds, "security_type = ?")
		args = append(args, filter.SecurityType)
	}
	if filter.Source != "" {
		conds = append(conds, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.StartDate != "" {
		conds = append(conds, "trade_date >= ?")
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		conds = append(conds, "trade_date <= ?")
		args = append(args, filter.EndDate)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY trade_date ASC, trade_time ASC, id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning trade row: %w", err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over trade rows: %w", err)
	}
	return trades, nil
}

func (s *SQLiteStore) GetTrade(ctx context.Context, id int64) (models.Trade, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, "+tradeColumns+" FROM trades WHERE id = ?", id)
	t, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Trade{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return models.Trade{}, fmt.Errorf("error scanning trade %d: %w", id, err)
	}
	return t, nil
}

func (s *SQLiteStore) CreateTrade(ctx context.Context, t models.Trade) (models.Trade, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO trades ("+tradeColumns+") VALUES ("+insertPlaceholders()+")",
		tradeArgs(t)...)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return models.Trade{}, fmt.Errorf("%w: fingerprint %s", ErrDuplicateTrade, t.Fingerprint)
		}
		return models.Trade{}, fmt.Errorf("error inserting trade: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Trade{}, fmt.Errorf("error resolving inserted trade id: %w", err)
	}
	t.ID = id
	return t, nil
}

func (s *SQLiteStore) UpdateTrade(ctx context.Context, id int64, t models.Trade) (models.Trade, error) {
	assignments := make([]string, 0, 28)
	for _, col := range strings.Split(tradeColumns, ",") {
		assignments = append(assignments, strings.TrimSpace(col)+" = ?")
	}
	args := append(tradeArgs(t), id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE trades SET "+strings.Join(assignments, ", ")+" WHERE id = ?", args...)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return models.Trade{}, fmt.Errorf("%w: fingerprint %s", ErrDuplicateTrade, t.Fingerprint)
		}
		return models.Trade{}, fmt.Errorf("error updating trade %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Trade{}, fmt.Errorf("error resolving update result for trade %d: %w", id, err)
	}
	if affected == 0 {
		return models.Trade{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	t.ID = id
	return t, nil
}

func (s *SQLiteStore) DeleteTrade(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trades WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("error deleting trade %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error resolving delete result for trade %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

// SaveImportedTrades persists a batch inside one database transaction. Each
// row is atomic: it is either fully committed or skipped on a fingerprint
// collision; a skip never fails the batch.
func (s *SQLiteStore) SaveImportedTrades(ctx context.Context, trades []models.Trade) ([]models.Trade, int, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx,
		"INSERT INTO trades ("+tradeColumns+") VALUES ("+insertPlaceholders()+")")
	if err != nil {
		return nil, 0, fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	var saved []models.Trade
	skipped := 0
	for _, t := range trades {
		res, err := stmt.ExecContext(ctx, tradeArgs(t)...)
		if err != nil {
			if isUniqueConstraintErr(err) {
				logger.L.Debug("Skipping duplicate trade on import", "fingerprint", t.Fingerprint)
				skipped++
				continue
			}
			return nil, 0, fmt.Errorf("error inserting imported trade (symbol %s): %w", t.Symbol, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, 0, fmt.Errorf("error resolving imported trade id: %w", err)
		}
		t.ID = id
		saved = append(saved, t)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("error committing imported trades: %w", err)
	}
	return saved, skipped, nil
}

func (s *SQLiteStore) Fingerprints(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT fingerprint FROM trades")
	if err != nil {
		return nil, fmt.Errorf("error querying fingerprints: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("error scanning fingerprint: %w", err)
		}
		out[fp] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over fingerprints: %w", err)
	}
	return out, nil
}

func isUniqueConstraintErr(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
