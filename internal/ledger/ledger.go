package ledger

import (
	"database/sql"
	"fmt"

	"trade-journal-go/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Ledger is the local sqlite record of what has been imported and synced.
// The remote store owns the annotations themselves; the ledger only keeps
// the trade history cursor and per-batch sync outcomes.
type Ledger struct {
	db *gorm.DB
}

// Open creates a ledger on the given DSN and migrates the schema.
func Open(dsn string) (*Ledger, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.Trade{}, &models.SyncRun{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return &Ledger{db: db}, nil
}

// RecordTrades inserts trades not yet in the ledger and returns only the
// newly inserted ones. Re-imports of already-seen trades are no-ops, keyed
// on (exchange, trade_id). Input order is preserved in the result.
func (l *Ledger) RecordTrades(trades []models.Trade) ([]models.Trade, error) {
	var inserted []models.Trade
	for _, trade := range trades {
		t := trade
		result := l.db.Where("exchange = ? AND trade_id = ?", t.Exchange, t.TradeID).
			FirstOrCreate(&t)
		if result.Error != nil {
			return inserted, fmt.Errorf("failed to record trade %s/%s: %w", trade.Exchange, trade.TradeID, result.Error)
		}
		if result.RowsAffected > 0 {
			inserted = append(inserted, t)
		}
	}
	return inserted, nil
}

// TradesForSymbol returns every ledger trade for a symbol in execution
// order. Used by backfill, which re-walks full history.
func (l *Ledger) TradesForSymbol(symbol string) ([]models.Trade, error) {
	var trades []models.Trade
	if err := l.db.Where("symbol = ?", symbol).Order("timestamp asc").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to load trades for %s: %w", symbol, err)
	}
	return trades, nil
}

// AllTrades returns every ledger trade, newest first, for the UI.
func (l *Ledger) AllTrades() ([]models.Trade, error) {
	var trades []models.Trade
	if err := l.db.Order("timestamp desc").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}
	return trades, nil
}

// LastTradeTime returns the newest imported trade timestamp for a symbol,
// or 0 when nothing has been imported yet.
func (l *Ledger) LastTradeTime(symbol string) (int64, error) {
	var last sql.NullInt64
	err := l.db.Model(&models.Trade{}).
		Where("symbol = ?", symbol).
		Select("max(timestamp)").
		Scan(&last).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read trade cursor for %s: %w", symbol, err)
	}
	if !last.Valid {
		return 0, nil
	}
	return last.Int64, nil
}

// RecordRun persists one sync batch outcome.
func (l *Ledger) RecordRun(run *models.SyncRun) error {
	if err := l.db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}
	return nil
}

// RecentRuns returns the latest sync runs, newest first.
func (l *Ledger) RecentRuns(limit int) ([]models.SyncRun, error) {
	var runs []models.SyncRun
	if err := l.db.Order("started_at desc, id desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to load sync runs: %w", err)
	}
	return runs, nil
}
