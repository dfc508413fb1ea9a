package models

import "gorm.io/gorm"

// Trade represents an exchange execution record in the import ledger.
// It is immutable once imported; the sync pipeline only reads it.
type Trade struct {
	gorm.Model
	Exchange  string  `gorm:"uniqueIndex:idx_exchange_trade" json:"exchange"`
	TradeID   string  `gorm:"uniqueIndex:idx_exchange_trade" json:"trade_id"`
	Symbol    string  `gorm:"index" json:"symbol"`
	Side      string  `json:"side"` // "buy" or "sell"
	Timestamp int64   `gorm:"index" json:"timestamp"` // epoch millis
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity,omitempty"`
	Fee       float64 `json:"fee,omitempty"`
	FeeAsset  string  `json:"fee_asset,omitempty"`
}
