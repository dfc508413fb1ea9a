package models

import "gorm.io/gorm"

// SyncRun records the outcome of one trade-to-bubble sync batch.
type SyncRun struct {
	gorm.Model
	BatchID    string `gorm:"uniqueIndex" json:"batch_id"`
	Symbol     string `gorm:"index" json:"symbol"`
	Kind       string `json:"kind"` // "sync" or "backfill"
	TradeCount int    `json:"trade_count"`
	Created    int    `json:"created"`
	Matched    int    `json:"matched"`
	Updated    int    `json:"updated"`
	Failed     int    `json:"failed"`
	StartedAt  int64  `json:"started_at"`  // epoch millis
	FinishedAt int64  `json:"finished_at"` // epoch millis
	Note       string `json:"note,omitempty"`
}
