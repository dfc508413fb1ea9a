package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trade-journal-go/internal/bubbles"
	"trade-journal-go/internal/config"
	"trade-journal-go/internal/feed"
	"trade-journal-go/internal/ledger"
	"trade-journal-go/internal/models"
	"trade-journal-go/internal/syncer"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Engine wires the trade feed, the import ledger, and the annotation
// store into scheduled sync and backfill jobs.
type Engine struct {
	logger *zap.Logger
	cfg    *config.Config
	feed   feed.TradeFeed
	store  bubbles.StoreClient
	ledger *ledger.Ledger
	syncer *syncer.Synchronizer

	StartTime time.Time

	mu       sync.Mutex
	lastRuns map[string]models.SyncRun
}

// New creates a new sync engine.
func New(logger *zap.Logger, cfg *config.Config, tradeFeed feed.TradeFeed, store bubbles.StoreClient, led *ledger.Ledger) *Engine {
	return &Engine{
		logger:    logger,
		cfg:       cfg,
		feed:      tradeFeed,
		store:     store,
		ledger:    led,
		syncer:    syncer.New(store, logger),
		StartTime: time.Now(),
		lastRuns:  make(map[string]models.SyncRun),
	}
}

// Run syncs once at startup, then keeps syncing on the configured cron
// schedule until the context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("Starting sync engine",
		zap.Strings("symbols", e.cfg.Sync.Symbols),
		zap.String("schedule", e.cfg.Sync.Schedule),
	)

	e.SyncAll(ctx)

	c := cron.New()
	if _, err := c.AddFunc(e.cfg.Sync.Schedule, func() { e.SyncAll(ctx) }); err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", e.cfg.Sync.Schedule, err)
	}
	if spec := e.cfg.Sync.BackfillSchedule; spec != "" {
		if _, err := c.AddFunc(spec, func() { e.BackfillAll(ctx) }); err != nil {
			return fmt.Errorf("invalid backfill schedule %q: %w", spec, err)
		}
	}

	c.Start()
	<-ctx.Done()

	e.logger.Info("Stopping sync engine...")
	<-c.Stop().Done()
	return nil
}

// SyncAll runs one sync batch per configured symbol. A failing symbol is
// logged and skipped; the others still sync.
func (e *Engine) SyncAll(ctx context.Context) {
	for _, symbol := range e.cfg.Sync.Symbols {
		if err := e.SyncSymbol(ctx, symbol); err != nil {
			e.logger.Error("Sync failed", zap.String("symbol", symbol), zap.Error(err))
		}
	}
}

// SyncSymbol imports new trades for one symbol and converts them into
// annotations. Only trades the ledger has not seen before reach the
// synchronizer; its own idempotency check still guards against bubbles
// that already exist remotely.
func (e *Engine) SyncSymbol(ctx context.Context, symbol string) error {
	started := time.Now()

	since, err := e.ledger.LastTradeTime(symbol)
	if err != nil {
		return err
	}

	fetched, err := e.feed.FetchTrades(ctx, symbol, since)
	if err != nil {
		return fmt.Errorf("trade feed failed for %s: %w", symbol, err)
	}

	trades, err := e.ledger.RecordTrades(fetched)
	if err != nil {
		return err
	}
	if len(trades) == 0 {
		e.logger.Debug("No new trades", zap.String("symbol", symbol))
		return nil
	}

	existing, err := e.store.ListAnnotations(ctx, symbol)
	if err != nil {
		return fmt.Errorf("annotation snapshot failed for %s: %w", symbol, err)
	}

	res := e.syncer.SyncTrades(ctx, trades, existing, syncer.Options{
		Timeframe: e.cfg.Sync.DefaultTimeframe,
	})

	return e.recordRun(symbol, "sync", len(trades), res, started)
}

// BackfillAll repairs historical annotations for every configured symbol.
func (e *Engine) BackfillAll(ctx context.Context) {
	for _, symbol := range e.cfg.Sync.Symbols {
		if err := e.BackfillSymbol(ctx, symbol); err != nil {
			e.logger.Error("Backfill failed", zap.String("symbol", symbol), zap.Error(err))
		}
	}
}

// BackfillSymbol re-walks the full ledger history for a symbol and merges
// current defaults into existing annotations. Nothing is ever created.
func (e *Engine) BackfillSymbol(ctx context.Context, symbol string) error {
	started := time.Now()

	trades, err := e.ledger.TradesForSymbol(symbol)
	if err != nil {
		return err
	}
	if len(trades) == 0 {
		return nil
	}

	existing, err := e.store.ListAnnotations(ctx, symbol)
	if err != nil {
		return fmt.Errorf("annotation snapshot failed for %s: %w", symbol, err)
	}

	res := e.syncer.Backfill(ctx, trades, existing)

	return e.recordRun(symbol, "backfill", len(trades), res, started)
}

func (e *Engine) recordRun(symbol, kind string, tradeCount int, res syncer.Result, started time.Time) error {
	run := models.SyncRun{
		BatchID:    uuid.NewString(),
		Symbol:     symbol,
		Kind:       kind,
		TradeCount: tradeCount,
		Created:    len(res.Created),
		Matched:    res.Matched,
		Updated:    res.Updated,
		Failed:     res.Failed,
		StartedAt:  started.UnixMilli(),
		FinishedAt: time.Now().UnixMilli(),
	}

	e.logger.Info("Sync batch complete",
		zap.String("symbol", symbol),
		zap.String("kind", kind),
		zap.String("batch_id", run.BatchID),
		zap.Int("trades", tradeCount),
		zap.Int("created", run.Created),
		zap.Int("matched", run.Matched),
		zap.Int("updated", run.Updated),
		zap.Int("failed", run.Failed),
	)

	e.mu.Lock()
	e.lastRuns[symbol] = run
	e.mu.Unlock()

	return e.ledger.RecordRun(&run)
}

// LastRuns returns the most recent batch per symbol, for the status API.
func (e *Engine) LastRuns() []models.SyncRun {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.SyncRun, 0, len(e.lastRuns))
	for _, run := range e.lastRuns {
		out = append(out, run)
	}
	return out
}
