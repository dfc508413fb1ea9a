package syncer

import (
	"context"
	"math"
	"strconv"
	"strings"

	"trade-journal-go/internal/models"
	"trade-journal-go/internal/timeframe"

	"go.uber.org/zap"
)

// PriceEpsilon is the absolute price tolerance when matching a trade to an
// existing annotation. Prices travel through string parsing and float
// math on both sides, so exact equality is too strict.
const PriceEpsilon = 1e-7

const defaultAssetClass = "crypto"

// RemoteStore is the slice of the annotation store the synchronizer needs.
type RemoteStore interface {
	CreateAnnotation(ctx context.Context, payload models.Annotation) (*models.Annotation, error)
	UpdateAnnotation(ctx context.Context, id string, patch models.AnnotationPatch) error
}

// Options controls a sync batch.
type Options struct {
	// Timeframe for newly created annotations. Defaults to 1h.
	Timeframe string
}

// Result reports what one batch did. Failed trades are excluded from the
// other counts, so Created/Matched/Updated may undercount the input; that
// is the only caller-visible failure signal.
type Result struct {
	Created []models.Annotation `json:"created"`
	Matched int                 `json:"matched"`
	Updated int                 `json:"updated"`
	Failed  int                 `json:"failed"`
}

// Synchronizer converts exchange trades into chart annotations with
// create-or-merge idempotency on (symbol, ts, action, price±epsilon).
type Synchronizer struct {
	store  RemoteStore
	logger *zap.Logger
}

// New creates a new Synchronizer.
func New(store RemoteStore, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{store: store, logger: logger}
}

// SyncTrades processes trades strictly in input order, one at a time.
//
// existing is a read-only snapshot of the store taken by the caller; the
// synchronizer works on its own copy and folds each successful create back
// into that copy, so two duplicate trades in one batch resolve as
// first-creates, second-matches. A failed remote call skips that trade and
// never aborts the batch.
//
// The per-trade loop is deliberately sequential. Matching depends on the
// writes of earlier trades in the same batch, so no parallel fan-out.
func (s *Synchronizer) SyncTrades(ctx context.Context, trades []models.Trade, existing []models.Annotation, opts Options) Result {
	tf := opts.Timeframe
	if tf == "" {
		tf = timeframe.H1
	}

	matchSet := append([]models.Annotation(nil), existing...)
	var res Result

	for _, trade := range trades {
		action := actionForSide(trade.Side)

		if i := findMatch(matchSet, trade, action); i >= 0 {
			s.mergeMatch(ctx, trade, matchSet, i, &res)
			continue
		}

		payload := annotationForTrade(trade, tf, action)
		created, err := s.store.CreateAnnotation(ctx, payload)
		if err != nil {
			s.logger.Warn("Skipping trade, annotation create failed",
				zap.String("symbol", trade.Symbol),
				zap.Int64("ts", trade.Timestamp),
				zap.Error(err),
			)
			res.Failed++
			continue
		}

		// Trust our payload for the key fields; the store only needs to
		// hand back the assigned ID.
		payload.ID = created.ID
		payload.CreatedAt = created.CreatedAt
		payload.UpdatedAt = created.UpdatedAt

		res.Created = append(res.Created, payload)
		matchSet = append(matchSet, payload)
	}

	return res
}

// Backfill re-applies current defaults to annotations that already exist.
// It only merges into matches and never creates, so it is safe to run over
// full history after a schema or default change.
func (s *Synchronizer) Backfill(ctx context.Context, trades []models.Trade, existing []models.Annotation) Result {
	matchSet := append([]models.Annotation(nil), existing...)
	var res Result

	for _, trade := range trades {
		action := actionForSide(trade.Side)
		if i := findMatch(matchSet, trade, action); i >= 0 {
			s.mergeMatch(ctx, trade, matchSet, i, &res)
		}
	}

	return res
}

// mergeMatch counts the match and, when any defaultable field is still
// empty, sends a merge patch. The patch is mirrored into the local match
// set so later duplicates in the same batch see the populated fields.
func (s *Synchronizer) mergeMatch(ctx context.Context, trade models.Trade, matchSet []models.Annotation, i int, res *Result) {
	res.Matched++

	patch := patchForTrade(matchSet[i], trade)
	if patch.IsEmpty() {
		return
	}

	if err := s.store.UpdateAnnotation(ctx, matchSet[i].ID, patch); err != nil {
		s.logger.Warn("Skipping trade, annotation update failed",
			zap.String("annotation_id", matchSet[i].ID),
			zap.String("symbol", trade.Symbol),
			zap.Error(err),
		)
		res.Failed++
		return
	}

	applyPatch(&matchSet[i], patch)
	res.Updated++
}

// actionForSide maps an exchange trade side onto an annotation action.
func actionForSide(side string) string {
	if strings.EqualFold(side, "buy") {
		return models.ActionBuy
	}
	return models.ActionSell
}

// findMatch returns the index of the annotation matching the trade's
// idempotency key, or -1.
func findMatch(matchSet []models.Annotation, trade models.Trade, action string) int {
	for i, a := range matchSet {
		if a.Symbol == trade.Symbol &&
			a.Timestamp == trade.Timestamp &&
			a.Action == action &&
			math.Abs(a.Price-trade.Price) <= PriceEpsilon {
			return i
		}
	}
	return -1
}

// patchForTrade fills only fields the existing annotation has never had
// populated. A user-written note or tag set is never overwritten.
func patchForTrade(existing models.Annotation, trade models.Trade) models.AnnotationPatch {
	var patch models.AnnotationPatch
	if len(existing.Tags) == 0 {
		patch.Tags = []string{strings.ToLower(trade.Side)}
	}
	if existing.Note == "" {
		patch.Note = noteForTrade(trade)
	}
	if existing.AssetClass == "" {
		patch.AssetClass = defaultAssetClass
	}
	if existing.Venue == "" {
		patch.Venue = trade.Exchange
	}
	return patch
}

func applyPatch(a *models.Annotation, patch models.AnnotationPatch) {
	if len(patch.Tags) > 0 {
		a.Tags = patch.Tags
	}
	if patch.Note != "" {
		a.Note = patch.Note
	}
	if patch.AssetClass != "" {
		a.AssetClass = patch.AssetClass
	}
	if patch.Venue != "" {
		a.Venue = patch.Venue
	}
}

// annotationForTrade builds the create payload with the same defaults the
// merge patch applies.
func annotationForTrade(trade models.Trade, tf, action string) models.Annotation {
	return models.Annotation{
		Symbol:     trade.Symbol,
		Timeframe:  tf,
		Timestamp:  trade.Timestamp,
		Price:      trade.Price,
		Note:       noteForTrade(trade),
		Tags:       []string{strings.ToLower(trade.Side)},
		Action:     action,
		AssetClass: defaultAssetClass,
		Venue:      trade.Exchange,
	}
}

func noteForTrade(trade models.Trade) string {
	price := strconv.FormatFloat(trade.Price, 'f', -1, 64)
	return "Trade sync: " + trade.Symbol + " " + strings.ToUpper(trade.Side) + " @ " + price
}
