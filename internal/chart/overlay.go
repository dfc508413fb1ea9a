package chart

import (
	"sort"
	"strings"

	"trade-journal-go/internal/models"
	"trade-journal-go/internal/timeframe"
)

// Sentiment values for a render group.
const (
	SentimentBuy   = "buy"
	SentimentSell  = "sell"
	SentimentMixed = "mixed"
)

// RenderGroup is one visual marker: all annotations sharing a candle
// bucket, plus the scalar summary and pixel position the rendering layer
// draws from. Groups are rebuilt from scratch on every overlay pass and
// have no lifecycle of their own.
type RenderGroup struct {
	BucketTime int64               `json:"bucket_time"` // epoch seconds
	Members    []models.Annotation `json:"members"`
	AvgPrice   float64             `json:"avg_price"`
	Sentiment  string              `json:"sentiment"`
	X          float64             `json:"x"`
	Y          float64             `json:"y"`
}

// OverlayInput is everything one overlay pass needs. Annotations is the
// full loaded set; Candles is the candle set currently rendered for
// Symbol at Timeframe, sorted ascending by start time.
type OverlayInput struct {
	Symbol      string
	Timeframe   string
	Annotations []models.Annotation
	Candles     []CandleBucket
	Projector   CoordinateProjector
}

// BuildOverlay computes the render groups for one chart view.
//
// Annotations outside the visible candle range, and whole groups the
// projector cannot map, are silently dropped. The pass is pure and
// synchronous; callers re-run it whenever the annotation set, symbol,
// timeframe, or candle range changes.
func BuildOverlay(in OverlayInput) []RenderGroup {
	groups := make(map[int64]*RenderGroup)

	for _, a := range in.Annotations {
		if a.Symbol != in.Symbol {
			continue
		}
		if !timeframe.IsVisible(a.Timeframe, in.Timeframe) {
			continue
		}
		bucket, ok := ResolveBucket(a.Timestamp, in.Timeframe, in.Candles)
		if !ok {
			continue // outside the loaded window
		}
		g, ok := groups[bucket.Time]
		if !ok {
			g = &RenderGroup{BucketTime: bucket.Time}
			groups[bucket.Time] = g
		}
		g.Members = append(g.Members, a)
	}

	out := make([]RenderGroup, 0, len(groups))
	for _, g := range groups {
		var sum float64
		for _, m := range g.Members {
			sum += m.Price
		}
		g.AvgPrice = sum / float64(len(g.Members))
		g.Sentiment = classifySentiment(g.Members)

		x, ok := in.Projector.TimeToX(g.BucketTime)
		if !ok {
			continue
		}
		y, ok := in.Projector.PriceToY(g.AvgPrice)
		if !ok {
			continue
		}
		g.X, g.Y = x, y
		out = append(out, *g)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].BucketTime < out[j].BucketTime })
	return out
}

// classifySentiment is "buy" or "sell" only when every member agrees;
// anything else, including members with no readable direction, is "mixed".
func classifySentiment(members []models.Annotation) string {
	allBuy, allSell := true, true
	for _, m := range members {
		switch memberSide(m) {
		case SentimentBuy:
			allSell = false
		case SentimentSell:
			allBuy = false
		default:
			allBuy, allSell = false, false
		}
	}
	switch {
	case allBuy:
		return SentimentBuy
	case allSell:
		return SentimentSell
	default:
		return SentimentMixed
	}
}

// memberSide reads an annotation's direction from its action, falling
// back to its tags. Returns "" when the annotation is ambiguous.
func memberSide(a models.Annotation) string {
	switch a.Action {
	case models.ActionBuy:
		return SentimentBuy
	case models.ActionSell:
		return SentimentSell
	}
	var side string
	for _, tag := range a.Tags {
		switch strings.ToLower(tag) {
		case "buy", "long":
			if side == SentimentSell {
				return ""
			}
			side = SentimentBuy
		case "sell", "short":
			if side == SentimentBuy {
				return ""
			}
			side = SentimentSell
		}
	}
	return side
}
