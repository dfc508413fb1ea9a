package chart

import (
	"testing"

	"trade-journal-go/internal/models"
	"trade-journal-go/internal/timeframe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedProjector maps everything, or nothing, depending on its flags.
type fixedProjector struct {
	xOK, yOK bool
}

func (p fixedProjector) TimeToX(epochSeconds int64) (float64, bool) {
	return float64(epochSeconds), p.xOK
}

func (p fixedProjector) PriceToY(price float64) (float64, bool) {
	return price, p.yOK
}

func hourCandles(starts ...int64) []CandleBucket {
	out := make([]CandleBucket, 0, len(starts))
	for _, s := range starts {
		out = append(out, CandleBucket{Time: s})
	}
	return out
}

func TestBuildOverlay_GroupingAndSentiment(t *testing.T) {
	// Two annotations in the same 1h candle, one buy and one sell.
	groups := BuildOverlay(OverlayInput{
		Symbol:    "BTCUSDT",
		Timeframe: timeframe.H1,
		Annotations: []models.Annotation{
			{Symbol: "BTCUSDT", Timeframe: timeframe.H1, Timestamp: 1000_000, Price: 100, Tags: []string{"buy"}},
			{Symbol: "BTCUSDT", Timeframe: timeframe.H1, Timestamp: 2000_000, Price: 110, Tags: []string{"sell"}},
		},
		Candles:   hourCandles(1000),
		Projector: fixedProjector{xOK: true, yOK: true},
	})

	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, int64(1000), g.BucketTime)
	assert.Len(t, g.Members, 2)
	assert.InDelta(t, 105, g.AvgPrice, 1e-9)
	assert.Equal(t, SentimentMixed, g.Sentiment)
}

func TestBuildOverlay_BucketContainment(t *testing.T) {
	candles := hourCandles(1000, 4600, 8200)
	groups := BuildOverlay(OverlayInput{
		Symbol:    "BTCUSDT",
		Timeframe: timeframe.H1,
		Annotations: []models.Annotation{
			{Symbol: "BTCUSDT", Timeframe: timeframe.H1, Timestamp: 1000_000, Price: 1},
			{Symbol: "BTCUSDT", Timeframe: timeframe.H1, Timestamp: 5000_000, Price: 2},
			{Symbol: "BTCUSDT", Timeframe: timeframe.H1, Timestamp: 9000_000, Price: 3},
		},
		Candles:   candles,
		Projector: fixedProjector{xOK: true, yOK: true},
	})

	// Every member sits inside its group's bucket interval.
	duration := timeframe.DurationSeconds(timeframe.H1)
	for _, g := range groups {
		for _, m := range g.Members {
			ts := m.Timestamp / 1000
			assert.GreaterOrEqual(t, ts, g.BucketTime)
			assert.Less(t, ts, g.BucketTime+duration)
		}
	}
}

func TestBuildOverlay_VisibilityMonotonic(t *testing.T) {
	annotations := []models.Annotation{
		{Symbol: "BTCUSDT", Timeframe: timeframe.M1, Timestamp: 1500_000, Price: 1},
		{Symbol: "BTCUSDT", Timeframe: timeframe.D1, Timestamp: 1500_000, Price: 2},
	}
	projector := fixedProjector{xOK: true, yOK: true}

	// On a 1h chart only the 1m bubble shows; the 1d bubble is coarser
	// than the chart and stays hidden.
	groups := BuildOverlay(OverlayInput{
		Symbol:      "BTCUSDT",
		Timeframe:   timeframe.H1,
		Annotations: annotations,
		Candles:     hourCandles(1000),
		Projector:   projector,
	})
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Members, 1)
	assert.Equal(t, timeframe.M1, groups[0].Members[0].Timeframe)

	// On a 1m chart the 1d bubble must not appear at all.
	groups = BuildOverlay(OverlayInput{
		Symbol:      "BTCUSDT",
		Timeframe:   timeframe.M1,
		Annotations: []models.Annotation{annotations[1]},
		Candles:     hourCandles(1440, 1500, 1560),
		Projector:   projector,
	})
	assert.Empty(t, groups)
}

func TestBuildOverlay_SymbolFilterAndOutOfView(t *testing.T) {
	groups := BuildOverlay(OverlayInput{
		Symbol:    "BTCUSDT",
		Timeframe: timeframe.H1,
		Annotations: []models.Annotation{
			{Symbol: "ETHUSDT", Timeframe: timeframe.H1, Timestamp: 1500_000, Price: 1},
			// Outside the loaded candle: dropped quietly.
			{Symbol: "BTCUSDT", Timeframe: timeframe.H1, Timestamp: 9000_000, Price: 2},
		},
		Candles:   hourCandles(1000),
		Projector: fixedProjector{xOK: true, yOK: true},
	})
	assert.Empty(t, groups)
}

func TestBuildOverlay_UnmappableGroupDropped(t *testing.T) {
	in := OverlayInput{
		Symbol:    "BTCUSDT",
		Timeframe: timeframe.H1,
		Annotations: []models.Annotation{
			{Symbol: "BTCUSDT", Timeframe: timeframe.H1, Timestamp: 1500_000, Price: 1},
		},
		Candles: hourCandles(1000),
	}

	in.Projector = fixedProjector{xOK: false, yOK: true}
	assert.Empty(t, BuildOverlay(in))

	in.Projector = fixedProjector{xOK: true, yOK: false}
	assert.Empty(t, BuildOverlay(in))
}

func TestBuildOverlay_SentimentClassification(t *testing.T) {
	projector := fixedProjector{xOK: true, yOK: true}
	candles := hourCandles(1000)

	build := func(annotations ...models.Annotation) RenderGroup {
		groups := BuildOverlay(OverlayInput{
			Symbol:      "BTCUSDT",
			Timeframe:   timeframe.H1,
			Annotations: annotations,
			Candles:     candles,
			Projector:   projector,
		})
		require.Len(t, groups, 1)
		return groups[0]
	}

	base := models.Annotation{Symbol: "BTCUSDT", Timeframe: timeframe.H1, Timestamp: 1500_000, Price: 10}

	buy, sell, hold := base, base, base
	buy.Action = models.ActionBuy
	sell.Action = models.ActionSell
	hold.Action = models.ActionHold

	assert.Equal(t, SentimentBuy, build(buy, buy).Sentiment)
	assert.Equal(t, SentimentSell, build(sell, sell).Sentiment)
	assert.Equal(t, SentimentMixed, build(buy, sell).Sentiment)
	// A member with no readable direction makes the group mixed.
	assert.Equal(t, SentimentMixed, build(buy, hold).Sentiment)

	// Tag fallback when action is unset.
	long, short := base, base
	long.Tags = []string{"long"}
	short.Tags = []string{"short"}
	assert.Equal(t, SentimentBuy, build(long).Sentiment)
	assert.Equal(t, SentimentMixed, build(long, short).Sentiment)
}

func TestBuildOverlay_GroupsSortedByBucket(t *testing.T) {
	groups := BuildOverlay(OverlayInput{
		Symbol:    "BTCUSDT",
		Timeframe: timeframe.H1,
		Annotations: []models.Annotation{
			{Symbol: "BTCUSDT", Timeframe: timeframe.H1, Timestamp: 9000_000, Price: 1},
			{Symbol: "BTCUSDT", Timeframe: timeframe.H1, Timestamp: 1500_000, Price: 2},
		},
		Candles:   hourCandles(1000, 8200),
		Projector: fixedProjector{xOK: true, yOK: true},
	})
	require.Len(t, groups, 2)
	assert.Less(t, groups[0].BucketTime, groups[1].BucketTime)
}
