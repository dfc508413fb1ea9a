package chart

import (
	"sort"

	"trade-journal-go/internal/timeframe"
)

// CandleBucket is one rendered candle interval. Time is the bucket start
// in epoch seconds. The OHLC fields come from the chart data source and
// are carried through untouched.
type CandleBucket struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open,omitempty"`
	High   float64 `json:"high,omitempty"`
	Low    float64 `json:"low,omitempty"`
	Close  float64 `json:"close,omitempty"`
	Volume float64 `json:"volume,omitempty"`
}

// ResolveBucket finds the candle that contains the given timestamp.
//
// candles must be sorted ascending by Time; gaps are fine, real markets
// have them. Containment is lower-bound inclusive and upper-bound
// exclusive: a timestamp exactly on a bucket start belongs to that bucket,
// never the preceding one. Returns ok=false when the timestamp falls
// outside every loaded candle, which callers treat as "out of view", not
// as an error.
func ResolveBucket(tsMillis int64, tf string, candles []CandleBucket) (CandleBucket, bool) {
	duration := timeframe.DurationSeconds(tf)
	if duration <= 0 || len(candles) == 0 {
		return CandleBucket{}, false
	}

	ts := tsMillis / 1000

	// Index of the first candle strictly after ts; the candidate is the
	// one before it.
	i := sort.Search(len(candles), func(i int) bool {
		return candles[i].Time > ts
	})
	if i == 0 {
		return CandleBucket{}, false
	}

	c := candles[i-1]
	if ts < c.Time+duration {
		return c, true
	}
	return CandleBucket{}, false
}
