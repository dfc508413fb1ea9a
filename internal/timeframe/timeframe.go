package timeframe

// Supported chart timeframes, ordered from finest to coarsest.
const (
	M1  = "1m"
	M15 = "15m"
	H1  = "1h"
	H4  = "4h"
	D1  = "1d"
)

var ordered = []string{M1, M15, H1, H4, D1}

var durations = map[string]int64{
	M1:  60,
	M15: 900,
	H1:  3600,
	H4:  14400,
	D1:  86400,
}

// All returns the supported timeframes from finest to coarsest.
func All() []string {
	out := make([]string, len(ordered))
	copy(out, ordered)
	return out
}

// Rank returns the position of tf in the timeframe order, or -1 for an
// unknown timeframe. Unknown timeframes are never visible anywhere, so a
// malformed string degrades to "hidden" instead of an error.
func Rank(tf string) int {
	for i, t := range ordered {
		if t == tf {
			return i
		}
	}
	return -1
}

// DurationSeconds returns the candle duration of tf in seconds, or 0 for
// an unknown timeframe.
func DurationSeconds(tf string) int64 {
	return durations[tf]
}

// IsVisible reports whether a bubble recorded on bubbleTf should be shown
// on a chart rendered at chartTf. A bubble is visible on its own timeframe
// and on every coarser one, never on a finer one.
func IsVisible(bubbleTf, chartTf string) bool {
	br, cr := Rank(bubbleTf), Rank(chartTf)
	if br < 0 || cr < 0 {
		return false
	}
	return br <= cr
}
